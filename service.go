// Package langsync pulls the translations of a Weblate component into an
// Android resource tree.
package langsync

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/pitabwire/util"
	"github.com/rs/xid"
	"go.opentelemetry.io/otel/trace"

	"github.com/pitabwire/langsync/android"
	"github.com/pitabwire/langsync/client"
	"github.com/pitabwire/langsync/config"
	"github.com/pitabwire/langsync/materialize"
	"github.com/pitabwire/langsync/ratelimiter"
	"github.com/pitabwire/langsync/storage"
	"github.com/pitabwire/langsync/telemetry"
	"github.com/pitabwire/langsync/weblate"
)

const instrumentationName = "github.com/pitabwire/langsync"

// Service holds together everything one synchronisation run needs.
type Service struct {
	cfg        *config.Configuration
	credential string

	httpClient *http.Client
	fetcher    weblate.Fetcher
	sink       materialize.Sink
	observer   materialize.Observer
	tracer     telemetry.Tracer
}

type Option func(ctx context.Context, s *Service)

// NewService creates a Service for cfg. The credential is passed separately
// and never read from the configuration.
func NewService(ctx context.Context, cfg *config.Configuration, credential string, opts ...Option) *Service {
	s := &Service{
		cfg:        cfg,
		credential: credential,
		tracer:     telemetry.NewTracer(instrumentationName),
	}

	for _, opt := range opts {
		opt(ctx, s)
	}

	if s.fetcher == nil {
		if s.httpClient == nil {
			s.httpClient = client.NewHTTPClient(httpOptions(cfg)...)
		}
		s.fetcher = client.NewFetcher(client.WithFetcherClient(s.httpClient))
	}

	return s
}

func (s *Service) endpoint() weblate.Endpoint {
	return weblate.Endpoint{
		Host:       s.cfg.WeblateHost,
		Project:    s.cfg.Project,
		Component:  s.cfg.Component,
		Credential: s.credential,
	}
}

// DiscoveryURL is the listing endpoint a run starts with.
func (s *Service) DiscoveryURL() string {
	return weblate.NewClient(s.endpoint(), s.fetcher).TranslationsURL()
}

// Layout is the resource layout derived from the configuration.
func (s *Service) Layout() android.Layout {
	return android.Layout{
		DirPrefix:  s.cfg.ResourceDirPrefix,
		Filename:   s.cfg.ResourceFilename,
		BaseLocale: s.cfg.BaseLocale,
	}
}

// Run discovers the component's locales and materializes each one. A
// returned error is fatal to the run: missing credential, invalid
// configuration, failed or empty discovery, or an unusable output root.
// Individual locale failures are only reported.
func (s *Service) Run(ctx context.Context) (*materialize.Report, error) {
	if s.credential == "" {
		return nil, weblate.ErrAuthenticationRequired
	}

	if err := s.cfg.Validate(); err != nil {
		return nil, err
	}

	log := util.Log(ctx).WithField("run_id", xid.New().String())
	ctx = util.ContextWithLogger(ctx, log)

	ctx, span := s.tracer.Start(ctx, "Run", trace.WithAttributes(
		telemetry.AttrPackageKey.String(s.cfg.Project+"/"+s.cfg.Component)))

	report, err := s.run(ctx)
	s.tracer.End(ctx, span, err)

	return report, err
}

func (s *Service) run(ctx context.Context) (*materialize.Report, error) {
	log := util.Log(ctx)
	wc := weblate.NewClient(s.endpoint(), s.fetcher)

	dCtx, span := s.tracer.Start(ctx, "Discover")
	descriptors, err := wc.Discover(dCtx)
	s.tracer.End(dCtx, span, err)
	if err != nil {
		return nil, err
	}
	log.WithField("locales", len(descriptors)).Info("translations discovered")

	sink, closer, err := s.openSink(ctx)
	if err != nil {
		return nil, err
	}
	if closer != nil {
		defer util.CloseAndLogOnError(ctx, closer)
	}

	m := materialize.New(wc, sink, s.Layout(), s.materializeOptions()...)
	report, err := m.Run(ctx, descriptors)
	if err != nil {
		return report, err
	}

	log.WithFields(map[string]any{
		"written": report.Written,
		"skipped": report.Skipped,
		"failed":  report.Failed,
	}).Info(report.Summary())

	return report, nil
}

// openSink picks where resources go: an injected sink, an in-memory bucket
// for dry runs, a bucket URL or a local directory.
func (s *Service) openSink(ctx context.Context) (materialize.Sink, io.Closer, error) {
	if s.sink != nil {
		return s.sink, nil, nil
	}

	bucketURL := ""
	switch {
	case s.cfg.DryRun:
		bucketURL = storage.DryRunURL
	case storage.IsBucketURL(s.cfg.OutputDir):
		bucketURL = s.cfg.OutputDir
	}

	if bucketURL == "" {
		return storage.NewFilesystem(s.cfg.OutputDir), nil, nil
	}

	bucket, err := storage.OpenBucket(ctx, bucketURL)
	if err != nil {
		return nil, nil, fmt.Errorf("open output %s: %w", bucketURL, err)
	}
	return bucket, bucket, nil
}

func (s *Service) materializeOptions() []materialize.Option {
	opts := []materialize.Option{
		materialize.WithFormat(s.cfg.ExportFormat),
		materialize.WithLocaleFilter(s.cfg.Locales...),
		materialize.WithConcurrency(s.cfg.Concurrency),
	}
	if s.observer != nil {
		opts = append(opts, materialize.WithObserver(s.observer))
	}
	return opts
}

func httpOptions(cfg *config.Configuration) []client.HTTPOption {
	opts := []client.HTTPOption{client.WithHTTPTimeout(cfg.RequestTimeout)}
	if cfg.RequestsPerSecond > 0 {
		opts = append(opts, client.WithHTTPRateLimit(ratelimiter.NewKeyedLimiter(ratelimiter.RateLimiterConfig{
			RequestsPerSecond: cfg.RequestsPerSecond,
			BurstSize:         cfg.Concurrency,
		})))
	}
	if cfg.TraceReq() {
		opts = append(opts, client.WithHTTPTraceRequests())
	}
	if cfg.TraceReqHeaders() {
		opts = append(opts, client.WithHTTPTraceRequestHeaders())
	}
	return opts
}
