// Package materialize turns discovered locales into resource files on a sink.
package materialize

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/lmittmann/tint"
	"github.com/pitabwire/util"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/pitabwire/langsync/android"
	"github.com/pitabwire/langsync/telemetry"
	"github.com/pitabwire/langsync/weblate"
	"github.com/pitabwire/langsync/workerpool"
)

const (
	instrumentationName = "github.com/pitabwire/langsync/materialize"

	tintAttrCodeWritten = 10
	tintAttrCodeFailed  = 9
	tintAttrCodeSkipped = 8
)

type Downloader interface {
	Download(ctx context.Context, languageCode string, format string) ([]byte, error)
}

// Sink writes slash separated paths relative to its root.
type Sink interface {
	EnsureDir(ctx context.Context, dir string) error
	WriteFile(ctx context.Context, path string, data []byte) error
	Location(path string) string
}

type Materializer struct {
	downloader Downloader
	sink       Sink
	layout     android.Layout

	format      string
	filter      map[string]struct{}
	concurrency int
	observer    Observer
	tracer      telemetry.Tracer

	localeCounter metric.Int64Counter
	bytesCounter  metric.Int64Counter
}

func New(downloader Downloader, sink Sink, layout android.Layout, opts ...Option) *Materializer {
	m := &Materializer{
		downloader:  downloader,
		sink:        sink,
		layout:      layout,
		format:      weblate.DefaultFormat,
		concurrency: 1,
		observer:    noopObserver{},
		tracer:      telemetry.NewTracer(instrumentationName),
		localeCounter: telemetry.DimensionlessMeasure(instrumentationName, "/locales",
			"Locales processed by outcome"),
		bytesCounter: telemetry.BytesMeasure(instrumentationName, "/written_bytes",
			"Resource bytes written"),
	}

	for _, opt := range opts {
		opt(m)
	}

	return m
}

// Run materializes every descriptor and reports one result per descriptor in
// the given order. Locale failures are recorded, never returned. An error
// means the run itself stopped early (cancelled context or worker pool).
func (m *Materializer) Run(ctx context.Context, descriptors []weblate.LocaleDescriptor) (*Report, error) {
	results := make([]Result, len(descriptors))

	if m.concurrency <= 1 || len(descriptors) <= 1 {
		for i, d := range descriptors {
			if err := ctx.Err(); err != nil {
				return newReport(results[:i]), err
			}
			results[i] = m.materialize(ctx, d)
		}
		return newReport(results), nil
	}

	pool, err := workerpool.New(ctx,
		workerpool.WithSinglePoolCapacity(m.concurrency),
		workerpool.WithPoolLogger(util.Log(ctx)),
		workerpool.WithPoolPanicHandler(func(p any) {
			util.Log(ctx).WithField("panic", p).Error("locale task panicked")
		}),
	)
	if err != nil {
		return newReport(nil), fmt.Errorf("start worker pool: %w", err)
	}
	defer pool.Shutdown()

	submitted, err := workerpool.ForEach(ctx, pool, len(descriptors), func(i int) {
		results[i] = m.materialize(ctx, descriptors[i])
	})

	// A task that panicked leaves its slot unset.
	for i := range results[:submitted] {
		if results[i].Status == StatusUnknown {
			results[i] = m.finish(ctx, Result{
				Locale: descriptors[i].LanguageCode,
				Status: StatusFailed,
				Err:    ErrLocaleNotProcessed,
			})
		}
	}

	if err != nil {
		return newReport(results[:submitted]), err
	}

	return newReport(results), nil
}

// isPathSegment reports whether code can be used as part of a directory
// name without leaving the output root.
func isPathSegment(code string) bool {
	return code != "." && code != ".." && !strings.ContainsAny(code, "/\\\x00")
}

func (m *Materializer) materialize(ctx context.Context, d weblate.LocaleDescriptor) Result {
	code := d.LanguageCode
	log := util.Log(ctx).WithField("locale", code)

	if code == "" {
		log.Debug("skipping descriptor without language code")
		return m.finish(ctx, Result{Status: StatusSkipped, Reason: ErrMalformedDescriptor.Error(), Err: ErrMalformedDescriptor})
	}

	if !isPathSegment(code) {
		log.Warn("skipping language code that is not a single path segment")
		return m.finish(ctx, Result{Locale: code, Status: StatusSkipped,
			Reason: ErrUnsafeLanguageCode.Error(), Err: ErrUnsafeLanguageCode})
	}

	rel := m.layout.Path(code)
	res := Result{Locale: code, Path: m.sink.Location(rel)}

	if m.filter != nil {
		if _, ok := m.filter[code]; !ok {
			log.Debug("skipping locale outside filter")
			res.Status = StatusSkipped
			res.Reason = ReasonFiltered
			return m.finish(ctx, res)
		}
	}

	m.observer.LocaleStarted(ctx, code, res.Path)

	ctx, span := m.tracer.Start(ctx, "Materialize",
		trace.WithAttributes(telemetry.AttrLocaleKey.String(code)))

	n, err := m.write(ctx, code, rel)
	m.tracer.End(ctx, span, err)

	if err != nil {
		res.Status = StatusFailed
		res.Err = err
		return m.finish(ctx, res)
	}

	m.bytesCounter.Add(ctx, int64(n))
	res.Status = StatusWritten
	return m.finish(ctx, res)
}

// write only touches the destination after the download was read in full,
// so a failed locale never leaves a truncated file behind.
func (m *Materializer) write(ctx context.Context, code string, rel string) (int, error) {
	if err := m.sink.EnsureDir(ctx, m.layout.Dir(code)); err != nil {
		return 0, fmt.Errorf("create directory for %s: %w", code, err)
	}

	data, err := m.downloader.Download(ctx, code, m.format)
	if err != nil {
		return 0, err
	}

	if err = m.sink.WriteFile(ctx, rel, data); err != nil {
		return 0, fmt.Errorf("write %s: %w", code, err)
	}

	return len(data), nil
}

func (m *Materializer) finish(ctx context.Context, res Result) Result {
	m.localeCounter.Add(ctx, 1, metric.WithAttributes(telemetry.StatusAttr(res.Status.String())))

	log := util.Log(ctx).WithFields(map[string]any{"locale": res.Locale, "path": res.Path})
	switch res.Status {
	case StatusWritten:
		log = log.With(tint.Attr(tintAttrCodeWritten, slog.String("status", res.Status.String())))
		log.Info("locale written")
	case StatusFailed:
		log = log.With(tint.Attr(tintAttrCodeFailed, slog.String("status", res.Status.String())))
		log.WithError(res.Err).Error("locale download failed")
	case StatusSkipped:
		if res.Reason == ReasonFiltered {
			log = log.With(tint.Attr(tintAttrCodeSkipped, slog.String("status", res.Status.String())))
			log.WithField("reason", res.Reason).Debug("locale skipped")
		}
	}

	m.observer.LocaleFinished(ctx, res)
	return res
}

type noopObserver struct{}

func (noopObserver) LocaleStarted(context.Context, string, string) {}
func (noopObserver) LocaleFinished(context.Context, Result)       {}
