package langsync

import (
	"context"
	"net/http"

	"github.com/pitabwire/langsync/materialize"
	"github.com/pitabwire/langsync/weblate"
)

// WithHTTPClient replaces the instrumented client built from the configuration.
func WithHTTPClient(cl *http.Client) Option {
	return func(_ context.Context, s *Service) {
		s.httpClient = cl
	}
}

// WithFetcher replaces the HTTP fetcher entirely.
func WithFetcher(f weblate.Fetcher) Option {
	return func(_ context.Context, s *Service) {
		s.fetcher = f
	}
}

// WithSink writes resources to sink instead of the configured output root.
func WithSink(sink materialize.Sink) Option {
	return func(_ context.Context, s *Service) {
		s.sink = sink
	}
}

// WithObserver reports per-locale progress to o.
func WithObserver(o materialize.Observer) Option {
	return func(_ context.Context, s *Service) {
		s.observer = o
	}
}
