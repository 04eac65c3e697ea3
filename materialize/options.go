package materialize

import (
	"context"

	"github.com/pitabwire/langsync/telemetry"
)

// Observer receives progress for each attempted locale. With concurrency
// above one the callbacks arrive from several goroutines.
type Observer interface {
	LocaleStarted(ctx context.Context, locale string, path string)
	LocaleFinished(ctx context.Context, result Result)
}

type Option func(*Materializer)

// WithFormat sets the export format requested from the service.
func WithFormat(format string) Option {
	return func(m *Materializer) {
		if format != "" {
			m.format = format
		}
	}
}

// WithLocaleFilter restricts the run to the listed language codes. An empty
// list keeps every locale.
func WithLocaleFilter(codes ...string) Option {
	return func(m *Materializer) {
		if len(codes) == 0 {
			m.filter = nil
			return
		}
		m.filter = make(map[string]struct{}, len(codes))
		for _, c := range codes {
			m.filter[c] = struct{}{}
		}
	}
}

// WithConcurrency sets how many locales are downloaded at once.
func WithConcurrency(n int) Option {
	return func(m *Materializer) {
		if n > 0 {
			m.concurrency = n
		}
	}
}

func WithObserver(o Observer) Option {
	return func(m *Materializer) {
		m.observer = o
	}
}

func WithTracer(t telemetry.Tracer) Option {
	return func(m *Materializer) {
		m.tracer = t
	}
}
