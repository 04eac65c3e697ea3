package client

import (
	"net/http"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

const (
	defaultHTTPTimeoutSeconds     = 30
	defaultHTTPIdleTimeoutSeconds = 90
)

// HTTPOption configures HTTP client behavior.
type HTTPOption func(*httpConfig)

// httpConfig holds HTTP client configuration.
type httpConfig struct {
	timeout     time.Duration
	transport   http.RoundTripper
	idleTimeout time.Duration

	traceRequests       bool
	traceRequestHeaders bool

	limiter RequestLimiter
}

func (c *httpConfig) process(opts ...HTTPOption) {
	for _, opt := range opts {
		opt(c)
	}
}

// WithHTTPTimeout sets the per-request timeout. Non-positive values are ignored.
func WithHTTPTimeout(timeout time.Duration) HTTPOption {
	return func(c *httpConfig) {
		if timeout > 0 {
			c.timeout = timeout
		}
	}
}

// WithHTTPTransport sets the HTTP transport.
func WithHTTPTransport(transport http.RoundTripper) HTTPOption {
	return func(c *httpConfig) {
		c.transport = transport
	}
}

// WithHTTPIdleTimeout sets the idle timeout.
func WithHTTPIdleTimeout(timeout time.Duration) HTTPOption {
	return func(c *httpConfig) {
		c.idleTimeout = timeout
	}
}

// WithHTTPTraceRequests enables request logging.
func WithHTTPTraceRequests() HTTPOption {
	return func(c *httpConfig) {
		c.traceRequests = true
	}
}

// WithHTTPTraceRequestHeaders enables header logging. Credentials are redacted.
func WithHTTPTraceRequestHeaders() HTTPOption {
	return func(c *httpConfig) {
		c.traceRequestHeaders = true
	}
}

// WithHTTPRateLimit makes every request wait for limiter, keyed by the
// request host.
func WithHTTPRateLimit(limiter RequestLimiter) HTTPOption {
	return func(c *httpConfig) {
		c.limiter = limiter
	}
}

// NewHTTPClient creates a new HTTP client with the provided options.
// If no transport is specified, it defaults to otelhttp.NewTransport(http.DefaultTransport).
// The client always carries a bounded timeout.
func NewHTTPClient(opts ...HTTPOption) *http.Client {
	cfg := &httpConfig{
		timeout:     time.Duration(defaultHTTPTimeoutSeconds) * time.Second,
		idleTimeout: time.Duration(defaultHTTPIdleTimeoutSeconds) * time.Second,
	}
	cfg.process(opts...)

	transport := cfg.transport
	if transport == nil {
		base := http.DefaultTransport
		if t, ok := base.(*http.Transport); ok {
			clone := t.Clone()
			if cfg.idleTimeout > 0 {
				clone.IdleConnTimeout = cfg.idleTimeout
			}
			base = clone
		}
		transport = otelhttp.NewTransport(base)
	}

	if cfg.traceRequests {
		transport = NewLoggingTransport(transport,
			WithTransportLogRequests(true),
			WithTransportLogResponses(true),
			WithTransportLogHeaders(cfg.traceRequestHeaders))
	}

	if cfg.limiter != nil {
		transport = &rateLimitedTransport{transport: transport, limiter: cfg.limiter}
	}

	return &http.Client{
		Transport: transport,
		Timeout:   cfg.timeout,
	}
}
