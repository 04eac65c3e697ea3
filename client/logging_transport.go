package client

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/pitabwire/util"
)

const redactedValue = "[REDACTED]"

// LoggingTransportOption configures the logging HTTP transport.
type LoggingTransportOption func(*loggingTransport)

// loggingTransport is an HTTP transport that logs requests and responses.
// Bodies are never logged: the responses it sees are resource files.
type loggingTransport struct {
	transport    http.RoundTripper
	logRequests  bool
	logResponses bool
	logHeaders   bool
}

// NewLoggingTransport creates a new logging HTTP transport.
// By default, it logs requests and responses but not headers.
func NewLoggingTransport(transport http.RoundTripper, opts ...LoggingTransportOption) http.RoundTripper {
	if transport == nil {
		transport = http.DefaultTransport
	}

	t := &loggingTransport{
		transport:    transport,
		logRequests:  true,
		logResponses: true,
	}

	for _, opt := range opts {
		opt(t)
	}

	return t
}

// WithTransportLogRequests enables or disables request logging.
func WithTransportLogRequests(enabled bool) LoggingTransportOption {
	return func(t *loggingTransport) {
		t.logRequests = enabled
	}
}

// WithTransportLogResponses enables or disables response logging.
func WithTransportLogResponses(enabled bool) LoggingTransportOption {
	return func(t *loggingTransport) {
		t.logResponses = enabled
	}
}

// WithTransportLogHeaders enables or disables header logging.
// Authorization and cookie headers are always redacted.
func WithTransportLogHeaders(enabled bool) LoggingTransportOption {
	return func(t *loggingTransport) {
		t.logHeaders = enabled
	}
}

// RoundTrip implements http.RoundTripper.
func (t *loggingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	start := time.Now()
	ctx := req.Context()

	if t.logRequests {
		t.logRequest(ctx, req)
	}

	resp, err := t.transport.RoundTrip(req)

	if t.logResponses {
		t.logResponse(ctx, req, resp, err, time.Since(start))
	}

	return resp, err
}

func (t *loggingTransport) logRequest(ctx context.Context, req *http.Request) {
	logger := util.Log(ctx).WithFields(map[string]any{
		"method": req.Method,
		"url":    req.URL.String(),
	})

	if t.logHeaders {
		logger = logger.WithField("headers", redactHeaders(req.Header))
	}

	logger.Debug("HTTP request sent")
}

func (t *loggingTransport) logResponse(
	ctx context.Context,
	req *http.Request,
	resp *http.Response,
	err error,
	duration time.Duration,
) {
	logger := util.Log(ctx).WithFields(map[string]any{
		"url":      req.URL.String(),
		"duration": duration.String(),
	})

	if err != nil {
		logger.WithError(err).Debug("HTTP request failed")
		return
	}

	logger = logger.WithFields(map[string]any{
		"status":        resp.StatusCode,
		"contentLength": resp.ContentLength,
	})

	if t.logHeaders {
		logger = logger.WithField("headers", redactHeaders(resp.Header))
	}

	logger.Debug("HTTP response received")
}

func redactHeaders(headers http.Header) map[string]string {
	out := make(map[string]string, len(headers))
	for name, values := range headers {
		if len(values) == 0 {
			continue
		}
		switch http.CanonicalHeaderKey(name) {
		case "Authorization", "Cookie", "Set-Cookie", "Proxy-Authorization":
			out[name] = redactedValue
		default:
			out[name] = strings.Join(values, " , ")
		}
	}
	return out
}
