package client

import (
	"context"
	"fmt"
	"net/http"
)

// RequestLimiter blocks until a request to key may proceed.
type RequestLimiter interface {
	Wait(ctx context.Context, key string) error
}

type rateLimitedTransport struct {
	transport http.RoundTripper
	limiter   RequestLimiter
}

func (t *rateLimitedTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if err := t.limiter.Wait(req.Context(), req.URL.Host); err != nil {
		return nil, fmt.Errorf("rate limit wait for %s: %w", req.URL.Host, err)
	}
	return t.transport.RoundTrip(req)
}
