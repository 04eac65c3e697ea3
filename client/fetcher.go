package client

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/pitabwire/util"
)

const (
	defaultMaxResponseBodyLen = 32 << 20 // 32MB, far above any strings.xml
	defaultAuthScheme         = "Token"
	httpStatusOKClass         = 2
)

var ErrResponseTooLarge = errors.New("response body exceeds configured limit")

// StatusError reports a response outside the 2xx class.
type StatusError struct {
	StatusCode int
	Status     string
	URL        string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected response %q from %s", e.Status, e.URL)
}

// FetcherOption configures a Fetcher.
type FetcherOption func(*Fetcher)

// WithFetcherClient sets the HTTP client used for requests.
func WithFetcherClient(cl *http.Client) FetcherOption {
	return func(f *Fetcher) {
		f.client = cl
	}
}

// WithAuthScheme sets the scheme placed in front of the credential in the
// Authorization header. Weblate expects "Token".
func WithAuthScheme(scheme string) FetcherOption {
	return func(f *Fetcher) {
		f.authScheme = scheme
	}
}

// WithMaxBodyLen caps how many bytes a single response may carry.
func WithMaxBodyLen(n int64) FetcherOption {
	return func(f *Fetcher) {
		f.maxBodyLen = n
	}
}

// Fetcher issues authenticated GET requests and returns the full response body.
type Fetcher struct {
	client     *http.Client
	authScheme string
	maxBodyLen int64
}

// NewFetcher creates a Fetcher. Without WithFetcherClient it uses NewHTTPClient().
func NewFetcher(opts ...FetcherOption) *Fetcher {
	f := &Fetcher{
		authScheme: defaultAuthScheme,
		maxBodyLen: defaultMaxResponseBodyLen,
	}
	for _, opt := range opts {
		opt(f)
	}
	if f.client == nil {
		f.client = NewHTTPClient()
	}
	return f
}

// Client returns the HTTP client used by the fetcher.
func (f *Fetcher) Client() *http.Client {
	return f.client
}

// Fetch performs GET endpointURL with the credential attached. The body is
// only returned once it has been read completely from a 2xx response.
func (f *Fetcher) Fetch(ctx context.Context, endpointURL string, credential string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpointURL, nil)
	if err != nil {
		return nil, err
	}
	if credential != "" {
		req.Header.Set("Authorization", f.authScheme+" "+credential)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer util.CloseAndLogOnError(ctx, resp.Body)

	if resp.StatusCode/100 != httpStatusOKClass {
		// Drain a little so the connection can be reused.
		_, _ = io.CopyN(io.Discard, resp.Body, 4<<10) //nolint:mnd // 4KB
		return nil, &StatusError{StatusCode: resp.StatusCode, Status: resp.Status, URL: endpointURL}
	}

	return readAllLimited(resp.Body, f.maxBodyLen)
}

func readAllLimited(body io.Reader, maxBodyLen int64) ([]byte, error) {
	reader := body
	if maxBodyLen > 0 {
		reader = io.LimitReader(body, maxBodyLen+1)
	}

	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, err
	}

	if maxBodyLen > 0 && int64(len(data)) > maxBodyLen {
		return nil, ErrResponseTooLarge
	}

	return data, nil
}
