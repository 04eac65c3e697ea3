package client //nolint:testpackage // tests access unexported httpConfig

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
)

type OptionsSuite struct {
	suite.Suite
}

func TestOptionsSuite(t *testing.T) {
	suite.Run(t, new(OptionsSuite))
}

func (s *OptionsSuite) TestProcessAndOptionFunctions() {
	cfg := &httpConfig{}
	cfg.process(
		WithHTTPTimeout(3*time.Second),
		WithHTTPTransport(http.DefaultTransport),
		WithHTTPIdleTimeout(11*time.Second),
		WithHTTPTraceRequests(),
		WithHTTPTraceRequestHeaders(),
	)

	s.Equal(3*time.Second, cfg.timeout)
	s.Equal(http.DefaultTransport, cfg.transport)
	s.Equal(11*time.Second, cfg.idleTimeout)
	s.True(cfg.traceRequests)
	s.True(cfg.traceRequestHeaders)
}

func (s *OptionsSuite) TestNonPositiveTimeoutKeepsDefault() {
	client := NewHTTPClient(WithHTTPTimeout(0))
	s.Equal(time.Duration(defaultHTTPTimeoutSeconds)*time.Second, client.Timeout)

	client = NewHTTPClient(WithHTTPTimeout(-time.Second))
	s.Equal(time.Duration(defaultHTTPTimeoutSeconds)*time.Second, client.Timeout)
}

func (s *OptionsSuite) TestNewHTTPClient() {
	tr := &http.Transport{}
	client := NewHTTPClient(
		WithHTTPTimeout(2*time.Second),
		WithHTTPTransport(tr),
	)

	s.Equal(2*time.Second, client.Timeout)
	s.Same(tr, client.Transport)
}

func (s *OptionsSuite) TestNewHTTPClientWrapsTracing() {
	tr := &http.Transport{}
	client := NewHTTPClient(WithHTTPTransport(tr), WithHTTPTraceRequests())

	lt, ok := client.Transport.(*loggingTransport)
	s.Require().True(ok)
	s.Same(tr, lt.transport)
	s.False(lt.logHeaders)
}

func (s *OptionsSuite) TestNewHTTPClientDefaultTransport() {
	client := NewHTTPClient()
	s.NotNil(client.Transport)
	s.NotSame(http.DefaultTransport, client.Transport)
}
