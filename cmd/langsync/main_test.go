package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/suite"
)

type CLITestSuite struct {
	suite.Suite
	server     *httptest.Server
	requests   atomic.Int64
	listStatus int
	failing    map[string]bool
	codes      []string
}

func TestCLISuite(t *testing.T) {
	suite.Run(t, new(CLITestSuite))
}

func (s *CLITestSuite) SetupTest() {
	s.requests.Store(0)
	s.listStatus = 0
	s.failing = map[string]bool{}
	s.codes = []string{"en", "fr", "de"}

	s.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.requests.Add(1)
		if r.URL.Path == "/api/components/acme/app/translations/" {
			if s.listStatus != 0 {
				w.WriteHeader(s.listStatus)
				return
			}
			results := []map[string]string{}
			for _, c := range s.codes {
				results = append(results, map[string]string{"language_code": c})
			}
			_ = json.NewEncoder(w).Encode(map[string]any{"results": results})
			return
		}
		code := strings.TrimSuffix(strings.TrimPrefix(r.URL.Path, "/api/translations/acme/app/"), "/file/")
		if s.failing[code] {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_, _ = w.Write([]byte("<resources>" + code + "</resources>"))
	}))
}

func (s *CLITestSuite) TearDownTest() {
	s.server.Close()
}

func (s *CLITestSuite) environ(extra map[string]string) map[string]string {
	e := map[string]string{
		"WEBLATE_TOKEN":         "secret",
		"WEBLATE_HOST":          s.server.URL,
		"WEBLATE_PROJECT":       "acme",
		"WEBLATE_COMPONENT":     "app",
		"OPENTELEMETRY_DISABLE": "true",
		"LOG_LEVEL":             "error",
		"LOG_COLORED":           "false",
		"LANG":                  "en_US.UTF-8",
	}
	for k, v := range extra {
		e[k] = v
	}
	return e
}

func (s *CLITestSuite) run(args []string, environ map[string]string) (int, string, string) {
	var stdout, stderr bytes.Buffer
	code := run(context.Background(), args, environ, &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func (s *CLITestSuite) TestSuccessfulRunWithPartialFailure() {
	out := s.T().TempDir()
	s.failing["de"] = true

	code, stdout, _ := s.run([]string{"--output-dir", out}, s.environ(nil))
	s.Equal(exitOK, code)

	s.Contains(stdout, "Host: "+s.server.URL)
	s.Contains(stdout, "Fetching available translations from: "+s.server.URL+"/api/components/acme/app/translations/")
	s.Contains(stdout, "Downloading fr (French) -> "+filepath.Join(out, "values-fr", "strings.xml"))
	s.Contains(stdout, "Error downloading de")
	s.Contains(stdout, "3 locales processed: 2 written, 0 skipped, 1 failed.")
	s.Contains(stdout, "Translations saved to: "+out)

	got, err := os.ReadFile(filepath.Join(out, "values", "strings.xml"))
	s.Require().NoError(err)
	s.Equal("<resources>en</resources>", string(got))
	_, err = os.Stat(filepath.Join(out, "values-de", "strings.xml"))
	s.True(os.IsNotExist(err))
}

func (s *CLITestSuite) TestCleanRunLogsNoErrors() {
	environ := s.environ(map[string]string{"LOG_LEVEL": "info"})

	code, stdout, stderr := s.run([]string{"--output-dir", s.T().TempDir()}, environ)
	s.Equal(exitOK, code)
	s.Contains(stdout, "3 locales processed: 3 written, 0 skipped, 0 failed.")
	s.NotContains(stderr, "ERR")
	s.NotContains(stderr, "could not perform translation")
	s.Contains(stderr, "locale written")
}

func (s *CLITestSuite) TestMissingTokenPrintsGuidance() {
	environ := s.environ(nil)
	delete(environ, "WEBLATE_TOKEN")
	out := filepath.Join(s.T().TempDir(), "res")

	code, _, stderr := s.run([]string{"--output-dir", out}, environ)
	s.Equal(exitError, code)
	s.Contains(stderr, "WEBLATE_TOKEN environment variable is not set")
	s.Contains(stderr, "export WEBLATE_TOKEN='your-token'")
	s.Equal(int64(0), s.requests.Load())

	_, err := os.Stat(out)
	s.True(os.IsNotExist(err))
}

func (s *CLITestSuite) TestCustomTokenVariable() {
	environ := s.environ(map[string]string{"MY_TOKEN": "other"})
	delete(environ, "WEBLATE_TOKEN")

	code, _, _ := s.run([]string{"--token-env", "MY_TOKEN", "--output-dir", s.T().TempDir()}, environ)
	s.Equal(exitOK, code)
}

func (s *CLITestSuite) TestDiscoveryFailureExitsNonZero() {
	s.listStatus = http.StatusForbidden
	out := filepath.Join(s.T().TempDir(), "res")

	code, _, stderr := s.run([]string{"--output-dir", out}, s.environ(nil))
	s.Equal(exitError, code)
	s.Contains(stderr, "Error fetching translations")

	_, err := os.Stat(out)
	s.True(os.IsNotExist(err))
}

func (s *CLITestSuite) TestNoTranslationsExitsNonZero() {
	s.codes = nil

	code, _, stderr := s.run([]string{"--output-dir", s.T().TempDir()}, s.environ(nil))
	s.Equal(exitError, code)
	s.Contains(stderr, "No translations found or API error.")
}

func (s *CLITestSuite) TestDryRunAndFilter() {
	out := filepath.Join(s.T().TempDir(), "res")

	code, stdout, _ := s.run([]string{"--output-dir", out, "--dry-run", "--locales", "fr, de"}, s.environ(nil))
	s.Equal(exitOK, code)
	s.Contains(stdout, "Skipped en: filtered")
	s.Contains(stdout, "mem://values-fr/strings.xml")
	s.Contains(stdout, "Dry run: nothing was written to "+out)

	_, err := os.Stat(out)
	s.True(os.IsNotExist(err))
}

func (s *CLITestSuite) TestSwahiliMessages() {
	environ := s.environ(nil)
	delete(environ, "WEBLATE_TOKEN")

	code, _, stderr := s.run([]string{"--lang", "sw"}, environ)
	s.Equal(exitError, code)
	s.Contains(stderr, "HITILAFU: kigezo cha mazingira WEBLATE_TOKEN hakijawekwa.")
}

func (s *CLITestSuite) TestConfigFileBelowEnvAndFlags() {
	dir := s.T().TempDir()
	cfgPath := filepath.Join(dir, "langsync.yaml")
	s.Require().NoError(os.WriteFile(cfgPath, []byte(
		"weblate_project: acme\nweblate_component: wrong\nlangsync_concurrency: 2\n"), 0o600))

	environ := s.environ(nil)
	delete(environ, "WEBLATE_PROJECT")
	out := filepath.Join(dir, "res")

	code, _, _ := s.run([]string{"--config", cfgPath, "--output-dir", out}, environ)
	s.Equal(exitOK, code)

	_, err := os.Stat(filepath.Join(out, "values-fr", "strings.xml"))
	s.NoError(err)
}

func (s *CLITestSuite) TestInvalidConfiguration() {
	code, _, stderr := s.run([]string{"--concurrency", "0"}, s.environ(nil))
	s.Equal(exitError, code)
	s.Contains(stderr, "Invalid configuration")
	s.Equal(int64(0), s.requests.Load())
}

func (s *CLITestSuite) TestVersionAndUsage() {
	code, stdout, _ := s.run([]string{"--version"}, map[string]string{})
	s.Equal(exitOK, code)
	s.True(strings.HasPrefix(stdout, "langsync "))

	code, _, _ = s.run([]string{"--no-such-flag"}, map[string]string{})
	s.Equal(exitUsage, code)

	code, _, _ = s.run([]string{"-h"}, map[string]string{})
	s.Equal(exitOK, code)
}

func (s *CLITestSuite) TestSplitList() {
	s.Equal([]string{"pt-BR", "de"}, splitList(" pt-BR, ,de,"))
	s.Nil(splitList(""))
}
