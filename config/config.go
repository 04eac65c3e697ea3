package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

// DefaultTokenEnv names the variable the API token is read from.
const DefaultTokenEnv = "WEBLATE_TOKEN"

var ErrInvalidConfiguration = errors.New("invalid configuration")

// FromEnv convenience method to process configs from the process environment.
func FromEnv[T any]() (T, error) {
	return env.ParseAs[T]()
}

// FromEnvMap processes configs from an explicit environment instead of the
// process one. Keys absent from environment fall back to their envDefault.
func FromEnvMap[T any](environment map[string]string) (T, error) {
	return env.ParseAsWithOptions[T](env.Options{Environment: environment})
}

// Load reads the configuration. Values from the optional file at path are
// overridden by the process environment.
func Load(path string) (Configuration, error) {
	return LoadEnvironment(path, env.ToMap(os.Environ()))
}

// LoadEnvironment is Load against an explicit environment.
func LoadEnvironment(path string, environment map[string]string) (Configuration, error) {
	if path != "" {
		fileValues, err := ReadFile(path)
		if err != nil {
			return Configuration{}, err
		}
		environment = Merge(fileValues, environment)
	}

	return FromEnvMap[Configuration](environment)
}

// Merge returns base overlaid with overrides.
func Merge(base map[string]string, overrides map[string]string) map[string]string {
	out := make(map[string]string, len(base)+len(overrides))
	for k, v := range base {
		out[k] = v
	}
	for k, v := range overrides {
		out[k] = v
	}
	return out
}

// Configuration holds every setting of a synchronisation run. The credential
// is deliberately absent; only the name of the variable holding it is kept.
type Configuration struct {
	WeblateHost string `envDefault:"https://hosted.weblate.org" env:"WEBLATE_HOST"`
	Project     string `envDefault:"montinode/ttag"             env:"WEBLATE_PROJECT"`
	Component   string `envDefault:"android-strings"            env:"WEBLATE_COMPONENT"`
	TokenEnv    string `envDefault:"WEBLATE_TOKEN"              env:"LANGSYNC_TOKEN_ENV"`

	OutputDir         string `envDefault:"printingSample/src/main/res" env:"LANGSYNC_OUTPUT_DIR"`
	ExportFormat      string `envDefault:"aresource"                   env:"LANGSYNC_EXPORT_FORMAT"`
	ResourceFilename  string `envDefault:"strings.xml"                 env:"LANGSYNC_RESOURCE_FILENAME"`
	ResourceDirPrefix string `envDefault:"values"                      env:"LANGSYNC_RESOURCE_DIR"`
	BaseLocale        string `envDefault:"en"                          env:"LANGSYNC_BASE_LOCALE"`

	RequestTimeout    time.Duration `envDefault:"30s"   env:"LANGSYNC_REQUEST_TIMEOUT"`
	Concurrency       int           `envDefault:"1"     env:"LANGSYNC_CONCURRENCY"`
	RequestsPerSecond float64       `envDefault:"0"     env:"LANGSYNC_REQUESTS_PER_SECOND"`
	Locales           []string      `                   env:"LANGSYNC_LOCALES"             envSeparator:","`
	DryRun            bool          `envDefault:"false" env:"LANGSYNC_DRY_RUN"`
	UILanguage        string        `                   env:"LANGSYNC_LANG"`

	LogLevel      string `envDefault:"info"                      env:"LOG_LEVEL"`
	LogTimeFormat string `envDefault:"2006-01-02T15:04:05Z07:00" env:"LOG_TIME_FORMAT"`
	LogColored    bool   `envDefault:"true"                      env:"LOG_COLORED"`

	TraceRequests       bool `envDefault:"false" env:"TRACE_REQUESTS"`
	TraceRequestHeaders bool `envDefault:"false" env:"TRACE_REQUEST_HEADERS"`

	OpenTelemetryDisable    bool    `envDefault:"false" env:"OPENTELEMETRY_DISABLE"`
	OpenTelemetryTraceRatio float64 `envDefault:"1.0"   env:"OPENTELEMETRY_TRACE_ID_RATIO"`

	ServiceName string `envDefault:"langsync" env:"SERVICE_NAME"`
}

// Validate reports the first setting that makes a run impossible.
func (c *Configuration) Validate() error {
	required := []struct {
		name  string
		value string
	}{
		{"weblate host", c.WeblateHost},
		{"project", c.Project},
		{"component", c.Component},
		{"output directory", c.OutputDir},
		{"token variable name", c.TokenEnv},
		{"export format", c.ExportFormat},
		{"resource filename", c.ResourceFilename},
	}
	for _, r := range required {
		if strings.TrimSpace(r.value) == "" {
			return fmt.Errorf("%w: %s must not be empty", ErrInvalidConfiguration, r.name)
		}
	}

	u, err := url.Parse(c.WeblateHost)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("%w: weblate host %q is not an absolute http(s) URL", ErrInvalidConfiguration, c.WeblateHost)
	}

	if c.RequestTimeout <= 0 {
		return fmt.Errorf("%w: request timeout must be positive, got %s", ErrInvalidConfiguration, c.RequestTimeout)
	}

	if c.RequestsPerSecond < 0 {
		return fmt.Errorf("%w: requests per second must not be negative, got %v", ErrInvalidConfiguration, c.RequestsPerSecond)
	}

	if c.Concurrency < 1 {
		return fmt.Errorf("%w: concurrency must be at least 1, got %d", ErrInvalidConfiguration, c.Concurrency)
	}

	return nil
}

type ConfigurationLogLevel interface {
	LoggingLevel() string
	LoggingTimeFormat() string
	LoggingColored() bool
	LoggingLevelIsDebug() bool
}

var _ ConfigurationLogLevel = new(Configuration)

func (c *Configuration) LoggingLevel() string {
	return c.LogLevel
}

func (c *Configuration) LoggingTimeFormat() string {
	return c.LogTimeFormat
}

func (c *Configuration) LoggingColored() bool {
	return c.LogColored
}

func (c *Configuration) LoggingLevelIsDebug() bool {
	return c.LoggingLevel() == "debug" || c.LoggingLevel() == "trace"
}

type ConfigurationTraceRequests interface {
	TraceReq() bool
	TraceReqHeaders() bool
}

var _ ConfigurationTraceRequests = new(Configuration)

func (c *Configuration) TraceReq() bool {
	return c.TraceRequests
}

func (c *Configuration) TraceReqHeaders() bool {
	return c.TraceRequestHeaders
}

type ConfigurationTelemetry interface {
	DisableOpenTelemetry() bool
	SamplingRatio() float64
}

var _ ConfigurationTelemetry = new(Configuration)

func (c *Configuration) DisableOpenTelemetry() bool {
	return c.OpenTelemetryDisable
}

func (c *Configuration) SamplingRatio() float64 {
	return c.OpenTelemetryTraceRatio
}

type ConfigurationService interface {
	Name() string
}

var _ ConfigurationService = new(Configuration)

func (c *Configuration) Name() string {
	return c.ServiceName
}
