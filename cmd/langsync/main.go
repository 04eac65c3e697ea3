package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/pitabwire/util"
	"golang.org/x/text/language"

	"github.com/pitabwire/langsync"
	"github.com/pitabwire/langsync/config"
	"github.com/pitabwire/langsync/localization"
	"github.com/pitabwire/langsync/materialize"
	"github.com/pitabwire/langsync/version"
	"github.com/pitabwire/langsync/weblate"
)

const (
	exitOK    = 0
	exitError = 1
	exitUsage = 2

	telemetryShutdownTimeout = 5 * time.Second
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], env.ToMap(os.Environ()), os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

type cliFlags struct {
	configPath  string
	host        string
	project     string
	component   string
	outputDir   string
	tokenEnv    string
	format      string
	locales     string
	concurrency int
	rate        float64
	timeout     time.Duration
	dryRun      bool
	lang        string
	version     bool
}

func parseFlags(args []string, stderr io.Writer) (*flag.FlagSet, *cliFlags, error) {
	fs := flag.NewFlagSet("langsync", flag.ContinueOnError)
	fs.SetOutput(stderr)

	f := &cliFlags{}
	fs.StringVar(&f.configPath, "config", "", "optional YAML or TOML configuration file")
	fs.StringVar(&f.host, "host", "", "Weblate host URL (default https://hosted.weblate.org)")
	fs.StringVar(&f.project, "project", "", "Weblate project identifier (default montinode/ttag)")
	fs.StringVar(&f.component, "component", "", "Weblate component identifier (default android-strings)")
	fs.StringVar(&f.outputDir, "output-dir", "", "resource root directory or bucket URL (default printingSample/src/main/res)")
	fs.StringVar(&f.tokenEnv, "token-env", "", "environment variable holding the API token (default WEBLATE_TOKEN)")
	fs.StringVar(&f.format, "format", "", "Weblate export format (default aresource)")
	fs.StringVar(&f.locales, "locales", "", "comma separated language codes to download, all when empty")
	fs.IntVar(&f.concurrency, "concurrency", 0, "number of locales downloaded at once (default 1)")
	fs.Float64Var(&f.rate, "rate", 0, "maximum API requests per second, unlimited when 0")
	fs.DurationVar(&f.timeout, "timeout", 0, "per request timeout (default 30s)")
	fs.BoolVar(&f.dryRun, "dry-run", false, "download without writing anything to disk")
	fs.StringVar(&f.lang, "lang", "", "language of the CLI messages")
	fs.BoolVar(&f.version, "version", false, "print version information and exit")

	return fs, f, fs.Parse(args)
}

// applyFlags overrides cfg with the flags given explicitly on the command line.
func applyFlags(fs *flag.FlagSet, f *cliFlags, cfg *config.Configuration) {
	fs.Visit(func(fl *flag.Flag) {
		switch fl.Name {
		case "host":
			cfg.WeblateHost = f.host
		case "project":
			cfg.Project = f.project
		case "component":
			cfg.Component = f.component
		case "output-dir":
			cfg.OutputDir = f.outputDir
		case "token-env":
			cfg.TokenEnv = f.tokenEnv
		case "format":
			cfg.ExportFormat = f.format
		case "locales":
			cfg.Locales = splitList(f.locales)
		case "concurrency":
			cfg.Concurrency = f.concurrency
		case "rate":
			cfg.RequestsPerSecond = f.rate
		case "timeout":
			cfg.RequestTimeout = f.timeout
		case "dry-run":
			cfg.DryRun = f.dryRun
		case "lang":
			cfg.UILanguage = f.lang
		}
	})
}

func splitList(v string) []string {
	var out []string
	for _, item := range strings.Split(v, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

func run(ctx context.Context, args []string, environ map[string]string, stdout, stderr io.Writer) int {
	fs, flags, err := parseFlags(args, stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return exitOK
		}
		return exitUsage
	}

	if flags.version {
		fmt.Fprintln(stdout, version.String())
		return exitOK
	}

	cfg, err := config.LoadEnvironment(flags.configPath, environ)
	if err != nil {
		fmt.Fprintf(stderr, "langsync: %v\n", err)
		return exitError
	}
	applyFlags(fs, flags, &cfg)

	log := langsync.NewLogger(ctx, &cfg, util.WithLogOutput(stderr))
	ctx = util.ContextWithLogger(ctx, log)

	loc, err := localization.NewManager()
	if err != nil {
		log.WithError(err).Error("could not load CLI messages")
		return exitError
	}
	langs := localization.EnvironmentLanguages(cfg.UILanguage, func(k string) string { return environ[k] })
	ctx = localization.ToContext(ctx, langs)

	credential := environ[cfg.TokenEnv]
	if credential == "" {
		vars := map[string]any{"TokenEnv": cfg.TokenEnv}
		fmt.Fprintln(stderr, loc.TranslateWithMap(ctx, localization.MsgMissingToken, vars))
		fmt.Fprintln(stderr, loc.TranslateWithMap(ctx, localization.MsgMissingTokenHelp, vars))
		return exitError
	}

	if err = cfg.Validate(); err != nil {
		fmt.Fprintln(stderr, loc.TranslateWithMap(ctx, localization.MsgInvalidConfiguration,
			map[string]any{"Error": err.Error()}))
		return exitError
	}

	tm, err := langsync.SetupTelemetry(ctx, &cfg)
	if err != nil {
		log.WithError(err).Warn("telemetry disabled, could not initialise it")
	} else {
		defer func() {
			sCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), telemetryShutdownTimeout)
			defer cancel()
			if sErr := tm.Shutdown(sCtx); sErr != nil {
				log.WithError(sErr).Warn("could not flush telemetry")
			}
		}()
	}

	printer := &progressPrinter{out: stdout, loc: loc, ui: loc.Match(langs...)}
	svc := langsync.NewService(ctx, &cfg, credential, langsync.WithObserver(printer))

	fmt.Fprintln(stdout, loc.TranslateWithMap(ctx, localization.MsgRunHeader, map[string]any{
		"Host":      cfg.WeblateHost,
		"Project":   cfg.Project,
		"Component": cfg.Component,
	}))
	fmt.Fprintln(stdout, loc.TranslateWithMap(ctx, localization.MsgDiscoveryURL,
		map[string]any{"URL": svc.DiscoveryURL()}))

	report, err := svc.Run(ctx)
	if err != nil {
		fmt.Fprintln(stderr, failureMessage(ctx, loc, err))
		return exitError
	}

	fmt.Fprintln(stdout)
	fmt.Fprintln(stdout, loc.Translate(ctx, localization.MsgDownloadComplete))
	fmt.Fprintln(stdout, loc.TranslateWithMapAndCount(ctx, localization.MsgSummary, map[string]any{
		"Total":   report.Total(),
		"Written": report.Written,
		"Skipped": report.Skipped,
		"Failed":  report.Failed,
	}, report.Total()))

	if cfg.DryRun {
		fmt.Fprintln(stdout, loc.TranslateWithMap(ctx, localization.MsgDryRunNotice,
			map[string]any{"Output": cfg.OutputDir}))
	} else {
		fmt.Fprintln(stdout, loc.TranslateWithMap(ctx, localization.MsgSavedTo,
			map[string]any{"Output": cfg.OutputDir}))
	}

	return exitOK
}

func failureMessage(ctx context.Context, loc localization.Manager, err error) string {
	vars := map[string]any{"Error": err.Error()}
	switch {
	case errors.Is(err, weblate.ErrNoTranslationsFound):
		return loc.Translate(ctx, localization.MsgNoTranslations)
	case errors.Is(err, weblate.ErrDiscoveryFailed):
		return loc.TranslateWithMap(ctx, localization.MsgDiscoveryFailed, vars)
	case errors.Is(err, config.ErrInvalidConfiguration):
		return loc.TranslateWithMap(ctx, localization.MsgInvalidConfiguration, vars)
	default:
		return loc.TranslateWithMap(ctx, localization.MsgRunFailed, vars)
	}
}

// progressPrinter writes one line per attempted locale and one per failure.
type progressPrinter struct {
	mu  sync.Mutex
	out io.Writer
	loc localization.Manager
	ui  language.Tag
}

func (p *progressPrinter) LocaleStarted(ctx context.Context, locale string, path string) {
	vars := map[string]any{"Locale": locale, "Path": path}
	msgID := localization.MsgProgress
	if name := localization.DisplayName(p.ui, locale); name != "" {
		vars["Name"] = name
		msgID = localization.MsgProgressNamed
	}
	p.println(p.loc.TranslateWithMap(ctx, msgID, vars))
}

func (p *progressPrinter) LocaleFinished(ctx context.Context, res materialize.Result) {
	switch {
	case res.Status == materialize.StatusFailed:
		p.println(p.loc.TranslateWithMap(ctx, localization.MsgLocaleFailed,
			map[string]any{"Locale": res.Locale, "Error": res.Err.Error()}))
	case res.Status == materialize.StatusSkipped && res.Reason == materialize.ReasonFiltered:
		p.println(p.loc.TranslateWithMap(ctx, localization.MsgLocaleSkipped,
			map[string]any{"Locale": res.Locale, "Reason": res.Reason}))
	}
}

func (p *progressPrinter) println(line string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	fmt.Fprintln(p.out, line)
}
