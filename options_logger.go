package langsync

import (
	"context"

	"github.com/pitabwire/util"

	"github.com/pitabwire/langsync/config"
)

// NewLogger builds the run logger from the logging settings in cfg.
func NewLogger(ctx context.Context, cfg config.ConfigurationLogLevel, opts ...util.Option) *util.LogEntry {
	if cfg != nil {
		logLevel, err := util.ParseLevel(cfg.LoggingLevel())
		if err == nil {
			opts = append(opts, util.WithLogLevel(logLevel))
		}
		opts = append(opts,
			util.WithLogTimeFormat(cfg.LoggingTimeFormat()),
			util.WithLogNoColor(!cfg.LoggingColored()))
		if cfg.LoggingLevelIsDebug() {
			opts = append(opts, util.WithLogStackTrace())
		}
	}

	return util.NewLogger(ctx, opts...)
}
