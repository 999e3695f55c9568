package cli

import (
	"context"
	"io"
	"strings"

	"github.com/gear6io/quackview/pkg/sdk"
	"github.com/gear6io/quackview/server"
	"github.com/gear6io/quackview/server/bridge/duckdb"
	"github.com/gear6io/quackview/server/config"
	"github.com/gear6io/quackview/server/service"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const configKey contextKey = "config"

// loadConfig reads --config, falling back to defaults when the file does
// not exist, and applies flag overrides
func loadConfig() (*config.Config, error) {
	cfg, err := config.LoadConfigOrDefault(rootOpts.configPath)
	if err != nil {
		return nil, err
	}
	if rootOpts.dataPath != "" {
		cfg.Storage.DataPath = rootOpts.dataPath
	}
	if rootOpts.verbose {
		cfg.Log.Console = true
		cfg.Log.Level = "debug"
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// prepare loads configuration and replaces the bootstrap logger with the
// configured one before any subcommand runs
func prepare(cmd *cobra.Command, args []string) error {
	// the root context is the one set by ExecuteWithContext for this run
	base := commandContext(cmd.Root())

	cfg, err := loadConfig()
	if err != nil {
		getDisplayFromContext(base).Error("Invalid configuration: %v", err)
		return err
	}

	logger, err := config.SetupLogger(cfg, "cli")
	if err != nil {
		return err
	}

	ctx := WithLogger(base, logger)
	ctx = context.WithValue(ctx, configKey, cfg)
	cmd.SetContext(ctx)
	return nil
}

func getConfigFromContext(ctx context.Context) *config.Config {
	if cfg, ok := ctx.Value(configKey).(*config.Config); ok {
		return cfg
	}
	return config.LoadDefaultConfig()
}

func loggerOrNop(ctx context.Context) zerolog.Logger {
	if l := getLoggerFromContext(ctx); l != nil {
		return *l
	}
	return zerolog.Nop()
}

// openFacade returns an initialized façade: the local database, or the
// server named by --server. The returned func releases it.
func openFacade(ctx context.Context) (service.Facade, func(), error) {
	logger := loggerOrNop(ctx)

	if rootOpts.serverURL != "" {
		client, err := newRemoteClient(rootOpts.serverURL)
		if err != nil {
			return nil, nil, err
		}
		if err := client.Initialize(ctx); err != nil {
			return nil, nil, err
		}
		logger.Debug().Str("server", rootOpts.serverURL).Msg("Using remote server")
		return client, func() {}, nil
	}

	cfg := getConfigFromContext(ctx)
	b, err := duckdb.New(server.EngineOptions(cfg), logger)
	if err != nil {
		return nil, nil, err
	}

	svc := service.New(cfg, b, logger)
	if err := svc.Initialize(ctx); err != nil {
		closeEngine(b, logger)
		return nil, nil, err
	}

	return svc, func() {
		if err := svc.Close(); err != nil {
			logger.Warn().Err(err).Msg("Failed to close database")
		}
	}, nil
}

// closeEngine releases an engine that never became usable
func closeEngine(b io.Closer, logger zerolog.Logger) {
	if err := b.Close(); err != nil {
		logger.Warn().Err(err).Msg("Failed to close engine")
	}
}

func newRemoteClient(target string) (*sdk.Client, error) {
	opt := &sdk.Options{BaseURL: target}
	if strings.HasPrefix(target, "quackview://") {
		parsed, err := sdk.ParseDSN(target)
		if err != nil {
			return nil, err
		}
		opt = parsed
	}

	if rootOpts.verbose {
		logger, err := zap.NewDevelopment()
		if err == nil {
			opt.Logger = logger
		}
	}
	return sdk.NewClient(opt)
}

func init() {
	rootCmd.PersistentPreRunE = prepare
}
