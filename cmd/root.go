package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/dbscout/dbscout/internal/config"
	"github.com/dbscout/dbscout/internal/engine"
	"github.com/dbscout/dbscout/internal/errors"
	"github.com/dbscout/dbscout/internal/logging"
	"github.com/dbscout/dbscout/internal/store"
)

type contextKey string

const configContextKey contextKey = "dbscout-config"

var (
	flagDriver   string
	flagDSN      string
	flagLogLevel string
)

var rootCmd = &cobra.Command{
	Use:   "dbscout",
	Short: "Discover and query relational datastores with no schema knowledge",
	Long: `dbscout connects to a relational datastore it knows nothing about,
discovers its tables, infers column types from sampled data, and runs safe
parameterized queries and cross-table searches against them. No schema
definitions are required; everything is learned from the data.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		overrides := map[string]interface{}{
			"driver":    flagDriver,
			"dsn":       flagDSN,
			"log-level": flagLogLevel,
		}

		cfg, err := config.LoadConfigWithOverrides(overrides)
		if err != nil {
			logging.SetupFallbackLogger()
			return errors.Wrap(err, errors.ErrTypeConfig, "failed to load configuration")
		}

		cfg.ExpandAllPaths()

		if err := cfg.EnsureDirectories(); err != nil {
			return errors.Wrap(err, errors.ErrTypeConfig, "failed to prepare directories")
		}

		if err := logging.InitializeLogger(cfg.Logging); err != nil {
			logging.SetupFallbackLogger()
		}

		cmd.SetContext(context.WithValue(cmd.Context(), configContextKey, cfg))

		return nil
	},
}

// Execute runs the root command
func Execute() error {
	ctx := context.Background()
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagDriver, "driver", "", "Store driver (duckdb, sqlite, mysql)")
	rootCmd.PersistentFlags().StringVar(&flagDSN, "dsn", "", "Store connection string or database path")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "", "Log level (debug, info, warn, error)")
}

// getConfigFromContext retrieves the loaded configuration for a command
func getConfigFromContext(ctx context.Context) *config.Config {
	if cfg, ok := ctx.Value(configContextKey).(*config.Config); ok {
		return cfg
	}

	return nil
}

// openEngine builds the engine for a command, returning a closer for the
// underlying store.
func openEngine(cmd *cobra.Command) (*engine.Engine, func(), error) {
	cfg := getConfigFromContext(cmd.Context())
	if cfg == nil {
		return nil, nil, errors.New(errors.ErrTypeConfig, "configuration not loaded")
	}

	logger := logging.GetLogger()

	st, err := store.NewSQLStore(cfg.Store)
	if err != nil {
		return nil, nil, err
	}

	suggestions, err := cfg.TableSuggestions()
	if err != nil {
		logger.WithError(err).Warn("failed to load table suggestions, using inline list")

		suggestions = cfg.Discovery.Suggestions
	}

	eng := engine.New(st, cfg, suggestions, logger)

	return eng, func() { _ = st.Close() }, nil
}
