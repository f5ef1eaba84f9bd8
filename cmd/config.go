package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dbscout/dbscout/internal/errors"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show the active configuration",
	Long: `Print the effective configuration after merging defaults, the config file,
and environment variables.`,
	RunE: runConfig,
}

func init() {
	rootCmd.AddCommand(configCmd)
}

func runConfig(cmd *cobra.Command, _ []string) error {
	cfg := getConfigFromContext(cmd.Context())
	if cfg == nil {
		return errors.New(errors.ErrTypeConfig, "configuration not loaded")
	}

	fmt.Println("Store:")
	fmt.Printf("  Driver:             %s\n", cfg.Store.Driver)
	fmt.Printf("  DSN:                %s\n", cfg.Store.DSN)
	fmt.Printf("  Max Open Conns:     %d\n", cfg.Store.MaxOpenConns)
	fmt.Printf("  Max Idle Conns:     %d\n", cfg.Store.MaxIdleConns)
	fmt.Printf("  Query Timeout:      %s\n", cfg.Store.QueryTimeout)
	fmt.Println()
	fmt.Println("Engine:")
	fmt.Printf("  Sample Size:        %d\n", cfg.Engine.SampleSize)
	fmt.Printf("  Max Limit:          %d\n", cfg.Engine.MaxLimit)
	fmt.Printf("  Default Limit:      %d\n", cfg.Engine.DefaultLimit)
	fmt.Printf("  Search Concurrency: %d\n", cfg.Engine.SearchConcurrency)
	fmt.Printf("  Profile Cache TTL:  %s\n", cfg.Engine.ProfileCacheTTL)
	fmt.Printf("  Search Timeout:     %s\n", cfg.Engine.OverallSearchTimeout)
	fmt.Printf("  Text Min Length:    %d\n", cfg.Engine.TextSearchLengthThreshold)
	fmt.Println()
	fmt.Println("Discovery:")
	fmt.Printf("  Suggestions File:   %s\n", valueOrNone(cfg.Discovery.SuggestionsFile))
	fmt.Printf("  Inline Suggestions: %d\n", len(cfg.Discovery.Suggestions))
	fmt.Println()
	fmt.Println("Logging:")
	fmt.Printf("  Level:              %s\n", cfg.Logging.Level)
	fmt.Printf("  Format:             %s\n", cfg.Logging.Format)
	fmt.Printf("  Output:             %s\n", cfg.Logging.Output)
	fmt.Printf("  File:               %s\n", valueOrNone(cfg.Logging.File))

	return nil
}

func valueOrNone(s string) string {
	if s == "" {
		return "(none)"
	}

	return s
}
