package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/briandowns/spinner"
	"github.com/spf13/cobra"

	"github.com/dbscout/dbscout/internal/formatter"
)

var (
	searchTables        []string
	searchLimitPerTable int
)

var searchCmd = &cobra.Command{
	Use:   "search <term>",
	Short: "Search for a term across multiple tables at once",
	Long: `Fan a search term out over several tables concurrently. Each table's
text-searchable columns are queried, matches are merged in request order and
deduplicated. A failing table is reported but never aborts its siblings.

Examples:
  dbscout search "Knix" --tables posts,comments
  dbscout search "bra review" --limit-per-table 5`,
	Args: cobra.ExactArgs(1),
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().StringSliceVar(&searchTables, "tables", nil, "Tables to search (defaults to all discoverable)")
	searchCmd.Flags().IntVar(&searchLimitPerTable, "limit-per-table", 10, "Maximum matches per table")

	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	eng, closer, err := openEngine(cmd)
	if err != nil {
		return err
	}
	defer closer()

	spin := spinner.New(spinner.CharSets[14], 100*time.Millisecond, spinner.WithWriter(os.Stderr))
	spin.Suffix = " searching..."
	spin.Start()

	result, err := eng.SearchAcross(cmd.Context(), args[0], searchTables, searchLimitPerTable)

	spin.Stop()

	if err != nil {
		return err
	}

	fmt.Println(formatter.NewFormatter().FormatSearch(result))

	return nil
}
