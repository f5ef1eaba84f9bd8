package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dbscout/dbscout/internal/engine"
	"github.com/dbscout/dbscout/internal/errors"
	"github.com/dbscout/dbscout/internal/formatter"
)

var (
	querySearchColumn string
	querySearchTerm   string
	queryFilters      []string
	queryRanges       []string
	queryOrderBy      string
	queryDesc         bool
	queryLimit        int
)

var queryCmd = &cobra.Command{
	Use:   "query <table>",
	Short: "Run a filtered, sorted, limited read against one table",
	Long: `Query a single table with a declarative filter specification. Columns are
validated against the table's current profile before anything executes.

Examples:
  dbscout query posts --search-column title --search-term "bra review"
  dbscout query posts --filter subreddit=ABraThatFits --limit 5
  dbscout query posts --range "score=10.." --order-by score --desc`,
	Args: cobra.ExactArgs(1),
	RunE: runQuery,
}

func init() {
	queryCmd.Flags().StringVar(&querySearchColumn, "search-column", "", "Column for substring search")
	queryCmd.Flags().StringVar(&querySearchTerm, "search-term", "", "Term for substring search")
	queryCmd.Flags().StringArrayVar(&queryFilters, "filter", nil, "Exact filter, column=value (repeatable)")
	queryCmd.Flags().StringArrayVar(&queryRanges, "range", nil, "Range filter, column=min..max (repeatable, either bound optional)")
	queryCmd.Flags().StringVar(&queryOrderBy, "order-by", "", "Column to sort by")
	queryCmd.Flags().BoolVar(&queryDesc, "desc", false, "Sort descending")
	queryCmd.Flags().IntVar(&queryLimit, "limit", 0, "Maximum rows (0 uses the configured default)")

	rootCmd.AddCommand(queryCmd)
}

func runQuery(cmd *cobra.Command, args []string) error {
	eng, closer, err := openEngine(cmd)
	if err != nil {
		return err
	}
	defer closer()

	spec := engine.QuerySpec{
		Table:        args[0],
		SearchColumn: querySearchColumn,
		SearchTerm:   querySearchTerm,
		OrderBy:      queryOrderBy,
		Limit:        queryLimit,
	}

	if queryDesc {
		spec.Direction = engine.Desc
	}

	if len(queryFilters) > 0 {
		spec.ExactFilters = make(map[string]interface{}, len(queryFilters))

		for _, raw := range queryFilters {
			col, value, err := splitFilter(raw)
			if err != nil {
				return err
			}

			spec.ExactFilters[col] = parseScalar(value)
		}
	}

	if len(queryRanges) > 0 {
		spec.RangeFilters = make(map[string]engine.RangeFilter, len(queryRanges))

		for _, raw := range queryRanges {
			col, rf, err := splitRange(raw)
			if err != nil {
				return err
			}

			spec.RangeFilters[col] = rf
		}
	}

	result, err := eng.Query(cmd.Context(), spec)
	if err != nil {
		return err
	}

	fmt.Println(formatter.NewFormatter().FormatResultSet(result))

	return nil
}

// splitFilter parses a column=value pair
func splitFilter(raw string) (string, string, error) {
	col, value, found := strings.Cut(raw, "=")
	if !found || col == "" {
		return "", "", errors.Newf(
			errors.ErrTypeValidation,
			"invalid filter %q: expected column=value", raw,
		)
	}

	return col, value, nil
}

// splitRange parses a column=min..max pair; either bound may be omitted
func splitRange(raw string) (string, engine.RangeFilter, error) {
	var rf engine.RangeFilter

	col, bounds, found := strings.Cut(raw, "=")
	if !found || col == "" {
		return "", rf, errors.Newf(
			errors.ErrTypeValidation,
			"invalid range %q: expected column=min..max", raw,
		)
	}

	minPart, maxPart, found := strings.Cut(bounds, "..")
	if !found || (minPart == "" && maxPart == "") {
		return "", rf, errors.Newf(
			errors.ErrTypeValidation,
			"invalid range %q: expected column=min..max with at least one bound", raw,
		)
	}

	if minPart != "" {
		rf.Min = parseScalar(minPart)
	}

	if maxPart != "" {
		rf.Max = parseScalar(maxPart)
	}

	return col, rf, nil
}

// parseScalar converts flag text into the narrowest driver-friendly type so
// numeric comparisons stay numeric.
func parseScalar(s string) interface{} {
	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return i
	}

	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return f
	}

	if s == "true" || s == "false" {
		return s == "true"
	}

	return s
}
