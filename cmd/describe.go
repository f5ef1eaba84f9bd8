package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dbscout/dbscout/internal/formatter"
)

var describeCmd = &cobra.Command{
	Use:   "describe <table>",
	Short: "Profile a table's columns from sampled data",
	Long: `Sample a bounded number of rows from the table and infer each column's
semantic type and text-searchability. Profiles reflect only the sample taken
now; an empty table yields unknown-typed columns rather than an error.`,
	Args: cobra.ExactArgs(1),
	RunE: runDescribe,
}

var describeFresh bool

func init() {
	describeCmd.Flags().BoolVar(&describeFresh, "fresh", false, "Bypass the profile cache")

	rootCmd.AddCommand(describeCmd)
}

func runDescribe(cmd *cobra.Command, args []string) error {
	eng, closer, err := openEngine(cmd)
	if err != nil {
		return err
	}
	defer closer()

	table := args[0]

	if describeFresh {
		eng.InvalidateProfile(table)
	}

	profiles, err := eng.DescribeTable(cmd.Context(), table)
	if err != nil {
		return err
	}

	fmt.Println(formatter.NewFormatter().FormatProfiles(profiles))

	return nil
}
