package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dbscout/dbscout/internal/formatter"
)

var tablesCmd = &cobra.Command{
	Use:   "tables",
	Short: "List tables discovered in the datastore",
	Long: `Enumerate the datastore's tables via its metadata catalog. When the store
cannot serve introspection (missing privilege or capability), the configured
heuristic suggestion list is shown instead, tagged accordingly.`,
	RunE: runTables,
}

func init() {
	rootCmd.AddCommand(tablesCmd)
}

func runTables(cmd *cobra.Command, _ []string) error {
	eng, closer, err := openEngine(cmd)
	if err != nil {
		return err
	}
	defer closer()

	descriptors, err := eng.ListTables(cmd.Context())
	if err != nil {
		return err
	}

	fmt.Println(formatter.NewFormatter().FormatTables(descriptors))

	return nil
}
