package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	insertSets   []string
	updateSets   []string
	updateWheres []string
	deleteWheres []string
)

var insertCmd = &cobra.Command{
	Use:   "insert <table>",
	Short: "Insert a row into a table",
	Long: `Insert a single row built from --set pairs. Values are parsed to the
narrowest matching type before binding.

Example:
  dbscout insert posts --set title="New post" --set score=1`,
	Args: cobra.ExactArgs(1),
	RunE: runInsert,
}

var updateCmd = &cobra.Command{
	Use:   "update <table>",
	Short: "Update rows matching exact filters",
	Long: `Update rows selected by --where pairs, setting the --set pairs. With no
--where pairs every row in the table is updated.

Example:
  dbscout update posts --set score=0 --where subreddit=test`,
	Args: cobra.ExactArgs(1),
	RunE: runUpdate,
}

var deleteCmd = &cobra.Command{
	Use:   "delete <table>",
	Short: "Delete rows matching exact filters",
	Long: `Delete rows selected by --where pairs. At least one --where pair is
required; unfiltered deletes are refused.

Example:
  dbscout delete posts --where id=42`,
	Args: cobra.ExactArgs(1),
	RunE: runDelete,
}

func init() {
	insertCmd.Flags().StringArrayVar(&insertSets, "set", nil, "Column value to insert, column=value (repeatable)")

	updateCmd.Flags().StringArrayVar(&updateSets, "set", nil, "Column value to assign, column=value (repeatable)")
	updateCmd.Flags().StringArrayVar(&updateWheres, "where", nil, "Exact filter, column=value (repeatable)")

	deleteCmd.Flags().StringArrayVar(&deleteWheres, "where", nil, "Exact filter, column=value (repeatable)")

	rootCmd.AddCommand(insertCmd)
	rootCmd.AddCommand(updateCmd)
	rootCmd.AddCommand(deleteCmd)
}

func runInsert(cmd *cobra.Command, args []string) error {
	eng, closer, err := openEngine(cmd)
	if err != nil {
		return err
	}
	defer closer()

	values, err := parsePairs(insertSets)
	if err != nil {
		return err
	}

	if err := eng.Insert(cmd.Context(), args[0], values); err != nil {
		return err
	}

	fmt.Printf("Inserted 1 row into %s\n", args[0])

	return nil
}

func runUpdate(cmd *cobra.Command, args []string) error {
	eng, closer, err := openEngine(cmd)
	if err != nil {
		return err
	}
	defer closer()

	values, err := parsePairs(updateSets)
	if err != nil {
		return err
	}

	filters, err := parsePairs(updateWheres)
	if err != nil {
		return err
	}

	affected, err := eng.Update(cmd.Context(), args[0], values, filters)
	if err != nil {
		return err
	}

	fmt.Printf("Updated %d row(s) in %s\n", affected, args[0])

	return nil
}

func runDelete(cmd *cobra.Command, args []string) error {
	eng, closer, err := openEngine(cmd)
	if err != nil {
		return err
	}
	defer closer()

	filters, err := parsePairs(deleteWheres)
	if err != nil {
		return err
	}

	affected, err := eng.Delete(cmd.Context(), args[0], filters)
	if err != nil {
		return err
	}

	fmt.Printf("Deleted %d row(s) from %s\n", affected, args[0])

	return nil
}

func parsePairs(raw []string) (map[string]interface{}, error) {
	if len(raw) == 0 {
		return nil, nil
	}

	pairs := make(map[string]interface{}, len(raw))

	for _, item := range raw {
		col, value, err := splitFilter(item)
		if err != nil {
			return nil, err
		}

		pairs[col] = parseScalar(value)
	}

	return pairs, nil
}
