package formatter

import (
	"fmt"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/dbscout/dbscout/internal/engine"
	"github.com/dbscout/dbscout/internal/store"
)

const maxCellLen = 120

// Formatter renders engine results for the terminal
type Formatter struct{}

// NewFormatter creates a new formatter instance
func NewFormatter() *Formatter {
	return &Formatter{}
}

// FormatTables renders discovered table descriptors
func (f *Formatter) FormatTables(descriptors []engine.TableDescriptor) string {
	if len(descriptors) == 0 {
		return "No tables discovered."
	}

	t := table.NewWriter()
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Table", "Provenance", "Discovered"})

	for _, d := range descriptors {
		t.AppendRow(table.Row{d.Name, string(d.Provenance), d.DiscoveredAt.Format("2006-01-02 15:04:05")})
	}

	heuristic := 0

	for _, d := range descriptors {
		if d.Provenance == engine.ProvenanceHeuristic {
			heuristic++
		}
	}

	out := t.Render()
	if heuristic > 0 {
		out += fmt.Sprintf(
			"\n%d table(s) are heuristic suggestions; introspection was unavailable.",
			heuristic,
		)
	}

	return out
}

// FormatProfiles renders a table's column profiles
func (f *Formatter) FormatProfiles(profiles []engine.ColumnProfile) string {
	if len(profiles) == 0 {
		return "No columns profiled."
	}

	t := table.NewWriter()
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Column", "Type", "Searchable", "Samples"})

	noData := false

	for _, p := range profiles {
		if p.NoData {
			noData = true
		}

		t.AppendRow(table.Row{
			p.Column,
			string(p.InferredType),
			p.TextSearchable,
			truncate(strings.Join(p.SampleValues, ", "), maxCellLen),
		})
	}

	out := fmt.Sprintf("Table: %s\n%s", profiles[0].Table, t.Render())
	if noData {
		out += "\nTable is empty: no data available for inference."
	}

	return out
}

// FormatResultSet renders query results with their dynamic column shape
func (f *Formatter) FormatResultSet(result *store.ResultSet) string {
	if len(result.Rows) == 0 {
		return "No rows matched."
	}

	t := table.NewWriter()
	t.SetStyle(table.StyleLight)

	header := make(table.Row, len(result.Columns))
	for i, col := range result.Columns {
		header[i] = col
	}

	t.AppendHeader(header)

	for _, rec := range result.Rows {
		row := make(table.Row, len(result.Columns))
		for i, col := range result.Columns {
			row[i] = truncate(rec[col].String(), maxCellLen)
		}

		t.AppendRow(row)
	}

	return fmt.Sprintf("%s\n%d row(s)", t.Render(), len(result.Rows))
}

// FormatSearch renders an aggregated cross-table search result
func (f *Formatter) FormatSearch(agg *engine.AggregatedSearchResult) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "Search results for %q\n\n", agg.Term)

	for _, result := range agg.PerTable {
		switch {
		case result.Err != nil:
			fmt.Fprintf(&sb, "  %s: FAILED (%v)\n", result.Table, result.Err)
		case len(result.Rows) == 0:
			fmt.Fprintf(&sb, "  %s: no matches\n", result.Table)
		default:
			fmt.Fprintf(&sb, "  %s: %d match(es) in columns [%s]\n",
				result.Table, len(result.Rows), strings.Join(result.MatchedColumns, ", "))
		}
	}

	fmt.Fprintf(&sb, "\nTotal matches: %d, unique rows: %d\n",
		agg.TotalMatches, len(agg.DedupedRows))

	if len(agg.DedupedRows) > 0 {
		t := table.NewWriter()
		t.SetStyle(table.StyleLight)

		// Column shape can differ per table; use the union in first-seen order.
		var columns []string

		seen := make(map[string]bool)

		for _, rec := range agg.DedupedRows {
			for _, col := range rec.Columns() {
				if !seen[col] {
					seen[col] = true

					columns = append(columns, col)
				}
			}
		}

		header := make(table.Row, len(columns))
		for i, col := range columns {
			header[i] = col
		}

		t.AppendHeader(header)

		for _, rec := range agg.DedupedRows {
			row := make(table.Row, len(columns))

			for i, col := range columns {
				if v, ok := rec[col]; ok {
					row[i] = truncate(v.String(), maxCellLen)
				} else {
					row[i] = ""
				}
			}

			t.AppendRow(row)
		}

		sb.WriteString("\n")
		sb.WriteString(t.Render())
		sb.WriteString("\n")
	}

	return sb.String()
}

// truncate shortens text for display
func truncate(text string, limit int) string {
	if len(text) <= limit {
		return text
	}

	return text[:limit] + "..."
}
