package cleaning

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/CityLensHQ/citylens-cli/internal/dataset"
	"github.com/CityLensHQ/citylens-cli/internal/utils"
)

// ColumnSummary pairs a numeric column with its eight-number summary.
type ColumnSummary struct {
	Column string `json:"column"`
	dataset.Describe
}

// FinalStats describes the cleaned dataset as persisted.
type FinalStats struct {
	TotalRows      int             `json:"total_rows"`
	TotalColumns   int             `json:"total_columns"`
	Countries      int             `json:"countries"`
	Cities         int             `json:"cities"`
	NumericSummary []ColumnSummary `json:"numeric_summary"`
}

// Report captures what one cleaning run changed and how the output looks.
type Report struct {
	RunID             string         `json:"run_id"`
	GeneratedAt       time.Time      `json:"generated_at"`
	Input             string         `json:"input"`
	Output            string         `json:"output"`
	DuplicatesRemoved int            `json:"duplicates_removed"`
	MissingValues     map[string]int `json:"missing_values"`
	OutliersFound     map[string]int `json:"outliers_found"`
	FinalStats        FinalStats     `json:"final_statistics"`
}

// Save writes the report as indented JSON, creating parent directories.
func (r *Report) Save(path string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := utils.EnsureDir(dir); err != nil {
			return fmt.Errorf("create report directory: %w", err)
		}
	}
	data, err := utils.PrettyJSON(r)
	if err != nil {
		return err
	}
	return utils.SafeWriteFile(path, data)
}

// Render formats the report as sectioned text for terminal output.
func (r *Report) Render() string {
	var b strings.Builder
	b.WriteString("[CLEANING SUMMARY]\n")
	b.WriteString(fmt.Sprintf("Run: %s\n", r.RunID))
	b.WriteString(fmt.Sprintf("Input: %s\n", r.Input))
	b.WriteString(fmt.Sprintf("Output: %s\n", r.Output))
	b.WriteString(fmt.Sprintf("Rows: %d | Columns: %d\n", r.FinalStats.TotalRows, r.FinalStats.TotalColumns))
	b.WriteString(fmt.Sprintf("Countries: %d | Cities: %d\n", r.FinalStats.Countries, r.FinalStats.Cities))

	b.WriteString("\n[DUPLICATES]\n")
	b.WriteString(fmt.Sprintf("Removed: %d\n", r.DuplicatesRemoved))

	b.WriteString("\n[MISSING VALUES]\n")
	writeCounts(&b, r.MissingValues, "filled")

	b.WriteString("\n[OUT-OF-RANGE VALUES]\n")
	writeCounts(&b, r.OutliersFound, "clipped")

	b.WriteString("\n[NUMERIC SUMMARY]\n")
	if len(r.FinalStats.NumericSummary) == 0 {
		b.WriteString("No numeric columns\n")
	} else {
		header := []string{"Column", "Count", "Mean", "Std", "Min", "25%", "50%", "75%", "Max"}
		rows := make([][]string, 0, len(r.FinalStats.NumericSummary))
		for _, c := range r.FinalStats.NumericSummary {
			rows = append(rows, []string{
				c.Column,
				fmt.Sprintf("%.0f", c.Count),
				fmt.Sprintf("%.2f", c.Mean),
				fmt.Sprintf("%.2f", c.Std),
				fmt.Sprintf("%.2f", c.Min),
				fmt.Sprintf("%.2f", c.P25),
				fmt.Sprintf("%.2f", c.P50),
				fmt.Sprintf("%.2f", c.P75),
				fmt.Sprintf("%.2f", c.Max),
			})
		}
		b.WriteString(utils.RenderTable(header, rows))
	}
	return b.String()
}

func writeCounts(b *strings.Builder, counts map[string]int, verb string) {
	if len(counts) == 0 {
		b.WriteString("None\n")
		return
	}
	cols := make([]string, 0, len(counts))
	for c := range counts {
		cols = append(cols, c)
	}
	sort.Strings(cols)
	for _, c := range cols {
		b.WriteString(fmt.Sprintf("- %s: %d %s\n", c, counts[c], verb))
	}
}
