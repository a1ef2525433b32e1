package utils

import (
	"strings"

	"github.com/mattn/go-runewidth"
)

// RenderTable lays out rows under a header with space-aligned columns. Cells
// are measured by display width so wide runes keep the grid straight.
func RenderTable(header []string, rows [][]string) string {
	widths := make([]int, len(header))
	for i, h := range header {
		widths[i] = runewidth.StringWidth(h)
	}
	for _, row := range rows {
		for i := 0; i < len(row) && i < len(widths); i++ {
			if w := runewidth.StringWidth(row[i]); w > widths[i] {
				widths[i] = w
			}
		}
	}

	var b strings.Builder
	writeRow := func(cells []string) {
		for i := range widths {
			content := ""
			if i < len(cells) {
				content = cells[i]
			}
			if i > 0 {
				b.WriteString("  ")
			}
			b.WriteString(content)
			if i < len(widths)-1 {
				if pad := widths[i] - runewidth.StringWidth(content); pad > 0 {
					b.WriteString(strings.Repeat(" ", pad))
				}
			}
		}
		b.WriteString("\n")
	}

	writeRow(header)
	sep := make([]string, len(widths))
	for i, w := range widths {
		sep[i] = strings.Repeat("-", w)
	}
	writeRow(sep)
	for _, row := range rows {
		writeRow(row)
	}
	return b.String()
}
