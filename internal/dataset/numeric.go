package dataset

import (
	"math"
	"strconv"
	"strings"
)

// parseNumber parses a cell as a float, tolerating common locale separators
// ("1.234,5", "1,234.5", non-breaking spaces). Non-finite results are
// rejected so a literal "NaN" or "Inf" cell counts as missing, not a value.
func parseNumber(s string) (float64, bool) {
	raw := strings.TrimSpace(s)
	if raw == "" {
		return 0, false
	}
	raw = strings.ReplaceAll(raw, "\u00A0", " ")
	raw = strings.TrimSpace(raw)
	// Decide decimal separator: the rightmost of ',' and '.' wins.
	var dec rune
	cpos := strings.LastIndex(raw, ",")
	dpos := strings.LastIndex(raw, ".")
	if cpos >= 0 && dpos >= 0 {
		if cpos > dpos {
			dec = ','
		} else {
			dec = '.'
		}
	} else if cpos >= 0 {
		dec = ','
	} else {
		dec = '.'
	}
	// Strip everything that could be a thousands separator.
	for _, sep := range []rune{',', '.', ' '} {
		if sep != dec {
			raw = strings.ReplaceAll(raw, string(sep), "")
		}
	}
	if dec != '.' {
		raw = strings.ReplaceAll(raw, string(dec), ".")
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// formatNumber renders a float with the shortest representation that parses
// back to the same value, keeping cleaned files stable across repeated runs.
func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
