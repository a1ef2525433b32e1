// Package stats answers read-only analytical queries over a cleaned city
// lifestyle dataset: scalar overviews, per-country aggregates, rankings,
// correlations and map projections. Every operation is a pure read; filtered
// views are separate engines, so a shared engine stays safe under concurrent
// queries.
package stats

import (
	"fmt"
	"math"
	"sort"

	"github.com/CityLensHQ/citylens-cli/internal/cleaning"
	"github.com/CityLensHQ/citylens-cli/internal/dataset"
)

// DefaultTopN bounds rankings and the default comparison set.
const DefaultTopN = 10

// Engine serves queries over one immutable dataset.
type Engine struct {
	d *dataset.Dataset
}

// Load reads the dataset at path and prepares it for querying.
func Load(path string) (*Engine, error) {
	d, err := dataset.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return New(d)
}

// New wraps an in-memory dataset. The same defensive preparation the cleaner
// applies runs here too, so an engine pointed at a raw file still answers:
// coordinates are derived when absent and numeric columns are coerced.
func New(d *dataset.Dataset) (*Engine, error) {
	if _, err := cleaning.EnsureGeolocation(d); err != nil {
		return nil, fmt.Errorf("prepare dataset: %w", err)
	}
	d.CoerceNumeric(dataset.NumericColumns)
	return &Engine{d: d}, nil
}

// Rows reports how many records the engine serves.
func (e *Engine) Rows() int { return e.d.Rows() }

// countryGroups returns the distinct countries in alphabetical order along
// with the row indices belonging to each. Rows with a missing country are
// not grouped.
func (e *Engine) countryGroups() ([]string, map[string][]int, error) {
	countries, null, err := e.d.TextValues(dataset.ColCountry)
	if err != nil {
		return nil, nil, err
	}
	groups := make(map[string][]int)
	names := []string{}
	for i, c := range countries {
		if null[i] {
			continue
		}
		if _, ok := groups[c]; !ok {
			names = append(names, c)
		}
		groups[c] = append(groups[c], i)
	}
	sort.Strings(names)
	return names, groups, nil
}

// groupValues collects the non-missing values of a column at the given rows.
func groupValues(vals []float64, null []bool, rows []int) []float64 {
	out := make([]float64, 0, len(rows))
	for _, r := range rows {
		if null[r] {
			continue
		}
		out = append(out, vals[r])
	}
	return out
}

// valueAt projects a single cell, rendering missing cells as 0 so responses
// stay JSON-encodable.
func valueAt(vals []float64, null []bool, i int) float64 {
	if null[i] {
		return 0
	}
	return vals[i]
}

// pearson computes the Pearson correlation over pairwise complete rows.
// Degenerate inputs (no overlap, zero variance) yield 0 rather than NaN.
func pearson(x, y []float64, xNull, yNull []bool) float64 {
	n := 0
	var sx, sy float64
	for i := range x {
		if xNull[i] || yNull[i] {
			continue
		}
		n++
		sx += x[i]
		sy += y[i]
	}
	if n == 0 {
		return 0
	}
	mx, my := sx/float64(n), sy/float64(n)
	var num, dx2, dy2 float64
	for i := range x {
		if xNull[i] || yNull[i] {
			continue
		}
		dx, dy := x[i]-mx, y[i]-my
		num += dx * dy
		dx2 += dx * dx
		dy2 += dy * dy
	}
	if dx2 == 0 || dy2 == 0 {
		return 0
	}
	r := num / math.Sqrt(dx2*dy2)
	if r > 1 {
		return 1
	}
	if r < -1 {
		return -1
	}
	return r
}
