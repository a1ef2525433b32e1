package stats

import "github.com/CityLensHQ/citylens-cli/internal/dataset"

// Filters narrows a dataset before querying. Empty lists and nil bounds are
// ignored; a zero bound is applied. Rows missing a bounded value never match.
type Filters struct {
	Countries    []string
	Cities       []string
	MinHappiness *float64
	MaxHappiness *float64
	MinIncome    *float64
	MaxIncome    *float64
}

// FilteredView returns a new engine over the rows matching every set filter.
// The receiver keeps serving the full dataset; views are independent.
func (e *Engine) FilteredView(f Filters) (*Engine, error) {
	keep := make([]bool, e.d.Rows())
	for i := range keep {
		keep[i] = true
	}

	if len(f.Countries) > 0 {
		countries, null, err := e.d.TextValues(dataset.ColCountry)
		if err != nil {
			return nil, err
		}
		want := toSet(f.Countries)
		for i := range keep {
			if null[i] || !want[countries[i]] {
				keep[i] = false
			}
		}
	}
	if len(f.Cities) > 0 {
		cities, null, err := e.d.TextValues(dataset.ColCityName)
		if err != nil {
			return nil, err
		}
		want := toSet(f.Cities)
		for i := range keep {
			if null[i] || !want[cities[i]] {
				keep[i] = false
			}
		}
	}
	if f.MinHappiness != nil || f.MaxHappiness != nil {
		vals, null, err := e.d.NumericValues(dataset.ColHappinessScore)
		if err != nil {
			return nil, err
		}
		applyBounds(keep, vals, null, f.MinHappiness, f.MaxHappiness)
	}
	if f.MinIncome != nil || f.MaxIncome != nil {
		vals, null, err := e.d.NumericValues(dataset.ColAvgIncome)
		if err != nil {
			return nil, err
		}
		applyBounds(keep, vals, null, f.MinIncome, f.MaxIncome)
	}

	rows := make([]int, 0, e.d.Rows())
	for i, ok := range keep {
		if ok {
			rows = append(rows, i)
		}
	}
	return &Engine{d: e.d.Select(rows)}, nil
}

func toSet(items []string) map[string]bool {
	set := make(map[string]bool, len(items))
	for _, it := range items {
		set[it] = true
	}
	return set
}

// applyBounds clears keep for rows whose value is missing or out of bounds.
func applyBounds(keep []bool, vals []float64, null []bool, min, max *float64) {
	for i := range keep {
		if !keep[i] {
			continue
		}
		if null[i] {
			keep[i] = false
			continue
		}
		if min != nil && vals[i] < *min {
			keep[i] = false
		}
		if max != nil && vals[i] > *max {
			keep[i] = false
		}
	}
}
