// Package cleaning turns a raw city lifestyle dataset into an analysis-ready
// one: numeric coercion, deduplication, imputation, range clipping and
// synthetic geolocation, followed by an atomic write of the cleaned file.
package cleaning

import (
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"

	"github.com/CityLensHQ/citylens-cli/internal/dataset"
	"github.com/CityLensHQ/citylens-cli/internal/geocode"
)

// missingPlaceholder fills text cells that are still empty after loading.
const missingPlaceholder = "Unknown"

// Options tunes one cleaning run.
type Options struct {
	// Progress receives staged one-line updates; nil silences them.
	Progress io.Writer
}

// Run executes the full pipeline on inputPath and writes the cleaned dataset
// to outputPath. Stages run strictly in order; the first failure aborts the
// run and no output file is written.
func Run(inputPath, outputPath string, opt Options) (*Report, error) {
	progress := opt.Progress
	if progress == nil {
		progress = io.Discard
	}

	fmt.Fprintf(progress, "→ Loading dataset from %s\n", inputPath)
	d, err := dataset.ReadFile(inputPath)
	if err != nil {
		return nil, err
	}
	fmt.Fprintf(progress, "✓ %d rows loaded\n", d.Rows())

	d.CoerceNumeric(dataset.NumericColumns)
	fmt.Fprintln(progress, "✓ Numeric columns normalized")

	duplicates, err := d.KeepFirst(dataset.ColCityName, dataset.ColCountry)
	if err != nil {
		return nil, fmt.Errorf("deduplicate: %w", err)
	}
	if duplicates > 0 {
		fmt.Fprintf(progress, "✓ %d duplicate rows removed\n", duplicates)
	} else {
		fmt.Fprintln(progress, "✓ No duplicates found")
	}

	missing := imputeMissing(d, progress)
	outliers := clipRanges(d, progress)

	derived, err := EnsureGeolocation(d)
	if err != nil {
		return nil, fmt.Errorf("ensure geolocation: %w", err)
	}
	if derived {
		fmt.Fprintln(progress, "→ Derived synthetic coordinates per region")
	} else {
		fmt.Fprintln(progress, "✓ Coordinates already present")
	}

	stats, err := summarize(d)
	if err != nil {
		return nil, fmt.Errorf("summarize cleaned dataset: %w", err)
	}

	if err := d.WriteFile(outputPath); err != nil {
		return nil, fmt.Errorf("write cleaned dataset: %w", err)
	}
	fmt.Fprintf(progress, "✓ Cleaned dataset written to %s\n", outputPath)

	return &Report{
		RunID:             uuid.NewString(),
		GeneratedAt:       time.Now(),
		Input:             inputPath,
		Output:            outputPath,
		DuplicatesRemoved: duplicates,
		MissingValues:     missing,
		OutliersFound:     outliers,
		FinalStats:        stats,
	}, nil
}

// imputeMissing fills every column that still has missing cells: numeric
// columns take their own median, text columns take the placeholder. Returns
// per-column counts of filled cells.
func imputeMissing(d *dataset.Dataset, progress io.Writer) map[string]int {
	filled := map[string]int{}
	for _, name := range d.ColumnNames() {
		n := d.NullCount(name)
		if n == 0 {
			continue
		}
		filled[name] = n
		if d.IsNumeric(name) {
			vals, _ := d.NonNull(name)
			median := dataset.Median(vals)
			d.FillNumericNulls(name, median)
			fmt.Fprintf(progress, "✓ %d missing values in %q filled with the median (%.2f)\n", n, name, median)
		} else {
			d.FillTextNulls(name, missingPlaceholder)
			fmt.Fprintf(progress, "✓ %d missing values in %q filled with %q\n", n, name, missingPlaceholder)
		}
	}
	if len(filled) == 0 {
		fmt.Fprintln(progress, "✓ No missing values detected")
	}
	return filled
}

// clipRanges counts values outside each metric's valid range, then clamps
// them to the bounds. Rows are never dropped for being out of range.
func clipRanges(d *dataset.Dataset, progress io.Writer) map[string]int {
	outliers := map[string]int{}
	for _, name := range dataset.MetricColumns {
		if !d.IsNumeric(name) {
			continue
		}
		r := dataset.ValidRanges[name]
		n := d.Clip(name, r.Min, r.Max)
		if n > 0 {
			outliers[name] = n
			fmt.Fprintf(progress, "⚠ %d values outside %g-%g in %q, clipped\n", n, r.Min, r.Max, name)
		}
	}
	if len(outliers) == 0 {
		fmt.Fprintln(progress, "✓ All numeric values inside their expected ranges")
	}
	return outliers
}

// EnsureGeolocation derives latitude and longitude for every row when either
// column is absent, seeding the geocoder with the city and country identity.
// Datasets already carrying both columns are left untouched. It reports
// whether coordinates were derived.
func EnsureGeolocation(d *dataset.Dataset) (bool, error) {
	if d.Has(dataset.ColLatitude) && d.Has(dataset.ColLongitude) {
		return false, nil
	}
	cities, _, err := d.TextValues(dataset.ColCityName)
	if err != nil {
		return false, err
	}
	countries, _, err := d.TextValues(dataset.ColCountry)
	if err != nil {
		return false, err
	}
	lats := make([]float64, d.Rows())
	lons := make([]float64, d.Rows())
	for i := range lats {
		seed := cities[i] + "-" + countries[i]
		lats[i], lons[i] = geocode.PointFor(seed, countries[i])
	}
	d.PutNumeric(dataset.ColLatitude, lats)
	d.PutNumeric(dataset.ColLongitude, lons)
	return true, nil
}

func summarize(d *dataset.Dataset) (FinalStats, error) {
	countries, err := d.Distinct(dataset.ColCountry)
	if err != nil {
		return FinalStats{}, err
	}
	cities, err := d.Distinct(dataset.ColCityName)
	if err != nil {
		return FinalStats{}, err
	}
	stats := FinalStats{
		TotalRows:    d.Rows(),
		TotalColumns: len(d.ColumnNames()),
		Countries:    len(countries),
		Cities:       len(cities),
	}
	for _, name := range d.ColumnNames() {
		if !d.IsNumeric(name) {
			continue
		}
		vals, err := d.NonNull(name)
		if err != nil {
			return FinalStats{}, err
		}
		stats.NumericSummary = append(stats.NumericSummary, ColumnSummary{
			Column:   name,
			Describe: dataset.DescribeValues(vals),
		})
	}
	return stats, nil
}
