package cleaning

import (
	"bytes"
	"encoding/json"
	"errors"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/CityLensHQ/citylens-cli/internal/dataset"
	"github.com/CityLensHQ/citylens-cli/internal/geocode"
)

var rawRows = []string{
	"city_name,country,population_density,avg_income,internet_penetration,avg_rent,air_quality_index,public_transport_score,happiness_score,green_space_ratio",
	"Paris,France,20000,45000,92,1800,45,88,7.2,22",
	"Paris,France,19000,44000,90,1700,50,85,7.0,21",
	"Osaka,Japan,12000,41000,95,1200,38,93,6.8,18",
	"Quito,Ecuador,,30000,68,450,55,61,6.1,30",
	"Lagos,Nigeria,abc,22000,40,300,110,45,5.4,12",
	"Bergen,Norway,5000,52000,98,1400,20,77,15,45",
}

func writeFixture(t *testing.T, rows []string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "raw.csv")
	if err := os.WriteFile(path, []byte(strings.Join(rows, "\n")), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	return path
}

func TestRunCleansDataset(t *testing.T) {
	input := writeFixture(t, rawRows)
	output := filepath.Join(filepath.Dir(input), "cleaned", "cities.csv")

	rep, err := Run(input, output, Options{})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if rep.RunID == "" {
		t.Fatalf("report should carry a run id")
	}
	if rep.DuplicatesRemoved != 1 {
		t.Fatalf("duplicates removed = %d, want 1", rep.DuplicatesRemoved)
	}
	if len(rep.MissingValues) != 1 || rep.MissingValues["population_density"] != 2 {
		t.Fatalf("missing values = %#v", rep.MissingValues)
	}
	if len(rep.OutliersFound) != 1 || rep.OutliersFound["happiness_score"] != 1 {
		t.Fatalf("outliers = %#v", rep.OutliersFound)
	}
	if rep.FinalStats.TotalRows != 5 || rep.FinalStats.TotalColumns != 12 {
		t.Fatalf("final shape = %d rows %d columns", rep.FinalStats.TotalRows, rep.FinalStats.TotalColumns)
	}
	if rep.FinalStats.Countries != 5 || rep.FinalStats.Cities != 5 {
		t.Fatalf("final counts = %d countries %d cities", rep.FinalStats.Countries, rep.FinalStats.Cities)
	}
	if len(rep.FinalStats.NumericSummary) != 10 {
		t.Fatalf("numeric summary columns = %d, want 10", len(rep.FinalStats.NumericSummary))
	}
	first := rep.FinalStats.NumericSummary[0]
	if first.Column != "population_density" || first.Count != 5 {
		t.Fatalf("first summary = %+v", first)
	}

	d, err := dataset.ReadFile(output)
	if err != nil {
		t.Fatalf("read cleaned output: %v", err)
	}
	names, _, err := d.TextValues(dataset.ColCityName)
	if err != nil {
		t.Fatalf("TextValues: %v", err)
	}
	if !equalStrings(names, []string{"Paris", "Osaka", "Quito", "Lagos", "Bergen"}) {
		t.Fatalf("cleaned rows = %#v, want first occurrence of each identity", names)
	}

	d.CoerceNumeric(dataset.NumericColumns)
	for _, name := range d.ColumnNames() {
		if d.NullCount(name) != 0 {
			t.Fatalf("column %q still has missing cells", name)
		}
	}

	dens, _, err := d.NumericValues(dataset.ColPopulationDensity)
	if err != nil {
		t.Fatalf("NumericValues density: %v", err)
	}
	if !almostEqual(dens[0], 20000, 1e-9) {
		t.Fatalf("Paris density = %f, want the first occurrence kept", dens[0])
	}
	if !almostEqual(dens[2], 12000, 1e-9) || !almostEqual(dens[3], 12000, 1e-9) {
		t.Fatalf("imputed densities = %f, %f, want the median 12000", dens[2], dens[3])
	}

	hap, _, err := d.NumericValues(dataset.ColHappinessScore)
	if err != nil {
		t.Fatalf("NumericValues happiness: %v", err)
	}
	if !almostEqual(hap[4], 10, 1e-9) {
		t.Fatalf("Bergen happiness = %f, want clipped to 10", hap[4])
	}
	for _, name := range dataset.MetricColumns {
		vals, _, err := d.NumericValues(name)
		if err != nil {
			t.Fatalf("NumericValues %s: %v", name, err)
		}
		r := dataset.ValidRanges[name]
		for i, v := range vals {
			if v < r.Min || v > r.Max {
				t.Fatalf("%s[%d] = %f outside [%g,%g]", name, i, v, r.Min, r.Max)
			}
		}
	}

	lats, _, err := d.NumericValues(dataset.ColLatitude)
	if err != nil {
		t.Fatalf("NumericValues latitude: %v", err)
	}
	lons, _, err := d.NumericValues(dataset.ColLongitude)
	if err != nil {
		t.Fatalf("NumericValues longitude: %v", err)
	}
	countries, _, err := d.TextValues(dataset.ColCountry)
	if err != nil {
		t.Fatalf("TextValues country: %v", err)
	}
	for i := range lats {
		box := geocode.BoxFor(countries[i])
		if !box.Contains(lats[i], lons[i]) {
			t.Fatalf("row %d point (%f,%f) outside %q box %+v", i, lats[i], lons[i], countries[i], box)
		}
	}
	wantLat, wantLon := geocode.PointFor("Paris-France", "France")
	if lats[0] != wantLat || lons[0] != wantLon {
		t.Fatalf("Paris point = (%f,%f), want deterministic (%f,%f)", lats[0], lons[0], wantLat, wantLon)
	}
}

func TestRunIsIdempotent(t *testing.T) {
	input := writeFixture(t, rawRows)
	tmp := filepath.Dir(input)
	first := filepath.Join(tmp, "clean1.csv")
	second := filepath.Join(tmp, "clean2.csv")

	if _, err := Run(input, first, Options{}); err != nil {
		t.Fatalf("first run: %v", err)
	}
	rep, err := Run(first, second, Options{})
	if err != nil {
		t.Fatalf("second run: %v", err)
	}
	if rep.DuplicatesRemoved != 0 || len(rep.MissingValues) != 0 || len(rep.OutliersFound) != 0 {
		t.Fatalf("second pass should change nothing: %+v", rep)
	}

	a, err := os.ReadFile(first)
	if err != nil {
		t.Fatalf("read first output: %v", err)
	}
	b, err := os.ReadFile(second)
	if err != nil {
		t.Fatalf("read second output: %v", err)
	}
	if !bytes.Equal(a, b) {
		t.Fatalf("second pass should reproduce the cleaned file byte for byte")
	}
}

func TestRunMissingInputAborts(t *testing.T) {
	tmp := t.TempDir()
	output := filepath.Join(tmp, "cleaned.csv")

	_, err := Run(filepath.Join(tmp, "absent.csv"), output, Options{})
	var nf *dataset.NotFoundError
	if !errors.As(err, &nf) {
		t.Fatalf("err = %v, want NotFoundError", err)
	}
	if _, statErr := os.Stat(output); !os.IsNotExist(statErr) {
		t.Fatalf("failed run must not leave an output file")
	}
}

func TestRunKeepsExistingCoordinates(t *testing.T) {
	rows := []string{
		"city_name,country,happiness_score,latitude,longitude",
		"Paris,France,7.2,48.8566,2.3522",
		"Osaka,Japan,6.8,34.6937,135.5023",
	}
	input := writeFixture(t, rows)
	output := filepath.Join(filepath.Dir(input), "cleaned.csv")

	rep, err := Run(input, output, Options{})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if rep.FinalStats.TotalColumns != 5 {
		t.Fatalf("columns = %d, existing coordinates should not be re-derived", rep.FinalStats.TotalColumns)
	}

	d, err := dataset.ReadFile(output)
	if err != nil {
		t.Fatalf("read cleaned output: %v", err)
	}
	d.CoerceNumeric(dataset.NumericColumns)
	lats, _, err := d.NumericValues(dataset.ColLatitude)
	if err != nil {
		t.Fatalf("NumericValues latitude: %v", err)
	}
	if !almostEqual(lats[0], 48.8566, 1e-9) || !almostEqual(lats[1], 34.6937, 1e-9) {
		t.Fatalf("latitudes = %#v, want source values kept", lats)
	}
}

func TestRunReportsProgress(t *testing.T) {
	input := writeFixture(t, rawRows)
	output := filepath.Join(filepath.Dir(input), "cleaned.csv")

	var buf bytes.Buffer
	if _, err := Run(input, output, Options{Progress: &buf}); err != nil {
		t.Fatalf("Run: %v", err)
	}
	out := buf.String()
	for _, want := range []string{
		"rows loaded",
		"duplicate rows removed",
		"missing values in",
		"happiness_score",
		"synthetic coordinates",
		"Cleaned dataset written",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("progress output missing %q:\n%s", want, out)
		}
	}
}

func TestReportRenderAndSave(t *testing.T) {
	input := writeFixture(t, rawRows)
	tmp := filepath.Dir(input)

	rep, err := Run(input, filepath.Join(tmp, "cleaned.csv"), Options{})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	text := rep.Render()
	for _, want := range []string{
		"[CLEANING SUMMARY]",
		"Rows: 5 | Columns: 12",
		"[DUPLICATES]",
		"Removed: 1",
		"[MISSING VALUES]",
		"- population_density: 2 filled",
		"[OUT-OF-RANGE VALUES]",
		"- happiness_score: 1 clipped",
		"[NUMERIC SUMMARY]",
		"green_space_ratio",
	} {
		if !strings.Contains(text, want) {
			t.Fatalf("render missing %q in:\n%s", want, text)
		}
	}

	path := filepath.Join(tmp, "reports", "run.json")
	if err := rep.Save(path); err != nil {
		t.Fatalf("Save: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read saved report: %v", err)
	}
	var decoded map[string]any
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("saved report is not valid JSON: %v", err)
	}
	if got, ok := decoded["duplicates_removed"].(float64); !ok || got != 1 {
		t.Fatalf("duplicates_removed = %v", decoded["duplicates_removed"])
	}
	if _, ok := decoded["final_statistics"]; !ok {
		t.Fatalf("saved report missing final_statistics: %v", decoded)
	}
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func almostEqual(a, b, eps float64) bool {
	return math.Abs(a-b) <= eps
}
