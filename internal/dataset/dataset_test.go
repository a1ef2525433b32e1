package dataset

import (
	"bytes"
	"errors"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

var cityRows = []string{
	"city_name,country,happiness_score,avg_income",
	"Paris,France,7.2,45000",
	" Lyon , France ,6.9,38000",
	"Osaka,Japan,,41000",
	"Quito,Ecuador,n/a,30000",
	"Bergen,Norway,7.8,52000",
}

func TestFromRecordsTrimsAndPads(t *testing.T) {
	d := FromRecords(
		[]string{" city_name ", "country", "score"},
		[][]string{
			{" Paris ", "France", "7.2"},
			{"Osaka"},
			{"", "Japan", ""},
		},
	)
	if d.Rows() != 3 {
		t.Fatalf("rows = %d, want 3", d.Rows())
	}
	if !equalStrings(d.ColumnNames(), []string{"city_name", "country", "score"}) {
		t.Fatalf("columns = %#v", d.ColumnNames())
	}

	names, null, err := d.TextValues("city_name")
	if err != nil {
		t.Fatalf("TextValues city_name: %v", err)
	}
	if names[0] != "Paris" {
		t.Fatalf("names[0] = %q, want trimmed Paris", names[0])
	}
	if null[0] || null[1] || !null[2] {
		t.Fatalf("city null mask = %#v", null)
	}

	_, countryNull, err := d.TextValues("country")
	if err != nil {
		t.Fatalf("TextValues country: %v", err)
	}
	if !countryNull[1] {
		t.Fatalf("short record should leave country missing")
	}
	if d.NullCount("score") != 2 {
		t.Fatalf("score nulls = %d, want 2", d.NullCount("score"))
	}
	if d.Has("ghost") || d.NullCount("ghost") != 0 {
		t.Fatalf("absent column should report not present, zero nulls")
	}
}

func TestCoerceNumericParsesAndNulls(t *testing.T) {
	d := FromRecords(
		[]string{"city_name", "score"},
		[][]string{
			{"Paris", "7.2"},
			{"Berlin", "1.234,5"},
			{"Oslo", "n/a"},
			{"Rome", "NaN"},
			{"Lima", ""},
		},
	)
	d.CoerceNumeric([]string{"score", "absent"})

	if !d.IsNumeric("score") {
		t.Fatalf("score should be numeric after coercion")
	}
	if d.IsNumeric("city_name") {
		t.Fatalf("city_name should stay text")
	}
	vals, null, err := d.NumericValues("score")
	if err != nil {
		t.Fatalf("NumericValues: %v", err)
	}
	if !almostEqual(vals[0], 7.2, 1e-9) {
		t.Fatalf("vals[0] = %f, want 7.2", vals[0])
	}
	if !almostEqual(vals[1], 1234.5, 1e-9) {
		t.Fatalf("vals[1] = %f, want 1234.5 from locale form", vals[1])
	}
	for i := 2; i < 5; i++ {
		if !null[i] {
			t.Fatalf("row %d should be missing after coercion", i)
		}
	}

	var schemaErr *SchemaError
	if _, _, err := d.TextValues("score"); !errors.As(err, &schemaErr) {
		t.Fatalf("TextValues on numeric column = %v, want SchemaError", err)
	}
	if _, _, err := d.NumericValues("city_name"); !errors.As(err, &schemaErr) {
		t.Fatalf("NumericValues on text column = %v, want SchemaError", err)
	}
}

func TestParseNumberLocales(t *testing.T) {
	cases := []struct {
		in   string
		want float64
		ok   bool
	}{
		{"7.2", 7.2, true},
		{"-12.5", -12.5, true},
		{"7,2", 7.2, true},
		{"1,234.5", 1234.5, true},
		{"1.234,5", 1234.5, true},
		{"1 234,5", 1234.5, true},
		{"1e3", 1000, true},
		{"", 0, false},
		{"abc", 0, false},
		{"NaN", 0, false},
		{"+Inf", 0, false},
	}
	for _, c := range cases {
		got, ok := parseNumber(c.in)
		if ok != c.ok {
			t.Fatalf("parseNumber(%q) ok = %v, want %v", c.in, ok, c.ok)
		}
		if ok && !almostEqual(got, c.want, 1e-9) {
			t.Fatalf("parseNumber(%q) = %f, want %f", c.in, got, c.want)
		}
	}
}

func TestKeepFirstDropsLaterDuplicates(t *testing.T) {
	d := FromRecords(
		[]string{"city_name", "country", "score"},
		[][]string{
			{"Paris", "France", "7.2"},
			{"Osaka", "Japan", "6.5"},
			{"Paris", "France", "9.9"},
			{"Paris", "Poland", "6.1"},
		},
	)
	removed, err := d.KeepFirst("city_name", "country")
	if err != nil {
		t.Fatalf("KeepFirst: %v", err)
	}
	if removed != 1 {
		t.Fatalf("removed = %d, want 1", removed)
	}
	if d.Rows() != 3 {
		t.Fatalf("rows = %d, want 3", d.Rows())
	}
	scores, _, err := d.TextValues("score")
	if err != nil {
		t.Fatalf("TextValues score: %v", err)
	}
	if !equalStrings(scores, []string{"7.2", "6.5", "6.1"}) {
		t.Fatalf("kept scores = %#v, want first occurrence to win", scores)
	}

	var schemaErr *SchemaError
	if _, err := d.KeepFirst("nope"); !errors.As(err, &schemaErr) {
		t.Fatalf("KeepFirst on absent key = %v, want SchemaError", err)
	}
}

func TestFillNullsCountsAndValues(t *testing.T) {
	d := FromRecords(
		[]string{"city_name", "score"},
		[][]string{
			{"Paris", "7.2"},
			{"", ""},
			{"Osaka", ""},
		},
	)
	d.CoerceNumeric([]string{"score"})

	if n := d.FillNumericNulls("score", 5.5); n != 2 {
		t.Fatalf("numeric fills = %d, want 2", n)
	}
	if d.NullCount("score") != 0 {
		t.Fatalf("score should have no nulls after filling")
	}
	vals, _, _ := d.NumericValues("score")
	if !almostEqual(vals[1], 5.5, 1e-9) || !almostEqual(vals[2], 5.5, 1e-9) {
		t.Fatalf("filled values = %#v", vals)
	}

	if n := d.FillTextNulls("city_name", "Unknown"); n != 1 {
		t.Fatalf("text fills = %d, want 1", n)
	}
	names, _, _ := d.TextValues("city_name")
	if names[1] != "Unknown" {
		t.Fatalf("names[1] = %q, want Unknown", names[1])
	}
	if n := d.FillTextNulls("ghost", "x"); n != 0 {
		t.Fatalf("filling an absent column = %d, want 0", n)
	}
}

func TestClipCountsThenClamps(t *testing.T) {
	d := FromRecords(
		[]string{"score"},
		[][]string{{"-5"}, {"3"}, {"12"}, {""}},
	)
	d.CoerceNumeric([]string{"score"})

	if out := d.Clip("score", 0, 10); out != 2 {
		t.Fatalf("out of range = %d, want 2", out)
	}
	vals, null, _ := d.NumericValues("score")
	if !almostEqual(vals[0], 0, 1e-9) || !almostEqual(vals[1], 3, 1e-9) || !almostEqual(vals[2], 10, 1e-9) {
		t.Fatalf("clipped values = %#v", vals)
	}
	if !null[3] {
		t.Fatalf("missing cell should stay missing through clipping")
	}
	if out := d.Clip("score", 0, 10); out != 0 {
		t.Fatalf("second clip = %d, want 0", out)
	}
}

func TestPutNumericReplacesOrAppends(t *testing.T) {
	d := FromRecords(
		[]string{"city_name", "latitude"},
		[][]string{
			{"Paris", "bogus"},
			{"Osaka", ""},
		},
	)
	d.PutNumeric("latitude", []float64{48.85, 34.69})
	d.PutNumeric("longitude", []float64{2.35, 135.5})

	if !equalStrings(d.ColumnNames(), []string{"city_name", "latitude", "longitude"}) {
		t.Fatalf("columns = %#v", d.ColumnNames())
	}
	lat, latNull, err := d.NumericValues("latitude")
	if err != nil {
		t.Fatalf("NumericValues latitude: %v", err)
	}
	if !almostEqual(lat[0], 48.85, 1e-9) || latNull[0] || latNull[1] {
		t.Fatalf("latitude = %#v null = %#v", lat, latNull)
	}
	if d.NullCount("longitude") != 0 {
		t.Fatalf("appended column should be dense")
	}
}

func TestDistinctFirstOccurrenceSkipsMissing(t *testing.T) {
	d := FromRecords(
		[]string{"country"},
		[][]string{{"Japan"}, {"France"}, {""}, {"Japan"}, {"Ecuador"}},
	)
	got, err := d.Distinct("country")
	if err != nil {
		t.Fatalf("Distinct: %v", err)
	}
	if !equalStrings(got, []string{"Japan", "France", "Ecuador"}) {
		t.Fatalf("distinct = %#v", got)
	}

	var schemaErr *SchemaError
	if _, err := d.Distinct("ghost"); !errors.As(err, &schemaErr) {
		t.Fatalf("Distinct on absent column = %v, want SchemaError", err)
	}
}

func TestSelectCopiesRows(t *testing.T) {
	d := FromRecords(
		[]string{"city_name", "score"},
		[][]string{
			{"Paris", "7.2"},
			{"Osaka", "6.5"},
			{"Quito", "6.1"},
		},
	)
	d.CoerceNumeric([]string{"score"})

	sub := d.Select([]int{2, 0})
	if sub.Rows() != 2 {
		t.Fatalf("sub rows = %d, want 2", sub.Rows())
	}
	names, _, _ := sub.TextValues("city_name")
	if !equalStrings(names, []string{"Quito", "Paris"}) {
		t.Fatalf("sub order = %#v", names)
	}

	sub.PutNumeric("score", []float64{0, 0})
	orig, _, _ := d.NumericValues("score")
	if !almostEqual(orig[0], 7.2, 1e-9) {
		t.Fatalf("selection should not share storage with the source")
	}
}

func TestReadWriteRoundTrip(t *testing.T) {
	tmp := t.TempDir()
	path := filepath.Join(tmp, "cities.csv")
	if err := os.WriteFile(path, []byte(strings.Join(cityRows, "\n")), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	d, err := ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if d.Rows() != 5 {
		t.Fatalf("rows = %d, want 5", d.Rows())
	}
	names, _, err := d.TextValues("city_name")
	if err != nil {
		t.Fatalf("TextValues: %v", err)
	}
	if names[1] != "Lyon" {
		t.Fatalf("names[1] = %q, want trimmed Lyon", names[1])
	}

	out := filepath.Join(tmp, "nested", "clean.csv")
	if err := d.WriteFile(out); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	first, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("read written file: %v", err)
	}

	d2, err := ReadFile(out)
	if err != nil {
		t.Fatalf("ReadFile round trip: %v", err)
	}
	if d2.Rows() != d.Rows() || !equalStrings(d2.ColumnNames(), d.ColumnNames()) {
		t.Fatalf("round trip shape mismatch: %d cols %#v", d2.Rows(), d2.ColumnNames())
	}
	if err := d2.WriteFile(out); err != nil {
		t.Fatalf("WriteFile again: %v", err)
	}
	second, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("read rewritten file: %v", err)
	}
	if !bytes.Equal(first, second) {
		t.Fatalf("rewriting an unchanged dataset should be byte identical")
	}
}

func TestReadFileTSV(t *testing.T) {
	rows := []string{
		"city_name\tcountry\tscore",
		"Paris\tFrance\t7.2",
		"Osaka\tJapan\t6.5",
	}
	path := filepath.Join(t.TempDir(), "cities.tsv")
	if err := os.WriteFile(path, []byte(strings.Join(rows, "\n")), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	d, err := ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile tsv: %v", err)
	}
	if d.Rows() != 2 || !equalStrings(d.ColumnNames(), []string{"city_name", "country", "score"}) {
		t.Fatalf("tsv parse: rows=%d cols=%#v", d.Rows(), d.ColumnNames())
	}
}

func TestReadFileMissing(t *testing.T) {
	_, err := ReadFile(filepath.Join(t.TempDir(), "nope.csv"))
	var nf *NotFoundError
	if !errors.As(err, &nf) {
		t.Fatalf("err = %v, want NotFoundError", err)
	}
	if !strings.Contains(nf.Path, "nope.csv") {
		t.Fatalf("error path = %q", nf.Path)
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
