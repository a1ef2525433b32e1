// Package dataset holds the columnar frame shared by the cleaning pipeline
// and the query engine: ordered columns of text or numeric cells with an
// explicit missing mask, plus the canonical city lifestyle schema.
package dataset

import "strings"

// Kind discriminates how a column stores its cells.
type Kind int

const (
	KindText Kind = iota
	KindNumeric
)

// column stores one named column. text backs KindText cells and nums backs
// KindNumeric cells; null marks missing cells for either kind.
type column struct {
	name string
	kind Kind
	text []string
	nums []float64
	null []bool
}

// cellString renders a single cell for serialization and key building.
// Missing cells render empty.
func (c *column) cellString(i int) string {
	if c.null[i] {
		return ""
	}
	if c.kind == KindNumeric {
		return formatNumber(c.nums[i])
	}
	return c.text[i]
}

// Dataset is an ordered collection of uniformly sized columns. Loading
// produces text columns; CoerceNumeric converts the schema's numeric ones.
type Dataset struct {
	cols  []*column
	index map[string]int
	rows  int
}

// FromRecords builds a dataset from a header and raw rows. Cells are
// trimmed; empty cells are missing; short rows are padded with missing
// cells. Duplicate header names resolve lookups to the first occurrence.
func FromRecords(header []string, records [][]string) *Dataset {
	d := &Dataset{
		cols:  make([]*column, len(header)),
		index: make(map[string]int, len(header)),
		rows:  len(records),
	}
	for i, h := range header {
		name := strings.TrimSpace(h)
		d.cols[i] = &column{
			name: name,
			kind: KindText,
			text: make([]string, len(records)),
			null: make([]bool, len(records)),
		}
		if _, ok := d.index[name]; !ok {
			d.index[name] = i
		}
	}
	for r, rec := range records {
		for i, c := range d.cols {
			v := ""
			if i < len(rec) {
				v = strings.TrimSpace(rec[i])
			}
			if v == "" {
				c.null[r] = true
				continue
			}
			c.text[r] = v
		}
	}
	return d
}

// Rows reports the number of records.
func (d *Dataset) Rows() int { return d.rows }

// ColumnNames returns the column names in their stored order.
func (d *Dataset) ColumnNames() []string {
	names := make([]string, len(d.cols))
	for i, c := range d.cols {
		names[i] = c.name
	}
	return names
}

// Has reports whether a column exists.
func (d *Dataset) Has(name string) bool {
	_, ok := d.index[name]
	return ok
}

// IsNumeric reports whether a column exists and carries numeric cells.
func (d *Dataset) IsNumeric(name string) bool {
	c := d.col(name)
	return c != nil && c.kind == KindNumeric
}

func (d *Dataset) col(name string) *column {
	i, ok := d.index[name]
	if !ok {
		return nil
	}
	return d.cols[i]
}

// TextValues returns the cells and missing mask of a text column. The
// returned slices are the dataset's own storage; callers must not mutate.
func (d *Dataset) TextValues(name string) ([]string, []bool, error) {
	c := d.col(name)
	if c == nil || c.kind != KindText {
		return nil, nil, &SchemaError{Column: name}
	}
	return c.text, c.null, nil
}

// NumericValues returns the values and missing mask of a numeric column.
// The returned slices are the dataset's own storage; callers must not mutate.
func (d *Dataset) NumericValues(name string) ([]float64, []bool, error) {
	c := d.col(name)
	if c == nil || c.kind != KindNumeric {
		return nil, nil, &SchemaError{Column: name}
	}
	return c.nums, c.null, nil
}

// NonNull returns the non-missing values of a numeric column in row order.
func (d *Dataset) NonNull(name string) ([]float64, error) {
	vals, null, err := d.NumericValues(name)
	if err != nil {
		return nil, err
	}
	out := make([]float64, 0, len(vals))
	for i, v := range vals {
		if null[i] {
			continue
		}
		out = append(out, v)
	}
	return out, nil
}

// NullCount reports how many cells of a column are missing; 0 for absent
// columns.
func (d *Dataset) NullCount(name string) int {
	c := d.col(name)
	if c == nil {
		return 0
	}
	n := 0
	for _, miss := range c.null {
		if miss {
			n++
		}
	}
	return n
}

// CoerceNumeric converts each named column that is present to numeric cells;
// a cell that does not parse as a finite number becomes missing. Absent
// names are skipped silently, as are columns already numeric.
func (d *Dataset) CoerceNumeric(names []string) {
	for _, name := range names {
		c := d.col(name)
		if c == nil || c.kind == KindNumeric {
			continue
		}
		nums := make([]float64, d.rows)
		for i := 0; i < d.rows; i++ {
			if c.null[i] {
				continue
			}
			v, ok := parseNumber(c.text[i])
			if !ok {
				c.null[i] = true
				continue
			}
			nums[i] = v
		}
		c.kind = KindNumeric
		c.nums = nums
		c.text = nil
	}
}

// KeepFirst removes every row whose key-column cells duplicate an earlier
// row, keeping the first occurrence. It returns the number of rows removed.
func (d *Dataset) KeepFirst(keys ...string) (int, error) {
	keyCols := make([]*column, len(keys))
	for i, k := range keys {
		c := d.col(k)
		if c == nil {
			return 0, &SchemaError{Column: k}
		}
		keyCols[i] = c
	}
	seen := make(map[string]bool, d.rows)
	keep := make([]int, 0, d.rows)
	parts := make([]string, len(keyCols))
	for r := 0; r < d.rows; r++ {
		for i, c := range keyCols {
			parts[i] = c.cellString(r)
		}
		k := strings.Join(parts, "\x1f")
		if seen[k] {
			continue
		}
		seen[k] = true
		keep = append(keep, r)
	}
	removed := d.rows - len(keep)
	if removed > 0 {
		d.retain(keep)
	}
	return removed, nil
}

func (d *Dataset) retain(rows []int) {
	for _, c := range d.cols {
		null := make([]bool, len(rows))
		for i, r := range rows {
			null[i] = c.null[r]
		}
		if c.kind == KindNumeric {
			nums := make([]float64, len(rows))
			for i, r := range rows {
				nums[i] = c.nums[r]
			}
			c.nums = nums
		} else {
			text := make([]string, len(rows))
			for i, r := range rows {
				text[i] = c.text[r]
			}
			c.text = text
		}
		c.null = null
	}
	d.rows = len(rows)
}

// FillTextNulls replaces missing cells of a text column with a placeholder
// and returns how many were filled.
func (d *Dataset) FillTextNulls(name, placeholder string) int {
	c := d.col(name)
	if c == nil || c.kind != KindText {
		return 0
	}
	n := 0
	for i := range c.null {
		if c.null[i] {
			c.text[i] = placeholder
			c.null[i] = false
			n++
		}
	}
	return n
}

// FillNumericNulls replaces missing cells of a numeric column with a value
// and returns how many were filled.
func (d *Dataset) FillNumericNulls(name string, value float64) int {
	c := d.col(name)
	if c == nil || c.kind != KindNumeric {
		return 0
	}
	n := 0
	for i := range c.null {
		if c.null[i] {
			c.nums[i] = value
			c.null[i] = false
			n++
		}
	}
	return n
}

// Clip counts the non-missing values of a numeric column outside [lo, hi],
// then clamps every value into the interval.
func (d *Dataset) Clip(name string, lo, hi float64) int {
	c := d.col(name)
	if c == nil || c.kind != KindNumeric {
		return 0
	}
	out := 0
	for i, v := range c.nums {
		if c.null[i] {
			continue
		}
		if v < lo {
			out++
			c.nums[i] = lo
		} else if v > hi {
			out++
			c.nums[i] = hi
		}
	}
	return out
}

// PutNumeric replaces the named column with dense numeric values, appending
// a new column at the end when the name is absent. vals must have Rows()
// elements.
func (d *Dataset) PutNumeric(name string, vals []float64) {
	nums := make([]float64, len(vals))
	copy(nums, vals)
	c := d.col(name)
	if c == nil {
		c = &column{name: name}
		d.index[name] = len(d.cols)
		d.cols = append(d.cols, c)
	}
	c.kind = KindNumeric
	c.text = nil
	c.nums = nums
	c.null = make([]bool, len(vals))
}

// Distinct returns the column's distinct cell values in first-occurrence
// order, skipping missing cells.
func (d *Dataset) Distinct(name string) ([]string, error) {
	c := d.col(name)
	if c == nil {
		return nil, &SchemaError{Column: name}
	}
	seen := make(map[string]bool)
	out := []string{}
	for i := 0; i < d.rows; i++ {
		if c.null[i] {
			continue
		}
		v := c.cellString(i)
		if seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	return out, nil
}

// Select returns a new dataset containing the given rows, in the given
// order. Column kinds and order are preserved; storage is copied.
func (d *Dataset) Select(rows []int) *Dataset {
	out := &Dataset{
		cols:  make([]*column, len(d.cols)),
		index: make(map[string]int, len(d.index)),
		rows:  len(rows),
	}
	for i, c := range d.cols {
		nc := &column{name: c.name, kind: c.kind, null: make([]bool, len(rows))}
		if c.kind == KindNumeric {
			nc.nums = make([]float64, len(rows))
		} else {
			nc.text = make([]string, len(rows))
		}
		for j, r := range rows {
			nc.null[j] = c.null[r]
			if c.kind == KindNumeric {
				nc.nums[j] = c.nums[r]
			} else {
				nc.text[j] = c.text[r]
			}
		}
		out.cols[i] = nc
		if _, ok := out.index[c.name]; !ok {
			out.index[c.name] = i
		}
	}
	return out
}
