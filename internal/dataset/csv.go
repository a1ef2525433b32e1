package dataset

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/CityLensHQ/citylens-cli/internal/utils"
)

// ReadFile loads a delimited dataset from disk. Files ending in .tsv are
// read tab-separated, everything else comma-separated. The first record is
// the header; rows may be ragged and are padded with missing cells.
func ReadFile(path string) (*Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, &NotFoundError{Path: path, Err: err}
		}
		return nil, fmt.Errorf("open dataset: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.TrimLeadingSpace = true
	r.FieldsPerRecord = -1
	if strings.EqualFold(filepath.Ext(path), ".tsv") {
		r.Comma = '\t'
	}

	header, err := r.Read()
	if err != nil {
		return nil, &NotFoundError{Path: path, Err: fmt.Errorf("read header: %w", err)}
	}
	records, err := r.ReadAll()
	if err != nil {
		return nil, &NotFoundError{Path: path, Err: fmt.Errorf("read records: %w", err)}
	}
	return FromRecords(header, records), nil
}

// WriteFile renders the dataset as CSV (TSV for .tsv paths) and writes it
// atomically, creating parent directories as needed. Missing cells render
// empty; numeric cells use the shortest round-trip decimal form.
func (d *Dataset) WriteFile(path string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := utils.EnsureDir(dir); err != nil {
			return fmt.Errorf("create output directory: %w", err)
		}
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if strings.EqualFold(filepath.Ext(path), ".tsv") {
		w.Comma = '\t'
	}
	if err := w.Write(d.ColumnNames()); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	row := make([]string, len(d.cols))
	for r := 0; r < d.rows; r++ {
		for i, c := range d.cols {
			row[i] = c.cellString(r)
		}
		if err := w.Write(row); err != nil {
			return fmt.Errorf("write row %d: %w", r, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("flush csv: %w", err)
	}
	return utils.SafeWriteFile(path, buf.Bytes())
}
