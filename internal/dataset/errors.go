package dataset

import "fmt"

// NotFoundError indicates a source path that could not be read or parsed as
// a delimited table. Fatal to the run that needed it; never retried here.
type NotFoundError struct {
	Path string
	Err  error
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("dataset not found at %s: %v", e.Path, e.Err)
}

func (e *NotFoundError) Unwrap() error { return e.Err }

// SchemaError indicates a required column is absent (or carries the wrong
// kind) when an operation needs it. This is an upstream data/config mismatch,
// not a user input problem.
type SchemaError struct {
	Column string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("required column %q is missing from the dataset", e.Column)
}
