package cohort

import (
	"errors"
	"fmt"
)

// ErrNoValidRows reports that the merged dataset contained no usable rows
// after filtering. A run with zero cohorts is valid; a run with zero rows is
// not, so the whole run aborts.
var ErrNoValidRows = errors.New("no valid rows after filtering")

// SchemaError reports a raw table missing one of the required canonical
// columns. The run aborts without emitting any report.
type SchemaError struct {
	Table  string
	Column string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("table %s: missing required column %q", e.Table, e.Column)
}

// DecodeError reports a raw table whose bytes could not be decoded under the
// primary encoding or the fallback. Err carries the underlying cause when
// one exists.
type DecodeError struct {
	Table string
	Err   error
}

func (e *DecodeError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("table %s: undecodable content: %v", e.Table, e.Err)
	}
	return fmt.Sprintf("table %s: undecodable content", e.Table)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// InvalidPolicyError reports a cohort policy outside the supported set.
// This is a programming or configuration error and is always fatal.
type InvalidPolicyError struct {
	Policy string
}

func (e *InvalidPolicyError) Error() string {
	return fmt.Sprintf("invalid cohort policy %q", e.Policy)
}
