package domain

import (
	"fmt"
	"strings"
)

// WarnEmptyLandmarkSet is recorded in Diagnostics when no landmarks were
// loaded. The run continues with every proximity field absent.
const WarnEmptyLandmarkSet = "empty landmark set: nearest-landmark fields left absent"

// MissingColumnError reports a required column absent from an input table.
type MissingColumnError struct {
	Table  string
	Column string
}

func (e *MissingColumnError) Error() string {
	return fmt.Sprintf("%s table: missing required column %q", e.Table, e.Column)
}

// CardinalityViolation reports a date that occurs more than once in the daily
// weather table. The weather join is many-to-one and never deduplicates.
type CardinalityViolation struct {
	Date  Date
	Count int
}

func (e *CardinalityViolation) Error() string {
	return fmt.Sprintf("weather table: date %s appears %d times, expected at most once", e.Date, e.Count)
}

// SchemaError reports a column layout the engine cannot accept, such as a
// duplicated or reserved column name.
type SchemaError struct {
	Table  string
	Column string
	Reason string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("%s table: column %q: %s", e.Table, e.Column, e.Reason)
}

// ValidationError reports an enriched-table invariant that did not hold.
// Row is -1 for table-level checks.
type ValidationError struct {
	Check  string
	Row    int
	Detail string
}

func (e *ValidationError) Error() string {
	if e.Row < 0 {
		return fmt.Sprintf("validation %s: %s", e.Check, e.Detail)
	}
	return fmt.Sprintf("validation %s: row %d: %s", e.Check, e.Row, e.Detail)
}

// checkColumnNames rejects empty, duplicated, and reserved column names.
func checkColumnNames(table string, columns []string, reserved ...string) error {
	seen := make(map[string]struct{}, len(columns))
	for _, c := range columns {
		if strings.TrimSpace(c) == "" {
			return &SchemaError{Table: table, Column: c, Reason: "empty column name"}
		}
		if _, dup := seen[c]; dup {
			return &SchemaError{Table: table, Column: c, Reason: "duplicated column name"}
		}
		seen[c] = struct{}{}
		for _, r := range reserved {
			if c == r {
				return &SchemaError{Table: table, Column: c, Reason: "reserved for a derived column"}
			}
		}
	}
	return nil
}
