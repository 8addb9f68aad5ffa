package csvtable

import (
	"fmt"
	"strings"
)

// maxListedFailures bounds how many parse failures a report carries in full.
const maxListedFailures = 20

// ParseError is one value that failed to parse.
type ParseError struct {
	Table  string
	Line   int
	Column string
	Value  string
	Reason string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s table line %d column %q value %q: %s", e.Table, e.Line, e.Column, e.Value, e.Reason)
}

// ParseReport aggregates every parse failure of one table. Only the first
// failures are kept in full; Total counts all of them.
type ParseReport struct {
	Table    string
	Failures []*ParseError
	Total    int
}

func (r *ParseReport) add(line int, column, value, reason string) {
	r.Total++
	if len(r.Failures) < maxListedFailures {
		r.Failures = append(r.Failures, &ParseError{
			Table:  r.Table,
			Line:   line,
			Column: column,
			Value:  value,
			Reason: reason,
		})
	}
}

// err returns the report as an error, or nil when nothing failed.
func (r *ParseReport) err() error {
	if r.Total == 0 {
		return nil
	}
	return r
}

func (r *ParseReport) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s table: %d values failed to parse", r.Table, r.Total)
	if r.Total > len(r.Failures) {
		fmt.Fprintf(&b, " (first %d listed)", len(r.Failures))
	}
	for _, f := range r.Failures {
		fmt.Fprintf(&b, "\n  line %d column %q value %q: %s", f.Line, f.Column, f.Value, f.Reason)
	}
	return b.String()
}

// Unwrap exposes the listed failures to errors.As.
func (r *ParseReport) Unwrap() []error {
	errs := make([]error, len(r.Failures))
	for i, f := range r.Failures {
		errs[i] = f
	}
	return errs
}
