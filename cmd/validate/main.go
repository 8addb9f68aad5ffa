// Command validate re-reads the delimited and columnar outputs of an
// enrichment run and checks that they agree: column order, row counts, cell
// values, flag domains, and proximity consistency.
//
// Usage:
//
//	go run ./cmd/validate \
//	  -csv data_model/collisions_enriched.csv \
//	  -parquet data_model/collisions_enriched.parquet
package main

import (
	"flag"
	"fmt"
	"os"
	"slices"

	"github.com/couchcryptid/collision-enrichment/internal/adapter/csvtable"
	"github.com/couchcryptid/collision-enrichment/internal/adapter/parquet"
	"github.com/couchcryptid/collision-enrichment/internal/domain"
)

// maxPhaseErrors caps how many errors a phase records.
const maxPhaseErrors = 25

// phase tracks pass/fail for a validation phase.
type phase struct {
	name   string
	errors []string
	total  int
}

func (p *phase) errorf(format string, args ...any) {
	p.total++
	if len(p.errors) < maxPhaseErrors {
		p.errors = append(p.errors, fmt.Sprintf(format, args...))
	}
}

func (p *phase) passed() bool { return p.total == 0 }

// delimited is the CSV output as raw strings.
type delimited struct {
	header []string
	rows   [][]string
}

func main() {
	csvPath := flag.String("csv", "data_model/collisions_enriched.csv", "delimited output to check")
	parquetPath := flag.String("parquet", "data_model/collisions_enriched.parquet", "columnar output to check")
	flag.Parse()

	os.Exit(run(*csvPath, *parquetPath))
}

func run(csvPath, parquetPath string) int {
	fmt.Println("=== Collision Enrichment Output Validation ===")
	fmt.Println()

	text, err := loadCSV(csvPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: load %s: %v\n", csvPath, err)
		return 1
	}
	columnar, err := parquet.ReadFile(parquetPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: load %s: %v\n", parquetPath, err)
		return 1
	}

	phases := []*phase{
		validateColumnOrder(text, columnar),
		validateRowParity(text, columnar),
		validateValueParity(text, columnar),
		validateFlagDomains(text, columnar),
		validateProximity(text),
	}

	allPassed := true
	for _, p := range phases {
		status := "\033[32mPASS\033[0m"
		if !p.passed() {
			status = fmt.Sprintf("\033[31mFAIL (%d errors)\033[0m", p.total)
			allPassed = false
		}
		fmt.Printf("  %-42s %s\n", p.name, status)
	}

	fmt.Println()
	fmt.Printf("Rows: %d delimited, %d columnar; columns: %d\n", len(text.rows), len(columnar.Rows), len(text.header))

	for _, p := range phases {
		if p.passed() {
			continue
		}
		fmt.Printf("\n--- %s ---\n", p.name)
		for i, e := range p.errors {
			fmt.Printf("  [%d] %s\n", i+1, e)
		}
		if p.total > len(p.errors) {
			fmt.Printf("  ... and %d more\n", p.total-len(p.errors))
		}
	}

	if allPassed {
		fmt.Println("\nAll validations passed.")
		return 0
	}
	fmt.Println("\nValidation FAILED.")
	return 1
}

func loadCSV(path string) (*delimited, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	header, rows, err := csvtable.ReadAll(f)
	if err != nil {
		return nil, err
	}
	return &delimited{header: header, rows: rows}, nil
}

// ── Phases ──

// requiredOrder lists the fixed columns in the order they must appear.
var requiredOrder = []string{
	"date", "lat", "lon", "severity",
	domain.WeatherPrefix + domain.ColPrecipDay,
	domain.WeatherPrefix + domain.ColPrecipAmountAny,
	domain.ColNearestDistance,
	domain.ColWithinThreshold,
	domain.ColNearestID,
}

func validateColumnOrder(text *delimited, columnar *parquet.Table) *phase {
	p := &phase{name: "Phase 1: Column order"}

	if !slices.Equal(text.header, columnar.Columns) {
		p.errorf("headers differ: csv=%v parquet=%v", text.header, columnar.Columns)
	}
	if !slices.Equal(text.header[:min(4, len(text.header))], requiredOrder[:4]) {
		p.errorf("first columns are %v, want %v", text.header[:min(4, len(text.header))], requiredOrder[:4])
	}

	last := -1
	for _, name := range requiredOrder {
		i := slices.Index(text.header, name)
		switch {
		case i < 0:
			p.errorf("missing column %q", name)
		case i < last:
			p.errorf("column %q out of order", name)
		default:
			last = i
		}
	}

	seen := make(map[string]bool, len(text.header))
	for _, name := range text.header {
		if seen[name] {
			p.errorf("duplicate column %q", name)
		}
		seen[name] = true
	}
	return p
}

func validateRowParity(text *delimited, columnar *parquet.Table) *phase {
	p := &phase{name: "Phase 2: Row parity"}
	if len(text.rows) != len(columnar.Rows) {
		p.errorf("csv has %d rows, parquet has %d", len(text.rows), len(columnar.Rows))
	}
	for i, row := range text.rows {
		if len(row) != len(text.header) {
			p.errorf("csv row %d: %d cells for %d columns", i, len(row), len(text.header))
		}
	}
	return p
}

func validateValueParity(text *delimited, columnar *parquet.Table) *phase {
	p := &phase{name: "Phase 3: Value parity"}
	n := min(len(text.rows), len(columnar.Rows))
	for i := range n {
		trow, crow := text.rows[i], columnar.Rows[i]
		for j := range min(len(trow), len(crow), len(text.header)) {
			if got := csvtable.FormatCell(crow[j]); got != trow[j] {
				p.errorf("row %d column %q: csv=%q parquet=%q", i, text.header[j], trow[j], got)
			}
		}
	}
	return p
}

func validateFlagDomains(text *delimited, columnar *parquet.Table) *phase {
	p := &phase{name: "Phase 4: Flag domains"}
	for _, name := range []string{domain.WeatherPrefix + domain.ColPrecipDay, domain.ColWithinThreshold} {
		j := slices.Index(text.header, name)
		if j < 0 {
			continue
		}
		for i, row := range text.rows {
			if j < len(row) && row[j] != "0" && row[j] != "1" {
				p.errorf("csv row %d %s: %q is not 0 or 1", i, name, row[j])
			}
		}
		if k := slices.Index(columnar.Columns, name); k >= 0 {
			for i, row := range columnar.Rows {
				if _, ok := row[k].(bool); !ok {
					p.errorf("parquet row %d %s: %v is not a flag", i, name, row[k])
				}
			}
		}
	}
	return p
}

func validateProximity(text *delimited) *phase {
	p := &phase{name: "Phase 5: Proximity consistency"}
	dist := slices.Index(text.header, domain.ColNearestDistance)
	within := slices.Index(text.header, domain.ColWithinThreshold)
	id := slices.Index(text.header, domain.ColNearestID)
	if dist < 0 || within < 0 || id < 0 {
		p.errorf("proximity columns missing")
		return p
	}
	for i, row := range text.rows {
		if len(row) <= max(dist, within, id) {
			continue
		}
		if row[dist] == "" {
			if row[within] == "1" || row[id] != "" {
				p.errorf("row %d: no distance but within_threshold=%s nearest_landmark_id=%q", i, row[within], row[id])
			}
			continue
		}
		if row[id] == "" {
			p.errorf("row %d: distance %s without landmark id", i, row[dist])
		}
	}
	return p
}
