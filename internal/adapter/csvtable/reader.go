package csvtable

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"slices"
	"strconv"
	"strings"

	"github.com/couchcryptid/collision-enrichment/internal/domain"
)

// Table names used in errors and reports.
const (
	TableEvents    = "events"
	TableWeather   = "weather"
	TableLandmarks = "landmarks"
)

var (
	eventColumns    = []string{"date", "lat", "lon", "severity"}
	weatherColumns  = []string{"date"}
	landmarkColumns = []string{"lat", "lon"}
)

// ReadEvents parses the canonical events table. Required columns are date,
// lat, lon and severity; any other column is passed through verbatim.
func ReadEvents(r io.Reader) (domain.EventTable, error) {
	t, err := readTable(r, TableEvents, eventColumns)
	if err != nil {
		return domain.EventTable{}, err
	}

	out := domain.EventTable{ExtraColumns: t.otherNames(), Rows: make([]domain.Event, 0, len(t.rows))}
	report := &ParseReport{Table: TableEvents}
	for _, row := range t.rows {
		p := t.parser(report, row)
		e := domain.Event{
			Date:     p.date("date"),
			Location: p.point("lat", "lon", false),
			Severity: p.severity("severity"),
			Extra:    p.others(),
		}
		out.Rows = append(out.Rows, e)
	}
	if err := report.err(); err != nil {
		return domain.EventTable{}, err
	}
	return out, nil
}

// ReadWeather parses the canonical daily weather table. The date column is
// required; every other column is a numeric covariate where an empty cell is
// absent. Precipitation amounts must not be negative.
func ReadWeather(r io.Reader) (domain.WeatherTable, error) {
	t, err := readTable(r, TableWeather, weatherColumns)
	if err != nil {
		return domain.WeatherTable{}, err
	}

	out := domain.WeatherTable{Columns: t.otherNames(), Rows: make([]domain.DailyWeather, 0, len(t.rows))}
	report := &ParseReport{Table: TableWeather}
	for _, row := range t.rows {
		p := t.parser(report, row)
		w := domain.DailyWeather{Date: p.date("date"), Values: make([]*float64, len(t.others))}
		for i, col := range t.others {
			w.Values[i] = p.optionalFloat(t.names[col], domain.IsPrecipAmountColumn(t.names[col]))
		}
		out.Rows = append(out.Rows, w)
	}
	if err := report.err(); err != nil {
		return domain.WeatherTable{}, err
	}
	return out, nil
}

// ReadLandmarks parses the canonical landmark table. Every landmark needs
// valid coordinates; its ID is its zero-based position in the file.
func ReadLandmarks(r io.Reader) (domain.LandmarkTable, error) {
	t, err := readTable(r, TableLandmarks, landmarkColumns)
	if err != nil {
		return domain.LandmarkTable{}, err
	}

	out := domain.LandmarkTable{AttributeColumns: t.otherNames(), Rows: make([]domain.Landmark, 0, len(t.rows))}
	report := &ParseReport{Table: TableLandmarks}
	for i, row := range t.rows {
		p := t.parser(report, row)
		out.Rows = append(out.Rows, domain.Landmark{
			ID:       i,
			Location: p.point("lat", "lon", true),
			Attrs:    p.others(),
		})
	}
	if err := report.err(); err != nil {
		return domain.LandmarkTable{}, err
	}
	return out, nil
}

// ReadAll returns the header and records of a delimited file without any
// schema checks.
func ReadAll(r io.Reader) ([]string, [][]string, error) {
	records, err := csv.NewReader(r).ReadAll()
	if err != nil {
		return nil, nil, err
	}
	if len(records) == 0 {
		return nil, nil, errors.New("empty file: no header row")
	}
	return records[0], records[1:], nil
}

type record struct {
	line   int
	fields []string
}

type table struct {
	name   string
	names  []string
	index  map[string]int
	others []int // header positions of non-required columns, in input order
	rows   []record
}

func readTable(r io.Reader, name string, required []string) (*table, error) {
	cr := csv.NewReader(r)
	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%s table: empty file: no header row", name)
	}
	if err != nil {
		return nil, fmt.Errorf("read %s table header: %w", name, err)
	}

	t := &table{name: name, names: make([]string, len(header)), index: make(map[string]int, len(header))}
	for i, h := range header {
		h = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))
		if _, dup := t.index[h]; dup {
			return nil, &domain.SchemaError{Table: name, Column: h, Reason: "duplicated column name"}
		}
		t.names[i] = h
		t.index[h] = i
		if !slices.Contains(required, h) {
			t.others = append(t.others, i)
		}
	}
	for _, col := range required {
		if _, ok := t.index[col]; !ok {
			return nil, &domain.MissingColumnError{Table: name, Column: col}
		}
	}

	for {
		fields, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read %s table: %w", name, err)
		}
		line, _ := cr.FieldPos(0)
		t.rows = append(t.rows, record{line: line, fields: fields})
	}
	return t, nil
}

func (t *table) otherNames() []string {
	names := make([]string, len(t.others))
	for i, col := range t.others {
		names[i] = t.names[col]
	}
	return names
}

func (t *table) parser(report *ParseReport, row record) *rowParser {
	return &rowParser{t: t, report: report, row: row}
}

// rowParser converts the cells of one row, recording every failure in the
// report instead of stopping at the first.
type rowParser struct {
	t      *table
	report *ParseReport
	row    record
}

func (p *rowParser) cell(col string) string {
	return strings.TrimSpace(p.row.fields[p.t.index[col]])
}

func (p *rowParser) fail(col, value, reason string) {
	p.report.add(p.row.line, col, value, reason)
}

func (p *rowParser) date(col string) domain.Date {
	v := p.cell(col)
	d, err := domain.ParseDate(v)
	if err != nil {
		p.fail(col, v, "invalid date, want YYYY-MM-DD")
	}
	return d
}

func (p *rowParser) severity(col string) domain.Severity {
	v := p.cell(col)
	s, err := domain.ParseSeverity(v)
	if err != nil {
		p.fail(col, v, "unknown severity label")
	}
	return s
}

// point parses a coordinate pair. A present coordinate is kept even when its
// partner is empty, but the point is only valid when both are present. An
// empty coordinate is a failure when required is set.
func (p *rowParser) point(latCol, lonCol string, required bool) domain.Point {
	latStr, lonStr := p.cell(latCol), p.cell(lonCol)
	if latStr == "" || lonStr == "" {
		if required {
			p.fail(latCol+","+lonCol, latStr+","+lonStr, "coordinates required")
		}
	}

	var pt domain.Point
	if latStr != "" {
		pt.Lat, pt.HasLat = p.float(latCol, latStr)
	}
	if lonStr != "" {
		pt.Lon, pt.HasLon = p.float(lonCol, lonStr)
	}
	if !pt.HasLat || !pt.HasLon {
		return pt
	}

	pt.Valid = true
	if required && domain.CoordStatusOf(pt) != domain.CoordOK {
		p.fail(latCol+","+lonCol, latStr+","+lonStr, "coordinates out of range")
	}
	return pt
}

func (p *rowParser) optionalFloat(col string, nonNegative bool) *float64 {
	v := p.cell(col)
	if v == "" {
		return nil
	}
	f, ok := p.float(col, v)
	if !ok {
		return nil
	}
	if nonNegative && f < 0 {
		p.fail(col, v, "negative amount")
		return nil
	}
	return &f
}

func (p *rowParser) float(col, v string) (float64, bool) {
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		p.fail(col, v, "invalid number")
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		p.fail(col, v, "not a finite number")
		return 0, false
	}
	return f, true
}

func (p *rowParser) others() []string {
	vals := make([]string, len(p.t.others))
	for i, col := range p.t.others {
		vals[i] = p.row.fields[col]
	}
	return vals
}
