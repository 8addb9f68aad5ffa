package parquet

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xitongsys/parquet-go-source/buffer"

	"github.com/couchcryptid/collision-enrichment/internal/adapter/csvtable"
	"github.com/couchcryptid/collision-enrichment/internal/domain"
)

func f64(v float64) *float64 { return &v }

func enrichedFixture() *domain.EnrichedTable {
	dist, id := 160.8, 3
	far := 1523.25
	farID := 1
	return &domain.EnrichedTable{
		EventColumns:    []string{"borough"},
		WeatherColumns:  []string{"precipitation", "temperature_max"},
		LandmarkColumns: []string{"location"},
		LandmarkPrefix:  "cam_",
		ThresholdMeters: 250,
		Rows: []domain.EnrichedEvent{
			{
				Event: domain.Event{
					Date:     domain.DateOf(2020, time.January, 1),
					Location: domain.PointOf(43.7, -79.402),
					Severity: domain.SeverityInjury,
					Extra:    []string{"Toronto"},
				},
				Weather:   domain.WeatherFields{Matched: true, PrecipDay: true, Covariates: []*float64{f64(5), nil}, PrecipAmountAny: 5},
				Proximity: domain.ProximityFields{NearestDistance: &dist, WithinThreshold: true, LandmarkID: &id, LandmarkAttrs: []string{"Bloor St W"}},
			},
			{
				Event: domain.Event{
					Date:     domain.DateOf(1969, time.December, 31),
					Severity: domain.SeverityPropertyDamage,
					Extra:    []string{""},
				},
				Proximity: domain.ProximityFields{Status: domain.CoordMissing},
			},
			{
				Event: domain.Event{
					Date:     domain.DateOf(2020, time.January, 3),
					Location: domain.PointOf(43.8, -79.3),
					Severity: domain.SeverityInjury,
					Extra:    []string{"Scarborough"},
				},
				Weather:   domain.WeatherFields{Matched: true, Covariates: []*float64{f64(0), f64(-4.5)}},
				Proximity: domain.ProximityFields{NearestDistance: &far, LandmarkID: &farID, LandmarkAttrs: []string{"King St"}},
			},
		},
	}
}

func encode(t *testing.T, tbl *domain.EnrichedTable) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, Encode(context.Background(), &buf, tbl))
	return buf.Bytes()
}

func decode(t *testing.T, data []byte) *Table {
	t.Helper()
	fr, err := buffer.NewBufferFile(data)
	require.NoError(t, err)
	got, err := Read(fr)
	require.NoError(t, err)
	return got
}

func TestEncode_RoundTrip(t *testing.T) {
	tbl := enrichedFixture()

	got := decode(t, encode(t, tbl))

	var wantCols []string
	for _, c := range tbl.Columns() {
		wantCols = append(wantCols, c.Name)
	}
	assert.Equal(t, wantCols, got.Columns)

	require.Len(t, got.Rows, len(tbl.Rows))
	for i := range tbl.Rows {
		if diff := cmp.Diff(tbl.Values(i), got.Rows[i]); diff != "" {
			t.Errorf("row %d mismatch (-want +got):\n%s", i, diff)
		}
	}
}

func TestEncode_Deterministic(t *testing.T) {
	assert.Equal(t, encode(t, enrichedFixture()), encode(t, enrichedFixture()))
}

func TestEncode_EmptyTable(t *testing.T) {
	tbl := enrichedFixture()
	tbl.Rows = nil

	got := decode(t, encode(t, tbl))
	assert.Len(t, got.Columns, len(tbl.Columns()))
	assert.Empty(t, got.Rows)
}

func TestEncode_MatchesDelimitedOutput(t *testing.T) {
	tbl := enrichedFixture()

	var csvBuf bytes.Buffer
	require.NoError(t, csvtable.Encode(context.Background(), &csvBuf, tbl))
	header, rows, err := csvtable.ReadAll(&csvBuf)
	require.NoError(t, err)

	got := decode(t, encode(t, tbl))
	assert.Equal(t, header, got.Columns)
	for i, row := range got.Rows {
		cells := make([]string, len(row))
		for j, v := range row {
			cells[j] = csvtable.FormatCell(v)
		}
		assert.Equal(t, rows[i], cells, "row %d", i)
	}
}

func TestWriter_WriteTable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "model", "enriched.parquet")
	w := NewWriter(path)
	assert.Equal(t, "parquet", w.Name())

	require.NoError(t, w.WriteTable(context.Background(), enrichedFixture()))

	got, err := ReadFile(path)
	require.NoError(t, err)
	assert.Len(t, got.Rows, 3)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("PAR1")))
}

func TestSchema(t *testing.T) {
	md, err := Schema([]domain.Column{
		{Name: "date", Kind: domain.KindDate},
		{Name: "within_threshold", Kind: domain.KindFlag},
		{Name: "nearest_landmark_id", Kind: domain.KindInt},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{
		"name=date, type=INT32, convertedtype=DATE, repetitiontype=OPTIONAL",
		"name=within_threshold, type=INT32, convertedtype=INT_8, repetitiontype=OPTIONAL",
		"name=nearest_landmark_id, type=INT64, repetitiontype=OPTIONAL",
	}, md)

	_, err = Schema([]domain.Column{{Name: "a,b", Kind: domain.KindString}})
	var se *domain.SchemaError
	require.ErrorAs(t, err, &se)
	assert.True(t, strings.Contains(se.Error(), "a,b"))
}
