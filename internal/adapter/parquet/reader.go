package parquet

import (
	"fmt"

	"github.com/xitongsys/parquet-go-source/local"
	parquetfmt "github.com/xitongsys/parquet-go/parquet"
	"github.com/xitongsys/parquet-go/reader"
	"github.com/xitongsys/parquet-go/source"

	"github.com/couchcryptid/collision-enrichment/internal/domain"
)

// Table is a Parquet file read back into rows of typed cells. Cells use the
// same types as domain.EnrichedTable.Values: Date, float64, bool, int64,
// string, or nil.
type Table struct {
	Columns []string
	Rows    [][]any
}

// ReadFile reads a file written by Writer.
func ReadFile(path string) (*Table, error) {
	fr, err := local.NewLocalFileReader(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer fr.Close()

	t, err := Read(fr)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return t, nil
}

// Read decodes every column of a Parquet file.
func Read(fr source.ParquetFile) (*Table, error) {
	pr, err := reader.NewParquetColumnReader(fr, 1)
	if err != nil {
		return nil, fmt.Errorf("read footer: %w", err)
	}
	defer pr.ReadStop()

	n := pr.GetNumRows()
	leaves := pr.SchemaHandler.SchemaElements[1:]
	t := &Table{Columns: make([]string, len(leaves)), Rows: make([][]any, n)}
	for i := range t.Rows {
		t.Rows[i] = make([]any, len(leaves))
	}

	for c, el := range leaves {
		t.Columns[c] = pr.SchemaHandler.Infos[c+1].ExName
		if n == 0 {
			continue
		}
		values, _, _, err := pr.ReadColumnByIndex(int64(c), n)
		if err != nil {
			return nil, fmt.Errorf("column %q: %w", t.Columns[c], err)
		}
		if int64(len(values)) != n {
			return nil, fmt.Errorf("column %q: read %d of %d values", t.Columns[c], len(values), n)
		}
		for r, v := range values {
			t.Rows[r][c] = logical(el, v)
		}
	}
	return t, nil
}

// logical maps a physical value back to its cell type.
func logical(el *parquetfmt.SchemaElement, v any) any {
	if v == nil || !el.IsSetConvertedType() {
		return v
	}
	x, ok := v.(int32)
	if !ok {
		return v
	}
	switch el.GetConvertedType() {
	case parquetfmt.ConvertedType_DATE:
		return domain.Date(x)
	case parquetfmt.ConvertedType_INT_8:
		return x != 0
	default:
		return v
	}
}
