package csvtable

import (
	"bufio"
	"context"
	"encoding/csv"
	"fmt"
	"io"

	"github.com/couchcryptid/collision-enrichment/internal/adapter/atomicfile"
	"github.com/couchcryptid/collision-enrichment/internal/domain"
)

// ctxCheckEvery is how many rows are written between cancellation checks.
const ctxCheckEvery = 10000

// Writer writes the enriched table as RFC 4180 delimited text.
// It implements pipeline.TableSink.
type Writer struct {
	path string
}

// NewWriter creates a delimited-text sink for path.
func NewWriter(path string) *Writer {
	return &Writer{path: path}
}

func (w *Writer) Name() string { return "csv" }

// Prepare writes t to a temporary sibling of the output path. Nothing is
// visible at the path until the returned output is committed.
func (w *Writer) Prepare(ctx context.Context, t *domain.EnrichedTable) (domain.PendingOutput, error) {
	pending, err := atomicfile.Create(w.path)
	if err != nil {
		return nil, err
	}
	bw := bufio.NewWriter(pending)
	err = Encode(ctx, bw, t)
	if err == nil {
		err = bw.Flush()
	}
	if err != nil {
		_ = pending.Discard()
		return nil, fmt.Errorf("write %s: %w", w.path, err)
	}
	return pending, nil
}

// WriteTable prepares and immediately commits the file.
func (w *Writer) WriteTable(ctx context.Context, t *domain.EnrichedTable) error {
	pending, err := w.Prepare(ctx, t)
	if err != nil {
		return err
	}
	return pending.Commit()
}

// Encode writes the header and every row of t to out.
func Encode(ctx context.Context, out io.Writer, t *domain.EnrichedTable) error {
	cw := csv.NewWriter(out)

	cols := t.Columns()
	rec := make([]string, len(cols))
	for i, c := range cols {
		rec[i] = c.Name
	}
	if err := cw.Write(rec); err != nil {
		return err
	}

	for i := range t.Rows {
		if i%ctxCheckEvery == 0 {
			if err := ctx.Err(); err != nil {
				return err
			}
		}
		for j, v := range t.Values(i) {
			rec[j] = FormatCell(v)
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
