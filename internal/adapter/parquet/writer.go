package parquet

import (
	"context"
	"fmt"
	"io"

	parquetfmt "github.com/xitongsys/parquet-go/parquet"
	"github.com/xitongsys/parquet-go/writer"

	"github.com/couchcryptid/collision-enrichment/internal/adapter/atomicfile"
	"github.com/couchcryptid/collision-enrichment/internal/domain"
)

// ctxCheckEvery is how many rows are written between cancellation checks.
const ctxCheckEvery = 10000

// Writer writes the enriched table as a Snappy-compressed Parquet file.
// It implements pipeline.TableSink.
type Writer struct {
	path string
}

// NewWriter creates a columnar sink for path.
func NewWriter(path string) *Writer {
	return &Writer{path: path}
}

func (w *Writer) Name() string { return "parquet" }

// Prepare writes t, footer included, to a temporary sibling of the output
// path. Nothing is visible at the path until the returned output is committed.
func (w *Writer) Prepare(ctx context.Context, t *domain.EnrichedTable) (domain.PendingOutput, error) {
	pending, err := atomicfile.Create(w.path)
	if err != nil {
		return nil, err
	}
	if err := Encode(ctx, pending, t); err != nil {
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

// Encode writes t to out as Parquet. A single marshalling goroutine keeps
// the byte layout identical across runs.
func Encode(ctx context.Context, out io.Writer, t *domain.EnrichedTable) error {
	md, err := Schema(t.Columns())
	if err != nil {
		return err
	}
	pw, err := writer.NewCSVWriterFromWriter(md, out, 1)
	if err != nil {
		return fmt.Errorf("create parquet writer: %w", err)
	}
	pw.CompressionType = parquetfmt.CompressionCodec_SNAPPY

	for i := range t.Rows {
		if i%ctxCheckEvery == 0 {
			if err := ctx.Err(); err != nil {
				return err
			}
		}
		vals := t.Values(i)
		for j := range vals {
			vals[j] = physical(vals[j])
		}
		if err := pw.Write(vals); err != nil {
			return fmt.Errorf("row %d: %w", i, err)
		}
	}
	if err := pw.WriteStop(); err != nil {
		return fmt.Errorf("finish parquet file: %w", err)
	}
	return nil
}
