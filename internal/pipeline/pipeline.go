package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/couchcryptid/collision-enrichment/internal/domain"
	"github.com/couchcryptid/collision-enrichment/internal/observability"
)

// TableSource loads the three canonical input tables.
type TableSource interface {
	Load(ctx context.Context) (domain.Tables, error)
}

// Enricher joins weather and landmarks onto the events.
type Enricher interface {
	Enrich(ctx context.Context, t domain.Tables) (domain.EnrichedTable, error)
}

// TableSink persists a validated enriched table.
type TableSink interface {
	Name() string
	WriteTable(ctx context.Context, t *domain.EnrichedTable) error
}

// StagedSink is a TableSink that can write its output without publishing it.
// Staged outputs are committed together after every other sink succeeds.
type StagedSink interface {
	TableSink
	Prepare(ctx context.Context, t *domain.EnrichedTable) (domain.PendingOutput, error)
}

// Pipeline runs one load-enrich-validate-write pass.
type Pipeline struct {
	source   TableSource
	enricher Enricher
	sinks    []TableSink
	logger   *slog.Logger
	metrics  *observability.Metrics
	clock    clockwork.Clock
	ready    atomic.Bool

	mu   sync.Mutex
	last *domain.Diagnostics
}

// New creates a Pipeline. Staged sinks are prepared first in the order given,
// then the remaining sinks are written, then the staged outputs are committed.
func New(source TableSource, enricher Enricher, sinks []TableSink, logger *slog.Logger, metrics *observability.Metrics, clock clockwork.Clock) *Pipeline {
	return &Pipeline{
		source:   source,
		enricher: enricher,
		sinks:    sinks,
		logger:   logger,
		metrics:  metrics,
		clock:    clock,
	}
}

// CheckReadiness returns nil once a run has written every sink.
func (p *Pipeline) CheckReadiness(_ context.Context) error {
	if !p.ready.Load() {
		return errors.New("enrichment run has not completed")
	}
	return nil
}

// LastDiagnostics returns the diagnostics of the last successful run.
func (p *Pipeline) LastDiagnostics() (domain.Diagnostics, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.last == nil {
		return domain.Diagnostics{}, false
	}
	return *p.last, true
}

// Run executes the pipeline once. Any stage error aborts the run; sinks after
// a failed one are not written and no staged output is committed.
func (p *Pipeline) Run(ctx context.Context) (domain.Diagnostics, error) {
	p.logger.Info("pipeline started", "sinks", len(p.sinks))
	p.metrics.PipelineRunning.Set(1)
	defer p.metrics.PipelineRunning.Set(0)
	runStart := p.clock.Now()

	var tables domain.Tables
	err := p.stage("load", func() (err error) {
		tables, err = p.source.Load(ctx)
		return err
	})
	if err != nil {
		return domain.Diagnostics{}, err
	}
	p.metrics.LandmarksLoaded.Set(float64(len(tables.Landmarks.Rows)))

	var out domain.EnrichedTable
	err = p.stage("enrich", func() (err error) {
		out, err = p.enricher.Enrich(ctx, tables)
		return err
	})
	if err != nil {
		return domain.Diagnostics{}, err
	}

	if err := p.stage("validate", func() error { return domain.Validate(tables, out) }); err != nil {
		return domain.Diagnostics{}, err
	}

	diag := domain.Diagnose(tables, out)
	p.record(diag)
	p.logSummary(diag)

	if err := p.write(ctx, &out); err != nil {
		return diag, err
	}

	p.mu.Lock()
	p.last = &diag
	p.mu.Unlock()
	p.ready.Store(true)

	p.logger.Info("pipeline finished", "duration", p.clock.Since(runStart).Round(time.Millisecond))
	return diag, nil
}

type stagedOutput struct {
	sink    TableSink
	pending domain.PendingOutput
}

// write prepares every staged sink, writes the others, and commits the staged
// outputs last. On failure every uncommitted staged output is discarded.
func (p *Pipeline) write(ctx context.Context, out *domain.EnrichedTable) error {
	var staged []stagedOutput
	defer func() {
		for _, s := range staged {
			if err := s.pending.Discard(); err != nil {
				p.logger.Warn("discard staged output", "sink", s.sink.Name(), "error", err)
			}
		}
	}()

	for _, sink := range p.sinks {
		ss, ok := sink.(StagedSink)
		if !ok {
			continue
		}
		var pending domain.PendingOutput
		err := p.stage("write", func() (err error) {
			pending, err = ss.Prepare(ctx, out)
			return err
		})
		if err != nil {
			return p.sinkFailed(sink, err)
		}
		staged = append(staged, stagedOutput{sink: sink, pending: pending})
	}

	for _, sink := range p.sinks {
		if _, ok := sink.(StagedSink); ok {
			continue
		}
		if err := p.stage("write", func() error { return sink.WriteTable(ctx, out) }); err != nil {
			return p.sinkFailed(sink, err)
		}
		p.sinkWritten(sink, len(out.Rows))
	}

	for _, s := range staged {
		if err := p.stage("write", s.pending.Commit); err != nil {
			return p.sinkFailed(s.sink, err)
		}
		p.sinkWritten(s.sink, len(out.Rows))
	}
	return nil
}

func (p *Pipeline) sinkFailed(sink TableSink, err error) error {
	p.metrics.SinkErrors.WithLabelValues(sink.Name()).Inc()
	return fmt.Errorf("sink %s: %w", sink.Name(), err)
}

func (p *Pipeline) sinkWritten(sink TableSink, rows int) {
	p.metrics.RowsWritten.WithLabelValues(sink.Name()).Add(float64(rows))
	p.logger.Info("sink written", "sink", sink.Name(), "rows", rows)
}

// stage runs fn and records its duration under the stage label.
func (p *Pipeline) stage(name string, fn func() error) error {
	start := p.clock.Now()
	err := fn()
	p.metrics.RunDuration.WithLabelValues(name).Observe(p.clock.Since(start).Seconds())
	if err != nil {
		p.logger.Error("stage failed", "stage", name, "error", err)
		return fmt.Errorf("%s: %w", name, err)
	}
	return nil
}

func (p *Pipeline) record(d domain.Diagnostics) {
	p.metrics.EventsEnriched.Add(float64(d.Events))
	p.metrics.WeatherJoin.WithLabelValues("matched").Add(float64(d.WeatherMatched))
	p.metrics.WeatherJoin.WithLabelValues("unmatched").Add(float64(d.WeatherUnmatched))
	p.metrics.WithinThreshold.WithLabelValues(strconv.FormatBool(true)).Add(float64(d.WithinThreshold))
	p.metrics.WithinThreshold.WithLabelValues(strconv.FormatBool(false)).Add(float64(d.OutsideThreshold))
	p.metrics.CoordStatus.WithLabelValues(domain.CoordOK.String()).Add(float64(d.CoordsOK))
	p.metrics.CoordStatus.WithLabelValues(domain.CoordMissing.String()).Add(float64(d.CoordsMissing))
	p.metrics.CoordStatus.WithLabelValues(domain.CoordOutOfRange.String()).Add(float64(d.CoordsOutOfRange))
}

func (p *Pipeline) logSummary(d domain.Diagnostics) {
	for _, w := range d.Warnings {
		p.logger.Warn("enrichment warning", "warning", w)
	}
	p.logger.Info("enrichment summary",
		"events", d.Events,
		"weather_days", d.WeatherDays,
		"landmarks", d.Landmarks,
		"weather_matched", d.WeatherMatched,
		"weather_unmatched", d.WeatherUnmatched,
		"precip_day", d.PrecipDay,
		"dry_day", d.DryDay,
		"within_threshold", d.WithinThreshold,
		"outside_threshold", d.OutsideThreshold,
		"coords_missing", d.CoordsMissing,
		"coords_out_of_range", d.CoordsOutOfRange,
	)
}
