// Package pipeline wires the ingestion stages end to end: decode → header
// location → row splitting → schema mapping → field coercion → validation →
// rank resolution. One call consumes one export and produces an immutable
// normalized table plus a report accounting for every row; there is no
// shared state between calls.
package pipeline

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"efetivo/internal/decode"
	"efetivo/internal/metrics"
	"efetivo/internal/parser/seap"
	"efetivo/internal/roster"
	"efetivo/internal/schema"
	"efetivo/internal/transformer"
)

// defaultBatchSize is the row batch granularity for the parallel coerce
// stage; cancellation is checked between batches.
const defaultBatchSize = 512

// Config is the full option set consumed at pipeline construction. Zero
// values select documented defaults, so Pipeline{} ingests real SEAP exports
// out of the box.
type Config struct {
	// Encodings is the ordered decode candidate list (decode.DefaultCandidates
	// when empty).
	Encodings []string

	// Parser holds delimiter candidates, header search window and the legacy
	// fixed-offset fallback. Disable the fallback with LegacyHeaderOffset: -1.
	Parser seap.Options

	// Aliases maps raw headers to semantic fields (schema.DefaultAliases when
	// nil).
	Aliases schema.AliasTable

	// Hierarchy is the rank ladder, lowest to highest
	// (roster.DefaultHierarchy when nil).
	Hierarchy []string

	// AgeMin/AgeMax, StrictAge and MaxAgeDropFraction configure the
	// validator; see transformer.Validator.
	AgeMin, AgeMax     int
	StrictAge          bool
	MaxAgeDropFraction float64

	// Workers sets the coerce-stage parallelism (GOMAXPROCS-ish default of 4
	// when zero). BatchSize sets rows per work unit.
	Workers   int
	BatchSize int

	// Job labels metrics emitted by this pipeline.
	Job string

	// Now is injected into coercion and validation for deterministic tests.
	Now func() time.Time
}

// Pipeline executes ingestion runs. It is safe for concurrent use; each
// Ingest call is independent.
type Pipeline struct {
	cfg Config
}

// New constructs a Pipeline, filling Config defaults.
func New(cfg Config) *Pipeline {
	if cfg.Aliases == nil {
		cfg.Aliases = schema.DefaultAliases()
	}
	if cfg.Hierarchy == nil {
		cfg.Hierarchy = roster.DefaultHierarchy
	}
	if cfg.Workers <= 0 {
		cfg.Workers = 4
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = defaultBatchSize
	}
	if cfg.Job == "" {
		cfg.Job = "efetivo"
	}
	return &Pipeline{cfg: cfg}
}

// Ingest runs the full pipeline over one raw export. Fatal conditions
// (unlocatable header, unresolvable required column, cancellation) return an
// error and no table; every non-fatal imperfection is accumulated into the
// report. Callers always get either "no table + fatal reason" or "table +
// full report".
func (p *Pipeline) Ingest(ctx context.Context, data []byte) (*roster.Table, *roster.Report, error) {
	start := time.Now()
	table, rep, err := p.ingest(ctx, data)
	metrics.RecordStage(p.cfg.Job, "ingest", err, time.Since(start))
	if rep != nil {
		metrics.RecordRows(p.cfg.Job, "read", int64(rep.RowsRead))
		metrics.RecordRows(p.cfg.Job, "kept", int64(rep.RowsKept))
		metrics.RecordRows(p.cfg.Job, "dropped", int64(rep.Dropped()))
	}
	return table, rep, err
}

func (p *Pipeline) ingest(ctx context.Context, data []byte) (*roster.Table, *roster.Report, error) {
	rep := roster.NewReport()

	decoded := decode.Decode(data, p.cfg.Encodings)
	rep.EncodingUsed = decoded.Encoding
	if decoded.Degraded {
		rep.Warn(roster.WarnDecodingDegraded)
	}

	raw, err := seap.Parse(decoded.Text, p.cfg.Parser)
	if err != nil {
		return nil, nil, err
	}
	rep.DelimiterDetected = raw.Delimiter
	rep.HeaderRowIndex = raw.HeaderIndex
	rep.RowsRead = raw.RowsRead()
	if raw.Malformed > 0 {
		rep.RowsDropped[roster.DropRowMalformed] = raw.Malformed
	}
	if raw.Truncated > 0 {
		rep.RowsFlagged[roster.FlagRowTruncated] = raw.Truncated
	}
	if raw.HeaderInferred {
		rep.Warn(roster.WarnHeaderInferred)
	}

	cols, err := schema.MapColumns(raw.Headers, p.cfg.Aliases)
	if err != nil {
		return nil, nil, err
	}

	results, err := p.coerceAll(ctx, cols, raw.Rows)
	if err != nil {
		return nil, nil, err
	}

	validator := &transformer.Validator{
		AgeMin:             p.cfg.AgeMin,
		AgeMax:             p.cfg.AgeMax,
		StrictAge:          p.cfg.StrictAge,
		MaxAgeDropFraction: p.cfg.MaxAgeDropFraction,
		Now:                p.cfg.Now,
	}
	kept := validator.Validate(results, rep)
	rep.RowsKept = len(kept)

	resolver := roster.NewResolver(p.cfg.Hierarchy)
	for i := range kept {
		kept[i].RankOrder = resolver.Order(kept[i].Rank)
	}

	return roster.NewTable(kept), rep, nil
}

// coerceAll converts rows in parallel. Rows are independent, so batches are
// fanned out to workers and reassembled by original index; the only ordering
// requirement is the final merge. Cancellation is honored between batches.
func (p *Pipeline) coerceAll(ctx context.Context, cols *schema.Columns, rows [][]string) ([]transformer.RowResult, error) {
	coercer := &transformer.Coercer{Now: p.cfg.Now}
	results := make([]transformer.RowResult, len(rows))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(p.cfg.Workers)

	for lo := 0; lo < len(rows); lo += p.cfg.BatchSize {
		hi := lo + p.cfg.BatchSize
		if hi > len(rows) {
			hi = len(rows)
		}
		lo, hi := lo, hi
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			for i := lo; i < hi; i++ {
				results[i] = coercer.Coerce(cols, rows[i])
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
