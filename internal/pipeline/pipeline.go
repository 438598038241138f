// internal/pipeline/pipeline.go
package pipeline

import (
	"context"
	"errors"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"seisdisagg-core/disagg"
	"seisdisagg/internal/logging"
	"seisdisagg/internal/telemetry"
)

// Config controls the sharded pipeline.
type Config struct {
	Workers int // concurrent shards (>=1)
	Shards  int // source/rupture shards; 0 means Workers
}

// Result is the outcome of one run.
type Result struct {
	Edges    *disagg.BinEdges
	Matrix   *disagg.Matrix
	Ruptures int // collected rupture records
	Shards   int // source shards actually used
}

// Run disaggregates req with sources split into contiguous shards. Shards are
// collected in parallel, merged in source order, binned once, accumulated in
// parallel over rupture ranges and merged with the union rule. The result
// matches disagg.Disaggregation within floating tolerance.
//
// Errors follow disagg: ErrNoRuptures when nothing survives filtering, and
// ErrNoContribution together with a valid zero matrix. Cancellation returns
// ctx.Err().
func Run(ctx context.Context, cfg Config, req disagg.Request) (*Result, error) {
	if cfg.Workers < 1 {
		cfg.Workers = 1
	}
	if cfg.Shards < 1 {
		cfg.Shards = cfg.Workers
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}
	log := logging.New("pipeline")
	tracer := telemetry.Tracer()

	ctx, span := tracer.Start(ctx, "disagg.run", trace.WithAttributes(
		attribute.Int("sources", len(req.Sources)),
		attribute.Int("workers", cfg.Workers),
	))
	defer span.End()

	data, shards, err := collect(ctx, tracer, cfg, req)
	if err != nil {
		return nil, fail(span, err)
	}
	log.Debug("collected", "ruptures", data.Len(), "shards", shards, "trts", len(data.TRTBins))
	if data.Len() == 0 {
		return nil, fail(span, disagg.ErrNoRuptures)
	}

	_, dspan := tracer.Start(ctx, "disagg.define_bins")
	edges, err := disagg.DefineBins(data, req.MagBinWidth, req.DistBinWidth, req.CoordBinWidth,
		req.TruncationLevel, req.NEpsilons)
	dspan.End()
	if err != nil {
		return nil, fail(span, err)
	}
	log.Debug("bins defined", "shape", fmt.Sprint(edges.Shape()))

	m, err := assemble(ctx, tracer, cfg, data, edges)
	if err != nil {
		return nil, fail(span, err)
	}

	res := &Result{Edges: edges, Matrix: m, Ruptures: data.Len(), Shards: shards}
	if !m.Normalize() {
		span.SetAttributes(attribute.Bool("no_contribution", true))
		return res, disagg.ErrNoContribution
	}
	return res, nil
}

func collect(ctx context.Context, tracer trace.Tracer, cfg Config, req disagg.Request) (*disagg.BinData, int, error) {
	ctx, span := tracer.Start(ctx, "disagg.collect")
	defer span.End()

	ranges := split(len(req.Sources), cfg.Shards)
	parts := make([]*disagg.BinData, len(ranges))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(cfg.Workers)
	for i, r := range ranges {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			sub := req
			sub.Sources = req.Sources[r[0]:r[1]]
			part, err := disagg.CollectBinsData(sub)
			if err != nil {
				return err
			}
			parts[i] = part
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, 0, err
	}
	if err := ctx.Err(); err != nil {
		return nil, 0, err
	}

	data, err := disagg.MergeBinData(parts...)
	if err != nil {
		return nil, 0, err
	}
	// Keep the configured band count when every shard came back empty.
	data.NEpsilons = req.NEpsilons
	span.SetAttributes(attribute.Int("ruptures", data.Len()))
	return data, len(ranges), nil
}

func assemble(ctx context.Context, tracer trace.Tracer, cfg Config, data *disagg.BinData, edges *disagg.BinEdges) (*disagg.Matrix, error) {
	ctx, span := tracer.Start(ctx, "disagg.assemble")
	defer span.End()

	ranges := split(data.Len(), cfg.Shards)
	partials := make([]*disagg.Matrix, len(ranges))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(cfg.Workers)
	for i, r := range ranges {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			m, err := disagg.Accumulate(data, edges, r[0], r[1])
			if err != nil {
				return err
			}
			partials[i] = m
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	out := partials[0]
	for _, p := range partials[1:] {
		if err := out.Merge(p); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// split cuts [0, n) into at most k contiguous, non-empty ranges. n == 0
// yields a single empty range.
func split(n, k int) [][2]int {
	if k > n {
		k = n
	}
	if k < 1 {
		return [][2]int{{0, n}}
	}
	out := make([][2]int, 0, k)
	lo := 0
	for i := 0; i < k; i++ {
		hi := lo + (n-lo)/(k-i)
		out = append(out, [2]int{lo, hi})
		lo = hi
	}
	return out
}

func fail(span trace.Span, err error) error {
	if !errors.Is(err, context.Canceled) {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	return err
}
