package engine

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/nicmue/payment-engine/internal/account"
	"github.com/nicmue/payment-engine/internal/model"
)

// DefaultChannelCapacity bounds each shard's delivery channel. A few
// thousand operations keeps the producer ahead of the workers without
// letting a slow shard buffer the whole input.
const DefaultChannelCapacity = 2048

// Source is the input boundary: an iterator of parsed operations.
// Next returns io.EOF at end of input. A *model.RecordError marks one
// malformed record and leaves the iterator usable; any other error is
// fatal to the stream.
type Source interface {
	Next() (model.Operation, error)
}

// Sink is the output boundary accepting finalized account snapshots.
// The pipeline calls it from a single goroutine, after all workers have
// finished.
type Sink interface {
	Write(snap account.Snapshot) error
	Flush() error
}

// Options configures a pipeline run.
type Options struct {
	// Shards is the worker count. Zero or negative selects the host's
	// reported parallelism.
	Shards int
	// ChannelCapacity bounds each shard channel. Zero or negative selects
	// DefaultChannelCapacity.
	ChannelCapacity int
	// Strict aborts the run on the first malformed record instead of
	// skipping it.
	Strict bool
}

// Stats summarizes a completed run.
type Stats struct {
	Shards    int
	Processed int
	Skipped   int
	Accounts  int
}

// Pipeline orchestrates one end-to-end run: it spawns the shard workers,
// drives the router from the input source, closes the shard channels on end
// of input, and writes the merged snapshots to the sink. It owns only the
// plumbing; account state is mutated exclusively by the workers.
type Pipeline struct {
	opts Options
}

// New creates a pipeline with normalized options.
func New(opts Options) *Pipeline {
	if opts.Shards <= 0 {
		opts.Shards = runtime.NumCPU()
	}
	if opts.Shards < 1 {
		opts.Shards = 1
	}
	if opts.ChannelCapacity <= 0 {
		opts.ChannelCapacity = DefaultChannelCapacity
	}
	return &Pipeline{opts: opts}
}

// Run consumes the source to exhaustion and reports every touched account
// to the sink. It returns once the sink has been flushed. The context is
// checked between records; cancellation abandons the run.
func (p *Pipeline) Run(ctx context.Context, src Source, sink Sink) (Stats, error) {
	shards := make([]*shardEngine, p.opts.Shards)
	channels := make([]chan model.Operation, p.opts.Shards)
	for i := range shards {
		shards[i] = newShardEngine(i, p.opts.ChannelCapacity)
		channels[i] = shards[i].in
	}
	router := NewRouter(channels)

	var g errgroup.Group
	for _, s := range shards {
		g.Go(s.run)
	}

	stats := Stats{Shards: p.opts.Shards}

	// Closing every channel is the workers' only termination signal, so it
	// must happen on all paths out of the produce loop.
	produceErr := p.produce(ctx, src, router, &stats)
	for _, ch := range channels {
		close(ch)
	}
	if err := g.Wait(); err != nil {
		return stats, fmt.Errorf("shard worker: %w", err)
	}
	if produceErr != nil {
		return stats, produceErr
	}

	for _, s := range shards {
		for _, snap := range s.snapshots() {
			if err := sink.Write(snap); err != nil {
				return stats, fmt.Errorf("write snapshot for client %d: %w", snap.Client, err)
			}
			stats.Accounts++
		}
	}
	if err := sink.Flush(); err != nil {
		return stats, fmt.Errorf("flush output: %w", err)
	}
	return stats, nil
}

func (p *Pipeline) produce(ctx context.Context, src Source, router *Router, stats *Stats) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		op, err := src.Next()
		if errors.Is(err, io.EOF) {
			return nil
		}
		var recErr *model.RecordError
		if errors.As(err, &recErr) {
			if p.opts.Strict {
				return fmt.Errorf("malformed record: %w", recErr)
			}
			slog.Warn("skipping malformed record", "line", recErr.Line, "error", recErr.Err)
			stats.Skipped++
			continue
		}
		if err != nil {
			return fmt.Errorf("read input: %w", err)
		}

		router.Route(op)
		stats.Processed++
	}
}
