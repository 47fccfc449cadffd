// Command disruptorbench drives a disruptorq.Ring with a configurable
// fleet of writers and readers and reports throughput, grounded on the
// teacher package's BenchmarkMPMC_1P1C/BenchmarkMPMC_MPMC shape but run
// as a standalone binary for longer, parameterized soak runs outside
// go test -bench.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"go.uber.org/automaxprocs/maxprocs"
	"golang.org/x/sync/errgroup"

	"github.com/mdegis/disruptorq"
)

func main() {
	var (
		capacity  = flag.Int("capacity", 1<<16, "ring capacity, must be a power of two")
		writers   = flag.Int("writers", 4, "number of writer goroutines")
		readers   = flag.Int("readers", 2, "number of reader (fan-out) goroutines")
		perWriter = flag.Int("per-writer", 1_000_000, "items published per writer")
		logLevel  = flag.String("log-level", "info", "zerolog level: debug, info, warn, error")
	)
	flag.Parse()

	level, err := zerolog.ParseLevel(*logLevel)
	if err != nil {
		fmt.Fprintln(os.Stderr, "invalid -log-level:", err)
		os.Exit(2)
	}
	logger := disruptorq.NewConsoleLogger(level)
	disruptorq.SetLogger(logger)

	// Set GOMAXPROCS from the container's real CPU quota, not the host's
	// visible core count. The writer and reader counts come from flags.
	undo, err := maxprocs.Set(maxprocs.Logger(func(format string, a ...interface{}) {
		logger.Debug().Msgf(format, a...)
	}))
	if err != nil {
		logger.Warn().Err(err).Msg("disruptorbench: failed to set GOMAXPROCS from cgroup quota")
	} else {
		defer undo()
	}

	runID := uuid.New()
	logger.Info().
		Str("run_id", runID.String()).
		Int("capacity", *capacity).
		Int("writers", *writers).
		Int("readers", *readers).
		Int("per_writer", *perWriter).
		Msg("disruptorbench: starting run")

	if err := run(logger, runID, *capacity, *writers, *readers, *perWriter); err != nil {
		logger.Error().Err(err).Msg("disruptorbench: run failed")
		os.Exit(1)
	}
}

func run(logger zerolog.Logger, runID uuid.UUID, capacity, writers, readers, perWriter int) error {
	ring, err := disruptorq.NewRing[int64](capacity,
		disruptorq.WithWaitStrategy[int64](disruptorq.GoschedSpin{Every: 64}))
	if err != nil {
		return fmt.Errorf("disruptorbench: %w", err)
	}

	total := int64(writers) * int64(perWriter)
	var consumed int64

	readerHandles := make([]*disruptorq.Reader[int64], readers)
	for i := range readerHandles {
		readerHandles[i] = ring.CreateReader()
	}
	writerHandles := make([]*disruptorq.Writer[int64], writers)
	for i := range writerHandles {
		writerHandles[i] = ring.CreateWriter()
	}
	ring.Freeze()

	g, ctx := errgroup.WithContext(context.Background())

	start := time.Now()

	for i := 0; i < readers; i++ {
		rd := readerHandles[i]
		g.Go(func() error {
			for c := int64(0); c < total; c++ {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				rd.Read()
				atomic.AddInt64(&consumed, 1)
			}
			return nil
		})
	}

	for i := 0; i < writers; i++ {
		w := writerHandles[i]
		g.Go(func() error {
			for n := 0; n < perWriter; n++ {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				w.Write(int64(n))
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}

	elapsed := time.Since(start)
	logger.Info().
		Str("run_id", runID.String()).
		Dur("elapsed", elapsed).
		Int64("published_per_writer", int64(perWriter)).
		Int64("consumed_per_reader", atomic.LoadInt64(&consumed)/int64(readers)).
		Float64("writes_per_sec", float64(total)/elapsed.Seconds()).
		Msg("disruptorbench: run complete")

	return nil
}
