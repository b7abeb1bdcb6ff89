package membench

import (
	"fmt"
	"io"
	"sync/atomic"
)

// A Clock provides the monotonic microsecond timestamps the harness records
// elapsed time with. Its resolution must be fine enough to distinguish
// on-chip RAM from uncached external RAM, which differ by more than an order
// of magnitude.
type Clock interface {
	NowMicros() int64
}

// A Recorder receives structured copies of the lines the harness prints.
// A nil Recorder is allowed.
type Recorder interface {
	RecordBench(name string, base uint32, words int, elapsedMicros int64)
	RecordSelfTest(name string, passed, skipped bool)
}

// A ProgressFunc is told when each pass of a table starts. Nil is allowed.
type ProgressFunc func(name string, index, total int)

// Run executes one benchmark pass and stores the elapsed time into the
// descriptor. Read sums are discarded into sink after the loop so the access
// loop cannot be optimized away. Regions are never tested concurrently; the
// caller drives passes one at a time.
func Run(cfg *TestConfig, sink *uint32, clock Clock) int64 {
	r := cfg.Region
	size := r.Len()
	loopCount := 100 * cfg.LoopScale

	var value uint32

	start := clock.NowMicros()

	switch {
	case cfg.Random && cfg.Read:
		g := NewLCG()
		for loop := 0; loop < loopCount; loop++ {
			for i := 0; i < size; i++ {
				value += r.Read32(g.Next(size))
			}
		}
	case cfg.Random:
		g := NewLCG()
		for loop := 0; loop < loopCount; loop++ {
			for i := 0; i < size; i++ {
				r.Write32(g.Next(size), value)
				value++
			}
		}
	case cfg.Read:
		for loop := 0; loop < loopCount; loop++ {
			for i := 0; i < size; i++ {
				value += r.Read32(i)
			}
		}
	default:
		for loop := 0; loop < loopCount; loop++ {
			for i := 0; i < size; i++ {
				r.Write32(i, value)
				value++
			}
		}
	}

	elapsed := clock.NowMicros() - start

	*sink = value
	// Stored atomically so the monitor can read results mid-run.
	atomic.StoreInt64(&cfg.ResultMicros, elapsed)

	return elapsed
}

// RunAll runs every pass in the table in order, printing one result line per
// pass in the fixed transcript shape.
func RunAll(
	table []*TestConfig,
	sink *uint32,
	clock Clock,
	console io.Writer,
	rec Recorder,
	progress ProgressFunc,
) {
	for i, cfg := range table {
		if progress != nil {
			progress(cfg.Name, i, len(table))
		}

		Run(cfg, sink, clock)

		fmt.Fprintf(console, "Test, %s, 0x%08X, %d, %d\n",
			cfg.Name, cfg.Region.Base(), cfg.Region.Len(), cfg.ResultMicros)

		if rec != nil {
			rec.RecordBench(cfg.Name, cfg.Region.Base(), cfg.Region.Len(), cfg.ResultMicros)
		}
	}
}
