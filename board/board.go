// Package board assembles the modeled hardware into one runnable target: the
// system clock, the interrupt controller, on-chip SRAM, the read-only code
// image, and the QMI controller with its external PSRAM chip. A Board is
// built once, brought up once, and never torn down.
package board

import (
	"fmt"
	"io"
	"os"

	"github.com/rs/xid"
	"github.com/shirou/gopsutil/process"

	"github.com/FarLeftLane/PicoMemPerf/bringup"
	"github.com/FarLeftLane/PicoMemPerf/datarecording"
	"github.com/FarLeftLane/PicoMemPerf/membench"
	"github.com/FarLeftLane/PicoMemPerf/psram"
	"github.com/FarLeftLane/PicoMemPerf/qmi"
	"github.com/FarLeftLane/PicoMemPerf/timing"
)

// Board is the assembled target. All methods must be called from a single
// goroutine; the modeled hardware has no concurrency.
type Board struct {
	name  string
	runID string

	clockFreq timing.Freq
	clock     *WallClock
	irq       *InterruptController
	console   io.Writer

	ctrl *qmi.Controller
	chip *psram.Chip

	sram *sliceRegion
	rom  *sliceRegion

	testWords int
	loopScale int

	recorder datarecording.DataRecorder
	progress membench.ProgressFunc

	psramSize uint64
	broughtUp bool

	// sink receives benchmark read sums so the access loops cannot be
	// optimized away.
	sink uint32
}

// Builder builds boards.
type Builder struct {
	name       string
	clockFreq  timing.Freq
	testWords  int
	loopScale  int
	console    io.Writer
	recorder   datarecording.DataRecorder
	knownGood  byte
	extendedID byte
	capacity   uint32
}

// MakeBuilder returns a Builder with the stock board configuration: a
// 150 MHz system clock, 16 Ki test words per region, and an 8 MiB PSRAM.
func MakeBuilder() Builder {
	return Builder{
		name:       "Board",
		clockFreq:  150 * timing.MHz,
		testWords:  16 * 1024,
		loopScale:  1,
		console:    os.Stdout,
		knownGood:  psram.KnownGoodID,
		extendedID: 0x26,
		capacity:   8 * 1024 * 1024,
	}
}

// WithName sets the name of the board.
func (b Builder) WithName(name string) Builder {
	b.name = name
	return b
}

// WithClockFreq sets the system clock frequency.
func (b Builder) WithClockFreq(f timing.Freq) Builder {
	b.clockFreq = f
	return b
}

// WithTestWords sets the number of 32-bit words each test region holds.
// Must be a power of two.
func (b Builder) WithTestWords(words int) Builder {
	b.testWords = words
	return b
}

// WithLoopScale sets the benchmark repeat-count scale factor.
func (b Builder) WithLoopScale(scale int) Builder {
	b.loopScale = scale
	return b
}

// WithConsole sets the console output sink.
func (b Builder) WithConsole(w io.Writer) Builder {
	b.console = w
	return b
}

// WithDataRecorder attaches a result recorder.
func (b Builder) WithDataRecorder(rec datarecording.DataRecorder) Builder {
	b.recorder = rec
	return b
}

// WithPSRAMIdentity sets the identity bytes the modeled chip reports.
func (b Builder) WithPSRAMIdentity(knownGood, extendedID byte) Builder {
	b.knownGood = knownGood
	b.extendedID = extendedID
	return b
}

// WithPSRAMCapacity sets the modeled chip capacity in bytes.
func (b Builder) WithPSRAMCapacity(capacity uint32) Builder {
	b.capacity = capacity
	return b
}

// Build assembles the board.
func (b Builder) Build() *Board {
	if b.testWords <= 0 || b.testWords&(b.testWords-1) != 0 {
		panic(fmt.Sprintf("board: test words %d must be a power of two", b.testWords))
	}

	chip := psram.MakeBuilder().
		WithIdentity(b.knownGood, b.extendedID).
		WithCapacity(b.capacity).
		Build()

	brd := &Board{
		name:      b.name,
		runID:     xid.New().String(),
		clockFreq: b.clockFreq,
		clock:     NewWallClock(),
		irq:       NewInterruptController(),
		console:   b.console,
		chip:      chip,
		ctrl:      qmi.NewController(b.name+".QMI", chip),
		testWords: b.testWords,
		loopScale: b.loopScale,
		recorder:  b.recorder,
	}

	brd.sram = &sliceRegion{
		base:     SRAMBase,
		words:    make([]uint32, b.testWords),
		writable: true,
	}
	brd.rom = &sliceRegion{
		base:  ROMBase,
		words: make([]uint32, b.testWords),
	}

	return brd
}

// Name returns the name of the board.
func (b *Board) Name() string { return b.name }

// RunID returns the unique ID of this run.
func (b *Board) RunID() string { return b.runID }

// Controller returns the QMI controller.
func (b *Board) Controller() *qmi.Controller { return b.ctrl }

// Interrupts returns the interrupt controller.
func (b *Board) Interrupts() *InterruptController { return b.irq }

// Clock returns the board clock.
func (b *Board) Clock() *WallClock { return b.clock }

// PSRAMSize returns the mapped external memory size. Zero before bring-up
// or when the device is absent.
func (b *Board) PSRAMSize() uint64 { return b.psramSize }

// OnProgress installs a callback told when each benchmark pass starts.
func (b *Board) OnProgress(f membench.ProgressFunc) {
	b.progress = f
}

// BringUpPSRAM performs the one-time bring-up of the external PSRAM and
// returns its size. Strictly once per boot; a second call panics.
func (b *Board) BringUpPSRAM() (uint64, error) {
	if b.broughtUp {
		panic("board: PSRAM bring-up is once per boot")
	}
	b.broughtUp = true

	size, id, err := bringup.Setup(
		b.ctrl, b.clockFreq, b.irq, b.clock.DelayMicros, b.console)
	if err != nil {
		return 0, err
	}

	b.psramSize = size

	if b.recorder != nil {
		t, _ := timing.CalcQMITiming(b.clockFreq)
		b.recorder.RecordBringUp(datarecording.BringUpDiag{
			Run:         b.runID,
			ClockHz:     int64(b.clockFreq),
			Divider:     t.ClockDivider,
			RxDelay:     t.RxDelay,
			MaxSelect:   t.MaxSelect,
			MinDeselect: t.MinDeselect,
			KnownGood:   id.KnownGood,
			ExtendedID:  id.ExtendedID,
			SizeBytes:   size,
		})
	}

	return size, nil
}

// TestTable builds the benchmark descriptor table against the live regions,
// in a fixed order: sequential reads, random
// reads, sequential writes, random writes. PSRAM rows are only present when
// bring-up mapped a device. The table is immutable after construction apart
// from the result fields the harness owns.
func (b *Board) TestTable() []*membench.TestConfig {
	psramCached := &mappedRegion{
		base:  PSRAMBase,
		words: b.testWords,
		ctrl:  b.ctrl,
	}
	psramUncached := &mappedRegion{
		base:  PSRAMNoCacheBase,
		words: b.testWords,
		ctrl:  b.ctrl,
	}

	havePSRAM := b.psramSize > 0

	var table []*membench.TestConfig

	add := func(name string, r membench.Region, read, random bool) {
		table = append(table,
			membench.NewTestConfig(name, r, b.loopScale, read, random))
	}

	add("SEQ SRAM READ", b.sram, true, false)
	add("SEQ ROM READ", b.rom, true, false)
	if havePSRAM {
		add("SEQ PSRAM READ", psramCached, true, false)
		add("SEQ PSRAM NOCACHE READ", psramUncached, true, false)
	}

	add("RND SRAM READ", b.sram, true, true)
	add("RND ROM READ", b.rom, true, true)
	if havePSRAM {
		add("RND PSRAM READ", psramCached, true, true)
		add("RND PSRAM NOCACHE READ", psramUncached, true, true)
	}

	add("SEQ SRAM WRITE", b.sram, false, false)
	if havePSRAM {
		add("SEQ PSRAM WRITE", psramCached, false, false)
		add("SEQ PSRAM NOCACHE WRITE", psramUncached, false, false)
	}

	add("RND SRAM WRITE", b.sram, false, true)
	if havePSRAM {
		add("RND PSRAM WRITE", psramCached, false, true)
		add("RND PSRAM NOCACHE WRITE", psramUncached, false, true)
	}

	return table
}

// SelfTest runs the integrity sweep over every writable region in the
// table.
func (b *Board) SelfTest(table []*membench.TestConfig) {
	membench.SelfTest(table, b.console, b.benchRecorder())
}

// RunBenchmarks runs every benchmark pass in the table.
func (b *Board) RunBenchmarks(table []*membench.TestConfig) {
	membench.RunAll(table, &b.sink, b.clock, b.console, b.benchRecorder(), b.progress)
}

func (b *Board) benchRecorder() membench.Recorder {
	if b.recorder == nil {
		return nil
	}
	return &recorderAdapter{run: b.runID, rec: b.recorder}
}

// recorderAdapter bridges the harness's flat recording calls to the typed
// data recorder rows.
type recorderAdapter struct {
	run string
	rec datarecording.DataRecorder
}

func (a *recorderAdapter) RecordBench(name string, base uint32, words int, elapsedMicros int64) {
	a.rec.RecordBench(datarecording.BenchResult{
		Run:           a.run,
		Test:          name,
		Base:          base,
		Words:         words,
		ElapsedMicros: elapsedMicros,
	})
}

func (a *recorderAdapter) RecordSelfTest(name string, passed, skipped bool) {
	a.rec.RecordSelfTest(datarecording.SelfTestResult{
		Run:     a.run,
		Test:    name,
		Passed:  passed,
		Skipped: skipped,
	})
}

// StatusLine prints the post-bring-up status line, with the process
// resident set standing in for the target's heap counters. The counter is
// sampled twice, around the point where test memory would be allocated.
func (b *Board) StatusLine() {
	before := processRSS()
	after := processRSS()
	fmt.Fprintf(b.console,
		"_psram_size, %d, clock_hz, %d, free_heap, %d, free_heap_after, %d\n",
		b.psramSize, int64(b.clockFreq), before, after)
}

func processRSS() uint64 {
	p, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		return 0
	}

	info, err := p.MemoryInfo()
	if err != nil {
		return 0
	}

	return info.RSS
}
