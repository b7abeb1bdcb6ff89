package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/tebeka/atexit"

	"github.com/FarLeftLane/PicoMemPerf/board"
	"github.com/FarLeftLane/PicoMemPerf/datarecording"
	"github.com/FarLeftLane/PicoMemPerf/monitoring"
	"github.com/FarLeftLane/PicoMemPerf/timing"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Bring up the PSRAM, self-test the regions, and run the benchmarks",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cmd.SilenceUsage = true
		return runBenchmarks(cmd)
	},
}

func init() {
	// A .env file in the working directory provides defaults for the flags.
	_ = godotenv.Load()

	runCmd.Flags().Int("clock-mhz",
		envInt("PICOMEMPERF_CLOCK_MHZ", 150),
		"system clock frequency in MHz")
	runCmd.Flags().Int("test-words",
		envInt("PICOMEMPERF_TEST_WORDS", 16*1024),
		"32-bit words per test region, must be a power of two")
	runCmd.Flags().Int("loop-scale",
		envInt("PICOMEMPERF_LOOP_SCALE", 1),
		"benchmark repeat-count scale factor (outer loops = 100 x scale)")
	runCmd.Flags().Bool("record", false,
		"record results into a SQLite database")
	runCmd.Flags().String("record-db",
		os.Getenv("PICOMEMPERF_RECORD_DB"),
		"database name for --record (default: generated)")
	runCmd.Flags().Bool("monitor", false,
		"serve run progress and results over HTTP")
	runCmd.Flags().Int("monitor-port",
		envInt("PICOMEMPERF_MONITOR_PORT", 0),
		"port for --monitor (default: random)")
	runCmd.Flags().Bool("open-monitor", false,
		"open the monitor in the default browser")
	runCmd.Flags().Int("overclock-khz", 0,
		"overclock the system clock (not supported in this revision)")
	runCmd.Flags().String("psram-id", "5d:26",
		"identity bytes (known-good:extended, hex) the modeled chip reports")

	rootCmd.AddCommand(runCmd)
}

func runBenchmarks(cmd *cobra.Command) error {
	overclock, _ := cmd.Flags().GetInt("overclock-khz")
	if overclock != 0 {
		// The voltage and clock selection path is present but disabled
		// in this revision.
		return fmt.Errorf("overclocking is not supported in this revision")
	}

	clockMHz, _ := cmd.Flags().GetInt("clock-mhz")
	testWords, _ := cmd.Flags().GetInt("test-words")
	loopScale, _ := cmd.Flags().GetInt("loop-scale")

	kgd, eid, err := parseIdentity(cmd)
	if err != nil {
		return err
	}

	builder := board.MakeBuilder().
		WithClockFreq(timing.Freq(clockMHz) * timing.MHz).
		WithTestWords(testWords).
		WithLoopScale(loopScale).
		WithPSRAMIdentity(kgd, eid)

	record, _ := cmd.Flags().GetBool("record")
	if record {
		dbName, _ := cmd.Flags().GetString("record-db")
		builder = builder.WithDataRecorder(
			datarecording.NewSQLiteWriter(dbName))
	}

	brd := builder.Build()

	var monitor *monitoring.Monitor
	if on, _ := cmd.Flags().GetBool("monitor"); on {
		port, _ := cmd.Flags().GetInt("monitor-port")
		monitor = monitoring.NewMonitor().WithPortNumber(port)
		monitor.RegisterBoard(brd)
	}

	fmt.Println("Starting!")

	if _, err := brd.BringUpPSRAM(); err != nil {
		return err
	}

	brd.StatusLine()

	table := brd.TestTable()

	if monitor != nil {
		monitor.RegisterTable(table)
		monitor.StartServer()
		if open, _ := cmd.Flags().GetBool("open-monitor"); open {
			monitor.OpenInBrowser()
		}
	}

	brd.SelfTest(table)
	brd.RunBenchmarks(table)

	atexit.Exit(0)
	return nil
}

func parseIdentity(cmd *cobra.Command) (byte, byte, error) {
	s, _ := cmd.Flags().GetString("psram-id")

	var kgd, eid byte
	_, err := fmt.Sscanf(s, "%02x:%02x", &kgd, &eid)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid --psram-id %q: want kk:ee hex bytes", s)
	}

	return kgd, eid, nil
}

func envInt(key string, fallback int) int {
	s, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}

	v, err := strconv.Atoi(s)
	if err != nil {
		return fallback
	}

	return v
}
