// Package datarecording stores bring-up diagnostics, self-test outcomes, and
// benchmark results in a SQLite database, so runs on different clocks and
// parts can be compared after the fact.
package datarecording

import (
	"database/sql"
	"fmt"
	"os"

	// Need to use SQLite connections.
	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/xid"
	"github.com/tebeka/atexit"
)

// BringUpDiag is one bring-up attempt.
type BringUpDiag struct {
	Run         string
	ClockHz     int64
	Divider     uint32
	RxDelay     uint32
	MaxSelect   uint32
	MinDeselect uint32
	KnownGood   byte
	ExtendedID  byte
	SizeBytes   uint64
}

// SelfTestResult is one region's integrity-test outcome.
type SelfTestResult struct {
	Run     string
	Test    string
	Passed  bool
	Skipped bool
}

// BenchResult is one benchmark pass.
type BenchResult struct {
	Run           string
	Test          string
	Base          uint32
	Words         int
	ElapsedMicros int64
}

// DataRecorder is a backend that can record and store run data.
type DataRecorder interface {
	RecordBringUp(d BringUpDiag)
	RecordSelfTest(r SelfTestResult)
	RecordBench(r BenchResult)

	// Flush writes all buffered rows to the database.
	Flush()
}

// SQLiteWriter records run data into a SQLite database file.
type SQLiteWriter struct {
	*sql.DB

	dbName    string
	batchSize int

	bringUps  []BringUpDiag
	selfTests []SelfTestResult
	benches   []BenchResult
}

// NewSQLiteWriter creates a SQLiteWriter writing to path. With an empty
// path a unique name is generated.
func NewSQLiteWriter(path string) *SQLiteWriter {
	w := &SQLiteWriter{
		dbName:    path,
		batchSize: 1000,
	}

	w.Init()

	atexit.Register(func() { w.Flush() })

	return w
}

// Init establishes the connection to the database and creates the tables.
func (w *SQLiteWriter) Init() {
	if w.dbName == "" {
		w.dbName = "pico_mem_perf_" + xid.New().String()
	}

	filename := w.dbName + ".sqlite3"

	_, err := os.Stat(filename)
	if err == nil {
		panic(fmt.Errorf("file %s already exists", filename))
	}

	fmt.Fprintf(os.Stderr, "Database created for recording: %s\n", filename)

	db, err := sql.Open("sqlite3", filename)
	if err != nil {
		panic(err)
	}

	w.DB = db
	w.createTables()
}

func (w *SQLiteWriter) createTables() {
	stmts := []string{
		`CREATE TABLE bringup_diag (
			run TEXT, clock_hz INTEGER,
			divider INTEGER, rx_delay INTEGER,
			max_select INTEGER, min_deselect INTEGER,
			known_good INTEGER, extended_id INTEGER,
			size_bytes INTEGER)`,
		`CREATE TABLE selftest_result (
			run TEXT, test TEXT, passed INTEGER, skipped INTEGER)`,
		`CREATE TABLE bench_result (
			run TEXT, test TEXT, base INTEGER,
			words INTEGER, elapsed_micros INTEGER)`,
	}

	for _, s := range stmts {
		_, err := w.Exec(s)
		if err != nil {
			panic(err)
		}
	}
}

// RecordBringUp buffers one bring-up row.
func (w *SQLiteWriter) RecordBringUp(d BringUpDiag) {
	w.bringUps = append(w.bringUps, d)
	w.flushIfFull()
}

// RecordSelfTest buffers one self-test row.
func (w *SQLiteWriter) RecordSelfTest(r SelfTestResult) {
	w.selfTests = append(w.selfTests, r)
	w.flushIfFull()
}

// RecordBench buffers one benchmark row.
func (w *SQLiteWriter) RecordBench(r BenchResult) {
	w.benches = append(w.benches, r)
	w.flushIfFull()
}

func (w *SQLiteWriter) flushIfFull() {
	if len(w.bringUps)+len(w.selfTests)+len(w.benches) >= w.batchSize {
		w.Flush()
	}
}

// Flush writes all buffered rows to the database.
func (w *SQLiteWriter) Flush() {
	tx, err := w.Begin()
	if err != nil {
		panic(err)
	}

	for _, d := range w.bringUps {
		_, err := tx.Exec(
			`INSERT INTO bringup_diag VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			d.Run, d.ClockHz, d.Divider, d.RxDelay,
			d.MaxSelect, d.MinDeselect,
			d.KnownGood, d.ExtendedID, d.SizeBytes)
		if err != nil {
			panic(err)
		}
	}

	for _, r := range w.selfTests {
		_, err := tx.Exec(
			`INSERT INTO selftest_result VALUES (?, ?, ?, ?)`,
			r.Run, r.Test, r.Passed, r.Skipped)
		if err != nil {
			panic(err)
		}
	}

	for _, r := range w.benches {
		_, err := tx.Exec(
			`INSERT INTO bench_result VALUES (?, ?, ?, ?, ?)`,
			r.Run, r.Test, r.Base, r.Words, r.ElapsedMicros)
		if err != nil {
			panic(err)
		}
	}

	err = tx.Commit()
	if err != nil {
		panic(err)
	}

	w.bringUps = w.bringUps[:0]
	w.selfTests = w.selfTests[:0]
	w.benches = w.benches[:0]
}
