// Package membench measures memory bandwidth over arbitrary 32-bit memory
// regions under sequential and pseudo-random access patterns, and provides a
// write/verify integrity smoke test for writable regions.
package membench

import (
	"fmt"
	"sync/atomic"
)

// A Region is a run of 32-bit words the harness can touch. Implementations
// back regions with plain slices (SRAM, ROM) or with the QMI mapped path
// (external PSRAM windows).
type Region interface {
	// Base returns the bus address of the first word, used for reporting.
	Base() uint32

	// Len returns the number of 32-bit words in the region.
	Len() int

	// Writable reports whether the region may be written. Code and other
	// read-only regions are excluded from write tests by this category
	// flag, never by address-range comparison.
	Writable() bool

	Read32(i int) uint32
	Write32(i int, v uint32)
}

// A TestConfig describes one benchmark pass over a region. All fields are
// fixed at table construction; ResultMicros is written exactly once by Run.
type TestConfig struct {
	Region    Region
	LoopScale int
	Read      bool
	Random    bool
	Name      string

	ResultMicros int64
}

// NewTestConfig builds a descriptor, checking the constraints the random
// pattern depends on.
func NewTestConfig(name string, r Region, loopScale int, read, random bool) *TestConfig {
	if r.Len() <= 0 || r.Len()&(r.Len()-1) != 0 {
		panic(fmt.Sprintf("membench: region %q length %d is not a power of two", name, r.Len()))
	}
	if loopScale < 1 {
		panic(fmt.Sprintf("membench: loop scale %d must be at least 1", loopScale))
	}

	return &TestConfig{
		Region:    r,
		LoopScale: loopScale,
		Read:      read,
		Random:    random,
		Name:      name,
	}
}

// Result returns the elapsed time stored by Run. Unlike a direct field read,
// it is safe while a pass is still running on another goroutine.
func (cfg *TestConfig) Result() int64 {
	return atomic.LoadInt64(&cfg.ResultMicros)
}
