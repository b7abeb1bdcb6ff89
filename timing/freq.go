package timing

import (
	"log"
	"time"
)

// Freq defines the type of frequency
type Freq float64

// Defines the unit of frequency
const (
	Hz  Freq = 1
	KHz Freq = 1e3
	MHz Freq = 1e6
	GHz Freq = 1e9
)

// Period returns the time between two consecutive clock edges.
func (f Freq) Period() time.Duration {
	if f <= 0 {
		log.Panic("frequency must be positive")
	}
	return time.Duration(1e9 / float64(f))
}

// PeriodFemtos returns the clock period in femtoseconds, truncated toward
// zero. Timing-register math is carried out on integer femtoseconds so that
// rounding direction stays explicit.
func (f Freq) PeriodFemtos() int64 {
	if f <= 0 {
		log.Panic("frequency must be positive")
	}
	return int64(1e15) / int64(f)
}

// Cycles converts a duration to the number of whole clock cycles it spans.
func (f Freq) Cycles(d time.Duration) uint64 {
	return uint64(float64(d) / 1e9 * float64(f))
}
