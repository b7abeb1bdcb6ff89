package board

import "time"

// WallClock provides the monotonic microsecond timestamps and delays the
// harness and the bring-up protocol use.
type WallClock struct {
	start time.Time
}

// NewWallClock creates a clock whose zero is now.
func NewWallClock() *WallClock {
	return &WallClock{start: time.Now()}
}

// NowMicros returns microseconds elapsed since the clock was created.
func (c *WallClock) NowMicros() int64 {
	return time.Since(c.start).Microseconds()
}

// DelayMicros blocks for at least the given number of microseconds. The
// explicit microsecond denomination keeps device settle times independent of
// execution speed.
func (c *WallClock) DelayMicros(micros int) {
	time.Sleep(time.Duration(micros) * time.Microsecond)
}
