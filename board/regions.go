package board

import "github.com/FarLeftLane/PicoMemPerf/qmi"

// Bus addresses of the modeled memory map, matching the RP2350 layout.
const (
	ROMBase          = 0x10000000
	PSRAMBase        = 0x11000000
	PSRAMNoCacheBase = 0x14000000
	SRAMBase         = 0x20000000
)

// sliceRegion is a region backed by an ordinary word slice: on-chip SRAM or
// the read-only code image.
type sliceRegion struct {
	base     uint32
	words    []uint32
	writable bool
}

func (r *sliceRegion) Base() uint32   { return r.base }
func (r *sliceRegion) Len() int       { return len(r.words) }
func (r *sliceRegion) Writable() bool { return r.writable }

func (r *sliceRegion) Read32(i int) uint32 { return r.words[i] }

func (r *sliceRegion) Write32(i int, v uint32) {
	if !r.writable {
		// Writes to read-only memory are dropped, as on the real bus.
		return
	}
	r.words[i] = v
}

// mappedRegion is a window onto the external PSRAM through the QMI mapped
// access path. The cached and uncached windows share the same device
// storage and differ only in their bus address.
type mappedRegion struct {
	base  uint32
	words int
	ctrl  *qmi.Controller
}

func (r *mappedRegion) Base() uint32   { return r.base }
func (r *mappedRegion) Len() int       { return r.words }
func (r *mappedRegion) Writable() bool { return true }

func (r *mappedRegion) Read32(i int) uint32 {
	return r.ctrl.MappedRead32(uint32(i) * 4)
}

func (r *mappedRegion) Write32(i int, v uint32) {
	r.ctrl.MappedWrite32(uint32(i)*4, v)
}
