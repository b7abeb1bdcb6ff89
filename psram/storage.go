package psram

// A storage keeps the data of the modeled chip.
//
// The storage manages data in fixed-size units so that untouched parts of a
// large chip cost no host memory. Addresses wrap at the chip capacity, as
// the real part wraps its internal address counter.
type storage struct {
	unitSize uint32
	capacity uint32
	units    map[uint32][]byte
}

func newStorage(capacity uint32) *storage {
	return &storage{
		unitSize: 4096,
		capacity: capacity,
		units:    make(map[uint32][]byte),
	}
}

func (s *storage) unitFor(addr uint32) ([]byte, uint32) {
	addr %= s.capacity
	inUnit := addr % s.unitSize
	base := addr - inUnit

	unit, ok := s.units[base]
	if !ok {
		unit = make([]byte, s.unitSize)
		s.units[base] = unit
	}

	return unit, inUnit
}

func (s *storage) read(addr uint32, p []byte) {
	for i := range p {
		unit, inUnit := s.unitFor(addr + uint32(i))
		p[i] = unit[inUnit]
	}
}

func (s *storage) write(addr uint32, p []byte) {
	for i := range p {
		unit, inUnit := s.unitFor(addr + uint32(i))
		unit[inUnit] = p[i]
	}
}
