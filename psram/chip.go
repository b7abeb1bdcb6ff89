// Package psram provides a behavioral model of a quad-mode serial PSRAM
// chip of the kind found behind the RP2350 QMI, such as the APS6404. The
// model decodes the command subset the bring-up protocol and the mapped
// access path use, and keeps its contents in sparse storage.
package psram

// Command opcodes the chip decodes.
const (
	CmdQuadEnd      = 0xF5
	CmdQuadEnable   = 0x35
	CmdReadID       = 0x9F
	CmdResetEnable  = 0x66
	CmdReset        = 0x99
	CmdQuadRead     = 0xEB
	CmdQuadWrite    = 0x38
	CmdNoop         = 0xFF
	CmdLinearToggle = 0xC0
)

// KnownGoodID is the identity byte a functioning part of this family
// reports.
const KnownGoodID = 0x5D

// Response byte positions of the read-ID transaction: the command byte is
// exchange 0, three don't-care address bytes follow, then MF ID padding; the
// known-good byte arrives on exchange 5 and the extended ID on exchange 6.
const (
	idKnownGoodPos = 5
	idExtendedPos  = 6
)

// Chip is the modeled PSRAM device. It implements qmi.SerialDevice and
// qmi.MappedDevice. Not safe for concurrent use, matching the single
// half-duplex bus it models.
type Chip struct {
	knownGood  byte
	extendedID byte
	store      *storage

	selected    bool
	quadMode    bool
	resetArmed  bool
	linearBurst bool

	cmd      byte
	haveCmd  bool
	exchange int
}

// Builder builds PSRAM chips.
type Builder struct {
	knownGood  byte
	extendedID byte
	capacity   uint32
}

// MakeBuilder returns a Builder with the default 8 MiB part identity.
func MakeBuilder() Builder {
	return Builder{
		knownGood:  KnownGoodID,
		extendedID: 0x26,
		capacity:   8 * 1024 * 1024,
	}
}

// WithIdentity sets the two identity bytes the chip reports.
func (b Builder) WithIdentity(knownGood, extendedID byte) Builder {
	b.knownGood = knownGood
	b.extendedID = extendedID
	return b
}

// WithCapacity sets the chip capacity in bytes.
func (b Builder) WithCapacity(capacity uint32) Builder {
	b.capacity = capacity
	return b
}

// Build creates the chip.
func (b Builder) Build() *Chip {
	if b.capacity == 0 {
		panic("psram: capacity must be positive")
	}

	return &Chip{
		knownGood:   b.knownGood,
		extendedID:  b.extendedID,
		store:       newStorage(b.capacity),
		linearBurst: true,
	}
}

// QuadMode reports whether the chip is in quad signaling mode.
func (c *Chip) QuadMode() bool { return c.quadMode }

// LinearBurst reports whether linear burst mode is active. It is the power-on
// default and an armed reset restores it.
func (c *Chip) LinearBurst() bool { return c.linearBurst }

// SelectChanged implements qmi.SerialDevice. A select edge resets the
// command framing.
func (c *Chip) SelectChanged(asserted bool) {
	c.selected = asserted
	c.haveCmd = false
	c.exchange = 0
}

// ExchangeByte implements qmi.SerialDevice. The first byte of a selected
// transaction is the command; the chip only decodes bytes signaled at the
// width matching its current mode. The quad-mode-exit opcode is the single
// exception: it is decoded quad-wide regardless, so a warm boot can always
// force the chip back to single-wire mode.
func (c *Chip) ExchangeByte(tx byte, quadWidth bool) byte {
	if !c.selected {
		return 0xFF
	}

	pos := c.exchange
	c.exchange++

	if !c.haveCmd {
		c.haveCmd = true
		c.decodeCommand(tx, quadWidth)
		return 0xFF
	}

	if c.cmd == CmdReadID && !c.quadMode {
		switch pos {
		case idKnownGoodPos:
			return c.knownGood
		case idExtendedPos:
			return c.extendedID
		}
	}

	return 0xFF
}

func (c *Chip) decodeCommand(tx byte, quadWidth bool) {
	if quadWidth {
		if tx == CmdQuadEnd {
			c.quadMode = false
		}
		c.cmd = CmdNoop
		return
	}

	if c.quadMode {
		// Single-wire traffic is noise to a chip in quad mode.
		c.cmd = CmdNoop
		return
	}

	c.cmd = tx

	switch tx {
	case CmdResetEnable:
		c.resetArmed = true
	case CmdReset:
		if c.resetArmed {
			c.quadMode = false
			c.linearBurst = true
			c.resetArmed = false
		}
	case CmdQuadEnable:
		c.quadMode = true
		c.resetArmed = false
	case CmdLinearToggle:
		c.linearBurst = !c.linearBurst
		c.resetArmed = false
	case CmdReadID:
		c.resetArmed = false
	}
}

// MappedRead implements qmi.MappedDevice. The chip only services quad reads
// with the correct opcode while in quad mode; anything else leaves the data
// lines floating high.
func (c *Chip) MappedRead(cmd byte, addr uint32, p []byte) {
	if !c.quadMode || cmd != CmdQuadRead {
		for i := range p {
			p[i] = 0xFF
		}
		return
	}

	c.store.read(addr, p)
}

// MappedWrite implements qmi.MappedDevice. Writes with a wrong opcode or
// outside quad mode are silently dropped.
func (c *Chip) MappedWrite(cmd byte, addr uint32, p []byte) {
	if !c.quadMode || cmd != CmdQuadWrite {
		return
	}

	c.store.write(addr, p)
}
