// Package bringup implements the one-time PSRAM bring-up protocol: quad-mode
// exit, identification, reset and quad-enable, capacity derivation, and
// programming of the QMI persistent access-format registers. After Setup
// returns a non-zero size the device is reached through ordinary mapped
// loads and stores; the direct-mode engine is never used again.
package bringup

import (
	"fmt"
	"io"

	"github.com/FarLeftLane/PicoMemPerf/qmi"
	"github.com/FarLeftLane/PicoMemPerf/timing"
)

// Command opcodes of the PSRAM command set.
const (
	cmdQuadEnd      = 0xF5
	cmdQuadEnable   = 0x35
	cmdReadID       = 0x9F
	cmdResetEnable  = 0x66
	cmdReset        = 0x99
	cmdQuadRead     = 0xEB
	cmdQuadWrite    = 0x38
	cmdNoop         = 0xFF
	cmdLinearToggle = 0xC0
)

// knownGoodID must come back from the identify command or the device is
// treated as absent.
const knownGoodID = 0x5D

// probeClockDivider is the conservative divider used for every direct-mode
// session. Probing must never depend on timing parameters not yet known to
// be safe.
const probeClockDivider = 30

// resetSettleMicros is the settle time after each reset/enable command. The
// device's internal reset timing requires it regardless of bus clock speed.
const resetSettleMicros = 1

// baseCapacity is the 1 MiB unit the extended ID scales.
const baseCapacity = 1024 * 1024

// DeviceID holds the two identity bytes read from the chip.
type DeviceID struct {
	KnownGood  byte
	ExtendedID byte
}

// Valid reports whether the identity names a functioning part.
func (id DeviceID) Valid() bool {
	return id.KnownGood == knownGoodID
}

// Capacity derives the chip capacity in bytes from the extended ID. The top
// three bits select the tier, except that the 0x26 part reports the largest
// tier regardless of its bit-field encoding.
func (id DeviceID) Capacity() uint64 {
	size := uint64(baseCapacity)
	tier := id.ExtendedID >> 5

	switch {
	case id.ExtendedID == 0x26 || tier == 2:
		size *= 8
	case tier == 1:
		size *= 4
	case tier == 0:
		size *= 1
	}

	return size
}

// An InterruptGuard disables and restores asynchronous interruption. Restore
// must exactly reverse the preceding SaveAndDisable.
type InterruptGuard interface {
	SaveAndDisable() uint32
	Restore(stash uint32)
}

// A DelayFunc blocks for the given number of microseconds.
type DelayFunc func(micros int)

// Setup brings the PSRAM behind ctrl online and returns its capacity in
// bytes together with the identity it read. A zero size with a nil error
// means the device is absent or non-functional; the caller may continue
// without external memory. The entire direct-mode portion runs with
// interrupts disabled because the register block is shared with
// interrupt-context code.
func Setup(
	ctrl *qmi.Controller,
	clk timing.Freq,
	irq InterruptGuard,
	delay DelayFunc,
	console io.Writer,
) (uint64, DeviceID, error) {
	t, err := timing.CalcQMITiming(clk)
	if err != nil {
		return 0, DeviceID{}, err
	}

	fmt.Fprintf(console, "Max Select: %d, Min Deselect: %d, clock divider: %d\n",
		t.MaxSelect, t.MinDeselect, t.ClockDivider)

	stash := irq.SaveAndDisable()

	ctrl.BeginDirectSession(probeClockDivider)
	exitQuadMode(ctrl)
	id := readIdentity(ctrl)
	ctrl.EndDirectSession()

	irq.Restore(stash)

	if !id.Valid() {
		fmt.Fprintf(console, "Invalid PSRAM ID: %x\n", id.KnownGood)
		return 0, id, nil
	}
	fmt.Fprintf(console, "Valid PSRAM ID: %x\n", id.KnownGood)

	stash = irq.SaveAndDisable()

	ctrl.BeginDirectSession(probeClockDivider)
	resetAndEnable(ctrl, delay)
	ctrl.EndDirectSession()

	programAccessFormats(ctrl, t)

	irq.Restore(stash)

	fmt.Fprintf(console, "PSRAM ID: %x %x\n", id.KnownGood, id.ExtendedID)

	return id.Capacity(), id, nil
}

// exitQuadMode forces the chip back to single-wire mode in case a warm boot
// left it in quad mode, which would desynchronize the identification read.
func exitQuadMode(ctrl *qmi.Controller) {
	ctrl.AssertSelect()
	ctrl.ExchangeQuad(cmdQuadEnd)
	ctrl.DeassertSelect()
}

// readIdentity clocks out the identify command followed by six no-op bytes
// and captures the fifth and sixth response bytes.
func readIdentity(ctrl *qmi.Controller) DeviceID {
	var id DeviceID

	ctrl.AssertSelect()
	for i := 0; i < 7; i++ {
		tx := byte(cmdNoop)
		if i == 0 {
			tx = cmdReadID
		}

		rx := ctrl.Exchange(tx)

		switch i {
		case 5:
			id.KnownGood = rx
		case 6:
			id.ExtendedID = rx
		}
	}
	ctrl.DeassertSelect()

	return id
}

// resetAndEnable issues reset-enable, reset, quad-enable, and the linear
// burst toggle, each in its own select window and followed by a settle
// delay. The device provides no acknowledgment; the sequence is trusted.
func resetAndEnable(ctrl *qmi.Controller, delay DelayFunc) {
	for _, cmd := range []byte{cmdResetEnable, cmdReset, cmdQuadEnable, cmdLinearToggle} {
		ctrl.AssertSelect()
		ctrl.Exchange(cmd)
		ctrl.DeassertSelect()
		delay(resetSettleMicros)
	}
}

// programAccessFormats writes the persistent timing, read-format, and
// write-format registers, then marks the mapped window writable. This is the
// step that makes the device ordinarily memory-mapped; a wrong value here
// corrupts every subsequent access instead of failing loudly.
func programAccessFormats(ctrl *qmi.Controller, t timing.QMITiming) {
	ctrl.ProgramTiming(
		uint32(qmi.TimingPageBreak1024)<<qmi.TimingPageBreakLSB |
			1<<qmi.TimingCooldownLSB |
			t.RxDelay<<qmi.TimingRxDelayLSB |
			t.MaxSelect<<qmi.TimingMaxSelectLSB |
			t.MinDeselect<<qmi.TimingMinDeselectLSB |
			t.ClockDivider<<qmi.TimingClkDivLSB)

	ctrl.ProgramReadFormat(
		uint32(qmi.FmtWidthQ)<<qmi.FmtPrefixWidthLSB|
			uint32(qmi.FmtWidthQ)<<qmi.FmtAddrWidthLSB|
			uint32(qmi.FmtWidthQ)<<qmi.FmtSuffixWidthLSB|
			uint32(qmi.FmtWidthQ)<<qmi.FmtDummyWidthLSB|
			uint32(qmi.FmtDummyLen24)<<qmi.FmtDummyLenLSB|
			uint32(qmi.FmtWidthQ)<<qmi.FmtDataWidthLSB|
			uint32(qmi.FmtPrefixLen8)<<qmi.FmtPrefixLenLSB|
			uint32(qmi.FmtSuffixLenNone)<<qmi.FmtSuffixLenLSB,
		cmdQuadRead)

	ctrl.ProgramWriteFormat(
		uint32(qmi.FmtWidthQ)<<qmi.FmtPrefixWidthLSB|
			uint32(qmi.FmtWidthQ)<<qmi.FmtAddrWidthLSB|
			uint32(qmi.FmtWidthQ)<<qmi.FmtSuffixWidthLSB|
			uint32(qmi.FmtWidthQ)<<qmi.FmtDummyWidthLSB|
			uint32(qmi.FmtDummyLenNone)<<qmi.FmtDummyLenLSB|
			uint32(qmi.FmtWidthQ)<<qmi.FmtDataWidthLSB|
			uint32(qmi.FmtPrefixLen8)<<qmi.FmtPrefixLenLSB|
			uint32(qmi.FmtSuffixLenNone)<<qmi.FmtSuffixLenLSB,
		cmdQuadWrite)

	ctrl.EnableMappedWrites()
}
