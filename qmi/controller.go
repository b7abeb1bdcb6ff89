// Package qmi models the quad memory interface of an RP2350-class chip. It
// exposes the direct (bypass) transaction interface used during external
// memory bring-up, and the persistent per-target format registers that make
// the external device ordinarily memory-mapped once programmed.
package qmi

import "encoding/binary"

// A SerialDevice sits on the far side of the QMI chip-select line and reacts
// to direct-mode byte exchanges.
type SerialDevice interface {
	// SelectChanged reports an edge on the chip-select line.
	SelectChanged(asserted bool)

	// ExchangeByte clocks one byte out to the device and returns the byte
	// the device drove back during the same clock period. quadWidth reports
	// whether the byte was signaled four bits wide.
	ExchangeByte(tx byte, quadWidth bool) byte
}

// A MappedDevice additionally services the controller's memory-mapped access
// path. The controller forwards the programmed command opcode so that a
// misprogrammed format register corrupts accesses instead of failing loudly,
// matching hardware behavior.
type MappedDevice interface {
	MappedRead(cmd byte, addr uint32, p []byte)
	MappedWrite(cmd byte, addr uint32, p []byte)
}

// A Poller repeatedly evaluates ready until it reports true. The default
// poller spins forever: a permanently busy controller hangs the caller, which
// is the accepted failure mode for boot-time bring-up. Tests substitute
// bounded pollers.
type Poller func(ready func() bool)

// SpinPoller busy-waits with no timeout.
func SpinPoller(ready func() bool) {
	for !ready() {
	}
}

// HookPos defines a position at which controller hooks fire.
type HookPos struct {
	Name string
}

// HookPosDirectExchange fires after each completed direct-mode byte exchange.
var HookPosDirectExchange = &HookPos{Name: "DirectExchange"}

// HookCtx carries the information about the site that a hook is triggered.
type HookCtx struct {
	Domain *Controller
	Pos    *HookPos
	Tx     byte
	Rx     byte
	Quad   bool
}

// A Hook is a short piece of program invoked by the controller.
type Hook interface {
	Func(ctx HookCtx)
}

// Controller models the QMI register block wired to one external serial
// device on chip select 1. It is not safe for concurrent use; the real block
// is shared with interrupt-context code and callers are expected to hold
// interrupts off around direct-mode sessions.
type Controller struct {
	name   string
	dev    SerialDevice
	mapped MappedDevice
	poll   Poller
	hooks  []Hook

	directCSR    uint32
	rxFIFO       []byte
	pendingTx    uint32
	hasPendingTx bool
	busyReads    int

	m1Timing    uint32
	m1RFmt      uint32
	m1RCmd      uint32
	m1WFmt      uint32
	m1WCmd      uint32
	timingSet   bool
	readFmtSet  bool
	writeFmtSet bool
	xipCtrl     uint32
}

// NewController creates a Controller attached to the given device. If the
// device also implements MappedDevice, the memory-mapped path becomes
// available after the format registers are programmed.
func NewController(name string, dev SerialDevice) *Controller {
	c := &Controller{
		name: name,
		dev:  dev,
		poll: SpinPoller,
	}

	if m, ok := dev.(MappedDevice); ok {
		c.mapped = m
	}

	return c
}

// WithPoller replaces the busy-wait primitive. Intended for tests that need
// a bounded poller.
func (c *Controller) WithPoller(p Poller) *Controller {
	c.poll = p
	return c
}

// Name returns the name of the controller.
func (c *Controller) Name() string {
	return c.name
}

// AcceptHook registers a hook. Hooks must be registered before the first
// direct session starts.
func (c *Controller) AcceptHook(h Hook) {
	c.hooks = append(c.hooks, h)
}

func (c *Controller) invokeHooks(ctx HookCtx) {
	for _, h := range c.hooks {
		h.Func(ctx)
	}
}

// BeginDirectSession enables the direct (bypass) interface with the given
// clock divider and waits for the block to come out of its enable sync
// delay. Bring-up always probes at a conservative fixed divider, never the
// final operating one.
func (c *Controller) BeginDirectSession(clkDiv uint32) {
	if c.directCSR&DirectCSREn != 0 {
		panic("qmi: direct session already active")
	}

	c.directCSR = clkDiv<<DirectCSRClkDivLSB | DirectCSREn
	c.busyReads = 1

	c.poll(func() bool { return c.readDirectCSR()&DirectCSRBusy == 0 })
}

// AssertSelect drives the chip-select line low (asserted). Must pair with
// DeassertSelect.
func (c *Controller) AssertSelect() {
	c.mustBeEnabled()
	if c.directCSR&DirectCSRAssertCS1n != 0 {
		panic("qmi: select already asserted")
	}

	c.directCSR |= DirectCSRAssertCS1n
	c.dev.SelectChanged(true)
}

// DeassertSelect releases the chip-select line and drains any response bytes
// still sitting in the receive queue.
func (c *Controller) DeassertSelect() {
	c.mustBeEnabled()
	if c.directCSR&DirectCSRAssertCS1n == 0 {
		panic("qmi: select not asserted")
	}

	c.directCSR &^= DirectCSRAssertCS1n
	c.dev.SelectChanged(false)
	c.rxFIFO = c.rxFIFO[:0]
}

// Exchange transmits one byte single-width and returns the byte received
// during the same clock period. It blocks until the transmit queue drains
// and the block reports not busy.
func (c *Controller) Exchange(tx byte) byte {
	return c.exchange(DirectTxOE | uint32(tx))
}

// ExchangeQuad transmits one byte with all four data lines driven. Used for
// the quad-mode exit command, which a device left in quad mode by a warm
// boot would otherwise not decode.
func (c *Controller) ExchangeQuad(tx byte) byte {
	return c.exchange(DirectTxOE | DirectTxIWidthQ | uint32(tx))
}

func (c *Controller) exchange(word uint32) byte {
	c.writeDirectTx(word)

	c.poll(func() bool { return c.readDirectCSR()&DirectCSRTxEmpty != 0 })
	c.poll(func() bool { return c.readDirectCSR()&DirectCSRBusy == 0 })

	return c.readDirectRx()
}

// EndDirectSession deasserts select if still asserted and disables the
// bypass interface, returning the block to its prior disabled state.
func (c *Controller) EndDirectSession() {
	if c.directCSR&DirectCSRAssertCS1n != 0 {
		c.directCSR &^= DirectCSRAssertCS1n
		c.dev.SelectChanged(false)
	}

	c.directCSR &^= DirectCSREn
	c.rxFIFO = c.rxFIFO[:0]
	c.hasPendingTx = false
	c.busyReads = 0
}

func (c *Controller) mustBeEnabled() {
	if c.directCSR&DirectCSREn == 0 {
		panic("qmi: direct interface not enabled")
	}
}

func (c *Controller) writeDirectTx(word uint32) {
	c.mustBeEnabled()
	if c.directCSR&DirectCSRAssertCS1n == 0 {
		panic("qmi: transmit with select deasserted")
	}
	if c.hasPendingTx {
		panic("qmi: transaction already pending")
	}

	c.pendingTx = word
	c.hasPendingTx = true
	c.busyReads = 1
}

// readDirectCSR models the status view of DIRECT_CSR. A queued transmit
// reads as busy with a non-empty transmit queue for one poll round before
// the exchange completes, so polling loops observe the same edge ordering
// as on hardware.
func (c *Controller) readDirectCSR() uint32 {
	v := c.directCSR

	if c.busyReads > 0 {
		v |= DirectCSRBusy
		c.busyReads--

		if c.busyReads == 0 && c.hasPendingTx {
			c.completeExchange()
		}

		return v
	}

	v |= DirectCSRTxEmpty
	if len(c.rxFIFO) == 0 {
		v |= DirectCSRRxEmpty
	}

	return v
}

func (c *Controller) completeExchange() {
	word := c.pendingTx
	c.hasPendingTx = false

	quad := word&(3<<DirectTxIWidthLSB) == DirectTxIWidthQ
	rx := c.dev.ExchangeByte(byte(word), quad)

	if word&DirectTxNoPush == 0 {
		c.rxFIFO = append(c.rxFIFO, rx)
	}

	c.invokeHooks(HookCtx{
		Domain: c,
		Pos:    HookPosDirectExchange,
		Tx:     byte(word),
		Rx:     rx,
		Quad:   quad,
	})
}

func (c *Controller) readDirectRx() byte {
	if len(c.rxFIFO) == 0 {
		// An empty receive queue reads as pulled-up data lines.
		return 0xFF
	}

	b := c.rxFIFO[0]
	c.rxFIFO = c.rxFIFO[1:]

	return b
}

// ProgramTiming writes the persistent M1 timing register.
func (c *Controller) ProgramTiming(v uint32) {
	c.m1Timing = v
	c.timingSet = true
}

// ProgramReadFormat writes the M1 read format and read command registers.
// After this call, mapped reads issue transactions with the given opcode.
func (c *Controller) ProgramReadFormat(format, cmd uint32) {
	c.m1RFmt = format
	c.m1RCmd = cmd
	c.readFmtSet = true
}

// ProgramWriteFormat writes the M1 write format and write command registers.
func (c *Controller) ProgramWriteFormat(format, cmd uint32) {
	c.m1WFmt = format
	c.m1WCmd = cmd
	c.writeFmtSet = true
}

// EnableMappedWrites sets the XIP control bit that makes the mapped window
// writable.
func (c *Controller) EnableMappedWrites() {
	c.xipCtrl |= XIPCtrlWritableM1
}

// Configured reports whether timing and both access formats have been
// programmed, i.e. the device is ordinarily memory-mapped.
func (c *Controller) Configured() bool {
	return c.timingSet && c.readFmtSet && c.writeFmtSet
}

// M1Timing returns the value of the M1 timing register.
func (c *Controller) M1Timing() uint32 { return c.m1Timing }

// ReadFormat returns the M1 read format and command register values.
func (c *Controller) ReadFormat() (format, cmd uint32) { return c.m1RFmt, c.m1RCmd }

// WriteFormat returns the M1 write format and command register values.
func (c *Controller) WriteFormat() (format, cmd uint32) { return c.m1WFmt, c.m1WCmd }

// MappedRead32 performs an ordinary memory-mapped 32-bit read at the given
// device address. Before the read format is programmed, or while a direct
// session holds the block, the bus reads as all ones.
func (c *Controller) MappedRead32(addr uint32) uint32 {
	if c.mapped == nil || !c.readFmtSet || c.directCSR&DirectCSREn != 0 {
		return 0xFFFFFFFF
	}

	var b [4]byte
	c.mapped.MappedRead(byte(c.m1RCmd), addr, b[:])

	return binary.LittleEndian.Uint32(b[:])
}

// MappedWrite32 performs an ordinary memory-mapped 32-bit write. Writes are
// dropped until the write format is programmed and the window is marked
// writable.
func (c *Controller) MappedWrite32(addr uint32, v uint32) {
	if c.mapped == nil || !c.writeFmtSet || c.directCSR&DirectCSREn != 0 {
		return
	}
	if c.xipCtrl&XIPCtrlWritableM1 == 0 {
		return
	}

	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], v)
	c.mapped.MappedWrite(byte(c.m1WCmd), addr, b[:])
}
