package qmi

import (
	"encoding/binary"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	gomock "go.uber.org/mock/gomock"
)

// fakeMappedChip implements SerialDevice and MappedDevice with a small
// word-addressable backing array, for mapped-path tests.
type fakeMappedChip struct {
	data    [64]byte
	lastCmd byte
}

func (c *fakeMappedChip) SelectChanged(bool) {}

func (c *fakeMappedChip) ExchangeByte(byte, bool) byte { return 0xFF }

func (c *fakeMappedChip) MappedRead(cmd byte, addr uint32, p []byte) {
	c.lastCmd = cmd
	copy(p, c.data[addr:])
}

func (c *fakeMappedChip) MappedWrite(cmd byte, addr uint32, p []byte) {
	c.lastCmd = cmd
	copy(c.data[addr:], p)
}

type captureHook struct {
	ctxs []HookCtx
}

func (h *captureHook) Func(ctx HookCtx) {
	h.ctxs = append(h.ctxs, ctx)
}

var _ = Describe("Controller", func() {
	var (
		mockCtrl *gomock.Controller
		dev      *MockSerialDevice
		c        *Controller
	)

	BeforeEach(func() {
		mockCtrl = gomock.NewController(GinkgoT())
		dev = NewMockSerialDevice(mockCtrl)
		c = NewController("QMI", dev)
	})

	It("should exchange a byte inside a select window", func() {
		gomock.InOrder(
			dev.EXPECT().SelectChanged(true),
			dev.EXPECT().ExchangeByte(byte(0x9F), false).Return(byte(0xAB)),
			dev.EXPECT().SelectChanged(false),
		)

		c.BeginDirectSession(30)
		c.AssertSelect()
		rx := c.Exchange(0x9F)
		c.DeassertSelect()
		c.EndDirectSession()

		Expect(rx).To(Equal(byte(0xAB)))
	})

	It("should signal quad width for quad exchanges", func() {
		dev.EXPECT().SelectChanged(true)
		dev.EXPECT().ExchangeByte(byte(0xF5), true).Return(byte(0xFF))
		dev.EXPECT().SelectChanged(false)

		c.BeginDirectSession(30)
		c.AssertSelect()
		c.ExchangeQuad(0xF5)
		c.DeassertSelect()
		c.EndDirectSession()
	})

	It("should deassert a still-asserted select when the session ends", func() {
		dev.EXPECT().SelectChanged(true)
		dev.EXPECT().SelectChanged(false)

		c.BeginDirectSession(30)
		c.AssertSelect()
		c.EndDirectSession()
	})

	It("should refuse overlapping sessions", func() {
		c.BeginDirectSession(30)
		Expect(func() { c.BeginDirectSession(30) }).To(Panic())
	})

	It("should refuse a double assert", func() {
		dev.EXPECT().SelectChanged(true)

		c.BeginDirectSession(30)
		c.AssertSelect()

		Expect(func() { c.AssertSelect() }).To(Panic())
	})

	It("should refuse to transmit with select deasserted", func() {
		c.BeginDirectSession(30)
		Expect(func() { c.Exchange(0xFF) }).To(Panic())
	})

	It("should route polling through the substituted poller", func() {
		polls := 0
		c.WithPoller(func(ready func() bool) {
			for !ready() {
				polls++
			}
		})

		dev.EXPECT().SelectChanged(true)
		dev.EXPECT().ExchangeByte(byte(0x66), false).Return(byte(0xFF))
		dev.EXPECT().SelectChanged(false)

		c.BeginDirectSession(30)
		c.AssertSelect()
		c.Exchange(0x66)
		c.DeassertSelect()
		c.EndDirectSession()

		Expect(polls).To(BeNumerically(">", 0))
	})

	It("should invoke hooks on each exchange", func() {
		hook := &captureHook{}
		c.AcceptHook(hook)

		dev.EXPECT().SelectChanged(true)
		dev.EXPECT().ExchangeByte(byte(0x35), false).Return(byte(0x5D))
		dev.EXPECT().SelectChanged(false)

		c.BeginDirectSession(30)
		c.AssertSelect()
		c.Exchange(0x35)
		c.DeassertSelect()

		Expect(hook.ctxs).To(HaveLen(1))
		Expect(hook.ctxs[0].Pos).To(BeIdenticalTo(HookPosDirectExchange))
		Expect(hook.ctxs[0].Tx).To(Equal(byte(0x35)))
		Expect(hook.ctxs[0].Rx).To(Equal(byte(0x5D)))
	})
})

var _ = Describe("Controller mapped path", func() {
	var (
		chip *fakeMappedChip
		c    *Controller
	)

	BeforeEach(func() {
		chip = &fakeMappedChip{}
		c = NewController("QMI", chip)
	})

	programAll := func() {
		c.ProgramTiming(2)
		c.ProgramReadFormat(0, 0xEB)
		c.ProgramWriteFormat(0, 0x38)
	}

	It("should read as all ones before the read format is programmed", func() {
		Expect(c.MappedRead32(0)).To(Equal(uint32(0xFFFFFFFF)))
		Expect(c.Configured()).To(BeFalse())
	})

	It("should drop writes until the window is writable", func() {
		programAll()

		c.MappedWrite32(0, 0x12345678)
		Expect(binary.LittleEndian.Uint32(chip.data[:4])).To(Equal(uint32(0)))

		c.EnableMappedWrites()
		c.MappedWrite32(0, 0x12345678)
		Expect(c.MappedRead32(0)).To(Equal(uint32(0x12345678)))
	})

	It("should forward the programmed opcodes", func() {
		programAll()
		c.EnableMappedWrites()

		c.MappedWrite32(4, 1)
		Expect(chip.lastCmd).To(Equal(byte(0x38)))

		c.MappedRead32(4)
		Expect(chip.lastCmd).To(Equal(byte(0xEB)))
	})

	It("should read as all ones while a direct session holds the block", func() {
		programAll()
		c.EnableMappedWrites()
		c.MappedWrite32(0, 0xCAFEF00D)

		c.BeginDirectSession(30)
		Expect(c.MappedRead32(0)).To(Equal(uint32(0xFFFFFFFF)))
		c.EndDirectSession()

		Expect(c.MappedRead32(0)).To(Equal(uint32(0xCAFEF00D)))
	})
})
