package monitoring

import (
	"encoding/json"
	"net/http/httptest"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/FarLeftLane/PicoMemPerf/membench"
)

type sampleRegion struct {
	base  uint32
	words []uint32
}

func (r *sampleRegion) Base() uint32            { return r.base }
func (r *sampleRegion) Len() int                { return len(r.words) }
func (r *sampleRegion) Writable() bool          { return true }
func (r *sampleRegion) Read32(i int) uint32     { return r.words[i] }
func (r *sampleRegion) Write32(i int, v uint32) { r.words[i] = v }

var _ = Describe("Monitor", func() {
	var (
		m *Monitor
	)

	BeforeEach(func() {
		m = NewMonitor()
	})

	It("should reject privileged port numbers", func() {
		m.WithPortNumber(80)

		Expect(m.portNumber).To(Equal(0))
	})

	It("should keep a configured high port", func() {
		m.WithPortNumber(8080)

		Expect(m.portNumber).To(Equal(8080))
	})

	It("should report the latest progress", func() {
		m.noteProgress("SEQ SRAM READ", 3, 14)

		w := httptest.NewRecorder()
		m.listProgress(w, nil)

		var rsp progressRsp
		Expect(json.Unmarshal(w.Body.Bytes(), &rsp)).To(Succeed())
		Expect(rsp.Test).To(Equal("SEQ SRAM READ"))
		Expect(rsp.Index).To(Equal(3))
		Expect(rsp.Total).To(Equal(14))
	})

	It("should list results from the registered table", func() {
		r := &sampleRegion{base: 0x20000000, words: make([]uint32, 16)}
		cfg := membench.NewTestConfig("SEQ SRAM READ", r, 1, true, false)
		cfg.ResultMicros = 42
		m.RegisterTable([]*membench.TestConfig{cfg})

		w := httptest.NewRecorder()
		m.listResults(w, nil)

		var rsp []resultRsp
		Expect(json.Unmarshal(w.Body.Bytes(), &rsp)).To(Succeed())
		Expect(rsp).To(HaveLen(1))
		Expect(rsp[0].Test).To(Equal("SEQ SRAM READ"))
		Expect(rsp[0].Base).To(Equal(uint32(0x20000000)))
		Expect(rsp[0].Words).To(Equal(16))
		Expect(rsp[0].ElapsedMicros).To(Equal(int64(42)))
	})

	It("should list an empty result set before a table is registered", func() {
		w := httptest.NewRecorder()
		m.listResults(w, nil)

		var rsp []resultRsp
		Expect(json.Unmarshal(w.Body.Bytes(), &rsp)).To(Succeed())
		Expect(rsp).To(BeEmpty())
	})
})
