package timing

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("CalcQMITiming", func() {
	It("should reject a non-positive clock", func() {
		_, err := CalcQMITiming(0)
		Expect(err).To(HaveOccurred())

		_, err = CalcQMITiming(-1 * MHz)
		Expect(err).To(HaveOccurred())
	})

	It("should match the 150 MHz reference vector", func() {
		t, err := CalcQMITiming(150 * MHz)

		Expect(err).NotTo(HaveOccurred())
		Expect(t.ClockDivider).To(BeEquivalentTo(2))
		Expect(t.RxDelay).To(BeEquivalentTo(2))
		Expect(t.MaxSelect).To(BeEquivalentTo(18))
		Expect(t.MinDeselect).To(BeEquivalentTo(2))
	})

	It("should use a divider of 1 at slow clocks", func() {
		t, err := CalcQMITiming(48 * MHz)

		Expect(err).NotTo(HaveOccurred())
		Expect(t.ClockDivider).To(BeEquivalentTo(1))
		Expect(t.RxDelay).To(BeEquivalentTo(1))
	})

	It("should force the divider to 2 when the undivided clock is marginal", func() {
		// 120 MHz < 133 MHz, so ceil(120/133) = 1, but 120 MHz > 100 MHz.
		t, err := CalcQMITiming(120 * MHz)

		Expect(err).NotTo(HaveOccurred())
		Expect(t.ClockDivider).To(BeEquivalentTo(2))
	})

	It("should add a cycle of rx delay when the divided clock is marginal", func() {
		// ceil(266/133) = 2, and 266/2 = 133 MHz > 100 MHz.
		t, err := CalcQMITiming(266 * MHz)

		Expect(err).NotTo(HaveOccurred())
		Expect(t.ClockDivider).To(BeEquivalentTo(2))
		Expect(t.RxDelay).To(BeEquivalentTo(3))
	})

	It("should honor the analog limits across the embedded clock range", func() {
		for mhz := 1; mhz <= 300; mhz++ {
			clk := Freq(mhz) * MHz
			t, err := CalcQMITiming(clk)
			Expect(err).NotTo(HaveOccurred())

			Expect(t.ClockDivider).To(BeNumerically(">=", 1))
			if clk > 100*MHz {
				Expect(t.ClockDivider).To(BeNumerically(">=", 2))
			}

			periodFs := clk.PeriodFemtos()

			// The assert window, converted back to real time, must stay
			// at or below the 8 us datasheet limit.
			selectFs := int64(t.MaxSelect) * 64 * periodFs
			Expect(selectFs).To(BeNumerically("<=", int64(8000)*1000000))

			// The deselect window before latency compensation must cover
			// the 18 ns floor.
			rawDeselect := int64(t.MinDeselect) + (int64(t.ClockDivider)+1)/2
			Expect(rawDeselect * periodFs).To(BeNumerically(">=", int64(18)*1000000))
		}
	})
})
