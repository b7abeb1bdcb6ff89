package timing

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Freq", func() {
	It("should get period", func() {
		var f = 1 * MHz
		Expect(f.Period().Nanoseconds()).To(BeEquivalentTo(1000))
	})

	It("should get period in femtoseconds", func() {
		var f = 150 * MHz
		Expect(f.PeriodFemtos()).To(BeEquivalentTo(6666666))
	})

	It("should count cycles in a duration", func() {
		var f = 1 * GHz
		Expect(f.Cycles(1000)).To(BeEquivalentTo(1000))
	})
})
