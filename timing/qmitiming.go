package timing

import "fmt"

// Chip analog limits from the PSRAM datasheet. The chip select line must not
// stay asserted longer than 8 us, and must stay deasserted for at least 50 ns
// between transactions. The deselect floor actually programmed is 18 ns, the
// tightened margin the vendor bring-up code uses.
const (
	// MaxPSRAMFreq is the highest SCK the PSRAM tolerates at 3.3 V.
	MaxPSRAMFreq = 133 * MHz

	// maxSelectFemtos is 8000 ns expressed per 64-cycle block:
	// 8000 ns / 64 = 125 ns = 125e6 fs.
	maxSelectFemtos = 125 * 1000000

	// minDeselectFemtos is the enforced 18 ns deselect floor.
	minDeselectFemtos = 18 * 1000000

	// marginalFreq is the point above which an undivided or divided SCK is
	// considered marginal and gets an extra cycle of slack.
	marginalFreq = 100 * MHz
)

// Register field widths of the QMI M1 timing register.
const (
	clkDivBits      = 8
	rxDelayBits     = 3
	minDeselectBits = 5
	maxSelectBits   = 6
)

// QMITiming holds the timing fields of the QMI M1 timing register, in the
// controller's native units. Immutable once computed.
type QMITiming struct {
	// ClockDivider divides the system clock down to SCK. Always >= 1.
	ClockDivider uint32

	// RxDelay is the receive sampling delay in system clock cycles.
	RxDelay uint32

	// MaxSelect is the longest chip-select assert window, in units of 64
	// system clock cycles.
	MaxSelect uint32

	// MinDeselect is the shortest chip-select deassert window, in system
	// clock cycles, already compensated for divider latency.
	MinDeselect uint32
}

// CalcQMITiming derives the QMI timing fields for an external PSRAM running
// from the given system clock.
//
// Divisions round in the direction that satisfies the physical constraint:
// ceiling for minimum windows, floor for maximum windows. Violating either
// bound risks bus contention or silent data corruption on real hardware.
func CalcQMITiming(clk Freq) (QMITiming, error) {
	if clk <= 0 {
		return QMITiming{}, fmt.Errorf("system clock must be positive, got %f Hz", float64(clk))
	}

	clockHz := int64(clk)

	divider := (clockHz + int64(MaxPSRAMFreq) - 1) / int64(MaxPSRAMFreq)
	if divider == 1 && clk > marginalFreq {
		// A divider of 1 is arithmetically sufficient below 133 MHz, but
		// timing is marginal above 100 MHz.
		divider = 2
	}

	rxDelay := divider
	if Freq(clockHz/divider) > marginalFreq {
		// Extra cycle of pipeline latency compensation.
		rxDelay++
	}

	periodFs := clk.PeriodFemtos()
	maxSelect := int64(maxSelectFemtos) / periodFs
	minDeselect := (minDeselectFemtos+periodFs-1)/periodFs - (divider+1)/2

	t := QMITiming{
		ClockDivider: uint32(divider),
		RxDelay:      uint32(rxDelay),
		MaxSelect:    uint32(maxSelect),
		MinDeselect:  uint32(minDeselect),
	}

	if err := t.validate(); err != nil {
		return QMITiming{}, err
	}

	return t, nil
}

func (t QMITiming) validate() error {
	fields := []struct {
		name  string
		value uint32
		bits  uint
	}{
		{"clock divider", t.ClockDivider, clkDivBits},
		{"rx delay", t.RxDelay, rxDelayBits},
		{"min deselect", t.MinDeselect, minDeselectBits},
		{"max select", t.MaxSelect, maxSelectBits},
	}

	for _, f := range fields {
		if f.value >= 1<<f.bits {
			return fmt.Errorf("%s %d does not fit in %d bits", f.name, f.value, f.bits)
		}
	}

	if t.ClockDivider < 1 {
		return fmt.Errorf("clock divider must be at least 1")
	}

	return nil
}
