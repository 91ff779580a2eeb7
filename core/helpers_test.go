package core

import "testing"

// testProfiles returns one profile per interesting mode:
// 1: 16 bit differential continuous, key high
// 2: 12 bit Vssa..2*Vref fast filter
// 3: 20 bit differential continuous
// 4: 18 bit single sample (software completion tracking)
func testProfiles() []Profile {
	return []Profile{
		{
			ID: 1, Resolution: 16, InputRange: RangeDiffVref, Reference: RefInternal1024,
			Mode: ModeContinuous, CountsPerVolt: 32000,
			IdealDecGain: 0x8000, IdealOddDecGain: 0x8000, Coherency: CoherencyHigh,
			PumpClockDivider: 0x0013, ADCClockDivider: 0x0009,
			Regs: ProfileRegs{CR2: 0x08, CR17: 0x20, REF0: 0x42, BUF1: 0x01},
		},
		{
			ID: 2, Resolution: 12, InputRange: RangeVssaTo2Vref, Reference: RefInternal1024,
			Mode: ModeFastFilter, CountsPerVolt: 2000,
			IdealDecGain: 0x8000, IdealOddDecGain: 0x8000, Coherency: CoherencyMid,
		},
		{
			ID: 3, Resolution: 20, InputRange: RangeDiffVref, Reference: RefExternalP03,
			Mode: ModeContinuous, CountsPerVolt: 512000,
			IdealDecGain: 0x7F00, IdealOddDecGain: 0x8100, Coherency: CoherencyLow,
		},
		{
			ID: 4, Resolution: 18, InputRange: RangeDiffVref2, Reference: RefInternalVdda4,
			Mode: ModeSingleSample, CountsPerVolt: 256000,
			IdealDecGain: 0x6000, IdealOddDecGain: 0x8000, Coherency: CoherencyHigh,
		},
	}
}

func testTrim() TrimTable {
	return TrimTable{
		VrefDiff:   [2]int8{-2, 3},
		Vref2Diff:  [2]int8{1, -4},
		Vref4Diff:  [2]int8{0, 0},
		Vref16Diff: [2]int8{5, 7},
	}
}

// newTestDriver builds a driver on the simulated register file.
// The simulated signal returns 1000+n for conversion n.
func newTestDriver(t *testing.T, profiles []Profile, trim TrimTable) (*Driver, *SimRegisters, *SimIRQ) {
	t.Helper()
	irq := NewSimIRQ()
	sim := NewSimRegisters(irq, func(seq uint32) int32 { return int32(1000 + seq) })
	d, err := NewDriver(Config{
		Registers: sim,
		Interrupt: irq,
		Profiles:  profiles,
		Trim:      trim,
		Delay:     func(uint32) {},
	})
	if err != nil {
		t.Fatalf("NewDriver failed: %v", err)
	}
	return d, sim, irq
}

// expectPanic runs fn and fails the test if it returns normally.
func expectPanic(t *testing.T, name string, fn func()) {
	t.Helper()
	defer func() {
		if r := recover(); r == nil {
			t.Errorf("%s: expected panic", name)
		} else {
			t.Logf("%s: panicked with %v", name, r)
		}
	}()
	fn()
}

// indexOf returns the index of the first access matching want at or
// after from, or -1.
func indexOf(accesses []Access, from int, want Access) int {
	for i := from; i < len(accesses); i++ {
		if accesses[i] == want {
			return i
		}
	}
	return -1
}
