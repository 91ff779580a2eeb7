package core

import "testing"

func sampleReads(accesses []Access) []Reg {
	var out []Reg
	for _, a := range accesses {
		if a.Write {
			continue
		}
		switch a.Reg {
		case RegDecSAMP, RegDecSAMPM, RegDecSAMPH:
			out = append(out, a.Reg)
		}
	}
	return out
}

func sameRegs(a, b []Reg) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestRead32KeyHighReleasesOnLastRead(t *testing.T) {
	d, sim, _ := newTestDriver(t, testProfiles(), testTrim())
	d.Init()
	d.SetCoherency(CoherencyHigh)

	sim.Convert(0x123456)

	// A new result arrives while the first read is in progress
	arrived := false
	sim.OnRead = func(r Reg) {
		if r == RegDecSAMP && !arrived {
			arrived = true
			sim.Convert(-5)
		}
	}
	sim.Trace = true

	if got := d.Read32(); got != 0x123456 {
		t.Errorf("first Read32 = 0x%X, want 0x123456", got)
	}
	want := []Reg{RegDecSAMP, RegDecSAMPM, RegDecSAMPH}
	if got := sampleReads(sim.Accesses); !sameRegs(got, want) {
		t.Errorf("read order = %v, want %v", got, want)
	}
	if sim.Pending() != 0 {
		t.Errorf("pending results = %d, want 0", sim.Pending())
	}

	if got := d.Read32(); got != -5 {
		t.Errorf("second Read32 = %d, want -5", got)
	}
}

func TestRead32Ordering(t *testing.T) {
	tests := []struct {
		key  Coherency
		want []Reg
	}{
		{CoherencyNone, []Reg{RegDecSAMPH, RegDecSAMPM, RegDecSAMP}},
		{CoherencyLow, []Reg{RegDecSAMPH, RegDecSAMPM, RegDecSAMP}},
		{CoherencyMid, []Reg{RegDecSAMP, RegDecSAMPH, RegDecSAMPM}},
		{CoherencyHigh, []Reg{RegDecSAMP, RegDecSAMPM, RegDecSAMPH}},
	}
	for _, tt := range tests {
		d, sim, _ := newTestDriver(t, testProfiles(), testTrim())
		d.Init()
		d.SetCoherency(tt.key)
		sim.Convert(-123456)
		sim.Trace = true

		if got := d.Read32(); got != -123456 {
			t.Errorf("key %v: Read32 = %d, want -123456", tt.key, got)
		}
		if got := sampleReads(sim.Accesses); !sameRegs(got, tt.want) {
			t.Errorf("key %v: read order = %v, want %v", tt.key, got, tt.want)
		}
		if sim.Peek(RegDecSR)&decConvDone != 0 {
			t.Errorf("key %v: sample not released", tt.key)
		}
	}
}

func TestRead16Ordering(t *testing.T) {
	tests := []struct {
		key  Coherency
		want []Reg
	}{
		{CoherencyNone, []Reg{RegDecSAMPM, RegDecSAMP}},
		{CoherencyLow, []Reg{RegDecSAMPM, RegDecSAMP}},
		{CoherencyMid, []Reg{RegDecSAMP, RegDecSAMPM}},
		{CoherencyHigh, []Reg{RegDecSAMP, RegDecSAMPM}},
	}
	for _, tt := range tests {
		d, sim, _ := newTestDriver(t, testProfiles(), testTrim())
		d.Init()
		d.SetCoherency(tt.key)
		sim.Convert(-2)
		sim.Trace = true

		if got := d.Read16(); got != -2 {
			t.Errorf("key %v: Read16 = %d, want -2", tt.key, got)
		}
		if got := sampleReads(sim.Accesses); !sameRegs(got, tt.want) {
			t.Errorf("key %v: read order = %v, want %v", tt.key, got, tt.want)
		}
	}
}

func TestNarrowReadDoesNotRelease(t *testing.T) {
	d, sim, _ := newTestDriver(t, testProfiles(), testTrim())
	d.Init()
	d.SetCoherency(CoherencyHigh)

	sim.Convert(0x0102)
	if got := d.Read8(); got != 0x02 {
		t.Errorf("Read8 = %d, want 2", got)
	}
	sim.Convert(0x0304)
	if sim.Pending() != 1 {
		t.Fatalf("pending = %d, want 1 (sample should stay locked)", sim.Pending())
	}
	if got := d.Read16(); got != 0x0102 {
		t.Errorf("Read16 = 0x%X, want 0x0102 (old sample)", got)
	}

	// Full width read releases and latches the queued result
	d.Read32()
	if got := d.Read32(); got != 0x0304 {
		t.Errorf("Read32 after release = 0x%X, want 0x0304", got)
	}
}

func TestRead32SignExtension(t *testing.T) {
	d, sim, _ := newTestDriver(t, testProfiles(), testTrim())
	d.Init()

	for _, v := range []int32{0, 1, -1, 8388607, -8388608, 524287, -524288} {
		sim.Convert(v)
		if got := d.Read32(); got != v {
			t.Errorf("Read32 = %d, want %d", got, v)
		}
	}
}
