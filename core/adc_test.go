package core

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"
)

func TestNewDriverValidation(t *testing.T) {
	irq := NewSimIRQ()
	sim := NewSimRegisters(irq, nil)

	tests := []struct {
		name    string
		cfg     Config
		wantErr error
	}{
		{"no profiles", Config{Registers: sim, Interrupt: irq}, ErrNoProfiles},
		{"too many", Config{Registers: sim, Interrupt: irq, Profiles: append(testProfiles(), Profile{ID: 5, Resolution: 12})}, ErrTooManyProfiles},
		{"bad id", Config{Registers: sim, Interrupt: irq, Profiles: []Profile{{ID: 2, Resolution: 12}}}, ErrProfileID},
		{"resolution low", Config{Registers: sim, Interrupt: irq, Profiles: []Profile{{ID: 1, Resolution: 7}}}, ErrResolution},
		{"resolution high", Config{Registers: sim, Interrupt: irq, Profiles: []Profile{{ID: 1, Resolution: 21}}}, ErrResolution},
	}
	for _, tt := range tests {
		_, err := NewDriver(tt.cfg)
		if !errors.Is(err, tt.wantErr) {
			t.Errorf("%s: err = %v, want %v", tt.name, err, tt.wantErr)
		}
	}

	if _, err := NewDriver(Config{Interrupt: irq, Profiles: testProfiles()}); err == nil {
		t.Error("expected error for nil register file")
	}
	if _, err := NewDriver(Config{Registers: sim, Profiles: testProfiles()}); err == nil {
		t.Error("expected error for nil interrupt controller")
	}
}

func TestCheckRegisterImages(t *testing.T) {
	static := StaticRegs{CR0: 0x04, DecSR: 0x04}
	loaded := func() []Profile {
		p := testProfiles()[:1]
		p[0].Regs.DR1 = 0x7F
		p[0].Regs.DR2 = 0xFF
		p[0].Regs.CR4 = 0x1E
		return p
	}

	if err := CheckRegisterImages(static, loaded()); err != nil {
		t.Errorf("loaded image: %v", err)
	}

	tests := []struct {
		name     string
		static   StaticRegs
		profiles func() []Profile
	}{
		{"empty static", StaticRegs{}, loaded},
		{"zero ratio", static, func() []Profile {
			p := loaded()
			p[0].Regs.DR1, p[0].Regs.DR2 = 0, 0
			return p
		}},
		{"zero modulator", static, func() []Profile {
			p := loaded()
			p[0].Regs.CR4 = 0
			return p
		}},
	}
	for _, tt := range tests {
		err := CheckRegisterImages(tt.static, tt.profiles())
		if !errors.Is(err, ErrNoRegisterImage) {
			t.Errorf("%s: err = %v, want ErrNoRegisterImage", tt.name, err)
		}
	}
}

func TestNewDriverTouchesNoRegisters(t *testing.T) {
	irq := NewSimIRQ()
	sim := NewSimRegisters(irq, nil)
	sim.Trace = true
	if _, err := NewDriver(Config{Registers: sim, Interrupt: irq, Profiles: testProfiles()}); err != nil {
		t.Fatal(err)
	}
	if len(sim.Accesses) != 0 {
		t.Errorf("NewDriver made %d register accesses", len(sim.Accesses))
	}
}

func TestInitRunsOnce(t *testing.T) {
	d, sim, irq := newTestDriver(t, testProfiles(), testTrim())
	d.irqPriority = 7
	if d.State() != StateUninitialized {
		t.Fatalf("state = %v, want uninitialized", d.State())
	}

	d.Init()
	if d.State() != StateStopped {
		t.Errorf("state after Init = %v, want stopped", d.State())
	}
	if irq.Priority() != 7 {
		t.Errorf("IRQ priority = %d, want 7", irq.Priority())
	}
	if d.Active() != 1 {
		t.Errorf("active = %d, want 1", d.Active())
	}

	sim.Trace = true
	d.Init()
	if len(sim.Accesses) != 0 {
		t.Errorf("second Init made %d register accesses", len(sim.Accesses))
	}
}

func TestInitLoadsProfileRegisters(t *testing.T) {
	d, sim, _ := newTestDriver(t, testProfiles(), testTrim())
	d.Init()

	p := d.Profile(1)
	if got := sim.Peek(RegDecCR); got != ModeContinuous.decBits() {
		t.Errorf("DEC_CR = 0x%02X, want 0x%02X", got, ModeContinuous.decBits())
	}
	if got := sim.Peek(RegDecCOHER); got != uint8(CoherencyHigh) {
		t.Errorf("DEC_COHER = %d, want %d", got, CoherencyHigh)
	}
	if got := sim.Peek(RegDSMREF0); got != p.Regs.REF0 {
		t.Errorf("DSM_REF0 = 0x%02X, want 0x%02X", got, p.Regs.REF0)
	}
	if got := read16(sim, RegPumpClkDiv, RegPumpClkDivH); got != p.PumpClockDivider {
		t.Errorf("pump divider = %d, want %d", got, p.PumpClockDivider)
	}
	if d.Gain() != 0 {
		t.Errorf("counts per volt = %d, want 0 (init does not calibrate)", d.Gain())
	}
	if sim.Peek(RegResetCR4) != 0 || sim.Peek(RegResetCR5) != 0 {
		t.Error("press override left asserted after REF0 write")
	}
}

func TestSelectConfigurationNoRestart(t *testing.T) {
	d, sim, _ := newTestDriver(t, testProfiles(), testTrim())
	d.Start()
	d.StartConvert()

	sim.Trace = true
	d.SelectConfiguration(3, false)

	for _, v := range sim.Writes(RegDecCR) {
		if v&decStartConv != 0 {
			t.Errorf("DEC_CR written with start bit: 0x%02X", v)
		}
	}
	if sim.Peek(RegDecCR)&decStartConv != 0 {
		t.Error("conversion still started")
	}
	if d.State() != StateStopped {
		t.Errorf("state = %v, want stopped", d.State())
	}
	if d.Power() != PowerDisabled {
		t.Errorf("power = %v, want disabled", d.Power())
	}
	if d.Active() != 3 {
		t.Errorf("active = %d, want 3", d.Active())
	}
	if g := d.GainCorrection(3); sim.Peek(RegDecGVAL) != g.GVAL() || read16(sim, RegDecGCOR, RegDecGCORH) != g.Value {
		t.Error("gain correction for profile 3 not loaded")
	}
}

func TestSelectConfigurationRestart(t *testing.T) {
	for id := uint8(1); id <= 4; id++ {
		d, sim, _ := newTestDriver(t, testProfiles(), testTrim())
		d.Init()
		d.SelectConfiguration(id, true)

		if d.State() != StateRunning {
			t.Errorf("id %d: state = %v, want running", id, d.State())
		}
		if d.Power() != PowerEnabled {
			t.Errorf("id %d: power = %v, want enabled", id, d.Power())
		}
		if sim.Peek(RegDecCR)&decStartConv == 0 {
			t.Errorf("id %d: conversion not started", id)
		}
	}
}

func TestSelectConfigurationOutOfRange(t *testing.T) {
	d, _, _ := newTestDriver(t, testProfiles(), testTrim())
	d.Init()

	expectPanic(t, "select 0", func() { d.SelectConfiguration(0, false) })
	expectPanic(t, "select 5", func() { d.SelectConfiguration(5, true) })

	short, _, _ := newTestDriver(t, testProfiles()[:2], testTrim())
	expectPanic(t, "select 3 of 2", func() { short.SelectConfiguration(3, false) })
}

func TestSelectBeforeStartKeepsConfiguration(t *testing.T) {
	d, sim, _ := newTestDriver(t, testProfiles(), testTrim())

	d.SelectConfiguration(2, false)
	if d.State() != StateStopped {
		t.Fatalf("state = %v, want stopped", d.State())
	}
	d.Start()

	if d.Active() != 2 {
		t.Errorf("active = %d, want 2", d.Active())
	}
	if got := sim.Peek(RegDecCR) & decModeMask; got != ModeFastFilter.decBits() {
		t.Errorf("DEC_CR mode = 0x%02X, want fast filter", got)
	}
	// Gains for every profile were computed even though Init never ran directly
	for id := uint8(1); id <= 4; id++ {
		if d.GainCorrection(id).Width == 0 {
			t.Errorf("profile %d gain not computed", id)
		}
	}
}

type mockAMux struct {
	value bool
	mode  DriveMode
	calls int
}

func (m *mockAMux) Write(v bool)               { m.value = v; m.calls++ }
func (m *mockAMux) Read() bool                 { return m.value }
func (m *mockAMux) SetDriveMode(mode DriveMode) { m.mode = mode }

func TestAMuxSelection(t *testing.T) {
	irq := NewSimIRQ()
	sim := NewSimRegisters(irq, nil)
	mux := &mockAMux{}
	d, err := NewDriver(Config{Registers: sim, Interrupt: irq, AMux: mux, Profiles: testProfiles(), Delay: func(uint32) {}})
	if err != nil {
		t.Fatal(err)
	}
	if mux.mode != DriveStrong {
		t.Errorf("drive mode = %d, want strong", mux.mode)
	}

	d.Init()
	if mux.Read() {
		t.Error("profile 1 should select Vssa")
	}
	d.SelectConfiguration(2, false)
	if !mux.Read() {
		t.Error("profile 2 (Vssa..2*Vref) should select Vref")
	}
	d.SelectConfiguration(3, false)
	if mux.Read() {
		t.Error("profile 3 should select Vssa")
	}
}

func TestIsConversionDoneHardwareFlag(t *testing.T) {
	d, sim, _ := newTestDriver(t, testProfiles(), testTrim())
	sim.PollsPerSample = 3
	d.Start()

	if d.IsConversionDone(false) {
		t.Error("done before conversion started")
	}
	d.StartConvert()
	if d.IsConversionDone(false) {
		t.Error("done after first poll")
	}
	if !d.IsConversionDone(true) {
		t.Error("blocking poll returned false")
	}
	if got := d.Read32(); got != 1000 {
		t.Errorf("Read32 = %d, want 1000", got)
	}
	if d.IsConversionDone(false) {
		t.Error("completion not cleared by key byte read")
	}
}

func TestSingleSampleHighResTracking(t *testing.T) {
	d, sim, irq := newTestDriver(t, testProfiles(), testTrim())
	sim.PollsPerSample = 3

	d.SelectConfiguration(4, true)
	if !d.stopConversion {
		t.Fatal("software completion tracking not enabled for 18 bit single sample")
	}

	if d.IsConversionDone(false) {
		t.Error("done before conversion finished")
	}
	if !d.IsConversionDone(true) {
		t.Fatal("blocking poll returned false")
	}
	if irq.Delivered != 1 {
		t.Errorf("interrupts delivered = %d, want 1", irq.Delivered)
	}
	if sim.Peek(RegDecCR)&decStartConv != 0 {
		t.Error("ISR did not stop the conversion")
	}

	if got := d.Read32(); got != 1000 {
		t.Errorf("Read32 = %d, want 1000", got)
	}
	if d.IsConversionDone(false) {
		t.Error("software completion flag not cleared by result read")
	}

	// Switching to a 16 bit profile drops software tracking
	d.SelectConfiguration(1, false)
	if d.stopConversion {
		t.Error("tracking left enabled for profile 1")
	}
}

func TestOneShotSample(t *testing.T) {
	d, sim, _ := newTestDriver(t, testProfiles(), testTrim())
	d.Start()

	if got := d.Sample32(); got != 1000 {
		t.Errorf("Sample32 = %d, want 1000", got)
	}
	if sim.Peek(RegDecCR)&decStartConv != 0 {
		t.Error("one-shot left conversion running")
	}

	// Profile 3 keys on the low byte, so narrow reads release the sample
	d.SelectConfiguration(3, true)
	d.StopConvert()
	if got := d.Sample16(); got != 1001 {
		t.Errorf("Sample16 = %d, want 1001", got)
	}
	raw := int32(1002)
	if got := d.Sample8(); got != int8(raw) {
		t.Errorf("Sample8 = %d, want %d", got, int8(raw))
	}

	d.SelectConfiguration(4, true)
	d.StopConvert()
	if got := d.Sample32(); got != 1003 {
		t.Errorf("single sample Sample32 = %d, want 1003", got)
	}
}

func TestWaitForConversion(t *testing.T) {
	d, _, _ := newTestDriver(t, testProfiles(), testTrim())
	d.Init()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Millisecond)
	defer cancel()
	if err := d.WaitForConversion(ctx); !errors.Is(err, ErrConversionTimeout) {
		t.Errorf("WaitForConversion on idle converter = %v, want timeout", err)
	}

	d.Start()
	d.StartConvert()
	if err := d.WaitForConversion(context.Background()); err != nil {
		t.Errorf("WaitForConversion = %v", err)
	}
}

func TestSetBufferGainAndCoherency(t *testing.T) {
	d, sim, _ := newTestDriver(t, testProfiles(), testTrim())
	d.Init()

	sim.Poke(RegDSMBUF1, 0xF1)
	d.SetBufferGain(2)
	if got := sim.Peek(RegDSMBUF1); got != 0xF9 {
		t.Errorf("DSM_BUF1 = 0x%02X, want 0xF9", got)
	}

	sim.Poke(RegDecCOHER, 0xA0)
	d.SetCoherency(CoherencyMid)
	if got := sim.Peek(RegDecCOHER); got != 0xA2 {
		t.Errorf("DEC_COHER = 0x%02X, want 0xA2", got)
	}
	if d.Coherency() != CoherencyMid {
		t.Errorf("Coherency = %v, want mid", d.Coherency())
	}
}

func TestEventRing(t *testing.T) {
	ClearEventRing()
	d, _, _ := newTestDriver(t, testProfiles(), testTrim())
	d.SelectConfiguration(2, true)

	var lines []string
	SetDebugWriter(func(s string) { lines = append(lines, s) })
	defer SetDebugWriter(func(string) {})
	DumpEventRing()

	want := map[string]bool{"SELECT_CFG": false, "POWER_UP": false, "POWER_DOWN": false, "START_CONV": false}
	for _, l := range lines {
		for k := range want {
			if strings.Contains(l, k) {
				want[k] = true
			}
		}
	}
	for k, seen := range want {
		if !seen {
			t.Errorf("event %s not in dump", k)
		}
	}
}

func TestEventRingFromInterrupt(t *testing.T) {
	ClearEventRing()
	irq := NewSimIRQ()
	irq.SetVector(func() { RecordEvent(EvtConvDone, 1, 0, 0) })
	irq.Enable()

	cs := enterCritical()
	RecordEvent(EvtStartConvert, 1, 0, 0)
	irq.Raise()
	if irq.Delivered != 0 {
		t.Errorf("interrupt delivered inside critical section")
	}
	cs.exit()

	evts := Events()
	if len(evts) != 2 {
		t.Fatalf("got %d events, want 2", len(evts))
	}
	if evts[0].Name() != "START_CONV" || evts[1].Name() != "CONV_DONE" {
		t.Errorf("events = %s, %s", evts[0].Name(), evts[1].Name())
	}
	if InterruptsMasked() {
		t.Errorf("interrupts left masked after RecordEvent")
	}
}
