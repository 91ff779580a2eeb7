// Delta-sigma ADC driver
// Configures the modulator and decimator, manages up to four acquisition
// profiles and reads coherent conversion results.
package core

import (
	"context"
	"errors"
	"sync/atomic"
)

// AcqState is the acquisition controller state.
type AcqState uint8

const (
	StateUninitialized AcqState = iota
	StateStopped
	StateRunning
)

func (s AcqState) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateStopped:
		return "stopped"
	case StateRunning:
		return "running"
	}
	return "state?"
}

// ErrConversionTimeout is returned by WaitForConversion when the context
// ends before the decimator reports completion.
var ErrConversionTimeout = errors.New("dsadc: conversion timeout")

// StaticRegs is the common modulator register image written once by Init.
type StaticRegs struct {
	DEM0  uint8
	DEM1  uint8
	MISC  uint8
	CLK   uint8 // OR-ed into DSM_CLK
	REF1  uint8
	OUT0  uint8
	OUT1  uint8
	CR0   uint8
	CR1   uint8
	CR3   uint8
	CR8   uint8
	CR9   uint8
	CR13  uint8
	DecSR uint8
}

// Config describes a driver instance.
type Config struct {
	Registers RegisterFile
	Interrupt IRQController

	// AMux is the optional analog-mux select pin used by single ended ranges.
	AMux AMuxPin

	Profiles []Profile
	Trim     TrimTable
	Static   StaticRegs

	// InternalClock gates the converter clock power bits.
	InternalClock bool
	IRQPriority   uint8

	// Delay overrides DelayMicroseconds, mainly for tests.
	Delay func(us uint32)
}

// Driver owns one converter block. All methods must be called from
// mainline code; only handleInterrupt runs in interrupt context.
type Driver struct {
	regs          RegisterFile
	irq           IRQController
	amux          AMuxPin
	delay         func(us uint32)
	static        StaticRegs
	trim          TrimTable
	internalClock bool
	irqPriority   uint8

	profiles    [MaxProfiles]Profile
	gains       [MaxProfiles]GainCorrection
	numProfiles uint8

	active uint8
	state  AcqState
	power  PowerState

	offset        int32
	countsPerVolt int32

	// stopConversion is set for single sample mode above 16 bits, where
	// completion is tracked in software through convDone.
	stopConversion bool
	convDone       uint32

	voltage int32 // last sensor reading in microvolts
}

// NewDriver validates cfg and returns an uninitialized driver.
// No register is touched until Init, Start or SelectConfiguration.
func NewDriver(cfg Config) (*Driver, error) {
	if cfg.Registers == nil {
		return nil, errors.New("dsadc: nil register file")
	}
	if cfg.Interrupt == nil {
		return nil, errors.New("dsadc: nil interrupt controller")
	}
	if err := ValidateProfiles(cfg.Profiles); err != nil {
		return nil, err
	}

	d := &Driver{
		regs:          cfg.Registers,
		irq:           cfg.Interrupt,
		amux:          cfg.AMux,
		delay:         cfg.Delay,
		static:        cfg.Static,
		trim:          cfg.Trim,
		internalClock: cfg.InternalClock,
		irqPriority:   cfg.IRQPriority,
		numProfiles:   uint8(len(cfg.Profiles)),
		active:        1,
	}
	if d.delay == nil {
		d.delay = DelayMicroseconds
	}
	copy(d.profiles[:], cfg.Profiles)
	if d.amux != nil {
		d.amux.SetDriveMode(DriveStrong)
	}
	return d, nil
}

// assert halts on programmer errors.
func assert(ok bool, msg string) {
	if !ok {
		DumpEventRing()
		panic("dsadc: " + msg)
	}
}

func (d *Driver) assertProfileID(id uint8) {
	assert(id >= 1 && id <= d.numProfiles, "configuration id "+itoa(int(id))+" out of range")
}

func (d *Driver) activeProfile() *Profile {
	return &d.profiles[d.active-1]
}

// State returns the acquisition state.
func (d *Driver) State() AcqState { return d.state }

// Power returns the power sequencer state.
func (d *Driver) Power() PowerState { return d.power }

// Active returns the active configuration id.
func (d *Driver) Active() uint8 { return d.active }

// NumProfiles returns the number of configured profiles.
func (d *Driver) NumProfiles() uint8 { return d.numProfiles }

// Profile returns a copy of configuration id.
func (d *Driver) Profile(id uint8) Profile {
	d.assertProfileID(id)
	return d.profiles[id-1]
}

// GainCorrection returns the stored correction for configuration id.
func (d *Driver) GainCorrection(id uint8) GainCorrection {
	d.assertProfileID(id)
	return d.gains[id-1]
}

// Init writes the common registers, computes the gain correction of every
// profile and loads configuration 1. It runs once; later calls are no-ops.
func (d *Driver) Init() {
	d.init(1)
}

func (d *Driver) init(id uint8) {
	if d.state != StateUninitialized {
		return
	}
	d.active = id
	atomic.StoreUint32(&d.convDone, 0)

	d.irq.SetPriority(d.irqPriority)

	rf := d.regs
	s := &d.static
	rf.Write8(RegDSMDEM0, s.DEM0)
	rf.Write8(RegDSMDEM1, s.DEM1)
	rf.Write8(RegDSMMISC, s.MISC)
	setBits(rf, RegDSMCLK, s.CLK)
	rf.Write8(RegDSMREF1, s.REF1)
	rf.Write8(RegDSMOUT0, s.OUT0)
	rf.Write8(RegDSMOUT1, s.OUT1)
	rf.Write8(RegDSMCR0, s.CR0)
	rf.Write8(RegDSMCR1, s.CR1)
	rf.Write8(RegDSMCR3, s.CR3)
	rf.Write8(RegDSMCR8, s.CR8)
	rf.Write8(RegDSMCR9, s.CR9)
	rf.Write8(RegDSMCR13, s.CR13)
	rf.Write8(RegDecSR, s.DecSR)

	for i := uint8(1); i <= d.numProfiles; i++ {
		d.compensateGain(i)
	}
	d.loadGain()
	d.initConfig()

	d.state = StateStopped
	DebugPrintln("[DSADC] init cfg=" + itoa(int(id)))
}

// initConfig loads the active profile's register image.
func (d *Driver) initConfig() {
	p := d.activeProfile()
	rf := d.regs
	r := &p.Regs

	d.stopConversion = false

	rf.Write8(RegDecCR, p.decCR())
	rf.Write8(RegDecShift1, r.Shift1)
	rf.Write8(RegDecShift2, r.Shift2)
	rf.Write8(RegDecDR2, r.DR2)
	rf.Write8(RegDecDR2H, r.DR2H)
	rf.Write8(RegDecDR1, r.DR1)
	rf.Write8(RegDecOCOR, r.OCOR)
	rf.Write8(RegDecOCORM, r.OCORM)
	rf.Write8(RegDecOCORH, r.OCORH)
	rf.Write8(RegDecCOHER, uint8(p.Coherency)&decSampKeyMask)

	rf.Write8(RegDSMCR4, r.CR4)
	rf.Write8(RegDSMCR5, r.CR5)
	rf.Write8(RegDSMCR6, r.CR6)
	rf.Write8(RegDSMCR7, r.CR7)
	rf.Write8(RegDSMCR10, r.CR10)
	rf.Write8(RegDSMCR11, r.CR11)
	rf.Write8(RegDSMCR12, r.CR12)
	rf.Write8(RegDSMCR14, r.CR14)
	rf.Write8(RegDSMCR15, r.CR15)
	rf.Write8(RegDSMCR16, r.CR16)
	rf.Write8(RegDSMCR17, r.CR17)
	d.setDSMRef0(r.REF0)
	rf.Write8(RegDSMREF2, r.REF2)
	rf.Write8(RegDSMREF3, r.REF3)

	rf.Write8(RegDSMBUF0, r.BUF0)
	rf.Write8(RegDSMBUF1, r.BUF1)
	rf.Write8(RegDSMBUF2, r.BUF2)
	rf.Write8(RegDSMBUF3, r.BUF3)

	// Vref on the negative input doubles the single ended span
	if d.amux != nil {
		d.amux.Write(p.InputRange == RangeVssaTo2Vref)
	}

	if p.SingleSampleHighRes() {
		d.stopConversion = true
	}

	write16(rf, RegPumpClkDiv, RegPumpClkDivH, p.PumpClockDivider)
	if d.internalClock {
		write16(rf, RegADCClkDiv, RegADCClkDivH, p.ADCClockDivider)
	}

	d.irq.SetVector(d.handleInterrupt)
	atomic.StoreUint32(&d.convDone, 0)

	RecordEvent(EvtSelectConfig, d.active, uint32(p.Resolution), uint32(p.Mode))
}

// handleInterrupt services the conversion complete interrupt. In single
// sample mode above 16 bits the decimator keeps running, so the handler
// records completion and stops it.
func (d *Driver) handleInterrupt() {
	if d.stopConversion {
		atomic.StoreUint32(&d.convDone, 1)
		clearBits(d.regs, RegDecCR, decStartConv)
	}
	RecordEvent(EvtConvDone, d.active, 0, 0)
}

// Start initializes the driver on first use, then runs the power up
// sequence. A configuration chosen by SelectConfiguration before the
// first Start is kept.
func (d *Driver) Start() {
	d.init(1)
	d.powerEnable()
	d.state = StateRunning
}

// Stop stops conversion and powers the converter down.
func (d *Driver) Stop() {
	d.powerDisable()
	if d.state != StateUninitialized {
		d.state = StateStopped
	}
}

// StartConvert sets the decimator start bit.
func (d *Driver) StartConvert() {
	setBits(d.regs, RegDecCR, decStartConv)
	RecordEvent(EvtStartConvert, d.active, 0, 0)
}

// StopConvert clears the decimator start bit. A conversion in flight is
// abandoned and its partial result is not meaningful.
func (d *Driver) StopConvert() {
	clearBits(d.regs, RegDecCR, decStartConv)
	RecordEvent(EvtStopConvert, d.active, 0, 0)
}

// Converting reports whether the decimator start bit is set.
func (d *Driver) Converting() bool {
	return d.regs.Read8(RegDecCR)&decStartConv != 0
}

// SelectConfiguration makes configuration id active. The converter is
// always stopped and reloaded; with restart it is powered up again and
// conversion is started. An id outside 1..NumProfiles panics.
func (d *Driver) SelectConfiguration(id uint8, restart bool) {
	d.assertProfileID(id)

	if d.state == StateUninitialized {
		d.init(id)
	}
	d.active = id

	d.Stop()
	d.initConfig()
	d.loadGain()

	if restart {
		d.Start()
		d.StartConvert()
	}
}

// IsConversionDone reports whether the last conversion has completed.
// With blocking set it spins until it has; there is no timeout.
func (d *Driver) IsConversionDone(blocking bool) bool {
	for {
		status := d.regs.Read8(RegDecSR)&decConvDone != 0
		if d.stopConversion {
			status = atomic.LoadUint32(&d.convDone) != 0
		}
		if status || !blocking {
			return status
		}
	}
}

// WaitForConversion polls for completion until ctx ends, returning
// ErrConversionTimeout if it ends first.
func (d *Driver) WaitForConversion(ctx context.Context) error {
	for !d.IsConversionDone(false) {
		select {
		case <-ctx.Done():
			return ErrConversionTimeout
		default:
		}
	}
	return nil
}

// SetBufferGain sets the modulator input buffer gain code (0..3).
func (d *Driver) SetBufferGain(code uint8) {
	replaceBits(d.regs, RegDSMBUF1, code<<dsmGainShift, dsmGainMask)
}

// SetCoherency selects the key byte for result reads.
func (d *Driver) SetCoherency(c Coherency) {
	replaceBits(d.regs, RegDecCOHER, uint8(c), decSampKeyMask)
}

// Coherency returns the key byte configured in hardware.
func (d *Driver) Coherency() Coherency {
	return d.coherency()
}
