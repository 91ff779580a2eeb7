package core

import "errors"

// ErrGainOutOfRange is returned by SetGCOR when the rescaled correction
// would not be representable. The stored correction is left unchanged.
var ErrGainOutOfRange = errors.New("dsadc: gain correction out of range")

// GainCorrection is the decimator gain trim for one configuration.
type GainCorrection struct {
	Width uint8  // Valid bits in Value, 1..16
	Value uint16 // Correction, right aligned to Width bits
}

// GVAL returns the value for the gain valid-bits register.
func (g GainCorrection) GVAL() uint8 {
	return g.Width - 1
}

// ComputeGain derives the gain correction for a configuration from the
// ideal decimator gains and the factory trim.
//
// The trim is applied in 1/32 LSB steps of the ideal gain, then scaled by
// the odd-decimation gain in 32-bit arithmetic. Resolutions below 15 bits
// use a narrower correction so the value is right aligned to resolution+1
// bits.
func ComputeGain(r InputRange, idealDecGain, idealOddDecGain uint16, resolution uint8, trim *TrimTable) GainCorrection {
	var t int8
	if trim != nil {
		t = trim.Lookup(r, resolution)
	}
	normalized := uint32(int32(idealDecGain) + int32(t)*32)
	value := uint16(normalized * uint32(idealOddDecGain) / IdealGainConst)

	if resolution < MaxGainWidth-1 {
		width := resolution + 1
		return GainCorrection{
			Width: width,
			Value: value >> (MaxGainWidth - width),
		}
	}
	return GainCorrection{Width: MaxGainWidth, Value: value}
}

// compensateGain recomputes the stored correction for profile id.
func (d *Driver) compensateGain(id uint8) {
	d.assertProfileID(id)
	p := &d.profiles[id-1]
	d.gains[id-1] = ComputeGain(p.InputRange, p.IdealDecGain, p.IdealOddDecGain, p.Resolution, &d.trim)
}

// loadGain writes the active configuration's correction to the decimator.
func (d *Driver) loadGain() {
	g := d.gains[d.active-1]
	d.regs.Write8(RegDecGVAL, g.GVAL())
	write16(d.regs, RegDecGCOR, RegDecGCORH, g.Value)
}

// SetGCOR rescales the active configuration's gain correction by mult.
// It fails with ErrGainOutOfRange, writing nothing, if the result would
// exceed MaxGainCorrection or go negative.
func (d *Driver) SetGCOR(mult float32) error {
	g := &d.gains[d.active-1]
	tmp := float32(d.ReadGCOR()) / IdealGainConst * mult
	if tmp > MaxGainCorrection || tmp < 0 {
		RecordEvent(EvtGainAdjust, d.active, uint32(g.Value), 1)
		return ErrGainOutOfRange
	}

	value := uint16(tmp * IdealGainConst)
	if g.Width < MaxGainWidth {
		value >>= MaxGainWidth - g.Width
	}
	g.Value = value
	write16(d.regs, RegDecGCOR, RegDecGCORH, value)
	RecordEvent(EvtGainAdjust, d.active, uint32(value), 0)
	return nil
}

// ReadGCOR returns the hardware gain correction normalized to 16 bits,
// so IdealGainConst means unity regardless of the configured width.
func (d *Driver) ReadGCOR() uint16 {
	gval := d.regs.Read8(RegDecGVAL)
	gcor := read16(d.regs, RegDecGCOR, RegDecGCORH)
	if gval < maxGVAL {
		gcor <<= maxGVAL - gval
	}
	return gcor
}
