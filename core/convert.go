package core

import "periph.io/x/conn/v3/physic"

// Microvolt scaling coefficients, indexed by resolution. A*counts must
// stay inside int32 for a full scale result at that resolution, and
// counts per volt is divided by B before the final multiply-divide.
type uvCoef struct {
	a int32
	b int32
}

const oneUVCounts = 1000000

var uvCoefTable = [...]uvCoef{
	12: {oneUVCounts / 2, 2},
	13: {oneUVCounts / 4, 4},
	14: {oneUVCounts / 8, 8},
	15: {oneUVCounts / 16, 16},
	16: {oneUVCounts / 32, 32},
	17: {oneUVCounts / 64, 64},
	18: {oneUVCounts / 125, 125},
	19: {oneUVCounts / 250, 250},
	20: {oneUVCounts / 500, 500},
}

// Below 12 bits an 11 bit count times 1e6 still fits in 31 bits.
var uvCoefDefault = uvCoef{oneUVCounts, 1}

func microvoltCoef(resolution uint8) uvCoef {
	if int(resolution) < len(uvCoefTable) && uvCoefTable[resolution].b != 0 {
		return uvCoefTable[resolution]
	}
	return uvCoefDefault
}

// SetOffset sets the zero-volt count subtracted by the conversion helpers.
func (d *Driver) SetOffset(offset int32) {
	d.offset = offset
}

// Offset returns the current zero-volt count.
func (d *Driver) Offset() int32 {
	return d.offset
}

// SetGain sets the counts per volt used by the conversion helpers.
// It is kept across configuration changes.
func (d *Driver) SetGain(countsPerVolt int32) {
	d.countsPerVolt = countsPerVolt
}

// UseNominalGain sets counts per volt to the active profile's nominal value.
func (d *Driver) UseNominalGain() {
	d.SetGain(d.activeProfile().CountsPerVolt)
}

// Gain returns the current counts per volt.
func (d *Driver) Gain() int32 {
	return d.countsPerVolt
}

// alignCounts right-aligns a left aligned result for the active profile.
func (d *Driver) alignCounts(counts int32) int32 {
	if div := d.activeProfile().DecimationDivisor; div > 1 {
		counts /= div
	}
	return counts
}

// CountsToMillivolts converts a result to millivolts.
// Counts per volt must be non-zero.
func (d *Driver) CountsToMillivolts(counts int32) int16 {
	counts = d.alignCounts(counts) - d.offset
	return int16(counts * 1000 / d.countsPerVolt)
}

// CountsToVolts converts a result to volts.
func (d *Driver) CountsToVolts(counts int32) float32 {
	counts = d.alignCounts(counts) - d.offset
	return float32(counts) / float32(d.countsPerVolt)
}

// CountsToMicrovolts converts a result to microvolts using the active
// resolution's coefficients. Counts per volt is reduced before the
// multiply so the intermediate stays within int32.
func (d *Driver) CountsToMicrovolts(counts int32) int32 {
	p := d.activeProfile()
	counts = d.alignCounts(counts)
	c := microvoltCoef(p.Resolution)
	b := d.countsPerVolt / c.b
	return c.a*counts/b - c.a*d.offset/b
}

// CountsToPotential converts a result to a physic.ElectricPotential.
func (d *Driver) CountsToPotential(counts int32) physic.ElectricPotential {
	return physic.ElectricPotential(d.CountsToMicrovolts(counts)) * physic.MicroVolt
}
