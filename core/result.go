package core

import "sync/atomic"

// coherency returns the key byte currently configured in the decimator.
func (d *Driver) coherency() Coherency {
	return Coherency(d.regs.Read8(RegDecCOHER) & decSampKeyMask)
}

// resultRead finishes every result read. In single sample mode above
// 16 bits the hardware does not clear completion, so the software flag
// is cleared here.
func (d *Driver) resultRead() {
	if d.stopConversion {
		atomic.StoreUint32(&d.convDone, 0)
	}
}

// Read8 returns the low byte of the last conversion.
// Only the low byte is read, so a mid or high key byte is not released.
func (d *Driver) Read8() int8 {
	result := int8(d.regs.Read8(RegDecSAMP))
	d.resultRead()
	return result
}

// Read16 returns the low 16 bits of the last conversion. The key byte,
// when it is the low or middle byte, is read last.
func (d *Driver) Read16() int16 {
	var lo, mid uint8
	switch d.coherency() {
	case CoherencyMid, CoherencyHigh:
		lo = d.regs.Read8(RegDecSAMP)
		mid = d.regs.Read8(RegDecSAMPM)
	default:
		mid = d.regs.Read8(RegDecSAMPM)
		lo = d.regs.Read8(RegDecSAMP)
	}
	d.resultRead()
	return int16(uint16(mid)<<8 | uint16(lo))
}

// Read32 returns the full sign extended conversion result. The two
// non-key bytes are read first, low before high, so the final read
// releases the next sample.
func (d *Driver) Read32() int32 {
	rf := d.regs
	var lo, mid, hi uint8
	switch d.coherency() {
	case CoherencyHigh:
		lo = rf.Read8(RegDecSAMP)
		mid = rf.Read8(RegDecSAMPM)
		hi = rf.Read8(RegDecSAMPH)
	case CoherencyMid:
		lo = rf.Read8(RegDecSAMP)
		hi = rf.Read8(RegDecSAMPH)
		mid = rf.Read8(RegDecSAMPM)
	default:
		hi = rf.Read8(RegDecSAMPH)
		mid = rf.Read8(RegDecSAMPM)
		lo = rf.Read8(RegDecSAMP)
	}
	d.resultRead()
	return int32(int8(hi))<<16 | int32(mid)<<8 | int32(lo)
}

// Sample8 runs a single blocking conversion and returns Read8.
func (d *Driver) Sample8() int8 {
	d.beginOneShot()
	result := d.Read8()
	d.StopConvert()
	return result
}

// Sample16 runs a single blocking conversion and returns Read16.
func (d *Driver) Sample16() int16 {
	d.beginOneShot()
	result := d.Read16()
	d.StopConvert()
	return result
}

// Sample32 runs a single blocking conversion and returns Read32.
func (d *Driver) Sample32() int32 {
	d.beginOneShot()
	result := d.Read32()
	d.StopConvert()
	return result
}

func (d *Driver) beginOneShot() {
	setBits(d.regs, RegDecSR, decIntrClear)
	d.StartConvert()
	d.IsConversionDone(true)
}
