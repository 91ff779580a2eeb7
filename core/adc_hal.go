package core

// RegisterFile is the abstract register access interface that driver code uses.
// Firmware targets map it onto memory-mapped I/O; host builds use SimRegisters.
type RegisterFile interface {
	// Read8 reads one register. Reads of sample and status registers
	// may have hardware side effects (coherency unlock).
	Read8(r Reg) uint8

	// Write8 writes one register.
	Write8(r Reg, v uint8)
}

// IRQController manages the converter's completion interrupt line.
type IRQController interface {
	// SetVector installs the handler invoked on conversion complete.
	SetVector(handler func())

	// SetPriority sets the interrupt priority level.
	SetPriority(level uint8)

	// Enable unmasks the interrupt line.
	Enable()

	// Disable masks the interrupt line.
	Disable()

	// ClearPending drops any latched request.
	ClearPending()
}

// setBits performs a read-modify-write that sets mask.
func setBits(rf RegisterFile, r Reg, mask uint8) {
	rf.Write8(r, rf.Read8(r)|mask)
}

// clearBits performs a read-modify-write that clears mask.
func clearBits(rf RegisterFile, r Reg, mask uint8) {
	rf.Write8(r, rf.Read8(r)&^mask)
}

// replaceBits writes value into the masked field of r.
func replaceBits(rf RegisterFile, r Reg, value, mask uint8) {
	rf.Write8(r, rf.Read8(r)&^mask|value&mask)
}

// write16 stores a 16-bit value into a low/high register pair, low byte first.
func write16(rf RegisterFile, lo, hi Reg, v uint16) {
	rf.Write8(lo, uint8(v))
	rf.Write8(hi, uint8(v>>8))
}

// read16 loads a 16-bit value from a low/high register pair.
func read16(rf RegisterFile, lo, hi Reg) uint16 {
	return uint16(rf.Read8(lo)) | uint16(rf.Read8(hi))<<8
}
