//go:build !tinygo

package core

// Access is one recorded register access.
type Access struct {
	Write bool
	Reg   Reg
	Value uint8
}

func (a Access) String() string {
	op := "R "
	if a.Write {
		op = "W "
	}
	return op + a.Reg.String() + "=" + hex8(a.Value)
}

// SimRegisters is a host model of the converter register file.
//
// Conversions complete after PollsPerSample reads of DEC_SR while the
// start bit is set and the decimator is powered; the result comes from
// Signal. The sample registers follow the coherency key: reading a
// non-key byte locks the sample, reading the key byte releases it and
// latches any result that completed while locked.
type SimRegisters struct {
	regs [NumRegs]uint8

	// IRQ, when set, is raised on every latched conversion.
	IRQ *SimIRQ

	// Signal produces the raw result for conversion seq.
	Signal func(seq uint32) int32

	// PollsPerSample is the number of status polls per conversion (default 1).
	PollsPerSample int

	// Trace enables recording into Accesses.
	Trace    bool
	Accesses []Access

	// OnRead runs after every read and its side effects.
	OnRead func(r Reg)

	seq       uint32
	countdown int
	pending   []int32
	locked    bool
}

// NewSimRegisters returns a register file raising irq on completion.
func NewSimRegisters(irq *SimIRQ, signal func(seq uint32) int32) *SimRegisters {
	return &SimRegisters{IRQ: irq, Signal: signal, PollsPerSample: 1}
}

// Peek returns a register without side effects or tracing.
func (s *SimRegisters) Peek(r Reg) uint8 {
	return s.regs[r]
}

// Poke sets a register without side effects or tracing.
func (s *SimRegisters) Poke(r Reg, v uint8) {
	s.regs[r] = v
}

// ResetTrace drops recorded accesses.
func (s *SimRegisters) ResetTrace() {
	s.Accesses = s.Accesses[:0]
}

// Writes returns the values written to r, in order.
func (s *SimRegisters) Writes(r Reg) []uint8 {
	var out []uint8
	for _, a := range s.Accesses {
		if a.Write && a.Reg == r {
			out = append(out, a.Value)
		}
	}
	return out
}

func (s *SimRegisters) record(write bool, r Reg, v uint8) {
	if s.Trace {
		s.Accesses = append(s.Accesses, Access{Write: write, Reg: r, Value: v})
	}
}

func (s *SimRegisters) keyReg() (Reg, bool) {
	switch Coherency(s.regs[RegDecCOHER] & decSampKeyMask) {
	case CoherencyLow:
		return RegDecSAMP, true
	case CoherencyMid:
		return RegDecSAMPM, true
	case CoherencyHigh:
		return RegDecSAMPH, true
	}
	return 0, false
}

func (s *SimRegisters) converting() bool {
	return s.regs[RegDecCR]&decStartConv != 0 && s.regs[RegPwrMgrDec]&actPwrDecEn != 0
}

// Read8 implements RegisterFile.
func (s *SimRegisters) Read8(r Reg) uint8 {
	switch r {
	case RegDecSR:
		if s.converting() && s.Signal != nil {
			s.countdown--
			if s.countdown <= 0 {
				s.countdown = s.pollsPerSample()
				s.Convert(s.Signal(s.seq))
				s.seq++
			}
		}
	case RegDecSAMP, RegDecSAMPM, RegDecSAMPH:
		key, ok := s.keyReg()
		v := s.regs[r]
		switch {
		case !ok:
			if r == RegDecSAMP {
				s.regs[RegDecSR] &^= decConvDone
			}
		case r == key:
			s.release()
		default:
			s.locked = true
		}
		s.record(false, r, v)
		if s.OnRead != nil {
			s.OnRead(r)
		}
		return v
	}

	v := s.regs[r]
	s.record(false, r, v)
	if s.OnRead != nil {
		s.OnRead(r)
	}
	return v
}

// Write8 implements RegisterFile.
func (s *SimRegisters) Write8(r Reg, v uint8) {
	s.record(true, r, v)
	switch r {
	case RegDecSR:
		// Conversion done is read only; interrupt clear is write-one-to-clear
		done := s.regs[RegDecSR] & decConvDone
		if v&decIntrClear != 0 {
			done = 0
		}
		s.regs[RegDecSR] = v&^(decIntrClear|decConvDone) | done
	case RegDecCR:
		if v&decStartConv != 0 && s.regs[RegDecCR]&decStartConv == 0 {
			s.countdown = s.pollsPerSample()
		}
		s.regs[r] = v
	default:
		s.regs[r] = v
	}
}

func (s *SimRegisters) pollsPerSample() int {
	if s.PollsPerSample <= 0 {
		return 1
	}
	return s.PollsPerSample
}

// Convert completes a conversion with the given raw result. While the
// sample is locked the result is queued until the key byte is read.
func (s *SimRegisters) Convert(raw int32) {
	if s.locked {
		s.pending = append(s.pending, raw)
		return
	}
	s.latch(raw)
}

func (s *SimRegisters) latch(raw int32) {
	s.regs[RegDecSAMP] = uint8(raw)
	s.regs[RegDecSAMPM] = uint8(raw >> 8)
	s.regs[RegDecSAMPH] = uint8(raw >> 16)
	s.regs[RegDecSR] |= decConvDone
	if s.IRQ != nil {
		s.IRQ.Raise()
	}
}

func (s *SimRegisters) release() {
	s.locked = false
	s.regs[RegDecSR] &^= decConvDone
	if len(s.pending) > 0 {
		next := s.pending[0]
		s.pending = s.pending[1:]
		s.latch(next)
	}
}

// Pending returns the number of results waiting for a release.
func (s *SimRegisters) Pending() int {
	return len(s.pending)
}

// SimIRQ is a host model of one interrupt line.
type SimIRQ struct {
	handler  func()
	priority uint8
	enabled  bool
	pending  bool

	// Delivered counts handler invocations.
	Delivered int
}

// NewSimIRQ returns a disabled interrupt line. Requests raised while
// interrupts are masked are delivered when the critical section ends.
func NewSimIRQ() *SimIRQ {
	s := &SimIRQ{}
	unmaskHooks = append(unmaskHooks, s.deliver)
	return s
}

// SetVector implements IRQController.
func (s *SimIRQ) SetVector(handler func()) { s.handler = handler }

// SetPriority implements IRQController.
func (s *SimIRQ) SetPriority(level uint8) { s.priority = level }

// Priority returns the configured priority.
func (s *SimIRQ) Priority() uint8 { return s.priority }

// Enable implements IRQController.
func (s *SimIRQ) Enable() {
	s.enabled = true
	s.deliver()
}

// Disable implements IRQController.
func (s *SimIRQ) Disable() { s.enabled = false }

// ClearPending implements IRQController.
func (s *SimIRQ) ClearPending() { s.pending = false }

// Enabled reports whether the line is unmasked.
func (s *SimIRQ) Enabled() bool { return s.enabled }

// IsPending reports whether a request is latched.
func (s *SimIRQ) IsPending() bool { return s.pending }

// Raise latches a request and delivers it if possible.
func (s *SimIRQ) Raise() {
	s.pending = true
	s.deliver()
}

func (s *SimIRQ) deliver() {
	if !s.pending || !s.enabled || s.handler == nil || interruptsMasked {
		return
	}
	s.pending = false
	s.Delivered++
	s.handler()
}
