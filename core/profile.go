package core

import (
	"errors"
	"fmt"
	"strings"
)

// MaxProfiles is the number of configuration slots a driver carries.
const MaxProfiles = 4

// InputRange selects the modulator input span.
type InputRange uint8

const (
	RangeVssaToVref  InputRange = iota // Single ended Vssa..Vref
	RangeVssaTo2Vref                   // Single ended Vssa..2*Vref (AMux drives Vref to the negative input)
	RangeVssaToVdda                    // Single ended Vssa..Vdda
	RangeVssaTo6Vref                   // Single ended Vssa..6*Vref
	RangeDiffVref                      // Differential +/- Vref
	RangeDiffVref2                     // Differential +/- Vref/2
	RangeDiffVref4                     // Differential +/- Vref/4
	RangeDiffVref8                     // Differential +/- Vref/8
	RangeDiffVref16                    // Differential +/- Vref/16
)

var inputRangeNames = [...]string{
	"vssa_to_vref", "vssa_to_2vref", "vssa_to_vdda", "vssa_to_6vref",
	"diff_vref", "diff_vref2", "diff_vref4", "diff_vref8", "diff_vref16",
}

func (r InputRange) String() string {
	if int(r) < len(inputRangeNames) {
		return inputRangeNames[r]
	}
	return "range?"
}

// Reference selects the modulator voltage reference.
type Reference uint8

const (
	RefInternal1024       Reference = iota // Internal 1.024 V
	RefInternal1024Bypass                  // Internal 1.024 V, bypassed on P0[3] or P3[2]
	RefInternalVdda4                       // Internal Vdda/4
	RefInternalVdda3                       // Internal Vdda/3
	RefExternalP03                         // External on P0[3]
	RefExternalP32                         // External on P3[2]
)

var referenceNames = [...]string{
	"internal_1v024", "internal_1v024_bypass", "internal_vdda4", "internal_vdda3",
	"external_p03", "external_p32",
}

func (r Reference) String() string {
	if int(r) < len(referenceNames) {
		return referenceNames[r]
	}
	return "ref?"
}

// External reports whether the reference is supplied off chip, in which
// case the internal reference buffer stays off.
func (r Reference) External() bool {
	return r == RefExternalP03 || r == RefExternalP32
}

// Mode is the decimator conversion mode.
type Mode uint8

const (
	ModeSingleSample Mode = iota
	ModeFastFilter
	ModeContinuous
	ModeFastFIR
)

var modeNames = [...]string{"single_sample", "fast_filter", "continuous", "fast_fir"}

func (m Mode) String() string {
	if int(m) < len(modeNames) {
		return modeNames[m]
	}
	return "mode?"
}

// decBits returns the DEC_CR mode field.
func (m Mode) decBits() uint8 {
	return uint8(m) << decModeShift & decModeMask
}

// Coherency selects the sample byte whose read releases the next sample.
type Coherency uint8

const (
	CoherencyNone Coherency = iota
	CoherencyLow
	CoherencyMid
	CoherencyHigh
)

var coherencyNames = [...]string{"none", "low", "mid", "high"}

func (c Coherency) String() string {
	if int(c) < len(coherencyNames) {
		return coherencyNames[c]
	}
	return "coher?"
}

// ProfileRegs holds the per-configuration register image produced by the
// component configurator. Values are written verbatim when the
// configuration is loaded.
type ProfileRegs struct {
	DecCR  uint8 // Extra DEC_CR bits; mode and start bits are owned by the driver
	Shift1 uint8
	Shift2 uint8
	DR2    uint8
	DR2H   uint8
	DR1    uint8
	OCOR   uint8
	OCORM  uint8
	OCORH  uint8

	CR2  uint8
	CR4  uint8
	CR5  uint8
	CR6  uint8
	CR7  uint8
	CR10 uint8
	CR11 uint8
	CR12 uint8
	CR14 uint8
	CR15 uint8
	CR16 uint8
	CR17 uint8

	REF0 uint8
	REF2 uint8
	REF3 uint8

	BUF0 uint8
	BUF1 uint8
	BUF2 uint8
	BUF3 uint8
}

// Profile is one immutable acquisition configuration.
type Profile struct {
	ID         uint8 // 1..MaxProfiles
	Resolution uint8 // 8..20 bits
	InputRange InputRange
	Reference  Reference
	Mode       Mode

	// DecimationDivisor scales left aligned results down to counts.
	// Zero or one means right aligned data and no division.
	DecimationDivisor int32

	// CountsPerVolt is the nominal gain, applied by Driver.UseNominalGain.
	CountsPerVolt int32

	ADCClockDivider  uint16
	PumpClockDivider uint16

	IdealDecGain    uint16
	IdealOddDecGain uint16

	Coherency Coherency
	Regs      ProfileRegs
}

// SingleSampleHighRes reports whether completion must be tracked in
// software because the decimator does not stop itself above 16 bits.
func (p *Profile) SingleSampleHighRes() bool {
	return p.Resolution > 16 && p.Mode == ModeSingleSample
}

// decCR returns the DEC_CR value for this profile with start cleared.
func (p *Profile) decCR() uint8 {
	return p.Regs.DecCR&^(decModeMask|decStartConv) | p.Mode.decBits()
}

// Profile validation errors
var (
	ErrNoProfiles      = errors.New("dsadc: no configuration profiles")
	ErrTooManyProfiles = errors.New("dsadc: more than 4 configuration profiles")
	ErrProfileID       = errors.New("dsadc: profile ids must run 1..n in order")
	ErrResolution      = errors.New("dsadc: resolution must be 8..20 bits")
	ErrNoRegisterImage = errors.New("dsadc: register image not loaded")
)

// ValidateProfiles checks a profile set before it reaches the hardware.
func ValidateProfiles(profiles []Profile) error {
	if len(profiles) == 0 {
		return ErrNoProfiles
	}
	if len(profiles) > MaxProfiles {
		return ErrTooManyProfiles
	}
	for i := range profiles {
		p := &profiles[i]
		if int(p.ID) != i+1 {
			return fmt.Errorf("profile %d has id %d: %w", i+1, p.ID, ErrProfileID)
		}
		if p.Resolution < 8 || p.Resolution > 20 {
			return fmt.Errorf("profile %d resolution %d: %w", p.ID, p.Resolution, ErrResolution)
		}
		if int(p.InputRange) >= len(inputRangeNames) {
			return fmt.Errorf("profile %d: unknown input range %d", p.ID, p.InputRange)
		}
		if int(p.Mode) >= len(modeNames) {
			return fmt.Errorf("profile %d: unknown mode %d", p.ID, p.Mode)
		}
	}
	return nil
}

// CheckRegisterImages reports whether static and every profile carry a
// register image. A zero decimation ratio or an all zero modulator setup
// cannot produce a conversion.
func CheckRegisterImages(static StaticRegs, profiles []Profile) error {
	if static == (StaticRegs{}) {
		return fmt.Errorf("static registers: %w", ErrNoRegisterImage)
	}
	for i := range profiles {
		r := &profiles[i].Regs
		if r.DR1 == 0 && r.DR2 == 0 && r.DR2H == 0 {
			return fmt.Errorf("profile %d decimation ratio: %w", profiles[i].ID, ErrNoRegisterImage)
		}
		if r.CR4|r.CR5|r.CR6|r.CR7 == 0 {
			return fmt.Errorf("profile %d modulator control: %w", profiles[i].ID, ErrNoRegisterImage)
		}
	}
	return nil
}

func parseName(kind, s string, names []string) (int, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for i, n := range names {
		if n == s {
			return i, nil
		}
	}
	return 0, fmt.Errorf("unknown %s %q", kind, s)
}

// ParseInputRange parses an input range name such as "diff_vref".
func ParseInputRange(s string) (InputRange, error) {
	i, err := parseName("input range", s, inputRangeNames[:])
	return InputRange(i), err
}

// ParseReference parses a reference name such as "internal_1v024".
func ParseReference(s string) (Reference, error) {
	i, err := parseName("reference", s, referenceNames[:])
	return Reference(i), err
}

// ParseMode parses a conversion mode name such as "continuous".
func ParseMode(s string) (Mode, error) {
	i, err := parseName("mode", s, modeNames[:])
	return Mode(i), err
}

// ParseCoherency parses a coherency key name: none, low, mid or high.
func ParseCoherency(s string) (Coherency, error) {
	i, err := parseName("coherency", s, coherencyNames[:])
	return Coherency(i), err
}
