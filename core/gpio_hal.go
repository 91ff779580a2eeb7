package core

// DriveMode selects the electrical configuration of a pin.
type DriveMode uint8

const (
	DriveHighZ DriveMode = iota
	DriveStrong
	DrivePullUp
	DrivePullDown
)

// AMuxPin is the auxiliary analog-mux select pin.
// It routes either Vssa (low) or Vref (high) to the modulator's negative input.
// Platform-specific implementations handle actual hardware control.
type AMuxPin interface {
	// Write drives the pin high (true) or low (false)
	Write(value bool)

	// Read returns the current pin state
	Read() bool

	// SetDriveMode configures the pin's output stage
	SetDriveMode(mode DriveMode)
}
