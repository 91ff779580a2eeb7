//go:build !tinygo

package core

// State is the saved interrupt mask on regular Go (for testing)
type State uintptr

var (
	// interruptsMasked mirrors PRIMASK for host builds
	interruptsMasked bool

	// unmaskHooks run when interrupts become unmasked, so simulated
	// controllers can deliver requests latched during a critical section
	unmaskHooks []func()
)

// disableInterrupts masks interrupts and returns the previous state
func disableInterrupts() State {
	if interruptsMasked {
		return 1
	}
	interruptsMasked = true
	return 0
}

// restoreInterrupts restores the interrupt state
func restoreInterrupts(state State) {
	interruptsMasked = state != 0
	if interruptsMasked {
		return
	}
	for _, hook := range unmaskHooks {
		hook()
	}
}

// InterruptsMasked reports whether a critical section is active.
func InterruptsMasked() bool {
	return interruptsMasked
}
