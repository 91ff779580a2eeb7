package core

// criticalSection is a scoped interrupt mask. Acquire it with enterCritical
// and release it with a deferred exit so every return path restores the
// caller's interrupt state.
type criticalSection struct {
	state State
}

func enterCritical() criticalSection {
	return criticalSection{state: disableInterrupts()}
}

func (cs criticalSection) exit() {
	restoreInterrupts(cs.state)
}
