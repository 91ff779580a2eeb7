package core

// Millis returns milliseconds elapsed since the tick source started.
func Millis() uint32 {
	return getSystemTicks()
}

// SetMillis sets the current tick count (for testing/hardware integration)
func SetMillis(ticks uint32) {
	setSystemTicks(ticks)
}

// Tick advances the timebase by one millisecond. Call it from the
// periodic timer interrupt; it must stay safe to run in ISR context.
func Tick() {
	addSystemTicks(1)
}

// DelayMicroseconds blocks for at least us microseconds.
// It is used for analog settling inside critical sections, so it must
// not depend on interrupts being serviced.
func DelayMicroseconds(us uint32) {
	delayMicroseconds(us)
}
