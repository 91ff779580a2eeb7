//go:build tinygo

package core

import (
	"device/arm"
	"sync/atomic"
)

// CPUFrequencyHz is the core clock used to calibrate busy-wait delays.
// Targets override it after configuring their clock tree.
var CPUFrequencyHz uint32 = 64000000

var systemTicksValue uint32

// getSystemTicks returns the current system ticks
func getSystemTicks() uint32 {
	return atomic.LoadUint32(&systemTicksValue)
}

// setSystemTicks sets the system ticks
func setSystemTicks(ticks uint32) {
	atomic.StoreUint32(&systemTicksValue, ticks)
}

func addSystemTicks(n uint32) {
	atomic.AddUint32(&systemTicksValue, n)
}

// delayMicroseconds spins on the CPU. The scheduler's sleep needs the
// timer interrupt, which is masked while the power sequencer runs.
func delayMicroseconds(us uint32) {
	// ~4 cycles per loop iteration on Cortex-M3
	n := us * (CPUFrequencyHz / 1000000) / 4
	for i := uint32(0); i < n; i++ {
		arm.Asm("nop")
	}
}
