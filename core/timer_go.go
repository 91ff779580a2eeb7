//go:build !tinygo

package core

import (
	"sync/atomic"
	"time"
)

var systemTicks uint32

// getSystemTicks returns the current system ticks (regular Go implementation)
func getSystemTicks() uint32 {
	return atomic.LoadUint32(&systemTicks)
}

// setSystemTicks sets the system ticks (regular Go implementation)
func setSystemTicks(ticks uint32) {
	atomic.StoreUint32(&systemTicks, ticks)
}

func addSystemTicks(n uint32) {
	atomic.AddUint32(&systemTicks, n)
}

// delayMicroseconds sleeps; host builds have no interrupt mask to respect
func delayMicroseconds(us uint32) {
	time.Sleep(time.Duration(us) * time.Microsecond)
}
