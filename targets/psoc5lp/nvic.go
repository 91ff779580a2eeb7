//go:build tinygo && psoc5lp

package main

import (
	"device/arm"
	"runtime/interrupt"
	"runtime/volatile"
	"unsafe"

	"dsadc/core"
)

// Interrupt lines, from this design's cyfitter.h
const (
	irqADC    = 0
	irqMillis = 1
)

// NVIC clear-pending register bank
const nvicICPR = 0xE000E280

// nvicIRQ implements core.IRQController for one NVIC line. The vector
// is fixed at link time, so SetVector swaps the Go handler it calls.
type nvicIRQ struct {
	irq     uint32
	handler func()
}

var (
	adcIRQ    = &nvicIRQ{irq: irqADC}
	millisIRQ = &nvicIRQ{irq: irqMillis}
)

func init() {
	interrupt.New(irqADC, func(interrupt.Interrupt) {
		if adcIRQ.handler != nil {
			adcIRQ.handler()
		}
	})
}

// SetVector implements core.IRQController.
func (n *nvicIRQ) SetVector(handler func()) {
	state := interrupt.Disable()
	n.handler = handler
	interrupt.Restore(state)
}

// SetPriority implements core.IRQController. PSoC 5LP implements the
// top three priority bits.
func (n *nvicIRQ) SetPriority(level uint8) {
	arm.SetPriority(n.irq, uint32(level&0x07)<<5)
}

// Enable implements core.IRQController.
func (n *nvicIRQ) Enable() { arm.EnableIRQ(n.irq) }

// Disable implements core.IRQController.
func (n *nvicIRQ) Disable() { arm.DisableIRQ(n.irq) }

// ClearPending implements core.IRQController.
func (n *nvicIRQ) ClearPending() {
	icpr := (*volatile.Register32)(unsafe.Pointer(uintptr(nvicICPR + 4*(n.irq/32))))
	icpr.Set(1 << (n.irq % 32))
}

// startMillis enables the 1 kHz tick interrupt.
func startMillis() {
	intr := interrupt.New(irqMillis, func(interrupt.Interrupt) {
		core.Tick()
		millisIRQ.ClearPending()
	})
	intr.SetPriority(0xE0)
	intr.Enable()
}
