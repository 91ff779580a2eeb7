//go:build tinygo && psoc5lp

package main

import (
	"runtime/volatile"
	"unsafe"

	"tinygo.org/x/drivers"
)

// UART component registers, from this design's cyfitter.h
const (
	uartTxData   = 0x40006442
	uartTxStatus = 0x40006562
	uartRxData   = 0x40006443
	uartRxStatus = 0x40006563
)

// UART component status bits
const (
	uartTxFifoNotFull  = 0x04
	uartRxFifoNotEmpty = 0x20
)

// psocUART drives the UDB UART component by polling its FIFOs.
type psocUART struct {
	txData   *volatile.Register8
	txStatus *volatile.Register8
	rxData   *volatile.Register8
	rxStatus *volatile.Register8
}

var _ drivers.UART = (*psocUART)(nil)

func newUART() *psocUART {
	return &psocUART{
		txData:   (*volatile.Register8)(unsafe.Pointer(uintptr(uartTxData))),
		txStatus: (*volatile.Register8)(unsafe.Pointer(uintptr(uartTxStatus))),
		rxData:   (*volatile.Register8)(unsafe.Pointer(uintptr(uartRxData))),
		rxStatus: (*volatile.Register8)(unsafe.Pointer(uintptr(uartRxStatus))),
	}
}

// Write blocks until every byte is in the TX FIFO.
func (u *psocUART) Write(b []byte) (int, error) {
	for _, c := range b {
		for !u.txStatus.HasBits(uartTxFifoNotFull) {
		}
		u.txData.Set(c)
	}
	return len(b), nil
}

// Read returns the bytes already in the RX FIFO without blocking.
func (u *psocUART) Read(b []byte) (int, error) {
	n := 0
	for n < len(b) && u.rxStatus.HasBits(uartRxFifoNotEmpty) {
		b[n] = u.rxData.Get()
		n++
	}
	return n, nil
}

// Buffered reports whether a received byte is waiting. The component
// exposes only a FIFO-not-empty flag.
func (u *psocUART) Buffered() int {
	if u.rxStatus.HasBits(uartRxFifoNotEmpty) {
		return 1
	}
	return 0
}
