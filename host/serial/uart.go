package serial

import (
	"io"
	"sync"

	"dsadc/protocol"

	"tinygo.org/x/drivers"
)

const uartBufferSize = 4096

// UART adapts a Port to the TinyGo drivers.UART interface so that host
// code can share transmitters with firmware. A background reader keeps
// received bytes in a FIFO for Buffered.
type UART struct {
	port Port

	mu   sync.Mutex
	fifo *protocol.FifoBuffer
	err  error
	rx   chan struct{}
	done chan struct{}
}

var _ drivers.UART = (*UART)(nil)

// NewUART starts the background reader on port.
func NewUART(port Port) *UART {
	u := &UART{
		port: port,
		fifo: protocol.NewFifoBuffer(uartBufferSize),
		rx:   make(chan struct{}, 1),
		done: make(chan struct{}),
	}
	go u.readLoop()
	return u
}

func (u *UART) readLoop() {
	defer close(u.done)
	buf := make([]byte, 256)
	for {
		n, err := u.port.Read(buf)
		if n > 0 {
			u.mu.Lock()
			// Overflowing bytes are dropped like a hardware RX FIFO
			u.fifo.Write(buf[:n])
			u.mu.Unlock()
			u.signal()
		}
		if err != nil {
			u.mu.Lock()
			u.err = err
			u.mu.Unlock()
			u.signal()
			return
		}
	}
}

func (u *UART) signal() {
	select {
	case u.rx <- struct{}{}:
	default:
	}
}

// Buffered returns the number of received bytes waiting to be read.
func (u *UART) Buffered() int {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.fifo.Available()
}

// Read blocks until data is available, then copies as much as fits.
// Once the port has failed and the FIFO is drained it returns the
// port's error.
func (u *UART) Read(b []byte) (int, error) {
	if len(b) == 0 {
		return 0, nil
	}
	for {
		u.mu.Lock()
		if u.fifo.Available() > 0 {
			n := u.fifo.Read(b)
			u.mu.Unlock()
			return n, nil
		}
		err := u.err
		u.mu.Unlock()
		if err != nil {
			return 0, err
		}
		<-u.rx
	}
}

// Write writes directly to the port.
func (u *UART) Write(b []byte) (int, error) {
	return u.port.Write(b)
}

// Close closes the port and waits for the reader to exit.
func (u *UART) Close() error {
	err := u.port.Close()
	<-u.done
	return err
}

var _ io.ReadWriteCloser = (*UART)(nil)
