// Package mcu receives reports from converter firmware over a serial link.
package mcu

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strconv"
	"sync/atomic"

	"dsadc/host/serial"
	"dsadc/protocol"
	"dsadc/report"
)

// MCU represents the report link of a converter board
type MCU struct {
	port    serial.Port
	format  report.Format
	decoder *protocol.Decoder

	// Partial text line carried between reads
	line []byte

	// Lines that could not be parsed
	BadLines int

	// Cleared by Close, which may run on another goroutine than Monitor
	connected atomic.Bool
}

// NewMCU creates a new MCU instance (not yet connected)
func NewMCU(format report.Format) *MCU {
	return &MCU{
		format:  format,
		decoder: protocol.NewDecoder(),
	}
}

// ConnectWithConfig connects to an MCU with a custom serial config
func (m *MCU) ConnectWithConfig(cfg *serial.Config) error {
	port, err := serial.Open(cfg)
	if err != nil {
		return fmt.Errorf("failed to open serial port: %w", err)
	}
	m.Attach(port)
	return nil
}

// Attach uses an already open port
func (m *MCU) Attach(port serial.Port) {
	m.port = port
	m.connected.Store(true)
}

// Close closes the connection to the MCU. A blocked Monitor returns.
func (m *MCU) Close() error {
	m.connected.Store(false)
	if m.port != nil {
		return m.port.Close()
	}
	return nil
}

// Decoder returns the binary frame decoder, for its error counters
func (m *MCU) Decoder() *protocol.Decoder {
	return m.decoder
}

// Monitor reads reports until the port fails or is closed, calling fn
// for each one. Text reports carry only the timestamp and the value,
// which is returned in Counts. End of stream returns nil.
func (m *MCU) Monitor(fn func(protocol.Reading)) error {
	if !m.connected.Load() {
		return fmt.Errorf("not connected to MCU")
	}

	buf := make([]byte, 256)
	for {
		n, err := m.port.Read(buf)
		if n > 0 {
			m.Feed(buf[:n], fn)
		}
		if err != nil {
			if errors.Is(err, io.EOF) || !m.connected.Load() {
				return nil
			}
			return fmt.Errorf("read failed: %w", err)
		}
	}
}

// Feed processes received bytes.
func (m *MCU) Feed(data []byte, fn func(protocol.Reading)) {
	if m.format == report.FormatBinary {
		m.decoder.Feed(data, fn)
		return
	}

	m.line = append(m.line, data...)
	for {
		i := bytes.IndexByte(m.line, '\n')
		if i < 0 {
			break
		}
		text := m.line[:i]
		m.line = m.line[i+1:]
		if len(bytes.TrimSpace(text)) == 0 {
			continue
		}
		r, err := ParseLine(text)
		if err != nil {
			m.BadLines++
			continue
		}
		fn(r)
	}
	if len(m.line) > protocol.MessageMax {
		// No newline in sight; the link is not carrying text reports
		m.line = m.line[:0]
		m.BadLines++
	}
}

// ParseLine parses a "<millis>:<value>" report line. A trailing
// carriage return is ignored.
func ParseLine(line []byte) (protocol.Reading, error) {
	line = bytes.TrimRight(line, "\r\n")
	i := bytes.IndexByte(line, ':')
	if i < 0 {
		return protocol.Reading{}, fmt.Errorf("report line %q: missing ':'", line)
	}
	ms, err := strconv.ParseUint(string(line[:i]), 10, 32)
	if err != nil {
		return protocol.Reading{}, fmt.Errorf("report line %q: %w", line, err)
	}
	v, err := strconv.ParseInt(string(line[i+1:]), 10, 32)
	if err != nil {
		return protocol.Reading{}, fmt.Errorf("report line %q: %w", line, err)
	}
	return protocol.Reading{Millis: uint32(ms), Counts: int32(v)}, nil
}
