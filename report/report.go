// Package report implements the sampling loop that averages converter
// results and transmits them over a serial link.
package report

import (
	"context"
	"io"
	"strconv"

	"dsadc/protocol"

	"tinygo.org/x/drivers"
)

// DefaultSamples is the number of results averaged into one report.
const DefaultSamples = 46

// Transmitter is the serial transmit collaborator.
type Transmitter interface {
	PutString(s string)
}

// Source is the part of the converter driver the sampler needs.
type Source interface {
	IsConversionDone(blocking bool) bool
	Read32() int32
	CountsToMicrovolts(counts int32) int32
	Active() uint8
}

// Format selects the report encoding.
type Format uint8

const (
	FormatText   Format = iota // "<millis>:<counts>\r\n"
	FormatBinary               // protocol frames
)

// ParseFormat parses "text" or "binary".
func ParseFormat(s string) (Format, error) {
	switch s {
	case "text", "":
		return FormatText, nil
	case "binary":
		return FormatBinary, nil
	}
	return FormatText, &FormatError{Name: s}
}

// FormatError reports an unknown format name.
type FormatError struct {
	Name string
}

func (e *FormatError) Error() string {
	return "report: unknown format " + strconv.Quote(e.Name)
}

// Config configures a Sampler.
type Config struct {
	Samples int    // Results per report, DefaultSamples if zero
	Format  Format // Encoding of transmitted reports

	// Microvolts switches the text value from averaged counts to microvolts.
	Microvolts bool

	// Clock returns the millisecond timestamp for each report.
	Clock func() uint32
}

// Report is one averaged reading.
type Report struct {
	Millis     uint32
	Config     uint8
	Counts     int32
	Microvolts int32
}

// Sampler averages converter results and hands them to a Transmitter.
type Sampler struct {
	src Source
	tx  Transmitter
	cfg Config

	enc     *protocol.Encoder
	scratch *protocol.ScratchOutput
}

// NewSampler creates a Sampler reading from src and writing to tx.
func NewSampler(src Source, tx Transmitter, cfg Config) *Sampler {
	if cfg.Samples <= 0 {
		cfg.Samples = DefaultSamples
	}
	if cfg.Clock == nil {
		cfg.Clock = func() uint32 { return 0 }
	}
	return &Sampler{
		src:     src,
		tx:      tx,
		cfg:     cfg,
		enc:     protocol.NewEncoder(),
		scratch: protocol.NewScratchOutput(),
	}
}

// Next blocks for Samples conversions and returns their average.
func (s *Sampler) Next() Report {
	var sum int64
	for i := 0; i < s.cfg.Samples; i++ {
		s.src.IsConversionDone(true)
		sum += int64(s.src.Read32())
	}
	counts := int32(sum / int64(s.cfg.Samples))
	return Report{
		Millis:     s.cfg.Clock(),
		Config:     s.src.Active(),
		Counts:     counts,
		Microvolts: s.src.CountsToMicrovolts(counts),
	}
}

// Emit encodes r and transmits it.
func (s *Sampler) Emit(r Report) {
	switch s.cfg.Format {
	case FormatBinary:
		s.scratch.Reset()
		s.enc.EncodeReading(s.scratch, protocol.Reading{
			Millis:     r.Millis,
			Config:     r.Config,
			Counts:     r.Counts,
			Microvolts: r.Microvolts,
		})
		s.tx.PutString(string(s.scratch.Result()))
	default:
		s.tx.PutString(FormatLine(r, s.cfg.Microvolts))
	}
}

// Run samples and emits reports until ctx is done.
func (s *Sampler) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		s.Emit(s.Next())
	}
}

// FormatLine renders r as "<millis>:<value>\r\n".
func FormatLine(r Report, microvolts bool) string {
	v := r.Counts
	if microvolts {
		v = r.Microvolts
	}
	buf := make([]byte, 0, 24)
	buf = strconv.AppendUint(buf, uint64(r.Millis), 10)
	buf = append(buf, ':')
	buf = strconv.AppendInt(buf, int64(v), 10)
	buf = append(buf, '\r', '\n')
	return string(buf)
}

// UARTTransmitter sends reports through a TinyGo UART.
type UARTTransmitter struct {
	UART drivers.UART
}

// PutString implements Transmitter. Write errors are dropped; the link
// has no back channel to report them on.
func (t UARTTransmitter) PutString(s string) {
	_, _ = t.UART.Write([]byte(s))
}

// WriterTransmitter sends reports to any io.Writer.
type WriterTransmitter struct {
	W io.Writer
}

// PutString implements Transmitter.
func (t WriterTransmitter) PutString(s string) {
	_, _ = io.WriteString(t.W, s)
}

// MultiTransmitter fans a report out to several transmitters.
type MultiTransmitter []Transmitter

// PutString implements Transmitter.
func (m MultiTransmitter) PutString(s string) {
	for _, t := range m {
		t.PutString(s)
	}
}
