package main

import (
	"context"
	"math"
	"sync"
	"time"

	"dsadc/config"
	"dsadc/core"
	"dsadc/report"
)

// simSignal is the input applied to the simulated modulator, in volts.
type simSignal struct {
	Amplitude float64
	Offset    float64
	Period    int // conversions per sine period, 0 for DC
}

func (s simSignal) volts(seq uint32) float64 {
	if s.Period <= 0 {
		return s.Offset
	}
	phase := 2 * math.Pi * float64(seq%uint32(s.Period)) / float64(s.Period)
	return s.Offset + s.Amplitude*math.Sin(phase)
}

// simBoard is a driver on the simulated register file. The sampler and
// the console run on different goroutines, so every driver call goes
// through mu.
type simBoard struct {
	mu     sync.Mutex
	driver *core.Driver
	regs   *core.SimRegisters
	irq    *core.SimIRQ
	signal simSignal

	cancel context.CancelFunc
	done   chan struct{}
}

func newSimBoard(dcfg *config.DriverConfig, signal simSignal) (*simBoard, error) {
	profiles, err := dcfg.CoreProfiles()
	if err != nil {
		return nil, err
	}

	b := &simBoard{signal: signal, done: make(chan struct{})}
	b.irq = core.NewSimIRQ()
	b.regs = core.NewSimRegisters(b.irq, b.raw)

	b.driver, err = core.NewDriver(core.Config{
		Registers:     b.regs,
		Interrupt:     b.irq,
		Profiles:      profiles,
		Trim:          dcfg.TrimTable(),
		Static:        dcfg.Static,
		InternalClock: dcfg.InternalClock,
		IRQPriority:   dcfg.IRQPriority,
	})
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancel(context.Background())
	b.cancel = cancel
	go func() {
		defer close(b.done)
		tickLoop(ctx)
	}()

	b.driver.Start()
	b.driver.UseNominalGain()
	b.driver.StartConvert()
	return b, nil
}

// raw converts the signal to counts at the nominal gain of the active
// profile. It runs inside driver calls, with mu held.
func (b *simBoard) raw(seq uint32) int32 {
	p := b.driver.Profile(b.driver.Active())
	counts := int64(math.Round(b.signal.volts(seq) * float64(p.CountsPerVolt)))
	if p.DecimationDivisor > 1 {
		counts *= int64(p.DecimationDivisor)
	}
	limit := int64(1)<<(p.Resolution-1) - 1
	if p.DecimationDivisor > 1 {
		limit *= int64(p.DecimationDivisor)
	}
	if counts > limit {
		counts = limit
	} else if counts < -limit-1 {
		counts = -limit - 1
	}
	return int32(counts)
}

// with runs fn with exclusive access to the driver.
func (b *simBoard) with(fn func(d *core.Driver)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	fn(b.driver)
}

// source returns the driver as a report source. Callers hold mu.
func (b *simBoard) source() report.Source {
	return boardSource{b.driver}
}

// boardSource restarts single sample conversions before waiting, the
// way the firmware loop would with a single sample profile.
type boardSource struct {
	*core.Driver
}

func (s boardSource) IsConversionDone(blocking bool) bool {
	if blocking && !s.Converting() && !s.Driver.IsConversionDone(false) {
		if s.Profile(s.Active()).Mode == core.ModeSingleSample {
			s.StartConvert()
		}
	}
	return s.Driver.IsConversionDone(blocking)
}

// runSampler emits one report per interval until ctx is done. Reports
// are skipped while the converter is stopped.
func (b *simBoard) runSampler(ctx context.Context, s *report.Sampler, interval time.Duration) {
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
		}
		b.mu.Lock()
		if b.driver.State() != core.StateRunning {
			b.mu.Unlock()
			continue
		}
		r := s.Next()
		b.mu.Unlock()
		s.Emit(r)
	}
}

// Close stops the converter and the tick loop.
func (b *simBoard) Close() {
	b.with(func(d *core.Driver) { d.Stop() })
	b.cancel()
	<-b.done
}
