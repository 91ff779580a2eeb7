package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"time"

	"dsadc/config"
	"dsadc/core"
	"dsadc/host/mcu"
	"dsadc/host/serial"
	"dsadc/host/stream"
	"dsadc/protocol"
	"dsadc/report"

	wconfig "github.com/warthog618/config"
	"github.com/warthog618/config/blob"
	"github.com/warthog618/config/blob/decoder/json"
	"github.com/warthog618/config/dict"
	"github.com/warthog618/config/env"
	"github.com/warthog618/config/pflag"
)

func main() {
	cfg := loadConfig()

	format, err := report.ParseFormat(cfg.MustGet("format").String())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	switch mode := cfg.MustGet("mode").String(); mode {
	case "monitor":
		err = runMonitor(ctx, cfg, format)
	case "sim":
		err = runSim(ctx, cfg, format)
	default:
		err = fmt.Errorf("unknown mode %q (sim or monitor)", mode)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func loadConfig() *wconfig.Config {
	defaultConfig := map[string]interface{}{
		"mode":       "sim",
		"device":     "",
		"baud":       serial.DefaultBaud,
		"format":     "text",
		"samples":    report.DefaultSamples,
		"microvolts": false,
		"interval":   "100ms",
		"listen":     "",
		"profiles":   "",
		"console":    true,
		"debug":      false,
		"sim": map[string]interface{}{
			"amplitude": 0.5,
			"offset":    0.0,
			"period":    200,
		},
	}
	def := dict.New(dict.WithMap(defaultConfig))
	flags := []pflag.Flag{
		{Short: 'c', Name: "config-file"},
		{Short: 'd', Name: "device"},
		{Short: 'm', Name: "mode"},
		{Short: 'f', Name: "format"},
	}
	cfg := wconfig.New(
		pflag.New(pflag.WithFlags(flags)),
		env.New(env.WithEnvPrefix("DSADC_")),
		wconfig.WithDefault(def))
	cfg.Append(
		blob.NewConfigFile(cfg, "config.file", "dsadc.json", json.NewDecoder()))
	cfg = cfg.GetConfig("", wconfig.WithMust)
	return cfg
}

// runMonitor prints reports received from a board.
func runMonitor(ctx context.Context, cfg *wconfig.Config, format report.Format) error {
	device := cfg.MustGet("device").String()
	if device == "" {
		return fmt.Errorf("monitor mode needs --device")
	}

	m := mcu.NewMCU(format)
	sc := serial.DefaultConfig(device)
	sc.Baud = cfg.MustGet("baud").Int()
	sc.ReadTimeout = 0
	if err := m.ConnectWithConfig(sc); err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "Monitoring %s (%s)\n", device, cfg.MustGet("format").String())

	go func() {
		<-ctx.Done()
		m.Close()
	}()

	err := m.Monitor(func(r protocol.Reading) {
		if format == report.FormatBinary {
			fmt.Printf("%d cfg=%d counts=%d uV=%d\n", r.Millis, r.Config, r.Counts, r.Microvolts)
			return
		}
		fmt.Printf("%d:%d\n", r.Millis, r.Counts)
	})
	if d := m.Decoder(); d.Errors > 0 || d.Dropped > 0 || m.BadLines > 0 {
		fmt.Fprintf(os.Stderr, "frame errors=%d dropped=%d bad lines=%d\n", d.Errors, d.Dropped, m.BadLines)
	}
	return err
}

// runSim runs the driver against the simulated register file and
// transmits reports to stdout, an optional serial port and optional
// websocket clients.
func runSim(ctx context.Context, cfg *wconfig.Config, format report.Format) error {
	if cfg.MustGet("debug").Bool() {
		core.SetDebugWriter(func(s string) { fmt.Fprintln(os.Stderr, s) })
		core.SetDebugEnabled(true)
	}

	dcfg, err := loadDriverConfig(cfg.MustGet("profiles").String())
	if err != nil {
		return err
	}

	b, err := newSimBoard(dcfg, simSignal{
		Amplitude: cfg.MustGet("sim.amplitude").Float(),
		Offset:    cfg.MustGet("sim.offset").Float(),
		Period:    cfg.MustGet("sim.period").Int(),
	})
	if err != nil {
		return err
	}
	defer b.Close()

	tx := report.MultiTransmitter{report.WriterTransmitter{W: os.Stdout}}

	if device := cfg.MustGet("device").String(); device != "" {
		sc := serial.DefaultConfig(device)
		sc.Baud = cfg.MustGet("baud").Int()
		port, err := serial.Open(sc)
		if err != nil {
			return err
		}
		uart := serial.NewUART(port)
		defer uart.Close()
		tx = append(tx, report.UARTTransmitter{UART: uart})
	}

	if addr := cfg.MustGet("listen").String(); addr != "" {
		hub := stream.NewHub()
		hub.Binary = format == report.FormatBinary
		srv := &http.Server{Addr: addr, Handler: hub}
		go func() {
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				fmt.Fprintf(os.Stderr, "Error: websocket listener: %v\n", err)
			}
		}()
		defer func() {
			hub.Close()
			srv.Close()
		}()
		tx = append(tx, hub)
		fmt.Fprintf(os.Stderr, "Streaming reports on ws://%s/\n", addr)
	}

	sampler := report.NewSampler(b.source(), tx, report.Config{
		Samples:    cfg.MustGet("samples").Int(),
		Format:     format,
		Microvolts: cfg.MustGet("microvolts").Bool(),
		Clock:      core.Millis,
	})

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		b.runSampler(ctx, sampler, cfg.MustGet("interval").Duration())
	}()

	if cfg.MustGet("console").Bool() {
		c := newConsole(b, os.Stdout)
		c.run(ctx, os.Stdin)
		cancel()
	} else {
		<-ctx.Done()
	}
	wg.Wait()
	return nil
}

func loadDriverConfig(path string) (*config.DriverConfig, error) {
	if path == "" {
		return &config.DriverConfig{Profiles: config.DefaultProfileConfigs()}, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read profiles: %w", err)
	}
	dcfg, err := config.LoadConfig(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse profiles %s: %w", path, err)
	}
	return dcfg, nil
}

// tickLoop drives the millisecond timebase like the firmware tick ISR.
func tickLoop(ctx context.Context) {
	t := time.NewTicker(time.Millisecond)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			core.Tick()
		}
	}
}
