package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"dsadc/core"

	"github.com/google/shlex"
)

var errQuit = errors.New("quit")

// console is the interactive command interpreter for a simulated board.
type console struct {
	board *simBoard
	out   io.Writer
}

func newConsole(b *simBoard, out io.Writer) *console {
	return &console{board: b, out: out}
}

// run reads commands from in until quit, end of input or ctx is done.
func (c *console) run(ctx context.Context, in io.Reader) {
	fmt.Fprintln(c.out, "Enter commands (type 'help' for available commands, 'quit' to exit):")

	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			lines <- scanner.Text()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case line, ok := <-lines:
			if !ok {
				return
			}
			err := c.exec(line)
			if errors.Is(err, errQuit) {
				fmt.Fprintln(c.out, "Goodbye!")
				return
			}
			if err != nil {
				fmt.Fprintf(c.out, "Error: %v\n", err)
			}
		}
	}
}

// exec runs one command line.
func (c *console) exec(line string) error {
	args, err := shlex.Split(line)
	if err != nil {
		return fmt.Errorf("parse: %w", err)
	}
	if len(args) == 0 {
		return nil
	}

	cmd, args := strings.ToLower(args[0]), args[1:]
	switch cmd {
	case "quit", "exit", "q":
		return errQuit

	case "help", "?":
		c.printHelp()

	case "status":
		c.board.with(func(d *core.Driver) {
			p := d.Profile(d.Active())
			fmt.Fprintf(c.out, "state=%s power=%s cfg=%d/%d res=%d range=%s mode=%s\n",
				d.State(), d.Power(), d.Active(), d.NumProfiles(), p.Resolution, p.InputRange, p.Mode)
			fmt.Fprintf(c.out, "offset=%d gain=%d coherency=%s gcor=0x%04x\n",
				d.Offset(), d.Gain(), d.Coherency(), d.ReadGCOR())
		})

	case "start":
		c.board.with(func(d *core.Driver) {
			d.Start()
			d.StartConvert()
		})

	case "stop":
		c.board.with(func(d *core.Driver) { d.Stop() })

	case "select":
		if len(args) < 1 || len(args) > 2 {
			return fmt.Errorf("usage: select <id> [norestart]")
		}
		id, err := strconv.ParseUint(args[0], 10, 8)
		if err != nil {
			return fmt.Errorf("bad configuration id %q", args[0])
		}
		restart := len(args) == 1 || args[1] != "norestart"
		var n uint8
		c.board.with(func(d *core.Driver) { n = d.NumProfiles() })
		if id < 1 || id > uint64(n) {
			return fmt.Errorf("configuration id must be 1..%d", n)
		}
		c.board.with(func(d *core.Driver) { d.SelectConfiguration(uint8(id), restart) })

	case "offset":
		v, err := c.intArg(args, "offset <counts>")
		if err != nil {
			return err
		}
		c.board.with(func(d *core.Driver) { d.SetOffset(int32(v)) })

	case "gain":
		v, err := c.intArg(args, "gain <counts per volt>")
		if err != nil {
			return err
		}
		if v == 0 {
			return fmt.Errorf("counts per volt must be non-zero")
		}
		c.board.with(func(d *core.Driver) { d.SetGain(int32(v)) })

	case "nominal":
		c.board.with(func(d *core.Driver) { d.UseNominalGain() })

	case "gcor":
		if len(args) != 1 {
			return fmt.Errorf("usage: gcor <multiplier>")
		}
		mult, err := strconv.ParseFloat(args[0], 32)
		if err != nil {
			return fmt.Errorf("bad multiplier %q", args[0])
		}
		c.board.with(func(d *core.Driver) { err = d.SetGCOR(float32(mult)) })
		return err

	case "readgcor":
		c.board.with(func(d *core.Driver) { fmt.Fprintf(c.out, "gcor=0x%04x\n", d.ReadGCOR()) })

	case "coherency":
		if len(args) != 1 {
			return fmt.Errorf("usage: coherency none|low|mid|high")
		}
		k, err := core.ParseCoherency(args[0])
		if err != nil {
			return err
		}
		c.board.with(func(d *core.Driver) { d.SetCoherency(k) })

	case "buffer":
		v, err := c.intArg(args, "buffer <gain code 0..3>")
		if err != nil {
			return err
		}
		if v < 0 || v > 3 {
			return fmt.Errorf("buffer gain code must be 0..3")
		}
		c.board.with(func(d *core.Driver) { d.SetBufferGain(uint8(v)) })

	case "volts":
		c.board.with(func(d *core.Driver) {
			if d.State() != core.StateRunning {
				fmt.Fprintln(c.out, "converter stopped")
				return
			}
			converting := d.Converting()
			counts := d.Sample32()
			if converting {
				d.StartConvert()
			}
			fmt.Fprintf(c.out, "counts=%d mV=%d V=%.6f uV=%d (%s)\n", counts,
				d.CountsToMillivolts(counts), d.CountsToVolts(counts),
				d.CountsToMicrovolts(counts), d.CountsToPotential(counts))
		})

	case "dump":
		c.board.with(func(d *core.Driver) {
			for _, evt := range core.Events() {
				fmt.Fprintf(c.out, "%8d %-10s cfg=%d v1=%d v2=%d\n",
					evt.Clock, evt.Name(), evt.Config, evt.Value1, evt.Value2)
			}
		})

	case "debug":
		if len(args) != 1 || (args[0] != "on" && args[0] != "off") {
			return fmt.Errorf("usage: debug on|off")
		}
		core.SetDebugEnabled(args[0] == "on")

	default:
		return fmt.Errorf("unknown command: %s (type 'help' for available commands)", cmd)
	}
	return nil
}

func (c *console) intArg(args []string, usage string) (int64, error) {
	if len(args) != 1 {
		return 0, fmt.Errorf("usage: %s", usage)
	}
	v, err := strconv.ParseInt(args[0], 0, 32)
	if err != nil {
		return 0, fmt.Errorf("bad value %q", args[0])
	}
	return v, nil
}

func (c *console) printHelp() {
	fmt.Fprintln(c.out, "\nAvailable commands:")
	fmt.Fprintln(c.out, "  help                 - Show this help message")
	fmt.Fprintln(c.out, "  status               - Show driver state")
	fmt.Fprintln(c.out, "  start / stop         - Power the converter up or down")
	fmt.Fprintln(c.out, "  select <id> [norestart] - Switch configuration")
	fmt.Fprintln(c.out, "  offset <counts>      - Set the zero-volt count")
	fmt.Fprintln(c.out, "  gain <counts/V>      - Set counts per volt")
	fmt.Fprintln(c.out, "  nominal              - Use the active profile's counts per volt")
	fmt.Fprintln(c.out, "  gcor <mult>          - Rescale the gain correction")
	fmt.Fprintln(c.out, "  readgcor             - Show the gain correction register")
	fmt.Fprintln(c.out, "  coherency <key>      - Set the coherency key byte")
	fmt.Fprintln(c.out, "  buffer <code>        - Set the input buffer gain")
	fmt.Fprintln(c.out, "  volts                - Take one reading")
	fmt.Fprintln(c.out, "  dump                 - Print the driver event ring")
	fmt.Fprintln(c.out, "  debug on|off         - Toggle driver debug output")
	fmt.Fprintln(c.out, "  quit/exit/q          - Exit the program")
	fmt.Fprintln(c.out)
}
