// Package interactive provides the interactive command-line interface
// for miio-inspect.
package interactive

import (
	"context"
	"encoding/hex"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/chzyer/readline"

	"github.com/escoand/python-miio/pkg/descriptor"
	"github.com/escoand/python-miio/pkg/device"
	"github.com/escoand/python-miio/pkg/inspect"
)

// Simulation controls background updates of a simulated device.
type Simulation interface {
	Start()
	Stop()
	Running() bool
}

// Shell handles interactive mode for miio-inspect.
type Shell struct {
	controller *device.Controller
	inspector  *inspect.Inspector
	formatter  *inspect.Formatter
	sim        Simulation
	rl         *readline.Instance
	out        io.Writer
}

// New creates a new interactive shell. sim may be nil.
func New(controller *device.Controller, sim Simulation) (*Shell, error) {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "miio> ",
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
		AutoComplete:    completer(),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create readline: %w", err)
	}

	s := newShell(controller, sim, rl.Stdout())
	s.rl = rl
	return s, nil
}

func newShell(controller *device.Controller, sim Simulation, out io.Writer) *Shell {
	return &Shell{
		controller: controller,
		inspector:  inspect.NewInspector(controller),
		formatter:  inspect.NewFormatter(),
		sim:        sim,
		out:        out,
	}
}

func completer() *readline.PrefixCompleter {
	return readline.NewPrefixCompleter(
		readline.PcItem("status"),
		readline.PcItem("inspect"),
		readline.PcItem("sensors"),
		readline.PcItem("switches"),
		readline.PcItem("settings"),
		readline.PcItem("set"),
		readline.PcItem("describe",
			readline.PcItem("yaml"),
			readline.PcItem("cbor"),
		),
		readline.PcItem("start"),
		readline.PcItem("stop"),
		readline.PcItem("help"),
		readline.PcItem("quit"),
	)
}

// Stdout returns a writer that properly coordinates with the readline input.
// Use this for log output to avoid interfering with the command prompt.
func (s *Shell) Stdout() io.Writer {
	return s.rl.Stdout()
}

// Stderr returns a writer that properly coordinates with the readline input.
func (s *Shell) Stderr() io.Writer {
	return s.rl.Stderr()
}

// Run starts the interactive command loop.
func (s *Shell) Run(ctx context.Context, cancel context.CancelFunc) {
	defer s.rl.Close()

	s.printHelp()

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		line, err := s.rl.Readline()
		if err != nil {
			// EOF or interrupt
			if err == readline.ErrInterrupt {
				continue
			}
			fmt.Fprintln(s.out, "Exiting...")
			cancel()
			return
		}

		if s.Execute(ctx, line) {
			cancel()
			return
		}
	}
}

// Execute runs one command line. It returns true when the shell should
// exit.
func (s *Shell) Execute(ctx context.Context, line string) bool {
	input := strings.TrimSpace(line)
	if input == "" {
		return false
	}

	parts := strings.Fields(input)
	cmd := strings.ToLower(parts[0])
	args := parts[1:]

	switch cmd {
	case "help", "?":
		s.printHelp()

	case "status", "st":
		s.cmdStatus(ctx)

	case "inspect", "i":
		s.cmdInspect(ctx)

	case "sensors":
		s.cmdSensors(ctx)

	case "switches":
		s.cmdSwitches(ctx)

	case "settings":
		s.cmdSettings(ctx)

	case "set", "w":
		s.cmdSet(ctx, args)

	case "describe", "d":
		s.cmdDescribe(ctx, args)

	case "start", "sim-start":
		s.cmdStart()

	case "stop", "sim-stop":
		s.cmdStop()

	case "quit", "exit", "q":
		fmt.Fprintln(s.out, "Exiting...")
		return true

	default:
		fmt.Fprintf(s.out, "Unknown command: %s (type 'help' for commands)\n", cmd)
	}
	return false
}

func (s *Shell) printHelp() {
	fmt.Fprintln(s.out, `
miio-inspect Commands:
  Inspection:
    status               - Show the raw status summary
    inspect              - Show all sensors, switches and settings
    sensors              - List sensors with current values
    switches             - List switches
    settings             - List number and enum settings
    describe [yaml|cbor] - Export descriptors (default yaml)

  Control:
    set <prop> <value>   - Change a switch or setting
                           switches: on|off, numbers: within range,
                           enums: choice name

  Simulation:
    start                - Start sensor drift
    stop                 - Stop sensor drift

  General:
    help                 - Show this help
    quit                 - Exit`)
}

func (s *Shell) cmdStatus(ctx context.Context) {
	snap, err := s.controller.Status(ctx)
	if err != nil {
		fmt.Fprintf(s.out, "Error: %v\n", err)
		return
	}
	fmt.Fprintln(s.out, snap.String())
}

func (s *Shell) cmdInspect(ctx context.Context) {
	report, err := s.inspector.Inspect(ctx)
	if err != nil {
		fmt.Fprintf(s.out, "Error: %v\n", err)
		return
	}
	fmt.Fprint(s.out, s.inspector.FormatReport(report, s.formatter))
}

func (s *Shell) cmdSensors(ctx context.Context) {
	report, err := s.inspector.Inspect(ctx)
	if err != nil {
		fmt.Fprintf(s.out, "Error: %v\n", err)
		return
	}
	fmt.Fprint(s.out, s.formatter.FormatDescriptorTable(inspect.Rows(report.Sensors, s.formatter)))
}

func (s *Shell) cmdSwitches(ctx context.Context) {
	report, err := s.inspector.Inspect(ctx)
	if err != nil {
		fmt.Fprintf(s.out, "Error: %v\n", err)
		return
	}
	fmt.Fprint(s.out, s.formatter.FormatDescriptorTable(inspect.Rows(report.Switches, s.formatter)))
}

func (s *Shell) cmdSettings(ctx context.Context) {
	report, err := s.inspector.Inspect(ctx)
	if err != nil {
		fmt.Fprintf(s.out, "Error: %v\n", err)
		return
	}
	fmt.Fprint(s.out, s.formatter.FormatDescriptorTable(inspect.Rows(report.Settings, s.formatter)))
}

func (s *Shell) cmdSet(ctx context.Context, args []string) {
	if len(args) < 2 {
		fmt.Fprintln(s.out, "Usage: set <property> <value>")
		s.printWritable(ctx)
		return
	}

	property := args[0]
	raw := strings.Trim(strings.Join(args[1:], " "), "\"'")

	value, err := s.inspector.Write(ctx, property, raw)
	if err != nil {
		fmt.Fprintf(s.out, "Error: %v\n", err)
		return
	}
	fmt.Fprintf(s.out, "%s <- %s\n", property, s.formatter.FormatValue(value, ""))
}

// printWritable lists the properties set accepts.
func (s *Shell) printWritable(ctx context.Context) {
	caps, err := s.controller.Capabilities(ctx)
	if err != nil {
		return
	}

	var names []string
	for name := range caps.Switches {
		names = append(names, name)
	}
	for name := range caps.Settings {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		w, _ := caps.Writable(name)
		fmt.Fprintf(s.out, "  %s: %s\n", name, inspect.FormatConstraint(w))
	}
}

func (s *Shell) cmdDescribe(ctx context.Context, args []string) {
	format := "yaml"
	if len(args) > 0 {
		format = strings.ToLower(args[0])
	}

	infos, err := s.inspector.Describe(ctx)
	if err != nil {
		fmt.Fprintf(s.out, "Error: %v\n", err)
		return
	}

	switch format {
	case "yaml":
		out, err := descriptor.EncodeYAML(infos)
		if err != nil {
			fmt.Fprintf(s.out, "Error: %v\n", err)
			return
		}
		fmt.Fprint(s.out, string(out))
	case "cbor":
		out, err := descriptor.EncodeCBOR(infos)
		if err != nil {
			fmt.Fprintf(s.out, "Error: %v\n", err)
			return
		}
		fmt.Fprintf(s.out, "%d bytes\n%s", len(out), hex.Dump(out))
	default:
		fmt.Fprintf(s.out, "Unknown format: %s (yaml or cbor)\n", format)
	}
}

func (s *Shell) cmdStart() {
	if s.sim == nil {
		fmt.Fprintln(s.out, "No simulation available")
		return
	}
	if s.sim.Running() {
		fmt.Fprintln(s.out, "Simulation already running")
		return
	}
	s.sim.Start()
}

func (s *Shell) cmdStop() {
	if s.sim == nil || !s.sim.Running() {
		fmt.Fprintln(s.out, "Simulation not running")
		return
	}
	s.sim.Stop()
}
