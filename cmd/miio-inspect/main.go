// Command miio-inspect shows and changes the capabilities of a simulated
// device.
//
// The device's status type comes from YAML type definitions: the built-in
// purifier and fan types, plus any files given with -defs. Every property
// annotated as a sensor, switch or setting is listed with its current
// value, and switches and settings can be changed from the interactive
// shell. Setters are resolved by name against the simulated device's
// methods, so "set_favorite_level" calls SetFavoriteLevel.
//
// Usage:
//
//	miio-inspect [flags]
//
// Flags:
//
//	-config string       Configuration file path (YAML)
//	-type string         Status type to simulate (default "AirPurifierStatus")
//	-defs string         Additional type definition files (comma-separated)
//	-data string         YAML file with the initial raw payload
//	-log-level string    Log level: debug, info, warn, error (default "info")
//	-trace string        Write a CBOR trace of fetches and setter calls
//	-describe string     Print descriptors as yaml or cbor and exit
//	-interactive         Start the interactive shell (default true)
//	-simulate            Drift sensor values every few seconds
//
// Examples:
//
//	# Inspect the simulated purifier once
//	miio-inspect -interactive=false
//
//	# Interactive fan with tracing
//	miio-inspect -type FanStatus -trace fan.trace
//
//	# Export the purifier's descriptors
//	miio-inspect -describe yaml
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/escoand/python-miio/cmd/miio-inspect/interactive"
	"github.com/escoand/python-miio/pkg/descriptor"
	"github.com/escoand/python-miio/pkg/device"
	"github.com/escoand/python-miio/pkg/inspect"
	miiolog "github.com/escoand/python-miio/pkg/log"
	"github.com/escoand/python-miio/pkg/status"
	"github.com/escoand/python-miio/pkg/statusdef"
)

var (
	configFile string
	flagConfig = DefaultConfig()
	defsFlag   listFlag
)

func init() {
	flag.StringVar(&configFile, "config", "", "Configuration file path (YAML)")
	flag.StringVar(&flagConfig.Type, "type", flagConfig.Type, "Status type to simulate")
	flag.Var(&defsFlag, "defs", "Additional type definition files (comma-separated)")
	flag.StringVar(&flagConfig.Data, "data", "", "YAML file with the initial raw payload")
	flag.StringVar(&flagConfig.LogLevel, "log-level", flagConfig.LogLevel, "Log level: debug, info, warn, error")
	flag.StringVar(&flagConfig.Trace, "trace", "", "Write a CBOR trace of fetches and setter calls")
	flag.StringVar(&flagConfig.Describe, "describe", "", "Print descriptors as yaml or cbor and exit")
	flag.BoolVar(&flagConfig.Interactive, "interactive", flagConfig.Interactive, "Start the interactive shell")
	flag.BoolVar(&flagConfig.Simulate, "simulate", false, "Drift sensor values every few seconds")
}

func main() {
	flag.Parse()
	flagConfig.Defs = defsFlag

	config := DefaultConfig()
	if configFile != "" {
		var err error
		if config, err = LoadConfigFile(configFile, config); err != nil {
			log.Fatalf("Invalid configuration: %v", err)
		}
	}
	config = ApplyFlags(flag.CommandLine, config, flagConfig)

	if err := config.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	level, _ := ParseLevel(config.LogLevel)
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	setupLogging(config.LogLevel)

	typ, err := loadType(config)
	if err != nil {
		log.Fatalf("%v", err)
	}

	data, err := LoadData(config.Data)
	if err != nil {
		log.Fatalf("Invalid payload: %v", err)
	}
	sim := NewSimulator(typ, data)

	trace, closeTrace, err := createTrace(config, logger)
	if err != nil {
		log.Fatalf("Failed to create trace: %v", err)
	}
	defer closeTrace()

	controller := device.NewController(sim, device.Config{
		Owner:  sim,
		Logger: logger,
		Trace:  trace,
	})
	logger.Info("controller ready", "controller", controller.ID(), "type", typ.Name())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	insp := inspect.NewInspector(controller)

	if config.Describe != "" {
		if err := describe(ctx, insp, config.Describe, os.Stdout); err != nil {
			log.Fatalf("Describe failed: %v", err)
		}
		return
	}

	if !config.Interactive {
		report, err := insp.Inspect(ctx)
		if err != nil {
			log.Fatalf("Inspect failed: %v", err)
		}
		fmt.Print(insp.FormatReport(report, inspect.NewFormatter()))
		return
	}

	if config.Simulate {
		sim.Start()
		defer sim.Stop()
	}

	shell, err := interactive.New(controller, sim)
	if err != nil {
		log.Fatalf("Failed to start shell: %v", err)
	}
	log.SetOutput(shell.Stderr())

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		select {
		case sig := <-sigCh:
			log.Printf("Received signal: %v", sig)
			cancel()
		case <-ctx.Done():
		}
	}()

	shell.Run(ctx, cancel)
	log.Println("Goodbye!")
}

func setupLogging(level string) {
	log.SetFlags(log.Ltime | log.Lmicroseconds)

	switch level {
	case "debug":
		log.SetFlags(log.Ltime | log.Lmicroseconds | log.Lshortfile)
	case "warn", "error":
		log.SetFlags(log.Ltime)
	}
}

// loadType registers the built-in and configured type definitions and
// returns the type to simulate.
func loadType(config Config) (*status.Type, error) {
	if _, err := statusdef.Load(deviceDefs); err != nil {
		return nil, fmt.Errorf("built-in definitions: %w", err)
	}
	for _, path := range config.Defs {
		if _, err := statusdef.LoadFile(path); err != nil {
			return nil, err
		}
	}

	typ, ok := status.Lookup(config.Type)
	if !ok {
		return nil, fmt.Errorf("unknown status type %q (available: %s)",
			config.Type, strings.Join(status.Registered(), ", "))
	}
	return typ, nil
}

// createTrace combines the trace file and, at debug level, slog output.
func createTrace(config Config, logger *slog.Logger) (miiolog.Logger, func(), error) {
	var (
		loggers []miiolog.Logger
		closer  = func() {}
	)

	if config.Trace != "" {
		fl, err := miiolog.NewFileLogger(config.Trace)
		if err != nil {
			return nil, closer, err
		}
		loggers = append(loggers, fl)
		closer = func() { _ = fl.Close() }
	}
	if config.LogLevel == "debug" {
		loggers = append(loggers, miiolog.NewSlogAdapter(logger))
	}

	if len(loggers) == 0 {
		return nil, closer, nil
	}
	return miiolog.NewMultiLogger(loggers...), closer, nil
}

func describe(ctx context.Context, insp *inspect.Inspector, format string, w io.Writer) error {
	infos, err := insp.Describe(ctx)
	if err != nil {
		return err
	}

	var out []byte
	switch format {
	case "cbor":
		out, err = descriptor.EncodeCBOR(infos)
	default:
		out, err = descriptor.EncodeYAML(infos)
	}
	if err != nil {
		return err
	}
	_, err = w.Write(out)
	return err
}
