// Command miio-log is a tool for viewing and analyzing device trace files.
//
// Trace files are written by miio-inspect when started with the -trace
// flag. Each file is a stream of CBOR-encoded fetch, setter and error
// events.
//
// Usage:
//
//	miio-log <command> [flags] <file.trace>
//
// Commands:
//
//	view     View trace file in human-readable format
//	export   Export trace file to JSONL, CSV or YAML
//	filter   Filter trace file and write to new file
//	stats    Show statistics about the trace file
//
// Examples:
//
//	# View all events
//	miio-log view purifier.trace
//
//	# View only setter invocations of set_power
//	miio-log view -category setter -setter set_power purifier.trace
//
//	# Export to CSV
//	miio-log export -format csv -o purifier.csv purifier.trace
//
//	# Keep only one controller's events
//	miio-log filter -controller-id 3f2a9c1e -o ctrl.trace purifier.trace
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/escoand/python-miio/cmd/miio-log/commands"
)

const usage = `miio-log - Device Trace Analyzer

Usage:
  miio-log <command> [flags] <file.trace>

Commands:
  view     View trace file in human-readable format
  export   Export trace file to JSONL, CSV or YAML
  filter   Filter trace file and write to new file
  stats    Show statistics about the trace file

Use "miio-log <command> -help" for more information about a command.
`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(1)
	}

	cmd := os.Args[1]
	args := os.Args[2:]

	switch cmd {
	case "view":
		runView(args)
	case "export":
		runExport(args)
	case "filter":
		runFilter(args)
	case "stats":
		runStats(args)
	case "-h", "-help", "--help", "help":
		fmt.Print(usage)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", cmd)
		fmt.Fprint(os.Stderr, usage)
		os.Exit(1)
	}
}

func newFlagSet(name, synopsis string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ExitOnError)
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `miio-log %s - %s

Usage:
  miio-log %s [flags] <file.trace>

Flags:
`, name, synopsis, name)
		fs.PrintDefaults()
	}
	return fs
}

func tracePath(fs *flag.FlagSet, args []string) string {
	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}
	if fs.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "Error: trace file path required")
		fs.Usage()
		os.Exit(1)
	}
	return fs.Arg(0)
}

func fail(err error) {
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	os.Exit(1)
}

func runView(args []string) {
	fs := newFlagSet("view", "View trace file in human-readable format")
	category := fs.String("category", "", "Filter by category (fetch, setter, error)")
	statusType := fs.String("status-type", "", "Filter by status type name")
	setter := fs.String("setter", "", "Filter by setter name")
	path := tracePath(fs, args)

	filter := commands.ViewFilter{
		StatusType: *statusType,
		Setter:     *setter,
	}
	if *category != "" {
		c, err := commands.ParseCategoryFlag(*category)
		if err != nil {
			fail(err)
		}
		filter.Category = &c
	}

	if err := commands.RunView(path, filter, os.Stdout); err != nil {
		fail(err)
	}
}

func runExport(args []string) {
	fs := newFlagSet("export", "Export trace file to JSONL, CSV or YAML")
	format := fs.String("format", "jsonl", "Output format (jsonl, csv, yaml)")
	output := fs.String("o", "", "Output file (default: stdout)")
	path := tracePath(fs, args)

	if err := commands.RunExport(path, *format, *output); err != nil {
		fail(err)
	}
}

func runFilter(args []string) {
	fs := newFlagSet("filter", "Filter trace file and write to new file")
	output := fs.String("o", "", "Output file (required)")
	controllerID := fs.String("controller-id", "", "Filter by controller ID")
	statusType := fs.String("status-type", "", "Filter by status type name")
	timeStart := fs.String("time-start", "", "Filter by start time (RFC3339)")
	timeEnd := fs.String("time-end", "", "Filter by end time (RFC3339)")
	category := fs.String("category", "", "Filter by category (fetch, setter, error)")
	path := tracePath(fs, args)

	if *output == "" {
		fmt.Fprintln(os.Stderr, "Error: output file (-o) required")
		fs.Usage()
		os.Exit(1)
	}

	count, err := commands.RunFilter(path, commands.FilterOptions{
		Output:       *output,
		ControllerID: *controllerID,
		StatusType:   *statusType,
		TimeStart:    *timeStart,
		TimeEnd:      *timeEnd,
		Category:     *category,
	})
	if err != nil {
		fail(err)
	}
	fmt.Printf("Filtered %d events to %s\n", count, *output)
}

func runStats(args []string) {
	fs := newFlagSet("stats", "Show statistics about the trace file")
	path := tracePath(fs, args)

	if err := commands.RunStats(path, os.Stdout); err != nil {
		fail(err)
	}
}
