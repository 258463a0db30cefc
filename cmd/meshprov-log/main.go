// Command meshprov-log is a tool for viewing and analyzing commissioning
// event logs.
//
// Log files are written by meshprov-device when started with -event-log.
//
// Usage:
//
//	meshprov-log <command> [flags] <file.mlog>
//
// Commands:
//
//	view     View log file in human-readable format
//	export   Export log file to JSONL or CSV format
//	filter   Filter log file and write to new file
//	stats    Show statistics about the log file
//
// Examples:
//
//	# View all events
//	meshprov-log view device.mlog
//
//	# View only stack events
//	meshprov-log view --layer stack device.mlog
//
//	# View only connect attempts
//	meshprov-log view --operation connect device.mlog
//
//	# Export to JSONL
//	meshprov-log export --format jsonl device.mlog
//
//	# Keep the events of one connect request
//	meshprov-log filter --request-id 3f2a9c1e-... -o connect.mlog device.mlog
//
//	# Show statistics
//	meshprov-log stats device.mlog
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/mash-protocol/meshprov/cmd/meshprov-log/commands"
)

const usage = `meshprov-log - Commissioning Event Log Analyzer

Usage:
  meshprov-log <command> [flags] <file.mlog>

Commands:
  view     View log file in human-readable format
  export   Export log file to JSONL or CSV format
  filter   Filter log file and write to new file
  stats    Show statistics about the log file

Use "meshprov-log <command> -help" for more information about a command.
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

func runView(args []string) {
	fs := flag.NewFlagSet("view", flag.ExitOnError)
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `meshprov-log view - View log file in human-readable format

Usage:
  meshprov-log view [flags] <file.mlog>

Flags:
`)
		fs.PrintDefaults()
	}

	layer := fs.String("layer", "", "Filter by layer (driver, stack, server)")
	category := fs.String("category", "", "Filter by category (operation, result, state, error)")
	operation := fs.String("operation", "", "Filter by operation (e.g. connect, scan, add_or_update)")

	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}

	path := requirePath(fs)

	filter, err := commands.BuildFilter(commands.FilterOptions{
		Layer:     *layer,
		Category:  *category,
		Operation: *operation,
	})
	if err != nil {
		fail(err)
	}

	if err := commands.RunView(path, filter, os.Stdout); err != nil {
		fail(err)
	}
}

func runExport(args []string) {
	fs := flag.NewFlagSet("export", flag.ExitOnError)
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `meshprov-log export - Export log file to JSONL or CSV format

Usage:
  meshprov-log export [flags] <file.mlog>

Flags:
`)
		fs.PrintDefaults()
	}

	format := fs.String("format", "jsonl", "Output format (jsonl, csv)")
	output := fs.String("o", "", "Output file (default: stdout)")

	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}

	path := requirePath(fs)

	if err := commands.RunExport(path, *format, *output); err != nil {
		fail(err)
	}
}

func runFilter(args []string) {
	fs := flag.NewFlagSet("filter", flag.ExitOnError)
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `meshprov-log filter - Filter log file and write to new file

Usage:
  meshprov-log filter [flags] <file.mlog>

Flags:
`)
		fs.PrintDefaults()
	}

	var opts commands.FilterOptions
	fs.StringVar(&opts.Output, "o", "", "Output file (required)")
	fs.StringVar(&opts.RequestID, "request-id", "", "Filter by request ID")
	fs.StringVar(&opts.NetworkID, "network-id", "", "Filter by network ID (extended PAN ID, hex)")
	fs.StringVar(&opts.TimeStart, "time-start", "", "Filter by start time (RFC3339)")
	fs.StringVar(&opts.TimeEnd, "time-end", "", "Filter by end time (RFC3339)")
	fs.StringVar(&opts.Layer, "layer", "", "Filter by layer (driver, stack, server)")
	fs.StringVar(&opts.Category, "category", "", "Filter by category (operation, result, state, error)")
	fs.StringVar(&opts.Operation, "operation", "", "Filter by operation")

	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}

	path := requirePath(fs)

	if opts.Output == "" {
		fmt.Fprintln(os.Stderr, "Error: output file (-o) required")
		fs.Usage()
		os.Exit(1)
	}

	count, err := commands.RunFilter(path, opts)
	if err != nil {
		fail(err)
	}
	fmt.Printf("Filtered %d events to %s\n", count, opts.Output)
}

func runStats(args []string) {
	fs := flag.NewFlagSet("stats", flag.ExitOnError)
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `meshprov-log stats - Show statistics about the log file

Usage:
  meshprov-log stats <file.mlog>

`)
	}

	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}

	path := requirePath(fs)

	if err := commands.RunStats(path, os.Stdout); err != nil {
		fail(err)
	}
}

func requirePath(fs *flag.FlagSet) string {
	if fs.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "Error: log file path required")
		fs.Usage()
		os.Exit(1)
	}
	return fs.Arg(0)
}

func fail(err error) {
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	os.Exit(1)
}
