// itf inspects, views and converts ITF trace files.
//
//	itf inspect trace.itf.json
//	itf view trace.itf.json
//	itf convert --to cbor -o trace.cbor trace.itf.json
//	itf fingerprint --states trace.itf.json
package main

import (
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/wippyai/itf/decoder"
	"github.com/wippyai/itf/trace"
)

type command struct {
	run   func(args []string, stdout io.Writer) error
	usage string
}

var commands = map[string]command{
	"inspect":     {run: runInspect, usage: "summarize a trace"},
	"view":        {run: runView, usage: "step through the states of a trace"},
	"convert":     {run: runConvert, usage: "convert a trace between JSON and CBOR"},
	"fingerprint": {run: runFingerprint, usage: "print blake3 fingerprints of traces or states"},
}

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "itf: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string, stdout io.Writer) error {
	if len(args) == 0 || args[0] == "-h" || args[0] == "--help" || args[0] == "help" {
		usage(stdout)
		return nil
	}
	cmd, ok := commands[args[0]]
	if !ok {
		usage(os.Stderr)
		return fmt.Errorf("unknown command %q", args[0])
	}
	return cmd.run(args[1:], stdout)
}

func usage(w io.Writer) {
	fmt.Fprintln(w, "Usage: itf <command> [flags] <file>")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	names := make([]string, 0, len(commands))
	for name := range commands {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(w, "  %-12s %s\n", name, commands[name].usage)
	}
}

// flags creates a subcommand flag set with the shared --verbose flag.
func flags(name string) (*pflag.FlagSet, *bool) {
	fs := pflag.NewFlagSet("itf "+name, pflag.ContinueOnError)
	verbose := fs.BoolP("verbose", "v", false, "log parsing and decoding")
	return fs, verbose
}

// parse parses args and returns the positional arguments. A help request
// returns a nil slice and no error.
func parse(fs *pflag.FlagSet, verbose *bool, args []string) ([]string, error) {
	if err := fs.Parse(args); err != nil {
		if err == pflag.ErrHelp {
			return nil, nil
		}
		return nil, err
	}
	if *verbose {
		logger, err := zap.NewDevelopment()
		if err != nil {
			return nil, fmt.Errorf("create logger: %w", err)
		}
		trace.SetLogger(logger)
		decoder.SetLogger(logger)
	}
	if fs.NArg() == 0 {
		return nil, fmt.Errorf("%s: missing trace file", fs.Name())
	}
	return fs.Args(), nil
}
