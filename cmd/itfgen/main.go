// itfgen writes static ITF decoders for the //itf: directives of a Go
// package. It is meant to run from go:generate:
//
//	//go:generate go run github.com/wippyai/itf/cmd/itfgen
package main

import (
	"fmt"
	"os"

	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/wippyai/itf/codegen"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "itfgen: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	opts := codegen.DefaultOptions()
	var stdout, verbose bool

	flagSet := pflag.NewFlagSet("itfgen", pflag.ContinueOnError)
	flagSet.StringVarP(&opts.Dir, "dir", "d", opts.Dir, "package directory")
	flagSet.StringVarP(&opts.Output, "output", "o", opts.Output, "generated file name, relative to --dir")
	flagSet.StringSliceVar(&opts.Tags, "tags", nil, "build tags used when loading the package")
	flagSet.BoolVar(&stdout, "stdout", false, "print the generated code instead of writing it")
	flagSet.BoolVarP(&verbose, "verbose", "v", false, "log loading and emission")

	if err := flagSet.Parse(args); err != nil {
		if err == pflag.ErrHelp {
			return nil
		}
		return err
	}
	if flagSet.NArg() > 0 {
		return fmt.Errorf("unexpected argument: %s", flagSet.Arg(0))
	}

	if verbose {
		logger, err := zap.NewDevelopment()
		if err != nil {
			return fmt.Errorf("create logger: %w", err)
		}
		defer func() { _ = logger.Sync() }()
		codegen.SetLogger(logger)
	}

	if stdout {
		pkg, err := codegen.Load(opts)
		if err != nil {
			return err
		}
		src, err := pkg.Generate()
		if err != nil {
			return err
		}
		_, err = os.Stdout.Write(src)
		return err
	}

	_, err := codegen.Run(opts)
	return err
}
