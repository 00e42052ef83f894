package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"slices"

	"github.com/Adithya-Monish-Kumar-K/wordtracker/internal/report"
	apperrors "github.com/Adithya-Monish-Kumar-K/wordtracker/pkg/errors"
)

const usageLine = "usage: wordtracker <input.txt>...|- -pf|-pl|-po [-f output.txt] [-config path]"

// stdinInput as the only input reads the text from standard input.
const stdinInput = "-"

type options struct {
	inputs     []string
	format     report.Format
	output     string
	configPath string
}

// parseArgs accepts flags before, between or after the input files.
func parseArgs(args []string, stderr io.Writer) (options, error) {
	fs := flag.NewFlagSet("wordtracker", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Bool("pf", false, "list the files each word appears in")
	fs.Bool("pl", false, "list files and line numbers")
	fs.Bool("po", false, "list files, line numbers and total frequency")
	output := fs.String("f", "", "write the report to this file instead of stdout")
	configPath := fs.String("config", "", "path to config file")
	fs.Usage = func() {
		fmt.Fprintln(fs.Output(), usageLine)
		fs.PrintDefaults()
	}

	var inputs []string
	rest := args
	for {
		if err := fs.Parse(rest); err != nil {
			if errors.Is(err, flag.ErrHelp) {
				return options{}, err
			}
			return options{}, apperrors.New(apperrors.ErrUsage, apperrors.ExitUsage, err.Error())
		}
		rest = fs.Args()
		if len(rest) == 0 {
			break
		}
		inputs = append(inputs, rest[0])
		rest = rest[1:]
	}

	var formats []report.Format
	for _, name := range []string{"pf", "pl", "po"} {
		if fs.Lookup(name).Value.String() != "true" {
			continue
		}
		format, err := report.ParseFlag(name)
		if err != nil {
			return options{}, err
		}
		formats = append(formats, format)
	}

	var err error
	switch {
	case len(inputs) == 0:
		err = apperrors.New(apperrors.ErrUsage, apperrors.ExitUsage, "at least one input file is required")
	case len(inputs) > 1 && slices.Contains(inputs, stdinInput):
		err = apperrors.New(apperrors.ErrUsage, apperrors.ExitUsage, "- (standard input) cannot be combined with input files")
	case len(formats) == 0:
		err = apperrors.New(apperrors.ErrUsage, apperrors.ExitUsage, "one of -pf, -pl or -po is required")
	case len(formats) > 1:
		err = apperrors.New(apperrors.ErrUsage, apperrors.ExitUsage, "-pf, -pl and -po are mutually exclusive")
	}
	if err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		fs.Usage()
		return options{}, err
	}

	return options{
		inputs:     inputs,
		format:     formats[0],
		output:     *output,
		configPath: *configPath,
	}, nil
}
