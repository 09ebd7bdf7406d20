package main

import (
	"encoding/hex"
	"fmt"
	"io"

	"github.com/wippyai/itf/trace"
	"github.com/wippyai/itf/value"
)

func runFingerprint(args []string, stdout io.Writer) error {
	fs, verbose := flags("fingerprint")
	states := fs.Bool("states", false, "print one fingerprint per state")
	files, err := parse(fs, verbose, args)
	if err != nil || files == nil {
		return err
	}
	for _, path := range files {
		t, err := readTrace(path)
		if err != nil {
			return err
		}
		if !*states {
			sum, err := traceFingerprint(t)
			if err != nil {
				return fmt.Errorf("%s: %w", path, err)
			}
			fmt.Fprintf(stdout, "%s  %s\n", sum, path)
			continue
		}
		for i, st := range t.States {
			sum, err := value.Fingerprint(st.Value)
			if err != nil {
				return fmt.Errorf("%s: state %d: %w", path, i, err)
			}
			fmt.Fprintf(stdout, "%s  %s#%d\n", hex.EncodeToString(sum[:]), path, i)
		}
	}
	return nil
}

// traceFingerprint covers the states, the variable names and the loop, so
// re-exported traces with new timestamps or descriptions keep their
// fingerprint.
func traceFingerprint(t *trace.Trace[value.Value]) (string, error) {
	bare := &trace.Trace[value.Value]{Loop: t.Loop, Vars: t.Vars, States: t.States}
	v, err := trace.ToValue(bare)
	if err != nil {
		return "", err
	}
	sum, err := value.Fingerprint(v)
	if err != nil {
		return "", err
	}
	return hex.EncodeToString(sum[:]), nil
}
