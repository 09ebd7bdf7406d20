package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/wippyai/itf/trace"
	"github.com/wippyai/itf/value"
)

func runConvert(args []string, stdout io.Writer) error {
	fs, verbose := flags("convert")
	to := fs.String("to", "json", "output format: json or cbor")
	output := fs.StringP("output", "o", "", "output file (default stdout)")
	canonical := fs.Bool("canonical", false, "sort sets and maps and fold small bigints in every state")
	indent := fs.Bool("indent", false, "indent JSON output")
	files, err := parse(fs, verbose, args)
	if err != nil || files == nil {
		return err
	}
	if len(files) != 1 {
		return fmt.Errorf("convert takes one trace file, got %d", len(files))
	}

	t, err := readTrace(files[0])
	if err != nil {
		return err
	}
	data, err := convert(t, *to, *canonical, *indent)
	if err != nil {
		return err
	}

	if *output == "" {
		_, err = stdout.Write(data)
		return err
	}
	return os.WriteFile(*output, data, 0o644)
}

func convert(t *trace.Trace[value.Value], to string, canonical, indent bool) ([]byte, error) {
	if canonical {
		for i := range t.States {
			t.States[i].Value = value.Canonical(t.States[i].Value)
		}
	}

	switch to {
	case "json":
		data, err := trace.Encode(t)
		if err != nil {
			return nil, err
		}
		if !indent {
			return append(data, '\n'), nil
		}
		var buf bytes.Buffer
		if err := json.Indent(&buf, data, "", "  "); err != nil {
			return nil, err
		}
		buf.WriteByte('\n')
		return buf.Bytes(), nil
	case "cbor":
		v, err := trace.ToValue(t)
		if err != nil {
			return nil, err
		}
		return v.MarshalCBOR()
	}
	return nil, fmt.Errorf("unknown output format %q", to)
}
