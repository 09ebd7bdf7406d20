package main

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/wippyai/itf/trace"
	"github.com/wippyai/itf/value"
)

// readTrace loads a trace from path, or stdin for "-". JSON and CBOR are
// told apart by the first non-space byte.
func readTrace(path string) (*trace.Trace[value.Value], error) {
	var data []byte
	var err error
	if path == "-" {
		data, err = io.ReadAll(os.Stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return decodeTrace(data)
}

func decodeTrace(data []byte) (*trace.Trace[value.Value], error) {
	if isJSON(data) {
		return trace.Parse(data)
	}
	v, err := value.ParseCBOR(data)
	if err != nil {
		return nil, err
	}
	return trace.FromValue(v)
}

func isJSON(data []byte) bool {
	trimmed := bytes.TrimLeft(data, " \t\r\n")
	return len(trimmed) > 0 && (trimmed[0] == '{' || trimmed[0] == '/')
}
