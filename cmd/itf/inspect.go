package main

import (
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/wippyai/itf/trace"
	"github.com/wippyai/itf/value"
)

// shortLimit is the longest value text shown verbatim in summaries.
const shortLimit = 40

func runInspect(args []string, stdout io.Writer) error {
	fs, verbose := flags("inspect")
	full := fs.Bool("values", false, "print full state values instead of shapes")
	files, err := parse(fs, verbose, args)
	if err != nil || files == nil {
		return err
	}
	for i, path := range files {
		t, err := readTrace(path)
		if err != nil {
			return err
		}
		if i > 0 {
			fmt.Fprintln(stdout)
		}
		fmt.Fprint(stdout, renderSummary(path, t, *full))
	}
	return nil
}

func renderSummary(path string, t *trace.Trace[value.Value], full bool) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("ITF trace"))
	b.WriteString(" ")
	b.WriteString(path)
	b.WriteString("\n\n")

	row := func(label, val string) {
		if val == "" {
			val = "-"
		}
		b.WriteString(labelStyle.Render(fmt.Sprintf("%-12s", label)))
		b.WriteString(" ")
		b.WriteString(val)
		b.WriteString("\n")
	}
	row("format", t.Meta.Format)
	row("source", t.Meta.Source)
	row("description", t.Meta.Description)
	if t.Meta.Timestamp != nil {
		row("timestamp", strconv.FormatUint(*t.Meta.Timestamp, 10))
	}
	row("states", strconv.Itoa(t.Len()))
	loop := ""
	if t.Loop != nil {
		loop = strconv.FormatUint(*t.Loop, 10)
	}
	row("loop", loop)
	row("params", strings.Join(t.Params, ", "))
	row("vars", strings.Join(t.Vars, ", "))

	if len(t.Meta.VarTypes) > 0 {
		b.WriteString("\n")
		b.WriteString(labelStyle.Render("var types"))
		b.WriteString("\n")
		names := make([]string, 0, len(t.Meta.VarTypes))
		for name := range t.Meta.VarTypes {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			fmt.Fprintf(&b, "  %s  %s\n", varStyle.Render(name), t.Meta.VarTypes[name])
		}
	}

	b.WriteString("\n")
	for i, st := range t.States {
		b.WriteString(labelStyle.Render(fmt.Sprintf("#%-3d", i)))
		for _, f := range st.Value.Fields() {
			b.WriteString(" ")
			b.WriteString(varStyle.Render(f.Name))
			b.WriteString("=")
			if full {
				b.WriteString(f.Value.String())
			} else {
				b.WriteString(shape(f.Value))
			}
		}
		b.WriteString("\n")
	}
	return b.String()
}

// shape renders v verbatim when short and as its kind and size otherwise.
func shape(v value.Value) string {
	s := v.String()
	if len(s) <= shortLimit {
		return s
	}
	switch v.Kind() {
	case value.KindList:
		return fmt.Sprintf("[%d]", v.Len())
	case value.KindRecord:
		names := make([]string, 0, v.Len())
		for _, f := range v.Fields() {
			names = append(names, f.Name)
		}
		return "{" + strings.Join(names, ",") + "}"
	case value.KindTuple, value.KindSet, value.KindMap:
		return fmt.Sprintf("#%s(%d)", v.Kind(), v.Len())
	}
	return s[:shortLimit-3] + "..."
}
