package codegen

import (
	"go/ast"
	"strings"

	"github.com/wippyai/itf/decoder"
	"github.com/wippyai/itf/errors"
)

const directivePrefix = "//itf:"

const (
	dirDecode = "decode"
	dirEnum   = "enum"
	dirSum    = "sum"
	dirName   = "name"
)

// directive is one //itf: line of a doc comment.
type directive struct {
	name string
	args []string
}

// directives extracts the //itf: lines of the given comment groups.
// CommentGroup.Text drops directive lines, so the raw list is scanned.
func directives(groups ...*ast.CommentGroup) []directive {
	var out []directive
	for _, g := range groups {
		if g == nil {
			continue
		}
		for _, c := range g.List {
			rest, ok := strings.CutPrefix(c.Text, directivePrefix)
			if !ok {
				continue
			}
			fields := strings.Fields(rest)
			if len(fields) == 0 {
				continue
			}
			out = append(out, directive{name: fields[0], args: fields[1:]})
		}
	}
	return out
}

func lookupDirective(dirs []directive, name string) (directive, bool) {
	for _, d := range dirs {
		if d.name == name {
			return d, true
		}
	}
	return directive{}, false
}

// checkDirectives rejects unknown directive names and conflicting kinds.
func checkDirectives(typeName string, dirs []directive) error {
	kinds := 0
	for _, d := range dirs {
		switch d.name {
		case dirDecode, dirEnum, dirSum:
			kinds++
		case dirName:
			if len(d.args) != 1 {
				return directiveError(typeName, "//itf:name takes exactly one name")
			}
		default:
			return directiveError(typeName, "unknown directive //itf:"+d.name)
		}
	}
	if kinds > 1 {
		return directiveError(typeName, "only one of //itf:decode, //itf:enum and //itf:sum may be given")
	}
	return nil
}

// parseLayout reads the options of an //itf:sum directive.
func parseLayout(typeName string, d directive) (decoder.Layout, error) {
	layout := decoder.DefaultLayout()
	for _, arg := range d.args {
		key, val, hasVal := strings.Cut(arg, "=")
		switch {
		case key == "inline" && !hasVal:
			layout.Payload = decoder.PayloadInline
		case key == "tag" && val != "":
			layout.Tag = val
		case key == "content" && val != "":
			layout.Content = val
		default:
			return layout, directiveError(typeName, "bad //itf:sum option "+arg)
		}
	}
	return layout, nil
}

func directiveError(typeName, detail string) error {
	return errors.New(errors.PhaseCodegen, errors.KindUnsupported).
		GoType(typeName).
		Detail(detail).
		Build()
}
