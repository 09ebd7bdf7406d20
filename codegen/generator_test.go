package codegen

import (
	"go/ast"
	"go/parser"
	"go/token"
	"go/types"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/wippyai/itf/decoder"
	"github.com/wippyai/itf/errors"
)

func load(t *testing.T, dir string) *Package {
	t.Helper()
	opts := DefaultOptions()
	opts.Dir = dir
	p, err := Load(opts)
	if err != nil {
		t.Fatalf("Load(%s) failed: %v", dir, err)
	}
	return p
}

// topLevel lists the functions, methods and variables declared in src.
func topLevel(t *testing.T, name string, src []byte) []string {
	t.Helper()
	f, err := parser.ParseFile(token.NewFileSet(), name, src, 0)
	if err != nil {
		t.Fatalf("parse %s: %v", name, err)
	}
	var out []string
	for _, d := range f.Decls {
		switch d := d.(type) {
		case *ast.FuncDecl:
			if d.Recv != nil {
				recv := d.Recv.List[0].Type
				if star, ok := recv.(*ast.StarExpr); ok {
					recv = star.X
				}
				out = append(out, recv.(*ast.Ident).Name+"."+d.Name.Name)
			} else {
				out = append(out, d.Name.Name)
			}
		case *ast.GenDecl:
			if d.Tok != token.VAR {
				continue
			}
			for _, s := range d.Specs {
				for _, n := range s.(*ast.ValueSpec).Names {
					out = append(out, n.Name)
				}
			}
		}
	}
	return out
}

func TestLoad_Sumtypes(t *testing.T) {
	p := load(t, "../examples/sumtypes")

	if p.Name != "sumtypes" || p.Path != "github.com/wippyai/itf/examples/sumtypes" {
		t.Errorf("package = %s (%s)", p.Name, p.Path)
	}

	var names []string
	for _, d := range p.Decls {
		names = append(names, d.Name+":"+d.Kind.String())
	}
	want := []string{
		"Dir:enum", "Color:enum", "Shape:sum", "Circle:struct", "Rectangle:struct",
		"Event:sum", "Moved:struct", "Said:struct", "Step:tuple", "Drawing:struct",
	}
	if !slices.Equal(names, want) {
		t.Errorf("decls = %v\nwant %v", names, want)
	}

	dir := p.Decl("Dir")
	if len(dir.Cases) != 4 || dir.Cases[0].Name != "North" || dir.Cases[0].Ident != "North" {
		t.Errorf("Dir cases = %+v", dir.Cases)
	}
	color := p.Decl("Color")
	if color.Cases[0].Name != "red" {
		t.Errorf("Color wire name = %q, want the constant value", color.Cases[0].Name)
	}

	shape := p.Decl("Shape")
	if shape.Layout != decoder.DefaultLayout() {
		t.Errorf("Shape layout = %+v", shape.Layout)
	}
	var cases []string
	for _, c := range shape.Cases {
		s := c.Name + "=" + c.Type.String()
		if c.Unit {
			s += " unit"
		}
		cases = append(cases, s)
	}
	wantCases := []string{
		"Circle=github.com/wippyai/itf/examples/sumtypes.Circle",
		"Rect=*github.com/wippyai/itf/examples/sumtypes.Rectangle",
		"Dot=github.com/wippyai/itf/examples/sumtypes.Dot unit",
	}
	if !slices.Equal(cases, wantCases) {
		t.Errorf("Shape cases = %v\nwant %v", cases, wantCases)
	}

	event := p.Decl("Event")
	if event.Layout.Payload != decoder.PayloadInline || event.Layout.Tag != "type" {
		t.Errorf("Event layout = %+v", event.Layout)
	}
	if p.Decl("Dot") != nil {
		t.Error("unmarked Dot has a declaration")
	}
}

func TestGenerate_MatchesCheckedIn(t *testing.T) {
	for _, dir := range []string{"../examples/sumtypes", "../examples/cannibals"} {
		t.Run(filepath.Base(dir), func(t *testing.T) {
			p := load(t, dir)
			src, err := p.Generate()
			if err != nil {
				t.Fatalf("Generate failed: %v", err)
			}
			if !strings.HasPrefix(string(src), "// Code generated by itfgen. DO NOT EDIT.") {
				t.Errorf("missing generated header:\n%s", src[:min(len(src), 80)])
			}

			checked, err := os.ReadFile(filepath.Join(dir, "itf_gen.go"))
			if err != nil {
				t.Fatal(err)
			}
			got := topLevel(t, "generated", src)
			want := topLevel(t, "itf_gen.go", checked)
			if !slices.Equal(got, want) {
				t.Errorf("generated declarations = %v\nchecked in %v", got, want)
			}
		})
	}
}

func TestGenerate_ForeignSum(t *testing.T) {
	p := load(t, "testdata/foreign")

	board := p.Decl("Board").named.Underlying().(*types.Struct)
	if r := p.Rule(board.Field(0).Type()); r != decoder.RuleSum {
		t.Errorf("Rule(sumtypes.Shape) = %s, want sum", r)
	}

	src, err := p.Generate()
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	for _, want := range []string{
		"out.Main, err = sumtypes.DecodeShape(d, f.Value)",
		"decoder.SliceOf(sumtypes.DecodeShape)",
		"decoder.OptionOf(sumtypes.DecodeShape)",
		"decoder.Reflect[Note]",
	} {
		if !strings.Contains(string(src), want) {
			t.Errorf("generated code lacks %q:\n%s", want, src)
		}
	}
}

func TestGenerate_ReflectionReachesSum(t *testing.T) {
	p := load(t, "testdata/unmarked")

	_, err := p.Generate()
	var e *errors.Error
	if !errors.As(err, &e) || e.Phase != errors.PhaseCodegen || e.Kind != errors.KindUnsupported {
		t.Fatalf("Generate() error = %v, want a codegen unsupported error", err)
	}
	if got := errors.FormatPath(e.Path); got != "Scene.Layers[]" {
		t.Errorf("path = %q, want Scene.Layers[]", got)
	}
	if !strings.Contains(e.Detail, "sum Shape") {
		t.Errorf("detail = %q", e.Detail)
	}
}

func TestRun_WritesOutput(t *testing.T) {
	dir := module(t, map[string]string{
		"color.go": "package paint\n\n//itf:enum\ntype Color string\n\nconst (\n\tRed Color = \"red\"\n\tBlue Color = \"blue\"\n)\n",
		// A stale output file that no longer compiles must not break loading.
		"itf_gen.go": "package paint\n\nfunc broken() { undefined() }\n",
	})

	out, err := Run(Options{Dir: dir})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if out != filepath.Join(dir, "itf_gen.go") {
		t.Errorf("Run() = %s", out)
	}
	src, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	got := topLevel(t, out, src)
	want := []string{"colorEnum", "ColorEnum", "Color.DecodeITF"}
	if !slices.Equal(got, want) {
		t.Errorf("declarations = %v, want %v", got, want)
	}
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{name: "unknown directive", src: "package bad\n\n//itf:frobnicate\ntype T struct{}\n"},
		{name: "enum on struct", src: "package bad\n\n//itf:enum\ntype T struct{}\n"},
		{name: "decode on int", src: "package bad\n\n//itf:decode\ntype T int\n"},
		{name: "enum without constants", src: "package bad\n\n//itf:enum\ntype T int\n"},
		{name: "sum without methods", src: "package bad\n\n//itf:sum\ntype T interface{}\n"},
		{name: "sum without variants", src: "package bad\n\n//itf:sum\ntype T interface{ isT() }\n"},
		{name: "bad sum option", src: "package bad\n\n//itf:sum untagged\ntype T interface{ isT() }\n\ntype A struct{}\n\nfunc (A) isT() {}\n"},
		{name: "generic struct", src: "package bad\n\n//itf:decode\ntype T[X any] struct{ V X }\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := module(t, map[string]string{"bad.go": tt.src})
			_, err := Load(Options{Dir: dir, Output: "itf_gen.go"})
			var e *errors.Error
			if !errors.As(err, &e) || e.Phase != errors.PhaseCodegen {
				t.Fatalf("Load() error = %v, want a codegen error", err)
			}
		})
	}
}

func TestGenerate_NoDirectives(t *testing.T) {
	dir := module(t, map[string]string{"plain.go": "package plain\n\ntype T struct{}\n"})
	p, err := Load(Options{Dir: dir, Output: "itf_gen.go"})
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if _, err := p.Generate(); err == nil {
		t.Fatal("Generate succeeded without directives")
	}
}

// module writes a throwaway module with the given files.
func module(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	files["go.mod"] = "module example.com/" + filepath.Base(dir) + "\n\ngo 1.25\n"
	for name, src := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(src), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	return dir
}
