package codegen

import (
	"go/ast"
	"go/constant"
	"go/parser"
	"go/token"
	"go/types"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/tools/go/packages"

	"github.com/wippyai/itf/decoder"
	"github.com/wippyai/itf/errors"
)

// DeclKind is what the generator emits for a declaration.
type DeclKind uint8

const (
	DeclStruct DeclKind = iota
	DeclTuple
	DeclEnum
	DeclSum
)

func (k DeclKind) String() string {
	switch k {
	case DeclStruct:
		return "struct"
	case DeclTuple:
		return "tuple"
	case DeclEnum:
		return "enum"
	case DeclSum:
		return "sum"
	}
	return "unknown"
}

// Case is one enum constant or sum variant.
type Case struct {
	Type  types.Type // sum variant type, T or *T
	Name  string     // wire name
	Ident string     // Go constant name of an enum case
	Unit  bool
}

// Decl is a type marked with an //itf: directive.
type Decl struct {
	named  *types.Named
	Name   string
	Cases  []Case
	Layout decoder.Layout
	Kind   DeclKind
}

// Package is a loaded Go package with its marked declarations in
// declaration order.
type Package struct {
	types *types.Package
	decls map[*types.TypeName]*Decl
	Name  string
	Path  string
	Dir   string
	Decls []*Decl
}

// Decl returns the declaration of the named type, or nil.
func (p *Package) Decl(name string) *Decl {
	for _, d := range p.Decls {
		if d.Name == name {
			return d
		}
	}
	return nil
}

type typeEntry struct {
	obj  *types.TypeName
	dirs []directive
}

// Load type-checks the package in opts.Dir and collects its directives.
// The existing output file is replaced by its bare package clause while
// loading, so stale generated code never takes part.
func Load(opts Options) (*Package, error) {
	dir, err := filepath.Abs(opts.Dir)
	if err != nil {
		return nil, errors.Wrap(errors.PhaseCodegen, errors.KindUnsupported, err, "resolve package directory")
	}

	cfg := &packages.Config{
		Mode: packages.NeedName | packages.NeedFiles | packages.NeedSyntax |
			packages.NeedTypes | packages.NeedTypesInfo,
		Dir:     dir,
		Overlay: overlay(filepath.Join(dir, opts.Output)),
	}
	if len(opts.Tags) > 0 {
		cfg.BuildFlags = []string{"-tags=" + strings.Join(opts.Tags, ",")}
	}

	pkgs, err := packages.Load(cfg, ".")
	if err != nil {
		return nil, errors.Wrap(errors.PhaseCodegen, errors.KindUnsupported, err, "load package")
	}
	if len(pkgs) != 1 {
		return nil, errors.Unsupported(errors.PhaseCodegen, "expected one package in "+dir)
	}
	pkg := pkgs[0]
	for _, e := range pkg.Errors {
		// Type errors usually come from code that calls into the blanked
		// output file; the declarations are still complete.
		if e.Kind == packages.TypeError {
			Logger().Debug("ignoring type error", zap.String("error", e.Error()))
			continue
		}
		return nil, errors.Wrap(errors.PhaseCodegen, errors.KindUnsupported, e, "load package "+pkg.PkgPath)
	}

	p := &Package{
		types: pkg.Types,
		decls: make(map[*types.TypeName]*Decl),
		Name:  pkg.Name,
		Path:  pkg.PkgPath,
		Dir:   dir,
	}
	typeDecls, consts := scan(pkg)
	if err := p.collect(typeDecls, consts); err != nil {
		return nil, err
	}

	Logger().Debug("loaded package",
		zap.String("path", p.Path),
		zap.Int("decls", len(p.Decls)))
	return p, nil
}

func overlay(output string) map[string][]byte {
	src, err := os.ReadFile(output)
	if err != nil {
		return nil
	}
	f, err := parser.ParseFile(token.NewFileSet(), output, src, parser.PackageClauseOnly)
	if err != nil {
		return nil
	}
	return map[string][]byte{output: []byte("package " + f.Name.Name + "\n")}
}

// scan lists type declarations and constants in file and declaration order.
func scan(pkg *packages.Package) ([]typeEntry, []*types.Const) {
	var typeDecls []typeEntry
	var consts []*types.Const
	for _, file := range pkg.Syntax {
		for _, decl := range file.Decls {
			gd, ok := decl.(*ast.GenDecl)
			if !ok {
				continue
			}
			for _, spec := range gd.Specs {
				switch s := spec.(type) {
				case *ast.TypeSpec:
					obj, ok := pkg.TypesInfo.Defs[s.Name].(*types.TypeName)
					if !ok {
						continue
					}
					doc := s.Doc
					if doc == nil && len(gd.Specs) == 1 {
						doc = gd.Doc
					}
					typeDecls = append(typeDecls, typeEntry{obj: obj, dirs: directives(doc)})
				case *ast.ValueSpec:
					if gd.Tok != token.CONST {
						continue
					}
					for _, name := range s.Names {
						if c, ok := pkg.TypesInfo.Defs[name].(*types.Const); ok && name.Name != "_" {
							consts = append(consts, c)
						}
					}
				}
			}
		}
	}
	return typeDecls, consts
}

func (p *Package) collect(typeDecls []typeEntry, consts []*types.Const) error {
	for _, te := range typeDecls {
		name := te.obj.Name()
		if err := checkDirectives(name, te.dirs); err != nil {
			return err
		}
		named, ok := te.obj.Type().(*types.Named)
		if !ok || te.obj.IsAlias() {
			if len(te.dirs) > 0 {
				return directiveError(name, "directives are not supported on type aliases")
			}
			continue
		}

		var decl *Decl
		var err error
		if _, ok := lookupDirective(te.dirs, dirDecode); ok {
			decl, err = structDecl(named)
		} else if _, ok := lookupDirective(te.dirs, dirEnum); ok {
			decl, err = enumDecl(named, consts)
		} else if d, ok := lookupDirective(te.dirs, dirSum); ok {
			decl, err = sumDecl(named, d, typeDecls)
		}
		if err != nil {
			return err
		}
		if decl != nil {
			p.Decls = append(p.Decls, decl)
			p.decls[te.obj] = decl
		}
	}
	return nil
}

func structDecl(named *types.Named) (*Decl, error) {
	name := named.Obj().Name()
	if named.TypeParams().Len() > 0 {
		return nil, directiveError(name, "generic types are not supported")
	}
	st, ok := named.Underlying().(*types.Struct)
	if !ok {
		return nil, directiveError(name, "//itf:decode requires a struct type")
	}
	kind := DeclStruct
	if st.NumFields() > 0 && isNamedType(st.Field(0).Type(), decoderPath, "TupleLayout") {
		kind = DeclTuple
	}
	return &Decl{named: named, Name: name, Kind: kind}, nil
}

func enumDecl(named *types.Named, consts []*types.Const) (*Decl, error) {
	name := named.Obj().Name()
	basic, ok := named.Underlying().(*types.Basic)
	if !ok || basic.Info()&(types.IsInteger|types.IsString) == 0 {
		return nil, directiveError(name, "//itf:enum requires an integer or string type")
	}

	decl := &Decl{named: named, Name: name, Kind: DeclEnum, Layout: decoder.DefaultLayout()}
	for _, c := range consts {
		if !types.Identical(c.Type(), named) {
			continue
		}
		wire := c.Name()
		if basic.Info()&types.IsString != 0 {
			wire = constant.StringVal(c.Val())
		}
		decl.Cases = append(decl.Cases, Case{Name: wire, Ident: c.Name(), Unit: true})
	}
	if len(decl.Cases) == 0 {
		return nil, directiveError(name, "enum has no constants")
	}
	return decl, nil
}

func sumDecl(named *types.Named, d directive, typeDecls []typeEntry) (*Decl, error) {
	name := named.Obj().Name()
	iface, ok := named.Underlying().(*types.Interface)
	if !ok || iface.NumMethods() == 0 {
		return nil, directiveError(name, "//itf:sum requires an interface type with methods")
	}
	layout, err := parseLayout(name, d)
	if err != nil {
		return nil, err
	}

	decl := &Decl{named: named, Name: name, Kind: DeclSum, Layout: layout}
	for _, te := range typeDecls {
		vt, ok := variantType(te.obj, iface)
		if !ok {
			continue
		}
		c := Case{Type: vt, Name: te.obj.Name()}
		if n, ok := lookupDirective(te.dirs, dirName); ok {
			c.Name = n.args[0]
		}
		if st, ok := te.obj.Type().Underlying().(*types.Struct); ok && st.NumFields() == 0 {
			c.Unit = true
		}
		decl.Cases = append(decl.Cases, c)
	}
	if len(decl.Cases) == 0 {
		return nil, directiveError(name, "sum has no variant types")
	}
	return decl, nil
}

// variantType reports whether obj, or a pointer to it, implements iface.
func variantType(obj *types.TypeName, iface *types.Interface) (types.Type, bool) {
	named, ok := obj.Type().(*types.Named)
	if !ok || obj.IsAlias() || named.TypeParams().Len() > 0 {
		return nil, false
	}
	if types.IsInterface(named) {
		return nil, false
	}
	if types.Implements(named, iface) {
		return named, true
	}
	if ptr := types.NewPointer(named); types.Implements(ptr, iface) {
		return ptr, true
	}
	return nil, false
}
