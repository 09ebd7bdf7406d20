package codegen

import (
	"go/types"
	"reflect"
	"strconv"

	"github.com/dave/jennifer/jen"

	"github.com/wippyai/itf/bigint"
	"github.com/wippyai/itf/decoder"
	"github.com/wippyai/itf/errors"
	"github.com/wippyai/itf/value"
)

var (
	decoderPath = reflect.TypeFor[decoder.Decoder]().PkgPath()
	valuePath   = reflect.TypeFor[value.Value]().PkgPath()
	bigintPath  = reflect.TypeFor[bigint.Limbs]().PkgPath()
)

func isNamedType(t types.Type, path, name string) bool {
	n, ok := types.Unalias(t).(*types.Named)
	if !ok {
		return false
	}
	obj := n.Obj()
	return obj.Pkg() != nil && obj.Pkg().Path() == path && obj.Name() == name
}

func isNamed(t types.Type) bool {
	_, ok := types.Unalias(t).(*types.Named)
	return ok
}

// hasDecodeITF reports whether *t has a DecodeITF method.
func hasDecodeITF(t *types.Named) bool {
	obj, _, _ := types.LookupFieldOrMethod(types.NewPointer(t), true, t.Obj().Pkg(), "DecodeITF")
	_, ok := obj.(*types.Func)
	return ok
}

// Rule classifies t the way the reflection engine of a default Decoder
// does, with the package's own directives taking the place of registered
// sums and enums.
func (p *Package) Rule(t types.Type) decoder.Rule {
	t = types.Unalias(t)
	if n, ok := t.(*types.Named); ok {
		switch {
		case isNamedType(n, valuePath, "Value"):
			return decoder.RuleValue
		case isNamedType(n, decoderPath, "Ignored"):
			return decoder.RuleIgnore
		case isNamedType(n, decoderPath, "Char"):
			return decoder.RuleChar
		case isNamedType(n, "math/big", "Int"):
			return decoder.RuleBigInt
		case isNamedType(n, bigintPath, "Limbs"):
			return decoder.RuleLimbs
		}
		decl := p.decls[n.Obj()]
		if types.IsInterface(n) {
			if decl != nil && decl.Kind == DeclSum || p.foreignSum(n) {
				return decoder.RuleSum
			}
		} else if decl != nil || hasDecodeITF(n) {
			return decoder.RuleUnmarshaler
		}
	}

	if s, ok := t.(*types.Slice); ok && isByte(s.Elem()) {
		return decoder.RuleBytes
	}

	switch u := t.Underlying().(type) {
	case *types.Basic:
		switch info := u.Info(); {
		case info&types.IsBoolean != 0:
			return decoder.RuleBool
		case info&types.IsUnsigned != 0:
			return decoder.RuleUint
		case info&types.IsInteger != 0:
			return decoder.RuleInt
		case info&types.IsString != 0:
			return decoder.RuleString
		}
	case *types.Pointer:
		return decoder.RuleOption
	case *types.Slice:
		return decoder.RuleSeq
	case *types.Array:
		return decoder.RuleArray
	case *types.Map:
		if st, ok := u.Elem().Underlying().(*types.Struct); ok && st.NumFields() == 0 {
			return decoder.RuleSet
		}
		return decoder.RuleMap
	case *types.Struct:
		if u.NumFields() > 0 && isNamedType(u.Field(0).Type(), decoderPath, "TupleLayout") {
			return decoder.RuleTuple
		}
		return decoder.RuleStruct
	case *types.Interface:
		if u.Empty() {
			return decoder.RuleAny
		}
	}
	return decoder.RuleUnsupported
}

// foreignSum reports whether n is an interface of another package that
// exports a generated DecodeN function for it.
func (p *Package) foreignSum(n *types.Named) bool {
	pkg := n.Obj().Pkg()
	if pkg == nil || pkg == p.types {
		return false
	}
	fn, ok := pkg.Scope().Lookup("Decode" + n.Obj().Name()).(*types.Func)
	if !ok {
		return false
	}
	sig := fn.Type().(*types.Signature)
	return sig.Params().Len() == 2 && sig.Results().Len() == 2 &&
		types.Identical(sig.Results().At(0).Type(), n)
}

func isByte(t types.Type) bool {
	b, ok := types.Unalias(t).(*types.Basic)
	return ok && b.Kind() == types.Uint8
}

// decodeFunc returns an expression of type decoder.Func[t].
func (p *Package) decodeFunc(t types.Type, path []string) (jen.Code, error) {
	t = types.Unalias(t)
	rule := p.Rule(t)

	switch rule {
	case decoder.RuleBool:
		return p.convert(t, jen.Qual(decoderPath, "Bool")), nil
	case decoder.RuleInt:
		return jen.Qual(decoderPath, "Int").Types(p.typeExpr(t)), nil
	case decoder.RuleUint:
		return jen.Qual(decoderPath, "Uint").Types(p.typeExpr(t)), nil
	case decoder.RuleString:
		return jen.Qual(decoderPath, "Str").Types(p.typeExpr(t)), nil
	case decoder.RuleChar:
		return jen.Qual(decoderPath, "Rune"), nil
	case decoder.RuleBytes:
		return jen.Qual(decoderPath, "Bytes"), nil
	case decoder.RuleBigInt:
		return jen.Qual(decoderPath, "BigIntVal"), nil
	case decoder.RuleLimbs:
		return jen.Qual(decoderPath, "LimbsOf"), nil
	case decoder.RuleValue:
		return jen.Qual(decoderPath, "Raw"), nil
	case decoder.RuleUnmarshaler:
		if fn, ok, err := p.builtinFunc(t.(*types.Named), path); ok || err != nil {
			return fn, err
		}
		return jen.Qual(decoderPath, "Via").Types(p.typeExpr(t)), nil

	case decoder.RuleOption:
		elem := t.Underlying().(*types.Pointer).Elem()
		if isNamedType(elem, "math/big", "Int") {
			return p.convert(t, jen.Qual(decoderPath, "BigInt")), nil
		}
		fn, err := p.decodeFunc(elem, path)
		if err != nil {
			return nil, err
		}
		return p.convert(t, jen.Qual(decoderPath, "PtrOf").Call(fn)), nil

	case decoder.RuleSeq:
		fn, err := p.decodeFunc(t.Underlying().(*types.Slice).Elem(), sub(path, "[]"))
		if err != nil {
			return nil, err
		}
		return p.convert(t, jen.Qual(decoderPath, "SliceOf").Call(fn)), nil

	case decoder.RuleArray:
		fn, err := p.decodeFunc(t.Underlying().(*types.Array).Elem(), sub(path, "[]"))
		if err != nil {
			return nil, err
		}
		return p.arrayFunc(t, fn), nil

	case decoder.RuleSet:
		m := t.Underlying().(*types.Map)
		if !types.Identical(m.Elem(), types.NewStruct(nil, nil)) {
			return p.reflectFunc(t, path)
		}
		fn, err := p.decodeFunc(m.Key(), sub(path, "[]"))
		if err != nil {
			return nil, err
		}
		return p.convert(t, jen.Qual(decoderPath, "SetOf").Call(fn)), nil

	case decoder.RuleMap:
		m := t.Underlying().(*types.Map)
		kf, err := p.decodeFunc(m.Key(), sub(path, "[key]"))
		if err != nil {
			return nil, err
		}
		vf, err := p.decodeFunc(m.Elem(), sub(path, "[]"))
		if err != nil {
			return nil, err
		}
		return p.convert(t, jen.Qual(decoderPath, "MapOf").Call(kf, vf)), nil

	case decoder.RuleSum:
		n := t.(*types.Named)
		return jen.Qual(n.Obj().Pkg().Path(), "Decode"+n.Obj().Name()), nil

	case decoder.RuleAny:
		return p.convert(t, jen.Qual(decoderPath, "Any")), nil

	case decoder.RuleStruct, decoder.RuleTuple, decoder.RuleIgnore:
		return p.reflectFunc(t, path)
	}

	return nil, errors.New(errors.PhaseCodegen, errors.KindUnsupported).
		Path(path...).
		GoType(types.TypeString(t, types.RelativeTo(p.types))).
		Detail("no decode rule for type").
		Build()
}

// builtinFunc composes the Option, Result and tuple helper types of
// package decoder from the Funcs of their type arguments.
func (p *Package) builtinFunc(n *types.Named, path []string) (jen.Code, bool, error) {
	obj := n.Obj()
	if obj.Pkg() == nil || obj.Pkg().Path() != decoderPath {
		return nil, false, nil
	}
	var helper string
	var segs []string
	switch obj.Name() {
	case "Option":
		helper, segs = "OptionOf", []string{"Some"}
	case "Result":
		helper, segs = "ResultOf", []string{"Ok", "Err"}
	case "Tuple2", "Tuple3", "Tuple4":
		helper, segs = obj.Name()+"Of", []string{"[0]", "[1]", "[2]", "[3]"}
	default:
		return nil, false, nil
	}

	args := n.TypeArgs()
	fns := make([]jen.Code, args.Len())
	for i := range args.Len() {
		fn, err := p.decodeFunc(args.At(i), sub(path, segs[i]))
		if err != nil {
			return nil, true, err
		}
		fns[i] = fn
	}
	return jen.Qual(decoderPath, helper).Call(fns...), true, nil
}

// funcLit opens a function literal of type decoder.Func[t].
func (p *Package) funcLit(t types.Type) *jen.Statement {
	return jen.Func().
		Params(jen.Id("d").Op("*").Qual(decoderPath, "Decoder"), jen.Id("v").Qual(valuePath, "Value")).
		Params(p.typeExpr(t), jen.Error())
}

// convert adapts fn, which decodes into the underlying type of t, to the
// named type t. Unnamed types get fn unchanged.
func (p *Package) convert(t types.Type, fn jen.Code) jen.Code {
	if !isNamed(t) {
		return fn
	}
	return p.funcLit(t).Block(
		jen.List(jen.Id("res"), jen.Err()).Op(":=").Add(fn).Call(jen.Id("d"), jen.Id("v")),
		jen.Return(p.typeExpr(t).Call(jen.Id("res")), jen.Err()),
	)
}

// arrayFunc decodes a fixed-size array element by element with elem.
func (p *Package) arrayFunc(t types.Type, elem jen.Code) jen.Code {
	return p.funcLit(t).Block(
		jen.Var().Id("arr").Add(p.typeExpr(t)),
		jen.If(
			jen.Err().Op(":=").Qual(decoderPath, "ArrayInto").Call(jen.Id("d"), jen.Id("v"), jen.Id("arr").Index(jen.Op(":")), elem),
			jen.Err().Op("!=").Nil(),
		).Block(
			jen.Return(p.typeExpr(t).Values(), jen.Err()),
		),
		jen.Return(jen.Id("arr"), jen.Nil()),
	)
}

func sub(path []string, seg string) []string {
	out := make([]string, 0, len(path)+1)
	return append(append(out, path...), seg)
}

// reflectFunc falls back to the reflection engine of the Decoder. That
// engine only knows the sums registered in its Options, so a type that
// reaches a sum is rejected instead of failing at decode time.
func (p *Package) reflectFunc(t types.Type, path []string) (jen.Code, error) {
	if sum := p.reachesSum(t, make(map[types.Type]bool)); sum != "" {
		return nil, errors.New(errors.PhaseCodegen, errors.KindUnsupported).
			Path(path...).
			GoType(types.TypeString(t, types.RelativeTo(p.types))).
			Detail("decoded by reflection but holds sum %s; mark the type with //itf:decode", sum).
			Build()
	}
	return jen.Qual(decoderPath, "Reflect").Types(p.typeExpr(t)), nil
}

// reachesSum returns the name of the first sum interface the reflection
// engine would meet while decoding t, or "".
func (p *Package) reachesSum(t types.Type, seen map[types.Type]bool) string {
	t = types.Unalias(t)
	if seen[t] {
		return ""
	}
	seen[t] = true

	if n, ok := t.(*types.Named); ok {
		switch p.Rule(n) {
		case decoder.RuleSum:
			return n.Obj().Name()
		case decoder.RuleUnmarshaler:
			// Only the decoder helpers hand their type arguments back to
			// the reflection engine.
			if n.Obj().Pkg() == nil || n.Obj().Pkg().Path() != decoderPath {
				return ""
			}
			args := n.TypeArgs()
			for i := range args.Len() {
				if sum := p.reachesSum(args.At(i), seen); sum != "" {
					return sum
				}
			}
			return ""
		}
	}

	switch u := t.Underlying().(type) {
	case *types.Pointer:
		return p.reachesSum(u.Elem(), seen)
	case *types.Slice:
		return p.reachesSum(u.Elem(), seen)
	case *types.Array:
		return p.reachesSum(u.Elem(), seen)
	case *types.Map:
		if sum := p.reachesSum(u.Key(), seen); sum != "" {
			return sum
		}
		return p.reachesSum(u.Elem(), seen)
	case *types.Struct:
		for i := range u.NumFields() {
			f := u.Field(i)
			if !f.Exported() {
				continue
			}
			if _, skip := decoder.ParseTag(f.Name(), reflect.StructTag(u.Tag(i)).Get("itf")); skip {
				continue
			}
			if sum := p.reachesSum(f.Type(), seen); sum != "" {
				return sum
			}
		}
	}
	return ""
}

// typeExpr renders t with imports resolved by jennifer.
func (p *Package) typeExpr(t types.Type) *jen.Statement {
	switch t := t.(type) {
	case *types.Alias:
		return p.typeExpr(types.Unalias(t))
	case *types.Basic:
		return jen.Id(t.Name())
	case *types.Named:
		obj := t.Obj()
		var s *jen.Statement
		if obj.Pkg() == nil {
			s = jen.Id(obj.Name())
		} else {
			s = jen.Qual(obj.Pkg().Path(), obj.Name())
		}
		if args := t.TypeArgs(); args.Len() > 0 {
			list := make([]jen.Code, args.Len())
			for i := range args.Len() {
				list[i] = p.typeExpr(args.At(i))
			}
			s = s.Types(list...)
		}
		return s
	case *types.Pointer:
		return jen.Op("*").Add(p.typeExpr(t.Elem()))
	case *types.Slice:
		return jen.Index().Add(p.typeExpr(t.Elem()))
	case *types.Array:
		return jen.Index(jen.Lit(int(t.Len()))).Add(p.typeExpr(t.Elem()))
	case *types.Map:
		return jen.Map(p.typeExpr(t.Key())).Add(p.typeExpr(t.Elem()))
	case *types.Chan:
		switch t.Dir() {
		case types.SendOnly:
			return jen.Chan().Op("<-").Add(p.typeExpr(t.Elem()))
		case types.RecvOnly:
			return jen.Op("<-").Chan().Add(p.typeExpr(t.Elem()))
		}
		return jen.Chan().Add(p.typeExpr(t.Elem()))
	case *types.Struct:
		fields := make([]jen.Code, t.NumFields())
		for i := range t.NumFields() {
			f := t.Field(i)
			var s *jen.Statement
			if f.Embedded() {
				s = p.typeExpr(f.Type())
			} else {
				s = jen.Id(f.Name()).Add(p.typeExpr(f.Type()))
			}
			if tag := structTag(t.Tag(i)); len(tag) > 0 {
				s = s.Tag(tag)
			}
			fields[i] = s
		}
		return jen.Struct(fields...)
	case *types.Interface:
		if t.Empty() {
			return jen.Interface()
		}
	}
	return jen.Id(types.TypeString(t, types.RelativeTo(p.types)))
}

// structTag splits a conventional struct tag into its key/value pairs.
func structTag(tag string) map[string]string {
	out := make(map[string]string)
	for tag != "" {
		i := 0
		for i < len(tag) && tag[i] == ' ' {
			i++
		}
		tag = tag[i:]
		if tag == "" {
			break
		}
		i = 0
		for i < len(tag) && tag[i] > ' ' && tag[i] != ':' && tag[i] != '"' {
			i++
		}
		if i == 0 || i+1 >= len(tag) || tag[i] != ':' || tag[i+1] != '"' {
			break
		}
		key := tag[:i]
		tag = tag[i+1:]
		i = 1
		for i < len(tag) && tag[i] != '"' {
			if tag[i] == '\\' {
				i++
			}
			i++
		}
		if i >= len(tag) {
			break
		}
		val, err := strconv.Unquote(tag[:i+1])
		if err != nil {
			break
		}
		out[key] = val
		tag = tag[i+1:]
	}
	return out
}
