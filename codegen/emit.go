package codegen

import (
	"go/types"
	"reflect"
	"strconv"
	"strings"

	"github.com/dave/jennifer/jen"
	"go.uber.org/zap"

	"github.com/wippyai/itf/decoder"
	"github.com/wippyai/itf/errors"
)

const header = "Code generated by itfgen. DO NOT EDIT."

func (p *Package) file() (*jen.File, error) {
	f := jen.NewFilePathName(p.Path, p.Name)
	f.HeaderComment(header)
	f.ImportName(decoderPath, "decoder")
	f.ImportName(valuePath, "value")

	for _, decl := range p.Decls {
		var err error
		switch decl.Kind {
		case DeclStruct:
			err = p.emitStruct(f, decl)
		case DeclTuple:
			err = p.emitTuple(f, decl)
		case DeclEnum:
			p.emitEnum(f, decl)
		case DeclSum:
			err = p.emitSum(f, decl)
		}
		if err != nil {
			return nil, err
		}
		Logger().Debug("emitted decoder",
			zap.String("type", decl.Name),
			zap.String("kind", decl.Kind.String()))
	}
	return f, nil
}

// method emits func (x *T) DecodeITF(d *decoder.Decoder, v value.Value) error.
func method(f *jen.File, typeName string, body ...jen.Code) {
	f.Commentf("DecodeITF decodes a %s from its ITF form.", typeName)
	f.Func().Params(jen.Id("x").Op("*").Id(typeName)).Id("DecodeITF").Params(
		jen.Id("d").Op("*").Qual(decoderPath, "Decoder"),
		jen.Id("v").Qual(valuePath, "Value"),
	).Error().Block(body...)
	f.Line()
}

func ifErrReturn(results ...jen.Code) *jen.Statement {
	return jen.If(jen.Err().Op("!=").Nil()).Block(jen.Return(results...))
}

func keyExpr(key decoder.Key) *jen.Statement {
	var s *jen.Statement
	if key.Tagged {
		s = jen.Qual(decoderPath, "TagKey").Call(jen.Lit(key.Name))
	} else {
		s = jen.Qual(decoderPath, "FieldKey").Call(jen.Lit(key.Name))
	}
	if key.Optional {
		s = s.Dot("Opt").Call()
	}
	return s
}

func (p *Package) emitStruct(f *jen.File, decl *Decl) error {
	st := decl.named.Underlying().(*types.Struct)

	var lookups []jen.Code
	for i := range st.NumFields() {
		field := st.Field(i)
		if !field.Exported() || isNamedType(field.Type(), decoderPath, "Ignored") {
			continue
		}
		key, skip := decoder.ParseTag(field.Name(), reflect.StructTag(st.Tag(i)).Get("itf"))
		if skip {
			continue
		}
		fn, err := p.decodeFunc(field.Type(), []string{decl.Name, field.Name()})
		if err != nil {
			return err
		}
		lookups = append(lookups, jen.If(
			jen.List(jen.Id("f"), jen.Id("ok"), jen.Err()).Op(":=").
				Qual(decoderPath, "Lookup").Call(jen.Id("fields"), keyExpr(key)),
			jen.Err().Op("!=").Nil(),
		).Block(
			jen.Return(jen.Err()),
		).Else().If(jen.Id("ok")).Block(
			jen.If(
				jen.List(jen.Id("out").Dot(field.Name()), jen.Err()).Op("=").
					Add(fn).Call(jen.Id("d"), jen.Id("f").Dot("Value")),
				jen.Err().Op("!=").Nil(),
			).Block(
				jen.Return(jen.Qual(decoderPath, "At").Call(jen.Err(), jen.Id("f").Dot("Name"))),
			),
		))
	}

	if len(lookups) == 0 {
		method(f, decl.Name,
			jen.If(
				jen.List(jen.Id("_"), jen.Err()).Op(":=").Qual(decoderPath, "Fields").Call(jen.Id("v")),
				jen.Err().Op("!=").Nil(),
			).Block(jen.Return(jen.Err())),
			jen.Op("*").Id("x").Op("=").Id(decl.Name).Values(),
			jen.Return(jen.Nil()),
		)
		return nil
	}

	body := []jen.Code{
		jen.List(jen.Id("fields"), jen.Err()).Op(":=").Qual(decoderPath, "Fields").Call(jen.Id("v")),
		ifErrReturn(jen.Err()),
		jen.Var().Id("out").Id(decl.Name),
	}
	body = append(body, lookups...)
	body = append(body,
		jen.Op("*").Id("x").Op("=").Id("out"),
		jen.Return(jen.Nil()),
	)
	method(f, decl.Name, body...)
	return nil
}

func (p *Package) emitTuple(f *jen.File, decl *Decl) error {
	st := decl.named.Underlying().(*types.Struct)
	n := st.NumFields() - 1

	elems := make([]jen.Code, 0, n)
	for i := 1; i < st.NumFields(); i++ {
		field := st.Field(i)
		if !field.Exported() {
			return errors.New(errors.PhaseCodegen, errors.KindUnsupported).
				Path(decl.Name, field.Name()).
				GoType(decl.Name).
				Detail("tuple element %s is not exported", field.Name()).
				Build()
		}
		seg := "[" + strconv.Itoa(i-1) + "]"
		fn, err := p.decodeFunc(field.Type(), []string{decl.Name, seg})
		if err != nil {
			return err
		}
		elems = append(elems, jen.If(
			jen.List(jen.Id("out").Dot(field.Name()), jen.Err()).Op("=").
				Add(fn).Call(jen.Id("d"), jen.Id("elems").Index(jen.Lit(i-1))),
			jen.Err().Op("!=").Nil(),
		).Block(
			jen.Return(jen.Qual(decoderPath, "At").Call(jen.Err(), jen.Lit(seg))),
		))
	}

	if n == 0 {
		method(f, decl.Name,
			jen.If(
				jen.List(jen.Id("_"), jen.Err()).Op(":=").Qual(decoderPath, "TupleElems").Call(jen.Id("v"), jen.Lit(0)),
				jen.Err().Op("!=").Nil(),
			).Block(jen.Return(jen.Err())),
			jen.Op("*").Id("x").Op("=").Id(decl.Name).Values(),
			jen.Return(jen.Nil()),
		)
		return nil
	}

	body := []jen.Code{
		jen.List(jen.Id("elems"), jen.Err()).Op(":=").Qual(decoderPath, "TupleElems").Call(jen.Id("v"), jen.Lit(n)),
		ifErrReturn(jen.Err()),
		jen.Var().Id("out").Id(decl.Name),
	}
	body = append(body, elems...)
	body = append(body,
		jen.Op("*").Id("x").Op("=").Id("out"),
		jen.Return(jen.Nil()),
	)
	method(f, decl.Name, body...)
	return nil
}

func lowerFirst(s string) string {
	return strings.ToLower(s[:1]) + s[1:]
}

func (p *Package) emitEnum(f *jen.File, decl *Decl) {
	specVar := lowerFirst(decl.Name) + "Enum"

	consts := make([]jen.Code, len(decl.Cases))
	idents := make([]jen.Code, len(decl.Cases))
	for i, c := range decl.Cases {
		consts[i] = jen.Qual(decoderPath, "Const").Call(jen.Lit(c.Name), jen.Id(c.Ident))
		idents[i] = jen.Id(c.Ident)
	}
	f.Var().Id(specVar).Op("=").Qual(decoderPath, "EnumOf").Call(consts...)
	f.Line()

	f.Commentf("%sEnum describes %s to a reflection Decoder.", decl.Name, decl.Name)
	f.Func().Id(decl.Name+"Enum").Params().Qual(decoderPath, "EnumSpec").Block(
		jen.Return(jen.Id(specVar)),
	)
	f.Line()

	method(f, decl.Name,
		jen.List(jen.Id("i"), jen.Err()).Op(":=").Qual(decoderPath, "UnitName").Call(jen.Id("v"), jen.Id(specVar)),
		ifErrReturn(jen.Err()),
		jen.Op("*").Id("x").Op("=").Index(jen.Op("...")).Id(decl.Name).Values(idents...).Index(jen.Id("i")),
		jen.Return(jen.Nil()),
	)
}

func layoutExpr(l decoder.Layout) *jen.Statement {
	payload := "PayloadContent"
	if l.Payload == decoder.PayloadInline {
		payload = "PayloadInline"
	}
	return jen.Qual(decoderPath, "Layout").Values(jen.Dict{
		jen.Id("Tag"):     jen.Lit(l.Tag),
		jen.Id("Content"): jen.Lit(l.Content),
		jen.Id("Payload"): jen.Qual(decoderPath, payload),
	})
}

func (p *Package) emitSum(f *jen.File, decl *Decl) error {
	specVar := lowerFirst(decl.Name) + "Sum"

	cases := []jen.Code{layoutExpr(decl.Layout)}
	var arms []jen.Code
	for i, c := range decl.Cases {
		ctor := "Case"
		if c.Unit {
			ctor = "UnitCase"
		}
		cases = append(cases, jen.Qual(decoderPath, ctor).Types(p.typeExpr(c.Type)).Call(jen.Lit(c.Name)))

		var arm []jen.Code
		switch ptr, isPtr := c.Type.(*types.Pointer); {
		case c.Unit && isPtr:
			arm = []jen.Code{jen.Return(jen.New(p.typeExpr(ptr.Elem())), jen.Nil())}
		case c.Unit:
			arm = []jen.Code{jen.Return(p.typeExpr(c.Type).Values(), jen.Nil())}
		default:
			fn, err := p.decodeFunc(c.Type, []string{decl.Name, c.Name})
			if err != nil {
				return err
			}
			arm = []jen.Code{
				jen.List(jen.Id("x"), jen.Err()).Op(":=").Add(fn).Call(jen.Id("d"), jen.Id("sel").Dot("Payload")),
				ifErrReturn(jen.Nil(), jen.Qual(decoderPath, "At").Call(jen.Err(), jen.Id("sel").Dot("Name"))),
				jen.Return(jen.Id("x"), jen.Nil()),
			}
		}
		arms = append(arms, jen.Case(jen.Lit(i)).Block(arm...))
	}

	f.Var().Id(specVar).Op("=").Qual(decoderPath, "Sum").Types(jen.Id(decl.Name)).Call(cases...)
	f.Line()

	f.Commentf("%sSum describes %s to a reflection Decoder.", decl.Name, decl.Name)
	f.Func().Id(decl.Name+"Sum").Params().Qual(decoderPath, "SumSpec").Block(
		jen.Return(jen.Id(specVar)),
	)
	f.Line()

	f.Commentf("Decode%s decodes a %s from its tagged ITF form.", decl.Name, decl.Name)
	f.Func().Id("Decode"+decl.Name).Params(
		jen.Id("d").Op("*").Qual(decoderPath, "Decoder"),
		jen.Id("v").Qual(valuePath, "Value"),
	).Params(jen.Id(decl.Name), jen.Error()).Block(
		jen.List(jen.Id("sel"), jen.Err()).Op(":=").Id(specVar).Dot("Select").Call(jen.Id("v")),
		ifErrReturn(jen.Nil(), jen.Err()),
		jen.Switch(jen.Id("sel").Dot("Index")).Block(arms...),
		jen.Return(jen.Nil(), jen.Qual(decoderPath, "Customf").Call(jen.Lit("variant index %d out of range"), jen.Id("sel").Dot("Index"))),
	)
	f.Line()
	return nil
}
