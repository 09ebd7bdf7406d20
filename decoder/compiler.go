package decoder

import (
	"math/big"
	"reflect"

	"go.uber.org/zap"

	"github.com/wippyai/itf/bigint"
	"github.com/wippyai/itf/errors"
	"github.com/wippyai/itf/value"
)

// plan is the compiled decode recipe for one Go type.
type plan struct {
	typ      reflect.Type
	elem     *plan
	key      *plan
	sum      *SumSpec
	enum     *EnumSpec
	fields   []fieldPlan
	variants []*plan
	rule     Rule
}

type fieldPlan struct {
	plan  *plan
	key   Key
	index int
}

var (
	valueType       = reflect.TypeFor[value.Value]()
	ignoredType     = reflect.TypeFor[Ignored]()
	charType        = reflect.TypeFor[Char]()
	bigIntType      = reflect.TypeFor[big.Int]()
	limbsType       = reflect.TypeFor[bigint.Limbs]()
	bytesType       = reflect.TypeFor[[]byte]()
	tupleLayoutType = reflect.TypeFor[TupleLayout]()
	unmarshalerType = reflect.TypeFor[Unmarshaler]()
	builtinType     = reflect.TypeFor[builtin]()
)

// builtin marks the Unmarshalers of this package, which the Reflective
// option keeps.
type builtin interface {
	builtin()
}

// plan returns the cached plan for t, compiling it on first use.
func (d *Decoder) plan(t reflect.Type) (*plan, error) {
	if cached, ok := d.cache.Load(t); ok {
		return cached.(*plan), nil
	}

	seen := make(map[reflect.Type]*plan)
	p, err := d.compile(t, nil, seen)
	if err != nil {
		return nil, err
	}
	for typ, sp := range seen {
		d.cache.Store(typ, sp)
	}
	Logger().Debug("compiled decode plan",
		zap.Stringer("type", t),
		zap.Stringer("rule", p.rule),
		zap.Int("types", len(seen)))
	return p, nil
}

// Rule reports how d decodes values of type t.
func (d *Decoder) Rule(t reflect.Type) Rule {
	return d.classify(t)
}

func (d *Decoder) classify(t reflect.Type) Rule {
	switch t {
	case valueType:
		return RuleValue
	case ignoredType:
		return RuleIgnore
	case charType:
		return RuleChar
	case bigIntType:
		return RuleBigInt
	case limbsType:
		return RuleLimbs
	case bytesType:
		return RuleBytes
	}

	if t.Kind() != reflect.Pointer && t.Kind() != reflect.Interface {
		pt := reflect.PointerTo(t)
		if pt.Implements(unmarshalerType) && (!d.reflective || pt.Implements(builtinType)) {
			return RuleUnmarshaler
		}
	}
	if _, ok := d.sums[t]; ok {
		return RuleSum
	}
	if _, ok := d.enums[t]; ok {
		return RuleEnum
	}

	switch t.Kind() {
	case reflect.Bool:
		return RuleBool
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return RuleInt
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return RuleUint
	case reflect.String:
		return RuleString
	case reflect.Pointer:
		return RuleOption
	case reflect.Slice:
		return RuleSeq
	case reflect.Array:
		return RuleArray
	case reflect.Map:
		if e := t.Elem(); e.Kind() == reflect.Struct && e.NumField() == 0 {
			return RuleSet
		}
		return RuleMap
	case reflect.Struct:
		if t.NumField() > 0 && t.Field(0).Type == tupleLayoutType {
			return RuleTuple
		}
		return RuleStruct
	case reflect.Interface:
		if t.NumMethod() == 0 {
			return RuleAny
		}
	}
	return RuleUnsupported
}

func (d *Decoder) compile(t reflect.Type, path []string, seen map[reflect.Type]*plan) (*plan, error) {
	if p, ok := seen[t]; ok {
		return p, nil
	}
	if cached, ok := d.cache.Load(t); ok {
		return cached.(*plan), nil
	}

	p := &plan{typ: t, rule: d.classify(t)}
	seen[t] = p

	var err error
	switch p.rule {
	case RuleOption, RuleSeq, RuleArray:
		p.elem, err = d.compile(t.Elem(), appendPath(path, "[elem]"), seen)
	case RuleSet:
		p.key, err = d.compile(t.Key(), appendPath(path, "[key]"), seen)
	case RuleMap:
		if p.key, err = d.compile(t.Key(), appendPath(path, "[key]"), seen); err == nil {
			p.elem, err = d.compile(t.Elem(), appendPath(path, "[value]"), seen)
		}
	case RuleStruct:
		err = d.compileStruct(p, path, seen)
	case RuleTuple:
		err = d.compileTuple(p, path, seen)
	case RuleSum:
		err = d.compileSum(p, path, seen)
	case RuleEnum:
		err = d.compileEnum(p, path)
	case RuleUnsupported:
		err = errors.New(errors.PhaseCompile, errors.KindUnsupported).
			Path(path...).
			GoType(t.String()).
			Detail("no decode rule for %s values", t.Kind()).
			Build()
	}
	if err != nil {
		delete(seen, t)
		return nil, err
	}
	return p, nil
}

func appendPath(path []string, seg string) []string {
	out := make([]string, len(path)+1)
	copy(out, path)
	out[len(path)] = seg
	return out
}

func (d *Decoder) compileStruct(p *plan, path []string, seen map[reflect.Type]*plan) error {
	t := p.typ
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if !f.IsExported() || f.Type == ignoredType {
			continue
		}
		key, skip := ParseTag(f.Name, f.Tag.Get("itf"))
		if skip {
			continue
		}
		fp, err := d.compile(f.Type, appendPath(path, f.Name), seen)
		if err != nil {
			return err
		}
		p.fields = append(p.fields, fieldPlan{plan: fp, key: key, index: i})
	}
	return nil
}

func (d *Decoder) compileTuple(p *plan, path []string, seen map[reflect.Type]*plan) error {
	t := p.typ
	for i := 1; i < t.NumField(); i++ {
		f := t.Field(i)
		if !f.IsExported() {
			return errors.New(errors.PhaseCompile, errors.KindUnsupported).
				Path(appendPath(path, f.Name)...).
				GoType(t.String()).
				Detail("tuple element %s is not exported", f.Name).
				Build()
		}
		fp, err := d.compile(f.Type, appendPath(path, index(i-1)), seen)
		if err != nil {
			return err
		}
		p.fields = append(p.fields, fieldPlan{plan: fp, index: i})
	}
	return nil
}

func (d *Decoder) compileSum(p *plan, path []string, seen map[reflect.Type]*plan) error {
	spec := d.sums[p.typ]
	if p.typ.Kind() != reflect.Interface {
		return errors.New(errors.PhaseCompile, errors.KindUnsupported).
			Path(path...).
			GoType(p.typ.String()).
			Detail("sum type must be an interface").
			Build()
	}
	p.sum = &spec
	p.variants = make([]*plan, len(spec.types))
	for i, vt := range spec.types {
		name := spec.Variants[i].Name
		if vt == nil || !vt.AssignableTo(p.typ) {
			return errors.New(errors.PhaseCompile, errors.KindUnsupported).
				Path(appendPath(path, name)...).
				GoType(p.typ.String()).
				Detail("variant %q type %v does not implement %s", name, vt, p.typ).
				Build()
		}
		vp, err := d.compile(vt, appendPath(path, name), seen)
		if err != nil {
			return err
		}
		p.variants[i] = vp
	}
	return nil
}

func (d *Decoder) compileEnum(p *plan, path []string) error {
	spec := d.enums[p.typ]
	if len(spec.values) != len(spec.Variants) {
		return errors.New(errors.PhaseCompile, errors.KindUnsupported).
			Path(path...).
			GoType(p.typ.String()).
			Detail("enum type must have an integer or string kind").
			Build()
	}
	for i, v := range spec.values {
		if !v.Type().ConvertibleTo(p.typ) {
			return errors.New(errors.PhaseCompile, errors.KindUnsupported).
				Path(path...).
				GoType(p.typ.String()).
				Detail("enum case %q has type %s", spec.Variants[i].Name, v.Type()).
				Build()
		}
	}
	p.enum = &spec
	return nil
}
