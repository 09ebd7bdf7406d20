package value

import (
	"bytes"
	"cmp"
	"slices"
)

// Canonical returns a new tree where BigInts that fit int64 are Numbers,
// and Set elements, Map entries and Record fields are ordered by their
// canonical CBOR bytes. Lists and Tuples keep their order.
func Canonical(v Value) Value {
	switch v.kind {
	case KindBigInt:
		if v.big.IsInt64() {
			return Number(v.big.Int64())
		}
		return v
	case KindList, KindTuple:
		return Value{kind: v.kind, elems: canonicalElems(v.elems)}
	case KindSet:
		elems := canonicalElems(v.elems)
		keys := make(map[int][]byte, len(elems))
		idx := make([]int, len(elems))
		for i := range elems {
			idx[i] = i
			keys[i] = sortKey(elems[i])
		}
		slices.SortStableFunc(idx, func(a, b int) int { return bytes.Compare(keys[a], keys[b]) })
		sorted := make([]Value, len(elems))
		for i, j := range idx {
			sorted[i] = elems[j]
		}
		return Value{kind: KindSet, elems: sorted}
	case KindMap:
		type keyed struct {
			entry Entry
			k, v  []byte
		}
		ks := make([]keyed, len(v.entries))
		for i, e := range v.entries {
			ce := Entry{Key: Canonical(e.Key), Value: Canonical(e.Value)}
			ks[i] = keyed{entry: ce, k: sortKey(ce.Key), v: sortKey(ce.Value)}
		}
		slices.SortStableFunc(ks, func(a, b keyed) int {
			if c := bytes.Compare(a.k, b.k); c != 0 {
				return c
			}
			return bytes.Compare(a.v, b.v)
		})
		entries := make([]Entry, len(ks))
		for i := range ks {
			entries[i] = ks[i].entry
		}
		return Value{kind: KindMap, entries: entries}
	case KindRecord:
		type keyed struct {
			field Field
			v     []byte
		}
		ks := make([]keyed, len(v.fields))
		for i, f := range v.fields {
			cf := Field{Name: f.Name, Value: Canonical(f.Value)}
			ks[i] = keyed{field: cf, v: sortKey(cf.Value)}
		}
		slices.SortStableFunc(ks, func(a, b keyed) int {
			if c := cmp.Compare(a.field.Name, b.field.Name); c != 0 {
				return c
			}
			return bytes.Compare(a.v, b.v)
		})
		fields := make([]Field, len(ks))
		for i := range ks {
			fields[i] = ks[i].field
		}
		return Value{kind: KindRecord, fields: fields}
	}
	return v
}

func canonicalElems(elems []Value) []Value {
	if len(elems) == 0 {
		return nil
	}
	out := make([]Value, len(elems))
	for i, e := range elems {
		out[i] = Canonical(e)
	}
	return out
}

// sortKey is the CBOR encoding of an already canonical value. Values the
// wire cannot carry sort by their kind name.
func sortKey(v Value) []byte {
	b, err := v.MarshalCBOR()
	if err != nil {
		return []byte(v.kind.String())
	}
	return b
}
