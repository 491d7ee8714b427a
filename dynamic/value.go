// Package dynamic implements the runtime dynamic message: a value
// container keyed by field number that stores field values conformant to
// a desc.Message descriptor.
package dynamic

import (
	"reflect"
	"sort"

	"github.com/proto3reflect/dynproto/desc"
)

// List is the ordered-sequence shape used for repeated (non-map) fields.
type List struct {
	elems []interface{}
}

// NewList returns an empty, mutable list.
func NewList() *List { return &List{} }

func (l *List) Len() int                 { return len(l.elems) }
func (l *List) Get(i int) interface{}    { return l.elems[i] }
func (l *List) Set(i int, v interface{}) { l.elems[i] = v }
func (l *List) Append(v interface{})     { l.elems = append(l.elems, v) }
func (l *List) Truncate(n int)           { l.elems = l.elems[:n] }

// Slice returns the list's elements as a plain Go slice. The returned
// slice shares no backing array with the list.
func (l *List) Slice() []interface{} {
	out := make([]interface{}, len(l.elems))
	copy(out, l.elems)
	return out
}

func (l *List) clone(elemKind desc.Kind) *List {
	out := &List{elems: make([]interface{}, len(l.elems))}
	for i, v := range l.elems {
		out.elems[i] = cloneValue(v, elemKind)
	}
	return out
}

func (l *List) equal(other *List, elemKind desc.Kind) bool {
	if other == nil || len(l.elems) != len(other.elems) {
		return false
	}
	for i := range l.elems {
		if !valuesEqual(l.elems[i], other.elems[i], elemKind) {
			return false
		}
	}
	return true
}

// Map is the unordered key->value mapping shape used for map fields: map
// entries behave as repeated messages on the wire but as unordered
// mappings in memory.
type Map struct {
	entries map[interface{}]interface{}
}

// NewMap returns an empty, mutable map.
func NewMap() *Map { return &Map{entries: make(map[interface{}]interface{})} }

func (m *Map) Len() int                        { return len(m.entries) }
func (m *Map) Get(key interface{}) (interface{}, bool) { v, ok := m.entries[key]; return v, ok }
func (m *Map) Set(key, value interface{})      { m.entries[key] = value }
func (m *Map) Delete(key interface{})          { delete(m.entries, key) }
func (m *Map) Has(key interface{}) bool        { _, ok := m.entries[key]; return ok }

// Keys returns the map's keys sorted in a deterministic order, so the
// binary and JSON codecs can emit entries deterministically.
func (m *Map) Keys() []interface{} {
	keys := make([]interface{}, 0, len(m.entries))
	for k := range m.entries {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return lessMapKey(keys[i], keys[j]) })
	return keys
}

// Range visits every entry in deterministic key order.
func (m *Map) Range(f func(key, value interface{}) bool) {
	for _, k := range m.Keys() {
		if !f(k, m.entries[k]) {
			return
		}
	}
}

func lessMapKey(a, b interface{}) bool {
	switch av := a.(type) {
	case string:
		return av < b.(string)
	case bool:
		return !av && b.(bool)
	case int32:
		return av < b.(int32)
	case int64:
		return av < b.(int64)
	case uint32:
		return av < b.(uint32)
	case uint64:
		return av < b.(uint64)
	default:
		return false
	}
}

func (m *Map) clone(valueKind desc.Kind) *Map {
	out := NewMap()
	for k, v := range m.entries {
		out.entries[k] = cloneValue(v, valueKind)
	}
	return out
}

func (m *Map) equal(other *Map, valueKind desc.Kind) bool {
	if other == nil || len(m.entries) != len(other.entries) {
		return false
	}
	for k, v := range m.entries {
		ov, ok := other.entries[k]
		if !ok || !valuesEqual(v, ov, valueKind) {
			return false
		}
	}
	return true
}

func cloneValue(v interface{}, kind desc.Kind) interface{} {
	switch vv := v.(type) {
	case *Message:
		return vv.Clone()
	case []byte:
		out := make([]byte, len(vv))
		copy(out, vv)
		return out
	case *List:
		return vv.clone(kind)
	case *Map:
		panic("cloneValue: nested map value not supported")
	default:
		return v
	}
}

func valuesEqual(a, b interface{}, kind desc.Kind) bool {
	switch kind {
	case desc.MessageKind, desc.GroupKind:
		am, aok := a.(*Message)
		bm, bok := b.(*Message)
		if !aok || !bok {
			return false
		}
		return am.Equal(bm)
	case desc.BytesKind:
		ab, aok := a.([]byte)
		bb, bok := b.([]byte)
		return aok && bok && reflect.DeepEqual(ab, bb)
	default:
		return a == b
	}
}
