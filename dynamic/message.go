package dynamic

import (
	"fmt"
	"math"

	"github.com/proto3reflect/dynproto/desc"
	"github.com/proto3reflect/dynproto/internal/errs"
)

// Message is the runtime value container for a desc.Message descriptor: a
// mapping from field number to value, plus the raw unknown-fields buffer
// preserved across decode/re-encode.
//
// Operations that modify a Message are not safe for concurrent use; the
// descriptor itself is read-only and may be shared freely.
type Message struct {
	md      *desc.Message
	values  map[int32]interface{}
	unknown []byte
}

// NewMessage returns a newly allocated, empty message conformant to md.
func NewMessage(md *desc.Message) *Message {
	return &Message{md: md, values: make(map[int32]interface{})}
}

// Descriptor returns the message's descriptor.
func (m *Message) Descriptor() *desc.Message { return m.md }

// UnknownFields returns the raw unknown-fields buffer, in original wire
// order.
func (m *Message) UnknownFields() []byte { return m.unknown }

// SetUnknownFields replaces the raw unknown-fields buffer.
func (m *Message) SetUnknownFields(b []byte) { m.unknown = b }

// AppendUnknownField appends raw (tag, payload) bytes to the unknown
// fields buffer, preserving the original encounter order.
func (m *Message) AppendUnknownField(raw []byte) {
	m.unknown = append(m.unknown, raw...)
}

// resolveField resolves a field reference, which may be a string (local
// name), an int, or an int32 (field number), into its descriptor.
func (m *Message) resolveField(ref interface{}) (*desc.Field, error) {
	switch r := ref.(type) {
	case string:
		f, ok := m.md.FieldByName(r)
		if !ok {
			return nil, errs.New(errs.FieldNotFound, "message %q has no field named %q", m.md.FullName(), r)
		}
		return f, nil
	case int32:
		f, ok := m.md.FieldByNumber(r)
		if !ok {
			return nil, errs.New(errs.FieldNotFound, "message %q has no field number %d", m.md.FullName(), r)
		}
		return f, nil
	case int:
		return m.resolveField(int32(r))
	case *desc.Field:
		return r, nil
	default:
		return nil, errs.New(errs.FieldNotFound, "invalid field reference of type %T", ref)
	}
}

// Has reports whether a field is populated: explicit presence for message
// fields, is_optional singular fields, and oneof members; non-empty
// collection for repeated/map fields; non-default-value (proto3 implicit
// presence) otherwise.
func (m *Message) Has(ref interface{}) (bool, error) {
	f, err := m.resolveField(ref)
	if err != nil {
		return false, err
	}
	v, stored := m.values[f.Number()]
	switch {
	case f.IsMap():
		return stored && v.(*Map).Len() > 0, nil
	case f.IsRepeated():
		return stored && v.(*List).Len() > 0, nil
	case f.HasExplicitPresence():
		return stored, nil
	default:
		if !stored {
			return false, nil
		}
		return !isZeroValue(f.Kind(), v), nil
	}
}

// Get returns the stored value for a field, or the proto3 default: the
// zero scalar for singular fields, an empty list/map for repeated/map
// fields, and nil (the "absent marker") for an unset singular message
// field — a message field is never fabricated on read, only on an
// explicit Set.
func (m *Message) Get(ref interface{}) (interface{}, error) {
	f, err := m.resolveField(ref)
	if err != nil {
		return nil, err
	}
	if v, ok := m.values[f.Number()]; ok {
		return v, nil
	}
	return zeroValue(f), nil
}

// Set stores a value for a field after validating that its shape matches
// the field's declared type, and enforces oneof exclusivity by clearing
// any sibling oneof member first.
func (m *Message) Set(ref interface{}, value interface{}) error {
	f, err := m.resolveField(ref)
	if err != nil {
		return err
	}
	if err := m.typecheck(f, value); err != nil {
		return err
	}
	m.clearOtherOneofMembers(f)
	m.values[f.Number()] = value
	return nil
}

// Clear removes the stored value for a field, restoring absence
// semantics.
func (m *Message) Clear(ref interface{}) error {
	f, err := m.resolveField(ref)
	if err != nil {
		return err
	}
	delete(m.values, f.Number())
	return nil
}

func (m *Message) clearOtherOneofMembers(f *desc.Field) {
	if f.OneofName() == "" {
		return
	}
	o, ok := m.md.OneofByName(f.OneofName())
	if !ok {
		return
	}
	for _, name := range o.FieldNames() {
		if name == f.Name() {
			continue
		}
		if sib, ok := m.md.FieldByName(name); ok {
			delete(m.values, sib.Number())
		}
	}
}

// Clone returns a deep copy: nested messages, lists, and maps are
// recursively duplicated.
func (m *Message) Clone() *Message {
	out := NewMessage(m.md)
	for num, v := range m.values {
		f, ok := m.md.FieldByNumber(num)
		if !ok {
			continue
		}
		out.values[num] = cloneFieldValue(f, v)
	}
	out.unknown = append([]byte(nil), m.unknown...)
	return out
}

func cloneFieldValue(f *desc.Field, v interface{}) interface{} {
	switch {
	case f.IsMap():
		return v.(*Map).clone(f.MapEntry().ValueKind)
	case f.IsRepeated():
		return v.(*List).clone(f.Kind())
	default:
		return cloneValue(v, f.Kind())
	}
}

// Equal reports whether two messages share an equal descriptor and have
// the same set of present fields with equal values. Map and set
// comparisons are order-insensitive; list comparisons are order-sensitive.
func (m *Message) Equal(other *Message) bool {
	if other == nil {
		return false
	}
	if !m.md.Equal(other.md) {
		return false
	}
	for _, f := range m.md.Fields() {
		ha, _ := m.Has(f.Number())
		hb, _ := other.Has(f.Number())
		if ha != hb {
			return false
		}
		if !ha {
			continue
		}
		va, _ := m.Get(f.Number())
		vb, _ := other.Get(f.Number())
		if !fieldValuesEqual(f, va, vb) {
			return false
		}
	}
	return true
}

func fieldValuesEqual(f *desc.Field, a, b interface{}) bool {
	switch {
	case f.IsMap():
		am, aok := a.(*Map)
		bm, bok := b.(*Map)
		if !aok || !bok {
			return false
		}
		return am.equal(bm, f.MapEntry().ValueKind)
	case f.IsRepeated():
		al, aok := a.(*List)
		bl, bok := b.(*List)
		if !aok || !bok {
			return false
		}
		return al.equal(bl, f.Kind())
	default:
		return valuesEqual(a, b, f.Kind())
	}
}

func zeroValue(f *desc.Field) interface{} {
	if f.IsMap() {
		return NewMap()
	}
	if f.IsRepeated() {
		return NewList()
	}
	switch f.Kind() {
	case desc.BoolKind:
		return false
	case desc.StringKind:
		return ""
	case desc.BytesKind:
		return []byte{}
	case desc.EnumKind:
		return int32(0)
	case desc.Int32Kind, desc.Sint32Kind, desc.Sfixed32Kind:
		return int32(0)
	case desc.Int64Kind, desc.Sint64Kind, desc.Sfixed64Kind:
		return int64(0)
	case desc.Uint32Kind, desc.Fixed32Kind:
		return uint32(0)
	case desc.Uint64Kind, desc.Fixed64Kind:
		return uint64(0)
	case desc.FloatKind:
		return float32(0)
	case desc.DoubleKind:
		return float64(0)
	case desc.MessageKind, desc.GroupKind:
		return nil
	default:
		return nil
	}
}

func isZeroValue(kind desc.Kind, v interface{}) bool {
	switch kind {
	case desc.BoolKind:
		return v.(bool) == false
	case desc.StringKind:
		return v.(string) == ""
	case desc.BytesKind:
		b, _ := v.([]byte)
		return len(b) == 0
	case desc.EnumKind:
		return v.(int32) == 0
	case desc.Int32Kind, desc.Sint32Kind, desc.Sfixed32Kind:
		return v.(int32) == 0
	case desc.Int64Kind, desc.Sint64Kind, desc.Sfixed64Kind:
		return v.(int64) == 0
	case desc.Uint32Kind, desc.Fixed32Kind:
		return v.(uint32) == 0
	case desc.Uint64Kind, desc.Fixed64Kind:
		return v.(uint64) == 0
	case desc.FloatKind:
		f := v.(float32)
		return f == 0 && !math.Signbit(float64(f))
	case desc.DoubleKind:
		f := v.(float64)
		return f == 0 && !math.Signbit(f)
	default:
		return false
	}
}

// typecheck validates that value's runtime shape matches f's declared
// shape.
func (m *Message) typecheck(f *desc.Field, value interface{}) error {
	if f.IsMap() {
		mv, ok := value.(*Map)
		if !ok {
			return errs.New(errs.TypeMismatch, "field %q: expected *dynamic.Map, got %T", f.Name(), value)
		}
		me := f.MapEntry()
		for _, k := range mv.Keys() {
			if !typecheckScalar(me.KeyKind, "", k) {
				return errs.New(errs.MapKeyInvalid, "field %q: invalid map key %v for kind %v", f.Name(), k, me.KeyKind)
			}
			v, _ := mv.Get(k)
			if err := m.typecheckElem(me.ValueKind, me.ValueTypeName, v); err != nil {
				return err
			}
		}
		return nil
	}
	if f.IsRepeated() {
		lv, ok := value.(*List)
		if !ok {
			return errs.New(errs.TypeMismatch, "field %q: expected *dynamic.List, got %T", f.Name(), value)
		}
		for i := 0; i < lv.Len(); i++ {
			if err := m.typecheckElem(f.Kind(), f.TypeName(), lv.Get(i)); err != nil {
				return err
			}
		}
		return nil
	}
	return m.typecheckElem(f.Kind(), f.TypeName(), value)
}

func (m *Message) typecheckElem(kind desc.Kind, typeName string, value interface{}) error {
	switch kind {
	case desc.MessageKind, desc.GroupKind:
		nm, ok := value.(*Message)
		if !ok {
			return errs.New(errs.NestedDescriptorMismatch, "expected *dynamic.Message for kind %v, got %T", kind, value)
		}
		if nm.md.FullName() != typeName {
			return errs.New(errs.NestedDescriptorMismatch, "expected message type %q, got %q", typeName, nm.md.FullName())
		}
		return nil
	default:
		if !typecheckScalar(kind, typeName, value) {
			return errs.New(errs.TypeMismatch, "invalid value %v (%T) for kind %v", value, value, kind)
		}
		return nil
	}
}

func typecheckScalar(kind desc.Kind, typeName string, v interface{}) bool {
	switch kind {
	case desc.BoolKind:
		_, ok := v.(bool)
		return ok
	case desc.EnumKind:
		_, ok := v.(int32)
		return ok
	case desc.Int32Kind, desc.Sint32Kind, desc.Sfixed32Kind:
		_, ok := v.(int32)
		return ok
	case desc.Uint32Kind, desc.Fixed32Kind:
		_, ok := v.(uint32)
		return ok
	case desc.Int64Kind, desc.Sint64Kind, desc.Sfixed64Kind:
		_, ok := v.(int64)
		return ok
	case desc.Uint64Kind, desc.Fixed64Kind:
		_, ok := v.(uint64)
		return ok
	case desc.FloatKind:
		_, ok := v.(float32)
		return ok
	case desc.DoubleKind:
		_, ok := v.(float64)
		return ok
	case desc.StringKind:
		_, ok := v.(string)
		return ok
	case desc.BytesKind:
		_, ok := v.([]byte)
		return ok
	default:
		return false
	}
}

// String returns a short debug representation of the message: its full
// name and the number of stored fields.
func (m *Message) String() string {
	return fmt.Sprintf("%s{fields=%d}", m.md.FullName(), len(m.values))
}
