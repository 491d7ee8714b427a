// Package wire implements the proto3 binary wire format codec: encoding
// and decoding of dynamic.Message values against a desc.Message
// descriptor.
package wire

import (
	"math"

	"github.com/proto3reflect/dynproto/desc"
	"github.com/proto3reflect/dynproto/dynamic"
	"github.com/proto3reflect/dynproto/internal/errs"
)

// Marshal serializes a dynamic message to its proto3 binary wire-format
// bytes. Fields are emitted in ascending field-number order; the
// unknown-fields buffer is appended unchanged.
func Marshal(m *dynamic.Message, opts Options) ([]byte, error) {
	return encodeMessage(nil, m, 0, opts)
}

func encodeMessage(buf []byte, m *dynamic.Message, depth int, opts Options) ([]byte, error) {
	if depth > opts.recursionLimit() {
		return nil, errs.New(errs.RecursionLimitExceeded, "recursion limit %d exceeded while encoding", opts.recursionLimit())
	}
	md := m.Descriptor()
	for _, f := range md.Fields() {
		has, err := m.Has(f.Number())
		if err != nil {
			return nil, err
		}
		if !has {
			continue
		}
		v, err := m.Get(f.Number())
		if err != nil {
			return nil, err
		}
		buf, err = encodeField(buf, f, v, depth, opts)
		if err != nil {
			return nil, err
		}
	}
	buf = append(buf, m.UnknownFields()...)
	return buf, nil
}

func encodeField(buf []byte, f *desc.Field, v interface{}, depth int, opts Options) ([]byte, error) {
	switch {
	case f.IsMap():
		return encodeMapField(buf, f, v.(*dynamic.Map), depth, opts)
	case f.IsRepeated():
		return encodeRepeatedField(buf, f, v.(*dynamic.List), depth, opts)
	default:
		return encodeSingular(buf, f.Number(), f.Kind(), f.TypeName(), v, depth, opts)
	}
}

func encodeRepeatedField(buf []byte, f *desc.Field, list *dynamic.List, depth int, opts Options) ([]byte, error) {
	if f.Packable() {
		var payload []byte
		var err error
		for i := 0; i < list.Len(); i++ {
			payload, err = encodeScalarRaw(payload, f.Kind(), list.Get(i))
			if err != nil {
				return nil, err
			}
		}
		buf = appendTag(buf, f.Number(), WireBytes)
		buf = appendVarint(buf, uint64(len(payload)))
		buf = append(buf, payload...)
		return buf, nil
	}
	var err error
	for i := 0; i < list.Len(); i++ {
		buf, err = encodeSingular(buf, f.Number(), f.Kind(), f.TypeName(), list.Get(i), depth, opts)
		if err != nil {
			return nil, err
		}
	}
	return buf, nil
}

// encodeMapField emits each entry as a length-delimited synthetic message
// with the key at field 1 and the value at field 2, in deterministic
// (sorted-by-key) order.
func encodeMapField(buf []byte, f *desc.Field, m *dynamic.Map, depth int, opts Options) ([]byte, error) {
	me := f.MapEntry()
	var err error
	for _, k := range m.Keys() {
		v, _ := m.Get(k)
		var entry []byte
		entry, err = encodeSingular(entry, 1, me.KeyKind, "", k, depth, opts)
		if err != nil {
			return nil, err
		}
		entry, err = encodeSingular(entry, 2, me.ValueKind, me.ValueTypeName, v, depth, opts)
		if err != nil {
			return nil, err
		}
		buf = appendTag(buf, f.Number(), WireBytes)
		buf = appendVarint(buf, uint64(len(entry)))
		buf = append(buf, entry...)
	}
	return buf, nil
}

// encodeSingular emits one non-repeated value, tagged with its field
// number, recursing for embedded messages.
func encodeSingular(buf []byte, fieldNumber int32, kind desc.Kind, typeName string, v interface{}, depth int, opts Options) ([]byte, error) {
	switch kind {
	case desc.MessageKind, desc.GroupKind:
		if kind == desc.GroupKind {
			return nil, errs.New(errs.UnsupportedGroup, "group fields are not supported on encode")
		}
		sub := v.(*dynamic.Message)
		encoded, err := encodeMessage(nil, sub, depth+1, opts)
		if err != nil {
			return nil, err
		}
		buf = appendTag(buf, fieldNumber, WireBytes)
		buf = appendVarint(buf, uint64(len(encoded)))
		return append(buf, encoded...), nil
	case desc.StringKind:
		s := v.(string)
		buf = appendTag(buf, fieldNumber, WireBytes)
		buf = appendVarint(buf, uint64(len(s)))
		return append(buf, s...), nil
	case desc.BytesKind:
		b := v.([]byte)
		buf = appendTag(buf, fieldNumber, WireBytes)
		buf = appendVarint(buf, uint64(len(b)))
		return append(buf, b...), nil
	default:
		wt := scalarWireType(kind)
		buf = appendTag(buf, fieldNumber, wt)
		return encodeScalarRaw(buf, kind, v)
	}
}

func scalarWireType(kind desc.Kind) int {
	switch kind {
	case desc.DoubleKind, desc.Fixed64Kind, desc.Sfixed64Kind:
		return WireFixed64
	case desc.FloatKind, desc.Fixed32Kind, desc.Sfixed32Kind:
		return WireFixed32
	default:
		return WireVarint
	}
}

// encodeScalarRaw appends the untagged payload for one scalar value —
// used both for tagged singular fields and for each element inside a
// packed-repeated payload.
func encodeScalarRaw(buf []byte, kind desc.Kind, v interface{}) ([]byte, error) {
	switch kind {
	case desc.BoolKind:
		if v.(bool) {
			return appendVarint(buf, 1), nil
		}
		return appendVarint(buf, 0), nil
	case desc.EnumKind:
		return appendVarint(buf, uint64(int64(v.(int32)))), nil
	case desc.Int32Kind:
		// Negative int32 values sign-extend to 64 bits, producing a
		// 10-byte varint rather than the 5 bytes a 32-bit value would
		// otherwise take.
		return appendVarint(buf, uint64(int64(v.(int32)))), nil
	case desc.Sint32Kind:
		return appendVarint(buf, uint64(zigzag32(v.(int32)))), nil
	case desc.Sfixed32Kind:
		return appendFixed32(buf, uint32(v.(int32))), nil
	case desc.Uint32Kind:
		return appendVarint(buf, uint64(v.(uint32))), nil
	case desc.Fixed32Kind:
		return appendFixed32(buf, v.(uint32)), nil
	case desc.Int64Kind:
		return appendVarint(buf, uint64(v.(int64))), nil
	case desc.Sint64Kind:
		return appendVarint(buf, zigzag64(v.(int64))), nil
	case desc.Sfixed64Kind:
		return appendFixed64(buf, uint64(v.(int64))), nil
	case desc.Uint64Kind:
		return appendVarint(buf, v.(uint64)), nil
	case desc.Fixed64Kind:
		return appendFixed64(buf, v.(uint64)), nil
	case desc.FloatKind:
		return appendFixed32(buf, math.Float32bits(v.(float32))), nil
	case desc.DoubleKind:
		return appendFixed64(buf, math.Float64bits(v.(float64))), nil
	default:
		return nil, errs.New(errs.InvalidWireType, "cannot encode scalar of kind %v", kind)
	}
}
