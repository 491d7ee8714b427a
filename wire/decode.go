package wire

import (
	"math"

	"github.com/proto3reflect/dynproto/desc"
	"github.com/proto3reflect/dynproto/dynamic"
	"github.com/proto3reflect/dynproto/internal/errs"
	"github.com/proto3reflect/dynproto/registry"
)

// Unmarshal deserializes proto3 binary wire-format bytes into a new
// dynamic message conformant to md. Embedded message fields are resolved
// through reg by their descriptor's fully qualified type name.
func Unmarshal(b []byte, md *desc.Message, reg *registry.Registry, opts Options) (*dynamic.Message, error) {
	msg := dynamic.NewMessage(md)
	if err := decodeInto(msg, b, reg, 0, opts); err != nil {
		return nil, err
	}
	return msg, nil
}

func decodeInto(msg *dynamic.Message, b []byte, reg *registry.Registry, depth int, opts Options) error {
	if depth > opts.recursionLimit() {
		return errs.New(errs.RecursionLimitExceeded, "recursion limit %d exceeded while decoding", opts.recursionLimit())
	}
	md := msg.Descriptor()
	off := 0
	for off < len(b) {
		fieldNumber, wireType, payload, rawStart, newOff, err := readField(b, off)
		if err != nil {
			return err
		}
		f, ok := md.FieldByNumber(fieldNumber)
		if !ok {
			msg.AppendUnknownField(b[rawStart:newOff])
			off = newOff
			continue
		}
		if err := decodeKnownField(msg, f, wireType, payload, reg, depth, opts); err != nil {
			return err
		}
		off = newOff
	}
	return nil
}

// readField parses one (tag, payload) unit starting at b[off], returning
// the field number, wire type, the payload bytes (exclusive of the tag
// and, for length-delimited fields, the length prefix), the offset where
// the tag began, and the offset just past the payload.
func readField(b []byte, off int) (fieldNumber int32, wireType int, payload []byte, rawStart, newOff int, err error) {
	rawStart = off
	tag, n, err := consumeVarint(b, off)
	if err != nil {
		return 0, 0, nil, 0, 0, err
	}
	off += n
	fieldNumber = int32(tag >> 3)
	wireType = int(tag & 7)
	switch wireType {
	case WireVarint:
		_, n2, err := consumeVarint(b, off)
		if err != nil {
			return 0, 0, nil, 0, 0, err
		}
		payload = b[off : off+n2]
		off += n2
	case WireFixed64:
		if off+8 > len(b) {
			return 0, 0, nil, 0, 0, errs.WithOffset(errs.TruncatedMessage, off, "truncated fixed64 field")
		}
		payload = b[off : off+8]
		off += 8
	case WireBytes:
		length, n2, err := consumeVarint(b, off)
		if err != nil {
			return 0, 0, nil, 0, 0, err
		}
		off += n2
		if off+int(length) > len(b) {
			return 0, 0, nil, 0, 0, errs.WithOffset(errs.TruncatedMessage, off, "truncated length-delimited field")
		}
		payload = b[off : off+int(length)]
		off += int(length)
	case WireFixed32:
		if off+4 > len(b) {
			return 0, 0, nil, 0, 0, errs.WithOffset(errs.TruncatedMessage, off, "truncated fixed32 field")
		}
		payload = b[off : off+4]
		off += 4
	case WireStartGroup, WireEndGroup:
		return 0, 0, nil, 0, 0, errs.WithOffset(errs.UnsupportedGroup, rawStart, "group wire types are not supported")
	default:
		return 0, 0, nil, 0, 0, errs.WithOffset(errs.InvalidWireType, rawStart, "invalid wire type %d", wireType)
	}
	return fieldNumber, wireType, payload, rawStart, off, nil
}

func decodeKnownField(msg *dynamic.Message, f *desc.Field, wireType int, payload []byte, reg *registry.Registry, depth int, opts Options) error {
	if f.Kind() == desc.GroupKind {
		return errs.New(errs.UnsupportedGroup, "field %q uses unsupported group encoding", f.Name())
	}
	switch {
	case f.IsMap():
		return decodeMapField(msg, f, wireType, payload, reg, depth, opts)
	case f.IsRepeated():
		return decodeRepeatedField(msg, f, wireType, payload, reg, depth, opts)
	case f.Kind() == desc.MessageKind:
		return decodeMessageField(msg, f, wireType, payload, reg, depth, opts)
	default:
		v, err := decodeScalarPayload(f.Kind(), wireType, payload)
		if err != nil {
			return err
		}
		return msg.Set(f.Number(), v)
	}
}

func decodeMessageField(msg *dynamic.Message, f *desc.Field, wireType int, payload []byte, reg *registry.Registry, depth int, opts Options) error {
	if wireType != WireBytes {
		return errs.New(errs.WireTypeMismatch, "field %q: expected length-delimited wire type for message, got %d", f.Name(), wireType)
	}
	subMD, err := reg.FindMessage(f.TypeName())
	if err != nil {
		return err
	}
	sub := dynamic.NewMessage(subMD)
	if err := decodeInto(sub, payload, reg, depth+1, opts); err != nil {
		return err
	}
	if has, _ := msg.Has(f.Number()); has {
		existingRaw, _ := msg.Get(f.Number())
		existing := existingRaw.(*dynamic.Message)
		if err := mergeInto(existing, sub); err != nil {
			return err
		}
		return msg.Set(f.Number(), existing)
	}
	return msg.Set(f.Number(), sub)
}

func decodeRepeatedField(msg *dynamic.Message, f *desc.Field, wireType int, payload []byte, reg *registry.Registry, depth int, opts Options) error {
	if f.Packable() && wireType == WireBytes {
		elems, err := decodePackedElements(payload, f.Kind())
		if err != nil {
			return err
		}
		list := getOrCreateList(msg, f)
		for _, e := range elems {
			list.Append(e)
		}
		return msg.Set(f.Number(), list)
	}
	var val interface{}
	var err error
	if f.Kind() == desc.MessageKind {
		if wireType != WireBytes {
			return errs.New(errs.WireTypeMismatch, "field %q: expected length-delimited wire type, got %d", f.Name(), wireType)
		}
		subMD, ferr := reg.FindMessage(f.TypeName())
		if ferr != nil {
			return ferr
		}
		sub := dynamic.NewMessage(subMD)
		if derr := decodeInto(sub, payload, reg, depth+1, opts); derr != nil {
			return derr
		}
		val = sub
	} else {
		val, err = decodeScalarPayload(f.Kind(), wireType, payload)
		if err != nil {
			return err
		}
	}
	list := getOrCreateList(msg, f)
	list.Append(val)
	return msg.Set(f.Number(), list)
}

func decodeMapField(msg *dynamic.Message, f *desc.Field, wireType int, payload []byte, reg *registry.Registry, depth int, opts Options) error {
	if wireType != WireBytes {
		return errs.New(errs.WireTypeMismatch, "field %q: map entries must be length-delimited", f.Name())
	}
	key, value, err := decodeMapEntry(payload, f.MapEntry(), reg, depth, opts)
	if err != nil {
		return err
	}
	var target *dynamic.Map
	if has, _ := msg.Has(f.Number()); has {
		existing, _ := msg.Get(f.Number())
		target = existing.(*dynamic.Map)
	} else {
		target = dynamic.NewMap()
	}
	target.Set(key, value) // last-wins on duplicate keys
	return msg.Set(f.Number(), target)
}

func decodeMapEntry(payload []byte, me *desc.MapEntryDescriptor, reg *registry.Registry, depth int, opts Options) (interface{}, interface{}, error) {
	key := zeroScalarForKind(me.KeyKind)
	var value interface{}
	var valueMsg *dynamic.Message
	if me.ValueKind == desc.MessageKind {
		subMD, err := reg.FindMessage(me.ValueTypeName)
		if err != nil {
			return nil, nil, err
		}
		valueMsg = dynamic.NewMessage(subMD)
		value = valueMsg
	} else {
		value = zeroScalarForKind(me.ValueKind)
	}

	off := 0
	for off < len(payload) {
		fieldNumber, wireType, fpayload, _, newOff, err := readField(payload, off)
		if err != nil {
			return nil, nil, err
		}
		switch fieldNumber {
		case 1:
			v, err := decodeScalarPayload(me.KeyKind, wireType, fpayload)
			if err != nil {
				return nil, nil, errs.New(errs.MalformedMapEntry, "invalid map key: %v", err)
			}
			key = v
		case 2:
			if me.ValueKind == desc.MessageKind {
				if wireType != WireBytes {
					return nil, nil, errs.New(errs.MalformedMapEntry, "map value wire type mismatch")
				}
				if err := decodeInto(valueMsg, fpayload, reg, depth+1, opts); err != nil {
					return nil, nil, err
				}
			} else {
				v, err := decodeScalarPayload(me.ValueKind, wireType, fpayload)
				if err != nil {
					return nil, nil, errs.New(errs.MalformedMapEntry, "invalid map value: %v", err)
				}
				value = v
			}
		}
		off = newOff
	}
	return key, value, nil
}

func getOrCreateList(msg *dynamic.Message, f *desc.Field) *dynamic.List {
	if has, _ := msg.Has(f.Number()); has {
		v, _ := msg.Get(f.Number())
		return v.(*dynamic.List)
	}
	return dynamic.NewList()
}

// decodePackedElements decodes a concatenated run of untagged scalar
// encodings from a packed-repeated payload.
func decodePackedElements(payload []byte, kind desc.Kind) ([]interface{}, error) {
	elemWireType := scalarWireType(kind)
	var out []interface{}
	off := 0
	for off < len(payload) {
		switch elemWireType {
		case WireVarint:
			raw, n, err := consumeVarint(payload, off)
			if err != nil {
				return nil, errs.WithOffset(errs.MalformedPackedField, off, "malformed packed varint element")
			}
			v, err := varintToValue(kind, raw)
			if err != nil {
				return nil, err
			}
			out = append(out, v)
			off += n
		case WireFixed32:
			raw, err := consumeFixed32(payload, off)
			if err != nil {
				return nil, errs.WithOffset(errs.MalformedPackedField, off, "malformed packed fixed32 element")
			}
			v, err := fixed32ToValue(kind, raw)
			if err != nil {
				return nil, err
			}
			out = append(out, v)
			off += 4
		case WireFixed64:
			raw, err := consumeFixed64(payload, off)
			if err != nil {
				return nil, errs.WithOffset(errs.MalformedPackedField, off, "malformed packed fixed64 element")
			}
			v, err := fixed64ToValue(kind, raw)
			if err != nil {
				return nil, err
			}
			out = append(out, v)
			off += 8
		default:
			return nil, errs.New(errs.MalformedPackedField, "kind %v is not packable", kind)
		}
	}
	return out, nil
}

func decodeScalarPayload(kind desc.Kind, wireType int, payload []byte) (interface{}, error) {
	switch wireType {
	case WireVarint:
		raw, _, err := consumeVarint(payload, 0)
		if err != nil {
			return nil, err
		}
		return varintToValue(kind, raw)
	case WireFixed32:
		raw, err := consumeFixed32(payload, 0)
		if err != nil {
			return nil, err
		}
		return fixed32ToValue(kind, raw)
	case WireFixed64:
		raw, err := consumeFixed64(payload, 0)
		if err != nil {
			return nil, err
		}
		return fixed64ToValue(kind, raw)
	case WireBytes:
		switch kind {
		case desc.StringKind:
			return string(payload), nil
		case desc.BytesKind:
			return append([]byte(nil), payload...), nil
		default:
			return nil, errs.New(errs.WireTypeMismatch, "kind %v cannot be length-delimited", kind)
		}
	default:
		return nil, errs.New(errs.InvalidWireType, "unsupported wire type %d", wireType)
	}
}

func varintToValue(kind desc.Kind, raw uint64) (interface{}, error) {
	switch kind {
	case desc.BoolKind:
		return raw != 0, nil
	case desc.EnumKind:
		return int32(int64(raw)), nil
	case desc.Int32Kind:
		return int32(int64(raw)), nil
	case desc.Sint32Kind:
		return unzigzag32(uint32(raw)), nil
	case desc.Uint32Kind:
		return uint32(raw), nil
	case desc.Int64Kind:
		return int64(raw), nil
	case desc.Sint64Kind:
		return unzigzag64(raw), nil
	case desc.Uint64Kind:
		return raw, nil
	default:
		return nil, errs.New(errs.WireTypeMismatch, "kind %v cannot use varint wire type", kind)
	}
}

func fixed32ToValue(kind desc.Kind, raw uint32) (interface{}, error) {
	switch kind {
	case desc.Fixed32Kind:
		return raw, nil
	case desc.Sfixed32Kind:
		return int32(raw), nil
	case desc.FloatKind:
		return math.Float32frombits(raw), nil
	default:
		return nil, errs.New(errs.WireTypeMismatch, "kind %v cannot use fixed32 wire type", kind)
	}
}

func fixed64ToValue(kind desc.Kind, raw uint64) (interface{}, error) {
	switch kind {
	case desc.Fixed64Kind:
		return raw, nil
	case desc.Sfixed64Kind:
		return int64(raw), nil
	case desc.DoubleKind:
		return math.Float64frombits(raw), nil
	default:
		return nil, errs.New(errs.WireTypeMismatch, "kind %v cannot use fixed64 wire type", kind)
	}
}

func zeroScalarForKind(kind desc.Kind) interface{} {
	switch kind {
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
	default:
		return nil
	}
}
