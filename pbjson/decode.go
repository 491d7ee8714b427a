package pbjson

import (
	"encoding/base64"
	"encoding/json"
	"io"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/proto3reflect/dynproto/desc"
	"github.com/proto3reflect/dynproto/dynamic"
	"github.com/proto3reflect/dynproto/internal/errs"
	"github.com/proto3reflect/dynproto/registry"
	"github.com/proto3reflect/dynproto/wellknown"
	"github.com/proto3reflect/dynproto/wire"
)

// Unmarshal parses JSON text s into a dynamic message conformant to md.
// Generic JSON syntax (object/array/string/number/bool/null
// tokenizing) is delegated to the standard library's decoder in
// UseNumber mode, which preserves exact numeric text instead of rounding
// through float64; every proto3-specific semantic — field-name resolution,
// int64-as-string, enum name lookup, well-known-type special casing — is
// applied on top of the resulting generic tree by this package.
func Unmarshal(s string, md *desc.Message, reg *registry.Registry, opts UnmarshalOptions) (*dynamic.Message, error) {
	dec := json.NewDecoder(strings.NewReader(s))
	dec.UseNumber()
	var raw interface{}
	if err := dec.Decode(&raw); err != nil {
		return nil, errs.New(errs.JsonFormat, "invalid JSON: %v", err)
	}
	var trailing interface{}
	if err := dec.Decode(&trailing); err != io.EOF {
		return nil, errs.New(errs.JsonFormat, "trailing data after top-level JSON value")
	}
	u := &unmarshaler{reg: reg, opts: opts}
	return u.unmarshalMessage(raw, md)
}

type unmarshaler struct {
	reg   *registry.Registry
	opts  UnmarshalOptions
	depth int
}

func (u *unmarshaler) unmarshalMessage(raw interface{}, md *desc.Message) (*dynamic.Message, error) {
	u.depth++
	defer func() { u.depth-- }()
	if u.depth > u.opts.recursionLimit() {
		return nil, errs.New(errs.RecursionLimitExceeded, "recursion limit %d exceeded while unmarshaling JSON", u.opts.recursionLimit())
	}
	fullName := md.FullName()
	switch fullName {
	case wellknown.TimestampFullName:
		return u.unmarshalTimestamp(raw, md)
	case wellknown.DurationFullName:
		return u.unmarshalDuration(raw, md)
	case wellknown.EmptyFullName:
		if _, ok := raw.(map[string]interface{}); !ok {
			return nil, errs.New(errs.JsonFormat, "expected JSON object for google.protobuf.Empty")
		}
		return dynamic.NewMessage(md), nil
	case wellknown.FieldMaskFullName:
		return u.unmarshalFieldMask(raw, md)
	case wellknown.StructFullName:
		obj, ok := raw.(map[string]interface{})
		if !ok {
			return nil, errs.New(errs.JsonFormat, "expected JSON object for google.protobuf.Struct")
		}
		return wellknown.NewStruct(normalizeJSON(obj).(map[string]interface{}))
	case wellknown.ValueFullName:
		return wellknown.NewValue(normalizeJSON(raw))
	case wellknown.ListValueFullName:
		arr, ok := raw.([]interface{})
		if !ok {
			return nil, errs.New(errs.JsonFormat, "expected JSON array for google.protobuf.ListValue")
		}
		return wellknown.NewListValue(normalizeJSON(arr).([]interface{}))
	case wellknown.AnyFullName:
		return u.unmarshalAny(raw, md)
	}
	if wellknown.WrapperDescriptor(fullName) != nil {
		f, _ := md.FieldByName("value")
		v, err := u.unmarshalSingular(raw, f.Kind(), f.TypeName())
		if err != nil {
			return nil, err
		}
		m := dynamic.NewMessage(md)
		if err := m.Set(f.Number(), v); err != nil {
			return nil, err
		}
		return m, nil
	}

	obj, ok := raw.(map[string]interface{})
	if !ok {
		return nil, errs.New(errs.JsonFormat, "expected JSON object for message %q", fullName)
	}
	m := dynamic.NewMessage(md)
	for key, v := range obj {
		f := findField(md, key)
		if f == nil {
			if u.opts.RejectUnknownFields {
				return nil, errs.New(errs.UnknownFieldForbidden, "unknown field %q for message %q", key, fullName)
			}
			continue
		}
		if v == nil {
			continue // explicit null means "leave this field at its default"
		}
		val, err := u.unmarshalValue(v, f)
		if err != nil {
			return nil, err
		}
		if err := m.Set(f.Number(), val); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func findField(md *desc.Message, key string) *desc.Field {
	for _, f := range md.Fields() {
		if f.JSONName() == key || f.Name() == key {
			return f
		}
	}
	return nil
}

func (u *unmarshaler) unmarshalValue(raw interface{}, f *desc.Field) (interface{}, error) {
	if f.IsMap() {
		return u.unmarshalMap(raw, f)
	}
	if f.IsRepeated() {
		return u.unmarshalList(raw, f)
	}
	return u.unmarshalSingular(raw, f.Kind(), f.TypeName())
}

func (u *unmarshaler) unmarshalList(raw interface{}, f *desc.Field) (*dynamic.List, error) {
	if raw == nil {
		return dynamic.NewList(), nil
	}
	arr, ok := raw.([]interface{})
	if !ok {
		return nil, errs.New(errs.JsonFormat, "expected JSON array for repeated field %q", f.Name())
	}
	list := dynamic.NewList()
	for _, elem := range arr {
		v, err := u.unmarshalSingular(elem, f.Kind(), f.TypeName())
		if err != nil {
			return nil, err
		}
		list.Append(v)
	}
	return list, nil
}

func (u *unmarshaler) unmarshalMap(raw interface{}, f *desc.Field) (*dynamic.Map, error) {
	if raw == nil {
		return dynamic.NewMap(), nil
	}
	obj, ok := raw.(map[string]interface{})
	if !ok {
		return nil, errs.New(errs.JsonFormat, "expected JSON object for map field %q", f.Name())
	}
	me := f.MapEntry()
	m := dynamic.NewMap()
	for k, v := range obj {
		key, err := parseMapKey(k, me.KeyKind)
		if err != nil {
			return nil, err
		}
		val, err := u.unmarshalSingular(v, me.ValueKind, me.ValueTypeName)
		if err != nil {
			return nil, err
		}
		m.Set(key, val)
	}
	return m, nil
}

func parseMapKey(k string, kind desc.Kind) (interface{}, error) {
	switch kind {
	case desc.StringKind:
		return k, nil
	case desc.BoolKind:
		switch k {
		case "true":
			return true, nil
		case "false":
			return false, nil
		}
		return nil, errs.New(errs.MapKeyInvalid, "invalid bool map key %q", k)
	case desc.Int32Kind, desc.Sint32Kind, desc.Sfixed32Kind:
		n, err := strconv.ParseInt(k, 10, 32)
		if err != nil {
			return nil, errs.New(errs.MapKeyInvalid, "invalid int32 map key %q: %v", k, err)
		}
		return int32(n), nil
	case desc.Uint32Kind, desc.Fixed32Kind:
		n, err := strconv.ParseUint(k, 10, 32)
		if err != nil {
			return nil, errs.New(errs.MapKeyInvalid, "invalid uint32 map key %q: %v", k, err)
		}
		return uint32(n), nil
	case desc.Int64Kind, desc.Sint64Kind, desc.Sfixed64Kind:
		n, err := strconv.ParseInt(k, 10, 64)
		if err != nil {
			return nil, errs.New(errs.MapKeyInvalid, "invalid int64 map key %q: %v", k, err)
		}
		return n, nil
	case desc.Uint64Kind, desc.Fixed64Kind:
		n, err := strconv.ParseUint(k, 10, 64)
		if err != nil {
			return nil, errs.New(errs.MapKeyInvalid, "invalid uint64 map key %q: %v", k, err)
		}
		return n, nil
	default:
		return nil, errs.New(errs.MapKeyInvalid, "kind %v is not a valid map key type", kind)
	}
}

func (u *unmarshaler) unmarshalSingular(raw interface{}, kind desc.Kind, typeName string) (interface{}, error) {
	switch kind {
	case desc.BoolKind:
		b, ok := raw.(bool)
		if !ok {
			return nil, errs.New(errs.JsonFormat, "expected JSON bool, got %T", raw)
		}
		return b, nil
	case desc.StringKind:
		s, ok := raw.(string)
		if !ok {
			return nil, errs.New(errs.JsonFormat, "expected JSON string, got %T", raw)
		}
		return s, nil
	case desc.BytesKind:
		s, ok := raw.(string)
		if !ok {
			return nil, errs.New(errs.JsonFormat, "expected base64 JSON string, got %T", raw)
		}
		b, err := decodeBase64Tolerant(s)
		if err != nil {
			return nil, errs.New(errs.InvalidBase64, "invalid base64 %q: %v", s, err)
		}
		return b, nil
	case desc.Int32Kind, desc.Sint32Kind, desc.Sfixed32Kind:
		n, err := parseJSONInt(raw, 32)
		return int32(n), err
	case desc.Uint32Kind, desc.Fixed32Kind:
		n, err := parseJSONUint(raw, 32)
		return uint32(n), err
	case desc.Int64Kind, desc.Sint64Kind, desc.Sfixed64Kind:
		return parseJSONInt(raw, 64)
	case desc.Uint64Kind, desc.Fixed64Kind:
		return parseJSONUint(raw, 64)
	case desc.FloatKind:
		f, err := parseJSONFloat(raw)
		return float32(f), err
	case desc.DoubleKind:
		return parseJSONFloat(raw)
	case desc.EnumKind:
		return u.unmarshalEnum(raw, typeName)
	case desc.MessageKind:
		subMD, err := u.reg.FindMessage(typeName)
		if err != nil {
			return nil, err
		}
		return u.unmarshalMessage(raw, subMD)
	default:
		return nil, errs.New(errs.JsonFormat, "pbjson: cannot unmarshal value of kind %v", kind)
	}
}

func parseJSONInt(raw interface{}, bits int) (int64, error) {
	var text string
	switch v := raw.(type) {
	case json.Number:
		text = string(v)
	case string:
		text = v
	default:
		return 0, errs.New(errs.JsonFormat, "expected number or numeric string, got %T", raw)
	}
	n, err := strconv.ParseInt(text, 10, bits)
	if err != nil {
		return 0, errs.New(errs.NumberOutOfRange, "invalid integer %q: %v", text, err)
	}
	return n, nil
}

func parseJSONUint(raw interface{}, bits int) (uint64, error) {
	var text string
	switch v := raw.(type) {
	case json.Number:
		text = string(v)
	case string:
		text = v
	default:
		return 0, errs.New(errs.JsonFormat, "expected number or numeric string, got %T", raw)
	}
	n, err := strconv.ParseUint(text, 10, bits)
	if err != nil {
		return 0, errs.New(errs.NumberOutOfRange, "invalid unsigned integer %q: %v", text, err)
	}
	return n, nil
}

func parseJSONFloat(raw interface{}) (float64, error) {
	switch v := raw.(type) {
	case json.Number:
		f, err := strconv.ParseFloat(string(v), 64)
		if err != nil {
			return 0, errs.New(errs.NumberOutOfRange, "invalid number %q: %v", string(v), err)
		}
		return f, nil
	case string:
		switch v {
		case "NaN":
			return math.NaN(), nil
		case "Infinity":
			return math.Inf(1), nil
		case "-Infinity":
			return math.Inf(-1), nil
		}
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return 0, errs.New(errs.NumberOutOfRange, "invalid number %q: %v", v, err)
		}
		return f, nil
	default:
		return 0, errs.New(errs.JsonFormat, "expected number or numeric string, got %T", raw)
	}
}

func (u *unmarshaler) unmarshalEnum(raw interface{}, typeName string) (int32, error) {
	switch v := raw.(type) {
	case string:
		ed, err := u.reg.FindEnum(typeName)
		if err != nil {
			return 0, err
		}
		ev, ok := ed.ValueByName(v)
		if !ok {
			return 0, errs.New(errs.JsonFormat, "unknown enum value name %q for %q", v, typeName)
		}
		return ev.Number, nil
	case json.Number:
		n, err := strconv.ParseInt(string(v), 10, 32)
		if err != nil {
			return 0, errs.New(errs.NumberOutOfRange, "invalid enum number %q: %v", string(v), err)
		}
		return int32(n), nil
	default:
		return 0, errs.New(errs.JsonFormat, "expected enum name or number, got %T", raw)
	}
}

// decodeBase64Tolerant accepts any of the four common base64 variants
// (standard/URL-safe, padded/unpadded), as proto3 JSON decoders must.
func decodeBase64Tolerant(s string) ([]byte, error) {
	encodings := []*base64.Encoding{
		base64.StdEncoding, base64.RawStdEncoding,
		base64.URLEncoding, base64.RawURLEncoding,
	}
	var lastErr error
	for _, enc := range encodings {
		b, err := enc.DecodeString(s)
		if err == nil {
			return b, nil
		}
		lastErr = err
	}
	return nil, lastErr
}

func (u *unmarshaler) unmarshalTimestamp(raw interface{}, md *desc.Message) (*dynamic.Message, error) {
	s, ok := raw.(string)
	if !ok {
		return nil, errs.New(errs.JsonFormat, "expected RFC3339 string for google.protobuf.Timestamp")
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return nil, errs.New(errs.JsonFormat, "invalid RFC3339 timestamp %q: %v", s, err)
	}
	return wellknown.NewTimestamp(t), nil
}

func (u *unmarshaler) unmarshalDuration(raw interface{}, md *desc.Message) (*dynamic.Message, error) {
	s, ok := raw.(string)
	if !ok || !strings.HasSuffix(s, "s") {
		return nil, errs.New(errs.JsonFormat, "expected \"<seconds>s\" string for google.protobuf.Duration")
	}
	body := strings.TrimSuffix(s, "s")
	neg := strings.HasPrefix(body, "-")
	if neg {
		body = body[1:]
	}
	parts := strings.SplitN(body, ".", 2)
	secs, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil {
		return nil, errs.New(errs.JsonFormat, "invalid duration %q: %v", s, err)
	}
	var nanos int64
	if len(parts) == 2 {
		frac := parts[1]
		for len(frac) < 9 {
			frac += "0"
		}
		frac = frac[:9]
		nanos, err = strconv.ParseInt(frac, 10, 64)
		if err != nil {
			return nil, errs.New(errs.JsonFormat, "invalid duration %q: %v", s, err)
		}
	}
	if neg {
		secs = -secs
		nanos = -nanos
	}
	m := dynamic.NewMessage(md)
	if err := m.Set("seconds", secs); err != nil {
		return nil, err
	}
	if err := m.Set("nanos", int32(nanos)); err != nil {
		return nil, err
	}
	return m, nil
}

func (u *unmarshaler) unmarshalFieldMask(raw interface{}, md *desc.Message) (*dynamic.Message, error) {
	s, ok := raw.(string)
	if !ok {
		return nil, errs.New(errs.JsonFormat, "expected string for google.protobuf.FieldMask")
	}
	var paths []string
	if s != "" {
		for _, p := range strings.Split(s, ",") {
			segs := strings.Split(p, ".")
			for i, seg := range segs {
				segs[i] = camelToSnake(seg)
			}
			paths = append(paths, strings.Join(segs, "."))
		}
	}
	return wellknown.NewFieldMask(paths), nil
}

func camelToSnake(s string) string {
	var out []byte
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c >= 'A' && c <= 'Z' {
			out = append(out, '_', c+'a'-'A')
			continue
		}
		out = append(out, c)
	}
	return string(out)
}

func (u *unmarshaler) unmarshalAny(raw interface{}, md *desc.Message) (*dynamic.Message, error) {
	obj, ok := raw.(map[string]interface{})
	if !ok {
		return nil, errs.New(errs.JsonFormat, "expected JSON object for google.protobuf.Any")
	}
	typeURLRaw, ok := obj["@type"]
	if !ok {
		return nil, errs.New(errs.JsonFormat, "google.protobuf.Any JSON object missing \"@type\"")
	}
	typeURL, ok := typeURLRaw.(string)
	if !ok {
		return nil, errs.New(errs.JsonFormat, "\"@type\" must be a string")
	}
	idx := strings.LastIndex(typeURL, "/")
	if idx < 0 || idx == len(typeURL)-1 {
		return nil, errs.New(errs.JsonFormat, "malformed \"@type\" %q", typeURL)
	}
	fullName := typeURL[idx+1:]
	subMD, err := u.reg.FindMessage(fullName)
	if err != nil {
		return nil, err
	}

	var sub *dynamic.Message
	if wellknown.IsWellKnown(fullName) {
		valueRaw, ok := obj["value"]
		if !ok {
			valueRaw = map[string]interface{}{}
		}
		sub, err = u.unmarshalMessage(valueRaw, subMD)
	} else {
		fields := make(map[string]interface{}, len(obj))
		for k, v := range obj {
			if k != "@type" {
				fields[k] = v
			}
		}
		sub, err = u.unmarshalMessage(fields, subMD)
	}
	if err != nil {
		return nil, err
	}

	b, err := wire.Marshal(sub, wire.DefaultOptions())
	if err != nil {
		return nil, err
	}
	m := dynamic.NewMessage(md)
	if err := m.Set("type_url", typeURL); err != nil {
		return nil, err
	}
	if err := m.Set("value", b); err != nil {
		return nil, err
	}
	return m, nil
}

// normalizeJSON converts the json.Number leaves of a stdlib-decoded tree
// into float64, the shape wellknown.NewValue/NewStruct/NewListValue expect;
// everything else in the tree is already in that shape.
func normalizeJSON(v interface{}) interface{} {
	switch vv := v.(type) {
	case json.Number:
		f, _ := strconv.ParseFloat(string(vv), 64)
		return f
	case map[string]interface{}:
		out := make(map[string]interface{}, len(vv))
		for k, e := range vv {
			out[k] = normalizeJSON(e)
		}
		return out
	case []interface{}:
		out := make([]interface{}, len(vv))
		for i, e := range vv {
			out[i] = normalizeJSON(e)
		}
		return out
	default:
		return v
	}
}
