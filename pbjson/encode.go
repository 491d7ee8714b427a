package pbjson

import (
	"encoding/base64"
	"sort"
	"strconv"
	"strings"

	"github.com/proto3reflect/dynproto/desc"
	"github.com/proto3reflect/dynproto/dynamic"
	"github.com/proto3reflect/dynproto/internal/errs"
	"github.com/proto3reflect/dynproto/internal/jsontext"
	"github.com/proto3reflect/dynproto/registry"
	"github.com/proto3reflect/dynproto/wellknown"
)

// Marshal renders m as canonical proto3 JSON text. reg resolves the
// embedded types of enum fields and google.protobuf.Any payloads.
func Marshal(m *dynamic.Message, reg *registry.Registry, opts MarshalOptions) (string, error) {
	me := &marshaler{enc: jsontext.NewEncoder(), reg: reg, opts: opts}
	if err := me.marshalMessage(m); err != nil {
		return "", err
	}
	return me.enc.String(), nil
}

type marshaler struct {
	enc   *jsontext.Encoder
	reg   *registry.Registry
	opts  MarshalOptions
	depth int
}

func (e *marshaler) marshalMessage(m *dynamic.Message) error {
	e.depth++
	defer func() { e.depth-- }()
	if e.depth > e.opts.recursionLimit() {
		return errs.New(errs.RecursionLimitExceeded, "recursion limit %d exceeded while marshaling JSON", e.opts.recursionLimit())
	}
	fullName := m.Descriptor().FullName()
	switch fullName {
	case wellknown.TimestampFullName:
		return e.marshalTimestamp(m)
	case wellknown.DurationFullName:
		return e.marshalDuration(m)
	case wellknown.EmptyFullName:
		e.enc.StartObject()
		e.enc.EndObject()
		return nil
	case wellknown.FieldMaskFullName:
		return e.marshalFieldMask(m)
	case wellknown.StructFullName:
		v, err := wellknown.StructToMap(m)
		if err != nil {
			return err
		}
		return e.marshalGoValue(v)
	case wellknown.ValueFullName:
		v, err := wellknown.ValueToGo(m)
		if err != nil {
			return err
		}
		return e.marshalGoValue(v)
	case wellknown.ListValueFullName:
		v, err := wellknown.ListValueToSlice(m)
		if err != nil {
			return err
		}
		return e.marshalGoValue(v)
	case wellknown.AnyFullName:
		return e.marshalAny(m)
	}
	if wellknown.WrapperDescriptor(fullName) != nil {
		v, err := wellknown.WrapperValue(m)
		if err != nil {
			return err
		}
		f, _ := m.Descriptor().FieldByName("value")
		return e.marshalSingular(f.Kind(), f.TypeName(), v)
	}
	e.enc.StartObject()
	if err := e.marshalFields(m); err != nil {
		return err
	}
	e.enc.EndObject()
	return nil
}

// marshalFields writes a message's field name/value pairs without the
// enclosing braces, so google.protobuf.Any can splice them directly into
// its own object when the packed type is not itself a well-known type.
func (e *marshaler) marshalFields(m *dynamic.Message) error {
	md := m.Descriptor()
	for _, f := range md.Fields() {
		has, err := m.Has(f.Number())
		if err != nil {
			return err
		}
		if !has {
			if f.HasExplicitPresence() || !e.opts.EmitDefaults {
				continue
			}
		}
		v, err := m.Get(f.Number())
		if err != nil {
			return err
		}
		name := f.JSONName()
		if e.opts.UseProtoNames {
			name = f.Name()
		}
		e.enc.WriteName(name)
		if err := e.marshalValue(f, v); err != nil {
			return err
		}
	}
	return nil
}

func (e *marshaler) marshalValue(f *desc.Field, v interface{}) error {
	switch {
	case f.IsMap():
		return e.marshalMap(f, v.(*dynamic.Map))
	case f.IsRepeated():
		return e.marshalList(f, v.(*dynamic.List))
	default:
		return e.marshalSingular(f.Kind(), f.TypeName(), v)
	}
}

func (e *marshaler) marshalList(f *desc.Field, list *dynamic.List) error {
	e.enc.StartArray()
	for i := 0; i < list.Len(); i++ {
		if err := e.marshalSingular(f.Kind(), f.TypeName(), list.Get(i)); err != nil {
			return err
		}
	}
	e.enc.EndArray()
	return nil
}

func (e *marshaler) marshalMap(f *desc.Field, m *dynamic.Map) error {
	me := f.MapEntry()
	e.enc.StartObject()
	var err error
	m.Range(func(key, value interface{}) bool {
		e.enc.WriteName(mapKeyToJSON(key))
		if err = e.marshalSingular(me.ValueKind, me.ValueTypeName, value); err != nil {
			return false
		}
		return true
	})
	if err != nil {
		return err
	}
	e.enc.EndObject()
	return nil
}

func mapKeyToJSON(key interface{}) string {
	switch k := key.(type) {
	case string:
		return k
	case bool:
		if k {
			return "true"
		}
		return "false"
	case int32:
		return strconv.FormatInt(int64(k), 10)
	case int64:
		return strconv.FormatInt(k, 10)
	case uint32:
		return strconv.FormatUint(uint64(k), 10)
	case uint64:
		return strconv.FormatUint(k, 10)
	default:
		return ""
	}
}

func (e *marshaler) marshalSingular(kind desc.Kind, typeName string, v interface{}) error {
	switch kind {
	case desc.BoolKind:
		e.enc.WriteBool(v.(bool))
	case desc.StringKind:
		e.enc.WriteString(v.(string))
	case desc.BytesKind:
		e.enc.WriteString(base64.StdEncoding.EncodeToString(v.([]byte)))
	case desc.Int32Kind, desc.Sint32Kind, desc.Sfixed32Kind:
		e.enc.WriteInt(int64(v.(int32)))
	case desc.Uint32Kind, desc.Fixed32Kind:
		e.enc.WriteUint(uint64(v.(uint32)))
	case desc.Int64Kind, desc.Sint64Kind, desc.Sfixed64Kind:
		e.enc.WriteString(strconv.FormatInt(v.(int64), 10))
	case desc.Uint64Kind, desc.Fixed64Kind:
		e.enc.WriteString(strconv.FormatUint(v.(uint64), 10))
	case desc.FloatKind:
		e.enc.WriteFloat(float64(v.(float32)), 32)
	case desc.DoubleKind:
		e.enc.WriteFloat(v.(float64), 64)
	case desc.EnumKind:
		return e.marshalEnum(typeName, v.(int32))
	case desc.MessageKind:
		sub, ok := v.(*dynamic.Message)
		if !ok || sub == nil {
			e.enc.WriteNull()
			return nil
		}
		return e.marshalMessage(sub)
	default:
		return errs.New(errs.TypeMismatch, "pbjson: cannot marshal value of kind %v", kind)
	}
	return nil
}

func (e *marshaler) marshalEnum(typeName string, number int32) error {
	ed, err := e.reg.FindEnum(typeName)
	if err != nil {
		return err
	}
	if v, ok := ed.ValueByNumber(number); ok {
		e.enc.WriteString(v.Name)
		return nil
	}
	// Unknown value (e.g. produced by a peer built against a newer enum
	// definition): fall back to the bare integer.
	e.enc.WriteInt(int64(number))
	return nil
}

func (e *marshaler) marshalTimestamp(m *dynamic.Message) error {
	t, err := wellknown.TimestampToTime(m)
	if err != nil {
		return errs.New(errs.JsonFormat, "%v", err)
	}
	e.enc.WriteString(t.UTC().Format("2006-01-02T15:04:05.999999999Z"))
	return nil
}

func (e *marshaler) marshalDuration(m *dynamic.Message) error {
	secV, err := m.Get("seconds")
	if err != nil {
		return err
	}
	nanosV, err := m.Get("nanos")
	if err != nil {
		return err
	}
	secs := secV.(int64)
	nanos := nanosV.(int32)
	neg := secs < 0 || nanos < 0
	if secs < 0 {
		secs = -secs
	}
	if nanos < 0 {
		nanos = -nanos
	}
	var sb strings.Builder
	if neg {
		sb.WriteByte('-')
	}
	sb.WriteString(strconv.FormatInt(secs, 10))
	if nanos != 0 {
		frac := strconv.FormatInt(int64(nanos), 10)
		for len(frac) < 9 {
			frac = "0" + frac
		}
		switch {
		case nanos%1e6 == 0:
			frac = frac[:3]
		case nanos%1e3 == 0:
			frac = frac[:6]
		}
		sb.WriteByte('.')
		sb.WriteString(frac)
	}
	sb.WriteByte('s')
	e.enc.WriteString(sb.String())
	return nil
}

func (e *marshaler) marshalFieldMask(m *dynamic.Message) error {
	paths, err := wellknown.FieldMaskPaths(m)
	if err != nil {
		return err
	}
	parts := make([]string, len(paths))
	for i, p := range paths {
		segs := strings.Split(p, ".")
		for j, seg := range segs {
			segs[j] = snakeToCamel(seg)
		}
		parts[i] = strings.Join(segs, ".")
	}
	e.enc.WriteString(strings.Join(parts, ","))
	return nil
}

func snakeToCamel(s string) string {
	out := make([]byte, 0, len(s))
	upperNext := false
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c == '_' {
			upperNext = true
			continue
		}
		if upperNext && c >= 'a' && c <= 'z' {
			c -= 'a' - 'A'
		}
		upperNext = false
		out = append(out, c)
	}
	return string(out)
}

func (e *marshaler) marshalAny(m *dynamic.Message) error {
	typeURLV, err := m.Get("type_url")
	if err != nil {
		return err
	}
	typeURL := typeURLV.(string)
	fullName, err := wellknown.AnyTypeName(m)
	if err != nil {
		return err
	}
	sub, err := wellknown.UnpackAny(m, e.reg)
	if err != nil {
		return err
	}
	e.enc.StartObject()
	e.enc.WriteName("@type")
	e.enc.WriteString(typeURL)
	if wellknown.IsWellKnown(fullName) {
		e.enc.WriteName("value")
		if err := e.marshalMessage(sub); err != nil {
			return err
		}
	} else if err := e.marshalFields(sub); err != nil {
		return err
	}
	e.enc.EndObject()
	return nil
}

// marshalGoValue renders the generic tree StructToMap/ValueToGo/
// ListValueToSlice produce (nil, bool, float64, string, map[string]any,
// []any) as plain JSON, used for google.protobuf.Struct/Value/ListValue.
func (e *marshaler) marshalGoValue(v interface{}) error {
	switch vv := v.(type) {
	case nil:
		e.enc.WriteNull()
	case bool:
		e.enc.WriteBool(vv)
	case float64:
		e.enc.WriteFloat(vv, 64)
	case string:
		e.enc.WriteString(vv)
	case map[string]interface{}:
		keys := make([]string, 0, len(vv))
		for k := range vv {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		e.enc.StartObject()
		for _, k := range keys {
			e.enc.WriteName(k)
			if err := e.marshalGoValue(vv[k]); err != nil {
				return err
			}
		}
		e.enc.EndObject()
	case []interface{}:
		e.enc.StartArray()
		for _, elem := range vv {
			if err := e.marshalGoValue(elem); err != nil {
				return err
			}
		}
		e.enc.EndArray()
	default:
		return errs.New(errs.TypeMismatch, "pbjson: cannot render %T as a google.protobuf.Value", v)
	}
	return nil
}
