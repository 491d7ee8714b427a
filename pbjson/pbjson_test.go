package pbjson_test

import (
	"math"
	"strings"
	"testing"

	"github.com/proto3reflect/dynproto/desc"
	"github.com/proto3reflect/dynproto/dynamic"
	"github.com/proto3reflect/dynproto/pbjson"
	"github.com/proto3reflect/dynproto/registry"
	"github.com/proto3reflect/dynproto/wellknown"
)

func personDescriptor(reg *registry.Registry) *desc.Message {
	status := desc.NewEnum("Status")
	status.AddValue(&desc.EnumValue{Name: "ACTIVE", Number: 0})
	status.AddValue(&desc.EnumValue{Name: "INACTIVE", Number: 1})

	m := desc.NewMessageWithFullName("my.pkg.Person")
	fullName, _ := desc.NewField(desc.FieldOptions{Name: "full_name", Number: 1, Kind: desc.StringKind})
	id, _ := desc.NewField(desc.FieldOptions{Name: "id", Number: 2, Kind: desc.Int64Kind})
	st, _ := desc.NewField(desc.FieldOptions{Name: "status", Number: 3, Kind: desc.EnumKind, TypeName: "my.pkg.Status"})
	tags, _ := desc.NewField(desc.FieldOptions{Name: "tags", Number: 4, Kind: desc.StringKind, IsRepeated: true})
	m.AddField(fullName)
	m.AddField(id)
	m.AddField(st)
	m.AddField(tags)

	status.SetAllowAlias(false)
	statusWithFullName := desc.NewEnumWithFullName("my.pkg.Status")
	for _, v := range status.Values() {
		statusWithFullName.AddValue(v)
	}
	reg.RegisterEnum(statusWithFullName)
	reg.RegisterMessage(m)
	return m
}

func TestMarshalCamelCaseNamesAndInt64AsString(t *testing.T) {
	reg := registry.New()
	md := personDescriptor(reg)
	m := dynamic.NewMessage(md)
	m.Set("full_name", "Ada Lovelace")
	m.Set("id", int64(9223372036854775807))
	m.Set("status", int32(1))

	out, err := pbjson.Marshal(m, reg, pbjson.MarshalOptions{})
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, `"fullName":"Ada Lovelace"`) {
		t.Errorf("expected lowerCamelCase key, got %s", out)
	}
	if !strings.Contains(out, `"id":"9223372036854775807"`) {
		t.Errorf("expected int64 rendered as a quoted string, got %s", out)
	}
	if !strings.Contains(out, `"status":"INACTIVE"`) {
		t.Errorf("expected enum rendered by name, got %s", out)
	}
}

func TestMarshalUseProtoNames(t *testing.T) {
	reg := registry.New()
	md := personDescriptor(reg)
	m := dynamic.NewMessage(md)
	m.Set("full_name", "Ada")

	out, err := pbjson.Marshal(m, reg, pbjson.MarshalOptions{UseProtoNames: true})
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, `"full_name":"Ada"`) {
		t.Errorf("expected proto_name key with UseProtoNames, got %s", out)
	}
}

func TestUnmarshalAcceptsBothNameStyles(t *testing.T) {
	reg := registry.New()
	md := personDescriptor(reg)

	for _, in := range []string{
		`{"fullName":"Ada","id":"42","status":"ACTIVE"}`,
		`{"full_name":"Ada","id":42,"status":0}`,
	} {
		m, err := pbjson.Unmarshal(in, md, reg, pbjson.UnmarshalOptions{})
		if err != nil {
			t.Fatalf("Unmarshal(%s): %v", in, err)
		}
		v, _ := m.Get("full_name")
		if v != "Ada" {
			t.Errorf("Unmarshal(%s): full_name = %v, want Ada", in, v)
		}
		id, _ := m.Get("id")
		if id != int64(42) {
			t.Errorf("Unmarshal(%s): id = %v, want 42", in, id)
		}
	}
}

func TestUnmarshalRejectUnknownFields(t *testing.T) {
	reg := registry.New()
	md := personDescriptor(reg)
	_, err := pbjson.Unmarshal(`{"bogus":1}`, md, reg, pbjson.UnmarshalOptions{RejectUnknownFields: true})
	if err == nil {
		t.Error("expected an error for an unknown field with RejectUnknownFields set")
	}
	_, err = pbjson.Unmarshal(`{"bogus":1}`, md, reg, pbjson.UnmarshalOptions{})
	if err != nil {
		t.Errorf("expected unknown fields to be silently ignored by default, got %v", err)
	}
}

func TestMarshalUnmarshalWellKnownTimestamp(t *testing.T) {
	reg := registry.New()
	wellknown.Register(reg)
	tsMD := wellknown.TimestampDescriptor()

	m, err := pbjson.Unmarshal(`"2024-03-15T08:30:00.123Z"`, tsMD, reg, pbjson.UnmarshalOptions{})
	if err != nil {
		t.Fatal(err)
	}
	out, err := pbjson.Marshal(m, reg, pbjson.MarshalOptions{})
	if err != nil {
		t.Fatal(err)
	}
	if out != `"2024-03-15T08:30:00.123Z"` {
		t.Errorf("Marshal(Timestamp) = %s, want \"2024-03-15T08:30:00.123Z\"", out)
	}
}

func TestMarshalFloatNaNAndEmptyBytes(t *testing.T) {
	reg := registry.New()
	m := desc.NewMessage("Sample")
	score, _ := desc.NewField(desc.FieldOptions{Name: "score", Number: 1, Kind: desc.DoubleKind})
	blob, _ := desc.NewField(desc.FieldOptions{Name: "blob", Number: 2, Kind: desc.BytesKind, IsOptional: true})
	m.AddField(score)
	m.AddField(blob)
	reg.RegisterMessage(m)

	msg := dynamic.NewMessage(m)
	msg.Set("score", math.NaN())
	msg.Set("blob", []byte{})

	out, err := pbjson.Marshal(msg, reg, pbjson.MarshalOptions{})
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, `"score":"NaN"`) {
		t.Errorf("expected NaN rendered as the string \"NaN\", got %s", out)
	}
	if !strings.Contains(out, `"blob":""`) {
		t.Errorf("expected empty bytes field rendered as an empty JSON string, got %s", out)
	}
}

func TestMarshalRecursionLimitExceeded(t *testing.T) {
	reg := registry.New()
	m := desc.NewMessage("Node")
	next, _ := desc.NewField(desc.FieldOptions{Name: "next", Number: 1, Kind: desc.MessageKind, TypeName: "Node"})
	m.AddField(next)
	reg.RegisterMessage(m)

	root := dynamic.NewMessage(m)
	cur := root
	for i := 0; i < 5; i++ {
		child := dynamic.NewMessage(m)
		cur.Set("next", child)
		cur = child
	}

	_, err := pbjson.Marshal(root, reg, pbjson.MarshalOptions{RecursionLimit: 2})
	if err == nil {
		t.Error("expected recursion limit error when marshaling a chain deeper than the limit")
	}
}

func TestMarshalEmitDefaults(t *testing.T) {
	reg := registry.New()
	md := personDescriptor(reg)
	m := dynamic.NewMessage(md)

	out, err := pbjson.Marshal(m, reg, pbjson.MarshalOptions{EmitDefaults: true})
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, `"fullName":""`) {
		t.Errorf("expected empty string field to be emitted with EmitDefaults, got %s", out)
	}
	if !strings.Contains(out, `"tags":[]`) {
		t.Errorf("expected empty repeated field to be emitted with EmitDefaults, got %s", out)
	}
}
