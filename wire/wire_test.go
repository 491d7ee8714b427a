package wire_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/proto3reflect/dynproto/desc"
	"github.com/proto3reflect/dynproto/dynamic"
	"github.com/proto3reflect/dynproto/registry"
	"github.com/proto3reflect/dynproto/wire"
)

func addr() *desc.Message {
	m := desc.NewMessage("Address")
	city, _ := desc.NewField(desc.FieldOptions{Name: "city", Number: 1, Kind: desc.StringKind})
	m.AddField(city)
	return m
}

func person(addrMD *desc.Message) *desc.Message {
	m := desc.NewMessage("Person")
	name, _ := desc.NewField(desc.FieldOptions{Name: "name", Number: 1, Kind: desc.StringKind})
	age, _ := desc.NewField(desc.FieldOptions{Name: "age", Number: 2, Kind: desc.Int32Kind})
	tags, _ := desc.NewField(desc.FieldOptions{Name: "tags", Number: 3, Kind: desc.Int32Kind, IsRepeated: true})
	home, _ := desc.NewField(desc.FieldOptions{Name: "home", Number: 4, Kind: desc.MessageKind, TypeName: "Address"})
	attrs, _ := desc.NewField(desc.FieldOptions{
		Name: "attrs", Number: 5, Kind: desc.MessageKind, TypeName: "Person.AttrsEntry",
		MapEntry: &desc.MapEntryDescriptor{KeyKind: desc.StringKind, ValueKind: desc.StringKind},
	})
	m.AddField(name)
	m.AddField(age)
	m.AddField(tags)
	m.AddField(home)
	m.AddField(attrs)
	return m
}

func testRegistry() (*registry.Registry, *desc.Message) {
	reg := registry.New()
	a := addr()
	p := person(a)
	reg.RegisterMessage(a)
	reg.RegisterMessage(p)
	return reg, p
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	reg, p := testRegistry()
	msg := dynamic.NewMessage(p)
	msg.Set("name", "Ada")
	msg.Set("age", int32(36))

	tags := dynamic.NewList()
	tags.Append(int32(1))
	tags.Append(int32(2))
	tags.Append(int32(3))
	msg.Set("tags", tags)

	aMD, _ := reg.FindMessage("Address")
	home := dynamic.NewMessage(aMD)
	home.Set("city", "London")
	msg.Set("home", home)

	attrs := dynamic.NewMap()
	attrs.Set("role", "engineer")
	msg.Set("attrs", attrs)

	b, err := wire.Marshal(msg, wire.DefaultOptions())
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}

	got, err := wire.Unmarshal(b, p, reg, wire.DefaultOptions())
	if err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if !got.Equal(msg) {
		t.Errorf("round trip mismatch:\n got  %+v\n want %+v", got, msg)
	}
}

func TestPackedAndUnpackedBothDecodeToSameList(t *testing.T) {
	reg, p := testRegistry()

	packed := []byte{
		0x1a, 0x03, 0x01, 0x02, 0x03, // tag 3, WireBytes, payload: varints 1,2,3
	}
	unpacked := []byte{
		0x18, 0x01, // tag 3, WireVarint, value 1
		0x18, 0x02,
		0x18, 0x03,
	}

	gotPacked, err := wire.Unmarshal(packed, p, reg, wire.DefaultOptions())
	if err != nil {
		t.Fatalf("Unmarshal(packed): %v", err)
	}
	gotUnpacked, err := wire.Unmarshal(unpacked, p, reg, wire.DefaultOptions())
	if err != nil {
		t.Fatalf("Unmarshal(unpacked): %v", err)
	}
	if !gotPacked.Equal(gotUnpacked) {
		t.Error("packed and unpacked encodings of the same repeated field must decode identically")
	}
}

func TestUnknownFieldsRoundTripThroughDecodeReencode(t *testing.T) {
	reg, p := testRegistry()
	// Field 99, varint wire type, value 7: tag = (99<<3)|0 = 792.
	raw := []byte{0x0a, 0x01, 0x41} // name = "A"
	raw = append(raw, encodeUnknownVarint(99, 7)...)

	got, err := wire.Unmarshal(raw, p, reg, wire.DefaultOptions())
	if err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if len(got.UnknownFields()) == 0 {
		t.Fatal("expected unknown field 99 to be preserved in the unknown-fields buffer")
	}

	reencoded, err := wire.Marshal(got, wire.DefaultOptions())
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	if !cmp.Equal(raw, reencoded) {
		t.Errorf("re-encoded bytes = %x, want %x", reencoded, raw)
	}
}

func encodeUnknownVarint(fieldNum int32, v uint64) []byte {
	tag := uint64(fieldNum)<<3 | 0
	var out []byte
	out = appendVarint(out, tag)
	out = appendVarint(out, v)
	return out
}

func appendVarint(out []byte, v uint64) []byte {
	for v >= 0x80 {
		out = append(out, byte(v)|0x80)
		v >>= 7
	}
	return append(out, byte(v))
}

func TestBoundaryWireEncodings(t *testing.T) {
	reg := registry.New()
	m := desc.NewMessage("Boundary")
	i32, _ := desc.NewField(desc.FieldOptions{Name: "i32", Number: 1, Kind: desc.Int32Kind})
	s32, _ := desc.NewField(desc.FieldOptions{Name: "s32", Number: 2, Kind: desc.Sint32Kind})
	packed, _ := desc.NewField(desc.FieldOptions{Name: "packed", Number: 3, Kind: desc.Int32Kind, IsRepeated: true})
	m.AddField(i32)
	m.AddField(s32)
	m.AddField(packed)
	reg.RegisterMessage(m)

	t.Run("int32 -1 encodes as a 10-byte varint", func(t *testing.T) {
		msg := dynamic.NewMessage(m)
		msg.Set("i32", int32(-1))
		got, err := wire.Marshal(msg, wire.DefaultOptions())
		if err != nil {
			t.Fatal(err)
		}
		want := []byte{0x08, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0x01}
		if !cmp.Equal(got, want) {
			t.Errorf("Marshal(int32=-1) = %x, want %x", got, want)
		}
	})

	t.Run("sint32 -1 zig-zags to varint 01", func(t *testing.T) {
		msg := dynamic.NewMessage(m)
		msg.Set("s32", int32(-1))
		got, err := wire.Marshal(msg, wire.DefaultOptions())
		if err != nil {
			t.Fatal(err)
		}
		want := []byte{0x10, 0x01}
		if !cmp.Equal(got, want) {
			t.Errorf("Marshal(sint32=-1) = %x, want %x", got, want)
		}
	})

	t.Run("packed repeated int32 [1, 300]", func(t *testing.T) {
		msg := dynamic.NewMessage(m)
		list := dynamic.NewList()
		list.Append(int32(1))
		list.Append(int32(300))
		msg.Set("packed", list)
		got, err := wire.Marshal(msg, wire.DefaultOptions())
		if err != nil {
			t.Fatal(err)
		}
		want := []byte{0x1a, 0x03, 0x01, 0xac, 0x02}
		if !cmp.Equal(got, want) {
			t.Errorf("Marshal(packed=[1,300]) = %x, want %x", got, want)
		}
	})
}

func TestRecursionLimitExceeded(t *testing.T) {
	reg := registry.New()
	m := desc.NewMessage("Node")
	next, _ := desc.NewField(desc.FieldOptions{Name: "next", Number: 1, Kind: desc.MessageKind, TypeName: "Node"})
	m.AddField(next)
	reg.RegisterMessage(m)

	// Build a chain deeper than the limit, then encode with a small limit to
	// force the encoder's recursion-limit failure.
	root := dynamic.NewMessage(m)
	cur := root
	const depth = 5
	for i := 0; i < depth; i++ {
		child := dynamic.NewMessage(m)
		cur.Set("next", child)
		cur = child
	}

	opts := wire.Options{RecursionLimit: 2}
	if _, err := wire.Marshal(root, opts); err == nil {
		t.Error("expected recursion limit error when encoding a chain deeper than the limit")
	}
}
