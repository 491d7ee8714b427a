package dynamic_test

import (
	"testing"

	"github.com/proto3reflect/dynproto/desc"
	"github.com/proto3reflect/dynproto/dynamic"
	"github.com/proto3reflect/dynproto/internal/errs"
)

func personDescriptor() *desc.Message {
	m := desc.NewMessage("Person")
	name, _ := desc.NewField(desc.FieldOptions{Name: "name", Number: 1, Kind: desc.StringKind})
	age, _ := desc.NewField(desc.FieldOptions{Name: "age", Number: 2, Kind: desc.Int32Kind})
	nick, _ := desc.NewField(desc.FieldOptions{Name: "nickname", Number: 3, Kind: desc.StringKind, IsOptional: true})
	tags, _ := desc.NewField(desc.FieldOptions{Name: "tags", Number: 4, Kind: desc.StringKind, IsRepeated: true})
	m.AddField(name)
	m.AddField(age)
	m.AddField(nick)
	m.AddField(tags)
	return m
}

func TestImplicitPresenceZeroValueIsAbsent(t *testing.T) {
	m := dynamic.NewMessage(personDescriptor())
	if err := m.Set("age", int32(0)); err != nil {
		t.Fatal(err)
	}
	has, err := m.Has("age")
	if err != nil {
		t.Fatal(err)
	}
	if has {
		t.Error("setting an implicit-presence scalar to its zero value should not make it present")
	}
}

func TestExplicitPresenceZeroValueIsPresent(t *testing.T) {
	m := dynamic.NewMessage(personDescriptor())
	if err := m.Set("nickname", ""); err != nil {
		t.Fatal(err)
	}
	has, err := m.Has("nickname")
	if err != nil {
		t.Fatal(err)
	}
	if !has {
		t.Error("setting an explicit-presence (optional) field to its zero value should still mark it present")
	}
}

func TestGetUnsetScalarReturnsZeroValue(t *testing.T) {
	m := dynamic.NewMessage(personDescriptor())
	v, err := m.Get("name")
	if err != nil {
		t.Fatal(err)
	}
	if v != "" {
		t.Errorf("Get(unset string) = %q, want empty string", v)
	}
}

func TestSetTypeMismatchRejected(t *testing.T) {
	m := dynamic.NewMessage(personDescriptor())
	err := m.Set("age", "not an int")
	if !errs.Is(err, errs.TypeMismatch) {
		t.Fatalf("got %v, want TypeMismatch", err)
	}
}

func TestOneofExclusivity(t *testing.T) {
	m := desc.NewMessage("Choice")
	a, _ := desc.NewField(desc.FieldOptions{Name: "a", Number: 1, Kind: desc.StringKind, OneofName: "which"})
	b, _ := desc.NewField(desc.FieldOptions{Name: "b", Number: 2, Kind: desc.Int32Kind, OneofName: "which"})
	m.AddField(a)
	m.AddField(b)

	msg := dynamic.NewMessage(m)
	if err := msg.Set("a", "hello"); err != nil {
		t.Fatal(err)
	}
	if err := msg.Set("b", int32(5)); err != nil {
		t.Fatal(err)
	}
	if hasA, _ := msg.Has("a"); hasA {
		t.Error("setting sibling oneof member b should have cleared a")
	}
	hasB, _ := msg.Has("b")
	if !hasB {
		t.Error("expected b to be present after Set")
	}
}

func TestCloneIsDeep(t *testing.T) {
	m := dynamic.NewMessage(personDescriptor())
	list := dynamic.NewList()
	list.Append("x")
	if err := m.Set("tags", list); err != nil {
		t.Fatal(err)
	}
	clone := m.Clone()
	list.Append("y")

	cv, _ := clone.Get("tags")
	if got := cv.(*dynamic.List).Len(); got != 1 {
		t.Errorf("clone's list length = %d, want 1 (mutating the original's list must not affect the clone)", got)
	}
}

func TestEqual(t *testing.T) {
	md := personDescriptor()
	a := dynamic.NewMessage(md)
	b := dynamic.NewMessage(md)
	a.Set("name", "Ada")
	b.Set("name", "Ada")
	if !a.Equal(b) {
		t.Error("expected equal messages with identical field values to compare equal")
	}
	b.Set("name", "Grace")
	if a.Equal(b) {
		t.Error("expected messages with differing field values to compare unequal")
	}
}

func TestUnknownFieldsPreservedAcrossClone(t *testing.T) {
	m := dynamic.NewMessage(personDescriptor())
	m.AppendUnknownField([]byte{0x2a, 0x01, 0x05})
	clone := m.Clone()
	if len(clone.UnknownFields()) != 3 {
		t.Errorf("clone UnknownFields() length = %d, want 3", len(clone.UnknownFields()))
	}
}
