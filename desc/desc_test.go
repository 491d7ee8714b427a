package desc_test

import (
	"testing"

	"github.com/proto3reflect/dynproto/desc"
	"github.com/proto3reflect/dynproto/internal/errs"
)

func TestNewFieldRequiresTypeNameForMessageEnumGroup(t *testing.T) {
	tests := []struct {
		name string
		kind desc.Kind
	}{
		{"message", desc.MessageKind},
		{"enum", desc.EnumKind},
		{"group", desc.GroupKind},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := desc.NewField(desc.FieldOptions{Name: "f", Number: 1, Kind: tt.kind})
			if !errs.Is(err, errs.InvalidTypeName) {
				t.Fatalf("got %v, want InvalidTypeName", err)
			}
		})
	}
}

func TestNewFieldRejectsInvalidMapKeyKind(t *testing.T) {
	for _, kind := range []desc.Kind{desc.MessageKind, desc.BytesKind, desc.FloatKind, desc.DoubleKind} {
		_, err := desc.NewField(desc.FieldOptions{
			Name: "m", Number: 1, Kind: desc.MessageKind, TypeName: "Entry",
			MapEntry: &desc.MapEntryDescriptor{KeyKind: kind, ValueKind: desc.StringKind},
		})
		if !errs.Is(err, errs.InvalidMapKeyType) {
			t.Errorf("map key kind %v: got %v, want InvalidMapKeyType", kind, err)
		}
	}
}

func TestNewFieldDefaultJSONName(t *testing.T) {
	f, err := desc.NewField(desc.FieldOptions{Name: "foo_bar_baz", Number: 1, Kind: desc.StringKind})
	if err != nil {
		t.Fatal(err)
	}
	if got, want := f.JSONName(), "fooBarBaz"; got != want {
		t.Errorf("JSONName() = %q, want %q", got, want)
	}
}

func TestNewFieldExplicitJSONNameOverridesDefault(t *testing.T) {
	f, err := desc.NewField(desc.FieldOptions{Name: "foo_bar", JSONName: "custom", Number: 1, Kind: desc.StringKind})
	if err != nil {
		t.Fatal(err)
	}
	if got, want := f.JSONName(), "custom"; got != want {
		t.Errorf("JSONName() = %q, want %q", got, want)
	}
}

func TestFieldHasExplicitPresence(t *testing.T) {
	msgField, _ := desc.NewField(desc.FieldOptions{Name: "m", Number: 1, Kind: desc.MessageKind, TypeName: "pkg.M"})
	optField, _ := desc.NewField(desc.FieldOptions{Name: "o", Number: 2, Kind: desc.Int32Kind, IsOptional: true})
	oneofField, _ := desc.NewField(desc.FieldOptions{Name: "k", Number: 3, Kind: desc.StringKind, OneofName: "which"})
	implicitField, _ := desc.NewField(desc.FieldOptions{Name: "i", Number: 4, Kind: desc.Int32Kind})
	repeatedField, _ := desc.NewField(desc.FieldOptions{Name: "r", Number: 5, Kind: desc.Int32Kind, IsRepeated: true})

	for _, tt := range []struct {
		name string
		f    *desc.Field
		want bool
	}{
		{"message", msgField, true},
		{"optional scalar", optField, true},
		{"oneof member", oneofField, true},
		{"implicit presence scalar", implicitField, false},
		{"repeated", repeatedField, false},
	} {
		if got := tt.f.HasExplicitPresence(); got != tt.want {
			t.Errorf("%s: HasExplicitPresence() = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestMessageAddFieldRejectsDuplicateNumber(t *testing.T) {
	m := desc.NewMessage("M")
	f1, _ := desc.NewField(desc.FieldOptions{Name: "a", Number: 1, Kind: desc.StringKind})
	f2, _ := desc.NewField(desc.FieldOptions{Name: "b", Number: 1, Kind: desc.StringKind})
	if err := m.AddField(f1); err != nil {
		t.Fatal(err)
	}
	if err := m.AddField(f2); !errs.Is(err, errs.DuplicateFieldNumber) {
		t.Fatalf("got %v, want DuplicateFieldNumber", err)
	}
}

func TestMessageFieldsSortedByNumber(t *testing.T) {
	m := desc.NewMessage("M")
	for _, n := range []int32{3, 1, 2} {
		f, _ := desc.NewField(desc.FieldOptions{Name: "f" + string(rune('0'+n)), Number: n, Kind: desc.StringKind})
		if err := m.AddField(f); err != nil {
			t.Fatal(err)
		}
	}
	var got []int32
	for _, f := range m.Fields() {
		got = append(got, f.Number())
	}
	want := []int32{1, 2, 3}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Fields() order = %v, want %v", got, want)
		}
	}
}

func TestNestedMessageFullNameDerivation(t *testing.T) {
	outer := desc.NewMessage("Outer")
	inner := desc.NewMessage("Inner")
	outer.AddNestedMessage(inner)

	f := desc.NewFile("test.proto", "my.pkg")
	f.AddMessage(outer)

	if got, want := inner.FullName(), "my.pkg.Outer.Inner"; got != want {
		t.Errorf("nested FullName() = %q, want %q", got, want)
	}
	if got, want := inner.ParentFullName(), "my.pkg.Outer"; got != want {
		t.Errorf("ParentFullName() = %q, want %q", got, want)
	}
}

func TestOneofExclusivityTrackedByMessage(t *testing.T) {
	m := desc.NewMessage("M")
	a, _ := desc.NewField(desc.FieldOptions{Name: "a", Number: 1, Kind: desc.StringKind, OneofName: "which"})
	b, _ := desc.NewField(desc.FieldOptions{Name: "b", Number: 2, Kind: desc.Int32Kind, OneofName: "which"})
	if err := m.AddField(a); err != nil {
		t.Fatal(err)
	}
	if err := m.AddField(b); err != nil {
		t.Fatal(err)
	}
	o, ok := m.OneofByName("which")
	if !ok {
		t.Fatal("expected oneof \"which\" to exist")
	}
	if got, want := o.FieldNames(), []string{"a", "b"}; len(got) != len(want) || got[0] != want[0] || got[1] != want[1] {
		t.Errorf("FieldNames() = %v, want %v", got, want)
	}
}

func TestOptionsEqualFallsBackToStringRenderingForUncomparableValues(t *testing.T) {
	a := desc.Options{"tags": []string{"x", "y"}}
	b := desc.Options{"tags": []string{"x", "y"}}
	if !a.Equal(b) {
		t.Error("expected option maps with identical slice-typed values to compare equal via string rendering")
	}

	c := desc.Options{"tags": []string{"x", "z"}}
	if a.Equal(c) {
		t.Error("expected option maps with differing slice-typed values to compare unequal")
	}
}
