package registry_test

import (
	"testing"

	"github.com/proto3reflect/dynproto/desc"
	"github.com/proto3reflect/dynproto/internal/errs"
	"github.com/proto3reflect/dynproto/registry"
)

func buildTestFile() *desc.File {
	f := desc.NewFile("test.proto", "my.pkg")
	m := desc.NewMessage("Person")
	nameField, _ := desc.NewField(desc.FieldOptions{Name: "name", Number: 1, Kind: desc.StringKind})
	m.AddField(nameField)
	e := desc.NewEnum("Status")
	e.AddValue(&desc.EnumValue{Name: "UNKNOWN", Number: 0})
	m.AddNestedEnum(e)
	f.AddMessage(m)
	return f
}

func TestRegisterFileTransitivelyRegistersNested(t *testing.T) {
	reg := registry.New()
	reg.RegisterFile(buildTestFile())

	m, err := reg.FindMessage("my.pkg.Person")
	if err != nil {
		t.Fatalf("FindMessage: %v", err)
	}
	if got, want := m.FullName(), "my.pkg.Person"; got != want {
		t.Errorf("FullName() = %q, want %q", got, want)
	}

	if _, err := reg.FindEnum("my.pkg.Person.Status"); err != nil {
		t.Errorf("FindEnum(nested): %v", err)
	}
}

func TestFindMessageNotFound(t *testing.T) {
	reg := registry.New()
	_, err := reg.FindMessage("nope.Missing")
	if !errs.Is(err, errs.TypeNotFound) {
		t.Fatalf("got %v, want TypeNotFound", err)
	}
}

func TestTwoRegistriesAreIndependent(t *testing.T) {
	a := registry.New()
	b := registry.New()
	a.RegisterFile(buildTestFile())

	if _, err := a.FindMessage("my.pkg.Person"); err != nil {
		t.Errorf("registry a: FindMessage: %v", err)
	}
	if _, err := b.FindMessage("my.pkg.Person"); err == nil {
		t.Error("registry b: expected FindMessage to fail, message was never registered there")
	}
	if a.ID() == b.ID() {
		t.Error("expected distinct registry instance IDs")
	}
}
