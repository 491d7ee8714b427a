// Package wellknown provides construct/destructure shims between the
// google.protobuf.* well-known message types and idiomatic host values
// (time.Time, time.Duration, map[string]interface{}, ...). Every handler
// here works exclusively through the public dynamic.Message API and the
// descriptor registry; none of them peek at wire-format internals.
package wellknown

import (
	"github.com/proto3reflect/dynproto/desc"
	"github.com/proto3reflect/dynproto/registry"
)

// Fully qualified names of the well-known types, exported so the JSON codec
// can dispatch on a message descriptor's full name.
const (
	TimestampFullName = "google.protobuf.Timestamp"
	DurationFullName  = "google.protobuf.Duration"
	EmptyFullName     = "google.protobuf.Empty"
	FieldMaskFullName = "google.protobuf.FieldMask"
	StructFullName    = "google.protobuf.Struct"
	ValueFullName     = "google.protobuf.Value"
	ListValueFullName = "google.protobuf.ListValue"
	AnyFullName       = "google.protobuf.Any"
	NullValueFullName = "google.protobuf.NullValue"

	DoubleValueFullName = "google.protobuf.DoubleValue"
	FloatValueFullName  = "google.protobuf.FloatValue"
	Int64ValueFullName  = "google.protobuf.Int64Value"
	UInt64ValueFullName = "google.protobuf.UInt64Value"
	Int32ValueFullName  = "google.protobuf.Int32Value"
	UInt32ValueFullName = "google.protobuf.UInt32Value"
	BoolValueFullName   = "google.protobuf.BoolValue"
	StringValueFullName = "google.protobuf.StringValue"
	BytesValueFullName  = "google.protobuf.BytesValue"
)

var (
	timestampMsg *desc.Message
	durationMsg  *desc.Message
	emptyMsg     *desc.Message
	fieldMaskMsg *desc.Message
	structMsg    *desc.Message
	valueMsg     *desc.Message
	listValueMsg *desc.Message
	anyMsg       *desc.Message
	nullValueEnm *desc.Enum

	wrapperMsgs map[string]*desc.Message
)

func mustField(name string, number int32, kind desc.Kind, typeName string, repeated bool, oneof string) *desc.Field {
	f, err := desc.NewField(desc.FieldOptions{
		Name:       name,
		Number:     number,
		Kind:       kind,
		TypeName:   typeName,
		IsRepeated: repeated,
		OneofName:  oneof,
	})
	if err != nil {
		panic(err) // well-known-type layout is fixed and known-valid at init time
	}
	return f
}

func init() {
	nullValueEnm = desc.NewEnumWithFullName(NullValueFullName)
	nullValueEnm.AddValue(&desc.EnumValue{Name: "NULL_VALUE", Number: 0})

	timestampMsg = desc.NewMessageWithFullName(TimestampFullName)
	mustAddField(timestampMsg, mustField("seconds", 1, desc.Int64Kind, "", false, ""))
	mustAddField(timestampMsg, mustField("nanos", 2, desc.Int32Kind, "", false, ""))

	durationMsg = desc.NewMessageWithFullName(DurationFullName)
	mustAddField(durationMsg, mustField("seconds", 1, desc.Int64Kind, "", false, ""))
	mustAddField(durationMsg, mustField("nanos", 2, desc.Int32Kind, "", false, ""))

	emptyMsg = desc.NewMessageWithFullName(EmptyFullName)

	fieldMaskMsg = desc.NewMessageWithFullName(FieldMaskFullName)
	mustAddField(fieldMaskMsg, mustField("paths", 1, desc.StringKind, "", true, ""))

	valueMsg = desc.NewMessageWithFullName(ValueFullName)
	mustAddField(valueMsg, mustField("null_value", 1, desc.EnumKind, NullValueFullName, false, "kind"))
	mustAddField(valueMsg, mustField("number_value", 2, desc.DoubleKind, "", false, "kind"))
	mustAddField(valueMsg, mustField("string_value", 3, desc.StringKind, "", false, "kind"))
	mustAddField(valueMsg, mustField("bool_value", 4, desc.BoolKind, "", false, "kind"))
	mustAddField(valueMsg, mustField("struct_value", 5, desc.MessageKind, StructFullName, false, "kind"))
	mustAddField(valueMsg, mustField("list_value", 6, desc.MessageKind, ListValueFullName, false, "kind"))

	listValueMsg = desc.NewMessageWithFullName(ListValueFullName)
	mustAddField(listValueMsg, mustField("values", 1, desc.MessageKind, ValueFullName, true, ""))

	structMsg = desc.NewMessageWithFullName(StructFullName)
	structField, err := desc.NewField(desc.FieldOptions{
		Name:     "fields",
		Number:   1,
		Kind:     desc.MessageKind, // map fields are themselves message-shaped on the wire
		TypeName: StructFullName + ".FieldsEntry",
		MapEntry: &desc.MapEntryDescriptor{
			KeyKind:       desc.StringKind,
			ValueKind:     desc.MessageKind,
			ValueTypeName: ValueFullName,
		},
	})
	if err != nil {
		panic(err)
	}
	mustAddField(structMsg, structField)

	anyMsg = desc.NewMessageWithFullName(AnyFullName)
	mustAddField(anyMsg, mustField("type_url", 1, desc.StringKind, "", false, ""))
	mustAddField(anyMsg, mustField("value", 2, desc.BytesKind, "", false, ""))

	wrapperMsgs = make(map[string]*desc.Message, 9)
	wrapperMsgs[DoubleValueFullName] = newWrapper(DoubleValueFullName, desc.DoubleKind)
	wrapperMsgs[FloatValueFullName] = newWrapper(FloatValueFullName, desc.FloatKind)
	wrapperMsgs[Int64ValueFullName] = newWrapper(Int64ValueFullName, desc.Int64Kind)
	wrapperMsgs[UInt64ValueFullName] = newWrapper(UInt64ValueFullName, desc.Uint64Kind)
	wrapperMsgs[Int32ValueFullName] = newWrapper(Int32ValueFullName, desc.Int32Kind)
	wrapperMsgs[UInt32ValueFullName] = newWrapper(UInt32ValueFullName, desc.Uint32Kind)
	wrapperMsgs[BoolValueFullName] = newWrapper(BoolValueFullName, desc.BoolKind)
	wrapperMsgs[StringValueFullName] = newWrapper(StringValueFullName, desc.StringKind)
	wrapperMsgs[BytesValueFullName] = newWrapper(BytesValueFullName, desc.BytesKind)
}

func mustAddField(m *desc.Message, f *desc.Field) {
	if err := m.AddField(f); err != nil {
		panic(err)
	}
}

func newWrapper(fullName string, kind desc.Kind) *desc.Message {
	m := desc.NewMessageWithFullName(fullName)
	mustAddField(m, mustField("value", 1, kind, "", false, ""))
	return m
}

// TimestampDescriptor returns the google.protobuf.Timestamp descriptor.
func TimestampDescriptor() *desc.Message { return timestampMsg }

// DurationDescriptor returns the google.protobuf.Duration descriptor.
func DurationDescriptor() *desc.Message { return durationMsg }

// EmptyDescriptor returns the google.protobuf.Empty descriptor.
func EmptyDescriptor() *desc.Message { return emptyMsg }

// FieldMaskDescriptor returns the google.protobuf.FieldMask descriptor.
func FieldMaskDescriptor() *desc.Message { return fieldMaskMsg }

// StructDescriptor returns the google.protobuf.Struct descriptor.
func StructDescriptor() *desc.Message { return structMsg }

// ValueDescriptor returns the google.protobuf.Value descriptor.
func ValueDescriptor() *desc.Message { return valueMsg }

// ListValueDescriptor returns the google.protobuf.ListValue descriptor.
func ListValueDescriptor() *desc.Message { return listValueMsg }

// AnyDescriptor returns the google.protobuf.Any descriptor.
func AnyDescriptor() *desc.Message { return anyMsg }

// NullValueEnum returns the google.protobuf.NullValue enum descriptor.
func NullValueEnum() *desc.Enum { return nullValueEnm }

// WrapperDescriptor returns the descriptor for one of the nine primitive
// wrapper types by fully qualified name, or nil if fullName does not name
// one.
func WrapperDescriptor(fullName string) *desc.Message { return wrapperMsgs[fullName] }

// IsWellKnown reports whether fullName is one of the message types this
// package handles specially.
func IsWellKnown(fullName string) bool {
	if fullName == TimestampFullName || fullName == DurationFullName ||
		fullName == EmptyFullName || fullName == FieldMaskFullName ||
		fullName == StructFullName || fullName == ValueFullName ||
		fullName == ListValueFullName || fullName == AnyFullName {
		return true
	}
	_, ok := wrapperMsgs[fullName]
	return ok
}

// Register adds every well-known descriptor (and the NullValue enum) to
// reg, so that codecs driven by reg can resolve google.protobuf.Any
// payloads and embedded well-known fields without the caller having to
// hand-build them.
func Register(reg *registry.Registry) {
	reg.RegisterMessage(timestampMsg)
	reg.RegisterMessage(durationMsg)
	reg.RegisterMessage(emptyMsg)
	reg.RegisterMessage(fieldMaskMsg)
	reg.RegisterMessage(structMsg)
	reg.RegisterMessage(valueMsg)
	reg.RegisterMessage(listValueMsg)
	reg.RegisterMessage(anyMsg)
	reg.RegisterEnum(nullValueEnm)
	for _, m := range wrapperMsgs {
		reg.RegisterMessage(m)
	}
}
