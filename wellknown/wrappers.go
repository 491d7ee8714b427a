package wellknown

import (
	"github.com/proto3reflect/dynproto/dynamic"
	"github.com/proto3reflect/dynproto/internal/errs"
)

// NewDoubleValue builds a google.protobuf.DoubleValue message.
func NewDoubleValue(v float64) *dynamic.Message { return newWrapperMessage(DoubleValueFullName, v) }

// NewFloatValue builds a google.protobuf.FloatValue message.
func NewFloatValue(v float32) *dynamic.Message { return newWrapperMessage(FloatValueFullName, v) }

// NewInt64Value builds a google.protobuf.Int64Value message.
func NewInt64Value(v int64) *dynamic.Message { return newWrapperMessage(Int64ValueFullName, v) }

// NewUInt64Value builds a google.protobuf.UInt64Value message.
func NewUInt64Value(v uint64) *dynamic.Message { return newWrapperMessage(UInt64ValueFullName, v) }

// NewInt32Value builds a google.protobuf.Int32Value message.
func NewInt32Value(v int32) *dynamic.Message { return newWrapperMessage(Int32ValueFullName, v) }

// NewUInt32Value builds a google.protobuf.UInt32Value message.
func NewUInt32Value(v uint32) *dynamic.Message { return newWrapperMessage(UInt32ValueFullName, v) }

// NewBoolValue builds a google.protobuf.BoolValue message.
func NewBoolValue(v bool) *dynamic.Message { return newWrapperMessage(BoolValueFullName, v) }

// NewStringValue builds a google.protobuf.StringValue message.
func NewStringValue(v string) *dynamic.Message { return newWrapperMessage(StringValueFullName, v) }

// NewBytesValue builds a google.protobuf.BytesValue message.
func NewBytesValue(v []byte) *dynamic.Message { return newWrapperMessage(BytesValueFullName, v) }

func newWrapperMessage(fullName string, v interface{}) *dynamic.Message {
	md := wrapperMsgs[fullName]
	m := dynamic.NewMessage(md)
	m.Set("value", v)
	return m
}

// WrapperValue unwraps any of the nine primitive wrapper messages, returning
// its bare "value" field.
func WrapperValue(m *dynamic.Message) (interface{}, error) {
	if WrapperDescriptor(m.Descriptor().FullName()) == nil {
		return nil, errs.New(errs.TypeMismatch, "wellknown: %q is not a wrapper type", m.Descriptor().FullName())
	}
	return m.Get("value")
}
