// Package errs implements the typed error taxonomy used across the
// descriptor, registry, dynamic message, and codec packages.
package errs

import "fmt"

// Kind identifies the category of a protocol error. The zero value is never
// returned by a constructed *Error.
type Kind int

const (
	_ Kind = iota

	// Descriptor construction.
	InvalidTypeName
	InvalidMapKeyType
	DuplicateFieldNumber
	DuplicateFieldName
	FieldNumberOutOfRange

	// Message manipulation.
	FieldNotFound
	TypeMismatch
	MapKeyInvalid
	NestedDescriptorMismatch

	// Binary codec.
	InvalidWireType
	WireTypeMismatch
	MalformedVarint
	MalformedPackedField
	MalformedMapEntry
	TruncatedMessage
	UnsupportedGroup
	TypeNotFound
	RecursionLimitExceeded

	// JSON codec.
	JsonFormat
	NumberOutOfRange
	InvalidBase64
	UnknownFieldForbidden
)

var kindNames = map[Kind]string{
	InvalidTypeName:       "InvalidTypeName",
	InvalidMapKeyType:     "InvalidMapKeyType",
	DuplicateFieldNumber:  "DuplicateFieldNumber",
	DuplicateFieldName:    "DuplicateFieldName",
	FieldNumberOutOfRange: "FieldNumberOutOfRange",

	FieldNotFound:            "FieldNotFound",
	TypeMismatch:             "TypeMismatch",
	MapKeyInvalid:            "MapKeyInvalid",
	NestedDescriptorMismatch: "NestedDescriptorMismatch",

	InvalidWireType:        "InvalidWireType",
	WireTypeMismatch:       "WireTypeMismatch",
	MalformedVarint:        "MalformedVarint",
	MalformedPackedField:   "MalformedPackedField",
	MalformedMapEntry:      "MalformedMapEntry",
	TruncatedMessage:       "TruncatedMessage",
	UnsupportedGroup:       "UnsupportedGroup",
	TypeNotFound:           "TypeNotFound",
	RecursionLimitExceeded: "RecursionLimitExceeded",

	JsonFormat:            "JsonFormat",
	NumberOutOfRange:      "NumberOutOfRange",
	InvalidBase64:         "InvalidBase64",
	UnknownFieldForbidden: "UnknownFieldForbidden",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Error is the concrete error type returned by every exported operation in
// this module. It always carries a Kind from the taxonomy above and a
// human-readable message. Offset is the byte position where the binary
// codec detected a framing failure (malformed varint, truncated field,
// invalid or group wire type, malformed packed element), relative to the
// buffer being parsed; the JSON codec and all other errors leave it at -1.
type Error struct {
	Kind    Kind
	Message string
	Offset  int
}

func (e *Error) Error() string {
	if e.Offset >= 0 {
		return fmt.Sprintf("%s: %s (at offset %d)", e.Kind, e.Message, e.Offset)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// New constructs an *Error with no offset information.
func New(k Kind, format string, args ...interface{}) *Error {
	return &Error{Kind: k, Message: fmt.Sprintf(format, args...), Offset: -1}
}

// WithOffset constructs an *Error carrying a byte/rune offset into the
// input that was being parsed.
func WithOffset(k Kind, offset int, format string, args ...interface{}) *Error {
	return &Error{Kind: k, Message: fmt.Sprintf(format, args...), Offset: offset}
}

// Is reports whether err is an *Error of the given kind. It lets callers
// write `errs.Is(err, errs.FieldNotFound)` without type-asserting.
func Is(err error, k Kind) bool {
	e, ok := err.(*Error)
	return ok && e.Kind == k
}
