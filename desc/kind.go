package desc

// Kind is the closed set of proto3 field type tags, numbered the same way
// the wire format's FieldDescriptorProto.Type enum numbers them so that
// Kind values can be used directly as descriptor option defaults without a
// translation table.
type Kind int32

const (
	DoubleKind Kind = iota + 1
	FloatKind
	Int64Kind
	Uint64Kind
	Int32Kind
	Fixed64Kind
	Fixed32Kind
	BoolKind
	StringKind
	GroupKind
	MessageKind
	BytesKind
	Uint32Kind
	EnumKind
	Sfixed32Kind
	Sfixed64Kind
	Sint32Kind
	Sint64Kind
)

func (k Kind) String() string {
	switch k {
	case DoubleKind:
		return "double"
	case FloatKind:
		return "float"
	case Int64Kind:
		return "int64"
	case Uint64Kind:
		return "uint64"
	case Int32Kind:
		return "int32"
	case Fixed64Kind:
		return "fixed64"
	case Fixed32Kind:
		return "fixed32"
	case BoolKind:
		return "bool"
	case StringKind:
		return "string"
	case GroupKind:
		return "group"
	case MessageKind:
		return "message"
	case BytesKind:
		return "bytes"
	case Uint32Kind:
		return "uint32"
	case EnumKind:
		return "enum"
	case Sfixed32Kind:
		return "sfixed32"
	case Sfixed64Kind:
		return "sfixed64"
	case Sint32Kind:
		return "sint32"
	case Sint64Kind:
		return "sint64"
	}
	return "unknown"
}

// IsNumeric reports whether the kind is one eligible for packed encoding
// (every scalar kind other than string, bytes, message, and group).
func (k Kind) IsNumeric() bool {
	switch k {
	case StringKind, BytesKind, MessageKind, GroupKind:
		return false
	default:
		return true
	}
}

// allowedMapKeyKinds is the closed set of field kinds a map key may use.
var allowedMapKeyKinds = map[Kind]bool{
	Int32Kind:    true,
	Int64Kind:    true,
	Uint32Kind:   true,
	Uint64Kind:   true,
	Sint32Kind:   true,
	Sint64Kind:   true,
	Fixed32Kind:  true,
	Fixed64Kind:  true,
	Sfixed32Kind: true,
	Sfixed64Kind: true,
	BoolKind:     true,
	StringKind:   true,
}

// IsValidMapKeyKind reports whether k may be used as a map key type.
func IsValidMapKeyKind(k Kind) bool {
	return allowedMapKeyKinds[k]
}
