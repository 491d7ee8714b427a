package desc

import "github.com/proto3reflect/dynproto/internal/errs"

// Field is a field descriptor. Fields of kind message, enum, or group
// carry a fully qualified TypeName; map fields carry a MapEntry; fields
// may belong to at most one oneof group.
type Field struct {
	name       string
	jsonName   string
	number     int32
	kind       Kind
	typeName   string
	isRepeated bool
	isOptional bool
	isRequired bool
	isMap      bool
	oneofName  string
	mapEntry   *MapEntryDescriptor
	defaultVal interface{}
	hasDefault bool
	options    Options

	owner *Message
}

// MapEntryDescriptor describes the synthetic key/value pair of a map
// field. The key type is restricted to the closed set enumerated in
// desc.IsValidMapKeyKind; the value may be any non-map, non-repeated
// field type.
type MapEntryDescriptor struct {
	KeyKind       Kind
	ValueKind     Kind
	ValueTypeName string // fully qualified; set when ValueKind is message/enum
}

// FieldOptions are the constructor parameters for NewField. JSONName
// defaults to the lowerCamelCase form of Name when left empty.
type FieldOptions struct {
	Name       string
	JSONName   string
	Number     int32
	Kind       Kind
	TypeName   string
	IsRepeated bool
	IsOptional bool
	IsRequired bool
	OneofName  string
	MapEntry   *MapEntryDescriptor
	Default    interface{}
	Options    Options
}

// NewField validates and constructs a field descriptor:
//   - message/enum/group fields must carry a non-empty TypeName.
//   - map fields must carry a MapEntry whose key kind is in the allowed set.
func NewField(o FieldOptions) (*Field, error) {
	switch o.Kind {
	case MessageKind, EnumKind, GroupKind:
		if o.TypeName == "" {
			return nil, errs.New(errs.InvalidTypeName, "field %q of kind %v requires a non-empty type name", o.Name, o.Kind)
		}
	}
	if o.MapEntry != nil {
		if !IsValidMapKeyKind(o.MapEntry.KeyKind) {
			return nil, errs.New(errs.InvalidMapKeyType, "field %q: map key kind %v is not allowed", o.Name, o.MapEntry.KeyKind)
		}
		switch o.MapEntry.ValueKind {
		case MessageKind, EnumKind:
			if o.MapEntry.ValueTypeName == "" {
				return nil, errs.New(errs.InvalidTypeName, "field %q: map value kind %v requires a non-empty type name", o.Name, o.MapEntry.ValueKind)
			}
		}
	}
	jsonName := o.JSONName
	if jsonName == "" {
		jsonName = defaultJSONName(o.Name)
	}
	return &Field{
		name:       o.Name,
		jsonName:   jsonName,
		number:     o.Number,
		kind:       o.Kind,
		typeName:   o.TypeName,
		isRepeated: o.IsRepeated,
		isOptional: o.IsOptional,
		isRequired: o.IsRequired,
		isMap:      o.MapEntry != nil,
		oneofName:  o.OneofName,
		mapEntry:   o.MapEntry,
		defaultVal: o.Default,
		hasDefault: o.Default != nil,
		options:    o.Options,
	}, nil
}

// defaultJSONName derives the lowerCamelCase JSON name from a proto field
// name by removing underscores and upper-casing the following letter, the
// standard proto3 json_name default.
func defaultJSONName(name string) string {
	out := make([]byte, 0, len(name))
	upperNext := false
	for i := 0; i < len(name); i++ {
		c := name[i]
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

func (f *Field) Name() string          { return f.name }
func (f *Field) JSONName() string      { return f.jsonName }
func (f *Field) Number() int32         { return f.number }
func (f *Field) Kind() Kind            { return f.kind }
func (f *Field) TypeName() string      { return f.typeName }
func (f *Field) IsRepeated() bool      { return f.isRepeated }
func (f *Field) IsOptional() bool      { return f.isOptional }
func (f *Field) IsRequired() bool      { return f.isRequired }
func (f *Field) IsMap() bool           { return f.isMap }
func (f *Field) OneofName() string     { return f.oneofName }
func (f *Field) InOneof() bool         { return f.oneofName != "" }
func (f *Field) MapEntry() *MapEntryDescriptor { return f.mapEntry }
func (f *Field) Options() Options      { return f.options }
func (f *Field) Owner() *Message       { return f.owner }

// Default returns the field's declared default value and whether one was
// provided.
func (f *Field) Default() (interface{}, bool) { return f.defaultVal, f.hasDefault }

// HasExplicitPresence reports whether absence is distinguishable from the
// zero value for this field at the API level: proto3 explicit-optional
// singular non-message fields, and oneof members, have explicit presence;
// message-typed fields always do; repeated/map fields never do.
func (f *Field) HasExplicitPresence() bool {
	if f.isRepeated || f.isMap {
		return false
	}
	if f.kind == MessageKind || f.kind == GroupKind {
		return true
	}
	return f.isOptional || f.oneofName != ""
}

// Packable reports whether this field is eligible for packed repeated
// encoding (a repeated field of a non-string, non-bytes, non-message,
// non-group kind).
func (f *Field) Packable() bool {
	return f.isRepeated && !f.isMap && f.kind.IsNumeric()
}

// Equal reports semantic equality between two field descriptors.
func (f *Field) Equal(other *Field) bool {
	if other == nil {
		return false
	}
	if f.name != other.name || f.jsonName != other.jsonName ||
		f.number != other.number || f.kind != other.kind ||
		f.typeName != other.typeName || f.isRepeated != other.isRepeated ||
		f.isOptional != other.isOptional || f.isRequired != other.isRequired ||
		f.isMap != other.isMap || f.oneofName != other.oneofName {
		return false
	}
	if f.isMap {
		if (f.mapEntry == nil) != (other.mapEntry == nil) {
			return false
		}
		if f.mapEntry != nil && *f.mapEntry != *other.mapEntry {
			return false
		}
	}
	return f.options.Equal(other.options)
}
