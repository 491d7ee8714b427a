package desc

// EnumValue is a single named, numbered value within an enum.
type EnumValue struct {
	Name    string
	Number  int32
	Options Options
}

// Enum is an enum descriptor. Values are indexed both by name and by
// number; number uniqueness is not required — aliases are permitted when
// AllowAlias is true.
type Enum struct {
	name           string
	fullName       string
	filePath       string
	parentFullName string
	hasParent      bool

	valuesByName   map[string]*EnumValue
	valuesByNumber map[int32][]*EnumValue
	order          []string

	allowAlias bool
	options    Options
}

// NewEnum creates an enum descriptor with only a local name; full name,
// file path, and parent full name remain verbatim until added to a File
// or Message.
func NewEnum(name string) *Enum {
	return &Enum{
		name:           name,
		fullName:       name,
		valuesByName:   make(map[string]*EnumValue),
		valuesByNumber: make(map[int32][]*EnumValue),
	}
}

// NewEnumWithFullName creates a standalone enum descriptor with a
// pre-computed fully qualified name.
func NewEnumWithFullName(fullName string) *Enum {
	e := NewEnum(fullName)
	e.fullName = fullName
	return e
}

func (e *Enum) reparent(fullName, filePath, parentFullName string) {
	e.fullName = fullName
	e.filePath = filePath
	e.parentFullName = parentFullName
	e.hasParent = parentFullName != ""
}

func (e *Enum) Name() string           { return e.name }
func (e *Enum) FullName() string       { return e.fullName }
func (e *Enum) FilePath() string       { return e.filePath }
func (e *Enum) ParentFullName() string { return e.parentFullName }
func (e *Enum) HasParent() bool        { return e.hasParent }
func (e *Enum) AllowAlias() bool       { return e.allowAlias }
func (e *Enum) SetAllowAlias(v bool)   { e.allowAlias = v }

// AddValue adds or replaces (by name) an enum value. Replacing an existing
// name removes its old number-indexed entry first.
func (e *Enum) AddValue(v *EnumValue) {
	if old, ok := e.valuesByName[v.Name]; ok {
		e.removeFromNumberIndex(old)
	} else {
		e.order = append(e.order, v.Name)
	}
	e.valuesByName[v.Name] = v
	e.valuesByNumber[v.Number] = append(e.valuesByNumber[v.Number], v)
}

func (e *Enum) removeFromNumberIndex(v *EnumValue) {
	list := e.valuesByNumber[v.Number]
	for i, ev := range list {
		if ev == v {
			e.valuesByNumber[v.Number] = append(list[:i], list[i+1:]...)
			break
		}
	}
	if len(e.valuesByNumber[v.Number]) == 0 {
		delete(e.valuesByNumber, v.Number)
	}
}

// ValueByName looks up an enum value by name.
func (e *Enum) ValueByName(name string) (*EnumValue, bool) {
	v, ok := e.valuesByName[name]
	return v, ok
}

// ValuesByNumber returns every value sharing the given number (more than
// one only when AllowAlias is true).
func (e *Enum) ValuesByNumber(number int32) []*EnumValue {
	list := e.valuesByNumber[number]
	out := make([]*EnumValue, len(list))
	copy(out, list)
	return out
}

// ValueByNumber returns the first value declared with the given number, if
// any; useful when alias resolution is not required.
func (e *Enum) ValueByNumber(number int32) (*EnumValue, bool) {
	list := e.valuesByNumber[number]
	if len(list) == 0 {
		return nil, false
	}
	return list[0], true
}

// Values returns all enum values in declaration order.
func (e *Enum) Values() []*EnumValue {
	out := make([]*EnumValue, 0, len(e.order))
	for _, name := range e.order {
		out = append(out, e.valuesByName[name])
	}
	return out
}

func (e *Enum) Options() Options     { return e.options }
func (e *Enum) SetOptions(o Options) { e.options = o }

// Equal reports semantic equality between two enum descriptors.
func (e *Enum) Equal(other *Enum) bool {
	if other == nil {
		return false
	}
	if e.name != other.name || e.fullName != other.fullName ||
		e.filePath != other.filePath || e.parentFullName != other.parentFullName ||
		e.allowAlias != other.allowAlias {
		return false
	}
	if len(e.valuesByName) != len(other.valuesByName) {
		return false
	}
	for name, v := range e.valuesByName {
		ov, ok := other.valuesByName[name]
		if !ok || v.Number != ov.Number || !v.Options.Equal(ov.Options) {
			return false
		}
	}
	return e.options.Equal(other.options)
}
