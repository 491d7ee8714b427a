package desc

import (
	"sort"

	"github.com/proto3reflect/dynproto/internal/errs"
)

// Oneof is a named group of fields within a message, at most one of which
// may be present at any time.
type Oneof struct {
	name       string
	fieldNames []string
}

// Name returns the oneof's local name.
func (o *Oneof) Name() string { return o.name }

// FieldNames returns the local names of the fields in this oneof group, in
// the order they were added.
func (o *Oneof) FieldNames() []string {
	out := make([]string, len(o.fieldNames))
	copy(out, o.fieldNames)
	return out
}

// Message is a message descriptor: local name, derived full name, owning
// file path, parent message full name (if nested), fields indexed by both
// number and name, nested messages/enums keyed by local name, oneof
// groups, and an opaque option map.
type Message struct {
	name           string
	fullName       string
	filePath       string
	parentFullName string
	hasParent      bool

	fieldsByNumber map[int32]*Field
	fieldsByName   map[string]*Field

	nestedMessages     map[string]*Message
	nestedMessageOrder []string

	nestedEnums     map[string]*Enum
	nestedEnumOrder []string

	oneofs     map[string]*Oneof
	oneofOrder []string

	mapEntry *MapEntryInfo

	options Options
}

// MapEntryInfo marks a Message as the synthetic two-field message proto3
// uses to wire-encode a map field.
type MapEntryInfo struct {
	KeyKind       Kind
	ValueKind     Kind
	ValueTypeName string // fully qualified, set for message/enum values
}

// NewMessage creates a message descriptor with only a local name; its full
// name, file path, and parent full name remain verbatim (equal to name)
// until it is added to a File or another Message via AddMessage /
// AddNestedMessage.
func NewMessage(name string) *Message {
	return &Message{
		name:           name,
		fullName:       name,
		fieldsByNumber: make(map[int32]*Field),
		fieldsByName:   make(map[string]*Field),
		nestedMessages: make(map[string]*Message),
		nestedEnums:    make(map[string]*Enum),
		oneofs:         make(map[string]*Oneof),
	}
}

// NewMessageWithFullName creates a standalone message descriptor with a
// pre-computed fully qualified name and no owning file (used for synthetic
// descriptors such as map entries).
func NewMessageWithFullName(fullName string) *Message {
	m := NewMessage(fullName)
	m.fullName = fullName
	return m
}

// reparent recursively updates this message's derived names and cascades
// the update into already-added nested messages and enums, so descriptors
// stay consistent regardless of whether children were added before or
// after this message itself was attached to its own parent.
func (m *Message) reparent(fullName, filePath, parentFullName string) {
	m.fullName = fullName
	m.filePath = filePath
	m.parentFullName = parentFullName
	m.hasParent = parentFullName != ""
	for _, name := range m.nestedMessageOrder {
		child := m.nestedMessages[name]
		child.reparent(fullName+"."+child.name, filePath, fullName)
	}
	for _, name := range m.nestedEnumOrder {
		child := m.nestedEnums[name]
		child.reparent(fullName+"."+child.name, filePath, fullName)
	}
}

// Name returns the message's local name.
func (m *Message) Name() string { return m.name }

// FullName returns the dot-joined fully qualified name.
func (m *Message) FullName() string { return m.fullName }

// FilePath returns the logical name of the owning file, or "" if absent
// (synthetic descriptor).
func (m *Message) FilePath() string { return m.filePath }

// ParentFullName returns the enclosing message's full name, or "" if this
// message is top-level.
func (m *Message) ParentFullName() string { return m.parentFullName }

// HasParent reports whether ParentFullName is meaningful (distinguishes a
// top-level message from one nested under a message named "").
func (m *Message) HasParent() bool { return m.hasParent }

// IsMapEntry reports whether this message is the synthetic map-entry type
// for some map field.
func (m *Message) IsMapEntry() bool { return m.mapEntry != nil }

// MapEntry returns the map-entry metadata, or nil if IsMapEntry is false.
func (m *Message) MapEntry() *MapEntryInfo { return m.mapEntry }

// SetMapEntry marks this message as a synthetic map-entry type.
func (m *Message) SetMapEntry(info *MapEntryInfo) { m.mapEntry = info }

// AddField adds or replaces (by local name and number) a field on this
// message, rejecting a non-positive field number, a number collision with an
// existing, differently-named field, or a name collision with an existing,
// differently-numbered field, and inserting into both the number- and
// name-indexed views.
func (m *Message) AddField(f *Field) error {
	if f.number <= 0 {
		return errs.New(errs.FieldNumberOutOfRange, "field %q has non-positive number %d", f.name, f.number)
	}
	if existing, ok := m.fieldsByNumber[f.number]; ok && existing.name != f.name {
		return errs.New(errs.DuplicateFieldNumber, "field number %d already used by %q in message %q", f.number, existing.name, m.fullName)
	}
	if existing, ok := m.fieldsByName[f.name]; ok && existing.number != f.number {
		return errs.New(errs.DuplicateFieldName, "field name %q already used with number %d in message %q", f.name, existing.number, m.fullName)
	}
	if f.oneofName != "" {
		o, ok := m.oneofs[f.oneofName]
		if !ok {
			o = &Oneof{name: f.oneofName}
			m.oneofs[f.oneofName] = o
			m.oneofOrder = append(m.oneofOrder, f.oneofName)
		}
		o.fieldNames = append(o.fieldNames, f.name)
	}
	m.fieldsByNumber[f.number] = f
	m.fieldsByName[f.name] = f
	f.owner = m
	return nil
}

// FieldByName looks up a field by its local name.
func (m *Message) FieldByName(name string) (*Field, bool) {
	f, ok := m.fieldsByName[name]
	return f, ok
}

// FieldByNumber looks up a field by its wire number.
func (m *Message) FieldByNumber(number int32) (*Field, bool) {
	f, ok := m.fieldsByNumber[number]
	return f, ok
}

// Fields returns all fields, sorted in ascending field-number order — the
// order the binary codec encodes in.
func (m *Message) Fields() []*Field {
	out := make([]*Field, 0, len(m.fieldsByNumber))
	for _, f := range m.fieldsByNumber {
		out = append(out, f)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].number < out[j].number })
	return out
}

// Oneofs returns the message's oneof groups in declaration order.
func (m *Message) Oneofs() []*Oneof {
	out := make([]*Oneof, 0, len(m.oneofOrder))
	for _, name := range m.oneofOrder {
		out = append(out, m.oneofs[name])
	}
	return out
}

// OneofByName looks up a oneof group by name.
func (m *Message) OneofByName(name string) (*Oneof, bool) {
	o, ok := m.oneofs[name]
	return o, ok
}

// AddNestedMessage adds or replaces (by local name) a message nested
// inside this one, deriving the child's full name, file path, and parent
// full name from this message's current state.
func (m *Message) AddNestedMessage(child *Message) {
	if _, exists := m.nestedMessages[child.name]; !exists {
		m.nestedMessageOrder = append(m.nestedMessageOrder, child.name)
	}
	m.nestedMessages[child.name] = child
	child.reparent(m.fullName+"."+child.name, m.filePath, m.fullName)
}

// NestedMessages returns nested messages in declaration order.
func (m *Message) NestedMessages() []*Message {
	out := make([]*Message, 0, len(m.nestedMessageOrder))
	for _, name := range m.nestedMessageOrder {
		out = append(out, m.nestedMessages[name])
	}
	return out
}

// NestedMessageByName looks up a nested message by local name.
func (m *Message) NestedMessageByName(name string) (*Message, bool) {
	c, ok := m.nestedMessages[name]
	return c, ok
}

// AddNestedEnum adds or replaces (by local name) an enum nested inside
// this message.
func (m *Message) AddNestedEnum(e *Enum) {
	if _, exists := m.nestedEnums[e.name]; !exists {
		m.nestedEnumOrder = append(m.nestedEnumOrder, e.name)
	}
	m.nestedEnums[e.name] = e
	e.reparent(m.fullName+"."+e.name, m.filePath, m.fullName)
}

// NestedEnums returns nested enums in declaration order.
func (m *Message) NestedEnums() []*Enum {
	out := make([]*Enum, 0, len(m.nestedEnumOrder))
	for _, name := range m.nestedEnumOrder {
		out = append(out, m.nestedEnums[name])
	}
	return out
}

// NestedEnumByName looks up a nested enum by local name.
func (m *Message) NestedEnumByName(name string) (*Enum, bool) {
	e, ok := m.nestedEnums[name]
	return e, ok
}

// FindByPath resolves a dot-separated local path (e.g. "Inner.Leaf")
// relative to this message, walking into nested messages.
func (m *Message) FindByPath(path string) (*Message, bool) {
	cur := m
	for _, part := range splitDot(path) {
		next, ok := cur.nestedMessages[part]
		if !ok {
			return nil, false
		}
		cur = next
	}
	return cur, true
}

// Options returns the message's option map.
func (m *Message) Options() Options { return m.options }

// SetOptions replaces the message's option map.
func (m *Message) SetOptions(o Options) { m.options = o }

// Equal reports semantic equality between two message descriptors,
// comparing name, fields, nested types, oneofs, and options.
func (m *Message) Equal(other *Message) bool {
	if other == nil {
		return false
	}
	if m.name != other.name || m.fullName != other.fullName ||
		m.filePath != other.filePath || m.parentFullName != other.parentFullName {
		return false
	}
	if len(m.fieldsByNumber) != len(other.fieldsByNumber) {
		return false
	}
	for num, f := range m.fieldsByNumber {
		of, ok := other.fieldsByNumber[num]
		if !ok || !f.Equal(of) {
			return false
		}
	}
	if len(m.nestedMessages) != len(other.nestedMessages) {
		return false
	}
	for name, c := range m.nestedMessages {
		oc, ok := other.nestedMessages[name]
		if !ok || !c.Equal(oc) {
			return false
		}
	}
	if len(m.nestedEnums) != len(other.nestedEnums) {
		return false
	}
	for name, e := range m.nestedEnums {
		oe, ok := other.nestedEnums[name]
		if !ok || !e.Equal(oe) {
			return false
		}
	}
	return m.options.Equal(other.options)
}

func splitDot(s string) []string {
	var out []string
	start := 0
	for i := 0; i < len(s); i++ {
		if s[i] == '.' {
			out = append(out, s[start:i])
			start = i + 1
		}
	}
	out = append(out, s[start:])
	return out
}
