package desc

// File is a file descriptor: a logical proto3 file identified by name,
// holding the package it declares, its dependency list, and the messages,
// enums, and services declared at its top level.
type File struct {
	name    string
	pkg     string
	deps    []string
	depSet  map[string]bool

	messages     map[string]*Message
	messageOrder []string

	enums     map[string]*Enum
	enumOrder []string

	services     map[string]*Service
	serviceOrder []string

	options Options
}

// NewFile creates a file descriptor with the given logical name and
// package. Package may be empty.
func NewFile(name, pkg string) *File {
	return &File{
		name:     name,
		pkg:      pkg,
		depSet:   make(map[string]bool),
		messages: make(map[string]*Message),
		enums:    make(map[string]*Enum),
		services: make(map[string]*Service),
	}
}

// Name returns the file's logical name, e.g. "person.proto".
func (f *File) Name() string { return f.name }

// Package returns the declared package, possibly empty.
func (f *File) Package() string { return f.pkg }

// SetPackage changes the declared package. Existing children are
// reparented so their full names stay consistent.
func (f *File) SetPackage(pkg string) {
	f.pkg = pkg
	for _, name := range f.messageOrder {
		m := f.messages[name]
		m.reparent(f.FullName(m.name), f.name, "")
	}
	for _, name := range f.enumOrder {
		e := f.enums[name]
		e.reparent(f.FullName(e.name), f.name, "")
	}
	for _, name := range f.serviceOrder {
		s := f.services[name]
		s.fullName = f.FullName(s.name)
	}
}

// AddDependency appends a logical file name to this file's dependency
// list, preserving order and de-duplicating.
func (f *File) AddDependency(path string) {
	if f.depSet[path] {
		return
	}
	f.depSet[path] = true
	f.deps = append(f.deps, path)
}

// Dependencies returns the file's dependency list in declaration order.
func (f *File) Dependencies() []string {
	out := make([]string, len(f.deps))
	copy(out, f.deps)
	return out
}

// FullName dot-joins the file's package with localPath: an empty package
// yields localPath unchanged; an empty localPath yields the package
// followed by a trailing dot (used when deriving a parent's own full name
// before any local name is known).
func (f *File) FullName(localPath string) string {
	if f.pkg == "" {
		return localPath
	}
	if localPath == "" {
		return f.pkg + "."
	}
	return f.pkg + "." + localPath
}

// AddMessage adds or replaces (by local name) a top-level message owned by
// this file, deriving its full name, file path, and parent full name.
func (f *File) AddMessage(m *Message) {
	if _, exists := f.messages[m.name]; !exists {
		f.messageOrder = append(f.messageOrder, m.name)
	}
	f.messages[m.name] = m
	m.reparent(f.FullName(m.name), f.name, "")
}

// Messages returns the file's top-level messages in declaration order.
func (f *File) Messages() []*Message {
	out := make([]*Message, 0, len(f.messageOrder))
	for _, name := range f.messageOrder {
		out = append(out, f.messages[name])
	}
	return out
}

// MessageByName looks up a top-level message by its local name.
func (f *File) MessageByName(name string) (*Message, bool) {
	m, ok := f.messages[name]
	return m, ok
}

// AddEnum adds or replaces (by local name) a top-level enum owned by this
// file.
func (f *File) AddEnum(e *Enum) {
	if _, exists := f.enums[e.name]; !exists {
		f.enumOrder = append(f.enumOrder, e.name)
	}
	f.enums[e.name] = e
	e.reparent(f.FullName(e.name), f.name, "")
}

// Enums returns the file's top-level enums in declaration order.
func (f *File) Enums() []*Enum {
	out := make([]*Enum, 0, len(f.enumOrder))
	for _, name := range f.enumOrder {
		out = append(out, f.enums[name])
	}
	return out
}

// EnumByName looks up a top-level enum by its local name.
func (f *File) EnumByName(name string) (*Enum, bool) {
	e, ok := f.enums[name]
	return e, ok
}

// AddService adds or replaces (by local name) a service owned by this
// file.
func (f *File) AddService(s *Service) {
	if _, exists := f.services[s.name]; !exists {
		f.serviceOrder = append(f.serviceOrder, s.name)
	}
	f.services[s.name] = s
	s.fullName = f.FullName(s.name)
}

// Services returns the file's services in declaration order.
func (f *File) Services() []*Service {
	out := make([]*Service, 0, len(f.serviceOrder))
	for _, name := range f.serviceOrder {
		out = append(out, f.services[name])
	}
	return out
}

// ServiceByName looks up a service by its local name.
func (f *File) ServiceByName(name string) (*Service, bool) {
	s, ok := f.services[name]
	return s, ok
}

// Options returns the file's option map.
func (f *File) Options() Options { return f.options }

// SetOptions replaces the file's option map.
func (f *File) SetOptions(o Options) { f.options = o }

// Equal reports semantic equality between two file descriptors.
func (f *File) Equal(other *File) bool {
	if other == nil {
		return false
	}
	if f.name != other.name || f.pkg != other.pkg {
		return false
	}
	if len(f.deps) != len(other.deps) {
		return false
	}
	for i, d := range f.deps {
		if other.deps[i] != d {
			return false
		}
	}
	if len(f.messages) != len(other.messages) {
		return false
	}
	for name, m := range f.messages {
		om, ok := other.messages[name]
		if !ok || !m.Equal(om) {
			return false
		}
	}
	if len(f.enums) != len(other.enums) {
		return false
	}
	for name, e := range f.enums {
		oe, ok := other.enums[name]
		if !ok || !e.Equal(oe) {
			return false
		}
	}
	if len(f.services) != len(other.services) {
		return false
	}
	for name, s := range f.services {
		os, ok := other.services[name]
		if !ok || !s.Equal(os) {
			return false
		}
	}
	return f.options.Equal(other.options)
}
