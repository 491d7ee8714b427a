// Package registry implements the name-indexed descriptor registry used by
// the binary and JSON codecs to resolve the referenced descriptor of a
// message- or enum-typed field.
package registry

import (
	"sync"

	"github.com/google/uuid"

	"github.com/proto3reflect/dynproto/desc"
	"github.com/proto3reflect/dynproto/internal/errs"
)

// Registry is a name-indexed lookup over messages, enums, and services,
// safe for concurrent readers while no writer is active; writers are
// serialized by an internal mutex. Lookup is a flat full-name-keyed map
// rather than a package-tree structure, since nothing here needs iteration
// by package prefix.
type Registry struct {
	mu sync.RWMutex

	id string // debug-only identity, surfaced in "not found" errors

	files    map[string]*desc.File
	messages map[string]*desc.Message
	enums    map[string]*desc.Enum
	services map[string]*desc.Service
}

// New creates an empty registry.
func New() *Registry {
	return &Registry{
		id:       uuid.NewString(),
		files:    make(map[string]*desc.File),
		messages: make(map[string]*desc.Message),
		enums:    make(map[string]*desc.Enum),
		services: make(map[string]*desc.Service),
	}
}

// ID returns a debug-only identifier for this registry instance, useful
// when diagnosing lookups against the wrong registry in a program that
// juggles more than one.
func (r *Registry) ID() string { return r.id }

// RegisterFile registers a file and transitively registers its top-level
// and nested messages, enums, and services.
func (r *Registry) RegisterFile(f *desc.File) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.files[f.Name()] = f
	for _, m := range f.Messages() {
		r.registerMessageLocked(m)
	}
	for _, e := range f.Enums() {
		r.registerEnumLocked(e)
	}
	for _, s := range f.Services() {
		r.services[s.FullName()] = s
	}
}

func (r *Registry) registerMessageLocked(m *desc.Message) {
	r.messages[m.FullName()] = m
	for _, nm := range m.NestedMessages() {
		r.registerMessageLocked(nm)
	}
	for _, ne := range m.NestedEnums() {
		r.registerEnumLocked(ne)
	}
}

func (r *Registry) registerEnumLocked(e *desc.Enum) {
	r.enums[e.FullName()] = e
}

// RegisterMessage directly registers a standalone message descriptor
// (and, transitively, its nested messages/enums) without requiring an
// owning file — useful for synthetic descriptors such as map entries or
// descriptors built without NewFile.
func (r *Registry) RegisterMessage(m *desc.Message) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.registerMessageLocked(m)
}

// RegisterEnum directly registers a standalone enum descriptor.
func (r *Registry) RegisterEnum(e *desc.Enum) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.registerEnumLocked(e)
}

// FindMessage looks up a message descriptor by fully qualified name.
func (r *Registry) FindMessage(fullName string) (*desc.Message, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if m, ok := r.messages[fullName]; ok {
		return m, nil
	}
	return nil, errs.New(errs.TypeNotFound, "message %q not found in registry %s", fullName, r.id)
}

// FindEnum looks up an enum descriptor by fully qualified name.
func (r *Registry) FindEnum(fullName string) (*desc.Enum, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if e, ok := r.enums[fullName]; ok {
		return e, nil
	}
	return nil, errs.New(errs.TypeNotFound, "enum %q not found in registry %s", fullName, r.id)
}

// FindService looks up a service descriptor by fully qualified name.
func (r *Registry) FindService(fullName string) (*desc.Service, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if s, ok := r.services[fullName]; ok {
		return s, nil
	}
	return nil, errs.New(errs.TypeNotFound, "service %q not found in registry %s", fullName, r.id)
}

// FileDependencies returns the registered dependency paths of a file
// registered by name.
func (r *Registry) FileDependencies(filePath string) ([]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	f, ok := r.files[filePath]
	if !ok {
		return nil, errs.New(errs.TypeNotFound, "file %q not found in registry %s", filePath, r.id)
	}
	return f.Dependencies(), nil
}
