// Package pbjson implements the proto3 canonical JSON codec: conversion
// between a dynamic.Message and its JSON text representation, including
// the well-known-type special casing the mapping requires.
package pbjson

// MarshalOptions configures to-JSON encoding.
type MarshalOptions struct {
	// EmitDefaults causes fields holding their type's zero value to be
	// emitted rather than omitted. Fields with explicit presence (message
	// type, oneof members) are still omitted when unset regardless of this
	// flag — there is no default instance to print.
	EmitDefaults bool

	// UseProtoNames selects the declared proto field name instead of the
	// lowerCamelCase JSON name for object keys.
	UseProtoNames bool

	// RecursionLimit bounds embedded-message nesting depth during encode.
	// Zero selects a default of 100, mirroring wire.Options.
	RecursionLimit int
}

func (o MarshalOptions) recursionLimit() int {
	if o.RecursionLimit <= 0 {
		return 100
	}
	return o.RecursionLimit
}

// UnmarshalOptions configures from-JSON decoding.
type UnmarshalOptions struct {
	// RejectUnknownFields turns an unrecognized object key into an error
	// instead of silently ignoring it.
	RejectUnknownFields bool

	// RecursionLimit bounds embedded-message nesting depth during decode.
	// Zero selects a default of 100, mirroring wire.Options.
	RecursionLimit int
}

func (o UnmarshalOptions) recursionLimit() int {
	if o.RecursionLimit <= 0 {
		return 100
	}
	return o.RecursionLimit
}
