package wellknown

import "github.com/proto3reflect/dynproto/dynamic"

// NewEmpty builds a google.protobuf.Empty message, which carries no fields.
func NewEmpty() *dynamic.Message {
	return dynamic.NewMessage(emptyMsg)
}
