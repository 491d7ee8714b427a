package wellknown

import "github.com/proto3reflect/dynproto/dynamic"

// NewFieldMask builds a google.protobuf.FieldMask message from a slice of
// dotted field paths.
func NewFieldMask(paths []string) *dynamic.Message {
	m := dynamic.NewMessage(fieldMaskMsg)
	list := dynamic.NewList()
	for _, p := range paths {
		list.Append(p)
	}
	m.Set("paths", list)
	return m
}

// FieldMaskPaths returns the dotted field paths stored in a
// google.protobuf.FieldMask message.
func FieldMaskPaths(m *dynamic.Message) ([]string, error) {
	v, err := m.Get("paths")
	if err != nil {
		return nil, err
	}
	list := v.(*dynamic.List)
	out := make([]string, list.Len())
	for i := 0; i < list.Len(); i++ {
		out[i] = list.Get(i).(string)
	}
	return out, nil
}
