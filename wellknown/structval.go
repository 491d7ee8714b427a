package wellknown

import (
	"fmt"

	"github.com/proto3reflect/dynproto/dynamic"
	"github.com/proto3reflect/dynproto/internal/errs"
)

// NewValue builds a google.protobuf.Value message from an idiomatic Go
// value: nil becomes null_value, float64, float32, int, int32, int64,
// uint32 and uint64 become number_value, string becomes string_value, bool
// becomes bool_value,
// map[string]interface{} recurses into struct_value, and []interface{}
// recurses into list_value. Any other shape is an error.
func NewValue(v interface{}) (*dynamic.Message, error) {
	m := dynamic.NewMessage(valueMsg)
	switch vv := v.(type) {
	case nil:
		m.Set("null_value", int32(0))
	case bool:
		m.Set("bool_value", vv)
	case string:
		m.Set("string_value", vv)
	case map[string]interface{}:
		sub, err := NewStruct(vv)
		if err != nil {
			return nil, err
		}
		m.Set("struct_value", sub)
	case []interface{}:
		sub, err := NewListValue(vv)
		if err != nil {
			return nil, err
		}
		m.Set("list_value", sub)
	default:
		f, ok := toFloat64(v)
		if !ok {
			return nil, errs.New(errs.TypeMismatch, "wellknown: cannot represent %T as a google.protobuf.Value", v)
		}
		m.Set("number_value", f)
	}
	return m, nil
}

// ValueToGo reconstructs the Go value a google.protobuf.Value message
// represents: nil when no oneof member (or null_value) is set.
func ValueToGo(m *dynamic.Message) (interface{}, error) {
	if has, _ := m.Has("string_value"); has {
		v, err := m.Get("string_value")
		return v, err
	}
	if has, _ := m.Has("number_value"); has {
		v, err := m.Get("number_value")
		return v, err
	}
	if has, _ := m.Has("bool_value"); has {
		v, err := m.Get("bool_value")
		return v, err
	}
	if has, _ := m.Has("struct_value"); has {
		v, err := m.Get("struct_value")
		if err != nil {
			return nil, err
		}
		return StructToMap(v.(*dynamic.Message))
	}
	if has, _ := m.Has("list_value"); has {
		v, err := m.Get("list_value")
		if err != nil {
			return nil, err
		}
		return ListValueToSlice(v.(*dynamic.Message))
	}
	return nil, nil
}

func toFloat64(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	default:
		return 0, false
	}
}

// NewStruct builds a google.protobuf.Struct message from a
// map[string]interface{}, recursively converting every value with NewValue.
func NewStruct(fields map[string]interface{}) (*dynamic.Message, error) {
	m := dynamic.NewMessage(structMsg)
	entries := dynamic.NewMap()
	for k, v := range fields {
		vm, err := NewValue(v)
		if err != nil {
			return nil, fmt.Errorf("wellknown: struct field %q: %w", k, err)
		}
		entries.Set(k, vm)
	}
	m.Set("fields", entries)
	return m, nil
}

// StructToMap reconstructs a map[string]interface{} from a
// google.protobuf.Struct message, recursively converting every entry with
// ValueToGo.
func StructToMap(m *dynamic.Message) (map[string]interface{}, error) {
	v, err := m.Get("fields")
	if err != nil {
		return nil, err
	}
	entries := v.(*dynamic.Map)
	out := make(map[string]interface{}, entries.Len())
	var rangeErr error
	entries.Range(func(key, value interface{}) bool {
		goVal, err := ValueToGo(value.(*dynamic.Message))
		if err != nil {
			rangeErr = err
			return false
		}
		out[key.(string)] = goVal
		return true
	})
	if rangeErr != nil {
		return nil, rangeErr
	}
	return out, nil
}

// NewListValue builds a google.protobuf.ListValue message from a
// []interface{}, recursively converting every element with NewValue.
func NewListValue(elems []interface{}) (*dynamic.Message, error) {
	m := dynamic.NewMessage(listValueMsg)
	list := dynamic.NewList()
	for i, e := range elems {
		vm, err := NewValue(e)
		if err != nil {
			return nil, fmt.Errorf("wellknown: list element %d: %w", i, err)
		}
		list.Append(vm)
	}
	m.Set("values", list)
	return m, nil
}

// ListValueToSlice reconstructs a []interface{} from a
// google.protobuf.ListValue message.
func ListValueToSlice(m *dynamic.Message) ([]interface{}, error) {
	v, err := m.Get("values")
	if err != nil {
		return nil, err
	}
	list := v.(*dynamic.List)
	out := make([]interface{}, list.Len())
	for i := 0; i < list.Len(); i++ {
		gv, err := ValueToGo(list.Get(i).(*dynamic.Message))
		if err != nil {
			return nil, err
		}
		out[i] = gv
	}
	return out, nil
}
