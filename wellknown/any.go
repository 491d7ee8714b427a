package wellknown

import (
	"strings"

	"github.com/proto3reflect/dynproto/dynamic"
	"github.com/proto3reflect/dynproto/internal/errs"
	"github.com/proto3reflect/dynproto/registry"
	"github.com/proto3reflect/dynproto/wire"
)

// defaultTypeURLPrefix matches the prefix every conforming proto3
// implementation recognizes for Any.type_url, per google/protobuf/any.proto.
const defaultTypeURLPrefix = "type.googleapis.com/"

// NewAny packs value into a google.protobuf.Any message, encoding it with
// the binary wire codec and deriving type_url from value's descriptor.
func NewAny(value *dynamic.Message) (*dynamic.Message, error) {
	b, err := wire.Marshal(value, wire.DefaultOptions())
	if err != nil {
		return nil, err
	}
	m := dynamic.NewMessage(anyMsg)
	m.Set("type_url", defaultTypeURLPrefix+value.Descriptor().FullName())
	m.Set("value", b)
	return m, nil
}

// UnpackAny resolves a google.protobuf.Any message's embedded type through
// reg and decodes its payload.
func UnpackAny(m *dynamic.Message, reg *registry.Registry) (*dynamic.Message, error) {
	urlV, err := m.Get("type_url")
	if err != nil {
		return nil, err
	}
	url := urlV.(string)
	idx := strings.LastIndex(url, "/")
	if idx < 0 || idx == len(url)-1 {
		return nil, errs.New(errs.JsonFormat, "wellknown: malformed Any.type_url %q", url)
	}
	fullName := url[idx+1:]
	md, err := reg.FindMessage(fullName)
	if err != nil {
		return nil, err
	}
	valV, err := m.Get("value")
	if err != nil {
		return nil, err
	}
	return wire.Unmarshal(valV.([]byte), md, reg, wire.DefaultOptions())
}

// AnyTypeName extracts the fully qualified message name embedded in an
// Any's type_url, without decoding the payload.
func AnyTypeName(m *dynamic.Message) (string, error) {
	urlV, err := m.Get("type_url")
	if err != nil {
		return "", err
	}
	url := urlV.(string)
	idx := strings.LastIndex(url, "/")
	if idx < 0 || idx == len(url)-1 {
		return "", errs.New(errs.JsonFormat, "wellknown: malformed Any.type_url %q", url)
	}
	return url[idx+1:], nil
}
