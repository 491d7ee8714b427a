package desc

import (
	"fmt"
	"sort"

	"gopkg.in/yaml.v3"
)

// Options is the opaque string-to-value option map carried by every
// descriptor kind. Values may be of any type; equality falls back to the
// value's canonical string form when it is not directly comparable. YAML
// rendering passes each value to the YAML encoder as is.
type Options map[string]interface{}

// Equal reports whether two option maps are semantically equal: same key
// set, and for each key either the values compare equal directly or, when
// that is not possible (e.g. slices, maps), their fmt.Sprintf("%v", ...)
// renderings match.
func (o Options) Equal(other Options) bool {
	if len(o) != len(other) {
		return false
	}
	for k, v := range o {
		ov, ok := other[k]
		if !ok {
			return false
		}
		if !valuesEqual(v, ov) {
			return false
		}
	}
	return true
}

func valuesEqual(a, b interface{}) (eq bool) {
	defer func() {
		if recover() != nil {
			eq = fmt.Sprintf("%v", a) == fmt.Sprintf("%v", b)
		}
	}()
	return a == b
}

// Clone returns a shallow copy of the option map.
func (o Options) Clone() Options {
	if o == nil {
		return nil
	}
	out := make(Options, len(o))
	for k, v := range o {
		out[k] = v
	}
	return out
}

// sortedKeys returns the map's keys in a deterministic order, used for the
// YAML dump below and anywhere a canonical iteration order over options is
// needed.
func (o Options) sortedKeys() []string {
	keys := make([]string, 0, len(o))
	for k := range o {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// DumpOptionsYAML renders an option map to its YAML form, keys in sorted
// order, for human-editable debug output and registry introspection
// tooling.
func DumpOptionsYAML(o Options) (string, error) {
	ordered := make(map[string]interface{}, len(o))
	for _, k := range o.sortedKeys() {
		ordered[k] = o[k]
	}
	b, err := yaml.Marshal(ordered)
	if err != nil {
		return "", fmt.Errorf("desc: marshal options to yaml: %w", err)
	}
	return string(b), nil
}

// LoadOptionsYAML parses an option map back out of its YAML form.
func LoadOptionsYAML(s string) (Options, error) {
	var raw map[string]interface{}
	if err := yaml.Unmarshal([]byte(s), &raw); err != nil {
		return nil, fmt.Errorf("desc: unmarshal options from yaml: %w", err)
	}
	return Options(raw), nil
}
