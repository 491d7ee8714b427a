package wire

// Options configures the binary codec.
type Options struct {
	// RecursionLimit bounds embedded-message nesting depth during encode
	// and decode; 0 selects the default of 100.
	RecursionLimit int

	// MapKeySort forces deterministic (sorted-by-key) emission order for
	// map entries. The codec always sorts regardless of this flag in the
	// current implementation; the field exists so callers can express
	// intent and so a future unsorted fast path has somewhere to hang
	// without an API break.
	MapKeySort bool
}

func (o Options) recursionLimit() int {
	if o.RecursionLimit <= 0 {
		return 100
	}
	return o.RecursionLimit
}

// DefaultOptions returns the zero-value Options, which select the default
// 100-deep recursion limit.
func DefaultOptions() Options { return Options{} }
