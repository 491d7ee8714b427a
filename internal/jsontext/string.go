package jsontext

import (
	"strconv"
	"unicode/utf8"
)

// appendQuotedString appends in as a double-quoted, escaped JSON string.
func appendQuotedString(out []byte, in string) []byte {
	out = append(out, '"')
	start := 0
	for i := 0; i < len(in); {
		r, n := utf8.DecodeRuneInString(in[i:])
		if r >= ' ' && r != '"' && r != '\\' && r != utf8.RuneError {
			i += n
			continue
		}
		out = append(out, in[start:i]...)
		switch r {
		case '"', '\\':
			out = append(out, '\\', byte(r))
		case '\b':
			out = append(out, '\\', 'b')
		case '\f':
			out = append(out, '\\', 'f')
		case '\n':
			out = append(out, '\\', 'n')
		case '\r':
			out = append(out, '\\', 'r')
		case '\t':
			out = append(out, '\\', 't')
		default:
			out = append(out, '\\', 'u')
			out = append(out, "0000"[len(strconv.FormatUint(uint64(in[i]), 16)):]...)
			out = strconv.AppendUint(out, uint64(in[i]), 16)
		}
		i += n
		start = i
	}
	out = append(out, in[start:]...)
	out = append(out, '"')
	return out
}
