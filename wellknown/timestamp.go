package wellknown

import (
	"fmt"
	"time"

	"github.com/proto3reflect/dynproto/dynamic"
)

// Range of a valid Timestamp, per google/protobuf/timestamp.proto: seconds
// of 0001-01-01T00:00:00Z through just before 10000-01-01T00:00:00Z.
const (
	minTimestampSeconds = -62135596800
	maxTimestampSeconds = 253402300800
)

// NewTimestamp builds a google.protobuf.Timestamp message from t.
func NewTimestamp(t time.Time) *dynamic.Message {
	m := dynamic.NewMessage(timestampMsg)
	secs := t.Unix()
	nanos := int32(t.Sub(time.Unix(secs, 0)))
	m.Set("seconds", secs)
	m.Set("nanos", nanos)
	return m
}

// TimestampToTime reconstructs the UTC time.Time instant a
// google.protobuf.Timestamp message represents. It returns an error if the
// seconds/nanos combination falls outside the range timestamp.proto
// defines as valid.
func TimestampToTime(m *dynamic.Message) (time.Time, error) {
	secV, err := m.Get("seconds")
	if err != nil {
		return time.Time{}, err
	}
	nanosV, err := m.Get("nanos")
	if err != nil {
		return time.Time{}, err
	}
	secs := secV.(int64)
	nanos := nanosV.(int32)
	t := time.Unix(secs, int64(nanos)).UTC()
	if secs < minTimestampSeconds {
		return t, fmt.Errorf("wellknown: timestamp seconds %d before 0001-01-01", secs)
	}
	if secs >= maxTimestampSeconds {
		return t, fmt.Errorf("wellknown: timestamp seconds %d at or after 10000-01-01", secs)
	}
	if nanos < 0 || nanos >= 1e9 {
		return t, fmt.Errorf("wellknown: timestamp nanos %d not in range [0, 1e9)", nanos)
	}
	return t, nil
}
