package wellknown

import (
	"fmt"
	"time"

	"github.com/proto3reflect/dynproto/dynamic"
)

// Range of a valid Duration in seconds, per google/protobuf/duration.proto
// (about 10,000 years).
const (
	maxDurationSeconds = int64(10000 * 365.25 * 24 * 60 * 60)
	minDurationSeconds = -maxDurationSeconds
)

// NewDuration builds a google.protobuf.Duration message from d.
func NewDuration(d time.Duration) *dynamic.Message {
	m := dynamic.NewMessage(durationMsg)
	nanos := d.Nanoseconds()
	secs := nanos / 1e9
	nanos -= secs * 1e9
	m.Set("seconds", secs)
	m.Set("nanos", int32(nanos))
	return m
}

// DurationToGo reconstructs a time.Duration from a google.protobuf.Duration
// message. It returns an error if the stored seconds/nanos fall outside the
// range duration.proto defines as valid, or if the value overflows
// time.Duration's own (narrower, ~290 year) range.
func DurationToGo(m *dynamic.Message) (time.Duration, error) {
	secV, err := m.Get("seconds")
	if err != nil {
		return 0, err
	}
	nanosV, err := m.Get("nanos")
	if err != nil {
		return 0, err
	}
	secs := secV.(int64)
	nanos := nanosV.(int32)
	if secs < minDurationSeconds || secs > maxDurationSeconds {
		return 0, fmt.Errorf("wellknown: duration seconds %d out of range", secs)
	}
	if nanos <= -1e9 || nanos >= 1e9 {
		return 0, fmt.Errorf("wellknown: duration nanos %d out of range", nanos)
	}
	if (secs < 0 && nanos > 0) || (secs > 0 && nanos < 0) {
		return 0, fmt.Errorf("wellknown: duration seconds %d and nanos %d have different signs", secs, nanos)
	}
	d := time.Duration(secs) * time.Second
	if int64(d/time.Second) != secs {
		return 0, fmt.Errorf("wellknown: duration of %d seconds overflows time.Duration", secs)
	}
	if nanos != 0 {
		sum := d + time.Duration(nanos)
		if (sum < d) != (nanos < 0) {
			return 0, fmt.Errorf("wellknown: duration overflows time.Duration")
		}
		d = sum
	}
	return d, nil
}
