package wellknown_test

import (
	"testing"
	"time"

	"github.com/proto3reflect/dynproto/registry"
	"github.com/proto3reflect/dynproto/wellknown"
)

func TestTimestampRoundTrip(t *testing.T) {
	want := time.Date(2024, 3, 15, 8, 30, 0, 123000000, time.UTC)
	m := wellknown.NewTimestamp(want)
	got, err := wellknown.TimestampToTime(m)
	if err != nil {
		t.Fatal(err)
	}
	if !got.Equal(want) {
		t.Errorf("TimestampToTime() = %v, want %v", got, want)
	}
}

func TestTimestampOutOfRange(t *testing.T) {
	m := wellknown.NewTimestamp(time.Unix(0, 0))
	m.Set("seconds", int64(-70000000000))
	if _, err := wellknown.TimestampToTime(m); err == nil {
		t.Error("expected an error for a timestamp before year 1")
	}
}

func TestDurationRoundTrip(t *testing.T) {
	want := 90*time.Second + 500*time.Millisecond
	m := wellknown.NewDuration(want)
	got, err := wellknown.DurationToGo(m)
	if err != nil {
		t.Fatal(err)
	}
	if got != want {
		t.Errorf("DurationToGo() = %v, want %v", got, want)
	}
}

func TestDurationSignMismatchRejected(t *testing.T) {
	m := wellknown.NewDuration(time.Second)
	m.Set("seconds", int64(1))
	m.Set("nanos", int32(-500))
	if _, err := wellknown.DurationToGo(m); err == nil {
		t.Error("expected an error when seconds and nanos have different signs")
	}
}

func TestStructRoundTrip(t *testing.T) {
	fields := map[string]interface{}{
		"name":   "Ada",
		"age":    float64(36),
		"active": true,
		"tags":   []interface{}{"a", "b"},
		"nested": map[string]interface{}{"x": float64(1)},
	}
	m, err := wellknown.NewStruct(fields)
	if err != nil {
		t.Fatal(err)
	}
	got, err := wellknown.StructToMap(m)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != len(fields) {
		t.Fatalf("StructToMap() has %d fields, want %d", len(got), len(fields))
	}
	if got["name"] != "Ada" {
		t.Errorf("got[\"name\"] = %v, want Ada", got["name"])
	}
}

func TestValueNullRoundTrip(t *testing.T) {
	m, err := wellknown.NewValue(nil)
	if err != nil {
		t.Fatal(err)
	}
	got, err := wellknown.ValueToGo(m)
	if err != nil {
		t.Fatal(err)
	}
	if got != nil {
		t.Errorf("ValueToGo(null) = %v, want nil", got)
	}
}

func TestFieldMaskPaths(t *testing.T) {
	m := wellknown.NewFieldMask([]string{"user.name", "user.age"})
	got, err := wellknown.FieldMaskPaths(m)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 || got[0] != "user.name" || got[1] != "user.age" {
		t.Errorf("FieldMaskPaths() = %v", got)
	}
}

func TestAnyPackUnpack(t *testing.T) {
	reg := registry.New()
	wellknown.Register(reg)

	payload := wellknown.NewDuration(5 * time.Second)
	any, err := wellknown.NewAny(payload)
	if err != nil {
		t.Fatal(err)
	}
	typeName, err := wellknown.AnyTypeName(any)
	if err != nil {
		t.Fatal(err)
	}
	if typeName != wellknown.DurationFullName {
		t.Errorf("AnyTypeName() = %q, want %q", typeName, wellknown.DurationFullName)
	}

	got, err := wellknown.UnpackAny(any, reg)
	if err != nil {
		t.Fatal(err)
	}
	if !got.Equal(payload) {
		t.Error("UnpackAny did not reproduce the packed message")
	}
}

func TestWrapperRoundTrip(t *testing.T) {
	m := wellknown.NewStringValue("hello")
	v, err := wellknown.WrapperValue(m)
	if err != nil {
		t.Fatal(err)
	}
	if v != "hello" {
		t.Errorf("WrapperValue() = %v, want hello", v)
	}
}
