package helper

import (
	"strings"
	"testing"
	"time"

	"github.com/relloyd/addrsync/logger"
)

func TestGetStringFromInterface(t *testing.T) {
	log := logger.NewLogger("addrsync", "info", true)
	layout := "2006-01-02 15:04:05"
	cases := []struct {
		name     string
		input    interface{}
		expected string
	}{
		{"nil", nil, ""},
		{"string", "abc", "abc"},
		{"raw", []byte{0x0a, 0xff, 0x10}, "0AFF10"},
		{"int64", int64(42), "42"},
		{"float64 integral", float64(7), "7"},
		{"float64 fraction", 3.25, "3.25"},
		{"float64 large", 12345678901.0, "12345678901"},
		{"time", time.Date(2020, 1, 2, 3, 4, 5, 0, time.UTC), "2020-01-02 03:04:05"},
		{"bool", true, "true"},
	}
	for _, c := range cases {
		log.Debug("Test ", c.name)
		got, err := GetStringFromInterface(c.input, layout)
		if err != nil {
			t.Fatalf("%v: unexpected error: %v", c.name, err)
		}
		if got != c.expected {
			t.Fatalf("%v: expected %q; got %q", c.name, c.expected, got)
		}
	}
	// Unhandled types are errors.
	if _, err := GetStringFromInterface(struct{}{}, layout); err == nil {
		t.Fatal("expected error for unhandled type")
	}
}

func TestSplitRight(t *testing.T) {
	a, b := SplitRight("user/pa/ss@//host", "@")
	if a != "user/pa/ss" || b != "//host" {
		t.Fatalf("unexpected split: %q %q", a, b)
	}
	a, b = SplitRight("nothing", "@")
	if a != "nothing" || b != "" {
		t.Fatalf("unexpected split when separator is missing: %q %q", a, b)
	}
	a, b = Split("user/pa/ss", "/")
	if a != "user" || b != "pa/ss" {
		t.Fatalf("unexpected left split: %q %q", a, b)
	}
}

func TestOrderedMapValuesToStringSlice(t *testing.T) {
	m := StringSliceToOrderedMap([]string{"c", "a", "b"})
	got, err := OrderedMapValuesToStringSlice(m)
	if err != nil {
		t.Fatal(err)
	}
	if strings.Join(got, ",") != "c,a,b" {
		t.Fatalf("expected insertion order to be kept; got %v", got)
	}
	m.Set("bad", 1)
	if _, err = OrderedMapValuesToStringSlice(m); err == nil {
		t.Fatal("expected error for non-string value")
	}
}

func TestGetTrueFalseStringAsBool(t *testing.T) {
	if !GetTrueFalseStringAsBool(" TRUE ") {
		t.Fatal("expected true")
	}
	if GetTrueFalseStringAsBool("yes") {
		t.Fatal("expected false")
	}
}
