package utils

import (
	"testing"
	"time"
)

func TestParseTimestampLayouts(t *testing.T) {
	want := time.Date(2025, 3, 1, 10, 30, 0, 0, time.UTC)
	for _, value := range []string{
		"2025-03-01T10:30:00Z",
		"2025-03-01T10:30:00",
		"2025-03-01 10:30:00",
	} {
		got, err := ParseTimestamp(value)
		if err != nil {
			t.Fatalf("ParseTimestamp(%q) failed: %v", value, err)
		}
		if !got.Equal(want) {
			t.Fatalf("ParseTimestamp(%q) = %v, want %v", value, got, want)
		}
	}
}

func TestParseTimestampRejects(t *testing.T) {
	for _, value := range []string{"", "01/03/2025", "yesterday"} {
		if _, err := ParseTimestamp(value); err == nil {
			t.Fatalf("expected error for %q", value)
		}
	}
}

func TestFloorHour(t *testing.T) {
	in := time.Date(2025, 3, 1, 10, 45, 59, 123, time.UTC)
	want := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	if got := FloorHour(in); !got.Equal(want) {
		t.Fatalf("FloorHour = %v, want %v", got, want)
	}
}
