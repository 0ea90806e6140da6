package utils

import (
	"fmt"
	"time"
)

// Accepted timestamp layouts for ingested logs. RFC3339 first since the
// synthetic generator and most exporters emit it.
var timestampLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
}

// ParseTimestamp parses a log timestamp in any of the accepted layouts.
func ParseTimestamp(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, fmt.Errorf("empty time value")
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unparseable time value %q", value)
}

// FloorHour truncates a timestamp to the start of its hour.
func FloorHour(t time.Time) time.Time {
	return t.Truncate(time.Hour)
}
