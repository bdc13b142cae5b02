package repository

import "time"

// formatTime stores timestamps as RFC3339 UTC text, which sorts lexically.
func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

// limitOrAll maps a non-positive limit to SQLite's "no limit".
func limitOrAll(limit int) int {
	if limit <= 0 {
		return -1
	}
	return limit
}
