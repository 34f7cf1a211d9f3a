package repository

import (
	"fmt"
	"time"
)

// dateLayout is the storage format for trade and exit dates.
const dateLayout = "2006-01-02"

// ParseTime parses a date string as stored by SQLite: "2006-01-02",
// "2006-01-02 15:04:05" (CURRENT_TIMESTAMP defaults) or RFC3339.
func ParseTime(str string) (time.Time, error) {
	for _, layout := range []string{dateLayout, "2006-01-02 15:04:05", time.RFC3339} {
		if t, err := time.Parse(layout, str); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("failed to parse date: %q", str)
}

// nullFloat converts an optional float for binding into a nullable column.
func nullFloat(f *float64) any {
	if f == nil {
		return nil
	}
	return *f
}
