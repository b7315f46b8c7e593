package domain

import "time"

// TimestampFormat is the RFC 3339 layout used by the upstream API and by
// every timestamp the connector persists.
const TimestampFormat = "2006-01-02T15:04:05Z"

// TimeRange is the [Start, End] window a fetch run covers. Both ends are
// inclusive.
type TimeRange struct {
	Start time.Time
	End   time.Time
}

// Contains reports whether t falls within the range, inclusive on both ends.
func (r TimeRange) Contains(t time.Time) bool {
	return !t.Before(r.Start) && !t.After(r.End)
}

// ClampStart raises Start to floor when it lies before it, returning the
// adjusted range and whether a correction was made. Used for object types
// whose upstream API cannot return data older than a retention boundary.
func (r TimeRange) ClampStart(floor time.Time) (TimeRange, bool) {
	if r.Start.Before(floor) {
		return TimeRange{Start: floor, End: r.End}, true
	}
	return r, false
}

// ParseTimestamp parses an upstream RFC 3339 timestamp.
func ParseTimestamp(s string) (time.Time, error) {
	return time.Parse(TimestampFormat, s)
}

// FormatTimestamp renders t in the upstream RFC 3339 layout.
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(TimestampFormat)
}
