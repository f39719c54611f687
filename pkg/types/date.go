package types

import "time"

// DateLayout is the wire format for calendar days.
const DateLayout = "2006-01-02"

// DateOnly truncates a timestamp to its calendar day in UTC. Standups,
// summaries and heatmap buckets all key on this normalized form.
func DateOnly(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Today returns the current calendar day in UTC.
func Today() time.Time {
	return DateOnly(time.Now())
}

// FormatDate renders a normalized day using DateLayout.
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// ParseDate parses a DateLayout day into its normalized form.
func ParseDate(value string) (time.Time, error) {
	t, err := time.Parse(DateLayout, value)
	if err != nil {
		return time.Time{}, err
	}
	return DateOnly(t), nil
}
