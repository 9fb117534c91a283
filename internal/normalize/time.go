package normalize

import (
	"fmt"
	"time"
)

const eventTimeTextLayout = "01-02, 15:04:05"

// FormatEventTimeText renders an epoch-millisecond order timestamp as the
// `MM-DD, HH:MM:SS` UTC text tag stored alongside every event (spec §4.C).
func FormatEventTimeText(orderUpdateTimeMs int64) string {
	return time.UnixMilli(orderUpdateTimeMs).UTC().Format(eventTimeTextLayout)
}

// ResolveEventTime determines the absolute UTC instant for an event.
// Prefers the millisecond field when present (non-zero); otherwise
// reconstructs it from the textual MM-DD, HH:MM:SS tag using fetchedAt's
// year, subtracting one year if the reconstructed instant would lie in
// the future relative to fetchedAt (spec §3, §9). Getting this fallback
// wrong corrupts lifecycle ordering, so it is preserved exactly even
// though the millisecond field makes it redundant in the common case.
func ResolveEventTime(orderUpdateTimeMs int64, eventTimeText string, fetchedAt time.Time) (time.Time, error) {
	if orderUpdateTimeMs > 0 {
		return time.UnixMilli(orderUpdateTimeMs).UTC(), nil
	}
	return reconstructFromText(eventTimeText, fetchedAt)
}

func reconstructFromText(eventTimeText string, fetchedAt time.Time) (time.Time, error) {
	parsed, err := time.Parse(eventTimeTextLayout, eventTimeText)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse event time text %q: %w", eventTimeText, err)
	}
	year := fetchedAt.UTC().Year()
	candidate := time.Date(year, parsed.Month(), parsed.Day(), parsed.Hour(), parsed.Minute(), parsed.Second(), 0, time.UTC)
	if candidate.After(fetchedAt) {
		candidate = candidate.AddDate(-1, 0, 0)
	}
	return candidate, nil
}
