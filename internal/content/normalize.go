package content

import (
	"fmt"
	"strconv"
	"time"
)

// FormatCount shortens an interaction counter for display. Millions and
// thousands get one truncated decimal, zero collapses to the empty string so
// the section it labels is omitted.
func FormatCount(v int64) string {
	switch {
	case v >= 1_000_000:
		return fmt.Sprintf("%d.%dM", v/1_000_000, v%1_000_000/100_000)
	case v >= 1_000:
		return fmt.Sprintf("%d.%dK", v/1_000, v%1_000/100)
	case v == 0:
		return ""
	default:
		return strconv.FormatInt(v, 10)
	}
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"Mon Jan 02 15:04:05 -0700 2006",
}

// ParseTimestamp converts a provider timestamp string to epoch seconds. It
// accepts ISO-8601 with or without fractional seconds and offset (naive
// timestamps are treated as UTC) plus the legacy Twitter layout. Returns 0
// when nothing matches.
func ParseTimestamp(s string) int64 {
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Unix()
		}
	}
	return 0
}

// PollStatus describes how much time a poll has left, relative to now.
// Expired polls report final results; otherwise the coarsest nonzero unit is
// used, rounded up so a poll never claims less time than it has.
func PollStatus(endsAt int64, now time.Time) string {
	remaining := endsAt - now.Unix()
	if remaining <= 0 {
		return "Final results"
	}
	if days := remaining / 86_400; days > 0 {
		return plural(days, "day") + " left"
	}
	if hours := remaining / 3_600; hours > 0 {
		if remaining%3_600 >= 60 {
			hours++
		}
		return plural(hours, "hour") + " left"
	}
	if minutes := remaining / 60; minutes > 0 {
		return plural(minutes+1, "minute") + " left"
	}
	return plural(remaining+1, "second") + " left"
}

func plural(n int64, unit string) string {
	if n == 1 {
		return "1 " + unit
	}
	return fmt.Sprintf("%d %ss", n, unit)
}

// GroupDigits renders an integer with space-separated thousands groups, used
// for poll voter counts.
func GroupDigits(v int64) string {
	s := strconv.FormatInt(v, 10)
	neg := false
	if len(s) > 0 && s[0] == '-' {
		neg = true
		s = s[1:]
	}
	var out []byte
	for i, c := range []byte(s) {
		if i > 0 && (len(s)-i)%3 == 0 {
			out = append(out, ' ')
		}
		out = append(out, c)
	}
	if neg {
		return "-" + string(out)
	}
	return string(out)
}
