package task

import (
	"fmt"
	"strings"
	"time"
)

// Layouts carrying an explicit offset. Fractional seconds are accepted after
// the seconds field even though the layouts do not spell them out.
var offsetLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05Z07:00",
}

// Legacy layouts without an offset, interpreted in the default zone.
var naiveLayouts = []string{
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04",
	"2006-01-02",
}

// Layouts accepted from a date picker.
var dateLayouts = []string{
	"2006-01-02",
	"02-01-2006",
}

// DisplayDate is how deadlines are shown to owners.
const DisplayDate = "02-01-2006"

// DisplayDateTime is how deadlines are written in reminder emails.
const DisplayDateTime = "02-01-2006 15:04"

// ParseDeadline parses a stored ISO-8601 deadline. Values without an offset
// are placed in zone, keeping their wall-clock reading.
func ParseDeadline(s string, zone *time.Location) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, fmt.Errorf("%w: empty value", ErrBadDeadline)
	}
	for _, layout := range offsetLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	if zone == nil {
		return time.Time{}, fmt.Errorf("%w: %q has no offset and no default zone is set", ErrBadDeadline, s)
	}
	for _, layout := range naiveLayouts {
		if t, err := time.ParseInLocation(layout, s, zone); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: %q", ErrBadDeadline, s)
}

// ParseInput parses a deadline typed by an owner: either a full RFC 3339
// timestamp or a bare date, which means midnight in zone.
func ParseInput(s string, zone *time.Location) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.ParseInLocation(layout, s, zone); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: %q (want RFC 3339, YYYY-MM-DD or DD-MM-YYYY)", ErrBadDeadline, s)
}

// Countdown renders the time left until deadline as "Nd Nh Nm Ns", or
// "Expired" once it has passed.
func Countdown(deadline, now time.Time) string {
	remaining := deadline.Sub(now)
	if remaining <= 0 {
		return "Expired"
	}
	secs := int64(remaining / time.Second)
	days := secs / 86400
	secs %= 86400
	return fmt.Sprintf("%dd %dh %dm %ds", days, secs/3600, (secs/60)%60, secs%60)
}
