package timezone

import (
	"errors"
	"strings"
	"time"
)

const DefaultTimezone = "UTC"

// Layouts accepted for event timestamps, most specific first.
var Layouts = []string{
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
}

// DisplayLayout is how event timestamps are written back out.
const DisplayLayout = "2006-01-02 15:04:05"

var ErrInvalidTimestamp = errors.New("invalid timestamp")

func IsValid(tz string) bool {
	if tz == "" {
		return false
	}
	_, err := time.LoadLocation(tz)
	return err == nil
}

func Location(tz string) *time.Location {
	if IsValid(tz) {
		if loc, err := time.LoadLocation(tz); err == nil {
			return loc
		}
	}

	loc, _ := time.LoadLocation(DefaultTimezone)
	return loc
}

func Now() time.Time {
	return time.Now().In(Location(DefaultTimezone))
}

func NowIn(tz string) time.Time {
	return time.Now().In(Location(tz))
}

// ParseIn parses a local wall-clock timestamp in tz using the first layout
// in Layouts that matches.
func ParseIn(tz, value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, ErrInvalidTimestamp
	}
	loc := Location(tz)
	for _, layout := range Layouts {
		if t, err := time.ParseInLocation(layout, value, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, ErrInvalidTimestamp
}

func Format(t time.Time, tz string) string {
	return t.In(Location(tz)).Format(DisplayLayout)
}
