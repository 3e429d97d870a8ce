package tolls

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ClockTime is a local time of day in minutes since midnight. 1440 ("24:00") is only meaningful
// as the exclusive end of a slot that runs until midnight.
type ClockTime int

const (
	Midnight ClockTime = 0
	EndOfDay ClockTime = 24 * 60
)

func NewClockTime(hour, minute int) ClockTime {
	return ClockTime(hour*60 + minute)
}

// ParseClockTime parses "HH:MM" in 24-hour form. "24:00" is accepted, nothing later.
func ParseClockTime(s string) (ClockTime, error) {
	hh, mm, ok := strings.Cut(s, ":")
	if !ok || len(hh) < 1 || len(hh) > 2 || len(mm) != 2 {
		return 0, fmt.Errorf("invalid time of day %q, want HH:MM", s)
	}
	h, errH := strconv.Atoi(hh)
	m, errM := strconv.Atoi(mm)
	if errH != nil || errM != nil {
		return 0, fmt.Errorf("invalid time of day %q, want HH:MM", s)
	}
	if h < 0 || m < 0 || m > 59 || h > 24 || (h == 24 && m != 0) {
		return 0, fmt.Errorf("time of day %q out of range", s)
	}
	return NewClockTime(h, m), nil
}

// ClockTimeOf returns the minute of day of t in its own location.
func ClockTimeOf(t time.Time) ClockTime {
	return NewClockTime(t.Hour(), t.Minute())
}

func (c ClockTime) String() string {
	return fmt.Sprintf("%02d:%02d", int(c)/60, int(c)%60)
}

func (c ClockTime) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.String())
}

func (c *ClockTime) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseClockTime(s)
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}
