package row

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Duration is a clock-style duration as exported by time trackers.
type Duration struct {
	Hours   int
	Minutes int
	Seconds int
}

// ParseClock parses an H:M:S duration. Exactly three non-negative integer
// components are required.
func ParseClock(s string) (Duration, error) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) != 3 {
		return Duration{}, fmt.Errorf("want H:M:S, got %d components", len(parts))
	}
	var n [3]int
	for i, p := range parts {
		v, err := strconv.Atoi(p)
		if err != nil {
			return Duration{}, err
		}
		if v < 0 {
			return Duration{}, fmt.Errorf("negative component %q", p)
		}
		n[i] = v
	}
	return Duration{Hours: n[0], Minutes: n[1], Seconds: n[2]}, nil
}

// FromMillis splits a millisecond count into a clock duration, dropping
// sub-second precision.
func FromMillis(ms int64) Duration {
	if ms < 0 {
		ms = 0
	}
	d := time.Duration(ms) * time.Millisecond
	return Duration{
		Hours:   int(d / time.Hour),
		Minutes: int(d % time.Hour / time.Minute),
		Seconds: int(d % time.Minute / time.Second),
	}
}

// TotalMinutes returns the whole minutes, rounding half a minute or more up.
func (d Duration) TotalMinutes() int {
	m := d.Hours*60 + d.Minutes
	if d.Seconds >= 30 {
		m++
	}
	return m
}

// String renders the rounded duration as e.g. "1h45m". Zero parts are
// omitted, so a duration under half a minute renders empty.
func (d Duration) String() string {
	total := d.TotalMinutes()
	h, m := total/60, total%60
	var b strings.Builder
	if h > 0 {
		b.WriteString(strconv.Itoa(h))
		b.WriteString("h")
	}
	if m > 0 {
		b.WriteString(strconv.Itoa(m))
		b.WriteString("m")
	}
	return b.String()
}
