package timeutils

import (
	"fmt"
	"strconv"
	"time"
)

const nanosPerSecond = 1e9

// NanosToSeconds converts a simulator timestamp delta in nanoseconds to
// seconds.
func NanosToSeconds(ns float64) float64 {
	return ns / nanosPerSecond
}

// ParseSimDuration parses a simulation duration such as "60s" or "2m".
// A bare number is taken as seconds.
func ParseSimDuration(s string) (time.Duration, error) {
	if s == "" {
		return 0, fmt.Errorf("simulation duration is required")
	}
	if n, err := strconv.Atoi(s); err == nil {
		s = strconv.Itoa(n) + "s"
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("invalid simulation duration: %s", s)
	}
	if d <= 0 {
		return 0, fmt.Errorf("simulation duration must be positive: %s", s)
	}
	if d%time.Second != 0 {
		return 0, fmt.Errorf("simulation duration must be whole seconds: %s", s)
	}
	return d, nil
}

// FormatSimDuration renders a duration the way the simulator names its log
// files, e.g. 60s or 120s.
func FormatSimDuration(d time.Duration) string {
	return strconv.FormatInt(int64(d/time.Second), 10) + "s"
}
