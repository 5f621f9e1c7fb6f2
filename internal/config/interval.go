package config

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// MaxIntervalSeconds is the longest interval that still fits a time.Duration.
const MaxIntervalSeconds = math.MaxInt64 / int64(time.Second)

// ErrInvalidInterval is returned for intervals that are malformed or not positive.
var ErrInvalidInterval = errors.New("interval must be -s SECONDS, -m MINUTES or a positive number of seconds")

// ParseInterval parses the check interval syntax "-s 30" (seconds),
// "-m 5" (minutes) or a bare number of seconds, returning seconds.
func ParseInterval(s string) (int, error) {
	fields := strings.Fields(s)

	var unit, value string
	switch len(fields) {
	case 1:
		unit, value = "-s", fields[0]
	case 2:
		unit, value = fields[0], fields[1]
	default:
		return 0, fmt.Errorf("%q: %w", s, ErrInvalidInterval)
	}

	n, err := strconv.Atoi(value)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("%q: %w", s, ErrInvalidInterval)
	}

	switch unit {
	case "-s":
		if int64(n) > MaxIntervalSeconds {
			return 0, fmt.Errorf("%q: %w", s, ErrInvalidInterval)
		}
		return n, nil
	case "-m":
		if int64(n) > MaxIntervalSeconds/60 {
			return 0, fmt.Errorf("%q: %w", s, ErrInvalidInterval)
		}
		return n * 60, nil
	default:
		return 0, fmt.Errorf("%q: %w", s, ErrInvalidInterval)
	}
}
