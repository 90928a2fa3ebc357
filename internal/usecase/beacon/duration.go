package beacon

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// durationPattern accepts one or more digits optionally followed by a single
// unit letter. A missing unit means seconds.
var durationPattern = regexp.MustCompile(`(?i)^(\d+)\s*([smh]?)$`)

// MinDuration is the floor applied to every parsed duration. It protects
// against "/on 0" being misread as an off command.
const MinDuration = time.Second

// ParseDuration converts a user-supplied duration expression ("45", "2m",
// "1h") into a duration. Input that doesn't match the pattern returns
// fallback unchanged. The result is never below MinDuration.
func ParseDuration(text string, fallback time.Duration) time.Duration {
	m := durationPattern.FindStringSubmatch(strings.TrimSpace(text))
	if m == nil {
		return fallback
	}

	n, err := strconv.ParseInt(m[1], 10, 64)
	if err != nil {
		// Digits too large for int64; treat like any other non-match.
		return fallback
	}

	var scale time.Duration
	switch strings.ToLower(m[2]) {
	case "h":
		scale = time.Hour
	case "m":
		scale = time.Minute
	default:
		scale = time.Second
	}

	d := time.Duration(n) * scale
	if d < MinDuration {
		return MinDuration
	}
	return d
}
