package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// parseDurationExtended parses Go-style durations and additionally accepts
// a day unit, e.g. "10s", "90m", "2d", "1.5d12h". Day segments are expanded
// to hours and the result handed to time.ParseDuration.
func parseDurationExtended(raw string) (time.Duration, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, fmt.Errorf("duration is required")
	}
	if !strings.Contains(raw, "d") {
		return time.ParseDuration(raw)
	}

	s := raw
	var b strings.Builder
	if strings.HasPrefix(s, "+") || strings.HasPrefix(s, "-") {
		b.WriteByte(s[0])
		s = s[1:]
	}

	for s != "" {
		i := 0
		dotSeen := false
		for i < len(s) && (s[i] >= '0' && s[i] <= '9' || s[i] == '.' && !dotSeen) {
			if s[i] == '.' {
				dotSeen = true
			}
			i++
		}
		if i == 0 || i == len(s) {
			return 0, fmt.Errorf("invalid duration %q", raw)
		}
		number := s[:i]
		s = s[i:]

		if s[0] == 'd' {
			days, err := strconv.ParseFloat(number, 64)
			if err != nil {
				return 0, fmt.Errorf("invalid duration %q", raw)
			}
			b.WriteString(strconv.FormatFloat(days*24, 'f', -1, 64))
			b.WriteByte('h')
			s = s[1:]
			continue
		}

		j := 0
		for j < len(s) && (s[j] < '0' || s[j] > '9') && s[j] != '.' {
			j++
		}
		b.WriteString(number)
		b.WriteString(s[:j])
		s = s[j:]
	}

	return time.ParseDuration(b.String())
}
