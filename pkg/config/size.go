package config

import (
	"fmt"
	"strconv"
	"strings"
)

var sizeSuffixes = map[string]int64{
	"":   1,
	"B":  1,
	"KB": 1 << 10,
	"MB": 1 << 20,
	"GB": 1 << 30,
	"TB": 1 << 40,
}

// ParseSize parses a byte count, accepting either a plain integer or a
// human-readable form like "256MB", per the data_directories max_size
// field.
func ParseSize(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}

	i := len(s)
	for i > 0 && (s[i-1] < '0' || s[i-1] > '9') {
		i--
	}
	numPart, suffix := s[:i], strings.ToUpper(strings.TrimSpace(s[i:]))

	n, err := strconv.ParseInt(numPart, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("config: invalid size %q: %w", s, err)
	}

	mult, ok := sizeSuffixes[suffix]
	if !ok {
		return 0, fmt.Errorf("config: invalid size suffix %q in %q", suffix, s)
	}
	return n * mult, nil
}
