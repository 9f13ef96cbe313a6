// Package util holds small helpers shared by configuration parsing
package util

import (
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
)

const day = 24 * time.Hour

// ParseDuration reads the durations used in config.yaml.
// Besides time.ParseDuration syntax it accepts a leading day count ("7d", "1d12h")
// and a bare integer, which is taken as seconds.
func ParseDuration(s string) (time.Duration, error) {
	in := strings.TrimSpace(s)
	if in == "" {
		return 0, errors.New("empty duration")
	}
	if n, err := strconv.Atoi(in); err == nil {
		return time.Duration(n) * time.Second, nil
	}

	var total time.Duration
	if days, rest, ok := strings.Cut(in, "d"); ok {
		n, err := strconv.Atoi(days)
		if err != nil {
			return 0, errors.Wrapf(err, "duration %q: day count", s)
		}
		total = time.Duration(n) * day
		if in = rest; in == "" {
			return total, nil
		}
	}
	d, err := time.ParseDuration(in)
	if err != nil {
		return 0, errors.Wrapf(err, "duration %q", s)
	}
	return total + d, nil
}
