package batch

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// FormatWalltime renders a duration in the scheduler's HH:MM:SS form.
// Hours are not wrapped at 24 so multi-day limits stay representable.
func FormatWalltime(d time.Duration) string {
	total := int64(d.Seconds())
	h := total / 3600
	m := (total % 3600) / 60
	s := total % 60
	return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
}

// ParseWalltime parses HH:MM:SS (or MM:SS) wall-clock limits.
func ParseWalltime(spec string) (time.Duration, error) {
	parts := strings.Split(spec, ":")
	if len(parts) < 2 || len(parts) > 3 {
		return 0, fmt.Errorf("invalid walltime %q: want HH:MM:SS", spec)
	}

	var fields []int64
	for _, p := range parts {
		v, err := strconv.ParseInt(p, 10, 64)
		if err != nil || v < 0 {
			return 0, fmt.Errorf("invalid walltime %q: non-numeric field %q", spec, p)
		}
		fields = append(fields, v)
	}

	var total int64
	if len(fields) == 2 {
		total = fields[0]*60 + fields[1]
	} else {
		total = fields[0]*3600 + fields[1]*60 + fields[2]
	}
	return time.Duration(total) * time.Second, nil
}
