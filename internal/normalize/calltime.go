package normalize

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Matches "1 days 02:30:00", "1 day", "02:30:00", "02:30" and "0 days 00:15:00.250000".
var callTimePattern = regexp.MustCompile(`^(?:(\d+)\s*days?)?\s*(?:(\d{1,2}):(\d{2})(?::(\d{2})(?:\.(\d+))?)?)?$`)

// StandardizeCallTime converts a call duration to whole seconds. nil or blank
// input is 0. Besides the day/clock forms, a bare integer is taken as seconds
// and Go duration strings ("15m30s") are accepted.
func StandardizeCallTime(v *string) (int64, error) {
	if v == nil {
		return 0, nil
	}
	s := strings.ToLower(strings.TrimSpace(*v))
	if s == "" {
		return 0, nil
	}
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return n, nil
	}
	if m := callTimePattern.FindStringSubmatch(s); m != nil && (m[1] != "" || m[2] != "") {
		days := atoi64(m[1])
		hours := atoi64(m[2])
		minutes := atoi64(m[3])
		seconds := atoi64(m[4])
		return days*86400 + hours*3600 + minutes*60 + seconds, nil
	}
	if d, err := time.ParseDuration(s); err == nil {
		return int64(d / time.Second), nil
	}
	return 0, fmt.Errorf("unrecognized call time %q", *v)
}

func atoi64(s string) int64 {
	if s == "" {
		return 0
	}
	n, _ := strconv.ParseInt(s, 10, 64)
	return n
}
