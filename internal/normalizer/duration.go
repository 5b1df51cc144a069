package normalizer

import (
	"fmt"
	"regexp"
	"strconv"
)

var (
	isoDurationRe     = regexp.MustCompile(`(?i)^P(?:(\d+)D)?(?:T(?:(\d+)H)?(?:(\d+)M)?(?:(\d+)S)?)?$`)
	compactDurationRe = regexp.MustCompile(`(?i)^(?:(\d+)h)?\s*(?:(\d+)m)?$`)
	clockDurationRe   = regexp.MustCompile(`^(\d+):(\d{2})$`)
)

// ParseMinutes converts a duration string into whole minutes. It accepts the
// provider's ISO 8601 encoding ("PT9H45M", "P1DT2H"), the compact "9h45m"
// form and the report's own "HH:MM" form. Seconds are floored away.
func ParseMinutes(s string) (int, bool) {
	if s == "" {
		return 0, false
	}

	if m := isoDurationRe.FindStringSubmatch(s); m != nil {
		days := atoiDefault(m[1])
		hours := atoiDefault(m[2])
		mins := atoiDefault(m[3])
		if m[1] == "" && m[2] == "" && m[3] == "" && m[4] == "" {
			return 0, false
		}
		return days*24*60 + hours*60 + mins, true
	}

	if m := clockDurationRe.FindStringSubmatch(s); m != nil {
		return atoiDefault(m[1])*60 + atoiDefault(m[2]), true
	}

	if m := compactDurationRe.FindStringSubmatch(s); m != nil {
		if m[1] == "" && m[2] == "" {
			return 0, false
		}
		return atoiDefault(m[1])*60 + atoiDefault(m[2]), true
	}

	return 0, false
}

// FormatMinutes renders whole minutes as a fixed-width "HH:MM" string. Hours
// grow past two digits rather than wrapping into days.
func FormatMinutes(minutes int) string {
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}

func atoiDefault(s string) int {
	if s == "" {
		return 0
	}
	n, _ := strconv.Atoi(s)
	return n
}
