package parse

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	colonForm   = regexp.MustCompile(`^(\d+):(\d{1,2})$`)
	hoursForm   = regexp.MustCompile(`(\d+(?:\.\d+)?)\s*h`)
	minutesForm = regexp.MustCompile(`(\d+)\s*m`)
	bareNumber  = regexp.MustCompile(`^\d+$`)
)

// DurationMinutes normalizes the tracked-time shapes the tool emits
// ("2h 30m", "2:30", "150m", "2.5h") to integer minutes. The colon
// form takes precedence over the hour/minute decomposition when both
// would match. Unparseable input yields zero.
func DurationMinutes(token string) int {
	token = strings.ToLower(strings.TrimSpace(token))
	if token == "" {
		return 0
	}

	if m := colonForm.FindStringSubmatch(token); m != nil {
		hours, _ := strconv.Atoi(m[1])
		minutes, _ := strconv.Atoi(m[2])
		return hours*60 + minutes
	}

	total := 0
	matched := false
	if m := hoursForm.FindStringSubmatch(token); m != nil {
		hours, err := strconv.ParseFloat(m[1], 64)
		if err == nil {
			total += int(hours * 60)
			matched = true
		}
	}
	if m := minutesForm.FindStringSubmatch(token); m != nil {
		minutes, err := strconv.Atoi(m[1])
		if err == nil {
			total += minutes
			matched = true
		}
	}
	if matched {
		return total
	}

	if bareNumber.MatchString(token) {
		minutes, _ := strconv.Atoi(token)
		return minutes
	}
	return 0
}
