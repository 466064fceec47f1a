package loyalty

import (
	"sort"
	"time"
)

// DateLayout is the calendar-day format used for activity dates.
const DateLayout = "2006-01-02"

// LongestConsecutiveRun returns the length of the longest run of consecutive
// calendar days in dates (YYYY-MM-DD strings). It returns 0 for an empty set
// and at least 1 otherwise. Duplicates and input ordering are irrelevant;
// day differences are computed on parsed dates, so runs spanning month and
// year boundaries count correctly. Unparseable entries are ignored.
func LongestConsecutiveRun(dates []string) int {
	seen := make(map[string]struct{}, len(dates))
	days := make([]time.Time, 0, len(dates))
	for _, d := range dates {
		if _, ok := seen[d]; ok {
			continue
		}
		seen[d] = struct{}{}
		t, err := time.Parse(DateLayout, d)
		if err != nil {
			continue
		}
		days = append(days, t)
	}
	if len(days) == 0 {
		return 0
	}

	sort.Slice(days, func(i, j int) bool { return days[i].Before(days[j]) })

	best, current := 1, 1
	for i := 1; i < len(days); i++ {
		gap := int(days[i].Sub(days[i-1]) / (24 * time.Hour))
		switch gap {
		case 1:
			current++
		case 0:
			// duplicate day, keep the run as-is
		default:
			current = 1
		}
		if current > best {
			best = current
		}
	}
	return best
}
