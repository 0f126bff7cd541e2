// ABOUTME: Compact textual schedule syntax used by command-line flags.
// ABOUTME: "daily", "weekly:mon,wed", "monthly:1,15", "monthly_relative:2:tue", "interval:3".
package schedule

import (
	"fmt"
	"strconv"
	"strings"
)

// FromSpec parses the compact syntax into a Schedule. Empty input is Daily.
func FromSpec(spec string) (Schedule, error) {
	spec = strings.ToLower(strings.TrimSpace(spec))
	if spec == "" || spec == "daily" {
		return Daily{}, nil
	}

	kind, rest, _ := strings.Cut(spec, ":")
	switch kind {
	case "weekly":
		var w Weekly
		for _, name := range splitList(rest) {
			d, err := ParseWeekday(name)
			if err != nil {
				return nil, fmt.Errorf("schedule %q: %w", spec, err)
			}
			w.Days = append(w.Days, d)
		}
		if len(w.Days) == 0 {
			return nil, fmt.Errorf("schedule %q: weekly needs at least one day", spec)
		}
		return w, nil
	case "monthly":
		var m Monthly
		for _, s := range splitList(rest) {
			n, err := strconv.Atoi(s)
			if err != nil || n < 1 || n > 31 {
				return nil, fmt.Errorf("schedule %q: bad day of month %q", spec, s)
			}
			m.DaysOfMonth = append(m.DaysOfMonth, n)
		}
		if len(m.DaysOfMonth) == 0 {
			return nil, fmt.Errorf("schedule %q: monthly needs at least one day", spec)
		}
		return m, nil
	case "monthly_relative":
		num, day, ok := strings.Cut(rest, ":")
		if !ok {
			return nil, fmt.Errorf("schedule %q: want monthly_relative:<n|last>:<weekday>", spec)
		}
		n := -1
		if num != "last" {
			var err error
			n, err = strconv.Atoi(num)
			if err != nil || n < 1 || n > 5 {
				return nil, fmt.Errorf("schedule %q: bad week number %q", spec, num)
			}
		}
		d, err := ParseWeekday(day)
		if err != nil {
			return nil, fmt.Errorf("schedule %q: %w", spec, err)
		}
		return MonthlyRelative{Weekday: d, WeekNum: n}, nil
	case "interval":
		n, err := strconv.Atoi(rest)
		if err != nil || n < 1 {
			return nil, fmt.Errorf("schedule %q: bad interval %q", spec, rest)
		}
		return Interval{Days: n}, nil
	}
	return nil, fmt.Errorf("unknown schedule type %q", kind)
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
