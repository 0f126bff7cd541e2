// ABOUTME: Habit recurrence schedules and the is-scheduled-today predicate.
// ABOUTME: Schedules are a closed set of variants decoded from the stored JSON config.
package schedule

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Schedule is one of Daily, Weekly, Monthly, MonthlyRelative, Interval or Unknown.
type Schedule interface {
	// Type returns the wire name of the variant.
	Type() string
	scheduledOn(now time.Time, start *time.Time) bool
}

// Daily recurs every day.
type Daily struct{}

// Weekly recurs on the listed weekdays.
type Weekly struct {
	Days []time.Weekday
}

// Monthly recurs on the listed days of the month.
type Monthly struct {
	DaysOfMonth []int
}

// MonthlyRelative recurs on the nth weekday of the month. WeekNum -1 means
// the last occurrence, i.e. within the final 7 days of the month.
type MonthlyRelative struct {
	Weekday time.Weekday
	WeekNum int
}

// NoWeekday marks a stored weekday that could not be read. It matches no day.
const NoWeekday = time.Weekday(-1)

// Interval recurs every Days days counted from the habit's start date.
type Interval struct {
	Days int
}

// Unknown is any unrecognised type. It is always scheduled.
type Unknown struct {
	Name string
}

func (Daily) Type() string           { return "daily" }
func (Weekly) Type() string          { return "weekly" }
func (Monthly) Type() string         { return "monthly" }
func (MonthlyRelative) Type() string { return "monthly_relative" }
func (Interval) Type() string        { return "interval" }
func (u Unknown) Type() string       { return u.Name }

// IsScheduledForToday reports whether s falls on now's local date.
// A nil schedule is daily.
func IsScheduledForToday(s Schedule, start *time.Time, now time.Time) bool {
	if s == nil {
		return true
	}
	return s.scheduledOn(now, start)
}

func (Daily) scheduledOn(time.Time, *time.Time) bool { return true }

func (w Weekly) scheduledOn(now time.Time, _ *time.Time) bool {
	for _, d := range w.Days {
		if d == now.Weekday() {
			return true
		}
	}
	return false
}

func (m Monthly) scheduledOn(now time.Time, _ *time.Time) bool {
	for _, d := range m.DaysOfMonth {
		if d == now.Day() {
			return true
		}
	}
	return false
}

func (m MonthlyRelative) scheduledOn(now time.Time, _ *time.Time) bool {
	if now.Weekday() != m.Weekday {
		return false
	}
	day := now.Day()
	weekOfMonth := (day + 6) / 7
	if weekOfMonth == m.WeekNum {
		return true
	}
	return m.WeekNum == -1 && day > daysInMonth(now)-7
}

func (iv Interval) scheduledOn(now time.Time, start *time.Time) bool {
	if start == nil || iv.Days <= 0 {
		return true
	}
	return daysBetween(*start, now)%iv.Days == 0
}

func (Unknown) scheduledOn(time.Time, *time.Time) bool { return true }

// daysBetween counts calendar days from a's local date to b's local date,
// both read in b's location.
func daysBetween(a, b time.Time) int {
	a = a.In(b.Location())
	da := time.Date(a.Year(), a.Month(), a.Day(), 0, 0, 0, 0, time.UTC)
	db := time.Date(b.Year(), b.Month(), b.Day(), 0, 0, 0, 0, time.UTC)
	return int(db.Sub(da).Hours() / 24)
}

func daysInMonth(t time.Time) int {
	return time.Date(t.Year(), t.Month()+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// config is the stored JSON shape.
type config struct {
	Type         string   `json:"type,omitempty"`
	Days         []string `json:"days,omitempty"`
	DaysOfMonth  []int    `json:"days_of_month,omitempty"`
	Weekday      string   `json:"weekday,omitempty"`
	WeekNum      int      `json:"week_num,omitempty"`
	IntervalDays int      `json:"interval_days,omitempty"`
}

// Parse decodes a stored recurrence config. Empty input and a missing type
// both yield Daily. Only JSON that does not decode is an error; unreadable
// weekday names inside a valid config simply never match.
func Parse(raw []byte) (Schedule, error) {
	if len(strings.TrimSpace(string(raw))) == 0 || string(raw) == "null" {
		return Daily{}, nil
	}

	var c config
	if err := json.Unmarshal(raw, &c); err != nil {
		return nil, fmt.Errorf("parse schedule: %w", err)
	}

	switch c.Type {
	case "", "daily":
		return Daily{}, nil
	case "weekly":
		// Unreadable names never match, so they are dropped.
		days := make([]time.Weekday, 0, len(c.Days))
		for _, name := range c.Days {
			if d, err := ParseWeekday(name); err == nil {
				days = append(days, d)
			}
		}
		return Weekly{Days: days}, nil
	case "monthly":
		return Monthly{DaysOfMonth: c.DaysOfMonth}, nil
	case "monthly_relative":
		d, err := ParseWeekday(c.Weekday)
		if err != nil {
			d = NoWeekday
		}
		return MonthlyRelative{Weekday: d, WeekNum: c.WeekNum}, nil
	case "interval":
		return Interval{Days: c.IntervalDays}, nil
	default:
		return Unknown{Name: c.Type}, nil
	}
}

// Marshal encodes s in the stored JSON shape.
func Marshal(s Schedule) ([]byte, error) {
	c := config{Type: s.Type()}
	switch v := s.(type) {
	case Weekly:
		for _, d := range v.Days {
			c.Days = append(c.Days, d.String()[:3])
		}
	case Monthly:
		c.DaysOfMonth = v.DaysOfMonth
	case MonthlyRelative:
		if v.Weekday != NoWeekday {
			c.Weekday = v.Weekday.String()[:3]
		}
		c.WeekNum = v.WeekNum
	case Interval:
		c.IntervalDays = v.Days
	}
	return json.Marshal(c)
}

// ParseWeekday accepts short or long English weekday names, case-insensitively.
func ParseWeekday(name string) (time.Weekday, error) {
	n := strings.ToLower(strings.TrimSpace(name))
	for d := time.Sunday; d <= time.Saturday; d++ {
		long := strings.ToLower(d.String())
		if n == long || n == long[:3] {
			return d, nil
		}
	}
	return 0, fmt.Errorf("unknown weekday %q", name)
}
