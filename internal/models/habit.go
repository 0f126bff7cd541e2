// ABOUTME: Habit model consumed by the scientific aggregator and scheduler.
// ABOUTME: Habits are created by the user and never mutated by aggregation.
package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Polarity marks whether a habit is one to build or one to break.
type Polarity string

const (
	PolarityPositive Polarity = "positive"
	PolarityNegative Polarity = "negative"
)

// Time-of-day buckets. Any other value, including empty, is treated as anytime.
const (
	TimeMorning   = "morning"
	TimeAfternoon = "afternoon"
	TimeEvening   = "evening"
	TimeAnytime   = "anytime"
)

// Habit is a tracked behaviour with its physiological profile.
type Habit struct {
	ID       uuid.UUID `json:"id" yaml:"id"`
	Owner    string    `json:"owner" yaml:"owner"`
	Name     string    `json:"name" yaml:"name"`
	Category string    `json:"category,omitempty" yaml:"category,omitempty"`
	Polarity Polarity  `json:"polarity" yaml:"polarity"`

	TimeOfDay string `json:"time_of_day,omitempty" yaml:"time_of_day,omitempty"`

	// Friction is the energy cost of performing the habit.
	Friction float64 `json:"energy_cost" yaml:"energy_cost"`
	// State is the signed activation (impact) value: negative is
	// sympathetic load, positive is parasympathetic.
	State    float64 `json:"impact_score" yaml:"impact_score"`
	Duration float64 `json:"duration,omitempty" yaml:"duration,omitempty"`

	PrimaryDriver   string `json:"primary_driver,omitempty" yaml:"primary_driver,omitempty"`
	SecondaryDriver string `json:"secondary_driver,omitempty" yaml:"secondary_driver,omitempty"`

	Active bool `json:"active" yaml:"active"`

	// Schedule is the recurrence config as stored; see package schedule.
	Schedule  json.RawMessage `json:"schedule,omitempty" yaml:"-"`
	StartDate *time.Time      `json:"start_date,omitempty" yaml:"start_date,omitempty"`
	Streak    int             `json:"streak" yaml:"streak"`

	CreatedAt time.Time `json:"created_at" yaml:"created_at"`
}

// NewHabit creates an active, daily, positive habit.
func NewHabit(owner, name string) *Habit {
	now := time.Now()
	return &Habit{
		ID:        uuid.New(),
		Owner:     owner,
		Name:      name,
		Polarity:  PolarityPositive,
		TimeOfDay: TimeAnytime,
		Active:    true,
		StartDate: &now,
		CreatedAt: now,
	}
}

// WithDrivers sets the primary and secondary neurochemical drivers.
func (h *Habit) WithDrivers(primary, secondary string) *Habit {
	h.PrimaryDriver = primary
	h.SecondaryDriver = secondary
	return h
}

// WithLoad sets friction, state and duration.
func (h *Habit) WithLoad(friction, state, duration float64) *Habit {
	h.Friction = friction
	h.State = state
	h.Duration = duration
	return h
}

// WithTimeOfDay sets the time-of-day bucket.
func (h *Habit) WithTimeOfDay(tod string) *Habit {
	h.TimeOfDay = tod
	return h
}

// WithSchedule sets the raw recurrence config.
func (h *Habit) WithSchedule(raw json.RawMessage) *Habit {
	h.Schedule = raw
	return h
}
