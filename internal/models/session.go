// ABOUTME: Flow Session model for completed focus sessions.
// ABOUTME: Sessions are appended on completion and never edited afterwards.
package models

import "time"

// Session types.
const (
	SessionUltradian = "ultradian"
)

// Session is a completed (or abandoned) focus session.
type Session struct {
	ID           string     `json:"id" yaml:"id"`
	StartedAt    time.Time  `json:"start_time" yaml:"start_time"`
	EndedAt      *time.Time `json:"end_time,omitempty" yaml:"end_time,omitempty"`
	FocusMinutes int        `json:"focus_minutes" yaml:"focus_minutes"`
	Completed    bool       `json:"completed" yaml:"completed"`
	Effort       *int       `json:"effort,omitempty" yaml:"effort,omitempty"`
	Notes        string     `json:"notes,omitempty" yaml:"notes,omitempty"`
	Mission      string     `json:"mission,omitempty" yaml:"mission,omitempty"`
	Thoughts     []string   `json:"captured_thoughts" yaml:"captured_thoughts"`
	Type         string     `json:"type" yaml:"type"`
}
