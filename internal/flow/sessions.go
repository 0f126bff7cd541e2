// ABOUTME: Persisted flow session history and daily focus goals.
// ABOUTME: Both live as independent JSON blobs in the preference store.
package flow

import (
	"fmt"
	"sort"
	"time"

	"github.com/harperreed/lifeos/internal/models"
	"github.com/harperreed/lifeos/internal/prefs"
)

// DefaultDailyGoalMinutes is the focus target when none is stored.
const DefaultDailyGoalMinutes = 180

// Sessions loads the persisted session list, oldest first.
func Sessions(store prefs.Store) ([]models.Session, error) {
	var sessions []models.Session
	if _, err := store.Get(prefs.KeyFlowSessions, &sessions); err != nil {
		return nil, fmt.Errorf("load sessions: %w", err)
	}
	return sessions, nil
}

// AppendSession adds s to the persisted list.
func AppendSession(store prefs.Store, s models.Session) error {
	sessions, err := Sessions(store)
	if err != nil {
		return err
	}
	sessions = append(sessions, s)
	if err := store.Set(prefs.KeyFlowSessions, sessions); err != nil {
		return fmt.Errorf("save sessions: %w", err)
	}
	return nil
}

// RecentSessions returns up to limit sessions, newest first.
func RecentSessions(store prefs.Store, limit int) ([]models.Session, error) {
	sessions, err := Sessions(store)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(sessions, func(i, j int) bool {
		return sessions[i].StartedAt.After(sessions[j].StartedAt)
	})
	if limit > 0 && len(sessions) > limit {
		sessions = sessions[:limit]
	}
	return sessions, nil
}

// Goals holds the daily focus target.
type Goals struct {
	DailyMinutes int `json:"daily_minutes"`
}

// LoadGoals reads focus goals, falling back to the default target.
func LoadGoals(store prefs.Store) (Goals, error) {
	g := Goals{DailyMinutes: DefaultDailyGoalMinutes}
	if _, err := store.Get(prefs.KeyFocusGoals, &g); err != nil {
		return Goals{DailyMinutes: DefaultDailyGoalMinutes}, fmt.Errorf("load goals: %w", err)
	}
	return g, nil
}

// SaveGoals persists focus goals.
func SaveGoals(store prefs.Store, g Goals) error {
	if err := store.Set(prefs.KeyFocusGoals, g); err != nil {
		return fmt.Errorf("save goals: %w", err)
	}
	return nil
}

// GoalProgress is the focus total for one day against the target.
type GoalProgress struct {
	Day           string  `json:"day"`
	Minutes       int     `json:"minutes"`
	TargetMinutes int     `json:"target_minutes"`
	Percent       float64 `json:"percent"`
	Sessions      int     `json:"sessions"`
}

// Progress sums completed focus minutes for the local day containing day.
func Progress(sessions []models.Session, g Goals, day time.Time) GoalProgress {
	loc := day.Location()
	y, mo, d := day.Date()
	start := time.Date(y, mo, d, 0, 0, 0, 0, loc)
	end := start.AddDate(0, 0, 1)

	p := GoalProgress{Day: start.Format("2006-01-02"), TargetMinutes: g.DailyMinutes}
	for _, s := range sessions {
		if !s.Completed {
			continue
		}
		at := s.StartedAt.In(loc)
		if at.Before(start) || !at.Before(end) {
			continue
		}
		p.Minutes += s.FocusMinutes
		p.Sessions++
	}
	if p.TargetMinutes > 0 {
		p.Percent = float64(p.Minutes) / float64(p.TargetMinutes) * 100
	}
	return p
}
