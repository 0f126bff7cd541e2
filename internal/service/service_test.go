// ABOUTME: Tests for the application service.
// ABOUTME: Runs against a temp SQLite database, in-memory prefs and a fixed clock.
package service

import (
	"context"
	"encoding/json"
	"path/filepath"
	"testing"
	"time"

	"github.com/harperreed/lifeos/internal/models"
	"github.com/harperreed/lifeos/internal/prefs"
	"github.com/harperreed/lifeos/internal/storage"
	"github.com/harperreed/lifeos/internal/weights"
	"github.com/stretchr/testify/require"
)

// Tuesday.
var testNow = time.Date(2025, 6, 17, 12, 0, 0, 0, time.UTC)

func setupService(t *testing.T) *Service {
	t.Helper()

	db, err := storage.Open(filepath.Join(t.TempDir(), "lifeos.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	return New(db, prefs.NewMemory(), "harper", WithClock(func() time.Time { return testNow }))
}

func addHabit(t *testing.T, s *Service, name string, sched string, mutate func(*models.Habit)) *models.Habit {
	t.Helper()
	h := models.NewHabit(s.Owner(), name)
	h.CreatedAt = testNow
	if sched != "" {
		h.WithSchedule(json.RawMessage(sched))
	}
	if mutate != nil {
		mutate(h)
	}
	require.NoError(t, s.Repo().CreateHabit(context.Background(), h))
	return h
}

func TestHabitsToday(t *testing.T) {
	s := setupService(t)
	ctx := context.Background()

	addHabit(t, s, "meditate", "", nil)
	addHabit(t, s, "lift", `{"type":"weekly","days":["Mon","Wed"]}`, nil)
	addHabit(t, s, "sauna", `{"type":"weekly","days":["Tue"]}`, nil)
	addHabit(t, s, "broken", `{not json`, nil)
	addHabit(t, s, "paused", "", func(h *models.Habit) { h.Active = false })
	addHabit(t, s, "someone else", "", func(h *models.Habit) { h.Owner = "other" })

	today, err := s.HabitsToday(ctx)
	require.NoError(t, err)

	var names []string
	for _, h := range today {
		names = append(names, h.Name)
	}
	require.ElementsMatch(t, []string{"meditate", "sauna", "broken"}, names)
}

func TestHabitsTodayIgnoresUnreadableWeekdays(t *testing.T) {
	s := setupService(t)
	ctx := context.Background()

	addHabit(t, s, "lift", `{"type":"weekly","days":["Mon","Wednes"]}`, nil)
	addHabit(t, s, "swim", `{"type":"weekly","days":["Tue","Thurs-day"]}`, nil)
	addHabit(t, s, "review", `{"type":"monthly_relative","week_num":-1}`, nil)

	today, err := s.HabitsToday(ctx)
	require.NoError(t, err)

	var names []string
	for _, h := range today {
		names = append(names, h.Name)
	}
	require.Equal(t, []string{"swim"}, names)
}

func TestHabitStats(t *testing.T) {
	s := setupService(t)

	addHabit(t, s, "cold plunge", "", func(h *models.Habit) {
		h.WithLoad(8, 5, 2).WithDrivers("Dopamine", "")
	})

	stats, err := s.HabitStats(context.Background())
	require.NoError(t, err)
	require.Equal(t, 40.0, stats.SystemLoad)
	require.Equal(t, 5.0, stats.NeuroProfile["Drive"])
}

func TestScoresUseStoredWeightsAndStrictMode(t *testing.T) {
	s := setupService(t)
	ctx := context.Background()

	_, err := s.Repo().UpsertSamples(ctx, []*models.MetricSample{
		models.NewSample(models.MetricProtein, 140, "g").WithRecordedAt(testNow.Add(-time.Hour)),
	})
	require.NoError(t, err)

	m, err := s.Weights()
	require.NoError(t, err)
	require.NoError(t, m.UpdateWeight(weights.NutritionHydration, 0))
	require.NoError(t, m.UpdateWeight(weights.NutritionCalories, 0))

	sc, err := s.Scores(ctx, 0)
	require.NoError(t, err)
	require.False(t, sc.Nutrition.Stale)
	require.Equal(t, 100.0, sc.Nutrition.Value)

	require.NoError(t, s.Prefs().Set(prefs.KeyStrictMode, true))
	sc, err = s.Scores(ctx, 3)
	require.NoError(t, err)
	require.True(t, sc.Readiness.Stale)
	require.Equal(t, 3, sc.WindowDays)
}

func TestFlowSessionsAndProgress(t *testing.T) {
	s := setupService(t)

	m := s.NewFlowMachine()
	m.StartSession("ship it")
	m.ResolveAnchor(true)
	for m.Phase() == "focus" {
		m.Tick()
	}
	_, ok := m.SubmitEffort(7, "")
	require.True(t, ok)

	sessions, err := s.FlowSessions(10)
	require.NoError(t, err)
	require.Len(t, sessions, 1)

	p, err := s.FocusProgress()
	require.NoError(t, err)
	require.Equal(t, 90, p.Minutes)
}

func TestSummary(t *testing.T) {
	s := setupService(t)
	ctx := context.Background()

	_, err := s.Repo().UpsertSamples(ctx, []*models.MetricSample{
		models.NewSample(models.MetricHRV, 55, "ms").WithRecordedAt(testNow.Add(-2 * time.Hour)),
	})
	require.NoError(t, err)
	addHabit(t, s, "walk", "", nil)

	sum, err := s.Summary(ctx)
	require.NoError(t, err)
	require.Contains(t, sum.Latest, models.MetricHRV)
	require.NotContains(t, sum.Latest, models.MetricWeight)
	require.Equal(t, []string{"walk"}, sum.HabitsToday)
	require.True(t, sum.GeneratedAt.Equal(testNow))
}
