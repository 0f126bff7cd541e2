// ABOUTME: Application service composing storage, preferences, metrics, scores, habits and flow.
// ABOUTME: The CLI, HTTP API and MCP server all read through one Service.
package service

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"
	"github.com/harperreed/lifeos/internal/flow"
	"github.com/harperreed/lifeos/internal/ingest"
	"github.com/harperreed/lifeos/internal/metrics"
	"github.com/harperreed/lifeos/internal/models"
	"github.com/harperreed/lifeos/internal/prefs"
	"github.com/harperreed/lifeos/internal/schedule"
	"github.com/harperreed/lifeos/internal/science"
	"github.com/harperreed/lifeos/internal/scores"
	"github.com/harperreed/lifeos/internal/storage"
	"github.com/harperreed/lifeos/internal/weights"
)

// Service wires the domain packages over one repository and preference store.
type Service struct {
	repo     storage.Repository
	prefs    prefs.Store
	metrics  *metrics.Repository
	ingester *ingest.Ingester
	owner    string
	logger   *log.Logger
	now      func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithLogger sets the logger shared with the metric repository and ingester.
func WithLogger(l *log.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// New creates a Service for owner.
func New(repo storage.Repository, store prefs.Store, owner string, opts ...Option) *Service {
	s := &Service{
		repo:   repo,
		prefs:  store,
		owner:  owner,
		logger: log.New(io.Discard),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.metrics = metrics.NewRepository(repo, metrics.WithLogger(s.logger), metrics.WithClock(s.now))
	s.ingester = ingest.New(repo, s.logger)
	return s
}

// Repo returns the underlying repository.
func (s *Service) Repo() storage.Repository { return s.repo }

// Prefs returns the preference store.
func (s *Service) Prefs() prefs.Store { return s.prefs }

// Metrics returns the metric repository.
func (s *Service) Metrics() *metrics.Repository { return s.metrics }

// Ingester returns the payload ingester.
func (s *Service) Ingester() *ingest.Ingester { return s.ingester }

// Owner returns the user id habits are filed under.
func (s *Service) Owner() string { return s.owner }

// Now returns the service clock's current time.
func (s *Service) Now() time.Time { return s.now() }

// Weights loads the current scientific weights.
func (s *Service) Weights() (*weights.Model, error) {
	return weights.Load(s.prefs)
}

// Scores computes the composite scores over windowDays (0 means default).
func (s *Service) Scores(ctx context.Context, windowDays int) (scores.Scores, error) {
	m, err := s.Weights()
	if err != nil {
		return scores.Scores{}, err
	}
	opts := scores.OptionsFromPrefs(s.prefs)
	if windowDays > 0 {
		opts.WindowDays = windowDays
	}
	opts.Now = s.now
	return scores.Compute(ctx, s.metrics, m.Weights(), opts), nil
}

// ActiveHabits lists the owner's active habits.
func (s *Service) ActiveHabits(ctx context.Context) ([]*models.Habit, error) {
	hs, err := s.repo.ListHabits(ctx, s.owner, true)
	if err != nil {
		return nil, fmt.Errorf("list habits: %w", err)
	}
	return hs, nil
}

// HabitsToday lists active habits scheduled for today.
func (s *Service) HabitsToday(ctx context.Context) ([]*models.Habit, error) {
	hs, err := s.ActiveHabits(ctx)
	if err != nil {
		return nil, err
	}
	return s.dueOn(hs, s.now()), nil
}

// dueOn filters habits by schedule. Configs that do not decode as JSON are
// treated as daily.
func (s *Service) dueOn(hs []*models.Habit, now time.Time) []*models.Habit {
	var out []*models.Habit
	for _, h := range hs {
		sched, err := schedule.Parse(h.Schedule)
		if err != nil {
			s.logger.Warn("unreadable schedule, treating as daily", "habit", h.Name, "err", err)
			sched = schedule.Daily{}
		}
		if schedule.IsScheduledForToday(sched, h.StartDate, now) {
			out = append(out, h)
		}
	}
	return out
}

// HabitStats aggregates the owner's active habits.
func (s *Service) HabitStats(ctx context.Context) (science.ScientificStats, error) {
	hs, err := s.ActiveHabits(ctx)
	if err != nil {
		return science.ScientificStats{}, err
	}
	values := make([]models.Habit, 0, len(hs))
	for _, h := range hs {
		values = append(values, *h)
	}
	return science.Aggregate(values), nil
}

// FlowSessions returns up to limit sessions, newest first.
func (s *Service) FlowSessions(limit int) ([]models.Session, error) {
	return flow.RecentSessions(s.prefs, limit)
}

// FocusProgress reports today's focus minutes against the daily goal.
func (s *Service) FocusProgress() (flow.GoalProgress, error) {
	sessions, err := flow.Sessions(s.prefs)
	if err != nil {
		return flow.GoalProgress{}, err
	}
	goals, err := flow.LoadGoals(s.prefs)
	if err != nil {
		return flow.GoalProgress{}, err
	}
	return flow.Progress(sessions, goals, s.now()), nil
}

// NewFlowMachine returns a flow machine persisting to the service's prefs.
func (s *Service) NewFlowMachine() *flow.Machine {
	return flow.NewMachine(s.prefs, flow.WithClock(s.now), flow.WithLogger(s.logger))
}

// Summary is a one-shot overview of the current state.
type Summary struct {
	GeneratedAt time.Time                 `json:"generated_at"`
	Scores      scores.Scores             `json:"scores"`
	Latest      map[string]metrics.Latest `json:"latest"`
	HabitsToday []string                  `json:"habits_today"`
	SystemLoad  float64                   `json:"system_load"`
	Focus       flow.GoalProgress         `json:"focus"`
}

// SummaryMetrics are the raw metrics included in Summary.Latest.
var SummaryMetrics = []string{
	models.MetricSleep,
	models.MetricHRV,
	models.MetricRestingHeartRate,
	models.MetricSteps,
	models.MetricWeight,
}

// Summary builds an overview. Missing metrics are omitted.
func (s *Service) Summary(ctx context.Context) (*Summary, error) {
	sc, err := s.Scores(ctx, 0)
	if err != nil {
		return nil, err
	}
	today, err := s.HabitsToday(ctx)
	if err != nil {
		return nil, err
	}
	stats, err := s.HabitStats(ctx)
	if err != nil {
		return nil, err
	}
	focus, err := s.FocusProgress()
	if err != nil {
		return nil, err
	}

	sum := &Summary{
		GeneratedAt: s.now(),
		Scores:      sc,
		Latest:      make(map[string]metrics.Latest),
		HabitsToday: []string{},
		SystemLoad:  stats.SystemLoad,
		Focus:       focus,
	}
	for _, id := range SummaryMetrics {
		if v, ok := s.metrics.GetLatest(ctx, id).Get(); ok {
			sum.Latest[id] = v
		}
	}
	for _, h := range today {
		sum.HabitsToday = append(sum.HabitsToday, h.Name)
	}
	return sum, nil
}
