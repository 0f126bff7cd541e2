// ABOUTME: MCP tool implementations for lifeos.
// ABOUTME: Metric reads, manual samples, composite scores, habit views and flow history.
package mcp

import (
	"context"
	"fmt"
	"time"

	"github.com/harperreed/lifeos/internal/flow"
	"github.com/harperreed/lifeos/internal/metrics"
	"github.com/harperreed/lifeos/internal/models"
	"github.com/harperreed/lifeos/internal/registry"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

func (s *Server) registerTools() {
	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "get_latest",
		Description: "Get the most recent value for one or more raw metrics",
	}, s.handleGetLatest)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "get_trend",
		Description: "Get the samples of a raw metric over the last N days, oldest first",
	}, s.handleGetTrend)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "get_average",
		Description: "Get the mean of a raw metric over a date range",
	}, s.handleGetAverage)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "get_scores",
		Description: "Compute readiness, recovery and nutrition scores (0-100)",
	}, s.handleGetScores)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "add_metric",
		Description: "Record a manual sample for a raw metric",
	}, s.handleAddMetric)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "habit_stats",
		Description: "Aggregate active habits into load, neuro-axis profile and daily phases",
	}, s.handleHabitStats)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "habits_today",
		Description: "List active habits scheduled for today",
	}, s.handleHabitsToday)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "list_flow_sessions",
		Description: "List recent focus sessions, newest first, with today's goal progress",
	}, s.handleListFlowSessions)
}

// Tool input/output types

type getLatestInput struct {
	Metrics []string `json:"metrics,omitempty" jsonschema:"Raw metric ids; all raw metrics when empty"`
}

type getLatestOutput struct {
	Latest  map[string]metrics.Latest `json:"latest"`
	Missing []string                  `json:"missing,omitempty"`
}

type getTrendInput struct {
	Metric string `json:"metric" jsonschema:"Raw metric id such as heart_rate_variability"`
	Days   int    `json:"days,omitempty" jsonschema:"Window in days (default 7)"`
}

type getTrendOutput struct {
	Metric string          `json:"metric"`
	Days   int             `json:"days"`
	Status string          `json:"status"`
	Points []metrics.Point `json:"points"`
}

type getAverageInput struct {
	Metric string `json:"metric" jsonschema:"Raw metric id"`
	Start  string `json:"start,omitempty" jsonschema:"Range start (RFC3339 or YYYY-MM-DD), defaults to 7 days ago"`
	End    string `json:"end,omitempty" jsonschema:"Range end (RFC3339 or YYYY-MM-DD), defaults to now"`
}

type getAverageOutput struct {
	Metric  string    `json:"metric"`
	Status  string    `json:"status"`
	Average float64   `json:"average,omitempty"`
	Start   time.Time `json:"start"`
	End     time.Time `json:"end"`
}

type getScoresInput struct {
	Days int `json:"days,omitempty" jsonschema:"Averaging window in days (default 7)"`
}

type addMetricInput struct {
	Metric     string  `json:"metric" jsonschema:"Raw metric id"`
	Value      float64 `json:"value" jsonschema:"The sample value"`
	Unit       string  `json:"unit,omitempty" jsonschema:"Unit, defaults to the registry unit"`
	RecordedAt string  `json:"recorded_at,omitempty" jsonschema:"Timestamp (RFC3339 or YYYY-MM-DD HH:MM), defaults to now"`
}

type addMetricOutput struct {
	ID      string `json:"id"`
	Message string `json:"message"`
}

type emptyInput struct{}

type habitsTodayOutput struct {
	Date   string          `json:"date"`
	Habits []*models.Habit `json:"habits"`
}

type listFlowSessionsInput struct {
	Limit int `json:"limit,omitempty" jsonschema:"Max results (default 20)"`
}

type listFlowSessionsOutput struct {
	Sessions []models.Session  `json:"sessions"`
	Today    flow.GoalProgress `json:"today"`
}

// Tool handlers

func (s *Server) handleGetLatest(ctx context.Context, req *mcp.CallToolRequest, input getLatestInput) (*mcp.CallToolResult, any, error) {
	ids := input.Metrics
	if len(ids) == 0 {
		for _, d := range registry.All() {
			if d.Kind == registry.KindRaw {
				ids = append(ids, d.ID)
			}
		}
	}

	out := getLatestOutput{Latest: make(map[string]metrics.Latest)}
	for _, id := range ids {
		if v, ok := s.svc.Metrics().GetLatest(ctx, id).Get(); ok {
			out.Latest[id] = v
		} else {
			out.Missing = append(out.Missing, id)
		}
	}
	return nil, out, nil
}

func (s *Server) handleGetTrend(ctx context.Context, req *mcp.CallToolRequest, input getTrendInput) (*mcp.CallToolResult, any, error) {
	if input.Days <= 0 {
		input.Days = 7
	}
	res := s.svc.Metrics().GetTrend(ctx, input.Metric, input.Days)
	out := getTrendOutput{
		Metric: input.Metric,
		Days:   input.Days,
		Status: res.Status.String(),
		Points: []metrics.Point{},
	}
	if points, ok := res.Get(); ok {
		out.Points = points
	}
	return nil, out, nil
}

func (s *Server) handleGetAverage(ctx context.Context, req *mcp.CallToolRequest, input getAverageInput) (*mcp.CallToolResult, any, error) {
	end := s.svc.Now()
	start := end.AddDate(0, 0, -7)
	var err error
	if input.Start != "" {
		if start, err = parseTime(input.Start); err != nil {
			return nil, nil, fmt.Errorf("invalid start: %w", err)
		}
	}
	if input.End != "" {
		if end, err = parseTime(input.End); err != nil {
			return nil, nil, fmt.Errorf("invalid end: %w", err)
		}
	}

	res := s.svc.Metrics().GetAverage(ctx, input.Metric, start, end)
	out := getAverageOutput{Metric: input.Metric, Status: res.Status.String(), Start: start, End: end}
	if v, ok := res.Get(); ok {
		out.Average = v
	}
	return nil, out, nil
}

func (s *Server) handleGetScores(ctx context.Context, req *mcp.CallToolRequest, input getScoresInput) (*mcp.CallToolResult, any, error) {
	sc, err := s.svc.Scores(ctx, input.Days)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to compute scores: %w", err)
	}
	return nil, sc, nil
}

func (s *Server) handleAddMetric(ctx context.Context, req *mcp.CallToolRequest, input addMetricInput) (*mcp.CallToolResult, addMetricOutput, error) {
	def, ok := registry.Lookup(input.Metric)
	if !ok || def.Kind != registry.KindRaw {
		return nil, addMetricOutput{}, fmt.Errorf("unknown raw metric: %s", input.Metric)
	}
	if !registry.Validate(input.Metric, input.Value) {
		return nil, addMetricOutput{}, fmt.Errorf("value %v out of bounds for %s", input.Value, input.Metric)
	}

	unit := input.Unit
	if unit == "" {
		unit = def.Unit
	}
	sample := models.NewSample(input.Metric, input.Value, unit).WithSource(models.SourceManual)
	if input.RecordedAt != "" {
		t, err := parseTime(input.RecordedAt)
		if err != nil {
			return nil, addMetricOutput{}, fmt.Errorf("invalid recorded_at: %w", err)
		}
		sample.WithRecordedAt(t)
	}

	if _, err := s.svc.Repo().UpsertSamples(ctx, []*models.MetricSample{sample}); err != nil {
		return nil, addMetricOutput{}, fmt.Errorf("failed to add metric: %w", err)
	}

	return nil, addMetricOutput{
		ID:      sample.ID.String()[:8],
		Message: fmt.Sprintf("Added %s: %.2f %s (ID: %s)", input.Metric, sample.Value, sample.Unit, sample.ID.String()[:8]),
	}, nil
}

func (s *Server) handleHabitStats(ctx context.Context, req *mcp.CallToolRequest, input emptyInput) (*mcp.CallToolResult, any, error) {
	stats, err := s.svc.HabitStats(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to aggregate habits: %w", err)
	}
	return nil, stats, nil
}

func (s *Server) handleHabitsToday(ctx context.Context, req *mcp.CallToolRequest, input emptyInput) (*mcp.CallToolResult, any, error) {
	hs, err := s.svc.HabitsToday(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list habits: %w", err)
	}
	if hs == nil {
		hs = []*models.Habit{}
	}
	return nil, habitsTodayOutput{Date: s.svc.Now().Format("2006-01-02"), Habits: hs}, nil
}

func (s *Server) handleListFlowSessions(ctx context.Context, req *mcp.CallToolRequest, input listFlowSessionsInput) (*mcp.CallToolResult, any, error) {
	if input.Limit <= 0 {
		input.Limit = 20
	}
	sessions, err := s.svc.FlowSessions(input.Limit)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	progress, err := s.svc.FocusProgress()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load focus goals: %w", err)
	}
	if sessions == nil {
		sessions = []models.Session{}
	}
	return nil, listFlowSessionsOutput{Sessions: sessions, Today: progress}, nil
}

func parseTime(s string) (time.Time, error) {
	for _, layout := range []string{time.RFC3339, "2006-01-02 15:04", "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognised time %q", s)
}
