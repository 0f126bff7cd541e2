// ABOUTME: Tests for MCP server, tools, and resources.
// ABOUTME: Covers NewServer, tool handlers, and resource handlers.
package mcp

import (
	"context"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/harperreed/lifeos/internal/flow"
	"github.com/harperreed/lifeos/internal/models"
	"github.com/harperreed/lifeos/internal/prefs"
	"github.com/harperreed/lifeos/internal/science"
	"github.com/harperreed/lifeos/internal/scores"
	"github.com/harperreed/lifeos/internal/service"
	"github.com/harperreed/lifeos/internal/storage"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

var testNow = time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

// setupTestServer creates a server over a test database in a temp directory.
func setupTestServer(t *testing.T) (*Server, *service.Service) {
	t.Helper()

	db, err := storage.Open(filepath.Join(t.TempDir(), "lifeos.db"))
	if err != nil {
		t.Fatalf("Failed to open database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	svc := service.New(db, prefs.NewMemory(), "harper", service.WithClock(func() time.Time { return testNow }))
	server, err := NewServer(svc)
	if err != nil {
		t.Fatalf("NewServer failed: %v", err)
	}
	return server, svc
}

func seedSamples(t *testing.T, svc *service.Service, samples ...*models.MetricSample) {
	t.Helper()
	if _, err := svc.Repo().UpsertSamples(context.Background(), samples); err != nil {
		t.Fatalf("UpsertSamples failed: %v", err)
	}
}

func TestNewServer(t *testing.T) {
	server, _ := setupTestServer(t)

	if server.mcpServer == nil {
		t.Error("Expected non-nil mcpServer")
	}
	if server.svc == nil {
		t.Error("Expected non-nil service")
	}
}

func TestHandleGetLatest(t *testing.T) {
	server, svc := setupTestServer(t)
	ctx := context.Background()

	seedSamples(t, svc,
		models.NewSample(models.MetricHRV, 45, "ms").WithRecordedAt(testNow.Add(-48*time.Hour)),
		models.NewSample(models.MetricHRV, 58, "ms").WithRecordedAt(testNow.Add(-time.Hour)),
	)

	_, out, err := server.handleGetLatest(ctx, &mcp.CallToolRequest{}, getLatestInput{
		Metrics: []string{models.MetricHRV, models.MetricWeight, "readiness_score"},
	})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	res := out.(getLatestOutput)
	if got := res.Latest[models.MetricHRV].Value; got != 58 {
		t.Errorf("latest hrv = %v, want 58", got)
	}
	if len(res.Missing) != 2 {
		t.Errorf("Missing = %v, want weight and readiness_score", res.Missing)
	}
}

func TestHandleGetLatestAllRaw(t *testing.T) {
	server, svc := setupTestServer(t)
	seedSamples(t, svc, models.NewSample(models.MetricSteps, 8000, "count").WithRecordedAt(testNow))

	_, out, err := server.handleGetLatest(context.Background(), &mcp.CallToolRequest{}, getLatestInput{})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	res := out.(getLatestOutput)
	if len(res.Latest) != 1 {
		t.Errorf("expected 1 latest value, got %d", len(res.Latest))
	}
	for _, id := range res.Missing {
		if id == "readiness_score" {
			t.Error("composite ids should not be listed by default")
		}
	}
}

func TestHandleGetTrend(t *testing.T) {
	server, svc := setupTestServer(t)
	ctx := context.Background()

	seedSamples(t, svc,
		models.NewSample(models.MetricRestingHeartRate, 55, "bpm").WithRecordedAt(testNow.AddDate(0, 0, -10)),
		models.NewSample(models.MetricRestingHeartRate, 52, "bpm").WithRecordedAt(testNow.AddDate(0, 0, -3)),
		models.NewSample(models.MetricRestingHeartRate, 50, "bpm").WithRecordedAt(testNow.AddDate(0, 0, -1)),
	)

	tests := []struct {
		name       string
		input      getTrendInput
		wantStatus string
		wantPoints int
	}{
		{"default window", getTrendInput{Metric: models.MetricRestingHeartRate}, "found", 2},
		{"wide window", getTrendInput{Metric: models.MetricRestingHeartRate, Days: 30}, "found", 3},
		{"no data", getTrendInput{Metric: models.MetricWeight}, "empty", 0},
		{"composite", getTrendInput{Metric: "recovery_score"}, "empty", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, out, err := server.handleGetTrend(ctx, &mcp.CallToolRequest{}, tt.input)
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			res := out.(getTrendOutput)
			if res.Status != tt.wantStatus {
				t.Errorf("Status = %s, want %s", res.Status, tt.wantStatus)
			}
			if len(res.Points) != tt.wantPoints {
				t.Errorf("got %d points, want %d", len(res.Points), tt.wantPoints)
			}
		})
	}
}

func TestHandleGetAverage(t *testing.T) {
	server, svc := setupTestServer(t)
	ctx := context.Background()

	seedSamples(t, svc,
		models.NewSample(models.MetricSleep, 6, "hr").WithRecordedAt(time.Date(2025, 6, 1, 7, 0, 0, 0, time.UTC)),
		models.NewSample(models.MetricSleep, 8, "hr").WithRecordedAt(time.Date(2025, 6, 2, 7, 0, 0, 0, time.UTC)),
	)

	_, out, err := server.handleGetAverage(ctx, &mcp.CallToolRequest{}, getAverageInput{
		Metric: models.MetricSleep,
		Start:  "2025-06-01",
		End:    "2025-06-03",
	})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	res := out.(getAverageOutput)
	if res.Status != "found" || res.Average != 7 {
		t.Errorf("result = %+v", res)
	}

	_, _, err = server.handleGetAverage(ctx, &mcp.CallToolRequest{}, getAverageInput{Metric: models.MetricSleep, Start: "last week"})
	if err == nil {
		t.Error("Expected error for bad start")
	}
}

func TestHandleGetScores(t *testing.T) {
	server, _ := setupTestServer(t)

	_, out, err := server.handleGetScores(context.Background(), &mcp.CallToolRequest{}, getScoresInput{Days: 14})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	sc := out.(scores.Scores)
	if sc.WindowDays != 14 {
		t.Errorf("WindowDays = %d, want 14", sc.WindowDays)
	}
	if sc.Readiness.Stale {
		t.Error("non-strict scores should not be stale")
	}
}

func TestHandleAddMetric(t *testing.T) {
	server, svc := setupTestServer(t)
	ctx := context.Background()

	tests := []struct {
		name      string
		input     addMetricInput
		wantErr   bool
		errSubstr string
	}{
		{
			name:  "valid weight",
			input: addMetricInput{Metric: models.MetricWeight, Value: 82.5},
		},
		{
			name:  "with RFC3339 timestamp",
			input: addMetricInput{Metric: models.MetricHRV, Value: 48, RecordedAt: "2025-01-31T08:00:00Z"},
		},
		{
			name:  "with simple timestamp",
			input: addMetricInput{Metric: models.MetricSteps, Value: 10000, RecordedAt: "2025-01-31 08:00"},
		},
		{
			name:      "composite metric",
			input:     addMetricInput{Metric: "readiness_score", Value: 80},
			wantErr:   true,
			errSubstr: "unknown raw metric",
		},
		{
			name:      "out of bounds",
			input:     addMetricInput{Metric: models.MetricRestingHeartRate, Value: 500},
			wantErr:   true,
			errSubstr: "out of bounds",
		},
		{
			name:      "bad timestamp",
			input:     addMetricInput{Metric: models.MetricHRV, Value: 48, RecordedAt: "yesterday"},
			wantErr:   true,
			errSubstr: "invalid recorded_at",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, output, err := server.handleAddMetric(ctx, &mcp.CallToolRequest{}, tt.input)

			if tt.wantErr {
				if err == nil {
					t.Error("Expected error, got nil")
				} else if !strings.Contains(err.Error(), tt.errSubstr) {
					t.Errorf("Error %q should contain %q", err.Error(), tt.errSubstr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if len(output.ID) != 8 {
				t.Errorf("ID = %q, want 8 chars", output.ID)
			}
		})
	}

	latest, err := svc.Repo().LatestSample(ctx, models.MetricWeight)
	if err != nil {
		t.Fatalf("LatestSample failed: %v", err)
	}
	if latest.Source != models.SourceManual || latest.Unit != "kg" {
		t.Errorf("stored sample = %+v", latest)
	}
}

func TestHandleHabitTools(t *testing.T) {
	server, svc := setupTestServer(t)
	ctx := context.Background()

	h := models.NewHabit("harper", "cold plunge").WithLoad(8, 5, 2).WithDrivers("Dopamine", "")
	h.WithTimeOfDay(models.TimeMorning)
	if err := svc.Repo().CreateHabit(ctx, h); err != nil {
		t.Fatalf("CreateHabit failed: %v", err)
	}

	_, out, err := server.handleHabitStats(ctx, &mcp.CallToolRequest{}, emptyInput{})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	stats := out.(science.ScientificStats)
	if stats.SystemLoad != 40 {
		t.Errorf("SystemLoad = %v, want 40", stats.SystemLoad)
	}
	if stats.Phases[models.TimeMorning].Load != 66 {
		t.Errorf("morning load = %v, want 66", stats.Phases[models.TimeMorning].Load)
	}

	_, out, err = server.handleHabitsToday(ctx, &mcp.CallToolRequest{}, emptyInput{})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	today := out.(habitsTodayOutput)
	if today.Date != "2025-06-15" || len(today.Habits) != 1 {
		t.Errorf("today = %+v", today)
	}
}

func TestHandleListFlowSessions(t *testing.T) {
	server, svc := setupTestServer(t)

	_, out, err := server.handleListFlowSessions(context.Background(), &mcp.CallToolRequest{}, listFlowSessionsInput{})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if got := out.(listFlowSessionsOutput); len(got.Sessions) != 0 {
		t.Errorf("expected no sessions, got %d", len(got.Sessions))
	}

	if err := flow.AppendSession(svc.Prefs(), models.Session{
		ID: "01J0000000000000000000000", StartedAt: testNow.Add(-2 * time.Hour), FocusMinutes: 90, Completed: true,
	}); err != nil {
		t.Fatalf("AppendSession failed: %v", err)
	}

	_, out, err = server.handleListFlowSessions(context.Background(), &mcp.CallToolRequest{}, listFlowSessionsInput{Limit: 5})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	got := out.(listFlowSessionsOutput)
	if len(got.Sessions) != 1 {
		t.Fatalf("expected 1 session, got %d", len(got.Sessions))
	}
	if got.Today.Minutes != 90 {
		t.Errorf("today minutes = %d, want 90", got.Today.Minutes)
	}
}

func TestHandleSummaryResource(t *testing.T) {
	server, svc := setupTestServer(t)
	seedSamples(t, svc, models.NewSample(models.MetricHRV, 61, "ms").WithRecordedAt(testNow.Add(-time.Hour)))

	result, err := server.handleSummaryResource(context.Background(), &mcp.ReadResourceRequest{})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if len(result.Contents) == 0 {
		t.Fatal("Expected non-empty contents")
	}
	if result.Contents[0].URI != summaryURI {
		t.Errorf("URI = %s, want %s", result.Contents[0].URI, summaryURI)
	}

	var doc map[string]json.RawMessage
	if err := json.Unmarshal([]byte(result.Contents[0].Text), &doc); err != nil {
		t.Fatalf("summary is not JSON: %v", err)
	}
	for _, key := range []string{"scores", "latest", "habits_today", "focus"} {
		if _, ok := doc[key]; !ok {
			t.Errorf("summary missing %q", key)
		}
	}
	if !strings.Contains(string(doc["latest"]), "61") {
		t.Error("Expected latest hrv in summary")
	}
}

func TestHandleRegistryResource(t *testing.T) {
	server, _ := setupTestServer(t)

	result, err := server.handleRegistryResource(context.Background(), &mcp.ReadResourceRequest{})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if !strings.Contains(result.Contents[0].Text, "nutrition_score") {
		t.Error("Expected composite definitions in registry resource")
	}
}
