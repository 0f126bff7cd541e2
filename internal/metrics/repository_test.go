// ABOUTME: Tests for the metric repository.
// ABOUTME: Covers raw-only resolution, windows, averages, and failure collapsing.
package metrics

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/harperreed/lifeos/internal/models"
	"github.com/harperreed/lifeos/internal/storage"
)

var testNow = time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

func setupRepo(t *testing.T, samples ...*models.MetricSample) *Repository {
	t.Helper()

	db, err := storage.Open(filepath.Join(t.TempDir(), "lifeos.db"))
	if err != nil {
		t.Fatalf("Failed to open database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if _, err := db.UpsertSamples(context.Background(), samples); err != nil {
		t.Fatalf("UpsertSamples failed: %v", err)
	}

	return NewRepository(db, WithClock(func() time.Time { return testNow }))
}

func daysAgo(name string, value float64, days int) *models.MetricSample {
	return models.NewSample(name, value, "").WithRecordedAt(testNow.AddDate(0, 0, -days))
}

type failingStore struct{}

var errBackend = errors.New("backend down")

func (failingStore) UpsertSamples(context.Context, []*models.MetricSample) (int, error) {
	return 0, errBackend
}

func (failingStore) LatestSample(context.Context, string) (*models.MetricSample, error) {
	return nil, errBackend
}

func (failingStore) SamplesInRange(context.Context, []string, time.Time, time.Time) ([]*models.MetricSample, error) {
	return nil, errBackend
}

func TestGetLatest(t *testing.T) {
	repo := setupRepo(t,
		daysAgo(models.MetricHRV, 40, 3),
		daysAgo(models.MetricHRV, 58, 0),
	)
	ctx := context.Background()

	got, ok := repo.GetLatest(ctx, models.MetricHRV).Get()
	if !ok {
		t.Fatal("expected latest HRV to be found")
	}
	if got.Value != 58 {
		t.Errorf("Value = %v, want 58", got.Value)
	}
	if !got.RecordedAt.Equal(testNow) {
		t.Errorf("RecordedAt = %v, want %v", got.RecordedAt, testNow)
	}
}

func TestGetLatestAbsent(t *testing.T) {
	repo := setupRepo(t, daysAgo(models.MetricHRV, 40, 1))
	ctx := context.Background()

	tests := []struct {
		name   string
		id     string
		status Status
	}{
		{"no data", models.MetricSteps, StatusEmpty},
		{"unknown id", "not_a_metric", StatusEmpty},
		{"composite id", "readiness_score", StatusEmpty},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := repo.GetLatest(ctx, tt.id)
			if res.Status != tt.status {
				t.Errorf("Status = %v, want %v", res.Status, tt.status)
			}
			if _, ok := res.Get(); ok {
				t.Error("expected absent signal")
			}
		})
	}
}

func TestGetTrendWindow(t *testing.T) {
	repo := setupRepo(t,
		daysAgo(models.MetricSleep, 6, 10),
		daysAgo(models.MetricSleep, 7, 5),
		daysAgo(models.MetricSleep, 8, 1),
		daysAgo(models.MetricSleep, 7.5, 0),
	)

	points, ok := repo.GetTrend(context.Background(), models.MetricSleep, 7).Get()
	if !ok {
		t.Fatal("expected trend to be found")
	}
	if len(points) != 3 {
		t.Fatalf("expected 3 points in window, got %d", len(points))
	}
	for i := 1; i < len(points); i++ {
		if points[i].RecordedAt.Before(points[i-1].RecordedAt) {
			t.Error("expected points ordered by time")
		}
	}
	if points[0].Value != 7 {
		t.Errorf("first point = %v, want 7", points[0].Value)
	}
}

func TestGetMultiTrendPartitionsAndDropsNonRaw(t *testing.T) {
	repo := setupRepo(t,
		daysAgo(models.MetricSleep, 7, 1),
		daysAgo(models.MetricHRV, 55, 1),
		daysAgo(models.MetricHRV, 60, 2),
		daysAgo(models.MetricSteps, 9000, 1),
	)

	got, ok := repo.GetMultiTrend(context.Background(),
		[]string{models.MetricSleep, models.MetricHRV, "readiness_score", "bogus"}, 7).Get()
	if !ok {
		t.Fatal("expected multi-trend to be found")
	}
	if len(got) != 2 {
		t.Errorf("expected 2 partitions, got %d: %v", len(got), got)
	}
	if len(got[models.MetricHRV]) != 2 {
		t.Errorf("expected 2 HRV points, got %d", len(got[models.MetricHRV]))
	}
	if _, present := got["readiness_score"]; present {
		t.Error("composite id should be dropped")
	}
	if _, present := got[models.MetricSteps]; present {
		t.Error("unrequested metric should not appear")
	}
}

func TestGetMultiTrendOnlyNonRaw(t *testing.T) {
	repo := setupRepo(t)
	res := repo.GetMultiTrend(context.Background(), []string{"readiness_score"}, 7)
	if res.Status != StatusEmpty {
		t.Errorf("Status = %v, want empty", res.Status)
	}
}

func TestGetAverage(t *testing.T) {
	repo := setupRepo(t,
		daysAgo(models.MetricRestingHeartRate, 50, 3),
		daysAgo(models.MetricRestingHeartRate, 54, 2),
		daysAgo(models.MetricRestingHeartRate, 70, 20),
	)
	ctx := context.Background()

	avg, ok := repo.GetAverage(ctx, models.MetricRestingHeartRate, testNow.AddDate(0, 0, -3), testNow).Get()
	if !ok {
		t.Fatal("expected average to be found")
	}
	if avg != 52 {
		t.Errorf("average = %v, want 52 (start bound inclusive)", avg)
	}

	if _, ok := repo.GetAverage(ctx, models.MetricRestingHeartRate, testNow.AddDate(0, 0, -1), testNow).Get(); ok {
		t.Error("expected absent average for empty range")
	}
	if _, ok := repo.GetAverage(ctx, "nutrition_score", testNow.AddDate(-1, 0, 0), testNow).Get(); ok {
		t.Error("expected absent average for composite")
	}

	w, ok := repo.WindowAverage(ctx, models.MetricRestingHeartRate, 7).Get()
	if !ok || w != 52 {
		t.Errorf("WindowAverage = %v, %v; want 52, true", w, ok)
	}
}

func TestStoreFailuresCollapse(t *testing.T) {
	repo := NewRepository(failingStore{}, WithClock(func() time.Time { return testNow }))
	ctx := context.Background()

	latest := repo.GetLatest(ctx, models.MetricHRV)
	if latest.Status != StatusFailed || !errors.Is(latest.Err, errBackend) {
		t.Errorf("latest = %+v, want failed with backend error", latest)
	}
	if _, ok := latest.Get(); ok {
		t.Error("failed read must collapse to absent")
	}

	if res := repo.GetTrend(ctx, models.MetricHRV, 7); res.Status != StatusFailed {
		t.Errorf("trend status = %v, want failed", res.Status)
	}
	if res := repo.GetAverage(ctx, models.MetricHRV, testNow.AddDate(0, 0, -7), testNow); res.Status != StatusFailed {
		t.Errorf("average status = %v, want failed", res.Status)
	}
}

func TestStatusString(t *testing.T) {
	if StatusFound.String() != "found" || StatusEmpty.String() != "empty" || StatusFailed.String() != "failed" {
		t.Error("unexpected status strings")
	}
}
