// ABOUTME: Tests for composite score computation.
// ABOUTME: Uses a map-backed reader so inputs and failures are explicit.
package scores

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/harperreed/lifeos/internal/metrics"
	"github.com/harperreed/lifeos/internal/models"
	"github.com/harperreed/lifeos/internal/prefs"
	"github.com/harperreed/lifeos/internal/weights"
)

type mapReader struct {
	values map[string]float64
	fail   map[string]bool
	calls  map[string]int
}

func newReader(values map[string]float64) *mapReader {
	return &mapReader{values: values, fail: map[string]bool{}, calls: map[string]int{}}
}

func (m *mapReader) WindowAverage(_ context.Context, id string, _ int) metrics.Result[float64] {
	m.calls[id]++
	if m.fail[id] {
		return metrics.Result[float64]{Status: metrics.StatusFailed, Err: errors.New("boom")}
	}
	v, ok := m.values[id]
	if !ok {
		return metrics.Result[float64]{Status: metrics.StatusEmpty}
	}
	return metrics.Result[float64]{Status: metrics.StatusFound, Value: v}
}

func perfectInputs() map[string]float64 {
	return map[string]float64{
		models.MetricSleep:            8,
		models.MetricHRV:              60,
		models.MetricRestingHeartRate: 50,
		models.MetricActiveEnergy:     0,
		models.MetricProtein:          140,
		models.MetricWater:            3000,
		models.MetricCalories:         2500,
	}
}

func TestComputePerfectDay(t *testing.T) {
	s := Compute(context.Background(), newReader(perfectInputs()), weights.Defaults(), Options{})

	for _, sc := range []Score{s.Readiness, s.Recovery, s.Nutrition} {
		if sc.Stale {
			t.Errorf("%s unexpectedly stale", sc.ID)
		}
		if sc.Value != 100 {
			t.Errorf("%s = %v, want 100", sc.ID, sc.Value)
		}
	}
	if s.WindowDays != DefaultWindowDays {
		t.Errorf("WindowDays = %d", s.WindowDays)
	}
}

func TestComputeReadinessWeighting(t *testing.T) {
	in := perfectInputs()
	in[models.MetricSleep] = 4
	in[models.MetricRestingHeartRate] = 62.5

	s := Compute(context.Background(), newReader(in), weights.Defaults(), Options{})

	// 0.40*0.5 + 0.35*1 + 0.25*0.8 = 0.75
	if s.Readiness.Value != 75 {
		t.Errorf("Readiness = %v, want 75", s.Readiness.Value)
	}
}

func TestComputeNormalisesByWeightSum(t *testing.T) {
	w := weights.Defaults()
	w[weights.NutritionProtein] = 2
	w[weights.NutritionHydration] = 0
	w[weights.NutritionCalories] = 0

	in := perfectInputs()
	in[models.MetricProtein] = 70

	s := Compute(context.Background(), newReader(in), w, Options{})
	if s.Nutrition.Value != 50 {
		t.Errorf("Nutrition = %v, want 50", s.Nutrition.Value)
	}
}

func TestComputeZeroWeights(t *testing.T) {
	w := weights.Defaults()
	w[weights.NutritionProtein] = 0
	w[weights.NutritionHydration] = 0
	w[weights.NutritionCalories] = 0

	s := Compute(context.Background(), newReader(perfectInputs()), w, Options{})
	if s.Nutrition.Value != 0 || s.Nutrition.Stale {
		t.Errorf("Nutrition = %+v", s.Nutrition)
	}
}

func TestComputeMissingFallsBackToMock(t *testing.T) {
	in := perfectInputs()
	delete(in, models.MetricHRV)

	s := Compute(context.Background(), newReader(in), weights.Defaults(), Options{})

	if s.Readiness.Stale {
		t.Fatal("non-strict score should not be stale")
	}
	var hrv Input
	for _, i := range s.Readiness.Inputs {
		if i.Metric == models.MetricHRV {
			hrv = i
		}
	}
	if !hrv.Mocked || hrv.Raw != mockDefaults[models.MetricHRV] {
		t.Errorf("hrv input = %+v", hrv)
	}
}

func TestComputeStrictMarksStale(t *testing.T) {
	in := perfectInputs()
	delete(in, models.MetricWater)
	r := newReader(in)
	r.fail[models.MetricHRV] = true

	s := Compute(context.Background(), r, weights.Defaults(), Options{Strict: true})

	if !s.Nutrition.Stale || !s.Readiness.Stale || !s.Recovery.Stale {
		t.Errorf("expected all stale, got %v %v %v", s.Readiness.Stale, s.Recovery.Stale, s.Nutrition.Stale)
	}
	if s.Nutrition.Value != 0 {
		t.Errorf("stale score has value %v", s.Nutrition.Value)
	}
	if got := s.Nutrition.Display(); got != "STALE DATA" {
		t.Errorf("Display = %q", got)
	}
}

func TestComputeReadsEachMetricOnce(t *testing.T) {
	r := newReader(perfectInputs())
	Compute(context.Background(), r, weights.Defaults(), Options{})

	for id, n := range r.calls {
		if n != 1 {
			t.Errorf("%s read %d times", id, n)
		}
	}
}

func TestComputeUsesClock(t *testing.T) {
	fixed := time.Date(2025, 6, 15, 8, 0, 0, 0, time.UTC)
	s := Compute(context.Background(), newReader(perfectInputs()), weights.Defaults(), Options{
		WindowDays: 3,
		Now:        func() time.Time { return fixed },
	})
	if !s.ComputedAt.Equal(fixed) || s.WindowDays != 3 {
		t.Errorf("ComputedAt = %v WindowDays = %d", s.ComputedAt, s.WindowDays)
	}
}

func TestNormalizers(t *testing.T) {
	tests := []struct {
		name string
		fn   func(float64) float64
		in   float64
		want float64
	}{
		{"ratio under", ratioTo(8), 6, 0.75},
		{"ratio capped", ratioTo(8), 10, 1},
		{"lower better above target", lowerIsBetter(50), 100, 0.5},
		{"lower better below target", lowerIsBetter(50), 40, 1},
		{"lower better zero", lowerIsBetter(50), 0, 0},
		{"closeness exact", closenessTo(2500), 2500, 1},
		{"closeness over", closenessTo(2500), 3125, 0.75},
		{"closeness far", closenessTo(2500), 6000, 0},
		{"strain heavy", inverseRatioTo(1000), 1500, 0},
		{"strain light", inverseRatioTo(1000), 250, 0.75},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.fn(tt.in); got != tt.want {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestOptionsFromPrefs(t *testing.T) {
	store := prefs.NewMemory()
	if OptionsFromPrefs(store).Strict {
		t.Error("strict should default to false")
	}
	if err := store.Set(prefs.KeyStrictMode, true); err != nil {
		t.Fatal(err)
	}
	if !OptionsFromPrefs(store).Strict {
		t.Error("strict should be read from prefs")
	}
}

func TestCompositeDefinitions(t *testing.T) {
	for _, id := range []string{"readiness_score", "recovery_score", "nutrition_score"} {
		if _, ok := Definition(id); !ok {
			t.Errorf("missing registry definition for %s", id)
		}
	}
}
