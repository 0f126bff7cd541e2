// ABOUTME: Composite readiness, recovery and nutrition scores built from raw metric averages.
// ABOUTME: Strict mode marks a score stale when an input is missing instead of substituting a mock value.
package scores

import (
	"context"
	"math"
	"strconv"
	"time"

	"github.com/harperreed/lifeos/internal/metrics"
	"github.com/harperreed/lifeos/internal/models"
	"github.com/harperreed/lifeos/internal/prefs"
	"github.com/harperreed/lifeos/internal/registry"
	"github.com/harperreed/lifeos/internal/weights"
)

// DefaultWindowDays is the averaging window when none is given.
const DefaultWindowDays = 7

// Targets used to normalise inputs into [0,1].
const (
	TargetSleepHours   = 8.0
	TargetHRV          = 60.0
	TargetRestingHR    = 50.0
	TargetProtein      = 140.0
	TargetWater        = 3000.0
	TargetCalories     = 2500.0
	TargetActiveEnergy = 1000.0
)

// mockDefaults stand in for missing inputs outside strict mode.
var mockDefaults = map[string]float64{
	models.MetricSleep:            7,
	models.MetricHRV:              50,
	models.MetricRestingHeartRate: 60,
	models.MetricActiveEnergy:     500,
	models.MetricProtein:          100,
	models.MetricWater:            2000,
	models.MetricCalories:         2200,
}

// Reader is the slice of the metric repository scores need.
type Reader interface {
	WindowAverage(ctx context.Context, metricID string, windowDays int) metrics.Result[float64]
}

// Options controls a Compute call.
type Options struct {
	WindowDays int
	Strict     bool
	Now        func() time.Time
}

// OptionsFromPrefs reads strict mode from the preference store.
func OptionsFromPrefs(store prefs.Store) Options {
	return Options{
		WindowDays: DefaultWindowDays,
		Strict:     prefs.Bool(store, prefs.KeyStrictMode, false),
	}
}

// Input is one normalised component of a score.
type Input struct {
	Metric     string  `json:"metric"`
	Weight     float64 `json:"weight"`
	Raw        float64 `json:"raw"`
	Normalized float64 `json:"normalized"`
	Mocked     bool    `json:"mocked,omitempty"`
	Missing    bool    `json:"missing,omitempty"`
}

// Score is one composite value in [0,100]. A stale score has no value.
type Score struct {
	ID     string  `json:"id"`
	Value  float64 `json:"value"`
	Stale  bool    `json:"stale"`
	Inputs []Input `json:"inputs"`
}

// Display renders the value, or the stale badge.
func (s Score) Display() string {
	if s.Stale {
		return "STALE DATA"
	}
	return formatScore(s.Value)
}

// Scores groups the three composites.
type Scores struct {
	Readiness  Score     `json:"readiness"`
	Recovery   Score     `json:"recovery"`
	Nutrition  Score     `json:"nutrition"`
	WindowDays int       `json:"window_days"`
	Strict     bool      `json:"strict"`
	ComputedAt time.Time `json:"computed_at"`
}

type component struct {
	metric    string
	weightKey string
	normalize func(float64) float64
}

var readinessComponents = []component{
	{models.MetricSleep, weights.ReadinessSleep, ratioTo(TargetSleepHours)},
	{models.MetricHRV, weights.ReadinessHRV, ratioTo(TargetHRV)},
	{models.MetricRestingHeartRate, weights.ReadinessRHR, lowerIsBetter(TargetRestingHR)},
}

var recoveryComponents = []component{
	{models.MetricHRV, weights.RecoveryHRV, ratioTo(TargetHRV)},
	{models.MetricSleep, weights.RecoverySleep, ratioTo(TargetSleepHours)},
	{models.MetricActiveEnergy, weights.RecoveryStrain, inverseRatioTo(TargetActiveEnergy)},
}

var nutritionComponents = []component{
	{models.MetricProtein, weights.NutritionProtein, ratioTo(TargetProtein)},
	{models.MetricWater, weights.NutritionHydration, ratioTo(TargetWater)},
	{models.MetricCalories, weights.NutritionCalories, closenessTo(TargetCalories)},
}

// Compute folds raw averages over the window into the three composite scores.
func Compute(ctx context.Context, r Reader, w weights.Weights, opts Options) Scores {
	if opts.WindowDays <= 0 {
		opts.WindowDays = DefaultWindowDays
	}
	now := time.Now
	if opts.Now != nil {
		now = opts.Now
	}

	avgs := make(map[string]metrics.Result[float64])
	read := func(id string) metrics.Result[float64] {
		if res, ok := avgs[id]; ok {
			return res
		}
		res := r.WindowAverage(ctx, id, opts.WindowDays)
		avgs[id] = res
		return res
	}

	return Scores{
		Readiness:  compose("readiness_score", readinessComponents, w, opts.Strict, read),
		Recovery:   compose("recovery_score", recoveryComponents, w, opts.Strict, read),
		Nutrition:  compose("nutrition_score", nutritionComponents, w, opts.Strict, read),
		WindowDays: opts.WindowDays,
		Strict:     opts.Strict,
		ComputedAt: now(),
	}
}

func compose(id string, comps []component, w weights.Weights, strict bool, read func(string) metrics.Result[float64]) Score {
	score := Score{ID: id}
	var sum, weightSum float64

	for _, c := range comps {
		in := Input{Metric: c.metric, Weight: w[c.weightKey]}
		v, ok := read(c.metric).Get()
		switch {
		case ok:
			in.Raw = v
		case strict:
			in.Missing = true
			score.Stale = true
		default:
			in.Raw = mockDefaults[c.metric]
			in.Mocked = true
		}
		if !in.Missing {
			in.Normalized = c.normalize(in.Raw)
			sum += in.Normalized * in.Weight
			weightSum += in.Weight
		}
		score.Inputs = append(score.Inputs, in)
	}

	if score.Stale {
		return score
	}
	if weightSum != 0 {
		score.Value = clamp(math.Round(sum/weightSum*100), 0, 100)
	}
	return score
}

// Definition returns the registry entry for a composite score id.
func Definition(id string) (registry.MetricDefinition, bool) {
	return registry.Lookup(id)
}

func ratioTo(target float64) func(float64) float64 {
	return func(v float64) float64 { return clamp(v/target, 0, 1) }
}

func inverseRatioTo(target float64) func(float64) float64 {
	return func(v float64) float64 { return 1 - clamp(v/target, 0, 1) }
}

func lowerIsBetter(target float64) func(float64) float64 {
	return func(v float64) float64 {
		if v <= 0 {
			return 0
		}
		return clamp(target/v, 0, 1)
	}
}

func closenessTo(target float64) func(float64) float64 {
	return func(v float64) float64 { return clamp(1-math.Abs(v-target)/target, 0, 1) }
}

func formatScore(v float64) string {
	return strconv.FormatFloat(v, 'f', 0, 64)
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
