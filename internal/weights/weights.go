// ABOUTME: User-adjustable linear-combination weights for composite scores.
// ABOUTME: Defaults are hard-coded; edits and resets persist the full set to the preference store.
package weights

import (
	"errors"
	"fmt"
	"sort"

	"github.com/harperreed/lifeos/internal/prefs"
)

// ErrUnknownWeight is returned when updating a coefficient outside the schema.
var ErrUnknownWeight = errors.New("unknown weight")

// Coefficient names.
const (
	ReadinessSleep     = "readiness_sleep"
	ReadinessHRV       = "readiness_hrv"
	ReadinessRHR       = "readiness_rhr"
	RecoveryHRV        = "recovery_hrv"
	RecoverySleep      = "recovery_sleep"
	RecoveryStrain     = "recovery_strain"
	NutritionProtein   = "nutrition_protein"
	NutritionHydration = "nutrition_hydration"
	NutritionCalories  = "nutrition_calories"
)

// Weights maps coefficient names to values. Values are not required to
// lie in [0,1] or to sum to 1.
type Weights map[string]float64

// Defaults returns a fresh copy of the default coefficients.
func Defaults() Weights {
	return Weights{
		ReadinessSleep:     0.40,
		ReadinessHRV:       0.35,
		ReadinessRHR:       0.25,
		RecoveryHRV:        0.50,
		RecoverySleep:      0.30,
		RecoveryStrain:     0.20,
		NutritionProtein:   0.40,
		NutritionHydration: 0.30,
		NutritionCalories:  0.30,
	}
}

// Keys returns the coefficient names in sorted order.
func Keys() []string {
	d := Defaults()
	keys := make([]string, 0, len(d))
	for k := range d {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Clone returns a copy of w.
func (w Weights) Clone() Weights {
	out := make(Weights, len(w))
	for k, v := range w {
		out[k] = v
	}
	return out
}

// Clamp01 returns a copy with every value clamped into [0,1]. The model does
// not apply it; callers that want bounded weights opt in.
func (w Weights) Clamp01() Weights {
	out := w.Clone()
	for k, v := range out {
		switch {
		case v < 0:
			out[k] = 0
		case v > 1:
			out[k] = 1
		}
	}
	return out
}

// Model holds the current weights and persists changes.
type Model struct {
	store   prefs.Store
	weights Weights
}

// Load builds a Model from defaults overlaid with any stored values.
// Stored keys outside the schema are ignored.
func Load(store prefs.Store) (*Model, error) {
	m := &Model{store: store, weights: Defaults()}

	var stored Weights
	ok, err := store.Get(prefs.KeyScientificWeights, &stored)
	if err != nil {
		return m, fmt.Errorf("load weights: %w", err)
	}
	if ok {
		for k, v := range stored {
			if _, known := m.weights[k]; known {
				m.weights[k] = v
			}
		}
	}
	return m, nil
}

// Weights returns a copy of the current coefficients.
func (m *Model) Weights() Weights {
	return m.weights.Clone()
}

// Get returns one coefficient.
func (m *Model) Get(key string) (float64, bool) {
	v, ok := m.weights[key]
	return v, ok
}

// UpdateWeight replaces one coefficient and persists the full set.
func (m *Model) UpdateWeight(key string, value float64) error {
	if _, ok := m.weights[key]; !ok {
		return fmt.Errorf("%w: %s", ErrUnknownWeight, key)
	}
	m.weights[key] = value
	return m.persist()
}

// ResetWeights restores and persists the defaults.
func (m *Model) ResetWeights() error {
	m.weights = Defaults()
	return m.persist()
}

func (m *Model) persist() error {
	if err := m.store.Set(prefs.KeyScientificWeights, m.weights); err != nil {
		return fmt.Errorf("save weights: %w", err)
	}
	return nil
}
