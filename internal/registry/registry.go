// ABOUTME: Static catalog of metric definitions loaded from embedded YAML.
// ABOUTME: Answers which identifiers are raw and therefore resolvable by the repository.
package registry

import (
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"
)

// Kind classifies how a metric value comes to exist.
type Kind string

const (
	KindRaw       Kind = "raw"
	KindDerived   Kind = "derived"
	KindComposite Kind = "composite"
)

// TimeScope describes how samples of a metric are rolled up over time.
type TimeScope string

const (
	ScopeLatest    TimeScope = "latest"
	ScopeDailySum  TimeScope = "daily_sum"
	ScopeDailyAvg  TimeScope = "daily_avg"
	ScopeWindowAvg TimeScope = "window_avg"
)

// Bounds are the inclusive validation limits of a metric. A nil end is open.
type Bounds struct {
	Min *float64 `yaml:"min" json:"min,omitempty"`
	Max *float64 `yaml:"max" json:"max,omitempty"`
}

// MetricDefinition describes one metric in the catalog.
type MetricDefinition struct {
	ID        string    `yaml:"id" json:"id"`
	Name      string    `yaml:"name" json:"name"`
	Category  string    `yaml:"category" json:"category"`
	Kind      Kind      `yaml:"kind" json:"kind"`
	Unit      string    `yaml:"unit" json:"unit"`
	Source    string    `yaml:"source" json:"source"`
	TimeScope TimeScope `yaml:"time_scope" json:"time_scope"`
	DependsOn []string  `yaml:"depends_on,omitempty" json:"depends_on,omitempty"`
	Formula   string    `yaml:"formula,omitempty" json:"formula,omitempty"`
	Bounds    *Bounds   `yaml:"bounds,omitempty" json:"bounds,omitempty"`
}

//go:embed catalog.yaml
var catalogYAML []byte

var (
	definitions []MetricDefinition
	byID        map[string]int
)

func init() {
	defs, err := parseCatalog(catalogYAML)
	if err != nil {
		panic(err)
	}
	definitions = defs
	byID = make(map[string]int, len(defs))
	for i, d := range defs {
		byID[d.ID] = i
	}
}

func parseCatalog(data []byte) ([]MetricDefinition, error) {
	var doc struct {
		Metrics []MetricDefinition `yaml:"metrics"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse metric catalog: %w", err)
	}
	seen := make(map[string]bool, len(doc.Metrics))
	for _, d := range doc.Metrics {
		if d.ID == "" {
			return nil, fmt.Errorf("parse metric catalog: definition without id")
		}
		if seen[d.ID] {
			return nil, fmt.Errorf("parse metric catalog: duplicate id %q", d.ID)
		}
		switch d.Kind {
		case KindRaw, KindDerived, KindComposite:
		default:
			return nil, fmt.Errorf("parse metric catalog: %s has unknown kind %q", d.ID, d.Kind)
		}
		seen[d.ID] = true
	}
	return doc.Metrics, nil
}

// Lookup returns the definition for id.
func Lookup(id string) (MetricDefinition, bool) {
	i, ok := byID[id]
	if !ok {
		return MetricDefinition{}, false
	}
	return definitions[i], true
}

// IsRaw reports whether id names a stored (raw) metric.
func IsRaw(id string) bool {
	d, ok := Lookup(id)
	return ok && d.Kind == KindRaw
}

// All returns every definition in catalog order.
func All() []MetricDefinition {
	out := make([]MetricDefinition, len(definitions))
	copy(out, definitions)
	return out
}

// ByCategory returns the definitions in a category, in catalog order.
func ByCategory(category string) []MetricDefinition {
	var out []MetricDefinition
	for _, d := range definitions {
		if d.Category == category {
			out = append(out, d)
		}
	}
	return out
}

// Composites returns the composite score definitions.
func Composites() []MetricDefinition {
	var out []MetricDefinition
	for _, d := range definitions {
		if d.Kind == KindComposite {
			out = append(out, d)
		}
	}
	return out
}

// Validate reports whether value is within the bounds of id.
// Unknown identifiers and unbounded metrics accept any value.
func Validate(id string, value float64) bool {
	d, ok := Lookup(id)
	if !ok || d.Bounds == nil {
		return true
	}
	if d.Bounds.Min != nil && value < *d.Bounds.Min {
		return false
	}
	if d.Bounds.Max != nil && value > *d.Bounds.Max {
		return false
	}
	return true
}
