// ABOUTME: Tests for the metric registry.
// ABOUTME: Covers catalog loading, raw/composite classification, and bounds.
package registry

import (
	"strings"
	"testing"
)

func TestCatalogLoaded(t *testing.T) {
	if len(All()) == 0 {
		t.Fatal("expected catalog to contain definitions")
	}
	d, ok := Lookup("heart_rate_variability")
	if !ok {
		t.Fatal("expected heart_rate_variability to be defined")
	}
	if d.Unit != "ms" {
		t.Errorf("Unit = %q, want ms", d.Unit)
	}
}

func TestIsRaw(t *testing.T) {
	tests := []struct {
		id   string
		want bool
	}{
		{"step_count", true},
		{"sleep_analysis", true},
		{"readiness_score", false},
		{"sleep_debt", false},
		{"no_such_metric", false},
	}

	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			if got := IsRaw(tt.id); got != tt.want {
				t.Errorf("IsRaw(%q) = %v, want %v", tt.id, got, tt.want)
			}
		})
	}
}

func TestCompositesHaveRawDependencies(t *testing.T) {
	comps := Composites()
	if len(comps) != 3 {
		t.Fatalf("expected 3 composites, got %d", len(comps))
	}
	for _, c := range comps {
		if c.Formula == "" {
			t.Errorf("%s has no formula", c.ID)
		}
		for _, dep := range c.DependsOn {
			if !IsRaw(dep) {
				t.Errorf("%s depends on non-raw %s", c.ID, dep)
			}
		}
	}
}

func TestByCategory(t *testing.T) {
	for _, d := range ByCategory("nutrition") {
		if d.Category != "nutrition" {
			t.Errorf("%s has category %s", d.ID, d.Category)
		}
	}
	if len(ByCategory("nutrition")) != 3 {
		t.Errorf("expected 3 nutrition metrics, got %d", len(ByCategory("nutrition")))
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		id    string
		value float64
		want  bool
	}{
		{"sleep_analysis", 7.5, true},
		{"sleep_analysis", 25, false},
		{"sleep_analysis", -1, false},
		{"step_count", 1e6, true},
		{"unknown", -50, true},
	}

	for _, tt := range tests {
		if got := Validate(tt.id, tt.value); got != tt.want {
			t.Errorf("Validate(%q, %v) = %v, want %v", tt.id, tt.value, got, tt.want)
		}
	}
}

func TestParseCatalogRejectsBadKind(t *testing.T) {
	_, err := parseCatalog([]byte("metrics:\n  - id: x\n    kind: weird\n"))
	if err == nil || !strings.Contains(err.Error(), "unknown kind") {
		t.Errorf("expected unknown kind error, got %v", err)
	}
}

func TestParseCatalogRejectsDuplicates(t *testing.T) {
	_, err := parseCatalog([]byte("metrics:\n  - id: x\n    kind: raw\n  - id: x\n    kind: raw\n"))
	if err == nil || !strings.Contains(err.Error(), "duplicate") {
		t.Errorf("expected duplicate error, got %v", err)
	}
}
