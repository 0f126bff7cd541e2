// ABOUTME: Tests for the MetricSample model.
// ABOUTME: Validates constructor defaults and builder methods.
package models

import (
	"testing"
	"time"
)

func TestNewSample(t *testing.T) {
	s := NewSample(MetricSteps, 8500, "count")

	if s.ID.String() == "" {
		t.Error("expected UUID to be set")
	}
	if s.MetricName != MetricSteps {
		t.Errorf("MetricName = %s, want %s", s.MetricName, MetricSteps)
	}
	if s.Value != 8500 {
		t.Errorf("Value = %f, want 8500", s.Value)
	}
	if s.Source != SourceManual {
		t.Errorf("Source = %s, want %s", s.Source, SourceManual)
	}
	if s.RecordedAt.IsZero() {
		t.Error("expected RecordedAt to be set")
	}
}

func TestSampleBuilders(t *testing.T) {
	at := time.Date(2025, 3, 1, 7, 0, 0, 0, time.UTC)
	s := NewSample(MetricHRV, 52, "ms").WithRecordedAt(at).WithSource(SourceExport)

	if !s.RecordedAt.Equal(at) {
		t.Errorf("RecordedAt = %v, want %v", s.RecordedAt, at)
	}
	if s.Source != SourceExport {
		t.Errorf("Source = %s, want %s", s.Source, SourceExport)
	}
}
