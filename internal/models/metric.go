// ABOUTME: MetricSample model for raw health samples.
// ABOUTME: Samples are immutable once stored and read in time-windowed batches.
package models

import (
	"time"

	"github.com/google/uuid"
)

// Well-known raw metric identifiers. These match the metric names used by
// Health Auto Export so ingested rows resolve without translation.
const (
	MetricSleep            = "sleep_analysis"
	MetricHRV              = "heart_rate_variability"
	MetricRestingHeartRate = "resting_heart_rate"
	MetricHeartRate        = "heart_rate"
	MetricSteps            = "step_count"
	MetricActiveEnergy     = "active_energy"
	MetricProtein          = "dietary_protein"
	MetricWater            = "dietary_water"
	MetricCalories         = "dietary_energy"
	MetricWeight           = "weight_body_mass"
	MetricMindful          = "mindful_minutes"
)

// Sample sources.
const (
	SourceManual = "manual"
	SourceExport = "health_auto_export"
)

// MetricSample is a single recorded value of a metric.
type MetricSample struct {
	ID         uuid.UUID `json:"id" yaml:"id"`
	MetricName string    `json:"metric_name" yaml:"metric_name"`
	Value      float64   `json:"value" yaml:"value"`
	Unit       string    `json:"unit" yaml:"unit"`
	Source     string    `json:"source" yaml:"source"`
	RecordedAt time.Time `json:"recorded_at" yaml:"recorded_at"`
	CreatedAt  time.Time `json:"created_at" yaml:"created_at"`
}

// NewSample creates a manually logged sample recorded now.
func NewSample(metricName string, value float64, unit string) *MetricSample {
	now := time.Now()
	return &MetricSample{
		ID:         uuid.New(),
		MetricName: metricName,
		Value:      value,
		Unit:       unit,
		Source:     SourceManual,
		RecordedAt: now,
		CreatedAt:  now,
	}
}

// WithRecordedAt sets a custom recorded_at timestamp.
func (s *MetricSample) WithRecordedAt(t time.Time) *MetricSample {
	s.RecordedAt = t
	return s
}

// WithSource sets the source tag.
func (s *MetricSample) WithSource(source string) *MetricSample {
	s.Source = source
	return s
}
