// ABOUTME: Converts export payloads into metric samples with normalised UTC timestamps.
// ABOUTME: Points with unreadable dates, missing values, or out-of-bounds values are skipped and counted.
package ingest

import (
	"fmt"
	"strings"
	"time"

	"github.com/araddon/dateparse"
	"github.com/harperreed/lifeos/internal/models"
	"github.com/harperreed/lifeos/internal/registry"
)

// exportLayouts are the formats Health Auto Export is known to emit.
var exportLayouts = []string{
	"2006-01-02 15:04:05 -0700",
	"2006-01-02 15:04:05 Z0700",
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ParseDate reads an export timestamp, trying known layouts before generic
// parsing. The result is in UTC.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, fmt.Errorf("empty date")
	}
	for _, layout := range exportLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	t, err := dateparse.ParseIn(s, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse date %q: %w", s, err)
	}
	return t.UTC(), nil
}

// Stats counts what happened to each point.
type Stats struct {
	Points      int `json:"points"`
	Accepted    int `json:"accepted"`
	BadDate     int `json:"bad_date"`
	NoValue     int `json:"no_value"`
	OutOfBounds int `json:"out_of_bounds"`
}

// Skipped is the number of points not turned into samples.
func (s Stats) Skipped() int {
	return s.BadDate + s.NoValue + s.OutOfBounds
}

// Normalize flattens a payload into samples.
func Normalize(p *Payload) ([]*models.MetricSample, Stats) {
	var (
		out   []*models.MetricSample
		stats Stats
	)
	for _, series := range p.Data.Metrics {
		name := strings.TrimSpace(series.Name)
		for _, pt := range series.Data {
			stats.Points++

			value, ok := pt.Value()
			if !ok || name == "" {
				stats.NoValue++
				continue
			}
			at, err := ParseDate(pt.Date)
			if err != nil {
				stats.BadDate++
				continue
			}
			if !registry.Validate(name, value) {
				stats.OutOfBounds++
				continue
			}

			source := strings.TrimSpace(pt.Source)
			if source == "" {
				source = models.SourceExport
			}
			out = append(out, models.NewSample(name, value, series.Units).
				WithRecordedAt(at).
				WithSource(source))
			stats.Accepted++
		}
	}
	return out, stats
}
