// ABOUTME: Export and import functionality for lifeos data.
// ABOUTME: Supports JSON, YAML, and Markdown export formats.
package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/harperreed/lifeos/internal/models"
	"gopkg.in/yaml.v3"
)

// ExportData represents the full export format for lifeos data.
type ExportData struct {
	Version    string                 `json:"version" yaml:"version"`
	ExportedAt time.Time              `json:"exported_at" yaml:"exported_at"`
	Tool       string                 `json:"tool" yaml:"tool"`
	Samples    []*models.MetricSample `json:"samples" yaml:"samples"`
	Habits     []*models.Habit        `json:"habits" yaml:"habits"`
}

// GetAllData retrieves all data for export.
func (d *DB) GetAllData(ctx context.Context) (*ExportData, error) {
	samples, err := d.ListSamples(ctx, nil, 0)
	if err != nil {
		return nil, fmt.Errorf("list samples: %w", err)
	}

	habits, err := d.ListHabits(ctx, "", false)
	if err != nil {
		return nil, fmt.Errorf("list habits: %w", err)
	}

	return &ExportData{
		Version:    "1.0",
		ExportedAt: time.Now(),
		Tool:       "lifeos",
		Samples:    samples,
		Habits:     habits,
	}, nil
}

// ImportData imports data from an export file. Samples are upserted;
// habits that already exist are skipped.
func (d *DB) ImportData(ctx context.Context, data *ExportData) error {
	if _, err := d.UpsertSamples(ctx, data.Samples); err != nil {
		return fmt.Errorf("import samples: %w", err)
	}

	for _, h := range data.Habits {
		if _, err := d.GetHabit(ctx, h.ID.String()); err == nil {
			continue
		}
		if err := d.CreateHabit(ctx, h); err != nil {
			return fmt.Errorf("import habit: %w", err)
		}
	}

	return nil
}

// ExportJSON exports all data as JSON.
func (d *DB) ExportJSON(ctx context.Context) ([]byte, error) {
	data, err := d.GetAllData(ctx)
	if err != nil {
		return nil, err
	}
	return json.MarshalIndent(data, "", "  ")
}

// ExportYAML exports all data as YAML with samples grouped by metric.
func (d *DB) ExportYAML(ctx context.Context) ([]byte, error) {
	data, err := d.GetAllData(ctx)
	if err != nil {
		return nil, err
	}

	yamlData := struct {
		Version    string                  `yaml:"version"`
		ExportedAt string                  `yaml:"exported_at"`
		Tool       string                  `yaml:"tool"`
		Samples    map[string][]yamlSample `yaml:"samples"`
		Habits     []yamlHabit             `yaml:"habits"`
	}{
		Version:    data.Version,
		ExportedAt: data.ExportedAt.Format(time.RFC3339),
		Tool:       data.Tool,
		Samples:    make(map[string][]yamlSample),
		Habits:     make([]yamlHabit, 0, len(data.Habits)),
	}

	for _, s := range data.Samples {
		yamlData.Samples[s.MetricName] = append(yamlData.Samples[s.MetricName], yamlSample{
			ID:         s.ID.String()[:8],
			Value:      s.Value,
			Unit:       s.Unit,
			Source:     s.Source,
			RecordedAt: s.RecordedAt.Format(time.RFC3339),
		})
	}

	for _, h := range data.Habits {
		yamlData.Habits = append(yamlData.Habits, yamlHabit{
			ID:        h.ID.String()[:8],
			Name:      h.Name,
			TimeOfDay: h.TimeOfDay,
			Driver:    h.PrimaryDriver,
			Schedule:  string(h.Schedule),
			Streak:    h.Streak,
		})
	}

	return yaml.Marshal(yamlData)
}

type yamlSample struct {
	ID         string  `yaml:"id"`
	Value      float64 `yaml:"value"`
	Unit       string  `yaml:"unit"`
	Source     string  `yaml:"source,omitempty"`
	RecordedAt string  `yaml:"recorded_at"`
}

type yamlHabit struct {
	ID        string `yaml:"id"`
	Name      string `yaml:"name"`
	TimeOfDay string `yaml:"time_of_day,omitempty"`
	Driver    string `yaml:"primary_driver,omitempty"`
	Schedule  string `yaml:"schedule,omitempty"`
	Streak    int    `yaml:"streak"`
}

// ExportMarkdown exports samples as Markdown tables, optionally restricted
// to one metric and to samples recorded at or after since.
func (d *DB) ExportMarkdown(ctx context.Context, name *string, since *time.Time) (string, error) {
	samples, err := d.ListSamples(ctx, name, 0)
	if err != nil {
		return "", err
	}

	grouped := make(map[string][]*models.MetricSample)
	for _, s := range samples {
		if since != nil && s.RecordedAt.Before(*since) {
			continue
		}
		grouped[s.MetricName] = append(grouped[s.MetricName], s)
	}

	names := make([]string, 0, len(grouped))
	for n := range grouped {
		names = append(names, n)
	}
	sort.Strings(names)

	var sb strings.Builder
	now := time.Now()
	sb.WriteString(fmt.Sprintf("# Life OS Export - %s\n\n", now.Format("2006-01-02")))
	sb.WriteString(fmt.Sprintf("Generated: %s\n\n", now.Format(time.RFC3339)))

	for _, n := range names {
		sb.WriteString(fmt.Sprintf("## %s\n\n", n))
		sb.WriteString("| Date | Value | Source |\n")
		sb.WriteString("|------|-------|--------|\n")
		for _, s := range grouped[n] {
			sb.WriteString(fmt.Sprintf("| %s | %.2f %s | %s |\n",
				s.RecordedAt.Format("2006-01-02 15:04"),
				s.Value, s.Unit, s.Source))
		}
		sb.WriteString("\n")
	}

	return sb.String(), nil
}

// ImportJSON imports data from JSON bytes.
func (d *DB) ImportJSON(ctx context.Context, data []byte) error {
	var exportData ExportData
	if err := json.Unmarshal(data, &exportData); err != nil {
		return fmt.Errorf("unmarshal JSON: %w", err)
	}
	return d.ImportData(ctx, &exportData)
}
