// ABOUTME: Tests for export, import, and migration.
// ABOUTME: Covers JSON/YAML/Markdown output and copying between databases.
package storage

import (
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/harperreed/lifeos/internal/models"
	"gopkg.in/yaml.v3"
)

func seedExportData(t *testing.T, db *DB) {
	t.Helper()
	ctx := context.Background()
	at := time.Date(2025, 2, 1, 8, 0, 0, 0, time.UTC)

	if _, err := db.UpsertSamples(ctx, []*models.MetricSample{
		models.NewSample(models.MetricSteps, 9000, "count").WithRecordedAt(at),
		models.NewSample(models.MetricHRV, 55, "ms").WithRecordedAt(at),
	}); err != nil {
		t.Fatalf("UpsertSamples failed: %v", err)
	}
	if err := db.CreateHabit(ctx, models.NewHabit("me", "Journal")); err != nil {
		t.Fatalf("CreateHabit failed: %v", err)
	}
}

func TestExportJSON(t *testing.T) {
	db := setupTestDB(t)
	seedExportData(t, db)

	data, err := db.ExportJSON(context.Background())
	if err != nil {
		t.Fatalf("ExportJSON failed: %v", err)
	}

	var got ExportData
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if got.Tool != "lifeos" {
		t.Errorf("Tool = %q", got.Tool)
	}
	if len(got.Samples) != 2 || len(got.Habits) != 1 {
		t.Errorf("got %d samples / %d habits", len(got.Samples), len(got.Habits))
	}
}

func TestExportYAMLGroupsByMetric(t *testing.T) {
	db := setupTestDB(t)
	seedExportData(t, db)

	data, err := db.ExportYAML(context.Background())
	if err != nil {
		t.Fatalf("ExportYAML failed: %v", err)
	}

	var got struct {
		Samples map[string][]map[string]any `yaml:"samples"`
	}
	if err := yaml.Unmarshal(data, &got); err != nil {
		t.Fatalf("invalid YAML: %v", err)
	}
	if len(got.Samples[models.MetricSteps]) != 1 {
		t.Errorf("expected one step_count entry, got %v", got.Samples)
	}
}

func TestExportMarkdown(t *testing.T) {
	db := setupTestDB(t)
	seedExportData(t, db)

	md, err := db.ExportMarkdown(context.Background(), nil, nil)
	if err != nil {
		t.Fatalf("ExportMarkdown failed: %v", err)
	}
	if !strings.Contains(md, "## step_count") || !strings.Contains(md, "## heart_rate_variability") {
		t.Errorf("markdown missing sections:\n%s", md)
	}

	since := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	md, err = db.ExportMarkdown(context.Background(), nil, &since)
	if err != nil {
		t.Fatalf("ExportMarkdown failed: %v", err)
	}
	if strings.Contains(md, "## step_count") {
		t.Error("expected since filter to drop old samples")
	}
}

func TestImportJSONRoundTrip(t *testing.T) {
	src := setupTestDB(t)
	seedExportData(t, src)
	ctx := context.Background()

	data, err := src.ExportJSON(ctx)
	if err != nil {
		t.Fatalf("ExportJSON failed: %v", err)
	}

	dst := setupTestDB(t)
	if err := dst.ImportJSON(ctx, data); err != nil {
		t.Fatalf("ImportJSON failed: %v", err)
	}
	// Importing twice must not duplicate anything.
	if err := dst.ImportJSON(ctx, data); err != nil {
		t.Fatalf("second ImportJSON failed: %v", err)
	}

	all, err := dst.GetAllData(ctx)
	if err != nil {
		t.Fatalf("GetAllData failed: %v", err)
	}
	if len(all.Samples) != 2 || len(all.Habits) != 1 {
		t.Errorf("got %d samples / %d habits", len(all.Samples), len(all.Habits))
	}
}

func TestMigrateData(t *testing.T) {
	src := setupTestDB(t)
	seedExportData(t, src)
	dst := setupTestDB(t)

	summary, err := MigrateData(context.Background(), src, dst)
	if err != nil {
		t.Fatalf("MigrateData failed: %v", err)
	}
	if summary.Samples != 2 || summary.Habits != 1 {
		t.Errorf("summary = %+v", summary)
	}
}
