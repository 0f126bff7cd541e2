// ABOUTME: Repository interface for lifeos data storage.
// ABOUTME: Defines the contract for samples, habits, user settings, and export.
package storage

import (
	"context"
	"time"

	"github.com/harperreed/lifeos/internal/models"
)

// SampleStore is the read/write surface over raw metric samples.
type SampleStore interface {
	// UpsertSamples inserts samples, replacing rows with the same
	// (metric_name, recorded_at, source). Returns the number of rows written.
	UpsertSamples(ctx context.Context, samples []*models.MetricSample) (int, error)
	// LatestSample returns ErrNotFound when no sample of name exists.
	LatestSample(ctx context.Context, name string) (*models.MetricSample, error)
	// SamplesInRange returns samples of any of names with recorded_at in
	// [start, end], ordered by recorded_at ascending.
	SamplesInRange(ctx context.Context, names []string, start, end time.Time) ([]*models.MetricSample, error)
}

// Repository defines the storage interface for lifeos data.
// This interface allows swapping implementations (e.g., for testing).
type Repository interface {
	SampleStore
	ListSamples(ctx context.Context, name *string, limit int) ([]*models.MetricSample, error)
	DeleteSample(ctx context.Context, idOrPrefix string) error

	// Habit operations
	CreateHabit(ctx context.Context, h *models.Habit) error
	GetHabit(ctx context.Context, idOrPrefix string) (*models.Habit, error)
	ListHabits(ctx context.Context, owner string, activeOnly bool) ([]*models.Habit, error)
	SetHabitStreak(ctx context.Context, idOrPrefix string, streak int) error
	DeleteHabit(ctx context.Context, idOrPrefix string) error

	// User settings
	GetUserSettings(ctx context.Context, userID string) (*UserSettings, error)
	SaveUserSettings(ctx context.Context, s *UserSettings) error

	// Export/Import
	GetAllData(ctx context.Context) (*ExportData, error)
	ImportData(ctx context.Context, data *ExportData) error

	// Lifecycle
	Close() error
}
