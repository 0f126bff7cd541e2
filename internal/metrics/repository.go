// ABOUTME: Metric repository translating metric IDs and windows into raw samples.
// ABOUTME: Only raw metrics resolve; store failures are logged and surfaced as failed results.
package metrics

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/charmbracelet/log"
	"github.com/harperreed/lifeos/internal/models"
	"github.com/harperreed/lifeos/internal/registry"
	"github.com/harperreed/lifeos/internal/storage"
)

// Latest is the most recent value of a metric.
type Latest struct {
	Value      float64   `json:"value"`
	Unit       string    `json:"unit"`
	RecordedAt time.Time `json:"timestamp"`
	Source     string    `json:"source"`
}

// Point is one sample in a trend.
type Point struct {
	Value      float64   `json:"value"`
	RecordedAt time.Time `json:"timestamp"`
	Source     string    `json:"source"`
}

// Repository reads raw samples through a storage.SampleStore.
type Repository struct {
	store  storage.SampleStore
	logger *log.Logger
	now    func() time.Time
}

// Option configures a Repository.
type Option func(*Repository)

// WithLogger sets the logger used for swallowed store failures.
func WithLogger(l *log.Logger) Option {
	return func(r *Repository) {
		if l != nil {
			r.logger = l
		}
	}
}

// WithClock overrides the time source used for trend windows.
func WithClock(now func() time.Time) Option {
	return func(r *Repository) {
		if now != nil {
			r.now = now
		}
	}
}

// NewRepository creates a Repository over store.
func NewRepository(store storage.SampleStore, opts ...Option) *Repository {
	r := &Repository{
		store:  store,
		logger: log.New(io.Discard),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// GetLatest returns the most recent sample of a raw metric.
func (r *Repository) GetLatest(ctx context.Context, metricID string) Result[Latest] {
	if !registry.IsRaw(metricID) {
		return empty[Latest]()
	}

	s, err := r.store.LatestSample(ctx, metricID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return empty[Latest]()
		}
		r.logger.Error("latest read failed", "metric", metricID, "err", err)
		return failed[Latest](err)
	}

	return found(Latest{
		Value:      s.Value,
		Unit:       s.Unit,
		RecordedAt: s.RecordedAt,
		Source:     s.Source,
	})
}

// GetTrend returns samples of a raw metric in [now - windowDays, now], oldest first.
func (r *Repository) GetTrend(ctx context.Context, metricID string, windowDays int) Result[[]Point] {
	res := r.GetMultiTrend(ctx, []string{metricID}, windowDays)
	if res.Status != StatusFound {
		return Result[[]Point]{Status: res.Status, Err: res.Err}
	}
	points := res.Value[metricID]
	if len(points) == 0 {
		return empty[[]Point]()
	}
	return found(points)
}

// GetMultiTrend fetches several metrics in one query and partitions the
// samples by metric. Identifiers that are not raw are dropped.
func (r *Repository) GetMultiTrend(ctx context.Context, metricIDs []string, windowDays int) Result[map[string][]Point] {
	var raw []string
	for _, id := range metricIDs {
		if registry.IsRaw(id) {
			raw = append(raw, id)
		}
	}
	if len(raw) == 0 {
		return empty[map[string][]Point]()
	}

	end := r.now()
	start := end.AddDate(0, 0, -windowDays)

	samples, err := r.store.SamplesInRange(ctx, raw, start, end)
	if err != nil {
		r.logger.Error("trend read failed", "metrics", raw, "days", windowDays, "err", err)
		return failed[map[string][]Point](err)
	}
	if len(samples) == 0 {
		return empty[map[string][]Point]()
	}

	out := make(map[string][]Point, len(raw))
	for _, s := range samples {
		out[s.MetricName] = append(out[s.MetricName], toPoint(s))
	}
	return found(out)
}

// GetAverage returns the mean of a raw metric's samples recorded in [start, end].
func (r *Repository) GetAverage(ctx context.Context, metricID string, start, end time.Time) Result[float64] {
	if !registry.IsRaw(metricID) {
		return empty[float64]()
	}

	samples, err := r.store.SamplesInRange(ctx, []string{metricID}, start, end)
	if err != nil {
		r.logger.Error("average read failed", "metric", metricID, "err", err)
		return failed[float64](err)
	}
	if len(samples) == 0 {
		return empty[float64]()
	}

	var sum float64
	for _, s := range samples {
		sum += s.Value
	}
	return found(sum / float64(len(samples)))
}

// WindowAverage is GetAverage over the trailing windowDays.
func (r *Repository) WindowAverage(ctx context.Context, metricID string, windowDays int) Result[float64] {
	end := r.now()
	return r.GetAverage(ctx, metricID, end.AddDate(0, 0, -windowDays), end)
}

func toPoint(s *models.MetricSample) Point {
	return Point{Value: s.Value, RecordedAt: s.RecordedAt, Source: s.Source}
}
