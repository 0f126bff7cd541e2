// ABOUTME: Metric sample operations for SQLite storage.
// ABOUTME: Implements upsert, latest, range and prefix-resolved reads over the metrics table.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/harperreed/lifeos/internal/models"
)

const sampleColumns = `id, metric_name, value, unit, source, recorded_at, created_at`

// UpsertSamples writes samples in a single transaction.
func (d *DB) UpsertSamples(ctx context.Context, samples []*models.MetricSample) (int, error) {
	if len(samples) == 0 {
		return 0, nil
	}

	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("upsert samples: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO metrics (`+sampleColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(metric_name, recorded_at, source)
		DO UPDATE SET value = excluded.value, unit = excluded.unit
	`)
	if err != nil {
		return 0, fmt.Errorf("upsert samples: %w", err)
	}
	defer stmt.Close()

	for _, s := range samples {
		if s.ID == uuid.Nil {
			s.ID = uuid.New()
		}
		if s.CreatedAt.IsZero() {
			s.CreatedAt = time.Now()
		}
		_, err := stmt.ExecContext(ctx,
			s.ID.String(),
			s.MetricName,
			s.Value,
			s.Unit,
			s.Source,
			formatTime(s.RecordedAt),
			formatTime(s.CreatedAt),
		)
		if err != nil {
			return 0, fmt.Errorf("upsert sample %s: %w", s.MetricName, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("upsert samples: %w", err)
	}
	return len(samples), nil
}

// LatestSample returns the most recent sample of a metric.
func (d *DB) LatestSample(ctx context.Context, name string) (*models.MetricSample, error) {
	query := `
		SELECT ` + sampleColumns + `
		FROM metrics
		WHERE metric_name = ?
		ORDER BY recorded_at DESC
		LIMIT 1
	`
	s, err := scanSample(d.db.QueryRowContext(ctx, query, name))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("latest %s: %w", name, ErrNotFound)
		}
		return nil, fmt.Errorf("latest %s: %w", name, err)
	}
	return s, nil
}

// SamplesInRange returns samples of the given metrics within [start, end].
func (d *DB) SamplesInRange(ctx context.Context, names []string, start, end time.Time) ([]*models.MetricSample, error) {
	if len(names) == 0 {
		return nil, nil
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(names)), ", ")
	query := `
		SELECT ` + sampleColumns + `
		FROM metrics
		WHERE metric_name IN (` + placeholders + `)
		  AND recorded_at >= ? AND recorded_at <= ?
		ORDER BY recorded_at ASC, metric_name ASC
	`
	args := make([]any, 0, len(names)+2)
	for _, n := range names {
		args = append(args, n)
	}
	args = append(args, formatTime(start), formatTime(end))

	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("samples in range: %w", err)
	}
	defer rows.Close()

	return scanSamples(rows)
}

// ListSamples retrieves samples with optional filtering by metric name.
// Results are sorted by RecordedAt descending (most recent first).
func (d *DB) ListSamples(ctx context.Context, name *string, limit int) ([]*models.MetricSample, error) {
	var query string
	var args []any

	if name != nil {
		query = `SELECT ` + sampleColumns + ` FROM metrics WHERE metric_name = ? ORDER BY recorded_at DESC`
		args = append(args, *name)
	} else {
		query = `SELECT ` + sampleColumns + ` FROM metrics ORDER BY recorded_at DESC`
	}

	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list samples: %w", err)
	}
	defer rows.Close()

	return scanSamples(rows)
}

// DeleteSample removes a sample by ID or prefix.
func (d *DB) DeleteSample(ctx context.Context, idOrPrefix string) error {
	id, err := d.resolveID(ctx, "metrics", idOrPrefix)
	if err != nil {
		return fmt.Errorf("delete sample: %w", err)
	}

	if _, err := d.db.ExecContext(ctx, "DELETE FROM metrics WHERE id = ?", id); err != nil {
		return fmt.Errorf("delete sample: %w", err)
	}
	return nil
}

// resolveID finds the full ID in table from a prefix.
func (d *DB) resolveID(ctx context.Context, table, idOrPrefix string) (string, error) {
	// If it looks like a full UUID, use it directly
	if len(idOrPrefix) == 36 && strings.Count(idOrPrefix, "-") == 4 {
		return idOrPrefix, nil
	}

	query := `SELECT id FROM ` + table + ` WHERE id LIKE ? || '%'`
	rows, err := d.db.QueryContext(ctx, query, idOrPrefix)
	if err != nil {
		return "", fmt.Errorf("resolve ID: %w", err)
	}
	defer rows.Close()

	var matches []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return "", fmt.Errorf("scan ID: %w", err)
		}
		matches = append(matches, id)
	}
	if err := rows.Err(); err != nil {
		return "", fmt.Errorf("resolve ID: %w", err)
	}

	if len(matches) == 0 {
		return "", fmt.Errorf("%w: %s", ErrNotFound, idOrPrefix)
	}
	if len(matches) > 1 {
		return "", fmt.Errorf("ambiguous prefix %s: matches multiple records", idOrPrefix)
	}
	return matches[0], nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSample(row rowScanner) (*models.MetricSample, error) {
	var s models.MetricSample
	var idStr, recordedAt, createdAt string

	if err := row.Scan(&idStr, &s.MetricName, &s.Value, &s.Unit, &s.Source, &recordedAt, &createdAt); err != nil {
		return nil, err
	}

	s.ID, _ = uuid.Parse(idStr)
	s.RecordedAt = parseTime(recordedAt)
	s.CreatedAt = parseTime(createdAt)
	return &s, nil
}

func scanSamples(rows *sql.Rows) ([]*models.MetricSample, error) {
	var samples []*models.MetricSample
	for rows.Next() {
		s, err := scanSample(rows)
		if err != nil {
			return nil, fmt.Errorf("scan sample: %w", err)
		}
		samples = append(samples, s)
	}
	return samples, rows.Err()
}
