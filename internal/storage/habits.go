// ABOUTME: Habit CRUD operations for SQLite storage.
// ABOUTME: Schedules are stored as their raw JSON recurrence config.
package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/harperreed/lifeos/internal/models"
)

const habitColumns = `id, owner, name, category, polarity, time_of_day, energy_cost, impact_score,
	duration, primary_driver, secondary_driver, active, schedule, start_date, streak, created_at`

// CreateHabit stores a new habit.
func (d *DB) CreateHabit(ctx context.Context, h *models.Habit) error {
	var schedule, startDate sql.NullString
	if len(h.Schedule) > 0 {
		schedule = sql.NullString{String: string(h.Schedule), Valid: true}
	}
	if h.StartDate != nil {
		startDate = sql.NullString{String: formatTime(*h.StartDate), Valid: true}
	}

	_, err := d.db.ExecContext(ctx, `
		INSERT INTO habits (`+habitColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		h.ID.String(), h.Owner, h.Name, h.Category, string(h.Polarity), h.TimeOfDay,
		h.Friction, h.State, h.Duration, h.PrimaryDriver, h.SecondaryDriver,
		h.Active, schedule, startDate, h.Streak, formatTime(h.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("create habit: %w", err)
	}
	return nil
}

// GetHabit retrieves a habit by ID or ID prefix.
func (d *DB) GetHabit(ctx context.Context, idOrPrefix string) (*models.Habit, error) {
	id, err := d.resolveID(ctx, "habits", idOrPrefix)
	if err != nil {
		return nil, fmt.Errorf("get habit: %w", err)
	}

	row := d.db.QueryRowContext(ctx, `SELECT `+habitColumns+` FROM habits WHERE id = ?`, id)
	h, err := scanHabit(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("get habit: %w: %s", ErrNotFound, idOrPrefix)
		}
		return nil, fmt.Errorf("get habit: %w", err)
	}
	return h, nil
}

// ListHabits returns the habits of owner in creation order. An empty owner lists all.
func (d *DB) ListHabits(ctx context.Context, owner string, activeOnly bool) ([]*models.Habit, error) {
	query := `SELECT ` + habitColumns + ` FROM habits WHERE 1 = 1`
	var args []any
	if owner != "" {
		query += ` AND owner = ?`
		args = append(args, owner)
	}
	if activeOnly {
		query += ` AND active = 1`
	}
	query += ` ORDER BY created_at ASC, name ASC`

	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list habits: %w", err)
	}
	defer rows.Close()

	var habits []*models.Habit
	for rows.Next() {
		h, err := scanHabit(rows)
		if err != nil {
			return nil, fmt.Errorf("scan habit: %w", err)
		}
		habits = append(habits, h)
	}
	return habits, rows.Err()
}

// SetHabitStreak overwrites the streak counter of a habit.
func (d *DB) SetHabitStreak(ctx context.Context, idOrPrefix string, streak int) error {
	id, err := d.resolveID(ctx, "habits", idOrPrefix)
	if err != nil {
		return fmt.Errorf("set streak: %w", err)
	}
	if _, err := d.db.ExecContext(ctx, `UPDATE habits SET streak = ? WHERE id = ?`, streak, id); err != nil {
		return fmt.Errorf("set streak: %w", err)
	}
	return nil
}

// DeleteHabit removes a habit by ID or prefix.
func (d *DB) DeleteHabit(ctx context.Context, idOrPrefix string) error {
	id, err := d.resolveID(ctx, "habits", idOrPrefix)
	if err != nil {
		return fmt.Errorf("delete habit: %w", err)
	}
	if _, err := d.db.ExecContext(ctx, `DELETE FROM habits WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete habit: %w", err)
	}
	return nil
}

func scanHabit(row rowScanner) (*models.Habit, error) {
	var h models.Habit
	var idStr, polarity, createdAt string
	var schedule, startDate sql.NullString

	err := row.Scan(&idStr, &h.Owner, &h.Name, &h.Category, &polarity, &h.TimeOfDay,
		&h.Friction, &h.State, &h.Duration, &h.PrimaryDriver, &h.SecondaryDriver,
		&h.Active, &schedule, &startDate, &h.Streak, &createdAt)
	if err != nil {
		return nil, err
	}

	h.ID, _ = uuid.Parse(idStr)
	h.Polarity = models.Polarity(polarity)
	h.CreatedAt = parseTime(createdAt)
	if schedule.Valid && schedule.String != "" {
		h.Schedule = json.RawMessage(schedule.String)
	}
	if startDate.Valid {
		t := parseTime(startDate.String)
		h.StartDate = &t
	}
	return &h, nil
}
