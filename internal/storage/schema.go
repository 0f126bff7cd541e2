// ABOUTME: SQLite schema definition and initialization.
// ABOUTME: Defines tables for metrics, habits, user settings, and local preferences.
package storage

import "fmt"

// currentVersion is recorded in PRAGMA user_version once migrations run.
const currentVersion = 2

// initSchema brings the database up to currentVersion.
func (d *DB) initSchema() error {
	version, err := d.SchemaVersion()
	if err != nil {
		return err
	}
	if version >= currentVersion {
		return nil
	}

	if version < 1 {
		if err := d.migrateV1(); err != nil {
			return fmt.Errorf("migrate v1: %w", err)
		}
	}
	if version < 2 {
		if err := d.migrateV2(); err != nil {
			return fmt.Errorf("migrate v2: %w", err)
		}
	}

	_, err = d.db.Exec(fmt.Sprintf("PRAGMA user_version = %d", currentVersion))
	return err
}

// SchemaVersion reports the applied schema version.
func (d *DB) SchemaVersion() (int, error) {
	var version int
	if err := d.db.QueryRow("PRAGMA user_version").Scan(&version); err != nil {
		return 0, fmt.Errorf("read user_version: %w", err)
	}
	return version, nil
}

func (d *DB) migrateV1() error {
	const ddl = `
	CREATE TABLE IF NOT EXISTS metrics (
		id TEXT PRIMARY KEY,
		metric_name TEXT NOT NULL,
		value REAL NOT NULL,
		unit TEXT NOT NULL DEFAULT '',
		source TEXT NOT NULL DEFAULT '',
		recorded_at TEXT NOT NULL,
		created_at TEXT NOT NULL,
		UNIQUE (metric_name, recorded_at, source)
	);

	CREATE TABLE IF NOT EXISTS habits (
		id TEXT PRIMARY KEY,
		owner TEXT NOT NULL,
		name TEXT NOT NULL,
		category TEXT NOT NULL DEFAULT '',
		polarity TEXT NOT NULL DEFAULT 'positive',
		time_of_day TEXT NOT NULL DEFAULT '',
		energy_cost REAL NOT NULL DEFAULT 0,
		impact_score REAL NOT NULL DEFAULT 0,
		duration REAL NOT NULL DEFAULT 0,
		primary_driver TEXT NOT NULL DEFAULT '',
		secondary_driver TEXT NOT NULL DEFAULT '',
		active INTEGER NOT NULL DEFAULT 1,
		schedule TEXT,
		start_date TEXT,
		streak INTEGER NOT NULL DEFAULT 0,
		created_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS user_settings (
		user_id TEXT PRIMARY KEY,
		dashboard_layout TEXT NOT NULL DEFAULT 'null',
		settings TEXT NOT NULL DEFAULT '{}',
		updated_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS prefs (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_metrics_name_recorded ON metrics(metric_name, recorded_at DESC);
	CREATE INDEX IF NOT EXISTS idx_metrics_recorded ON metrics(recorded_at DESC);
	CREATE INDEX IF NOT EXISTS idx_habits_owner ON habits(owner);
	`

	_, err := d.db.Exec(ddl)
	return err
}

// migrateV2 widens whole-second timestamps written before nanosecond
// precision so old and new rows keep sorting together.
func (d *DB) migrateV2() error {
	const widen = `substr(%[1]s, 1, 19) || '.000000000Z'`
	const where = `length(%[1]s) = 20 AND substr(%[1]s, 20, 1) = 'Z'`
	stmts := []string{
		fmt.Sprintf(`UPDATE OR IGNORE metrics SET recorded_at = `+widen+` WHERE `+where, "recorded_at"),
		fmt.Sprintf(`UPDATE metrics SET created_at = `+widen+` WHERE `+where, "created_at"),
		fmt.Sprintf(`UPDATE habits SET created_at = `+widen+` WHERE `+where, "created_at"),
		fmt.Sprintf(`UPDATE habits SET start_date = `+widen+` WHERE start_date IS NOT NULL AND `+where, "start_date"),
		fmt.Sprintf(`UPDATE user_settings SET updated_at = `+widen+` WHERE `+where, "updated_at"),
	}
	for _, stmt := range stmts {
		if _, err := d.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}
