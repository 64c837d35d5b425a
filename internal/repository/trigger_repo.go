package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"thermostat_triggers/internal/models"
)

type TriggerSQLite struct {
	db *sql.DB
}

func NewTriggerSQLite(db *sql.DB) *TriggerSQLite { return &TriggerSQLite{db: db} }

var _ TriggerRepo = (*TriggerSQLite)(nil)

const triggerColumns = `id, device_id, name, time, temperature, enabled,
		recur_monday, recur_tuesday, recur_wednesday, recur_thursday,
		recur_friday, recur_saturday, recur_sunday, created_at, updated_at`

const (
	insertTriggerSQL = `
		INSERT INTO triggers (device_id, name, time, temperature, enabled,
			recur_monday, recur_tuesday, recur_wednesday, recur_thursday,
			recur_friday, recur_saturday, recur_sunday, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	updateTriggerSQL = `
		UPDATE triggers SET device_id = ?, name = ?, time = ?, temperature = ?, enabled = ?,
			recur_monday = ?, recur_tuesday = ?, recur_wednesday = ?, recur_thursday = ?,
			recur_friday = ?, recur_saturday = ?, recur_sunday = ?, updated_at = ?
		WHERE id = ?
	`
	setTriggerEnabledSQL = `UPDATE triggers SET enabled = ?, updated_at = ? WHERE id = ?`
	deleteTriggerSQL     = `DELETE FROM triggers WHERE id = ?`
)

var (
	selectTriggerByIDSQL = `SELECT ` + triggerColumns + ` FROM triggers WHERE id = ?`
	selectTriggersSQL    = `SELECT ` + triggerColumns + ` FROM triggers ORDER BY time`

	// One-off means no weekday flag is set; due means inside [recently, now].
	selectDueOneTimeSQL = `SELECT ` + triggerColumns + ` FROM triggers
		WHERE enabled = 1
		AND recur_monday = 0 AND recur_tuesday = 0 AND recur_wednesday = 0
		AND recur_thursday = 0 AND recur_friday = 0 AND recur_saturday = 0
		AND recur_sunday = 0
		AND time >= ? AND time <= ?
		ORDER BY time`

	selectEnabledRecurringSQL = `SELECT ` + triggerColumns + ` FROM triggers
		WHERE enabled = 1
		AND (recur_monday = 1 OR recur_tuesday = 1 OR recur_wednesday = 1
			OR recur_thursday = 1 OR recur_friday = 1 OR recur_saturday = 1
			OR recur_sunday = 1)
		ORDER BY time`
)

func scanTrigger(scan func(dest ...any) error) (models.Trigger, error) {
	var t models.Trigger
	err := scan(
		&t.ID, &t.DeviceID, &t.Name, &t.Time, &t.Temperature, &t.Enabled,
		&t.RecurMonday, &t.RecurTuesday, &t.RecurWednesday, &t.RecurThursday,
		&t.RecurFriday, &t.RecurSaturday, &t.RecurSunday,
		&t.CreatedAt, &t.UpdatedAt,
	)
	return t, err
}

func (r *TriggerSQLite) queryTriggers(ctx context.Context, query string, args ...any) ([]models.Trigger, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("select triggers: %w", err)
	}
	defer rows.Close()

	out := make([]models.Trigger, 0, 16)
	for rows.Next() {
		t, err := scanTrigger(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// Create inserts a new trigger and returns it with the assigned ID.
func (r *TriggerSQLite) Create(ctx context.Context, t models.Trigger) (models.Trigger, error) {
	now := time.Now().UTC()
	if t.CreatedAt.IsZero() {
		t.CreatedAt = now
	}
	t.UpdatedAt = now

	res, err := r.db.ExecContext(ctx, insertTriggerSQL,
		t.DeviceID, t.Name, t.Time.UTC(), t.Temperature, t.Enabled,
		t.RecurMonday, t.RecurTuesday, t.RecurWednesday, t.RecurThursday,
		t.RecurFriday, t.RecurSaturday, t.RecurSunday,
		t.CreatedAt, t.UpdatedAt,
	)
	if err != nil {
		return models.Trigger{}, fmt.Errorf("insert trigger: %w", err)
	}
	lastID, err := res.LastInsertId()
	if err != nil {
		return models.Trigger{}, fmt.Errorf("get last insert id for trigger: %w", err)
	}
	t.ID = int(lastID)
	return t, nil
}

func (r *TriggerSQLite) Update(ctx context.Context, t models.Trigger) error {
	_, err := r.db.ExecContext(ctx, updateTriggerSQL,
		t.DeviceID, t.Name, t.Time.UTC(), t.Temperature, t.Enabled,
		t.RecurMonday, t.RecurTuesday, t.RecurWednesday, t.RecurThursday,
		t.RecurFriday, t.RecurSaturday, t.RecurSunday,
		time.Now().UTC(), t.ID,
	)
	if err != nil {
		return fmt.Errorf("update trigger id=%d: %w", t.ID, err)
	}
	return nil
}

func (r *TriggerSQLite) GetByID(ctx context.Context, id int) (models.Trigger, error) {
	t, err := scanTrigger(r.db.QueryRowContext(ctx, selectTriggerByIDSQL, id).Scan)
	if err != nil {
		return models.Trigger{}, fmt.Errorf("select trigger id=%d: %w", id, err)
	}
	return t, nil
}

func (r *TriggerSQLite) List(ctx context.Context) ([]models.Trigger, error) {
	return r.queryTriggers(ctx, selectTriggersSQL)
}

// ListDueOneTime returns enabled one-off triggers inside [recently, now].
func (r *TriggerSQLite) ListDueOneTime(ctx context.Context, recently, now time.Time) ([]models.Trigger, error) {
	return r.queryTriggers(ctx, selectDueOneTimeSQL, recently.UTC(), now.UTC())
}

// ListEnabledRecurring returns all enabled triggers with at least one weekday
// flag; time-of-day matching happens in the service layer.
func (r *TriggerSQLite) ListEnabledRecurring(ctx context.Context) ([]models.Trigger, error) {
	return r.queryTriggers(ctx, selectEnabledRecurringSQL)
}

func (r *TriggerSQLite) SetEnabled(ctx context.Context, id int, enabled bool) error {
	_, err := r.db.ExecContext(ctx, setTriggerEnabledSQL, enabled, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("set trigger enabled id=%d: %w", id, err)
	}
	return nil
}

func (r *TriggerSQLite) Delete(ctx context.Context, id int) error {
	_, err := r.db.ExecContext(ctx, deleteTriggerSQL, id)
	if err != nil {
		return fmt.Errorf("delete trigger id=%d: %w", id, err)
	}
	return nil
}
