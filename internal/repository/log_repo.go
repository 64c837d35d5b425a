package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"thermostat_triggers/internal/models"

	"github.com/google/uuid"
)

type LogSQLite struct {
	db *sql.DB
}

func NewLogSQLite(db *sql.DB) *LogSQLite { return &LogSQLite{db: db} }

var _ LogRepo = (*LogSQLite)(nil)

const (
	insertLogSQL = `
		INSERT INTO trigger_logs (id, device_id, trigger_id, temperature, no_op, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`
	disableLoggedTriggerSQL  = `UPDATE triggers SET enabled = 0, updated_at = ? WHERE id = ?`
	countLogsSinceSQL        = `SELECT COUNT(*) FROM trigger_logs WHERE trigger_id = ? AND created_at >= ?`
	deleteLogsForTriggerSQL  = `DELETE FROM trigger_logs WHERE trigger_id = ?`
	selectLogsSQL            = `SELECT id, device_id, trigger_id, temperature, no_op, created_at FROM trigger_logs ORDER BY created_at DESC LIMIT ?`
	selectLogsForTriggerSQL  = `SELECT id, device_id, trigger_id, temperature, no_op, created_at FROM trigger_logs WHERE trigger_id = ? ORDER BY created_at DESC LIMIT ?`
	defaultLogListLimit      = 100
)

// RecordExecution appends one audit row. For one-off triggers the enabled
// flip rides in the same transaction so a crash cannot leave a logged but
// still-armed trigger behind.
func (r *LogSQLite) RecordExecution(ctx context.Context, l models.TriggerLog, disableTrigger bool) error {
	if l.LogID == "" {
		l.LogID = uuid.NewString()
	}
	if l.CreatedAt.IsZero() {
		l.CreatedAt = time.Now().UTC()
	} else {
		l.CreatedAt = l.CreatedAt.UTC()
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin execution transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var triggerID any
	if l.TriggerID != nil {
		triggerID = *l.TriggerID
	}
	if _, err := tx.ExecContext(ctx, insertLogSQL,
		l.LogID, l.DeviceID, triggerID, l.Temperature, l.NoOp, l.CreatedAt,
	); err != nil {
		return fmt.Errorf("insert trigger log: %w", err)
	}

	if disableTrigger && l.TriggerID != nil {
		if _, err := tx.ExecContext(ctx, disableLoggedTriggerSQL, l.CreatedAt, *l.TriggerID); err != nil {
			return fmt.Errorf("disable trigger id=%d: %w", *l.TriggerID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit execution transaction: %w", err)
	}
	return nil
}

// CountForTriggerSince counts logs for the trigger created at/after threshold.
func (r *LogSQLite) CountForTriggerSince(ctx context.Context, triggerID int, threshold time.Time) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, countLogsSinceSQL, triggerID, threshold.UTC()).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count logs for trigger id=%d: %w", triggerID, err)
	}
	return n, nil
}

// List returns recent logs, newest first. triggerID 0 means all triggers.
func (r *LogSQLite) List(ctx context.Context, triggerID int, limit int) ([]models.TriggerLog, error) {
	if limit <= 0 {
		limit = defaultLogListLimit
	}

	var (
		rows *sql.Rows
		err  error
	)
	if triggerID > 0 {
		rows, err = r.db.QueryContext(ctx, selectLogsForTriggerSQL, triggerID, limit)
	} else {
		rows, err = r.db.QueryContext(ctx, selectLogsSQL, limit)
	}
	if err != nil {
		return nil, fmt.Errorf("select trigger logs: %w", err)
	}
	defer rows.Close()

	out := make([]models.TriggerLog, 0, 32)
	for rows.Next() {
		var l models.TriggerLog
		var trigID sql.NullInt64
		if err := rows.Scan(&l.LogID, &l.DeviceID, &trigID, &l.Temperature, &l.NoOp, &l.CreatedAt); err != nil {
			return nil, err
		}
		if trigID.Valid {
			id := int(trigID.Int64)
			l.TriggerID = &id
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

// DeleteForTrigger wipes a trigger's history, re-arming the dedup check.
func (r *LogSQLite) DeleteForTrigger(ctx context.Context, triggerID int) error {
	_, err := r.db.ExecContext(ctx, deleteLogsForTriggerSQL, triggerID)
	if err != nil {
		return fmt.Errorf("delete logs for trigger id=%d: %w", triggerID, err)
	}
	return nil
}
