package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"thermostat_triggers/internal/models"
)

type DeviceSQLite struct {
	db *sql.DB
}

func NewDeviceSQLite(db *sql.DB) *DeviceSQLite { return &DeviceSQLite{db: db} }

var _ DeviceRepo = (*DeviceSQLite)(nil)

const (
	insertDeviceSQL = `
		INSERT INTO devices (ain, name, created_at, updated_at)
		VALUES (?, ?, ?, ?)
	`
	selectDeviceByAINSQL = `SELECT id, ain, name, created_at, updated_at FROM devices WHERE ain = ?`
	selectDeviceByIDSQL  = `SELECT id, ain, name, created_at, updated_at FROM devices WHERE id = ?`
	selectDevicesSQL     = `SELECT id, ain, name, created_at, updated_at FROM devices ORDER BY name, ain`
	countDevicesSQL      = `SELECT COUNT(*) FROM devices`
	updateDeviceNameSQL  = `UPDATE devices SET name = ?, updated_at = ? WHERE id = ?`
	deleteDeviceSQL      = `DELETE FROM devices WHERE id = ?`
)

// GetByAIN fetches a device by hub identifier. Returns (nil, nil) if not found.
func (r *DeviceSQLite) GetByAIN(ctx context.Context, ain string) (*models.Device, error) {
	var d models.Device
	err := r.db.QueryRowContext(ctx, selectDeviceByAINSQL, ain).
		Scan(&d.ID, &d.AIN, &d.Name, &d.CreatedAt, &d.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("select device %q: %w", ain, err)
	}
	return &d, nil
}

func (r *DeviceSQLite) GetByID(ctx context.Context, id int) (models.Device, error) {
	var d models.Device
	err := r.db.QueryRowContext(ctx, selectDeviceByIDSQL, id).
		Scan(&d.ID, &d.AIN, &d.Name, &d.CreatedAt, &d.UpdatedAt)
	if err != nil {
		return models.Device{}, fmt.Errorf("select device id=%d: %w", id, err)
	}
	return d, nil
}

// Create inserts a new device and returns it with the assigned ID.
func (r *DeviceSQLite) Create(ctx context.Context, d models.Device) (models.Device, error) {
	now := time.Now().UTC()
	if d.CreatedAt.IsZero() {
		d.CreatedAt = now
	}
	d.UpdatedAt = now

	res, err := r.db.ExecContext(ctx, insertDeviceSQL, d.AIN, d.Name, d.CreatedAt, d.UpdatedAt)
	if err != nil {
		return models.Device{}, fmt.Errorf("insert device %q: %w", d.AIN, err)
	}
	lastID, err := res.LastInsertId()
	if err != nil {
		return models.Device{}, fmt.Errorf("get last insert id for device %q: %w", d.AIN, err)
	}
	d.ID = int(lastID)
	return d, nil
}

func (r *DeviceSQLite) UpdateName(ctx context.Context, id int, name string) error {
	_, err := r.db.ExecContext(ctx, updateDeviceNameSQL, name, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("update device name id=%d: %w", id, err)
	}
	return nil
}

func (r *DeviceSQLite) List(ctx context.Context) ([]models.Device, error) {
	rows, err := r.db.QueryContext(ctx, selectDevicesSQL)
	if err != nil {
		return nil, fmt.Errorf("select devices: %w", err)
	}
	defer rows.Close()

	out := make([]models.Device, 0, 8)
	for rows.Next() {
		var d models.Device
		if err := rows.Scan(&d.ID, &d.AIN, &d.Name, &d.CreatedAt, &d.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

func (r *DeviceSQLite) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, countDevicesSQL).Scan(&n); err != nil {
		return 0, fmt.Errorf("count devices: %w", err)
	}
	return n, nil
}

// Delete removes a device; triggers and logs go with it via ON DELETE CASCADE.
func (r *DeviceSQLite) Delete(ctx context.Context, id int) error {
	_, err := r.db.ExecContext(ctx, deleteDeviceSQL, id)
	if err != nil {
		return fmt.Errorf("delete device id=%d: %w", id, err)
	}
	return nil
}
