package repository

import (
	"context"
	"database/sql"
	"time"

	"thermostat_triggers/internal/models"
)

type Authorization interface {
	Create(username, hash string) (int, error)
	GetByUsername(username string) (*models.User, error)
}

// DeviceRepo persists thermostats observed on the hub.
type DeviceRepo interface {
	GetByAIN(ctx context.Context, ain string) (*models.Device, error)
	GetByID(ctx context.Context, id int) (models.Device, error)
	Create(ctx context.Context, d models.Device) (models.Device, error)
	UpdateName(ctx context.Context, id int, name string) error
	List(ctx context.Context) ([]models.Device, error)
	Count(ctx context.Context) (int, error)
	Delete(ctx context.Context, id int) error
}

// TriggerRepo persists scheduled temperature changes.
type TriggerRepo interface {
	Create(ctx context.Context, t models.Trigger) (models.Trigger, error)
	Update(ctx context.Context, t models.Trigger) error
	GetByID(ctx context.Context, id int) (models.Trigger, error)
	List(ctx context.Context) ([]models.Trigger, error)
	ListDueOneTime(ctx context.Context, recently, now time.Time) ([]models.Trigger, error)
	ListEnabledRecurring(ctx context.Context) ([]models.Trigger, error)
	SetEnabled(ctx context.Context, id int, enabled bool) error
	Delete(ctx context.Context, id int) error
}

// LogRepo persists the append-only execution history.
type LogRepo interface {
	// RecordExecution inserts the log and, when disableTrigger is set,
	// flips the originating trigger to disabled in the same transaction.
	RecordExecution(ctx context.Context, l models.TriggerLog, disableTrigger bool) error
	CountForTriggerSince(ctx context.Context, triggerID int, threshold time.Time) (int, error)
	List(ctx context.Context, triggerID int, limit int) ([]models.TriggerLog, error)
	DeleteForTrigger(ctx context.Context, triggerID int) error
}

type Repository struct {
	Devices  DeviceRepo
	Triggers TriggerRepo
	Logs     LogRepo
	Auth     Authorization
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{
		Devices:  NewDeviceSQLite(db),
		Triggers: NewTriggerSQLite(db),
		Logs:     NewLogSQLite(db),
		Auth:     NewUserRepository(db),
	}
}
