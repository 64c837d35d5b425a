package service

import (
	"context"
	"time"

	"thermostat_triggers/internal/fritzbox"
	"thermostat_triggers/internal/logger"
	"thermostat_triggers/internal/models"
	"thermostat_triggers/internal/notify"
	"thermostat_triggers/internal/repository"
)

type Authorization interface {
	SignUp(username, password string) (int, error)
	GenerateToken(username, password string) (string, error)
	ParseToken(accessToken string) (int, error)
}

// Sync runs the periodic evaluation cycle and manual executions.
type Sync interface {
	RunCycle(ctx context.Context, now time.Time) error
	ExecuteNow(ctx context.Context, triggerID int) error
}

// Triggers exposes trigger management for the API layer.
type Triggers interface {
	Create(ctx context.Context, p TriggerParams) (models.Trigger, error)
	Update(ctx context.Context, id int, p TriggerParams) (models.Trigger, error)
	Get(ctx context.Context, id int) (models.Trigger, error)
	List(ctx context.Context) ([]models.Trigger, error)
	Toggle(ctx context.Context, id int, now time.Time) (models.Trigger, string, error)
	Delete(ctx context.Context, id int) error
}

// Devices exposes read/delete access to synced thermostats.
type Devices interface {
	Get(ctx context.Context, id int) (models.Device, error)
	List(ctx context.Context) ([]models.Device, error)
	Delete(ctx context.Context, id int) error
}

// Logs exposes the execution history.
type Logs interface {
	List(ctx context.Context, triggerID, limit int) ([]models.TriggerLog, error)
	DeleteForTrigger(ctx context.Context, triggerID int) error
}

// Config carries the environment-sourced knobs the services need.
type Config struct {
	OffTemperature      float64 // hub sentinel for "off", normally 126.5
	FallbackTemperature float64 // default target when a trigger omits one
	IntervalMinutes     int     // polling interval, default 1
	SyncOnly            bool    // reconcile devices but never execute
	Verbose             bool
	SigningKey          string // JWT signing secret for the API
}

type Service struct {
	Sync
	Triggers
	Devices
	Logs
	Authorization
}

func NewService(repos *repository.Repository, hub fritzbox.Client, notifier notify.Notifier, log *logger.Logger, cfg Config) *Service {
	return &Service{
		Sync:          NewSyncService(repos.Devices, repos.Triggers, repos.Logs, hub, notifier, log, cfg),
		Triggers:      NewTriggerService(repos.Triggers, repos.Devices, cfg),
		Devices:       NewDeviceService(repos.Devices),
		Logs:          NewLogService(repos.Logs),
		Authorization: NewAuthService(repos.Auth, cfg.SigningKey),
	}
}
