package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"thermostat_triggers/internal/models"
	"thermostat_triggers/internal/repository"
)

// TriggerParams is the data-entry surface for creating/updating triggers.
type TriggerParams struct {
	DeviceID    int
	Name        string
	Time        time.Time
	Temperature *float64 // nil falls back to the configured default
	Enabled     *bool    // nil means enabled on create

	RecurMonday    bool
	RecurTuesday   bool
	RecurWednesday bool
	RecurThursday  bool
	RecurFriday    bool
	RecurSaturday  bool
	RecurSunday    bool
}

var (
	ErrTemperatureOutOfRange = fmt.Errorf("temperature must be within [%g, %g]",
		models.MinTemperatureC, models.MaxTemperatureC)
	ErrTimeRequired = errors.New("trigger time is required")
)

// TriggerService owns trigger CRUD and the enable/disable toggle rules.
// Due-time evaluation lives in SyncService.
type TriggerService struct {
	triggers repository.TriggerRepo
	devices  repository.DeviceRepo

	fallbackTemperature float64
}

func NewTriggerService(triggers repository.TriggerRepo, devices repository.DeviceRepo, cfg Config) *TriggerService {
	return &TriggerService{
		triggers:            triggers,
		devices:             devices,
		fallbackTemperature: cfg.FallbackTemperature,
	}
}

var _ Triggers = (*TriggerService)(nil)

func (s *TriggerService) buildTrigger(ctx context.Context, p TriggerParams) (models.Trigger, error) {
	if p.Time.IsZero() {
		return models.Trigger{}, ErrTimeRequired
	}
	// The device must exist; triggers never create devices.
	if _, err := s.devices.GetByID(ctx, p.DeviceID); err != nil {
		return models.Trigger{}, err
	}

	temperature := s.fallbackTemperature
	if p.Temperature != nil {
		temperature = *p.Temperature
	}
	if temperature < models.MinTemperatureC || temperature > models.MaxTemperatureC {
		return models.Trigger{}, ErrTemperatureOutOfRange
	}

	enabled := true
	if p.Enabled != nil {
		enabled = *p.Enabled
	}

	return models.Trigger{
		DeviceID:       p.DeviceID,
		Name:           p.Name,
		Time:           p.Time,
		Temperature:    temperature,
		Enabled:        enabled,
		RecurMonday:    p.RecurMonday,
		RecurTuesday:   p.RecurTuesday,
		RecurWednesday: p.RecurWednesday,
		RecurThursday:  p.RecurThursday,
		RecurFriday:    p.RecurFriday,
		RecurSaturday:  p.RecurSaturday,
		RecurSunday:    p.RecurSunday,
	}, nil
}

func (s *TriggerService) Create(ctx context.Context, p TriggerParams) (models.Trigger, error) {
	t, err := s.buildTrigger(ctx, p)
	if err != nil {
		return models.Trigger{}, err
	}
	return s.triggers.Create(ctx, t)
}

func (s *TriggerService) Update(ctx context.Context, id int, p TriggerParams) (models.Trigger, error) {
	if _, err := s.triggers.GetByID(ctx, id); err != nil {
		return models.Trigger{}, err
	}
	t, err := s.buildTrigger(ctx, p)
	if err != nil {
		return models.Trigger{}, err
	}
	t.ID = id
	if err := s.triggers.Update(ctx, t); err != nil {
		return models.Trigger{}, err
	}
	return s.triggers.GetByID(ctx, id)
}

func (s *TriggerService) Get(ctx context.Context, id int) (models.Trigger, error) {
	return s.triggers.GetByID(ctx, id)
}

func (s *TriggerService) List(ctx context.Context) ([]models.Trigger, error) {
	return s.triggers.List(ctx)
}

// Toggle flips the enabled flag. Re-enabling a one-off trigger whose time
// already passed makes no sense as-is, so the time rolls forward: to today's
// occurrence of the same clock time if that is still ahead of now (and ahead
// of the stored time), otherwise to tomorrow's. The returned message tells
// the operator which of the two happened.
func (s *TriggerService) Toggle(ctx context.Context, id int, now time.Time) (models.Trigger, string, error) {
	t, err := s.triggers.GetByID(ctx, id)
	if err != nil {
		return models.Trigger{}, "", err
	}

	t.Enabled = !t.Enabled

	message := ""
	if t.Enabled && !t.Recurring() && t.Outdated(now) {
		old := t.Time.In(now.Location())
		todaySameClock := time.Date(now.Year(), now.Month(), now.Day(),
			old.Hour(), old.Minute(), old.Second(), 0, now.Location())
		tomorrowSameClock := todaySameClock.AddDate(0, 0, 1)

		if now.Before(todaySameClock) && todaySameClock.After(old) {
			t.Time = todaySameClock
			message = "Time has been set to today"
		} else {
			t.Time = tomorrowSameClock
			message = "Time has been set to tomorrow"
		}
	}

	if err := s.triggers.Update(ctx, t); err != nil {
		return models.Trigger{}, "", err
	}
	return t, message, nil
}

func (s *TriggerService) Delete(ctx context.Context, id int) error {
	return s.triggers.Delete(ctx, id)
}
