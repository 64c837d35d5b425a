package service

import (
	"context"

	"thermostat_triggers/internal/models"
	"thermostat_triggers/internal/repository"
)

// DeviceService exposes the synced device records. Creation and name
// updates happen exclusively in the sync engine; the API only reads and,
// for admin cleanup, deletes.
type DeviceService struct {
	devices repository.DeviceRepo
}

func NewDeviceService(devices repository.DeviceRepo) *DeviceService {
	return &DeviceService{devices: devices}
}

var _ Devices = (*DeviceService)(nil)

func (s *DeviceService) Get(ctx context.Context, id int) (models.Device, error) {
	return s.devices.GetByID(ctx, id)
}

func (s *DeviceService) List(ctx context.Context) ([]models.Device, error) {
	return s.devices.List(ctx)
}

// Delete removes a device and, via cascade, its triggers and logs.
func (s *DeviceService) Delete(ctx context.Context, id int) error {
	return s.devices.Delete(ctx, id)
}
