package service

import (
	"context"

	"thermostat_triggers/internal/models"
	"thermostat_triggers/internal/repository"
)

const maxLogListLimit = 500

// LogService reads and prunes the execution history. Logs are created only
// by the sync engine; deleting a trigger's logs is the documented way to
// force it to fire again inside the dedup window.
type LogService struct {
	logs repository.LogRepo
}

func NewLogService(logs repository.LogRepo) *LogService {
	return &LogService{logs: logs}
}

var _ Logs = (*LogService)(nil)

func (s *LogService) List(ctx context.Context, triggerID, limit int) ([]models.TriggerLog, error) {
	if limit < 0 || limit > maxLogListLimit {
		limit = maxLogListLimit
	}
	return s.logs.List(ctx, triggerID, limit)
}

func (s *LogService) DeleteForTrigger(ctx context.Context, triggerID int) error {
	return s.logs.DeleteForTrigger(ctx, triggerID)
}
