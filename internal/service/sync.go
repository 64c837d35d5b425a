package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"thermostat_triggers/internal/fritzbox"
	"thermostat_triggers/internal/logger"
	"thermostat_triggers/internal/models"
	"thermostat_triggers/internal/notify"
	"thermostat_triggers/internal/repository"
)

const defaultIntervalMinutes = 1

// SyncService is the periodic engine: it matches due triggers, reconciles
// devices against the hub and executes whatever is pending.
type SyncService struct {
	devices  repository.DeviceRepo
	triggers repository.TriggerRepo
	logs     repository.LogRepo
	hub      fritzbox.Client
	notifier notify.Notifier
	log      *logger.Logger

	// runMu serializes engine runs. Cron ticks, POST /sync/run and manual
	// executions can all arrive at once; two cycles in the same window would
	// each see a zero dedup count and double-fire recurring triggers.
	runMu sync.Mutex

	offTemperature  float64
	intervalMinutes int
	syncOnly        bool
	verbose         bool
}

func NewSyncService(
	devices repository.DeviceRepo,
	triggers repository.TriggerRepo,
	logs repository.LogRepo,
	hub fritzbox.Client,
	notifier notify.Notifier,
	log *logger.Logger,
	cfg Config,
) *SyncService {
	interval := cfg.IntervalMinutes
	if interval <= 0 {
		interval = defaultIntervalMinutes
	}
	return &SyncService{
		devices:         devices,
		triggers:        triggers,
		logs:            logs,
		hub:             hub,
		notifier:        notifier,
		log:             log,
		offTemperature:  cfg.OffTemperature,
		intervalMinutes: interval,
		syncOnly:        cfg.SyncOnly,
		verbose:         cfg.Verbose,
	}
}

var _ Sync = (*SyncService)(nil)

// RunCycle performs one full evaluation at the given reference time.
//
// The cycle aborts entirely on hub connection errors (retried naturally on
// the next invocation); per-trigger execution errors are isolated so one
// misbehaving device cannot block its siblings.
func (s *SyncService) RunCycle(ctx context.Context, now time.Time) error {
	if !s.runMu.TryLock() {
		// A cycle is already in flight; this window is its problem.
		s.debugw("sync_skipped", "reason", "previous cycle still running")
		return nil
	}
	defer s.runMu.Unlock()

	recently := now.Add(-time.Duration(s.intervalMinutes) * time.Minute)

	due, err := s.matchDue(ctx, recently, now)
	if err != nil {
		return err
	}

	// Battery saver: with nothing due and the device list already known
	// locally there is no reason to wake the hub radio at all.
	if !s.syncOnly && len(due) == 0 {
		count, err := s.devices.Count(ctx)
		if err != nil {
			return err
		}
		if count > 0 {
			s.debugw("sync_skipped", "reason", "nothing due")
			return nil
		}
	}

	byDeviceID, err := s.reconcileDevices(ctx)
	if err != nil {
		return err
	}
	if s.syncOnly {
		return nil
	}

	var errs []error
	for _, trigger := range due {
		dev, ok := byDeviceID[trigger.DeviceID]
		if !ok {
			// Trigger for a device the hub no longer reports.
			s.warnw("trigger_device_missing", "trigger_id", trigger.ID, "device_id", trigger.DeviceID)
			continue
		}

		if trigger.Recurring() {
			fired, err := s.alreadyExecutedWithin(ctx, trigger.ID, now)
			if err != nil {
				errs = append(errs, err)
				continue
			}
			if fired {
				s.debugw("trigger_deduplicated", "trigger_id", trigger.ID)
				continue
			}
		}

		noOp := TemperaturesEqual(s.offTemperature, dev.hub.TargetTemperature, trigger.Temperature)
		if err := s.Execute(ctx, &trigger, dev.local, trigger.Temperature, noOp, true); err != nil {
			errs = append(errs, fmt.Errorf("trigger id=%d: %w", trigger.ID, err))
		}
	}
	return errors.Join(errs...)
}

// ExecuteNow runs a single trigger immediately, bypassing the due-time
// check. Used by the operator API. Blocks until a running cycle finishes
// rather than skipping, since the operator asked for exactly this run.
func (s *SyncService) ExecuteNow(ctx context.Context, triggerID int) error {
	s.runMu.Lock()
	defer s.runMu.Unlock()

	trigger, err := s.triggers.GetByID(ctx, triggerID)
	if err != nil {
		return err
	}
	device, err := s.devices.GetByID(ctx, trigger.DeviceID)
	if err != nil {
		return err
	}

	// Fetch live state so an already-matching device still becomes a no-op.
	noOp := false
	if err := s.hub.Login(ctx); err != nil {
		return err
	}
	hubDevices, err := s.hub.GetDevices(ctx)
	if err != nil {
		return err
	}
	for _, hd := range hubDevices {
		if hd.AIN == device.AIN && hd.HasThermostat {
			noOp = TemperaturesEqual(s.offTemperature, hd.TargetTemperature, trigger.Temperature)
			break
		}
	}

	return s.Execute(ctx, &trigger, device, trigger.Temperature, noOp, true)
}

// Execute applies one temperature change: audit log (plus one-off disable,
// atomically), optional hub write, optional notification.
func (s *SyncService) Execute(ctx context.Context, trigger *models.Trigger, device models.Device, newTemperature float64, noOp bool, notify bool) error {
	entry := models.TriggerLog{
		DeviceID:    device.ID,
		Temperature: newTemperature,
		NoOp:        noOp,
	}
	disable := false
	if trigger != nil {
		id := trigger.ID
		entry.TriggerID = &id
		disable = !trigger.Recurring()
	}
	if err := s.logs.RecordExecution(ctx, entry, disable); err != nil {
		return err
	}

	if noOp {
		s.debugw("execution_noop", "device", device.Label(), "temperature", newTemperature)
		return nil
	}

	if err := s.hub.SetTargetTemperature(ctx, device.AIN, newTemperature); err != nil {
		// The log and enabled flip already happened: at most one attempt
		// per due window, matching the recorded intent.
		return err
	}

	if notify {
		desc := DescribeTemperature(s.offTemperature, newTemperature)
		message := fmt.Sprintf("%s is now set to %s", device.Label(), desc)
		title := fmt.Sprintf("%s -> %s", device.Label(), desc)
		if err := s.notifier.Send(message, title); err != nil {
			s.warnw("notification_failed", "err", err, "device", device.Label())
		}
	}
	return nil
}

// matchDue returns the union of due one-off and due recurring triggers for
// the window (recently, now].
func (s *SyncService) matchDue(ctx context.Context, recently, now time.Time) ([]models.Trigger, error) {
	due, err := s.triggers.ListDueOneTime(ctx, recently, now)
	if err != nil {
		return nil, err
	}

	recurring, err := s.triggers.ListEnabledRecurring(ctx)
	if err != nil {
		return nil, err
	}
	for _, t := range recurring {
		if t.RecursOn(now.Weekday()) && clockWithinWindow(t.Time.In(now.Location()), recently, now) {
			due = append(due, t)
		}
	}
	return due, nil
}

// clockWithinWindow checks whether t's time-of-day falls inside the
// [start, end] clock range, comparing whole minutes. A window that crosses
// midnight (start later than end, e.g. 23:30..00:29) wraps around.
func clockWithinWindow(t, start, end time.Time) bool {
	m := minuteOfDay(t)
	lo := minuteOfDay(start.In(end.Location()))
	hi := minuteOfDay(end)
	if lo <= hi {
		return m >= lo && m <= hi
	}
	return m >= lo || m <= hi
}

func minuteOfDay(t time.Time) int {
	return t.Hour()*60 + t.Minute()
}

// alreadyExecutedWithin reports whether the trigger fired inside the current
// polling interval. Deleting its logs intentionally re-arms it.
func (s *SyncService) alreadyExecutedWithin(ctx context.Context, triggerID int, now time.Time) (bool, error) {
	threshold := now.Add(-time.Duration(s.intervalMinutes) * time.Minute)
	n, err := s.logs.CountForTriggerSince(ctx, triggerID, threshold)
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// reconciledDevice pairs the persisted record with the hub's live view.
type reconciledDevice struct {
	local models.Device
	hub   fritzbox.Device
}

// reconcileDevices logs into the hub, lists thermostat-capable devices and
// keeps the local records current (get-or-create by AIN, name refresh).
func (s *SyncService) reconcileDevices(ctx context.Context) (map[int]reconciledDevice, error) {
	if err := s.hub.Login(ctx); err != nil {
		return nil, fmt.Errorf("hub login: %w", err)
	}
	hubDevices, err := s.hub.GetDevices(ctx)
	if err != nil {
		return nil, fmt.Errorf("hub device list: %w", err)
	}

	out := make(map[int]reconciledDevice, len(hubDevices))
	for _, hd := range hubDevices {
		if !hd.HasThermostat {
			continue
		}

		local, err := s.devices.GetByAIN(ctx, hd.AIN)
		if err != nil {
			return nil, err
		}
		if local == nil {
			created, err := s.devices.Create(ctx, models.Device{AIN: hd.AIN, Name: hd.Name})
			if err != nil {
				return nil, err
			}
			local = &created
			s.debugw("device_created", "ain", hd.AIN, "name", hd.Name)
		} else if local.Name != hd.Name {
			// Name changed in the FRITZ!Box UI; follow it.
			if err := s.devices.UpdateName(ctx, local.ID, hd.Name); err != nil {
				return nil, err
			}
			local.Name = hd.Name
		}

		out[local.ID] = reconciledDevice{local: *local, hub: hd}
	}
	return out, nil
}

func (s *SyncService) debugw(msg string, kv ...interface{}) {
	if s.verbose && s.log != nil {
		s.log.Infow(msg, kv...)
	}
}

func (s *SyncService) warnw(msg string, kv ...interface{}) {
	if s.log != nil {
		s.log.Warnw(msg, kv...)
	}
}
