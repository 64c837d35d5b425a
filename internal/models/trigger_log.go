package models

import "time"

// TriggerLog is an immutable audit record of one execution attempt.
// TriggerID is nil for executions without an originating trigger
// (e.g. manual operator actions).
type TriggerLog struct {
	LogID       string    `json:"log_id"`
	DeviceID    int       `json:"device_id"`
	TriggerID   *int      `json:"trigger_id,omitempty"`
	Temperature float64   `json:"temperature"`
	NoOp        bool      `json:"no_op"` // true when the device already reported the target
	CreatedAt   time.Time `json:"created_at"`
}
