package models

import "time"

// Device is one physical (or group) thermostat known from the FRITZ!Box.
type Device struct {
	ID        int       `json:"id"`
	AIN       string    `json:"ain"`  // actor identification number, immutable
	Name      string    `json:"name"` // display name, follows the hub's label
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Label returns the display name, falling back to the AIN.
func (d Device) Label() string {
	if d.Name != "" {
		return d.Name
	}
	return d.AIN
}
