// Package fritzbox talks to a FRITZ!Box over its AHA-HTTP interface:
// challenge-response login, device listing and HKR target temperature.
package fritzbox

import "context"

// Device is one entry of the hub's device list.
type Device struct {
	AIN               string  // actor identification number
	Name              string  // display name from the FRITZ!Box UI
	TargetTemperature float64 // °C; 126.5 when the HKR reports "off"
	HasThermostat     bool
}

// Client is the capability surface the sync engine needs from the hub.
type Client interface {
	Login(ctx context.Context) error
	GetDevices(ctx context.Context) ([]Device, error)
	SetTargetTemperature(ctx context.Context, ain string, temperature float64) error
}
