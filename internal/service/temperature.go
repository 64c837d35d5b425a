package service

import "fmt"

// TemperaturesEqual compares two target temperatures, treating the hub's
// "off" sentinel and 0 as the same value. The box reports "off" as a high
// out-of-range number but expects 0 when switching off; without the
// normalization every off-state comparison would mismatch and waste a
// device write.
func TemperaturesEqual(off, a, b float64) bool {
	if a == off {
		a = 0
	}
	if b == off {
		b = 0
	}
	return a == b
}

// DescribeTemperature renders a temperature for humans; the off sentinel
// and 0 both read as "off".
func DescribeTemperature(off, t float64) string {
	if t == off || t == 0 {
		return "off"
	}
	return fmt.Sprintf("%g °C", t)
}
