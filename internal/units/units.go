// Package units provides the temperature and flow units used by readouts,
// and their conversions.
package units

import "math"

// Temperature unit constants
const (
	Celsius    = "c"
	Fahrenheit = "f"
	Kelvin     = "k"
)

// ValidUnits contains all valid temperature unit values
var ValidUnits = []string{Celsius, Fahrenheit, Kelvin}

// IsValid checks if the given unit is in the list of valid units
func IsValid(unit string) bool {
	for _, validUnit := range ValidUnits {
		if unit == validUnit {
			return true
		}
	}
	return false
}

// GetValidUnitsString returns a comma-separated string of valid units for error messages
func GetValidUnitsString() string {
	return "c, f, k"
}

// ConvertTemperature converts a temperature from degrees Celsius to the
// target units. Telemetry is recorded in Celsius.
func ConvertTemperature(celsius float64, targetUnits string) float64 {
	switch targetUnits {
	case Fahrenheit:
		return celsius*9/5 + 32
	case Kelvin:
		return celsius + 273.15
	default:
		return celsius
	}
}

// ConvertDelta converts a temperature difference. Offsets cancel, so only
// Fahrenheit scales.
func ConvertDelta(delta float64, targetUnits string) float64 {
	if targetUnits == Fahrenheit {
		return delta * 9 / 5
	}
	return delta
}

// Symbol returns the display suffix for a temperature unit.
func Symbol(unit string) string {
	switch unit {
	case Fahrenheit:
		return "°F"
	case Kelvin:
		return "K"
	default:
		return "°C"
	}
}

// LitersPerMinuteToCubicMetersPerSecond converts a volumetric flow rate.
func LitersPerMinuteToCubicMetersPerSecond(lpm float64) float64 {
	return lpm / 60000
}

// isMissing reports values that readouts show as N/A.
func isMissing(v float64) bool {
	return math.IsNaN(v) || math.IsInf(v, 0)
}
