package units

import "fmt"

// NotAvailable is shown in place of a missing reading.
const NotAvailable = "N/A"

// FormatTemperature renders a Celsius reading in unit with two decimals.
func FormatTemperature(celsius float64, unit string) string {
	if isMissing(celsius) {
		return NotAvailable
	}
	return fmt.Sprintf("%.2f%s", ConvertTemperature(celsius, unit), Symbol(unit))
}

// FormatCelsius renders a reading like "23.40°C".
func FormatCelsius(celsius float64) string {
	return FormatTemperature(celsius, Celsius)
}

// FormatDelta renders a temperature difference like "1.25°C".
func FormatDelta(delta float64, unit string) string {
	if isMissing(delta) {
		return NotAvailable
	}
	return fmt.Sprintf("%.2f%s", ConvertDelta(delta, unit), Symbol(unit))
}

// FormatFlow renders a coolant flow like "2.00 L/min".
func FormatFlow(lpm float64) string {
	if isMissing(lpm) {
		return NotAvailable
	}
	return fmt.Sprintf("%.2f L/min", lpm)
}

// FormatWatts renders a heat flux like "647.54 W".
func FormatWatts(w float64) string {
	if isMissing(w) {
		return NotAvailable
	}
	return fmt.Sprintf("%.2f W", w)
}
