package metrics

// Unit conversions from the vendor's reporting units to Prometheus base
// units. All are exact in float64 for the magnitudes an array can report.

func kibToBytes(v float64) float64 {
	return v * 1024
}

func millisToSeconds(v float64) float64 {
	return v / 1000
}

func millivoltsToVolts(v float64) float64 {
	return v / 1000
}

func milliwattHoursToWattHours(v float64) float64 {
	return v / 1000
}

func bitsToBytes(v float64) float64 {
	return v / 8
}
