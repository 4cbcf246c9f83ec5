package weather

const kmhToMph = 0.621371

// ConvertTemperature converts t between unit systems. Metric is Celsius
// and Imperial is Fahrenheit.
func ConvertTemperature(t float64, from, to UnitSystem) float64 {
	switch {
	case from == to:
		return t
	case from == Metric && to == Imperial:
		return t*9/5 + 32
	case from == Imperial && to == Metric:
		return (t - 32) * 5 / 9
	default:
		return t
	}
}

// ConvertWindSpeed converts a km/h value into the requested unit system.
func ConvertWindSpeed(speed float64, units UnitSystem) float64 {
	if units == Imperial {
		return speed * kmhToMph
	}
	return speed
}
