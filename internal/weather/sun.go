package weather

import (
	"math"
	"time"
)

// Fixed sunrise and sunset used for every location and season.
const (
	sunriseHour, sunriseMinute = 6, 23
	sunsetHour, sunsetMinute   = 19, 47
)

// SunPosition computes the sun arc for the calendar day of now, in now's
// time zone, using the fixed sunrise and sunset times.
func SunPosition(location string, now time.Time) SunSnapshot {
	y, m, d := now.Date()
	loc := now.Location()
	sunrise := time.Date(y, m, d, sunriseHour, sunriseMinute, 0, 0, loc)
	sunset := time.Date(y, m, d, sunsetHour, sunsetMinute, 0, 0, loc)
	daylight := sunset.Sub(sunrise)

	var percent int
	switch {
	case now.Before(sunrise):
		percent = 0
	case now.After(sunset):
		percent = 100
	default:
		percent = int(math.Round(float64(now.Sub(sunrise)) / float64(daylight) * 100))
	}

	return SunSnapshot{
		Location:               location,
		Sunrise:                sunrise,
		Sunset:                 sunset,
		SolarNoon:              sunrise.Add(daylight / 2),
		CurrentPositionPercent: percent,
		IsDaytime:              !now.Before(sunrise) && !now.After(sunset),
	}
}
