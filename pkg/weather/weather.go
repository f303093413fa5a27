// Package weather fetches daily forecasts from Open-Meteo for the first days of an event.
package weather

import (
	"math"
	"time"
)

// Day is the forecast of a single day in Fahrenheit
type Day struct {
	Date          string `json:"date"`
	DayName       string `json:"dayName"`
	HighF         int    `json:"highF"`
	LowF          int    `json:"lowF"`
	WeatherCode   int    `json:"weatherCode"`
	WeatherLabel  string `json:"weatherLabel"`
	WeatherIcon   string `json:"weatherIcon"`
	PrecipProbMax *int   `json:"precipProbMax"`
	FeelsLikeF    *int   `json:"feelsLikeF"`
}

var wmoLabels = map[int]string{
	0:  "Clear",
	1:  "Mainly clear",
	2:  "Partly cloudy",
	3:  "Overcast",
	45: "Foggy",
	48: "Foggy",
	51: "Light drizzle",
	53: "Drizzle",
	55: "Dense drizzle",
	56: "Light freezing drizzle",
	57: "Freezing drizzle",
	61: "Slight rain",
	63: "Moderate rain",
	65: "Heavy rain",
	66: "Light freezing rain",
	67: "Freezing rain",
	71: "Slight snow",
	73: "Moderate snow",
	75: "Heavy snow",
	77: "Snow grains",
	80: "Slight rain showers",
	81: "Rain showers",
	82: "Heavy rain showers",
	85: "Slight snow showers",
	86: "Heavy snow showers",
	95: "Thunderstorm",
	96: "Thunderstorm + hail",
	99: "Thunderstorm + heavy hail",
}

var wmoIcons = map[int]string{
	0:  "☀️",
	1:  "🌤️",
	2:  "⛅",
	3:  "☁️",
	45: "🌫️",
	48: "🌫️",
	71: "❄️",
	73: "❄️",
	75: "❄️",
	77: "❄️",
	80: "🌦️",
	85: "🌨️",
	86: "🌨️",
	95: "⛈️",
	96: "⛈️",
	99: "⛈️",
}

// Label describes a WMO weather code
func Label(code int) string {
	if label, ok := wmoLabels[code]; ok {
		return label
	}
	return "—"
}

// Icon returns an emoji for a WMO weather code
func Icon(code int) string {
	if icon, ok := wmoIcons[code]; ok {
		return icon
	}
	if _, ok := wmoLabels[code]; ok {
		// drizzle, rain and rain showers
		return "🌧️"
	}
	return "🌡️"
}

func fahrenheit(celsius float64) int {
	return int(math.Round(celsius*9/5 + 32))
}

// ForecastRange returns the first three days of an event, start through start+2 capped at end.
// Dates are YYYY-MM-DD, longer values are truncated.
func ForecastRange(startDate, endDate string) (string, string) {
	start := truncateDate(startDate)
	end := truncateDate(endDate)

	s, err := time.Parse(time.DateOnly, start)
	if err != nil {
		return start, end
	}
	last := s.AddDate(0, 0, 2)
	if e, err := time.Parse(time.DateOnly, end); err == nil && last.After(e) {
		last = e
	}
	return start, last.Format(time.DateOnly)
}

func truncateDate(date string) string {
	if len(date) > len(time.DateOnly) {
		return date[:len(time.DateOnly)]
	}
	return date
}
