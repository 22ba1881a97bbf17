// Package weather fetches current observations and short-range forecasts
// from Open-Meteo and feeds the oracle panel. Coordinates come from a
// compiled-in gazetteer of the regions the risk catalog covers.
package weather

// Coordinates is a latitude/longitude pair.
type Coordinates struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Conditions is one observed weather snapshot plus a short forecast.
type Conditions struct {
	Location    string   `json:"location"`
	Temperature float64  `json:"temperature"` // °C
	Humidity    float64  `json:"humidity"`    // %
	RainfallMM  float64  `json:"rainfallMm"`
	WindSpeed   float64  `json:"windSpeed"` // km/h
	Conditions  string   `json:"conditions"`
	Forecast    []string `json:"forecast"` // one line per day
}

// ShouldTriggerPayout reports whether a rainfall reading meets or exceeds
// the policy's payout threshold.
func ShouldTriggerPayout(rainfallMM, threshold float64) bool {
	return rainfallMM >= threshold
}
