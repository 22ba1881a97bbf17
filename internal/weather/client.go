package weather

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/terrashield/terrashield/internal/metrics"
	"github.com/terrashield/terrashield/internal/retry"
)

// Client fetches observations from the Open-Meteo forecast API (free tier,
// no key required).
type Client struct {
	baseURL string
	client  *http.Client
}

// NewClient creates a weather client against the given base URL
// (e.g. "https://api.open-meteo.com/v1").
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// wmoConditions maps WMO weather codes to display text.
var wmoConditions = map[int]string{
	0:  "Clear sky",
	1:  "Mainly clear",
	2:  "Partly cloudy",
	3:  "Overcast",
	45: "Foggy",
	48: "Depositing rime fog",
	51: "Light drizzle",
	53: "Moderate drizzle",
	55: "Dense drizzle",
	61: "Slight rain",
	63: "Moderate rain",
	65: "Heavy rain",
	71: "Slight snow",
	73: "Moderate snow",
	75: "Heavy snow",
	80: "Slight rain showers",
	81: "Moderate rain showers",
	82: "Violent rain showers",
	95: "Thunderstorm",
	96: "Thunderstorm with hail",
	99: "Severe thunderstorm",
}

// forecastResponse mirrors the slice of the Open-Meteo payload we consume.
type forecastResponse struct {
	Current struct {
		Temperature float64 `json:"temperature_2m"`
		Humidity    float64 `json:"relative_humidity_2m"`
		Rainfall    float64 `json:"precipitation"`
		WindSpeed   float64 `json:"wind_speed_10m"`
		WeatherCode int     `json:"weather_code"`
	} `json:"current"`
	Daily struct {
		TempMax    []float64 `json:"temperature_2m_max"`
		PrecipProb []float64 `json:"precipitation_probability_max"`
	} `json:"daily"`
}

// Fetch returns current conditions and a 7-day forecast for a free-text
// location. Coordinates come from the gazetteer; unmatched locations default
// to Delhi rather than failing.
func (c *Client) Fetch(ctx context.Context, location string) (*Conditions, error) {
	coords := LookupCoordinates(location)

	q := url.Values{}
	q.Set("latitude", fmt.Sprintf("%.4f", coords.Lat))
	q.Set("longitude", fmt.Sprintf("%.4f", coords.Lon))
	q.Set("current", "temperature_2m,relative_humidity_2m,precipitation,wind_speed_10m,weather_code")
	q.Set("daily", "temperature_2m_max,temperature_2m_min,precipitation_sum,precipitation_probability_max")
	q.Set("timezone", "Asia/Kolkata")
	q.Set("forecast_days", "7")

	endpoint := c.baseURL + "/forecast?" + q.Encode()

	// Open-Meteo hiccups are common enough that one transient failure should
	// not surface as a failed quote. Client errors are not retried.
	var payload forecastResponse
	err := retry.Do(ctx, 3, 300*time.Millisecond, func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return retry.Permanent(fmt.Errorf("failed to create request: %w", err))
		}

		start := time.Now()
		resp, err := c.client.Do(req)
		metrics.ObserveUpstream("open-meteo", start)
		if err != nil {
			return fmt.Errorf("failed to fetch weather: %w", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			err := fmt.Errorf("weather API returned status %d", resp.StatusCode)
			if resp.StatusCode >= 400 && resp.StatusCode < 500 {
				return retry.Permanent(err)
			}
			return err
		}

		if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
			return fmt.Errorf("failed to decode weather response: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	conditions := wmoConditions[payload.Current.WeatherCode]
	if conditions == "" {
		conditions = "Unknown"
	}

	forecast := make([]string, 0, len(payload.Daily.PrecipProb))
	for i, prob := range payload.Daily.PrecipProb {
		high := 0.0
		if i < len(payload.Daily.TempMax) {
			high = payload.Daily.TempMax[i]
		}
		forecast = append(forecast, fmt.Sprintf("Day %d: %.0f%% rain chance, High: %.1f°C", i+1, prob, high))
	}

	return &Conditions{
		Location:    location,
		Temperature: payload.Current.Temperature,
		Humidity:    payload.Current.Humidity,
		RainfallMM:  payload.Current.Rainfall,
		WindSpeed:   payload.Current.WindSpeed,
		Conditions:  conditions,
		Forecast:    forecast,
	}, nil
}
