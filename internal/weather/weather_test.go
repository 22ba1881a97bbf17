package weather

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestLookupCoordinates(t *testing.T) {
	tests := []struct {
		input string
		want  Coordinates
	}{
		{"jaisalmer", Coordinates{26.9157, 70.9083}},
		{"Jaisalmer, Rajasthan", Coordinates{26.9157, 70.9083}},
		{"farm in rural punjab", Coordinates{31.1471, 75.3412}},
		{"Mumbai", Coordinates{19.0760, 72.8777}},
		{"Nowhereville", Coordinates{28.6139, 77.2090}}, // Delhi default
		{"", Coordinates{28.6139, 77.2090}},
	}

	for _, tc := range tests {
		got := LookupCoordinates(tc.input)
		if got != tc.want {
			t.Errorf("LookupCoordinates(%q) = %v, want %v", tc.input, got, tc.want)
		}
	}
}

func TestLookupCoordinates_GazetteerOrder(t *testing.T) {
	// Input naming both a state and a city resolves to the state, declared first.
	got := LookupCoordinates("jaisalmer area of rajasthan")
	if got != (Coordinates{26.9124, 75.7873}) {
		t.Errorf("Expected Rajasthan coordinates, got %v", got)
	}
}

func TestClient_Fetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/forecast" {
			t.Errorf("Expected /forecast path, got %s", r.URL.Path)
		}
		if lat := r.URL.Query().Get("latitude"); lat != "26.9157" {
			t.Errorf("Expected jaisalmer latitude, got %s", lat)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"current": {"temperature_2m": 38.5, "relative_humidity_2m": 22, "precipitation": 0.4, "wind_speed_10m": 14, "weather_code": 2},
			"daily": {"temperature_2m_max": [40, 41], "precipitation_probability_max": [10, 35]}
		}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL)
	conditions, err := client.Fetch(context.Background(), "jaisalmer")
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}

	if conditions.Temperature != 38.5 {
		t.Errorf("Expected temperature 38.5, got %v", conditions.Temperature)
	}
	if conditions.Conditions != "Partly cloudy" {
		t.Errorf("Expected Partly cloudy, got %s", conditions.Conditions)
	}
	if len(conditions.Forecast) != 2 {
		t.Fatalf("Expected 2 forecast days, got %d", len(conditions.Forecast))
	}
	if conditions.Forecast[1] != "Day 2: 35% rain chance, High: 41.0°C" {
		t.Errorf("Unexpected forecast line: %s", conditions.Forecast[1])
	}
}

func TestClient_Fetch_UpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	client := NewClient(srv.URL)
	if _, err := client.Fetch(context.Background(), "punjab"); err == nil {
		t.Fatal("Expected error on upstream 500")
	}
}

func TestClient_Fetch_UnknownWeatherCode(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"current": {"weather_code": 42}, "daily": {"temperature_2m_max": [], "precipitation_probability_max": []}}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL)
	conditions, err := client.Fetch(context.Background(), "punjab")
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}
	if conditions.Conditions != "Unknown" {
		t.Errorf("Expected Unknown conditions, got %s", conditions.Conditions)
	}
}

func TestShouldTriggerPayout(t *testing.T) {
	if !ShouldTriggerPayout(100, 100) {
		t.Error("Rainfall at threshold should trigger payout")
	}
	if !ShouldTriggerPayout(120, 100) {
		t.Error("Rainfall above threshold should trigger payout")
	}
	if ShouldTriggerPayout(99.9, 100) {
		t.Error("Rainfall below threshold should not trigger payout")
	}
}

func TestHistory_RecordAndList(t *testing.T) {
	h := NewHistory()

	h.Record(Observation{Location: "Jaisalmer, Rajasthan", RainfallMM: 2})
	h.Record(Observation{Location: "jaisalmer rajasthan", RainfallMM: 5})

	obs := h.List("Jaisalmer, Rajasthan")
	if len(obs) != 2 {
		t.Fatalf("Expected 2 observations, got %d", len(obs))
	}
	// Newest first
	if obs[0].RainfallMM != 5 {
		t.Errorf("Expected newest observation first, got %v", obs[0].RainfallMM)
	}
	if obs[0].ObservedAt.IsZero() {
		t.Error("Expected ObservedAt to be stamped")
	}
}

func TestHistory_Cap(t *testing.T) {
	h := NewHistory()
	for i := 0; i < maxObservations+10; i++ {
		h.Record(Observation{Location: "punjab", RainfallMM: float64(i)})
	}

	obs := h.List("punjab")
	if len(obs) != maxObservations {
		t.Fatalf("Expected %d observations, got %d", maxObservations, len(obs))
	}
	if obs[0].RainfallMM != float64(maxObservations+9) {
		t.Errorf("Expected newest observation retained, got %v", obs[0].RainfallMM)
	}
}

func TestHistory_LatestRainfall(t *testing.T) {
	h := NewHistory()

	if _, ok := h.LatestRainfall("punjab"); ok {
		t.Error("Expected no rainfall for empty history")
	}

	h.Record(Observation{Location: "Jaisalmer, Rajasthan", RainfallMM: 12})

	rainfall, ok := h.LatestRainfall("jaisalmer")
	if !ok {
		t.Fatal("Expected partial-input lookup to find observation")
	}
	if rainfall != 12 {
		t.Errorf("Expected rainfall 12, got %v", rainfall)
	}
}

func TestClient_Fetch_RetriesTransientErrors(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte(`{"current": {"temperature_2m": 30, "weather_code": 0}, "daily": {"temperature_2m_max": [], "precipitation_probability_max": []}}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL)
	conditions, err := client.Fetch(context.Background(), "punjab")
	if err != nil {
		t.Fatalf("Fetch failed after retries: %v", err)
	}
	if calls != 3 {
		t.Errorf("Expected 3 attempts, got %d", calls)
	}
	if conditions.Temperature != 30 {
		t.Errorf("Expected temperature 30, got %v", conditions.Temperature)
	}
}

func TestClient_Fetch_NoRetryOnClientError(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer srv.Close()

	client := NewClient(srv.URL)
	if _, err := client.Fetch(context.Background(), "punjab"); err == nil {
		t.Fatal("Expected error on upstream 400")
	}
	if calls != 1 {
		t.Errorf("Expected a single attempt for a client error, got %d", calls)
	}
}
