package weather

import (
	"strings"
	"sync"
	"time"
)

// maxObservations caps the retained history per location.
const maxObservations = 50

// Observation is one recorded weather reading.
type Observation struct {
	Location    string    `json:"location"`
	Temperature float64   `json:"temperature"`
	RainfallMM  float64   `json:"rainfallMm"`
	Conditions  string    `json:"conditions"`
	ObservedAt  time.Time `json:"observedAt"`
}

// History keeps recent observations per location in memory, newest first.
// Readings feed the dashboard's oracle panel and payout-trigger checks.
type History struct {
	mu         sync.RWMutex
	byLocation map[string][]Observation
}

// NewHistory creates an empty observation history.
func NewHistory() *History {
	return &History{byLocation: make(map[string][]Observation)}
}

// Record stores one observation, evicting the oldest past the cap.
func (h *History) Record(obs Observation) {
	key := normalizePlace(obs.Location)
	if obs.ObservedAt.IsZero() {
		obs.ObservedAt = time.Now().UTC()
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	entries := append([]Observation{obs}, h.byLocation[key]...)
	if len(entries) > maxObservations {
		entries = entries[:maxObservations]
	}
	h.byLocation[key] = entries
}

// List returns the stored observations for a location, newest first.
func (h *History) List(location string) []Observation {
	key := normalizePlace(location)

	h.mu.RLock()
	defer h.mu.RUnlock()

	entries := h.byLocation[key]
	out := make([]Observation, len(entries))
	copy(out, entries)
	return out
}

// Locations returns every location with recorded observations.
func (h *History) Locations() []string {
	h.mu.RLock()
	defer h.mu.RUnlock()

	names := make([]string, 0, len(h.byLocation))
	for name := range h.byLocation {
		names = append(names, name)
	}
	return names
}

// LatestRainfall returns the most recent rainfall reading for a location,
// or false when none is recorded. The lookup tolerates display-name input.
func (h *History) LatestRainfall(location string) (float64, bool) {
	key := normalizePlace(location)

	h.mu.RLock()
	defer h.mu.RUnlock()

	entries, ok := h.byLocation[key]
	if !ok || len(entries) == 0 {
		// Tolerate partial input: "Jaisalmer" should find "jaisalmer rajasthan".
		for stored, obs := range h.byLocation {
			if len(obs) > 0 && strings.Contains(stored, key) {
				return obs[0].RainfallMM, true
			}
		}
		return 0, false
	}
	return entries[0].RainfallMM, true
}
