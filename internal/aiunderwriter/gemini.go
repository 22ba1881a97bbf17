package aiunderwriter

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/terrashield/terrashield/internal/circuitbreaker"
	"github.com/terrashield/terrashield/internal/metrics"
	"github.com/terrashield/terrashield/internal/underwriting"
	"github.com/terrashield/terrashield/internal/weather"
)

// DefaultBaseURL is the Gemini generateContent endpoint root.
const DefaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"

// WeatherSource supplies current observations for the prompt.
type WeatherSource interface {
	Fetch(ctx context.Context, location string) (*weather.Conditions, error)
}

// Underwriter prices quotes by asking Gemini for a structured risk
// assessment over live weather data. Implements underwriting.Strategy.
type Underwriter struct {
	apiKey  string
	model   string
	baseURL string
	client  *http.Client
	weather WeatherSource
	breaker *circuitbreaker.Breaker
}

// breakerKey identifies the Gemini upstream in the circuit breaker.
const breakerKey = "gemini"

// Option configures the underwriter
type Option func(*Underwriter)

// WithBaseURL overrides the Gemini endpoint (useful for testing)
func WithBaseURL(url string) Option {
	return func(u *Underwriter) { u.baseURL = url }
}

// WithHTTPClient overrides the HTTP client
func WithHTTPClient(client *http.Client) Option {
	return func(u *Underwriter) { u.client = client }
}

// New creates a Gemini-backed underwriter. An empty API key is allowed; the
// strategy then fails fast with ErrNotConfigured and the fallback prices
// every quote.
func New(apiKey, model string, source WeatherSource, opts ...Option) *Underwriter {
	u := &Underwriter{
		apiKey:  apiKey,
		model:   model,
		baseURL: DefaultBaseURL,
		client:  &http.Client{Timeout: 30 * time.Second},
		weather: source,
		// Trip after 3 consecutive upstream failures so quotes fall back to
		// rules immediately instead of waiting out the HTTP timeout each time.
		breaker: circuitbreaker.New(3, 60*time.Second),
	}
	for _, opt := range opts {
		opt(u)
	}
	return u
}

// Name implements underwriting.Strategy.
func (u *Underwriter) Name() string { return "ai" }

// IsConfigured reports whether an API key is present.
func (u *Underwriter) IsConfigured() bool { return u.apiKey != "" }

// Quote implements underwriting.Strategy.
func (u *Underwriter) Quote(ctx context.Context, req underwriting.QuoteRequest) (*underwriting.Quote, error) {
	assessment, err := u.Assess(ctx, req.Location, req.WeatherType)
	if err != nil {
		return nil, err
	}
	return assessment.ToQuote(req)
}

// Assess runs the full underwriting flow: fetch live weather, prompt the
// model, parse the structured verdict.
func (u *Underwriter) Assess(ctx context.Context, location, weatherType string) (*Assessment, error) {
	if !u.IsConfigured() {
		return nil, ErrNotConfigured
	}

	conditions, err := u.weather.Fetch(ctx, location)
	if err != nil {
		return nil, fmt.Errorf("%w: weather fetch: %v", ErrUpstreamFailure, err)
	}

	text, err := u.generate(ctx, buildPrompt(location, weatherType, conditions))
	if err != nil {
		return nil, err
	}

	payload, err := parseAssessment(text)
	if err != nil {
		return nil, err
	}

	assessment := &Assessment{
		Location:              location,
		RiskScore:             payload.RiskScore,
		RiskLevel:             payload.RiskLevel,
		RecommendedPremiumETH: payload.RecommendedPremiumETH,
		RiskFactors:           payload.RiskFactors,
		WeatherAnalysis:       payload.WeatherAnalysis,
		Confidence:            assessmentConfidence(payload.RiskScore),
		Model:                 u.model,
		Timestamp:             time.Now().UTC(),
	}
	if err := assessment.Validate(); err != nil {
		return nil, err
	}
	return assessment, nil
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
}

type geminiRequest struct {
	Contents         []geminiContent `json:"contents"`
	GenerationConfig struct {
		Temperature     float64 `json:"temperature"`
		MaxOutputTokens int     `json:"maxOutputTokens"`
	} `json:"generationConfig"`
}

type geminiResponse struct {
	Candidates []struct {
		Content geminiContent `json:"content"`
	} `json:"candidates"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

// generate performs one generateContent round trip and returns the raw text
// of the first candidate.
func (u *Underwriter) generate(ctx context.Context, prompt string) (string, error) {
	body := geminiRequest{
		Contents: []geminiContent{{Parts: []geminiPart{{Text: prompt}}}},
	}
	// Low temperature, short output: we want JSON, not prose.
	body.GenerationConfig.Temperature = 0.3
	body.GenerationConfig.MaxOutputTokens = 500

	encoded, err := json.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("failed to encode request: %w", err)
	}

	if !u.breaker.Allow(breakerKey) {
		return "", fmt.Errorf("%w: circuit open", ErrUpstreamFailure)
	}

	url := fmt.Sprintf("%s/models/%s:generateContent?key=%s", u.baseURL, u.model, u.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(encoded))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := u.client.Do(req)
	metrics.ObserveUpstream("gemini", start)
	if err != nil {
		u.breaker.RecordFailure(breakerKey)
		return "", fmt.Errorf("%w: %v", ErrUpstreamFailure, err)
	}
	defer resp.Body.Close()

	var payload geminiResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		u.breaker.RecordFailure(breakerKey)
		return "", fmt.Errorf("%w: decode: %v", ErrUpstreamFailure, err)
	}

	if resp.StatusCode != http.StatusOK {
		u.breaker.RecordFailure(breakerKey)
		msg := fmt.Sprintf("status %d", resp.StatusCode)
		if payload.Error != nil && payload.Error.Message != "" {
			msg = payload.Error.Message
		}
		return "", fmt.Errorf("%w: %s", ErrUpstreamFailure, msg)
	}
	u.breaker.RecordSuccess(breakerKey)

	if len(payload.Candidates) == 0 || len(payload.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("%w: empty candidate", ErrBadAssessment)
	}
	return payload.Candidates[0].Content.Parts[0].Text, nil
}

// assessmentPayload is the JSON document the prompt instructs the model to
// emit.
type assessmentPayload struct {
	RiskScore             int      `json:"riskScore"`
	RiskLevel             string   `json:"riskLevel"`
	RecommendedPremiumETH string   `json:"recommendedPremiumETH"`
	RiskFactors           []string `json:"riskFactors"`
	WeatherAnalysis       string   `json:"weatherAnalysis"`
}

// parseAssessment decodes the model's text into an assessment payload. One
// markdown code-fence unwrap is tolerated; anything else malformed is
// ErrBadAssessment.
func parseAssessment(text string) (*assessmentPayload, error) {
	jsonStr := strings.TrimSpace(text)
	if idx := strings.Index(jsonStr, "```json"); idx >= 0 {
		jsonStr = jsonStr[idx+len("```json"):]
		if end := strings.Index(jsonStr, "```"); end >= 0 {
			jsonStr = jsonStr[:end]
		}
	} else if idx := strings.Index(jsonStr, "```"); idx >= 0 {
		jsonStr = jsonStr[idx+len("```"):]
		if end := strings.Index(jsonStr, "```"); end >= 0 {
			jsonStr = jsonStr[:end]
		}
	}

	var payload assessmentPayload
	if err := json.Unmarshal([]byte(strings.TrimSpace(jsonStr)), &payload); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadAssessment, err)
	}
	return &payload, nil
}

// assessmentConfidence derives a deterministic confidence in [85, 95] from
// the risk score.
func assessmentConfidence(riskScore int) float64 {
	return 85 + float64(riskScore)*0.1
}

// buildPrompt renders the underwriting prompt with live weather context.
func buildPrompt(location, weatherType string, c *weather.Conditions) string {
	var b strings.Builder
	fmt.Fprintf(&b, "You are an AI insurance underwriter for agricultural/crop insurance in India.\n\n")
	fmt.Fprintf(&b, "TASK: Analyze the weather risk for a farmer and calculate the insurance premium.\n\n")
	fmt.Fprintf(&b, "FARMER LOCATION: %s\n", location)
	fmt.Fprintf(&b, "COVERAGE TYPE: %s\n\n", weatherType)
	fmt.Fprintf(&b, "CURRENT WEATHER DATA:\n")
	fmt.Fprintf(&b, "- Temperature: %.1f°C\n", c.Temperature)
	fmt.Fprintf(&b, "- Humidity: %.0f%%\n", c.Humidity)
	fmt.Fprintf(&b, "- Current Rainfall: %.1f mm\n", c.RainfallMM)
	fmt.Fprintf(&b, "- Wind Speed: %.1f km/h\n", c.WindSpeed)
	fmt.Fprintf(&b, "- Conditions: %s\n\n", c.Conditions)
	fmt.Fprintf(&b, "7-DAY FORECAST:\n%s\n\n", strings.Join(c.Forecast, "\n"))
	fmt.Fprintf(&b, "INSTRUCTIONS:\n")
	fmt.Fprintf(&b, "1. Analyze the risk of %s occurring in this location\n", weatherType)
	fmt.Fprintf(&b, "2. Consider historical patterns for this region of India\n")
	fmt.Fprintf(&b, "3. Calculate a fair insurance premium in ETH (base is 0.01 ETH for low risk)\n")
	fmt.Fprintf(&b, "4. Provide risk factors specific to this location\n\n")
	fmt.Fprintf(&b, "RESPOND IN EXACTLY THIS JSON FORMAT (no markdown, no explanation):\n")
	fmt.Fprintf(&b, `{
  "riskScore": <number 0-100>,
  "riskLevel": "<LOW|MEDIUM|HIGH|EXTREME>",
  "recommendedPremiumETH": "<string like 0.015>",
  "riskFactors": ["<factor1>", "<factor2>", "<factor3>"],
  "weatherAnalysis": "<2-3 sentence analysis>"
}`)
	return b.String()
}
