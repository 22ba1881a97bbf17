package mcpserver

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// Config holds the configuration for connecting to the TerraShield API.
type Config struct {
	APIURL string // Base URL, e.g. "http://localhost:8080"
}

// TerraShieldClient is a pure HTTP client for the TerraShield API.
type TerraShieldClient struct {
	cfg        Config
	httpClient *http.Client
}

// NewTerraShieldClient creates a new client for the TerraShield API.
func NewTerraShieldClient(cfg Config) *TerraShieldClient {
	return &TerraShieldClient{
		cfg: cfg,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// apiError represents an error response from the API.
type apiError struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// doRequest makes an HTTP request to the API and returns the response body.
func (c *TerraShieldClient) doRequest(ctx context.Context, method, path string, query url.Values, body any) (json.RawMessage, error) {
	u, err := url.Parse(c.cfg.APIURL + path)
	if err != nil {
		return nil, fmt.Errorf("invalid URL: %w", err)
	}
	if query != nil {
		u.RawQuery = query.Encode()
	}

	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("marshal request body: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), reqBody)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode >= 400 {
		var apiErr apiError
		if json.Unmarshal(respBody, &apiErr) == nil && apiErr.Message != "" {
			return nil, fmt.Errorf("API error (%d): %s", resp.StatusCode, apiErr.Message)
		}
		return nil, fmt.Errorf("API error (%d): %s", resp.StatusCode, string(respBody))
	}

	return json.RawMessage(respBody), nil
}

// QuotePremium requests a premium quote.
func (c *TerraShieldClient) QuotePremium(ctx context.Context, location, weatherType, baseline, strategy string) (json.RawMessage, error) {
	var q url.Values
	if strategy != "" {
		q = url.Values{}
		q.Set("strategy", strategy)
	}

	body := map[string]string{"location": location}
	if weatherType != "" {
		body["weatherType"] = weatherType
	}
	if baseline != "" {
		body["baselineAmount"] = baseline
	}

	return c.doRequest(ctx, http.MethodPost, "/v1/quotes", q, body)
}

// GetRiskProfile fetches the catalog risk profile for a location.
func (c *TerraShieldClient) GetRiskProfile(ctx context.Context, location string) (json.RawMessage, error) {
	return c.doRequest(ctx, http.MethodGet, "/v1/locations/"+url.PathEscape(location)+"/risk", nil, nil)
}

// ListLocations fetches the catalog location list.
func (c *TerraShieldClient) ListLocations(ctx context.Context) (json.RawMessage, error) {
	return c.doRequest(ctx, http.MethodGet, "/v1/locations", nil, nil)
}

// GetWeather fetches current conditions for a location.
func (c *TerraShieldClient) GetWeather(ctx context.Context, location string) (json.RawMessage, error) {
	return c.doRequest(ctx, http.MethodGet, "/v1/weather/"+url.PathEscape(location), nil, nil)
}
