package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
)

// Handlers holds the handler functions for each MCP tool.
type Handlers struct {
	client *TerraShieldClient
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(client *TerraShieldClient) *Handlers {
	return &Handlers{client: client}
}

// HandleQuotePremium prices a premium for a farm location.
func (h *Handlers) HandleQuotePremium(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	location := req.GetString("location", "")
	if location == "" {
		return mcp.NewToolResultError("location is required"), nil
	}
	weatherType := req.GetString("weather_type", "")
	baseline := req.GetString("baseline_premium", "")
	strategy := req.GetString("strategy", "")

	raw, err := h.client.QuotePremium(ctx, location, weatherType, baseline, strategy)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to quote premium: %v", err)), nil
	}

	text, err := formatQuote(raw)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to parse quote: %v", err)), nil
	}

	return mcp.NewToolResultText(text), nil
}

// HandleAssessRisk returns the catalog risk profile for a location.
func (h *Handlers) HandleAssessRisk(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	location := req.GetString("location", "")
	if location == "" {
		return mcp.NewToolResultError("location is required"), nil
	}

	raw, err := h.client.GetRiskProfile(ctx, location)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to assess risk: %v", err)), nil
	}

	text, err := formatRiskProfile(raw)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to parse risk profile: %v", err)), nil
	}

	return mcp.NewToolResultText(text), nil
}

// HandleListLocations lists the underwriting catalog.
func (h *Handlers) HandleListLocations(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	raw, err := h.client.ListLocations(ctx)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to list locations: %v", err)), nil
	}

	text, err := formatLocations(raw)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to parse locations: %v", err)), nil
	}

	return mcp.NewToolResultText(text), nil
}

// HandleWeatherLookup fetches current conditions for a location.
func (h *Handlers) HandleWeatherLookup(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	location := req.GetString("location", "")
	if location == "" {
		return mcp.NewToolResultError("location is required"), nil
	}

	raw, err := h.client.GetWeather(ctx, location)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to fetch weather: %v", err)), nil
	}

	text, err := formatWeather(raw)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to parse weather: %v", err)), nil
	}

	return mcp.NewToolResultText(text), nil
}

// --- Formatting helpers ---

type quoteInfo struct {
	Location       string   `json:"location"`
	WeatherType    string   `json:"weatherType"`
	BasePremium    string   `json:"basePremium"`
	RiskMultiplier float64  `json:"riskMultiplier"`
	FinalPremium   string   `json:"finalPremium"`
	RiskFactors    []string `json:"riskFactors"`
	Confidence     float64  `json:"confidence"`
	Strategy       string   `json:"strategy"`
	Analysis       string   `json:"analysis"`
	Advisory       string   `json:"advisory"`
}

func formatQuote(raw json.RawMessage) (string, error) {
	var resp struct {
		Quote quoteInfo `json:"quote"`
	}
	if err := json.Unmarshal(raw, &resp); err != nil {
		return "", err
	}
	q := resp.Quote

	var sb strings.Builder
	fmt.Fprintf(&sb, "Premium quote for %s (%s)\n\n", q.Location, q.WeatherType)
	fmt.Fprintf(&sb, "Base premium: %s ETH\n", q.BasePremium)
	fmt.Fprintf(&sb, "Risk multiplier: %.2fx\n", q.RiskMultiplier)
	fmt.Fprintf(&sb, "Final premium: %s wei\n", q.FinalPremium)
	fmt.Fprintf(&sb, "Confidence: %.1f%%\n", q.Confidence)
	fmt.Fprintf(&sb, "Priced by: %s\n", q.Strategy)

	if len(q.RiskFactors) > 0 {
		sb.WriteString("\nRisk factors:\n")
		for _, f := range q.RiskFactors {
			fmt.Fprintf(&sb, "  - %s\n", f)
		}
	}
	if q.Analysis != "" {
		fmt.Fprintf(&sb, "\nAnalysis: %s\n", q.Analysis)
	}
	if q.Advisory != "" {
		fmt.Fprintf(&sb, "\nNote: %s\n", q.Advisory)
	}

	return sb.String(), nil
}

func formatRiskProfile(raw json.RawMessage) (string, error) {
	var resp struct {
		Profile struct {
			Location           string  `json:"location"`
			RiskScore          int     `json:"riskScore"`
			BaselineRainfall   float64 `json:"baselineRainfall"`
			AvgTemperature     float64 `json:"avgTemperature"`
			HailRiskLevel      string  `json:"hailRiskLevel"`
			DroughtRiskLevel   string  `json:"droughtRiskLevel"`
			FrostRiskLevel     string  `json:"frostRiskLevel"`
			RecommendedPremium string  `json:"recommendedPremium"`
		} `json:"riskProfile"`
	}
	if err := json.Unmarshal(raw, &resp); err != nil {
		return "", err
	}
	p := resp.Profile

	var sb strings.Builder
	fmt.Fprintf(&sb, "Risk profile for %s\n\n", p.Location)
	fmt.Fprintf(&sb, "Risk score: %d/100\n", p.RiskScore)
	fmt.Fprintf(&sb, "Baseline rainfall: %.0f mm/year\n", p.BaselineRainfall)
	fmt.Fprintf(&sb, "Average temperature: %.1f C\n", p.AvgTemperature)
	fmt.Fprintf(&sb, "Drought risk: %s\n", p.DroughtRiskLevel)
	fmt.Fprintf(&sb, "Hail risk: %s\n", p.HailRiskLevel)
	fmt.Fprintf(&sb, "Frost risk: %s\n", p.FrostRiskLevel)
	fmt.Fprintf(&sb, "Recommended premium: %s ETH\n", p.RecommendedPremium)

	return sb.String(), nil
}

func formatLocations(raw json.RawMessage) (string, error) {
	var resp struct {
		Locations []string `json:"locations"`
		Count     int      `json:"count"`
	}
	if err := json.Unmarshal(raw, &resp); err != nil {
		return "", err
	}

	if len(resp.Locations) == 0 {
		return "No locations in the risk catalog.", nil
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "%d locations in the risk catalog:\n\n", resp.Count)
	for _, loc := range resp.Locations {
		fmt.Fprintf(&sb, "  - %s\n", loc)
	}
	sb.WriteString("\nOther locations are quoted with conservative flat multipliers.")

	return sb.String(), nil
}

func formatWeather(raw json.RawMessage) (string, error) {
	var resp struct {
		Weather struct {
			Location    string   `json:"location"`
			Temperature float64  `json:"temperature"`
			Humidity    float64  `json:"humidity"`
			RainfallMM  float64  `json:"rainfallMm"`
			WindSpeed   float64  `json:"windSpeed"`
			Conditions  string   `json:"conditions"`
			Forecast    []string `json:"forecast"`
		} `json:"weather"`
	}
	if err := json.Unmarshal(raw, &resp); err != nil {
		return "", err
	}
	w := resp.Weather

	var sb strings.Builder
	fmt.Fprintf(&sb, "Weather for %s: %s\n\n", w.Location, w.Conditions)
	fmt.Fprintf(&sb, "Rainfall: %.1f mm\n", w.RainfallMM)
	fmt.Fprintf(&sb, "Temperature: %.1f C\n", w.Temperature)
	fmt.Fprintf(&sb, "Humidity: %.0f%%\n", w.Humidity)
	fmt.Fprintf(&sb, "Wind: %.1f km/h\n", w.WindSpeed)

	if len(w.Forecast) > 0 {
		sb.WriteString("\nForecast:\n")
		for _, day := range w.Forecast {
			fmt.Fprintf(&sb, "  %s\n", day)
		}
	}

	return sb.String(), nil
}
