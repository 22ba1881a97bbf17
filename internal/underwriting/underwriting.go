// Package underwriting implements location-based premium risk scoring for
// parametric crop-insurance policies.
//
// A quote request carries a free-text location, a covered hazard, and an
// optional baseline premium. The package resolves the location against a
// compiled-in catalog of geographic risk profiles (exact or keyword match),
// derives a hazard-specific risk multiplier, and prices the premium in wei.
// Quoting is total: unknown locations take a flat per-hazard multiplier path
// instead of failing.
package underwriting

import (
	"context"
	"errors"
)

// Hazard types a policy can cover. These match the coverage enum in the
// insurance contract.
const (
	HazardExcessiveRainfall = "excessive_rainfall"
	HazardHeatWave          = "heat_wave"
	HazardHailstorm         = "hailstorm"
	HazardDrought           = "drought"
	HazardFrost             = "frost"
	HazardMultiHazard       = "multi_hazard"
)

// RiskLevel is a categorical hazard exposure for one peril at one location.
type RiskLevel string

const (
	RiskLow    RiskLevel = "low"
	RiskMedium RiskLevel = "medium"
	RiskHigh   RiskLevel = "high"
)

var (
	ErrInvalidAmount     = errors.New("underwriting: baseline amount is not a positive decimal")
	ErrAmountOutOfBounds = errors.New("underwriting: baseline amount outside configured bounds")
)

// DefaultBaselinePremium is used when a quote request omits the baseline
// amount, denominated in ETH.
const DefaultBaselinePremium = "0.5"

// RiskProfile holds the static weather-risk characteristics of one
// geographic area. Profiles are immutable once the catalog is built.
type RiskProfile struct {
	Location           string    `json:"location"`           // display name
	RiskScore          int       `json:"riskScore"`          // 0-100, higher = riskier
	BaselineRainfall   float64   `json:"baselineRainfall"`   // mm/year
	AvgTemperature     float64   `json:"avgTemperature"`     // °C
	HailRiskLevel      RiskLevel `json:"hailRiskLevel"`
	DroughtRiskLevel   RiskLevel `json:"droughtRiskLevel"`
	FrostRiskLevel     RiskLevel `json:"frostRiskLevel"`
	RecommendedPremium string    `json:"recommendedPremium"` // ETH decimal string
}

// QuoteRequest is the input for one premium quote.
type QuoteRequest struct {
	Location       string `json:"location" binding:"required"`
	WeatherType    string `json:"weatherType" binding:"required"`
	BaselineAmount string `json:"baselineAmount,omitempty"` // ETH, defaults to DefaultBaselinePremium
}

// Quote is the priced result for one request. FinalPremium is expressed in
// wei so it can be passed straight to the settlement contract.
type Quote struct {
	Location       string   `json:"location"`
	WeatherType    string   `json:"weatherType"`
	BasePremium    string   `json:"basePremium"`    // ETH
	RiskMultiplier float64  `json:"riskMultiplier"`
	FinalPremium   string   `json:"finalPremium"`   // wei, integer string
	RiskFactors    []string `json:"riskFactors"`
	Confidence     float64  `json:"confidence"` // 0-100
	Strategy       string   `json:"strategy,omitempty"` // which pricer produced this
	Analysis       string   `json:"analysis,omitempty"` // narrative from the AI underwriter
	Advisory       string   `json:"advisory,omitempty"` // non-fatal diagnostic (e.g. AI fallback)
}

// Strategy prices a quote request. Implementations must be safe for
// concurrent use.
type Strategy interface {
	// Quote prices the request. A nil error guarantees a usable quote.
	Quote(ctx context.Context, req QuoteRequest) (*Quote, error)
	// Name identifies the strategy in quote provenance and metrics.
	Name() string
}
