// Package aiunderwriter prices premiums through an external LLM underwriter
// (Gemini). It is always composed behind the rule-based fallback: any failure
// here degrades quoting, it never breaks it.
package aiunderwriter

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/terrashield/terrashield/internal/underwriting"
)

var (
	ErrNotConfigured   = errors.New("aiunderwriter: API key not configured")
	ErrBadAssessment   = errors.New("aiunderwriter: malformed assessment response")
	ErrUpstreamFailure = errors.New("aiunderwriter: upstream request failed")
)

// Risk levels the external underwriter may return.
const (
	LevelLow     = "LOW"
	LevelMedium  = "MEDIUM"
	LevelHigh    = "HIGH"
	LevelExtreme = "EXTREME"
)

// levelMultipliers maps a categorical risk level onto the numeric multiplier
// scale shared with the rule-based calculator.
var levelMultipliers = map[string]float64{
	LevelLow:     1.0,
	LevelMedium:  1.3,
	LevelHigh:    1.6,
	LevelExtreme: 2.0,
}

// Assessment is the structured risk verdict returned by the external
// underwriter.
type Assessment struct {
	Location              string    `json:"location"`
	RiskScore             int       `json:"riskScore"` // 0-100
	RiskLevel             string    `json:"riskLevel"` // LOW | MEDIUM | HIGH | EXTREME
	RecommendedPremiumETH string    `json:"recommendedPremiumEth"`
	RiskFactors           []string  `json:"riskFactors"`
	WeatherAnalysis       string    `json:"weatherAnalysis"`
	Confidence            float64   `json:"confidence"`
	Model                 string    `json:"model"`
	Timestamp             time.Time `json:"timestamp"`
}

// Validate range-checks the fields the pricing path depends on.
func (a *Assessment) Validate() error {
	if a.RiskScore < 0 || a.RiskScore > 100 {
		return fmt.Errorf("%w: riskScore %d out of range", ErrBadAssessment, a.RiskScore)
	}
	if _, ok := levelMultipliers[a.RiskLevel]; !ok {
		return fmt.Errorf("%w: unknown riskLevel %q", ErrBadAssessment, a.RiskLevel)
	}
	premium, err := decimal.NewFromString(a.RecommendedPremiumETH)
	if err != nil || premium.Sign() <= 0 {
		return fmt.Errorf("%w: recommendedPremiumETH %q", ErrBadAssessment, a.RecommendedPremiumETH)
	}
	return nil
}

// ToQuote maps the assessment onto the uniform quote shape so downstream
// consumers never branch on which strategy priced the request. The
// recommended premium is already in final currency; it becomes finalPremium
// directly rather than baseline × multiplier.
func (a *Assessment) ToQuote(req underwriting.QuoteRequest) (*underwriting.Quote, error) {
	if err := a.Validate(); err != nil {
		return nil, err
	}

	base := req.BaselineAmount
	if base == "" {
		base = underwriting.DefaultBaselinePremium
	}

	premium, _ := decimal.NewFromString(a.RecommendedPremiumETH)

	return &underwriting.Quote{
		Location:       req.Location,
		WeatherType:    req.WeatherType,
		BasePremium:    base,
		RiskMultiplier: levelMultipliers[a.RiskLevel],
		FinalPremium:   premium.Round(4).Shift(18).String(),
		RiskFactors:    a.RiskFactors,
		Confidence:     a.Confidence,
		Strategy:       "ai",
		Analysis:       a.WeatherAnalysis,
	}, nil
}
