package underwriting

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
)

// Risk factor strings surfaced on quotes, in their fixed emission order.
const (
	factorHighDrought  = "High drought risk"
	factorHighHail     = "High hail risk"
	factorHighFrost    = "High frost risk"
	factorHighRiskArea = "High-risk geographical area"
	factorLowRainfall  = "Low rainfall area"
	factorStandard     = "Standard risk profile"
	factorUnknown      = "Unknown location - standard premium applied"
)

// unknownLocationConfidence is the fixed confidence for quotes priced
// without a resolved profile.
const unknownLocationConfidence = 45

// unknownHazardFactor applies when the hazard string matches no known rule.
const unknownHazardFactor = 1.2

// flatMultipliers price unknown locations: per-hazard factors independent of
// geography.
var flatMultipliers = map[string]float64{
	HazardExcessiveRainfall: 1.3,
	HazardHeatWave:          1.1,
	HazardHailstorm:         1.5,
	HazardDrought:           1.4,
	HazardFrost:             1.2,
	HazardMultiHazard:       1.6,
}

const flatMultiplierDefault = 1.3

// Calculator is the rule-based pricing strategy: resolve a profile, derive a
// hazard-specific multiplier, price the premium. It is total: every request
// with a valid baseline amount yields a quote.
type Calculator struct {
	catalog         *Catalog
	defaultBaseline string
	minBaseline     decimal.Decimal
	maxBaseline     decimal.Decimal
}

// NewCalculator creates a calculator over the given catalog.
func NewCalculator(catalog *Catalog) *Calculator {
	return &Calculator{catalog: catalog, defaultBaseline: DefaultBaselinePremium}
}

// WithBaseline overrides the baseline premium applied when a request omits
// one. A malformed or non-positive value keeps the package default.
func (c *Calculator) WithBaseline(eth string) *Calculator {
	if d, err := decimal.NewFromString(eth); err == nil && d.Sign() > 0 {
		c.defaultBaseline = eth
	}
	return c
}

// WithPremiumBounds sets inclusive limits on caller-supplied baseline
// amounts. A malformed or non-positive bound is left unset.
func (c *Calculator) WithPremiumBounds(min, max string) *Calculator {
	if d, err := decimal.NewFromString(min); err == nil && d.Sign() > 0 {
		c.minBaseline = d
	}
	if d, err := decimal.NewFromString(max); err == nil && d.Sign() > 0 {
		c.maxBaseline = d
	}
	return c
}

// DefaultBaseline returns the baseline premium applied to requests that omit
// one, denominated in ETH.
func (c *Calculator) DefaultBaseline() string { return c.defaultBaseline }

// Name implements Strategy.
func (c *Calculator) Name() string { return "rules" }

// Quote implements Strategy. The only error condition is a malformed
// baseline amount; unrecognized locations and hazard types are priced on
// defined fallback paths, never rejected.
func (c *Calculator) Quote(_ context.Context, req QuoteRequest) (*Quote, error) {
	base, err := c.parseBaseline(req.BaselineAmount)
	if err != nil {
		return nil, err
	}

	profile := c.catalog.Resolve(req.Location)
	if profile == nil {
		return c.quoteUnknownLocation(req, base), nil
	}

	multiplier := roundMultiplier(baseFactor(profile.RiskScore) * weatherFactor(profile, req.WeatherType))

	return &Quote{
		Location:       req.Location,
		WeatherType:    req.WeatherType,
		BasePremium:    base.String(),
		RiskMultiplier: multiplier.InexactFloat64(),
		FinalPremium:   toWei(base.Mul(multiplier)),
		RiskFactors:    riskFactors(profile),
		Confidence:     confidence(profile.RiskScore),
		Strategy:       c.Name(),
	}, nil
}

// Profile exposes catalog resolution for presentation layers that show raw
// risk data alongside quotes.
func (c *Calculator) Profile(location string) *RiskProfile {
	return c.catalog.Resolve(location)
}

// Locations proxies the catalog's display-name listing.
func (c *Calculator) Locations() []string {
	return c.catalog.Locations()
}

// quoteUnknownLocation prices a request whose location resolved to nothing:
// a flat per-hazard multiplier with fixed low confidence.
func (c *Calculator) quoteUnknownLocation(req QuoteRequest, base decimal.Decimal) *Quote {
	factor, ok := flatMultipliers[NormalizeHazard(req.WeatherType)]
	if !ok {
		factor = flatMultiplierDefault
	}
	multiplier := roundMultiplier(factor)

	return &Quote{
		Location:       req.Location,
		WeatherType:    req.WeatherType,
		BasePremium:    base.String(),
		RiskMultiplier: multiplier.InexactFloat64(),
		FinalPremium:   toWei(base.Mul(multiplier)),
		RiskFactors:    []string{factorUnknown},
		Confidence:     unknownLocationConfidence,
		Strategy:       c.Name(),
	}
}

// baseFactor scales with the profile's overall risk score: 1.0 at score 0,
// 1.5 at score 100.
func baseFactor(riskScore int) float64 {
	return 1 + float64(riskScore)/200
}

// weatherFactor applies the hazard-specific rule over the profile's fields.
// Every rule's output stays within [0.9, 2.0]; unknown hazards price at 1.2.
func weatherFactor(p *RiskProfile, weatherType string) float64 {
	switch NormalizeHazard(weatherType) {
	case HazardExcessiveRainfall:
		// Locations already drenched year-round need the cover less.
		if p.BaselineRainfall > 800 {
			return 0.9
		}
		return levelFactor(p.DroughtRiskLevel, 1.1, 1.3, 1.6, 1.2)
	case HazardHeatWave:
		if p.AvgTemperature > 20 {
			return 1.3
		}
		return 1.1
	case HazardHailstorm:
		return levelFactor(p.HailRiskLevel, 1.2, 1.5, 2.0, 1.3)
	case HazardDrought:
		return levelFactor(p.DroughtRiskLevel, 1.1, 1.4, 1.9, 1.3)
	case HazardFrost:
		return levelFactor(p.FrostRiskLevel, 1.1, 1.35, 1.7, 1.2)
	case HazardMultiHazard:
		// Blend the three categorical perils with fixed 0.4/0.3/0.3 weights.
		hail := levelFactor(p.HailRiskLevel, 1.0, 1.25, 1.5, 1.0)
		drought := levelFactor(p.DroughtRiskLevel, 1.0, 1.25, 1.5, 1.0)
		frost := levelFactor(p.FrostRiskLevel, 1.0, 1.25, 1.5, 1.0)
		return 1.0 + (hail-1)*0.4 + (drought-1)*0.3 + (frost-1)*0.3
	default:
		return unknownHazardFactor
	}
}

// levelFactor maps a categorical risk level to its rule value, with a
// fallback for levels outside the known set.
func levelFactor(level RiskLevel, low, medium, high, fallback float64) float64 {
	switch level {
	case RiskLow:
		return low
	case RiskMedium:
		return medium
	case RiskHigh:
		return high
	default:
		return fallback
	}
}

// riskFactors derives the explanatory factor list in fixed order: drought,
// hail, frost, high-risk area, low rainfall. The high-risk-area factor
// requires a score strictly above 70. When nothing applies the list holds
// the single standard-profile sentinel, never empty.
func riskFactors(p *RiskProfile) []string {
	var factors []string
	if p.DroughtRiskLevel == RiskHigh {
		factors = append(factors, factorHighDrought)
	}
	if p.HailRiskLevel == RiskHigh {
		factors = append(factors, factorHighHail)
	}
	if p.FrostRiskLevel == RiskHigh {
		factors = append(factors, factorHighFrost)
	}
	if p.RiskScore > 70 {
		factors = append(factors, factorHighRiskArea)
	}
	if p.BaselineRainfall < 300 {
		factors = append(factors, factorLowRainfall)
	}
	if len(factors) == 0 {
		return []string{factorStandard}
	}
	return factors
}

// confidence grows with the profile's risk score, capped at 95.
func confidence(riskScore int) float64 {
	c := 70 + float64(riskScore)*0.3
	if c > 95 {
		return 95
	}
	return c
}

// parseBaseline validates the caller-supplied baseline amount, applying the
// configured default when omitted and enforcing the configured bounds.
// Rejecting malformed input here keeps NaN out of the pricing math entirely.
func (c *Calculator) parseBaseline(amount string) (decimal.Decimal, error) {
	if amount == "" {
		amount = c.defaultBaseline
	}
	d, err := decimal.NewFromString(amount)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %q", ErrInvalidAmount, amount)
	}
	if d.Sign() <= 0 {
		return decimal.Zero, fmt.Errorf("%w: %q", ErrInvalidAmount, amount)
	}
	if !c.minBaseline.IsZero() && d.Cmp(c.minBaseline) < 0 {
		return decimal.Zero, fmt.Errorf("%w: %q below minimum %s", ErrAmountOutOfBounds, amount, c.minBaseline)
	}
	if !c.maxBaseline.IsZero() && d.Cmp(c.maxBaseline) > 0 {
		return decimal.Zero, fmt.Errorf("%w: %q above maximum %s", ErrAmountOutOfBounds, amount, c.maxBaseline)
	}
	return d, nil
}

// roundMultiplier pins the multiplier to 2 decimal places so quotes are
// reproducible across platforms.
func roundMultiplier(f float64) decimal.Decimal {
	return decimal.NewFromFloat(f).Round(2)
}

// toWei rounds an ETH amount to 4 decimal places and re-expresses it as an
// integer string in wei, the settlement contract's smallest unit.
func toWei(eth decimal.Decimal) string {
	return eth.Round(4).Shift(18).String()
}
