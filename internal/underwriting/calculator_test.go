package underwriting

import (
	"context"
	"errors"
	"reflect"
	"testing"
)

func newTestCalculator() *Calculator {
	return NewCalculator(NewCatalog())
}

func TestQuote_DesertDrought(t *testing.T) {
	calc := newTestCalculator()

	quote, err := calc.Quote(context.Background(), QuoteRequest{
		Location:       "jaisalmer",
		WeatherType:    "drought",
		BaselineAmount: "0.01",
	})
	if err != nil {
		t.Fatalf("Quote failed: %v", err)
	}

	// Score 82 gives base factor 1.41; high drought risk gives 1.9.
	if quote.RiskMultiplier != 2.68 {
		t.Errorf("Expected multiplier 2.68, got %v", quote.RiskMultiplier)
	}
	if quote.FinalPremium != "26800000000000000" {
		t.Errorf("Expected 26800000000000000 wei, got %s", quote.FinalPremium)
	}
	if quote.Confidence != 94.6 {
		t.Errorf("Expected confidence 94.6, got %v", quote.Confidence)
	}

	wantFactors := []string{"High drought risk", "High-risk geographical area", "Low rainfall area"}
	if !reflect.DeepEqual(quote.RiskFactors, wantFactors) {
		t.Errorf("Expected factors %v, got %v", wantFactors, quote.RiskFactors)
	}
	if quote.Strategy != "rules" {
		t.Errorf("Expected strategy rules, got %s", quote.Strategy)
	}
}

func TestQuote_WetRegionRainfallDiscount(t *testing.T) {
	calc := newTestCalculator()

	quote, err := calc.Quote(context.Background(), QuoteRequest{
		Location:    "mumbai",
		WeatherType: "excessive_rainfall",
	})
	if err != nil {
		t.Fatalf("Quote failed: %v", err)
	}

	// 2400mm baseline rainfall triggers the 0.9 discount: 1.275 * 0.9 = 1.15.
	if quote.RiskMultiplier != 1.15 {
		t.Errorf("Expected multiplier 1.15, got %v", quote.RiskMultiplier)
	}
	if quote.BasePremium != DefaultBaselinePremium {
		t.Errorf("Expected default baseline, got %s", quote.BasePremium)
	}
	if quote.FinalPremium != "575000000000000000" {
		t.Errorf("Expected 575000000000000000 wei, got %s", quote.FinalPremium)
	}
	if len(quote.RiskFactors) != 1 || quote.RiskFactors[0] != "Standard risk profile" {
		t.Errorf("Expected standard risk profile, got %v", quote.RiskFactors)
	}
}

func TestQuote_MultiHazardBlend(t *testing.T) {
	calc := newTestCalculator()

	quote, err := calc.Quote(context.Background(), QuoteRequest{
		Location:    "punjab",
		WeatherType: "multi_hazard",
	})
	if err != nil {
		t.Fatalf("Quote failed: %v", err)
	}

	// Punjab: hail medium, drought medium, frost high.
	// 1 + 0.25*0.4 + 0.25*0.3 + 0.5*0.3 = 1.325; times base 1.275 = 1.69.
	if quote.RiskMultiplier != 1.69 {
		t.Errorf("Expected multiplier 1.69, got %v", quote.RiskMultiplier)
	}
	if quote.FinalPremium != "845000000000000000" {
		t.Errorf("Expected 845000000000000000 wei, got %s", quote.FinalPremium)
	}
}

func TestQuote_UnknownHazard(t *testing.T) {
	calc := newTestCalculator()

	quote, err := calc.Quote(context.Background(), QuoteRequest{
		Location:    "kerala",
		WeatherType: "locust_swarm",
	})
	if err != nil {
		t.Fatalf("Quote failed: %v", err)
	}

	// Unknown hazards price at 1.2: 1.275 * 1.2 = 1.53.
	if quote.RiskMultiplier != 1.53 {
		t.Errorf("Expected multiplier 1.53, got %v", quote.RiskMultiplier)
	}
}

func TestQuote_UnknownLocation(t *testing.T) {
	calc := newTestCalculator()

	quote, err := calc.Quote(context.Background(), QuoteRequest{
		Location:       "Atlantis",
		WeatherType:    "hailstorm",
		BaselineAmount: "1",
	})
	if err != nil {
		t.Fatalf("Quote failed: %v", err)
	}

	if quote.RiskMultiplier != 1.5 {
		t.Errorf("Expected flat hailstorm multiplier 1.5, got %v", quote.RiskMultiplier)
	}
	if quote.FinalPremium != "1500000000000000000" {
		t.Errorf("Expected 1500000000000000000 wei, got %s", quote.FinalPremium)
	}
	if quote.Confidence != 45 {
		t.Errorf("Expected confidence 45, got %v", quote.Confidence)
	}
	if len(quote.RiskFactors) != 1 || quote.RiskFactors[0] != "Unknown location - standard premium applied" {
		t.Errorf("Expected unknown-location factor, got %v", quote.RiskFactors)
	}
}

func TestQuote_UnknownLocationUnknownHazard(t *testing.T) {
	calc := newTestCalculator()

	quote, err := calc.Quote(context.Background(), QuoteRequest{
		Location:    "Atlantis",
		WeatherType: "volcano",
	})
	if err != nil {
		t.Fatalf("Quote failed: %v", err)
	}
	if quote.RiskMultiplier != 1.3 {
		t.Errorf("Expected default flat multiplier 1.3, got %v", quote.RiskMultiplier)
	}
}

func TestQuote_InvalidBaseline(t *testing.T) {
	calc := newTestCalculator()

	for _, amount := range []string{"abc", "-1", "0", "1.2.3"} {
		_, err := calc.Quote(context.Background(), QuoteRequest{
			Location:       "punjab",
			WeatherType:    "drought",
			BaselineAmount: amount,
		})
		if !errors.Is(err, ErrInvalidAmount) {
			t.Errorf("Expected ErrInvalidAmount for %q, got %v", amount, err)
		}
	}
}

func TestQuote_ConfiguredDefaultBaseline(t *testing.T) {
	calc := NewCalculator(NewCatalog()).WithBaseline("0.1")

	quote, err := calc.Quote(context.Background(), QuoteRequest{
		Location:    "jaisalmer",
		WeatherType: "drought",
	})
	if err != nil {
		t.Fatalf("Quote failed: %v", err)
	}
	if quote.BasePremium != "0.1" {
		t.Errorf("Expected base premium 0.1, got %s", quote.BasePremium)
	}
	// 0.1 × 2.68 = 0.268 ETH.
	if quote.FinalPremium != "268000000000000000" {
		t.Errorf("Expected 268000000000000000 wei, got %s", quote.FinalPremium)
	}
	if calc.DefaultBaseline() != "0.1" {
		t.Errorf("Expected default baseline 0.1, got %s", calc.DefaultBaseline())
	}
}

func TestWithBaseline_IgnoresMalformedValues(t *testing.T) {
	for _, bad := range []string{"", "abc", "-1", "0"} {
		calc := NewCalculator(NewCatalog()).WithBaseline(bad)
		if calc.DefaultBaseline() != DefaultBaselinePremium {
			t.Errorf("WithBaseline(%q) should keep the default, got %s", bad, calc.DefaultBaseline())
		}
	}
}

func TestQuote_BaselineBounds(t *testing.T) {
	calc := NewCalculator(NewCatalog()).WithPremiumBounds("0.0001", "1000")

	// Within bounds prices normally.
	if _, err := calc.Quote(context.Background(), QuoteRequest{
		Location: "punjab", WeatherType: "drought", BaselineAmount: "0.01",
	}); err != nil {
		t.Fatalf("Quote failed: %v", err)
	}

	for _, amount := range []string{"0.00001", "5000"} {
		_, err := calc.Quote(context.Background(), QuoteRequest{
			Location:       "punjab",
			WeatherType:    "drought",
			BaselineAmount: amount,
		})
		if !errors.Is(err, ErrAmountOutOfBounds) {
			t.Errorf("Expected ErrAmountOutOfBounds for %q, got %v", amount, err)
		}
	}
}

func TestQuote_NoBoundsWhenUnconfigured(t *testing.T) {
	calc := newTestCalculator()

	if _, err := calc.Quote(context.Background(), QuoteRequest{
		Location: "punjab", WeatherType: "drought", BaselineAmount: "5000",
	}); err != nil {
		t.Fatalf("Quote without configured bounds should accept any positive amount: %v", err)
	}
}

func TestQuote_Deterministic(t *testing.T) {
	calc := newTestCalculator()
	req := QuoteRequest{Location: "bikaner", WeatherType: "drought", BaselineAmount: "0.25"}

	first, err := calc.Quote(context.Background(), req)
	if err != nil {
		t.Fatalf("Quote failed: %v", err)
	}
	second, err := calc.Quote(context.Background(), req)
	if err != nil {
		t.Fatalf("Quote failed: %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Errorf("Expected identical quotes, got %+v vs %+v", first, second)
	}
}

func TestWeatherFactor_Bounds(t *testing.T) {
	hazards := []string{
		HazardExcessiveRainfall,
		HazardHeatWave,
		HazardHailstorm,
		HazardDrought,
		HazardFrost,
		HazardMultiHazard,
	}

	for i := range riskCatalog {
		p := &riskCatalog[i].profile
		for _, hazard := range hazards {
			factor := weatherFactor(p, hazard)
			if factor < 0.9 || factor > 2.2 {
				t.Errorf("weatherFactor(%s, %s) = %v, outside [0.9, 2.2]", p.Location, hazard, factor)
			}
		}
	}
}

func TestRiskFactors_ScoreBoundary(t *testing.T) {
	at70 := &RiskProfile{Location: "X", RiskScore: 70, BaselineRainfall: 500}
	for _, f := range riskFactors(at70) {
		if f == "High-risk geographical area" {
			t.Error("Score 70 should not flag high-risk area")
		}
	}

	at71 := &RiskProfile{Location: "X", RiskScore: 71, BaselineRainfall: 500}
	found := false
	for _, f := range riskFactors(at71) {
		if f == "High-risk geographical area" {
			found = true
		}
	}
	if !found {
		t.Error("Score 71 should flag high-risk area")
	}
}

func TestConfidence_Range(t *testing.T) {
	if c := confidence(0); c != 70 {
		t.Errorf("Expected confidence 70 at score 0, got %v", c)
	}
	if c := confidence(100); c != 95 {
		t.Errorf("Expected confidence capped at 95, got %v", c)
	}
	if c := confidence(50); c != 85 {
		t.Errorf("Expected confidence 85 at score 50, got %v", c)
	}
}
