package underwriting

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/terrashield/terrashield/internal/metrics"
	"github.com/terrashield/terrashield/internal/traces"
)

// FallbackStrategy composes two pricing strategies: the primary is tried
// first, and any primary failure (network error, missing configuration,
// malformed upstream payload) degrades transparently to the secondary. The
// failure is surfaced on the quote as a non-fatal advisory, never as an
// error, since quoting must not break because an optional upstream did.
type FallbackStrategy struct {
	primary   Strategy
	secondary Strategy
	logger    *slog.Logger
}

// NewFallback wraps primary with secondary as the mandatory fallback.
func NewFallback(primary, secondary Strategy, logger *slog.Logger) *FallbackStrategy {
	return &FallbackStrategy{primary: primary, secondary: secondary, logger: logger}
}

// Name implements Strategy.
func (f *FallbackStrategy) Name() string {
	return f.primary.Name() + "+" + f.secondary.Name()
}

// Quote implements Strategy. The returned error can only originate from the
// secondary, whose sole failure mode is a malformed baseline amount.
func (f *FallbackStrategy) Quote(ctx context.Context, req QuoteRequest) (*Quote, error) {
	ctx, span := traces.StartSpan(ctx, "underwriting.Quote",
		traces.Location(req.Location), traces.Hazard(req.WeatherType), traces.Strategy(f.primary.Name()))
	defer span.End()

	quote, err := f.primary.Quote(ctx, req)
	if err == nil {
		metrics.QuotesTotal.WithLabelValues(f.primary.Name(), "ok").Inc()
		return quote, nil
	}

	f.logger.Warn("primary pricing strategy failed, falling back",
		"primary", f.primary.Name(),
		"secondary", f.secondary.Name(),
		"location", req.Location,
		"error", err,
	)
	metrics.QuotesTotal.WithLabelValues(f.primary.Name(), "error").Inc()
	metrics.QuoteFallbacksTotal.Inc()

	quote, err = f.secondary.Quote(ctx, req)
	if err != nil {
		return nil, err
	}
	metrics.QuotesTotal.WithLabelValues(f.secondary.Name(), "ok").Inc()
	quote.Advisory = fmt.Sprintf("%s unavailable, priced by %s", f.primary.Name(), f.secondary.Name())
	return quote, nil
}
