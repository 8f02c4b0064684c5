package validate

import (
	"time"

	"github.com/shopspring/decimal"
)

// Config holds the business thresholds the validator enforces. It is
// immutable once injected; tests override individual values.
type Config struct {
	MinAmount        decimal.Decimal // below this the amount is suspicious
	MaxAmount        decimal.Decimal // above this the amount is suspicious
	TaxTolerance     decimal.Decimal // allowed |net + tax - total| gap
	StandardTaxRates []float64       // percent
	RateTolerance    float64         // percentage points around a standard rate
	MinConfidence    float32         // below this the record needs review
	MaxAgeDays       int             // older dates are stale
	Now              func() time.Time
}

func DefaultConfig() Config {
	return Config{
		MinAmount:        decimal.RequireFromString("0.50"),
		MaxAmount:        decimal.NewFromInt(50000),
		TaxTolerance:     decimal.RequireFromString("0.10"),
		StandardTaxRates: []float64{5.5, 10, 20},
		RateTolerance:    1.5,
		MinConfidence:    0.7,
		MaxAgeDays:       730,
		Now:              time.Now,
	}
}
