// Package validate applies the business rules that turn a candidate field
// map into an audit-ready record: amount bounds, date canonicalization, tax
// consistency, category inference, confidence gating and line-item
// completion. Rules are independent and non-destructive; each may append a
// warning and/or force review, never delete extracted data.
package validate

import (
	"fmt"
	"log/slog"
	"math"

	"github.com/shopspring/decimal"

	"github.com/expensio/receipt-scan/constants"
	"github.com/expensio/receipt-scan/internal/vision"
)

type Validator struct {
	cfg Config
	log *slog.Logger
}

func New(cfg Config, logger *slog.Logger) *Validator {
	if cfg.Now == nil {
		cfg.Now = DefaultConfig().Now
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Validator{cfg: cfg, log: logger}
}

// Validate normalizes the field map and appends warnings in rule order.
// The final needs_review flag is the OR of every rule trigger with the
// extractor-declared flag.
func (v *Validator) Validate(f vision.InvoiceFields, filename string) vision.InvoiceFields {
	review := f.NeedsReview

	// 1. amount bounds; value kept (sign included) for audit
	if f.TotalAmount != nil {
		amount := f.TotalAmount.Round(2)
		f.TotalAmount = &amount
		switch {
		case amount.Sign() <= 0:
			f.Warnings = append(f.Warnings, "negative or zero amount")
			review = true
		case amount.LessThan(v.cfg.MinAmount):
			f.Warnings = append(f.Warnings, fmt.Sprintf("very low amount (<%s)", v.cfg.MinAmount))
			review = true
		case amount.GreaterThan(v.cfg.MaxAmount):
			f.Warnings = append(f.Warnings, fmt.Sprintf("very high amount (>%s)", v.cfg.MaxAmount))
			review = true
		}
	}

	// 2. date canonicalization; future forces review, stale only warns
	if f.InvoiceDate != "" {
		if canonical, ok := vision.NormalizeDate(f.InvoiceDate); ok {
			f.InvoiceDate = canonical
			if parsed, err := vision.ParseCanonical(canonical); err == nil {
				now := v.cfg.Now()
				if parsed.After(now) {
					f.Warnings = append(f.Warnings, "date in the future")
					review = true
				} else if now.Sub(parsed).Hours() > float64(v.cfg.MaxAgeDays)*24 {
					f.Warnings = append(f.Warnings, "date older than 2 years")
				}
			}
		}
	}

	// 3. tax consistency
	if f.NetAmount != nil {
		net := f.NetAmount.Round(2)
		f.NetAmount = &net
	}
	if f.TaxAmount != nil {
		tax := f.TaxAmount.Round(2)
		f.TaxAmount = &tax
	}
	if f.NetAmount != nil && f.TaxAmount != nil && f.TotalAmount != nil {
		calculated := f.NetAmount.Add(*f.TaxAmount)
		diff := calculated.Sub(*f.TotalAmount).Abs()
		if diff.GreaterThan(v.cfg.TaxTolerance) {
			f.Warnings = append(f.Warnings, fmt.Sprintf(
				"inconsistent amounts: net (%s) + tax (%s) does not match total (%s)",
				f.NetAmount, f.TaxAmount, f.TotalAmount))
			review = true
		}
		if f.NetAmount.Sign() > 0 {
			rate, _ := f.TaxAmount.Div(*f.NetAmount).Mul(decimal.NewFromInt(100)).Float64()
			if !v.standardRate(rate) {
				f.Warnings = append(f.Warnings, fmt.Sprintf("unusual tax rate: %.1f%%", rate))
			}
		}
	}

	// 4. category inference; only rescored when absent or Other
	canon, known := constants.Canonicalize(f.Category)
	if !known || canon == constants.Other {
		text := f.VendorName + " " + f.Description + " " + filename
		if detected := constants.DetectFromText(text); detected != constants.Other {
			canon = detected
		}
	}
	f.Category = string(canon)

	// 5. confidence gating
	if f.Confidence < v.cfg.MinConfidence {
		review = true
	}

	// 6. line-item completion; never overwrites an extracted amount
	for i := range f.LineItems {
		item := &f.LineItems[i]
		if item.Amount == nil && item.UnitPrice != nil {
			qty := decimal.NewFromInt(1)
			if item.Quantity != nil {
				qty = *item.Quantity
			}
			amount := item.UnitPrice.Mul(qty).Round(2)
			item.Amount = &amount
		}
	}

	f.NeedsReview = review
	if len(f.Warnings) > 0 {
		v.log.Warn("validate.warnings", "count", len(f.Warnings), "warnings", f.Warnings)
	}
	return f
}

func (v *Validator) standardRate(rate float64) bool {
	for _, std := range v.cfg.StandardTaxRates {
		if math.Abs(rate-std) < v.cfg.RateTolerance {
			return true
		}
	}
	return false
}
