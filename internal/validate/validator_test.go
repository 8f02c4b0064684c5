package validate

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/expensio/receipt-scan/internal/vision"
)

func dec(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

// fixedNow pins the validator clock so future/stale checks are stable.
var fixedNow = time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

func testValidator(t *testing.T) *Validator {
	t.Helper()
	cfg := DefaultConfig()
	cfg.Now = func() time.Time { return fixedNow }
	return New(cfg, nil)
}

func TestValidateCleanInvoice(t *testing.T) {
	v := testValidator(t)
	out := v.Validate(vision.InvoiceFields{
		TotalAmount: dec("120.00"),
		NetAmount:   dec("100.00"),
		TaxAmount:   dec("20.00"),
		InvoiceDate: "2025-03-12",
		VendorName:  "SNCF",
		Category:    "Transport",
		Confidence:  0.92,
	}, "billet.pdf")

	assert.Empty(t, out.Warnings)
	assert.False(t, out.NeedsReview)
	assert.Equal(t, "12/03/2025", out.InvoiceDate)
	assert.Equal(t, "Transport", out.Category)
}

func TestValidateAmountBounds(t *testing.T) {
	tests := []struct {
		name        string
		amount      string
		wantWarning string
		wantReview  bool
	}{
		{"zero", "0.00", "negative or zero amount", true},
		{"negative", "-4.20", "negative or zero amount", true},
		{"very low", "0.30", "very low amount", true},
		{"very high", "60000.00", "very high amount", true},
		{"boundary low ok", "0.50", "", false},
		{"boundary high ok", "50000.00", "", false},
	}
	v := testValidator(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := v.Validate(vision.InvoiceFields{
				TotalAmount: dec(tt.amount),
				Confidence:  0.9,
			}, "")
			if tt.wantWarning == "" {
				assert.Empty(t, out.Warnings)
			} else {
				require.Len(t, out.Warnings, 1)
				assert.Contains(t, out.Warnings[0], tt.wantWarning)
			}
			assert.Equal(t, tt.wantReview, out.NeedsReview)
			// the extracted value itself is kept for audit
			assert.True(t, out.TotalAmount.Equal(decimal.RequireFromString(tt.amount)))
		})
	}
}

func TestValidateAmountRounding(t *testing.T) {
	v := testValidator(t)
	out := v.Validate(vision.InvoiceFields{
		TotalAmount: dec("19.999"),
		NetAmount:   dec("16.666"),
		TaxAmount:   dec("3.333"),
		Confidence:  0.9,
	}, "")
	assert.True(t, out.TotalAmount.Equal(decimal.RequireFromString("20.00")))
	assert.True(t, out.NetAmount.Equal(decimal.RequireFromString("16.67")))
	assert.True(t, out.TaxAmount.Equal(decimal.RequireFromString("3.33")))
}

func TestValidateFutureDate(t *testing.T) {
	v := testValidator(t)
	out := v.Validate(vision.InvoiceFields{
		TotalAmount: dec("45.90"),
		InvoiceDate: "15/02/2026",
		Confidence:  0.9,
	}, "")
	require.Len(t, out.Warnings, 1)
	assert.Contains(t, out.Warnings[0], "date in the future")
	assert.True(t, out.NeedsReview)
	assert.Equal(t, "15/02/2026", out.InvoiceDate)
}

func TestValidateStaleDateWarnsWithoutReview(t *testing.T) {
	v := testValidator(t)
	out := v.Validate(vision.InvoiceFields{
		TotalAmount: dec("45.90"),
		InvoiceDate: "01/01/2022",
		Confidence:  0.9,
	}, "")
	require.Len(t, out.Warnings, 1)
	assert.Contains(t, out.Warnings[0], "date older than 2 years")
	assert.False(t, out.NeedsReview)
}

func TestValidateUnparseableDateKept(t *testing.T) {
	v := testValidator(t)
	out := v.Validate(vision.InvoiceFields{
		TotalAmount: dec("45.90"),
		InvoiceDate: "sometime last week",
		Confidence:  0.9,
	}, "")
	assert.Equal(t, "sometime last week", out.InvoiceDate)
	assert.False(t, out.NeedsReview)
}

func TestValidateTaxConsistency(t *testing.T) {
	v := testValidator(t)

	t.Run("mismatch beyond tolerance", func(t *testing.T) {
		out := v.Validate(vision.InvoiceFields{
			TotalAmount: dec("120.00"),
			NetAmount:   dec("100.00"),
			TaxAmount:   dec("15.00"),
			Confidence:  0.9,
		}, "")
		require.NotEmpty(t, out.Warnings)
		assert.Contains(t, out.Warnings[0], "inconsistent amounts")
		assert.True(t, out.NeedsReview)
	})

	t.Run("within tolerance", func(t *testing.T) {
		out := v.Validate(vision.InvoiceFields{
			TotalAmount: dec("120.00"),
			NetAmount:   dec("100.00"),
			TaxAmount:   dec("19.95"),
			Confidence:  0.9,
		}, "")
		for _, w := range out.Warnings {
			assert.NotContains(t, w, "inconsistent amounts")
		}
		assert.False(t, out.NeedsReview)
	})
}

func TestValidateUnusualTaxRateWarnsWithoutReview(t *testing.T) {
	v := testValidator(t)
	// 13% is no standard rate; the sum itself is consistent
	out := v.Validate(vision.InvoiceFields{
		TotalAmount: dec("113.00"),
		NetAmount:   dec("100.00"),
		TaxAmount:   dec("13.00"),
		Confidence:  0.9,
	}, "")
	require.Len(t, out.Warnings, 1)
	assert.Contains(t, out.Warnings[0], "unusual tax rate: 13.0%")
	assert.False(t, out.NeedsReview)
}

func TestValidateStandardRatesWithinTolerance(t *testing.T) {
	tests := []struct {
		name string
		net  string
		tax  string
	}{
		{"20 percent", "100.00", "20.00"},
		{"10 percent", "100.00", "10.00"},
		{"5.5 percent", "100.00", "5.50"},
		{"near 20 percent", "100.00", "19.00"},
	}
	v := testValidator(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			total := decimal.RequireFromString(tt.net).Add(decimal.RequireFromString(tt.tax))
			out := v.Validate(vision.InvoiceFields{
				TotalAmount: &total,
				NetAmount:   dec(tt.net),
				TaxAmount:   dec(tt.tax),
				Confidence:  0.9,
			}, "")
			assert.Empty(t, out.Warnings)
		})
	}
}

func TestValidateCategoryInference(t *testing.T) {
	tests := []struct {
		name     string
		category string
		vendor   string
		filename string
		want     string
	}{
		{"kept when known", "Medical", "Hotel Mercure", "", "Medical"},
		{"inferred from vendor", "", "Pharmacie Centrale", "", "Medical"},
		{"inferred from filename", "Other", "", "facture_hotel.pdf", "Accommodation"},
		{"synonym canonicalized", "travel", "", "", "Transport"},
		{"nothing to infer", "", "ACME Corp", "scan.png", "Other"},
	}
	v := testValidator(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := v.Validate(vision.InvoiceFields{
				TotalAmount: dec("10.00"),
				Category:    tt.category,
				VendorName:  tt.vendor,
				Confidence:  0.9,
			}, tt.filename)
			assert.Equal(t, tt.want, out.Category)
		})
	}
}

func TestValidateConfidenceGate(t *testing.T) {
	v := testValidator(t)
	low := v.Validate(vision.InvoiceFields{TotalAmount: dec("10.00"), Confidence: 0.5}, "")
	assert.True(t, low.NeedsReview)
	assert.Empty(t, low.Warnings)

	high := v.Validate(vision.InvoiceFields{TotalAmount: dec("10.00"), Confidence: 0.8}, "")
	assert.False(t, high.NeedsReview)
}

func TestValidateReviewFlagSticks(t *testing.T) {
	// extractor-declared review is never cleared by clean data
	v := testValidator(t)
	out := v.Validate(vision.InvoiceFields{
		TotalAmount: dec("10.00"),
		Confidence:  0.95,
		NeedsReview: true,
	}, "")
	assert.True(t, out.NeedsReview)
}

func TestValidateLineItemCompletion(t *testing.T) {
	v := testValidator(t)
	qty := decimal.NewFromInt(3)
	extracted := decimal.RequireFromString("99.99")
	out := v.Validate(vision.InvoiceFields{
		TotalAmount: dec("10.00"),
		Confidence:  0.9,
		LineItems: []vision.LineItem{
			{Description: "cafe", UnitPrice: dec("2.50"), Quantity: &qty},
			{Description: "croissant", UnitPrice: dec("1.20")},
			{Description: "menu", UnitPrice: dec("5.00"), Amount: &extracted},
			{Description: "pourboire"},
		},
	}, "")

	require.Len(t, out.LineItems, 4)
	assert.True(t, out.LineItems[0].Amount.Equal(decimal.RequireFromString("7.50")))
	// quantity defaults to 1
	assert.True(t, out.LineItems[1].Amount.Equal(decimal.RequireFromString("1.20")))
	// an extracted amount is never recomputed
	assert.True(t, out.LineItems[2].Amount.Equal(extracted))
	assert.Nil(t, out.LineItems[3].Amount)
}

func TestValidateWarningOrder(t *testing.T) {
	// rules run amount, date, tax; warnings accumulate in that order
	v := testValidator(t)
	out := v.Validate(vision.InvoiceFields{
		TotalAmount: dec("60000.00"),
		NetAmount:   dec("100.00"),
		TaxAmount:   dec("15.00"),
		InvoiceDate: "15/02/2026",
		Confidence:  0.9,
	}, "")
	require.Len(t, out.Warnings, 4)
	assert.Contains(t, out.Warnings[0], "very high amount")
	assert.Contains(t, out.Warnings[1], "date in the future")
	assert.Contains(t, out.Warnings[2], "inconsistent amounts")
	assert.Contains(t, out.Warnings[3], "unusual tax rate")
}
