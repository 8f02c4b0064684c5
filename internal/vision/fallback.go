package vision

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/expensio/receipt-scan/constants"
)

// Bounds for a plausible receipt total during regex recovery.
const (
	fallbackMinAmount = 0.01
	fallbackMaxAmount = 100000
)

// Amount tokens near keywords or currency markers. Totals are usually the
// largest figure on a receipt, so the largest plausible candidate wins.
// Known weakness: an oversized line item can beat the real total on
// ambiguous receipts; accepted as-is.
var fallbackAmountPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)"?total_amount"?[\s:]+(\d{1,6}[.,]\d{2})`),
	regexp.MustCompile(`(?i)(?:total(?:\s*ttc)?|montant|ttc|net\s*[àa]\s*payer|[àa]\s*payer|somme)\D{0,12}?(\d{1,6}[.,]\d{2})`),
	regexp.MustCompile(`(?i)(\d{1,6}[.,]\d{2})\s*(?:€|eur)`),
	regexp.MustCompile(`(?i)(?:€|eur)\s*(\d{1,6}[.,]\d{2})`),
}

var fallbackDatePatterns = []*regexp.Regexp{
	regexp.MustCompile(`\d{2}[/\-.]\d{2}[/\-.]\d{4}`),
	regexp.MustCompile(`\d{4}-\d{2}-\d{2}`),
	regexp.MustCompile(`(?i)\d{1,2}(?:er)?\s+[\p{L}éûî]+\s+\d{4}`),
}

// FallbackExtract recovers a minimal field map from non-structured text when
// JSON parsing fails. Only the total amount and date are recovered; the
// category comes from filename keywords, confidence is forced low and the
// record is always flagged for review. The boolean reports whether an
// amount was found, which is the success criterion for the attempt.
func FallbackExtract(text, filename string) (InvoiceFields, bool) {
	fields := InvoiceFields{
		Category:    string(constants.DetectFromText(filename)),
		Confidence:  0.3,
		NeedsReview: true,
	}
	if text == "" {
		return fields, false
	}

	var best float64
	found := false
	for _, re := range fallbackAmountPatterns {
		for _, m := range re.FindAllStringSubmatch(text, -1) {
			raw := strings.ReplaceAll(m[1], ",", ".")
			amount, err := strconv.ParseFloat(raw, 64)
			if err != nil {
				continue
			}
			if amount < fallbackMinAmount || amount > fallbackMaxAmount {
				continue
			}
			if amount > best {
				best = amount
				found = true
			}
		}
	}
	if found {
		d := decimal.NewFromFloat(best).Round(2)
		fields.TotalAmount = &d
	}

	for _, re := range fallbackDatePatterns {
		if m := re.FindString(text); m != "" {
			if normalized, ok := NormalizeDate(m); ok {
				fields.InvoiceDate = normalized
				break
			}
		}
	}

	return fields, found
}
