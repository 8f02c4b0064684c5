package vision

import "strings"

// BuildSystemPrompt composes the extraction rule set: total-amount priority,
// date canonicalization, header-region vendor, net/tax self-check, the
// category enum, the confidence rubric, and the no-invention rule.
func BuildSystemPrompt(allowedCategories []string, defaultCurrency string) string {
	defCur := strings.TrimSpace(defaultCurrency)
	if defCur == "" {
		defCur = "EUR"
	}
	catLine := "Classify into exactly one of the allowed categories (enum): " +
		strings.Join(allowedCategories, ", ") + ". Use null if none fits."

	parts := []string{
		"You are an expert accountant specialized in extracting data from invoices, till receipts and expense notes. Extract every field with maximum precision.",

		// total is the critical field
		"TOTAL AMOUNT (absolute priority): it is the final amount the client pays, incl. tax. Look for 'TOTAL', 'TOTAL TTC', 'NET A PAYER', 'A PAYER', 'MONTANT TOTAL', 'SOMME'; usually bold, larger, near the bottom. Cross-check this amount three times before answering. Never confuse it with a subtotal or a discounted line.",

		"INVOICE DATE: look near 'Date', 'Le', or the top of the document. Accepted input forms: DD/MM/YYYY, DD-MM-YYYY, DD.MM.YYYY, YYYY-MM-DD, or spelled out like '15 janvier 2024'. Always return DD/MM/YYYY.",

		"NET AND TAX AMOUNTS (if present): net_amount is the pre-tax amount, tax_amount is the VAT. Self-check that net_amount + tax_amount is within 0.10 of total_amount.",

		"VENDOR: the issuing business name, taken from the header region (may be a logo or stamp). Never the client or recipient fields.",

		"LINE ITEMS: zero or more rows with description, quantity, unit_price and amount when visible.",

		catLine,

		"CURRENCY: 3-letter code, default " + defCur + "; look for currency symbols.",

		"CONFIDENCE: 0.95+ perfectly readable; 0.80-0.94 good with minor doubts; 0.60-0.79 average, verification recommended; below 0.60 poor quality.",

		"Set needs_review to true when confidence is below 0.8 or any doubt remains.",

		// critical hygiene
		"If an information is NOT visible, return null - never invent a value.",
		"Amounts are always decimal numbers with a point (125.50, not 125,50).",
	}
	return strings.Join(parts, " ")
}

// BuildUserPrompt is the per-call instruction referencing the attached page.
// The JSON shape is spelled out explicitly; the schema is also enforced
// server-side after parsing.
func BuildUserPrompt() string {
	return `Analyze this invoice/receipt image and extract the data as JSON.

Respond ONLY with this JSON (no text before or after):

{
  "total_amount": <number, incl. tax - check it three times>,
  "net_amount": <number or null>,
  "tax_amount": <number or null>,
  "currency": "EUR",
  "invoice_number": "<number or null>",
  "invoice_date": "<DD/MM/YYYY>",
  "vendor_name": "<issuing business name>",
  "vendor_address": "<full address or null>",
  "category": "<Transport|Accommodation|Food/Dining|Medical|Equipment|Services|Other>",
  "line_items": [
    {
      "description": "<item description>",
      "quantity": <number>,
      "unit_price": <number or null>,
      "amount": <number>
    }
  ],
  "confidence": <0.0 to 1.0>,
  "needs_review": <true or false>,
  "description": "<short summary of the document>"
}

The total_amount must be exact. It is the single most important field.`
}
