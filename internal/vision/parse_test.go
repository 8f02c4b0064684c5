package vision

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testCategories = []string{
	"Transport", "Accommodation", "Food/Dining", "Medical",
	"Equipment", "Services", "Other",
}

const goodResponse = `{
  "total_amount": 24.50,
  "net_amount": null,
  "tax_amount": null,
  "currency": "EUR",
  "invoice_number": "F-2024-001",
  "invoice_date": "12/03/2024",
  "vendor_name": "Brasserie du Parc",
  "vendor_address": null,
  "category": "Food/Dining",
  "line_items": [],
  "confidence": 0.92,
  "needs_review": false,
  "description": "lunch receipt"
}`

func TestParseResponsePlainJSON(t *testing.T) {
	fields, _, err := ParseResponse(goodResponse, testCategories, nil)
	require.NoError(t, err)
	require.NotNil(t, fields.TotalAmount)
	assert.True(t, fields.TotalAmount.Equal(decimal.RequireFromString("24.50")))
	assert.Nil(t, fields.NetAmount)
	assert.Equal(t, "Brasserie du Parc", fields.VendorName)
	assert.Equal(t, "Food/Dining", fields.Category)
	assert.InDelta(t, 0.92, float64(fields.Confidence), 1e-6)
	assert.False(t, fields.NeedsReview)
}

func TestParseResponseStripsFences(t *testing.T) {
	wrapped := "Here is the extraction:\n```json\n" + goodResponse + "\n```\nLet me know if you need anything else."
	fields, _, err := ParseResponse(wrapped, testCategories, nil)
	require.NoError(t, err)
	assert.Equal(t, "Brasserie du Parc", fields.VendorName)
}

func TestParseResponseBareFences(t *testing.T) {
	wrapped := "```\n" + goodResponse + "\n```"
	fields, _, err := ParseResponse(wrapped, testCategories, nil)
	require.NoError(t, err)
	assert.Equal(t, "F-2024-001", fields.InvoiceNumber)
}

func TestParseResponseBraceScan(t *testing.T) {
	wrapped := "The document shows: " + goodResponse + " -- end of answer"
	_, _, err := ParseResponse(wrapped, testCategories, nil)
	assert.NoError(t, err)
}

func TestParseResponseLenientSanitize(t *testing.T) {
	// string amounts with comma decimals, a synonym key and an unknown key
	messy := `{
	  "total": "125,50",
	  "net_amount": "104,58",
	  "tax_amount": 20.92,
	  "merchant": "SNCF",
	  "invoice_date": "2024-03-12",
	  "category": "Transport",
	  "confidence": 0.8,
	  "needs_review": "false",
	  "thinking": "I looked at the header first"
	}`
	fields, _, err := ParseResponse(messy, testCategories, nil)
	require.NoError(t, err)
	require.NotNil(t, fields.TotalAmount)
	assert.True(t, fields.TotalAmount.Equal(decimal.RequireFromString("125.5")))
	assert.Equal(t, "SNCF", fields.VendorName)
	assert.False(t, fields.NeedsReview)
}

func TestParseResponseNoObject(t *testing.T) {
	_, _, err := ParseResponse("I could not read this document, sorry.", testCategories, nil)
	assert.Error(t, err)
}

func TestParseResponseUnrepairable(t *testing.T) {
	// required keys missing entirely
	_, _, err := ParseResponse(`{"note": "unreadable"}`, testCategories, nil)
	assert.Error(t, err)
}

func TestLenientSanitizeLineItems(t *testing.T) {
	doc := []byte(`{
	  "total_amount": 30,
	  "invoice_date": "01/01/2024",
	  "vendor_name": "Shop",
	  "confidence": 0.9,
	  "needs_review": false,
	  "line_items": [
	    {"description": "widget", "quantity": "2", "unit_price": "7,50", "amount": null, "note": "x"},
	    "not an object"
	  ]
	}`)
	out, changed, err := LenientSanitize(doc)
	require.NoError(t, err)
	assert.NotEmpty(t, changed)
	assert.NoError(t, ValidateJSONAgainstSchema(BuildInvoiceJSONSchema(testCategories), out))
}
