package vision

// BuildInvoiceJSONSchema returns a JSON-Schema (draft 2020-12 subset) as a
// generic map. Parsed responses are validated against it locally; optionals
// may be null because the extractor is told to never invent values.
func BuildInvoiceJSONSchema(allowedCategories []string) map[string]any {
	catProp := map[string]any{"type": []string{"string", "null"}}
	if len(allowedCategories) > 0 {
		enum := make([]any, 0, len(allowedCategories)+1)
		for _, c := range allowedCategories {
			enum = append(enum, c)
		}
		enum = append(enum, nil)
		catProp["enum"] = enum
	}

	props := map[string]any{
		"total_amount":   nullableNumber(),
		"net_amount":     nullableNumber(),
		"tax_amount":     nullableNumber(),
		"currency":       map[string]any{"type": []string{"string", "null"}, "minLength": 3, "maxLength": 3},
		"invoice_number": map[string]any{"type": []string{"string", "null"}},
		"invoice_date":   map[string]any{"type": []string{"string", "null"}},
		"vendor_name":    map[string]any{"type": []string{"string", "null"}},
		"vendor_address": map[string]any{"type": []string{"string", "null"}},
		"category":       catProp,
		"line_items": map[string]any{
			"type": []string{"array", "null"},
			"items": map[string]any{
				"type":                 "object",
				"additionalProperties": false,
				"properties": map[string]any{
					"description": map[string]any{"type": []string{"string", "null"}},
					"quantity":    nullableNumber(),
					"unit_price":  nullableNumber(),
					"amount":      nullableNumber(),
				},
			},
		},
		"confidence":   map[string]any{"type": "number", "minimum": 0.0, "maximum": 1.0},
		"needs_review": map[string]any{"type": "boolean"},
		"description":  map[string]any{"type": []string{"string", "null"}},
	}

	return map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"properties":           props,
		"required":             []string{"total_amount", "invoice_date", "vendor_name", "confidence", "needs_review"},
	}
}

func nullableNumber() map[string]any {
	return map[string]any{"type": []string{"number", "null"}}
}
