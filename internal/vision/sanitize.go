package vision

import (
	"encoding/json"
	"fmt"
	"maps"
	"strconv"
	"strings"
)

var moneyFields = []string{"total_amount", "net_amount", "tax_amount"}

// LenientSanitize gives an almost-valid response a second chance:
// - renames known key synonyms onto the schema
// - coerces string amounts (incl. comma decimals) to numbers
// - clamps confidence into [0,1] and coerces needs_review to a boolean
// - removes unknown keys (additionalProperties is strict)
// It only repairs shape; it never invents values.
func LenientSanitize(doc []byte) ([]byte, []string, error) {
	var m map[string]any
	if err := json.Unmarshal(doc, &m); err != nil {
		return nil, nil, fmt.Errorf("decode: %w", err)
	}

	changed := make([]string, 0, 8)
	rename := func(from, to string) {
		if v, ok := m[from]; ok {
			if _, exists := m[to]; !exists {
				m[to] = v
			}
			delete(m, from)
			changed = append(changed, from+"->"+to)
		}
	}

	// key synonyms the extractor drifts into
	rename("amount", "total_amount")
	rename("total", "total_amount")
	rename("montant_total", "total_amount")
	rename("subtotal", "net_amount")
	rename("net", "net_amount")
	rename("tax", "tax_amount")
	rename("vat", "tax_amount")
	rename("tva", "tax_amount")
	rename("date", "invoice_date")
	rename("invoice_no", "invoice_number")
	rename("vendor", "vendor_name")
	rename("merchant", "vendor_name")
	rename("merchant_name", "vendor_name")
	rename("supplier", "vendor_name")
	rename("address", "vendor_address")
	rename("items", "line_items")
	rename("lines", "line_items")
	rename("currency_code", "currency")

	for _, k := range moneyFields {
		if v, ok := m[k]; ok {
			if n, ok2 := coerceNumber(v); ok2 {
				if _, already := v.(float64); !already {
					changed = append(changed, k+"(number)")
				}
				m[k] = n
			} else if v != nil {
				m[k] = nil
				changed = append(changed, k+"(null)")
			}
		}
	}

	if v, ok := m["confidence"]; ok {
		n, ok2 := coerceNumber(v)
		if !ok2 {
			n = 0
		}
		if n < 0 {
			n = 0
		}
		if n > 1 {
			n = 1
		}
		m["confidence"] = n
	}

	if v, ok := m["needs_review"]; ok {
		switch t := v.(type) {
		case bool:
		case string:
			m["needs_review"] = strings.EqualFold(strings.TrimSpace(t), "true")
			changed = append(changed, "needs_review(bool)")
		default:
			m["needs_review"] = true
			changed = append(changed, "needs_review(forced)")
		}
	}

	if items, ok := m["line_items"].([]any); ok {
		kept := make([]any, 0, len(items))
		for _, it := range items {
			row, ok := it.(map[string]any)
			if !ok {
				changed = append(changed, "line_items(row dropped)")
				continue
			}
			for _, k := range []string{"quantity", "unit_price", "amount"} {
				if v, present := row[k]; present {
					if n, ok2 := coerceNumber(v); ok2 {
						row[k] = n
					} else {
						row[k] = nil
					}
				}
			}
			for k := range maps.Clone(row) {
				switch k {
				case "description", "quantity", "unit_price", "amount":
				default:
					delete(row, k)
					changed = append(changed, "line_items."+k+"(unknown)")
				}
			}
			kept = append(kept, row)
		}
		m["line_items"] = kept
	}

	allowed := map[string]struct{}{
		"total_amount": {}, "net_amount": {}, "tax_amount": {}, "currency": {},
		"invoice_number": {}, "invoice_date": {}, "vendor_name": {}, "vendor_address": {},
		"category": {}, "line_items": {}, "confidence": {}, "needs_review": {},
		"description": {},
	}
	for k := range maps.Clone(m) {
		if _, ok := allowed[k]; !ok {
			delete(m, k)
			changed = append(changed, k+"(unknown)")
		}
	}

	out, err := json.Marshal(m)
	if err != nil {
		return nil, changed, fmt.Errorf("encode: %w", err)
	}
	return out, changed, nil
}

// coerceNumber accepts JSON numbers and numeric strings, including the
// comma-decimal spellings French receipts produce ("125,50").
func coerceNumber(v any) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, true
	case string:
		s := strings.TrimSpace(t)
		if s == "" || strings.EqualFold(s, "null") {
			return 0, false
		}
		s = strings.ReplaceAll(s, " ", "")
		s = strings.ReplaceAll(s, ",", ".")
		s = strings.TrimSuffix(strings.TrimPrefix(s, "€"), "€")
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return f, true
		}
	}
	return 0, false
}
