package vision

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// ParseResponse extracts the structured field map from a raw capability
// response. It strips markdown fences and surrounding prose, validates the
// embedded object against the invoice schema (with one lenient-sanitize
// second chance), and decodes it. A non-nil error means the caller should
// fall back to regex extraction; it is not fatal to the pipeline.
func ParseResponse(raw string, allowedCategories []string, logger *slog.Logger) (InvoiceFields, []byte, error) {
	if logger == nil {
		logger = slog.Default()
	}

	cleaned := stripWrappers(raw)
	if cleaned == "" {
		return InvoiceFields{}, nil, fmt.Errorf("no structured object in response")
	}
	doc := []byte(cleaned)

	schema := BuildInvoiceJSONSchema(allowedCategories)
	if err := ValidateJSONAgainstSchema(schema, doc); err != nil {
		// lenient pass: rename synonyms, coerce types, drop unknown keys
		sanitized, changed, sErr := LenientSanitize(doc)
		if sErr != nil {
			return InvoiceFields{}, doc, fmt.Errorf("sanitize: %w", sErr)
		}
		if vErr := ValidateJSONAgainstSchema(schema, sanitized); vErr != nil {
			return InvoiceFields{}, doc, fmt.Errorf("schema validation failed: %w", vErr)
		}
		logger.Warn("vision.parse.lenient_sanitize_applied", "changed", changed)
		doc = sanitized
	}

	var out InvoiceFields
	if err := json.Unmarshal(doc, &out); err != nil {
		return InvoiceFields{}, doc, fmt.Errorf("unmarshal fields: %w", err)
	}
	return out, doc, nil
}

// stripWrappers removes markdown fences and any prose around the outermost
// JSON object (first-open/last-close scan).
func stripWrappers(raw string) string {
	cleaned := strings.TrimSpace(raw)

	if idx := strings.Index(cleaned, "```json"); idx >= 0 {
		cleaned = cleaned[idx+len("```json"):]
		if end := strings.Index(cleaned, "```"); end >= 0 {
			cleaned = cleaned[:end]
		}
	} else if idx := strings.Index(cleaned, "```"); idx >= 0 {
		cleaned = cleaned[idx+len("```"):]
		if end := strings.Index(cleaned, "```"); end >= 0 {
			cleaned = cleaned[:end]
		}
	}
	cleaned = strings.TrimSpace(cleaned)

	first := strings.Index(cleaned, "{")
	last := strings.LastIndex(cleaned, "}")
	if first < 0 || last < first {
		return ""
	}
	return cleaned[first : last+1]
}

// ValidateJSONAgainstSchema validates "data" against "schemaMap".
func ValidateJSONAgainstSchema(schemaMap map[string]any, data []byte) error {
	b, err := json.Marshal(schemaMap)
	if err != nil {
		return fmt.Errorf("marshal schema: %w", err)
	}
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("schema.json", bytes.NewReader(b)); err != nil {
		return fmt.Errorf("add schema: %w", err)
	}
	schema, err := compiler.Compile("schema.json")
	if err != nil {
		return fmt.Errorf("compile schema: %w", err)
	}
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("unmarshal data: %w", err)
	}
	if err := schema.Validate(v); err != nil {
		return fmt.Errorf("json does not match schema: %w", err)
	}
	return nil
}
