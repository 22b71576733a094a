package enrich

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/trolleyhq/trolley-backend/pkg/enums"
)

// Result is one validated enrichment outcome.
type Result struct {
	CorrectedName  string          `json:"correctedName"`
	Emoji          string          `json:"emoji"`
	Category       enums.Category  `json:"category"`
	EstimatedPrice decimal.Decimal `json:"estimatedPrice"`
}

// Fallback is the deterministic result used when the model is
// unreachable or returns something that fails strict decoding.
func Fallback(rawName string) Result {
	return Result{
		CorrectedName:  rawName,
		Emoji:          "🛒",
		Category:       enums.CategoryUncategorized,
		EstimatedPrice: decimal.Zero,
	}
}

type wireResult struct {
	CorrectedName  string          `json:"correctedName"`
	Emoji          string          `json:"emoji"`
	Category       string          `json:"category"`
	EstimatedPrice json.RawMessage `json:"estimatedPrice"`
}

// decodeResult strictly decodes a model response. The boolean is false
// for anything malformed: invalid JSON, unknown fields, an out-of-enum
// category, a negative price, or an empty name.
func decodeResult(rawName, text string) (Result, bool) {
	payload := stripFences(text)

	decoder := json.NewDecoder(bytes.NewReader([]byte(payload)))
	decoder.DisallowUnknownFields()
	var wire wireResult
	if err := decoder.Decode(&wire); err != nil {
		return Result{}, false
	}

	name := strings.TrimSpace(wire.CorrectedName)
	if name == "" {
		name = rawName
	}

	category := enums.Category(strings.TrimSpace(wire.Category))
	if !category.IsValid() || category == enums.CategoryUncategorized {
		// An out-of-enum category invalidates only the category, not
		// the rest of the answer.
		category = enums.CategoryUncategorized
	}

	price := decimal.Zero
	if len(wire.EstimatedPrice) > 0 {
		parsed, err := decimal.NewFromString(strings.Trim(string(wire.EstimatedPrice), `"`))
		if err != nil || parsed.IsNegative() {
			return Result{}, false
		}
		price = parsed
	}

	emoji := strings.TrimSpace(wire.Emoji)
	if emoji == "" {
		emoji = "🛒"
	}

	return Result{
		CorrectedName:  name,
		Emoji:          emoji,
		Category:       category,
		EstimatedPrice: price,
	}, true
}

// decodeCategory strictly decodes a category-only response.
func decodeCategory(text string) (enums.Category, bool) {
	payload := stripFences(text)

	decoder := json.NewDecoder(bytes.NewReader([]byte(payload)))
	decoder.DisallowUnknownFields()
	var wire struct {
		Category string `json:"category"`
	}
	if err := decoder.Decode(&wire); err != nil {
		return "", false
	}
	category := enums.Category(strings.TrimSpace(wire.Category))
	if !category.IsValid() || category == enums.CategoryUncategorized {
		return "", false
	}
	return category, true
}

// decodePrice strictly decodes a price-only response.
func decodePrice(text string) (decimal.Decimal, bool) {
	payload := stripFences(text)

	decoder := json.NewDecoder(bytes.NewReader([]byte(payload)))
	decoder.DisallowUnknownFields()
	var wire struct {
		EstimatedPrice json.RawMessage `json:"estimatedPrice"`
	}
	if err := decoder.Decode(&wire); err != nil {
		return decimal.Zero, false
	}
	if len(wire.EstimatedPrice) == 0 {
		return decimal.Zero, false
	}
	price, err := decimal.NewFromString(strings.Trim(string(wire.EstimatedPrice), `"`))
	if err != nil || price.IsNegative() {
		return decimal.Zero, false
	}
	return price, true
}

// stripFences removes markdown code fences some models wrap around
// JSON even when told not to.
func stripFences(text string) string {
	trimmed := strings.TrimSpace(text)
	if !strings.HasPrefix(trimmed, "```") {
		return trimmed
	}
	trimmed = strings.TrimPrefix(trimmed, "```json")
	trimmed = strings.TrimPrefix(trimmed, "```")
	trimmed = strings.TrimSuffix(strings.TrimSpace(trimmed), "```")
	return strings.TrimSpace(trimmed)
}
