package enrich

import (
	"fmt"
	"sort"
	"strings"

	"github.com/trolleyhq/trolley-backend/pkg/config"
	"github.com/trolleyhq/trolley-backend/pkg/enums"
)

// ContextTerm is a household-specific meaning for an ambiguous item
// name ("the usual bread" and similar shorthand).
type ContextTerm struct {
	Term    string `json:"term"`
	Meaning string `json:"meaning"`
}

// PromptOptions tune the item-processing prompt.
type PromptOptions struct {
	CustomInstructions string
	ContextTerms       []ContextTerm
	UseUKEnglish       bool
}

// PromptOptionsFromConfig materializes prompt tuning from the
// environment. Context terms are sorted so the assembled prompt is
// stable across runs, which keeps the enrichment cache effective.
func PromptOptionsFromConfig(cfg config.GeminiConfig) PromptOptions {
	opts := PromptOptions{
		CustomInstructions: cfg.CustomInstructions,
		UseUKEnglish:       cfg.UseUKEnglish,
	}
	for term, meaning := range cfg.ContextTerms {
		opts.ContextTerms = append(opts.ContextTerms, ContextTerm{Term: term, Meaning: meaning})
	}
	sort.Slice(opts.ContextTerms, func(i, j int) bool {
		return opts.ContextTerms[i].Term < opts.ContextTerms[j].Term
	})
	return opts
}

func categoriesClause() string {
	names := make([]string, 0, len(enums.Categories()))
	for _, c := range enums.Categories() {
		names = append(names, string(c))
	}
	return strings.Join(names, ", ")
}

// buildItemPrompt assembles the full instruction template for one item:
// spelling correction, capitalization, emoji, price estimate, and aisle
// category, returned as a single JSON object.
func buildItemPrompt(itemName string, opts PromptOptions) string {
	var b strings.Builder

	fmt.Fprintf(&b, "You are a UK shopping assistant helping to process grocery items.\n\nFor this item: '%s'", itemName)

	if opts.UseUKEnglish {
		b.WriteString("\n\nIMPORTANT: Use UK English spelling and terminology.\n")
		b.WriteString("Examples: colour (not color), flavour (not flavor), courgette (not zucchini), aubergine (not eggplant)")
	}

	if len(opts.ContextTerms) > 0 {
		b.WriteString("\n\nHOUSEHOLD CONTEXT (household-specific meanings):\n")
		for _, term := range opts.ContextTerms {
			fmt.Fprintf(&b, "- %q means %s\n", term.Term, term.Meaning)
		}
	}

	b.WriteString(`

TASK 1 - Spelling Correction:
- Correct any spelling mistakes
- If spelling is already correct, keep the original name
- Ensure proper spacing

TASK 2 - Capitalization:
- Capitalize the FIRST letter of EACH word

TASK 3 - Emoji Selection:
- Choose ONE emoji that best represents this item
- Use the most common, recognizable emoji for the item

TASK 4 - Price Estimation:
- Estimate the typical price at a large UK supermarket for this item
- Return price in GBP as a decimal number
- For unclear quantities, estimate for a typical single purchase unit
`)

	fmt.Fprintf(&b, `
TASK 5 - Categorization:
- Categorize into ONE of these UK shopping centre aisles: %s
- Use standard UK supermarket terminology`, categoriesClause())

	if custom := strings.TrimSpace(opts.CustomInstructions); custom != "" {
		fmt.Fprintf(&b, "\n\nADDITIONAL INSTRUCTIONS:\n%s", custom)
	}

	b.WriteString(`

Return ONLY valid JSON in this exact format:
{"correctedName": "Item Name With Proper Capitalization", "emoji": "🥛", "estimatedPrice": 1.25, "category": "Category Name"}`)

	return b.String()
}

// buildCategoryPrompt asks for the aisle of a single item, nothing else.
func buildCategoryPrompt(itemName string) string {
	return fmt.Sprintf(`Categorize this grocery item into ONE of these UK supermarket aisles: %s.

Item: %s

Return ONLY valid JSON in this exact format:
{"category": "Category Name"}`, categoriesClause(), itemName)
}

// buildPricePrompt asks for a GBP price estimate of a single item.
func buildPricePrompt(itemName string) string {
	return fmt.Sprintf(`You are a UK grocery pricing expert.

Estimate the typical current price at a large UK supermarket for: %s

- Estimate for a standard purchase unit/pack size
- Return price in GBP as a decimal number

Return ONLY valid JSON in this exact format:
{"estimatedPrice": 1.25}`, itemName)
}
