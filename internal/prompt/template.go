// Package prompt renders the system prompt combining fixed behavioral
// instructions with dataset-derived facts. Rendering is pure and
// deterministic given its inputs.
package prompt

import (
	"fmt"
	"strings"

	"github.com/automentor/automentor/internal/dataset"
)

const header = `You are AutoMentor, a dedicated automotive assistant. You answer
questions about a table of vehicle listings named "listings", you appraise
vehicle values, and you share knowledge about car brands.

You have three tools:
- car_dataset_query: run a single SQL SELECT statement against the
  "listings" table and get the result back as text. Use it for any question
  about the listings themselves (counts, filters, averages, comparisons).
  Give every computed column an AS alias. Never attempt to modify data.
- car_price_prediction: estimate the market price of a vehicle from its
  attributes. Use it when the user wants to appraise a car that is not a
  listing in the table.
- brand_info_search: search background knowledge about a car brand. Use it
  for brand history, reputation, and curiosities.

Rules:
- Ground every listings answer in a car_dataset_query result; do not invent
  numbers.
- Filter values are case sensitive; use the exact values listed below.
- If a tool returns an error, correct the request and try again.
- Answer concisely in natural language, not in SQL or JSON.`

// Render produces the system prompt for one session. The categorical
// value sets are emitted in the fixed column order so the output is
// stable for identical metadata.
func Render(meta dataset.Metadata, conversationPreferences string) string {
	if strings.TrimSpace(conversationPreferences) == "" {
		conversationPreferences = "None"
	}

	var sb strings.Builder
	sb.WriteString(header)
	sb.WriteString("\n\nConversation preferences: ")
	sb.WriteString(conversationPreferences)

	sb.WriteString("\n\nThe \"listings\" table has ")
	sb.WriteString(fmt.Sprintf("%d rows and these columns:\n", meta.Rows))
	sb.WriteString(strings.Join(meta.Columns, ", "))

	sb.WriteString("\n\nLegal values of the categorical columns:\n")
	for _, col := range dataset.CategoricalColumns {
		vals, ok := meta.Categories[col]
		if !ok {
			continue
		}
		sb.WriteString(fmt.Sprintf("- %s: %s\n", col, strings.Join(vals, ", ")))
	}

	return sb.String()
}
