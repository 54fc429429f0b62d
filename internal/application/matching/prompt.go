package matching

import (
	"fmt"
	"strings"

	"github.com/josa-ai/verve-noir-app/internal/domain/matching"
)

const systemInstruction = "You are a product matching assistant for an order processing system. " +
	"Your task is to match order items to products from a catalog. Respond only with valid JSON."

func orNA(s string) string {
	if strings.TrimSpace(s) == "" {
		return "N/A"
	}
	return s
}

// buildPrompt renders the item and every candidate in retrieval order.
// The output depends only on its arguments.
func buildPrompt(in matching.Input, candidates []matching.Candidate) string {
	var b strings.Builder

	b.WriteString("Match this order item to the best product from the catalog:\n\n")
	b.WriteString("ORDER ITEM:\n")
	fmt.Fprintf(&b, "- Item Number: %s\n", orNA(in.ItemNumber))
	fmt.Fprintf(&b, "- Description: %s\n", orNA(in.Description))
	fmt.Fprintf(&b, "- Quantity: %d\n\n", in.Quantity)

	b.WriteString("CANDIDATE PRODUCTS:\n")
	for i, c := range candidates {
		if i > 0 {
			b.WriteString("\n")
		}
		p := c.Product
		fmt.Fprintf(&b, "%d. ID: %s\n", i+1, p.ID)
		fmt.Fprintf(&b, "   Item Number: %s\n", p.Code)
		fmt.Fprintf(&b, "   Description: %s\n", orNA(p.Description))
		fmt.Fprintf(&b, "   Price: $%s\n", p.Price.StringFixed(2))
	}

	b.WriteString(`
Instructions:
1. Compare the order item to each candidate product
2. Consider item number similarity, description similarity, and context
3. Return the ID of the best matching product
4. Provide a confidence score (0-100)
5. Explain your reasoning briefly

If no product matches well, return null for product_id.

Respond with ONLY this JSON format:
{
  "product_id": "uuid-string-or-null",
  "confidence": 85,
  "reasoning": "Brief explanation of why this matches"
}`)
	return b.String()
}
