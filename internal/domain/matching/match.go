// Package matching holds the value types of the item-to-product matching
// engine: inputs, candidates, results and the review status they classify into.
package matching

import (
	"strings"

	"github.com/google/uuid"
	"github.com/josa-ai/verve-noir-app/internal/domain/catalog"
)

// Method names the cascade stage that produced a result
type Method string

const (
	MethodExact Method = "exact"
	MethodFuzzy Method = "fuzzy"
	MethodAI    Method = "ai"
	MethodNone  Method = "none"
)

// IsValid checks if the method is a known value
func (m Method) IsValid() bool {
	switch m {
	case MethodExact, MethodFuzzy, MethodAI, MethodNone:
		return true
	}
	return false
}

// Input is the order item being resolved
type Input struct {
	ItemNumber  string
	Description string
	Quantity    int
	ImageURL    string
}

// NewInput trims text fields and defaults quantity to 1 when absent or non-positive
func NewInput(itemNumber, description string, quantity int, imageURL string) Input {
	if quantity <= 0 {
		quantity = 1
	}
	return Input{
		ItemNumber:  strings.TrimSpace(itemNumber),
		Description: strings.TrimSpace(description),
		Quantity:    quantity,
		ImageURL:    strings.TrimSpace(imageURL),
	}
}

// HasText reports whether the input carries a code or a description
func (in Input) HasText() bool {
	return strings.TrimSpace(in.ItemNumber) != "" || strings.TrimSpace(in.Description) != ""
}

// SearchText joins the trimmed code and description with a single space
func (in Input) SearchText() string {
	parts := make([]string, 0, 2)
	if s := strings.TrimSpace(in.ItemNumber); s != "" {
		parts = append(parts, s)
	}
	if s := strings.TrimSpace(in.Description); s != "" {
		parts = append(parts, s)
	}
	return strings.Join(parts, " ")
}

// Candidate is a proposed product with its fuzzy score.
// Score is in [0,1] where 0 is a perfect match; nil when the candidate came
// from the empty-query fallback and carries no similarity information.
type Candidate struct {
	Product catalog.Product
	Score   *float64
}

// HasScore reports whether the candidate carries a usable similarity score
func (c Candidate) HasScore() bool {
	return c.Score != nil
}

// Result is the outcome of one match attempt. It is a value; never mutate a
// Result after it has been produced.
type Result struct {
	ProductID  *uuid.UUID `json:"matched_product_id"`
	Confidence int        `json:"confidence"`
	Method     Method     `json:"method"`
	Reasoning  string     `json:"reasoning"`
}

// Matched reports whether the result points at a product
func (r Result) Matched() bool {
	return r.ProductID != nil
}

// NoMatch builds a method=none result
func NoMatch(reasoning string) Result {
	return Result{Confidence: 0, Method: MethodNone, Reasoning: reasoning}
}

// ClampConfidence rounds into the integer range [0,100]
func ClampConfidence(v int) int {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
