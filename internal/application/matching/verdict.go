package matching

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"github.com/google/uuid"
)

// ExtractJSONObject returns the first balanced, valid JSON object embedded in
// text. Prose before or after the object, and braces inside JSON strings, are
// tolerated. It returns false when text holds no valid object.
//
// The scan is a single pass. Quotes outside any object are treated as prose.
// When an outermost object is invalid its inner objects are not considered;
// objects nested in a brace that never closes are.
func ExtractJSONObject(text string) (string, bool) {
	type span struct{ start, end int }
	type frame struct {
		start  int
		closed []span
	}

	var stack []frame
	inString := false
	escaped := false

	for i := 0; i < len(text); i++ {
		c := text[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			if len(stack) > 0 {
				inString = true
			}
		case '{':
			stack = append(stack, frame{start: i})
		case '}':
			if len(stack) == 0 {
				continue
			}
			top := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			if len(stack) == 0 {
				if candidate := text[top.start : i+1]; json.Valid([]byte(candidate)) {
					return candidate, true
				}
				continue
			}
			parent := &stack[len(stack)-1]
			parent.closed = append(parent.closed, span{top.start, i + 1})
		}
	}

	// unterminated braces: try the objects they enclose, outermost first
	for _, f := range stack {
		for _, sp := range f.closed {
			if candidate := text[sp.start:sp.end]; json.Valid([]byte(candidate)) {
				return candidate, true
			}
		}
	}
	return "", false
}

// verdict is the model's decision after defensive parsing
type verdict struct {
	ProductID  *uuid.UUID
	Confidence int
	Reasoning  string
}

const defaultReasoning = "AI match"

// parseVerdict decodes {product_id, confidence, reasoning}. Missing or odd
// values never fail the parse: confidence is rounded and clamped into
// [0,100], an unusable product_id becomes nil.
func parseVerdict(object string) (verdict, error) {
	dec := json.NewDecoder(bytes.NewReader([]byte(object)))
	dec.UseNumber()

	var raw map[string]any
	if err := dec.Decode(&raw); err != nil {
		return verdict{}, err
	}

	v := verdict{
		Confidence: confidenceValue(raw["confidence"]),
		Reasoning:  defaultReasoning,
	}
	if s, ok := raw["product_id"].(string); ok {
		if id, err := uuid.Parse(strings.TrimSpace(s)); err == nil {
			v.ProductID = &id
		}
	}
	if s, ok := raw["reasoning"].(string); ok && strings.TrimSpace(s) != "" {
		v.Reasoning = strings.TrimSpace(s)
	}
	return v, nil
}

func confidenceValue(raw any) int {
	var f float64
	switch v := raw.(type) {
	case json.Number:
		parsed, err := v.Float64()
		if err != nil {
			return 0
		}
		f = parsed
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSuffix(strings.TrimSpace(v), "%"), 64)
		if err != nil {
			return 0
		}
		f = parsed
	default:
		return 0
	}
	if math.IsNaN(f) {
		return 0
	}
	f = math.Round(f)
	if f <= 0 {
		return 0
	}
	if f >= 100 {
		return 100
	}
	return int(f)
}
