package matching

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractJSONObject(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
		ok   bool
	}{
		{name: "bare object", in: `{"a":1}`, want: `{"a":1}`, ok: true},
		{name: "leading and trailing prose", in: "Sure! Here you go:\n{\"a\":1}\nHope that helps.", want: `{"a":1}`, ok: true},
		{name: "markdown fence", in: "```json\n{\"a\": {\"b\": 2}}\n```", want: `{"a": {"b": 2}}`, ok: true},
		{name: "braces inside strings", in: `x {"r":"use } and { freely","q":"\"}"} y`, want: `{"r":"use } and { freely","q":"\"}"}`, ok: true},
		{name: "first of two objects", in: `{"a":1} then {"b":2}`, want: `{"a":1}`, ok: true},
		{name: "skips invalid leading braces", in: `{not json} {"a":1}`, want: `{"a":1}`, ok: true},
		{name: "unterminated", in: `{"a":1`, ok: false},
		{name: "object inside unterminated brace", in: `{ draft {"a":1} and more`, want: `{"a":1}`, ok: true},
		{name: "quote in leading prose", in: `He said "try {"a":1}`, want: `{"a":1}`, ok: true},
		{name: "no braces", in: "I could not decide.", ok: false},
		{name: "empty", in: "", ok: false},
		{name: "array only", in: `[1,2,3]`, ok: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ExtractJSONObject(tt.in)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestExtractJSONObject_LargeUnbalancedInput(t *testing.T) {
	// about 500 KB of objects that never close
	unbalanced := strings.Repeat(`{"a":`, 100000)

	start := time.Now()
	_, ok := ExtractJSONObject(unbalanced)
	assert.False(t, ok)

	got, ok := ExtractJSONObject(unbalanced + `{"b":1}`)
	assert.True(t, ok)
	assert.Equal(t, `{"b":1}`, got)

	_, ok = ExtractJSONObject(strings.Repeat("{", 200000) + strings.Repeat(`"}`, 50000))
	assert.False(t, ok)

	assert.Less(t, time.Since(start), 2*time.Second)
}

func FuzzExtractJSONObject(f *testing.F) {
	f.Add(`{"product_id": null, "confidence": 10}`)
	f.Add("prose {\"a\": \"}\"} more")
	f.Add(`{{{}}}`)
	f.Add(`"{"`)
	f.Fuzz(func(t *testing.T, s string) {
		got, ok := ExtractJSONObject(s)
		if !ok {
			return
		}
		if !json.Valid([]byte(got)) {
			t.Fatalf("extracted invalid JSON %q from %q", got, s)
		}
		if !strings.HasPrefix(got, "{") || !strings.HasSuffix(got, "}") {
			t.Fatalf("extracted non-object %q", got)
		}
		if !strings.Contains(s, got) {
			t.Fatalf("extracted text not present in input")
		}
	})
}

func TestParseVerdict(t *testing.T) {
	id := uuid.New()

	tests := []struct {
		name       string
		in         string
		wantID     *uuid.UUID
		confidence int
		reasoning  string
	}{
		{name: "complete", in: `{"product_id":"` + id.String() + `","confidence":91,"reasoning":"same code"}`, wantID: &id, confidence: 91, reasoning: "same code"},
		{name: "null product", in: `{"product_id":null,"confidence":20}`, confidence: 20, reasoning: defaultReasoning},
		{name: "negative clamps to zero", in: `{"confidence":-10}`, confidence: 0, reasoning: defaultReasoning},
		{name: "over range clamps to hundred", in: `{"confidence":250}`, confidence: 100, reasoning: defaultReasoning},
		{name: "fraction rounds", in: `{"confidence":84.5}`, confidence: 85, reasoning: defaultReasoning},
		{name: "numeric string", in: `{"confidence":"77%"}`, confidence: 77, reasoning: defaultReasoning},
		{name: "garbage confidence", in: `{"confidence":"high"}`, confidence: 0, reasoning: defaultReasoning},
		{name: "missing fields", in: `{}`, confidence: 0, reasoning: defaultReasoning},
		{name: "non uuid product", in: `{"product_id":"VN-001","confidence":90}`, confidence: 90, reasoning: defaultReasoning},
		{name: "blank reasoning", in: `{"reasoning":"  "}`, confidence: 0, reasoning: defaultReasoning},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, err := parseVerdict(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.wantID, v.ProductID)
			assert.Equal(t, tt.confidence, v.Confidence)
			assert.Equal(t, tt.reasoning, v.Reasoning)
		})
	}
}
