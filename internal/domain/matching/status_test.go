package matching

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestThresholds_Classify(t *testing.T) {
	th := DefaultThresholds()

	tests := []struct {
		confidence int
		want       Status
	}{
		{100, StatusAutoMatched},
		{85, StatusAutoMatched},
		{84, StatusManualReview},
		// between quick review and auto accept
		{70, StatusManualReview},
		{60, StatusManualReview},
		// below quick review still routes to the same queue
		{59, StatusManualReview},
		{0, StatusManualReview},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, th.Classify(tt.confidence), "confidence %d", tt.confidence)
	}
}

func TestThresholds_QuickReviewDoesNotChangeOutcome(t *testing.T) {
	low := Thresholds{AutoAccept: 85, QuickReview: 10}
	high := Thresholds{AutoAccept: 85, QuickReview: 80}

	for c := 0; c <= 100; c++ {
		assert.Equal(t, low.Classify(c), high.Classify(c), "confidence %d", c)
	}
}

func TestThresholds_Validate(t *testing.T) {
	assert.NoError(t, DefaultThresholds().Validate())
	assert.ErrorIs(t, Thresholds{AutoAccept: 101, QuickReview: 60}.Validate(), ErrInvalidThresholds)
	assert.ErrorIs(t, Thresholds{AutoAccept: 50, QuickReview: 60}.Validate(), ErrInvalidThresholds)
	assert.ErrorIs(t, Thresholds{AutoAccept: 85, QuickReview: -1}.Validate(), ErrInvalidThresholds)
}

func TestParseStatus(t *testing.T) {
	st, err := ParseStatus("manual_review")
	require.NoError(t, err)
	assert.Equal(t, StatusManualReview, st)

	_, err = ParseStatus("approved")
	assert.ErrorIs(t, err, ErrInvalidStatus)
}

func TestInput(t *testing.T) {
	in := NewInput("  VN-001 ", " black wallet ", 0, "")
	assert.Equal(t, 1, in.Quantity)
	assert.Equal(t, "VN-001 black wallet", in.SearchText())
	assert.True(t, in.HasText())

	empty := NewInput(" ", "", -3, "")
	assert.False(t, empty.HasText())
	assert.Equal(t, "", empty.SearchText())
	assert.Equal(t, 1, empty.Quantity)
}

func TestClampConfidence(t *testing.T) {
	assert.Equal(t, 0, ClampConfidence(-10))
	assert.Equal(t, 100, ClampConfidence(250))
	assert.Equal(t, 42, ClampConfidence(42))
}
