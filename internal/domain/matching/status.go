package matching

import "fmt"

// Status is the persisted review state of an order item's match
type Status string

const (
	StatusPending      Status = "pending"
	StatusAutoMatched  Status = "auto_matched"
	StatusManualReview Status = "manual_review"
	StatusConfirmed    Status = "confirmed"
	StatusRejected     Status = "rejected"
)

// ParseStatus validates a raw status string
func ParseStatus(s string) (Status, error) {
	st := Status(s)
	switch st {
	case StatusPending, StatusAutoMatched, StatusManualReview, StatusConfirmed, StatusRejected:
		return st, nil
	}
	return "", ErrInvalidStatus.WithMessage(fmt.Sprintf("unknown match status %q", s))
}

// Thresholds drives automatic classification.
// QuickReview is carried for configuration compatibility; confidences below
// AutoAccept classify as manual review whichever side of QuickReview they fall.
type Thresholds struct {
	AutoAccept  int
	QuickReview int
}

// DefaultThresholds returns 85 / 60
func DefaultThresholds() Thresholds {
	return Thresholds{AutoAccept: 85, QuickReview: 60}
}

// Classify maps a confidence to a persisted status
func (t Thresholds) Classify(confidence int) Status {
	if confidence >= t.AutoAccept {
		return StatusAutoMatched
	}
	return StatusManualReview
}

// Validate checks threshold ordering and range
func (t Thresholds) Validate() error {
	if t.AutoAccept < 0 || t.AutoAccept > 100 {
		return ErrInvalidThresholds.WithMessage("auto accept threshold must be within 0-100")
	}
	if t.QuickReview < 0 || t.QuickReview > 100 {
		return ErrInvalidThresholds.WithMessage("quick review threshold must be within 0-100")
	}
	if t.QuickReview > t.AutoAccept {
		return ErrInvalidThresholds.WithMessage("quick review threshold cannot exceed auto accept threshold")
	}
	return nil
}
