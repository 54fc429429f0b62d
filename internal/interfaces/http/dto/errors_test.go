package dto

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetHTTPStatus(t *testing.T) {
	tests := []struct {
		code   string
		status int
	}{
		{"NOT_FOUND", http.StatusNotFound},
		{"INVALID_INPUT", http.StatusBadRequest},
		{"VALIDATION_ERROR", http.StatusBadRequest},
		{"CATALOG_UNAVAILABLE", http.StatusServiceUnavailable},
		{"INFERENCE_ERROR", http.StatusBadGateway},
		{"PERSISTENCE_ERROR", http.StatusInternalServerError},
		{"PRODUCT_INACTIVE", http.StatusUnprocessableEntity},
		{"MATCH_IN_PROGRESS", http.StatusConflict},
		{"SOMETHING_NEW", http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			assert.Equal(t, tt.status, GetHTTPStatus(tt.code))
		})
	}
}

func TestNewValidationErrorResponse(t *testing.T) {
	resp := NewValidationErrorResponse("Request validation failed", "req-1", []ValidationDetail{
		{Field: "customer_name", Message: "This field is required"},
	})

	assert.False(t, resp.Success)
	assert.Equal(t, ErrCodeValidation, resp.Error.Code)
	assert.Equal(t, "req-1", resp.Error.RequestID)
	assert.Len(t, resp.Error.Details, 1)
}

func TestNewErrorResponseWithData(t *testing.T) {
	resp := NewErrorResponseWithData(ErrCodePersistence, "Failed to persist match record", "", map[string]int{"confidence": 100})

	assert.False(t, resp.Success)
	assert.NotNil(t, resp.Data)
	assert.Equal(t, ErrCodePersistence, resp.Error.Code)
}
