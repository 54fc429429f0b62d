package dto

import "net/http"

// Error codes returned in Response.Error.Code. Domain error codes pass
// through unchanged; the transport adds a few of its own.
const (
	ErrCodeInternal         = "INTERNAL_ERROR"
	ErrCodeValidation       = "VALIDATION_ERROR"
	ErrCodeBadRequest       = "BAD_REQUEST"
	ErrCodeInvalidJSON      = "INVALID_JSON"
	ErrCodeRequestTooLarge  = "REQUEST_TOO_LARGE"
	ErrCodeRouteNotFound    = "ROUTE_NOT_FOUND"
	ErrCodeNotFound         = "NOT_FOUND"
	ErrCodeAlreadyExists    = "ALREADY_EXISTS"
	ErrCodeConflict         = "CONFLICT"
	ErrCodeInvalidInput     = "INVALID_INPUT"
	ErrCodeInvalidState     = "INVALID_STATE"
	ErrCodeCatalogDown      = "CATALOG_UNAVAILABLE"
	ErrCodeInference        = "INFERENCE_ERROR"
	ErrCodePersistence      = "PERSISTENCE_ERROR"
	ErrCodeMatchInProgress  = "MATCH_IN_PROGRESS"
	ErrCodeProductInactive  = "PRODUCT_INACTIVE"
	ErrCodeInvalidStatus    = "INVALID_STATUS"
	ErrCodeInvalidThreshold = "INVALID_THRESHOLDS"
	ErrCodeUnavailable      = "SERVICE_UNAVAILABLE"
)

// ErrorCodeHTTPStatus maps error codes to HTTP status codes
var ErrorCodeHTTPStatus = map[string]int{
	ErrCodeInternal: http.StatusInternalServerError,

	ErrCodeValidation:      http.StatusBadRequest,
	ErrCodeBadRequest:      http.StatusBadRequest,
	ErrCodeInvalidJSON:     http.StatusBadRequest,
	ErrCodeInvalidInput:    http.StatusBadRequest,
	ErrCodeInvalidStatus:   http.StatusBadRequest,
	ErrCodeRequestTooLarge: http.StatusRequestEntityTooLarge,

	ErrCodeNotFound:      http.StatusNotFound,
	ErrCodeRouteNotFound: http.StatusNotFound,

	ErrCodeAlreadyExists:   http.StatusConflict,
	ErrCodeConflict:        http.StatusConflict,
	ErrCodeMatchInProgress: http.StatusConflict,

	ErrCodeInvalidState:    http.StatusUnprocessableEntity,
	ErrCodeProductInactive: http.StatusUnprocessableEntity,

	ErrCodeInference:   http.StatusBadGateway,
	ErrCodeCatalogDown: http.StatusServiceUnavailable,
	ErrCodeUnavailable: http.StatusServiceUnavailable,

	ErrCodePersistence:      http.StatusInternalServerError,
	ErrCodeInvalidThreshold: http.StatusInternalServerError,
}

// GetHTTPStatus returns the HTTP status code for an error code
// Returns 500 Internal Server Error if the error code is not found
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}
