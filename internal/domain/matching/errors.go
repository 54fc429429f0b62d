package matching

import "github.com/josa-ai/verve-noir-app/internal/domain/shared"

// Matching error taxonomy
var (
	// ErrCatalogUnavailable means the index could not be loaded; no resolution
	// is possible until a reload succeeds.
	ErrCatalogUnavailable = shared.NewDomainError("CATALOG_UNAVAILABLE", "Product catalog is unavailable")

	// ErrInference covers failed, timed out and unparseable inference calls.
	// The orchestrator recovers from it through the fuzzy fallback.
	ErrInference = shared.NewDomainError("INFERENCE_ERROR", "Inference call failed")

	// ErrPersistence means a decision was computed but could not be written.
	ErrPersistence = shared.NewDomainError("PERSISTENCE_ERROR", "Failed to persist match record")

	ErrMatchInProgress   = shared.NewDomainError("MATCH_IN_PROGRESS", "Another match operation is running for this item")
	ErrProductInactive   = shared.NewDomainError("PRODUCT_INACTIVE", "Product is not active")
	ErrInvalidStatus     = shared.NewDomainError("INVALID_STATUS", "Invalid match status")
	ErrInvalidThresholds = shared.NewDomainError("INVALID_THRESHOLDS", "Invalid confidence thresholds")
)
