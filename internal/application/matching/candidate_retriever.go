package matching

import (
	"github.com/josa-ai/verve-noir-app/internal/domain/matching"
)

// CandidateRetriever builds the shortlist handed to the AI stage
type CandidateRetriever struct {
	index *CatalogIndex
}

// NewCandidateRetriever creates a CandidateRetriever over index
func NewCandidateRetriever(index *CatalogIndex) *CandidateRetriever {
	return &CandidateRetriever{index: index}
}

// GetCandidates searches with the input's code and description joined by a
// space, best first. Inputs without text, and text that clears no product's
// similarity threshold, get the unscored catalog prefix instead, so the
// result is empty only when the catalog is.
func (r *CandidateRetriever) GetCandidates(in matching.Input, maxCandidates int) ([]matching.Candidate, error) {
	if maxCandidates <= 0 {
		return nil, nil
	}

	query := in.SearchText()
	candidates, err := r.index.Search(query, maxCandidates)
	if err != nil {
		return nil, err
	}
	if len(candidates) > 0 || query == "" {
		return candidates, nil
	}
	return r.index.Search("", maxCandidates)
}
