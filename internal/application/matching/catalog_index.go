// Package matching resolves free-text order items to catalog products through
// an exact, fuzzy and AI-assisted cascade, and manages the resulting records.
package matching

import (
	"context"
	"sort"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/josa-ai/verve-noir-app/internal/domain/catalog"
	"github.com/josa-ai/verve-noir-app/internal/domain/matching"
	"github.com/josa-ai/verve-noir-app/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// ProductLister is the catalog read the index loads from
type ProductLister interface {
	ListActive(ctx context.Context) ([]catalog.Product, error)
}

// IndexConfig tunes fuzzy search
type IndexConfig struct {
	// SimilarityThreshold is the worst score (0 best, 1 worst) a candidate may have
	SimilarityThreshold float64
	// EditDistanceBudget is the largest per-token edit distance still counted as a match
	EditDistanceBudget int
}

// DefaultIndexConfig returns threshold 0.3 and budget 2
func DefaultIndexConfig() IndexConfig {
	return IndexConfig{SimilarityThreshold: 0.3, EditDistanceBudget: 2}
}

// IndexStats describes the current snapshot
type IndexStats struct {
	Loaded         bool      `json:"loaded"`
	Products       int       `json:"products"`
	DuplicateCodes []string  `json:"duplicate_codes"`
	LoadedAt       time.Time `json:"loaded_at"`
}

// snapshot is immutable once published
type snapshot struct {
	products   []catalog.Product
	docs       []document
	byCode     map[string]int
	byID       map[uuid.UUID]int
	duplicates []string
	loadedAt   time.Time
}

// CatalogIndex holds an in-memory snapshot of the active catalog. Readers never
// lock; Load builds a new snapshot and swaps it in atomically, so a resolver
// holding the previous one keeps a consistent view.
type CatalogIndex struct {
	source  ProductLister
	cfg     IndexConfig
	scorer  fuzzyScorer
	logger  *zap.Logger
	metrics *telemetry.MatchMetrics
	current atomic.Pointer[snapshot]
}

// NewCatalogIndex creates an unloaded index. Call Load before resolving.
func NewCatalogIndex(source ProductLister, cfg IndexConfig, logger *zap.Logger) *CatalogIndex {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CatalogIndex{
		source: source,
		cfg:    cfg,
		scorer: fuzzyScorer{editBudget: cfg.EditDistanceBudget},
		logger: logger.Named("catalog_index"),
	}
}

// SetMatchMetrics sets the metrics sink for snapshot sizes
func (idx *CatalogIndex) SetMatchMetrics(m *telemetry.MatchMetrics) {
	idx.metrics = m
}

// Load reads the active catalog and publishes a new snapshot. On failure the
// previous snapshot, if any, stays in service.
func (idx *CatalogIndex) Load(ctx context.Context) error {
	if idx.source == nil {
		return matching.ErrCatalogUnavailable.WithMessage("no catalog source configured")
	}
	products, err := idx.source.ListActive(ctx)
	if err != nil {
		idx.logger.Error("catalog load failed", zap.Error(err))
		return matching.ErrCatalogUnavailable.WithCause(err)
	}
	idx.LoadProducts(products)
	return nil
}

// Reload is Load under the name used by operators
func (idx *CatalogIndex) Reload(ctx context.Context) error {
	return idx.Load(ctx)
}

// LoadProducts publishes a snapshot built from products. Inactive products are
// skipped. When several products share a normalized code the first one in
// input order owns it for exact lookup and the collision is logged.
func (idx *CatalogIndex) LoadProducts(products []catalog.Product) {
	snap := &snapshot{
		products: make([]catalog.Product, 0, len(products)),
		byCode:   make(map[string]int, len(products)),
		byID:     make(map[uuid.UUID]int, len(products)),
		loadedAt: time.Now(),
	}
	seenDup := map[string]bool{}

	for _, p := range products {
		if !p.Active {
			continue
		}
		i := len(snap.products)
		snap.products = append(snap.products, p)
		snap.docs = append(snap.docs, newDocument(p.Code, p.Description))
		snap.byID[p.ID] = i

		key := normalizeCode(p.Code)
		if key == "" {
			continue
		}
		if owner, exists := snap.byCode[key]; exists {
			idx.logger.Warn("duplicate item code in active catalog",
				zap.String("code", key),
				zap.String("kept_product_id", snap.products[owner].ID.String()),
				zap.String("ignored_product_id", p.ID.String()),
			)
			if !seenDup[key] {
				seenDup[key] = true
				snap.duplicates = append(snap.duplicates, key)
			}
			continue
		}
		snap.byCode[key] = i
	}

	idx.current.Store(snap)
	idx.metrics.RecordCatalogLoad(context.Background(), len(snap.products), len(snap.duplicates))
	idx.logger.Info("catalog loaded",
		zap.Int("products", len(snap.products)),
		zap.Int("duplicate_codes", len(snap.duplicates)),
	)
}

func (idx *CatalogIndex) snapshot() (*snapshot, error) {
	snap := idx.current.Load()
	if snap == nil {
		return nil, matching.ErrCatalogUnavailable.WithMessage("catalog index has not been loaded")
	}
	return snap, nil
}

// FindByCode returns the product whose code equals code ignoring case and
// surrounding or repeated whitespace, or nil.
func (idx *CatalogIndex) FindByCode(code string) (*catalog.Product, error) {
	snap, err := idx.snapshot()
	if err != nil {
		return nil, err
	}
	key := normalizeCode(code)
	if key == "" {
		return nil, nil
	}
	i, ok := snap.byCode[key]
	if !ok {
		return nil, nil
	}
	p := snap.products[i]
	return &p, nil
}

// FindByID returns an active product by identifier, or nil.
func (idx *CatalogIndex) FindByID(id uuid.UUID) (*catalog.Product, error) {
	snap, err := idx.snapshot()
	if err != nil {
		return nil, err
	}
	i, ok := snap.byID[id]
	if !ok {
		return nil, nil
	}
	p := snap.products[i]
	return &p, nil
}

// Search returns up to limit candidates best first. A query without any
// searchable text returns the first limit products with no score; this keeps
// the cascade supplied with something to rank and is not a real match.
// limit <= 0 means no cap.
func (idx *CatalogIndex) Search(query string, limit int) ([]matching.Candidate, error) {
	snap, err := idx.snapshot()
	if err != nil {
		return nil, err
	}

	queryTokens := tokenize(query)
	if len(queryTokens) == 0 {
		return prefixCandidates(snap.products, limit), nil
	}

	normalized := normalize(query)
	type hit struct {
		pos   int
		score float64
	}
	hits := make([]hit, 0)
	for i, doc := range snap.docs {
		s := idx.scorer.score(normalized, queryTokens, doc)
		if s <= idx.cfg.SimilarityThreshold {
			hits = append(hits, hit{pos: i, score: s})
		}
	}
	sort.SliceStable(hits, func(a, b int) bool { return hits[a].score < hits[b].score })

	if limit > 0 && len(hits) > limit {
		hits = hits[:limit]
	}
	out := make([]matching.Candidate, len(hits))
	for i, h := range hits {
		score := h.score
		out[i] = matching.Candidate{Product: snap.products[h.pos], Score: &score}
	}
	return out, nil
}

func prefixCandidates(products []catalog.Product, limit int) []matching.Candidate {
	n := len(products)
	if limit > 0 && n > limit {
		n = limit
	}
	out := make([]matching.Candidate, n)
	for i := 0; i < n; i++ {
		out[i] = matching.Candidate{Product: products[i]}
	}
	return out
}

// Stats describes the current snapshot
func (idx *CatalogIndex) Stats() IndexStats {
	snap := idx.current.Load()
	if snap == nil {
		return IndexStats{}
	}
	return IndexStats{
		Loaded:         true,
		Products:       len(snap.products),
		DuplicateCodes: append([]string(nil), snap.duplicates...),
		LoadedAt:       snap.loadedAt,
	}
}

// Run reloads the catalog every interval until ctx is done. Failed reloads
// are logged and the previous snapshot keeps serving.
func (idx *CatalogIndex) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := idx.Load(ctx); err != nil && ctx.Err() == nil {
				idx.logger.Warn("periodic catalog reload failed, keeping previous snapshot", zap.Error(err))
			}
		}
	}
}
