package matching

import (
	"context"
	"errors"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/josa-ai/verve-noir-app/internal/domain/catalog"
	"github.com/josa-ai/verve-noir-app/internal/domain/matching"
	"github.com/josa-ai/verve-noir-app/internal/domain/order"
	"github.com/josa-ai/verve-noir-app/internal/domain/shared"
	"github.com/josa-ai/verve-noir-app/internal/infrastructure/logger"
	"github.com/josa-ai/verve-noir-app/internal/infrastructure/telemetry"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Ranker is the AI stage of the cascade
type Ranker interface {
	Rank(ctx context.Context, in matching.Input, candidates []matching.Candidate) (matching.Result, error)
}

// Config holds cascade policy
type Config struct {
	Thresholds    matching.Thresholds
	MaxCandidates int
	// LockTTL bounds how long one item stays locked if a holder dies
	LockTTL time.Duration
}

// DefaultConfig returns thresholds 85/60, ten candidates and a two minute lock
func DefaultConfig() Config {
	return Config{
		Thresholds:    matching.DefaultThresholds(),
		MaxCandidates: 10,
		LockTTL:       2 * time.Minute,
	}
}

// ItemMatch is a cascade result together with what was written for it
type ItemMatch struct {
	ItemID     uuid.UUID        `json:"item_id"`
	Position   int              `json:"position,omitempty"`
	Result     matching.Result  `json:"result"`
	Status     matching.Status  `json:"status"`
	FinalPrice *decimal.Decimal `json:"final_price"`
}

// BatchItemResult is one line of a batch run. Err is set when the item's
// record could not be written; Match is still populated in that case.
type BatchItemResult struct {
	Position int
	ItemID   uuid.UUID
	Match    *ItemMatch
	Err      error
}

// Orchestrator runs exact, candidate and AI stages for an item, classifies the
// outcome and writes the match record.
type Orchestrator struct {
	index     *CatalogIndex
	exact     *ExactResolver
	retriever *CandidateRetriever
	ranker    Ranker
	items     order.ItemRepository
	products  catalog.ProductRepository
	guard     itemGuard
	cfg       Config
	logger    *zap.Logger
	metrics   *telemetry.MatchMetrics
}

// OrchestratorOption configures optional collaborators
type OrchestratorOption func(*Orchestrator)

// WithLockStore serializes concurrent operations on the same item
func WithLockStore(store shared.LockStore) OrchestratorOption {
	return func(o *Orchestrator) {
		o.guard.store = store
	}
}

// WithMatchMetrics records match outcomes
func WithMatchMetrics(m *telemetry.MatchMetrics) OrchestratorOption {
	return func(o *Orchestrator) {
		o.metrics = m
	}
}

// NewOrchestrator wires the cascade. ranker may be nil, in which case every
// attempt that reaches the AI stage takes the fuzzy fallback.
func NewOrchestrator(
	index *CatalogIndex,
	ranker Ranker,
	items order.ItemRepository,
	products catalog.ProductRepository,
	cfg Config,
	log *zap.Logger,
	opts ...OrchestratorOption,
) *Orchestrator {
	if log == nil {
		log = zap.NewNop()
	}
	if cfg.MaxCandidates <= 0 {
		cfg.MaxCandidates = DefaultConfig().MaxCandidates
	}
	if cfg.LockTTL <= 0 {
		cfg.LockTTL = DefaultConfig().LockTTL
	}
	o := &Orchestrator{
		index:     index,
		exact:     NewExactResolver(index),
		retriever: NewCandidateRetriever(index),
		ranker:    ranker,
		items:     items,
		products:  products,
		cfg:       cfg,
		logger:    log.Named("orchestrator"),
	}
	o.guard = itemGuard{ttl: cfg.LockTTL, logger: o.logger}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Resolve runs the cascade without touching the store. It fails only when
// the catalog is unavailable or ctx is cancelled; inference failures degrade
// to a fuzzy or none result.
func (o *Orchestrator) Resolve(ctx context.Context, in matching.Input) (matching.Result, error) {
	product, err := o.exact.Resolve(in.ItemNumber)
	if err != nil {
		return matching.Result{}, err
	}
	if product != nil {
		id := product.ID
		return matching.Result{
			ProductID:  &id,
			Confidence: 100,
			Method:     matching.MethodExact,
			Reasoning:  "Exact item number match",
		}, nil
	}

	candidates, err := o.retriever.GetCandidates(in, o.cfg.MaxCandidates)
	if err != nil {
		return matching.Result{}, err
	}
	if len(candidates) == 0 {
		return matching.NoMatch("No candidate products found"), nil
	}

	var aiErr error
	if o.ranker != nil {
		result, err := o.ranker.Rank(ctx, in, candidates)
		if err == nil {
			return result, nil
		}
		aiErr = err
	} else {
		aiErr = matching.ErrInference.WithMessage("inference disabled")
	}

	// a cancelled caller gets no decision at all
	if ctxErr := ctx.Err(); ctxErr != nil {
		return matching.Result{}, ctxErr
	}

	result := fuzzyFallback(candidates)
	o.metrics.RecordFallback(ctx, string(result.Method))
	logger.FromContext(ctx).Warn("AI matching failed, falling back",
		zap.String("fallback_method", string(result.Method)),
		zap.Int("confidence", result.Confidence),
		zap.Error(aiErr),
	)
	return result, nil
}

// fuzzyFallback promotes the top candidate when it carries a score
func fuzzyFallback(candidates []matching.Candidate) matching.Result {
	top := candidates[0]
	if !top.HasScore() {
		return matching.NoMatch("matching failed")
	}
	id := top.Product.ID
	confidence := matching.ClampConfidence(int(math.Round((1 - *top.Score) * 100)))
	return matching.Result{
		ProductID:  &id,
		Confidence: confidence,
		Method:     matching.MethodFuzzy,
		Reasoning:  "Fuzzy match fallback (AI unavailable)",
	}
}

// classify applies thresholds; a result without a product never auto-matches
func (o *Orchestrator) classify(result matching.Result) matching.Status {
	if !result.Matched() {
		return matching.StatusManualReview
	}
	return o.cfg.Thresholds.Classify(result.Confidence)
}

// ProcessItem resolves in and overwrites the item's match record.
//
// When the write fails the computed match is returned together with an error
// wrapping matching.ErrPersistence (or shared.ErrNotFound if the item is
// gone): the decision stands but the stored record is stale.
func (o *Orchestrator) ProcessItem(ctx context.Context, itemID uuid.UUID, in matching.Input) (*ItemMatch, error) {
	var match *ItemMatch
	err := o.guard.run(ctx, itemID, func(ctx context.Context) error {
		var err error
		match, err = o.process(ctx, itemID, in)
		return err
	})
	return match, err
}

func (o *Orchestrator) process(ctx context.Context, itemID uuid.UUID, in matching.Input) (*ItemMatch, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "matching", "process_item", "item_id", itemID.String())
	defer span.End()

	in = matching.NewInput(in.ItemNumber, in.Description, in.Quantity, in.ImageURL)
	result, err := o.Resolve(ctx, in)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	match := &ItemMatch{
		ItemID:     itemID,
		Result:     result,
		Status:     o.classify(result),
		FinalPrice: o.priceOf(ctx, result.ProductID),
	}
	telemetry.SetAttributes(span, "method", string(result.Method), "status", string(match.Status))

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	update := order.AutomaticUpdate(result, match.Status, match.FinalPrice)
	if err := o.items.UpdateMatch(ctx, itemID, update); err != nil {
		telemetry.RecordError(span, err)
		logger.FromContext(ctx).Error("failed to persist match record",
			zap.String("item_id", itemID.String()), zap.Error(err))
		return match, persistenceError(err)
	}

	o.metrics.RecordMatch(ctx, string(result.Method), string(match.Status))
	logger.FromContext(ctx).Info("item matched",
		zap.String("item_id", itemID.String()),
		zap.String("method", string(result.Method)),
		zap.Int("confidence", result.Confidence),
		zap.String("status", string(match.Status)),
	)
	return match, nil
}

// priceOf reads the matched product's price from the snapshot, falling back
// to the store for products loaded after the snapshot was built.
func (o *Orchestrator) priceOf(ctx context.Context, productID *uuid.UUID) *decimal.Decimal {
	if productID == nil {
		return nil
	}
	if p, err := o.index.FindByID(*productID); err == nil && p != nil {
		price := p.Price
		return &price
	}
	if o.products == nil {
		return nil
	}
	p, err := o.products.FindByID(ctx, *productID)
	if err != nil {
		logger.FromContext(ctx).Warn("matched product price unavailable",
			zap.String("product_id", productID.String()), zap.Error(err))
		return nil
	}
	price := p.Price
	return &price
}

// persistenceError keeps not-found distinct from other store failures
func persistenceError(err error) error {
	if errors.Is(err, shared.ErrNotFound) {
		return err
	}
	var de *shared.DomainError
	if errors.As(err, &de) && de.Code == matching.ErrPersistence.Code {
		return err
	}
	return matching.ErrPersistence.WithCause(err)
}

// BatchProcess matches inputs against the items of orderID, input i going to
// the item at position i+1. Item identifiers are read with one query; items
// then run strictly one after another. A cancelled ctx stops the batch
// between items and returns the lines finished so far with ctx's error.
func (o *Orchestrator) BatchProcess(ctx context.Context, orderID uuid.UUID, inputs []matching.Input) ([]BatchItemResult, error) {
	items, err := o.items.FindByOrder(ctx, orderID)
	if err != nil {
		return nil, persistenceError(err)
	}
	byPosition := make(map[int]uuid.UUID, len(items))
	for _, it := range items {
		byPosition[it.Position] = it.ID
	}

	lines := make([]batchLine, len(inputs))
	for i, in := range inputs {
		lines[i] = batchLine{position: i + 1, input: in}
		if id, ok := byPosition[i+1]; ok {
			lines[i].itemID = id
			lines[i].found = true
		}
	}
	return o.runBatch(ctx, orderID, lines)
}

// BatchProcessOrder re-runs the cascade for every stored item of orderID
func (o *Orchestrator) BatchProcessOrder(ctx context.Context, orderID uuid.UUID) ([]BatchItemResult, error) {
	items, err := o.items.FindByOrder(ctx, orderID)
	if err != nil {
		return nil, persistenceError(err)
	}
	if len(items) == 0 {
		return nil, shared.ErrNotFound.WithMessage("order has no items")
	}
	return o.ProcessItems(ctx, orderID, items)
}

// ProcessItems matches already-known items in position order
func (o *Orchestrator) ProcessItems(ctx context.Context, orderID uuid.UUID, items []order.OrderItem) ([]BatchItemResult, error) {
	lines := make([]batchLine, len(items))
	for i, it := range items {
		lines[i] = batchLine{position: it.Position, itemID: it.ID, input: it.Input(), found: true}
	}
	return o.runBatch(ctx, orderID, lines)
}

type batchLine struct {
	position int
	itemID   uuid.UUID
	input    matching.Input
	found    bool
}

func (o *Orchestrator) runBatch(ctx context.Context, orderID uuid.UUID, lines []batchLine) ([]BatchItemResult, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "matching", "batch_process",
		"order_id", orderID.String(), "items", len(lines))
	defer span.End()

	results := make([]BatchItemResult, 0, len(lines))
	for _, line := range lines {
		if err := ctx.Err(); err != nil {
			return results, err
		}
		entry := BatchItemResult{Position: line.position, ItemID: line.itemID}
		if !line.found {
			entry.Err = shared.ErrNotFound.WithMessage("no order item at this position")
			results = append(results, entry)
			continue
		}

		match, err := o.ProcessItem(ctx, line.itemID, line.input)
		if match != nil {
			match.Position = line.position
		}
		entry.Match = match
		entry.Err = err

		if err != nil && match == nil {
			// cancellation and catalog outages end the whole batch
			if ctx.Err() != nil {
				return results, ctx.Err()
			}
			if errors.Is(err, matching.ErrCatalogUnavailable) {
				telemetry.RecordError(span, err)
				return results, err
			}
		}
		results = append(results, entry)
	}
	return results, nil
}
