package matching

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/josa-ai/verve-noir-app/internal/domain/matching"
	"github.com/josa-ai/verve-noir-app/internal/infrastructure/telemetry"
)

// CompletionRequest is one chat completion call
type CompletionRequest struct {
	SystemPrompt string
	UserPrompt   string
	Temperature  float64
	MaxTokens    int
}

// InferenceClient sends a completion request and returns the raw reply text.
// Implementations own transport timeouts and retries.
type InferenceClient interface {
	Complete(ctx context.Context, req CompletionRequest) (string, error)
}

// AIConfig holds sampling parameters
type AIConfig struct {
	Temperature float64
	MaxTokens   int
}

// DefaultAIConfig returns temperature 0.1 and a 500 token budget
func DefaultAIConfig() AIConfig {
	return AIConfig{Temperature: 0.1, MaxTokens: 500}
}

// AIResolver asks the inference endpoint to pick among candidates. It never
// falls back on its own; every failure is returned as matching.ErrInference.
type AIResolver struct {
	client  InferenceClient
	cfg     AIConfig
	metrics *telemetry.MatchMetrics
}

// NewAIResolver creates an AIResolver
func NewAIResolver(client InferenceClient, cfg AIConfig) *AIResolver {
	return &AIResolver{client: client, cfg: cfg}
}

// SetMatchMetrics sets the metrics sink for inference latency
func (r *AIResolver) SetMatchMetrics(m *telemetry.MatchMetrics) {
	r.metrics = m
}

// Rank returns a method=ai result. A product_id the model made up, or one
// outside candidates, yields a nil ProductID rather than an error.
func (r *AIResolver) Rank(ctx context.Context, in matching.Input, candidates []matching.Candidate) (matching.Result, error) {
	if len(candidates) == 0 {
		return matching.Result{}, matching.ErrInference.WithMessage("no candidates to rank")
	}
	if r.client == nil {
		return matching.Result{}, matching.ErrInference.WithMessage("inference client not configured")
	}

	ctx, span := telemetry.StartServiceSpan(ctx, "matching", "ai_rank", "candidates", len(candidates))
	defer span.End()

	start := time.Now()
	content, err := r.client.Complete(ctx, CompletionRequest{
		SystemPrompt: systemInstruction,
		UserPrompt:   buildPrompt(in, candidates),
		Temperature:  r.cfg.Temperature,
		MaxTokens:    r.cfg.MaxTokens,
	})
	r.metrics.RecordInference(ctx, time.Since(start), err)
	if err != nil {
		telemetry.RecordError(span, err)
		return matching.Result{}, matching.ErrInference.WithCause(err)
	}

	result, err := interpretCompletion(content, candidates)
	if err != nil {
		telemetry.RecordError(span, err)
		return matching.Result{}, err
	}
	telemetry.SetAttributes(span, "confidence", result.Confidence, "matched", result.Matched())
	return result, nil
}

// interpretCompletion turns raw completion text into a result
func interpretCompletion(content string, candidates []matching.Candidate) (matching.Result, error) {
	if strings.TrimSpace(content) == "" {
		return matching.Result{}, matching.ErrInference.WithMessage("empty completion")
	}
	object, ok := ExtractJSONObject(content)
	if !ok {
		return matching.Result{}, matching.ErrInference.WithMessage("completion contains no JSON object")
	}
	v, err := parseVerdict(object)
	if err != nil {
		return matching.Result{}, matching.ErrInference.WithCause(err)
	}

	result := matching.Result{
		Confidence: v.Confidence,
		Method:     matching.MethodAI,
		Reasoning:  v.Reasoning,
	}
	if v.ProductID != nil && containsProduct(candidates, *v.ProductID) {
		id := *v.ProductID
		result.ProductID = &id
	}
	return result, nil
}

func containsProduct(candidates []matching.Candidate, id uuid.UUID) bool {
	for _, c := range candidates {
		if c.Product.ID == id {
			return true
		}
	}
	return false
}
