package openai

import (
	"context"
	"fmt"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/kailas-cloud/ragquery/internal/domain"
	"github.com/kailas-cloud/ragquery/internal/metrics"
)

const defaultEmbedTimeout = 30 * time.Second

// Embedder turns query text into a vector via the embeddings endpoint.
type Embedder struct {
	secrets    SecretProvider
	secretName string
	baseURL    string
	model      openai.EmbeddingModel
	timeout    time.Duration
	logger     *zap.Logger
}

// EmbedderConfig holds the embedding provider settings.
type EmbedderConfig struct {
	Secrets    SecretProvider
	SecretName string
	BaseURL    string
	Model      string
	Timeout    time.Duration
	Logger     *zap.Logger
}

// NewEmbedder creates an OpenAI-compatible embedding provider.
func NewEmbedder(cfg *EmbedderConfig) *Embedder {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultEmbedTimeout
	}
	return &Embedder{
		secrets:    cfg.Secrets,
		secretName: cfg.SecretName,
		baseURL:    cfg.BaseURL,
		model:      openai.EmbeddingModel(cfg.Model),
		timeout:    timeout,
		logger:     cfg.Logger,
	}
}

// Embed returns the embedding vector for text. Provider failures are wrapped
// with domain.ErrEmbeddingProviderError; no retry.
func (e *Embedder) Embed(ctx context.Context, text string) ([]float32, error) {
	client, err := newClient(ctx, e.secrets, e.secretName, e.baseURL)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	start := time.Now()
	resp, err := client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Input:          []string{text},
		Model:          e.model,
		EncodingFormat: openai.EmbeddingEncodingFormatFloat,
	})
	duration := time.Since(start)

	if err != nil {
		metrics.LLMRequestsTotal.WithLabelValues("embedding", string(e.model), "error").Inc()
		metrics.LLMErrorsTotal.WithLabelValues("embedding", string(e.model), "api_error").Inc()
		e.logger.Error("embedding request failed", zap.Error(err))
		return nil, parseAPIError("embedding", err, domain.ErrEmbeddingProviderError)
	}

	if len(resp.Data) == 0 {
		metrics.LLMRequestsTotal.WithLabelValues("embedding", string(e.model), "error").Inc()
		metrics.LLMErrorsTotal.WithLabelValues("embedding", string(e.model), "empty_response").Inc()
		return nil, fmt.Errorf("empty embedding response: %w", domain.ErrEmbeddingProviderError)
	}

	metrics.LLMRequestsTotal.WithLabelValues("embedding", string(e.model), "success").Inc()
	metrics.LLMRequestDuration.WithLabelValues("embedding", string(e.model)).Observe(duration.Seconds())

	return resp.Data[0].Embedding, nil
}

// HealthCheck verifies API availability via ListModels (free endpoint).
// Uses the embedding credential; a secret failure counts as unhealthy.
func (e *Embedder) HealthCheck(ctx context.Context) error {
	client, err := newClient(ctx, e.secrets, e.secretName, e.baseURL)
	if err != nil {
		return err
	}
	if _, err := client.ListModels(ctx); err != nil {
		return fmt.Errorf("list models: %w", err)
	}
	return nil
}
