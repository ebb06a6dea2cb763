package query

import (
	"context"

	"github.com/kailas-cloud/ragquery/internal/domain"
)

// Embedder vectorizes query text.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// Searcher retrieves the topK most similar documents for a vector.
type Searcher interface {
	Search(ctx context.Context, vector []float32, topK int) ([]domain.Document, error)
}

// Generator produces an answer grounded in the retrieved documents.
type Generator interface {
	Generate(ctx context.Context, query string, docs []domain.Document) (string, error)
}

// Publisher emits pipeline measurements. Implementations are best-effort
// and must never fail the calling pipeline.
type Publisher interface {
	Publish(ctx context.Context, name string, value float64, unit string)
}
