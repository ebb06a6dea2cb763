package search

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/kailas-cloud/ragquery/internal/db"
	"github.com/kailas-cloud/ragquery/internal/domain"
)

// store is the consumer interface for search operations (ISP).
type store interface {
	SearchKNN(ctx context.Context, q *db.KNNQuery) (*db.SearchResult, error)
}

// returnFields projects the payload down to what the response needs.
var returnFields = []string{"content", "metadata", "title"}

// Repo implements usecase/query.Searcher over a vector index.
type Repo struct {
	store store
	index string
}

// New creates a search repository bound to a named index.
func New(s store, index string) *Repo {
	return &Repo{store: s, index: index}
}

// Search runs a KNN query and maps hits into domain documents, ordered by
// descending similarity as returned by the index.
func (r *Repo) Search(ctx context.Context, vector []float32, topK int) ([]domain.Document, error) {
	q := &db.KNNQuery{
		IndexName:    r.index,
		Vector:       vector,
		K:            topK,
		ReturnFields: returnFields,
	}

	sr, err := r.store.SearchKNN(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("search knn %s: %s: %w", r.index, err, domain.ErrSearchFailed)
	}

	return parseResults(sr), nil
}

// parseResults converts db.SearchResult into domain documents.
func parseResults(sr *db.SearchResult) []domain.Document {
	if sr == nil || sr.Total == 0 {
		return nil
	}

	docs := make([]domain.Document, 0, len(sr.Entries))
	for _, entry := range sr.Entries {
		docs = append(docs, domain.Document{
			Title:    entry.Fields["title"],
			Content:  entry.Fields["content"],
			Metadata: parseMetadata(entry.Fields["metadata"]),
		})
	}
	return docs
}

// parseMetadata decodes the metadata JSON field. Documents indexed without
// metadata, or with a malformed payload, yield a nil map.
func parseMetadata(raw string) map[string]any {
	if raw == "" {
		return nil
	}
	var m map[string]any
	if err := json.Unmarshal([]byte(raw), &m); err != nil {
		return nil
	}
	return m
}
