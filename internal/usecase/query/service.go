// Package query orchestrates the RAG pipeline:
// validate -> embed -> search -> generate -> shape response.
package query

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/ragquery/internal/domain"
)

// DefaultTopK is the number of documents retrieved per query.
const DefaultTopK = 5

// NoInformationAnswer is returned when the index has no similar documents.
const NoInformationAnswer = "I could not find relevant information to answer your question."

// Measurement names published per query.
const (
	MetricProcessingTime     = "QueryProcessingTime"
	MetricDocumentsRetrieved = "DocumentsRetrieved"
	MetricQueriesProcessed   = "QueriesProcessed"
	MetricQueryErrors        = "QueryErrors"
)

// Units for published measurements.
const (
	unitCount   = "Count"
	unitSeconds = "Seconds"
)

// Service runs the query pipeline. It holds no per-request state and is
// safe for concurrent use.
type Service struct {
	embed    Embedder
	search   Searcher
	generate Generator
	metrics  Publisher
	topK     int
	logger   *zap.Logger
}

// New creates a query service.
func New(embed Embedder, search Searcher, generate Generator, metrics Publisher, logger *zap.Logger) *Service {
	return &Service{
		embed:    embed,
		search:   search,
		generate: generate,
		metrics:  metrics,
		topK:     DefaultTopK,
		logger:   logger,
	}
}

// WithTopK overrides the retrieval depth.
func (s *Service) WithTopK(k int) *Service {
	if k > 0 {
		s.topK = k
	}
	return s
}

// Answer runs the pipeline for one query. The raw query is trimmed first;
// an empty result is domain.ErrQueryRequired with no upstream calls and no
// metrics. Every post-validation failure publishes MetricQueryErrors exactly
// once and bubbles up unchanged for the transport to map.
func (s *Service) Answer(ctx context.Context, rawQuery string) (domain.QueryResult, error) {
	query := strings.TrimSpace(rawQuery)
	if query == "" {
		return domain.QueryResult{}, domain.ErrQueryRequired
	}

	start := time.Now()
	s.logger.Info("processing query", zap.String("query", query))

	vector, err := s.embed.Embed(ctx, query)
	if err != nil {
		return domain.QueryResult{}, s.fail(ctx, fmt.Errorf("generate embedding: %w", err))
	}

	docs, err := s.search.Search(ctx, vector, s.topK)
	if err != nil {
		return domain.QueryResult{}, s.fail(ctx, fmt.Errorf("search documents: %w", err))
	}

	// No similar documents is a valid outcome, not an error.
	if len(docs) == 0 {
		s.logger.Info("no documents found", zap.String("query", query))
		return domain.QueryResult{
			Answer:  NoInformationAnswer,
			Sources: []domain.Source{},
		}, nil
	}

	answer, err := s.generate.Generate(ctx, query, docs)
	if err != nil {
		return domain.QueryResult{}, s.fail(ctx, fmt.Errorf("generate answer: %w", err))
	}

	sources := make([]domain.Source, len(docs))
	for i, d := range docs {
		sources[i] = domain.SourceOf(d)
	}

	s.metrics.Publish(ctx, MetricProcessingTime, time.Since(start).Seconds(), unitSeconds)
	s.metrics.Publish(ctx, MetricDocumentsRetrieved, float64(len(docs)), unitCount)
	s.metrics.Publish(ctx, MetricQueriesProcessed, 1, unitCount)

	return domain.QueryResult{
		Answer:  answer,
		Sources: sources,
		Query:   query,
	}, nil
}

// fail logs the failure with full detail and counts it once.
func (s *Service) fail(ctx context.Context, err error) error {
	s.logger.Error("query pipeline failed", zap.Error(err))
	s.metrics.Publish(ctx, MetricQueryErrors, 1, unitCount)
	return err
}
