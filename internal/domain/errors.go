package domain

import "errors"

var (
	// ErrQueryRequired signals an empty query after trimming.
	ErrQueryRequired = errors.New("query is required")
	// ErrSecretAccess signals a secret store failure.
	ErrSecretAccess = errors.New("secret access failed")
	// ErrEmbeddingProviderError signals an embedding provider failure.
	ErrEmbeddingProviderError = errors.New("embedding provider error")
	// ErrSearchFailed signals a vector index failure.
	ErrSearchFailed = errors.New("vector search failed")
	// ErrAnswerGeneration signals a chat-completion provider failure.
	ErrAnswerGeneration = errors.New("answer generation failed")
)
