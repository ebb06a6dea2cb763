// Package openai adapts the OpenAI-compatible embeddings and chat-completion
// APIs for the query pipeline.
package openai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	openai "github.com/sashabaranov/go-openai"

	"github.com/kailas-cloud/ragquery/internal/domain"
)

// SecretProvider fetches named credential bundles.
type SecretProvider interface {
	GetSecret(ctx context.Context, name string) (map[string]string, error)
}

// newClient builds an API client around a freshly fetched credential.
// The credential is looked up on every call so rotation needs no restart.
func newClient(ctx context.Context, secrets SecretProvider, secretName, baseURL string) (*openai.Client, error) {
	secret, err := secrets.GetSecret(ctx, secretName)
	if err != nil {
		return nil, err
	}

	apiKey := secret["api_key"]
	if apiKey == "" {
		return nil, fmt.Errorf("secret %s has no api_key: %w", secretName, domain.ErrSecretAccess)
	}

	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	return openai.NewClientWithConfig(cfg), nil
}

// parseAPIError extracts a human-readable error from the API response,
// wrapping it with the given sentinel for status mapping upstream.
func parseAPIError(op string, err error, sentinel error) error {
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		detail := extractDetail(reqErr.Body)
		if detail == "" {
			detail = string(reqErr.Body)
		}
		return fmt.Errorf("%s API error %d: %s: %w", op, reqErr.HTTPStatusCode, detail, sentinel)
	}

	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return fmt.Errorf("%s API error %d: %s: %w", op, apiErr.HTTPStatusCode, apiErr.Message, sentinel)
	}

	return fmt.Errorf("%s request failed: %s: %w", op, err, sentinel)
}

// extractDetail extracts the "detail" field from a JSON error body.
func extractDetail(body []byte) string {
	var parsed struct {
		Detail string `json:"detail"`
	}
	if json.Unmarshal(body, &parsed) == nil && parsed.Detail != "" {
		return parsed.Detail
	}
	return ""
}
