package openai

import (
	"context"
	"fmt"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/kailas-cloud/ragquery/internal/domain"
	"github.com/kailas-cloud/ragquery/internal/metrics"
)

const (
	defaultGenerateTimeout = 60 * time.Second
	defaultMaxTokens       = 500
	defaultTemperature     = 0.7

	systemInstruction = "You are a helpful assistant that answers questions based on provided context."

	promptTemplate = `Based on the following context, answer the user's question. If the answer cannot be found in the context, say so clearly.

Context:
%s

Question: %s

Answer:`
)

// Completer generates grounded answers via the chat-completions endpoint.
type Completer struct {
	secrets     SecretProvider
	secretName  string
	baseURL     string
	model       string
	maxTokens   int
	temperature float32
	timeout     time.Duration
	logger      *zap.Logger
}

// CompleterConfig holds the completion provider settings.
type CompleterConfig struct {
	Secrets     SecretProvider
	SecretName  string
	BaseURL     string
	Model       string
	MaxTokens   int
	Temperature float32
	Timeout     time.Duration
	Logger      *zap.Logger
}

// NewCompleter creates an OpenAI-compatible chat-completion provider.
func NewCompleter(cfg *CompleterConfig) *Completer {
	c := &Completer{
		secrets:     cfg.Secrets,
		secretName:  cfg.SecretName,
		baseURL:     cfg.BaseURL,
		model:       cfg.Model,
		maxTokens:   cfg.MaxTokens,
		temperature: cfg.Temperature,
		timeout:     cfg.Timeout,
	}
	if c.maxTokens <= 0 {
		c.maxTokens = defaultMaxTokens
	}
	if c.temperature <= 0 {
		c.temperature = defaultTemperature
	}
	if c.timeout <= 0 {
		c.timeout = defaultGenerateTimeout
	}
	c.logger = cfg.Logger
	return c
}

// Generate builds a grounded prompt from the retrieved documents and asks the
// model to answer the query from that context only. Single round trip, no
// streaming; failures are wrapped with domain.ErrAnswerGeneration.
func (c *Completer) Generate(ctx context.Context, query string, docs []domain.Document) (string, error) {
	client, err := newClient(ctx, c.secrets, c.secretName, c.baseURL)
	if err != nil {
		return "", err
	}

	prompt := fmt.Sprintf(promptTemplate, contextBlock(docs), query)

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	start := time.Now()
	resp, err := client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemInstruction},
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		MaxTokens:   c.maxTokens,
		Temperature: c.temperature,
	})
	duration := time.Since(start)

	if err != nil {
		metrics.LLMRequestsTotal.WithLabelValues("completion", c.model, "error").Inc()
		metrics.LLMErrorsTotal.WithLabelValues("completion", c.model, "api_error").Inc()
		c.logger.Error("completion request failed", zap.Error(err))
		return "", parseAPIError("completion", err, domain.ErrAnswerGeneration)
	}

	if len(resp.Choices) == 0 {
		metrics.LLMRequestsTotal.WithLabelValues("completion", c.model, "error").Inc()
		metrics.LLMErrorsTotal.WithLabelValues("completion", c.model, "empty_response").Inc()
		return "", fmt.Errorf("empty completion response: %w", domain.ErrAnswerGeneration)
	}

	metrics.LLMRequestsTotal.WithLabelValues("completion", c.model, "success").Inc()
	metrics.LLMRequestDuration.WithLabelValues("completion", c.model).Observe(duration.Seconds())

	return resp.Choices[0].Message.Content, nil
}

// contextBlock renders the retrieved documents in input order, one block per
// document, separated by blank lines.
func contextBlock(docs []domain.Document) string {
	parts := make([]string, 0, len(docs))
	for _, d := range docs {
		parts = append(parts, "Document: "+d.DisplayTitle()+"\n"+d.Content)
	}
	return strings.Join(parts, "\n\n")
}
