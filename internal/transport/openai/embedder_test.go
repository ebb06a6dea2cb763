package openai

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"go.uber.org/zap"

	"github.com/kailas-cloud/ragquery/internal/domain"
	"github.com/kailas-cloud/ragquery/internal/metrics"
)

func TestMain(m *testing.M) {
	metrics.RegisterLLMMetrics()
	os.Exit(m.Run())
}

// fakeSecrets counts lookups so per-call credential fetch is observable.
type fakeSecrets struct {
	secret map[string]string
	err    error
	calls  int
}

func (f *fakeSecrets) GetSecret(_ context.Context, _ string) (map[string]string, error) {
	f.calls++
	return f.secret, f.err
}

func testSecrets() *fakeSecrets {
	return &fakeSecrets{secret: map[string]string{"api_key": "test-key"}}
}

// embeddingResponse mirrors the OpenAI-compatible API embedding response.
type embeddingResponse struct {
	Object string `json:"object"`
	Data   []struct {
		Object    string    `json:"object"`
		Embedding []float32 `json:"embedding"`
		Index     int       `json:"index"`
	} `json:"data"`
	Model string `json:"model"`
}

func TestEmbedder_Embed(t *testing.T) {
	expectedVec := []float32{0.1, 0.2, 0.3, 0.4}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/embeddings" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if r.Header.Get("Authorization") != "Bearer test-key" {
			t.Errorf("unexpected auth header: %s", r.Header.Get("Authorization"))
		}

		resp := embeddingResponse{Object: "list", Model: "test-model"}
		resp.Data = append(resp.Data, struct {
			Object    string    `json:"object"`
			Embedding []float32 `json:"embedding"`
			Index     int       `json:"index"`
		}{
			Object:    "embedding",
			Embedding: expectedVec,
			Index:     0,
		})

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	secrets := testSecrets()
	emb := NewEmbedder(&EmbedderConfig{
		Secrets:    secrets,
		SecretName: "llm-credentials",
		BaseURL:    server.URL,
		Model:      "test-model",
		Logger:     zap.NewNop(),
	})

	vec, err := emb.Embed(context.Background(), "hello world")
	if err != nil {
		t.Fatalf("Embed failed: %v", err)
	}

	if len(vec) != len(expectedVec) {
		t.Fatalf("expected %d dimensions, got %d", len(expectedVec), len(vec))
	}
	for i, v := range vec {
		if v != expectedVec[i] {
			t.Errorf("vec[%d] = %f, expected %f", i, v, expectedVec[i])
		}
	}
	if secrets.calls != 1 {
		t.Errorf("expected 1 credential fetch, got %d", secrets.calls)
	}
}

func TestEmbedder_Embed_APIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte(`{"detail":"rate limit exceeded"}`))
	}))
	defer server.Close()

	emb := NewEmbedder(&EmbedderConfig{
		Secrets:    testSecrets(),
		SecretName: "llm-credentials",
		BaseURL:    server.URL,
		Model:      "test-model",
		Logger:     zap.NewNop(),
	})

	_, err := emb.Embed(context.Background(), "hello")
	if !errors.Is(err, domain.ErrEmbeddingProviderError) {
		t.Fatalf("expected ErrEmbeddingProviderError, got %v", err)
	}
}

func TestEmbedder_Embed_SecretFailure(t *testing.T) {
	secretErr := errors.New("store unreachable")
	emb := NewEmbedder(&EmbedderConfig{
		Secrets:    &fakeSecrets{err: secretErr},
		SecretName: "llm-credentials",
		BaseURL:    "http://localhost:1",
		Model:      "test-model",
		Logger:     zap.NewNop(),
	})

	_, err := emb.Embed(context.Background(), "hello")
	if !errors.Is(err, secretErr) {
		t.Fatalf("expected secret error to propagate, got %v", err)
	}
}

func TestEmbedder_Embed_MissingAPIKey(t *testing.T) {
	emb := NewEmbedder(&EmbedderConfig{
		Secrets:    &fakeSecrets{secret: map[string]string{"other": "x"}},
		SecretName: "llm-credentials",
		BaseURL:    "http://localhost:1",
		Model:      "test-model",
		Logger:     zap.NewNop(),
	})

	_, err := emb.Embed(context.Background(), "hello")
	if !errors.Is(err, domain.ErrSecretAccess) {
		t.Fatalf("expected ErrSecretAccess, got %v", err)
	}
}
