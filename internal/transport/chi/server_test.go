package chi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	chirouter "github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/kailas-cloud/ragquery/internal/domain"
	healthuc "github.com/kailas-cloud/ragquery/internal/usecase/health"
)

type fakeQuery struct {
	result    domain.QueryResult
	err       error
	lastQuery string
	called    int
}

func (f *fakeQuery) Answer(_ context.Context, query string) (domain.QueryResult, error) {
	f.called++
	f.lastQuery = query
	if f.err != nil {
		return domain.QueryResult{}, f.err
	}
	// Mirror the pipeline's validation so handler tests can exercise it.
	if strings.TrimSpace(query) == "" {
		return domain.QueryResult{}, domain.ErrQueryRequired
	}
	return f.result, nil
}

type fakeHealth struct{ report healthuc.Report }

func (f *fakeHealth) Check(_ context.Context) healthuc.Report { return f.report }

func newTestServer(q *fakeQuery, env string) *httptest.Server {
	s := NewServer(q, &fakeHealth{report: healthuc.Report{
		Status: healthuc.Healthy,
		Checks: map[string]healthuc.CheckResult{"database": healthuc.CheckOK},
	}}, env, zap.NewNop())

	r := chirouter.NewRouter()
	s.Routes(r)
	return httptest.NewServer(r)
}

func postQuery(t *testing.T, url, body string) (*http.Response, map[string]any) {
	t.Helper()
	resp, err := http.Post(url+"/query", "application/json", strings.NewReader(body))
	if err != nil {
		t.Fatalf("POST /query: %v", err)
	}
	t.Cleanup(func() { resp.Body.Close() })

	var decoded map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return resp, decoded
}

func TestHandleQuery_Success(t *testing.T) {
	q := &fakeQuery{result: domain.QueryResult{
		Answer: "RAG combines retrieval and generation.",
		Sources: []domain.Source{
			{Title: "A", ContentPreview: "a", Metadata: map[string]any{}},
			{Title: "B", ContentPreview: "b", Metadata: map[string]any{}},
		},
		Query: "What is RAG?",
	}}
	ts := newTestServer(q, "dev")
	defer ts.Close()

	resp, body := postQuery(t, ts.URL, `{"query": "  What is RAG?  "}`)

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q", ct)
	}
	if cors := resp.Header.Get("Access-Control-Allow-Origin"); cors != "*" {
		t.Errorf("Access-Control-Allow-Origin = %q", cors)
	}
	if body["answer"] != "RAG combines retrieval and generation." {
		t.Errorf("answer = %v", body["answer"])
	}
	if body["query"] != "What is RAG?" {
		t.Errorf("query = %v", body["query"])
	}
	if sources, ok := body["sources"].([]any); !ok || len(sources) != 2 {
		t.Errorf("sources = %v", body["sources"])
	}
	if q.lastQuery != "  What is RAG?  " {
		t.Errorf("raw query forwarded as %q", q.lastQuery)
	}
}

func TestHandleQuery_DoubleEncodedBody(t *testing.T) {
	q := &fakeQuery{result: domain.QueryResult{Answer: "ok", Sources: []domain.Source{}, Query: "hi"}}
	ts := newTestServer(q, "dev")
	defer ts.Close()

	// The body itself is a JSON string holding the encoded object.
	inner, _ := json.Marshal(`{"query": "hi"}`)
	resp, _ := postQuery(t, ts.URL, string(inner))

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if q.lastQuery != "hi" {
		t.Errorf("query forwarded as %q", q.lastQuery)
	}
}

func TestHandleQuery_EmptyQuery(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"missing field", `{}`},
		{"whitespace query", `{"query": "   "}`},
		{"empty body", ``},
		{"malformed json", `{"query":`},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			ts := newTestServer(&fakeQuery{}, "dev")
			defer ts.Close()

			resp, body := postQuery(t, ts.URL, tc.body)

			if resp.StatusCode != http.StatusBadRequest {
				t.Fatalf("status = %d", resp.StatusCode)
			}
			if body["error"] != "Query is required" {
				t.Errorf("error = %v", body["error"])
			}
			if cors := resp.Header.Get("Access-Control-Allow-Origin"); cors != "*" {
				t.Errorf("Access-Control-Allow-Origin = %q", cors)
			}
		})
	}
}

func TestHandleQuery_InternalError_DevShowsDetail(t *testing.T) {
	q := &fakeQuery{err: errors.New("embedding API error 503: overloaded")}
	ts := newTestServer(q, "dev")
	defer ts.Close()

	resp, body := postQuery(t, ts.URL, `{"query": "q"}`)

	if resp.StatusCode != http.StatusInternalServerError {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if body["error"] != "Internal server error" {
		t.Errorf("error = %v", body["error"])
	}
	if body["message"] != "embedding API error 503: overloaded" {
		t.Errorf("message = %v, want verbatim detail in dev", body["message"])
	}
}

func TestHandleQuery_InternalError_ProdHidesDetail(t *testing.T) {
	q := &fakeQuery{err: errors.New("embedding API error 503: overloaded")}
	ts := newTestServer(q, "prod")
	defer ts.Close()

	resp, body := postQuery(t, ts.URL, `{"query": "q"}`)

	if resp.StatusCode != http.StatusInternalServerError {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if body["message"] != genericErrorMessage {
		t.Errorf("message = %v, want generic message in prod", body["message"])
	}
}

func TestHandleQuery_NoDocuments(t *testing.T) {
	q := &fakeQuery{result: domain.QueryResult{
		Answer:  "I could not find relevant information to answer your question.",
		Sources: []domain.Source{},
	}}
	ts := newTestServer(q, "dev")
	defer ts.Close()

	resp, body := postQuery(t, ts.URL, `{"query": "anything"}`)

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if sources, ok := body["sources"].([]any); !ok || len(sources) != 0 {
		t.Errorf("sources = %v, want empty array", body["sources"])
	}
	if _, ok := body["query"]; ok {
		t.Error("query echo should be omitted on the no-documents response")
	}
}

func TestHandleHealth(t *testing.T) {
	ts := newTestServer(&fakeQuery{}, "dev")
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/health")
	if err != nil {
		t.Fatalf("GET /health: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}

	var body map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body["status"] != "ok" {
		t.Errorf("status = %v", body["status"])
	}
}

func TestHandleHealth_Degraded(t *testing.T) {
	s := NewServer(&fakeQuery{}, &fakeHealth{report: healthuc.Report{
		Status: healthuc.Degraded,
		Checks: map[string]healthuc.CheckResult{"database": healthuc.CheckError},
	}}, "dev", zap.NewNop())

	r := chirouter.NewRouter()
	s.Routes(r)
	ts := httptest.NewServer(r)
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/health")
	if err != nil {
		t.Fatalf("GET /health: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusServiceUnavailable {
		t.Fatalf("status = %d", resp.StatusCode)
	}
}
