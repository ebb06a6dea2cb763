package health

import (
	"context"
	"errors"
	"testing"
)

type fakePinger struct{ err error }

func (f *fakePinger) Ping(_ context.Context) error { return f.err }

type fakeLLM struct{ err error }

func (f *fakeLLM) HealthCheck(_ context.Context) error { return f.err }

func TestCheck_AllHealthy(t *testing.T) {
	svc := New(&fakePinger{}, &fakeLLM{})
	report := svc.Check(context.Background())

	if report.Status != Healthy {
		t.Errorf("status = %q, want %q", report.Status, Healthy)
	}
	if report.Checks["database"] != CheckOK || report.Checks["llm"] != CheckOK {
		t.Errorf("checks = %v", report.Checks)
	}
}

func TestCheck_DatabaseDown(t *testing.T) {
	svc := New(&fakePinger{err: errors.New("connection refused")}, &fakeLLM{})
	report := svc.Check(context.Background())

	if report.Status != Degraded {
		t.Errorf("status = %q, want %q", report.Status, Degraded)
	}
	if report.Checks["database"] != CheckError {
		t.Errorf("checks = %v", report.Checks)
	}
}

func TestCheck_LLMDown(t *testing.T) {
	svc := New(&fakePinger{}, &fakeLLM{err: errors.New("401")})
	report := svc.Check(context.Background())

	if report.Status != Degraded {
		t.Errorf("status = %q, want %q", report.Status, Degraded)
	}
}

func TestCheck_NilLLMChecker(t *testing.T) {
	svc := New(&fakePinger{}, nil)
	report := svc.Check(context.Background())

	if report.Status != Healthy {
		t.Errorf("status = %q, want %q", report.Status, Healthy)
	}
	if _, ok := report.Checks["llm"]; ok {
		t.Error("llm check should be absent when no checker is configured")
	}
}
