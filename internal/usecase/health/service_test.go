package health

import (
	"context"
	"errors"
	"testing"
)

// --- Mocks ---

type mockModelChecker struct {
	err error
}

func (m *mockModelChecker) HealthCheck(_ context.Context) error { return m.err }

type mockCache struct {
	n int
}

func (m *mockCache) Len() int { return m.n }

// --- Tests ---

func TestCheck_Healthy(t *testing.T) {
	svc := New(&mockModelChecker{}, nil)
	r := svc.Check(context.Background())

	if r.Status != Healthy {
		t.Errorf("expected %q, got %q", Healthy, r.Status)
	}
	if r.Checks["model"] != CheckOK {
		t.Errorf("expected model %q, got %q", CheckOK, r.Checks["model"])
	}
	if r.CachedItems != nil {
		t.Error("cached items should be absent without a cache")
	}
}

func TestCheck_ModelError(t *testing.T) {
	svc := New(&mockModelChecker{err: errors.New("inference failed")}, nil)
	r := svc.Check(context.Background())

	if r.Status != Degraded {
		t.Errorf("expected %q, got %q", Degraded, r.Status)
	}
	if r.Checks["model"] != CheckError {
		t.Errorf("expected model %q, got %q", CheckError, r.Checks["model"])
	}
}

func TestCheck_WithCache(t *testing.T) {
	svc := New(&mockModelChecker{}, &mockCache{n: 7})
	r := svc.Check(context.Background())

	if r.CachedItems == nil || *r.CachedItems != 7 {
		t.Errorf("cached items: got %v, want 7", r.CachedItems)
	}
}
