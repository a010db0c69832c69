package health

import (
	"context"
	"errors"
	"testing"
)

// --- Mocks ---

type mockDBPinger struct {
	err error
}

func (m *mockDBPinger) Ping(_ context.Context) error { return m.err }

type mockEmbeddingChecker struct {
	err error
}

func (m *mockEmbeddingChecker) HealthCheck(_ context.Context) error { return m.err }

type mockIndexCounter struct {
	n          int
	err        error
	collection string
}

func (m *mockIndexCounter) Count(_ context.Context, collection string) (int, error) {
	m.collection = collection
	return m.n, m.err
}

// --- Tests ---

func TestCheck_AllHealthy(t *testing.T) {
	idx := &mockIndexCounter{n: 42}
	svc := New(&mockDBPinger{}, &mockEmbeddingChecker{}).WithIndex(idx, "menu_items")
	r := svc.Check(context.Background())

	if r.Status != Healthy {
		t.Errorf("expected %q, got %q", Healthy, r.Status)
	}
	for _, name := range []string{"database", "embedding", "index"} {
		if r.Checks[name] != CheckOK {
			t.Errorf("expected %s %q, got %q", name, CheckOK, r.Checks[name])
		}
	}
	if r.Documents != 42 {
		t.Errorf("expected 42 documents, got %d", r.Documents)
	}
	if idx.collection != "menu_items" {
		t.Errorf("counted collection %q, want menu_items", idx.collection)
	}
}

func TestCheck_DBErrorIsUnhealthy(t *testing.T) {
	idx := &mockIndexCounter{n: 1}
	svc := New(&mockDBPinger{err: errors.New("conn refused")}, &mockEmbeddingChecker{}).WithIndex(idx, "menu")
	r := svc.Check(context.Background())

	if r.Status != Unhealthy {
		t.Errorf("expected %q, got %q", Unhealthy, r.Status)
	}
	if r.Checks["database"] != CheckError {
		t.Errorf("expected database %q, got %q", CheckError, r.Checks["database"])
	}
	if _, ok := r.Checks["index"]; ok {
		t.Error("index check should be skipped when the database is down")
	}
}

func TestCheck_EmbeddingErrorIsDegraded(t *testing.T) {
	svc := New(&mockDBPinger{}, &mockEmbeddingChecker{err: errors.New("timeout")})
	r := svc.Check(context.Background())

	if r.Status != Degraded {
		t.Errorf("expected %q, got %q", Degraded, r.Status)
	}
	if r.Checks["database"] != CheckOK {
		t.Errorf("expected database %q, got %q", CheckOK, r.Checks["database"])
	}
	if r.Checks["embedding"] != CheckError {
		t.Errorf("expected embedding %q, got %q", CheckError, r.Checks["embedding"])
	}
}

func TestCheck_IndexErrorIsDegraded(t *testing.T) {
	svc := New(&mockDBPinger{}, nil).WithIndex(&mockIndexCounter{err: errors.New("no index")}, "menu")
	r := svc.Check(context.Background())

	if r.Status != Degraded {
		t.Errorf("expected %q, got %q", Degraded, r.Status)
	}
	if r.Checks["index"] != CheckError {
		t.Errorf("expected index %q, got %q", CheckError, r.Checks["index"])
	}
}

func TestCheck_NoEmbedding(t *testing.T) {
	svc := New(&mockDBPinger{}, nil)
	r := svc.Check(context.Background())

	if r.Status != Healthy {
		t.Errorf("expected %q, got %q", Healthy, r.Status)
	}
	if _, ok := r.Checks["embedding"]; ok {
		t.Error("embedding check should be absent when embedding is nil")
	}
	if _, ok := r.Checks["index"]; ok {
		t.Error("index check should be absent without WithIndex")
	}
}
