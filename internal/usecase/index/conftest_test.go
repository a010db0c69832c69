package index

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"

	"go.uber.org/zap"

	"github.com/kailas-cloud/menurank/internal/domain"
	domdoc "github.com/kailas-cloud/menurank/internal/domain/document"
	"github.com/kailas-cloud/menurank/internal/domain/search/result"
)

// --- Mocks ---

type mockCollections struct {
	mu sync.Mutex

	active  map[string]string
	created map[string]int
	dropped []string

	createErr   error
	activateErr error
	activeErr   error
	missing     map[string]bool
	countFn     func(gen domain.Generation) (int, error)
}

func newMockCollections() *mockCollections {
	return &mockCollections{active: map[string]string{}, created: map[string]int{}}
}

func (m *mockCollections) Active(_ context.Context, collection string) (domain.Generation, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.activeErr != nil {
		return domain.Generation{}, false, m.activeErr
	}
	id, ok := m.active[collection]
	if !ok {
		return domain.Generation{}, false, nil
	}
	return domain.NewGeneration(collection, id), true, nil
}

func (m *mockCollections) Create(_ context.Context, gen domain.Generation, dim int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.createErr != nil {
		return m.createErr
	}
	m.created[gen.ID] = dim
	return nil
}

func (m *mockCollections) Activate(_ context.Context, gen domain.Generation) (domain.Generation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.activateErr != nil {
		return domain.Generation{}, m.activateErr
	}
	prev, ok := m.active[gen.Collection]
	m.active[gen.Collection] = gen.ID
	if !ok {
		return domain.Generation{}, nil
	}
	return domain.NewGeneration(gen.Collection, prev), nil
}

func (m *mockCollections) ActivateIfAbsent(_ context.Context, gen domain.Generation) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.active[gen.Collection]; ok {
		return false, nil
	}
	m.active[gen.Collection] = gen.ID
	return true, nil
}

func (m *mockCollections) Drop(_ context.Context, gen domain.Generation) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.dropped = append(m.dropped, gen.ID)
	return nil
}

func (m *mockCollections) Exists(_ context.Context, gen domain.Generation) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return !m.missing[gen.ID], nil
}

func (m *mockCollections) Count(_ context.Context, gen domain.Generation) (int, error) {
	if m.countFn != nil {
		return m.countFn(gen)
	}
	return 0, nil
}

type mockDocuments struct {
	mu       sync.Mutex
	inserted map[string][]string
	failOn   int // fail on the Nth call when > 0
	calls    int
	err      error
}

func (m *mockDocuments) BatchInsert(
	_ context.Context, gen domain.Generation, docs []domdoc.Document, _ [][]float32,
) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.failOn > 0 && m.calls == m.failOn {
		return m.err
	}
	if m.inserted == nil {
		m.inserted = map[string][]string{}
	}
	for _, d := range docs {
		m.inserted[gen.ID] = append(m.inserted[gen.ID], d.ID())
	}
	return nil
}

func (m *mockDocuments) Get(_ context.Context, gen domain.Generation, id string) (domdoc.Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, stored := range m.inserted[gen.ID] {
		if stored == id {
			return domdoc.New(id, "stored", domdoc.Metadata{})
		}
	}
	return domdoc.Document{}, domain.ErrNotFound
}

type mockSearcher struct {
	fn func(gen domain.Generation, vector []float32, k int) ([]result.Candidate, error)
}

func (m *mockSearcher) SearchKNN(
	_ context.Context, gen domain.Generation, vector []float32, k int,
) ([]result.Candidate, error) {
	if m.fn != nil {
		return m.fn(gen, vector, k)
	}
	return []result.Candidate{}, nil
}

// wordEmbedder maps texts onto a fixed vocabulary; dimension 0 is a constant bias
// so no text embeds to the zero vector.
type wordEmbedder struct {
	vocab      []string
	batchCalls int
	err        error
	failAfter  int // fail batch calls after this many successes when > 0
	mu         sync.Mutex
}

func (w *wordEmbedder) Embed(_ context.Context, text string) (domain.EmbeddingResult, error) {
	if w.err != nil && w.failAfter == 0 {
		return domain.EmbeddingResult{}, w.err
	}
	return domain.EmbeddingResult{Embedding: w.vector(text)}, nil
}

func (w *wordEmbedder) BatchEmbed(_ context.Context, texts []string) (domain.BatchEmbeddingResult, error) {
	w.mu.Lock()
	w.batchCalls++
	calls := w.batchCalls
	w.mu.Unlock()
	if w.err != nil && calls > w.failAfter {
		return domain.BatchEmbeddingResult{}, w.err
	}
	out := make([][]float32, len(texts))
	for i, t := range texts {
		out[i] = w.vector(t)
	}
	return domain.BatchEmbeddingResult{Embeddings: out}, nil
}

func (w *wordEmbedder) vector(text string) []float32 {
	v := make([]float32, len(w.vocab)+1)
	v[0] = 0.1
	lower := strings.ToLower(text)
	for i, word := range w.vocab {
		if strings.Contains(lower, word) {
			v[i+1] = 1
		}
	}
	return domain.Normalize(v)
}

func newWordEmbedder() *wordEmbedder {
	return &wordEmbedder{vocab: []string{"dosa", "biryani", "paneer", "chicken", "spicy", "sweet"}}
}

// --- Helpers ---

func newTestService(t *testing.T) (*Service, *mockCollections, *mockDocuments, *mockSearcher, *wordEmbedder) {
	t.Helper()
	colls := newMockCollections()
	docs := &mockDocuments{}
	search := &mockSearcher{}
	emb := newWordEmbedder()
	svc := New(colls, docs, search, emb, zap.NewNop())
	n := 0
	svc.newID = func() string {
		n++
		return fmt.Sprintf("g%d", n)
	}
	return svc, colls, docs, search, emb
}

func testDocs(t *testing.T, n int) []domdoc.Document {
	t.Helper()
	texts := []string{"Masala Dosa", "Chicken Biryani", "Paneer Tikka", "Spicy Chicken 65", "Gulab Jamun sweet"}
	out := make([]domdoc.Document, n)
	for i := range out {
		id := domdoc.IDFor(fmt.Sprint(i + 1))
		doc, err := domdoc.New(id, texts[i%len(texts)], domdoc.Metadata{ItemID: fmt.Sprint(i + 1)})
		if err != nil {
			t.Fatalf("new document: %v", err)
		}
		out[i] = doc
	}
	return out
}
