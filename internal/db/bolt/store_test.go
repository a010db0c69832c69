package bolt

import (
	"context"
	"errors"
	"math"
	"path/filepath"
	"sort"
	"testing"
	"time"

	"github.com/kailas-cloud/menurank/internal/db"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewStore(Config{Path: filepath.Join(t.TempDir(), "menurank.db")})
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(s.Close)
	return s
}

func TestNewStore_RequiresPath(t *testing.T) {
	if _, err := NewStore(Config{}); err == nil {
		t.Fatal("expected error for empty path")
	}
}

func TestPingAndReady(t *testing.T) {
	s := newTestStore(t)
	if err := s.Ping(context.Background()); err != nil {
		t.Fatalf("ping: %v", err)
	}
	if err := s.WaitForReady(context.Background(), time.Second); err != nil {
		t.Fatalf("ready: %v", err)
	}
}

func TestHash_MergeGetDel(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	blob := db.EncodeVector([]float32{1, -2.5})
	err := s.HSetMulti(ctx, []db.HashSetItem{
		{Key: "m:doc:1", Fields: map[string]string{"item_name": "Dosa", "__vector": blob}},
	})
	if err != nil {
		t.Fatalf("HSetMulti: %v", err)
	}
	if err := s.HSetMulti(ctx, []db.HashSetItem{{Key: "m:doc:1", Fields: map[string]string{"price": "80"}}}); err != nil {
		t.Fatalf("HSetMulti merge: %v", err)
	}

	h, err := s.HGetAll(ctx, "m:doc:1")
	if err != nil {
		t.Fatalf("HGetAll: %v", err)
	}
	if h["item_name"] != "Dosa" || h["price"] != "80" {
		t.Errorf("unexpected hash: %v", h)
	}
	if h["__vector"] != blob {
		t.Error("binary vector blob must round-trip unchanged")
	}

	if err := s.Del(ctx, "m:doc:1"); err != nil {
		t.Fatalf("Del: %v", err)
	}
	if _, err := s.HGetAll(ctx, "m:doc:1"); !errors.Is(err, db.ErrKeyNotFound) {
		t.Errorf("expected ErrKeyNotFound after Del, got %v", err)
	}
}

func TestScan(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_ = s.HSetMulti(ctx, []db.HashSetItem{
		{Key: "m:c:g1:doc:1", Fields: map[string]string{"a": "1"}},
		{Key: "m:c:g1:doc:2", Fields: map[string]string{"a": "2"}},
		{Key: "m:c:g2:doc:1", Fields: map[string]string{"a": "3"}},
	})
	_ = s.Set(ctx, "m:c:active", []byte("g1"))

	keys, err := s.Scan(ctx, "m:c:g1:*")
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	sort.Strings(keys)
	if len(keys) != 2 || keys[0] != "m:c:g1:doc:1" || keys[1] != "m:c:g1:doc:2" {
		t.Errorf("unexpected keys: %v", keys)
	}

	keys, _ = s.Scan(ctx, "m:c:*")
	if len(keys) != 4 {
		t.Errorf("expected 4 keys across buckets, got %v", keys)
	}

	if _, err := s.Scan(ctx, "m:[c"); err == nil {
		t.Error("expected error for invalid pattern")
	}
}

func TestKV_SetGetTTL(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	now := time.Unix(1000, 0)
	s.now = func() time.Time { return now }

	if err := s.SetWithTTL(ctx, "k", []byte("v"), time.Minute); err != nil {
		t.Fatalf("SetWithTTL: %v", err)
	}
	if v, err := s.Get(ctx, "k"); err != nil || string(v) != "v" {
		t.Fatalf("Get = %q, %v", v, err)
	}

	now = now.Add(2 * time.Minute)
	if _, err := s.Get(ctx, "k"); !errors.Is(err, db.ErrKeyNotFound) {
		t.Errorf("expected expired key to be missing, got %v", err)
	}
}

func TestKV_SetNXAndSwap(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	ok, err := s.SetNX(ctx, "ptr", []byte("g1"))
	if err != nil || !ok {
		t.Fatalf("first SetNX = %v, %v", ok, err)
	}
	ok, err = s.SetNX(ctx, "ptr", []byte("g2"))
	if err != nil || ok {
		t.Fatalf("second SetNX = %v, %v", ok, err)
	}

	prev, err := s.Swap(ctx, "ptr", []byte("g3"))
	if err != nil || string(prev) != "g1" {
		t.Fatalf("Swap = %q, %v", prev, err)
	}
	if v, _ := s.Get(ctx, "ptr"); string(v) != "g3" {
		t.Errorf("after swap = %q", v)
	}

	if _, err := s.Swap(ctx, "fresh", []byte("x")); !errors.Is(err, db.ErrKeyNotFound) {
		t.Errorf("expected ErrKeyNotFound for fresh key, got %v", err)
	}
	if v, _ := s.Get(ctx, "fresh"); string(v) != "x" {
		t.Errorf("swap must still store the value, got %q", v)
	}
}

func testIndex(name, prefix string, dim int) *db.IndexDefinition {
	return db.NewIndex(name).
		Prefix(prefix).
		Tag("item_name").
		VectorHNSW("__vector", dim, db.DistanceCosine, 16, 200).As("vector").
		MustBuild()
}

func TestIndexLifecycle(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	def := testIndex("m:idx", "m:doc:", 2)

	if err := s.CreateIndex(ctx, def); err != nil {
		t.Fatalf("CreateIndex: %v", err)
	}
	if err := s.CreateIndex(ctx, def); !errors.Is(err, db.ErrIndexExists) {
		t.Errorf("expected ErrIndexExists, got %v", err)
	}
	if ok, _ := s.IndexExists(ctx, "m:idx"); !ok {
		t.Error("expected index to exist")
	}
	if err := s.DropIndex(ctx, "m:idx"); err != nil {
		t.Fatalf("DropIndex: %v", err)
	}
	if err := s.DropIndex(ctx, "m:idx"); !errors.Is(err, db.ErrIndexNotFound) {
		t.Errorf("expected ErrIndexNotFound, got %v", err)
	}
	if ok, _ := s.IndexExists(ctx, "m:idx"); ok {
		t.Error("expected index to be gone")
	}
}

func seed(t *testing.T, s *Store, prefix string, vecs map[string][]float32) {
	t.Helper()
	items := make([]db.HashSetItem, 0, len(vecs))
	for id, v := range vecs {
		items = append(items, db.HashSetItem{
			Key:    prefix + id,
			Fields: map[string]string{"item_name": id, "__vector": db.EncodeVector(v)},
		})
	}
	if err := s.HSetMulti(context.Background(), items); err != nil {
		t.Fatalf("seed: %v", err)
	}
}

func TestSearchKNN_CosineOrder(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	_ = s.CreateIndex(ctx, testIndex("m:idx", "m:doc:", 2))
	seed(t, s, "m:doc:", map[string][]float32{
		"same":     {1, 0},
		"diagonal": {1, 1},
		"opposite": {-1, 0},
	})
	seed(t, s, "other:doc:", map[string][]float32{"foreign": {1, 0}})

	res, err := s.SearchKNN(ctx, &db.KNNQuery{IndexName: "m:idx", Vector: []float32{2, 0}, K: 10})
	if err != nil {
		t.Fatalf("SearchKNN: %v", err)
	}
	if len(res.Entries) != 3 {
		t.Fatalf("expected 3 entries (prefix-scoped), got %d", len(res.Entries))
	}
	wantKeys := []string{"m:doc:same", "m:doc:diagonal", "m:doc:opposite"}
	wantDist := []float64{0, 1 - 1/math.Sqrt2, 2}
	for i, e := range res.Entries {
		if e.Key != wantKeys[i] {
			t.Errorf("entries[%d].Key = %q, want %q", i, e.Key, wantKeys[i])
		}
		if math.Abs(e.Score-wantDist[i]) > 1e-6 {
			t.Errorf("entries[%d].Score = %v, want %v", i, e.Score, wantDist[i])
		}
		if _, ok := e.Fields["__vector"]; ok {
			t.Errorf("vector must not be returned by default")
		}
	}

	res, _ = s.SearchKNN(ctx, &db.KNNQuery{IndexName: "m:idx", Vector: []float32{2, 0}, K: 1, ReturnFields: []string{"item_name"}})
	if len(res.Entries) != 1 || res.Entries[0].Fields["item_name"] != "same" {
		t.Errorf("unexpected top-1: %+v", res.Entries)
	}
}

func TestSearchKNN_Errors(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if _, err := s.SearchKNN(ctx, &db.KNNQuery{IndexName: "missing", Vector: []float32{1}, K: 1}); !errors.Is(err, db.ErrIndexNotFound) {
		t.Errorf("expected ErrIndexNotFound, got %v", err)
	}

	_ = s.CreateIndex(ctx, testIndex("m:idx", "m:doc:", 2))
	if _, err := s.SearchKNN(ctx, &db.KNNQuery{IndexName: "m:idx", Vector: []float32{1, 2, 3}, K: 1}); err == nil {
		t.Error("expected dimension mismatch error")
	}
	if _, err := s.SearchKNN(ctx, &db.KNNQuery{IndexName: "m:idx", K: 1}); err == nil {
		t.Error("expected error for empty vector")
	}
}

func TestSearchCount(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	_ = s.CreateIndex(ctx, testIndex("m:idx", "m:doc:", 2))
	seed(t, s, "m:doc:", map[string][]float32{"a": {1, 0}, "b": {0, 1}})

	n, err := s.SearchCount(ctx, "m:idx")
	if err != nil || n != 2 {
		t.Fatalf("SearchCount = %d, %v", n, err)
	}
	if _, err := s.SearchCount(ctx, "nope"); !errors.Is(err, db.ErrIndexNotFound) {
		t.Errorf("expected ErrIndexNotFound, got %v", err)
	}
}
