package bolt

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"

	"go.etcd.io/bbolt"

	"github.com/kailas-cloud/menurank/internal/db"
)

// SearchKNN scores every document under the index prefixes and returns the k closest.
// Score is the distance for the index's metric, matching FT.SEARCH __vector_score.
func (s *Store) SearchKNN(ctx context.Context, q *db.KNNQuery) (*db.SearchResult, error) {
	if q.IndexName == "" {
		return nil, fmt.Errorf("index name is required")
	}
	if len(q.Vector) == 0 {
		return nil, fmt.Errorf("vector is required")
	}
	if q.K <= 0 {
		return nil, fmt.Errorf("k must be positive")
	}

	var entries []db.SearchEntry
	err := s.db.View(func(tx *bbolt.Tx) error {
		def, err := loadIndex(tx, q.IndexName)
		if err != nil {
			return err
		}
		vf := def.VectorField()
		if vf == nil {
			return fmt.Errorf("index %s has no vector field", def.Name)
		}
		if q.VectorField != "" && q.VectorField != vf.QueryName() {
			return fmt.Errorf("index %s has no vector field %q", def.Name, q.VectorField)
		}
		if len(q.Vector) != vf.VectorDim {
			return fmt.Errorf("query dimension %d, index dimension %d", len(q.Vector), vf.VectorDim)
		}

		return forEachPrefixed(tx, def.Prefixes, func(k, v []byte) error {
			if err := ctx.Err(); err != nil {
				return err
			}
			fields, err := decodeHash(v)
			if err != nil {
				return nil // skip corrupted entries
			}
			vec, err := db.DecodeVector(fields[vf.Name])
			if err != nil || len(vec) != vf.VectorDim {
				return nil // not indexed, as FT would skip it
			}
			entries = append(entries, db.SearchEntry{
				Key:    string(k),
				Score:  distance(vf.VectorDistance, q.Vector, vec),
				Fields: project(fields, vf.Name, q),
			})
			return nil
		})
	})
	if errors.Is(err, db.ErrIndexNotFound) {
		return nil, err
	}
	if err != nil {
		return nil, &db.Error{Op: db.OpSearch, Err: err}
	}

	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].Score != entries[j].Score {
			return entries[i].Score < entries[j].Score
		}
		return entries[i].Key < entries[j].Key
	})
	if len(entries) > q.K {
		entries = entries[:q.K]
	}
	return &db.SearchResult{Total: len(entries), Entries: entries}, nil
}

func project(fields map[string]string, vectorField string, q *db.KNNQuery) map[string]string {
	if len(q.ReturnFields) > 0 {
		out := make(map[string]string, len(q.ReturnFields))
		for _, f := range q.ReturnFields {
			if v, ok := fields[f]; ok {
				out[f] = v
			}
		}
		return out
	}
	if !q.IncludeVector {
		delete(fields, vectorField)
	}
	return fields
}

func distance(metric db.DistanceMetric, a, b []float32) float64 {
	var dot, na, nb, l2 float64
	for i := range a {
		x, y := float64(a[i]), float64(b[i])
		dot += x * y
		na += x * x
		nb += y * y
		l2 += (x - y) * (x - y)
	}
	switch metric {
	case db.DistanceL2:
		return l2
	case db.DistanceIP:
		return 1 - dot
	default:
		if na == 0 || nb == 0 {
			return 1
		}
		return 1 - dot/(math.Sqrt(na)*math.Sqrt(nb))
	}
}
