package ranking

import "github.com/kailas-cloud/menurank/internal/domain/search/result"

// bounds is the min/max of one signal across the whole candidate set.
type bounds struct {
	lo, hi float64
}

func newBounds(cands []result.Candidate, get func(result.Candidate) float64) bounds {
	b := bounds{lo: get(cands[0]), hi: get(cands[0])}
	for _, c := range cands[1:] {
		v := get(c)
		b.lo = min(b.lo, v)
		b.hi = max(b.hi, v)
	}
	return b
}

// norm maps v into [0,1]. A signal with no spread contributes 0 for everyone.
func (b bounds) norm(v float64) float64 {
	if b.hi == b.lo {
		return 0
	}
	return (v - b.lo) / (b.hi - b.lo)
}
