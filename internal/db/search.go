package db

// ScoreField is the pseudo-field carrying the KNN distance in FT.SEARCH replies.
const ScoreField = "__vector_score"

// KNNQuery is the input for vector similarity search.
type KNNQuery struct {
	IndexName     string
	VectorField   string // defaults to "vector"
	Vector        []float32
	K             int
	ReturnFields  []string
	IncludeVector bool
}

// SearchResult is the output of a search operation.
type SearchResult struct {
	Total   int
	Entries []SearchEntry
}

// SearchEntry is a single document hit. Score is the raw distance reported by the index
// (cosine distance for cosine indexes, lower is closer).
type SearchEntry struct {
	Key    string
	Score  float64
	Fields map[string]string
}
