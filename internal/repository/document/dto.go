package document

import (
	"fmt"

	"github.com/kailas-cloud/menurank/internal/db"
	domdoc "github.com/kailas-cloud/menurank/internal/domain/document"
	"github.com/kailas-cloud/menurank/internal/repository/schema"
)

// buildHashFields converts an entry into a flat map[string]string for HSET.
func buildHashFields(e Entry) map[string]string {
	m := schema.EncodeMetadata(e.Document.Metadata())
	m[schema.FieldText] = e.Document.Text()
	m[schema.FieldVector] = db.EncodeVector(e.Vector)
	return m
}

// parseHashFields converts a flat hash map back into an entry.
func parseHashFields(id string, m map[string]string) (Entry, error) {
	vec, err := db.DecodeVector(m[schema.FieldVector])
	if err != nil {
		return Entry{}, fmt.Errorf("decode vector of %s: %w", id, err)
	}
	return Entry{
		Document: domdoc.Reconstruct(id, m[schema.FieldText], schema.DecodeMetadata(m)),
		Vector:   vec,
	}, nil
}
