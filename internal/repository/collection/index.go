package collection

import (
	"github.com/kailas-cloud/menurank/internal/db"
	"github.com/kailas-cloud/menurank/internal/domain"
	"github.com/kailas-cloud/menurank/internal/repository/schema"
)

// buildIndex creates the menu index definition of a generation.
// Filterable fields are indexed alongside the cosine HNSW vector.
func buildIndex(gen domain.Generation, dim int, hnsw HNSWConfig) (*db.IndexDefinition, error) {
	return db.NewIndex(gen.IndexName()).
		Prefix(gen.DocPrefix()).
		Tag(schema.FieldRestaurantName, schema.FieldLocation, schema.FieldCuisineType,
			schema.FieldSpiceLevel, schema.FieldVeg).
		Numeric(schema.FieldPrice, schema.FieldDeliveryTimeMinutes,
			schema.FieldAverageRating, schema.FieldPopularityScore).
		VectorHNSW(schema.FieldVector, dim, db.DistanceCosine, hnsw.M, hnsw.EFConstruct).
		As(schema.VectorAlias).
		Build()
}
