package domain

import "fmt"

// KeyPrefix namespaces every key written to the store. Set once at startup from config.
var KeyPrefix = "menurank:"

// Generation identifies one physical build of a named collection.
// A rebuild writes a fresh generation and swaps the collection's active pointer to it.
type Generation struct {
	Collection string
	ID         string
}

// NewGeneration creates a generation handle.
func NewGeneration(collection, id string) Generation {
	return Generation{Collection: collection, ID: id}
}

// IsZero reports whether the generation is unset.
func (g Generation) IsZero() bool { return g.ID == "" }

// IndexName is the FT index name for this generation.
func (g Generation) IndexName() string {
	return fmt.Sprintf("%s%s:%s:idx", KeyPrefix, g.Collection, g.ID)
}

// DocPrefix is the key prefix shared by every document of this generation.
func (g Generation) DocPrefix() string {
	return fmt.Sprintf("%s%s:%s:doc:", KeyPrefix, g.Collection, g.ID)
}

// DocKey is the storage key of a single document.
func (g Generation) DocKey(id string) string {
	return g.DocPrefix() + id
}

// ActiveKey is the pointer key holding the active generation id of a collection.
func ActiveKey(collection string) string {
	return fmt.Sprintf("%s%s:active", KeyPrefix, collection)
}
