package document

import (
	"fmt"
	"regexp"
)

var idRegex = regexp.MustCompile(`^[a-zA-Z0-9_.-]+$`)

// IDPrefix is prepended to the catalog item id to form the document id.
const IDPrefix = "item_"

// Document is one indexable menu item (immutable value object).
type Document struct {
	id       string
	text     string
	metadata Metadata
}

// New validates and creates a Document.
func New(id, text string, meta Metadata) (Document, error) {
	if id == "" {
		return Document{}, fmt.Errorf("document ID is required")
	}
	if len(id) > 256 {
		return Document{}, fmt.Errorf("document ID too long (max 256)")
	}
	if !idRegex.MatchString(id) {
		return Document{}, fmt.Errorf("document ID %q must be alphanumeric with dots, underscores and hyphens", id)
	}
	return Document{id: id, text: text, metadata: meta}, nil
}

// Reconstruct creates a Document without validation (storage hydration).
func Reconstruct(id, text string, meta Metadata) Document {
	return Document{id: id, text: text, metadata: meta}
}

// ID returns the document identifier ("item_<item id>").
func (d Document) ID() string { return d.id }

// Text returns the text blob that gets embedded.
func (d Document) Text() string { return d.text }

// Metadata returns the typed metadata record.
func (d Document) Metadata() Metadata { return d.metadata }

// IDFor derives the document id for a catalog item id.
func IDFor(itemID string) string { return IDPrefix + itemID }
