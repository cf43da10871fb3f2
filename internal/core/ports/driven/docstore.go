package driven

import (
	"context"

	"github.com/custodia-labs/tabula/internal/core/domain"
)

// DocumentStore holds loaded documents and exposes uniform accessors across
// them. Every page and table returned carries its owning DocID.
//
// Lookups that take a docID scan only that document; an empty docID scans
// all documents in insertion order and returns the first match.
type DocumentStore interface {
	// Save stores a document, replacing any document with the same ID
	// in place. New documents are appended to the insertion order.
	Save(ctx context.Context, doc *domain.Document) error

	// Remove deletes a document. Returns false if it was not loaded.
	Remove(ctx context.Context, docID string) bool

	// Clear removes all documents.
	Clear(ctx context.Context)

	// DocumentIDs returns loaded document IDs in insertion order.
	DocumentIDs() []string

	// Document returns a loaded document by ID.
	Document(docID string) (*domain.Document, bool)

	// AllPages returns every page of every document.
	AllPages() []domain.Page

	// AllTables returns every table of every document.
	AllTables() []domain.Table

	// PagesOf returns the pages of one document.
	PagesOf(docID string) []domain.Page

	// TablesOf returns the tables of one document.
	TablesOf(docID string) []domain.Table

	// PageByID finds a page by its id.
	PageByID(pageID, docID string) (*domain.Page, bool)

	// TableByID finds a table by its (page-local) id.
	TableByID(tableID, docID string) (*domain.Table, bool)

	// TableByTitle finds a table by title, the primary table key.
	TableByTitle(title, docID string) (*domain.Table, bool)

	// AllKeywords returns the sorted union of document keywords.
	AllKeywords() []string

	// Statistics returns counts across all documents.
	Statistics() domain.StoreStatistics
}
