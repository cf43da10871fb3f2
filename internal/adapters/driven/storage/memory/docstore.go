package memory

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/custodia-labs/tabula/internal/core/domain"
	"github.com/custodia-labs/tabula/internal/core/ports/driven"
)

// Ensure DocumentStore implements the interface.
var _ driven.DocumentStore = (*DocumentStore)(nil)

// DocumentStore is an in-memory implementation of driven.DocumentStore.
// Documents are kept in insertion order so that unscoped lookups are
// deterministic.
type DocumentStore struct {
	mu        sync.RWMutex
	order     []string
	documents map[string]*domain.Document
}

// NewDocumentStore creates a new in-memory document store.
func NewDocumentStore() *DocumentStore {
	return &DocumentStore{
		documents: make(map[string]*domain.Document),
	}
}

// Save stores a document. Pages and tables are stamped with the document ID.
func (s *DocumentStore) Save(_ context.Context, doc *domain.Document) error {
	if doc == nil || doc.ID == "" {
		return errors.New("save document: missing id")
	}

	for i := range doc.Pages {
		page := &doc.Pages[i]
		page.DocID = doc.ID
		for j := range page.Tables {
			page.Tables[j].DocID = doc.ID
			page.Tables[j].PageID = page.ID
			page.Tables[j].PageNumber = page.Number
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.documents[doc.ID]; !exists {
		s.order = append(s.order, doc.ID)
	}
	s.documents[doc.ID] = doc
	return nil
}

// Remove deletes a document.
func (s *DocumentStore) Remove(_ context.Context, docID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.documents[docID]; !ok {
		return false
	}
	delete(s.documents, docID)
	for i, id := range s.order {
		if id == docID {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return true
}

// Clear removes all documents.
func (s *DocumentStore) Clear(_ context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.order = nil
	s.documents = make(map[string]*domain.Document)
}

// DocumentIDs returns loaded document IDs in insertion order.
func (s *DocumentStore) DocumentIDs() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := make([]string, len(s.order))
	copy(ids, s.order)
	return ids
}

// Document returns a loaded document by ID.
func (s *DocumentStore) Document(docID string) (*domain.Document, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	doc, ok := s.documents[docID]
	return doc, ok
}

// AllPages returns every page of every document.
func (s *DocumentStore) AllPages() []domain.Page {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var pages []domain.Page
	for _, id := range s.order {
		pages = append(pages, s.documents[id].Pages...)
	}
	return pages
}

// AllTables returns every table of every document.
func (s *DocumentStore) AllTables() []domain.Table {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var tables []domain.Table
	for _, id := range s.order {
		tables = appendTables(tables, s.documents[id])
	}
	return tables
}

// PagesOf returns the pages of one document.
func (s *DocumentStore) PagesOf(docID string) []domain.Page {
	s.mu.RLock()
	defer s.mu.RUnlock()
	doc, ok := s.documents[docID]
	if !ok {
		return nil
	}
	return doc.Pages
}

// TablesOf returns the tables of one document.
func (s *DocumentStore) TablesOf(docID string) []domain.Table {
	s.mu.RLock()
	defer s.mu.RUnlock()
	doc, ok := s.documents[docID]
	if !ok {
		return nil
	}
	return appendTables(nil, doc)
}

// PageByID finds a page by its id.
func (s *DocumentStore) PageByID(pageID, docID string) (*domain.Page, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, doc := range s.scope(docID) {
		for i := range doc.Pages {
			if doc.Pages[i].ID == pageID {
				return &doc.Pages[i], true
			}
		}
	}
	return nil, false
}

// TableByID finds a table by its id.
func (s *DocumentStore) TableByID(tableID, docID string) (*domain.Table, bool) {
	return s.findTable(docID, func(t *domain.Table) bool { return t.ID == tableID })
}

// TableByTitle finds a table by title.
func (s *DocumentStore) TableByTitle(title, docID string) (*domain.Table, bool) {
	return s.findTable(docID, func(t *domain.Table) bool { return t.Title == title })
}

// AllKeywords returns the sorted union of document keywords.
func (s *DocumentStore) AllKeywords() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	seen := make(map[string]struct{})
	for _, doc := range s.documents {
		for _, kw := range doc.Keywords {
			seen[kw] = struct{}{}
		}
	}
	keywords := make([]string, 0, len(seen))
	for kw := range seen {
		keywords = append(keywords, kw)
	}
	sort.Strings(keywords)
	return keywords
}

// Statistics returns counts across all documents.
func (s *DocumentStore) Statistics() domain.StoreStatistics {
	s.mu.RLock()
	defer s.mu.RUnlock()
	stats := domain.StoreStatistics{
		TotalDocuments: len(s.order),
		Documents:      make([]domain.DocumentInfo, 0, len(s.order)),
	}
	for _, id := range s.order {
		doc := s.documents[id]
		stats.TotalPages += doc.PageCount
		stats.TotalTables += doc.TableCount
		stats.TotalKeywords += len(doc.Keywords)
		stats.Documents = append(stats.Documents, doc.Summary())
	}
	return stats
}

// scope returns the documents a lookup covers. Callers hold the lock.
func (s *DocumentStore) scope(docID string) []*domain.Document {
	if docID != "" {
		doc, ok := s.documents[docID]
		if !ok {
			return nil
		}
		return []*domain.Document{doc}
	}
	docs := make([]*domain.Document, 0, len(s.order))
	for _, id := range s.order {
		docs = append(docs, s.documents[id])
	}
	return docs
}

func (s *DocumentStore) findTable(docID string, match func(*domain.Table) bool) (*domain.Table, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, doc := range s.scope(docID) {
		for i := range doc.Pages {
			for j := range doc.Pages[i].Tables {
				if t := &doc.Pages[i].Tables[j]; match(t) {
					return t, true
				}
			}
		}
	}
	return nil, false
}

func appendTables(dst []domain.Table, doc *domain.Document) []domain.Table {
	for _, page := range doc.Pages {
		dst = append(dst, page.Tables...)
	}
	return dst
}
