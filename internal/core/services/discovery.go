package services

import (
	"context"
	"fmt"
	"slices"
	"sort"
	"strings"
	"sync"

	"github.com/custodia-labs/tabula/internal/core/domain"
	"github.com/custodia-labs/tabula/internal/core/ports/driven"
	"github.com/custodia-labs/tabula/internal/core/ports/driving"
	"github.com/custodia-labs/tabula/internal/logger"
)

// Ensure DiscoveryService implements the interface.
var _ driving.DiscoveryService = (*DiscoveryService)(nil)

const (
	unknownCategory = "Unknown"
	defaultDataType = "string"

	// keywordSampleRows is how many leading rows feed the vocabulary.
	keywordSampleRows = 5

	// summarySamples bounds both sample rows and per-column sample values.
	summarySamples = 3
)

// catalog is everything discovery derives from the store. It is
// immutable once built and replaced as a whole.
type catalog struct {
	pages    []domain.PageEntry
	tables   []domain.TableEntry
	keywords []string

	// Profiles are kept in store order so relevance ties are stable.
	pageProfiles  []pageProfile
	tableProfiles []tableProfile
}

// DiscoveryService lists pages, tables and vocabulary and ranks them
// against free text.
type DiscoveryService struct {
	store driven.DocumentStore

	mu  sync.RWMutex
	cat *catalog
}

// NewDiscoveryService creates a discovery service over store.
func NewDiscoveryService(store driven.DocumentStore) *DiscoveryService {
	return &DiscoveryService{store: store}
}

// Invalidate drops the catalog.
func (s *DiscoveryService) Invalidate() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cat = nil
}

func (s *DiscoveryService) snapshot() *catalog {
	s.mu.RLock()
	cat := s.cat
	s.mu.RUnlock()
	if cat != nil {
		return cat
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cat == nil {
		s.cat = buildCatalog(s.store.AllPages())
	}
	return s.cat
}

func buildCatalog(pages []domain.Page) *catalog {
	defer logger.Timed("catalog build")()

	cat := &catalog{
		pages:  make([]domain.PageEntry, 0, len(pages)),
		tables: []domain.TableEntry{},
	}
	vocabulary := make(map[string]struct{})
	addWords := func(text string) {
		for _, w := range vocabularyWords(text) {
			vocabulary[w] = struct{}{}
		}
	}

	for i := range pages {
		page := &pages[i]
		entry := domain.PageEntry{
			Title:  pageTitle(page),
			Number: page.Number,
			DocID:  page.DocID,
		}
		cat.pages = append(cat.pages, entry)
		cat.pageProfiles = append(cat.pageProfiles, newPageProfile(entry, page))

		addWords(page.Content)
		addMetadataWords(page.Metadata, addWords)

		for j := range page.Tables {
			table := &page.Tables[j]
			te := tableEntry(table)
			cat.tables = append(cat.tables, te)
			cat.tableProfiles = append(cat.tableProfiles, newTableProfile(te, table))

			addWords(table.Title)
			addWords(table.Description)
			for _, c := range table.Columns {
				addWords(c.Name)
			}
			addMetadataWords(table.Metadata, addWords)
			for k, r := range table.Rows {
				if k == keywordSampleRows {
					break
				}
				for _, f := range r {
					if s, ok := f.Value.(string); ok {
						addWords(s)
					}
				}
			}
		}
	}

	sort.SliceStable(cat.pages, func(i, j int) bool {
		a, b := cat.pages[i], cat.pages[j]
		if a.Number != b.Number {
			return a.Number < b.Number
		}
		return a.Title < b.Title
	})
	sort.SliceStable(cat.tables, func(i, j int) bool {
		a, b := cat.tables[i], cat.tables[j]
		if a.PageNumber != b.PageNumber {
			return a.PageNumber < b.PageNumber
		}
		return a.Title < b.Title
	})

	cat.keywords = make([]string, 0, len(vocabulary))
	for w := range vocabulary {
		cat.keywords = append(cat.keywords, w)
	}
	sort.Strings(cat.keywords)

	logger.Debug("catalog: %d pages, %d tables, %d keywords", len(cat.pages), len(cat.tables), len(cat.keywords))
	return cat
}

// addMetadataWords feeds string values, and strings inside list values,
// to add.
func addMetadataWords(metadata map[string]any, add func(string)) {
	for _, v := range metadata {
		switch x := v.(type) {
		case string:
			add(x)
		case []any:
			for _, item := range x {
				if s, ok := item.(string); ok {
					add(s)
				}
			}
		case []string:
			for _, s := range x {
				add(s)
			}
		}
	}
}

func pageTitle(p *domain.Page) string {
	if p.Title != "" {
		return p.Title
	}
	return fmt.Sprintf("Page %d", p.Number)
}

func tableCategory(t *domain.Table) string {
	if t.Category != "" {
		return t.Category
	}
	return unknownCategory
}

func tableEntry(t *domain.Table) domain.TableEntry {
	return domain.TableEntry{
		Title:       t.Title,
		Category:    tableCategory(t),
		PageNumber:  t.PageNumber,
		DocID:       t.DocID,
		RowCount:    len(t.Rows),
		ColumnCount: len(t.Columns),
		Description: t.Description,
	}
}

// ListPages returns all pages sorted by page number, then title.
func (s *DiscoveryService) ListPages(_ context.Context) []domain.PageEntry {
	return s.snapshot().pages
}

// ListTables returns all tables sorted by page number, then title.
func (s *DiscoveryService) ListTables(_ context.Context) []domain.TableEntry {
	return s.snapshot().tables
}

// ListKeywords returns the sorted vocabulary.
func (s *DiscoveryService) ListKeywords(_ context.Context) []string {
	return s.snapshot().keywords
}

// TablesByCategory filters tables by category, ignoring case.
func (s *DiscoveryService) TablesByCategory(_ context.Context, category string) []domain.TableEntry {
	out := []domain.TableEntry{}
	for _, t := range s.snapshot().tables {
		if strings.EqualFold(t.Category, category) {
			out = append(out, t)
		}
	}
	return out
}

// FindRelevantTables scores every table against query.
func (s *DiscoveryService) FindRelevantTables(_ context.Context, query string) []domain.TableRelevance {
	logger.Debug("relevant tables for %q", query)
	return rankTables(s.snapshot().tableProfiles, query)
}

// FindRelevantPages scores every page against query.
func (s *DiscoveryService) FindRelevantPages(_ context.Context, query string) []domain.PageRelevance {
	logger.Debug("relevant pages for %q", query)
	return rankPages(s.snapshot().pageProfiles, query)
}

// TableSummary describes a table with sample values and rows.
func (s *DiscoveryService) TableSummary(_ context.Context, title string) (*domain.TableSummary, bool) {
	table, ok := s.store.TableByTitle(title, "")
	if !ok {
		return nil, false
	}
	return summarizeTable(table), true
}

func summarizeTable(t *domain.Table) *domain.TableSummary {
	sample := t.Rows
	if len(sample) > summarySamples {
		sample = sample[:summarySamples]
	}

	cols := make([]domain.ColumnSummary, 0, len(t.Columns))
	for _, c := range t.Columns {
		cs := domain.ColumnSummary{
			Name:         c.Name,
			DataType:     c.DataType,
			SampleValues: []string{},
		}
		if cs.Name == "" {
			cs.Name = unknownCategory
		}
		if cs.DataType == "" {
			cs.DataType = defaultDataType
		}
		for _, r := range sample {
			v, ok := r.Get(c.Name)
			if !ok {
				continue
			}
			if s := domain.CellString(v); !slices.Contains(cs.SampleValues, s) {
				cs.SampleValues = append(cs.SampleValues, s)
			}
		}
		cols = append(cols, cs)
	}

	return &domain.TableSummary{
		Title:       t.Title,
		Description: t.Description,
		Category:    tableCategory(t),
		PageNumber:  t.PageNumber,
		DocID:       t.DocID,
		RowCount:    len(t.Rows),
		ColumnCount: len(t.Columns),
		Columns:     cols,
		SampleRows:  sample,
		Metadata:    t.Metadata,
	}
}
