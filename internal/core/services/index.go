package services

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/custodia-labs/tabula/internal/core/domain"
	"github.com/custodia-labs/tabula/internal/core/ports/driven"
	"github.com/custodia-labs/tabula/internal/core/ports/driving"
	"github.com/custodia-labs/tabula/internal/logger"
)

// Ensure IndexService implements the interface.
var _ driving.IndexService = (*IndexService)(nil)

// summaryPreviewRunes bounds the summary shown in a result context.
const summaryPreviewRunes = 200

// matchPageNumber is the match type of PageByNumber results.
const matchPageNumber domain.SearchScope = "page_number"

type indexedTable struct {
	match       domain.TableMatch
	titleTokens map[string]struct{}
	// fieldTokens covers title, description and category.
	fieldTokens map[string]struct{}
}

type indexedPage struct {
	id      string
	docID   string
	number  int
	title   string
	summary string
	tables  []indexedTable
}

// postings maps a token to page positions in ascending order.
type postings map[string][]int

func (p postings) add(token string, pos int) {
	list := p[token]
	if n := len(list); n > 0 && list[n-1] == pos {
		return
	}
	p[token] = append(list, pos)
}

// IndexService is an inverted keyword index over the document store.
// One posting list is kept per search scope; pages are numbered by
// their position in store order, so ties always resolve the same way.
type IndexService struct {
	store driven.DocumentStore

	// buildMu serialises builds so a stale snapshot is never installed
	// after a newer one.
	buildMu sync.Mutex

	mu      sync.RWMutex
	built   bool
	pages   []indexedPage
	byScope map[domain.SearchScope]postings
}

// NewIndexService creates an index over store. Build must be called
// before searching.
func NewIndexService(store driven.DocumentStore) *IndexService {
	return &IndexService{store: store}
}

// Build rebuilds every posting list from the store.
func (s *IndexService) Build(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("build index: %w", err)
	}
	s.buildMu.Lock()
	defer s.buildMu.Unlock()
	defer logger.Timed("index build")()

	pages := s.store.AllPages()
	indexed := make([]indexedPage, 0, len(pages))
	scopes := map[domain.SearchScope]postings{
		domain.ScopeAll:    {},
		domain.ScopePages:  {},
		domain.ScopeTables: {},
		domain.ScopeTitles: {},
	}

	for pos, page := range pages {
		ip := indexedPage{
			id:      page.ID,
			docID:   page.DocID,
			number:  page.Number,
			title:   page.Title,
			summary: page.Summary,
		}

		pageTokens := append(tokenize(page.Title), tokenize(page.Summary)...)
		pageTokens = append(pageTokens, normalizeTerms(page.Keywords)...)
		for _, tok := range pageTokens {
			scopes[domain.ScopeAll].add(tok, pos)
			scopes[domain.ScopePages].add(tok, pos)
		}
		for _, tok := range tokenize(page.Title) {
			scopes[domain.ScopeTitles].add(tok, pos)
		}

		for _, table := range page.Tables {
			it := indexedTable{
				match: domain.TableMatch{
					TableID:     table.ID,
					Title:       table.Title,
					Description: table.Description,
					Category:    table.Category,
				},
				titleTokens: tokenSet(table.Title),
				fieldTokens: tokenSet(table.Title + " " + table.Description + " " + table.Category),
			}
			for tok := range it.fieldTokens {
				scopes[domain.ScopeAll].add(tok, pos)
				scopes[domain.ScopeTables].add(tok, pos)
			}
			for tok := range it.titleTokens {
				scopes[domain.ScopeTitles].add(tok, pos)
			}
			ip.tables = append(ip.tables, it)
		}

		indexed = append(indexed, ip)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.pages = indexed
	s.byScope = scopes
	s.built = true
	logger.Debug("indexed %d pages, %d tokens", len(indexed), len(scopes[domain.ScopeAll]))
	return nil
}

// IsBuilt reports whether Build has completed.
func (s *IndexService) IsBuilt() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.built
}

// Search ranks pages against a free-text query.
func (s *IndexService) Search(
	ctx context.Context, query string, opts domain.SearchOptions,
) ([]domain.SearchResult, error) {
	logger.Debug("index search %q scope=%s limit=%d", query, opts.Scope, opts.Limit)
	return s.search(ctx, tokenize(query), opts)
}

// SearchByTerms ranks pages against explicit terms.
func (s *IndexService) SearchByTerms(
	ctx context.Context, terms []string, opts domain.SearchOptions,
) ([]domain.SearchResult, error) {
	logger.Debug("index search terms %v scope=%s limit=%d", terms, opts.Scope, opts.Limit)
	return s.search(ctx, normalizeTerms(terms), opts)
}

func (s *IndexService) search(
	ctx context.Context, tokens []string, opts domain.SearchOptions,
) ([]domain.SearchResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	scope, err := domain.ParseSearchScope(string(opts.Scope))
	if err != nil {
		return nil, err
	}
	limit := opts.Limit
	if limit <= 0 {
		limit = domain.DefaultSearchLimit
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.built {
		return nil, domain.ErrNotIndexed
	}
	if len(tokens) == 0 {
		return []domain.SearchResult{}, nil
	}

	index := s.byScope[scope]
	hits := make(map[int][]string)
	for _, tok := range tokens {
		for _, pos := range index[tok] {
			hits[pos] = append(hits[pos], tok)
		}
	}

	positions := make([]int, 0, len(hits))
	for pos := range hits {
		positions = append(positions, pos)
	}
	sort.Ints(positions)

	results := make([]domain.SearchResult, 0, len(positions))
	for _, pos := range positions {
		results = append(results, s.result(pos, scope, hits[pos]))
	}
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})
	if len(results) > limit {
		results = results[:limit]
	}
	return results, nil
}

// result builds the hit for the page at pos. Callers hold the read lock.
func (s *IndexService) result(pos int, scope domain.SearchScope, matched []string) domain.SearchResult {
	page := s.pages[pos]
	res := domain.SearchResult{
		PageID:          page.id,
		PageTitle:       page.title,
		DocID:           page.docID,
		PageNumber:      page.number,
		MatchType:       scope,
		Score:           float64(len(matched)),
		MatchedKeywords: matched,
	}

	if scope == domain.ScopeAll || scope == domain.ScopeTables {
		for _, t := range page.tables {
			var tableHits []string
			for _, tok := range matched {
				if _, ok := t.fieldTokens[tok]; ok {
					tableHits = append(tableHits, tok)
				}
			}
			if len(tableHits) > 0 {
				m := t.match
				m.MatchedKeywords = tableHits
				res.Tables = append(res.Tables, m)
			}
		}
	}

	res.Context = resultContext(page, scope, matched, res.Tables)
	return res
}

// resultContext renders the " | " separated evidence line for a hit.
// Part order depends on the scope.
func resultContext(page indexedPage, scope domain.SearchScope, matched []string, tables []domain.TableMatch) string {
	var parts []string
	if page.title != "" {
		parts = append(parts, "Page: "+page.title)
	}
	summary := ""
	if page.summary != "" {
		summary = "Summary: " + truncateRunes(page.summary, summaryPreviewRunes) + "..."
	}
	keywords := "Matched keywords: " + strings.Join(matched, ", ")
	tableTitles := make([]string, len(tables))
	for i, t := range tables {
		tableTitles[i] = t.Title
	}
	relevant := ""
	if len(tables) > 0 {
		relevant = "Relevant tables: " + strings.Join(tableTitles, ", ")
	}

	switch scope {
	case domain.ScopeAll:
		parts = appendNonEmpty(parts, summary, keywords, relevant)
	case domain.ScopePages:
		parts = appendNonEmpty(parts, summary, keywords)
	case domain.ScopeTables:
		parts = appendNonEmpty(parts, relevant, keywords)
	default:
		parts = appendNonEmpty(parts, keywords)
	}
	return strings.Join(parts, " | ")
}

func appendNonEmpty(dst []string, parts ...string) []string {
	for _, p := range parts {
		if p != "" {
			dst = append(dst, p)
		}
	}
	return dst
}

// AvailableKeywords returns every indexed token, sorted.
func (s *IndexService) AvailableKeywords(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.built {
		return nil, domain.ErrNotIndexed
	}
	all := s.byScope[domain.ScopeAll]
	keywords := make([]string, 0, len(all))
	for tok := range all {
		keywords = append(keywords, tok)
	}
	sort.Strings(keywords)
	return keywords, nil
}

// PageByNumber returns the first page with the given number, searching
// documents in load order. Returns domain.ErrNotFound if none matches.
func (s *IndexService) PageByNumber(ctx context.Context, number int, docID string) (*domain.SearchResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.built {
		return nil, domain.ErrNotIndexed
	}
	for _, page := range s.pages {
		if page.number != number || (docID != "" && page.docID != docID) {
			continue
		}
		return &domain.SearchResult{
			PageID:          page.id,
			PageTitle:       page.title,
			DocID:           page.docID,
			PageNumber:      number,
			MatchType:       matchPageNumber,
			Score:           1,
			MatchedKeywords: []string{},
			Context:         fmt.Sprintf("Page %d", number),
		}, nil
	}
	return nil, fmt.Errorf("page %d: %w", number, domain.ErrNotFound)
}
