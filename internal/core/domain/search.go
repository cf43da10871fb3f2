package domain

// SearchScope restricts which fields a keyword search considers.
type SearchScope string

// Available search scopes.
const (
	// ScopeAll searches pages and attaches matching tables as evidence.
	ScopeAll SearchScope = "all"

	// ScopePages searches page title, summary and keywords.
	ScopePages SearchScope = "pages"

	// ScopeTables searches table title, description and category.
	ScopeTables SearchScope = "tables"

	// ScopeTitles searches page and table titles only.
	ScopeTitles SearchScope = "titles"
)

// AllSearchScopes returns every valid scope.
func AllSearchScopes() []SearchScope {
	return []SearchScope{ScopeAll, ScopePages, ScopeTables, ScopeTitles}
}

// IsValid returns true if the scope is recognised.
func (s SearchScope) IsValid() bool {
	switch s {
	case ScopeAll, ScopePages, ScopeTables, ScopeTitles:
		return true
	default:
		return false
	}
}

// String returns the string representation.
func (s SearchScope) String() string {
	return string(s)
}

// ParseSearchScope converts a string to a scope. Empty means ScopeAll.
func ParseSearchScope(s string) (SearchScope, error) {
	if s == "" {
		return ScopeAll, nil
	}
	scope := SearchScope(s)
	if !scope.IsValid() {
		valid := make([]string, 0, 4)
		for _, v := range AllSearchScopes() {
			valid = append(valid, string(v))
		}
		return "", &BadParameterError{Param: "scope", Value: s, Valid: valid}
	}
	return scope, nil
}

// DefaultSearchLimit is used when SearchOptions.Limit is not positive.
const DefaultSearchLimit = 10

// SearchOptions configures a keyword search.
type SearchOptions struct {
	// Scope selects the indexed fields. Empty means ScopeAll.
	Scope SearchScope

	// Limit is the maximum number of results.
	Limit int
}

// TableMatch is a table attached to a page result as evidence.
type TableMatch struct {
	TableID         string   `json:"table_id"`
	Title           string   `json:"title"`
	Description     string   `json:"description,omitempty"`
	Category        string   `json:"category,omitempty"`
	MatchedKeywords []string `json:"matched_keywords,omitempty"`
}

// SearchResult is a single page hit from the keyword index.
type SearchResult struct {
	PageID          string       `json:"page_id"`
	PageTitle       string       `json:"page_title"`
	DocID           string       `json:"doc_id"`
	PageNumber      int          `json:"page_number"`
	MatchType       SearchScope  `json:"match_type"`
	Score           float64      `json:"score"`
	MatchedKeywords []string     `json:"matched_keywords"`
	Context         string       `json:"context"`
	Tables          []TableMatch `json:"tables,omitempty"`
}
