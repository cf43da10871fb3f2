package services

import (
	"fmt"
	"sort"
	"strings"

	"github.com/custodia-labs/tabula/internal/core/domain"
)

// Bucket ceilings. A bucket scores ceiling * min(matched/len(tokens), 1).
const (
	ceilingCategory    = 0.8
	ceilingColumn      = 0.6
	ceilingValues      = 0.4
	ceilingDescription = 0.3

	ceilingContent     = 0.7
	ceilingTableTitles = 0.5
	ceilingKeywords    = 0.3
)

// relevanceSampleRows is how many leading rows feed the values bucket.
const relevanceSampleRows = 3

// bucket is one independently scored match category.
type bucket struct {
	relation string
	label    string
	ceiling  float64
	matches  func(token string) bool
}

// scoreBuckets evaluates buckets in priority order. A later bucket
// replaces the best only with a strictly higher score, so earlier
// buckets win ties. details lists every bucket that became the best.
func scoreBuckets(tokens []string, buckets []bucket) (score float64, relation, details string) {
	var notes []string
	for _, b := range buckets {
		matched := 0
		for _, tok := range tokens {
			if b.matches(tok) {
				matched++
			}
		}
		if matched == 0 {
			continue
		}
		s := b.ceiling * min(float64(matched)/float64(len(tokens)), 1)
		if s > score {
			score = s
			relation = b.relation
			notes = append(notes, fmt.Sprintf("%s: %d tokens", b.label, matched))
		}
	}
	if len(notes) == 0 {
		return 0, "", "No specific matches"
	}
	return score, relation, strings.Join(notes, "; ")
}

// tableProfile is the lowercased view of a table used for scoring.
type tableProfile struct {
	entry       domain.TableEntry
	category    string
	columns     []string
	values      []string
	description string
}

func newTableProfile(entry domain.TableEntry, t *domain.Table) tableProfile {
	p := tableProfile{
		entry:       entry,
		category:    strings.ToLower(entry.Category),
		description: strings.ToLower(t.Description),
	}
	seen := make(map[string]struct{})
	sample := t.Rows
	if len(sample) > relevanceSampleRows {
		sample = sample[:relevanceSampleRows]
	}
	for _, c := range t.Columns {
		p.columns = append(p.columns, strings.ToLower(c.Name))
		for _, r := range sample {
			v, ok := r.Get(c.Name)
			if !ok {
				continue
			}
			s := strings.ToLower(domain.CellString(v))
			if _, dup := seen[s]; dup {
				continue
			}
			seen[s] = struct{}{}
			p.values = append(p.values, s)
		}
	}
	return p
}

func (p *tableProfile) score(tokens []string) domain.TableRelevance {
	score, relation, details := scoreBuckets(tokens, []bucket{
		{domain.RelationCategory, "Category matches", ceilingCategory, func(tok string) bool {
			return strings.Contains(p.category, tok)
		}},
		{domain.RelationColumn, "Column matches", ceilingColumn, func(tok string) bool {
			return containsAny(p.columns, tok)
		}},
		{domain.RelationValues, "Value matches", ceilingValues, func(tok string) bool {
			return containsAny(p.values, tok)
		}},
		{domain.RelationDescription, "Description matches", ceilingDescription, func(tok string) bool {
			return strings.Contains(p.description, tok)
		}},
	})
	return domain.TableRelevance{
		TableName:    p.entry.Title,
		Relation:     relation,
		Score:        score,
		PageNumber:   p.entry.PageNumber,
		DocID:        p.entry.DocID,
		Category:     p.entry.Category,
		MatchDetails: details,
	}
}

// pageProfile is the lowercased view of a page used for scoring.
type pageProfile struct {
	entry       domain.PageEntry
	tableCount  int
	content     string
	tableTitles []string
	words       map[string]struct{}
}

func newPageProfile(entry domain.PageEntry, p *domain.Page) pageProfile {
	titles := make([]string, len(p.Tables))
	for i := range p.Tables {
		titles[i] = strings.ToLower(p.Tables[i].Title)
	}
	return pageProfile{
		entry:       entry,
		tableCount:  len(p.Tables),
		content:     strings.ToLower(p.Content),
		tableTitles: titles,
		words:       tokenSet(p.Content),
	}
}

func (p *pageProfile) score(tokens []string) domain.PageRelevance {
	score, relation, details := scoreBuckets(tokens, []bucket{
		{domain.RelationContent, "Content matches", ceilingContent, func(tok string) bool {
			return strings.Contains(p.content, tok)
		}},
		{domain.RelationTableTitles, "Table title matches", ceilingTableTitles, func(tok string) bool {
			return containsAny(p.tableTitles, tok)
		}},
		{domain.RelationKeywords, "Keyword matches", ceilingKeywords, func(tok string) bool {
			_, ok := p.words[tok]
			return ok
		}},
	})
	return domain.PageRelevance{
		PageTitle:    p.entry.Title,
		Relation:     relation,
		Score:        score,
		PageNumber:   p.entry.Number,
		DocID:        p.entry.DocID,
		TableCount:   p.tableCount,
		MatchDetails: details,
	}
}

func rankTables(profiles []tableProfile, query string) []domain.TableRelevance {
	tokens := queryTokens(query)
	out := []domain.TableRelevance{}
	if len(tokens) == 0 {
		return out
	}
	for i := range profiles {
		if r := profiles[i].score(tokens); r.Score > 0 {
			out = append(out, r)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Score > out[j].Score })
	return out
}

func rankPages(profiles []pageProfile, query string) []domain.PageRelevance {
	tokens := queryTokens(query)
	out := []domain.PageRelevance{}
	if len(tokens) == 0 {
		return out
	}
	for i := range profiles {
		if r := profiles[i].score(tokens); r.Score > 0 {
			out = append(out, r)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Score > out[j].Score })
	return out
}
