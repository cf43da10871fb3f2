package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/tabula/internal/core/domain"
)

func TestScoreBuckets(t *testing.T) {
	always := func(string) bool { return true }
	never := func(string) bool { return false }
	only := func(want string) func(string) bool {
		return func(tok string) bool { return tok == want }
	}

	tests := []struct {
		name         string
		tokens       []string
		buckets      []bucket
		wantScore    float64
		wantRelation string
		wantDetails  string
	}{
		{
			name:        "no bucket matches",
			tokens:      []string{"x"},
			buckets:     []bucket{{"a", "A matches", 0.8, never}},
			wantDetails: "No specific matches",
		},
		{
			name:         "partial match scales ceiling",
			tokens:       []string{"x", "y"},
			buckets:      []bucket{{"a", "A matches", 0.8, only("x")}},
			wantScore:    0.4,
			wantRelation: "a",
			wantDetails:  "A matches: 1 tokens",
		},
		{
			name:   "equal scores keep the earlier bucket",
			tokens: []string{"x"},
			buckets: []bucket{
				{"first", "First matches", 0.5, always},
				{"second", "Second matches", 0.5, always},
			},
			wantScore:    0.5,
			wantRelation: "first",
			wantDetails:  "First matches: 1 tokens",
		},
		{
			name:   "later higher bucket wins and both are noted",
			tokens: []string{"x", "y"},
			buckets: []bucket{
				{"low", "Low matches", 0.8, only("x")},
				{"high", "High matches", 0.6, always},
			},
			wantScore:    0.6,
			wantRelation: "high",
			wantDetails:  "Low matches: 1 tokens; High matches: 2 tokens",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			score, relation, details := scoreBuckets(tt.tokens, tt.buckets)
			assert.InDelta(t, tt.wantScore, score, 1e-9)
			assert.Equal(t, tt.wantRelation, relation)
			assert.Equal(t, tt.wantDetails, details)
		})
	}
}

func TestFindRelevantTables(t *testing.T) {
	svc := NewDiscoveryService(newTestStore(t, pantryDocument()))

	got := svc.FindRelevantTables(context.Background(), "bread storage")
	require.Len(t, got, 2)

	assert.Equal(t, "Shelf Life", got[0].TableName)
	assert.Equal(t, domain.RelationCategory, got[0].Relation)
	assert.InDelta(t, 0.4, got[0].Score, 1e-9)
	assert.Equal(t, "Category matches: 1 tokens", got[0].MatchDetails)
	assert.Equal(t, "pantry", got[0].DocID)
	assert.Equal(t, 2, got[0].PageNumber)

	assert.Equal(t, "Jam Compatibility", got[1].TableName)
	assert.Equal(t, domain.RelationColumn, got[1].Relation)
	assert.InDelta(t, 0.3, got[1].Score, 1e-9)
}

func TestFindRelevantTables_ValuesBucket(t *testing.T) {
	svc := NewDiscoveryService(newTestStore(t, pantryDocument()))

	got := svc.FindRelevantTables(context.Background(), "sourdough")
	require.Len(t, got, 1)
	assert.Equal(t, "Shelf Life", got[0].TableName)
	assert.Equal(t, domain.RelationValues, got[0].Relation)
	assert.InDelta(t, 0.4, got[0].Score, 1e-9)
}

func TestFindRelevantTables_TiesKeepStoreOrder(t *testing.T) {
	svc := NewDiscoveryService(newTestStore(t, pantryDocument()))

	got := svc.FindRelevantTables(context.Background(), "bread")
	require.Len(t, got, 2)
	assert.Equal(t, "Shelf Life", got[0].TableName)
	assert.Equal(t, "Jam Compatibility", got[1].TableName)
	assert.Equal(t, got[0].Score, got[1].Score)
}

func TestFindRelevantPages(t *testing.T) {
	svc := NewDiscoveryService(newTestStore(t, pantryDocument()))

	got := svc.FindRelevantPages(context.Background(), "the sourdough bread")
	require.Len(t, got, 2)

	assert.Equal(t, "Bread Storage", got[0].PageTitle)
	assert.Equal(t, domain.RelationContent, got[0].Relation)
	assert.InDelta(t, 0.7, got[0].Score, 1e-9)
	assert.Equal(t, "Content matches: 2 tokens", got[0].MatchDetails)
	assert.Equal(t, 1, got[0].TableCount)
	assert.Equal(t, 2, got[0].PageNumber)
	assert.Equal(t, "pantry", got[0].DocID)

	assert.Equal(t, "Jam Pairings", got[1].PageTitle)
	assert.InDelta(t, 0.35, got[1].Score, 1e-9)
	assert.Equal(t, 3, got[1].PageNumber)
}

func TestFindRelevantPages_TableTitles(t *testing.T) {
	svc := NewDiscoveryService(newTestStore(t, pantryDocument()))

	got := svc.FindRelevantPages(context.Background(), "shelf")
	require.Len(t, got, 1)
	assert.Equal(t, domain.RelationTableTitles, got[0].Relation)
	assert.InDelta(t, 0.5, got[0].Score, 1e-9)
}

func TestRelevance_NeverNonPositive(t *testing.T) {
	svc := NewDiscoveryService(newTestStore(t, pantryDocument(), nutritionDocument()))
	ctx := context.Background()

	queries := []string{"bread", "jam compatibility score", "peanut calories", "storage days", "glossary"}
	for _, q := range queries {
		for _, r := range svc.FindRelevantTables(ctx, q) {
			assert.Greater(t, r.Score, 0.0, "table %s for %q", r.TableName, q)
		}
		for _, r := range svc.FindRelevantPages(ctx, q) {
			assert.Greater(t, r.Score, 0.0, "page %s for %q", r.PageTitle, q)
		}
	}
}

func TestRelevance_NoMatches(t *testing.T) {
	svc := NewDiscoveryService(newTestStore(t, pantryDocument(), nutritionDocument()))
	ctx := context.Background()

	for _, q := range []string{"zebra quantum", "", "the and of"} {
		assert.Empty(t, svc.FindRelevantTables(ctx, q), q)
		assert.Empty(t, svc.FindRelevantPages(ctx, q), q)
	}
}
