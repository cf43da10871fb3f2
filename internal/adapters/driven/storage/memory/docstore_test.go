package memory

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/tabula/internal/core/domain"
)

func testDocument(id string, tableTitle string, keywords ...string) *domain.Document {
	return &domain.Document{
		ID:       id,
		Title:    "Document " + id,
		Keywords: keywords,
		Pages: []domain.Page{
			{
				ID:     "page_1",
				Number: 1,
				Title:  "Overview",
				Tables: []domain.Table{
					{ID: "table_1", Title: tableTitle, Category: "Financial"},
				},
			},
			{ID: "page_2", Number: 2, Title: "Notes"},
		},
		PageCount:  2,
		TableCount: 1,
	}
}

func TestNewDocumentStore(t *testing.T) {
	store := NewDocumentStore()
	require.NotNil(t, store)
	assert.Empty(t, store.DocumentIDs())
	assert.Empty(t, store.AllPages())
	assert.Empty(t, store.AllKeywords())
}

func TestDocumentStore_Save_StampsDocID(t *testing.T) {
	store := NewDocumentStore()
	require.NoError(t, store.Save(context.Background(), testDocument("a", "Revenue")))

	for _, p := range store.AllPages() {
		assert.Equal(t, "a", p.DocID)
	}
	tables := store.AllTables()
	require.Len(t, tables, 1)
	assert.Equal(t, "a", tables[0].DocID)
	assert.Equal(t, "page_1", tables[0].PageID)
	assert.Equal(t, 1, tables[0].PageNumber)
}

func TestDocumentStore_Save_MissingID(t *testing.T) {
	store := NewDocumentStore()
	assert.Error(t, store.Save(context.Background(), &domain.Document{}))
	assert.Error(t, store.Save(context.Background(), nil))
}

func TestDocumentStore_Save_ReplaceKeepsOrder(t *testing.T) {
	store := NewDocumentStore()
	ctx := context.Background()
	require.NoError(t, store.Save(ctx, testDocument("a", "Revenue")))
	require.NoError(t, store.Save(ctx, testDocument("b", "Costs")))
	require.NoError(t, store.Save(ctx, testDocument("a", "Revenue v2")))

	assert.Equal(t, []string{"a", "b"}, store.DocumentIDs())

	_, ok := store.TableByTitle("Revenue", "")
	assert.False(t, ok)
	tbl, ok := store.TableByTitle("Revenue v2", "")
	require.True(t, ok)
	assert.Equal(t, "a", tbl.DocID)
}

func TestDocumentStore_Remove(t *testing.T) {
	store := NewDocumentStore()
	ctx := context.Background()
	require.NoError(t, store.Save(ctx, testDocument("a", "Revenue")))
	require.NoError(t, store.Save(ctx, testDocument("b", "Costs")))

	assert.True(t, store.Remove(ctx, "a"))
	assert.False(t, store.Remove(ctx, "a"))
	assert.Equal(t, []string{"b"}, store.DocumentIDs())

	_, ok := store.Document("a")
	assert.False(t, ok)
	assert.Len(t, store.AllTables(), 1)
}

func TestDocumentStore_Clear(t *testing.T) {
	store := NewDocumentStore()
	ctx := context.Background()
	require.NoError(t, store.Save(ctx, testDocument("a", "Revenue", "alpha")))

	store.Clear(ctx)

	assert.Empty(t, store.DocumentIDs())
	assert.Empty(t, store.AllKeywords())
	assert.Equal(t, 0, store.Statistics().TotalDocuments)
}

func TestDocumentStore_Lookups(t *testing.T) {
	store := NewDocumentStore()
	ctx := context.Background()
	require.NoError(t, store.Save(ctx, testDocument("a", "Shared")))
	require.NoError(t, store.Save(ctx, testDocument("b", "Shared")))

	tests := []struct {
		name    string
		lookup  func() (string, bool)
		wantDoc string
		wantOK  bool
	}{
		{
			name: "table by title unscoped takes first document",
			lookup: func() (string, bool) {
				tbl, ok := store.TableByTitle("Shared", "")
				if !ok {
					return "", false
				}
				return tbl.DocID, true
			},
			wantDoc: "a",
			wantOK:  true,
		},
		{
			name: "table by title scoped",
			lookup: func() (string, bool) {
				tbl, ok := store.TableByTitle("Shared", "b")
				if !ok {
					return "", false
				}
				return tbl.DocID, true
			},
			wantDoc: "b",
			wantOK:  true,
		},
		{
			name: "table by id scoped",
			lookup: func() (string, bool) {
				tbl, ok := store.TableByID("table_1", "b")
				if !ok {
					return "", false
				}
				return tbl.DocID, true
			},
			wantDoc: "b",
			wantOK:  true,
		},
		{
			name: "page by id unscoped",
			lookup: func() (string, bool) {
				p, ok := store.PageByID("page_2", "")
				if !ok {
					return "", false
				}
				return p.DocID, true
			},
			wantDoc: "a",
			wantOK:  true,
		},
		{
			name: "unknown document scope",
			lookup: func() (string, bool) {
				_, ok := store.PageByID("page_1", "missing")
				return "", ok
			},
			wantOK: false,
		},
		{
			name: "unknown table",
			lookup: func() (string, bool) {
				_, ok := store.TableByTitle("Nope", "")
				return "", ok
			},
			wantOK: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			docID, ok := tt.lookup()
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.wantDoc, docID)
		})
	}

	assert.Len(t, store.PagesOf("a"), 2)
	assert.Len(t, store.TablesOf("b"), 1)
	assert.Nil(t, store.PagesOf("missing"))
	assert.Nil(t, store.TablesOf("missing"))
}

func TestDocumentStore_AllKeywords_SortedUnion(t *testing.T) {
	store := NewDocumentStore()
	ctx := context.Background()
	require.NoError(t, store.Save(ctx, testDocument("a", "T1", "revenue", "assets")))
	require.NoError(t, store.Save(ctx, testDocument("b", "T2", "assets", "debt")))

	assert.Equal(t, []string{"assets", "debt", "revenue"}, store.AllKeywords())
}

func TestDocumentStore_Statistics(t *testing.T) {
	store := NewDocumentStore()
	ctx := context.Background()
	require.NoError(t, store.Save(ctx, testDocument("a", "T1", "x", "y")))
	require.NoError(t, store.Save(ctx, testDocument("b", "T2", "z")))

	stats := store.Statistics()
	assert.Equal(t, 2, stats.TotalDocuments)
	assert.Equal(t, 4, stats.TotalPages)
	assert.Equal(t, 2, stats.TotalTables)
	assert.Equal(t, 3, stats.TotalKeywords)
	require.Len(t, stats.Documents, 2)
	assert.Equal(t, "a", stats.Documents[0].ID)
	assert.Equal(t, 2, stats.Documents[0].KeywordCount)
}

func TestDocumentStore_ConcurrentAccess(t *testing.T) {
	store := NewDocumentStore()
	ctx := context.Background()
	var wg sync.WaitGroup

	for i := 0; i < 10; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_ = store.Save(ctx, testDocument("a", "Revenue"))
		}()
		go func() {
			defer wg.Done()
			_ = store.AllTables()
			_, _ = store.TableByTitle("Revenue", "")
		}()
	}
	wg.Wait()

	assert.Equal(t, []string{"a"}, store.DocumentIDs())
}
