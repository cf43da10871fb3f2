package services

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/tabula/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/tabula/internal/core/domain"
)

func row(kv ...any) domain.Row {
	r := make(domain.Row, 0, len(kv)/2)
	for i := 0; i+1 < len(kv); i += 2 {
		r = append(r, domain.Field{Name: kv[i].(string), Value: kv[i+1]})
	}
	return r
}

func columns(names ...string) []domain.Column {
	cols := make([]domain.Column, len(names))
	for i, n := range names {
		cols[i] = domain.Column{Name: n, DataType: "string"}
	}
	return cols
}

// nutritionDocument is one page holding the "Nutrition Facts" table.
func nutritionDocument() *domain.Document {
	return &domain.Document{
		ID:    "pbj",
		Title: "PB&J Guide",
		Pages: []domain.Page{
			{
				ID:       "page_1",
				Number:   1,
				Title:    "Page 1",
				Summary:  "Nutrition information for spreads",
				Content:  "Peanut butter provides protein and healthy fats.",
				Keywords: []string{"Peanut", "spreads"},
				Tables: []domain.Table{
					{
						ID:          "table_1",
						Title:       "Nutrition Facts",
						Description: "Calories per serving",
						Category:    "Nutritional",
						Columns:     columns("Name", "Calories"),
						Rows:        []domain.Row{row("Name", "Peanut Butter", "Calories", "190")},
						Metadata:    map[string]any{"technical_category": "Nutritional"},
					},
				},
			},
		},
		Keywords:   []string{"nutrition"},
		PageCount:  1,
		TableCount: 1,
	}
}

// pantryDocument has three pages and richer tables for ranking tests.
func pantryDocument() *domain.Document {
	return &domain.Document{
		ID:    "pantry",
		Title: "Pantry Handbook",
		Pages: []domain.Page{
			{
				ID:       "page_2",
				Number:   2,
				Title:    "Bread Storage",
				Summary:  "How long bread keeps at room temperature",
				Content:  "Store bread in a cool dry place. Sourdough keeps longer.",
				Keywords: []string{"Bread", "storage"},
				Metadata: map[string]any{"section": "Storage guidance"},
				Tables: []domain.Table{
					{
						ID:          "table_1",
						Title:       "Shelf Life",
						Description: "Days each bread stays fresh",
						Category:    "Storage",
						Columns:     columns("Bread", "Days"),
						Rows: []domain.Row{
							row("Bread", "Sourdough", "Days", json.Number("5")),
							row("Bread", "Rye", "Days", json.Number("7")),
							row("Bread", "White", "Days", json.Number("3")),
							row("Bread", "Brioche", "Days", nil),
						},
					},
				},
			},
			{
				ID:      "page_3",
				Number:  3,
				Title:   "Jam Pairings",
				Summary: "Which jams pair with which breads",
				Content: "Strawberry jam pairs well with white bread.",
				Tables: []domain.Table{
					{
						ID:          "table_1",
						Title:       "Jam Compatibility",
						Description: "Compatibility scores for jam and bread",
						Category:    "Pairing",
						Columns:     columns("Jam", "Bread", "Score"),
						Rows: []domain.Row{
							row("Jam", "Strawberry", "Bread", "White", "Score", json.Number("9")),
							row("Jam", "Grape", "Bread", "Rye", "Score", json.Number("6")),
						},
					},
				},
			},
			{
				ID:      "appendix",
				Title:   "Appendix",
				Content: "Glossary of terms.",
			},
		},
		Keywords:   []string{"bread", "jam"},
		PageCount:  3,
		TableCount: 2,
	}
}

func newTestStore(t *testing.T, docs ...*domain.Document) *memory.DocumentStore {
	t.Helper()
	store := memory.NewDocumentStore()
	for _, d := range docs {
		require.NoError(t, store.Save(context.Background(), d))
	}
	return store
}

func newBuiltIndex(t *testing.T, docs ...*domain.Document) *IndexService {
	t.Helper()
	idx := NewIndexService(newTestStore(t, docs...))
	require.NoError(t, idx.Build(context.Background()))
	return idx
}
