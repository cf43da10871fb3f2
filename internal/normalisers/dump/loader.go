package dump

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/tidwall/jsonc"

	"github.com/custodia-labs/tabula/internal/core/domain"
	"github.com/custodia-labs/tabula/internal/core/ports/driven"
	"github.com/custodia-labs/tabula/internal/logger"
)

// Ensure Loader implements the interface.
var _ driven.DocumentLoader = (*Loader)(nil)

// Loader reads dump files from disk.
type Loader struct {
	now func() time.Time
}

// New creates a new dump loader.
func New() *Loader {
	return &Loader{now: time.Now}
}

type rawDump struct {
	DocumentInfo    map[string]any `json:"document_info"`
	DocumentSummary struct {
		CombinedKeywords []string `json:"combined_keywords"`
		PageTitles       []string `json:"page_titles"`
	} `json:"document_summary"`
	Pages []rawPage `json:"pages"`
}

type rawPage struct {
	PageID   *string        `json:"page_id"`
	Title    string         `json:"title"`
	Summary  string         `json:"summary"`
	Content  string         `json:"content"`
	Keywords []string       `json:"keywords"`
	Tables   []rawTable     `json:"tables"`
	Metadata map[string]any `json:"metadata"`
}

type rawTable struct {
	TableID     *string         `json:"table_id"`
	Title       *string         `json:"title"`
	Description string          `json:"description"`
	Metadata    map[string]any  `json:"metadata"`
	Columns     []domain.Column `json:"columns"`
	Rows        []domain.Row    `json:"rows"`
}

// Load reads and parses the dump at path. The read is abandoned if ctx
// is done first.
func (l *Loader) Load(ctx context.Context, docID, path string) (*domain.Document, error) {
	type readResult struct {
		data []byte
		err  error
	}
	done := make(chan readResult, 1)
	go func() {
		data, err := os.ReadFile(path)
		done <- readResult{data: data, err: err}
	}()

	var data []byte
	select {
	case <-ctx.Done():
		return nil, &domain.LoadError{DocID: docID, Err: fmt.Errorf("read %s: %w", path, ctx.Err())}
	case res := <-done:
		if res.err != nil {
			return nil, &domain.LoadError{DocID: docID, Err: fmt.Errorf("read %s: %w", path, res.err)}
		}
		data = res.data
	}

	doc, err := l.Parse(docID, data)
	if err != nil {
		return nil, err
	}
	doc.Source = path
	logger.Debug("loaded %s from %s: %d pages, %d tables", docID, path, doc.PageCount, doc.TableCount)
	return doc, nil
}

// Parse decodes a dump held in memory.
func (l *Loader) Parse(docID string, data []byte) (*domain.Document, error) {
	if docID == "" {
		return nil, &domain.LoadError{Err: fmt.Errorf("missing document id")}
	}

	var raw rawDump
	dec := json.NewDecoder(bytes.NewReader(jsonc.ToJSON(data)))
	dec.UseNumber()
	if err := dec.Decode(&raw); err != nil {
		return nil, &domain.LoadError{DocID: docID, Err: fmt.Errorf("parse dump: %w", err)}
	}

	doc := &domain.Document{
		ID:         docID,
		Title:      fmt.Sprintf("Document %s", docID),
		Keywords:   raw.DocumentSummary.CombinedKeywords,
		PageTitles: raw.DocumentSummary.PageTitles,
		Info:       make(map[string]any),
		LoadedAt:   l.now(),
	}
	for k, v := range raw.DocumentInfo {
		if k == "title" {
			if s, ok := v.(string); ok && s != "" {
				doc.Title = s
			}
			continue
		}
		doc.Info[k] = v
	}

	titles := make(map[string]string)
	doc.Pages = make([]domain.Page, 0, len(raw.Pages))
	for i, rp := range raw.Pages {
		page, err := convertPage(docID, i, rp, titles)
		if err != nil {
			return nil, &domain.LoadError{DocID: docID, Err: err}
		}
		doc.Pages = append(doc.Pages, page)
		doc.TableCount += len(page.Tables)
	}
	doc.PageCount = len(doc.Pages)

	return doc, nil
}

// convertPage validates identity fields and fills defaults. titles maps
// table titles already seen in this document to their page id.
func convertPage(docID string, index int, rp rawPage, titles map[string]string) (domain.Page, error) {
	if rp.PageID == nil || *rp.PageID == "" {
		return domain.Page{}, fmt.Errorf("page %d: missing page_id", index)
	}

	page := domain.Page{
		ID:       *rp.PageID,
		DocID:    docID,
		Number:   domain.ParsePageNumber(*rp.PageID),
		Title:    rp.Title,
		Summary:  rp.Summary,
		Content:  rp.Content,
		Keywords: rp.Keywords,
		Metadata: rp.Metadata,
		Tables:   make([]domain.Table, 0, len(rp.Tables)),
	}

	for j, rt := range rp.Tables {
		if rt.TableID == nil || *rt.TableID == "" {
			return domain.Page{}, fmt.Errorf("page %s table %d: missing table_id", page.ID, j)
		}
		if rt.Title == nil || *rt.Title == "" {
			return domain.Page{}, fmt.Errorf("page %s table %s: missing title", page.ID, *rt.TableID)
		}
		if prev, dup := titles[*rt.Title]; dup {
			return domain.Page{}, fmt.Errorf("page %s: duplicate table title %q (first on %s)", page.ID, *rt.Title, prev)
		}
		titles[*rt.Title] = page.ID

		category, _ := rt.Metadata["technical_category"].(string)
		page.Tables = append(page.Tables, domain.Table{
			ID:          *rt.TableID,
			PageID:      page.ID,
			DocID:       docID,
			PageNumber:  page.Number,
			Title:       *rt.Title,
			Description: rt.Description,
			Category:    category,
			Columns:     rt.Columns,
			Rows:        rt.Rows,
			Metadata:    rt.Metadata,
		})
	}

	return page, nil
}
