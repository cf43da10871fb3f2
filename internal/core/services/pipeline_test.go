package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/tabula/internal/core/domain"
	"github.com/custodia-labs/tabula/internal/core/ports/driven"
)

func newTestPipeline(t *testing.T, generator driven.AnswerGenerator, observer driven.ToolObserver) *PipelineService {
	t.Helper()
	store := newTestStore(t, nutritionDocument(), pantryDocument())
	idx := NewIndexService(store)
	require.NoError(t, idx.Build(context.Background()))
	tools := NewToolService(NewDiscoveryService(store), NewRetrievalService(store), idx, nil)
	p := NewPipelineService(store, tools, generator, observer, domain.AgentConfig{})
	p.newID = func() string { return "p-1" }
	return p
}

func TestPipelineService_ThreePhases(t *testing.T) {
	gen := &mockGenerator{answer: "Sourdough keeps 5 days."}
	obs := &mockObserver{}
	pipeline := newTestPipeline(t, gen, obs)

	resp, err := pipeline.Ask(context.Background(), "shelf life of sourdough bread storage")

	require.NoError(t, err)
	assert.Equal(t, "p-1", resp.ID)
	assert.Equal(t, domain.ModePipeline, resp.Metadata.Mode)
	assert.Equal(t, domain.StopPipeline, resp.Metadata.StopReason)
	assert.Equal(t, 3, resp.Metadata.Steps)
	assert.Equal(t, "Sourdough keeps 5 days.", resp.Answer)
	assert.Equal(t, []string{
		"view_pages", "view_keywords", "view_tables",
		"find_relevant_tables", "find_relevant_pages",
		"table_summary", "get_table_data", "get_page_content",
	}, resp.ToolsUsed)

	calls := resp.Metadata.ToolCalls
	require.Len(t, calls, 8)
	assert.Equal(t, "Shelf Life", calls[5].Parameters["table_name"])
	assert.Equal(t, "Bread Storage", calls[7].Parameters["page_identifier"])
	for _, c := range calls {
		assert.Empty(t, c.Error, c.Tool)
	}

	var titles []string
	for _, s := range resp.Sources {
		titles = append(titles, s.Title)
	}
	assert.Contains(t, titles, "Shelf Life")
	assert.Contains(t, titles, "Bread Storage")

	for _, section := range []string{sectionDiscovery, sectionExploration, sectionRetrieval} {
		assert.Contains(t, gen.evidence, section)
	}
	assert.Equal(t, []string{"pipeline:pipeline"}, obs.queries)
}

func TestPipelineService_NothingRelevant(t *testing.T) {
	pipeline := newTestPipeline(t, nil, nil)

	resp, err := pipeline.Ask(context.Background(), "xyzzy plugh")

	require.NoError(t, err)
	assert.Len(t, resp.ToolsUsed, 5)
	assert.Empty(t, resp.Sources)
	assert.True(t, resp.Metadata.Degraded)
	assert.NotContains(t, resp.Context, sectionRetrieval)
}

func TestPipelineService_Cancelled(t *testing.T) {
	pipeline := newTestPipeline(t, &mockGenerator{answer: "x"}, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	resp, err := pipeline.Ask(ctx, "bread")

	require.NoError(t, err)
	assert.Equal(t, domain.StopCancelled, resp.Metadata.StopReason)
	assert.Empty(t, resp.Metadata.ToolCalls)
	assert.Equal(t, noContext, resp.Context)
}

func TestPipelineService_RejectsBadInput(t *testing.T) {
	pipeline := newTestPipeline(t, nil, nil)
	_, err := pipeline.Ask(context.Background(), "")
	assert.ErrorIs(t, err, domain.ErrBadParameter)
}
