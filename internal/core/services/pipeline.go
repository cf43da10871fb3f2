package services

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/tabula/internal/core/domain"
	"github.com/custodia-labs/tabula/internal/core/ports/driven"
	"github.com/custodia-labs/tabula/internal/core/ports/driving"
	"github.com/custodia-labs/tabula/internal/logger"
)

// Ensure PipelineService implements the interface.
var _ driving.AnswerService = (*PipelineService)(nil)

// PipelineService answers questions with a fixed three-phase flow and no
// decision-maker: list everything, score relevance against the question,
// then fetch the best table and page.
type PipelineService struct {
	store   driven.DocumentStore
	tools   driving.ToolService
	answers responder
	cfg     domain.AgentConfig
	newID   func() string
}

// NewPipelineService creates a pipeline. generator and observer may be nil.
func NewPipelineService(
	store driven.DocumentStore,
	tools driving.ToolService,
	generator driven.AnswerGenerator,
	observer driven.ToolObserver,
	cfg domain.AgentConfig,
) *PipelineService {
	cfg = cfg.WithDefaults()
	return &PipelineService{
		store:   store,
		tools:   tools,
		answers: responder{generator: generator, observer: observer, cfg: cfg, now: time.Now},
		cfg:     cfg,
		newID:   uuid.NewString,
	}
}

// Ask answers a question about the loaded documents.
func (s *PipelineService) Ask(ctx context.Context, question string) (*domain.Response, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return nil, &domain.BadParameterError{Param: "question"}
	}
	docIDs := s.store.DocumentIDs()
	if len(docIDs) == 0 {
		return nil, domain.ErrNoDocuments
	}

	start := s.answers.now()
	qc := domain.NewQueryContext(s.newID(), question, docIDs)
	logger.Section("Pipeline")
	logger.Debug("Query %s: %q", qc.ID, question)

	phases := []func(context.Context, *domain.QueryContext) []domain.ToolCall{
		discoveryPhase,
		explorationPhase,
		retrievalPhase,
	}
	stop := domain.StopPipeline
	for i, phase := range phases {
		if err := ctx.Err(); err != nil {
			logger.Warn("phase %d: cancelled: %v", i+1, err)
			stop = domain.StopCancelled
			break
		}
		qc.Steps = i + 1
		calls := phase(ctx, qc)
		logger.Debug("phase %d: %d calls", qc.Steps, len(calls))
		for _, call := range calls {
			qc.Record(runTool(ctx, s.tools, s.cfg.ToolTimeout, qc.Steps, call, false, false))
		}
	}

	return s.answers.respond(ctx, qc, domain.ModePipeline, stop, start), nil
}

func discoveryPhase(context.Context, *domain.QueryContext) []domain.ToolCall {
	return []domain.ToolCall{
		{Name: domain.ToolViewPages},
		{Name: domain.ToolViewKeywords},
		{Name: domain.ToolViewTables},
	}
}

func explorationPhase(_ context.Context, qc *domain.QueryContext) []domain.ToolCall {
	params := map[string]any{"search_query": qc.Question}
	return []domain.ToolCall{
		{Name: domain.ToolFindRelevantTables, Parameters: params},
		{Name: domain.ToolFindRelevantPages, Parameters: params},
	}
}

// retrievalPhase fetches the top-ranked table and page found during
// exploration.
func retrievalPhase(_ context.Context, qc *domain.QueryContext) []domain.ToolCall {
	var calls []domain.ToolCall
	for i := range qc.Calls {
		rel, ok := qc.Calls[i].Result.(*domain.RelevanceResult)
		if !ok {
			continue
		}
		switch {
		case len(rel.Tables) > 0:
			params := map[string]any{"table_name": rel.Tables[0].TableName}
			calls = append(calls,
				domain.ToolCall{Name: domain.ToolTableSummary, Parameters: params},
				domain.ToolCall{Name: domain.ToolGetTableData, Parameters: params},
			)
		case len(rel.Pages) > 0:
			calls = append(calls, domain.ToolCall{
				Name:       domain.ToolGetPageContent,
				Parameters: map[string]any{"page_identifier": rel.Pages[0].PageTitle},
			})
		}
	}
	return calls
}
