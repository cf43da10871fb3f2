package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/tabula/internal/core/domain"
	"github.com/custodia-labs/tabula/internal/core/ports/driven"
	"github.com/custodia-labs/tabula/internal/core/ports/driving"
	"github.com/custodia-labs/tabula/internal/logger"
)

// Ensure AgentService implements the interface.
var _ driving.AnswerService = (*AgentService)(nil)

// AgentService answers questions with a bounded decide/execute loop.
//
// The loop seeds the query context with discovery calls, then asks the
// decider for one step at a time until it answers, runs out of rounds or
// repeats its last call. Decider failures never abort a query: the first
// failure calls the fallback tool and any later failure answers with what
// has been gathered.
type AgentService struct {
	store   driven.DocumentStore
	tools   driving.ToolService
	decider driven.Decider
	answers responder
	cfg     domain.AgentConfig
	newID   func() string
}

// NewAgentService creates an agent. decider, generator and observer may
// be nil; without a decider every query takes the fallback path and
// without a generator answers degrade to a context dump.
func NewAgentService(
	store driven.DocumentStore,
	tools driving.ToolService,
	decider driven.Decider,
	generator driven.AnswerGenerator,
	observer driven.ToolObserver,
	cfg domain.AgentConfig,
) *AgentService {
	cfg = cfg.WithDefaults()
	return &AgentService{
		store:   store,
		tools:   tools,
		decider: decider,
		answers: responder{generator: generator, observer: observer, cfg: cfg, now: time.Now},
		cfg:     cfg,
		newID:   uuid.NewString,
	}
}

// Config returns the effective loop configuration.
func (s *AgentService) Config() domain.AgentConfig {
	return s.cfg
}

// Ask answers a question about the loaded documents.
func (s *AgentService) Ask(ctx context.Context, question string) (*domain.Response, error) {
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

	logger.Section("Agent Loop")
	logger.Debug("Query %s: %q over %d documents", qc.ID, question, len(docIDs))

	qc.Steps = 1
	for _, call := range s.cfg.SeedCalls {
		s.execute(ctx, qc, call, true, false)
	}

	stop := s.loop(ctx, qc)
	return s.answers.respond(ctx, qc, domain.ModeAgent, stop, start), nil
}

// loop runs decision rounds and returns the reason it stopped.
func (s *AgentService) loop(ctx context.Context, qc *domain.QueryContext) string {
	for round := 1; round <= s.cfg.MaxRounds; round++ {
		if err := ctx.Err(); err != nil {
			logger.Warn("round %d: cancelled: %v", round, err)
			return domain.StopCancelled
		}

		decision, err := s.decide(ctx, qc, round)
		if err != nil {
			logger.Warn("round %d: %v", round, err)
			qc.Fail("decision round %d: %v", round, err)
			if qc.TargetedCalls() > 0 {
				return domain.StopFallback
			}
			logger.Debug("round %d: falling back to %s", round, s.cfg.FallbackTool)
			qc.Steps++
			s.execute(ctx, qc, domain.ToolCall{Name: s.cfg.FallbackTool}, false, true)
			continue
		}

		switch decision.Action {
		case domain.ActionAnswer:
			logger.Debug("round %d: answer", round)
			return domain.StopAnswer
		case domain.ActionNoMoreTools:
			logger.Debug("round %d: no more tools", round)
			return domain.StopNoMoreTools
		}

		logger.Debug("round %d: %s", round, decision.Call)
		qc.Steps++
		s.execute(ctx, qc, *decision.Call, false, false)
		if qc.RepeatedLastCall() {
			logger.Warn("round %d: %s repeated, stopping", round, decision.Call.Name)
			return domain.StopRepeatedCall
		}
	}
	logger.Debug("round limit %d reached", s.cfg.MaxRounds)
	return domain.StopMaxRounds
}

func (s *AgentService) decide(ctx context.Context, qc *domain.QueryContext, round int) (domain.Decision, error) {
	if s.decider == nil {
		return domain.Decision{}, fmt.Errorf("%w: %w", domain.ErrExternalService, domain.ErrLLMUnavailable)
	}

	req := driven.DecisionRequest{
		Question: qc.Question,
		Context:  formatContext(qc),
		Catalog:  s.tools.Catalog(),
		Round:    round,
		Calls:    qc.CallKeys(),
	}
	decision, err := callWithTimeout(ctx, s.cfg.DecisionTimeout, func(ctx context.Context) (domain.Decision, error) {
		return s.decider.Decide(ctx, req)
	})
	if err != nil {
		return domain.Decision{}, externalFailure("decision", s.cfg.DecisionTimeout, err)
	}
	if err := decision.Validate(); err != nil {
		return domain.Decision{}, err
	}
	return decision, nil
}

// execute runs one tool call and records the outcome. Failures are
// recorded on the call log and never stop the loop.
func (s *AgentService) execute(ctx context.Context, qc *domain.QueryContext, call domain.ToolCall, seeded, fallback bool) {
	qc.Record(runTool(ctx, s.tools, s.cfg.ToolTimeout, qc.Steps, call, seeded, fallback))
}

func runTool(
	ctx context.Context,
	tools driving.ToolService,
	timeout time.Duration,
	step int,
	call domain.ToolCall,
	seeded, fallback bool,
) domain.CallRecord {
	start := time.Now()
	result, err := callWithTimeout(ctx, timeout, func(ctx context.Context) (domain.ToolResult, error) {
		return tools.Call(ctx, call)
	})
	rec := domain.CallRecord{
		Step:     step,
		Call:     call,
		Result:   result,
		Seeded:   seeded,
		Fallback: fallback,
		Duration: time.Since(start),
	}
	if err != nil {
		logger.Warn("%s failed: %v", call, err)
		rec.Result = nil
		rec.Err = err.Error()
	}
	return rec
}
