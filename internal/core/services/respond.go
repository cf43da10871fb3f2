package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/custodia-labs/tabula/internal/core/domain"
	"github.com/custodia-labs/tabula/internal/core/ports/driven"
	"github.com/custodia-labs/tabula/internal/logger"
)

const (
	sectionDiscovery   = "=== DISCOVERY DATA ==="
	sectionExploration = "=== EXPLORATION DATA ==="
	sectionRetrieval   = "=== RETRIEVAL DATA ==="
	sectionErrors      = "=== ERRORS ==="

	noContext = "No data was gathered."

	fallbackNote = "Note: This is a fallback response. Answer synthesis is unavailable; " +
		"configure an LLM provider for better answers."
)

// formatContext renders a query's call log grouped by tool category.
// Failed calls and notes recorded with Fail are listed under ERRORS.
func formatContext(qc *domain.QueryContext) string {
	groups := map[domain.ToolCategory][]string{}
	var failures []string

	for i := range qc.Calls {
		rec := &qc.Calls[i]
		if rec.Failed() {
			failures = append(failures, fmt.Sprintf("- %s: %s", rec.Call, rec.Err))
			continue
		}
		if rec.Result == nil {
			continue
		}
		header := "[" + rec.Call.String() + "]"
		if rec.Fallback {
			header = "[fallback " + rec.Call.String() + "]"
		}
		cat := rec.Call.Name.Category()
		groups[cat] = append(groups[cat], header+"\n"+rec.Result.Format())
	}
	for _, e := range qc.Errors {
		failures = append(failures, "- "+e)
	}

	var sections []string
	for _, s := range []struct {
		title string
		cat   domain.ToolCategory
	}{
		{sectionDiscovery, domain.CategoryDiscovery},
		{sectionExploration, domain.CategoryExploration},
		{sectionRetrieval, domain.CategoryRetrieval},
	} {
		if entries := groups[s.cat]; len(entries) > 0 {
			sections = append(sections, s.title+"\n"+strings.Join(entries, "\n\n"))
		}
	}
	if len(failures) > 0 {
		sections = append(sections, sectionErrors+"\n"+strings.Join(failures, "\n"))
	}

	if len(sections) == 0 {
		return noContext
	}
	return strings.Join(sections, "\n\n")
}

// fallbackAnswer is the readable context dump returned when no answer
// could be synthesised.
func fallbackAnswer(question, evidence string) string {
	return fmt.Sprintf("Question: %s\n\nBased on the available data:\n\n%s\n\n%s", question, evidence, fallbackNote)
}

// callWithTimeout runs fn under a deadline and stops waiting when ctx is
// done, even if fn ignores its context.
func callWithTimeout[T any](
	ctx context.Context, timeout time.Duration, fn func(context.Context) (T, error),
) (T, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	type outcome struct {
		val T
		err error
	}
	done := make(chan outcome, 1)
	go func() {
		v, err := fn(ctx)
		done <- outcome{v, err}
	}()

	select {
	case o := <-done:
		return o.val, o.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

// externalFailure classifies an error from the decision-maker or answer
// generator as domain.ErrExternalService.
func externalFailure(what string, timeout time.Duration, err error) error {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return fmt.Errorf("%w: %s timed out after %s", domain.ErrExternalService, what, timeout)
	case errors.Is(err, domain.ErrExternalService):
		return err
	default:
		return fmt.Errorf("%w: %s: %w", domain.ErrExternalService, what, err)
	}
}

// responder turns a finished query context into a Response. It is shared
// by the agent loop and the fixed pipeline.
type responder struct {
	generator driven.AnswerGenerator
	observer  driven.ToolObserver
	cfg       domain.AgentConfig
	now       func() time.Time
}

func (r *responder) respond(
	ctx context.Context, qc *domain.QueryContext, mode, stop string, start time.Time,
) *domain.Response {
	evidence := formatContext(qc)

	answer, err := r.synthesise(ctx, qc.Question, evidence)
	degraded := err != nil
	if degraded {
		logger.Warn("answer synthesis unavailable: %v", err)
		answer = fallbackAnswer(qc.Question, evidence)
	}

	qc.Confidence = r.cfg.Confidence
	if degraded {
		qc.Confidence = r.cfg.DegradedConfidence
	}

	end := r.now()
	elapsed := end.Sub(start)
	if r.observer != nil {
		r.observer.ObserveQuery(mode, stop, degraded, elapsed)
	}
	logger.Info("%s finished: %s after %d steps (%s)", mode, stop, qc.Steps, elapsed)

	return &domain.Response{
		ID:         qc.ID,
		Question:   qc.Question,
		Answer:     answer,
		Context:    evidence,
		ToolsUsed:  qc.ToolsUsed(),
		Confidence: qc.Confidence,
		Sources:    qc.Sources(),
		DocIDs:     qc.DocIDs,
		Metadata: domain.ResponseMetadata{
			Mode:       mode,
			Steps:      qc.Steps,
			ToolCalls:  qc.Summaries(),
			StopReason: stop,
			Degraded:   degraded,
			Duration:   elapsed,
		},
		CreatedAt: end,
	}
}

func (r *responder) synthesise(ctx context.Context, question, evidence string) (string, error) {
	if r.generator == nil {
		return "", domain.ErrLLMUnavailable
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	answer, err := callWithTimeout(ctx, r.cfg.AnswerTimeout, func(ctx context.Context) (string, error) {
		return r.generator.Generate(ctx, question, evidence)
	})
	if err != nil {
		return "", externalFailure("answer generation", r.cfg.AnswerTimeout, err)
	}
	if strings.TrimSpace(answer) == "" {
		return "", fmt.Errorf("%w: empty answer", domain.ErrExternalService)
	}
	return answer, nil
}
