package services

import (
	"context"
	"fmt"

	"github.com/custodia-labs/tabula/internal/core/domain"
	"github.com/custodia-labs/tabula/internal/core/ports/driven"
	"github.com/custodia-labs/tabula/internal/core/ports/driving"
	"github.com/custodia-labs/tabula/internal/logger"
)

// Ensure HistoryService implements the interface.
var _ driving.HistoryService = (*HistoryService)(nil)

const defaultHistoryLimit = 20

// HistoryService records and lists answered questions.
type HistoryService struct {
	store driven.HistoryStore
}

// NewHistoryService creates a history service over store.
func NewHistoryService(store driven.HistoryStore) *HistoryService {
	return &HistoryService{store: store}
}

// Record stores a response.
func (s *HistoryService) Record(ctx context.Context, resp *domain.Response) error {
	if resp == nil {
		return nil
	}
	if err := s.store.Save(ctx, domain.NewHistoryEntry(resp)); err != nil {
		return fmt.Errorf("record history %s: %w", resp.ID, err)
	}
	return nil
}

// List returns recent entries, newest first. A non-positive limit
// returns the default number of entries.
func (s *HistoryService) List(ctx context.Context, limit int) ([]domain.HistoryEntry, error) {
	if limit <= 0 {
		limit = defaultHistoryLimit
	}
	entries, err := s.store.List(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("list history: %w", err)
	}
	return entries, nil
}

// Get returns one entry.
func (s *HistoryService) Get(ctx context.Context, id string) (*domain.HistoryEntry, error) {
	entry, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get history %s: %w", id, err)
	}
	return entry, nil
}

// Clear deletes all entries.
func (s *HistoryService) Clear(ctx context.Context) (int, error) {
	n, err := s.store.Clear(ctx)
	if err != nil {
		return 0, fmt.Errorf("clear history: %w", err)
	}
	return n, nil
}

// RecordAnswers wraps an answer service so every response is saved.
// Saving failures are logged and never fail the question.
func RecordAnswers(inner driving.AnswerService, history driving.HistoryService) driving.AnswerService {
	return &recordingAnswers{inner: inner, history: history}
}

type recordingAnswers struct {
	inner   driving.AnswerService
	history driving.HistoryService
}

func (r *recordingAnswers) Ask(ctx context.Context, question string) (*domain.Response, error) {
	resp, err := r.inner.Ask(ctx, question)
	if err != nil {
		return nil, err
	}
	if err := r.history.Record(context.WithoutCancel(ctx), resp); err != nil {
		logger.Warn("%v", err)
	}
	return resp, nil
}
