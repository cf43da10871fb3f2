package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/custodia-labs/tabula/internal/core/domain"
	"github.com/custodia-labs/tabula/internal/core/ports/driven"
)

// historyStore implements driven.HistoryStore.
type historyStore struct {
	store *Store
}

var _ driven.HistoryStore = (*historyStore)(nil)

const historyColumns = `id, question, answer, mode, tools_used, sources,
	confidence, steps, stop_reason, degraded, created_at`

// Save stores an entry, replacing any entry with the same ID.
func (h *historyStore) Save(ctx context.Context, entry domain.HistoryEntry) error {
	tools, err := json.Marshal(nonNil(entry.ToolsUsed))
	if err != nil {
		return fmt.Errorf("marshalling tools: %w", err)
	}
	sources, err := json.Marshal(nonNil(entry.Sources))
	if err != nil {
		return fmt.Errorf("marshalling sources: %w", err)
	}

	_, err = h.store.db.ExecContext(ctx, `
		INSERT INTO history (`+historyColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			question = excluded.question,
			answer = excluded.answer,
			mode = excluded.mode,
			tools_used = excluded.tools_used,
			sources = excluded.sources,
			confidence = excluded.confidence,
			steps = excluded.steps,
			stop_reason = excluded.stop_reason,
			degraded = excluded.degraded,
			created_at = excluded.created_at
	`,
		entry.ID, entry.Question, entry.Answer, entry.Mode, string(tools), string(sources),
		entry.Confidence, entry.Steps, entry.StopReason, entry.Degraded, entry.CreatedAt.UnixNano(),
	)
	if err != nil {
		return fmt.Errorf("saving history entry: %w", err)
	}
	return nil
}

// Get retrieves an entry by ID.
func (h *historyStore) Get(ctx context.Context, id string) (*domain.HistoryEntry, error) {
	row := h.store.db.QueryRowContext(ctx, `SELECT `+historyColumns+` FROM history WHERE id = ?`, id)
	entry, err := scanHistory(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("history entry %q: %w", id, domain.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return entry, nil
}

// List returns up to limit entries, newest first. limit <= 0 means all.
func (h *historyStore) List(ctx context.Context, limit int) ([]domain.HistoryEntry, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := h.store.db.QueryContext(ctx,
		`SELECT `+historyColumns+` FROM history ORDER BY created_at DESC, id LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("listing history: %w", err)
	}
	defer rows.Close()

	var entries []domain.HistoryEntry
	for rows.Next() {
		entry, err := scanHistory(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, *entry)
	}
	return entries, rows.Err()
}

// Clear deletes every entry.
func (h *historyStore) Clear(ctx context.Context) (int, error) {
	res, err := h.store.db.ExecContext(ctx, `DELETE FROM history`)
	if err != nil {
		return 0, fmt.Errorf("clearing history: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("clearing history: %w", err)
	}
	return int(n), nil
}

// scanner is satisfied by *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanHistory(row scanner) (*domain.HistoryEntry, error) {
	var (
		entry     domain.HistoryEntry
		tools     string
		sources   string
		createdAt int64
	)
	err := row.Scan(
		&entry.ID, &entry.Question, &entry.Answer, &entry.Mode, &tools, &sources,
		&entry.Confidence, &entry.Steps, &entry.StopReason, &entry.Degraded, &createdAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scanning history entry: %w", err)
	}

	if err := json.Unmarshal([]byte(tools), &entry.ToolsUsed); err != nil {
		return nil, fmt.Errorf("unmarshalling tools: %w", err)
	}
	if err := json.Unmarshal([]byte(sources), &entry.Sources); err != nil {
		return nil, fmt.Errorf("unmarshalling sources: %w", err)
	}
	entry.CreatedAt = time.Unix(0, createdAt)
	return &entry, nil
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
