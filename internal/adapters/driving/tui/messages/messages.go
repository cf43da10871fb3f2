// Package messages defines Bubbletea message types for the TUI.
package messages

import (
	"github.com/custodia-labs/tabula/internal/core/domain"
)

// ViewType identifies which view is currently active.
type ViewType int

const (
	// ViewMenu is the main navigation menu.
	ViewMenu ViewType = iota
	// ViewAsk is the question and answer view.
	ViewAsk
	// ViewTables browses loaded tables.
	ViewTables
	// ViewHistory browses stored answers.
	ViewHistory
	// ViewDetail shows a scrollable text body.
	ViewDetail
)

// String returns the string representation of the view type.
func (v ViewType) String() string {
	switch v {
	case ViewMenu:
		return "menu"
	case ViewAsk:
		return "ask"
	case ViewTables:
		return "tables"
	case ViewHistory:
		return "history"
	case ViewDetail:
		return "detail"
	default:
		return "unknown"
	}
}

// ViewChanged is sent when navigating between views.
type ViewChanged struct {
	View ViewType
}

// AnswerCompleted carries the response to a question.
type AnswerCompleted struct {
	Response *domain.Response
	Err      error
}

// TablesLoaded carries the table listing.
type TablesLoaded struct {
	Tables []domain.TableEntry
	Err    error
}

// HistoryLoaded carries stored answers, newest first.
type HistoryLoaded struct {
	Entries []domain.HistoryEntry
	Err     error
}

// DetailRequested opens the detail view. Back is the view esc returns to.
type DetailRequested struct {
	Title string
	Body  string
	Back  ViewType
}

// ErrorOccurred signals that an error happened.
type ErrorOccurred struct {
	Err error
}
