package domain

import "time"

// HistoryEntry is a persisted record of an answered question.
type HistoryEntry struct {
	ID         string    `json:"id"`
	Question   string    `json:"question"`
	Answer     string    `json:"answer"`
	Mode       string    `json:"mode"`
	ToolsUsed  []string  `json:"tools_used"`
	Sources    []Source  `json:"sources"`
	Confidence float64   `json:"confidence"`
	Steps      int       `json:"steps"`
	StopReason string    `json:"stop_reason"`
	Degraded   bool      `json:"degraded"`
	CreatedAt  time.Time `json:"created_at"`
}

// NewHistoryEntry captures the parts of a response worth keeping.
func NewHistoryEntry(resp *Response) HistoryEntry {
	return HistoryEntry{
		ID:         resp.ID,
		Question:   resp.Question,
		Answer:     resp.Answer,
		Mode:       resp.Metadata.Mode,
		ToolsUsed:  resp.ToolsUsed,
		Sources:    resp.Sources,
		Confidence: resp.Confidence,
		Steps:      resp.Metadata.Steps,
		StopReason: resp.Metadata.StopReason,
		Degraded:   resp.Metadata.Degraded,
		CreatedAt:  resp.CreatedAt,
	}
}
