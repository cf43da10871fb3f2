package driving

import (
	"context"

	"github.com/custodia-labs/tabula/internal/core/domain"
)

// AnswerService answers a natural-language question. Ask always returns a
// response when documents are loaded, degrading to a context dump if the
// external services fail.
type AnswerService interface {
	Ask(ctx context.Context, question string) (*domain.Response, error)
}
