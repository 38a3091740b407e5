package repository

import (
	"context"

	"fishmarket-bot/internal/domain"
)

// SessionRepository defines conversation state persistence. A session
// with no stored state reads as domain.StateStart; sessions are never
// explicitly deleted.
type SessionRepository interface {
	Get(ctx context.Context, chatID int64) (domain.State, error)
	Set(ctx context.Context, chatID int64, state domain.State) error
}
