// Package redis persists per-chat conversation state in Redis, keyed
// by the decimal chat id.
package redis

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	goredis "github.com/redis/go-redis/v9"

	"fishmarket-bot/internal/domain"
)

// SessionRepo stores one state tag per chat. Entries carry no TTL:
// a conversation resumes where it left off, however long ago.
type SessionRepo struct {
	client *goredis.Client
}

// NewSessionRepo creates a repository on top of an existing client.
func NewSessionRepo(client *goredis.Client) *SessionRepo {
	return &SessionRepo{client: client}
}

// Get returns the stored state for a chat, or domain.StateStart when
// the chat has never been seen.
func (r *SessionRepo) Get(ctx context.Context, chatID int64) (domain.State, error) {
	value, err := r.client.Get(ctx, sessionKey(chatID)).Result()
	if errors.Is(err, goredis.Nil) {
		return domain.StateStart, nil
	}
	if err != nil {
		return domain.StateStart, fmt.Errorf("get session %d: %w", chatID, err)
	}
	return domain.ParseState(value), nil
}

// Set persists the state for a chat.
func (r *SessionRepo) Set(ctx context.Context, chatID int64, state domain.State) error {
	if err := r.client.Set(ctx, sessionKey(chatID), string(state), 0).Err(); err != nil {
		return fmt.Errorf("set session %d: %w", chatID, err)
	}
	return nil
}

func sessionKey(chatID int64) string {
	return strconv.FormatInt(chatID, 10)
}
