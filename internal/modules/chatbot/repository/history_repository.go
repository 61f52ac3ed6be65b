package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"nub.ac.bd/transport/internal/modules/chatbot/dto"
)

// HistoryRepository keeps one conversation per user.
type HistoryRepository interface {
	Load(ctx context.Context, userID uint) ([]dto.Message, error)
	Append(ctx context.Context, userID uint, messages ...dto.Message) error
	Clear(ctx context.Context, userID uint) error
}

type redisHistoryRepository struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewHistoryRepository stores history in a Redis list. Every append pushes
// the expiry back by ttl.
func NewHistoryRepository(rdb *redis.Client, ttl time.Duration) HistoryRepository {
	return &redisHistoryRepository{rdb: rdb, ttl: ttl}
}

func historyKey(userID uint) string {
	return fmt.Sprintf("chatbot:history:%d", userID)
}

func (r *redisHistoryRepository) Load(ctx context.Context, userID uint) ([]dto.Message, error) {
	raw, err := r.rdb.LRange(ctx, historyKey(userID), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to load chat history: %w", err)
	}

	messages := make([]dto.Message, 0, len(raw))
	for _, item := range raw {
		var m dto.Message
		if err := json.Unmarshal([]byte(item), &m); err != nil {
			return nil, fmt.Errorf("corrupt chat history entry: %w", err)
		}
		messages = append(messages, m)
	}
	return messages, nil
}

func (r *redisHistoryRepository) Append(ctx context.Context, userID uint, messages ...dto.Message) error {
	if len(messages) == 0 {
		return nil
	}

	values := make([]any, 0, len(messages))
	for _, m := range messages {
		b, err := json.Marshal(m)
		if err != nil {
			return err
		}
		values = append(values, b)
	}

	key := historyKey(userID)
	_, err := r.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.RPush(ctx, key, values...)
		if r.ttl > 0 {
			pipe.Expire(ctx, key, r.ttl)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to save chat history: %w", err)
	}
	return nil
}

func (r *redisHistoryRepository) Clear(ctx context.Context, userID uint) error {
	if err := r.rdb.Del(ctx, historyKey(userID)).Err(); err != nil {
		return fmt.Errorf("failed to clear chat history: %w", err)
	}
	return nil
}
