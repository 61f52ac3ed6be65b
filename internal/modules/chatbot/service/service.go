package chatbot

import (
	"context"
	"math"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"nub.ac.bd/transport/internal/modules/chatbot/dto"
	"nub.ac.bd/transport/internal/modules/chatbot/repository"
	"nub.ac.bd/transport/pkg/apperror"
	"nub.ac.bd/transport/pkg/ratelimiter"
)

const (
	// maxHistory is the stored message count above which a conversation
	// starts over.
	maxHistory      = 30
	rateLimitAction = "chatbot"
)

type ChatbotService interface {
	Chat(ctx context.Context, userID uint, prompt string) ([]dto.Message, error)
	History(ctx context.Context, userID uint) ([]dto.Message, error)
	Clear(ctx context.Context, userID uint) ([]dto.Message, error)
}

type chatbotService struct {
	provider  LLMProvider
	store     repository.HistoryRepository
	rdb       *redis.Client
	rateLimit time.Duration
}

// NewChatbotService accepts a nil provider or store; Chat then reports the
// assistant as unavailable.
func NewChatbotService(provider LLMProvider, store repository.HistoryRepository, rdb *redis.Client, rateLimit time.Duration) ChatbotService {
	return &chatbotService{
		provider:  provider,
		store:     store,
		rdb:       rdb,
		rateLimit: rateLimit,
	}
}

func (s *chatbotService) Chat(ctx context.Context, userID uint, prompt string) ([]dto.Message, error) {
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return nil, apperror.BadRequest("Prompt is required")
	}
	if s.provider == nil || s.store == nil {
		return nil, apperror.Unavailable("AI model is not initialized")
	}

	allowed, err := ratelimiter.CheckAndSetRateLimit(ctx, s.rdb, userID, rateLimitAction, s.rateLimit)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	if !allowed {
		ttl, _ := ratelimiter.GetRateLimitTTL(ctx, s.rdb, userID, rateLimitAction)
		return nil, apperror.TooManyRequests("Please wait %d seconds before sending another message", int(math.Ceil(ttl.Seconds())))
	}

	// Only an answered prompt keeps the cooldown.
	answered := false
	defer func() {
		if !answered {
			_ = ratelimiter.ClearRateLimit(ctx, s.rdb, userID, rateLimitAction)
		}
	}()

	history, err := s.store.Load(ctx, userID)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	if len(history) > maxHistory {
		if err := s.store.Clear(ctx, userID); err != nil {
			return nil, apperror.Internal(err)
		}
		history = nil
	}

	reply, err := s.provider.Chat(ctx, history, prompt)
	if err != nil {
		logrus.WithError(err).WithField("user_id", userID).Error("chatbot provider failed")
		return nil, apperror.Internal(err)
	}

	if strings.TrimSpace(reply) == "" {
		logrus.WithField("user_id", userID).Warn("empty chatbot reply, resetting conversation")
		if err := s.store.Clear(ctx, userID); err != nil {
			return nil, apperror.Internal(err)
		}
		return []dto.Message{}, nil
	}

	turn := []dto.Message{
		dto.NewMessage(dto.RoleUser, prompt),
		dto.NewMessage(dto.RoleModel, reply),
	}
	if err := s.store.Append(ctx, userID, turn...); err != nil {
		return nil, apperror.Internal(err)
	}
	answered = true
	return append(history, turn...), nil
}

func (s *chatbotService) History(ctx context.Context, userID uint) ([]dto.Message, error) {
	if s.store == nil {
		return []dto.Message{}, nil
	}

	history, err := s.store.Load(ctx, userID)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	return history, nil
}

func (s *chatbotService) Clear(ctx context.Context, userID uint) ([]dto.Message, error) {
	if s.store != nil {
		if err := s.store.Clear(ctx, userID); err != nil {
			return nil, apperror.Internal(err)
		}
	}
	return []dto.Message{}, nil
}
