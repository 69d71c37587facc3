// Package conversation keeps per-conversation chat history in Redis as a
// keyed ring buffer: the newest maxMessages turns survive, older ones are
// trimmed, and idle conversations expire after the retention window.
package conversation

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"filter-agent/internal/common/config"
	"filter-agent/internal/common/logger"
	"filter-agent/internal/models"
)

const keyPrefix = "conversation:"

// History is the collaborator interface consumed by the agent.
type History interface {
	Append(ctx context.Context, conversationID, role, content string) error
	Recent(ctx context.Context, conversationID string, lastN int) ([]models.ConversationMessage, error)
}

type Store struct {
	rdb         *redis.Client
	maxMessages int
	retention   time.Duration
	logger      logger.Logger
}

func NewStore(rdb *redis.Client, cfg config.ConversationConfig, log logger.Logger) *Store {
	return &Store{
		rdb:         rdb,
		maxMessages: cfg.MaxMessages,
		retention:   time.Duration(cfg.RetentionHours) * time.Hour,
		logger:      log.WithFields(map[string]interface{}{"component": "conversation-store"}),
	}
}

func key(conversationID string) string {
	return keyPrefix + conversationID
}

// Append records one turn and trims the buffer to the newest maxMessages.
func (s *Store) Append(ctx context.Context, conversationID, role, content string) error {
	msg := models.ConversationMessage{
		Role:      role,
		Content:   content,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
	payload, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal conversation message: %w", err)
	}

	k := key(conversationID)
	pipe := s.rdb.TxPipeline()
	pipe.RPush(ctx, k, payload)
	pipe.LTrim(ctx, k, int64(-s.maxMessages), -1)
	pipe.Expire(ctx, k, s.retention)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("append conversation message: %w", err)
	}
	return nil
}

// Recent returns up to lastN newest messages, oldest first.
func (s *Store) Recent(ctx context.Context, conversationID string, lastN int) ([]models.ConversationMessage, error) {
	if lastN <= 0 {
		lastN = s.maxMessages
	}
	raw, err := s.rdb.LRange(ctx, key(conversationID), int64(-lastN), -1).Result()
	if err != nil {
		return nil, fmt.Errorf("read conversation history: %w", err)
	}

	messages := make([]models.ConversationMessage, 0, len(raw))
	for _, item := range raw {
		var msg models.ConversationMessage
		if err := json.Unmarshal([]byte(item), &msg); err != nil {
			s.logger.Warn("skipping undecodable conversation entry", map[string]interface{}{
				"conversationId": conversationID,
				"error":          err.Error(),
			})
			continue
		}
		messages = append(messages, msg)
	}
	return messages, nil
}

// Clear deletes a conversation's history.
func (s *Store) Clear(ctx context.Context, conversationID string) error {
	if err := s.rdb.Del(ctx, key(conversationID)).Err(); err != nil {
		return fmt.Errorf("clear conversation: %w", err)
	}
	return nil
}

// Stats counts stored conversations and their messages.
func (s *Store) Stats(ctx context.Context) (map[string]int64, error) {
	var conversations, messages int64
	iter := s.rdb.Scan(ctx, 0, keyPrefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		conversations++
		if n, err := s.rdb.LLen(ctx, iter.Val()).Result(); err == nil {
			messages += n
		}
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("scan conversations: %w", err)
	}
	return map[string]int64{
		"total_conversations": conversations,
		"total_messages":      messages,
	}, nil
}
