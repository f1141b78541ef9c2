// Package events announces interview lifecycle changes on Redis pub/sub.
package events

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"mockinterview/ai/internal/interview"
)

const DefaultChannel = "interview_completed"

type RedisPublisher struct {
	rdb     *redis.Client
	channel string
	logger  *zap.Logger
}

func NewRedisPublisher(rdb *redis.Client, channel string, logger *zap.Logger) *RedisPublisher {
	if channel == "" {
		channel = DefaultChannel
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RedisPublisher{rdb: rdb, channel: channel, logger: logger}
}

func (p *RedisPublisher) PublishCompleted(ctx context.Context, event interview.CompletedEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal completion event: %w", err)
	}
	receivers, err := p.rdb.Publish(ctx, p.channel, payload).Result()
	if err != nil {
		return fmt.Errorf("publish completion event: %w", err)
	}
	p.logger.Debug("Published completion event",
		zap.String("session_id", event.SessionID),
		zap.String("channel", p.channel),
		zap.Int64("receivers", receivers))
	return nil
}
