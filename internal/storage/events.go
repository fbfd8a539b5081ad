package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"

	"goalkeeper/backend/internal/config"
	"goalkeeper/backend/internal/models"

	"github.com/redis/go-redis/v9"
)

// ErrRedisDisabled is returned by operations that cannot degrade to a no-op without Redis.
var ErrRedisDisabled = errors.New("redis is not configured")

// PublishEscalation publishes the event on the escalation channel in Redis Pub/Sub.
func (s *Service) PublishEscalation(ctx context.Context, event models.EscalationEvent) error {
	if s.Redis == nil {
		return nil
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}

	if err := s.Redis.Publish(ctx, config.EscalationChannel, payload).Err(); err != nil {
		return fmt.Errorf("publish escalation of %s: %w", event.UserID, err)
	}
	return nil
}

// SaveRunSummary keeps the most recent run summary in Redis.
func (s *Service) SaveRunSummary(ctx context.Context, summary models.RunSummary) error {
	if s.Redis == nil {
		return nil
	}

	payload, err := json.Marshal(summary)
	if err != nil {
		return err
	}
	return s.Redis.Set(ctx, config.LastRunKey, payload, 0).Err()
}

// GetLastRunSummary returns nil without error when no run was recorded yet
// or Redis is not configured.
func (s *Service) GetLastRunSummary(ctx context.Context) (*models.RunSummary, error) {
	if s.Redis == nil {
		return nil, nil
	}

	raw, err := s.Redis.Get(ctx, config.LastRunKey).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var summary models.RunSummary
	if err := json.Unmarshal(raw, &summary); err != nil {
		return nil, fmt.Errorf("decode last run: %w", err)
	}
	return &summary, nil
}

// SubscribeEscalations streams escalation events published by any engine until
// ctx is done. The returned channel is closed when the subscription ends.
func (s *Service) SubscribeEscalations(ctx context.Context) (<-chan models.EscalationEvent, error) {
	if s.Redis == nil {
		return nil, ErrRedisDisabled
	}

	pubsub := s.Redis.Subscribe(ctx, config.EscalationChannel)
	// Wait for the subscription confirmation so no event published after we return is missed.
	if _, err := pubsub.Receive(ctx); err != nil {
		pubsub.Close()
		return nil, fmt.Errorf("subscribe %s: %w", config.EscalationChannel, err)
	}

	out := make(chan models.EscalationEvent)
	go func() {
		defer close(out)
		defer pubsub.Close()

		ch := pubsub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				var event models.EscalationEvent
				if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
					log.Printf("ERROR: decoding escalation event: %v", err)
					continue
				}
				select {
				case out <- event:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return out, nil
}
