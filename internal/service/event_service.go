package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stemsi/srms/internal/config"
	"github.com/stemsi/srms/internal/model"
)

// EventService fans result mutations out over Redis PubSub so every API
// instance can forward them to its WebSocket clients.
type EventService struct {
	rdb *redis.Client
	log zerolog.Logger
}

func NewEventService(rdb *redis.Client, log zerolog.Logger) *EventService {
	return &EventService{
		rdb: rdb,
		log: log.With().Str("component", "event_service").Logger(),
	}
}

// Publish broadcasts evt. Delivery is best effort; failures are logged.
func (s *EventService) Publish(ctx context.Context, evt model.ResultEvent) {
	if evt.At.IsZero() {
		evt.At = time.Now().UTC()
	}
	raw, err := json.Marshal(evt)
	if err != nil {
		s.log.Error().Err(err).Msg("marshal result event")
		return
	}
	if err := s.rdb.Publish(ctx, config.CacheKey.ResultEventsChannel(), raw).Err(); err != nil {
		s.log.Warn().Err(err).Str("event", string(evt.Event)).Msg("publish result event failed")
	}
}

// Subscribe returns a subscription to the result event channel.
// The caller must Close it.
func (s *EventService) Subscribe(ctx context.Context) *redis.PubSub {
	return s.rdb.Subscribe(ctx, config.CacheKey.ResultEventsChannel())
}
