package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/bsthardware/storefront-backend/pkg/logger"
)

type broker interface {
	Publish(ctx context.Context, channel string, payload any) error
	Subscribe(ctx context.Context, channels ...string) (*redis.PubSub, error)
}

// RedisRelay publishes through a Redis channel so every API instance sees
// every catalog change, then replays received messages into the local Hub.
type RedisRelay struct {
	client  broker
	channel string
	local   *Hub
	logg    *logger.Logger
}

func NewRedisRelay(client broker, channel string, local *Hub, logg *logger.Logger) (*RedisRelay, error) {
	if client == nil {
		return nil, fmt.Errorf("redis client required")
	}
	if channel == "" {
		return nil, fmt.Errorf("channel required")
	}
	if local == nil {
		return nil, fmt.Errorf("local hub required")
	}
	return &RedisRelay{client: client, channel: channel, local: local, logg: logg}, nil
}

// Publish sends evt to Redis. If Redis is unavailable the event is delivered
// to local subscribers only.
func (r *RedisRelay) Publish(ctx context.Context, evt Event) {
	payload, err := json.Marshal(evt)
	if err != nil {
		r.logError(ctx, "events.relay.encode_failed", err)
		return
	}
	if err := r.client.Publish(ctx, r.channel, payload); err != nil {
		r.logError(ctx, "events.relay.publish_failed", err)
		r.local.Publish(ctx, evt)
	}
}

// Run consumes the channel until ctx is cancelled.
func (r *RedisRelay) Run(ctx context.Context) error {
	sub, err := r.client.Subscribe(ctx, r.channel)
	if err != nil {
		return err
	}
	defer sub.Close()

	if _, err := sub.Receive(ctx); err != nil {
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return fmt.Errorf("subscribe %s: %w", r.channel, err)
	}

	if r.logg != nil {
		r.logg.Info(r.logg.WithField(ctx, "channel", r.channel), "events.relay.subscribed")
	}

	messages := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-messages:
			if !ok {
				return nil
			}
			r.deliver(ctx, msg.Payload)
		}
	}
}

func (r *RedisRelay) deliver(ctx context.Context, payload string) {
	var evt Event
	if err := json.Unmarshal([]byte(payload), &evt); err != nil {
		r.logError(ctx, "events.relay.decode_failed", err)
		return
	}
	if !evt.Type.IsValid() {
		r.logError(ctx, "events.relay.unknown_type", fmt.Errorf("event type %q", evt.Type))
		return
	}
	r.local.Publish(ctx, evt)
}

func (r *RedisRelay) logError(ctx context.Context, msg string, err error) {
	if r.logg == nil {
		return
	}
	r.logg.Error(ctx, msg, err)
}
