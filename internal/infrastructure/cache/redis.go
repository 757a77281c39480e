package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/salescribe-team/salescribe/pkg/config"
)

// NewRedisClient creates and pings a Redis client
func NewRedisClient(cfg *config.Config) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.GetRedisAddr(),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return client, nil
}

// EventDeduper marks vendor event ids as processed so webhook replays become
// no-ops. Backed by SETNX with a TTL.
type EventDeduper struct {
	client *redis.Client
	ttl    time.Duration
}

// NewEventDeduper creates a deduper with the given retention window
func NewEventDeduper(client *redis.Client, ttl time.Duration) *EventDeduper {
	return &EventDeduper{client: client, ttl: ttl}
}

// FirstSeen returns true when the key has not been processed before and
// atomically claims it.
func (d *EventDeduper) FirstSeen(ctx context.Context, key string) (bool, error) {
	return d.client.SetNX(ctx, "dedup:"+key, "1", d.ttl).Result()
}

// ActivationBus carries subscription-activation notifications from the
// billing webhook handler to checkout callers waiting for their subscription
// to go active.
type ActivationBus struct {
	client *redis.Client
}

// NewActivationBus creates an activation bus
func NewActivationBus(client *redis.Client) *ActivationBus {
	return &ActivationBus{client: client}
}

func activationChannel(userID string) string {
	return "billing:activated:" + userID
}

// NotifyActive publishes an activation event for a user
func (b *ActivationBus) NotifyActive(ctx context.Context, userID string) error {
	return b.client.Publish(ctx, activationChannel(userID), "active").Err()
}

// WaitActive blocks until an activation event arrives for the user or the
// context expires. Callers combine this with a bounded poll of the local
// subscription row as a fallback.
func (b *ActivationBus) WaitActive(ctx context.Context, userID string) error {
	sub := b.client.Subscribe(ctx, activationChannel(userID))
	defer sub.Close()

	ch := sub.Channel()
	select {
	case <-ch:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
