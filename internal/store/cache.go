package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// CycleCompletedTopic is the pub/sub channel a cycle publishes to once a
// full ingestion pass (snapshots, events, aggregation, scoring) finishes
// (spec §4.B).
const CycleCompletedTopic = "cycle.completed"

// CycleCompletedEvent is the payload broadcast on CycleCompletedTopic.
type CycleCompletedEvent struct {
	CycleID      string    `json:"cycleId"`
	StartedAt    time.Time `json:"startedAt"`
	FinishedAt   time.Time `json:"finishedAt"`
	TradersTried int       `json:"tradersTried"`
	TradersOK    int       `json:"tradersOk"`
}

// Cache wraps a Redis client for a short-TTL JSON cache (SetJSON/GetJSON)
// and the cycle.completed pub/sub topic. The consensus and leaderboard
// queries do not read through the cache, and nothing in this module calls
// SubscribeCycleCompleted.
type Cache struct {
	client *redis.Client
}

// NewCache connects to Redis at addr. It does not ping eagerly; callers
// that need to fail fast on startup should call Ping.
func NewCache(addr string) *Cache {
	return &Cache{client: redis.NewClient(&redis.Options{Addr: addr})}
}

// Ping verifies connectivity.
func (c *Cache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

// Close releases the underlying connection pool.
func (c *Cache) Close() error {
	return c.client.Close()
}

// SetJSON marshals value and stores it under key with the given TTL.
func (c *Cache) SetJSON(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	payload, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("marshal cache value: %w", err)
	}
	return c.client.Set(ctx, key, payload, ttl).Err()
}

// GetJSON loads the value stored under key into dest. It returns
// redis.Nil (unwrapped via errors.Is) when the key is absent.
func (c *Cache) GetJSON(ctx context.Context, key string, dest interface{}) error {
	payload, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		return err
	}
	return json.Unmarshal(payload, dest)
}

// Invalidate deletes one or more cache keys, ignoring a missing key.
func (c *Cache) Invalidate(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	return c.client.Del(ctx, keys...).Err()
}

// PublishCycleCompleted announces a finished ingestion cycle on
// CycleCompletedTopic.
func (c *Cache) PublishCycleCompleted(ctx context.Context, event CycleCompletedEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal cycle event: %w", err)
	}
	return c.client.Publish(ctx, CycleCompletedTopic, payload).Err()
}

// SubscribeCycleCompleted subscribes to CycleCompletedTopic and invokes
// handler for every decoded event until ctx is cancelled. Malformed
// payloads are skipped.
func (c *Cache) SubscribeCycleCompleted(ctx context.Context, handler func(CycleCompletedEvent)) {
	pubsub := c.client.Subscribe(ctx, CycleCompletedTopic)
	ch := pubsub.Channel()

	go func() {
		defer pubsub.Close()
		for {
			select {
			case msg, ok := <-ch:
				if !ok {
					return
				}
				var event CycleCompletedEvent
				if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
					continue
				}
				handler(event)
			case <-ctx.Done():
				return
			}
		}
	}()
}
