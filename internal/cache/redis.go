package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	idempotencyKeyPrefix = "idem:"
	pendingMarker        = "pending"
	lockTTL              = 30 * time.Second
)

// Connect opens a Redis client and pings it. An empty addr disables the
// cache and returns a nil client.
func Connect(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	if addr == "" {
		return nil, nil
	}
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		// Close the failed client for graceful degradation
		client.Close()
		return nil, err
	}
	return client, nil
}

// Response is a stored reply to a POST carrying an Idempotency-Key
type Response struct {
	Status      int    `json:"status"`
	ContentType string `json:"content_type"`
	Body        []byte `json:"body"`
}

// IdempotencyStore keeps replies keyed by the client's Idempotency-Key.
// With a nil client every call is a no-op and requests pass through.
type IdempotencyStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewIdempotencyStore(client *redis.Client, ttl time.Duration) *IdempotencyStore {
	return &IdempotencyStore{client: client, ttl: ttl}
}

func (s *IdempotencyStore) Enabled() bool {
	return s != nil && s.client != nil
}

// Lookup returns the stored reply for key. pending is true while another
// request holding the same key is still running.
func (s *IdempotencyStore) Lookup(ctx context.Context, key string) (resp *Response, pending bool, err error) {
	if !s.Enabled() {
		return nil, false, nil
	}
	data, err := s.client.Get(ctx, idempotencyKeyPrefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	if string(data) == pendingMarker {
		return nil, true, nil
	}
	var stored Response
	if err := json.Unmarshal(data, &stored); err != nil {
		return nil, false, err
	}
	return &stored, false, nil
}

// Reserve claims key for the current request. It reports false when the key
// is already taken.
func (s *IdempotencyStore) Reserve(ctx context.Context, key string) (bool, error) {
	if !s.Enabled() {
		return true, nil
	}
	return s.client.SetNX(ctx, idempotencyKeyPrefix+key, pendingMarker, lockTTL).Result()
}

// Save replaces the reservation with the final reply
func (s *IdempotencyStore) Save(ctx context.Context, key string, resp *Response) error {
	if !s.Enabled() {
		return nil
	}
	data, err := json.Marshal(resp)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, idempotencyKeyPrefix+key, data, s.ttl).Err()
}

// Release drops a reservation so the client may retry
func (s *IdempotencyStore) Release(ctx context.Context, key string) error {
	if !s.Enabled() {
		return nil
	}
	return s.client.Del(ctx, idempotencyKeyPrefix+key).Err()
}

// Ping reports Redis reachability for health checks
func (s *IdempotencyStore) Ping(ctx context.Context) error {
	if !s.Enabled() {
		return nil
	}
	return s.client.Ping(ctx).Err()
}
