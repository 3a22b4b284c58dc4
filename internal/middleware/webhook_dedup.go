package middleware

import (
	"context"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// MessageDeduper tracks processed notification MessageIds.
type MessageDeduper interface {
	// Seen records id and reports whether it was already recorded.
	Seen(ctx context.Context, id string) (bool, error)
	// Forget drops id so a redelivery is processed again.
	Forget(ctx context.Context, id string) error
}

type redisMessageDeduper struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

func (d *redisMessageDeduper) Seen(ctx context.Context, id string) (bool, error) {
	ok, err := d.client.SetNX(ctx, d.prefix+":"+id, "1", d.ttl).Result()
	if err != nil {
		return false, err
	}
	// false => already exists => duplicate
	return !ok, nil
}

func (d *redisMessageDeduper) Forget(ctx context.Context, id string) error {
	return d.client.Del(ctx, d.prefix+":"+id).Err()
}

type memoryMessageDeduper struct {
	mu     sync.Mutex
	seen   map[string]time.Time
	ttl    time.Duration
	nextGC time.Time
	now    func() time.Time
}

func newMemoryMessageDeduper(ttl time.Duration) *memoryMessageDeduper {
	now := time.Now()
	return &memoryMessageDeduper{
		seen:   make(map[string]time.Time),
		ttl:    ttl,
		nextGC: now.Add(ttl),
		now:    time.Now,
	}
}

func (d *memoryMessageDeduper) Seen(_ context.Context, id string) (bool, error) {
	now := d.now()

	d.mu.Lock()
	defer d.mu.Unlock()

	if exp, ok := d.seen[id]; ok && exp.After(now) {
		return true, nil
	}

	d.seen[id] = now.Add(d.ttl)
	if now.After(d.nextGC) {
		for k, exp := range d.seen {
			if exp.Before(now) {
				delete(d.seen, k)
			}
		}
		d.nextGC = now.Add(d.ttl)
	}

	return false, nil
}

func (d *memoryMessageDeduper) Forget(_ context.Context, id string) error {
	d.mu.Lock()
	delete(d.seen, id)
	d.mu.Unlock()
	return nil
}

// NewMessageDeduper builds a Redis deduper and falls back to in-memory on failure.
func NewMessageDeduper(addr, pass string, db int, ttl time.Duration) (MessageDeduper, error) {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	if addr == "" {
		return newMemoryMessageDeduper(ttl), nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: pass,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return newMemoryMessageDeduper(ttl), err
	}

	return &redisMessageDeduper{
		client: client,
		prefix: "amazonpay:ipn",
		ttl:    ttl,
	}, nil
}
