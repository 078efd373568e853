package events

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// RedisTransport carries events over a Redis pub/sub channel, connecting
// tabs that run in separate processes.
type RedisTransport struct {
	rdb     *redis.Client
	channel string
}

func NewRedisTransport(rdb *redis.Client, channel string) *RedisTransport {
	if channel == "" {
		channel = DefaultChannel
	}
	return &RedisTransport{rdb: rdb, channel: channel}
}

func (t *RedisTransport) Send(ctx context.Context, data []byte) error {
	if err := t.rdb.Publish(ctx, t.channel, data).Err(); err != nil {
		return fmt.Errorf("redis publish: %w", err)
	}
	return nil
}

func (t *RedisTransport) Receive(ctx context.Context) (<-chan []byte, error) {
	ps := t.rdb.Subscribe(ctx, t.channel)

	// Wait for the subscription confirmation so nothing published after
	// Receive returns is missed.
	if _, err := ps.Receive(ctx); err != nil {
		_ = ps.Close()
		return nil, fmt.Errorf("redis subscribe: %w", err)
	}

	in := ps.Channel()
	out := make(chan []byte)
	go func() {
		defer close(out)
		defer ps.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case m, ok := <-in:
				if !ok {
					return
				}
				select {
				case out <- []byte(m.Payload):
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return out, nil
}

// Close leaves the client open; it is owned by the caller.
func (t *RedisTransport) Close() error { return nil }
