package services

import (
	"context"
	"encoding/json"
	"log"

	"github.com/go-redis/redis/v8"
)

const redisChannelPrefix = "events:"

// RedisBus fans events out across API instances over Redis pub/sub. Payloads
// are JSON-encoded Events; malformed payloads are dropped, not fatal.
type RedisBus struct {
	Client *redis.Client
}

func NewRedisBus(addr string) *RedisBus {
	return &RedisBus{
		Client: redis.NewClient(&redis.Options{
			Addr: addr,
			DB:   0,
		}),
	}
}

func (b *RedisBus) Publish(ctx context.Context, ev Event) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	if err := b.Client.Publish(ctx, redisChannelPrefix+ev.Stream, payload).Err(); err != nil {
		return wrapStoreErr(err)
	}
	return nil
}

func (b *RedisBus) Subscribe(stream string) (<-chan Event, func()) {
	ctx, cancel := context.WithCancel(context.Background())
	sub := b.Client.Subscribe(ctx, redisChannelPrefix+stream)
	out := make(chan Event, 64)

	go func() {
		defer close(out)
		for msg := range sub.Channel() {
			var ev Event
			if err := json.Unmarshal([]byte(msg.Payload), &ev); err != nil {
				log.Printf("dropping malformed event on %s: %v", stream, err)
				continue
			}
			select {
			case out <- ev:
			case <-ctx.Done():
				return
			}
		}
	}()

	return out, func() {
		cancel()
		sub.Close()
	}
}
