package ws

import (
	"context"
	"encoding/json"

	"github.com/redis/go-redis/v9"
)

// All instances share one pub/sub channel; the envelope's Room field scopes
// delivery on the receiving side.
const framesChannel = "ws:frames"

// RedisBus fans frames out to sibling server instances over Redis pub/sub.
type RedisBus struct {
	rdb *redis.Client
}

func NewRedisBus(rdb *redis.Client) *RedisBus {
	return &RedisBus{rdb: rdb}
}

func (b *RedisBus) Publish(ctx context.Context, payload []byte) error {
	return b.rdb.Publish(ctx, framesChannel, payload).Err()
}

// Subscribe feeds remote envelopes into the hub until ctx is done.
func (h *Hub) Subscribe(ctx context.Context, rdb *redis.Client) {
	pubsub := rdb.Subscribe(ctx, framesChannel)
	defer pubsub.Close()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-pubsub.Channel():
			if !ok {
				return
			}
			var env remoteEnvelope
			if err := json.Unmarshal([]byte(msg.Payload), &env); err != nil {
				h.log.Warn().Err(err).Msg("discarding malformed envelope")
				continue
			}
			h.remote <- env
		}
	}
}
