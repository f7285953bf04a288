// Package bus implements the Message Bus: publish/subscribe over a single
// Redis channel (chat:messages), carrying small reference tuples rather
// than full messages (§2, §4.4 "Bus re-read"). This generalizes the
// teacher's purely in-process pushChan/pushLoop fan-out (gateway/ws_server.go)
// into a mechanism that works across multiple gateway instances: publishing
// and subscribing both go through Redis instead of a local Go channel.
package bus

import (
	"context"
	"encoding/json"

	"github.com/mbeoliero/kit/log"
	"github.com/redis/go-redis/v9"
)

// MessageTuple is the bus payload: a reference to a persisted message, not
// the message itself.
type MessageTuple struct {
	MessageId      string `json:"messageId"`
	ConversationId string `json:"conversationId"`
	SenderId       string `json:"senderId"`
}

// Bus wraps a persistent Redis pub/sub publisher and subscriber, one of
// each per instance (§5 Connection resources).
type Bus struct {
	rdb     *redis.Client
	channel string
}

func New(rdb *redis.Client, channel string) *Bus {
	return &Bus{rdb: rdb, channel: channel}
}

// Publish sends a reference tuple to every subscribed instance, including
// the publisher's own (the send path is identical whether recipients are
// local or remote).
func (b *Bus) Publish(ctx context.Context, tuple MessageTuple) error {
	data, err := json.Marshal(tuple)
	if err != nil {
		return err
	}
	return b.rdb.Publish(ctx, b.channel, data).Err()
}

// Handler processes one tuple received from the bus.
type Handler func(ctx context.Context, tuple MessageTuple)

// Subscribe starts a blocking receive loop, invoking handle for every
// tuple, until ctx is canceled. Malformed payloads are logged and skipped
// — the bus consumer never propagates errors to clients (§7).
func (b *Bus) Subscribe(ctx context.Context, handle Handler) {
	sub := b.rdb.Subscribe(ctx, b.channel)
	defer sub.Close()

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			var tuple MessageTuple
			if err := json.Unmarshal([]byte(msg.Payload), &tuple); err != nil {
				log.CtxWarn(ctx, "bus: dropping malformed tuple: %v", err)
				continue
			}
			handle(ctx, tuple)
		}
	}
}
