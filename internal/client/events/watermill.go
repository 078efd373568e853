package events

import (
	"context"
	"log/slog"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

// DefaultChannel is the topic/channel name cross-tab events travel on.
const DefaultChannel = "edusync:events"

// NewLocalPubSub returns an in-process pub/sub that several tabs of one
// process can share. A nil logger discards watermill's own logs.
func NewLocalPubSub(log *slog.Logger) *gochannel.GoChannel {
	var wlog watermill.LoggerAdapter = watermill.NopLogger{}
	if log != nil {
		wlog = watermill.NewSlogLogger(log)
	}
	return gochannel.NewGoChannel(gochannel.Config{OutputChannelBuffer: 64}, wlog)
}

// WatermillTransport carries events over a watermill publisher/subscriber
// pair. With a shared gochannel it connects tabs living in one process.
type WatermillTransport struct {
	pub     message.Publisher
	sub     message.Subscriber
	channel string
}

func NewWatermillTransport(pub message.Publisher, sub message.Subscriber, channel string) *WatermillTransport {
	if channel == "" {
		channel = DefaultChannel
	}
	return &WatermillTransport{pub: pub, sub: sub, channel: channel}
}

func (t *WatermillTransport) Send(_ context.Context, data []byte) error {
	return t.pub.Publish(t.channel, message.NewMessage(watermill.NewUUID(), data))
}

func (t *WatermillTransport) Receive(ctx context.Context) (<-chan []byte, error) {
	msgs, err := t.sub.Subscribe(ctx, t.channel)
	if err != nil {
		return nil, err
	}

	out := make(chan []byte)
	go func() {
		defer close(out)
		for m := range msgs {
			select {
			case out <- m.Payload:
				m.Ack()
			case <-ctx.Done():
				m.Nack()
				return
			}
		}
	}()
	return out, nil
}

// Close is a no-op: the pub/sub is owned by whoever created it and may be
// shared with other tabs.
func (t *WatermillTransport) Close() error { return nil }
