package bus

import (
	"context"

	"github.com/yungbote/neurobridge-ledger/internal/realtime"
)

type Bus interface {
	Publish(ctx context.Context, msg realtime.Message) error
	// Subscribe delivers messages for topic to onMsg until ctx is done.
	Subscribe(ctx context.Context, topic string, onMsg func(m realtime.Message)) error
	Close() error
}

// PublishEvent wraps data in an envelope and publishes it.
func PublishEvent(ctx context.Context, b Bus, topic string, data any) error {
	msg, err := realtime.NewMessage(topic, data)
	if err != nil {
		return err
	}
	return b.Publish(ctx, msg)
}
