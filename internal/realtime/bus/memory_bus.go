package bus

import (
	"context"
	"fmt"
	"sync"

	"github.com/yungbote/neurobridge-ledger/internal/pkg/logger"
	"github.com/yungbote/neurobridge-ledger/internal/realtime"
)

const memorySubscriberBuffer = 1024

type memorySub struct {
	ch chan realtime.Message
}

// memoryBus fans messages out to in-process subscribers. Each subscriber has
// its own buffered queue; a full queue drops the message with a warning.
type memoryBus struct {
	log    *logger.Logger
	mu     sync.RWMutex
	subs   map[string]map[*memorySub]struct{}
	closed bool
}

func NewMemoryBus(log *logger.Logger) Bus {
	return &memoryBus{
		log:  log.With("service", "MemoryBus"),
		subs: map[string]map[*memorySub]struct{}{},
	}
}

func (b *memoryBus) Publish(_ context.Context, msg realtime.Message) error {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.closed {
		return fmt.Errorf("memory bus closed")
	}
	for s := range b.subs[msg.Topic] {
		select {
		case s.ch <- msg:
		default:
			b.log.Warn("memory bus subscriber full, dropping message", "topic", msg.Topic, "message_id", msg.ID)
		}
	}
	return nil
}

func (b *memoryBus) Subscribe(ctx context.Context, topic string, onMsg func(m realtime.Message)) error {
	if onMsg == nil {
		return fmt.Errorf("onMsg callback required")
	}
	s := &memorySub{ch: make(chan realtime.Message, memorySubscriberBuffer)}

	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return fmt.Errorf("memory bus closed")
	}
	if b.subs[topic] == nil {
		b.subs[topic] = map[*memorySub]struct{}{}
	}
	b.subs[topic][s] = struct{}{}
	b.mu.Unlock()

	go func() {
		defer func() {
			b.mu.Lock()
			delete(b.subs[topic], s)
			b.mu.Unlock()
		}()
		for {
			select {
			case <-ctx.Done():
				return
			case m := <-s.ch:
				onMsg(m)
			}
		}
	}()
	return nil
}

func (b *memoryBus) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.closed = true
	return nil
}
