package worker

import (
	"context"
	"fmt"

	"github.com/yungbote/neurobridge-ledger/internal/pkg/logger"
	"github.com/yungbote/neurobridge-ledger/internal/realtime"
	"github.com/yungbote/neurobridge-ledger/internal/realtime/bus"
)

type TriggerHandler interface {
	HandleTrigger(ctx context.Context, trig realtime.PointAccrualTrigger) (int, error)
}

// PointsConsumer drains point accrual triggers from the bus into the ledger.
type PointsConsumer struct {
	log         *logger.Logger
	bus         bus.Bus
	handler     TriggerHandler
	concurrency int
	queue       chan realtime.Message
}

func NewPointsConsumer(baseLog *logger.Logger, b bus.Bus, handler TriggerHandler, concurrency int) *PointsConsumer {
	if concurrency < 1 {
		concurrency = 1
	}
	return &PointsConsumer{
		log:         baseLog.With("component", "PointsConsumer"),
		bus:         b,
		handler:     handler,
		concurrency: concurrency,
		queue:       make(chan realtime.Message, 256),
	}
}

func (w *PointsConsumer) Start(ctx context.Context) error {
	w.log.Info("Starting points consumer", "concurrency", w.concurrency, "topic", realtime.TopicPoints)

	err := w.bus.Subscribe(ctx, realtime.TopicPoints, func(m realtime.Message) {
		select {
		case w.queue <- m:
		case <-ctx.Done():
		}
	})
	if err != nil {
		return fmt.Errorf("subscribe %s: %w", realtime.TopicPoints, err)
	}

	for i := 0; i < w.concurrency; i++ {
		workerID := i + 1
		go w.runLoop(ctx, workerID)
	}
	return nil
}

func (w *PointsConsumer) runLoop(ctx context.Context, workerID int) {
	for {
		select {
		case <-ctx.Done():
			w.log.Info("Points consumer loop stopped", "worker_id", workerID)
			return
		case m := <-w.queue:
			w.handle(ctx, workerID, m)
		}
	}
}

func (w *PointsConsumer) handle(ctx context.Context, workerID int, m realtime.Message) {
	defer func() {
		if r := recover(); r != nil {
			w.log.Error("Points handler panic",
				"worker_id", workerID,
				"message_id", m.ID,
				"panic", r,
			)
		}
	}()

	var trig realtime.PointAccrualTrigger
	if err := m.Decode(&trig); err != nil {
		w.log.Warn("Bad points trigger payload", "message_id", m.ID, "error", err)
		return
	}
	accepted, err := w.handler.HandleTrigger(ctx, trig)
	if err != nil {
		w.log.Warn("Points accrual failed",
			"worker_id", workerID,
			"user_id", trig.UserID,
			"source_type", trig.SourceType,
			"error", err,
		)
		return
	}
	w.log.Debug("Points accrued",
		"user_id", trig.UserID,
		"source_type", trig.SourceType,
		"nominal", trig.NominalPoints,
		"accepted", accepted,
	)
}
