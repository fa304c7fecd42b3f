// Package debounce implements the write-behind delay queue for progress
// updates. Each (lesson, section) key holds at most one live task; older
// tasks for the same key are dropped when they surface.
package debounce

import (
	"container/heap"
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	perrors "github.com/yungbote/neurobridge-ledger/internal/pkg/errors"
	"github.com/yungbote/neurobridge-ledger/internal/pkg/logger"
)

const (
	DefaultWindow     = 20 * time.Second
	DefaultMaxPending = 100000
	settleTimeout     = 10 * time.Second
)

type Key struct {
	LessonID  uuid.UUID
	SectionID uuid.UUID
}

// FlushTask is a snapshot of a cached record waiting for its window to pass.
type FlushTask struct {
	Key
	RecordID uuid.UUID
	Moment   int
	// Finished is the record's state when the snapshot was taken.
	Finished bool
	ReadyAt  time.Time

	seq uint64
}

type Settler interface {
	Settle(ctx context.Context, task FlushTask) error
}

type SettlerFunc func(ctx context.Context, task FlushTask) error

func (f SettlerFunc) Settle(ctx context.Context, task FlushTask) error { return f(ctx, task) }

type Config struct {
	Window     time.Duration
	MaxPending int
}

type Scheduler struct {
	log        *logger.Logger
	settler    Settler
	window     time.Duration
	maxPending int
	now        func() time.Time

	mu      sync.Mutex
	queue   taskHeap
	latest  map[Key]uint64
	nextSeq uint64
	cancel  context.CancelFunc
	done    chan struct{}

	wake chan struct{}
}

func NewScheduler(baseLog *logger.Logger, settler Settler, cfg Config) *Scheduler {
	if cfg.Window <= 0 {
		cfg.Window = DefaultWindow
	}
	if cfg.MaxPending <= 0 {
		cfg.MaxPending = DefaultMaxPending
	}
	return &Scheduler{
		log:        baseLog.With("component", "DebounceScheduler"),
		settler:    settler,
		window:     cfg.Window,
		maxPending: cfg.MaxPending,
		now:        time.Now,
		latest:     map[Key]uint64{},
		wake:       make(chan struct{}, 1),
	}
}

// SetSettler binds the settle routine. It must be called before Start when
// the settler itself depends on the scheduler.
func (s *Scheduler) SetSettler(settler Settler) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.settler = settler
}

func (s *Scheduler) Window() time.Duration { return s.window }

// Schedule enqueues task to be released one window from now, superseding
// any task still pending for the same key.
func (s *Scheduler) Schedule(task FlushTask) error {
	s.mu.Lock()
	if len(s.queue) >= s.maxPending {
		s.mu.Unlock()
		return perrors.ErrQueueFull
	}
	s.nextSeq++
	task.seq = s.nextSeq
	task.ReadyAt = s.now().Add(s.window)
	s.latest[task.Key] = task.seq
	heap.Push(&s.queue, task)
	s.mu.Unlock()

	select {
	case s.wake <- struct{}{}:
	default:
	}
	return nil
}

// Pending counts queued tasks, superseded ones included.
func (s *Scheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.queue)
}

func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.done != nil {
		return fmt.Errorf("debounce scheduler already started")
	}
	if s.settler == nil {
		return fmt.Errorf("debounce scheduler has no settler")
	}
	runCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.done = make(chan struct{})
	s.log.Info("Starting debounce scheduler", "window", s.window.String(), "max_pending", s.maxPending)
	go s.run(runCtx, s.done)
	return nil
}

// Stop cancels the worker and waits for it to exit. Pending tasks are dropped.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	cancel, done := s.cancel, s.done
	s.mu.Unlock()
	if cancel == nil {
		return
	}
	cancel()
	<-done
}

func (s *Scheduler) run(ctx context.Context, done chan struct{}) {
	defer close(done)

	timer := time.NewTimer(time.Hour)
	timer.Stop()
	defer timer.Stop()

	for {
		task, wait, ready := s.next()
		if ready {
			s.settle(ctx, task)
			continue
		}

		var timerC <-chan time.Time
		if wait > 0 {
			timer.Reset(wait)
			timerC = timer.C
		}

		select {
		case <-ctx.Done():
			s.log.Info("Debounce scheduler stopped", "abandoned", s.Pending())
			return
		case <-s.wake:
		case <-timerC:
		}
		timer.Stop()
	}
}

// next pops the earliest live task if it is due. When nothing is due it
// returns how long until the head is, or 0 when the queue is empty.
func (s *Scheduler) next() (FlushTask, time.Duration, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for len(s.queue) > 0 {
		head := s.queue[0]
		if wait := head.ReadyAt.Sub(s.now()); wait > 0 {
			return FlushTask{}, wait, false
		}
		heap.Pop(&s.queue)
		if s.latest[head.Key] != head.seq {
			continue
		}
		delete(s.latest, head.Key)
		return head, 0, true
	}
	return FlushTask{}, 0, false
}

func (s *Scheduler) settle(ctx context.Context, task FlushTask) {
	defer func() {
		if r := recover(); r != nil {
			s.log.Error("Settle panic",
				"lesson_id", task.LessonID,
				"section_id", task.SectionID,
				"panic", r,
			)
		}
	}()

	s.mu.Lock()
	settler := s.settler
	s.mu.Unlock()

	sctx, cancel := context.WithTimeout(ctx, settleTimeout)
	defer cancel()
	if err := settler.Settle(sctx, task); err != nil {
		s.log.Warn("Settle failed",
			"lesson_id", task.LessonID,
			"section_id", task.SectionID,
			"moment", task.Moment,
			"error", err,
		)
	}
}

type taskHeap []FlushTask

func (h taskHeap) Len() int { return len(h) }
func (h taskHeap) Less(i, j int) bool {
	if h[i].ReadyAt.Equal(h[j].ReadyAt) {
		return h[i].seq < h[j].seq
	}
	return h[i].ReadyAt.Before(h[j].ReadyAt)
}
func (h taskHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }
func (h *taskHeap) Push(x any)   { *h = append(*h, x.(FlushTask)) }
func (h *taskHeap) Pop() any {
	old := *h
	n := len(old)
	x := old[n-1]
	*h = old[:n-1]
	return x
}
