package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/neurobridge-ledger/internal/data/cache"
	"github.com/yungbote/neurobridge-ledger/internal/data/repos"
	"github.com/yungbote/neurobridge-ledger/internal/jobs/debounce"
	"github.com/yungbote/neurobridge-ledger/internal/pkg/ctxutil"
	"github.com/yungbote/neurobridge-ledger/internal/pkg/dbctx"
	"github.com/yungbote/neurobridge-ledger/internal/pkg/logger"
	"github.com/yungbote/neurobridge-ledger/internal/realtime"
)

func testLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New("test")
	if err != nil {
		t.Fatalf("logger.New: %v", err)
	}
	return log
}

func userCtx(userID uuid.UUID) context.Context {
	return ctxutil.WithRequestData(context.Background(), &ctxutil.RequestData{UserID: userID})
}

type fixedClock struct {
	mu sync.Mutex
	t  time.Time
}

func newFixedClock(t time.Time) *fixedClock { return &fixedClock{t: t} }

func (c *fixedClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fixedClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = t
}

type fakeScheduler struct {
	mu    sync.Mutex
	tasks []debounce.FlushTask
	err   error
}

func (s *fakeScheduler) Schedule(task debounce.FlushTask) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.tasks = append(s.tasks, task)
	return nil
}

func (s *fakeScheduler) snapshot() []debounce.FlushTask {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]debounce.FlushTask(nil), s.tasks...)
}

type fakeBus struct {
	mu   sync.Mutex
	msgs []realtime.Message
}

func (b *fakeBus) Publish(_ context.Context, msg realtime.Message) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.msgs = append(b.msgs, msg)
	return nil
}

func (b *fakeBus) Subscribe(context.Context, string, func(realtime.Message)) error { return nil }

func (b *fakeBus) Close() error { return nil }

func (b *fakeBus) topic(topic string) []realtime.Message {
	b.mu.Lock()
	defer b.mu.Unlock()
	var out []realtime.Message
	for _, m := range b.msgs {
		if m.Topic == topic {
			out = append(out, m)
		}
	}
	return out
}

// countingRecords counts storage writes of the moment column.
type countingRecords struct {
	repos.LearningRecordRepo
	mu      sync.Mutex
	updates int
}

func (r *countingRecords) UpdateMoment(dbc dbctx.Context, lessonID, sectionID uuid.UUID, moment int) error {
	r.mu.Lock()
	r.updates++
	r.mu.Unlock()
	return r.LearningRecordRepo.UpdateMoment(dbc, lessonID, sectionID, moment)
}

func (r *countingRecords) UpdateUnfinishedMoment(dbc dbctx.Context, lessonID, sectionID uuid.UUID, moment int) (bool, error) {
	r.mu.Lock()
	r.updates++
	r.mu.Unlock()
	return r.LearningRecordRepo.UpdateUnfinishedMoment(dbc, lessonID, sectionID, moment)
}

func (r *countingRecords) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.updates
}

// flakyCache fails reads while down is set.
type flakyCache struct {
	cache.ProgressCache
	down bool
}

func (c *flakyCache) Get(ctx context.Context, lessonID, sectionID uuid.UUID) (*cache.CachedRecord, error) {
	if c.down {
		return nil, context.DeadlineExceeded
	}
	return c.ProgressCache.Get(ctx, lessonID, sectionID)
}

func (c *flakyCache) Put(ctx context.Context, rec *cache.CachedRecord, ttl time.Duration) error {
	if c.down {
		return context.DeadlineExceeded
	}
	return c.ProgressCache.Put(ctx, rec, ttl)
}
