package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"

	"github.com/yungbote/neurobridge-ledger/internal/pkg/logger"
)

const progressKeyPrefix = "learning:record:"

// CachedRecord is the latest known progress for one (lesson, section).
// LessonID and SectionID come from the cache key, not the stored value.
type CachedRecord struct {
	ID        uuid.UUID `json:"id"`
	LessonID  uuid.UUID `json:"-"`
	SectionID uuid.UUID `json:"-"`
	Moment    int       `json:"moment"`
	Finished  bool      `json:"finished"`
}

// ProgressCache never falls through to storage: a miss is (nil, nil).
type ProgressCache interface {
	Get(ctx context.Context, lessonID, sectionID uuid.UUID) (*CachedRecord, error)
	// Put overwrites the entry and resets its TTL.
	Put(ctx context.Context, rec *CachedRecord, ttl time.Duration) error
	Delete(ctx context.Context, lessonID, sectionID uuid.UUID) error
}

func ProgressKey(lessonID uuid.UUID) string { return progressKeyPrefix + lessonID.String() }

type redisProgressCache struct {
	log *logger.Logger
	rdb goredis.UniversalClient
}

func NewRedisProgressCache(rdb goredis.UniversalClient, baseLog *logger.Logger) ProgressCache {
	return &redisProgressCache{rdb: rdb, log: baseLog.With("cache", "ProgressCache")}
}

func (c *redisProgressCache) Get(ctx context.Context, lessonID, sectionID uuid.UUID) (*CachedRecord, error) {
	raw, err := c.rdb.HGet(ctx, ProgressKey(lessonID), sectionID.String()).Result()
	if errors.Is(err, goredis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("progress cache get: %w", err)
	}
	var rec CachedRecord
	if err := json.Unmarshal([]byte(raw), &rec); err != nil {
		// A corrupt entry is treated as a miss so the caller re-reads storage.
		c.log.Warn("bad progress cache payload", "lesson_id", lessonID, "section_id", sectionID, "error", err)
		return nil, nil
	}
	rec.LessonID = lessonID
	rec.SectionID = sectionID
	return &rec, nil
}

func (c *redisProgressCache) Put(ctx context.Context, rec *CachedRecord, ttl time.Duration) error {
	if rec == nil {
		return nil
	}
	raw, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	key := ProgressKey(rec.LessonID)
	_, err = c.rdb.TxPipelined(ctx, func(p goredis.Pipeliner) error {
		p.HSet(ctx, key, rec.SectionID.String(), raw)
		if ttl > 0 {
			p.Expire(ctx, key, ttl)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("progress cache put: %w", err)
	}
	return nil
}

func (c *redisProgressCache) Delete(ctx context.Context, lessonID, sectionID uuid.UUID) error {
	if err := c.rdb.HDel(ctx, ProgressKey(lessonID), sectionID.String()).Err(); err != nil {
		return fmt.Errorf("progress cache delete: %w", err)
	}
	return nil
}

type progressKey struct {
	lessonID  uuid.UUID
	sectionID uuid.UUID
}

type memoryEntry struct {
	rec       CachedRecord
	expiresAt time.Time
}

const memorySweepInterval = 30 * time.Second

// MemoryProgressCache is a process-local ProgressCache. Expired entries are
// dropped on access and swept from Put at most once per memorySweepInterval.
type MemoryProgressCache struct {
	mu        sync.Mutex
	entries   map[progressKey]memoryEntry
	now       func() time.Time
	lastSweep time.Time
}

func NewMemoryProgressCache() *MemoryProgressCache {
	return &MemoryProgressCache{entries: map[progressKey]memoryEntry{}, now: time.Now}
}

// WithClock swaps the time source; tests use it to expire entries.
func (c *MemoryProgressCache) WithClock(now func() time.Time) *MemoryProgressCache {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = now
	return c
}

func (c *MemoryProgressCache) Get(_ context.Context, lessonID, sectionID uuid.UUID) (*CachedRecord, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	k := progressKey{lessonID, sectionID}
	e, ok := c.entries[k]
	if !ok {
		return nil, nil
	}
	if !e.expiresAt.IsZero() && !c.now().Before(e.expiresAt) {
		delete(c.entries, k)
		return nil, nil
	}
	rec := e.rec
	return &rec, nil
}

func (c *MemoryProgressCache) Put(_ context.Context, rec *CachedRecord, ttl time.Duration) error {
	if rec == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	now := c.now()
	if now.Sub(c.lastSweep) >= memorySweepInterval {
		c.sweepLocked(now)
	}
	e := memoryEntry{rec: *rec}
	if ttl > 0 {
		e.expiresAt = now.Add(ttl)
	}
	c.entries[progressKey{rec.LessonID, rec.SectionID}] = e
	return nil
}

func (c *MemoryProgressCache) sweepLocked(now time.Time) {
	for k, e := range c.entries {
		if !e.expiresAt.IsZero() && !now.Before(e.expiresAt) {
			delete(c.entries, k)
		}
	}
	c.lastSweep = now
}

// Len counts stored entries, expired ones not yet swept included.
func (c *MemoryProgressCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

func (c *MemoryProgressCache) Delete(_ context.Context, lessonID, sectionID uuid.UUID) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, progressKey{lessonID, sectionID})
	return nil
}
