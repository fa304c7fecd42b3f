package cache

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"

	"github.com/yungbote/neurobridge-ledger/internal/pkg/bitmap"
)

// SignStore holds one attendance bitmap per (user, yyyyMM).
type SignStore interface {
	// TestAndSet sets day's bit and reports whether it was already set.
	TestAndSet(ctx context.Context, userID uuid.UUID, month string, day int) (bool, error)
	Month(ctx context.Context, userID uuid.UUID, month string) (bitmap.Month, error)
}

func SignKey(userID uuid.UUID, month string) string {
	return fmt.Sprintf("sign:uid:%s:%s", userID, month)
}

type redisSignStore struct {
	rdb goredis.UniversalClient
}

func NewRedisSignStore(rdb goredis.UniversalClient) SignStore {
	return &redisSignStore{rdb: rdb}
}

func (s *redisSignStore) TestAndSet(ctx context.Context, userID uuid.UUID, month string, day int) (bool, error) {
	if day < 1 || day > bitmap.MaxDays {
		return false, fmt.Errorf("day out of range: %d", day)
	}
	prev, err := s.rdb.SetBit(ctx, SignKey(userID, month), int64(day-1), 1).Result()
	if err != nil {
		return false, fmt.Errorf("sign setbit: %w", err)
	}
	return prev == 1, nil
}

func (s *redisSignStore) Month(ctx context.Context, userID uuid.UUID, month string) (bitmap.Month, error) {
	raw, err := s.rdb.Get(ctx, SignKey(userID, month)).Bytes()
	if errors.Is(err, goredis.Nil) {
		return bitmap.Month{}, nil
	}
	if err != nil {
		return bitmap.Month{}, fmt.Errorf("sign get: %w", err)
	}
	return bitmap.FromBytes(raw), nil
}

type memorySignStore struct {
	mu     sync.Mutex
	months map[string]*bitmap.Month
}

func NewMemorySignStore() SignStore {
	return &memorySignStore{months: map[string]*bitmap.Month{}}
}

func (s *memorySignStore) TestAndSet(_ context.Context, userID uuid.UUID, month string, day int) (bool, error) {
	if day < 1 || day > bitmap.MaxDays {
		return false, fmt.Errorf("day out of range: %d", day)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	key := SignKey(userID, month)
	m, ok := s.months[key]
	if !ok {
		m = &bitmap.Month{}
		s.months[key] = m
	}
	return m.TestAndSet(day), nil
}

func (s *memorySignStore) Month(_ context.Context, userID uuid.UUID, month string) (bitmap.Month, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if m, ok := s.months[SignKey(userID, month)]; ok {
		return *m, nil
	}
	return bitmap.Month{}, nil
}
