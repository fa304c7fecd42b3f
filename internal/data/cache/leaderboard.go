package cache

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"

	"github.com/yungbote/neurobridge-ledger/internal/pkg/logger"
)

// Standing is one row of a leaderboard. Rank is 1-based.
type Standing struct {
	UserID uuid.UUID `json:"user_id"`
	Rank   int       `json:"rank"`
	Points int       `json:"points"`
}

// Leaderboard is the live per-season ranking.
type Leaderboard interface {
	IncrBy(ctx context.Context, season string, userID uuid.UUID, delta int) error
	// Standing returns nil when the user has no score this season.
	Standing(ctx context.Context, season string, userID uuid.UUID) (*Standing, error)
	Page(ctx context.Context, season string, offset, limit int) ([]Standing, error)
	Remove(ctx context.Context, season string) error
}

func BoardKey(season string) string { return "boards:" + season }

type redisLeaderboard struct {
	log *logger.Logger
	rdb goredis.UniversalClient
}

func NewRedisLeaderboard(rdb goredis.UniversalClient, baseLog *logger.Logger) Leaderboard {
	return &redisLeaderboard{rdb: rdb, log: baseLog.With("cache", "Leaderboard")}
}

func (b *redisLeaderboard) IncrBy(ctx context.Context, season string, userID uuid.UUID, delta int) error {
	if delta == 0 {
		return nil
	}
	if err := b.rdb.ZIncrBy(ctx, BoardKey(season), float64(delta), userID.String()).Err(); err != nil {
		return fmt.Errorf("leaderboard zincrby: %w", err)
	}
	return nil
}

func (b *redisLeaderboard) Standing(ctx context.Context, season string, userID uuid.UUID) (*Standing, error) {
	key := BoardKey(season)
	member := userID.String()
	rank, err := b.rdb.ZRevRank(ctx, key, member).Result()
	if errors.Is(err, goredis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("leaderboard zrevrank: %w", err)
	}
	score, err := b.rdb.ZScore(ctx, key, member).Result()
	if errors.Is(err, goredis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("leaderboard zscore: %w", err)
	}
	return &Standing{UserID: userID, Rank: int(rank) + 1, Points: int(score)}, nil
}

func (b *redisLeaderboard) Page(ctx context.Context, season string, offset, limit int) ([]Standing, error) {
	if offset < 0 {
		offset = 0
	}
	if limit <= 0 {
		return []Standing{}, nil
	}
	zs, err := b.rdb.ZRevRangeWithScores(ctx, BoardKey(season), int64(offset), int64(offset+limit-1)).Result()
	if err != nil {
		return nil, fmt.Errorf("leaderboard zrevrange: %w", err)
	}
	out := make([]Standing, 0, len(zs))
	for i, z := range zs {
		member, _ := z.Member.(string)
		id, err := uuid.Parse(member)
		if err != nil {
			b.log.Warn("skipping non-uuid leaderboard member", "season", season, "member", member)
			continue
		}
		out = append(out, Standing{UserID: id, Rank: offset + i + 1, Points: int(z.Score)})
	}
	return out, nil
}

func (b *redisLeaderboard) Remove(ctx context.Context, season string) error {
	if err := b.rdb.Unlink(ctx, BoardKey(season)).Err(); err != nil {
		return fmt.Errorf("leaderboard unlink: %w", err)
	}
	return nil
}

type memoryLeaderboard struct {
	mu      sync.Mutex
	seasons map[string]map[uuid.UUID]int
}

func NewMemoryLeaderboard() Leaderboard {
	return &memoryLeaderboard{seasons: map[string]map[uuid.UUID]int{}}
}

func (b *memoryLeaderboard) IncrBy(_ context.Context, season string, userID uuid.UUID, delta int) error {
	if delta == 0 {
		return nil
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	s, ok := b.seasons[season]
	if !ok {
		s = map[uuid.UUID]int{}
		b.seasons[season] = s
	}
	s[userID] += delta
	return nil
}

// sorted orders like ZREVRANGE: score desc, then member desc.
func (b *memoryLeaderboard) sorted(season string) []Standing {
	s := b.seasons[season]
	out := make([]Standing, 0, len(s))
	for id, pts := range s {
		out = append(out, Standing{UserID: id, Points: pts})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Points != out[j].Points {
			return out[i].Points > out[j].Points
		}
		return out[i].UserID.String() > out[j].UserID.String()
	})
	for i := range out {
		out[i].Rank = i + 1
	}
	return out
}

func (b *memoryLeaderboard) Standing(_ context.Context, season string, userID uuid.UUID) (*Standing, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, st := range b.sorted(season) {
		if st.UserID == userID {
			st := st
			return &st, nil
		}
	}
	return nil, nil
}

func (b *memoryLeaderboard) Page(_ context.Context, season string, offset, limit int) ([]Standing, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	all := b.sorted(season)
	if offset < 0 {
		offset = 0
	}
	if limit <= 0 || offset >= len(all) {
		return []Standing{}, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], nil
}

func (b *memoryLeaderboard) Remove(_ context.Context, season string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.seasons, season)
	return nil
}
