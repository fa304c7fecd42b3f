package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/neurobridge-ledger/internal/data/cache"
	perrors "github.com/yungbote/neurobridge-ledger/internal/pkg/errors"
	"github.com/yungbote/neurobridge-ledger/internal/realtime"
)

func march(day int) time.Time { return time.Date(2026, 3, day, 8, 30, 0, 0, time.UTC) }

func TestAddSignRecordStreakEndsAtToday(t *testing.T) {
	clock := newFixedClock(march(1))
	b := &fakeBus{}
	svc := NewSignRecordService(testLogger(t), cache.NewMemorySignStore(), b, clock)
	ctx := userCtx(uuid.New())

	for _, d := range []int{1, 2, 3, 5} {
		clock.Set(march(d))
		if _, err := svc.AddSignRecord(ctx); err != nil {
			t.Fatalf("sign day %d: %v", d, err)
		}
	}
	clock.Set(march(6))
	res, err := svc.AddSignRecord(ctx)
	if err != nil {
		t.Fatalf("sign day 6: %v", err)
	}
	if res.StreakLength != 2 || res.RewardPoints != 0 || res.TotalPoints != 1 {
		t.Fatalf("unexpected result: %+v", res)
	}

	triggers := b.topic(realtime.TopicPoints)
	if len(triggers) != 5 {
		t.Fatalf("one trigger per fresh sign-in: got=%d", len(triggers))
	}
	var last realtime.PointAccrualTrigger
	_ = triggers[4].Decode(&last)
	if last.SourceType != realtime.SourceSignIn || last.NominalPoints != 1 {
		t.Fatalf("unexpected trigger: %+v", last)
	}
}

func TestAddSignRecordDuplicateLeavesStreak(t *testing.T) {
	clock := newFixedClock(march(9))
	b := &fakeBus{}
	svc := NewSignRecordService(testLogger(t), cache.NewMemorySignStore(), b, clock)
	ctx := userCtx(uuid.New())

	first, err := svc.AddSignRecord(ctx)
	if err != nil || first.StreakLength != 1 {
		t.Fatalf("first sign-in: res=%+v err=%v", first, err)
	}
	if _, err := svc.AddSignRecord(ctx); !errors.Is(err, perrors.ErrDuplicateSignIn) {
		t.Fatalf("expected ErrDuplicateSignIn, got %v", err)
	}
	if n := len(b.topic(realtime.TopicPoints)); n != 1 {
		t.Fatalf("duplicate must not accrue points, triggers=%d", n)
	}
	days, err := svc.QuerySignRecords(ctx)
	if err != nil {
		t.Fatalf("QuerySignRecords: %v", err)
	}
	if len(days) != 9 || days[8] != 1 || days[7] != 0 {
		t.Fatalf("unexpected days: %v", days)
	}
}

func TestAddSignRecordRewardBreakpoints(t *testing.T) {
	clock := newFixedClock(march(1))
	svc := NewSignRecordService(testLogger(t), cache.NewMemorySignStore(), nil, clock)
	ctx := userCtx(uuid.New())

	rewards := map[int]int{}
	for d := 1; d <= 28; d++ {
		clock.Set(march(d))
		res, err := svc.AddSignRecord(ctx)
		if err != nil {
			t.Fatalf("day %d: %v", d, err)
		}
		if res.StreakLength != d {
			t.Fatalf("day %d streak: %d", d, res.StreakLength)
		}
		if res.RewardPoints > 0 {
			rewards[d] = res.TotalPoints
		}
	}
	want := map[int]int{7: 11, 14: 21, 28: 41}
	if len(rewards) != len(want) {
		t.Fatalf("rewards: want=%v got=%v", want, rewards)
	}
	for d, pts := range want {
		if rewards[d] != pts {
			t.Fatalf("day %d total: want=%d got=%d", d, pts, rewards[d])
		}
	}
}

func TestSignRecordRequiresUser(t *testing.T) {
	svc := NewSignRecordService(testLogger(t), cache.NewMemorySignStore(), nil, nil)
	if _, err := svc.AddSignRecord(context.Background()); !errors.Is(err, perrors.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
}
