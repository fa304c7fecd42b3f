package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/neurobridge-ledger/internal/data/cache"
	"github.com/yungbote/neurobridge-ledger/internal/data/repos"
	"github.com/yungbote/neurobridge-ledger/internal/data/repos/testutil"
	"github.com/yungbote/neurobridge-ledger/internal/pkg/dbctx"
	perrors "github.com/yungbote/neurobridge-ledger/internal/pkg/errors"
)

func TestPointsBoardPersistAndQuery(t *testing.T) {
	db := testutil.DB(t)
	log := testLogger(t)
	live := cache.NewMemoryLeaderboard()
	boards := repos.NewPointsBoardRepo(db, log)
	clock := newFixedClock(time.Date(2026, 4, 1, 0, 5, 0, 0, time.UTC))
	svc := NewPointsBoardService(log, live, boards, clock)

	me, other, third := uuid.New(), uuid.New(), uuid.New()
	bg := context.Background()
	_ = live.IncrBy(bg, "202603", me, 30)
	_ = live.IncrBy(bg, "202603", other, 50)
	_ = live.IncrBy(bg, "202603", third, 10)
	_ = live.IncrBy(bg, "202604", me, 2)

	n, err := svc.PersistLastSeason(bg)
	if err != nil {
		t.Fatalf("PersistLastSeason: %v", err)
	}
	if n != 3 {
		t.Fatalf("persisted rows: want=3 got=%d", n)
	}
	if page, _ := live.Page(bg, "202603", 0, 10); len(page) != 0 {
		t.Fatalf("live season must be removed after persisting: %+v", page)
	}
	row, err := boards.GetBySeasonAndUser(dbctx.Context{Ctx: bg}, "202603", other)
	if err != nil || row == nil || row.Rank != 1 || row.Points != 50 {
		t.Fatalf("persisted leader: row=%+v err=%v", row, err)
	}

	ctx := userCtx(me)
	past, err := svc.QueryBoard(ctx, BoardQuery{Season: "202603", PageNo: 1, PageSize: 2})
	if err != nil {
		t.Fatalf("QueryBoard past: %v", err)
	}
	if past.Rank != 2 || past.Points != 30 || len(past.Boards) != 2 || past.Boards[0].UserID != other {
		t.Fatalf("unexpected past view: %+v", past)
	}

	current, err := svc.QueryBoard(ctx, BoardQuery{})
	if err != nil {
		t.Fatalf("QueryBoard current: %v", err)
	}
	if current.Season != "202604" || current.Rank != 1 || current.Points != 2 || len(current.Boards) != 1 {
		t.Fatalf("unexpected current view: %+v", current)
	}
}

func TestPointsBoardPersistIsRepeatable(t *testing.T) {
	db := testutil.DB(t)
	log := testLogger(t)
	live := cache.NewMemoryLeaderboard()
	svc := NewPointsBoardService(log, live, repos.NewPointsBoardRepo(db, log), nil)

	userID := uuid.New()
	_ = live.IncrBy(context.Background(), "202601", userID, 9)
	if _, err := svc.PersistSeason(context.Background(), "202601"); err != nil {
		t.Fatalf("first persist: %v", err)
	}
	n, err := svc.PersistSeason(context.Background(), "202601")
	if err != nil || n != 0 {
		t.Fatalf("second persist of empty live board: n=%d err=%v", n, err)
	}
}

func TestPointsBoardRejectsBadSeason(t *testing.T) {
	db := testutil.DB(t)
	log := testLogger(t)
	svc := NewPointsBoardService(log, cache.NewMemoryLeaderboard(), repos.NewPointsBoardRepo(db, log), nil)

	if _, err := svc.QueryBoard(userCtx(uuid.New()), BoardQuery{Season: "2026-03"}); !errors.Is(err, perrors.ErrInvalidArgument) {
		t.Fatalf("expected ErrInvalidArgument, got %v", err)
	}
	if _, err := svc.PersistSeason(context.Background(), "13"); !errors.Is(err, perrors.ErrInvalidArgument) {
		t.Fatalf("expected ErrInvalidArgument, got %v", err)
	}
}

func TestPreviousSeasonAndDayWindow(t *testing.T) {
	if got := PreviousSeason(time.Date(2026, 1, 31, 23, 0, 0, 0, time.UTC)); got != "202512" {
		t.Fatalf("PreviousSeason: %s", got)
	}
	if got := PreviousSeason(time.Date(2026, 3, 31, 0, 0, 0, 0, time.UTC)); got != "202602" {
		t.Fatalf("PreviousSeason end of month: %s", got)
	}
	start, end := DayWindow(time.Date(2026, 3, 6, 17, 45, 0, 0, time.UTC))
	if !start.Equal(time.Date(2026, 3, 6, 0, 0, 0, 0, time.UTC)) || end.Sub(start) != 24*time.Hour {
		t.Fatalf("DayWindow: %v %v", start, end)
	}
}
