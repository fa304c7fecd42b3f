package points

import (
	"context"
	"testing"

	"github.com/google/uuid"

	"github.com/yungbote/neurobridge-ledger/internal/data/repos/testutil"
	types "github.com/yungbote/neurobridge-ledger/internal/domain"
	"github.com/yungbote/neurobridge-ledger/internal/pkg/dbctx"
)

func TestPointsBoardRepoSeasonLifecycle(t *testing.T) {
	db := testutil.DB(t)
	repo := NewPointsBoardRepo(db, testutil.Logger(t))
	ctx := context.Background()
	tx := testutil.Tx(t, db)
	dbc := dbctx.Context{Ctx: ctx, Tx: tx}

	users := []uuid.UUID{uuid.New(), uuid.New(), uuid.New()}
	rows := []*types.PointsBoard{
		{Season: "202609", UserID: users[0], Rank: 1, Points: 90},
		{Season: "202609", UserID: users[1], Rank: 2, Points: 70},
		{Season: "202609", UserID: users[2], Rank: 3, Points: 10},
	}
	if err := repo.CreateBatch(dbc, rows); err != nil {
		t.Fatalf("CreateBatch: %v", err)
	}

	page, err := repo.ListBySeason(dbc, "202609", 1, 2)
	if err != nil {
		t.Fatalf("ListBySeason: %v", err)
	}
	if len(page) != 2 || page[0].Rank != 2 || page[1].Rank != 3 {
		t.Fatalf("unexpected page: %+v", page)
	}

	mine, err := repo.GetBySeasonAndUser(dbc, "202609", users[1])
	if err != nil || mine == nil || mine.Points != 70 {
		t.Fatalf("GetBySeasonAndUser: row=%+v err=%v", mine, err)
	}

	missing, err := repo.GetBySeasonAndUser(dbc, "202608", users[1])
	if err != nil || missing != nil {
		t.Fatalf("expected nil for other season: row=%+v err=%v", missing, err)
	}
}

func TestPointsBoardRepoCreateBatchIsIdempotent(t *testing.T) {
	db := testutil.DB(t)
	repo := NewPointsBoardRepo(db, testutil.Logger(t))
	tx := testutil.Tx(t, db)
	dbc := dbctx.Context{Ctx: context.Background(), Tx: tx}

	userID := uuid.New()
	if err := repo.CreateBatch(dbc, []*types.PointsBoard{{Season: "202609", UserID: userID, Rank: 4, Points: 5}}); err != nil {
		t.Fatalf("first CreateBatch: %v", err)
	}
	if err := repo.CreateBatch(dbc, []*types.PointsBoard{{Season: "202609", UserID: userID, Rank: 2, Points: 8}}); err != nil {
		t.Fatalf("second CreateBatch: %v", err)
	}

	all, err := repo.ListBySeason(dbc, "202609", 0, 10)
	if err != nil {
		t.Fatalf("ListBySeason: %v", err)
	}
	if len(all) != 1 || all[0].Rank != 2 || all[0].Points != 8 {
		t.Fatalf("expected single upserted row, got %+v", all)
	}
}
