package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/yungbote/neurobridge-ledger/internal/data/cache"
	"github.com/yungbote/neurobridge-ledger/internal/data/repos"
	types "github.com/yungbote/neurobridge-ledger/internal/domain"
	"github.com/yungbote/neurobridge-ledger/internal/pkg/dbctx"
	"github.com/yungbote/neurobridge-ledger/internal/pkg/logger"
)

const (
	defaultBoardPageSize = 10
	maxBoardPageSize     = 100
	persistBatchSize     = 1000
)

type BoardQuery struct {
	Season   string
	PageNo   int
	PageSize int
}

type BoardView struct {
	Season string           `json:"season"`
	Rank   int              `json:"rank"`
	Points int              `json:"points"`
	Boards []cache.Standing `json:"boards"`
}

type PointsBoardService interface {
	// QueryBoard serves the live board for the current season and the
	// persisted snapshot for past ones.
	QueryBoard(ctx context.Context, q BoardQuery) (*BoardView, error)
	PersistSeason(ctx context.Context, season string) (int, error)
	PersistLastSeason(ctx context.Context) (int, error)
}

type pointsBoardService struct {
	log    *logger.Logger
	live   cache.Leaderboard
	boards repos.PointsBoardRepo
	clock  Clock
}

func NewPointsBoardService(baseLog *logger.Logger, live cache.Leaderboard, boards repos.PointsBoardRepo, clock Clock) PointsBoardService {
	return &pointsBoardService{
		log:    baseLog.With("service", "PointsBoardService"),
		live:   live,
		boards: boards,
		clock:  clockOrSystem(clock),
	}
}

func (s *pointsBoardService) QueryBoard(ctx context.Context, q BoardQuery) (*BoardView, error) {
	ctx, span := tracer.Start(ctx, "PointsBoardService.QueryBoard")
	defer span.End()

	userID, err := requireUserID(ctx)
	if err != nil {
		return nil, err
	}
	current := SeasonOf(s.clock.Now())
	season := current
	if q.Season != "" {
		if season, err = ParseSeason(q.Season); err != nil {
			return nil, err
		}
	}
	pageNo, pageSize := q.PageNo, q.PageSize
	if pageNo < 1 {
		pageNo = 1
	}
	if pageSize <= 0 {
		pageSize = defaultBoardPageSize
	}
	if pageSize > maxBoardPageSize {
		pageSize = maxBoardPageSize
	}
	offset := (pageNo - 1) * pageSize

	view := &BoardView{Season: season, Boards: []cache.Standing{}}
	if season == current {
		mine, err := s.live.Standing(ctx, season, userID)
		if err != nil {
			return nil, err
		}
		if mine != nil {
			view.Rank, view.Points = mine.Rank, mine.Points
		}
		if view.Boards, err = s.live.Page(ctx, season, offset, pageSize); err != nil {
			return nil, err
		}
		return view, nil
	}

	dbc := dbctx.Context{Ctx: ctx}
	mine, err := s.boards.GetBySeasonAndUser(dbc, season, userID)
	if err != nil {
		return nil, err
	}
	if mine != nil {
		view.Rank, view.Points = mine.Rank, mine.Points
	}
	rows, err := s.boards.ListBySeason(dbc, season, offset, pageSize)
	if err != nil {
		return nil, err
	}
	for _, r := range rows {
		view.Boards = append(view.Boards, cache.Standing{UserID: r.UserID, Rank: r.Rank, Points: r.Points})
	}
	return view, nil
}

// PersistSeason copies the live board for season into storage page by page,
// then drops the live key. Re-running after a partial failure is safe.
func (s *pointsBoardService) PersistSeason(ctx context.Context, season string) (int, error) {
	if _, err := ParseSeason(season); err != nil {
		return 0, err
	}
	total := 0
	for offset := 0; ; offset += persistBatchSize {
		page, err := s.live.Page(ctx, season, offset, persistBatchSize)
		if err != nil {
			return total, fmt.Errorf("read live board %s: %w", season, err)
		}
		if len(page) == 0 {
			break
		}
		rows := make([]*types.PointsBoard, 0, len(page))
		for _, st := range page {
			if st.UserID == uuid.Nil {
				continue
			}
			rows = append(rows, &types.PointsBoard{Season: season, UserID: st.UserID, Rank: st.Rank, Points: st.Points})
		}
		if err := s.boards.CreateBatch(dbctx.Context{Ctx: ctx}, rows); err != nil {
			return total, fmt.Errorf("persist board %s: %w", season, err)
		}
		total += len(rows)
		if len(page) < persistBatchSize {
			break
		}
	}
	if err := s.live.Remove(ctx, season); err != nil {
		return total, fmt.Errorf("remove live board %s: %w", season, err)
	}
	s.log.Info("Points board persisted", "season", season, "rows", total)
	return total, nil
}

func (s *pointsBoardService) PersistLastSeason(ctx context.Context) (int, error) {
	return s.PersistSeason(ctx, PreviousSeason(s.clock.Now()))
}
