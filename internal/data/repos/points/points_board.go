package points

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/yungbote/neurobridge-ledger/internal/domain"
	"github.com/yungbote/neurobridge-ledger/internal/pkg/dbctx"
	"github.com/yungbote/neurobridge-ledger/internal/pkg/logger"
)

type PointsBoardRepo interface {
	// CreateBatch is idempotent per (season, user) so a re-run job converges.
	CreateBatch(dbc dbctx.Context, rows []*types.PointsBoard) error
	ListBySeason(dbc dbctx.Context, season string, offset, limit int) ([]*types.PointsBoard, error)
	GetBySeasonAndUser(dbc dbctx.Context, season string, userID uuid.UUID) (*types.PointsBoard, error)
}

type pointsBoardRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewPointsBoardRepo(db *gorm.DB, baseLog *logger.Logger) PointsBoardRepo {
	return &pointsBoardRepo{db: db, log: baseLog.With("repo", "PointsBoardRepo")}
}

func (r *pointsBoardRepo) dbx(dbc dbctx.Context) *gorm.DB {
	if dbc.Tx != nil {
		return dbc.Tx
	}
	return r.db
}

func (r *pointsBoardRepo) CreateBatch(dbc dbctx.Context, rows []*types.PointsBoard) error {
	t := r.dbx(dbc)
	if len(rows) == 0 {
		return nil
	}
	now := time.Now().UTC()
	for _, x := range rows {
		if x.ID == uuid.Nil {
			x.ID = uuid.New()
		}
		x.CreatedAt = now
	}
	return t.WithContext(dbc.Context()).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "season"}, {Name: "user_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"rank", "points"}),
		}).
		Create(&rows).Error
}

func (r *pointsBoardRepo) ListBySeason(dbc dbctx.Context, season string, offset, limit int) ([]*types.PointsBoard, error) {
	t := r.dbx(dbc)
	out := []*types.PointsBoard{}
	if season == "" {
		return out, nil
	}
	if limit <= 0 {
		limit = 10
	}
	if offset < 0 {
		offset = 0
	}
	if err := t.WithContext(dbc.Context()).
		Where("season = ?", season).
		Order("rank ASC").
		Offset(offset).
		Limit(limit).
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *pointsBoardRepo) GetBySeasonAndUser(dbc dbctx.Context, season string, userID uuid.UUID) (*types.PointsBoard, error) {
	t := r.dbx(dbc)
	var row types.PointsBoard
	err := t.WithContext(dbc.Context()).
		Where("season = ? AND user_id = ?", season, userID).
		Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &row, nil
}
