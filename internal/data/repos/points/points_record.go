package points

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/neurobridge-ledger/internal/domain"
	"github.com/yungbote/neurobridge-ledger/internal/pkg/dbctx"
	"github.com/yungbote/neurobridge-ledger/internal/pkg/logger"
)

type PointsRecordRepo interface {
	// AppendCapped appends row unless the (user, type) sum inside
	// [dayStart, dayEnd) already reached maxPoints, clamping row.Points to the
	// remaining headroom. It returns the accepted amount; 0 means nothing was
	// written. maxPoints <= 0 disables the cap.
	AppendCapped(dbc dbctx.Context, row *types.PointsRecord, maxPoints int, dayStart, dayEnd time.Time) (int, error)
	SumByType(dbc dbctx.Context, userID uuid.UUID, pointsType types.PointsType, start, end time.Time) (int, error)
	SumByUserGroupedByType(dbc dbctx.Context, userID uuid.UUID, start, end time.Time) (map[types.PointsType]int, error)
}

type pointsRecordRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewPointsRecordRepo(db *gorm.DB, baseLog *logger.Logger) PointsRecordRepo {
	return &pointsRecordRepo{db: db, log: baseLog.With("repo", "PointsRecordRepo")}
}

func (r *pointsRecordRepo) dbx(dbc dbctx.Context) *gorm.DB {
	if dbc.Tx != nil {
		return dbc.Tx
	}
	return r.db
}

// Clamp returns how much of points fits under maxPoints given what was
// already accrued. maxPoints <= 0 means uncapped.
func Clamp(existing, points, maxPoints int) int {
	if points <= 0 {
		return 0
	}
	if maxPoints <= 0 {
		return points
	}
	if existing >= maxPoints {
		return 0
	}
	if existing+points > maxPoints {
		return maxPoints - existing
	}
	return points
}

func (r *pointsRecordRepo) AppendCapped(dbc dbctx.Context, row *types.PointsRecord, maxPoints int, dayStart, dayEnd time.Time) (int, error) {
	if row == nil || row.Points <= 0 {
		return 0, nil
	}
	if row.ID == uuid.Nil {
		row.ID = uuid.New()
	}
	if row.CreatedAt.IsZero() {
		row.CreatedAt = time.Now().UTC()
	}

	if maxPoints <= 0 {
		if err := r.dbx(dbc).WithContext(dbc.Context()).Create(row).Error; err != nil {
			return 0, err
		}
		return row.Points, nil
	}

	accepted := 0
	err := r.dbx(dbc).WithContext(dbc.Context()).Transaction(func(tx *gorm.DB) error {
		if tx.Dialector.Name() == "postgres" {
			// Serialises sum-then-insert for one (user, type) across connections.
			lockKey := fmt.Sprintf("points:%s:%s", row.UserID, row.Type)
			if err := tx.Exec("SELECT pg_advisory_xact_lock(hashtext(?))", lockKey).Error; err != nil {
				return fmt.Errorf("advisory lock: %w", err)
			}
		}
		existing, err := r.SumByType(dbctx.Context{Ctx: dbc.Ctx, Tx: tx}, row.UserID, row.Type, dayStart, dayEnd)
		if err != nil {
			return err
		}
		accepted = Clamp(existing, row.Points, maxPoints)
		if accepted == 0 {
			return nil
		}
		row.Points = accepted
		return tx.Create(row).Error
	})
	if err != nil {
		return 0, err
	}
	return accepted, nil
}

func (r *pointsRecordRepo) SumByType(dbc dbctx.Context, userID uuid.UUID, pointsType types.PointsType, start, end time.Time) (int, error) {
	t := r.dbx(dbc)
	var total int64
	if err := t.WithContext(dbc.Context()).
		Model(&types.PointsRecord{}).
		Select("COALESCE(SUM(points), 0)").
		Where("user_id = ? AND type = ? AND created_at >= ? AND created_at < ?", userID, pointsType, start.UTC(), end.UTC()).
		Scan(&total).Error; err != nil {
		return 0, err
	}
	return int(total), nil
}

type typeSum struct {
	Type  types.PointsType
	Total int64
}

func (r *pointsRecordRepo) SumByUserGroupedByType(dbc dbctx.Context, userID uuid.UUID, start, end time.Time) (map[types.PointsType]int, error) {
	t := r.dbx(dbc)
	out := map[types.PointsType]int{}
	if userID == uuid.Nil {
		return out, nil
	}
	var rows []typeSum
	if err := t.WithContext(dbc.Context()).
		Model(&types.PointsRecord{}).
		Select("type, COALESCE(SUM(points), 0) AS total").
		Where("user_id = ? AND created_at >= ? AND created_at < ?", userID, start.UTC(), end.UTC()).
		Group("type").
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	for _, row := range rows {
		out[row.Type] = int(row.Total)
	}
	return out, nil
}
