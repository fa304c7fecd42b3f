package learning

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/neurobridge-ledger/internal/domain"
	"github.com/yungbote/neurobridge-ledger/internal/pkg/dbctx"
	"github.com/yungbote/neurobridge-ledger/internal/pkg/logger"
)

type LearningRecordRepo interface {
	Create(dbc dbctx.Context, rows []*types.LearningRecord) ([]*types.LearningRecord, error)
	GetByLessonAndSection(dbc dbctx.Context, lessonID, sectionID uuid.UUID) (*types.LearningRecord, error)
	ListByLessonID(dbc dbctx.Context, lessonID uuid.UUID) ([]*types.LearningRecord, error)
	// UpdateMoment writes only the moment column; finished is left as-is.
	UpdateMoment(dbc dbctx.Context, lessonID, sectionID uuid.UUID, moment int) error
	// UpdateUnfinishedMoment writes moment only while the row is unfinished and
	// reports whether a row changed.
	UpdateUnfinishedMoment(dbc dbctx.Context, lessonID, sectionID uuid.UUID, moment int) (bool, error)
	// MarkFinished flips finished false->true. It reports false when the row
	// was already finished, which makes concurrent duplicate completions safe.
	MarkFinished(dbc dbctx.Context, lessonID, sectionID uuid.UUID, moment int, finishTime time.Time) (bool, error)
}

type learningRecordRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewLearningRecordRepo(db *gorm.DB, baseLog *logger.Logger) LearningRecordRepo {
	return &learningRecordRepo{db: db, log: baseLog.With("repo", "LearningRecordRepo")}
}

func (r *learningRecordRepo) dbx(dbc dbctx.Context) *gorm.DB {
	if dbc.Tx != nil {
		return dbc.Tx
	}
	return r.db
}

func (r *learningRecordRepo) Create(dbc dbctx.Context, rows []*types.LearningRecord) ([]*types.LearningRecord, error) {
	t := r.dbx(dbc)
	if len(rows) == 0 {
		return []*types.LearningRecord{}, nil
	}
	now := time.Now().UTC()
	for _, x := range rows {
		if x == nil {
			continue
		}
		if x.ID == uuid.Nil {
			x.ID = uuid.New()
		}
		x.CreatedAt = now
		x.UpdatedAt = now
	}
	if err := t.WithContext(dbc.Context()).Create(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *learningRecordRepo) GetByLessonAndSection(dbc dbctx.Context, lessonID, sectionID uuid.UUID) (*types.LearningRecord, error) {
	t := r.dbx(dbc)
	if lessonID == uuid.Nil || sectionID == uuid.Nil {
		return nil, nil
	}
	var row types.LearningRecord
	err := t.WithContext(dbc.Context()).
		Where("lesson_id = ? AND section_id = ?", lessonID, sectionID).
		Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *learningRecordRepo) ListByLessonID(dbc dbctx.Context, lessonID uuid.UUID) ([]*types.LearningRecord, error) {
	t := r.dbx(dbc)
	out := []*types.LearningRecord{}
	if lessonID == uuid.Nil {
		return out, nil
	}
	if err := t.WithContext(dbc.Context()).
		Where("lesson_id = ?", lessonID).
		Order("created_at ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *learningRecordRepo) UpdateMoment(dbc dbctx.Context, lessonID, sectionID uuid.UUID, moment int) error {
	t := r.dbx(dbc)
	res := t.WithContext(dbc.Context()).
		Model(&types.LearningRecord{}).
		Where("lesson_id = ? AND section_id = ?", lessonID, sectionID).
		Updates(map[string]interface{}{
			"moment":     moment,
			"updated_at": time.Now().UTC(),
		})
	return res.Error
}

func (r *learningRecordRepo) UpdateUnfinishedMoment(dbc dbctx.Context, lessonID, sectionID uuid.UUID, moment int) (bool, error) {
	t := r.dbx(dbc)
	res := t.WithContext(dbc.Context()).
		Model(&types.LearningRecord{}).
		Where("lesson_id = ? AND section_id = ? AND finished = ?", lessonID, sectionID, false).
		Updates(map[string]interface{}{
			"moment":     moment,
			"updated_at": time.Now().UTC(),
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *learningRecordRepo) MarkFinished(dbc dbctx.Context, lessonID, sectionID uuid.UUID, moment int, finishTime time.Time) (bool, error) {
	t := r.dbx(dbc)
	res := t.WithContext(dbc.Context()).
		Model(&types.LearningRecord{}).
		Where("lesson_id = ? AND section_id = ? AND finished = ?", lessonID, sectionID, false).
		Updates(map[string]interface{}{
			"moment":      moment,
			"finished":    true,
			"finish_time": finishTime.UTC(),
			"updated_at":  time.Now().UTC(),
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}
