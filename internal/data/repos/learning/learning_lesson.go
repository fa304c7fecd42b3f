package learning

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/neurobridge-ledger/internal/domain"
	"github.com/yungbote/neurobridge-ledger/internal/pkg/dbctx"
	pkgerrors "github.com/yungbote/neurobridge-ledger/internal/pkg/errors"
	"github.com/yungbote/neurobridge-ledger/internal/pkg/logger"
)

type LearningLessonRepo interface {
	Create(dbc dbctx.Context, rows []*types.LearningLesson) ([]*types.LearningLesson, error)
	GetByID(dbc dbctx.Context, id uuid.UUID) (*types.LearningLesson, error)
	GetByUserAndCourse(dbc dbctx.Context, userID, courseID uuid.UUID) (*types.LearningLesson, error)
	// IncrementLearnedSections adds one learned section in a single UPDATE and
	// derives the new status from the row's current counter.
	IncrementLearnedSections(dbc dbctx.Context, id uuid.UUID, sectionNum int) error
	TouchLatest(dbc dbctx.Context, id, sectionID uuid.UUID, at time.Time) error
}

type learningLessonRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewLearningLessonRepo(db *gorm.DB, baseLog *logger.Logger) LearningLessonRepo {
	return &learningLessonRepo{db: db, log: baseLog.With("repo", "LearningLessonRepo")}
}

func (r *learningLessonRepo) dbx(dbc dbctx.Context) *gorm.DB {
	if dbc.Tx != nil {
		return dbc.Tx
	}
	return r.db
}

func (r *learningLessonRepo) Create(dbc dbctx.Context, rows []*types.LearningLesson) ([]*types.LearningLesson, error) {
	t := r.dbx(dbc)
	if len(rows) == 0 {
		return []*types.LearningLesson{}, nil
	}
	now := time.Now().UTC()
	for _, x := range rows {
		if x == nil {
			continue
		}
		if x.ID == uuid.Nil {
			x.ID = uuid.New()
		}
		if x.Status == "" {
			x.Status = types.LessonStatusNotStarted
		}
		x.CreatedAt = now
		x.UpdatedAt = now
	}
	if err := t.WithContext(dbc.Context()).Create(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *learningLessonRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.LearningLesson, error) {
	t := r.dbx(dbc)
	if id == uuid.Nil {
		return nil, nil
	}
	var row types.LearningLesson
	err := t.WithContext(dbc.Context()).Where("id = ?", id).Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *learningLessonRepo) GetByUserAndCourse(dbc dbctx.Context, userID, courseID uuid.UUID) (*types.LearningLesson, error) {
	t := r.dbx(dbc)
	if userID == uuid.Nil || courseID == uuid.Nil {
		return nil, nil
	}
	var row types.LearningLesson
	err := t.WithContext(dbc.Context()).
		Where("user_id = ? AND course_id = ?", userID, courseID).
		Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *learningLessonRepo) IncrementLearnedSections(dbc dbctx.Context, id uuid.UUID, sectionNum int) error {
	t := r.dbx(dbc)
	// SET expressions read the pre-update row, so both columns see the same
	// learned_sections value. FINISHED is sticky.
	res := t.WithContext(dbc.Context()).
		Model(&types.LearningLesson{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"learned_sections": gorm.Expr("learned_sections + 1"),
			"status": gorm.Expr(
				"CASE WHEN status = ? THEN status WHEN learned_sections + 1 >= ? THEN ? WHEN learned_sections = 0 THEN ? ELSE status END",
				types.LessonStatusFinished, sectionNum, types.LessonStatusFinished, types.LessonStatusLearning,
			),
			"updated_at": time.Now().UTC(),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return pkgerrors.ErrNotFound
	}
	return nil
}

func (r *learningLessonRepo) TouchLatest(dbc dbctx.Context, id, sectionID uuid.UUID, at time.Time) error {
	t := r.dbx(dbc)
	return t.WithContext(dbc.Context()).
		Model(&types.LearningLesson{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"latest_section_id": sectionID,
			"latest_learn_time": at.UTC(),
			"updated_at":        time.Now().UTC(),
		}).Error
}
