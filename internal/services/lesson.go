package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/neurobridge-ledger/internal/data/repos"
	types "github.com/yungbote/neurobridge-ledger/internal/domain"
	"github.com/yungbote/neurobridge-ledger/internal/pkg/dbctx"
	perrors "github.com/yungbote/neurobridge-ledger/internal/pkg/errors"
	"github.com/yungbote/neurobridge-ledger/internal/pkg/logger"
)

type LessonService interface {
	// ApplySectionFinished counts one more learned section on the lesson and
	// advances its status. It returns the lesson as stored afterwards.
	ApplySectionFinished(dbc dbctx.Context, lessonID, userID uuid.UUID) (*types.LearningLesson, error)
	TouchLatest(ctx context.Context, lessonID, sectionID uuid.UUID, at time.Time) error
	GetByUserAndCourse(ctx context.Context, userID, courseID uuid.UUID) (*types.LearningLesson, error)
}

type lessonService struct {
	log     *logger.Logger
	lessons repos.LearningLessonRepo
	catalog CourseCatalog
}

func NewLessonService(baseLog *logger.Logger, lessons repos.LearningLessonRepo, catalog CourseCatalog) LessonService {
	return &lessonService{
		log:     baseLog.With("service", "LessonService"),
		lessons: lessons,
		catalog: catalog,
	}
}

func (s *lessonService) ApplySectionFinished(dbc dbctx.Context, lessonID, userID uuid.UUID) (*types.LearningLesson, error) {
	lesson, err := s.lessons.GetByID(dbc, lessonID)
	if err != nil {
		return nil, err
	}
	if lesson == nil || (userID != uuid.Nil && lesson.UserID != userID) {
		return nil, fmt.Errorf("%w: lesson %s", perrors.ErrNotFound, lessonID)
	}
	sectionNum, err := s.catalog.SectionCount(dbc, lesson.CourseID)
	if err != nil {
		return nil, err
	}
	if err := s.lessons.IncrementLearnedSections(dbc, lessonID, sectionNum); err != nil {
		return nil, err
	}
	updated, err := s.lessons.GetByID(dbc, lessonID)
	if err != nil {
		return nil, err
	}
	if updated == nil {
		return nil, fmt.Errorf("%w: lesson %s", perrors.ErrNotFound, lessonID)
	}
	s.log.Debug("Section finished",
		"lesson_id", lessonID,
		"learned_sections", updated.LearnedSections,
		"section_num", sectionNum,
		"status", updated.Status,
	)
	return updated, nil
}

func (s *lessonService) TouchLatest(ctx context.Context, lessonID, sectionID uuid.UUID, at time.Time) error {
	return s.lessons.TouchLatest(dbctx.Context{Ctx: ctx}, lessonID, sectionID, at)
}

func (s *lessonService) GetByUserAndCourse(ctx context.Context, userID, courseID uuid.UUID) (*types.LearningLesson, error) {
	return s.lessons.GetByUserAndCourse(dbctx.Context{Ctx: ctx}, userID, courseID)
}
