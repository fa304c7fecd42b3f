package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	types "github.com/yungbote/neurobridge-ledger/internal/domain"
	"gorm.io/gorm"
)

func SeedCourse(tb testing.TB, ctx context.Context, tx *gorm.DB, sectionNum int) *types.Course {
	tb.Helper()
	c := &types.Course{
		ID:         uuid.New(),
		Name:       "course",
		SectionNum: sectionNum,
	}
	if err := tx.WithContext(ctx).Create(c).Error; err != nil {
		tb.Fatalf("seed course: %v", err)
	}
	return c
}

func SeedLesson(tb testing.TB, ctx context.Context, tx *gorm.DB, userID, courseID uuid.UUID) *types.LearningLesson {
	tb.Helper()
	l := &types.LearningLesson{
		ID:       uuid.New(),
		UserID:   userID,
		CourseID: courseID,
		Status:   types.LessonStatusNotStarted,
	}
	if err := tx.WithContext(ctx).Create(l).Error; err != nil {
		tb.Fatalf("seed lesson: %v", err)
	}
	return l
}

func SeedRecord(tb testing.TB, ctx context.Context, tx *gorm.DB, userID, lessonID, sectionID uuid.UUID, moment int, finished bool) *types.LearningRecord {
	tb.Helper()
	r := &types.LearningRecord{
		ID:        uuid.New(),
		UserID:    userID,
		LessonID:  lessonID,
		SectionID: sectionID,
		Moment:    moment,
		Finished:  finished,
	}
	if finished {
		r.FinishTime = PtrTime(time.Now().UTC())
	}
	if err := tx.WithContext(ctx).Create(r).Error; err != nil {
		tb.Fatalf("seed learning record: %v", err)
	}
	return r
}

func PtrUUID(v uuid.UUID) *uuid.UUID { return &v }

func PtrTime(v time.Time) *time.Time { return &v }
