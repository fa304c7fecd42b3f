package learning

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/yungbote/neurobridge-ledger/internal/data/repos/testutil"
	types "github.com/yungbote/neurobridge-ledger/internal/domain"
	"github.com/yungbote/neurobridge-ledger/internal/pkg/dbctx"
	pkgerrors "github.com/yungbote/neurobridge-ledger/internal/pkg/errors"
)

func TestLearningLessonRepoIncrementDrivesStatus(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)

	ctx := context.Background()
	dbc := dbctx.Context{Ctx: ctx, Tx: tx}
	repo := NewLearningLessonRepo(db, testutil.Logger(t))

	course := testutil.SeedCourse(t, ctx, tx, 3)
	lesson := testutil.SeedLesson(t, ctx, tx, uuid.New(), course.ID)

	steps := []struct {
		learned int
		status  types.LessonStatus
	}{
		{1, types.LessonStatusLearning},
		{2, types.LessonStatusLearning},
		{3, types.LessonStatusFinished},
		// Extra completions keep counting but never leave FINISHED.
		{4, types.LessonStatusFinished},
	}
	for _, step := range steps {
		if err := repo.IncrementLearnedSections(dbc, lesson.ID, course.SectionNum); err != nil {
			t.Fatalf("IncrementLearnedSections: %v", err)
		}
		got, err := repo.GetByID(dbc, lesson.ID)
		if err != nil || got == nil {
			t.Fatalf("GetByID: got=%v err=%v", got, err)
		}
		if got.LearnedSections != step.learned || got.Status != step.status {
			t.Fatalf("after increment: want=%d/%s got=%d/%s", step.learned, step.status, got.LearnedSections, got.Status)
		}
	}
}

func TestLearningLessonRepoSingleSectionCourseFinishesImmediately(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)

	ctx := context.Background()
	dbc := dbctx.Context{Ctx: ctx, Tx: tx}
	repo := NewLearningLessonRepo(db, testutil.Logger(t))

	lesson := testutil.SeedLesson(t, ctx, tx, uuid.New(), uuid.New())
	if err := repo.IncrementLearnedSections(dbc, lesson.ID, 1); err != nil {
		t.Fatalf("IncrementLearnedSections: %v", err)
	}
	got, _ := repo.GetByID(dbc, lesson.ID)
	if got.Status != types.LessonStatusFinished {
		t.Fatalf("status: want=%s got=%s", types.LessonStatusFinished, got.Status)
	}
}

func TestLearningLessonRepoMissingLesson(t *testing.T) {
	db := testutil.DB(t)
	dbc := dbctx.Context{Ctx: context.Background()}
	repo := NewLearningLessonRepo(db, testutil.Logger(t))

	err := repo.IncrementLearnedSections(dbc, uuid.New(), 3)
	if !errors.Is(err, pkgerrors.ErrNotFound) {
		t.Fatalf("want ErrNotFound, got %v", err)
	}
	if got, err := repo.GetByID(dbc, uuid.New()); err != nil || got != nil {
		t.Fatalf("GetByID miss: got=%v err=%v", got, err)
	}
}

func TestLearningLessonRepoTouchAndLookup(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)

	ctx := context.Background()
	dbc := dbctx.Context{Ctx: ctx, Tx: tx}
	repo := NewLearningLessonRepo(db, testutil.Logger(t))

	userID, courseID := uuid.New(), uuid.New()
	lesson := testutil.SeedLesson(t, ctx, tx, userID, courseID)

	sectionID := uuid.New()
	at := time.Date(2026, 10, 14, 8, 30, 0, 0, time.UTC)
	if err := repo.TouchLatest(dbc, lesson.ID, sectionID, at); err != nil {
		t.Fatalf("TouchLatest: %v", err)
	}
	got, err := repo.GetByUserAndCourse(dbc, userID, courseID)
	if err != nil || got == nil {
		t.Fatalf("GetByUserAndCourse: got=%v err=%v", got, err)
	}
	if got.LatestSectionID == nil || *got.LatestSectionID != sectionID {
		t.Fatalf("latest section: %+v", got.LatestSectionID)
	}
	if got.LatestLearnTime == nil || !got.LatestLearnTime.Equal(at) {
		t.Fatalf("latest learn time: %+v", got.LatestLearnTime)
	}
}

func TestCourseRepoUpsert(t *testing.T) {
	db := testutil.DB(t)
	dbc := dbctx.Context{Ctx: context.Background()}
	repo := NewCourseRepo(db, testutil.Logger(t))

	c := &types.Course{Name: "go", SectionNum: 4}
	if err := repo.Upsert(dbc, c); err != nil {
		t.Fatalf("Upsert insert: %v", err)
	}
	c.SectionNum = 6
	if err := repo.Upsert(dbc, c); err != nil {
		t.Fatalf("Upsert update: %v", err)
	}
	got, err := repo.GetByID(dbc, c.ID)
	if err != nil || got == nil || got.SectionNum != 6 {
		t.Fatalf("GetByID: got=%+v err=%v", got, err)
	}
}
