package learning

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/yungbote/neurobridge-ledger/internal/data/repos/testutil"
	types "github.com/yungbote/neurobridge-ledger/internal/domain"
	"github.com/yungbote/neurobridge-ledger/internal/pkg/dbctx"
)

func TestLearningRecordRepo(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)

	ctx := context.Background()
	dbc := dbctx.Context{Ctx: ctx, Tx: tx}
	repo := NewLearningRecordRepo(db, testutil.Logger(t))

	userID := uuid.New()
	lessonID := uuid.New()
	sectionID := uuid.New()

	if got, err := repo.GetByLessonAndSection(dbc, lessonID, sectionID); err != nil || got != nil {
		t.Fatalf("GetByLessonAndSection miss: got=%v err=%v", got, err)
	}

	rows, err := repo.Create(dbc, []*types.LearningRecord{{
		UserID:    userID,
		LessonID:  lessonID,
		SectionID: sectionID,
		Moment:    40,
	}})
	if err != nil || len(rows) != 1 || rows[0].ID == uuid.Nil {
		t.Fatalf("Create: rows=%v err=%v", rows, err)
	}

	if err := repo.UpdateMoment(dbc, lessonID, sectionID, 45); err != nil {
		t.Fatalf("UpdateMoment: %v", err)
	}
	got, err := repo.GetByLessonAndSection(dbc, lessonID, sectionID)
	if err != nil || got == nil || got.Moment != 45 || got.Finished {
		t.Fatalf("after UpdateMoment: got=%+v err=%v", got, err)
	}

	changed, err := repo.UpdateUnfinishedMoment(dbc, lessonID, sectionID, 50)
	if err != nil || !changed {
		t.Fatalf("UpdateUnfinishedMoment: changed=%v err=%v", changed, err)
	}

	commit := time.Date(2026, 10, 14, 9, 0, 0, 0, time.UTC)
	flipped, err := repo.MarkFinished(dbc, lessonID, sectionID, 60, commit)
	if err != nil || !flipped {
		t.Fatalf("MarkFinished first: flipped=%v err=%v", flipped, err)
	}
	flipped, err = repo.MarkFinished(dbc, lessonID, sectionID, 70, commit)
	if err != nil || flipped {
		t.Fatalf("MarkFinished second: flipped=%v err=%v", flipped, err)
	}

	got, _ = repo.GetByLessonAndSection(dbc, lessonID, sectionID)
	if got == nil || !got.Finished || got.Moment != 60 || got.FinishTime == nil || !got.FinishTime.Equal(commit) {
		t.Fatalf("after MarkFinished: %+v", got)
	}

	changed, err = repo.UpdateUnfinishedMoment(dbc, lessonID, sectionID, 40)
	if err != nil || changed {
		t.Fatalf("UpdateUnfinishedMoment on finished row: changed=%v err=%v", changed, err)
	}
	got, _ = repo.GetByLessonAndSection(dbc, lessonID, sectionID)
	if got == nil || got.Moment != 60 {
		t.Fatalf("finished moment overwritten: %+v", got)
	}

	// A settled moment write must not clear finished.
	if err := repo.UpdateMoment(dbc, lessonID, sectionID, 10); err != nil {
		t.Fatalf("UpdateMoment after finish: %v", err)
	}
	got, _ = repo.GetByLessonAndSection(dbc, lessonID, sectionID)
	if got == nil || !got.Finished || got.Moment != 10 {
		t.Fatalf("finished lost on UpdateMoment: %+v", got)
	}

	testutil.SeedRecord(t, ctx, tx, userID, lessonID, uuid.New(), 5, false)
	list, err := repo.ListByLessonID(dbc, lessonID)
	if err != nil || len(list) != 2 {
		t.Fatalf("ListByLessonID: len=%d err=%v", len(list), err)
	}
}
