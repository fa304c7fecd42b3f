package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"gorm.io/gorm"

	"github.com/yungbote/neurobridge-ledger/internal/data/cache"
	"github.com/yungbote/neurobridge-ledger/internal/data/repos"
	types "github.com/yungbote/neurobridge-ledger/internal/domain"
	"github.com/yungbote/neurobridge-ledger/internal/jobs/debounce"
	"github.com/yungbote/neurobridge-ledger/internal/pkg/dbctx"
	perrors "github.com/yungbote/neurobridge-ledger/internal/pkg/errors"
	"github.com/yungbote/neurobridge-ledger/internal/pkg/logger"
	"github.com/yungbote/neurobridge-ledger/internal/realtime"
	"github.com/yungbote/neurobridge-ledger/internal/realtime/bus"
)

const (
	DefaultProgressCacheTTL  = 60 * time.Second
	learningPointsPerSection = 10
)

// ProgressEvent is one progress ping for a section.
type ProgressEvent struct {
	LessonID    uuid.UUID         `json:"lesson_id"`
	SectionID   uuid.UUID         `json:"section_id"`
	SectionType types.SectionType `json:"section_type"`
	Moment      int               `json:"moment"`
	Duration    int               `json:"duration"`
	CommitTime  time.Time         `json:"commit_time"`
}

func (ev ProgressEvent) validate() error {
	switch {
	case ev.LessonID == uuid.Nil:
		return fmt.Errorf("%w: lesson_id required", perrors.ErrInvalidArgument)
	case ev.SectionID == uuid.Nil:
		return fmt.Errorf("%w: section_id required", perrors.ErrInvalidArgument)
	case !ev.SectionType.Valid():
		return fmt.Errorf("%w: section_type %q", perrors.ErrInvalidArgument, ev.SectionType)
	case ev.Moment < 0 || ev.Duration < 0:
		return fmt.Errorf("%w: moment and duration must be non-negative", perrors.ErrInvalidArgument)
	}
	return nil
}

// reachedCompletion is the half-consumed rule; exams currently share it.
func reachedCompletion(_ types.SectionType, moment, duration int) bool {
	return moment*2 >= duration
}

type LessonRecords struct {
	LessonID        uuid.UUID               `json:"lesson_id"`
	LatestSectionID *uuid.UUID              `json:"latest_section_id,omitempty"`
	Records         []*types.LearningRecord `json:"records"`
}

// FlushScheduler is the part of the debounce scheduler the tracker needs.
type FlushScheduler interface {
	Schedule(task debounce.FlushTask) error
}

type LearningRecordService interface {
	// AddLearningRecord reports true only for a section's first completion.
	AddLearningRecord(ctx context.Context, ev ProgressEvent) (bool, error)
	// Settle implements debounce.Settler.
	Settle(ctx context.Context, task debounce.FlushTask) error
	QueryLearningRecords(ctx context.Context, courseID uuid.UUID) (*LessonRecords, error)
}

type LearningRecordDeps struct {
	DB        *gorm.DB
	Records   repos.LearningRecordRepo
	Lessons   LessonService
	Cache     cache.ProgressCache
	Scheduler FlushScheduler
	Bus       bus.Bus
	Clock     Clock
	CacheTTL  time.Duration
}

type learningRecordService struct {
	db        *gorm.DB
	log       *logger.Logger
	records   repos.LearningRecordRepo
	lessons   LessonService
	cache     cache.ProgressCache
	scheduler FlushScheduler
	bus       bus.Bus
	clock     Clock
	cacheTTL  time.Duration
}

func NewLearningRecordService(baseLog *logger.Logger, deps LearningRecordDeps) LearningRecordService {
	ttl := deps.CacheTTL
	if ttl <= 0 {
		ttl = DefaultProgressCacheTTL
	}
	return &learningRecordService{
		db:        deps.DB,
		log:       baseLog.With("service", "LearningRecordService"),
		records:   deps.Records,
		lessons:   deps.Lessons,
		cache:     deps.Cache,
		scheduler: deps.Scheduler,
		bus:       deps.Bus,
		clock:     clockOrSystem(deps.Clock),
		cacheTTL:  ttl,
	}
}

func (s *learningRecordService) AddLearningRecord(ctx context.Context, ev ProgressEvent) (bool, error) {
	ctx, span := tracer.Start(ctx, "LearningRecordService.AddLearningRecord")
	defer span.End()

	userID, err := requireUserID(ctx)
	if err != nil {
		return false, err
	}
	if err := ev.validate(); err != nil {
		return false, err
	}
	span.SetAttributes(
		attribute.String("lesson_id", ev.LessonID.String()),
		attribute.String("section_id", ev.SectionID.String()),
		attribute.String("section_type", string(ev.SectionType)),
	)

	old, err := s.loadRecord(ctx, ev.LessonID, ev.SectionID)
	if err != nil {
		return false, err
	}
	if old == nil {
		old, err = s.createRecord(ctx, userID, ev)
		if err != nil {
			return false, err
		}
		if old == nil {
			return false, nil
		}
	}

	if old.Finished || !reachedCompletion(ev.SectionType, ev.Moment, ev.Duration) {
		return false, s.deferMoment(ctx, old, ev.Moment)
	}
	return s.completeSection(ctx, userID, ev)
}

// loadRecord reads the cache, then storage on a miss, repopulating the cache.
func (s *learningRecordService) loadRecord(ctx context.Context, lessonID, sectionID uuid.UUID) (*cache.CachedRecord, error) {
	cached, err := s.cache.Get(ctx, lessonID, sectionID)
	if err != nil {
		s.log.Warn("Progress cache read failed, using storage", "lesson_id", lessonID, "section_id", sectionID, "error", err)
	} else if cached != nil {
		return cached, nil
	}

	row, err := s.records.GetByLessonAndSection(dbctx.Context{Ctx: ctx}, lessonID, sectionID)
	if err != nil {
		return nil, fmt.Errorf("load learning record: %w", err)
	}
	if row == nil {
		return nil, nil
	}
	rec := toCached(row)
	s.cachePut(ctx, rec)
	return rec, nil
}

// createRecord persists the first event for a section. It returns nil when
// the row was created here, or the concurrent winner's row when another
// request inserted it first.
func (s *learningRecordService) createRecord(ctx context.Context, userID uuid.UUID, ev ProgressEvent) (*cache.CachedRecord, error) {
	row := &types.LearningRecord{
		ID:        uuid.New(),
		UserID:    userID,
		LessonID:  ev.LessonID,
		SectionID: ev.SectionID,
		Moment:    ev.Moment,
	}
	_, err := s.records.Create(dbctx.Context{Ctx: ctx}, []*types.LearningRecord{row})
	if err == nil {
		s.cachePut(ctx, toCached(row))
		return nil, nil
	}

	existing, getErr := s.records.GetByLessonAndSection(dbctx.Context{Ctx: ctx}, ev.LessonID, ev.SectionID)
	if getErr != nil || existing == nil {
		return nil, fmt.Errorf("create learning record: %w", err)
	}
	s.log.Debug("Learning record created concurrently", "lesson_id", ev.LessonID, "section_id", ev.SectionID)
	return toCached(existing), nil
}

// deferMoment records moment in the cache and hands a flush task to the
// scheduler. Either failing degrades to a synchronous storage write.
func (s *learningRecordService) deferMoment(ctx context.Context, old *cache.CachedRecord, moment int) error {
	rec := *old
	rec.Moment = moment

	err := s.cache.Put(ctx, &rec, s.cacheTTL)
	if err == nil {
		err = s.scheduler.Schedule(debounce.FlushTask{
			Key:      debounce.Key{LessonID: rec.LessonID, SectionID: rec.SectionID},
			RecordID: rec.ID,
			Moment:   rec.Moment,
			Finished: rec.Finished,
		})
		if err == nil {
			return nil
		}
	}

	s.log.Warn("Debounce unavailable, writing progress synchronously",
		"lesson_id", rec.LessonID,
		"section_id", rec.SectionID,
		"error", err,
	)
	if err := s.commitMoment(ctx, rec.LessonID, rec.SectionID, rec.Moment, rec.Finished); err != nil {
		return err
	}
	s.cacheDelete(ctx, rec.LessonID, rec.SectionID)
	return nil
}

func (s *learningRecordService) completeSection(ctx context.Context, userID uuid.UUID, ev ProgressEvent) (bool, error) {
	commitTime := ev.CommitTime
	if commitTime.IsZero() {
		commitTime = s.clock.Now()
	}

	var (
		first  bool
		lesson *types.LearningLesson
	)
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		dbc := dbctx.Context{Ctx: ctx, Tx: tx}
		var err error
		first, err = s.records.MarkFinished(dbc, ev.LessonID, ev.SectionID, ev.Moment, commitTime)
		if err != nil {
			return fmt.Errorf("mark finished: %w", err)
		}
		if !first {
			return nil
		}
		lesson, err = s.lessons.ApplySectionFinished(dbc, ev.LessonID, userID)
		return err
	})
	// Evicted on both paths; the next event re-reads storage.
	s.cacheDelete(ctx, ev.LessonID, ev.SectionID)
	if err != nil {
		return false, err
	}
	if !first {
		return false, nil
	}

	s.log.Info("Section completed",
		"user_id", userID,
		"lesson_id", ev.LessonID,
		"section_id", ev.SectionID,
		"status", lesson.Status,
	)
	s.publish(ctx, realtime.TopicLessonProgress, realtime.LessonProgressChanged{
		UserID:               userID,
		LessonID:             ev.LessonID,
		SectionID:            ev.SectionID,
		LearnedSectionsDelta: 1,
		Status:               string(lesson.Status),
	})
	s.publish(ctx, realtime.TopicPoints, realtime.PointAccrualTrigger{
		UserID:        userID,
		SourceType:    realtime.SourceLearning,
		NominalPoints: learningPointsPerSection,
	})
	return true, nil
}

func (s *learningRecordService) Settle(ctx context.Context, task debounce.FlushTask) error {
	ctx, span := tracer.Start(ctx, "LearningRecordService.Settle")
	defer span.End()

	cur, err := s.cache.Get(ctx, task.LessonID, task.SectionID)
	if err != nil {
		return fmt.Errorf("settle read cache: %w", err)
	}
	if cur == nil || cur.Moment != task.Moment {
		s.log.Debug("Discarding superseded flush task",
			"lesson_id", task.LessonID,
			"section_id", task.SectionID,
			"moment", task.Moment,
		)
		return nil
	}
	if err := s.commitMoment(ctx, task.LessonID, task.SectionID, task.Moment, task.Finished); err != nil {
		return err
	}
	s.cacheDelete(ctx, task.LessonID, task.SectionID)
	return nil
}

// commitMoment writes moment and bumps the lesson's latest-learned pointer.
// A snapshot taken before completion never overwrites the committed moment.
func (s *learningRecordService) commitMoment(ctx context.Context, lessonID, sectionID uuid.UUID, moment int, finished bool) error {
	dbc := dbctx.Context{Ctx: ctx}
	if finished {
		if err := s.records.UpdateMoment(dbc, lessonID, sectionID, moment); err != nil {
			return fmt.Errorf("update moment: %w", err)
		}
	} else {
		changed, err := s.records.UpdateUnfinishedMoment(dbc, lessonID, sectionID, moment)
		if err != nil {
			return fmt.Errorf("update moment: %w", err)
		}
		if !changed {
			s.log.Debug("Section completed before flush, keeping committed moment",
				"lesson_id", lessonID,
				"section_id", sectionID,
				"moment", moment,
			)
			return nil
		}
	}
	if err := s.lessons.TouchLatest(ctx, lessonID, sectionID, s.clock.Now()); err != nil {
		s.log.Warn("Touch lesson latest failed", "lesson_id", lessonID, "error", err)
	}
	return nil
}

func (s *learningRecordService) QueryLearningRecords(ctx context.Context, courseID uuid.UUID) (*LessonRecords, error) {
	ctx, span := tracer.Start(ctx, "LearningRecordService.QueryLearningRecords")
	defer span.End()

	userID, err := requireUserID(ctx)
	if err != nil {
		return nil, err
	}
	lesson, err := s.lessons.GetByUserAndCourse(ctx, userID, courseID)
	if err != nil {
		return nil, err
	}
	if lesson == nil {
		return nil, fmt.Errorf("%w: no lesson for course %s", perrors.ErrNotFound, courseID)
	}
	rows, err := s.records.ListByLessonID(dbctx.Context{Ctx: ctx}, lesson.ID)
	if err != nil {
		return nil, err
	}
	return &LessonRecords{
		LessonID:        lesson.ID,
		LatestSectionID: lesson.LatestSectionID,
		Records:         rows,
	}, nil
}

func (s *learningRecordService) cachePut(ctx context.Context, rec *cache.CachedRecord) {
	if err := s.cache.Put(ctx, rec, s.cacheTTL); err != nil {
		s.log.Warn("Progress cache write failed", "lesson_id", rec.LessonID, "section_id", rec.SectionID, "error", err)
	}
}

func (s *learningRecordService) cacheDelete(ctx context.Context, lessonID, sectionID uuid.UUID) {
	if err := s.cache.Delete(ctx, lessonID, sectionID); err != nil {
		s.log.Warn("Progress cache evict failed", "lesson_id", lessonID, "section_id", sectionID, "error", err)
	}
}

func (s *learningRecordService) publish(ctx context.Context, topic string, data any) {
	if s.bus == nil {
		return
	}
	if err := bus.PublishEvent(ctx, s.bus, topic, data); err != nil {
		s.log.Warn("Publish failed", "topic", topic, "error", err)
	}
}

func toCached(row *types.LearningRecord) *cache.CachedRecord {
	return &cache.CachedRecord{
		ID:        row.ID,
		LessonID:  row.LessonID,
		SectionID: row.SectionID,
		Moment:    row.Moment,
		Finished:  row.Finished,
	}
}

var _ debounce.Settler = (LearningRecordService)(nil)

