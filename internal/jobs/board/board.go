// Package board runs the monthly job that freezes last season's live
// leaderboard into storage.
package board

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-co-op/gocron"

	"github.com/yungbote/neurobridge-ledger/internal/pkg/logger"
)

// DefaultSpec fires at 00:05 on the first day of every month.
const DefaultSpec = "5 0 1 * *"

type Persister interface {
	PersistLastSeason(ctx context.Context) (int, error)
}

type Job struct {
	log       *logger.Logger
	scheduler *gocron.Scheduler
	persister Persister
	spec      string
	timeout   time.Duration
}

func NewJob(baseLog *logger.Logger, persister Persister, spec string, loc *time.Location) *Job {
	if loc == nil {
		loc = time.Local
	}
	spec = strings.TrimSpace(spec)
	if spec == "" {
		spec = DefaultSpec
	}
	s := gocron.NewScheduler(loc)
	s.SingletonModeAll()
	return &Job{
		log:       baseLog.With("component", "PointsBoardJob"),
		scheduler: s,
		persister: persister,
		spec:      spec,
		timeout:   10 * time.Minute,
	}
}

func (j *Job) Start(ctx context.Context) error {
	if _, err := j.scheduler.Cron(j.spec).Do(j.RunOnce, ctx); err != nil {
		return fmt.Errorf("schedule points board job %q: %w", j.spec, err)
	}
	j.scheduler.StartAsync()
	j.log.Info("Points board job scheduled", "spec", j.spec)
	return nil
}

func (j *Job) Stop() {
	j.scheduler.Stop()
}

// RunOnce persists the previous season. Failures are logged; the next
// scheduled run retries from the live board, which is only removed on success.
func (j *Job) RunOnce(ctx context.Context) {
	runCtx, cancel := context.WithTimeout(ctx, j.timeout)
	defer cancel()

	start := time.Now()
	n, err := j.persister.PersistLastSeason(runCtx)
	if err != nil {
		j.log.Error("Points board persist failed", "rows", n, "error", err)
		return
	}
	j.log.Info("Points board persist done", "rows", n, "took", time.Since(start).String())
}
