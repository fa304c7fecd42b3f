package app

import (
	"fmt"

	"github.com/yungbote/neurobridge-ledger/internal/data/cache"
	types "github.com/yungbote/neurobridge-ledger/internal/domain"
	"github.com/yungbote/neurobridge-ledger/internal/jobs/board"
	"github.com/yungbote/neurobridge-ledger/internal/jobs/debounce"
	"github.com/yungbote/neurobridge-ledger/internal/jobs/worker"
	"github.com/yungbote/neurobridge-ledger/internal/pkg/logger"
	"github.com/yungbote/neurobridge-ledger/internal/realtime/bus"
	"github.com/yungbote/neurobridge-ledger/internal/services"
)

// Stores are the redis-or-memory backends behind the services.
type Stores struct {
	Progress    cache.ProgressCache
	Signs       cache.SignStore
	Leaderboard cache.Leaderboard
	Bus         bus.Bus
}

type Services struct {
	Auth           services.AuthService
	Lessons        services.LessonService
	LearningRecord services.LearningRecordService
	SignRecord     services.SignRecordService
	Points         services.PointsService
	PointsBoard    services.PointsBoardService

	Debounce       *debounce.Scheduler
	PointsConsumer *worker.PointsConsumer
	BoardJob       *board.Job
}

func wireStores(log *logger.Logger, cfg Config, clients Clients) (Stores, error) {
	if clients.Redis == nil {
		return Stores{
			Progress:    cache.NewMemoryProgressCache(),
			Signs:       cache.NewMemorySignStore(),
			Leaderboard: cache.NewMemoryLeaderboard(),
			Bus:         bus.NewMemoryBus(log),
		}, nil
	}
	b, err := bus.NewRedisBus(log, clients.Redis, cfg.BusPrefix)
	if err != nil {
		return Stores{}, fmt.Errorf("init redis bus: %w", err)
	}
	return Stores{
		Progress:    cache.NewRedisProgressCache(clients.Redis, log),
		Signs:       cache.NewRedisSignStore(clients.Redis),
		Leaderboard: cache.NewRedisLeaderboard(clients.Redis, log),
		Bus:         b,
	}, nil
}

func wireServices(log *logger.Logger, cfg Config, clients Clients, reposet Repos, stores Stores) (Services, error) {
	log.Info("Wiring services...")

	rules, err := types.LoadPointsRules(cfg.PointsRulesFile)
	if err != nil {
		return Services{}, fmt.Errorf("load points rules: %w", err)
	}
	clock := services.SystemClock()

	catalog := services.NewCourseCatalog(log, reposet.Course)
	lessons := services.NewLessonService(log, reposet.LearningLesson, catalog)

	// The scheduler and the record service reference each other; the settler
	// is attached once both exist.
	scheduler := debounce.NewScheduler(log, nil, cfg.Debounce)
	records := services.NewLearningRecordService(log, services.LearningRecordDeps{
		DB:        clients.DB,
		Records:   reposet.LearningRecord,
		Lessons:   lessons,
		Cache:     stores.Progress,
		Scheduler: scheduler,
		Bus:       stores.Bus,
		Clock:     clock,
		CacheTTL:  cfg.ProgressCacheTTL,
	})
	scheduler.SetSettler(records)

	points := services.NewPointsService(log, reposet.PointsRecord, stores.Leaderboard, stores.Bus, rules, clock)
	boards := services.NewPointsBoardService(log, stores.Leaderboard, reposet.PointsBoard, clock)

	return Services{
		Auth:           services.NewAuthService(log, cfg.JWTSecretKey, cfg.AccessTokenTTL),
		Lessons:        lessons,
		LearningRecord: records,
		SignRecord:     services.NewSignRecordService(log, stores.Signs, stores.Bus, clock),
		Points:         points,
		PointsBoard:    boards,

		Debounce:       scheduler,
		PointsConsumer: worker.NewPointsConsumer(log, stores.Bus, points, cfg.PointsConsumers),
		BoardJob:       board.NewJob(log, boards, cfg.PointsBoardCron, cfg.BoardLocation),
	}, nil
}
