package services

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"

	"github.com/yungbote/neurobridge-ledger/internal/data/cache"
	perrors "github.com/yungbote/neurobridge-ledger/internal/pkg/errors"
	"github.com/yungbote/neurobridge-ledger/internal/pkg/logger"
	"github.com/yungbote/neurobridge-ledger/internal/realtime"
	"github.com/yungbote/neurobridge-ledger/internal/realtime/bus"
)

const signBasePoints = 1

type SignResult struct {
	StreakLength int `json:"streak_length"`
	RewardPoints int `json:"reward_points"`
	// TotalPoints is what gets accrued: the base point plus RewardPoints.
	TotalPoints int `json:"total_points"`
}

// StreakReward maps a streak length to its bonus. Only the exact
// breakpoints pay out.
func StreakReward(streak int) int {
	switch streak {
	case 7:
		return 10
	case 14:
		return 20
	case 28:
		return 40
	default:
		return 0
	}
}

type SignRecordService interface {
	AddSignRecord(ctx context.Context) (*SignResult, error)
	// QuerySignRecords returns one 0/1 entry per day of this month up to today.
	QuerySignRecords(ctx context.Context) ([]byte, error)
}

type signRecordService struct {
	log   *logger.Logger
	store cache.SignStore
	bus   bus.Bus
	clock Clock
}

func NewSignRecordService(baseLog *logger.Logger, store cache.SignStore, b bus.Bus, clock Clock) SignRecordService {
	return &signRecordService{
		log:   baseLog.With("service", "SignRecordService"),
		store: store,
		bus:   b,
		clock: clockOrSystem(clock),
	}
}

func (s *signRecordService) AddSignRecord(ctx context.Context) (*SignResult, error) {
	ctx, span := tracer.Start(ctx, "SignRecordService.AddSignRecord")
	defer span.End()

	userID, err := requireUserID(ctx)
	if err != nil {
		return nil, err
	}
	now := s.clock.Now()
	month, day := SeasonOf(now), now.Day()

	already, err := s.store.TestAndSet(ctx, userID, month, day)
	if err != nil {
		return nil, fmt.Errorf("sign in: %w", err)
	}
	if already {
		return nil, perrors.ErrDuplicateSignIn
	}

	bits, err := s.store.Month(ctx, userID, month)
	if err != nil {
		return nil, fmt.Errorf("read sign bitmap: %w", err)
	}
	streak := bits.RunEndingAt(day)
	if streak < 1 {
		// The bit was set above; a lagging read still counts today.
		streak = 1
	}
	reward := StreakReward(streak)
	res := &SignResult{StreakLength: streak, RewardPoints: reward, TotalPoints: reward + signBasePoints}
	span.SetAttributes(attribute.Int("streak", streak))

	if s.bus != nil {
		if err := bus.PublishEvent(ctx, s.bus, realtime.TopicPoints, realtime.PointAccrualTrigger{
			UserID:        userID,
			SourceType:    realtime.SourceSignIn,
			NominalPoints: res.TotalPoints,
		}); err != nil {
			s.log.Warn("Publish sign-in points failed", "user_id", userID, "error", err)
		}
	}
	return res, nil
}

func (s *signRecordService) QuerySignRecords(ctx context.Context) ([]byte, error) {
	userID, err := requireUserID(ctx)
	if err != nil {
		return nil, err
	}
	now := s.clock.Now()
	bits, err := s.store.Month(ctx, userID, SeasonOf(now))
	if err != nil {
		return nil, fmt.Errorf("read sign bitmap: %w", err)
	}
	return bits.Days(now.Day()), nil
}
