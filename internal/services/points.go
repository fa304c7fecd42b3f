package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"

	"github.com/yungbote/neurobridge-ledger/internal/data/cache"
	"github.com/yungbote/neurobridge-ledger/internal/data/repos"
	types "github.com/yungbote/neurobridge-ledger/internal/domain"
	"github.com/yungbote/neurobridge-ledger/internal/pkg/dbctx"
	perrors "github.com/yungbote/neurobridge-ledger/internal/pkg/errors"
	"github.com/yungbote/neurobridge-ledger/internal/pkg/logger"
	"github.com/yungbote/neurobridge-ledger/internal/realtime"
	"github.com/yungbote/neurobridge-ledger/internal/realtime/bus"
)

var pointsTypeOrder = []types.PointsType{
	types.PointsTypeLearning,
	types.PointsTypeSign,
	types.PointsTypeQA,
	types.PointsTypeNote,
	types.PointsTypeComment,
}

// PointsTypeForSource maps a trigger's source to the ledger type it accrues to.
func PointsTypeForSource(src realtime.SourceType) (types.PointsType, error) {
	switch src {
	case realtime.SourceReply:
		return types.PointsTypeQA, nil
	case realtime.SourceSignIn:
		return types.PointsTypeSign, nil
	case realtime.SourceLearning:
		return types.PointsTypeLearning, nil
	case realtime.SourceNote:
		return types.PointsTypeNote, nil
	case realtime.SourceComment:
		return types.PointsTypeComment, nil
	default:
		return "", fmt.Errorf("%w: source type %q", perrors.ErrInvalidArgument, src)
	}
}

type TodayPoints struct {
	Type      types.PointsType `json:"type"`
	Desc      string           `json:"desc"`
	MaxPoints int              `json:"max_points"`
	Points    int              `json:"points"`
}

type PointsService interface {
	// AddPointsRecord returns the accepted amount; 0 means the day's cap was
	// already reached and nothing was written.
	AddPointsRecord(ctx context.Context, userID uuid.UUID, pointsType types.PointsType, points int) (int, error)
	HandleTrigger(ctx context.Context, trig realtime.PointAccrualTrigger) (int, error)
	QueryMyPointsToday(ctx context.Context) ([]TodayPoints, error)
}

type pointsService struct {
	log     *logger.Logger
	records repos.PointsRecordRepo
	board   cache.Leaderboard
	bus     bus.Bus
	rules   types.PointsRules
	clock   Clock
}

func NewPointsService(baseLog *logger.Logger, records repos.PointsRecordRepo, board cache.Leaderboard, b bus.Bus, rules types.PointsRules, clock Clock) PointsService {
	return &pointsService{
		log:     baseLog.With("service", "PointsService"),
		records: records,
		board:   board,
		bus:     b,
		rules:   rules,
		clock:   clockOrSystem(clock),
	}
}

func (s *pointsService) AddPointsRecord(ctx context.Context, userID uuid.UUID, pointsType types.PointsType, points int) (int, error) {
	ctx, span := tracer.Start(ctx, "PointsService.AddPointsRecord")
	defer span.End()

	if userID == uuid.Nil {
		return 0, fmt.Errorf("%w: user_id required", perrors.ErrInvalidArgument)
	}
	rule, ok := s.rules.Lookup(pointsType)
	if !ok {
		return 0, fmt.Errorf("%w: points type %q", perrors.ErrInvalidArgument, pointsType)
	}
	if points <= 0 {
		return 0, nil
	}

	now := s.clock.Now()
	dayStart, dayEnd := DayWindow(now)
	accepted, err := s.records.AppendCapped(dbctx.Context{Ctx: ctx}, &types.PointsRecord{
		UserID:    userID,
		Type:      pointsType,
		Points:    points,
		CreatedAt: now.UTC(),
	}, rule.MaxPoints, dayStart, dayEnd)
	if err != nil {
		return 0, fmt.Errorf("append points: %w", err)
	}
	span.SetAttributes(attribute.String("points_type", string(pointsType)), attribute.Int("accepted", accepted))
	if accepted == 0 {
		s.log.Debug("Points cap reached, discarding", "user_id", userID, "type", pointsType, "points", points)
		return 0, nil
	}

	season := SeasonOf(now)
	if err := s.board.IncrBy(ctx, season, userID, accepted); err != nil {
		s.log.Warn("Leaderboard increment failed", "user_id", userID, "season", season, "error", err)
	}
	if s.bus != nil {
		if err := bus.PublishEvent(ctx, s.bus, realtime.TopicLeaderboard, realtime.LeaderboardDelta{
			UserID:    userID,
			PeriodKey: season,
			Delta:     accepted,
		}); err != nil {
			s.log.Warn("Publish leaderboard delta failed", "user_id", userID, "error", err)
		}
	}
	return accepted, nil
}

func (s *pointsService) HandleTrigger(ctx context.Context, trig realtime.PointAccrualTrigger) (int, error) {
	pointsType, err := PointsTypeForSource(trig.SourceType)
	if err != nil {
		return 0, err
	}
	return s.AddPointsRecord(ctx, trig.UserID, pointsType, trig.NominalPoints)
}

func (s *pointsService) QueryMyPointsToday(ctx context.Context) ([]TodayPoints, error) {
	userID, err := requireUserID(ctx)
	if err != nil {
		return nil, err
	}
	dayStart, dayEnd := DayWindow(s.clock.Now())
	sums, err := s.records.SumByUserGroupedByType(dbctx.Context{Ctx: ctx}, userID, dayStart, dayEnd)
	if err != nil {
		return nil, err
	}
	out := make([]TodayPoints, 0, len(pointsTypeOrder))
	for _, t := range pointsTypeOrder {
		rule, ok := s.rules.Lookup(t)
		if !ok {
			continue
		}
		out = append(out, TodayPoints{
			Type:      t,
			Desc:      rule.Desc,
			MaxPoints: rule.MaxPoints,
			Points:    sums[t],
		})
	}
	return out, nil
}
