package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"

	perrors "github.com/yungbote/neurobridge-ledger/internal/pkg/errors"
	"github.com/yungbote/neurobridge-ledger/internal/pkg/ctxutil"
)

var tracer = otel.Tracer("github.com/yungbote/neurobridge-ledger/internal/services")

type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

func SystemClock() Clock { return systemClock{} }

func clockOrSystem(c Clock) Clock {
	if c == nil {
		return SystemClock()
	}
	return c
}

const seasonLayout = "200601"

// SeasonOf is the yyyyMM period key for t.
func SeasonOf(t time.Time) string { return t.Format(seasonLayout) }

func PreviousSeason(t time.Time) string {
	first := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
	return SeasonOf(first.AddDate(0, -1, 0))
}

func ParseSeason(raw string) (string, error) {
	if _, err := time.Parse(seasonLayout, raw); err != nil {
		return "", fmt.Errorf("%w: season %q", perrors.ErrInvalidArgument, raw)
	}
	return raw, nil
}

// DayWindow returns [midnight, next midnight) in t's location.
func DayWindow(t time.Time) (time.Time, time.Time) {
	start := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	return start, start.AddDate(0, 0, 1)
}

func requireUserID(ctx context.Context) (uuid.UUID, error) {
	rd := ctxutil.GetRequestData(ctx)
	if rd == nil || rd.UserID == uuid.Nil {
		return uuid.Nil, perrors.ErrUnauthorized
	}
	return rd.UserID, nil
}
