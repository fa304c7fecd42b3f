package realtime

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

const (
	TopicLessonProgress = "learning.lesson_progress"
	TopicLeaderboard    = "learning.leaderboard"
	TopicPoints         = "learning.points"
)

// Message is the envelope carried by every bus implementation.
type Message struct {
	ID         uuid.UUID       `json:"id"`
	Topic      string          `json:"topic"`
	OccurredAt time.Time       `json:"occurred_at"`
	Data       json.RawMessage `json:"data"`
}

func NewMessage(topic string, data any) (Message, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return Message{}, fmt.Errorf("encode %s payload: %w", topic, err)
	}
	return Message{
		ID:         uuid.New(),
		Topic:      topic,
		OccurredAt: time.Now().UTC(),
		Data:       raw,
	}, nil
}

func (m Message) Decode(v any) error {
	if len(m.Data) == 0 {
		return fmt.Errorf("empty %s payload", m.Topic)
	}
	return json.Unmarshal(m.Data, v)
}

// LessonProgressChanged is emitted once per first-time section completion.
type LessonProgressChanged struct {
	UserID               uuid.UUID `json:"user_id"`
	LessonID             uuid.UUID `json:"lesson_id"`
	SectionID            uuid.UUID `json:"section_id"`
	LearnedSectionsDelta int       `json:"learned_sections_delta"`
	Status               string    `json:"status,omitempty"`
}

type LeaderboardDelta struct {
	UserID    uuid.UUID `json:"user_id"`
	PeriodKey string    `json:"period_key"`
	Delta     int       `json:"delta"`
}

type SourceType string

const (
	SourceReply    SourceType = "REPLY"
	SourceSignIn   SourceType = "SIGN_IN"
	SourceLearning SourceType = "LEARNING"
	SourceNote     SourceType = "NOTE"
	SourceComment  SourceType = "COMMENT"
)

// PointAccrualTrigger asks the points ledger to accrue NominalPoints.
type PointAccrualTrigger struct {
	UserID        uuid.UUID  `json:"user_id"`
	SourceType    SourceType `json:"source_type"`
	NominalPoints int        `json:"nominal_points"`
}
