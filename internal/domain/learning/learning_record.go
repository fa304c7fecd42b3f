package learning

import (
	"time"

	"github.com/google/uuid"
)

type SectionType string

const (
	SectionTypeVideo SectionType = "video"
	SectionTypeExam  SectionType = "exam"
)

func (t SectionType) Valid() bool {
	return t == SectionTypeVideo || t == SectionTypeExam
}

// LearningRecord is the durable progress row for one section of one lesson.
// (lesson_id, section_id) is unique.
type LearningRecord struct {
	ID         uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	UserID     uuid.UUID  `gorm:"type:uuid;not null;index" json:"user_id"`
	LessonID   uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:idx_learning_record_lesson_section,priority:1" json:"lesson_id"`
	SectionID  uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:idx_learning_record_lesson_section,priority:2" json:"section_id"`
	Moment     int        `gorm:"column:moment;not null;default:0" json:"moment"`
	Finished   bool       `gorm:"column:finished;not null;default:false" json:"finished"`
	FinishTime *time.Time `gorm:"column:finish_time" json:"finish_time,omitempty"`
	CreatedAt  time.Time  `gorm:"not null" json:"created_at"`
	UpdatedAt  time.Time  `gorm:"not null" json:"updated_at"`
}

func (LearningRecord) TableName() string { return "learning_record" }
