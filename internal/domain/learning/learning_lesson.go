package learning

import (
	"time"

	"github.com/google/uuid"
)

type LessonStatus string

const (
	LessonStatusNotStarted LessonStatus = "not_started"
	LessonStatusLearning   LessonStatus = "learning"
	LessonStatusFinished   LessonStatus = "finished"
)

// LearningLesson is a user's enrollment in one course ("lesson" in the
// progress vocabulary). LearnedSections only ever grows.
type LearningLesson struct {
	ID              uuid.UUID    `gorm:"type:uuid;primaryKey" json:"id"`
	UserID          uuid.UUID    `gorm:"type:uuid;not null;uniqueIndex:idx_learning_lesson_user_course,priority:1" json:"user_id"`
	CourseID        uuid.UUID    `gorm:"type:uuid;not null;uniqueIndex:idx_learning_lesson_user_course,priority:2" json:"course_id"`
	Status          LessonStatus `gorm:"column:status;type:varchar(16);not null;default:'not_started'" json:"status"`
	LearnedSections int          `gorm:"column:learned_sections;not null;default:0" json:"learned_sections"`
	LatestSectionID *uuid.UUID   `gorm:"type:uuid;column:latest_section_id" json:"latest_section_id,omitempty"`
	LatestLearnTime *time.Time   `gorm:"column:latest_learn_time" json:"latest_learn_time,omitempty"`
	CreatedAt       time.Time    `gorm:"not null" json:"created_at"`
	UpdatedAt       time.Time    `gorm:"not null" json:"updated_at"`
}

func (LearningLesson) TableName() string { return "learning_lesson" }
