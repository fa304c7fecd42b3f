package learning

import (
	"time"

	"github.com/google/uuid"
)

// Course is the local projection of catalog metadata the progress cascade
// needs. The catalog service owns the source of truth.
type Course struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Name       string    `gorm:"column:name;not null" json:"name"`
	SectionNum int       `gorm:"column:section_num;not null;default:0" json:"section_num"`
	CreatedAt  time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt  time.Time `gorm:"not null" json:"updated_at"`
}

func (Course) TableName() string { return "course_catalog" }
