package points

import (
	"time"

	"github.com/google/uuid"
)

// PointsRecord is one append-only ledger entry. Rows are never updated.
type PointsRecord struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;index:idx_points_record_user_type_time,priority:1" json:"user_id"`
	Type      Type      `gorm:"column:type;type:varchar(16);not null;index:idx_points_record_user_type_time,priority:2" json:"type"`
	Points    int       `gorm:"column:points;not null" json:"points"`
	CreatedAt time.Time `gorm:"not null;index:idx_points_record_user_type_time,priority:3" json:"created_at"`
}

func (PointsRecord) TableName() string { return "points_record" }

// PointsBoard is a frozen season ranking copied out of the live board.
type PointsBoard struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Season    string    `gorm:"column:season;type:varchar(8);not null;uniqueIndex:idx_points_board_season_user,priority:1;index:idx_points_board_season_rank,priority:1" json:"season"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_points_board_season_user,priority:2" json:"user_id"`
	Rank      int       `gorm:"column:rank;not null;index:idx_points_board_season_rank,priority:2" json:"rank"`
	Points    int       `gorm:"column:points;not null" json:"points"`
	CreatedAt time.Time `gorm:"not null" json:"created_at"`
}

func (PointsBoard) TableName() string { return "points_board" }
