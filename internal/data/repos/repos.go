package repos

import (
	"gorm.io/gorm"

	"github.com/yungbote/neurobridge-ledger/internal/data/repos/learning"
	"github.com/yungbote/neurobridge-ledger/internal/data/repos/points"
	"github.com/yungbote/neurobridge-ledger/internal/pkg/logger"
)

type CourseRepo = learning.CourseRepo
type LearningLessonRepo = learning.LearningLessonRepo
type LearningRecordRepo = learning.LearningRecordRepo

type PointsRecordRepo = points.PointsRecordRepo
type PointsBoardRepo = points.PointsBoardRepo

func NewCourseRepo(db *gorm.DB, baseLog *logger.Logger) CourseRepo {
	return learning.NewCourseRepo(db, baseLog)
}
func NewLearningLessonRepo(db *gorm.DB, baseLog *logger.Logger) LearningLessonRepo {
	return learning.NewLearningLessonRepo(db, baseLog)
}
func NewLearningRecordRepo(db *gorm.DB, baseLog *logger.Logger) LearningRecordRepo {
	return learning.NewLearningRecordRepo(db, baseLog)
}

func NewPointsRecordRepo(db *gorm.DB, baseLog *logger.Logger) PointsRecordRepo {
	return points.NewPointsRecordRepo(db, baseLog)
}
func NewPointsBoardRepo(db *gorm.DB, baseLog *logger.Logger) PointsBoardRepo {
	return points.NewPointsBoardRepo(db, baseLog)
}
