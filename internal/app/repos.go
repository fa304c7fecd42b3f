package app

import (
	"gorm.io/gorm"

	"github.com/yungbote/neurobridge-ledger/internal/data/repos"
	"github.com/yungbote/neurobridge-ledger/internal/pkg/logger"
)

type Repos struct {
	Course         repos.CourseRepo
	LearningLesson repos.LearningLessonRepo
	LearningRecord repos.LearningRecordRepo
	PointsRecord   repos.PointsRecordRepo
	PointsBoard    repos.PointsBoardRepo
}

func wireRepos(db *gorm.DB, log *logger.Logger) Repos {
	log.Info("Wiring repos...")
	return Repos{
		Course:         repos.NewCourseRepo(db, log),
		LearningLesson: repos.NewLearningLessonRepo(db, log),
		LearningRecord: repos.NewLearningRecordRepo(db, log),
		PointsRecord:   repos.NewPointsRecordRepo(db, log),
		PointsBoard:    repos.NewPointsBoardRepo(db, log),
	}
}
