package domain

import (
	"github.com/yungbote/neurobridge-ledger/internal/domain/learning"
	"github.com/yungbote/neurobridge-ledger/internal/domain/points"
)

const (
	SectionTypeVideo = learning.SectionTypeVideo
	SectionTypeExam  = learning.SectionTypeExam

	LessonStatusNotStarted = learning.LessonStatusNotStarted
	LessonStatusLearning   = learning.LessonStatusLearning
	LessonStatusFinished   = learning.LessonStatusFinished

	PointsTypeLearning = points.TypeLearning
	PointsTypeSign     = points.TypeSign
	PointsTypeQA       = points.TypeQA
	PointsTypeNote     = points.TypeNote
	PointsTypeComment  = points.TypeComment
)

type SectionType = learning.SectionType
type LessonStatus = learning.LessonStatus
type LearningRecord = learning.LearningRecord
type LearningLesson = learning.LearningLesson
type Course = learning.Course

type PointsType = points.Type
type PointsRule = points.Rule
type PointsRules = points.Rules
type PointsRecord = points.PointsRecord
type PointsBoard = points.PointsBoard

func DefaultPointsRules() PointsRules { return points.DefaultRules() }

func LoadPointsRules(path string) (PointsRules, error) { return points.LoadRules(path) }
