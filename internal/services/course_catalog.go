package services

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/yungbote/neurobridge-ledger/internal/data/repos"
	types "github.com/yungbote/neurobridge-ledger/internal/domain"
	"github.com/yungbote/neurobridge-ledger/internal/pkg/dbctx"
	perrors "github.com/yungbote/neurobridge-ledger/internal/pkg/errors"
	"github.com/yungbote/neurobridge-ledger/internal/pkg/logger"
)

// CourseCatalog answers course metadata questions owned by the catalog
// service. This deployment reads the replicated course_catalog table.
type CourseCatalog interface {
	SectionCount(dbc dbctx.Context, courseID uuid.UUID) (int, error)
	Upsert(dbc dbctx.Context, course *types.Course) error
}

type courseCatalog struct {
	log     *logger.Logger
	courses repos.CourseRepo
}

func NewCourseCatalog(baseLog *logger.Logger, courses repos.CourseRepo) CourseCatalog {
	return &courseCatalog{log: baseLog.With("service", "CourseCatalog"), courses: courses}
}

func (c *courseCatalog) SectionCount(dbc dbctx.Context, courseID uuid.UUID) (int, error) {
	course, err := c.courses.GetByID(dbc, courseID)
	if err != nil {
		return 0, err
	}
	if course == nil {
		return 0, fmt.Errorf("%w: course %s", perrors.ErrNotFound, courseID)
	}
	return course.SectionNum, nil
}

func (c *courseCatalog) Upsert(dbc dbctx.Context, course *types.Course) error {
	if course == nil || course.SectionNum < 0 {
		return perrors.ErrInvalidArgument
	}
	return c.courses.Upsert(dbc, course)
}
