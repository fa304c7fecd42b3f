package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	types "github.com/yungbote/neurobridge-ledger/internal/domain"
	"github.com/yungbote/neurobridge-ledger/internal/http/response"
	"github.com/yungbote/neurobridge-ledger/internal/platform/apierr"
	"github.com/yungbote/neurobridge-ledger/internal/services"
)

type LearningRecordHandler struct {
	records services.LearningRecordService
}

func NewLearningRecordHandler(records services.LearningRecordService) *LearningRecordHandler {
	return &LearningRecordHandler{records: records}
}

type addLearningRecordResponse struct {
	Finished bool `json:"finished"`
}

// POST /api/learning-records
func (h *LearningRecordHandler) AddLearningRecord(c *gin.Context) {
	var ev services.ProgressEvent
	if err := c.ShouldBindJSON(&ev); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	ev.SectionType = types.SectionType(strings.ToLower(strings.TrimSpace(string(ev.SectionType))))
	if ev.CommitTime.IsZero() {
		ev.CommitTime = time.Now()
	}

	finished, err := h.records.AddLearningRecord(c.Request.Context(), ev)
	if err != nil {
		response.RespondAPIError(c, apierr.FromError(err, "add_learning_record_failed"))
		return
	}
	response.RespondOK(c, addLearningRecordResponse{Finished: finished})
}

// GET /api/learning-records/course/:courseId
func (h *LearningRecordHandler) QueryLearningRecords(c *gin.Context) {
	courseID, err := uuid.Parse(c.Param("courseId"))
	if err != nil || courseID == uuid.Nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_course_id", err)
		return
	}
	out, err := h.records.QueryLearningRecords(c.Request.Context(), courseID)
	if err != nil {
		response.RespondAPIError(c, apierr.FromError(err, "query_learning_records_failed"))
		return
	}
	response.RespondOK(c, out)
}
