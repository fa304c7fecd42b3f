package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/yungbote/neurobridge-ledger/internal/http/response"
	"github.com/yungbote/neurobridge-ledger/internal/platform/apierr"
	"github.com/yungbote/neurobridge-ledger/internal/services"
)

type SignRecordHandler struct {
	signs services.SignRecordService
}

func NewSignRecordHandler(signs services.SignRecordService) *SignRecordHandler {
	return &SignRecordHandler{signs: signs}
}

// POST /api/sign-records
func (h *SignRecordHandler) AddSignRecord(c *gin.Context) {
	res, err := h.signs.AddSignRecord(c.Request.Context())
	if err != nil {
		response.RespondAPIError(c, apierr.FromError(err, "sign_in_failed"))
		return
	}
	response.RespondOK(c, res)
}

// GET /api/sign-records
func (h *SignRecordHandler) QuerySignRecords(c *gin.Context) {
	bits, err := h.signs.QuerySignRecords(c.Request.Context())
	if err != nil {
		response.RespondAPIError(c, apierr.FromError(err, "query_sign_records_failed"))
		return
	}
	// []byte would marshal as base64.
	days := make([]int, len(bits))
	for i, b := range bits {
		days[i] = int(b)
	}
	response.RespondOK(c, gin.H{"days": days})
}
