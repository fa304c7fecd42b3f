package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/neurobridge-ledger/internal/http/response"
	"github.com/yungbote/neurobridge-ledger/internal/platform/apierr"
	"github.com/yungbote/neurobridge-ledger/internal/services"
)

type PointsHandler struct {
	points services.PointsService
	boards services.PointsBoardService
}

func NewPointsHandler(points services.PointsService, boards services.PointsBoardService) *PointsHandler {
	return &PointsHandler{points: points, boards: boards}
}

// GET /api/points/today
func (h *PointsHandler) QueryMyPointsToday(c *gin.Context) {
	out, err := h.points.QueryMyPointsToday(c.Request.Context())
	if err != nil {
		response.RespondAPIError(c, apierr.FromError(err, "query_points_failed"))
		return
	}
	response.RespondOK(c, gin.H{"points": out})
}

// GET /api/boards?season=&pageNo=&pageSize=
func (h *PointsHandler) QueryBoard(c *gin.Context) {
	pageNo, err := queryInt(c, "pageNo")
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_page_no", err)
		return
	}
	pageSize, err := queryInt(c, "pageSize")
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_page_size", err)
		return
	}
	view, err := h.boards.QueryBoard(c.Request.Context(), services.BoardQuery{
		Season:   c.Query("season"),
		PageNo:   pageNo,
		PageSize: pageSize,
	})
	if err != nil {
		response.RespondAPIError(c, apierr.FromError(err, "query_board_failed"))
		return
	}
	response.RespondOK(c, view)
}

// queryInt returns 0 for an absent parameter so the service applies defaults.
func queryInt(c *gin.Context, key string) (int, error) {
	raw := c.Query(key)
	if raw == "" {
		return 0, nil
	}
	return strconv.Atoi(raw)
}
