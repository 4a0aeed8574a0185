package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ignatzorin/civic-reports-backend/internal/service"
)

// StatsHandler отдаёт агрегированную статистику по заявкам.
type StatsHandler struct {
	svc *service.StatsService
}

// NewStatsHandler создаёт хэндлер статистики.
func NewStatsHandler(svc *service.StatsService) *StatsHandler {
	return &StatsHandler{svc: svc}
}

// Get обрабатывает GET /api/stats.
func (h *StatsHandler) Get(c *gin.Context) {
	stats, err := h.svc.Compute(c.Request.Context())
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, stats)
}
