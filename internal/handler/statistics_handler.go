package handler

import (
	"net/http"

	"rental-backend/internal/middleware"
	"rental-backend/internal/service"
	"rental-backend/pkg/response"

	"github.com/gin-gonic/gin"
)

type StatisticsHandler struct {
	statisticsService service.StatisticsService
}

func NewStatisticsHandler(statisticsService service.StatisticsService) *StatisticsHandler {
	return &StatisticsHandler{statisticsService: statisticsService}
}

// RegisterRoutes binds the endpoints to the gin Engine or RouterGroup
func (h *StatisticsHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/statistics/summary", middleware.RequireAuth(), h.GetSummary)
}

// GetSummary handles GET /statistics/summary
// @Summary      Dashboard summary
// @Description  Aggregates the dashboard counters: rentals by status, returns due today, paid and pending revenue, and the top rented items
// @Tags         statistics
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  response.Response{data=model.SummaryResponse}
// @Failure      500  {object}  response.Response
// @Router       /statistics/summary [get]
func (h *StatisticsHandler) GetSummary(c *gin.Context) {
	summary, err := h.statisticsService.GetSummary(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, summary))
}
