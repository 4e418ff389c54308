package handler

import (
	"net/http"

	"rental-backend/internal/middleware"
	"rental-backend/internal/service"
	"rental-backend/pkg/pagination"
	"rental-backend/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type ReportHandler struct {
	reportService service.ReportService
}

func NewReportHandler(reportService service.ReportService) *ReportHandler {
	return &ReportHandler{reportService: reportService}
}

// RegisterRoutes binds the endpoints to the gin Engine or RouterGroup
func (h *ReportHandler) RegisterRoutes(router *gin.RouterGroup) {
	reports := router.Group("/reports")
	{
		reports.GET("", middleware.RequireAuth(), h.ListReports)
		reports.POST("", middleware.RequireAuth(), h.CreateReport)
		reports.DELETE("/:id", middleware.RequireAdmin(), h.DeleteReport)
	}
}

// ListReports handles GET /reports
// @Summary      List reports
// @Description  Retrieves paginated return/loss/sale records, newest first, optionally filtered by type
// @Tags         reports
// @Produce      json
// @Security     BearerAuth
// @Param        type   query     string  false  "Report type filter (returned, missing or sold)"
// @Param        page   query     int     false  "Page number (default 1)"
// @Param        limit  query     int     false  "Number of items per page (default 20)"
// @Success      200    {object}  response.Response{data=object}
// @Failure      400    {object}  response.Response
// @Router       /reports [get]
func (h *ReportHandler) ListReports(c *gin.Context) {
	params := pagination.Parse(c)

	reports, total, err := h.reportService.List(c.Request.Context(), c.Query("type"), params.Page, params.Limit)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{
		"reports": reports,
		"total":   total,
		"page":    params.Page,
		"limit":   params.Limit,
	}))
}

// CreateReport handles POST /reports
// @Summary      Create report
// @Description  Records a manual incident (returned, missing or sold) against an existing rental row
// @Tags         reports
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request  body      service.CreateReportRequest  true  "Report payload"
// @Success      201      {object}  response.Response{data=model.Report}
// @Failure      400      {object}  response.Response
// @Router       /reports [post]
func (h *ReportHandler) CreateReport(c *gin.Context) {
	var req service.CreateReportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request body: "+err.Error()))
		return
	}

	report, err := h.reportService.Create(c.Request.Context(), c.GetString("userID"), req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, report))
}

// DeleteReport handles DELETE /reports/:id (admin only)
// @Summary      Delete report
// @Description  Removes one report; deleting the last report referencing a rental re-enables that rental's hard delete
// @Tags         reports
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Report ID"
// @Success      200  {object}  response.Response
// @Failure      400  {object}  response.Response
// @Router       /reports/{id} [delete]
func (h *ReportHandler) DeleteReport(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid report ID"))
		return
	}

	if err := h.reportService.Delete(c.Request.Context(), c.GetString("userID"), id); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, "Report deleted"))
}
