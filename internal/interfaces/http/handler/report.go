package handler

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/noman2111ni/Retail-Managment-System/internal/application/report"
)

// Reports is the part of report.Service the gateway uses.
type Reports interface {
	Weekly(ctx context.Context) ([]report.WeeklyPoint, error)
	Categories(ctx context.Context) ([]report.CategoryPoint, error)
	Summary(ctx context.Context) (report.Summary, error)
}

// ReportHandler serves the dashboard charts
type ReportHandler struct {
	BaseHandler
	reports Reports
}

// NewReportHandler creates a new ReportHandler
func NewReportHandler(reports Reports) *ReportHandler {
	return &ReportHandler{reports: reports}
}

// RegisterRoutes implements router.RouteRegistrar
func (h *ReportHandler) RegisterRoutes(rg *gin.RouterGroup) {
	g := rg.Group("/reports")
	g.GET("/weekly", h.Weekly)
	g.GET("/categories", h.Categories)
	g.GET("/summary", h.Summary)
}

// Weekly returns sales and purchases per weekday
func (h *ReportHandler) Weekly(c *gin.Context) {
	points, err := h.reports.Weekly(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, points)
}

// Categories returns sales and purchases per category
func (h *ReportHandler) Categories(c *gin.Context) {
	points, err := h.reports.Categories(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, points)
}

// Summary returns the headline figures
func (h *ReportHandler) Summary(c *gin.Context) {
	summary, err := h.reports.Summary(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, summary)
}
