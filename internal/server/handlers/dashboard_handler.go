package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/dfarm/internal/domain/models"
	"github.com/mamadbah2/dfarm/internal/service/reporting"
)

// ReportingService is the reporting behaviour the HTTP layer depends on.
type ReportingService interface {
	Dashboard(ctx context.Context, sess models.Session) (reporting.Dashboard, error)
	PublishDailyReport(ctx context.Context, sess models.Session, day time.Time) (models.DailyReport, error)
	RecentReports(ctx context.Context, limit int) ([]models.DailyReport, error)
}

// DashboardHandler serves the overview and report endpoints.
type DashboardHandler struct {
	svc    ReportingService
	logger *zap.Logger
}

// NewDashboardHandler constructs the reporting HTTP adapter.
func NewDashboardHandler(svc ReportingService, logger *zap.Logger) *DashboardHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DashboardHandler{svc: svc, logger: logger}
}

// Dashboard handles GET /api/dashboard.
func (h *DashboardHandler) Dashboard(c *gin.Context) {
	sess, ok := session(c)
	if !ok {
		return
	}

	d, err := h.svc.Dashboard(c.Request.Context(), sess)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, d)
}

// RecentReports handles GET /api/reports?limit=.
func (h *DashboardHandler) RecentReports(c *gin.Context) {
	limit, ok := queryInt(c, "limit")
	if !ok {
		return
	}

	reports, err := h.svc.RecentReports(c.Request.Context(), limit)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, reports)
}

// PublishDailyReport handles POST /api/reports/daily?date=YYYY-MM-DD. The
// date defaults to today.
func (h *DashboardHandler) PublishDailyReport(c *gin.Context) {
	sess, ok := session(c)
	if !ok {
		return
	}

	day := time.Now()
	if raw := c.Query("date"); raw != "" {
		parsed, err := time.Parse(models.ISODateLayout, raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "date must be YYYY-MM-DD"})
			return
		}
		day = parsed
	}

	report, err := h.svc.PublishDailyReport(c.Request.Context(), sess, day)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, report)
}
