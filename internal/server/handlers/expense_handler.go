package handlers

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/dfarm/internal/domain/models"
	"github.com/mamadbah2/dfarm/internal/export"
	"github.com/mamadbah2/dfarm/internal/service/expenses"
)

// ExpenseService is the expense behaviour the HTTP layer depends on.
type ExpenseService interface {
	List(ctx context.Context, sess models.Session, f expenses.Filter) ([]models.Expense, error)
	Create(ctx context.Context, sess models.Session, in expenses.Input) (models.Expense, error)
	Update(ctx context.Context, sess models.Session, id int, in expenses.Input) (models.Expense, error)
	Delete(ctx context.Context, sess models.Session, id int) error
	Summary(ctx context.Context, sess models.Session, f expenses.Filter) (expenses.Summary, error)
}

// ExpenseHandler serves the expense endpoints.
type ExpenseHandler struct {
	svc    ExpenseService
	logger *zap.Logger
}

// NewExpenseHandler constructs the expense HTTP adapter.
func NewExpenseHandler(svc ExpenseService, logger *zap.Logger) *ExpenseHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExpenseHandler{svc: svc, logger: logger}
}

func filterFrom(c *gin.Context) expenses.Filter {
	return expenses.Filter{Category: c.Query("category"), Month: c.Query("month")}
}

// List handles GET /api/expenses?category=&month=.
func (h *ExpenseHandler) List(c *gin.Context) {
	sess, ok := session(c)
	if !ok {
		return
	}

	list, err := h.svc.List(c.Request.Context(), sess, filterFrom(c))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

// Summary handles GET /api/expenses/summary?category=&month=.
func (h *ExpenseHandler) Summary(c *gin.Context) {
	sess, ok := session(c)
	if !ok {
		return
	}

	summary, err := h.svc.Summary(c.Request.Context(), sess, filterFrom(c))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

// Create handles POST /api/expenses.
func (h *ExpenseHandler) Create(c *gin.Context) {
	sess, ok := session(c)
	if !ok {
		return
	}

	var in expenses.Input
	if err := c.ShouldBindJSON(&in); err != nil {
		h.logger.Warn("invalid expense payload", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	expense, err := h.svc.Create(c.Request.Context(), sess, in)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, expense)
}

// Update handles PUT /api/expenses/:id.
func (h *ExpenseHandler) Update(c *gin.Context) {
	sess, ok := session(c)
	if !ok {
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}

	var in expenses.Input
	if err := c.ShouldBindJSON(&in); err != nil {
		h.logger.Warn("invalid expense payload", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	expense, err := h.svc.Update(c.Request.Context(), sess, id, in)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, expense)
}

// Delete handles DELETE /api/expenses/:id.
func (h *ExpenseHandler) Delete(c *gin.Context) {
	sess, ok := session(c)
	if !ok {
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}

	if err := h.svc.Delete(c.Request.Context(), sess, id); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Export handles GET /api/expenses/export?category=&month=.
func (h *ExpenseHandler) Export(c *gin.Context) {
	sess, ok := session(c)
	if !ok {
		return
	}

	filter := filterFrom(c)
	list, err := h.svc.List(c.Request.Context(), sess, filter)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	f, err := export.ExpensesWorkbook(list)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	defer func() { _ = f.Close() }()

	buf, err := f.WriteToBuffer()
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	period := filter.Month
	if period == "" {
		period = "all"
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", "expenses-"+period+".xlsx"))
	c.Data(http.StatusOK, export.ContentType, buf.Bytes())
}
