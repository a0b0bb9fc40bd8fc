package handlers

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/dfarm/internal/domain/models"
	"github.com/mamadbah2/dfarm/internal/export"
	"github.com/mamadbah2/dfarm/internal/service/herd"
)

// HerdService is the herd behaviour the HTTP layer depends on.
type HerdService interface {
	List(ctx context.Context, sess models.Session, q herd.AnimalQuery) ([]models.Animal, error)
	Latest(ctx context.Context, sess models.Session, limit int) ([]models.Animal, error)
	Profile(ctx context.Context, sess models.Session, id int) (herd.Profile, error)
	Create(ctx context.Context, sess models.Session, in herd.AnimalInput) (models.Animal, error)
	Update(ctx context.Context, sess models.Session, id int, in herd.AnimalInput) (models.Animal, error)
	Delete(ctx context.Context, sess models.Session, id int) error
	AddMilkRecord(ctx context.Context, sess models.Session, id int, in herd.MilkInput) (models.Animal, error)
	AddVaccination(ctx context.Context, sess models.Session, id int, in herd.VaccinationInput) (models.Animal, error)
	MilkHistory(ctx context.Context, sess models.Session, id int) (herd.MilkHistory, error)
}

// AnimalHandler serves the herd endpoints.
type AnimalHandler struct {
	svc    HerdService
	logger *zap.Logger
}

// NewAnimalHandler constructs the herd HTTP adapter.
func NewAnimalHandler(svc HerdService, logger *zap.Logger) *AnimalHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AnimalHandler{svc: svc, logger: logger}
}

// List handles GET /api/animals?filter=&query=&limit=.
func (h *AnimalHandler) List(c *gin.Context) {
	sess, ok := session(c)
	if !ok {
		return
	}
	limit, ok := queryInt(c, "limit")
	if !ok {
		return
	}

	animals, err := h.svc.List(c.Request.Context(), sess, herd.AnimalQuery{
		Filter: c.Query("filter"),
		Query:  c.Query("query"),
		Limit:  limit,
	})
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, animals)
}

// Latest handles GET /api/animals/latest?limit=.
func (h *AnimalHandler) Latest(c *gin.Context) {
	sess, ok := session(c)
	if !ok {
		return
	}
	limit, ok := queryInt(c, "limit")
	if !ok {
		return
	}

	animals, err := h.svc.Latest(c.Request.Context(), sess, limit)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, animals)
}

// Get handles GET /api/animals/:id.
func (h *AnimalHandler) Get(c *gin.Context) {
	sess, ok := session(c)
	if !ok {
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}

	profile, err := h.svc.Profile(c.Request.Context(), sess, id)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, profile)
}

// Create handles POST /api/animals.
func (h *AnimalHandler) Create(c *gin.Context) {
	sess, ok := session(c)
	if !ok {
		return
	}

	var in herd.AnimalInput
	if err := c.ShouldBindJSON(&in); err != nil {
		h.logger.Warn("invalid animal payload", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	animal, err := h.svc.Create(c.Request.Context(), sess, in)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, animal)
}

// Update handles PUT /api/animals/:id.
func (h *AnimalHandler) Update(c *gin.Context) {
	sess, ok := session(c)
	if !ok {
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}

	var in herd.AnimalInput
	if err := c.ShouldBindJSON(&in); err != nil {
		h.logger.Warn("invalid animal payload", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	animal, err := h.svc.Update(c.Request.Context(), sess, id, in)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, animal)
}

// Delete handles DELETE /api/animals/:id.
func (h *AnimalHandler) Delete(c *gin.Context) {
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

// MilkHistory handles GET /api/animals/:id/milk.
func (h *AnimalHandler) MilkHistory(c *gin.Context) {
	sess, ok := session(c)
	if !ok {
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}

	history, err := h.svc.MilkHistory(c.Request.Context(), sess, id)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, history)
}

// AddMilkRecord handles POST /api/animals/:id/milk.
func (h *AnimalHandler) AddMilkRecord(c *gin.Context) {
	sess, ok := session(c)
	if !ok {
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}

	var in herd.MilkInput
	if err := c.ShouldBindJSON(&in); err != nil {
		h.logger.Warn("invalid milk payload", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	animal, err := h.svc.AddMilkRecord(c.Request.Context(), sess, id, in)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, animal)
}

// AddVaccination handles POST /api/animals/:id/vaccinations.
func (h *AnimalHandler) AddVaccination(c *gin.Context) {
	sess, ok := session(c)
	if !ok {
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}

	var in herd.VaccinationInput
	if err := c.ShouldBindJSON(&in); err != nil {
		h.logger.Warn("invalid vaccination payload", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	animal, err := h.svc.AddVaccination(c.Request.Context(), sess, id, in)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, animal)
}

// ExportMilk handles GET /api/milk/export?filter=.
func (h *AnimalHandler) ExportMilk(c *gin.Context) {
	sess, ok := session(c)
	if !ok {
		return
	}

	animals, err := h.svc.List(c.Request.Context(), sess, herd.AnimalQuery{Filter: c.Query("filter")})
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	f, err := export.MilkWorkbook(animals)
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

	filename := fmt.Sprintf("milk-records-%s.xlsx", time.Now().Format("2006-01-02"))
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, export.ContentType, buf.Bytes())
}
