package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/dfarm/internal/domain/models"
	repo "github.com/mamadbah2/dfarm/internal/repository/wordpress"
	"github.com/mamadbah2/dfarm/internal/server/middleware"
	"github.com/mamadbah2/dfarm/internal/service/expenses"
	"github.com/mamadbah2/dfarm/internal/service/herd"
	"github.com/mamadbah2/dfarm/internal/service/reporting"
	wp "github.com/mamadbah2/dfarm/pkg/clients/wordpress"
)

// respondError maps service and gateway failures onto HTTP statuses.
// Gateway 401, 403 and 404 answers pass through; other gateway failures are
// reported as 502.
func respondError(c *gin.Context, logger *zap.Logger, err error) {
	status, message := http.StatusInternalServerError, "internal error"

	var terr *wp.TransportError
	switch {
	case errors.Is(err, herd.ErrInvalidRecord), errors.Is(err, expenses.ErrInvalidRecord):
		status, message = http.StatusBadRequest, err.Error()
	case errors.Is(err, expenses.ErrNotOwner):
		status, message = http.StatusForbidden, "expense belongs to another user"
	case errors.Is(err, reporting.ErrSnapshotsDisabled):
		status, message = http.StatusServiceUnavailable, err.Error()
	case errors.Is(err, wp.ErrMissingToken):
		status, message = http.StatusUnauthorized, "missing bearer token"
	case errors.As(err, &terr):
		switch terr.StatusCode {
		case http.StatusUnauthorized, http.StatusForbidden, http.StatusNotFound:
			status = terr.StatusCode
		default:
			status = http.StatusBadGateway
		}
		message = terr.Message
	case errors.Is(err, repo.ErrUnreadable):
		status, message = http.StatusBadGateway, "unreadable response from content API"
	}

	fields := []zap.Field{
		zap.String("request_id", middleware.RequestID(c)),
		zap.String("path", c.Request.URL.Path),
		zap.Int("status", status),
		zap.Error(err),
	}
	if status >= http.StatusInternalServerError {
		logger.Error("request failed", fields...)
	} else {
		logger.Warn("request rejected", fields...)
	}

	_ = c.Error(err)
	c.AbortWithStatusJSON(status, gin.H{"error": message})
}

func session(c *gin.Context) (models.Session, bool) {
	sess, ok := middleware.SessionFrom(c)
	if !ok {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing session"})
	}
	return sess, ok
}

func pathID(c *gin.Context) (int, bool) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return 0, false
	}
	return id, true
}

func queryInt(c *gin.Context, key string) (int, bool) {
	raw := c.Query(key)
	if raw == "" {
		return 0, true
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid " + key})
		return 0, false
	}
	return v, true
}
