package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/dfarm/internal/domain/models"
	wp "github.com/mamadbah2/dfarm/pkg/clients/wordpress"
)

const sessionKey = "dfarm.session"

// Auth resolves the bearer token into a session through the content API and
// stores it on the context. Requests without a usable token are rejected.
func Auth(auth wp.Authenticator, logger *zap.Logger) gin.HandlerFunc {
	if logger == nil {
		logger = zap.NewNop()
	}

	return func(c *gin.Context) {
		token, ok := bearerToken(c.GetHeader("Authorization"))
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing bearer token"})
			return
		}

		user, err := auth.CurrentUser(c.Request.Context(), token)
		if err != nil {
			status := http.StatusUnauthorized
			var terr *wp.TransportError
			if errors.As(err, &terr) && terr.StatusCode >= http.StatusInternalServerError {
				status = http.StatusBadGateway
			}
			logger.Warn("session lookup failed",
				zap.String("request_id", RequestID(c)),
				zap.Int("status", status),
				zap.Error(err))
			c.AbortWithStatusJSON(status, gin.H{"error": "unable to authenticate"})
			return
		}

		c.Set(sessionKey, models.Session{
			Token:  token,
			UserID: user.ID,
			Name:   user.Name,
			Email:  user.Email,
		})
		c.Next()
	}
}

// SessionFrom returns the session stored by Auth.
func SessionFrom(c *gin.Context) (models.Session, bool) {
	v, ok := c.Get(sessionKey)
	if !ok {
		return models.Session{}, false
	}
	sess, ok := v.(models.Session)
	return sess, ok
}

// WithSession stores sess on the context where SessionFrom finds it, as if
// Auth had resolved it.
func WithSession(c *gin.Context, sess models.Session) {
	c.Set(sessionKey, sess)
}

func bearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(strings.TrimSpace(header), " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}
