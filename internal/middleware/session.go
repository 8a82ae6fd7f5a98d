package middleware

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/charlesng35/otpdash/internal/auth"
	"github.com/charlesng35/otpdash/internal/models"
	apperrors "github.com/charlesng35/otpdash/pkg/errors"
	"github.com/charlesng35/otpdash/pkg/response"
)

// CtxSessionKey holds the resolved *models.Session for authenticated requests.
const CtxSessionKey = "session"

// SessionResolver maps a cookie token to a live session.
type SessionResolver interface {
	Resolve(ctx context.Context, token string) (*models.Session, error)
}

// SessionGate protects HTML pages: requests without a live session are redirected.
func SessionGate(sessions SessionResolver, redirectTo string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !attachSession(c, sessions) {
			c.Redirect(http.StatusFound, redirectTo)
			c.Abort()
			return
		}
		c.Next()
	}
}

// RequireSession protects JSON endpoints: requests without a live session get 401.
func RequireSession(sessions SessionResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !attachSession(c, sessions) {
			response.Error(c, apperrors.ErrUnauthorized)
			c.Abort()
			return
		}
		c.Next()
	}
}

// SessionFromContext returns the session attached by SessionGate or RequireSession.
func SessionFromContext(c *gin.Context) *models.Session {
	value, ok := c.Get(CtxSessionKey)
	if !ok {
		return nil
	}
	session, _ := value.(*models.Session)
	return session
}

func attachSession(c *gin.Context, sessions SessionResolver) bool {
	token, err := c.Cookie(auth.SessionCookieName)
	if err != nil || token == "" {
		return false
	}

	session, err := sessions.Resolve(c.Request.Context(), token)
	if err != nil {
		return false
	}

	c.Set(CtxSessionKey, session)
	return true
}
