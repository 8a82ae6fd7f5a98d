package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	iauth "github.com/charlesng35/otpdash/internal/auth"
	"github.com/charlesng35/otpdash/internal/middleware"
	appErrors "github.com/charlesng35/otpdash/pkg/errors"
	"github.com/charlesng35/otpdash/pkg/response"
)

// SessionHandler manages the authenticated session (logout/me).
type SessionHandler struct {
	sessions *iauth.SessionService
	cookie   iauth.CookieOptions
}

func NewSessionHandler(sessions *iauth.SessionService, cookie iauth.CookieOptions) (*SessionHandler, error) {
	if sessions == nil {
		return nil, errors.New("session handler: session service is required")
	}
	return &SessionHandler{sessions: sessions, cookie: cookie}, nil
}

// POST /api/auth/logout
func (h *SessionHandler) Logout(c *gin.Context) {
	session := middleware.SessionFromContext(c)
	if session == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	if err := h.sessions.RevokeSession(requestContext(c), session.ID); err != nil {
		_ = c.Error(err)
		response.Error(c, appErrors.NewInternal("Failed to log out", err))
		return
	}

	http.SetCookie(c.Writer, iauth.ClearSessionCookie(h.cookie))
	response.Message(c, http.StatusOK, "Logged out successfully")
}

// GET /api/auth/me
func (h *SessionHandler) Me(c *gin.Context) {
	session := middleware.SessionFromContext(c)
	if session == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"email":      session.Email,
		"expires_at": session.ExpiresAt,
	})
}
