package handlers

import (
	"context"

	"github.com/gin-gonic/gin"

	iauth "github.com/charlesng35/otpdash/internal/auth"
	"github.com/charlesng35/otpdash/internal/middleware"
)

// maxUserAgentLength bounds the client-controlled header stored on session rows.
const maxUserAgentLength = 512

// requestContext returns the context services should run under. Handlers invoked outside
// an HTTP request (nil context or request) get a background context.
func requestContext(c *gin.Context) context.Context {
	if c == nil || c.Request == nil {
		return context.Background()
	}
	return c.Request.Context()
}

// sessionOwner names the authenticated session behind the request, or "" when the request
// did not pass through RequireSession.
func sessionOwner(c *gin.Context) string {
	if session := middleware.SessionFromContext(c); session != nil {
		return session.ID
	}
	return ""
}

// sessionMetadata captures the client details recorded when a session is created.
func sessionMetadata(c *gin.Context) iauth.SessionMetadata {
	if c == nil || c.Request == nil {
		return iauth.SessionMetadata{}
	}
	agent := c.Request.UserAgent()
	if len(agent) > maxUserAgentLength {
		agent = agent[:maxUserAgentLength]
	}
	return iauth.SessionMetadata{
		IPAddress: c.ClientIP(),
		UserAgent: agent,
	}
}
