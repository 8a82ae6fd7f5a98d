package api

import (
	"github.com/gin-gonic/gin"

	iauth "github.com/charlesng35/otpdash/internal/auth"
	"github.com/charlesng35/otpdash/internal/handlers"
	"github.com/charlesng35/otpdash/internal/middleware"
)

type authRouteDeps struct {
	OTPHandler     *handlers.OTPHandler
	SessionHandler *handlers.SessionHandler
	Sessions       *iauth.SessionService
	Limiter        gin.HandlerFunc
}

func registerAuthRoutes(engine *gin.Engine, deps authRouteDeps) {
	public := engine.Group("/api/auth")
	public.Use(deps.Limiter)
	{
		public.POST("/send-otp", deps.OTPHandler.Send)
		public.POST("/verify-otp", deps.OTPHandler.Verify)
	}

	authed := engine.Group("/api/auth")
	authed.Use(middleware.RequireSession(deps.Sessions))
	{
		authed.GET("/me", deps.SessionHandler.Me)
		authed.POST("/logout", deps.SessionHandler.Logout)
	}
}
