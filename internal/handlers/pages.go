package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/charlesng35/otpdash/internal/catalog"
	"github.com/charlesng35/otpdash/internal/middleware"
)

// AuthPage renders the email/code entry page.
func AuthPage(c *gin.Context) {
	c.HTML(http.StatusOK, "auth.html", gin.H{
		"Title": "Sign in",
	})
}

// DashboardPage renders the dashboard shell; data is loaded from /api/dashboard/products.
func DashboardPage(c *gin.Context) {
	email := ""
	if session := middleware.SessionFromContext(c); session != nil {
		email = session.Email
	}
	c.HTML(http.StatusOK, "dashboard.html", gin.H{
		"Title":               "Dashboard",
		"Email":               email,
		"ItemsPerPageOptions": catalog.ItemsPerPageOptions,
		"DefaultItemsPerPage": catalog.DefaultItemsPerPage,
	})
}
