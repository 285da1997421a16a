package middleware

import (
	"net/http"
	"strings"

	"consultancy_crm_backend/internal/services"
	"consultancy_crm_backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

// SessionAuth gates protected routes on a live session. API-shaped paths get a
// 401 JSON envelope instructing re-login; page-shaped paths redirect to /login.
func SessionAuth(authService services.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := c.Cookie(services.SessionCookieName)
		if err == nil {
			err = authService.Authenticate(token)
		}
		if err != nil {
			if strings.HasPrefix(c.Request.URL.Path, "/api/") {
				c.JSON(http.StatusUnauthorized, utils.FailureResponse("Session expired. Please login again."))
				c.Abort()
				return
			}
			c.Redirect(http.StatusFound, "/login")
			c.Abort()
			return
		}
		c.Next()
	}
}

// RedirectIfAuthenticated sends an already-authenticated operator from the
// login page (or the root) straight to the dashboard, preventing re-login loops.
func RedirectIfAuthenticated(authService services.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := c.Cookie(services.SessionCookieName)
		if err == nil && authService.Authenticate(token) == nil {
			c.Redirect(http.StatusFound, "/dashboard")
			c.Abort()
			return
		}
		c.Next()
	}
}
