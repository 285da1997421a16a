package handlers

import (
	"errors"
	"net/http"

	"consultancy_crm_backend/internal/services"
	"consultancy_crm_backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

// LoginRequest is the login form payload.
type LoginRequest struct {
	Password string `json:"password"`
}

// AuthHandler serves the login/logout endpoints and the server-rendered pages.
type AuthHandler struct {
	authService   services.AuthService
	secureCookies bool
}

// NewAuthHandler creates a new AuthHandler. secureCookies should be true in
// production so the session cookie is only sent over HTTPS.
func NewAuthHandler(as services.AuthService, secureCookies bool) *AuthHandler {
	return &AuthHandler{authService: as, secureCookies: secureCookies}
}

// Login verifies the system password and opens a session.
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusOK, utils.FailureResponse("Password is required"))
		return
	}

	token, err := h.authService.Login(req.Password)
	if err != nil {
		if errors.Is(err, services.ErrPasswordRequired) {
			c.JSON(http.StatusOK, utils.FailureResponse("Password is required"))
			return
		}
		if errors.Is(err, services.ErrInvalidPassword) {
			c.JSON(http.StatusOK, utils.FailureResponse("Invalid password"))
			return
		}
		utils.LogError(err, "Login: failed to open session")
		c.JSON(http.StatusInternalServerError, utils.FailureResponse("Session error. Please try again."))
		return
	}

	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(services.SessionCookieName, token, int(services.SessionTTL.Seconds()), "/", "", h.secureCookies, true)
	c.JSON(http.StatusOK, utils.SuccessResponse(nil, "Login successful"))
}

// Logout destroys the session, clears the cookie, and redirects to the login page.
func (h *AuthHandler) Logout(c *gin.Context) {
	if token, err := c.Cookie(services.SessionCookieName); err == nil {
		h.authService.Logout(token)
	}
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(services.SessionCookieName, "", -1, "/", "", h.secureCookies, true)
	c.Redirect(http.StatusFound, "/login")
}

// Home redirects the root path to the login page; the RedirectIfAuthenticated
// middleware has already sent authenticated operators to the dashboard.
func (h *AuthHandler) Home(c *gin.Context) {
	c.Redirect(http.StatusFound, "/login")
}

// LoginPage renders the login shell.
func (h *AuthHandler) LoginPage(c *gin.Context) {
	c.HTML(http.StatusOK, "login.html", gin.H{"title": "Login - Client Records"})
}

// Dashboard renders the admin dashboard shell.
func (h *AuthHandler) Dashboard(c *gin.Context) {
	c.HTML(http.StatusOK, "dashboard.html", gin.H{"title": "Dashboard - Client Records"})
}
