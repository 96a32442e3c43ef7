package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/confhub/proposal-service/internal/auth"
	"github.com/confhub/proposal-service/internal/services"
	"github.com/confhub/proposal-service/internal/utils"
)

type AuthHandler struct {
	BaseHandler
	authService services.AuthService
	sessions    *auth.SessionStore
	cookieName  string
	secure      bool
}

func NewAuthHandler(authService services.AuthService, sessions *auth.SessionStore, cookieName string, secureCookies bool, logger utils.Logger) *AuthHandler {
	return &AuthHandler{
		BaseHandler: NewBaseHandler(logger),
		authService: authService,
		sessions:    sessions,
		cookieName:  cookieName,
		secure:      secureCookies,
	}
}

// Register creates an account and opens a session
// @Summary Register a new account
// @Description Register as a speaker or reviewer and receive a session cookie
// @Tags auth
// @Accept json
// @Produce json
// @Param request body services.RegisterRequest true "Registration payload"
// @Success 201 {object} SuccessResponse "Created user"
// @Failure 422 {object} ErrorResponse "Validation failed"
// @Router /register [post]
func (h *AuthHandler) Register(c *gin.Context) {
	var req services.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorEnvelope("Invalid request body", nil))
		return
	}

	h.LogRequest(c, "Registering user", "email", req.Email, "role", req.Role)

	user, err := h.authService.Register(c.Request.Context(), &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	if !h.openSession(c, user.ID) {
		return
	}

	c.JSON(http.StatusCreated, successEnvelope("Registered successfully", gin.H{"user": user}))
}

// Login authenticates credentials and opens a session
// @Summary Log in
// @Description Exchange email and password for a session cookie
// @Tags auth
// @Accept json
// @Produce json
// @Param request body services.LoginRequest true "Credentials"
// @Success 200 {object} SuccessResponse "Authenticated user"
// @Failure 401 {object} ErrorResponse "Invalid credentials"
// @Router /login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req services.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorEnvelope("Invalid request body", nil))
		return
	}

	h.LogRequest(c, "Logging in", "email", req.Email)

	user, err := h.authService.Login(c.Request.Context(), &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	// Rotate any session the browser still carries
	if old, err := c.Cookie(h.cookieName); err == nil && old != "" {
		_ = h.sessions.Delete(c.Request.Context(), old)
	}

	if !h.openSession(c, user.ID) {
		return
	}

	c.JSON(http.StatusOK, successEnvelope("Logged in successfully", gin.H{"user": user}))
}

// Logout closes the current session
// @Summary Log out
// @Tags auth
// @Produce json
// @Success 200 {object} SuccessResponse
// @Router /logout [post]
func (h *AuthHandler) Logout(c *gin.Context) {
	if token, exists := c.Get("session_token"); exists {
		if t, ok := token.(string); ok && t != "" {
			if err := h.sessions.Delete(c.Request.Context(), t); err != nil {
				h.LogError(c, err, "Failed to delete session")
			}
		}
	}

	h.clearCookie(c)
	c.JSON(http.StatusOK, successEnvelope("Logged out successfully", nil))
}

// CurrentUser returns the authenticated user
// @Summary Current user
// @Tags auth
// @Produce json
// @Success 200 {object} SuccessResponse "Authenticated user"
// @Failure 401 {object} ErrorResponse "Unauthenticated"
// @Router /user [get]
func (h *AuthHandler) CurrentUser(c *gin.Context) {
	user, ok := h.currentUser(c)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, successEnvelope("Authenticated user", gin.H{"user": user}))
}

func (h *AuthHandler) openSession(c *gin.Context, userID uint) bool {
	token, err := h.sessions.Create(c.Request.Context(), userID)
	if err != nil {
		h.LogError(c, err, "Failed to create session")
		c.JSON(http.StatusInternalServerError, errorEnvelope("Internal server error", nil))
		return false
	}

	maxAge := int(h.sessions.TTL().Seconds())
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(h.cookieName, token, maxAge, "/", "", h.secure, true)
	return true
}

func (h *AuthHandler) clearCookie(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(h.cookieName, "", -1, "/", "", h.secure, true)
}
