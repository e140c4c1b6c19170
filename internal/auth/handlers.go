package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"commerce-platform/internal/httpapi"
	"commerce-platform/internal/users"
	"commerce-platform/pkg/logger"
	"commerce-platform/pkg/utils"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

const (
	loginAttemptLimit  = 5
	loginAttemptWindow = 15 * time.Minute
)

// Handler exposes the authentication endpoints. The rate limiter client is
// optional; when nil, login throttling is disabled (tests, local tooling).
type Handler struct {
	svc     *Service
	users   *users.Service
	limiter *redis.Client

	// onRegister fires after a successful signup. Best effort; wired to the
	// welcome email in production.
	onRegister func(ctx context.Context, u users.User)
}

func NewHandler(svc *Service, userSvc *users.Service, limiter *redis.Client) *Handler {
	return &Handler{svc: svc, users: userSvc, limiter: limiter}
}

// WithRegisterHook installs a callback invoked after each successful signup.
func (h *Handler) WithRegisterHook(fn func(ctx context.Context, u users.User)) *Handler {
	h.onRegister = fn
	return h
}

type loginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type visitorRequest struct {
	Email string `json:"email" binding:"required,email"`
}

type registerRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
	Avatar   string `json:"avatar"`
}

// Login handles POST /auth/login.
func (h *Handler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpapi.AbortWithError(c, http.StatusBadRequest, "email", "email and password are required")
		return
	}
	email := strings.ToLower(strings.TrimSpace(req.Email))

	key := loginRateKey(email)
	if !h.allowAttempt(c, key) {
		httpapi.AbortWithError(c, http.StatusTooManyRequests, "", "Too many login attempts, try again later")
		return
	}

	creds, u, err := h.svc.Login(c.Request.Context(), email, req.Password)
	if err != nil {
		// Invalid password and unknown account answer identically.
		logger.FromGin(c).Warn("login rejected", "email", email)
		httpapi.AbortWithError(c, http.StatusUnauthorized, "", "Invalid email or password")
		return
	}

	h.resetAttempts(c, key)
	SetAuthCookies(c, creds)
	c.JSON(http.StatusOK, gin.H{"user": u, "credentials": creds})
}

// Register handles POST /auth/register.
func (h *Handler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpapi.AbortWithError(c, http.StatusBadRequest, "email", "email and password are required")
		return
	}

	u, err := h.users.Register(c.Request.Context(), users.RegisterRequest{
		Email:    req.Email,
		Password: req.Password,
		Avatar:   req.Avatar,
	})
	switch {
	case err == nil:
	case errors.Is(err, users.ErrWeakPassword):
		httpapi.AbortWithError(c, http.StatusBadRequest, "password", err.Error())
		return
	case errors.Is(err, users.ErrAlreadyExists):
		httpapi.AbortWithError(c, http.StatusConflict, "email", "An account with this email already exists")
		return
	case errors.Is(err, users.ErrInvalidArgument):
		httpapi.AbortWithError(c, http.StatusBadRequest, "email", "A valid email is required")
		return
	default:
		logger.FromGin(c).Error("register failed", "error", err.Error())
		httpapi.AbortInternal(c, "")
		return
	}

	creds, _, err := h.svc.Login(c.Request.Context(), u.Email, req.Password)
	if err != nil {
		logger.FromGin(c).Error("post-register login failed", "error", err.Error())
		httpapi.AbortInternal(c, "")
		return
	}
	if h.onRegister != nil {
		h.onRegister(c.Request.Context(), u)
	}
	SetAuthCookies(c, creds)
	c.JSON(http.StatusCreated, gin.H{"user": u, "credentials": creds})
}

// VisitorLogin handles POST /auth/visitor. Guest checkout sessions get an
// access token only; there is nothing to rotate when it expires.
func (h *Handler) VisitorLogin(c *gin.Context) {
	var req visitorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpapi.AbortWithError(c, http.StatusBadRequest, "email", "a valid email is required")
		return
	}
	email := strings.ToLower(strings.TrimSpace(req.Email))

	access, u, err := h.svc.GuestLogin(c.Request.Context(), email)
	if err != nil {
		logger.FromGin(c).Error("visitor login failed", "error", err.Error())
		httpapi.AbortInternal(c, "")
		return
	}

	c.SetCookie(CookieAccess, access, 0, "/", "", false, true)
	c.JSON(http.StatusOK, gin.H{"user": u, "accessToken": access})
}

// GoogleRedirect handles GET /auth/google.
func (h *Handler) GoogleRedirect(c *gin.Context) {
	url, err := h.svc.GoogleAuthURL(c.Query("state"))
	if err != nil {
		httpapi.AbortWithError(c, http.StatusServiceUnavailable, "", "Google sign-in is not available")
		return
	}
	c.Redirect(http.StatusTemporaryRedirect, url)
}

// GoogleCallback handles GET /auth/google/callback.
func (h *Handler) GoogleCallback(c *gin.Context) {
	code := c.Query("code")
	if code == "" {
		httpapi.AbortWithError(c, http.StatusBadRequest, "code", "authorization code is required")
		return
	}

	creds, u, err := h.svc.GoogleLogin(c.Request.Context(), code)
	if err != nil {
		logger.FromGin(c).Warn("google login failed", "error", err.Error())
		httpapi.AbortWithError(c, http.StatusUnauthorized, "", "Google sign-in failed")
		return
	}

	SetAuthCookies(c, creds)
	c.JSON(http.StatusOK, gin.H{"user": u, "credentials": creds})
}

// Logout handles POST /auth/logout. Runs behind RequireAuth.
func (h *Handler) Logout(c *gin.Context) {
	u, err := CurrentUser(c.Request.Context())
	if err != nil {
		httpapi.AbortUnauthorized(c)
		return
	}
	if err := h.svc.Logout(c.Request.Context(), u.ID); err != nil {
		logger.FromGin(c).Error("logout failed", "user_id", u.ID, "error", err.Error())
		httpapi.AbortInternal(c, "")
		return
	}
	ClearAuthCookies(c)
	c.JSON(http.StatusOK, gin.H{"loggedOut": true})
}

// Me handles GET /auth/me. Runs behind RequireAuth.
func (h *Handler) Me(c *gin.Context) {
	u, err := CurrentUser(c.Request.Context())
	if err != nil {
		httpapi.AbortUnauthorized(c)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": u})
}

func (h *Handler) allowAttempt(c *gin.Context, key string) bool {
	if h.limiter == nil {
		return true
	}
	ok, err := utils.AllowFixedWindow(c.Request.Context(), h.limiter, key, loginAttemptLimit, loginAttemptWindow)
	if err != nil {
		// Fail open: a degraded limiter must not lock everyone out.
		logger.FromGin(c).Error("login limiter unavailable", "error", err.Error())
		return true
	}
	return ok
}

func (h *Handler) resetAttempts(c *gin.Context, key string) {
	if h.limiter == nil {
		return
	}
	if err := utils.ResetFixedWindow(c.Request.Context(), h.limiter, key); err != nil {
		logger.FromGin(c).Warn("login limiter reset failed", "error", err.Error())
	}
}

func loginRateKey(email string) string {
	return fmt.Sprintf("login:attempts:%s", email)
}
