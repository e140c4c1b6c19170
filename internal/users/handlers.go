package users

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"commerce-platform/internal/audit"
	"commerce-platform/internal/httpapi"
	"commerce-platform/pkg/logger"

	"github.com/gin-gonic/gin"
)

// Handler exposes admin account management plus the signed-in user's
// password change. Suspension, unsuspension and deletion are recorded in
// the audit trail.
//
// current resolves the authenticated user from the request context; the
// route layer wires it to the session guard. Kept as a function value to
// avoid importing the auth package from here.
type Handler struct {
	svc     *Service
	audit   *audit.Service
	current func(ctx context.Context) (User, error)
}

func NewHandler(svc *Service, auditSvc *audit.Service, current func(ctx context.Context) (User, error)) *Handler {
	return &Handler{svc: svc, audit: auditSvc, current: current}
}

// List handles GET /admin/users.
func (h *Handler) List(c *gin.Context) {
	f := ListFilter{Role: c.Query("role")}
	if v, err := strconv.Atoi(c.Query("page")); err == nil {
		f.Page = v
	}
	if v, err := strconv.Atoi(c.Query("per_page")); err == nil {
		f.PerPage = v
	}
	f.IncludeDeleted = c.Query("include_deleted") == "true"

	list, total, err := h.svc.List(c.Request.Context(), f)
	if err != nil {
		logger.FromGin(c).Error("list users failed", "error", err.Error())
		httpapi.AbortInternal(c, "")
		return
	}
	c.JSON(http.StatusOK, gin.H{"users": list, "total": total})
}

// Get handles GET /admin/users/:id.
func (h *Handler) Get(c *gin.Context) {
	u, err := h.svc.Get(c.Request.Context(), c.Param("id"))
	switch {
	case err == nil:
	case errors.Is(err, ErrNotFound):
		httpapi.AbortWithError(c, http.StatusNotFound, "id", "User not found")
		return
	default:
		logger.FromGin(c).Error("get user failed", "error", err.Error())
		httpapi.AbortInternal(c, "")
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": u})
}

// Suspend handles POST /admin/users/:id/suspend.
func (h *Handler) Suspend(c *gin.Context) {
	h.setSuspension(c, true)
}

// Unsuspend handles POST /admin/users/:id/unsuspend.
func (h *Handler) Unsuspend(c *gin.Context) {
	h.setSuspension(c, false)
}

func (h *Handler) setSuspension(c *gin.Context, suspended bool) {
	id := c.Param("id")

	var err error
	if suspended {
		err = h.svc.Suspend(c.Request.Context(), id)
	} else {
		err = h.svc.Unsuspend(c.Request.Context(), id)
	}
	switch {
	case err == nil:
	case errors.Is(err, ErrNotFound):
		httpapi.AbortWithError(c, http.StatusNotFound, "id", "User not found")
		return
	default:
		logger.FromGin(c).Error("set suspension failed", "error", err.Error())
		httpapi.AbortInternal(c, "")
		return
	}

	eventType := audit.EventUserSuspended
	message := "account suspended"
	if !suspended {
		eventType = audit.EventUserUnsuspended
		message = "account unsuspended"
	}
	h.logUserAction(c, eventType, id, message)
	c.JSON(http.StatusOK, gin.H{"id": id, "suspended": suspended})
}

// Delete handles DELETE /admin/users/:id. Soft delete; the account stops
// authenticating immediately.
func (h *Handler) Delete(c *gin.Context) {
	id := c.Param("id")
	err := h.svc.Delete(c.Request.Context(), id)
	switch {
	case err == nil:
	case errors.Is(err, ErrNotFound):
		httpapi.AbortWithError(c, http.StatusNotFound, "id", "User not found")
		return
	default:
		logger.FromGin(c).Error("delete user failed", "error", err.Error())
		httpapi.AbortInternal(c, "")
		return
	}

	h.logUserAction(c, audit.EventUserDeleted, id, "account deleted")
	c.Status(http.StatusNoContent)
}

type changePasswordRequest struct {
	Current string `json:"current_password"`
	Next    string `json:"new_password"`
}

// ChangePassword handles POST /account/password for the signed-in user.
func (h *Handler) ChangePassword(c *gin.Context) {
	u, err := h.current(c.Request.Context())
	if err != nil {
		httpapi.AbortUnauthorized(c)
		return
	}

	var req changePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpapi.AbortWithError(c, http.StatusBadRequest, "", "current and new password are required")
		return
	}

	err = h.svc.ChangePassword(c.Request.Context(), u.ID, req.Current, req.Next)
	switch {
	case err == nil:
	case errors.Is(err, ErrBadPassword):
		httpapi.AbortWithError(c, http.StatusBadRequest, "current_password", err.Error())
		return
	case errors.Is(err, ErrWeakPassword):
		httpapi.AbortWithError(c, http.StatusBadRequest, "new_password", err.Error())
		return
	case errors.Is(err, ErrNotFound):
		httpapi.AbortUnauthorized(c)
		return
	default:
		logger.FromGin(c).Error("change password failed", "error", err.Error())
		httpapi.AbortInternal(c, "")
		return
	}
	c.JSON(http.StatusOK, gin.H{"changed": true})
}

// Audit failures never fail the admin request.
func (h *Handler) logUserAction(c *gin.Context, t audit.EventType, targetID, message string) {
	if h.audit == nil {
		return
	}
	actor := audit.Actor{IP: c.ClientIP()}
	if h.current != nil {
		if u, err := h.current(c.Request.Context()); err == nil {
			actor.UserID = u.ID
			actor.Email = u.Email
		}
	}
	if err := h.audit.LogUserAction(c.Request.Context(), t, actor, targetID, message); err != nil {
		logger.FromGin(c).Warn("audit log failed", "error", err.Error())
	}
}
