package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noman2111ni/Retail-Managment-System/internal/application/auth"
	"github.com/noman2111ni/Retail-Managment-System/internal/interfaces/http/dto"
)

// SessionService is the part of auth.Service the gateway uses.
type SessionService interface {
	Login(ctx context.Context, input auth.LoginInput) (*auth.LoginResult, error)
	Register(ctx context.Context, input auth.RegisterInput) error
	Logout(ctx context.Context) error
	Status() auth.Status
}

// Resetter drops every cached collection.
type Resetter interface {
	ClearAll()
}

// SessionHandler handles login, logout and session status
type SessionHandler struct {
	BaseHandler
	users SessionService
	reset Resetter
}

// NewSessionHandler creates a new SessionHandler
func NewSessionHandler(users SessionService, reset Resetter) *SessionHandler {
	return &SessionHandler{users: users, reset: reset}
}

// RegisterRoutes implements router.RouteRegistrar
func (h *SessionHandler) RegisterRoutes(rg *gin.RouterGroup) {
	g := rg.Group("/session")
	g.GET("", h.Status)
	g.POST("/login", h.Login)
	g.POST("/logout", h.Logout)
	g.POST("/register", h.Register)
}

// Status returns the current session
func (h *SessionHandler) Status(c *gin.Context) {
	h.Success(c, h.users.Status())
}

// Login exchanges credentials for a token pair. Collections cached for the
// previous account are dropped.
func (h *SessionHandler) Login(c *gin.Context) {
	var input auth.LoginInput
	if err := c.ShouldBindJSON(&input); err != nil {
		h.Error(c, http.StatusBadRequest, dto.ErrCodeInvalidJSON, err.Error())
		return
	}

	result, err := h.users.Login(c.Request.Context(), input)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	if h.reset != nil {
		h.reset.ClearAll()
	}

	h.Success(c, gin.H{
		"user":    result.User,
		"session": h.users.Status(),
	})
}

// Logout clears the session and every cached collection
func (h *SessionHandler) Logout(c *gin.Context) {
	if err := h.users.Logout(c.Request.Context()); err != nil {
		h.HandleError(c, err)
		return
	}
	if h.reset != nil {
		h.reset.ClearAll()
	}
	h.NoContent(c)
}

// Register creates a new account
func (h *SessionHandler) Register(c *gin.Context) {
	var input auth.RegisterInput
	if err := c.ShouldBindJSON(&input); err != nil {
		h.Error(c, http.StatusBadRequest, dto.ErrCodeInvalidJSON, err.Error())
		return
	}
	if err := h.users.Register(c.Request.Context(), input); err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, gin.H{"username": input.Username})
}
