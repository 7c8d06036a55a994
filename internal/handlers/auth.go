package handlers

import (
	"context"
	"net/http"
	"time"

	"inkpost/internal/identity"
	"inkpost/internal/middleware"
	"inkpost/internal/models"
	"inkpost/internal/services"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
)

type UserService interface {
	Register(ctx context.Context, in services.RegisterInput) (*models.User, error)
	Verify(ctx context.Context, in services.VerifyInput) (*models.User, error)
	Authenticate(ctx context.Context, in services.LoginInput) (*models.User, error)
	AdminUpdate(ctx context.Context, id string, patch services.UserPatch) (*models.User, error)
}

type AuthHandler struct {
	users    UserService
	secret   []byte
	tokenTTL time.Duration
}

func NewAuthHandler(users UserService, jwtSecret string, tokenTTL time.Duration) *AuthHandler {
	return &AuthHandler{users: users, secret: []byte(jwtSecret), tokenTTL: tokenTTL}
}

func (h *AuthHandler) Register(c *gin.Context) {
	var in services.RegisterInput
	if !bindJSON(c, &in) {
		return
	}

	user, err := h.users.Register(c.Request.Context(), in)
	if err != nil {
		Fail(c, err)
		return
	}
	Respond(c, http.StatusCreated, "Registered successfully! A verification code has been sent to your email.", user)
}

func (h *AuthHandler) Verify(c *gin.Context) {
	var in services.VerifyInput
	if !bindJSON(c, &in) {
		return
	}

	user, err := h.users.Verify(c.Request.Context(), in)
	if err != nil {
		Fail(c, err)
		return
	}
	Respond(c, http.StatusOK, "Email verified successfully!", user)
}

// Login starts a cookie session and also returns a bearer token for API clients.
func (h *AuthHandler) Login(c *gin.Context) {
	var in services.LoginInput
	if !bindJSON(c, &in) {
		return
	}

	user, err := h.users.Authenticate(c.Request.Context(), in)
	if err != nil {
		Fail(c, err)
		return
	}

	token, err := middleware.IssueToken(user.ID, h.secret, h.tokenTTL)
	if err != nil {
		Fail(c, err)
		return
	}

	session := sessions.Default(c)
	session.Set(middleware.SessionUserKey, user.ID)
	if err := session.Save(); err != nil {
		Fail(c, err)
		return
	}

	Respond(c, http.StatusOK, "Logged in successfully!", gin.H{
		"token": token,
		"user":  identity.FromUser(user),
	})
}

func (h *AuthHandler) Logout(c *gin.Context) {
	session := sessions.Default(c)
	session.Clear()
	session.Options(sessions.Options{Path: "/", MaxAge: -1})
	if err := session.Save(); err != nil {
		Fail(c, err)
		return
	}
	Respond(c, http.StatusOK, "Logged out successfully!", nil)
}

func (h *AuthHandler) Me(c *gin.Context) {
	actor, ok := principal(c)
	if !ok {
		return
	}
	Respond(c, http.StatusOK, "User retrieved successfully!", actor)
}
