package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/dukaflow/dukaflow/internal/auth"
	"github.com/dukaflow/dukaflow/internal/db"
	"github.com/dukaflow/dukaflow/internal/middleware"
	"github.com/dukaflow/dukaflow/internal/models"
)

type AuthHandler struct {
	users  *db.UserRepository
	jwt    *auth.JWTService
	logger *zap.Logger
}

func NewAuthHandler(users *db.UserRepository, jwt *auth.JWTService, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{users: users, jwt: jwt, logger: logger}
}

// Register creates a customer account and logs it in.
func (h *AuthHandler) Register(c *gin.Context) {
	var req models.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	user, err := h.users.Create(c.Request.Context(), req.Name, req.Email, hash, models.RoleCustomer)
	if errors.Is(err, db.ErrEmailTaken) {
		respondError(c, http.StatusConflict, "Email already registered")
		return
	}
	if err != nil {
		respondServiceError(c, h.logger, err)
		return
	}

	h.issueToken(c, http.StatusCreated, user)
}

// Login checks credentials and issues a token. Bad email and bad password
// produce the same message.
func (h *AuthHandler) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	user, err := h.users.GetByEmail(c.Request.Context(), req.Email)
	if errors.Is(err, db.ErrUserNotFound) || (err == nil && !auth.CheckPassword(req.Password, user.PasswordHash)) {
		respondError(c, http.StatusUnauthorized, "Invalid email or password")
		return
	}
	if err != nil {
		respondServiceError(c, h.logger, err)
		return
	}

	h.issueToken(c, http.StatusOK, user)
}

// Me returns the authenticated user.
func (h *AuthHandler) Me(c *gin.Context) {
	p, _ := middleware.GetPrincipal(c)

	user, err := h.users.GetByID(c.Request.Context(), p.UserID)
	if err != nil {
		respondServiceError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "user": user})
}

func (h *AuthHandler) issueToken(c *gin.Context, status int, user *models.User) {
	token, expiresAt, err := h.jwt.GenerateToken(user.ID, user.Email, user.Role)
	if err != nil {
		respondServiceError(c, h.logger, err)
		return
	}

	maxAge := int(time.Until(expiresAt).Seconds())
	c.SetCookie("access_token", token, maxAge, "/", "", false, true)
	c.JSON(status, gin.H{
		"success":    true,
		"token":      token,
		"expires_at": expiresAt,
		"user":       user,
	})
}
