package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ignatzorin/civic-reports-backend/internal/service"
)

// AuthHandler предоставляет HTTP слой для регистрации и входа.
// Поверхности две: граждане и органы власти, каждая со своей таблицей
// учётных данных и своими маршрутами.
type AuthHandler struct {
	auth *service.AuthService
}

// NewAuthHandler создаёт хэндлер.
func NewAuthHandler(auth *service.AuthService) *AuthHandler {
	return &AuthHandler{auth: auth}
}

type credentialsRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
	Role     string `json:"role"`
}

// Register обрабатывает POST /api/register.
func (h *AuthHandler) Register(c *gin.Context) {
	var req credentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "имя пользователя и пароль обязательны"})
		return
	}

	result, err := h.auth.RegisterCitizen(c.Request.Context(), req.Username, req.Password, req.Role)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"token": result.Token, "user": result.Principal})
}

// RegisterAuthority обрабатывает POST /api/register-authority.
func (h *AuthHandler) RegisterAuthority(c *gin.Context) {
	var req credentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "имя пользователя и пароль обязательны"})
		return
	}

	result, err := h.auth.RegisterAuthority(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"token": result.Token, "user": result.Principal})
}

// Login обрабатывает POST /api/login.
func (h *AuthHandler) Login(c *gin.Context) {
	var req credentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "имя пользователя и пароль обязательны"})
		return
	}

	result, err := h.auth.LoginCitizen(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"token": result.Token, "user": result.Principal})
}

// LoginAuthority обрабатывает POST /api/login-authority.
func (h *AuthHandler) LoginAuthority(c *gin.Context) {
	var req credentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "имя пользователя и пароль обязательны"})
		return
	}

	result, err := h.auth.LoginAuthority(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"token": result.Token, "user": result.Principal})
}
