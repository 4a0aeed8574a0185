package common

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/ignatzorin/civic-reports-backend/internal/http/middleware"
	"github.com/ignatzorin/civic-reports-backend/internal/models"
)

// ErrSubjectMissing возвращается, когда в контексте запроса нет субъекта.
var ErrSubjectMissing = errors.New("субъект не найден в контексте")

// CurrentSubject извлекает субъект запроса из gin.Context.
func CurrentSubject(c *gin.Context) (models.Subject, error) {
	raw, exists := c.Get(middleware.ContextSubjectKey)
	if !exists {
		return models.Subject{}, ErrSubjectMissing
	}

	subject, ok := raw.(models.Subject)
	if !ok {
		return models.Subject{}, ErrSubjectMissing
	}

	return subject, nil
}

// ParseUUIDParam парсит UUID из параметра маршрута.
func ParseUUIDParam(c *gin.Context, paramName string) (uuid.UUID, error) {
	param := c.Param(paramName)
	if param == "" {
		return uuid.Nil, fmt.Errorf("параметр %s отсутствует", paramName)
	}

	parsed, err := uuid.Parse(param)
	if err != nil {
		return uuid.Nil, fmt.Errorf("параметр %s должен быть валидным UUID", paramName)
	}

	return parsed, nil
}

// RespondBadRequest отправляет стандартный ответ 400.
func RespondBadRequest(c *gin.Context, message string) {
	if message == "" {
		message = "некорректный запрос"
	}
	c.JSON(http.StatusBadRequest, gin.H{"error": message})
}

// RespondUnauthorized отправляет стандартный ответ 401.
func RespondUnauthorized(c *gin.Context, message string) {
	if message == "" {
		message = "требуется авторизация"
	}
	c.JSON(http.StatusUnauthorized, gin.H{"error": message})
}
