package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/ignatzorin/civic-reports-backend/internal/models"
	"github.com/ignatzorin/civic-reports-backend/internal/pkg/apperror"
	"github.com/ignatzorin/civic-reports-backend/internal/service"
)

// ContextSubjectKey — ключ субъекта запроса в gin.Context.
const ContextSubjectKey = "subject"

// AuthMiddleware проверяет bearer токен и кладёт субъект в контекст.
func AuthMiddleware(tokens *service.TokenManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		auth := c.GetHeader("Authorization")
		if auth == "" || !strings.HasPrefix(auth, "Bearer ") {
			c.AbortWithStatusJSON(apperror.ErrUnauthenticated.HTTPStatus,
				gin.H{"error": apperror.ErrUnauthenticated.Message})
			return
		}

		raw := strings.TrimPrefix(auth, "Bearer ")
		subject, err := tokens.Parse(raw)
		if err != nil || subject.ID == uuid.Nil {
			c.AbortWithStatusJSON(apperror.ErrInvalidToken.HTTPStatus,
				gin.H{"error": apperror.ErrInvalidToken.Message})
			return
		}

		c.Set(ContextSubjectKey, subject)
		c.Next()
	}
}

// RequireAuthority пропускает дальше только субъектов с ролью authority.
// Сервисный слой повторяет эту проверку; здесь она отсекает запросы раньше.
func RequireAuthority() gin.HandlerFunc {
	return func(c *gin.Context) {
		raw, exists := c.Get(ContextSubjectKey)
		subject, ok := raw.(models.Subject)
		if !exists || !ok || !subject.IsAuthority() {
			c.AbortWithStatusJSON(apperror.ErrAuthorityOnly.HTTPStatus,
				gin.H{"error": apperror.ErrAuthorityOnly.Message})
			return
		}
		c.Next()
	}
}
