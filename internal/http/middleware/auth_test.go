package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/ignatzorin/civic-reports-backend/internal/models"
	"github.com/ignatzorin/civic-reports-backend/internal/service"
)

func newAuthTestRouter(tokens *service.TokenManager) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/protected", AuthMiddleware(tokens), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	return r
}

func TestAuthMiddleware_MissingHeader(t *testing.T) {
	r := newAuthTestRouter(service.NewTokenManager("secret", time.Hour))

	req, _ := http.NewRequest("GET", "/protected", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthMiddleware_MalformedToken(t *testing.T) {
	r := newAuthTestRouter(service.NewTokenManager("secret", time.Hour))

	req, _ := http.NewRequest("GET", "/protected", nil)
	req.Header.Set("Authorization", "Bearer garbage")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthMiddleware_ValidToken(t *testing.T) {
	tokens := service.NewTokenManager("secret", time.Hour)
	r := newAuthTestRouter(tokens)

	token, _, err := tokens.Generate(models.Subject{
		ID:       uuid.New(),
		Username: "ivan",
		Role:     models.RoleUser,
		Kind:     models.PrincipalCitizen,
	})
	assert.NoError(t, err)

	req, _ := http.NewRequest("GET", "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRequireAuthority(t *testing.T) {
	gin.SetMode(gin.TestMode)

	makeRouter := func(subject models.Subject) *gin.Engine {
		r := gin.New()
		r.Use(func(c *gin.Context) {
			c.Set(ContextSubjectKey, subject)
			c.Next()
		})
		r.PATCH("/reports/:id/status", RequireAuthority(), func(c *gin.Context) {
			c.Status(http.StatusOK)
		})
		return r
	}

	citizen := models.Subject{ID: uuid.New(), Username: "ivan", Role: models.RoleUser, Kind: models.PrincipalCitizen}
	authority := models.Subject{ID: uuid.New(), Username: "dept", Role: models.RoleAuthority, Kind: models.PrincipalAuthority}

	req, _ := http.NewRequest("PATCH", "/reports/"+uuid.NewString()+"/status", nil)

	w := httptest.NewRecorder()
	makeRouter(citizen).ServeHTTP(w, req)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = httptest.NewRecorder()
	makeRouter(authority).ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}
