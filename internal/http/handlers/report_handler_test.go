package handlers

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/ignatzorin/civic-reports-backend/internal/http/middleware"
	"github.com/ignatzorin/civic-reports-backend/internal/models"
)

func withSubject(subject models.Subject) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(middleware.ContextSubjectKey, subject)
		c.Next()
	}
}

func testCitizen() models.Subject {
	return models.Subject{
		ID:       uuid.New(),
		Username: "ivan",
		Role:     models.RoleUser,
		Kind:     models.PrincipalCitizen,
	}
}

func TestReportHandler_Create_Unauthorized(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	handler := &ReportHandler{}
	r.POST("/reports", handler.Create)

	req, _ := http.NewRequest("POST", "/reports", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestReportHandler_Create_InvalidCoordinate(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(withSubject(testCitizen()))
	handler := &ReportHandler{}
	r.POST("/reports", handler.Create)

	form := url.Values{}
	form.Set("type", models.ReportTypeGarbage)
	form.Set("description", "мусор")
	form.Set("location", "двор")
	form.Set("lat", "not-a-number")

	req, _ := http.NewRequest("POST", "/reports", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestReportHandler_ListOwn_Unauthorized(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	handler := &ReportHandler{}
	r.GET("/user/reports", handler.ListOwn)

	req, _ := http.NewRequest("GET", "/user/reports", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestReportHandler_SetStatus_InvalidReportID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(withSubject(testCitizen()))
	handler := &ReportHandler{}
	r.PATCH("/reports/:id/status", handler.SetStatus)

	req, _ := http.NewRequest("PATCH", "/reports/invalid-uuid/status", strings.NewReader(`{"status":"in_progress"}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestReportHandler_SetStatus_MissingBody(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(withSubject(testCitizen()))
	handler := &ReportHandler{}
	r.PATCH("/reports/:id/status", handler.SetStatus)

	req, _ := http.NewRequest("PATCH", "/reports/"+uuid.NewString()+"/status", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestReportHandler_AttachImage_MissingFile(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(withSubject(testCitizen()))
	handler := &ReportHandler{}
	r.PATCH("/reports/:id/image", handler.AttachImage)

	req, _ := http.NewRequest("PATCH", "/reports/"+uuid.NewString()+"/image", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}
