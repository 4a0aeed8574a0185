package handlers

import (
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/h2non/filetype"
	"github.com/sirupsen/logrus"

	"github.com/ignatzorin/civic-reports-backend/internal/http/handlers/common"
	"github.com/ignatzorin/civic-reports-backend/internal/logger"
	"github.com/ignatzorin/civic-reports-backend/internal/service"
	"github.com/ignatzorin/civic-reports-backend/internal/storage"
)

// Разрешённые типы файлов для загрузки.
var allowedMimeTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/gif":  true,
	"image/webp": true,
}

// Разрешённые расширения файлов.
var allowedExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
	".webp": true,
}

// uploadsPrefix — публичный префикс, под которым раздаются файлы.
const uploadsPrefix = "/uploads/"

// ReportHandler предоставляет HTTP слой жизненного цикла заявок.
type ReportHandler struct {
	svc     *service.ReportService
	storage *storage.PhotoStorage
}

// NewReportHandler создаёт хэндлер.
func NewReportHandler(svc *service.ReportService, photoStorage *storage.PhotoStorage) *ReportHandler {
	return &ReportHandler{svc: svc, storage: photoStorage}
}

// Create обрабатывает POST /api/reports (multipart форма).
func (h *ReportHandler) Create(c *gin.Context) {
	subject, err := common.CurrentSubject(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}

	in := service.CreateReportInput{
		Type:        c.PostForm("type"),
		Severity:    c.PostForm("severity"),
		Description: c.PostForm("description"),
		Location:    c.PostForm("location"),
	}

	lat, err := parseCoordinate(c.PostForm("lat"))
	if err != nil {
		common.RespondBadRequest(c, "lat должен быть числом")
		return
	}
	lng, err := parseCoordinate(c.PostForm("lng"))
	if err != nil {
		common.RespondBadRequest(c, "lng должен быть числом")
		return
	}
	in.Lat = lat
	in.Lng = lng

	// Файл пишется на диск до вставки записи; при неудавшейся вставке
	// убираем его, чтобы не копить сирот.
	var savedFile string
	if fileHeader, err := c.FormFile("image"); err == nil {
		imagePath, err := h.saveUpload(c, fileHeader)
		if err != nil {
			common.RespondBadRequest(c, err.Error())
			return
		}
		savedFile = imagePath
		in.ImagePath = &imagePath
	}

	report, err := h.svc.Create(c.Request.Context(), subject, in)
	if err != nil {
		if savedFile != "" {
			h.cleanupUpload(c, savedFile)
		}
		c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, report)
}

// ListAll обрабатывает GET /api/reports. Заявки видны всем
// аутентифицированным субъектам без фильтрации по автору.
func (h *ReportHandler) ListAll(c *gin.Context) {
	reports, err := h.svc.ListAll(c.Request.Context())
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, reports)
}

// ListOwn обрабатывает GET /api/user/reports.
func (h *ReportHandler) ListOwn(c *gin.Context) {
	subject, err := common.CurrentSubject(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}

	reports, err := h.svc.ListOwn(c.Request.Context(), subject)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, reports)
}

// SetStatus обрабатывает PATCH /api/reports/:id/status.
func (h *ReportHandler) SetStatus(c *gin.Context) {
	subject, err := common.CurrentSubject(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}

	reportID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	var req struct {
		Status string `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondBadRequest(c, "поле status обязательно")
		return
	}

	if err := h.svc.SetStatus(c.Request.Context(), subject, reportID, req.Status); err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "статус обновлён"})
}

// AttachImage обрабатывает PATCH /api/reports/:id/image. Необязательный
// флаг resolve объединяет прикрепление фото и перевод в resolved в одну
// транзакцию; без него статус не меняется.
func (h *ReportHandler) AttachImage(c *gin.Context) {
	subject, err := common.CurrentSubject(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}

	reportID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	fileHeader, err := c.FormFile("image")
	if err != nil {
		common.RespondBadRequest(c, "файл изображения обязателен")
		return
	}

	imagePath, err := h.saveUpload(c, fileHeader)
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	resolve := c.PostForm("resolve") == "true" || c.PostForm("resolve") == "1"

	if err := h.svc.AttachProof(c.Request.Context(), subject, reportID, imagePath, resolve); err != nil {
		h.cleanupUpload(c, imagePath)
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "изображение сохранено", "image_path": imagePath})
}

// saveUpload проверяет и сохраняет загруженный файл, возвращая публичный
// путь к нему. Тип проверяется и по расширению, и по магическим байтам.
func (h *ReportHandler) saveUpload(c *gin.Context, fileHeader *multipart.FileHeader) (string, error) {
	if fileHeader.Size == 0 {
		return "", fmt.Errorf("файл не может быть пустым")
	}

	ext := strings.ToLower(filepath.Ext(fileHeader.Filename))
	if !allowedExtensions[ext] {
		return "", fmt.Errorf("неподдерживаемый формат файла, разрешены: jpg, jpeg, png, gif, webp")
	}

	src, err := fileHeader.Open()
	if err != nil {
		return "", fmt.Errorf("не удалось открыть файл")
	}
	defer src.Close()

	// Первые 512 байт достаточно для определения реального типа.
	buffer := make([]byte, 512)
	n, err := src.Read(buffer)
	if err != nil && err != io.EOF {
		return "", fmt.Errorf("не удалось прочитать файл")
	}

	kind, err := filetype.Match(buffer[:n])
	if err != nil || kind == filetype.Unknown {
		return "", fmt.Errorf("не удалось определить тип файла, разрешены только изображения")
	}
	if !allowedMimeTypes[kind.MIME.Value] {
		return "", fmt.Errorf("неподдерживаемый тип файла (%s), разрешены только изображения", kind.MIME.Value)
	}

	if _, err := src.Seek(0, io.SeekStart); err != nil {
		return "", fmt.Errorf("не удалось сбросить позицию файла")
	}

	fileName, _, err := h.storage.Save(c.Request.Context(), fileHeader.Filename, src)
	if err != nil {
		return "", err
	}

	return uploadsPrefix + fileName, nil
}

// cleanupUpload удаляет сохранённый файл после неудавшейся записи в базу.
func (h *ReportHandler) cleanupUpload(c *gin.Context, imagePath string) {
	fileName := strings.TrimPrefix(imagePath, uploadsPrefix)
	if err := h.storage.Delete(c.Request.Context(), fileName); err != nil && logger.Log != nil {
		logger.Log.WithFields(logrus.Fields{
			"file":  fileName,
			"error": err.Error(),
		}).Warn("report handler: не удалось убрать осиротевший файл")
	}
}

// parseCoordinate парсит необязательную координату из строки формы.
func parseCoordinate(v string) (*float64, error) {
	if v == "" {
		return nil, nil
	}
	parsed, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return nil, err
	}
	return &parsed, nil
}
