package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/ignatzorin/civic-reports-backend/internal/models"
	"github.com/ignatzorin/civic-reports-backend/internal/pkg/apperror"
	"github.com/ignatzorin/civic-reports-backend/internal/repository"
	"github.com/ignatzorin/civic-reports-backend/internal/validation"
)

// ReportRepo описывает зависимости ReportService от слоя хранилища.
type ReportRepo interface {
	Create(ctx context.Context, report *models.Report) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Report, error)
	ListAll(ctx context.Context) ([]models.Report, error)
	ListByReporter(ctx context.Context, reporterID uuid.UUID) ([]models.Report, error)
	UpdateStatusFrom(ctx context.Context, id uuid.UUID, from, to string) error
	UpdateImage(ctx context.Context, id uuid.UUID, imagePath string) error
	AttachProofAndResolve(ctx context.Context, id uuid.UUID, from, imagePath string) error
}

// ReportService — единственный слой, которому разрешено мутировать заявки.
// Хранилище само по себе не мешает записать любой статус, поэтому правила
// переходов и авторизация живут здесь.
type ReportService struct {
	repo ReportRepo
}

// CreateReportInput содержит данные новой заявки.
type CreateReportInput struct {
	Type        string
	Severity    string
	Description string
	Location    string
	Lat         *float64
	Lng         *float64
	ImagePath   *string
}

// NewReportService создаёт сервис жизненного цикла заявок.
func NewReportService(repo ReportRepo) *ReportService {
	return &ReportService{repo: repo}
}

// Create сохраняет новую заявку от имени субъекта. Создавать заявки может
// любой аутентифицированный субъект; автором становится только строка
// таблицы граждан, остальные заявки анонимны.
func (s *ReportService) Create(ctx context.Context, subject models.Subject, in CreateReportInput) (*models.Report, error) {
	if _, ok := models.ValidReportTypes[in.Type]; !ok {
		return nil, apperror.New(apperror.ErrCodeValidation,
			fmt.Sprintf("неизвестный тип заявки %q", in.Type))
	}

	severity := in.Severity
	if severity == "" {
		severity = models.SeverityMedium
	}
	if _, ok := models.ValidSeverities[severity]; !ok {
		return nil, apperror.New(apperror.ErrCodeValidation,
			fmt.Sprintf("неизвестный уровень серьёзности %q", severity))
	}

	if err := validation.ValidateNonEmpty("описание", in.Description); err != nil {
		return nil, apperror.New(apperror.ErrCodeValidation, err.Error())
	}
	if err := validation.ValidateLength("описание", in.Description, 0, validation.MaxDescriptionLength); err != nil {
		return nil, apperror.New(apperror.ErrCodeValidation, err.Error())
	}
	if err := validation.ValidateNonEmpty("адрес", in.Location); err != nil {
		return nil, apperror.New(apperror.ErrCodeValidation, err.Error())
	}
	if err := validation.ValidateLength("адрес", in.Location, 0, validation.MaxLocationLength); err != nil {
		return nil, apperror.New(apperror.ErrCodeValidation, err.Error())
	}
	if err := validation.ValidateCoordinates(in.Lat, in.Lng); err != nil {
		return nil, apperror.New(apperror.ErrCodeValidation, err.Error())
	}

	report := &models.Report{
		Type:        in.Type,
		Severity:    severity,
		Description: in.Description,
		Location:    in.Location,
		Lat:         in.Lat,
		Lng:         in.Lng,
		ImagePath:   in.ImagePath,
	}
	if subject.IsCitizen() {
		id := subject.ID
		report.ReporterID = &id
	}

	if err := s.repo.Create(ctx, report); err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeStorage, "не удалось сохранить заявку")
	}

	// Перечитываем с JOIN-ом, чтобы вернуть имя автора.
	created, err := s.repo.GetByID(ctx, report.ID)
	if err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeStorage, "не удалось прочитать созданную заявку")
	}

	return created, nil
}

// ListAll возвращает все заявки, новые первыми. Фильтрации по автору нет
// намеренно: все заявки публичны для аутентифицированных субъектов.
func (s *ReportService) ListAll(ctx context.Context) ([]models.Report, error) {
	reports, err := s.repo.ListAll(ctx)
	if err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeStorage, "не удалось получить список заявок")
	}
	return reports, nil
}

// ListOwn возвращает заявки, автором которых является субъект. Для
// субъектов таблицы органов власти список всегда пуст: их заявки анонимны.
func (s *ReportService) ListOwn(ctx context.Context, subject models.Subject) ([]models.Report, error) {
	if !subject.IsCitizen() {
		return []models.Report{}, nil
	}

	reports, err := s.repo.ListByReporter(ctx, subject.ID)
	if err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeStorage, "не удалось получить список заявок")
	}
	return reports, nil
}

// SetStatus переводит заявку в новый статус. Доступно только роли
// authority; переходы строго вперёд и только на соседний шаг.
func (s *ReportService) SetStatus(ctx context.Context, subject models.Subject, id uuid.UUID, newStatus string) error {
	if !subject.IsAuthority() {
		return apperror.ErrAuthorityOnly
	}

	if _, ok := models.ValidStatuses[newStatus]; !ok {
		return apperror.New(apperror.ErrCodeValidation,
			fmt.Sprintf("неизвестный статус %q", newStatus))
	}

	current, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrReportNotFound) {
			return apperror.ErrReportNotFound
		}
		return apperror.Wrap(err, apperror.ErrCodeStorage, "не удалось прочитать заявку")
	}

	if !models.CanTransition(current.Status, newStatus) {
		return apperror.New(apperror.ErrCodeConflict,
			fmt.Sprintf("переход из статуса %q в %q недопустим", current.Status, newStatus))
	}

	if err := s.repo.UpdateStatusFrom(ctx, id, current.Status, newStatus); err != nil {
		switch {
		case errors.Is(err, repository.ErrReportNotFound):
			return apperror.ErrReportNotFound
		case errors.Is(err, repository.ErrStatusConflict):
			return apperror.New(apperror.ErrCodeConflict, "статус заявки уже изменился, повторите запрос")
		default:
			return apperror.Wrap(err, apperror.ErrCodeStorage, "не удалось обновить статус")
		}
	}

	return nil
}

// AttachProof перезаписывает фото заявки фотографией устранения. При
// resolve фото и переход в resolved фиксируются одной транзакцией;
// без него статус не трогается, как в двухшаговом API.
func (s *ReportService) AttachProof(ctx context.Context, subject models.Subject, id uuid.UUID, imagePath string, resolve bool) error {
	if !subject.IsAuthority() {
		return apperror.ErrAuthorityOnly
	}

	if imagePath == "" {
		return apperror.New(apperror.ErrCodeValidation, "файл изображения обязателен")
	}

	current, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrReportNotFound) {
			return apperror.ErrReportNotFound
		}
		return apperror.Wrap(err, apperror.ErrCodeStorage, "не удалось прочитать заявку")
	}

	if !resolve {
		if err := s.repo.UpdateImage(ctx, id, imagePath); err != nil {
			if errors.Is(err, repository.ErrReportNotFound) {
				return apperror.ErrReportNotFound
			}
			return apperror.Wrap(err, apperror.ErrCodeStorage, "не удалось сохранить изображение")
		}
		return nil
	}

	if !models.CanTransition(current.Status, models.StatusResolved) {
		return apperror.New(apperror.ErrCodeConflict,
			fmt.Sprintf("переход из статуса %q в %q недопустим", current.Status, models.StatusResolved))
	}

	if err := s.repo.AttachProofAndResolve(ctx, id, current.Status, imagePath); err != nil {
		switch {
		case errors.Is(err, repository.ErrReportNotFound):
			return apperror.ErrReportNotFound
		case errors.Is(err, repository.ErrStatusConflict):
			return apperror.New(apperror.ErrCodeConflict, "статус заявки уже изменился, повторите запрос")
		default:
			return apperror.Wrap(err, apperror.ErrCodeStorage, "не удалось сохранить изображение и статус")
		}
	}

	return nil
}
