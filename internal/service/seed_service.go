package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/ignatzorin/civic-reports-backend/internal/logger"
	"github.com/ignatzorin/civic-reports-backend/internal/models"
	"github.com/ignatzorin/civic-reports-backend/internal/repository"
)

// SeedRepo — подмножество репозитория заявок, нужное посеву.
type SeedRepo interface {
	Count(ctx context.Context) (int, error)
	SeedReport(ctx context.Context, report *models.Report, status string, createdAt time.Time) error
}

// SeedService наполняет базу стартовыми данными для development:
// дефолтные учётки и несколько примерных заявок, как делал исходный сервер.
type SeedService struct {
	users   CitizenRepository
	reports SeedRepo
}

// NewSeedService создаёт сервис посева.
func NewSeedService(users CitizenRepository, reports SeedRepo) *SeedService {
	return &SeedService{
		users:   users,
		reports: reports,
	}
}

// Seed создаёт дефолтных пользователей, если их нет, и примерные заявки,
// если таблица пуста. Повторный запуск ничего не дублирует.
func (s *SeedService) Seed(ctx context.Context) error {
	defaults := []struct {
		username string
		password string
		role     string
	}{
		{"user", "user123", models.RoleUser},
		{"authority", "auth123", models.RoleAuthority},
	}

	var reporter *models.User
	for _, d := range defaults {
		user, err := s.ensureUser(ctx, d.username, d.password, d.role)
		if err != nil {
			return err
		}
		if d.role == models.RoleUser && reporter == nil {
			reporter = user
		}
	}

	count, err := s.reports.Count(ctx)
	if err != nil {
		return fmt.Errorf("seed service: не удалось проверить таблицу заявок: %w", err)
	}
	if count > 0 {
		return nil
	}

	samples := []struct {
		report models.Report
		status string
	}{
		{
			report: models.Report{
				Type:        models.ReportTypeGarbage,
				Severity:    models.SeverityHigh,
				Description: "Large garbage pile near market street",
				Location:    "Market Road, Pendurthi",
			},
			status: models.StatusResolved,
		},
		{
			report: models.Report{
				Type:        models.ReportTypeDrainage,
				Severity:    models.SeverityCritical,
				Description: "Clogged drain causing water logging",
				Location:    "Main Street, Pendurthi",
			},
			status: models.StatusInProgress,
		},
		{
			report: models.Report{
				Type:        models.ReportTypeStagnantWater,
				Severity:    models.SeverityMedium,
				Description: "Stagnant water near residential area",
				Location:    "Housing Colony, Pendurthi",
			},
			status: models.StatusSubmitted,
		},
	}

	for i := range samples {
		if reporter != nil {
			id := reporter.ID
			samples[i].report.ReporterID = &id
		}
		// Разносим created_at назад во времени, чтобы у решённой заявки
		// было осмысленное время устранения.
		createdAt := time.Now().Add(-time.Duration(48*(len(samples)-i)) * time.Hour)
		if err := s.reports.SeedReport(ctx, &samples[i].report, samples[i].status, createdAt); err != nil {
			return fmt.Errorf("seed service: не удалось создать примерную заявку: %w", err)
		}
	}

	if logger.Log != nil {
		logger.Log.WithField("reports", len(samples)).Info("seed: созданы примерные данные")
	}

	return nil
}

// ensureUser возвращает существующего пользователя или создаёт нового.
func (s *SeedService) ensureUser(ctx context.Context, username, password, role string) (*models.User, error) {
	user, err := s.users.GetByUsername(ctx, username)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, repository.ErrUserNotFound) {
		return nil, fmt.Errorf("seed service: не удалось проверить пользователя %s: %w", username, err)
	}

	passHash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("seed service: не удалось захешировать пароль: %w", err)
	}

	user = &models.User{
		Username:     username,
		PasswordHash: string(passHash),
		Role:         role,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("seed service: не удалось создать пользователя %s: %w", username, err)
	}

	return user, nil
}
