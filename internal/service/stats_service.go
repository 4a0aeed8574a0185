package service

import (
	"context"
	"fmt"

	"github.com/ignatzorin/civic-reports-backend/internal/models"
	"github.com/ignatzorin/civic-reports-backend/internal/pkg/apperror"
	"github.com/ignatzorin/civic-reports-backend/internal/repository"
)

// StatsRepo описывает зависимость StatsService от слоя хранилища.
type StatsRepo interface {
	Stats(ctx context.Context) (*repository.ReportStats, error)
}

// StatsService считает агрегаты по заявкам. Сервис чисто производный:
// никакого собственного состояния у него нет.
type StatsService struct {
	repo StatsRepo
}

// NewStatsService создаёт сервис статистики.
func NewStatsService(repo StatsRepo) *StatsService {
	return &StatsService{repo: repo}
}

// Compute возвращает счётчики по статусам, количество уникальных авторов
// и среднее время устранения в часах по решённым заявкам.
func (s *StatsService) Compute(ctx context.Context) (*models.Stats, error) {
	raw, err := s.repo.Stats(ctx)
	if err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeStorage, "не удалось посчитать статистику")
	}

	responseTime := "0 hours"
	if raw.HasResolved {
		responseTime = fmt.Sprintf("%.1f hours", raw.AvgResolutionHours)
	}

	return &models.Stats{
		TotalReports:    raw.Total,
		ResolvedReports: raw.Resolved,
		InProgress:      raw.InProgress,
		UniqueCitizens:  raw.UniqueCitizens,
		ResponseTime:    responseTime,
	}, nil
}
