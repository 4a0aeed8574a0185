package service

import (
	"context"
	"testing"

	"github.com/ignatzorin/civic-reports-backend/internal/repository"
)

// mockStatsRepository возвращает заранее заданные агрегаты.
type mockStatsRepository struct {
	stats repository.ReportStats
}

func (m *mockStatsRepository) Stats(ctx context.Context) (*repository.ReportStats, error) {
	copied := m.stats
	return &copied, nil
}

func TestStatsService_Compute(t *testing.T) {
	service := NewStatsService(&mockStatsRepository{stats: repository.ReportStats{
		Total:              10,
		Resolved:           4,
		InProgress:         3,
		UniqueCitizens:     5,
		AvgResolutionHours: 26.4,
		HasResolved:        true,
	}})

	stats, err := service.Compute(context.Background())
	if err != nil {
		t.Fatalf("Compute вернул ошибку: %v", err)
	}

	if stats.TotalReports != 10 {
		t.Errorf("totalReports = %d, ожидалось 10", stats.TotalReports)
	}
	if stats.ResolvedReports != 4 {
		t.Errorf("resolvedReports = %d, ожидалось 4", stats.ResolvedReports)
	}
	if stats.InProgress != 3 {
		t.Errorf("inProgress = %d, ожидалось 3", stats.InProgress)
	}
	if stats.UniqueCitizens != 5 {
		t.Errorf("uniqueCitizens = %d, ожидалось 5", stats.UniqueCitizens)
	}
	if stats.ResponseTime != "26.4 hours" {
		t.Errorf("responseTime = %q, ожидалось %q", stats.ResponseTime, "26.4 hours")
	}
}

func TestStatsService_ComputeNoResolved(t *testing.T) {
	service := NewStatsService(&mockStatsRepository{stats: repository.ReportStats{
		Total:      2,
		InProgress: 1,
	}})

	stats, err := service.Compute(context.Background())
	if err != nil {
		t.Fatalf("Compute вернул ошибку: %v", err)
	}

	if stats.ResponseTime != "0 hours" {
		t.Errorf("responseTime без решённых заявок = %q, ожидалось %q", stats.ResponseTime, "0 hours")
	}
}
