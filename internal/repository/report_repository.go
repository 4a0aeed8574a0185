package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/ignatzorin/civic-reports-backend/internal/models"
	"github.com/ignatzorin/civic-reports-backend/internal/repository/common"
)

// ErrReportNotFound возвращается, когда заявка не найдена.
var ErrReportNotFound = errors.New("report not found")

// ErrStatusConflict возвращается, когда условное обновление статуса не
// прошло: текущий статус заявки не совпал с ожидаемым.
var ErrStatusConflict = errors.New("report status conflict")

// Выборка заявки вместе с именем автора. Для анонимных и посевных записей
// reporter_id NULL, имя схлопывается в Anonymous.
const selectReport = `
	SELECT r.id, r.type, r.severity, r.description, r.location, r.lat, r.lng,
	       r.image_path, r.status, r.reporter_id, r.created_at, r.resolved_at,
	       COALESCE(u.username, 'Anonymous') AS reporter_name
	FROM reports r
	LEFT JOIN users u ON r.reporter_id = u.id
`

// ReportRepository отвечает за таблицу reports.
type ReportRepository struct {
	db *sqlx.DB
}

// NewReportRepository создаёт экземпляр репозитория.
func NewReportRepository(db *sqlx.DB) *ReportRepository {
	return &ReportRepository{db: db}
}

// Create сохраняет новую заявку. Статус и created_at выставляет база,
// создание всегда начинается со статуса submitted.
func (r *ReportRepository) Create(ctx context.Context, report *models.Report) error {
	query := `
		INSERT INTO reports (type, severity, description, location, lat, lng, image_path, reporter_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, status, created_at
	`

	if err := r.db.QueryRowxContext(
		ctx, query,
		report.Type, report.Severity, report.Description, report.Location,
		report.Lat, report.Lng, report.ImagePath, report.ReporterID,
	).Scan(&report.ID, &report.Status, &report.CreatedAt); err != nil {
		return fmt.Errorf("report repository: create %w", err)
	}

	return nil
}

// GetByID возвращает заявку с именем автора.
func (r *ReportRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Report, error) {
	var report models.Report
	err := r.db.GetContext(ctx, &report, selectReport+` WHERE r.id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrReportNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("report repository: get by id %w", err)
	}
	return &report, nil
}

// ListAll возвращает все заявки, новые первыми.
func (r *ReportRepository) ListAll(ctx context.Context) ([]models.Report, error) {
	reports := []models.Report{}
	err := r.db.SelectContext(ctx, &reports, selectReport+` ORDER BY r.created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("report repository: list all %w", err)
	}
	return reports, nil
}

// ListByReporter возвращает заявки конкретного автора, новые первыми.
func (r *ReportRepository) ListByReporter(ctx context.Context, reporterID uuid.UUID) ([]models.Report, error) {
	reports := []models.Report{}
	err := r.db.SelectContext(ctx, &reports, selectReport+` WHERE r.reporter_id = $1 ORDER BY r.created_at DESC`, reporterID)
	if err != nil {
		return nil, fmt.Errorf("report repository: list by reporter %w", err)
	}
	return reports, nil
}

// UpdateStatusFrom переводит заявку из статуса from в to одним условным
// UPDATE. Конкурирующие переходы не могут перемешаться: проигравший получит
// ErrStatusConflict. При переходе в resolved заодно ставится resolved_at.
func (r *ReportRepository) UpdateStatusFrom(ctx context.Context, id uuid.UUID, from, to string) error {
	query := `
		UPDATE reports
		SET status = $1,
		    resolved_at = CASE WHEN $1 = 'resolved' THEN NOW() ELSE resolved_at END
		WHERE id = $2 AND status = $3
	`

	res, err := r.db.ExecContext(ctx, query, to, id, from)
	if err != nil {
		return fmt.Errorf("report repository: update status %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("report repository: update status %w", err)
	}
	if affected == 0 {
		// Либо заявки нет, либо её статус уже изменился.
		if _, err := r.GetByID(ctx, id); err != nil {
			return err
		}
		return ErrStatusConflict
	}

	return nil
}

// UpdateImage перезаписывает ссылку на изображение заявки.
func (r *ReportRepository) UpdateImage(ctx context.Context, id uuid.UUID, imagePath string) error {
	res, err := r.db.ExecContext(ctx, `UPDATE reports SET image_path = $1 WHERE id = $2`, imagePath, id)
	if err != nil {
		return fmt.Errorf("report repository: update image %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("report repository: update image %w", err)
	}
	if affected == 0 {
		return ErrReportNotFound
	}

	return nil
}

// AttachProofAndResolve в одной транзакции прикрепляет фото устранения и
// переводит заявку из from в resolved. Либо происходит и то и другое,
// либо ничего.
func (r *ReportRepository) AttachProofAndResolve(ctx context.Context, id uuid.UUID, from, imagePath string) error {
	return common.WithTransaction(ctx, r.db, func(tx *sqlx.Tx) error {
		res, err := tx.ExecContext(ctx, `UPDATE reports SET image_path = $1 WHERE id = $2`, imagePath, id)
		if err != nil {
			return fmt.Errorf("report repository: attach proof %w", err)
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("report repository: attach proof %w", err)
		}
		if affected == 0 {
			return ErrReportNotFound
		}

		res, err = tx.ExecContext(ctx, `
			UPDATE reports
			SET status = $1, resolved_at = NOW()
			WHERE id = $2 AND status = $3
		`, models.StatusResolved, id, from)
		if err != nil {
			return fmt.Errorf("report repository: resolve %w", err)
		}
		affected, err = res.RowsAffected()
		if err != nil {
			return fmt.Errorf("report repository: resolve %w", err)
		}
		if affected == 0 {
			return ErrStatusConflict
		}

		return nil
	})
}

// statsRow — сырой результат агрегирующего запроса.
type statsRow struct {
	Total          int             `db:"total"`
	Resolved       int             `db:"resolved"`
	InProgress     int             `db:"in_progress"`
	UniqueCitizens int             `db:"unique_citizens"`
	AvgHours       sql.NullFloat64 `db:"avg_hours"`
}

// ReportStats — агрегаты по заявкам в числовом виде. Среднее время
// устранения считается только по решённым заявкам как resolved_at - created_at.
type ReportStats struct {
	Total          int
	Resolved       int
	InProgress     int
	UniqueCitizens int
	// AvgResolutionHours валидно только при HasResolved.
	AvgResolutionHours float64
	HasResolved        bool
}

// Stats сканирует таблицу reports и возвращает агрегаты одним запросом.
func (r *ReportRepository) Stats(ctx context.Context) (*ReportStats, error) {
	var row statsRow
	query := `
		SELECT COUNT(*) AS total,
		       COUNT(*) FILTER (WHERE status = 'resolved') AS resolved,
		       COUNT(*) FILTER (WHERE status = 'in_progress') AS in_progress,
		       COUNT(DISTINCT reporter_id) AS unique_citizens,
		       EXTRACT(EPOCH FROM AVG(resolved_at - created_at)
		               FILTER (WHERE status = 'resolved' AND resolved_at IS NOT NULL)) / 3600 AS avg_hours
		FROM reports
	`
	if err := r.db.GetContext(ctx, &row, query); err != nil {
		return nil, fmt.Errorf("report repository: stats %w", err)
	}

	stats := &ReportStats{
		Total:          row.Total,
		Resolved:       row.Resolved,
		InProgress:     row.InProgress,
		UniqueCitizens: row.UniqueCitizens,
	}
	if row.AvgHours.Valid {
		stats.AvgResolutionHours = row.AvgHours.Float64
		stats.HasResolved = true
	}

	return stats, nil
}

// Count возвращает количество заявок. Используется посевом данных.
func (r *ReportRepository) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM reports`); err != nil {
		return 0, fmt.Errorf("report repository: count %w", err)
	}
	return count, nil
}

// SeedReport вставляет посевную заявку с заданным статусом и временем
// создания. Обходит жизненный цикл, поэтому доступен только посеву.
func (r *ReportRepository) SeedReport(ctx context.Context, report *models.Report, status string, createdAt time.Time) error {
	var resolvedAt *time.Time
	if status == models.StatusResolved {
		now := time.Now()
		resolvedAt = &now
	}

	query := `
		INSERT INTO reports (type, severity, description, location, status, reporter_id, created_at, resolved_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, status, created_at
	`
	if err := r.db.QueryRowxContext(
		ctx, query,
		report.Type, report.Severity, report.Description, report.Location,
		status, report.ReporterID, createdAt, resolvedAt,
	).Scan(&report.ID, &report.Status, &report.CreatedAt); err != nil {
		return fmt.Errorf("report repository: seed %w", err)
	}

	return nil
}
