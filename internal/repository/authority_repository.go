package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/ignatzorin/civic-reports-backend/internal/models"
	"github.com/ignatzorin/civic-reports-backend/internal/repository/common"
)

// ErrAuthorityNotFound возвращается, когда запись органа власти не найдена.
var ErrAuthorityNotFound = errors.New("authority not found")

// AuthorityRepository отвечает за таблицу authorities. Таблица независима
// от users: имена пользователей в двух таблицах могут совпадать.
type AuthorityRepository struct {
	db *sqlx.DB
}

// NewAuthorityRepository создаёт экземпляр репозитория.
func NewAuthorityRepository(db *sqlx.DB) *AuthorityRepository {
	return &AuthorityRepository{db: db}
}

// Create создаёт новый орган власти.
func (r *AuthorityRepository) Create(ctx context.Context, authority *models.Authority) error {
	query := `
		INSERT INTO authorities (username, password_hash)
		VALUES ($1, $2)
		RETURNING id, created_at
	`

	if err := r.db.QueryRowxContext(
		ctx, query,
		authority.Username, authority.PasswordHash,
	).Scan(&authority.ID, &authority.CreatedAt); err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return ErrUsernameTaken
		}
		return fmt.Errorf("authority repository: create %w", err)
	}

	return nil
}

// GetByUsername возвращает орган власти по имени пользователя.
func (r *AuthorityRepository) GetByUsername(ctx context.Context, username string) (*models.Authority, error) {
	return common.GetByField[models.Authority](ctx, r.db, "authorities", "username", username, ErrAuthorityNotFound)
}

// GetByID возвращает орган власти по идентификатору.
func (r *AuthorityRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Authority, error) {
	return common.GetByField[models.Authority](ctx, r.db, "authorities", "id", id, ErrAuthorityNotFound)
}
