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

// ErrUserNotFound возвращается, когда запись гражданина не найдена.
var ErrUserNotFound = errors.New("user not found")

// ErrUsernameTaken возвращается при вставке дубликата имени пользователя.
var ErrUsernameTaken = errors.New("username already taken")

// uniqueViolation - код ошибки PostgreSQL для нарушения уникальности.
const uniqueViolation = "23505"

// UserRepository отвечает за таблицу users (граждане).
type UserRepository struct {
	db *sqlx.DB
}

// NewUserRepository создаёт экземпляр репозитория.
func NewUserRepository(db *sqlx.DB) *UserRepository {
	return &UserRepository{db: db}
}

// Create создаёт нового гражданина. Записи никогда не обновляются и не
// удаляются, поэтому других мутаций у репозитория нет.
func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	query := `
		INSERT INTO users (username, password_hash, role)
		VALUES ($1, $2, $3)
		RETURNING id, created_at
	`

	if err := r.db.QueryRowxContext(
		ctx, query,
		user.Username, user.PasswordHash, user.Role,
	).Scan(&user.ID, &user.CreatedAt); err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return ErrUsernameTaken
		}
		return fmt.Errorf("user repository: create %w", err)
	}

	return nil
}

// GetByUsername возвращает гражданина по имени пользователя.
func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	return common.GetByField[models.User](ctx, r.db, "users", "username", username, ErrUserNotFound)
}

// GetByID возвращает гражданина по идентификатору.
func (r *UserRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	return common.GetByField[models.User](ctx, r.db, "users", "id", id, ErrUserNotFound)
}
