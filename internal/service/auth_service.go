package service

import (
	"context"
	"errors"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/ignatzorin/civic-reports-backend/internal/models"
	"github.com/ignatzorin/civic-reports-backend/internal/pkg/apperror"
	"github.com/ignatzorin/civic-reports-backend/internal/repository"
	"github.com/ignatzorin/civic-reports-backend/internal/validation"
)

// CitizenRepository описывает зависимость AuthService от таблицы граждан.
type CitizenRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByUsername(ctx context.Context, username string) (*models.User, error)
}

// AuthorityCredentialRepository описывает зависимость от таблицы органов власти.
type AuthorityCredentialRepository interface {
	Create(ctx context.Context, authority *models.Authority) error
	GetByUsername(ctx context.Context, username string) (*models.Authority, error)
}

// AuthService инкапсулирует регистрацию и аутентификацию для обеих таблиц
// учётных данных. Путь выпуска токена один, различается только таблица,
// подтвердившая личность.
type AuthService struct {
	users       CitizenRepository
	authorities AuthorityCredentialRepository
	tokens      *TokenManager
}

// AuthResult возвращает итог регистрации или входа.
type AuthResult struct {
	Token     string
	ExpiresAt time.Time
	Principal models.PublicPrincipal
}

// dummyHash используется для выравнивания стоимости проверки пароля,
// когда пользователь не найден: сравнение хэша выполняется всегда.
var dummyHash, _ = bcrypt.GenerateFromPassword([]byte("not-a-real-password"), bcrypt.DefaultCost)

// NewAuthService создаёт сервис аутентификации.
func NewAuthService(users CitizenRepository, authorities AuthorityCredentialRepository, tokens *TokenManager) *AuthService {
	return &AuthService{
		users:       users,
		authorities: authorities,
		tokens:      tokens,
	}
}

// RegisterCitizen создаёт запись в таблице граждан. Роль authority
// присваивается только по явному запросу, любое другое значение
// схлопывается в user — так вела себя исходная система.
func (s *AuthService) RegisterCitizen(ctx context.Context, username, password, requestedRole string) (*AuthResult, error) {
	if err := validation.ValidateUsername(username); err != nil {
		return nil, apperror.New(apperror.ErrCodeValidation, err.Error())
	}
	if err := validation.ValidatePassword(password); err != nil {
		return nil, apperror.New(apperror.ErrCodeValidation, err.Error())
	}

	role := models.RoleUser
	if requestedRole == models.RoleAuthority {
		role = models.RoleAuthority
	}

	passHash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeStorage, "не удалось захешировать пароль")
	}

	user := &models.User{
		Username:     username,
		PasswordHash: string(passHash),
		Role:         role,
	}

	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrUsernameTaken) {
			return nil, apperror.ErrUsernameTaken
		}
		return nil, apperror.Wrap(err, apperror.ErrCodeStorage, "не удалось сохранить пользователя")
	}

	return s.issue(models.Subject{
		ID:       user.ID,
		Username: user.Username,
		Role:     user.Role,
		Kind:     models.PrincipalCitizen,
	})
}

// RegisterAuthority создаёт запись в отдельной таблице органов власти.
func (s *AuthService) RegisterAuthority(ctx context.Context, username, password string) (*AuthResult, error) {
	if err := validation.ValidateUsername(username); err != nil {
		return nil, apperror.New(apperror.ErrCodeValidation, err.Error())
	}
	if err := validation.ValidatePassword(password); err != nil {
		return nil, apperror.New(apperror.ErrCodeValidation, err.Error())
	}

	passHash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeStorage, "не удалось захешировать пароль")
	}

	authority := &models.Authority{
		Username:     username,
		PasswordHash: string(passHash),
	}

	if err := s.authorities.Create(ctx, authority); err != nil {
		if errors.Is(err, repository.ErrUsernameTaken) {
			return nil, apperror.ErrUsernameTaken
		}
		return nil, apperror.Wrap(err, apperror.ErrCodeStorage, "не удалось сохранить орган власти")
	}

	return s.issue(models.Subject{
		ID:       authority.ID,
		Username: authority.Username,
		Role:     models.RoleAuthority,
		Kind:     models.PrincipalAuthority,
	})
}

// LoginCitizen проверяет учётные данные по таблице граждан.
// Ошибка одна и та же для неизвестного имени и неверного пароля.
func (s *AuthService) LoginCitizen(ctx context.Context, username, password string) (*AuthResult, error) {
	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			// Сравниваем с фиктивным хэшем, чтобы стоимость ответа
			// не выдавала существование имени.
			_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(password))
			return nil, apperror.ErrInvalidCredentials
		}
		return nil, apperror.Wrap(err, apperror.ErrCodeStorage, "не удалось проверить учётные данные")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, apperror.ErrInvalidCredentials
	}

	return s.issue(models.Subject{
		ID:       user.ID,
		Username: user.Username,
		Role:     user.Role,
		Kind:     models.PrincipalCitizen,
	})
}

// LoginAuthority проверяет учётные данные по таблице органов власти.
func (s *AuthService) LoginAuthority(ctx context.Context, username, password string) (*AuthResult, error) {
	authority, err := s.authorities.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repository.ErrAuthorityNotFound) {
			_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(password))
			return nil, apperror.ErrInvalidCredentials
		}
		return nil, apperror.Wrap(err, apperror.ErrCodeStorage, "не удалось проверить учётные данные")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(authority.PasswordHash), []byte(password)); err != nil {
		return nil, apperror.ErrInvalidCredentials
	}

	return s.issue(models.Subject{
		ID:       authority.ID,
		Username: authority.Username,
		Role:     models.RoleAuthority,
		Kind:     models.PrincipalAuthority,
	})
}

// issue выпускает токен и собирает публичное представление принципала.
func (s *AuthService) issue(subject models.Subject) (*AuthResult, error) {
	token, exp, err := s.tokens.Generate(subject)
	if err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeStorage, "не удалось выпустить токен")
	}

	return &AuthResult{
		Token:     token,
		ExpiresAt: exp,
		Principal: models.PublicPrincipal{
			ID:       subject.ID,
			Username: subject.Username,
			Role:     subject.Role,
		},
	}, nil
}
