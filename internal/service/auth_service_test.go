package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/ignatzorin/civic-reports-backend/internal/models"
	"github.com/ignatzorin/civic-reports-backend/internal/pkg/apperror"
	"github.com/ignatzorin/civic-reports-backend/internal/repository"
)

// mockUserRepository реализует CitizenRepository для тестов.
type mockUserRepository struct {
	byUsername map[string]*models.User
}

func newMockUserRepository() *mockUserRepository {
	return &mockUserRepository{byUsername: make(map[string]*models.User)}
}

func (m *mockUserRepository) Create(ctx context.Context, user *models.User) error {
	if _, ok := m.byUsername[user.Username]; ok {
		return repository.ErrUsernameTaken
	}
	user.ID = uuid.New()
	user.CreatedAt = time.Now()
	m.byUsername[user.Username] = user
	return nil
}

func (m *mockUserRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	if user, ok := m.byUsername[username]; ok {
		return user, nil
	}
	return nil, repository.ErrUserNotFound
}

// mockAuthorityRepository реализует AuthorityCredentialRepository для тестов.
type mockAuthorityRepository struct {
	byUsername map[string]*models.Authority
}

func newMockAuthorityRepository() *mockAuthorityRepository {
	return &mockAuthorityRepository{byUsername: make(map[string]*models.Authority)}
}

func (m *mockAuthorityRepository) Create(ctx context.Context, authority *models.Authority) error {
	if _, ok := m.byUsername[authority.Username]; ok {
		return repository.ErrUsernameTaken
	}
	authority.ID = uuid.New()
	authority.CreatedAt = time.Now()
	m.byUsername[authority.Username] = authority
	return nil
}

func (m *mockAuthorityRepository) GetByUsername(ctx context.Context, username string) (*models.Authority, error) {
	if authority, ok := m.byUsername[username]; ok {
		return authority, nil
	}
	return nil, repository.ErrAuthorityNotFound
}

func newTestAuthService() (*AuthService, *mockUserRepository, *mockAuthorityRepository) {
	users := newMockUserRepository()
	authorities := newMockAuthorityRepository()
	tokens := NewTokenManager("test-secret", time.Hour)
	return NewAuthService(users, authorities, tokens), users, authorities
}

func TestAuthService_RegisterAndLoginCitizen(t *testing.T) {
	service, users, _ := newTestAuthService()
	ctx := context.Background()

	res, err := service.RegisterCitizen(ctx, "ivan", "password123", "")
	if err != nil {
		t.Fatalf("регистрация вернула ошибку: %v", err)
	}
	if res.Token == "" {
		t.Fatalf("ожидался токен после регистрации")
	}
	if res.Principal.Role != models.RoleUser {
		t.Fatalf("роль по умолчанию должна быть user, получили %q", res.Principal.Role)
	}

	stored := users.byUsername["ivan"]
	if stored == nil {
		t.Fatalf("пользователь должен быть сохранён")
	}
	if stored.PasswordHash == "password123" {
		t.Fatalf("пароль не должен храниться открытым текстом")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("password123")); err != nil {
		t.Fatalf("хэш пароля не совпадает с оригиналом: %v", err)
	}

	loginRes, err := service.LoginCitizen(ctx, "ivan", "password123")
	if err != nil {
		t.Fatalf("вход вернул ошибку: %v", err)
	}
	if loginRes.Token == "" {
		t.Fatalf("ожидался токен после входа")
	}
	if loginRes.Principal.ID != stored.ID {
		t.Fatalf("ID принципала не совпал")
	}
}

func TestAuthService_RegisterCitizenDuplicate(t *testing.T) {
	service, _, _ := newTestAuthService()
	ctx := context.Background()

	if _, err := service.RegisterCitizen(ctx, "ivan", "password123", ""); err != nil {
		t.Fatalf("первая регистрация вернула ошибку: %v", err)
	}

	_, err := service.RegisterCitizen(ctx, "ivan", "another-pass", "")
	if err == nil {
		t.Fatalf("повторная регистрация должна вернуть ошибку")
	}
	if !apperror.IsConflict(err) {
		t.Fatalf("ожидался конфликт, получили: %v", err)
	}
}

func TestAuthService_RegisterCitizenExplicitAuthorityRole(t *testing.T) {
	service, _, _ := newTestAuthService()
	ctx := context.Background()

	res, err := service.RegisterCitizen(ctx, "inspector", "password123", models.RoleAuthority)
	if err != nil {
		t.Fatalf("регистрация вернула ошибку: %v", err)
	}
	if res.Principal.Role != models.RoleAuthority {
		t.Fatalf("явно запрошенная роль authority должна сохраниться, получили %q", res.Principal.Role)
	}

	// Любое другое значение роли схлопывается в user.
	res, err = service.RegisterCitizen(ctx, "someone", "password123", "admin")
	if err != nil {
		t.Fatalf("регистрация вернула ошибку: %v", err)
	}
	if res.Principal.Role != models.RoleUser {
		t.Fatalf("неизвестная роль должна схлопнуться в user, получили %q", res.Principal.Role)
	}
}

func TestAuthService_LoginCitizenWrongPassword(t *testing.T) {
	service, _, _ := newTestAuthService()
	ctx := context.Background()

	if _, err := service.RegisterCitizen(ctx, "ivan", "password123", ""); err != nil {
		t.Fatalf("регистрация вернула ошибку: %v", err)
	}

	_, err := service.LoginCitizen(ctx, "ivan", "wrong-password")
	if err == nil {
		t.Fatalf("вход с неверным паролем должен вернуть ошибку")
	}

	// Неизвестное имя возвращает ту же самую ошибку.
	_, err2 := service.LoginCitizen(ctx, "nobody", "password123")
	if err2 == nil {
		t.Fatalf("вход с неизвестным именем должен вернуть ошибку")
	}
	if err.Error() != err2.Error() {
		t.Fatalf("ошибки для неверного пароля и неизвестного имени должны совпадать: %q != %q", err, err2)
	}
}

func TestAuthService_ValidationErrors(t *testing.T) {
	service, _, _ := newTestAuthService()
	ctx := context.Background()

	if _, err := service.RegisterCitizen(ctx, "ab", "password123", ""); !apperror.IsValidation(err) {
		t.Fatalf("короткое имя должно дать ошибку валидации, получили: %v", err)
	}
	if _, err := service.RegisterCitizen(ctx, "ivan", "123", ""); !apperror.IsValidation(err) {
		t.Fatalf("короткий пароль должен дать ошибку валидации, получили: %v", err)
	}
	if _, err := service.RegisterCitizen(ctx, "иван", "password123", ""); !apperror.IsValidation(err) {
		t.Fatalf("недопустимые символы в имени должны дать ошибку валидации, получили: %v", err)
	}
}

func TestAuthService_AuthorityTableIsSeparate(t *testing.T) {
	service, _, _ := newTestAuthService()
	ctx := context.Background()

	res, err := service.RegisterAuthority(ctx, "sanitation_dept", "secret123")
	if err != nil {
		t.Fatalf("регистрация органа власти вернула ошибку: %v", err)
	}
	if res.Principal.Role != models.RoleAuthority {
		t.Fatalf("роль органа власти всегда authority, получили %q", res.Principal.Role)
	}

	// Одно и то же имя в таблице граждан не конфликтует с таблицей органов.
	if _, err := service.RegisterCitizen(ctx, "sanitation_dept", "other-pass", ""); err != nil {
		t.Fatalf("имя из таблицы органов не должно блокировать таблицу граждан: %v", err)
	}

	// Вход через гражданский путь проверяет только таблицу граждан.
	loginRes, err := service.LoginAuthority(ctx, "sanitation_dept", "secret123")
	if err != nil {
		t.Fatalf("вход органа власти вернул ошибку: %v", err)
	}
	if loginRes.Token == "" {
		t.Fatalf("ожидался токен")
	}

	if _, err := service.LoginAuthority(ctx, "sanitation_dept", "other-pass"); err == nil {
		t.Fatalf("пароль гражданской записи не должен подходить к таблице органов")
	}
}
