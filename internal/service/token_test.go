package service

import (
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/ignatzorin/civic-reports-backend/internal/models"
)

func TestTokenManager_GenerateAndParse(t *testing.T) {
	manager := NewTokenManager("test-secret", time.Hour)

	subject := models.Subject{
		ID:       uuid.New(),
		Username: "ivan",
		Role:     models.RoleUser,
		Kind:     models.PrincipalCitizen,
	}

	token, exp, err := manager.Generate(subject)
	if err != nil {
		t.Fatalf("Generate вернул ошибку: %v", err)
	}
	if token == "" {
		t.Fatalf("ожидался непустой токен")
	}
	if time.Until(exp) < 55*time.Minute {
		t.Fatalf("срок действия токена меньше ожидаемого: %v", exp)
	}

	parsed, err := manager.Parse(token)
	if err != nil {
		t.Fatalf("Parse вернул ошибку: %v", err)
	}
	if parsed.ID != subject.ID {
		t.Errorf("ID субъекта не совпал: %v != %v", parsed.ID, subject.ID)
	}
	if parsed.Username != subject.Username {
		t.Errorf("username не совпал: %q != %q", parsed.Username, subject.Username)
	}
	if parsed.Role != models.RoleUser {
		t.Errorf("role не совпала: %q", parsed.Role)
	}
	if parsed.Kind != models.PrincipalCitizen {
		t.Errorf("kind не совпал: %q", parsed.Kind)
	}
}

func TestTokenManager_RejectsWrongSecret(t *testing.T) {
	issuer := NewTokenManager("secret-one", time.Hour)
	verifier := NewTokenManager("secret-two", time.Hour)

	token, _, err := issuer.Generate(models.Subject{
		ID:       uuid.New(),
		Username: "ivan",
		Role:     models.RoleUser,
		Kind:     models.PrincipalCitizen,
	})
	if err != nil {
		t.Fatalf("Generate вернул ошибку: %v", err)
	}

	if _, err := verifier.Parse(token); err == nil {
		t.Fatalf("токен с чужой подписью должен быть отклонён")
	}
}

func TestTokenManager_RejectsExpired(t *testing.T) {
	manager := NewTokenManager("test-secret", -time.Minute)

	token, _, err := manager.Generate(models.Subject{
		ID:       uuid.New(),
		Username: "ivan",
		Role:     models.RoleUser,
		Kind:     models.PrincipalCitizen,
	})
	if err != nil {
		t.Fatalf("Generate вернул ошибку: %v", err)
	}

	if _, err := manager.Parse(token); err == nil {
		t.Fatalf("просроченный токен должен быть отклонён")
	}
}

func TestTokenManager_RejectsGarbage(t *testing.T) {
	manager := NewTokenManager("test-secret", time.Hour)
	if _, err := manager.Parse("not-a-jwt"); err == nil {
		t.Fatalf("мусорная строка должна быть отклонена")
	}
}
