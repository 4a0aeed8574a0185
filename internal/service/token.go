package service

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/ignatzorin/civic-reports-backend/internal/models"
)

// TokenManager отвечает за выпуск и проверку JWT. Токен — единственная
// форма сессии: состояние на сервере не хранится, отозвать токен до
// истечения срока нельзя, logout — это забывание токена клиентом.
type TokenManager struct {
	secret []byte
	ttl    time.Duration
}

// NewTokenManager создаёт менеджер токенов.
func NewTokenManager(secret string, ttl time.Duration) *TokenManager {
	return &TokenManager{
		secret: []byte(secret),
		ttl:    ttl,
	}
}

// Generate выпускает токен для субъекта. Клейм typ фиксирует таблицу
// учётных данных, подтвердившую личность.
func (m *TokenManager) Generate(subject models.Subject) (string, time.Time, error) {
	now := time.Now()
	exp := now.Add(m.ttl)

	claims := jwt.MapClaims{
		"sub":      subject.ID.String(),
		"username": subject.Username,
		"role":     subject.Role,
		"typ":      subject.Kind,
		"iat":      now.Unix(),
		"exp":      exp.Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(m.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("token manager: не удалось подписать токен: %w", err)
	}

	return signed, exp, nil
}

// Parse проверяет подпись и срок действия токена и возвращает субъект.
func (m *TokenManager) Parse(raw string) (models.Subject, error) {
	parsed, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("неожиданный метод подписи: %v", t.Header["alg"])
		}
		return m.secret, nil
	})
	if err != nil {
		return models.Subject{}, err
	}
	if !parsed.Valid {
		return models.Subject{}, jwt.ErrTokenInvalidClaims
	}

	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return models.Subject{}, jwt.ErrTokenInvalidClaims
	}

	sub, ok := claims["sub"].(string)
	if !ok {
		return models.Subject{}, jwt.ErrTokenInvalidClaims
	}

	id, err := uuid.Parse(sub)
	if err != nil {
		return models.Subject{}, jwt.ErrTokenInvalidClaims
	}

	username, _ := claims["username"].(string)
	role, _ := claims["role"].(string)
	kind, _ := claims["typ"].(string)

	return models.Subject{
		ID:       id,
		Username: username,
		Role:     role,
		Kind:     kind,
	}, nil
}
