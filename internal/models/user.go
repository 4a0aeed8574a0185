package models

import (
	"time"

	"github.com/google/uuid"
)

// Роли принципалов. Строка таблицы users несёт роль user или authority,
// строки таблицы authorities всегда имеют роль authority.
const (
	RoleUser      = "user"
	RoleAuthority = "authority"
)

// Виды принципалов: из какой таблицы учётных данных пришёл субъект.
// Таблицы независимы, имена пользователей в них могут совпадать.
const (
	PrincipalCitizen   = "citizen"
	PrincipalAuthority = "authority"
)

// User описывает гражданина (таблица users). Строка может нести роль
// authority, если она была явно запрошена при регистрации.
type User struct {
	ID           uuid.UUID `db:"id" json:"id"`
	Username     string    `db:"username" json:"username"`
	PasswordHash string    `db:"password_hash" json:"-"`
	Role         string    `db:"role" json:"role"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

// Authority описывает запись отдельной таблицы authorities.
type Authority struct {
	ID           uuid.UUID `db:"id" json:"id"`
	Username     string    `db:"username" json:"username"`
	PasswordHash string    `db:"password_hash" json:"-"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

// PublicPrincipal — публичное представление принципала в ответах API.
type PublicPrincipal struct {
	ID       uuid.UUID `json:"id"`
	Username string    `json:"username"`
	Role     string    `json:"role"`
}

// Subject — проверенный субъект запроса, извлечённый из токена.
// Kind указывает таблицу учётных данных, подтвердившую личность.
type Subject struct {
	ID       uuid.UUID
	Username string
	Role     string
	Kind     string
}

// IsAuthority сообщает, имеет ли субъект права органа власти.
func (s Subject) IsAuthority() bool {
	return s.Role == RoleAuthority
}

// IsCitizen сообщает, является ли субъект строкой таблицы граждан.
// Только такие субъекты могут быть авторами заявок.
func (s Subject) IsCitizen() bool {
	return s.Kind == PrincipalCitizen
}
