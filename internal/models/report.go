package models

import (
	"time"

	"github.com/google/uuid"
)

// Типы санитарных заявок.
const (
	ReportTypeGarbage       = "garbage"
	ReportTypeDrainage      = "drainage"
	ReportTypeStagnantWater = "stagnant_water"
	ReportTypeOther         = "other"
)

// Серьёзность заявки. Если не указана при создании, используется medium.
const (
	SeverityLow      = "low"
	SeverityMedium   = "medium"
	SeverityHigh     = "high"
	SeverityCritical = "critical"
)

// Статусы жизненного цикла заявки.
const (
	StatusSubmitted  = "submitted"
	StatusInProgress = "in_progress"
	StatusResolved   = "resolved"
)

// ValidReportTypes — список валидных типов заявок.
var ValidReportTypes = map[string]struct{}{
	ReportTypeGarbage:       {},
	ReportTypeDrainage:      {},
	ReportTypeStagnantWater: {},
	ReportTypeOther:         {},
}

// ValidSeverities — список валидных уровней серьёзности.
var ValidSeverities = map[string]struct{}{
	SeverityLow:      {},
	SeverityMedium:   {},
	SeverityHigh:     {},
	SeverityCritical: {},
}

// ValidStatuses — список валидных статусов.
var ValidStatuses = map[string]struct{}{
	StatusSubmitted:  {},
	StatusInProgress: {},
	StatusResolved:   {},
}

// nextStatus задаёт единственный допустимый следующий шаг для каждого статуса.
// Жизненный цикл строго линейный: submitted -> in_progress -> resolved.
var nextStatus = map[string]string{
	StatusSubmitted:  StatusInProgress,
	StatusInProgress: StatusResolved,
}

// CanTransition сообщает, допустим ли переход заявки из статуса from в to.
// Пропуск шагов и движение назад запрещены, resolved — терминальный статус.
func CanTransition(from, to string) bool {
	return nextStatus[from] == to
}

// Report описывает заявку гражданина о санитарной проблеме.
// created_at выставляется один раз при создании и далее не меняется;
// resolved_at заполняется в момент перехода в resolved.
type Report struct {
	ID          uuid.UUID  `db:"id" json:"id"`
	Type        string     `db:"type" json:"type"`
	Severity    string     `db:"severity" json:"severity"`
	Description string     `db:"description" json:"description"`
	Location    string     `db:"location" json:"location"`
	Lat         *float64   `db:"lat" json:"lat"`
	Lng         *float64   `db:"lng" json:"lng"`
	ImagePath   *string    `db:"image_path" json:"image_path,omitempty"`
	Status      string     `db:"status" json:"status"`
	ReporterID  *uuid.UUID `db:"reporter_id" json:"reporter_id,omitempty"`
	// json-имя timestamp сохранено ради совместимости с фронтендом.
	CreatedAt  time.Time  `db:"created_at" json:"timestamp"`
	ResolvedAt *time.Time `db:"resolved_at" json:"resolved_at,omitempty"`
	// ReporterName подтягивается JOIN-ом при выборке, Anonymous для NULL.
	ReporterName string `db:"reporter_name" json:"reporter_name"`
}

// Stats — агрегированные счётчики по заявкам. Считаются сканированием
// таблицы reports, отдельно нигде не хранятся.
type Stats struct {
	TotalReports    int    `json:"totalReports"`
	ResolvedReports int    `json:"resolvedReports"`
	InProgress      int    `json:"inProgress"`
	UniqueCitizens  int    `json:"uniqueCitizens"`
	ResponseTime    string `json:"responseTime"`
}
