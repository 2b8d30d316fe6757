// Package interval содержит арифметику оплаченных периодов подписки.
package interval

import (
	"time"

	"github.com/fademebets/fademebets-backend/internal/domain"
	"github.com/fademebets/fademebets-backend/internal/models"
)

// PeriodEnd возвращает дату окончания периода, начатого в момент from:
// monthly добавляет один месяц, quarterly — три, yearly — год.
// Для плана вне каталога возвращается ErrUnknownPlan.
func PeriodEnd(from time.Time, plan models.Plan) (time.Time, error) {
	switch plan {
	case models.PlanMonthly:
		return from.AddDate(0, 1, 0), nil
	case models.PlanQuarterly:
		return from.AddDate(0, 3, 0), nil
	case models.PlanYearly:
		return from.AddDate(1, 0, 0), nil
	default:
		return time.Time{}, domain.ErrUnknownPlan
	}
}
