package models

import (
	"github.com/fademebets/fademebets-backend/internal/domain"
)

// Plan имя тарифного плана из фиксированного каталога.
type Plan string

// Каталог состоит из трех планов; цены и интервалы фиксированы
// и не управляются через API.
const (
	PlanMonthly   Plan = "monthly"
	PlanQuarterly Plan = "quarterly"
	PlanYearly    Plan = "yearly"
)

// Price описывает цену плана для создания checkout-сессии:
// сумма в минимальных единицах валюты, интервал списания и его кратность.
type Price struct {
	ProductName   string
	Currency      string
	UnitAmount    int
	Interval      string
	IntervalCount int
}

var planCatalog = map[Plan]Price{
	PlanMonthly: {
		ProductName: "FadeMeBets Monthly Subscription",
		Currency:    "usd",
		UnitAmount:  299,
		Interval:    "month",
	},
	PlanQuarterly: {
		ProductName:   "FadeMeBets Quarterly Subscription",
		Currency:      "usd",
		UnitAmount:    799,
		Interval:      "month",
		IntervalCount: 3,
	},
	PlanYearly: {
		ProductName: "FadeMeBets Yearly Subscription",
		Currency:    "usd",
		UnitAmount:  2999,
		Interval:    "year",
	},
}

// PriceFor возвращает цену плана или ErrUnknownPlan, если план не в каталоге.
func PriceFor(plan Plan) (Price, error) {
	price, ok := planCatalog[plan]
	if !ok {
		return Price{}, domain.ErrUnknownPlan
	}
	return price, nil
}
