package billing

import (
	"fmt"
	"math"
	"time"

	"github.com/nikita-666666/valet-parking-app-sub000/internal/app/ds"
)

// CostDetail — результат расчёта стоимости парковки.
type CostDetail struct {
	BillableHours int     `json:"billable_hours"`
	TotalCost     float64 `json:"total_cost"`
	Breakdown     string  `json:"breakdown"`
}

// Calculate считает стоимость сессии по тарифу. Чистая функция: один и тот
// же вход даёт один и тот же результат, для незавершённой сессии стоимость
// не убывает с ростом now.
//
// Конец тарифицируемого периода — updated_at для завершённой сессии,
// иначе now (до завершения стоимость является живой оценкой).
// VIP-тарифы считаются почасово и игнорируют бесплатные минуты.
func Calculate(session *ds.Session, tariff *ds.Tariff, now time.Time) CostDetail {
	if session.HasSubscription {
		return CostDetail{Breakdown: "абонемент покрывает парковку"}
	}
	if tariff == nil {
		return CostDetail{Breakdown: "тариф не назначен"}
	}

	end := now
	if session.Status == ds.StatusCompleted {
		end = session.UpdatedAt
	}

	minutes := end.Sub(session.CreatedAt).Minutes()
	if minutes < 0 {
		minutes = 0
	}

	// Бесплатный период вычитается до округления, VIP его не получает
	if tariff.Type != ds.TariffVIP && tariff.FreeMinutes > 0 {
		minutes -= float64(tariff.FreeMinutes)
		if minutes < 0 {
			minutes = 0
		}
	}

	hours := int(math.Ceil(minutes / 60))
	if hours < tariff.MinHours {
		hours = tariff.MinHours
	}
	if tariff.MaxHours != nil && hours > *tariff.MaxHours {
		hours = *tariff.MaxHours
	}

	var cost float64
	var breakdown string
	switch tariff.Type {
	case ds.TariffFree:
		breakdown = "бесплатный тариф"
	case ds.TariffHourly:
		cost = float64(hours) * tariff.PricePerHour
		breakdown = fmt.Sprintf("%d ч x %.2f/ч", hours, tariff.PricePerHour)
	case ds.TariffDaily:
		days := int(math.Ceil(float64(hours) / 24))
		cost = float64(days) * tariff.PricePerDay
		breakdown = fmt.Sprintf("%d сут x %.2f/сут", days, tariff.PricePerDay)
	case ds.TariffVIP:
		cost = float64(hours) * tariff.PricePerHour
		breakdown = fmt.Sprintf("VIP: %d ч x %.2f/ч", hours, tariff.PricePerHour)
	default:
		breakdown = fmt.Sprintf("неизвестный тип тарифа %q", tariff.Type)
	}

	return CostDetail{
		BillableHours: hours,
		TotalCost:     roundMoney(cost),
		Breakdown:     breakdown,
	}
}

// roundMoney округляет до копеек, половина вверх.
func roundMoney(v float64) float64 {
	return math.Floor(v*100+0.5) / 100
}
