package lifecycle

import (
	"time"

	"github.com/nikita-666666/valet-parking-app-sub000/internal/app/billing"
	"github.com/nikita-666666/valet-parking-app-sub000/internal/app/ds"
)

// checkGuard проверяет предусловия перехода на кандидате — копии сессии с
// уже применёнными полями из payload, но до сохранения. Ошибка называет
// конкретное невыполненное условие; сессия при этом не изменяется.
func (m *Manager) checkGuard(candidate *ds.Session, target ds.SessionStatus, p TransitionPayload) error {
	switch target {
	case ds.StatusCarAccepted:
		if candidate.ClientCardNumber == "" {
			return ds.GuardFailed("не указан номер карточки клиента")
		}
		if candidate.CarNumber == "" {
			return ds.GuardFailed("не указан номер автомобиля")
		}
		if n := candidate.CountPhotos(ds.PhotoIntake); n < ds.MinPhotos[ds.PhotoIntake] {
			return ds.GuardFailed("для приёма нужно минимум %d фото, загружено %d",
				ds.MinPhotos[ds.PhotoIntake], n)
		}

	case ds.StatusEnRoute:
		// дополнительных условий нет

	case ds.StatusParked:
		if candidate.ParkingSpot == "" {
			return ds.GuardFailed("не указано парковочное место")
		}
		if candidate.ParkingCard == "" {
			return ds.GuardFailed("не указана парковочная карта")
		}
		if n := candidate.CountPhotos(ds.PhotoParking); n < ds.MinPhotos[ds.PhotoParking] {
			return ds.GuardFailed("для парковки нужно минимум %d фото, загружено %d",
				ds.MinPhotos[ds.PhotoParking], n)
		}

	case ds.StatusReturnRequested:
		if candidate.HasSubscription {
			return nil
		}
		// Стоимость считается на момент запроса, не из кэша
		cost, err := m.liveCost(candidate, m.now())
		if err != nil {
			return err
		}
		if candidate.PaidAmount+1e-9 < cost {
			return ds.GuardFailed("парковка не оплачена: внесено %.2f из %.2f",
				candidate.PaidAmount, cost)
		}

	case ds.StatusReturnAccepted:
		if p.EmployeeID == nil {
			return ds.GuardFailed("не указан сотрудник, принимающий запрос")
		}
		if candidate.RequestAcceptedBy != nil && *candidate.RequestAcceptedBy != *p.EmployeeID {
			return ds.GuardFailed("запрос уже принят другим сотрудником, переназначение не поддерживается")
		}

	case ds.StatusReturnStarted:
		if n := candidate.CountPhotos(ds.PhotoPreReturn); n < ds.MinPhotos[ds.PhotoPreReturn] {
			return ds.GuardFailed("перед подачей нужно минимум %d фото, загружено %d",
				ds.MinPhotos[ds.PhotoPreReturn], n)
		}

	case ds.StatusReturnDelivering:
		if n := candidate.CountPhotos(ds.PhotoDelivery); n < ds.MinPhotos[ds.PhotoDelivery] {
			return ds.GuardFailed("для выдачи нужно минимум %d фото, загружено %d",
				ds.MinPhotos[ds.PhotoDelivery], n)
		}

	case ds.StatusCompleted, ds.StatusCancelled:
		// дополнительных условий нет
	}
	return nil
}

// liveCost считает текущую стоимость кандидата. Без тарифа стоимость
// нулевая (автомобиль ещё не тарифицировался).
func (m *Manager) liveCost(candidate *ds.Session, now time.Time) (float64, error) {
	if candidate.TariffID == nil {
		return 0, nil
	}
	tariff, err := m.store.TariffByID(*candidate.TariffID)
	if err != nil {
		return 0, err
	}
	return billing.Calculate(candidate, tariff, now).TotalCost, nil
}
