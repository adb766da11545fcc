package ds

import "time"

// 1. Таблица сессий обслуживания (одна сессия = один автомобиль у валета)
type Session struct {
	ID               uint          `gorm:"primaryKey"`
	ClientCardNumber string        `gorm:"type:varchar(50);uniqueIndex;not null"` // номер карточки клиента
	CarNumber        string        `gorm:"type:varchar(20);not null"`
	CarModel         string        `gorm:"type:varchar(100)"`
	CarColor         string        `gorm:"type:varchar(50)"`
	ClientName       string        `gorm:"type:varchar(100)"`
	ClientPhone      string        `gorm:"type:varchar(30)"`
	HasSubscription  bool          `gorm:"type:boolean;default:false;not null"` // абонемент: парковка не тарифицируется
	Status           SessionStatus `gorm:"type:varchar(30);not null;index"`
	CreatedAt        time.Time     `gorm:"not null"`
	UpdatedAt        time.Time     `gorm:"not null"` // обновляется при каждой смене статуса

	// Данные парковки (обязательны до статуса parked)
	ParkingSpot string `gorm:"type:varchar(20)"`
	ParkingCard string `gorm:"type:varchar(50)"`

	// Тарификация. CalculatedCost — снимок на момент последнего расчёта,
	// не пересчитывается при последующем изменении тарифа.
	TariffID       *uint    `gorm:"default:null"`
	CalculatedCost *float64 `gorm:"type:decimal(12,2)"`

	// Оплата: агрегат и метаданные последнего платежа.
	// Полная история — в Payments.
	PaidAmount       float64    `gorm:"type:decimal(12,2);default:0;not null"`
	PaymentMethod    string     `gorm:"type:varchar(20)"`
	PaymentDate      *time.Time `gorm:"default:null"`
	PaymentReference string     `gorm:"type:varchar(100)"`

	// Назначение сотрудников
	EmployeeID        *uint `gorm:"default:null"` // текущий ответственный
	RequestAcceptedBy *uint `gorm:"default:null"` // кто принял запрос на подачу

	Tariff     *Tariff            `gorm:"foreignKey:TariffID"`
	Photos     []SessionPhoto     `gorm:"foreignKey:SessionID"`
	Payments   []PaymentRecord    `gorm:"foreignKey:SessionID"`
	StatusLogs []SessionStatusLog `gorm:"foreignKey:SessionID"`
}

// PhotosByStage возвращает фотографии одной стадии в порядке добавления.
func (s *Session) PhotosByStage(stage PhotoStage) []SessionPhoto {
	var photos []SessionPhoto
	for _, p := range s.Photos {
		if p.Stage == stage {
			photos = append(photos, p)
		}
	}
	return photos
}

// CountPhotos возвращает количество фотографий стадии.
func (s *Session) CountPhotos(stage PhotoStage) int {
	count := 0
	for _, p := range s.Photos {
		if p.Stage == stage {
			count++
		}
	}
	return count
}

// RemainingAmount — остаток к оплате по последнему снимку стоимости.
func (s *Session) RemainingAmount() float64 {
	if s.CalculatedCost == nil {
		return 0
	}
	remaining := *s.CalculatedCost - s.PaidAmount
	if remaining < 0 {
		return 0
	}
	return remaining
}
