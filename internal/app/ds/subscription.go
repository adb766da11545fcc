package ds

import "time"

// 7. Таблица абонементов (поиск по номеру автомобиля при приёме)
type Subscription struct {
	ID          uint       `gorm:"primaryKey"`
	CarNumber   string     `gorm:"type:varchar(20);uniqueIndex;not null"`
	ClientName  string     `gorm:"type:varchar(100)"`
	ClientPhone string     `gorm:"type:varchar(30)"`
	IsActive    bool       `gorm:"type:boolean;default:true;not null"`
	ExpiresAt   *time.Time `gorm:"default:null"`
	CreatedAt   time.Time  `gorm:"not null"`
}

// Covers возвращает true, если абонемент действует на момент t.
func (s *Subscription) Covers(t time.Time) bool {
	if !s.IsActive {
		return false
	}
	if s.ExpiresAt != nil && s.ExpiresAt.Before(t) {
		return false
	}
	return true
}
