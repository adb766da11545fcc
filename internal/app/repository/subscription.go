package repository

import (
	"errors"

	"gorm.io/gorm"

	"github.com/nikita-666666/valet-parking-app-sub000/internal/app/ds"
)

// Методы для абонементов (только чтение по номеру автомобиля)

// SubscriptionByCar возвращает абонемент по номеру автомобиля.
func (r *Repository) SubscriptionByCar(carNumber string) (*ds.Subscription, error) {
	var subscription ds.Subscription
	err := r.db.Where("car_number = ?", carNumber).First(&subscription).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ds.NotFound("абонемент для автомобиля %s не найден", carNumber)
		}
		return nil, err
	}
	return &subscription, nil
}
