package repository

import (
	"errors"

	"gorm.io/gorm"

	"github.com/nikita-666666/valet-parking-app-sub000/internal/app/ds"
)

// Методы для справочника тарифов (только чтение со стороны ядра)

// TariffByID возвращает тариф по id.
func (r *Repository) TariffByID(id uint) (*ds.Tariff, error) {
	var tariff ds.Tariff
	err := r.db.First(&tariff, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ds.NotFound("тариф %d не найден", id)
		}
		return nil, err
	}
	return &tariff, nil
}

// DefaultGuestTariff возвращает гостевой тариф по умолчанию.
func (r *Repository) DefaultGuestTariff() (*ds.Tariff, error) {
	var tariff ds.Tariff
	err := r.db.
		Where("is_default_for_guests = ? AND is_active = ?", true, true).
		First(&tariff).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ds.NotFound("гостевой тариф по умолчанию не настроен")
		}
		return nil, err
	}
	return &tariff, nil
}

// ActiveTariffs возвращает активные тарифы паркинга.
func (r *Repository) ActiveTariffs(parkingLotID uint) ([]ds.Tariff, error) {
	query := r.db.Where("is_active = ?", true).Order("id ASC")
	if parkingLotID != 0 {
		query = query.Where("parking_lot_id = ?", parkingLotID)
	}

	var tariffs []ds.Tariff
	err := query.Find(&tariffs).Error
	return tariffs, err
}
