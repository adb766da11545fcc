package repository

import (
	"github.com/nikita-666666/valet-parking-app-sub000/internal/app/ds"
)

// Методы для платежей

// AppendPayment дописывает платёж. История платежей append-only.
func (r *Repository) AppendPayment(payment *ds.PaymentRecord) error {
	return r.db.Create(payment).Error
}

// PaymentsBySession возвращает платежи сессии в порядке добавления.
func (r *Repository) PaymentsBySession(sessionID uint) ([]ds.PaymentRecord, error) {
	var payments []ds.PaymentRecord
	err := r.db.
		Where("session_id = ?", sessionID).
		Order("created_at ASC, id ASC").
		Find(&payments).Error
	return payments, err
}
