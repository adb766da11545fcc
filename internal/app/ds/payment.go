package ds

import "time"

// Способы оплаты
const (
	PaymentCash      = "cash"
	PaymentCard      = "card"
	PaymentOnline    = "online"
	PaymentTransfer  = "transfer"
	PaymentClientApp = "client_app"
)

// ValidPaymentMethod проверяет способ оплаты.
func ValidPaymentMethod(method string) bool {
	switch method {
	case PaymentCash, PaymentCard, PaymentOnline, PaymentTransfer, PaymentClientApp:
		return true
	}
	return false
}

// 3. Таблица платежей (одна запись = один платёж по сессии)
type PaymentRecord struct {
	ID        uint      `gorm:"primaryKey"`
	SessionID uint      `gorm:"not null;index"`
	Method    string    `gorm:"type:varchar(20);not null"`
	Amount    float64   `gorm:"type:decimal(12,2);not null"` // всегда > 0
	Reference string    `gorm:"type:varchar(100)"`           // внешний идентификатор платежа
	CreatedAt time.Time `gorm:"not null"`
}
