package ds

import "time"

// 5. Журнал смены статусов (append-only, записи не редактируются и не удаляются)
type SessionStatusLog struct {
	ID         uint          `gorm:"primaryKey"`
	SessionID  uint          `gorm:"not null;index"`
	FromStatus SessionStatus `gorm:"type:varchar(30);not null"`
	ToStatus   SessionStatus `gorm:"type:varchar(30);not null"`
	EmployeeID *uint         `gorm:"default:null"` // кто выполнил переход
	Note       string        `gorm:"type:varchar(255)"`
	CreatedAt  time.Time     `gorm:"not null"`
}
