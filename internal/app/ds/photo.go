package ds

import "time"

// PhotoStage — стадия, к которой относится фотография автомобиля.
type PhotoStage string

const (
	PhotoIntake    PhotoStage = "intake"     // приём автомобиля
	PhotoParking   PhotoStage = "parking"    // парковка
	PhotoPreReturn PhotoStage = "pre_return" // перед подачей
	PhotoDelivery  PhotoStage = "delivery"   // выдача клиенту
)

// ValidPhotoStage проверяет, что стадия известна.
func ValidPhotoStage(stage PhotoStage) bool {
	switch stage {
	case PhotoIntake, PhotoParking, PhotoPreReturn, PhotoDelivery:
		return true
	}
	return false
}

// GatedBy возвращает статус, переход в который требует фотографий этой
// стадии. После прохождения гейта удаление фотографий стадии запрещено.
func (s PhotoStage) GatedBy() SessionStatus {
	switch s {
	case PhotoIntake:
		return StatusCarAccepted
	case PhotoParking:
		return StatusParked
	case PhotoPreReturn:
		return StatusReturnStarted
	case PhotoDelivery:
		return StatusReturnDelivering
	}
	return ""
}

// MinPhotos — минимальное количество фотографий стадии для прохождения гейта.
var MinPhotos = map[PhotoStage]int{
	PhotoIntake:    4,
	PhotoParking:   2,
	PhotoPreReturn: 2,
	PhotoDelivery:  1,
}

// 4. Таблица фотографий сессии (ссылки на объекты в MinIO)
type SessionPhoto struct {
	ID          uint       `gorm:"primaryKey"`
	SessionID   uint       `gorm:"not null;index"`
	Stage       PhotoStage `gorm:"type:varchar(20);not null;index"`
	URL         string     `gorm:"type:varchar(500);not null"`
	Filename    string     `gorm:"type:varchar(255);not null"`
	Size        int64      `gorm:"type:bigint;default:0"`
	ContentType string     `gorm:"type:varchar(50)"`
	CreatedAt   time.Time  `gorm:"not null"`
}
