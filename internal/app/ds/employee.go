package ds

// 6. Таблица сотрудников (справочник, используется для проверки назначения)
type Employee struct {
	ID       uint   `gorm:"primaryKey"`
	FullName string `gorm:"type:varchar(100);not null"`
	Phone    string `gorm:"type:varchar(30)"`
	Role     string `gorm:"type:varchar(20);not null"` // valet, manager
	IsActive bool   `gorm:"type:boolean;default:true;not null"`
}
