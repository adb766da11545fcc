package ds

// 8. Таблица пользователей системы (сотрудники и клиентское приложение)
type User struct {
	ID       uint   `gorm:"primaryKey"`
	Login    string `gorm:"type:varchar(50);unique;not null"`
	Password string `gorm:"type:varchar(255);not null"`
	Role     int    `gorm:"type:int;default:0;not null"` // 0 - client, 1 - valet, 2 - admin
	FullName string `gorm:"type:varchar(100)"`
	Phone    string `gorm:"type:varchar(30)"`
}
