package ds

// Типы тарифов
const (
	TariffFree   = "free"
	TariffHourly = "hourly"
	TariffDaily  = "daily"
	TariffVIP    = "vip"
)

// 2. Таблица тарифов (правила тарификации по паркингу, только справочник)
type Tariff struct {
	ID           uint    `gorm:"primaryKey"`
	ParkingLotID uint    `gorm:"not null;index"`
	Name         string  `gorm:"type:varchar(100);not null"`
	Type         string  `gorm:"type:varchar(20);not null"` // free, hourly, daily, vip
	PricePerHour float64 `gorm:"type:decimal(10,2);default:0"`
	PricePerDay  float64 `gorm:"type:decimal(10,2);default:0"`
	MinHours     int     `gorm:"type:int;default:0"` // минимально тарифицируемые часы
	MaxHours     *int    `gorm:"default:null"`       // верхняя граница, null = без ограничения
	FreeMinutes  int     `gorm:"type:int;default:0"` // бесплатный период с момента приёма

	// Флаги по умолчанию: не более одного тарифа на паркинг с каждым флагом,
	// уникальность обеспечивает справочник тарифов, не ядро.
	IsDefaultForResidents bool `gorm:"type:boolean;default:false;not null"`
	IsDefaultForGuests    bool `gorm:"type:boolean;default:false;not null"`

	IsActive bool `gorm:"type:boolean;default:true;not null"`
}
