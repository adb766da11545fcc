package main

import (
	"log"

	"github.com/joho/godotenv"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/nikita-666666/valet-parking-app-sub000/internal/app/ds"
	"github.com/nikita-666666/valet-parking-app-sub000/internal/app/dsn"
)

func main() {
	// Загрузка переменных окружения из .env файла
	_ = godotenv.Load()

	// Получение DSN строки подключения
	dsnStr := dsn.FromEnv()
	if dsnStr == "" {
		log.Fatal("DSN string is empty. Check your .env file")
	}

	// Подключение к базе данных
	db, err := gorm.Open(postgres.Open(dsnStr), &gorm.Config{})
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	log.Println("Connected to database successfully")

	// Миграция всех моделей
	err = db.AutoMigrate(
		&ds.User{},
		&ds.Session{},
		&ds.SessionPhoto{},
		&ds.SessionStatusLog{},
		&ds.PaymentRecord{},
		&ds.Tariff{},
		&ds.Employee{},
		&ds.Subscription{},
	)
	if err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}

	log.Println("Database migration completed successfully")

	seedTariffs(db)
	seedEmployees(db)
}

// seedTariffs создаёт базовые тарифы паркинга, если их еще нет
func seedTariffs(db *gorm.DB) {
	var count int64
	db.Model(&ds.Tariff{}).Count(&count)
	if count > 0 {
		log.Println("Tariffs already seeded, skipping")
		return
	}

	maxHours := 72
	tariffs := []ds.Tariff{
		{
			ParkingLotID:       1,
			Name:               "Гостевой почасовой",
			Type:               ds.TariffHourly,
			PricePerHour:       100,
			MinHours:           1,
			MaxHours:           &maxHours,
			FreeMinutes:        15,
			IsDefaultForGuests: true,
			IsActive:           true,
		},
		{
			ParkingLotID: 1,
			Name:         "Суточный",
			Type:         ds.TariffDaily,
			PricePerHour: 100,
			PricePerDay:  1500,
			MinHours:     1,
			FreeMinutes:  15,
			IsActive:     true,
		},
		{
			ParkingLotID:          1,
			Name:                  "Резидентский",
			Type:                  ds.TariffFree,
			IsDefaultForResidents: true,
			IsActive:              true,
		},
		{
			ParkingLotID: 1,
			Name:         "VIP",
			Type:         ds.TariffVIP,
			PricePerHour: 300,
			MinHours:     1,
			IsActive:     true,
		},
	}

	if err := db.Create(&tariffs).Error; err != nil {
		log.Fatalf("Failed to seed tariffs: %v", err)
	}
	log.Printf("Seeded %d tariffs", len(tariffs))
}

// seedEmployees создаёт тестовых сотрудников, если их еще нет
func seedEmployees(db *gorm.DB) {
	var count int64
	db.Model(&ds.Employee{}).Count(&count)
	if count > 0 {
		log.Println("Employees already seeded, skipping")
		return
	}

	employees := []ds.Employee{
		{FullName: "Иванов Иван", Phone: "+7 900 000-00-01", Role: "valet", IsActive: true},
		{FullName: "Петров Пётр", Phone: "+7 900 000-00-02", Role: "valet", IsActive: true},
		{FullName: "Сидорова Анна", Phone: "+7 900 000-00-03", Role: "manager", IsActive: true},
	}

	if err := db.Create(&employees).Error; err != nil {
		log.Fatalf("Failed to seed employees: %v", err)
	}
	log.Printf("Seeded %d employees", len(employees))
}
