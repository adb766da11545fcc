package main

import (
	"fmt"
	"log"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/nikita-666666/valet-parking-app-sub000/internal/app/ds"
)

func main() {
	dsn := "host=localhost user=postgres password=password dbname=valet_db port=5432 sslmode=disable TimeZone=Europe/Moscow"
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}

	var sessions []ds.Session
	err = db.Order("id").Find(&sessions).Error
	if err != nil {
		log.Fatal("Failed to get sessions:", err)
	}

	fmt.Println("Sessions in database:")
	for _, s := range sessions {
		cost := "NULL"
		if s.CalculatedCost != nil {
			cost = fmt.Sprintf("%.2f", *s.CalculatedCost)
		}
		fmt.Printf("ID: %d, Card: %s, Car: %s, Status: %s, Cost: %s, Paid: %.2f\n",
			s.ID, s.ClientCardNumber, s.CarNumber, s.Status, cost, s.PaidAmount)
	}
}
