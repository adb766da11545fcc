package main

import (
	"log"

	"github.com/nikita-666666/valet-parking-app-sub000/internal/api"
)

// @title Valet Parking API
// @version 1.0
// @description Сервис управления сессиями обслуживания валет-паркинга

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

func main() {
	log.Println("App start")
	api.StartServer()
	log.Println("App terminated")
}
