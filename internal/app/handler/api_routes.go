package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/nikita-666666/valet-parking-app-sub000/internal/app/middleware"
	"github.com/nikita-666666/valet-parking-app-sub000/internal/app/role"
)

// RegisterAPIRoutes регистрирует все REST API маршруты с авторизацией
func (h *APIHandler) RegisterAPIRoutes(router *gin.Engine, authMiddleware *middleware.AuthMiddleware) {
	// REST API маршруты
	api := router.Group("/api")

	// ============ Сессии обслуживания (Sessions) - для сотрудников ============
	sessions := api.Group("/sessions")
	{
		// Валет и администратор: операционный цикл
		sessions.POST("", authMiddleware.WithAuthCheck(role.Valet, role.Admin), h.CreateSession)                  // POST приём автомобиля
		sessions.GET("", authMiddleware.WithAuthCheck(role.Valet, role.Admin), h.GetSessions)                     // GET список с фильтрацией
		sessions.GET("/:id", authMiddleware.WithAuthCheck(role.Valet, role.Admin), h.GetSession)                  // GET одна сессия
		sessions.PUT("/:id/status", authMiddleware.WithAuthCheck(role.Valet, role.Admin), h.TransitionSession)    // PUT переход статуса
		sessions.PUT("/:id/assign", authMiddleware.WithAuthCheck(role.Valet, role.Admin), h.AssignEmployee)       // PUT назначение сотрудника
		sessions.GET("/:id/log", authMiddleware.WithAuthCheck(role.Valet, role.Admin), h.GetStatusLog)            // GET журнал переходов
		sessions.GET("/:id/cost", authMiddleware.WithAuthCheck(role.Valet, role.Admin), h.GetSessionCost)         // GET стоимость

		// Фотофиксация стадий
		sessions.POST("/:id/photos", authMiddleware.WithAuthCheck(role.Valet, role.Admin), h.UploadPhoto)                // POST загрузка фото
		sessions.GET("/:id/photos", authMiddleware.WithAuthCheck(role.Valet, role.Admin), h.GetSessionPhotos)            // GET фото сессии
		sessions.DELETE("/:id/photos/:photo_id", authMiddleware.WithAuthCheck(role.Valet, role.Admin), h.DeletePhoto)    // DELETE до прохождения гейта

		// Платежи
		sessions.POST("/:id/payments", authMiddleware.WithAuthCheck(role.Valet, role.Admin), h.RecordPayment)     // POST регистрация платежа
		sessions.GET("/:id/payments", authMiddleware.WithAuthCheck(role.Valet, role.Admin), h.GetPaymentSummary)  // GET сводка оплат

		// Только для администраторов
		sessions.DELETE("/:id", authMiddleware.WithAuthCheck(role.Admin), h.CancelSession) // DELETE отмена сессии
	}

	// ============ Клиентский сценарий (по номеру карточки, без авторизации) ============
	client := api.Group("/client")
	{
		client.GET("/sessions/:card", h.GetClientSession)              // GET опрос состояния
		client.POST("/sessions/:card/request-return", h.RequestReturn) // POST запрос подачи
		client.POST("/sessions/:card/payments", h.ClientPayment)       // POST оплата из приложения
	}

	// ============ Справочники ============
	api.GET("/tariffs", authMiddleware.WithAuthCheck(role.Valet, role.Admin), h.GetTariffs)
	api.GET("/employees", authMiddleware.WithAuthCheck(role.Valet, role.Admin), h.GetEmployees)
	api.GET("/subscriptions/:car_number", authMiddleware.WithAuthCheck(role.Valet, role.Admin), h.LookupSubscription)

	// ============ Аутентификация (публичные эндпоинты) ============
	auth := api.Group("/auth")
	{
		// Публичные эндпоинты
		auth.POST("/register", h.AuthHandler.RegisterUser) // POST регистрация
		auth.POST("/login", h.AuthHandler.LoginUser)       // POST аутентификация JWT

		// Защищенные эндпоинты
		auth.GET("/profile", authMiddleware.WithAuthCheck(role.Client, role.Valet, role.Admin), h.AuthHandler.GetUserProfile)
		auth.PUT("/profile", authMiddleware.WithAuthCheck(role.Client, role.Valet, role.Admin), h.AuthHandler.UpdateUserProfile)
		auth.POST("/logout", authMiddleware.WithAuthCheck(role.Client, role.Valet, role.Admin), h.AuthHandler.LogoutUser)
	}

	// Ping эндпоинт для проверки
	router.GET("/ping", h.Ping)
}

// Ping проверяет работоспособность API
// @Summary Проверка работоспособности
// @Description Возвращает простой ответ для проверки работы сервера
// @Tags Health
// @Produce json
// @Success 200 {object} map[string]string
// @Router /ping [get]
func (h *APIHandler) Ping(ctx *gin.Context) {
	ctx.JSON(200, gin.H{"message": "pong"})
}
