package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/nikita-666666/valet-parking-app-sub000/internal/app/ds"
	"github.com/nikita-666666/valet-parking-app-sub000/internal/app/dto"
)

// GetTariffs возвращает активные тарифы паркинга
// @Summary Список тарифов
// @Tags Catalog
// @Produce json
// @Security BearerAuth
// @Param parking_lot_id query int false "ID паркинга (по умолчанию 1)"
// @Success 200 {object} dto.SuccessResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /api/tariffs [get]
func (h *APIHandler) GetTariffs(c *gin.Context) {
	parkingLotID := uint(1)
	if raw := c.Query("parking_lot_id"); raw != "" {
		if parsed, err := strconv.ParseUint(raw, 10, 32); err == nil && parsed > 0 {
			parkingLotID = uint(parsed)
		}
	}

	tariffs, err := h.Repository.ActiveTariffs(parkingLotID)
	if err != nil {
		logrus.Error("Error getting tariffs: ", err)
		h.errorResponse(c, http.StatusInternalServerError, "Ошибка получения тарифов")
		return
	}

	resp := make([]dto.TariffResponse, len(tariffs))
	for i, t := range tariffs {
		resp[i] = dto.TariffResponse{
			ID:           t.ID,
			ParkingLotID: t.ParkingLotID,
			Name:         t.Name,
			Type:         t.Type,
			PricePerHour: t.PricePerHour,
			PricePerDay:  t.PricePerDay,
			MinHours:     t.MinHours,
			MaxHours:     t.MaxHours,
			FreeMinutes:  t.FreeMinutes,
		}
	}
	h.successResponse(c, http.StatusOK, "", resp)
}

// GetEmployees возвращает активных сотрудников
// @Summary Список сотрудников
// @Description Справочник для назначения на запросы подачи
// @Tags Catalog
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.SuccessResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /api/employees [get]
func (h *APIHandler) GetEmployees(c *gin.Context) {
	employees, err := h.Repository.ActiveEmployees()
	if err != nil {
		logrus.Error("Error getting employees: ", err)
		h.errorResponse(c, http.StatusInternalServerError, "Ошибка получения сотрудников")
		return
	}

	resp := make([]dto.EmployeeResponse, len(employees))
	for i, e := range employees {
		resp[i] = dto.EmployeeResponse{
			ID:       e.ID,
			FullName: e.FullName,
			Phone:    e.Phone,
			Role:     e.Role,
		}
	}
	h.successResponse(c, http.StatusOK, "", resp)
}

// LookupSubscription проверяет абонемент по номеру автомобиля
// @Summary Проверка абонемента
// @Description Используется при приёме автомобиля для предзаполнения данных клиента
// @Tags Catalog
// @Produce json
// @Security BearerAuth
// @Param car_number path string true "Номер автомобиля"
// @Success 200 {object} dto.SubscriptionLookupResponse
// @Router /api/subscriptions/{car_number} [get]
func (h *APIHandler) LookupSubscription(c *gin.Context) {
	carNumber := c.Param("car_number")
	if carNumber == "" {
		h.errorResponse(c, http.StatusBadRequest, "Номер автомобиля не указан")
		return
	}

	sub, err := h.Repository.SubscriptionByCar(carNumber)
	if err != nil {
		if ds.IsKind(err, ds.KindNotFound) {
			c.JSON(http.StatusOK, dto.SubscriptionLookupResponse{Active: false})
			return
		}
		logrus.Error("Error looking up subscription: ", err)
		h.errorResponse(c, http.StatusInternalServerError, "Ошибка проверки абонемента")
		return
	}

	if !sub.Covers(time.Now()) {
		c.JSON(http.StatusOK, dto.SubscriptionLookupResponse{Active: false})
		return
	}

	c.JSON(http.StatusOK, dto.SubscriptionLookupResponse{
		Active:      true,
		ClientName:  sub.ClientName,
		ClientPhone: sub.ClientPhone,
	})
}
