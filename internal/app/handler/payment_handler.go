package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/nikita-666666/valet-parking-app-sub000/internal/app/dto"
)

// RecordPayment регистрирует платёж по сессии
// @Summary Регистрация платежа
// @Description Суммирует частичные оплаты, переплата сверх рассчитанной стоимости отклоняется целиком
// @Tags Payments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "ID сессии"
// @Param request body dto.RecordPaymentRequest true "Способ, сумма и референс платежа"
// @Success 201 {object} dto.PaymentSummaryResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Failure 409 {object} dto.ErrorResponse
// @Router /api/sessions/{id}/payments [post]
func (h *APIHandler) RecordPayment(c *gin.Context) {
	id, ok := parseSessionID(c)
	if !ok {
		h.errorResponse(c, http.StatusBadRequest, "Неверный ID сессии")
		return
	}

	var req dto.RecordPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.errorResponse(c, http.StatusBadRequest, "Неверные данные: "+err.Error())
		return
	}

	record, err := h.Ledger.RecordPayment(id, req.Method, req.Amount, req.Reference)
	if err != nil {
		logrus.Warnf("payment of %.2f for session %d rejected: %v", req.Amount, id, err)
		h.domainError(c, err)
		return
	}

	summary, err := h.Ledger.Summary(id)
	if err != nil {
		h.domainError(c, err)
		return
	}

	logrus.Infof("payment %d recorded for session %d: %.2f via %s", record.ID, id, record.Amount, record.Method)
	c.JSON(http.StatusCreated, dto.PaymentSummaryResponse{
		CalculatedCost:  summary.CalculatedCost,
		PaidAmount:      summary.PaidAmount,
		RemainingAmount: summary.RemainingAmount,
	})
}

// GetPaymentSummary возвращает сводку оплат по сессии
// @Summary Сводка оплат
// @Description Рассчитанная стоимость, оплаченная сумма и остаток
// @Tags Payments
// @Produce json
// @Security BearerAuth
// @Param id path int true "ID сессии"
// @Success 200 {object} dto.PaymentSummaryResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /api/sessions/{id}/payments [get]
func (h *APIHandler) GetPaymentSummary(c *gin.Context) {
	id, ok := parseSessionID(c)
	if !ok {
		h.errorResponse(c, http.StatusBadRequest, "Неверный ID сессии")
		return
	}

	summary, err := h.Ledger.Summary(id)
	if err != nil {
		h.domainError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.PaymentSummaryResponse{
		CalculatedCost:  summary.CalculatedCost,
		PaidAmount:      summary.PaidAmount,
		RemainingAmount: summary.RemainingAmount,
	})
}
