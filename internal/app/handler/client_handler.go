package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/nikita-666666/valet-parking-app-sub000/internal/app/dto"
)

// GetClientSession возвращает сессию по номеру карточки клиента
// @Summary Сессия по карточке
// @Description Публичная точка для опроса клиентским приложением, без мутаций возвращает идентичный снимок
// @Tags Client
// @Produce json
// @Param card path string true "Номер карточки клиента"
// @Success 200 {object} dto.SessionResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /api/client/sessions/{card} [get]
func (h *APIHandler) GetClientSession(c *gin.Context) {
	card := c.Param("card")
	if card == "" {
		h.errorResponse(c, http.StatusBadRequest, "Номер карточки не указан")
		return
	}

	session, err := h.Lifecycle.GetSessionByCard(card)
	if err != nil {
		h.domainError(c, err)
		return
	}

	c.JSON(http.StatusOK, toSessionResponse(session, true))
}

// RequestReturn запрашивает подачу автомобиля
// @Summary Запрос подачи автомобиля
// @Description Для неоплаченной сессии без абонемента возвращает суммы к оплате без перехода
// @Tags Client
// @Produce json
// @Param card path string true "Номер карточки клиента"
// @Success 200 {object} returnflow.ReturnResult
// @Failure 400 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Failure 409 {object} dto.ErrorResponse
// @Router /api/client/sessions/{card}/request-return [post]
func (h *APIHandler) RequestReturn(c *gin.Context) {
	card := c.Param("card")
	if card == "" {
		h.errorResponse(c, http.StatusBadRequest, "Номер карточки не указан")
		return
	}

	result, err := h.Protocol.RequestReturn(card)
	if err != nil {
		logrus.Warnf("return request for card %s rejected: %v", card, err)
		h.domainError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// ClientPayment регистрирует платёж из клиентского приложения
// @Summary Оплата по карточке
// @Description Платёж привязывается к сессии по номеру карточки, способ фиксируется как client_app
// @Tags Client
// @Accept json
// @Produce json
// @Param card path string true "Номер карточки клиента"
// @Param request body dto.RecordPaymentRequest true "Сумма и референс платежа"
// @Success 201 {object} dto.PaymentSummaryResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Failure 409 {object} dto.ErrorResponse
// @Router /api/client/sessions/{card}/payments [post]
func (h *APIHandler) ClientPayment(c *gin.Context) {
	card := c.Param("card")
	if card == "" {
		h.errorResponse(c, http.StatusBadRequest, "Номер карточки не указан")
		return
	}

	var req dto.RecordPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.errorResponse(c, http.StatusBadRequest, "Неверные данные: "+err.Error())
		return
	}

	session, err := h.Lifecycle.GetSessionByCard(card)
	if err != nil {
		h.domainError(c, err)
		return
	}

	if _, err := h.Ledger.RecordPayment(session.ID, req.Method, req.Amount, req.Reference); err != nil {
		logrus.Warnf("client payment of %.2f for card %s rejected: %v", req.Amount, card, err)
		h.domainError(c, err)
		return
	}

	summary, err := h.Ledger.Summary(session.ID)
	if err != nil {
		h.domainError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.PaymentSummaryResponse{
		CalculatedCost:  summary.CalculatedCost,
		PaidAmount:      summary.PaidAmount,
		RemainingAmount: summary.RemainingAmount,
	})
}
