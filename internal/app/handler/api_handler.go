package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/nikita-666666/valet-parking-app-sub000/internal/app/billing"
	"github.com/nikita-666666/valet-parking-app-sub000/internal/app/ds"
	"github.com/nikita-666666/valet-parking-app-sub000/internal/app/dto"
	"github.com/nikita-666666/valet-parking-app-sub000/internal/app/lifecycle"
	"github.com/nikita-666666/valet-parking-app-sub000/internal/app/repository"
	"github.com/nikita-666666/valet-parking-app-sub000/internal/app/returnflow"
	"github.com/nikita-666666/valet-parking-app-sub000/internal/app/role"
	"github.com/nikita-666666/valet-parking-app-sub000/internal/app/storage"
)

// APIHandler содержит обработчики для REST API
type APIHandler struct {
	Repository  *repository.Repository
	MinIOClient *storage.MinIOClient
	Lifecycle   *lifecycle.Manager
	Ledger      *billing.Ledger
	Protocol    *returnflow.Protocol
	AuthHandler *AuthHandler
}

func NewAPIHandler(r *repository.Repository, minioClient *storage.MinIOClient, lc *lifecycle.Manager, ledger *billing.Ledger, protocol *returnflow.Protocol, authHandler *AuthHandler) *APIHandler {
	return &APIHandler{
		Repository:  r,
		MinIOClient: minioClient,
		Lifecycle:   lc,
		Ledger:      ledger,
		Protocol:    protocol,
		AuthHandler: authHandler,
	}
}

// Получение текущего пользователя из контекста
func (h *APIHandler) getUserFromContext(c *gin.Context) (uint, role.Role, error) {
	userID, exists := c.Get("userID")
	if !exists {
		logrus.Warn("userID not found in context")
		return 0, role.Client, ds.GuardFailed("пользователь не авторизован")
	}

	userRole, _ := c.Get("userRole")
	r, _ := userRole.(role.Role)

	id, ok := userID.(uint)
	if !ok {
		logrus.Errorf("getUserFromContext: invalid userID type: %T", userID)
		return 0, r, ds.GuardFailed("некорректный идентификатор пользователя")
	}

	return id, r, nil
}

// ============ Вспомогательные функции ============

func (h *APIHandler) errorResponse(c *gin.Context, statusCode int, message string) {
	c.JSON(statusCode, dto.ErrorResponse{
		Status:  "error",
		Message: message,
	})
}

// domainError транслирует классификацию ошибки в HTTP статус:
// GuardFailed/InvalidAmount - 400, NotFound - 404,
// ConflictingTransition/OverpaymentRejected - 409, Transient - 502.
func (h *APIHandler) domainError(c *gin.Context, err error) {
	kind := ds.KindOf(err)
	statusCode := http.StatusInternalServerError
	message := err.Error()

	switch kind {
	case ds.KindGuardFailed, ds.KindInvalidAmount:
		statusCode = http.StatusBadRequest
	case ds.KindNotFound:
		statusCode = http.StatusNotFound
	case ds.KindConflictingTransition, ds.KindOverpaymentRejected:
		statusCode = http.StatusConflict
	case ds.KindTransient:
		statusCode = http.StatusBadGateway
	}
	if de, ok := err.(*ds.DomainError); ok {
		message = de.Message
	}

	c.JSON(statusCode, dto.ErrorResponse{
		Status:  "error",
		Kind:    string(kind),
		Message: message,
	})
}

func (h *APIHandler) successResponse(c *gin.Context, statusCode int, message string, data interface{}) {
	response := dto.SuccessResponse{
		Status:  "success",
		Message: message,
	}
	if data != nil {
		response.Data = data
	}
	c.JSON(statusCode, response)
}

// toSessionResponse преобразует модель сессии в DTO
func toSessionResponse(s *ds.Session, withPhotos bool) dto.SessionResponse {
	resp := dto.SessionResponse{
		ID:               s.ID,
		ClientCardNumber: s.ClientCardNumber,
		CarNumber:        s.CarNumber,
		CarModel:         s.CarModel,
		CarColor:         s.CarColor,
		ClientName:       s.ClientName,
		ClientPhone:      s.ClientPhone,
		HasSubscription:  s.HasSubscription,
		Status:           string(s.Status),
		StatusLabel:      s.Status.Label(),
		StatusColor:      s.Status.Color(),
		CreatedAt:        s.CreatedAt,
		UpdatedAt:        s.UpdatedAt,
		ParkingSpot:      s.ParkingSpot,
		ParkingCard:      s.ParkingCard,
		TariffID:         s.TariffID,
		CalculatedCost:   s.CalculatedCost,
		PaidAmount:       s.PaidAmount,
		PaymentMethod:    s.PaymentMethod,
		PaymentDate:      s.PaymentDate,
		EmployeeID:       s.EmployeeID,
	}
	if withPhotos {
		resp.Photos = make([]dto.PhotoResponse, len(s.Photos))
		for i := range s.Photos {
			resp.Photos[i] = toPhotoResponse(&s.Photos[i])
		}
	}
	return resp
}

func toPhotoResponse(p *ds.SessionPhoto) dto.PhotoResponse {
	return dto.PhotoResponse{
		ID:          p.ID,
		Stage:       string(p.Stage),
		URL:         p.URL,
		Filename:    p.Filename,
		Size:        p.Size,
		ContentType: p.ContentType,
		CreatedAt:   p.CreatedAt,
	}
}

// parseSessionID достаёт id сессии из параметра пути
func parseSessionID(c *gin.Context) (uint, bool) {
	idStr := c.Param("id")
	id, err := strconv.ParseUint(idStr, 10, 32)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}

// ============ ДОМЕН СЕССИИ ============

// CreateSession создает сессию обслуживания (приём автомобиля)
// @Summary Создание сессии
// @Description Создаёт сессию в статусе created, абонемент ищется по номеру автомобиля
// @Tags Sessions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.CreateSessionRequest true "Данные приёма"
// @Success 201 {object} dto.SessionResponse
// @Failure 400 {object} dto.ErrorResponse
// @Router /api/sessions [post]
func (h *APIHandler) CreateSession(c *gin.Context) {
	var req dto.CreateSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.errorResponse(c, http.StatusBadRequest, "Неверные данные: "+err.Error())
		return
	}

	session, err := h.Lifecycle.CreateSession(lifecycle.CreateSessionInput{
		ClientCardNumber: req.ClientCardNumber,
		CarNumber:        req.CarNumber,
		CarModel:         req.CarModel,
		CarColor:         req.CarColor,
		ClientName:       req.ClientName,
		ClientPhone:      req.ClientPhone,
		TariffID:         req.TariffID,
	})
	if err != nil {
		logrus.Error("Error creating session: ", err)
		h.domainError(c, err)
		return
	}

	c.JSON(http.StatusCreated, toSessionResponse(session, false))
}

// GetSessions получает список сессий
// @Summary Список сессий
// @Description Возвращает сессии с фильтрацией по статусу и датам создания
// @Tags Sessions
// @Produce json
// @Security BearerAuth
// @Param status query string false "Фильтр по статусу"
// @Param date_from query string false "Дата начала (формат: 2006-01-02)"
// @Param date_to query string false "Дата окончания (формат: 2006-01-02)"
// @Success 200 {object} dto.SessionListResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /api/sessions [get]
func (h *APIHandler) GetSessions(c *gin.Context) {
	status := c.Query("status")
	dateFromStr := c.Query("date_from")
	dateToStr := c.Query("date_to")

	var dateFrom, dateTo *time.Time
	if dateFromStr != "" {
		if parsed, err := time.Parse("2006-01-02", dateFromStr); err == nil {
			dateFrom = &parsed
		}
	}
	if dateToStr != "" {
		if parsed, err := time.Parse("2006-01-02", dateToStr); err == nil {
			dateTo = &parsed
		}
	}

	sessions, err := h.Repository.ListSessions(status, dateFrom, dateTo)
	if err != nil {
		logrus.Error("Error getting sessions: ", err)
		h.errorResponse(c, http.StatusInternalServerError, "Ошибка получения сессий")
		return
	}

	dtoSessions := make([]dto.SessionResponse, len(sessions))
	for i := range sessions {
		dtoSessions[i] = toSessionResponse(&sessions[i], false)
	}

	c.JSON(http.StatusOK, dto.SessionListResponse{
		Sessions: dtoSessions,
		Total:    len(dtoSessions),
	})
}

// GetSession получает одну сессию
// @Summary Получение сессии по ID
// @Description Возвращает сессию с фотографиями
// @Tags Sessions
// @Produce json
// @Security BearerAuth
// @Param id path int true "ID сессии"
// @Success 200 {object} dto.SessionResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /api/sessions/{id} [get]
func (h *APIHandler) GetSession(c *gin.Context) {
	id, ok := parseSessionID(c)
	if !ok {
		h.errorResponse(c, http.StatusBadRequest, "Неверный ID сессии")
		return
	}

	session, err := h.Lifecycle.GetSession(id)
	if err != nil {
		h.domainError(c, err)
		return
	}

	c.JSON(http.StatusOK, toSessionResponse(session, true))
}

// TransitionSession выполняет переход сессии в новый статус
// @Summary Переход сессии в новый статус
// @Description Проверяет гварды перехода и применяет мутацию атомарно
// @Tags Sessions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "ID сессии"
// @Param request body dto.TransitionRequest true "Целевой статус и данные перехода"
// @Success 200 {object} dto.SessionResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Failure 409 {object} dto.ErrorResponse
// @Router /api/sessions/{id}/status [put]
func (h *APIHandler) TransitionSession(c *gin.Context) {
	id, ok := parseSessionID(c)
	if !ok {
		h.errorResponse(c, http.StatusBadRequest, "Неверный ID сессии")
		return
	}

	var req dto.TransitionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.errorResponse(c, http.StatusBadRequest, "Неверные данные: "+err.Error())
		return
	}

	// Переход выполняется от имени авторизованного сотрудника,
	// если employee_id не задан явно
	employeeID := req.EmployeeID
	if employeeID == nil {
		if userID, userRole, err := h.getUserFromContext(c); err == nil && userRole != role.Client {
			employeeID = &userID
		}
	}

	session, err := h.Lifecycle.Transition(id, ds.SessionStatus(req.Status), lifecycle.TransitionPayload{
		EmployeeID:  employeeID,
		Note:        req.Note,
		ParkingSpot: req.ParkingSpot,
		ParkingCard: req.ParkingCard,
		TariffID:    req.TariffID,
	})
	if err != nil {
		logrus.Warnf("transition of session %d to %s rejected: %v", id, req.Status, err)
		h.domainError(c, err)
		return
	}

	c.JSON(http.StatusOK, toSessionResponse(session, false))
}

// CancelSession отменяет сессию
// @Summary Отмена сессии
// @Description Отмена доступна из любого нетерминального статуса и необратима
// @Tags Sessions
// @Produce json
// @Security BearerAuth
// @Param id path int true "ID сессии"
// @Success 200 {object} dto.SessionResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /api/sessions/{id} [delete]
func (h *APIHandler) CancelSession(c *gin.Context) {
	id, ok := parseSessionID(c)
	if !ok {
		h.errorResponse(c, http.StatusBadRequest, "Неверный ID сессии")
		return
	}

	var employeeID *uint
	if userID, userRole, err := h.getUserFromContext(c); err == nil && userRole != role.Client {
		employeeID = &userID
	}

	session, err := h.Lifecycle.Cancel(id, employeeID, "отмена оператором")
	if err != nil {
		logrus.Warnf("cancel of session %d rejected: %v", id, err)
		h.domainError(c, err)
		return
	}

	c.JSON(http.StatusOK, toSessionResponse(session, false))
}

// AssignEmployee назначает сотрудника на запрос подачи
// @Summary Назначение сотрудника
// @Description Переводит return_requested в return_accepted, цель проверяется по справочнику
// @Tags Sessions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "ID сессии"
// @Param request body dto.AssignRequest true "ID сотрудника"
// @Success 200 {object} dto.SessionResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Failure 409 {object} dto.ErrorResponse
// @Router /api/sessions/{id}/assign [put]
func (h *APIHandler) AssignEmployee(c *gin.Context) {
	id, ok := parseSessionID(c)
	if !ok {
		h.errorResponse(c, http.StatusBadRequest, "Неверный ID сессии")
		return
	}

	var req dto.AssignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.errorResponse(c, http.StatusBadRequest, "Неверные данные: "+err.Error())
		return
	}

	session, err := h.Lifecycle.AssignEmployee(id, req.EmployeeID)
	if err != nil {
		logrus.Warnf("assignment of employee %d to session %d rejected: %v", req.EmployeeID, id, err)
		h.domainError(c, err)
		return
	}

	c.JSON(http.StatusOK, toSessionResponse(session, false))
}

// GetStatusLog возвращает журнал переходов сессии
// @Summary Журнал переходов
// @Description Записи в порядке добавления, журнал неизменяем
// @Tags Sessions
// @Produce json
// @Security BearerAuth
// @Param id path int true "ID сессии"
// @Success 200 {object} dto.SuccessResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /api/sessions/{id}/log [get]
func (h *APIHandler) GetStatusLog(c *gin.Context) {
	id, ok := parseSessionID(c)
	if !ok {
		h.errorResponse(c, http.StatusBadRequest, "Неверный ID сессии")
		return
	}

	entries, err := h.Lifecycle.StatusLog(id)
	if err != nil {
		h.domainError(c, err)
		return
	}

	dtoEntries := make([]dto.StatusLogEntryResponse, len(entries))
	for i, e := range entries {
		dtoEntries[i] = dto.StatusLogEntryResponse{
			FromStatus: string(e.FromStatus),
			ToStatus:   string(e.ToStatus),
			EmployeeID: e.EmployeeID,
			Note:       e.Note,
			CreatedAt:  e.CreatedAt,
		}
	}

	h.successResponse(c, http.StatusOK, "", dtoEntries)
}

// GetSessionCost возвращает стоимость сессии (кэш по id сессии)
// @Summary Стоимость сессии
// @Description Живая оценка до завершения, замороженная сумма после
// @Tags Sessions
// @Produce json
// @Security BearerAuth
// @Param id path int true "ID сессии"
// @Success 200 {object} billing.CostDetail
// @Failure 404 {object} dto.ErrorResponse
// @Router /api/sessions/{id}/cost [get]
func (h *APIHandler) GetSessionCost(c *gin.Context) {
	id, ok := parseSessionID(c)
	if !ok {
		h.errorResponse(c, http.StatusBadRequest, "Неверный ID сессии")
		return
	}

	detail, err := h.Lifecycle.SessionCost(id)
	if err != nil {
		h.domainError(c, err)
		return
	}

	c.JSON(http.StatusOK, detail)
}
