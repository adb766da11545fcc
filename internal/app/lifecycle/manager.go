package lifecycle

import (
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/nikita-666666/valet-parking-app-sub000/internal/app/billing"
	"github.com/nikita-666666/valet-parking-app-sub000/internal/app/ds"
)

// Manager — state machine сессий. Единственный владелец Session: все
// мутации идут через него и сериализуются замком по id сессии. Разные
// сессии независимы, глобального замка нет.
type Manager struct {
	store Store
	costs *billing.CostCache
	locks sync.Map // map[uint]*sync.Mutex
	now   func() time.Time
}

func NewManager(store Store, costs *billing.CostCache) *Manager {
	return &Manager{
		store: store,
		costs: costs,
		now:   time.Now,
	}
}

// SetNow подменяет источник времени (для тестов).
func (m *Manager) SetNow(now func() time.Time) {
	m.now = now
}

// WithSessionLock выполняет fn под замком сессии. Через этот же замок
// проходят платежи (billing.Ledger).
func (m *Manager) WithSessionLock(id uint, fn func() error) error {
	lock, _ := m.locks.LoadOrStore(id, &sync.Mutex{})
	mu := lock.(*sync.Mutex)
	mu.Lock()
	defer mu.Unlock()
	return fn()
}

// CreateSessionInput — данные приёма автомобиля.
type CreateSessionInput struct {
	ClientCardNumber string
	CarNumber        string
	CarModel         string
	CarColor         string
	ClientName       string
	ClientPhone      string
	TariffID         *uint
}

// CreateSession создаёт сессию в статусе created. Абонемент ищется по
// номеру автомобиля и предзаполняет данные клиента.
func (m *Manager) CreateSession(input CreateSessionInput) (*ds.Session, error) {
	if input.ClientCardNumber == "" {
		return nil, ds.GuardFailed("не указан номер карточки клиента")
	}
	if input.CarNumber == "" {
		return nil, ds.GuardFailed("не указан номер автомобиля")
	}

	now := m.now()
	session := &ds.Session{
		ClientCardNumber: input.ClientCardNumber,
		CarNumber:        input.CarNumber,
		CarModel:         input.CarModel,
		CarColor:         input.CarColor,
		ClientName:       input.ClientName,
		ClientPhone:      input.ClientPhone,
		Status:           ds.StatusCreated,
		TariffID:         input.TariffID,
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	// Поиск абонемента по номеру автомобиля: предзаполнение и отмена
	// тарификации. Отсутствие абонемента ошибкой не является.
	sub, err := m.store.SubscriptionByCar(input.CarNumber)
	if err == nil && sub != nil && sub.Covers(now) {
		session.HasSubscription = true
		if session.ClientName == "" {
			session.ClientName = sub.ClientName
		}
		if session.ClientPhone == "" {
			session.ClientPhone = sub.ClientPhone
		}
	} else if err != nil && !ds.IsKind(err, ds.KindNotFound) {
		return nil, err
	}

	if err := m.store.CreateSession(session); err != nil {
		return nil, err
	}
	logrus.Infof("session %d created for car %s (card %s)", session.ID, session.CarNumber, session.ClientCardNumber)
	return session, nil
}

// TransitionPayload — данные, сопровождающие переход.
type TransitionPayload struct {
	// ExpectedStatus задаёт строгий CAS: переход выполняется только если
	// текущий статус совпадает, иначе ConflictingTransition.
	ExpectedStatus *ds.SessionStatus
	EmployeeID     *uint
	Note           string
	ParkingSpot    string
	ParkingCard    string
	TariffID       *uint
}

// Transition выполняет переход сессии в target. Гварды проверяются
// атомарно под замком сессии до применения мутации: при нарушении сессия
// не меняется. Конкурирующий переход, успевший раньше, даёт проигравшему
// ConflictingTransition.
func (m *Manager) Transition(sessionID uint, target ds.SessionStatus, p TransitionPayload) (*ds.Session, error) {
	if !target.IsValid() {
		return nil, ds.GuardFailed("неизвестный статус %q", target)
	}

	var result *ds.Session
	err := m.WithSessionLock(sessionID, func() error {
		session, err := m.store.SessionByID(sessionID)
		if err != nil {
			return err
		}

		if p.ExpectedStatus != nil && session.Status != *p.ExpectedStatus {
			return ds.ConflictingTransition("статус уже %s, ожидался %s", session.Status, *p.ExpectedStatus)
		}
		if session.Status == target {
			// конкурирующая запись уже применила этот переход
			return ds.ConflictingTransition("сессия уже в статусе %s", target)
		}
		if session.Status.IsTerminal() {
			return ds.GuardFailed("сессия в терминальном статусе %s", session.Status)
		}
		if !ds.CanTransition(session.Status, target) {
			return ds.GuardFailed("переход %s -> %s не допускается", session.Status, target)
		}

		// Гвард проверяется на кандидате: payload применён, но ничего
		// не сохранено
		candidate := *session
		m.applyPayload(&candidate, target, p)
		if err := m.checkGuard(&candidate, target, p); err != nil {
			return err
		}

		now := m.now()
		from := session.Status
		candidate.Status = target
		candidate.UpdatedAt = now

		// Снимок стоимости при парковке, запросе подачи и завершении
		if target == ds.StatusParked || target == ds.StatusReturnRequested || target == ds.StatusCompleted {
			if err := m.snapshotCost(&candidate, now); err != nil {
				return err
			}
		}

		if err := m.store.SaveSession(&candidate); err != nil {
			return err
		}
		logEntry := &ds.SessionStatusLog{
			SessionID:  sessionID,
			FromStatus: from,
			ToStatus:   target,
			EmployeeID: p.EmployeeID,
			Note:       p.Note,
			CreatedAt:  now,
		}
		if err := m.store.AppendStatusLog(logEntry); err != nil {
			return err
		}

		m.costs.Invalidate(sessionID)
		logrus.Infof("session %d: %s -> %s", sessionID, from, target)
		result = &candidate
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// applyPayload переносит поля payload на кандидата в зависимости от цели.
func (m *Manager) applyPayload(candidate *ds.Session, target ds.SessionStatus, p TransitionPayload) {
	switch target {
	case ds.StatusParked:
		if p.ParkingSpot != "" {
			candidate.ParkingSpot = p.ParkingSpot
		}
		if p.ParkingCard != "" {
			candidate.ParkingCard = p.ParkingCard
		}
		if p.TariffID != nil {
			candidate.TariffID = p.TariffID
		}
	case ds.StatusReturnAccepted:
		if p.EmployeeID != nil {
			candidate.RequestAcceptedBy = p.EmployeeID
			candidate.EmployeeID = p.EmployeeID
		}
	default:
		if p.EmployeeID != nil {
			candidate.EmployeeID = p.EmployeeID
		}
	}
}

// snapshotCost фиксирует рассчитанную стоимость на сессии. Для сессии без
// тарифа при парковке подбирается гостевой тариф по умолчанию.
func (m *Manager) snapshotCost(candidate *ds.Session, now time.Time) error {
	if candidate.HasSubscription {
		zero := 0.0
		candidate.CalculatedCost = &zero
		return nil
	}
	if candidate.TariffID == nil {
		tariff, err := m.store.DefaultGuestTariff()
		if err != nil {
			if ds.IsKind(err, ds.KindNotFound) {
				return nil // тарифа нет, тарификация недоступна
			}
			return err
		}
		candidate.TariffID = &tariff.ID
	}
	cost, err := m.liveCost(candidate, now)
	if err != nil {
		return err
	}
	candidate.CalculatedCost = &cost
	return nil
}

// Cancel отменяет сессию из любого нетерминального статуса. Отмена
// терминальна и немедленна: опоздавшие фото и платежи будут отклонены
// гвардом терминального статуса.
func (m *Manager) Cancel(sessionID uint, employeeID *uint, note string) (*ds.Session, error) {
	return m.Transition(sessionID, ds.StatusCancelled, TransitionPayload{
		EmployeeID: employeeID,
		Note:       note,
	})
}

// AssignEmployee назначает сотрудника на запрос подачи
// (return_requested -> return_accepted). Цель назначения проверяется по
// справочнику сотрудников.
func (m *Manager) AssignEmployee(sessionID, employeeID uint) (*ds.Session, error) {
	employee, err := m.store.EmployeeByID(employeeID)
	if err != nil {
		if ds.IsKind(err, ds.KindNotFound) {
			return nil, ds.GuardFailed("сотрудник %d не найден", employeeID)
		}
		return nil, err
	}
	if !employee.IsActive {
		return nil, ds.GuardFailed("сотрудник %d неактивен", employeeID)
	}
	return m.Transition(sessionID, ds.StatusReturnAccepted, TransitionPayload{
		EmployeeID: &employeeID,
	})
}

// AppendPhoto добавляет фотографию стадии. Списки фотографий append-only;
// терминальная сессия фотографии не принимает.
func (m *Manager) AppendPhoto(sessionID uint, stage ds.PhotoStage, photo ds.SessionPhoto) (*ds.SessionPhoto, error) {
	if !ds.ValidPhotoStage(stage) {
		return nil, ds.GuardFailed("неизвестная стадия фотографий %q", stage)
	}

	var saved *ds.SessionPhoto
	err := m.WithSessionLock(sessionID, func() error {
		session, err := m.store.SessionByID(sessionID)
		if err != nil {
			return err
		}
		if session.Status.IsTerminal() {
			return ds.GuardFailed("сессия в статусе %s, фотографии не принимаются", session.Status)
		}

		photo.SessionID = sessionID
		photo.Stage = stage
		photo.CreatedAt = m.now()
		if err := m.store.AppendPhoto(&photo); err != nil {
			return err
		}
		saved = &photo
		return nil
	})
	if err != nil {
		return nil, err
	}
	return saved, nil
}

// RemovePhoto удаляет фотографию, пока гейт её стадии не пройден.
// После перехода, требовавшего эту стадию, список неизменяем.
func (m *Manager) RemovePhoto(sessionID, photoID uint) error {
	return m.WithSessionLock(sessionID, func() error {
		session, err := m.store.SessionByID(sessionID)
		if err != nil {
			return err
		}
		if session.Status.IsTerminal() {
			return ds.GuardFailed("сессия в статусе %s, фотографии неизменяемы", session.Status)
		}

		var photo *ds.SessionPhoto
		for i := range session.Photos {
			if session.Photos[i].ID == photoID {
				photo = &session.Photos[i]
				break
			}
		}
		if photo == nil {
			return ds.NotFound("фотография %d не найдена в сессии %d", photoID, sessionID)
		}
		if gate := photo.Stage.GatedBy(); session.Status.Order() >= gate.Order() {
			return ds.GuardFailed("стадия %s уже подтверждена переходом в %s, удаление запрещено",
				photo.Stage, gate)
		}
		return m.store.DeletePhoto(sessionID, photoID)
	})
}

// GetSession возвращает сессию по id.
func (m *Manager) GetSession(sessionID uint) (*ds.Session, error) {
	return m.store.SessionByID(sessionID)
}

// GetSessionByCard возвращает сессию по номеру карточки клиента.
// Повторные вызовы без мутаций возвращают идентичный снимок.
func (m *Manager) GetSessionByCard(card string) (*ds.Session, error) {
	return m.store.SessionByCard(card)
}

// StatusLog возвращает журнал переходов в порядке добавления.
func (m *Manager) StatusLog(sessionID uint) ([]ds.SessionStatusLog, error) {
	if _, err := m.store.SessionByID(sessionID); err != nil {
		return nil, err
	}
	return m.store.StatusLog(sessionID)
}

// SessionCost — стоимость для админского чтения, кэшируется по id сессии.
func (m *Manager) SessionCost(sessionID uint) (billing.CostDetail, error) {
	return m.costs.Get(sessionID, func() (billing.CostDetail, error) {
		session, err := m.store.SessionByID(sessionID)
		if err != nil {
			return billing.CostDetail{}, err
		}
		if session.HasSubscription || session.TariffID == nil {
			return billing.CostDetail{Breakdown: "тарификация не применяется"}, nil
		}
		tariff, err := m.store.TariffByID(*session.TariffID)
		if err != nil {
			return billing.CostDetail{}, err
		}
		return billing.Calculate(session, tariff, m.now()), nil
	})
}
