package lifecycle

import (
	"sync"
	"testing"
	"time"

	"github.com/nikita-666666/valet-parking-app-sub000/internal/app/billing"
	"github.com/nikita-666666/valet-parking-app-sub000/internal/app/ds"
)

// fakeStore — память вместо Postgres для state machine.
type fakeStore struct {
	mu            sync.Mutex
	nextSessionID uint
	nextPhotoID   uint
	sessions      map[uint]*ds.Session
	photos        map[uint][]ds.SessionPhoto
	logs          map[uint][]ds.SessionStatusLog
	tariffs       map[uint]*ds.Tariff
	guestTariff   *ds.Tariff
	employees     map[uint]*ds.Employee
	subscriptions map[string]*ds.Subscription
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		sessions:      make(map[uint]*ds.Session),
		photos:        make(map[uint][]ds.SessionPhoto),
		logs:          make(map[uint][]ds.SessionStatusLog),
		tariffs:       make(map[uint]*ds.Tariff),
		employees:     make(map[uint]*ds.Employee),
		subscriptions: make(map[string]*ds.Subscription),
	}
}

func (s *fakeStore) CreateSession(session *ds.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextSessionID++
	session.ID = s.nextSessionID
	copied := *session
	s.sessions[session.ID] = &copied
	return nil
}

func (s *fakeStore) sessionCopy(session *ds.Session) *ds.Session {
	copied := *session
	copied.Photos = append([]ds.SessionPhoto(nil), s.photos[session.ID]...)
	return &copied
}

func (s *fakeStore) SessionByID(id uint) (*ds.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	session, ok := s.sessions[id]
	if !ok {
		return nil, ds.NotFound("сессия %d не найдена", id)
	}
	return s.sessionCopy(session), nil
}

func (s *fakeStore) SessionByCard(card string) (*ds.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, session := range s.sessions {
		if session.ClientCardNumber == card {
			return s.sessionCopy(session), nil
		}
	}
	return nil, ds.NotFound("сессия по карточке %s не найдена", card)
}

func (s *fakeStore) SaveSession(session *ds.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := *session
	copied.Photos = nil
	s.sessions[session.ID] = &copied
	return nil
}

func (s *fakeStore) AppendPhoto(p *ds.SessionPhoto) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextPhotoID++
	p.ID = s.nextPhotoID
	s.photos[p.SessionID] = append(s.photos[p.SessionID], *p)
	return nil
}

func (s *fakeStore) DeletePhoto(sessionID, photoID uint) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	photos := s.photos[sessionID]
	for i := range photos {
		if photos[i].ID == photoID {
			s.photos[sessionID] = append(photos[:i], photos[i+1:]...)
			return nil
		}
	}
	return ds.NotFound("фотография %d не найдена", photoID)
}

func (s *fakeStore) AppendStatusLog(e *ds.SessionStatusLog) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	e.ID = uint(len(s.logs[e.SessionID]) + 1)
	s.logs[e.SessionID] = append(s.logs[e.SessionID], *e)
	return nil
}

func (s *fakeStore) StatusLog(sessionID uint) ([]ds.SessionStatusLog, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]ds.SessionStatusLog(nil), s.logs[sessionID]...), nil
}

func (s *fakeStore) TariffByID(id uint) (*ds.Tariff, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	tariff, ok := s.tariffs[id]
	if !ok {
		return nil, ds.NotFound("тариф %d не найден", id)
	}
	return tariff, nil
}

func (s *fakeStore) DefaultGuestTariff() (*ds.Tariff, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.guestTariff == nil {
		return nil, ds.NotFound("гостевой тариф не настроен")
	}
	return s.guestTariff, nil
}

func (s *fakeStore) EmployeeByID(id uint) (*ds.Employee, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	employee, ok := s.employees[id]
	if !ok {
		return nil, ds.NotFound("сотрудник %d не найден", id)
	}
	return employee, nil
}

func (s *fakeStore) SubscriptionByCar(carNumber string) (*ds.Subscription, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sub, ok := s.subscriptions[carNumber]
	if !ok {
		return nil, ds.NotFound("абонемент на %s не найден", carNumber)
	}
	return sub, nil
}

// setPaid подменяет оплату сессии напрямую (в обход ledger-а).
func (s *fakeStore) setPaid(sessionID uint, amount float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[sessionID].PaidAmount = amount
}

func newTestManager(store *fakeStore) *Manager {
	return NewManager(store, billing.NewCostCache(time.Minute))
}

func createTestSession(t *testing.T, m *Manager, card string) *ds.Session {
	t.Helper()
	session, err := m.CreateSession(CreateSessionInput{
		ClientCardNumber: card,
		CarNumber:        "А123ВС77",
		CarModel:         "Kia Rio",
	})
	if err != nil {
		t.Fatalf("CreateSession: %v", err)
	}
	return session
}

func addPhotos(t *testing.T, m *Manager, sessionID uint, stage ds.PhotoStage, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		if _, err := m.AppendPhoto(sessionID, stage, ds.SessionPhoto{URL: "/photos/x.jpg"}); err != nil {
			t.Fatalf("AppendPhoto %s: %v", stage, err)
		}
	}
}

func TestCreateSessionRequiresCardAndCar(t *testing.T) {
	m := newTestManager(newFakeStore())

	if _, err := m.CreateSession(CreateSessionInput{CarNumber: "А123ВС77"}); !ds.IsKind(err, ds.KindGuardFailed) {
		t.Fatalf("expected GuardFailed without card, got %v", err)
	}
	if _, err := m.CreateSession(CreateSessionInput{ClientCardNumber: "VP-001"}); !ds.IsKind(err, ds.KindGuardFailed) {
		t.Fatalf("expected GuardFailed without car, got %v", err)
	}
}

func TestCreateSessionPicksUpSubscription(t *testing.T) {
	store := newFakeStore()
	store.subscriptions["А123ВС77"] = &ds.Subscription{
		CarNumber:   "А123ВС77",
		ClientName:  "Иванов",
		ClientPhone: "+7 900 000-00-01",
		IsActive:    true,
	}
	m := newTestManager(store)

	session := createTestSession(t, m, "VP-001")
	if !session.HasSubscription {
		t.Fatalf("expected subscription to be detected")
	}
	if session.ClientName != "Иванов" {
		t.Fatalf("expected client name prefilled, got %q", session.ClientName)
	}
}

func TestCreateSessionIgnoresExpiredSubscription(t *testing.T) {
	store := newFakeStore()
	expired := time.Now().Add(-time.Hour)
	store.subscriptions["А123ВС77"] = &ds.Subscription{
		CarNumber: "А123ВС77",
		IsActive:  true,
		ExpiresAt: &expired,
	}
	m := newTestManager(store)

	session := createTestSession(t, m, "VP-001")
	if session.HasSubscription {
		t.Fatalf("expired subscription must not mark session")
	}
}

func TestTransitionGuardLeavesSessionUnchanged(t *testing.T) {
	store := newFakeStore()
	m := newTestManager(store)
	session := createTestSession(t, m, "VP-001")

	// без четырёх фото приёма переход запрещён
	_, err := m.Transition(session.ID, ds.StatusCarAccepted, TransitionPayload{})
	if !ds.IsKind(err, ds.KindGuardFailed) {
		t.Fatalf("expected GuardFailed without intake photos, got %v", err)
	}

	reloaded, _ := m.GetSession(session.ID)
	if reloaded.Status != ds.StatusCreated {
		t.Fatalf("failed guard must not change status: got %s", reloaded.Status)
	}
	logEntries, _ := m.StatusLog(session.ID)
	if len(logEntries) != 0 {
		t.Fatalf("failed guard must not add log entries: got %d", len(logEntries))
	}
}

func TestTransitionRejectsSkippedStatus(t *testing.T) {
	m := newTestManager(newFakeStore())
	session := createTestSession(t, m, "VP-001")

	if _, err := m.Transition(session.ID, ds.StatusParked, TransitionPayload{}); !ds.IsKind(err, ds.KindGuardFailed) {
		t.Fatalf("expected GuardFailed for skipped statuses, got %v", err)
	}
	if _, err := m.Transition(session.ID, ds.SessionStatus("teleported"), TransitionPayload{}); !ds.IsKind(err, ds.KindGuardFailed) {
		t.Fatalf("expected GuardFailed for unknown status, got %v", err)
	}
}

func TestFullLifecycleHappyPath(t *testing.T) {
	store := newFakeStore()
	store.guestTariff = &ds.Tariff{ID: 1, Type: ds.TariffHourly, PricePerHour: 100, MinHours: 1, IsActive: true}
	store.tariffs[1] = store.guestTariff
	store.employees[5] = &ds.Employee{ID: 5, FullName: "Петров", IsActive: true}
	m := newTestManager(store)

	start := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	current := start
	m.SetNow(func() time.Time { return current })

	session := createTestSession(t, m, "VP-001")

	addPhotos(t, m, session.ID, ds.PhotoIntake, 4)
	if _, err := m.Transition(session.ID, ds.StatusCarAccepted, TransitionPayload{}); err != nil {
		t.Fatalf("to car_accepted: %v", err)
	}
	if _, err := m.Transition(session.ID, ds.StatusEnRoute, TransitionPayload{}); err != nil {
		t.Fatalf("to en_route: %v", err)
	}

	addPhotos(t, m, session.ID, ds.PhotoParking, 2)
	parked, err := m.Transition(session.ID, ds.StatusParked, TransitionPayload{
		ParkingSpot: "B-12",
		ParkingCard: "C-777",
	})
	if err != nil {
		t.Fatalf("to parked: %v", err)
	}
	// при парковке без явного тарифа назначается гостевой и фиксируется снимок
	if parked.TariffID == nil || *parked.TariffID != 1 {
		t.Fatalf("expected default guest tariff assigned")
	}
	if parked.CalculatedCost == nil {
		t.Fatalf("expected cost snapshot at parked")
	}

	// час парковки: запрос подачи без оплаты отклоняется
	current = start.Add(time.Hour)
	if _, err := m.Transition(session.ID, ds.StatusReturnRequested, TransitionPayload{}); !ds.IsKind(err, ds.KindGuardFailed) {
		t.Fatalf("expected GuardFailed for unpaid return request, got %v", err)
	}

	store.setPaid(session.ID, 100)
	if _, err := m.Transition(session.ID, ds.StatusReturnRequested, TransitionPayload{}); err != nil {
		t.Fatalf("to return_requested: %v", err)
	}

	if _, err := m.AssignEmployee(session.ID, 5); err != nil {
		t.Fatalf("assign employee: %v", err)
	}

	addPhotos(t, m, session.ID, ds.PhotoPreReturn, 2)
	if _, err := m.Transition(session.ID, ds.StatusReturnStarted, TransitionPayload{}); err != nil {
		t.Fatalf("to return_started: %v", err)
	}

	addPhotos(t, m, session.ID, ds.PhotoDelivery, 1)
	if _, err := m.Transition(session.ID, ds.StatusReturnDelivering, TransitionPayload{}); err != nil {
		t.Fatalf("to return_delivering: %v", err)
	}

	completed, err := m.Transition(session.ID, ds.StatusCompleted, TransitionPayload{})
	if err != nil {
		t.Fatalf("to completed: %v", err)
	}
	if !completed.Status.IsTerminal() {
		t.Fatalf("completed session must be terminal")
	}

	// журнал содержит все переходы в порядке выполнения
	logEntries, _ := m.StatusLog(session.ID)
	want := []ds.SessionStatus{
		ds.StatusCarAccepted, ds.StatusEnRoute, ds.StatusParked,
		ds.StatusReturnRequested, ds.StatusReturnAccepted,
		ds.StatusReturnStarted, ds.StatusReturnDelivering, ds.StatusCompleted,
	}
	if len(logEntries) != len(want) {
		t.Fatalf("expected %d log entries, got %d", len(want), len(logEntries))
	}
	for i, entry := range logEntries {
		if entry.ToStatus != want[i] {
			t.Fatalf("log entry %d: expected %s, got %s", i, want[i], entry.ToStatus)
		}
	}
}

func TestSubscriptionSkipsPaymentGuard(t *testing.T) {
	store := newFakeStore()
	store.subscriptions["А123ВС77"] = &ds.Subscription{CarNumber: "А123ВС77", IsActive: true}
	m := newTestManager(store)

	session := createTestSession(t, m, "VP-001")
	addPhotos(t, m, session.ID, ds.PhotoIntake, 4)
	mustTransition(t, m, session.ID, ds.StatusCarAccepted)
	mustTransition(t, m, session.ID, ds.StatusEnRoute)
	addPhotos(t, m, session.ID, ds.PhotoParking, 2)
	if _, err := m.Transition(session.ID, ds.StatusParked, TransitionPayload{ParkingSpot: "B-1", ParkingCard: "C-1"}); err != nil {
		t.Fatalf("to parked: %v", err)
	}

	// абонемент: подача без оплаты
	updated, err := m.Transition(session.ID, ds.StatusReturnRequested, TransitionPayload{})
	if err != nil {
		t.Fatalf("to return_requested with subscription: %v", err)
	}
	if updated.CalculatedCost == nil || *updated.CalculatedCost != 0 {
		t.Fatalf("subscription session must snapshot zero cost")
	}
}

func mustTransition(t *testing.T, m *Manager, sessionID uint, target ds.SessionStatus) {
	t.Helper()
	if _, err := m.Transition(sessionID, target, TransitionPayload{}); err != nil {
		t.Fatalf("to %s: %v", target, err)
	}
}

func TestCancelledSessionRejectsEverything(t *testing.T) {
	m := newTestManager(newFakeStore())
	session := createTestSession(t, m, "VP-001")

	if _, err := m.Cancel(session.ID, nil, "клиент передумал"); err != nil {
		t.Fatalf("cancel: %v", err)
	}

	if _, err := m.Transition(session.ID, ds.StatusCarAccepted, TransitionPayload{}); !ds.IsKind(err, ds.KindGuardFailed) {
		t.Fatalf("expected GuardFailed for transition out of cancelled, got %v", err)
	}
	if _, err := m.AppendPhoto(session.ID, ds.PhotoIntake, ds.SessionPhoto{URL: "/x.jpg"}); !ds.IsKind(err, ds.KindGuardFailed) {
		t.Fatalf("expected GuardFailed for photo on cancelled session, got %v", err)
	}
	if _, err := m.Cancel(session.ID, nil, "повторно"); !ds.IsKind(err, ds.KindConflictingTransition) {
		t.Fatalf("expected ConflictingTransition for double cancel, got %v", err)
	}
}

func TestConcurrentTransitionOneWins(t *testing.T) {
	store := newFakeStore()
	m := newTestManager(store)
	session := createTestSession(t, m, "VP-001")
	addPhotos(t, m, session.ID, ds.PhotoIntake, 4)

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = m.Transition(session.ID, ds.StatusCarAccepted, TransitionPayload{})
		}(i)
	}
	wg.Wait()

	var ok, conflict int
	for _, err := range errs {
		switch {
		case err == nil:
			ok++
		case ds.IsKind(err, ds.KindConflictingTransition):
			conflict++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if ok != 1 || conflict != 1 {
		t.Fatalf("expected one winner and one conflict, got %d/%d", ok, conflict)
	}

	logEntries, _ := m.StatusLog(session.ID)
	if len(logEntries) != 1 {
		t.Fatalf("expected single log entry, got %d", len(logEntries))
	}
}

func TestExpectedStatusCAS(t *testing.T) {
	store := newFakeStore()
	m := newTestManager(store)
	session := createTestSession(t, m, "VP-001")
	addPhotos(t, m, session.ID, ds.PhotoIntake, 4)
	mustTransition(t, m, session.ID, ds.StatusCarAccepted)

	expected := ds.StatusCreated
	_, err := m.Transition(session.ID, ds.StatusEnRoute, TransitionPayload{ExpectedStatus: &expected})
	if !ds.IsKind(err, ds.KindConflictingTransition) {
		t.Fatalf("expected ConflictingTransition on stale expected status, got %v", err)
	}
}

func TestPhotoRemovalGates(t *testing.T) {
	store := newFakeStore()
	m := newTestManager(store)
	session := createTestSession(t, m, "VP-001")

	photo, err := m.AppendPhoto(session.ID, ds.PhotoIntake, ds.SessionPhoto{URL: "/a.jpg"})
	if err != nil {
		t.Fatalf("AppendPhoto: %v", err)
	}

	// до прохождения гейта удаление разрешено
	if err := m.RemovePhoto(session.ID, photo.ID); err != nil {
		t.Fatalf("RemovePhoto before gate: %v", err)
	}

	addPhotos(t, m, session.ID, ds.PhotoIntake, 4)
	mustTransition(t, m, session.ID, ds.StatusCarAccepted)

	reloaded, _ := m.GetSession(session.ID)
	gated := reloaded.PhotosByStage(ds.PhotoIntake)[0]
	if err := m.RemovePhoto(session.ID, gated.ID); !ds.IsKind(err, ds.KindGuardFailed) {
		t.Fatalf("expected GuardFailed removing gated photo, got %v", err)
	}
}

func TestAssignEmployeeValidation(t *testing.T) {
	store := newFakeStore()
	store.employees[1] = &ds.Employee{ID: 1, FullName: "Иванов", IsActive: true}
	store.employees[2] = &ds.Employee{ID: 2, FullName: "Уволенный", IsActive: false}
	m := newTestManager(store)

	session := createTestSession(t, m, "VP-001")
	addPhotos(t, m, session.ID, ds.PhotoIntake, 4)
	mustTransition(t, m, session.ID, ds.StatusCarAccepted)
	mustTransition(t, m, session.ID, ds.StatusEnRoute)
	addPhotos(t, m, session.ID, ds.PhotoParking, 2)
	if _, err := m.Transition(session.ID, ds.StatusParked, TransitionPayload{ParkingSpot: "B-1", ParkingCard: "C-1"}); err != nil {
		t.Fatalf("to parked: %v", err)
	}
	mustTransition(t, m, session.ID, ds.StatusReturnRequested)

	if _, err := m.AssignEmployee(session.ID, 99); !ds.IsKind(err, ds.KindGuardFailed) {
		t.Fatalf("expected GuardFailed for unknown employee, got %v", err)
	}
	if _, err := m.AssignEmployee(session.ID, 2); !ds.IsKind(err, ds.KindGuardFailed) {
		t.Fatalf("expected GuardFailed for inactive employee, got %v", err)
	}

	assigned, err := m.AssignEmployee(session.ID, 1)
	if err != nil {
		t.Fatalf("assign: %v", err)
	}
	if assigned.RequestAcceptedBy == nil || *assigned.RequestAcceptedBy != 1 {
		t.Fatalf("expected request accepted by employee 1")
	}

	// переназначение не поддерживается
	if _, err := m.AssignEmployee(session.ID, 1); !ds.IsKind(err, ds.KindConflictingTransition) {
		t.Fatalf("expected ConflictingTransition on repeated assignment, got %v", err)
	}
}
