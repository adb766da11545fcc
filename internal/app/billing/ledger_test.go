package billing

import (
	"sync"
	"testing"
	"time"

	"github.com/nikita-666666/valet-parking-app-sub000/internal/app/ds"
)

// memStore — память вместо Postgres: сессии и платежи по id.
type memStore struct {
	mu       sync.Mutex
	sessions map[uint]*ds.Session
	tariffs  map[uint]*ds.Tariff
	payments []ds.PaymentRecord
}

func newMemStore() *memStore {
	return &memStore{
		sessions: make(map[uint]*ds.Session),
		tariffs:  make(map[uint]*ds.Tariff),
	}
}

func (s *memStore) SessionByID(id uint) (*ds.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	session, ok := s.sessions[id]
	if !ok {
		return nil, ds.NotFound("сессия %d не найдена", id)
	}
	copied := *session
	return &copied, nil
}

func (s *memStore) SaveSession(session *ds.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := *session
	s.sessions[session.ID] = &copied
	return nil
}

func (s *memStore) AppendPayment(p *ds.PaymentRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p.ID = uint(len(s.payments) + 1)
	s.payments = append(s.payments, *p)
	return nil
}

func (s *memStore) TariffByID(id uint) (*ds.Tariff, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	tariff, ok := s.tariffs[id]
	if !ok {
		return nil, ds.NotFound("тариф %d не найден", id)
	}
	return tariff, nil
}

// memLocker — один мьютекс на сессию, как в lifecycle.Manager.
type memLocker struct {
	locks sync.Map
}

func (l *memLocker) WithSessionLock(id uint, fn func() error) error {
	lock, _ := l.locks.LoadOrStore(id, &sync.Mutex{})
	mu := lock.(*sync.Mutex)
	mu.Lock()
	defer mu.Unlock()
	return fn()
}

func newTestLedger(t *testing.T, session *ds.Session, tariff *ds.Tariff) (*Ledger, *memStore) {
	t.Helper()
	store := newMemStore()
	store.sessions[session.ID] = session
	if tariff != nil {
		store.tariffs[tariff.ID] = tariff
	}
	ledger := NewLedger(store, &memLocker{}, NewCostCache(time.Minute))
	return ledger, store
}

func parkedSession(tariffID uint) *ds.Session {
	start := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	return &ds.Session{
		ID:               1,
		ClientCardNumber: "VP-001",
		CarNumber:        "А123ВС77",
		Status:           ds.StatusParked,
		TariffID:         &tariffID,
		CreatedAt:        start,
		UpdatedAt:        start,
	}
}

func TestRecordPaymentRejectsInvalidAmount(t *testing.T) {
	ledger, _ := newTestLedger(t, parkedSession(1), hourlyTariff(1))

	for _, amount := range []float64{0, -50} {
		_, err := ledger.RecordPayment(1, ds.PaymentCash, amount, "")
		if !ds.IsKind(err, ds.KindInvalidAmount) {
			t.Fatalf("amount %.2f: expected InvalidAmount, got %v", amount, err)
		}
	}
}

func TestRecordPaymentRejectsUnknownMethod(t *testing.T) {
	ledger, _ := newTestLedger(t, parkedSession(1), hourlyTariff(1))

	_, err := ledger.RecordPayment(1, "barter", 100, "")
	if !ds.IsKind(err, ds.KindGuardFailed) {
		t.Fatalf("expected GuardFailed for unknown method, got %v", err)
	}
}

func TestRecordPaymentRejectsOverpaymentEntirely(t *testing.T) {
	session := parkedSession(1)
	ledger, store := newTestLedger(t, session, hourlyTariff(1))
	// два часа парковки = 200
	ledger.SetNow(func() time.Time { return session.CreatedAt.Add(90 * time.Minute) })

	if _, err := ledger.RecordPayment(1, ds.PaymentCard, 150, ""); err != nil {
		t.Fatalf("partial payment: %v", err)
	}

	// 150 + 100 > 200: платёж отклоняется целиком, не обрезается
	_, err := ledger.RecordPayment(1, ds.PaymentCard, 100, "")
	if !ds.IsKind(err, ds.KindOverpaymentRejected) {
		t.Fatalf("expected OverpaymentRejected, got %v", err)
	}

	saved, _ := store.SessionByID(1)
	if saved.PaidAmount != 150 {
		t.Fatalf("rejected payment must not change paid amount: got %.2f", saved.PaidAmount)
	}
	if len(store.payments) != 1 {
		t.Fatalf("rejected payment must not be recorded: got %d records", len(store.payments))
	}

	// остаток принимается ровно
	if _, err := ledger.RecordPayment(1, ds.PaymentCash, 50, ""); err != nil {
		t.Fatalf("exact remaining payment: %v", err)
	}
	saved, _ = store.SessionByID(1)
	if saved.PaidAmount != 200 {
		t.Fatalf("expected paid 200, got %.2f", saved.PaidAmount)
	}
}

func TestRecordPaymentRejectsTerminalSession(t *testing.T) {
	session := parkedSession(1)
	session.Status = ds.StatusCancelled
	ledger, _ := newTestLedger(t, session, hourlyTariff(1))

	_, err := ledger.RecordPayment(1, ds.PaymentCash, 100, "")
	if !ds.IsKind(err, ds.KindGuardFailed) {
		t.Fatalf("expected GuardFailed for cancelled session, got %v", err)
	}
}

func TestRecordPaymentAccumulatesHistory(t *testing.T) {
	session := parkedSession(1)
	ledger, store := newTestLedger(t, session, hourlyTariff(1))
	ledger.SetNow(func() time.Time { return session.CreatedAt.Add(3 * time.Hour) }) // 300

	for i, amount := range []float64{100, 50, 150} {
		if _, err := ledger.RecordPayment(1, ds.PaymentOnline, amount, ""); err != nil {
			t.Fatalf("payment %d: %v", i, err)
		}
	}

	if len(store.payments) != 3 {
		t.Fatalf("expected 3 payment records, got %d", len(store.payments))
	}
	saved, _ := store.SessionByID(1)
	if saved.PaidAmount != 300 {
		t.Fatalf("expected paid 300, got %.2f", saved.PaidAmount)
	}
	if saved.PaymentMethod != ds.PaymentOnline || saved.PaymentDate == nil {
		t.Fatalf("last payment metadata not stored on session")
	}
}

func TestConcurrentPaymentsNeverExceedCost(t *testing.T) {
	session := parkedSession(1)
	ledger, store := newTestLedger(t, session, hourlyTariff(1))
	// стоимость ровно 100: из двух платежей по 60 пройти может только один
	ledger.SetNow(func() time.Time { return session.CreatedAt.Add(30 * time.Minute) })

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = ledger.RecordPayment(1, ds.PaymentCard, 60, "")
		}(i)
	}
	wg.Wait()

	var ok, rejected int
	for _, err := range errs {
		switch {
		case err == nil:
			ok++
		case ds.IsKind(err, ds.KindOverpaymentRejected):
			rejected++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if ok != 1 || rejected != 1 {
		t.Fatalf("expected exactly one accepted and one rejected, got %d/%d", ok, rejected)
	}

	saved, _ := store.SessionByID(1)
	if saved.PaidAmount != 60 {
		t.Fatalf("expected paid 60, got %.2f", saved.PaidAmount)
	}
}

func TestSummary(t *testing.T) {
	session := parkedSession(1)
	ledger, _ := newTestLedger(t, session, hourlyTariff(1))
	ledger.SetNow(func() time.Time { return session.CreatedAt.Add(2 * time.Hour) }) // 200

	if _, err := ledger.RecordPayment(1, ds.PaymentCash, 80, ""); err != nil {
		t.Fatalf("payment: %v", err)
	}

	summary, err := ledger.Summary(1)
	if err != nil {
		t.Fatalf("summary: %v", err)
	}
	if summary.CalculatedCost != 200 || summary.PaidAmount != 80 || summary.RemainingAmount != 120 {
		t.Fatalf("unexpected summary: %+v", summary)
	}
}

func TestSummaryForSubscription(t *testing.T) {
	session := parkedSession(1)
	session.HasSubscription = true
	ledger, _ := newTestLedger(t, session, hourlyTariff(1))

	summary, err := ledger.Summary(1)
	if err != nil {
		t.Fatalf("summary: %v", err)
	}
	if summary.CalculatedCost != 0 || summary.RemainingAmount != 0 {
		t.Fatalf("subscription summary must be zero: %+v", summary)
	}
}

func TestCostCacheInvalidation(t *testing.T) {
	cache := NewCostCache(time.Minute)

	calls := 0
	compute := func() (CostDetail, error) {
		calls++
		return CostDetail{TotalCost: float64(calls * 100)}, nil
	}

	first, _ := cache.Get(7, compute)
	second, _ := cache.Get(7, compute)
	if calls != 1 || first.TotalCost != second.TotalCost {
		t.Fatalf("expected cached value, calls=%d", calls)
	}

	cache.Invalidate(7)
	third, _ := cache.Get(7, compute)
	if calls != 2 || third.TotalCost != 200 {
		t.Fatalf("expected recompute after invalidation, calls=%d cost=%.2f", calls, third.TotalCost)
	}
}
