package billing

import (
	"time"

	"github.com/sirupsen/logrus"

	"github.com/nikita-666666/valet-parking-app-sub000/internal/app/ds"
)

// SessionStore — доступ ledger-а к сессиям и тарифам.
// Реализуется repository.Repository.
type SessionStore interface {
	SessionByID(id uint) (*ds.Session, error)
	SaveSession(s *ds.Session) error
	AppendPayment(p *ds.PaymentRecord) error
	TariffByID(id uint) (*ds.Tariff, error)
}

// Locker сериализует операции по одной сессии. Платежи и смены статуса
// должны проходить через один и тот же замок (lifecycle.Manager).
type Locker interface {
	WithSessionLock(id uint, fn func() error) error
}

// PaymentSummary — сводка по оплате сессии.
type PaymentSummary struct {
	CalculatedCost  float64 `json:"calculated_cost"`
	PaidAmount      float64 `json:"paid_amount"`
	RemainingAmount float64 `json:"remaining_amount"`
}

// Ledger ведёт учёт платежей по сессии. Сумма платежей никогда не
// превышает рассчитанную стоимость: переплата отклоняется, не обрезается.
type Ledger struct {
	store SessionStore
	locks Locker
	costs *CostCache
	now   func() time.Time
}

func NewLedger(store SessionStore, locks Locker, costs *CostCache) *Ledger {
	return &Ledger{
		store: store,
		locks: locks,
		costs: costs,
		now:   time.Now,
	}
}

// SetNow подменяет источник времени (для тестов).
func (l *Ledger) SetNow(now func() time.Time) {
	l.now = now
}

// RecordPayment регистрирует платёж по сессии. Стоимость пересчитывается
// заново внутри замка сессии, а не берётся из кэша.
func (l *Ledger) RecordPayment(sessionID uint, method string, amount float64, reference string) (*ds.PaymentRecord, error) {
	if amount <= 0 {
		return nil, ds.InvalidAmount("сумма платежа должна быть больше нуля")
	}
	if !ds.ValidPaymentMethod(method) {
		return nil, ds.GuardFailed("неизвестный способ оплаты %q", method)
	}

	var record *ds.PaymentRecord
	err := l.locks.WithSessionLock(sessionID, func() error {
		session, err := l.store.SessionByID(sessionID)
		if err != nil {
			return err
		}
		if session.Status.IsTerminal() {
			return ds.GuardFailed("сессия в статусе %s, платежи не принимаются", session.Status)
		}

		cost, err := l.currentCost(session)
		if err != nil {
			return err
		}
		if session.PaidAmount+amount > cost+1e-9 {
			return ds.OverpaymentRejected(
				"платёж %.2f превышает остаток %.2f при стоимости %.2f",
				amount, cost-session.PaidAmount, cost)
		}

		now := l.now()
		record = &ds.PaymentRecord{
			SessionID: sessionID,
			Method:    method,
			Amount:    amount,
			Reference: reference,
			CreatedAt: now,
		}
		if err := l.store.AppendPayment(record); err != nil {
			return err
		}

		// На сессии храним агрегат и метаданные последнего платежа
		session.PaidAmount = roundMoney(session.PaidAmount + amount)
		session.CalculatedCost = &cost
		session.PaymentMethod = method
		session.PaymentDate = &now
		session.PaymentReference = reference
		if err := l.store.SaveSession(session); err != nil {
			return err
		}

		l.costs.Invalidate(sessionID)
		logrus.Infof("payment %.2f (%s) recorded for session %d, paid %.2f of %.2f",
			amount, method, sessionID, session.PaidAmount, cost)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return record, nil
}

// Summary возвращает сводку по оплате с живой оценкой стоимости.
func (l *Ledger) Summary(sessionID uint) (PaymentSummary, error) {
	var summary PaymentSummary
	err := l.locks.WithSessionLock(sessionID, func() error {
		session, err := l.store.SessionByID(sessionID)
		if err != nil {
			return err
		}
		cost, err := l.currentCost(session)
		if err != nil {
			return err
		}
		remaining := cost - session.PaidAmount
		if remaining < 0 {
			remaining = 0
		}
		summary = PaymentSummary{
			CalculatedCost:  cost,
			PaidAmount:      session.PaidAmount,
			RemainingAmount: roundMoney(remaining),
		}
		return nil
	})
	return summary, err
}

// currentCost считает стоимость сессии на текущий момент.
// Без тарифа (ещё не припаркован) стоимость равна нулю.
func (l *Ledger) currentCost(session *ds.Session) (float64, error) {
	if session.HasSubscription {
		return 0, nil
	}
	if session.TariffID == nil {
		return 0, nil
	}
	tariff, err := l.store.TariffByID(*session.TariffID)
	if err != nil {
		return 0, err
	}
	return Calculate(session, tariff, l.now()).TotalCost, nil
}
