package returnflow

import (
	"github.com/sirupsen/logrus"

	"github.com/nikita-666666/valet-parking-app-sub000/internal/app/billing"
	"github.com/nikita-666666/valet-parking-app-sub000/internal/app/ds"
	"github.com/nikita-666666/valet-parking-app-sub000/internal/app/lifecycle"
)

// ReturnResult — исход запроса подачи автомобиля.
// При неполной оплате переход не выполняется: клиент получает суммы,
// вносит платёж и повторяет запрос.
type ReturnResult struct {
	PaymentRequired bool        `json:"payment_required"`
	TotalCost       float64     `json:"total_cost"`
	PaidAmount      float64     `json:"paid_amount"`
	RemainingAmount float64     `json:"remaining_amount"`
	Session         *ds.Session `json:"session,omitempty"`
}

// Protocol — клиентский сценарий запроса подачи. Общается только с
// публичными операциями state machine и ledger-а.
type Protocol struct {
	lifecycle *lifecycle.Manager
	ledger    *billing.Ledger
}

func NewProtocol(lc *lifecycle.Manager, ledger *billing.Ledger) *Protocol {
	return &Protocol{lifecycle: lc, ledger: ledger}
}

// RequestReturn запрашивает подачу автомобиля по номеру карточки.
// Для неоплаченной сессии без абонемента возвращается PaymentRequired с
// суммами, переход parked -> return_requested не выполняется.
func (p *Protocol) RequestReturn(card string) (*ReturnResult, error) {
	session, err := p.lifecycle.GetSessionByCard(card)
	if err != nil {
		return nil, err
	}
	if session.Status != ds.StatusParked {
		return nil, ds.GuardFailed("подачу можно запросить только для припаркованного автомобиля, текущий статус %s", session.Status)
	}

	summary, err := p.ledger.Summary(session.ID)
	if err != nil {
		return nil, err
	}
	if !session.HasSubscription && summary.RemainingAmount > 0 {
		logrus.Infof("return request for card %s requires payment: %.2f of %.2f paid",
			card, summary.PaidAmount, summary.CalculatedCost)
		return &ReturnResult{
			PaymentRequired: true,
			TotalCost:       summary.CalculatedCost,
			PaidAmount:      summary.PaidAmount,
			RemainingAmount: summary.RemainingAmount,
		}, nil
	}

	// Строгий CAS: если статус уже не parked, проиграли гонку
	expected := ds.StatusParked
	updated, err := p.lifecycle.Transition(session.ID, ds.StatusReturnRequested, lifecycle.TransitionPayload{
		ExpectedStatus: &expected,
		Note:           "запрос подачи клиентом",
	})
	if err != nil {
		return nil, err
	}
	return &ReturnResult{
		TotalCost:       summary.CalculatedCost,
		PaidAmount:      summary.PaidAmount,
		Session:         updated,
	}, nil
}
