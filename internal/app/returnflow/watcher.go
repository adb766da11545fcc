package returnflow

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/nikita-666666/valet-parking-app-sub000/internal/app/ds"
)

// Окна обратного отсчёта по точке входа в сценарий
const (
	WindowDirect       = 10 * time.Minute // подача запрошена сразу
	WindowAfterPayment = 15 * time.Minute // подача после доплаты
)

const (
	defaultPollInterval     = 3 * time.Second
	defaultTickInterval     = time.Second
	defaultFetchTimeout     = 5 * time.Second
	defaultFailureThreshold = 5
)

// SessionProvider — источник статуса для цикла опроса.
type SessionProvider interface {
	SessionByCard(ctx context.Context, card string) (*ds.Session, error)
}

// Watcher ведёт два независимых периодических цикла активного сценария
// подачи: обратный отсчёт (раз в секунду) и опрос статуса (раз в три
// секунды). Оба цикла останавливаются при завершении сессии, Stop() или
// отмене контекста — таймеры не утекают. Истечение отсчёта — только
// сигнал интерфейсу, сессия не отменяется.
type Watcher struct {
	provider SessionProvider
	card     string
	window   time.Duration

	PollInterval     time.Duration
	TickInterval     time.Duration
	FetchTimeout     time.Duration
	FailureThreshold int

	OnTick      func(remaining time.Duration)
	OnExpired   func()
	OnSession   func(session *ds.Session)
	OnCompleted func(session *ds.Session)
	OnError     func(err error)

	stopChan chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

func NewWatcher(provider SessionProvider, card string, window time.Duration) *Watcher {
	return &Watcher{
		provider:         provider,
		card:             card,
		window:           window,
		PollInterval:     defaultPollInterval,
		TickInterval:     defaultTickInterval,
		FetchTimeout:     defaultFetchTimeout,
		FailureThreshold: defaultFailureThreshold,
		stopChan:         make(chan struct{}),
	}
}

// Start запускает оба цикла.
func (w *Watcher) Start(ctx context.Context) {
	w.wg.Add(2)
	go w.runCountdown(ctx)
	go w.runPoll(ctx)
}

// Stop останавливает оба цикла. Повторные вызовы безопасны.
func (w *Watcher) Stop() {
	w.stopOnce.Do(func() {
		close(w.stopChan)
	})
}

// Wait блокируется до остановки обоих циклов.
func (w *Watcher) Wait() {
	w.wg.Wait()
}

// runCountdown тикает раз в секунду до истечения окна. Ноль не отменяет
// сессию — отсчёт просто прекращается.
func (w *Watcher) runCountdown(ctx context.Context) {
	defer w.wg.Done()

	deadline := time.Now().Add(w.window)
	ticker := time.NewTicker(w.TickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			remaining := time.Until(deadline)
			if remaining <= 0 {
				if w.OnExpired != nil {
					w.OnExpired()
				}
				return
			}
			if w.OnTick != nil {
				w.OnTick(remaining)
			}
		case <-w.stopChan:
			return
		case <-ctx.Done():
			return
		}
	}
}

// runPoll опрашивает сессию по карточке. Временные ошибки глотаются и
// повторяются следующим тиком; интерфейс получает одну ошибку после
// FailureThreshold подряд неудачных опросов.
func (w *Watcher) runPoll(ctx context.Context) {
	defer w.wg.Done()

	ticker := time.NewTicker(w.PollInterval)
	defer ticker.Stop()

	failures := 0
	for {
		select {
		case <-ticker.C:
			session, err := w.fetch(ctx)
			if err != nil {
				failures++
				logrus.Warnf("return flow poll for card %s failed (%d in a row): %v", w.card, failures, err)
				if failures == w.FailureThreshold && w.OnError != nil {
					w.OnError(ds.Transient("опрос статуса не удаётся: %v", err))
				}
				continue
			}
			failures = 0
			if w.OnSession != nil {
				w.OnSession(session)
			}
			if session.Status == ds.StatusCompleted {
				if w.OnCompleted != nil {
					w.OnCompleted(session)
				}
				w.Stop()
				return
			}
		case <-w.stopChan:
			return
		case <-ctx.Done():
			return
		}
	}
}

// fetch достаёт сессию с ограниченным таймаутом.
func (w *Watcher) fetch(ctx context.Context) (*ds.Session, error) {
	fetchCtx, cancel := context.WithTimeout(ctx, w.FetchTimeout)
	defer cancel()
	return w.provider.SessionByCard(fetchCtx, w.card)
}
