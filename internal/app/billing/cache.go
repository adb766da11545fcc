package billing

import (
	"sync"
	"time"
)

// CostCache — кэш расчёта стоимости по id сессии для админского чтения.
// Исключает дублирующие параллельные расчёты по одному id в рамках одного
// просмотра; любая мутация сессии явно инвалидирует запись.
// Никакого глобального изменяемого состояния: объект создаётся при старте
// и передаётся явно.
type CostCache struct {
	mu      sync.Mutex
	ttl     time.Duration
	entries map[uint]costEntry
}

type costEntry struct {
	detail   CostDetail
	cachedAt time.Time
}

func NewCostCache(ttl time.Duration) *CostCache {
	return &CostCache{
		ttl:     ttl,
		entries: make(map[uint]costEntry),
	}
}

// Get возвращает закэшированный расчёт или вычисляет его через compute.
// Ошибки не кэшируются.
func (c *CostCache) Get(sessionID uint, compute func() (CostDetail, error)) (CostDetail, error) {
	c.mu.Lock()
	if entry, ok := c.entries[sessionID]; ok && time.Since(entry.cachedAt) < c.ttl {
		c.mu.Unlock()
		return entry.detail, nil
	}
	c.mu.Unlock()

	detail, err := compute()
	if err != nil {
		return CostDetail{}, err
	}

	c.mu.Lock()
	c.entries[sessionID] = costEntry{detail: detail, cachedAt: time.Now()}
	c.mu.Unlock()
	return detail, nil
}

// Invalidate сбрасывает запись по сессии. Вызывается при каждой мутации.
func (c *CostCache) Invalidate(sessionID uint) {
	c.mu.Lock()
	delete(c.entries, sessionID)
	c.mu.Unlock()
}
