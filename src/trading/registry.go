package trading

import (
	"sync"

	"memesniper/src/model"
)

// Handle is the registry's view of one live trade. The monitor goroutine
// owns the trade struct; everyone else goes through the handle's mutex and
// only ever sees copies.
type Handle struct {
	mu             sync.Mutex
	trade          *model.Trade
	closeRequested bool
}

// Snapshot returns a copy of the trade safe to serialize. The swap slice is
// shared but append-only, and the monitor only appends under the handle lock.
func (h *Handle) Snapshot() model.Trade {
	h.mu.Lock()
	defer h.mu.Unlock()
	return *h.trade
}

// RequestClose flags the trade for a manual close. The monitor picks the
// flag up on its next tick.
func (h *Handle) RequestClose() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.closeRequested = true
}

func (h *Handle) closeRequestedNow() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.closeRequested
}

// withTrade runs fn with the handle lock held. Only the monitor mutates the
// trade through this.
func (h *Handle) withTrade(fn func(t *model.Trade)) {
	h.mu.Lock()
	defer h.mu.Unlock()
	fn(h.trade)
}

// Registry tracks every position currently being monitored, keyed by
// trade_id. Monitors deregister themselves as their last step, so a trade
// disappearing from the registry means its lifecycle is complete.
type Registry struct {
	mu      sync.RWMutex
	handles map[string]*Handle
}

func NewRegistry() *Registry {
	return &Registry{handles: make(map[string]*Handle)}
}

func (r *Registry) Add(trade *model.Trade) *Handle {
	r.mu.Lock()
	defer r.mu.Unlock()
	h := &Handle{trade: trade}
	r.handles[trade.TradeID] = h
	return h
}

func (r *Registry) Remove(tradeID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.handles, tradeID)
}

func (r *Registry) Get(tradeID string) (*Handle, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	h, ok := r.handles[tradeID]
	return h, ok
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.handles)
}

// Snapshots returns copies of every live trade, for status reporting.
func (r *Registry) Snapshots() []model.Trade {
	r.mu.RLock()
	handles := make([]*Handle, 0, len(r.handles))
	for _, h := range r.handles {
		handles = append(handles, h)
	}
	r.mu.RUnlock()

	trades := make([]model.Trade, 0, len(handles))
	for _, h := range handles {
		trades = append(trades, h.Snapshot())
	}
	return trades
}
