package tracker

import (
	"sync"

	"github.com/google/uuid"
)

// Manager owns the session ledgers: one per logged-in user, created at login
// and dropped at logout. A login always starts from zero — a fresh session
// never inherits a previous session's spend.
type Manager struct {
	mu      sync.RWMutex
	ledgers map[uuid.UUID]*Ledger
}

func NewManager() *Manager {
	return &Manager{ledgers: make(map[uuid.UUID]*Ledger)}
}

// Begin starts a zeroed ledger for the user, replacing any existing one.
func (m *Manager) Begin(userID uuid.UUID) *Ledger {
	m.mu.Lock()
	defer m.mu.Unlock()

	l := NewLedger()
	m.ledgers[userID] = l
	return l
}

// Ledger returns the user's session ledger, creating one if the session
// predates this process (e.g. after a restart with a still-valid token).
func (m *Manager) Ledger(userID uuid.UUID) *Ledger {
	m.mu.RLock()
	l, ok := m.ledgers[userID]
	m.mu.RUnlock()
	if ok {
		return l
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if l, ok := m.ledgers[userID]; ok {
		return l
	}
	l = NewLedger()
	m.ledgers[userID] = l
	return l
}

// End drops the user's ledger at logout.
func (m *Manager) End(userID uuid.UUID) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.ledgers, userID)
}
