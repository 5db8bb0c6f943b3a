package app

import (
	"sync"

	"gridduel/internal/domain"
)

// Match guards one game for routers that call in from several goroutines.
// Mutations hold the write lock; queries share the read lock.
type Match struct {
	mu    sync.RWMutex
	svc   *Service
	game  *domain.Game
	moves int
}

// NewMatch creates a match with a fresh game.
func NewMatch(svc *Service) *Match {
	return &Match{svc: svc, game: svc.NewGame()}
}

// LoadMatch wraps an existing game, such as one built with domain.LoadPosition.
func LoadMatch(svc *Service, game *domain.Game) *Match {
	return &Match{svc: svc, game: game}
}

// Deploy serializes Service.Deploy.
func (m *Match) Deploy(owner domain.Owner, tags []string) ([]Event, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.svc.Deploy(m.game, owner, tags)
}

// Move serializes Service.Move.
func (m *Match) Move(owner domain.Owner, piece, direction string) ([]Event, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	events, err := m.svc.Move(m.game, owner, piece, direction)
	if err == nil {
		m.moves++
	}
	return events, err
}

// View runs fn with read access to the game. fn must not retain the pointer.
func (m *Match) View(fn func(g *domain.Game)) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	fn(m.game)
}

// Moves returns the number of accepted moves.
func (m *Match) Moves() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.moves
}

// Winner returns the winning owner once the duel is over.
func (m *Match) Winner() domain.Owner {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.game.Winner()
}

// State returns the current board snapshot.
func (m *Match) State() domain.Snapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.game.CurrentState()
}

// IsOver reports whether the duel has ended.
func (m *Match) IsOver() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.game.IsOver()
}

// Turn returns the owner expected to move.
func (m *Match) Turn() domain.Owner {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.game.Turn()
}

// Phase returns the lifecycle stage.
func (m *Match) Phase() domain.Phase {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.game.Phase()
}
