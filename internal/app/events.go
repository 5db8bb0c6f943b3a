package app

import "gridduel/internal/domain"

// EventKind identifies emitted domain events for router dispatch.
type EventKind string

const (
	EventStateUpdate EventKind = "state_update"
	EventGameOver    EventKind = "game_over"
)

// Event is a domain/app event. Routers deliver every event to both seats.
type Event struct {
	Kind    EventKind
	Payload any
}

type StateUpdatePayload struct {
	Actor    domain.Owner
	Board    domain.Snapshot
	Turn     domain.Owner
	Phase    domain.Phase
	Captured []domain.Position
}

type GameOverPayload struct {
	Winner domain.Owner
	Board  domain.Snapshot
}
