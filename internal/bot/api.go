package bot

import (
	"errors"

	"gridduel/internal/domain"
)

var (
	// ErrNotBotTurn is returned when the agent is asked to move out of turn.
	ErrNotBotTurn = errors.New("bot: not this agent's turn")
	// ErrNoLegalMove is returned when every piece is boxed in.
	ErrNoLegalMove = errors.New("bot: no legal move")
)

// Move represents the decision made by the AI.
type Move struct {
	Piece     domain.PieceType
	Direction domain.Direction
}

// Brain is the interface that all bot strategies must implement.
type Brain interface {
	// Deployment returns the home-row layout, column = index.
	Deployment() []domain.PieceType
	// ChooseMove picks a move for owner, who must be the side to play.
	ChooseMove(game *domain.Game, owner domain.Owner) (Move, error)
}
