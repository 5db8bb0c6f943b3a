package app

import (
	"gridduel/internal/domain"
)

// Service contains duel use-cases operating on domain state.
type Service struct {
	opts domain.Options
}

// NewService constructs a Service whose games use the given rule options.
func NewService(opts domain.Options) *Service {
	return &Service{opts: opts}
}

// NewGame creates an empty game awaiting deployment.
func (s *Service) NewGame() *domain.Game {
	return domain.NewGame(s.opts)
}

// Deploy places owner's pieces and emits the resulting board.
func (s *Service) Deploy(game *domain.Game, owner domain.Owner, tags []string) ([]Event, error) {
	board, err := game.Deploy(owner, domain.ParsePlacements(tags))
	if err != nil {
		return nil, err
	}

	events := []Event{
		{
			Kind: EventStateUpdate,
			Payload: StateUpdatePayload{
				Actor: owner,
				Board: board,
				Turn:  game.Turn(),
				Phase: game.Phase(),
			},
		},
	}
	// A permissive redeploy can overwrite the last opponent piece in the home row.
	if game.IsOver() {
		events = append(events, gameOverEvent(game))
	}
	return events, nil
}

// Move applies a move and emits the new board, plus a game-over event when
// the move emptied a roster.
func (s *Service) Move(game *domain.Game, owner domain.Owner, piece, direction string) ([]Event, error) {
	res, err := game.Move(owner, domain.PieceType(piece), domain.Direction(direction))
	if err != nil {
		return nil, err
	}

	events := []Event{
		{
			Kind: EventStateUpdate,
			Payload: StateUpdatePayload{
				Actor:    owner,
				Board:    res.Board,
				Turn:     game.Turn(),
				Phase:    game.Phase(),
				Captured: res.Captured,
			},
		},
	}
	if res.GameOver() {
		events = append(events, gameOverEvent(game))
	}
	return events, nil
}

func gameOverEvent(game *domain.Game) Event {
	return Event{
		Kind: EventGameOver,
		Payload: GameOverPayload{
			Winner: game.Winner(),
			Board:  game.CurrentState(),
		},
	}
}
