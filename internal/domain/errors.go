package domain

import "errors"

// Rule violations. The messages are relayed verbatim to clients.
var (
	ErrUnknownPlayer         = errors.New("Invalid player")
	ErrInvalidDeploymentSize = errors.New("Invalid deployment: exactly 5 pieces required")
	ErrInvalidComposition    = errors.New("Invalid deployment: need 3 P, 1 H1 and 1 H2")
	ErrAlreadyDeployed       = errors.New("Invalid deployment: already deployed")
	ErrNotStarted            = errors.New("Game has not started")
	ErrGameOver              = errors.New("Game over")
	ErrWrongTurn             = errors.New("Not your turn")
	ErrPieceNotFound         = errors.New("Character not found")
	ErrInvalidDirection      = errors.New("Invalid move direction")
	ErrOutOfBounds           = errors.New("Move out of bounds")
	ErrFriendlyTargetBlocked = errors.New("Move targets friendly character")
)
