package domain

const (
	// BoardSize is the width and height of the square board.
	BoardSize = 5
	// DeploymentSize is the number of pieces each player places during deployment.
	DeploymentSize = 5
)

// requiredComposition is the exact multiset of piece tags a deployment must contain.
var requiredComposition = map[PieceType]int{
	PiecePawn:  3,
	PieceHero1: 1,
	PieceHero2: 1,
}

// Direction is a movement tag sent by clients.
type Direction string

const (
	DirLeft         Direction = "L"
	DirRight        Direction = "R"
	DirForward      Direction = "F"
	DirBack         Direction = "B"
	DirForwardLeft  Direction = "FL"
	DirForwardRight Direction = "FR"
	DirBackLeft     Direction = "BL"
	DirBackRight    Direction = "BR"
)

// AllDirections lists every recognized direction in a stable order.
var AllDirections = []Direction{
	DirLeft, DirRight, DirForward, DirBack,
	DirForwardLeft, DirForwardRight, DirBackLeft, DirBackRight,
}

// Offsets are board-absolute: F always points toward row 0 for both players.
var directionOffsets = map[Direction]Position{
	DirLeft:         {Row: 0, Col: -1},
	DirRight:        {Row: 0, Col: 1},
	DirForward:      {Row: -1, Col: 0},
	DirBack:         {Row: 1, Col: 0},
	DirForwardLeft:  {Row: -1, Col: -1},
	DirForwardRight: {Row: -1, Col: 1},
	DirBackLeft:     {Row: 1, Col: -1},
	DirBackRight:    {Row: 1, Col: 1},
}

// Offset returns the (row, col) delta for the direction.
func (d Direction) Offset() (Position, bool) {
	delta, ok := directionOffsets[d]
	return delta, ok
}
