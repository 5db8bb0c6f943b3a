package domain

import "strings"

// Phase represents the lifecycle stage of a duel.
type Phase string

const (
	// PhaseAwaitingDeployment is the state before both players have deployed.
	PhaseAwaitingDeployment Phase = "awaiting_deployment"
	// PhaseInProgress is the state where moves are accepted.
	PhaseInProgress Phase = "in_progress"
	// PhaseOver is the terminal state reached when a roster empties.
	PhaseOver Phase = "over"
)

// Owner identifies one of the two participants.
type Owner string

const (
	OwnerA Owner = "A"
	OwnerB Owner = "B"
)

// Owners lists both participants in seat order.
var Owners = [2]Owner{OwnerA, OwnerB}

// Valid reports whether o is A or B.
func (o Owner) Valid() bool {
	return o == OwnerA || o == OwnerB
}

// Opponent returns the other participant.
func (o Owner) Opponent() Owner {
	if o == OwnerA {
		return OwnerB
	}
	return OwnerA
}

// HomeRow is the row an owner deploys into.
func (o Owner) HomeRow() int {
	if o == OwnerA {
		return 0
	}
	return BoardSize - 1
}

// PieceType is a piece tag: P, H1 or H2.
type PieceType string

const (
	PiecePawn  PieceType = "P"
	PieceHero1 PieceType = "H1"
	PieceHero2 PieceType = "H2"
)

// IsHero reports whether the piece captures along its path.
func (t PieceType) IsHero() bool {
	return strings.HasPrefix(string(t), "H")
}

// Position is a (row, col) board coordinate.
type Position struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

// Add offsets p by delta.
func (p Position) Add(delta Position) Position {
	return Position{Row: p.Row + delta.Row, Col: p.Col + delta.Col}
}

// InBounds reports whether p lies on the board.
func (p Position) InBounds() bool {
	return p.Row >= 0 && p.Row < BoardSize && p.Col >= 0 && p.Col < BoardSize
}

// Cell is a single board square; the zero value is empty.
type Cell struct {
	Owner Owner
	Type  PieceType
}

// Empty reports whether no piece occupies the cell.
func (c Cell) Empty() bool {
	return c.Owner == ""
}

// String renders the cell as "<owner>-<tag>", or "" when empty.
func (c Cell) String() string {
	if c.Empty() {
		return ""
	}
	return string(c.Owner) + "-" + string(c.Type)
}

// Piece is a live roster entry.
type Piece struct {
	Type     PieceType `json:"type"`
	Position Position  `json:"position"`
}

// Board is the 5x5 grid.
type Board [BoardSize][BoardSize]Cell

func (b *Board) at(p Position) Cell {
	return b[p.Row][p.Col]
}

func (b *Board) set(p Position, c Cell) {
	b[p.Row][p.Col] = c
}

func (b *Board) clear(p Position) {
	b[p.Row][p.Col] = Cell{}
}

// Snapshot is the serializable view of the board. Being an array it is
// copied by value, so callers can never alias engine state.
type Snapshot [BoardSize][BoardSize]string

// Options tunes rule variants left open by the game design.
type Options struct {
	// AllowRedeploy lets an owner deploy again, resetting their pieces.
	AllowRedeploy bool
}

// Game holds the authoritative board, rosters and turn for one duel.
// It is not safe for concurrent use; callers serialize access.
type Game struct {
	board    Board
	turn     Owner
	rosters  map[Owner][]Piece
	deployed map[Owner]bool
	phase    Phase
	winner   Owner
	opts     Options
}

// NewGame returns an empty board awaiting deployment, with A to move first.
func NewGame(opts Options) *Game {
	return &Game{
		turn:     OwnerA,
		rosters:  map[Owner][]Piece{OwnerA: nil, OwnerB: nil},
		deployed: map[Owner]bool{},
		phase:    PhaseAwaitingDeployment,
		opts:     opts,
	}
}

// LoadPosition builds an in-progress game from an arbitrary placement.
// Both owners count as deployed; rosters are derived from the cells.
// If a roster is already empty the game starts in PhaseOver.
func LoadPosition(cells map[Position]Cell, turn Owner, opts Options) *Game {
	g := NewGame(opts)
	g.turn = turn
	for pos, cell := range cells {
		if !pos.InBounds() || cell.Empty() {
			continue
		}
		g.board.set(pos, cell)
	}
	scanBoard(&g.board, func(pos Position, cell Cell) bool {
		g.rosters[cell.Owner] = append(g.rosters[cell.Owner], Piece{Type: cell.Type, Position: pos})
		return true
	})
	g.deployed[OwnerA] = true
	g.deployed[OwnerB] = true
	g.phase = PhaseInProgress
	g.checkOver()
	return g
}

// Phase returns the current lifecycle stage.
func (g *Game) Phase() Phase {
	return g.phase
}

// Turn returns the owner expected to move next.
func (g *Game) Turn() Owner {
	return g.turn
}

// Deployed reports whether owner has completed a deployment.
func (g *Game) Deployed(owner Owner) bool {
	return g.deployed[owner]
}

// IsOver reports whether a roster has been emptied after the duel started.
func (g *Game) IsOver() bool {
	return g.phase == PhaseOver
}

// Winner returns the owner with pieces left, or "" while the duel is running.
func (g *Game) Winner() Owner {
	return g.winner
}

// Roster returns a copy of the owner's live pieces.
func (g *Game) Roster(owner Owner) []Piece {
	return append([]Piece(nil), g.rosters[owner]...)
}

// RosterSize returns the number of live pieces the owner has.
func (g *Game) RosterSize(owner Owner) int {
	return len(g.rosters[owner])
}

// CurrentState returns an immutable snapshot of the grid.
func (g *Game) CurrentState() Snapshot {
	var snap Snapshot
	for r := 0; r < BoardSize; r++ {
		for c := 0; c < BoardSize; c++ {
			snap[r][c] = g.board[r][c].String()
		}
	}
	return snap
}

// CellAt returns the occupant of pos; out-of-bounds positions read as empty.
func (g *Game) CellAt(pos Position) Cell {
	if !pos.InBounds() {
		return Cell{}
	}
	return g.board.at(pos)
}

// Clone returns an independent copy of the game for look-ahead.
func (g *Game) Clone() *Game {
	c := &Game{
		board:    g.board,
		turn:     g.turn,
		rosters:  make(map[Owner][]Piece, len(g.rosters)),
		deployed: make(map[Owner]bool, len(g.deployed)),
		phase:    g.phase,
		winner:   g.winner,
		opts:     g.opts,
	}
	for o, pieces := range g.rosters {
		c.rosters[o] = append([]Piece(nil), pieces...)
	}
	for o, d := range g.deployed {
		c.deployed[o] = d
	}
	return c
}
