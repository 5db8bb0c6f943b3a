package domain

// Outcome classifies an accepted move.
type Outcome string

const (
	// OutcomeMoved means the board changed and the turn passed.
	OutcomeMoved Outcome = "moved"
	// OutcomeMovedGameOver means the move emptied a roster and ended the duel.
	OutcomeMovedGameOver Outcome = "moved_game_over"
)

// MoveResult describes an accepted move.
type MoveResult struct {
	Outcome  Outcome
	Owner    Owner
	Piece    PieceType
	From     Position
	To       Position
	Captured []Position
	Board    Snapshot
}

// GameOver reports whether the move ended the duel.
func (r MoveResult) GameOver() bool {
	return r.Outcome == OutcomeMovedGameOver
}

// LegalMove is a (piece, direction) pair that Move would accept for the side to play.
type LegalMove struct {
	Piece     PieceType
	Direction Direction
	From      Position
	To        Position
	Captures  bool
}

// Deploy places owner's five pieces on their home row, column = index.
// Validation completes before any board write.
func (g *Game) Deploy(owner Owner, placements []PieceType) (Snapshot, error) {
	if !owner.Valid() {
		return Snapshot{}, ErrUnknownPlayer
	}
	if g.phase == PhaseOver {
		return Snapshot{}, ErrGameOver
	}
	if len(placements) != DeploymentSize {
		return Snapshot{}, ErrInvalidDeploymentSize
	}
	if !validComposition(placements) {
		return Snapshot{}, ErrInvalidComposition
	}
	if g.deployed[owner] {
		if !g.opts.AllowRedeploy {
			return Snapshot{}, ErrAlreadyDeployed
		}
		g.clearOwner(owner)
	}

	row := owner.HomeRow()
	roster := make([]Piece, 0, DeploymentSize)
	for col, t := range placements {
		pos := Position{Row: row, Col: col}
		if occupant := g.board.at(pos); !occupant.Empty() {
			// Only reachable on redeploy: an opponent piece has walked into the home row.
			g.removeFromRoster(occupant.Owner, pos)
		}
		g.board.set(pos, Cell{Owner: owner, Type: t})
		roster = append(roster, Piece{Type: t, Position: pos})
	}
	g.rosters[owner] = roster
	g.deployed[owner] = true

	if g.phase == PhaseAwaitingDeployment && g.deployed[OwnerA] && g.deployed[OwnerB] {
		g.phase = PhaseInProgress
	}
	g.checkOver()
	return g.CurrentState(), nil
}

// Move validates and applies a move, short-circuiting at the first failure.
// A rejected move leaves board, rosters and turn untouched.
func (g *Game) Move(owner Owner, piece PieceType, dir Direction) (MoveResult, error) {
	if !owner.Valid() {
		return MoveResult{}, ErrUnknownPlayer
	}
	switch g.phase {
	case PhaseAwaitingDeployment:
		return MoveResult{}, ErrNotStarted
	case PhaseOver:
		return MoveResult{}, ErrGameOver
	}
	if owner != g.turn {
		return MoveResult{}, ErrWrongTurn
	}
	from, ok := locate(&g.board, owner, piece)
	if !ok {
		return MoveResult{}, ErrPieceNotFound
	}
	delta, ok := dir.Offset()
	if !ok {
		return MoveResult{}, ErrInvalidDirection
	}
	to := from.Add(delta)
	if !to.InBounds() {
		return MoveResult{}, ErrOutOfBounds
	}
	target := g.board.at(to)
	if target.Owner == owner {
		return MoveResult{}, ErrFriendlyTargetBlocked
	}

	mover := g.board.at(from)
	result := MoveResult{
		Outcome: OutcomeMoved,
		Owner:   owner,
		Piece:   mover.Type,
		From:    from,
		To:      to,
	}

	if !target.Empty() {
		if mover.Type.IsHero() {
			for _, pos := range pathBetween(from, to, delta) {
				if g.board.at(pos).Owner == owner.Opponent() {
					g.capture(pos)
					result.Captured = append(result.Captured, pos)
				}
			}
		}
		g.capture(to)
		result.Captured = append(result.Captured, to)
	}

	g.board.clear(from)
	g.board.set(to, mover)
	g.relocate(owner, from, to)

	g.turn = g.turn.Opponent()
	if g.checkOver() {
		result.Outcome = OutcomeMovedGameOver
	}
	result.Board = g.CurrentState()
	return result, nil
}

// LegalMoves enumerates the moves owner could make right now. Each piece tag
// resolves to its first occurrence in row-major order, as Move does.
func (g *Game) LegalMoves(owner Owner) []LegalMove {
	if g.phase != PhaseInProgress || owner != g.turn {
		return nil
	}
	seen := make(map[PieceType]bool, len(requiredComposition))
	var moves []LegalMove
	scanBoard(&g.board, func(from Position, cell Cell) bool {
		if cell.Owner != owner || seen[cell.Type] {
			return true
		}
		seen[cell.Type] = true
		for _, dir := range AllDirections {
			delta, _ := dir.Offset()
			to := from.Add(delta)
			if !to.InBounds() {
				continue
			}
			target := g.board.at(to)
			if target.Owner == owner {
				continue
			}
			moves = append(moves, LegalMove{
				Piece:     cell.Type,
				Direction: dir,
				From:      from,
				To:        to,
				Captures:  !target.Empty(),
			})
		}
		return true
	})
	return moves
}
