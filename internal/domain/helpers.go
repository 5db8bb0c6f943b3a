package domain

import "strings"

// ParseOwner maps a connection identity ("A", "/B", "a") to an Owner.
func ParseOwner(s string) (Owner, error) {
	o := Owner(strings.ToUpper(strings.Trim(strings.TrimSpace(s), "/")))
	if !o.Valid() {
		return "", ErrUnknownPlayer
	}
	return o, nil
}

// ParsePlacements converts raw tags without validating them; unknown tags
// are rejected later by the composition check.
func ParsePlacements(tags []string) []PieceType {
	out := make([]PieceType, len(tags))
	for i, tag := range tags {
		out[i] = PieceType(strings.TrimSpace(tag))
	}
	return out
}

// scanBoard visits cells in row-major order until fn returns false.
func scanBoard(b *Board, fn func(pos Position, cell Cell) bool) {
	for r := 0; r < BoardSize; r++ {
		for c := 0; c < BoardSize; c++ {
			pos := Position{Row: r, Col: c}
			cell := b.at(pos)
			if cell.Empty() {
				continue
			}
			if !fn(pos, cell) {
				return
			}
		}
	}
}

// locate finds the first cell holding (owner, piece) in row-major order.
func locate(b *Board, owner Owner, piece PieceType) (Position, bool) {
	var found Position
	ok := false
	scanBoard(b, func(pos Position, cell Cell) bool {
		if cell.Owner == owner && cell.Type == piece {
			found, ok = pos, true
			return false
		}
		return true
	})
	return found, ok
}

// validComposition reports whether placements are exactly {P x3, H1, H2}.
func validComposition(placements []PieceType) bool {
	counts := make(map[PieceType]int, len(requiredComposition))
	for _, t := range placements {
		if _, known := requiredComposition[t]; !known {
			return false
		}
		counts[t]++
	}
	for t, want := range requiredComposition {
		if counts[t] != want {
			return false
		}
	}
	return true
}

// pathBetween lists the cells strictly between from and to when walking by delta.
// Adjacent cells yield an empty path.
func pathBetween(from, to, delta Position) []Position {
	var path []Position
	for cur := from.Add(delta); cur != to && cur.InBounds(); cur = cur.Add(delta) {
		path = append(path, cur)
	}
	return path
}

func (g *Game) removeFromRoster(owner Owner, pos Position) {
	roster := g.rosters[owner]
	for i, p := range roster {
		if p.Position == pos {
			g.rosters[owner] = append(roster[:i], roster[i+1:]...)
			return
		}
	}
}

func (g *Game) relocate(owner Owner, from, to Position) {
	for i := range g.rosters[owner] {
		if g.rosters[owner][i].Position == from {
			g.rosters[owner][i].Position = to
			return
		}
	}
}

// capture clears pos and drops the occupant from its owner's roster.
func (g *Game) capture(pos Position) Cell {
	victim := g.board.at(pos)
	if victim.Empty() {
		return victim
	}
	g.board.clear(pos)
	g.removeFromRoster(victim.Owner, pos)
	return victim
}

// clearOwner removes every piece owner holds from the board and roster.
func (g *Game) clearOwner(owner Owner) {
	for _, p := range g.rosters[owner] {
		g.board.clear(p.Position)
	}
	g.rosters[owner] = nil
}

// checkOver moves an in-progress game to PhaseOver once a roster is empty.
func (g *Game) checkOver() bool {
	if g.phase != PhaseInProgress {
		return g.phase == PhaseOver
	}
	emptyA := len(g.rosters[OwnerA]) == 0
	emptyB := len(g.rosters[OwnerB]) == 0
	if !emptyA && !emptyB {
		return false
	}
	g.phase = PhaseOver
	switch {
	case emptyA && !emptyB:
		g.winner = OwnerB
	case emptyB && !emptyA:
		g.winner = OwnerA
	}
	return true
}
