package bot

import (
	"math/rand"

	"gridduel/internal/domain"
)

// GreedyBrain scores every legal move one ply deep.
type GreedyBrain struct {
	rng    *rand.Rand
	tuning Tuning
}

// Deployment keeps heroes off the edges.
func (b *GreedyBrain) Deployment() []domain.PieceType {
	return append([]domain.PieceType(nil), baseLayout...)
}

func (b *GreedyBrain) ChooseMove(game *domain.Game, owner domain.Owner) (Move, error) {
	legal := game.LegalMoves(owner)
	if len(legal) == 0 {
		return Move{}, ErrNoLegalMove
	}

	var (
		best      []domain.LegalMove
		bestScore float64
	)
	for i, lm := range legal {
		score := b.score(game, owner, lm)
		switch {
		case i == 0 || score > bestScore:
			best = []domain.LegalMove{lm}
			bestScore = score
		case score == bestScore:
			best = append(best, lm)
		}
	}

	pick := best[b.rng.Intn(len(best))]
	return Move{Piece: pick.Piece, Direction: pick.Direction}, nil
}

func (b *GreedyBrain) score(game *domain.Game, owner domain.Owner, lm domain.LegalMove) float64 {
	sim := game.Clone()
	res, err := sim.Move(owner, lm.Piece, lm.Direction)
	if err != nil {
		return -b.tuning.WinBonus
	}
	if res.GameOver() {
		return b.tuning.WinBonus
	}

	var score float64
	for _, pos := range res.Captured {
		score += b.tuning.pieceValue(game.CellAt(pos).Type)
	}

	goal := owner.Opponent().HomeRow()
	score += b.tuning.AdvanceWeight * float64(distance(lm.From.Row, goal)-distance(lm.To.Row, goal))

	for _, reply := range sim.LegalMoves(owner.Opponent()) {
		if reply.To == res.To {
			score -= b.tuning.ExposurePenalty * b.tuning.pieceValue(res.Piece)
			break
		}
	}
	return score
}

func distance(a, b int) int {
	if a > b {
		return a - b
	}
	return b - a
}
