package bot

import (
	"math/rand"

	"gridduel/internal/domain"
)

var baseLayout = []domain.PieceType{
	domain.PiecePawn, domain.PieceHero1, domain.PiecePawn, domain.PieceHero2, domain.PiecePawn,
}

// RandomBrain deploys in a shuffled order and plays any legal move.
type RandomBrain struct {
	rng *rand.Rand
}

func (b *RandomBrain) Deployment() []domain.PieceType {
	layout := append([]domain.PieceType(nil), baseLayout...)
	b.rng.Shuffle(len(layout), func(i, j int) { layout[i], layout[j] = layout[j], layout[i] })
	return layout
}

func (b *RandomBrain) ChooseMove(game *domain.Game, owner domain.Owner) (Move, error) {
	legal := game.LegalMoves(owner)
	if len(legal) == 0 {
		return Move{}, ErrNoLegalMove
	}
	pick := legal[b.rng.Intn(len(legal))]
	return Move{Piece: pick.Piece, Direction: pick.Direction}, nil
}
