package bot

import "gridduel/internal/domain"

// Tuning weights the greedy evaluation of one candidate move.
type Tuning struct {
	WinBonus         float64
	PawnCaptureValue float64
	HeroCaptureValue float64
	AdvanceWeight    float64
	// ExposurePenalty scales the mover's value when the opponent can take it next ply.
	ExposurePenalty float64
}

// DefaultTuning prefers winning, then trades that gain material, then
// safe advances toward the opponent home row.
var DefaultTuning = Tuning{
	WinBonus:         1000.0,
	PawnCaptureValue: 10.0,
	HeroCaptureValue: 25.0,
	AdvanceWeight:    1.5,
	ExposurePenalty:  0.8,
}

func (t Tuning) pieceValue(p domain.PieceType) float64 {
	if p.IsHero() {
		return t.HeroCaptureValue
	}
	return t.PawnCaptureValue
}
