package analysis

import "github.com/lk16/chessreview/internal/models"

const (
	BlunderLoss    = 300
	InaccuracyLoss = 100
	ExcellentLoss  = 30

	// TacticalSwing is the loss from which a ply counts as tactical
	TacticalSwing = 200

	// PhaseLength is the number of plies in the opening and in the endgame
	PhaseLength = 10
)

// CentipawnLoss returns how much the mover lost with a move.
// before is from the mover's perspective, after from the opponent's.
func CentipawnLoss(before, after models.Evaluation) int {
	loss := before.Centipawns() + after.Centipawns()
	if loss < 0 {
		return -loss
	}
	return loss
}

// Classify grades a move by its centipawn loss.
func Classify(loss int) models.Quality {
	switch {
	case loss >= BlunderLoss:
		return models.Blunder
	case loss >= InaccuracyLoss:
		return models.Inaccuracy
	case loss <= ExcellentLoss:
		return models.Excellent
	}
	return models.Reasonable
}

// PhaseOf returns the phase of ply in a game of total plies.
// The opening takes precedence when a game is too short for the two to be apart.
func PhaseOf(ply, total int) models.Phase {
	switch {
	case ply < PhaseLength:
		return models.Opening
	case ply >= total-PhaseLength:
		return models.Endgame
	}
	return models.Middlegame
}
