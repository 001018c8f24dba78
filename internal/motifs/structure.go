package motifs

import (
	"github.com/lk16/chessreview/internal/board"
	"github.com/lk16/chessreview/internal/models"
)

// detectPawnStructure looks at the mover's own pawns after the move.
func detectPawnStructure(in *input) []models.MotifLabel {
	var files [8]int
	var pawns []board.Square

	for _, sq := range in.after.Occupied(in.mover) {
		if in.after.Piece(sq).Kind == board.Pawn {
			files[sq.File()]++
			pawns = append(pawns, sq)
		}
	}

	var labels []models.MotifLabel

	for _, count := range files {
		if count > 1 {
			labels = append(labels, models.DoubledPawns)
			break
		}
	}

	for _, sq := range pawns {
		if isIsolated(files, sq.File()) {
			labels = append(labels, models.IsolatedPawn)
			break
		}
	}

	for _, sq := range pawns {
		if isPassed(in.after, sq, in.mover) {
			labels = append(labels, models.PassedPawn)
			break
		}
	}

	return labels
}

func isIsolated(files [8]int, file int) bool {
	if file > 0 && files[file-1] > 0 {
		return false
	}
	if file < 7 && files[file+1] > 0 {
		return false
	}
	return true
}

// isPassed returns true if no opposing pawn stands ahead of the pawn on its file.
func isPassed(state board.State, sq board.Square, color board.Color) bool {
	enemyPawn := board.Piece{Kind: board.Pawn, Color: color.Other()}
	for ahead := sq.Offset(0, color.Forward()); ahead != board.NoSquare; ahead = ahead.Offset(0, color.Forward()) {
		if state.Piece(ahead) == enemyPawn {
			return false
		}
	}
	return true
}

// detectBackRankThreat: the opposing king sits on its home rank with the square in front of it blocked.
func detectBackRankThreat(in *input) []models.MotifLabel {
	king := in.after.KingSquare(in.opponent)
	if king == board.NoSquare || king.Rank() != in.opponent.HomeRank() {
		return nil
	}

	front := king.Offset(0, in.opponent.Forward())
	return when(front != board.NoSquare && !in.after.Piece(front).IsEmpty(), models.BackRankThreat)
}
