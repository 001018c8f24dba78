package motifs

import (
	"github.com/lk16/chessreview/internal/board"
	"github.com/lk16/chessreview/internal/models"
)

// detectFork: the moved piece attacks two or more opposing minor or major pieces.
func detectFork(in *input) []models.MotifLabel {
	count := 0
	for _, piece := range in.attackedOpposing() {
		switch piece.Kind {
		case board.Knight, board.Bishop, board.Rook, board.Queen:
			count++
		}
	}
	return when(count >= 2, models.Fork)
}

// detectDoubleAttack: the moved piece attacks two or more opposing pieces of any kind.
func detectDoubleAttack(in *input) []models.MotifLabel {
	return when(len(in.attackedOpposing()) >= 2, models.DoubleAttack)
}

// detectPin: some opposing piece can move, but each of its moves exposes its own king.
func detectPin(in *input) []models.MotifLabel {
	for _, sq := range in.opposingPieces() {
		if isPinned(in.after, sq, in.opponent) {
			return []models.MotifLabel{models.Pin}
		}
	}
	return nil
}

func isPinned(state board.State, sq board.Square, color board.Color) bool {
	moves := state.Moves(sq)
	if len(moves) == 0 {
		return false
	}

	for _, to := range moves {
		if !state.Apply(sq, to, board.Queen).InCheck(color) {
			return false
		}
	}
	return true
}

// detectSkewer: looking outward from the moved slider, the first two pieces hit are
// opposing and the nearer one is worth more.
func detectSkewer(in *input) []models.MotifLabel {
	moved := in.moved()
	if !moved.Kind.IsSlider() {
		return nil
	}

	for _, d := range board.Directions(moved.Kind) {
		front, ok := firstOccupied(in.after, in.move.To, d)
		if !ok {
			continue
		}
		back, ok := firstOccupied(in.after, front, d)
		if !ok {
			continue
		}

		frontPiece, backPiece := in.after.Piece(front), in.after.Piece(back)
		if frontPiece.Color == in.opponent && backPiece.Color == in.opponent &&
			board.Value(frontPiece.Kind) > board.Value(backPiece.Kind) {
			return []models.MotifLabel{models.Skewer}
		}
	}

	return nil
}

func firstOccupied(state board.State, from board.Square, d board.Direction) (board.Square, bool) {
	ray := state.Ray(from, d)
	if len(ray) == 0 {
		return board.NoSquare, false
	}

	last := ray[len(ray)-1]
	if state.Piece(last).IsEmpty() {
		return board.NoSquare, false
	}
	return last, true
}

// detectDiscovered: the mover's other pieces attack more squares than before the move.
// When the opposing king is among them it is a discovered check.
func detectDiscovered(in *input) []models.MotifLabel {
	before := in.before.AttackMask(in.mover, in.move.From)
	after := in.after.AttackMask(in.mover, in.move.To)

	if board.CountSquares(after) <= board.CountSquares(before) {
		return nil
	}

	king := in.after.KingSquare(in.opponent)
	if king != board.NoSquare && after&(1<<uint(king)) != 0 {
		return []models.MotifLabel{models.DiscoveredCheck}
	}
	return []models.MotifLabel{models.DiscoveredAttack}
}

// detectOutpost: a knight or bishop lands in the opponent's half on a square
// it has more defenders than attackers on.
func detectOutpost(in *input) []models.MotifLabel {
	moved := in.moved()
	if moved.Kind != board.Knight && moved.Kind != board.Bishop {
		return nil
	}

	rank := in.move.To.Rank()
	if (in.mover == board.White && rank < 4) || (in.mover == board.Black && rank > 3) {
		return nil
	}

	defenders := len(in.after.Attackers(in.move.To, in.mover))
	attackers := len(in.after.Attackers(in.move.To, in.opponent))

	return when(defenders > attackers, models.Outpost)
}

// detectHangingPiece: an opposing piece is attacked and not defended at all.
func detectHangingPiece(in *input) []models.MotifLabel {
	for _, sq := range in.opposingPieces() {
		if in.after.IsAttacked(sq, in.mover) && !in.after.IsAttacked(sq, in.opponent) {
			return []models.MotifLabel{models.HangingPiece}
		}
	}
	return nil
}

// detectOverloadedDefender: an opposing piece is defended at least twice, so one of the
// defenders may be tied up elsewhere.
func detectOverloadedDefender(in *input) []models.MotifLabel {
	for _, sq := range in.opposingPieces() {
		if len(in.after.Attackers(sq, in.opponent)) >= 2 {
			return []models.MotifLabel{models.OverloadedDefender}
		}
	}
	return nil
}

// detectTrappedPiece: an opposing non-pawn piece has moves, but lands on an attacked square with each of them.
func detectTrappedPiece(in *input) []models.MotifLabel {
	for _, sq := range in.opposingPieces() {
		if in.after.Piece(sq).Kind == board.Pawn {
			continue
		}
		if isTrapped(in.after, sq, in.mover) {
			return []models.MotifLabel{models.TrappedPiece}
		}
	}
	return nil
}

func isTrapped(state board.State, sq board.Square, attacker board.Color) bool {
	moves := state.Moves(sq)
	if len(moves) == 0 {
		return false
	}

	for _, to := range moves {
		if !state.Apply(sq, to, board.Queen).IsAttacked(to, attacker) {
			return false
		}
	}
	return true
}

// detectBattery: the moved slider lines up behind or in front of a friendly slider along a shared line.
func detectBattery(in *input) []models.MotifLabel {
	moved := in.moved()
	if !moved.Kind.IsSlider() {
		return nil
	}

	for _, d := range board.Directions(moved.Kind) {
		sq, ok := firstOccupied(in.after, in.move.To, d)
		if !ok {
			continue
		}
		piece := in.after.Piece(sq)
		if piece.Color == in.mover && board.SlidesAlong(piece.Kind, d) {
			return []models.MotifLabel{models.Battery}
		}
	}

	return nil
}

// detectMatingNet: the move gives check and the king has at most two safe squares to flee to.
func detectMatingNet(in *input) []models.MotifLabel {
	if !in.after.InCheck(in.opponent) {
		return nil
	}

	king := in.after.KingSquare(in.opponent)
	flights := 0
	for _, to := range in.after.Moves(king) {
		if !in.after.Apply(king, to, board.NoKind).InCheck(in.opponent) {
			flights++
		}
	}

	return when(flights <= 2, models.MatingNet)
}
