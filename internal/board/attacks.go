package board

import "math/bits"

// Direction is a file and rank step.
type Direction struct {
	File, Rank int
}

var (
	RookDirections   = []Direction{{1, 0}, {-1, 0}, {0, 1}, {0, -1}}
	BishopDirections = []Direction{{1, 1}, {1, -1}, {-1, 1}, {-1, -1}}
	QueenDirections  = append(append([]Direction{}, RookDirections...), BishopDirections...)

	knightJumps = []Direction{{1, 2}, {2, 1}, {2, -1}, {1, -2}, {-1, -2}, {-2, -1}, {-2, 1}, {-1, 2}}
)

// Directions returns the ray directions of a sliding piece kind and nil for other kinds.
func Directions(k Kind) []Direction {
	switch k {
	case Bishop:
		return BishopDirections
	case Rook:
		return RookDirections
	case Queen:
		return QueenDirections
	}
	return nil
}

// SlidesAlong returns true if pieces of kind k move along d.
func SlidesAlong(k Kind, d Direction) bool {
	diagonal := d.File != 0 && d.Rank != 0
	switch k {
	case Queen:
		return true
	case Bishop:
		return diagonal
	case Rook:
		return !diagonal
	}
	return false
}

// Ray returns the squares from the square after from up to and including the first occupied one.
func (s State) Ray(from Square, d Direction) []Square {
	var squares []Square
	for sq := from.Offset(d.File, d.Rank); sq != NoSquare; sq = sq.Offset(d.File, d.Rank) {
		squares = append(squares, sq)
		if !s.squares[sq].IsEmpty() {
			break
		}
	}
	return squares
}

// AttacksFrom returns the squares the piece on from attacks, occupied or not.
// Pawns attack diagonally forward only.
func (s State) AttacksFrom(from Square) []Square {
	piece := s.Piece(from)

	switch piece.Kind {
	case Pawn:
		return offsets(from, []Direction{{-1, piece.Color.Forward()}, {1, piece.Color.Forward()}})
	case Knight:
		return offsets(from, knightJumps)
	case King:
		return offsets(from, QueenDirections)
	case Bishop, Rook, Queen:
		var squares []Square
		for _, d := range Directions(piece.Kind) {
			squares = append(squares, s.Ray(from, d)...)
		}
		return squares
	}

	return nil
}

func offsets(from Square, directions []Direction) []Square {
	squares := make([]Square, 0, len(directions))
	for _, d := range directions {
		if sq := from.Offset(d.File, d.Rank); sq != NoSquare {
			squares = append(squares, sq)
		}
	}
	return squares
}

// Attackers returns the squares of pieces of color by that attack target.
func (s State) Attackers(target Square, by Color) []Square {
	var attackers []Square
	for _, sq := range s.Occupied(by) {
		for _, attacked := range s.AttacksFrom(sq) {
			if attacked == target {
				attackers = append(attackers, sq)
				break
			}
		}
	}
	return attackers
}

func (s State) IsAttacked(target Square, by Color) bool {
	return len(s.Attackers(target, by)) > 0
}

// InCheck returns true if the king of color c is attacked.
func (s State) InCheck(c Color) bool {
	king := s.KingSquare(c)
	return king != NoSquare && s.IsAttacked(king, c.Other())
}

// AttackMask returns the squares attacked by color by as a bitmask, ignoring the piece on skip.
func (s State) AttackMask(by Color, skip Square) uint64 {
	var mask uint64
	for _, sq := range s.Occupied(by) {
		if sq == skip {
			continue
		}
		for _, attacked := range s.AttacksFrom(sq) {
			mask |= 1 << uint(attacked)
		}
	}
	return mask
}

// CountSquares returns the number of squares in a mask.
func CountSquares(mask uint64) int {
	return bits.OnesCount64(mask)
}

// Moves returns the destinations of the piece on from under movement rules only:
// pawn pushes, double pushes, captures and en passant, and attacked squares not held by
// own pieces for other kinds. Castling is not generated and own king safety is not checked.
func (s State) Moves(from Square) []Square {
	piece := s.Piece(from)
	if piece.IsEmpty() {
		return nil
	}

	if piece.Kind != Pawn {
		var moves []Square
		for _, sq := range s.AttacksFrom(from) {
			if s.squares[sq].Color != piece.Color {
				moves = append(moves, sq)
			}
		}
		return moves
	}

	var moves []Square
	forward := piece.Color.Forward()
	enPassantRank := 5
	if piece.Color == Black {
		enPassantRank = 2
	}

	if one := from.Offset(0, forward); one != NoSquare && s.squares[one].IsEmpty() {
		moves = append(moves, one)

		startRank := 1
		if piece.Color == Black {
			startRank = 6
		}
		if two := from.Offset(0, 2*forward); from.Rank() == startRank && s.squares[two].IsEmpty() {
			moves = append(moves, two)
		}
	}

	for _, sq := range s.AttacksFrom(from) {
		target := s.squares[sq]
		if (!target.IsEmpty() && target.Color != piece.Color) || (sq == s.enPassant && sq.Rank() == enPassantRank && target.IsEmpty()) {
			moves = append(moves, sq)
		}
	}

	return moves
}

// LegalMoves filters Moves down to destinations that do not leave the mover's king in check.
func (s State) LegalMoves(from Square) []Square {
	color := s.Piece(from).Color

	var legal []Square
	for _, to := range s.Moves(from) {
		if !s.Apply(from, to, Queen).InCheck(color) {
			legal = append(legal, to)
		}
	}
	return legal
}
