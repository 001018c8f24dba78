package board

import (
	"fmt"
	"strings"

	"github.com/notnil/chess"
)

// State is an immutable snapshot of piece placement and side to move.
// Methods that change the board return a modified copy.
type State struct {
	squares   [64]Piece
	turn      Color
	enPassant Square
}

// NewState returns an empty board with the given side to move.
func NewState(turn Color) State {
	return State{turn: turn, enPassant: NoSquare}
}

// FromPosition converts a position of the rules library.
func FromPosition(pos *chess.Position) State {
	state := NewState(fromChessColor(pos.Turn()))

	b := pos.Board()
	for sq := range 64 {
		piece := b.Piece(chess.Square(sq))
		if piece == chess.NoPiece {
			continue
		}
		state.squares[sq] = Piece{
			Kind:  fromChessKind(piece.Type()),
			Color: fromChessColor(piece.Color()),
		}
	}

	if ep := pos.EnPassantSquare(); ep != chess.NoSquare {
		state.enPassant = Square(ep)
	}

	return state
}

// FromFEN parses a FEN string.
func FromFEN(fen string) (State, error) {
	opt, err := chess.FEN(fen)
	if err != nil {
		return State{}, fmt.Errorf("failed to parse FEN %q: %w", fen, err)
	}

	return FromPosition(chess.NewGame(opt).Position()), nil
}

func fromChessColor(c chess.Color) Color {
	switch c {
	case chess.White:
		return White
	case chess.Black:
		return Black
	}
	return NoColor
}

func fromChessKind(t chess.PieceType) Kind {
	switch t {
	case chess.Pawn:
		return Pawn
	case chess.Knight:
		return Knight
	case chess.Bishop:
		return Bishop
	case chess.Rook:
		return Rook
	case chess.Queen:
		return Queen
	case chess.King:
		return King
	}
	return NoKind
}

func (s State) Turn() Color {
	return s.turn
}

// EnPassant returns the square a pawn can capture onto en passant, or NoSquare.
func (s State) EnPassant() Square {
	return s.enPassant
}

func (s State) Piece(sq Square) Piece {
	if !sq.Valid() {
		return Empty
	}
	return s.squares[sq]
}

// With returns a copy with sq set to p.
func (s State) With(sq Square, p Piece) State {
	s.squares[sq] = p
	return s
}

// WithTurn returns a copy with another side to move.
func (s State) WithTurn(c Color) State {
	s.turn = c
	return s
}

// Occupied returns the squares holding pieces of color c in ascending order.
func (s State) Occupied(c Color) []Square {
	var squares []Square
	for sq := range Square(64) {
		if s.squares[sq].Color == c && !s.squares[sq].IsEmpty() {
			squares = append(squares, sq)
		}
	}
	return squares
}

// KingSquare returns the square of the king of color c, or NoSquare when there is none.
func (s State) KingSquare(c Color) Square {
	for sq := range Square(64) {
		if s.squares[sq] == (Piece{Kind: King, Color: c}) {
			return sq
		}
	}
	return NoSquare
}

// Apply moves the piece on from to to and returns the resulting board.
// Promotions default to a queen. En passant captures and the rook of a castling king are handled.
func (s State) Apply(from, to Square, promotion Kind) State {
	next := s
	piece := next.squares[from]
	next.squares[from] = Empty

	switch piece.Kind {
	case Pawn:
		if to == s.enPassant && s.squares[to].IsEmpty() && from.File() != to.File() {
			next.squares[NewSquare(to.File(), from.Rank())] = Empty
		}
		if to.Rank() == 0 || to.Rank() == 7 {
			if promotion == NoKind || promotion == Pawn || promotion == King {
				promotion = Queen
			}
			piece.Kind = promotion
		}
	case King:
		if delta := to.File() - from.File(); delta == 2 || delta == -2 {
			rookFrom, rookTo := NewSquare(7, from.Rank()), NewSquare(5, from.Rank())
			if delta < 0 {
				rookFrom, rookTo = NewSquare(0, from.Rank()), NewSquare(3, from.Rank())
			}
			next.squares[rookTo] = next.squares[rookFrom]
			next.squares[rookFrom] = Empty
		}
	}

	next.squares[to] = piece

	next.enPassant = NoSquare
	if piece.Kind == Pawn && (to.Rank()-from.Rank() == 2 || from.Rank()-to.Rank() == 2) {
		next.enPassant = NewSquare(from.File(), (from.Rank()+to.Rank())/2)
	}

	next.turn = piece.Color.Other()
	return next
}

// ASCIIArtLines returns the ascii art lines for the board, rank 8 on top.
func (s State) ASCIIArtLines() []string {
	lines := make([]string, 0, 10)

	lines = append(lines, "+-a-b-c-d-e-f-g-h-+")
	for rank := 7; rank >= 0; rank-- {
		var sb strings.Builder
		fmt.Fprintf(&sb, "%d ", rank+1)
		for file := range 8 {
			piece := s.squares[NewSquare(file, rank)]
			if piece.IsEmpty() {
				sb.WriteString("  ")
				continue
			}
			sb.WriteString(piece.String() + " ")
		}
		sb.WriteString("|")
		lines = append(lines, sb.String())
	}
	lines = append(lines, fmt.Sprintf("+-----------------+ %s to move", s.turn))

	return lines
}

// Print prints the board.
func (s State) Print() {
	for _, line := range s.ASCIIArtLines() {
		fmt.Println(line)
	}
}
