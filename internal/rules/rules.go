// Package rules adapts the notnil/chess move generator: parsing positions,
// decoding moves in UCI or SAN, and replaying games.
package rules

import (
	"errors"
	"fmt"
	"strings"

	"github.com/lk16/chessreview/internal/board"
	"github.com/lk16/chessreview/internal/models"
	"github.com/notnil/chess"
)

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrIllegalMove  = fmt.Errorf("%w: illegal move", ErrInvalidInput)
)

// Ply is one replayed move with the positions around it.
type Ply struct {
	Index int

	Before    *chess.Position
	After     *chess.Position
	BeforeFEN models.Position
	AfterFEN  models.Position

	Move models.Move
}

// ParsePosition parses a FEN string. The empty string is the standard start position.
func ParsePosition(fen models.Position) (*chess.Position, error) {
	if fen == "" {
		fen = models.StartPosition
	}

	opt, err := chess.FEN(string(fen))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}

	return chess.NewGame(opt).Position(), nil
}

// DecodeMove finds the legal move written as notation, trying UCI first and SAN second.
func DecodeMove(pos *chess.Position, notation string) (*chess.Move, error) {
	notation = strings.TrimSpace(notation)

	if move, err := (chess.UCINotation{}).Decode(pos, notation); err == nil {
		if legal := findLegal(pos, move); legal != nil {
			return legal, nil
		}
	}

	if move, err := (chess.AlgebraicNotation{}).Decode(pos, notation); err == nil {
		if legal := findLegal(pos, move); legal != nil {
			return legal, nil
		}
	}

	return nil, fmt.Errorf("%w %q in position %s", ErrIllegalMove, notation, pos.String())
}

// findLegal returns the legal move with the same squares and promotion, carrying its tags.
func findLegal(pos *chess.Position, move *chess.Move) *chess.Move {
	for _, legal := range pos.ValidMoves() {
		if legal.S1() == move.S1() && legal.S2() == move.S2() && legal.Promo() == move.Promo() {
			return legal
		}
	}
	return nil
}

// Describe converts a legal move into a models.Move.
func Describe(pos *chess.Position, move *chess.Move) models.Move {
	state := board.FromPosition(pos)
	moved := state.Piece(board.Square(move.S1()))

	san := chess.AlgebraicNotation{}.Encode(pos, move)

	return models.Move{
		From:      board.Square(move.S1()),
		To:        board.Square(move.S2()),
		Piece:     moved.Kind,
		Color:     moved.Color,
		Promotion: promotionKind(move.Promo()),
		Captured:  move.HasTag(chess.Capture) || move.HasTag(chess.EnPassant),
		Check:     strings.ContainsAny(san, "+#"),
		Checkmate: strings.HasSuffix(san, "#"),
		SAN:       san,
		UCI:       chess.UCINotation{}.Encode(pos, move),
	}
}

func promotionKind(t chess.PieceType) board.Kind {
	switch t {
	case chess.Queen:
		return board.Queen
	case chess.Rook:
		return board.Rook
	case chess.Bishop:
		return board.Bishop
	case chess.Knight:
		return board.Knight
	}
	return board.NoKind
}

// Replay validates and plays out moves from start. Nothing is returned unless every move is legal.
func Replay(start models.Position, moves []string) ([]Ply, error) {
	pos, err := ParsePosition(start)
	if err != nil {
		return nil, err
	}

	plies := make([]Ply, 0, len(moves))
	for i, notation := range moves {
		move, err := DecodeMove(pos, notation)
		if err != nil {
			return nil, fmt.Errorf("move %d: %w", i+1, err)
		}

		next := pos.Update(move)
		plies = append(plies, Ply{
			Index:     i,
			Before:    pos,
			After:     next,
			BeforeFEN: models.Position(pos.String()),
			AfterFEN:  models.Position(next.String()),
			Move:      Describe(pos, move),
		})
		pos = next
	}

	return plies, nil
}

// Play applies a single move given in UCI or SAN.
func Play(start models.Position, notation string) (Ply, error) {
	plies, err := Replay(start, []string{notation})
	if err != nil {
		return Ply{}, err
	}
	return plies[0], nil
}

// LegalMoves lists the legal moves of a position.
func LegalMoves(pos *chess.Position) []*chess.Move {
	return pos.ValidMoves()
}
