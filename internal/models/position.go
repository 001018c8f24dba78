package models

import (
	"errors"
	"fmt"
	"strings"

	"github.com/lk16/chessreview/internal/board"
)

const StartPosition Position = "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1"

// Position is a chess position in Forsyth-Edwards Notation.
type Position string

// NewPosition trims and validates a FEN string.
func NewPosition(fen string) (Position, error) {
	pos := Position(strings.TrimSpace(fen))
	if err := pos.Validate(); err != nil {
		return "", err
	}
	return pos, nil
}

func (p Position) Validate() error {
	if p == "" {
		return errors.New("position is empty")
	}

	if _, err := board.FromFEN(string(p)); err != nil {
		return err
	}

	return nil
}

// Board parses the position into a board.State.
func (p Position) Board() (board.State, error) {
	return board.FromFEN(string(p))
}

// Normalized drops the move clocks so transpositions compare equal.
func (p Position) Normalized() Position {
	spaces := 0
	for i, c := range p {
		if c == ' ' {
			spaces++
			if spaces == 4 {
				return p[:i]
			}
		}
	}
	return p
}

func (p Position) String() string {
	return string(p)
}

// Scan implements the sql.Scanner interface for Position.
func (p *Position) Scan(value interface{}) error {
	switch v := value.(type) {
	case string:
		*p = Position(v)
	case []byte:
		if v == nil {
			return errors.New("cannot scan nil into Position")
		}
		*p = Position(v)
	default:
		return fmt.Errorf("cannot scan %T into Position", value)
	}
	return nil
}
