package board

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidSquare = errors.New("invalid square")
	ErrInvalidKind   = errors.New("invalid piece kind")
	ErrInvalidColor  = errors.New("invalid color")
)

// Color is the side a piece belongs to.
type Color uint8

const (
	NoColor Color = iota
	White
	Black
)

// Other returns the opposing color.
func (c Color) Other() Color {
	switch c {
	case White:
		return Black
	case Black:
		return White
	}
	return NoColor
}

// Forward is +1 for white and -1 for black: the rank direction pawns of that color advance in.
func (c Color) Forward() int {
	if c == Black {
		return -1
	}
	return 1
}

// HomeRank is the rank index the king of this color starts on.
func (c Color) HomeRank() int {
	if c == Black {
		return 7
	}
	return 0
}

func (c Color) String() string {
	switch c {
	case White:
		return "w"
	case Black:
		return "b"
	}
	return "-"
}

func (c Color) MarshalText() ([]byte, error) {
	if c == NoColor {
		return []byte{}, nil
	}
	return []byte(c.String()), nil
}

func (c *Color) UnmarshalText(text []byte) error {
	switch string(text) {
	case "w":
		*c = White
	case "b":
		*c = Black
	case "":
		*c = NoColor
	default:
		return fmt.Errorf("%w: %q", ErrInvalidColor, text)
	}
	return nil
}

// Kind is a piece type without color.
type Kind uint8

const (
	NoKind Kind = iota
	Pawn
	Knight
	Bishop
	Rook
	Queen
	King
)

var kindLetters = [...]string{"", "p", "n", "b", "r", "q", "k"}

func (k Kind) String() string {
	if int(k) >= len(kindLetters) {
		return "?"
	}
	return kindLetters[k]
}

// IsSlider returns true for bishops, rooks and queens.
func (k Kind) IsSlider() bool {
	return k == Bishop || k == Rook || k == Queen
}

func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

func (k *Kind) UnmarshalText(text []byte) error {
	kind, err := ParseKind(string(text))
	if err != nil {
		return err
	}
	*k = kind
	return nil
}

// ParseKind parses a lowercase piece letter. The empty string is NoKind.
func ParseKind(s string) (Kind, error) {
	for kind, letter := range kindLetters {
		if letter == s {
			return Kind(kind), nil
		}
	}
	return NoKind, fmt.Errorf("%w: %q", ErrInvalidKind, s)
}

// Value returns the material value of a piece kind. Kings weigh 100 so they always rank highest.
func Value(k Kind) int {
	switch k {
	case Pawn:
		return 1
	case Knight, Bishop:
		return 3
	case Rook:
		return 5
	case Queen:
		return 9
	case King:
		return 100
	}
	return 0
}

// Piece is a colored piece. The zero value is an empty square.
type Piece struct {
	Kind  Kind
	Color Color
}

// Empty is the content of a square without a piece.
var Empty = Piece{}

func (p Piece) IsEmpty() bool {
	return p.Kind == NoKind
}

// String returns the FEN letter: uppercase for white, lowercase for black.
func (p Piece) String() string {
	if p.IsEmpty() {
		return "."
	}
	letter := p.Kind.String()
	if p.Color == White {
		return string(letter[0] - 'a' + 'A')
	}
	return letter
}

// Square indexes the board as rank*8+file, so a1 is 0 and h8 is 63.
type Square int8

const NoSquare Square = -1

// NewSquare returns NoSquare for coordinates outside the board.
func NewSquare(file, rank int) Square {
	if file < 0 || file > 7 || rank < 0 || rank > 7 {
		return NoSquare
	}
	return Square(rank*8 + file)
}

// ParseSquare parses algebraic coordinates such as "e4".
func ParseSquare(s string) (Square, error) {
	if len(s) != 2 || s[0] < 'a' || s[0] > 'h' || s[1] < '1' || s[1] > '8' {
		return NoSquare, fmt.Errorf("%w: %q", ErrInvalidSquare, s)
	}
	return NewSquare(int(s[0]-'a'), int(s[1]-'1')), nil
}

func (s Square) Valid() bool {
	return s >= 0 && s < 64
}

func (s Square) File() int {
	return int(s) % 8
}

func (s Square) Rank() int {
	return int(s) / 8
}

// Offset moves the square by file and rank deltas.
func (s Square) Offset(df, dr int) Square {
	return NewSquare(s.File()+df, s.Rank()+dr)
}

func (s Square) String() string {
	if !s.Valid() {
		return "-"
	}
	return string([]byte{byte('a' + s.File()), byte('1' + s.Rank())})
}

func (s Square) MarshalText() ([]byte, error) {
	if !s.Valid() {
		return []byte{}, nil
	}
	return []byte(s.String()), nil
}

func (s *Square) UnmarshalText(text []byte) error {
	if len(text) == 0 {
		*s = NoSquare
		return nil
	}
	sq, err := ParseSquare(string(text))
	if err != nil {
		return err
	}
	*s = sq
	return nil
}
