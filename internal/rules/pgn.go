package rules

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/lk16/chessreview/internal/models"
	"github.com/notnil/chess"
)

// Game is a parsed PGN game: the start position, its moves in SAN and the tag pairs.
type Game struct {
	Start    models.Position
	Moves    []string
	Metadata *models.GameMetadata
}

// LoadPGN reads the first game of a PGN document.
func LoadPGN(r io.Reader) (*Game, error) {
	opt, err := chess.PGN(r)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to parse PGN: %w", ErrInvalidInput, err)
	}

	return fromChessGame(chess.NewGame(opt))
}

// LoadPGNGames reads every game of a PGN document, such as a site export.
func LoadPGNGames(r io.Reader) ([]*Game, error) {
	scanner := chess.NewScanner(r)

	games := []*Game{}
	for scanner.Scan() {
		next := scanner.Next()
		if next == nil || (len(next.Moves()) == 0 && len(next.TagPairs()) == 0) {
			continue
		}

		game, err := fromChessGame(next)
		if err != nil {
			return nil, fmt.Errorf("game %d: %w", len(games)+1, err)
		}
		games = append(games, game)
	}

	// the scanner reports a normal end of input as io.EOF
	if err := scanner.Err(); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: failed to parse PGN: %w", ErrInvalidInput, err)
	}

	return games, nil
}

func fromChessGame(game *chess.Game) (*Game, error) {
	tags := make(map[string]string)
	for _, pair := range game.TagPairs() {
		tags[pair.Key] = pair.Value
	}

	metadata, err := models.ParseMetadata(tags)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}

	positions := game.Positions()
	moves := game.Moves()

	san := make([]string, len(moves))
	for i, move := range moves {
		san[i] = chess.AlgebraicNotation{}.Encode(positions[i], move)
	}

	return &Game{
		Start:    models.Position(positions[0].String()),
		Moves:    san,
		Metadata: metadata,
	}, nil
}

// LoadPGNString works like LoadPGN for an in-memory document.
func LoadPGNString(pgn string) (*Game, error) {
	return LoadPGN(strings.NewReader(pgn))
}

// LoadPGNFile works like LoadPGNGames for a file on disk.
func LoadPGNFile(path string) ([]*Game, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open PGN file: %w", err)
	}
	defer file.Close()

	return LoadPGNGames(file)
}
