package models

import (
	"errors"
	"fmt"
	"time"

	"github.com/lk16/chessreview/internal/config"
)

// AnalysisRequest asks for a game review. Either PGN or Moves must be set.
type AnalysisRequest struct {
	PGN      string   `json:"pgn"`
	StartFEN Position `json:"start_fen"`
	Moves    []string `json:"moves"`
	Depth    int      `json:"depth"`
}

func (r *AnalysisRequest) Validate() error {
	if r.PGN == "" && len(r.Moves) == 0 {
		return errors.New("either pgn or moves must be set")
	}

	if r.PGN != "" && len(r.Moves) > 0 {
		return errors.New("pgn and moves cannot both be set")
	}

	if r.Depth < 0 || r.Depth > config.MaxAnalysisDepth {
		return fmt.Errorf("depth must be between 0 and %d", config.MaxAnalysisDepth)
	}

	if r.StartFEN != "" {
		if err := r.StartFEN.Validate(); err != nil {
			return fmt.Errorf("invalid start_fen: %w", err)
		}
	}

	return nil
}

// AnalysisResponse is a stored or freshly computed game review.
type AnalysisResponse struct {
	ID         string           `json:"id"`
	Metadata   *GameMetadata    `json:"metadata,omitempty"`
	Records    []AnalysisRecord `json:"records"`
	Report     StyleReport      `json:"report"`
	Blunders   []BlunderCard    `json:"blunders"`
	Incomplete bool             `json:"incomplete"`
	Error      string           `json:"error,omitempty"`
	CreatedAt  time.Time        `json:"created_at"`
}

// MotifRequest asks for the motifs of a single move.
type MotifRequest struct {
	Position Position `json:"position"`
	Move     string   `json:"move"`
}

func (r *MotifRequest) Validate() error {
	if r.Move == "" {
		return errors.New("move is empty")
	}
	return r.Position.Validate()
}

type MotifResponse struct {
	Move   Move     `json:"move"`
	After  Position `json:"after"`
	Motifs MotifSet `json:"motifs"`
}

// SummaryRequest asks for a style report over previously analysed games.
type SummaryRequest struct {
	Games []GameRecords `json:"games"`
}

func (r *SummaryRequest) Validate() error {
	if len(r.Games) == 0 {
		return errors.New("games is empty")
	}
	return nil
}

// EndgameRequest asks to rank all legal moves of a position.
type EndgameRequest struct {
	Position Position `json:"position"`
	Depth    int      `json:"depth"`
}

func (r *EndgameRequest) Validate() error {
	if r.Depth < 0 || r.Depth > config.MaxAnalysisDepth {
		return fmt.Errorf("depth must be between 0 and %d", config.MaxAnalysisDepth)
	}
	return r.Position.Validate()
}

type EndgameResponse struct {
	Moves []RankedMove `json:"moves"`
}

// BookEntry is a stored evaluation of a position.
type BookEntry struct {
	Position   Position   `json:"position" db:"position"`
	Evaluation Evaluation `json:"evaluation"`
}

// LookupPositionsPayload represents a request to look up positions.
type LookupPositionsPayload struct {
	Positions []Position `json:"positions"`
}

func (p *LookupPositionsPayload) Validate() error {
	if len(p.Positions) == 0 {
		return errors.New("positions is empty")
	}

	for _, pos := range p.Positions {
		if err := pos.Validate(); err != nil {
			return err
		}
	}

	return nil
}

type BookStats struct {
	Depth int `json:"depth" db:"depth"`
	Count int `json:"count" db:"count"`
}

// PositionStats combines book statistics with counters of analysed moves.
type PositionStats struct {
	Book      []BookStats    `json:"book"`
	Qualities map[string]int `json:"qualities"`
	Motifs    map[string]int `json:"motifs"`
}

type VersionResponse struct {
	Commit string `json:"commit"`
}
