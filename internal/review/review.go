// Package review runs game reviews for the HTTP and websocket handlers:
// it borrows an engine from the pool, warms the evaluation cache from the book
// and persists what the analysis produced.
package review

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/lk16/chessreview/internal/analysis"
	"github.com/lk16/chessreview/internal/models"
	"github.com/lk16/chessreview/internal/motifs"
	"github.com/lk16/chessreview/internal/repository"
	"github.com/lk16/chessreview/internal/rules"
	"github.com/lk16/chessreview/internal/services"
)

// persistTimeout bounds storing results after the request context may be gone.
const persistTimeout = 5 * time.Second

// Game is a resolved analysis request.
type Game struct {
	Start    models.Position
	Moves    []string
	Metadata *models.GameMetadata
	Depth    int
}

// ResolveRequest turns a request into a Game, parsing PGN if present.
func ResolveRequest(req *models.AnalysisRequest) (Game, error) {
	if req.PGN == "" {
		return Game{Start: req.StartFEN, Moves: req.Moves, Depth: req.Depth}, nil
	}

	parsed, err := rules.LoadPGNString(req.PGN)
	if err != nil {
		return Game{}, err
	}

	return Game{
		Start:    parsed.Start,
		Moves:    parsed.Moves,
		Metadata: parsed.Metadata,
		Depth:    req.Depth,
	}, nil
}

type Reviewer struct {
	services *services.Services
	depth    int
}

// NewReviewer creates a Reviewer that searches depth plies unless a request asks otherwise.
func NewReviewer(services *services.Services, depth int) *Reviewer {
	return &Reviewer{services: services, depth: depth}
}

func (r *Reviewer) depthFor(requested int) int {
	if requested > 0 {
		return requested
	}
	return r.depth
}

// Review analyses game and returns the complete response.
func (r *Reviewer) Review(ctx context.Context, game Game) (models.AnalysisResponse, error) {
	return r.Stream(ctx, game, nil)
}

// Stream analyses game, calling emit for every record as soon as it is known.
// Invalid input and engine startup failures are returned as errors.
// A failure during the analysis marks the response incomplete instead.
// When emit fails the analysis is stopped and that error is returned.
func (r *Reviewer) Stream(
	ctx context.Context,
	game Game,
	emit func(models.AnalysisRecord) error,
) (models.AnalysisResponse, error) {
	plies, err := rules.Replay(game.Start, game.Moves)
	if err != nil {
		return models.AnalysisResponse{}, err
	}

	r.warmCache(ctx, plies)

	engine, err := r.services.Engines.Acquire(ctx)
	if err != nil {
		return models.AnalysisResponse{}, err
	}

	var engineErr error
	defer func() {
		r.services.Engines.Release(engine, engineErr)
	}()

	response := models.AnalysisResponse{
		ID:        uuid.New().String(),
		Metadata:  game.Metadata,
		Records:   make([]models.AnalysisRecord, 0, len(plies)),
		CreatedAt: time.Now().UTC(),
	}

	pipeline := analysis.NewPipeline(engine, r.depthFor(game.Depth))

	for record, err := range pipeline.Analyze(ctx, game.Start, game.Moves) {
		if err != nil {
			engineErr = err
			response.Incomplete = true
			response.Error = err.Error()
			slog.Warn("Analysis incomplete", "id", response.ID, "plies", len(response.Records), "error", err)
			break
		}

		response.Records = append(response.Records, record)

		if emit != nil {
			if err = emit(record); err != nil {
				return models.AnalysisResponse{}, fmt.Errorf("failed to emit record: %w", err)
			}
		}
	}

	response.Report = analysis.Summarize(response.Records)
	response.Blunders = analysis.BlunderCards(response.Records, 0)

	r.persist(&response)

	return response, nil
}

// warmCache loads book evaluations of all positions of the game that the cache does not know.
func (r *Reviewer) warmCache(ctx context.Context, plies []rules.Ply) {
	if r.services.Postgres == nil || r.services.Cache == nil || len(plies) == 0 {
		return
	}

	positions := make([]models.Position, 0, len(plies)+1)
	for _, ply := range plies {
		positions = append(positions, ply.BeforeFEN)
	}
	positions = append(positions, plies[len(plies)-1].AfterFEN)

	missing := r.services.Cache.GetMissing(positions)
	if len(missing) == 0 {
		return
	}

	entries, err := repository.NewEvaluationRepositoryFromServices(r.services).LookupPositions(ctx, missing)
	if err != nil {
		slog.Warn("Failed to load book evaluations", "error", err)
		return
	}

	r.services.Cache.BulkUpsert(usableEntries(entries))
	slog.Debug("Warmed evaluation cache", "requested", len(missing), "found", len(entries))
}

// bookEntries collects the engine evaluations of records worth storing.
func bookEntries(records []models.AnalysisRecord) []models.BookEntry {
	entries := make([]models.BookEntry, 0, 2*len(records)) //nolint:mnd
	for _, record := range records {
		if record.EngineTimedOut {
			continue
		}
		entries = append(entries,
			models.BookEntry{Position: record.Before, Evaluation: record.EvalBefore},
			models.BookEntry{Position: record.After, Evaluation: record.EvalAfter},
		)
	}
	return usableEntries(entries)
}

func usableEntries(entries []models.BookEntry) []models.BookEntry {
	usable := make([]models.BookEntry, 0, len(entries))
	for _, entry := range entries {
		if entry.Evaluation.HasResult() && entry.Evaluation.Depth > 0 {
			usable = append(usable, entry)
		}
	}
	return usable
}

func (r *Reviewer) persist(response *models.AnalysisResponse) {
	ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
	defer cancel()

	if r.services.Postgres != nil {
		repo := repository.NewEvaluationRepositoryFromServices(r.services)
		if err := repo.SubmitEvaluations(ctx, bookEntries(response.Records)); err != nil {
			slog.Warn("Failed to store evaluations", "id", response.ID, "error", err)
		}
	}

	if r.services.Redis != nil {
		repo := repository.NewAnalysisRepositoryFromServices(r.services)
		if err := repo.SaveAnalysis(ctx, response); err != nil {
			slog.Warn("Failed to store analysis", "id", response.ID, "error", err)
		}
		if err := repo.RecordStats(ctx, response.Records); err != nil {
			slog.Warn("Failed to record move stats", "id", response.ID, "error", err)
		}
	}
}

// RankMoves ranks the legal moves of pos for the endgame trainer.
func (r *Reviewer) RankMoves(ctx context.Context, pos models.Position, depth int) ([]models.RankedMove, error) {
	engine, err := r.services.Engines.Acquire(ctx)
	if err != nil {
		return nil, err
	}

	moves, err := analysis.NewPipeline(engine, r.depthFor(depth)).RankMoves(ctx, pos, 0)
	r.services.Engines.Release(engine, err)

	return moves, err
}

// Motifs plays move in pos and detects the motifs it creates. No engine is involved.
func Motifs(pos models.Position, move string) (models.MotifResponse, error) {
	ply, err := rules.Play(pos, move)
	if err != nil {
		return models.MotifResponse{}, err
	}

	return models.MotifResponse{
		Move:   ply.Move,
		After:  ply.AfterFEN,
		Motifs: motifs.DetectPly(ply),
	}, nil
}
