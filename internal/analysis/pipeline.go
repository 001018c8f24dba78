package analysis

import (
	"context"
	"fmt"
	"iter"
	"log/slog"

	"github.com/lk16/chessreview/internal/config"
	"github.com/lk16/chessreview/internal/models"
	"github.com/lk16/chessreview/internal/motifs"
	"github.com/lk16/chessreview/internal/rules"
	"github.com/lk16/chessreview/internal/uci"
)

// Evaluator searches a position to a fixed depth.
// A search that did not finish in time is reported with TimedOut set, not as an error.
type Evaluator interface {
	Evaluate(ctx context.Context, pos models.Position, depth int) (uci.SearchResult, error)
}

// Engine is an Evaluator that can be released.
type Engine interface {
	Evaluator
	Terminate() error
}

// Pipeline reviews games one ply at a time using a single Evaluator.
// It must not be shared between goroutines unless the Evaluator serializes requests itself.
type Pipeline struct {
	engine Evaluator
	depth  int
}

func NewPipeline(engine Evaluator, depth int) *Pipeline {
	if depth <= 0 {
		depth = config.DefaultAnalysisDepth
	}

	return &Pipeline{
		engine: engine,
		depth:  depth,
	}
}

func (p *Pipeline) Depth() int {
	return p.depth
}

// Result is the outcome of AnalyzeGame. When Incomplete is set, Records holds the plies
// that were analysed before Err stopped the analysis.
type Result struct {
	Records    []models.AnalysisRecord
	Incomplete bool
	Err        error
}

// Analyze yields one record per move of the game in ply order.
// All moves are checked before the engine is asked anything: invalid input yields a single error.
// Once an error is yielded the sequence ends. Every call starts a fresh analysis.
func (p *Pipeline) Analyze(ctx context.Context, start models.Position, moves []string) iter.Seq2[models.AnalysisRecord, error] {
	return func(yield func(models.AnalysisRecord, error) bool) {
		plies, err := rules.Replay(start, moves)
		if err != nil {
			yield(models.AnalysisRecord{}, err)
			return
		}

		// evaluation of the position the next ply starts from
		var previous *uci.SearchResult

		for _, ply := range plies {
			record, after, err := p.analyzePly(ctx, ply, previous)
			if err != nil {
				yield(models.AnalysisRecord{}, fmt.Errorf("failed to analyze ply %d: %w", ply.Index, err))
				return
			}

			if !yield(record, nil) {
				return
			}

			previous = &after
		}
	}
}

// AnalyzeGame collects the records of Analyze.
func (p *Pipeline) AnalyzeGame(ctx context.Context, start models.Position, moves []string) Result {
	result := Result{Records: []models.AnalysisRecord{}}

	for record, err := range p.Analyze(ctx, start, moves) {
		if err != nil {
			result.Incomplete = true
			result.Err = err
			break
		}
		result.Records = append(result.Records, record)
	}

	if result.Incomplete {
		slog.Warn("Analysis incomplete", "plies", len(result.Records), "total", len(moves), "error", result.Err)
	}

	return result
}

func (p *Pipeline) analyzePly(ctx context.Context, ply rules.Ply, previous *uci.SearchResult) (models.AnalysisRecord, uci.SearchResult, error) {
	before := previous
	if before == nil || before.TimedOut {
		result, err := p.engine.Evaluate(ctx, ply.BeforeFEN, p.depth)
		if err != nil {
			return models.AnalysisRecord{}, uci.SearchResult{}, err
		}
		before = &result
	}

	after, err := p.engine.Evaluate(ctx, ply.AfterFEN, p.depth)
	if err != nil {
		return models.AnalysisRecord{}, uci.SearchResult{}, err
	}

	loss := CentipawnLoss(before.Evaluation, after.Evaluation)

	record := models.AnalysisRecord{
		Ply:            ply.Index,
		Move:           ply.Move,
		Before:         ply.BeforeFEN,
		After:          ply.AfterFEN,
		EvalBefore:     before.Evaluation,
		EvalAfter:      after.Evaluation,
		BestMove:       bestMove(*before),
		CentipawnLoss:  loss,
		Quality:        Classify(loss),
		Motifs:         motifs.DetectPly(ply),
		EngineTimedOut: before.TimedOut || after.TimedOut,
	}

	slog.Debug("Analysed ply", "ply", ply.Index, "move", ply.Move.SAN, "loss", loss, "quality", record.Quality)

	return record, after, nil
}

func bestMove(result uci.SearchResult) string {
	if result.HasMove() {
		return result.BestMove
	}
	return result.Evaluation.BestMove()
}
