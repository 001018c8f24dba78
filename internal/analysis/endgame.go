package analysis

import (
	"cmp"
	"context"
	"fmt"
	"slices"

	"github.com/lk16/chessreview/internal/models"
	"github.com/lk16/chessreview/internal/rules"
)

// RankMoves evaluates every legal move of pos and orders them best first for the side to move.
// A depth of zero or less uses the pipeline depth.
func (p *Pipeline) RankMoves(ctx context.Context, pos models.Position, depth int) ([]models.RankedMove, error) {
	if depth <= 0 {
		depth = p.depth
	}

	parsed, err := rules.ParsePosition(pos)
	if err != nil {
		return nil, err
	}

	ranked := []models.RankedMove{}
	for _, move := range rules.LegalMoves(parsed) {
		described := rules.Describe(parsed, move)
		after := models.Position(parsed.Update(move).String())

		result, err := p.engine.Evaluate(ctx, after, depth)
		if err != nil {
			return nil, fmt.Errorf("failed to evaluate %s: %w", described.UCI, err)
		}

		ranked = append(ranked, models.RankedMove{
			Move:       described.UCI,
			SAN:        described.SAN,
			Score:      -result.Evaluation.Centipawns(),
			Evaluation: result.Evaluation,
		})
	}

	slices.SortFunc(ranked, func(x, y models.RankedMove) int {
		if c := cmp.Compare(y.Score, x.Score); c != 0 {
			return c
		}
		return cmp.Compare(x.Move, y.Move)
	})

	return ranked, nil
}
