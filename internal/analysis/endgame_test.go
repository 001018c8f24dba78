package analysis

import (
	"context"
	"testing"

	"github.com/lk16/chessreview/internal/models"
	"github.com/lk16/chessreview/internal/rules"
	"github.com/lk16/chessreview/internal/uci"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRankMoves(t *testing.T) {
	const fen models.Position = "7k/8/6K1/8/8/8/8/Q7 w - - 0 1"

	mate, err := rules.Play(fen, "a1a8")
	require.NoError(t, err)
	blunder, err := rules.Play(fen, "a1a2")
	require.NoError(t, err)

	engine := newFakeEvaluator()
	engine.results[mate.AfterFEN] = uci.SearchResult{BestMove: uci.NoMove, Evaluation: models.NewMateEvaluation(0, 0)}
	engine.results[blunder.AfterFEN] = scored(500)

	ranked, err := NewPipeline(engine, 8).RankMoves(context.Background(), fen, 0)
	require.NoError(t, err)

	parsed, err := rules.ParsePosition(fen)
	require.NoError(t, err)
	require.Len(t, ranked, len(rules.LegalMoves(parsed)))

	assert.Equal(t, "a1a8", ranked[0].Move)
	assert.Equal(t, "Qa8#", ranked[0].SAN)
	assert.Equal(t, models.MateScore, ranked[0].Score)

	last := ranked[len(ranked)-1]
	assert.Equal(t, "a1a2", last.Move)
	assert.Equal(t, -500, last.Score)

	for _, depth := range engine.depths {
		assert.Equal(t, 8, depth)
	}
}

func TestRankMovesErrors(t *testing.T) {
	_, err := NewPipeline(newFakeEvaluator(), 8).RankMoves(context.Background(), "bogus", 4)
	assert.ErrorIs(t, err, rules.ErrInvalidInput)

	engine := newFakeEvaluator()
	engine.failAfter = 1
	_, err = NewPipeline(engine, 8).RankMoves(context.Background(), models.StartPosition, 4)
	assert.ErrorIs(t, err, uci.ErrEngineProcessLost)
}
