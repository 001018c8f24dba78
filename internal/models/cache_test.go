package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

const afterE4 Position = "rnbqkbnr/pppppppp/8/8/4P3/8/PPPP1PPP/RNBQKBNR b KQkq - 0 1"

func TestCacheUpsertKeepsDeepest(t *testing.T) {
	cache := NewCache()

	cache.Upsert(StartPosition, NewScoreEvaluation(10, 30, "e2e4"))
	cache.Upsert(StartPosition, NewScoreEvaluation(8, 99, "d2d4"))

	got, ok := cache.Lookup(StartPosition, 0)
	assert.True(t, ok)
	assert.Equal(t, 10, got.Depth)
	assert.Equal(t, "e2e4", got.BestMove())

	cache.Upsert(StartPosition, NewScoreEvaluation(14, 25, "g1f3"))
	got, _ = cache.Lookup(StartPosition, 0)
	assert.Equal(t, 14, got.Depth)
	assert.Equal(t, 1, cache.Len())
}

func TestCacheLookupMinDepth(t *testing.T) {
	cache := NewCache()
	cache.Upsert(StartPosition, NewScoreEvaluation(10, 30))

	_, ok := cache.Lookup(StartPosition, 12)
	assert.False(t, ok)

	_, ok = cache.Lookup(StartPosition, 10)
	assert.True(t, ok)
}

func TestCacheIgnoresMoveClocks(t *testing.T) {
	cache := NewCache()
	cache.Upsert(StartPosition, NewScoreEvaluation(10, 30))

	_, ok := cache.Lookup("rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 4 3", 0)
	assert.True(t, ok)
}

func TestCacheGetMissing(t *testing.T) {
	cache := NewCache()
	cache.BulkUpsert([]BookEntry{{Position: StartPosition, Evaluation: NewScoreEvaluation(5, 0)}})

	assert.Equal(t, []Position{afterE4}, cache.GetMissing([]Position{StartPosition, afterE4}))
}

func TestCacheRejectsEmptyEvaluation(t *testing.T) {
	cache := NewCache()

	assert.Panics(t, func() {
		cache.Upsert(StartPosition, Evaluation{Depth: 3})
	})
}
