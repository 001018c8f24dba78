package models

import (
	"sync"
)

// Cache implements a simple cache for engine evaluations, keyed by position.
type Cache struct {
	// data stores the underlying map
	data map[string]Evaluation

	// dataMutex protects data
	dataMutex sync.Mutex
}

// NewCache creates a new cache.
func NewCache() *Cache {
	return &Cache{
		data: make(map[string]Evaluation),
	}
}

func cacheKey(pos Position) string {
	return string(pos.Normalized())
}

// Upsert will add or update an entry in the cache if it adds more reliable information.
func (c *Cache) Upsert(pos Position, evaluation Evaluation) {
	c.dataMutex.Lock()
	defer c.dataMutex.Unlock()

	c.upsertIfBetter(pos, evaluation)
}

// BulkUpsert works like Upsert, but for multiple evaluations.
func (c *Cache) BulkUpsert(entries []BookEntry) {
	c.dataMutex.Lock()
	defer c.dataMutex.Unlock()

	for _, entry := range entries {
		c.upsertIfBetter(entry.Position, entry.Evaluation)
	}
}

// upsertIfBetter does an actual upsert. It assumes dataMutex is locked.
func (c *Cache) upsertIfBetter(pos Position, evaluation Evaluation) {
	if !evaluation.HasResult() {
		panic("cannot cache evaluation without score or mate")
	}

	key := cacheKey(pos)
	found, ok := c.data[key]

	if !ok || evaluation.Depth > found.Depth {
		c.data[key] = evaluation
	}
}

// Lookup returns the cached evaluation if it was searched at least minDepth plies deep.
func (c *Cache) Lookup(pos Position, minDepth int) (Evaluation, bool) {
	c.dataMutex.Lock()
	defer c.dataMutex.Unlock()

	eval, ok := c.data[cacheKey(pos)]
	if !ok || eval.Depth < minDepth {
		return Evaluation{}, false
	}
	return eval, true
}

// GetMissing returns a list of positions that are not in the cache.
func (c *Cache) GetMissing(positions []Position) []Position {
	c.dataMutex.Lock()
	defer c.dataMutex.Unlock()

	missing := make([]Position, 0, len(positions))
	for _, pos := range positions {
		if _, ok := c.data[cacheKey(pos)]; !ok {
			missing = append(missing, pos)
		}
	}

	return missing
}

// Len returns the number of items in the cache.
func (c *Cache) Len() int {
	c.dataMutex.Lock()
	defer c.dataMutex.Unlock()

	return len(c.data)
}
