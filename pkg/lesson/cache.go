package lesson

import (
	"context"
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"

	"lessonlab/pkg/model"
	"lessonlab/pkg/tracker"
)

// trackerLabel identifies the batch cache in stats snapshots.
const trackerLabel = "lesson-cache"

// batchKey identifies a memoized batch. Keys match on exact values; no
// normalization, so inputs differing only in whitespace are distinct.
type batchKey struct {
	topic    string
	bookText string
}

// BatchCache memoizes sentence batches per (topic, bookText) with LRU
// eviction. Empty batches are cached too, so a failing prompt does not
// retry upstream on every request while its key stays in the window.
//
// The cache is safe for concurrent use. Two concurrent misses on the
// same key may both call upstream; the later result wins, which is
// acceptable since both ran the same prompt.
type BatchCache struct {
	entries *lru.Cache[batchKey, []model.SentencePair]
	gen     *Generator
	tracker *tracker.Tracker
}

// NewBatchCache creates a cache bounded to capacity distinct keys.
func NewBatchCache(gen *Generator, capacity int, t *tracker.Tracker) (*BatchCache, error) {
	entries, err := lru.New[batchKey, []model.SentencePair](capacity)
	if err != nil {
		return nil, fmt.Errorf("failed to create batch cache: %w", err)
	}
	return &BatchCache{entries: entries, gen: gen, tracker: t}, nil
}

// Get returns the batch for (topic, bookText), generating and storing
// it on a miss. The result may be empty but the call never fails.
func (c *BatchCache) Get(ctx context.Context, topic, bookText string) []model.SentencePair {
	key := batchKey{topic: topic, bookText: bookText}

	if batch, ok := c.entries.Get(key); ok {
		if c.tracker != nil {
			c.tracker.TrackCacheHit(trackerLabel)
		}
		return batch
	}

	if c.tracker != nil {
		c.tracker.TrackCacheMiss(trackerLabel)
	}

	batch := c.gen.Generate(ctx, topic, bookText)
	c.entries.Add(key, batch)
	return batch
}

// Len reports the number of cached keys.
func (c *BatchCache) Len() int {
	return c.entries.Len()
}
