package lesson

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"lessonlab/pkg/llm"
	"lessonlab/pkg/tracker"
)

const validBatchJSON = `[{"swiss_sentence": "Hoi zäme.", "reference_translation": "Hi all."}]`

func newTestCache(t *testing.T, provider llm.Provider, capacity int) *BatchCache {
	t.Helper()
	c, err := NewBatchCache(NewGenerator(provider, 6), capacity, tracker.New())
	if err != nil {
		t.Fatalf("NewBatchCache failed: %v", err)
	}
	return c
}

func TestBatchCacheMemoizes(t *testing.T) {
	provider := llm.NewMockProvider(validBatchJSON)
	c := newTestCache(t, provider, 24)

	ctx := context.Background()
	first := c.Get(ctx, "Wätter", "buch")
	second := c.Get(ctx, "Wätter", "buch")

	if provider.Calls() != 1 {
		t.Errorf("expected 1 upstream call for identical keys, got %d", provider.Calls())
	}
	if len(first) != 1 || len(second) != 1 {
		t.Errorf("expected cached batch on both calls: %d, %d", len(first), len(second))
	}
}

func TestBatchCacheExactKeys(t *testing.T) {
	provider := llm.NewMockProvider(validBatchJSON)
	c := newTestCache(t, provider, 24)

	ctx := context.Background()
	c.Get(ctx, "Wätter", "")
	c.Get(ctx, "Wätter ", "") // trailing space is a distinct key
	c.Get(ctx, "Wätter", " ")

	if provider.Calls() != 3 {
		t.Errorf("whitespace variants must be distinct keys, got %d calls", provider.Calls())
	}
}

func TestBatchCacheCachesEmptyBatches(t *testing.T) {
	provider := llm.NewMockProvider("not json at all")
	c := newTestCache(t, provider, 24)

	ctx := context.Background()
	if batch := c.Get(ctx, "Kaputt", ""); len(batch) != 0 {
		t.Fatalf("expected empty batch, got %+v", batch)
	}
	c.Get(ctx, "Kaputt", "")

	if provider.Calls() != 1 {
		t.Errorf("failed generation must be cached, got %d upstream calls", provider.Calls())
	}
}

func TestBatchCacheLRUEviction(t *testing.T) {
	provider := llm.NewMockProvider(validBatchJSON)
	c := newTestCache(t, provider, 24)
	ctx := context.Background()

	// Fill 24 keys.
	for i := 0; i < 24; i++ {
		c.Get(ctx, fmt.Sprintf("topic-%d", i), "")
	}
	if provider.Calls() != 24 {
		t.Fatalf("expected 24 misses, got %d", provider.Calls())
	}

	// Touch topic-0 so topic-1 becomes the LRU entry.
	c.Get(ctx, "topic-0", "")
	if provider.Calls() != 24 {
		t.Fatalf("touch of topic-0 must be a hit, got %d calls", provider.Calls())
	}

	// 25th distinct key evicts topic-1.
	c.Get(ctx, "topic-24", "")
	if c.Len() != 24 {
		t.Errorf("expected capacity 24 after eviction, got %d", c.Len())
	}

	c.Get(ctx, "topic-0", "") // still cached
	if provider.Calls() != 25 {
		t.Errorf("topic-0 should still be cached, got %d calls", provider.Calls())
	}

	c.Get(ctx, "topic-1", "") // evicted, refetches
	if provider.Calls() != 26 {
		t.Errorf("topic-1 should have been evicted, got %d calls", provider.Calls())
	}
}

func TestBatchCacheConcurrentAccess(t *testing.T) {
	provider := llm.NewMockProvider(validBatchJSON)
	c := newTestCache(t, provider, 24)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			batch := c.Get(ctx, fmt.Sprintf("topic-%d", n%4), "")
			if len(batch) != 1 {
				t.Errorf("expected valid batch under concurrency, got %d", len(batch))
			}
		}(i)
	}
	wg.Wait()

	if c.Len() != 4 {
		t.Errorf("expected 4 distinct keys, got %d", c.Len())
	}
}
