// Package snapshot keeps the extracted fact table for a fixed window so that
// dashboard renders inside the window share one query result.
package snapshot

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"sales-dashboard/internal/storage"
)

// Extractor runs the facts query. Query returns the SQL text, which is the cache key.
type Extractor interface {
	Query() string
	LoadFacts(ctx context.Context) ([]storage.OrderLineFact, error)
}

// Snapshot is immutable once published; callers must not modify Facts.
type Snapshot struct {
	ID       string                  `json:"id"`
	LoadedAt time.Time               `json:"loaded_at"`
	Facts    []storage.OrderLineFact `json:"-"`
}

type Cache struct {
	log *slog.Logger
	ttl time.Duration
	now func() time.Time

	// mu защищает только карту, запрос к базе выполняется без блокировки
	mu      sync.Mutex
	entries map[string]*Snapshot
}

func NewCache(log *slog.Logger, ttl time.Duration) *Cache {
	return &Cache{
		log:     log,
		ttl:     ttl,
		now:     time.Now,
		entries: make(map[string]*Snapshot),
	}
}

// Get returns the snapshot for the extractor's query, running the query only
// when no entry exists or the entry is older than the TTL. Two callers that miss
// at the same time both query and the later one wins.
func (c *Cache) Get(ctx context.Context, ex Extractor) (*Snapshot, error) {
	key := ex.Query()

	c.mu.Lock()
	snap, ok := c.entries[key]
	c.mu.Unlock()

	if ok && c.now().Sub(snap.LoadedAt) < c.ttl {
		return snap, nil
	}

	return c.Refresh(ctx, ex)
}

// Refresh queries unconditionally and replaces the entry. On failure the previous
// entry is kept.
func (c *Cache) Refresh(ctx context.Context, ex Extractor) (*Snapshot, error) {
	const op = "snapshot.Cache.Refresh"

	started := c.now()
	facts, err := ex.LoadFacts(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	snap := &Snapshot{
		ID:       uuid.NewString(),
		LoadedAt: c.now(),
		Facts:    facts,
	}

	c.mu.Lock()
	c.entries[ex.Query()] = snap
	c.mu.Unlock()

	c.log.Info("sales snapshot loaded",
		slog.String("snapshot_id", snap.ID),
		slog.Int("rows", len(facts)),
		slog.Duration("took", snap.LoadedAt.Sub(started)),
	)

	return snap, nil
}

// Source binds a cache to one extractor.
type Source struct {
	cache *Cache
	ex    Extractor
}

func NewSource(cache *Cache, ex Extractor) *Source {
	return &Source{cache: cache, ex: ex}
}

func (s *Source) Snapshot(ctx context.Context) (*Snapshot, error) {
	return s.cache.Get(ctx, s.ex)
}

func (s *Source) Refresh(ctx context.Context) (*Snapshot, error) {
	return s.cache.Refresh(ctx, s.ex)
}
