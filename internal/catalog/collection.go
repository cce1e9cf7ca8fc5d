package catalog

import (
	"context"
	"slices"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/FabricioIaronka/store-manager/internal/rest"
)

// collection is a read-through mirror of one server collection.
// Concurrent first reads are deduplicated into a single request.
type collection[T any] struct {
	path       string
	staleAfter time.Duration

	mu        sync.Mutex
	items     []T
	fetchedAt time.Time
	valid     bool

	group singleflight.Group
}

func newCollection[T any](path string, staleAfter time.Duration) *collection[T] {
	return &collection[T]{path: path, staleAfter: staleAfter}
}

func (c *collection[T]) get(ctx context.Context, api *rest.Client) ([]T, error) {
	c.mu.Lock()
	if c.valid && c.staleAfter > 0 && time.Since(c.fetchedAt) < c.staleAfter {
		items := slices.Clone(c.items)
		c.mu.Unlock()
		return items, nil
	}
	c.mu.Unlock()

	v, err, _ := c.group.Do(c.path, func() (any, error) {
		var items []T
		if err := api.Get(ctx, c.path, &items); err != nil {
			return nil, err
		}
		c.mu.Lock()
		c.items = items
		c.fetchedAt = time.Now()
		c.valid = true
		c.mu.Unlock()
		return items, nil
	})
	if err != nil {
		return nil, err
	}
	return slices.Clone(v.([]T)), nil
}

func (c *collection[T]) invalidate() {
	c.mu.Lock()
	c.valid = false
	c.mu.Unlock()
}
