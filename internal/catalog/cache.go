package catalog

import (
	"context"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/charlesng35/otpdash/pkg/metrics"
)

const snapshotKey = "catalog"

// WithSnapshotCache wraps src so snapshots are shared across dashboard loads for ttl. A
// non-positive ttl returns src unchanged and every load fetches its own snapshot.
func WithSnapshotCache(src Source, size int, ttl time.Duration) Source {
	if src == nil || ttl <= 0 {
		return src
	}
	if size <= 0 {
		size = 1
	}
	return &cachedSource{
		next:  src,
		cache: expirable.NewLRU[string, *Snapshot](size, nil, ttl),
	}
}

type cachedSource struct {
	next  Source
	cache *expirable.LRU[string, *Snapshot]
}

func (c *cachedSource) Fetch(ctx context.Context) (*Snapshot, error) {
	if cached, ok := c.cache.Get(snapshotKey); ok {
		metrics.CatalogFetches.WithLabelValues("cache", "success").Inc()
		return cached, nil
	}

	snapshot, err := c.next.Fetch(ctx)
	if err != nil {
		return nil, err
	}
	c.cache.Add(snapshotKey, snapshot)
	return snapshot, nil
}
