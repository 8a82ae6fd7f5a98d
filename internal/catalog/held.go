package catalog

import (
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/golang-lru/v2/expirable"
)

const (
	// DefaultHoldTTL bounds how long one dashboard load keeps its snapshot.
	DefaultHoldTTL = 30 * time.Minute
	// DefaultHoldSlots caps the number of dashboard loads held at once.
	DefaultHoldSlots = 256
)

// HeldSnapshot is the snapshot pinned to one dashboard load. Analytics and Categories are
// derived once when the snapshot is held and never change afterwards.
type HeldSnapshot struct {
	ID         string
	Owner      string
	Snapshot   *Snapshot
	Analytics  Analytics
	Categories []string
	HeldAt     time.Time
}

// SnapshotStore keeps one snapshot per dashboard load so table interactions within that
// load see the same products.
type SnapshotStore struct {
	held *expirable.LRU[string, *HeldSnapshot]
	now  func() time.Time
}

// NewSnapshotStore creates a store holding at most slots loads, each for ttl.
func NewSnapshotStore(slots int, ttl time.Duration) *SnapshotStore {
	if slots <= 0 {
		slots = DefaultHoldSlots
	}
	if ttl <= 0 {
		ttl = DefaultHoldTTL
	}
	return &SnapshotStore{
		held: expirable.NewLRU[string, *HeldSnapshot](slots, nil, ttl),
		now:  time.Now,
	}
}

// Hold pins a copy of snapshot for owner and returns it with its derived figures.
func (s *SnapshotStore) Hold(owner string, snapshot *Snapshot) *HeldSnapshot {
	pinned := Snapshot{}
	if snapshot != nil {
		pinned = *snapshot
		pinned.Products = append([]Product(nil), snapshot.Products...)
	}
	products := pinned.Products

	held := &HeldSnapshot{
		ID:         uuid.NewString(),
		Owner:      owner,
		Snapshot:   &pinned,
		Analytics:  Aggregate(products),
		Categories: Categories(products),
		HeldAt:     s.now().UTC(),
	}
	s.held.Add(held.ID, held)
	return held
}

// Lookup returns the snapshot held under id. Snapshots held for another owner are not
// visible.
func (s *SnapshotStore) Lookup(owner, id string) (*HeldSnapshot, bool) {
	held, ok := s.held.Get(id)
	if !ok || held.Owner != owner {
		return nil, false
	}
	return held, true
}

// Len reports how many loads are currently held.
func (s *SnapshotStore) Len() int {
	return s.held.Len()
}
