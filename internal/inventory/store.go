// Package inventory is the reactive view over the item collection. A Store
// keeps the current ordered item list and everything derived from it, and
// exposes the mutations screens invoke. Filter selection lives in View.
package inventory

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"github.com/erazemk/barstock/internal/model"
	"github.com/erazemk/barstock/internal/store"
)

// Facet values with special meaning.
const (
	All           = "All"
	Uncategorized = "Uncategorized"
)

// Snapshot is a consistent view of the collection and its derived state.
// Its slices are shared between observers and must not be modified.
type Snapshot struct {
	Loading    bool
	Items      []model.Item
	Categories []string
	ItemTypes  []string
	Summary    Summary
}

type observer struct {
	id int
	fn func(Snapshot)
}

// Store holds the live item list. It is safe for concurrent use.
type Store struct {
	coll   *store.Collection
	logger *slog.Logger

	// refreshMu orders list reads with snapshot stores so a slow refresh
	// cannot overwrite a newer snapshot.
	refreshMu sync.Mutex
	mu        sync.RWMutex
	snap      Snapshot

	obsMu     sync.Mutex
	observers []observer
	nextID    int

	// deliverMu guards delivering and dirty. One goroutine at a time calls
	// observers, always with the latest snapshot.
	deliverMu  sync.Mutex
	delivering bool
	dirty      bool

	baseCtx     context.Context
	unsubscribe func()
}

// NewStore creates a Store over coll. A nil logger uses slog.Default().
// The store is loading until Start succeeds.
func NewStore(coll *store.Collection, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{
		coll:   coll,
		logger: logger,
		snap:   derive(nil, true),
	}
}

// Start subscribes to collection changes and loads the first snapshot.
func (s *Store) Start(ctx context.Context) error {
	s.baseCtx = context.WithoutCancel(ctx)
	s.unsubscribe = s.coll.Subscribe(func(store.Change) {
		if err := s.refresh(s.baseCtx); err != nil {
			s.logger.Error("refreshing inventory", "error", err)
		}
	})

	if err := s.refresh(ctx); err != nil {
		return fmt.Errorf("loading inventory: %w", err)
	}
	return nil
}

// Close stops following collection changes. Observers keep the last snapshot.
func (s *Store) Close() {
	if s.unsubscribe != nil {
		s.unsubscribe()
		s.unsubscribe = nil
	}
}

// refresh re-reads the ordered list and recomputes derived state. On error
// the previous snapshot is kept.
func (s *Store) refresh(ctx context.Context) error {
	s.refreshMu.Lock()
	items, err := s.coll.List(ctx)
	if err != nil {
		s.refreshMu.Unlock()
		return err
	}
	snap := derive(items, false)

	s.mu.Lock()
	s.snap = snap
	s.mu.Unlock()
	s.refreshMu.Unlock()

	s.notify()
	return nil
}

// Subscribe registers fn to receive new snapshots. Deliveries never overlap
// and never go back in time. Concurrent writes may be coalesced into one
// delivery of the latest snapshot. Without concurrent writers each snapshot
// is delivered on the goroutine that committed the write, before the write
// returns. The returned function removes fn.
func (s *Store) Subscribe(fn func(Snapshot)) (unsubscribe func()) {
	s.obsMu.Lock()
	defer s.obsMu.Unlock()

	s.nextID++
	id := s.nextID
	s.observers = append(s.observers, observer{id: id, fn: fn})

	return func() {
		s.obsMu.Lock()
		defer s.obsMu.Unlock()
		s.observers = slices.DeleteFunc(s.observers, func(o observer) bool { return o.id == id })
	}
}

// notify delivers the current snapshot. If another goroutine is already
// delivering, it is told to go round again and notify returns at once. This
// also covers observers that write to the store from their callback.
func (s *Store) notify() {
	s.deliverMu.Lock()
	if s.delivering {
		s.dirty = true
		s.deliverMu.Unlock()
		return
	}
	s.delivering = true

	for {
		s.dirty = false
		s.deliverMu.Unlock()

		snap := s.Snapshot()
		s.obsMu.Lock()
		observers := slices.Clone(s.observers)
		s.obsMu.Unlock()
		for _, o := range observers {
			o.fn(snap)
		}

		s.deliverMu.Lock()
		if !s.dirty {
			s.delivering = false
			s.deliverMu.Unlock()
			return
		}
	}
}

// Snapshot returns the current snapshot.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snap
}

// Loading reports whether the first snapshot has not arrived yet.
func (s *Store) Loading() bool {
	return s.Snapshot().Loading
}

// Items returns a copy of the item list, ordered by name.
func (s *Store) Items() []model.Item {
	return slices.Clone(s.Snapshot().Items)
}

// Categories returns the category facet, "All" first.
func (s *Store) Categories() []string {
	return slices.Clone(s.Snapshot().Categories)
}

// ItemTypes returns the item type facet, "All" first.
func (s *Store) ItemTypes() []string {
	return slices.Clone(s.Snapshot().ItemTypes)
}

// Summary returns the aggregate counts of the current snapshot.
func (s *Store) Summary() Summary {
	return s.Snapshot().Summary
}

// VisibleItems returns the current items that pass v's filters.
func (s *Store) VisibleItems(v *View) []model.Item {
	return v.Apply(s.Snapshot().Items)
}

func derive(items []model.Item, loading bool) Snapshot {
	return Snapshot{
		Loading:    loading,
		Items:      items,
		Categories: facet(items, func(i model.Item) string { return string(i.Category) }),
		ItemTypes:  facet(items, itemTypeFacet),
		Summary:    Summarize(items),
	}
}

// itemTypeFacet is the item type an item is listed under. Items without a
// type are Uncategorized.
func itemTypeFacet(item model.Item) string {
	if item.ItemType == "" {
		return Uncategorized
	}
	return item.ItemType
}

// facet returns "All" followed by the sorted distinct values of key.
func facet(items []model.Item, key func(model.Item) string) []string {
	seen := make(map[string]struct{}, len(items))
	values := make([]string, 0, len(items))
	for _, item := range items {
		v := key(item)
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		values = append(values, v)
	}
	slices.Sort(values)
	return append([]string{All}, values...)
}
