package store

import (
	"context"
	"database/sql"
	"fmt"
	"slices"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/erazemk/barstock/internal/model"
)

// ChangeOp names the kind of write that produced a Change.
type ChangeOp string

// Change operations.
const (
	ChangeInsert ChangeOp = "insert"
	ChangeUpdate ChangeOp = "update"
	ChangeDelete ChangeOp = "delete"
	ChangeClear  ChangeOp = "clear"
)

// Change describes one committed write.
type Change struct {
	Op  ChangeOp
	IDs []string
}

type subscriber struct {
	id int
	fn func(Change)
}

// Collection is the persistent item collection. Every committed write is
// published to subscribers synchronously, on the writing goroutine, after
// the transaction commits.
type Collection struct {
	db    *sql.DB
	cache *lru.Cache[string, model.Item]
	now   func() time.Time

	mu     sync.Mutex
	subs   []subscriber
	nextID int
}

// DefaultCacheSize is the number of items kept by the point-lookup cache.
const DefaultCacheSize = 256

// NewCollection wraps db. cacheSize <= 0 selects DefaultCacheSize.
func NewCollection(db *sql.DB, cacheSize int) (*Collection, error) {
	if cacheSize <= 0 {
		cacheSize = DefaultCacheSize
	}
	cache, err := lru.New[string, model.Item](cacheSize)
	if err != nil {
		return nil, fmt.Errorf("creating item cache: %w", err)
	}
	return &Collection{db: db, cache: cache, now: time.Now}, nil
}

// SetClock replaces the clock used to stamp UpdatedAt.
func (c *Collection) SetClock(now func() time.Time) {
	c.now = now
}

// Now returns the current time from the collection's clock.
func (c *Collection) Now() time.Time {
	return c.now()
}

// Subscribe registers fn to receive every future Change. The returned
// function removes the subscription and is safe to call more than once.
func (c *Collection) Subscribe(fn func(Change)) (unsubscribe func()) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.nextID++
	id := c.nextID
	c.subs = append(c.subs, subscriber{id: id, fn: fn})

	return func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		c.subs = slices.DeleteFunc(c.subs, func(s subscriber) bool { return s.id == id })
	}
}

func (c *Collection) publish(change Change) {
	c.mu.Lock()
	subs := slices.Clone(c.subs)
	c.mu.Unlock()

	for _, s := range subs {
		s.fn(change)
	}
}

func (c *Collection) invalidate(ids ...string) {
	for _, id := range ids {
		c.cache.Remove(id)
	}
}

// List returns all items ordered by name.
func (c *Collection) List(ctx context.Context) ([]model.Item, error) {
	return ListItems(ctx, c.db)
}

// ListByCategory returns the items of one category ordered by name.
func (c *Collection) ListByCategory(ctx context.Context, category model.Category) ([]model.Item, error) {
	return ListItemsByCategory(ctx, c.db, category)
}

// Count returns the number of stored items.
func (c *Collection) Count(ctx context.Context) (int, error) {
	return CountItems(ctx, c.db)
}

// Get returns an item by id, or nil if it does not exist.
func (c *Collection) Get(ctx context.Context, id string) (*model.Item, error) {
	if item, ok := c.cache.Get(id); ok {
		return &item, nil
	}
	item, err := GetItem(ctx, c.db, id)
	if err != nil || item == nil {
		return item, err
	}
	c.cache.Add(id, *item)
	return item, nil
}

// Insert normalizes, validates and stores one item. The item must carry an id.
func (c *Collection) Insert(ctx context.Context, item model.Item) (*model.Item, error) {
	model.Normalize(&item)
	if err := model.Validate(item); err != nil {
		return nil, err
	}
	item.UpdatedAt = c.now().Truncate(time.Millisecond)

	if err := CreateItem(ctx, c.db, item); err != nil {
		return nil, err
	}
	c.publish(Change{Op: ChangeInsert, IDs: []string{item.ID}})
	return &item, nil
}

// Seed stores items only when the collection is empty.
func (c *Collection) Seed(ctx context.Context, items []model.Item) (bool, error) {
	seeded, err := SeedItems(ctx, c.db, items)
	if err != nil || !seeded {
		return seeded, err
	}
	c.publish(Change{Op: ChangeInsert, IDs: itemIDs(items)})
	return true, nil
}

// Modify runs a read-modify-write of one item. See ModifyItem.
func (c *Collection) Modify(ctx context.Context, id string, fn func(item *model.Item) bool) (*model.Item, error) {
	return c.written(ModifyItem(ctx, c.db, id, c.now(), fn))
}

// Update merges patch into one item.
func (c *Collection) Update(ctx context.Context, id string, patch model.Patch) (*model.Item, error) {
	return c.written(UpdateItem(ctx, c.db, id, patch, c.now()))
}

// Transfer moves quantity units of an item away from one location.
func (c *Collection) Transfer(ctx context.Context, id string, from model.Location, quantity int) (*model.Item, error) {
	return c.written(TransferStock(ctx, c.db, id, from, quantity, c.now()))
}

// Adjust changes the quantity at one location by delta.
func (c *Collection) Adjust(ctx context.Context, id string, at model.Location, delta int) (*model.Item, error) {
	return c.written(AdjustStock(ctx, c.db, id, at, delta, c.now()))
}

// written publishes an update when a single-item write went through.
func (c *Collection) written(item *model.Item, err error) (*model.Item, error) {
	if err != nil || item == nil {
		return nil, err
	}
	c.invalidate(item.ID)
	c.publish(Change{Op: ChangeUpdate, IDs: []string{item.ID}})
	return item, nil
}

// SetItemType sets the item type on every listed item atomically.
func (c *Collection) SetItemType(ctx context.Context, ids []string, itemType string) (int64, error) {
	n, err := SetItemType(ctx, c.db, ids, itemType, c.now())
	if err != nil || n == 0 {
		return n, err
	}
	c.invalidate(ids...)
	c.publish(Change{Op: ChangeUpdate, IDs: slices.Clone(ids)})
	return n, nil
}

// Delete removes one item.
func (c *Collection) Delete(ctx context.Context, id string) (bool, error) {
	deleted, err := DeleteItem(ctx, c.db, id)
	if err != nil || !deleted {
		return deleted, err
	}
	c.invalidate(id)
	c.publish(Change{Op: ChangeDelete, IDs: []string{id}})
	return true, nil
}

// Clear deletes every item.
func (c *Collection) Clear(ctx context.Context) (int64, error) {
	n, err := ClearItems(ctx, c.db)
	if err != nil {
		return 0, err
	}
	c.cache.Purge()
	c.publish(Change{Op: ChangeClear})
	return n, nil
}

func itemIDs(items []model.Item) []string {
	ids := make([]string, len(items))
	for i, item := range items {
		ids[i] = item.ID
	}
	return ids
}
