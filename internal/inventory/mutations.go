package inventory

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/erazemk/barstock/internal/model"
)

// Every single-item mutation below runs as one read-modify-write
// transaction. The bool result reports whether anything was written: a
// missing item or an unmet precondition gives false with a nil error.

// AddItem stores a new item under a fresh id.
func (s *Store) AddItem(ctx context.Context, n model.NewItem) (*model.Item, error) {
	return s.coll.Insert(ctx, n.Item(uuid.NewString()))
}

// UpdateItem merges the set fields of patch into an item, then normalizes it.
func (s *Store) UpdateItem(ctx context.Context, id string, patch model.Patch) (bool, error) {
	return applied(s.coll.Update(ctx, id, patch))
}

// MoveToBar moves qty units from storage to the bar.
func (s *Store) MoveToBar(ctx context.Context, id string, qty int) (bool, error) {
	return applied(s.coll.Transfer(ctx, id, model.LocationStorage, qty))
}

// ReturnToStorage moves qty units from the bar back to storage.
func (s *Store) ReturnToStorage(ctx context.Context, id string, qty int) (bool, error) {
	return applied(s.coll.Transfer(ctx, id, model.LocationBar, qty))
}

// RemoveFromBar takes qty units out of the system from the bar.
func (s *Store) RemoveFromBar(ctx context.Context, id string, qty int) (bool, error) {
	return s.remove(ctx, id, model.LocationBar, qty)
}

// RemoveFromStorage takes qty units out of the system from storage.
func (s *Store) RemoveFromStorage(ctx context.Context, id string, qty int) (bool, error) {
	return s.remove(ctx, id, model.LocationStorage, qty)
}

func (s *Store) remove(ctx context.Context, id string, at model.Location, qty int) (bool, error) {
	if qty < 1 {
		return false, nil
	}
	return applied(s.coll.Adjust(ctx, id, at, -qty))
}

// RestockStorage adds qty newly delivered units to storage.
func (s *Store) RestockStorage(ctx context.Context, id string, qty int) (bool, error) {
	if qty < 1 {
		return false, nil
	}
	return applied(s.coll.Adjust(ctx, id, model.LocationStorage, qty))
}

// AdjustStorage changes the storage quantity by delta, stopping at zero.
func (s *Store) AdjustStorage(ctx context.Context, id string, delta int) (bool, error) {
	return s.adjustClamped(ctx, id, model.LocationStorage, delta)
}

// AdjustBar changes the bar quantity by delta, stopping at zero.
func (s *Store) AdjustBar(ctx context.Context, id string, delta int) (bool, error) {
	return s.adjustClamped(ctx, id, model.LocationBar, delta)
}

func (s *Store) adjustClamped(ctx context.Context, id string, at model.Location, delta int) (bool, error) {
	return applied(s.coll.Modify(ctx, id, func(item *model.Item) bool {
		qty := at.Qty(item)
		next := max(0, *qty+delta)
		if next == *qty {
			return false
		}
		*qty = next
		return true
	}))
}

// SetStockedAtBar sets the stocked-at-bar flag.
func (s *Store) SetStockedAtBar(ctx context.Context, id string, atBar bool) (bool, error) {
	return applied(s.coll.Modify(ctx, id, func(item *model.Item) bool {
		item.StockAtBar = &atBar
		return true
	}))
}

// SetStockedStatus sets the stock status. Unknown statuses are ignored.
func (s *Store) SetStockedStatus(ctx context.Context, id string, status model.StockStatus) (bool, error) {
	if !status.Valid() {
		return false, nil
	}
	return applied(s.coll.Modify(ctx, id, func(item *model.Item) bool {
		item.StockStatus = status
		return true
	}))
}

// CycleStockStatus advances the stock status to its successor and marks the
// item stocked at the bar unless the new status is Out. It returns the new
// status, or "" when the item does not exist.
func (s *Store) CycleStockStatus(ctx context.Context, id string) (model.StockStatus, error) {
	item, err := s.coll.Modify(ctx, id, func(item *model.Item) bool {
		item.StockStatus = model.NextStockStatus(item.StockStatus)
		atBar := item.StockStatus != model.StockOut
		item.StockAtBar = &atBar
		return true
	})
	if err != nil || item == nil {
		return "", err
	}
	return item.StockStatus, nil
}

// TakeFromStorage restocks the bar from storage: it moves qty units to the
// bar, sets the status to Full and marks the item stocked at the bar, all in
// one write. Nothing happens unless storage holds at least qty units.
func (s *Store) TakeFromStorage(ctx context.Context, id string, qty int) (bool, error) {
	if qty < 1 {
		return false, nil
	}
	return applied(s.coll.Modify(ctx, id, func(item *model.Item) bool {
		if item.StorageQty < qty {
			return false
		}
		item.StorageQty -= qty
		item.BarQty += qty
		item.StockStatus = model.StockFull
		atBar := true
		item.StockAtBar = &atBar
		return true
	}))
}

// ClearDatabase deletes every item. Confirmation is the caller's job.
func (s *Store) ClearDatabase(ctx context.Context) (int64, error) {
	n, err := s.coll.Clear(ctx)
	if err != nil {
		return 0, err
	}
	s.logger.Info("cleared inventory", "items", n)
	return n, nil
}

// UpdateItemTypeBulk sets the item type of every listed item atomically.
// Unknown ids are skipped. An empty list writes nothing.
func (s *Store) UpdateItemTypeBulk(ctx context.Context, ids []string, itemType string) (int64, error) {
	return s.coll.SetItemType(ctx, ids, strings.TrimSpace(itemType))
}

// GetItemByID returns an item, or nil if it does not exist.
func (s *Store) GetItemByID(ctx context.Context, id string) (*model.Item, error) {
	return s.coll.Get(ctx, id)
}

// ItemsInCategory queries the collection for one category, ordered by name.
func (s *Store) ItemsInCategory(ctx context.Context, category model.Category) ([]model.Item, error) {
	return s.coll.ListByCategory(ctx, category)
}

func applied(item *model.Item, err error) (bool, error) {
	return item != nil, err
}
