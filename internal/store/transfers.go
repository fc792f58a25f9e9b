package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/erazemk/barstock/internal/model"
)

// TransferStock moves quantity units of an item from one location to the
// other in a single transaction, so the item's total is unchanged.
// Nothing is written, and a nil item is returned, when quantity is not
// positive or the source holds fewer than quantity units.
func TransferStock(ctx context.Context, db *sql.DB, id string, from model.Location, quantity int, now time.Time) (*model.Item, error) {
	if !from.Valid() {
		return nil, fmt.Errorf("unknown location %q", from)
	}
	if quantity <= 0 {
		return nil, nil
	}

	return ModifyItem(ctx, db, id, now, func(item *model.Item) bool {
		src := from.Qty(item)
		if *src < quantity {
			return false
		}
		*src -= quantity
		*from.Other().Qty(item) += quantity
		return true
	})
}

// AdjustStock changes the quantity at one location by delta. Stock removed
// this way leaves the system. When the result would be negative nothing is
// written and a nil item is returned.
func AdjustStock(ctx context.Context, db *sql.DB, id string, at model.Location, delta int, now time.Time) (*model.Item, error) {
	if !at.Valid() {
		return nil, fmt.Errorf("unknown location %q", at)
	}
	if delta == 0 {
		return nil, nil
	}

	return ModifyItem(ctx, db, id, now, func(item *model.Item) bool {
		qty := at.Qty(item)
		if *qty+delta < 0 {
			return false
		}
		*qty += delta
		return true
	})
}
