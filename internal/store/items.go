package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"slices"
	"time"

	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/erazemk/barstock/internal/model"
)

var (
	// ErrUnavailable wraps every failure of the underlying database.
	ErrUnavailable = errors.New("storage unavailable")
	// ErrConstraint is returned when a write violates a schema constraint.
	ErrConstraint = errors.New("storage constraint violated")
)

const itemColumns = `id, name, category, item_type, bar_qty, storage_qty, bar_min,
	backstock_min, backstock_max, order_unit, order_multiple, vendor, stock_at_bar,
	stock_status, fridge_space, expiration, storage_location, notes, updated_at`

// querier is satisfied by both *sql.DB and *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// wrapErr classifies a database error as a constraint violation or an
// unavailable store, keeping the driver error in the chain.
func wrapErr(op string, err error) error {
	var se *sqlite.Error
	if errors.As(err, &se) && se.Code()&0xff == sqlite3.SQLITE_CONSTRAINT {
		return fmt.Errorf("%s: %w: %w", op, ErrConstraint, err)
	}
	return fmt.Errorf("%s: %w: %w", op, ErrUnavailable, err)
}

type scanner interface {
	Scan(dest ...any) error
}

func scanItem(s scanner) (model.Item, error) {
	var item model.Item
	var orderMultiple, fridgeSpace sql.NullInt64
	var stockAtBar sql.NullBool
	var updatedAt int64
	err := s.Scan(&item.ID, &item.Name, &item.Category, &item.ItemType, &item.BarQty, &item.StorageQty,
		&item.BarMin, &item.BackstockMin, &item.BackstockMax, &item.OrderUnit, &orderMultiple,
		&item.Vendor, &stockAtBar, &item.StockStatus, &fridgeSpace, &item.Expiration,
		&item.StorageLocation, &item.Notes, &updatedAt)
	if err != nil {
		return model.Item{}, err
	}
	if orderMultiple.Valid {
		v := int(orderMultiple.Int64)
		item.OrderMultiple = &v
	}
	if fridgeSpace.Valid {
		v := int(fridgeSpace.Int64)
		item.FridgeSpace = &v
	}
	if stockAtBar.Valid {
		v := stockAtBar.Bool
		item.StockAtBar = &v
	}
	item.UpdatedAt = time.UnixMilli(updatedAt)
	return item, nil
}

func scanItems(rows *sql.Rows) ([]model.Item, error) {
	var items []model.Item
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning item: %w", err)
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

// itemArgs returns item's column values in itemColumns order.
func itemArgs(item model.Item) []any {
	return []any{item.ID, item.Name, item.Category, item.ItemType, item.BarQty, item.StorageQty,
		item.BarMin, item.BackstockMin, item.BackstockMax, item.OrderUnit, item.OrderMultiple,
		item.Vendor, item.StockAtBar, item.StockStatus, item.FridgeSpace, item.Expiration,
		item.StorageLocation, item.Notes, item.UpdatedAt.UnixMilli()}
}

func insertItem(ctx context.Context, q querier, item model.Item) error {
	_, err := q.ExecContext(ctx,
		`INSERT INTO items (`+itemColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		itemArgs(item)...,
	)
	return err
}

func getItem(ctx context.Context, q querier, id string) (*model.Item, error) {
	item, err := scanItem(q.QueryRowContext(ctx,
		`SELECT `+itemColumns+` FROM items WHERE id = ?`, id,
	))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// CreateItem inserts a single item. The caller assigns ID and UpdatedAt.
func CreateItem(ctx context.Context, db *sql.DB, item model.Item) error {
	if err := insertItem(ctx, db, item); err != nil {
		return wrapErr("creating item", err)
	}
	return nil
}

// InsertItems inserts all items in one transaction.
func InsertItems(ctx context.Context, db *sql.DB, items []model.Item) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return wrapErr("beginning transaction", err)
	}
	defer tx.Rollback()

	for _, item := range items {
		if err := insertItem(ctx, tx, item); err != nil {
			return wrapErr(fmt.Sprintf("inserting item %q", item.Name), err)
		}
	}

	if err := tx.Commit(); err != nil {
		return wrapErr("committing insert", err)
	}
	return nil
}

// SeedItems inserts items only if the collection is empty. The emptiness
// check and the inserts share one transaction. Reports whether it inserted.
func SeedItems(ctx context.Context, db *sql.DB, items []model.Item) (bool, error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return false, wrapErr("beginning transaction", err)
	}
	defer tx.Rollback()

	var count int
	if err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM items`).Scan(&count); err != nil {
		return false, wrapErr("counting items", err)
	}
	if count > 0 {
		return false, nil
	}

	for _, item := range items {
		if err := insertItem(ctx, tx, item); err != nil {
			return false, wrapErr(fmt.Sprintf("seeding item %q", item.Name), err)
		}
	}

	if err := tx.Commit(); err != nil {
		return false, wrapErr("committing seed", err)
	}
	return true, nil
}

// GetItem returns an item by ID, or nil if it does not exist.
func GetItem(ctx context.Context, db *sql.DB, id string) (*model.Item, error) {
	item, err := getItem(ctx, db, id)
	if err != nil {
		return nil, wrapErr("getting item", err)
	}
	return item, nil
}

// ListItems returns all items ordered by name.
func ListItems(ctx context.Context, db *sql.DB) ([]model.Item, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT `+itemColumns+` FROM items ORDER BY name, id`,
	)
	if err != nil {
		return nil, wrapErr("listing items", err)
	}
	defer rows.Close()

	items, err := scanItems(rows)
	if err != nil {
		return nil, wrapErr("listing items", err)
	}
	return items, nil
}

// ListItemsByCategory returns the items of one category ordered by name.
func ListItemsByCategory(ctx context.Context, db *sql.DB, category model.Category) ([]model.Item, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT `+itemColumns+` FROM items WHERE category = ? ORDER BY name, id`, category,
	)
	if err != nil {
		return nil, wrapErr("listing items by category", err)
	}
	defer rows.Close()

	items, err := scanItems(rows)
	if err != nil {
		return nil, wrapErr("listing items by category", err)
	}
	return items, nil
}

// CountItems returns the number of stored items.
func CountItems(ctx context.Context, db *sql.DB) (int, error) {
	var count int
	if err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM items`).Scan(&count); err != nil {
		return 0, wrapErr("counting items", err)
	}
	return count, nil
}

// stamp returns now, or prev plus one millisecond when the clock has not
// moved past prev, so UpdatedAt strictly increases on every write.
func stamp(prev, now time.Time) time.Time {
	next := now.Truncate(time.Millisecond)
	if !next.After(prev) {
		next = prev.Add(time.Millisecond)
	}
	return next
}

// ModifyItem reads an item, lets fn change it, normalizes the result and
// writes it back, all in one transaction. fn returns false to abandon the
// write. A nil item with a nil error means the item does not exist or fn
// declined; nothing was written in either case.
func ModifyItem(ctx context.Context, db *sql.DB, id string, now time.Time, fn func(item *model.Item) bool) (*model.Item, error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return nil, wrapErr("beginning transaction", err)
	}
	defer tx.Rollback()

	current, err := getItem(ctx, tx, id)
	if err != nil {
		return nil, wrapErr("reading item", err)
	}
	if current == nil {
		return nil, nil
	}

	next := *current
	if !fn(&next) {
		return nil, nil
	}
	next.ID = current.ID
	model.Normalize(&next)
	if err := model.Validate(next); err != nil {
		return nil, err
	}
	next.UpdatedAt = stamp(current.UpdatedAt, now)

	args := append(itemArgs(next)[1:], next.ID)
	_, err = tx.ExecContext(ctx,
		`UPDATE items SET name = ?, category = ?, item_type = ?, bar_qty = ?, storage_qty = ?,
		        bar_min = ?, backstock_min = ?, backstock_max = ?, order_unit = ?, order_multiple = ?,
		        vendor = ?, stock_at_bar = ?, stock_status = ?, fridge_space = ?, expiration = ?,
		        storage_location = ?, notes = ?, updated_at = ?
		 WHERE id = ?`,
		args...,
	)
	if err != nil {
		return nil, wrapErr("updating item", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, wrapErr("committing update", err)
	}
	return &next, nil
}

// UpdateItem merges patch into the item with the given id.
func UpdateItem(ctx context.Context, db *sql.DB, id string, patch model.Patch, now time.Time) (*model.Item, error) {
	if patch.Empty() {
		return nil, nil
	}
	return ModifyItem(ctx, db, id, now, func(item *model.Item) bool {
		patch.Apply(item)
		return true
	})
}

// SetItemType sets item_type on every listed item in one transaction.
// Unknown and repeated ids are skipped. Returns the number of items changed.
func SetItemType(ctx context.Context, db *sql.DB, ids []string, itemType string, now time.Time) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	ids = slices.Compact(slices.Sorted(slices.Values(ids)))

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return 0, wrapErr("beginning transaction", err)
	}
	defer tx.Rollback()

	ms := now.UnixMilli()
	var changed int64
	for _, id := range ids {
		result, err := tx.ExecContext(ctx,
			`UPDATE items SET item_type = ?, updated_at = MAX(?, updated_at + 1) WHERE id = ?`,
			itemType, ms, id,
		)
		if err != nil {
			return 0, wrapErr("setting item type", err)
		}
		n, err := result.RowsAffected()
		if err != nil {
			return 0, wrapErr("setting item type", err)
		}
		changed += n
	}

	if err := tx.Commit(); err != nil {
		return 0, wrapErr("committing item type change", err)
	}
	return changed, nil
}

// DeleteItem permanently removes one item. Reports whether it existed.
func DeleteItem(ctx context.Context, db *sql.DB, id string) (bool, error) {
	result, err := db.ExecContext(ctx, `DELETE FROM items WHERE id = ?`, id)
	if err != nil {
		return false, wrapErr("deleting item", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, wrapErr("deleting item", err)
	}
	return n > 0, nil
}

// ClearItems deletes every item and returns how many were removed.
func ClearItems(ctx context.Context, db *sql.DB) (int64, error) {
	result, err := db.ExecContext(ctx, `DELETE FROM items`)
	if err != nil {
		return 0, wrapErr("clearing items", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return 0, wrapErr("clearing items", err)
	}
	return n, nil
}
