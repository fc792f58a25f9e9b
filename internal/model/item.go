package model

import "time"

// Item is a stock-keeping item tracked at the bar and in the storage room.
type Item struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	Category Category `json:"category"`
	ItemType string   `json:"item_type,omitempty"`

	BarQty     int `json:"bar_qty"`
	StorageQty int `json:"storage_qty"`

	BarMin       int `json:"bar_min"`
	BackstockMin int `json:"backstock_min"`
	BackstockMax int `json:"backstock_max"`

	OrderUnit     string `json:"order_unit,omitempty"`
	OrderMultiple *int   `json:"order_multiple,omitempty"`
	Vendor        string `json:"vendor,omitempty"`

	// Staff assessment of the bar, independent of BarQty.
	StockAtBar  *bool       `json:"stock_at_bar,omitempty"`
	StockStatus StockStatus `json:"stock_status,omitempty"`

	FridgeSpace     *int   `json:"fridge_space,omitempty"`
	Expiration      string `json:"expiration,omitempty"`
	StorageLocation string `json:"storage_location,omitempty"`
	Notes           string `json:"notes,omitempty"`

	UpdatedAt time.Time `json:"updated_at"`
}

// Total returns the on-hand quantity across both locations.
func (i Item) Total() int {
	return i.BarQty + i.StorageQty
}

// LowAtBar reports whether the bar quantity is at or below the bar minimum.
func (i Item) LowAtBar() bool {
	return i.BarQty <= i.BarMin
}

// AtBar reports the stocked-at-bar flag, treating unset as false.
func (i Item) AtBar() bool {
	return i.StockAtBar != nil && *i.StockAtBar
}

// Category is the closed set of item categories.
type Category string

// Categories.
const (
	CategoryConcessions  Category = "Concessions"
	CategoryCleaning     Category = "Cleaning"
	CategoryWorkSupplies Category = "Work Supplies"
)

// Categories lists every valid category in display order.
var Categories = []Category{CategoryConcessions, CategoryCleaning, CategoryWorkSupplies}

// Valid reports whether c is a known category.
func (c Category) Valid() bool {
	switch c {
	case CategoryConcessions, CategoryCleaning, CategoryWorkSupplies:
		return true
	}
	return false
}

// NewItem holds the caller-supplied fields for a new item. Quantities are
// normalized before insert, so out-of-range values are accepted here.
type NewItem struct {
	Name            string
	Category        Category
	ItemType        string
	BarQty          int
	StorageQty      int
	BarMin          int
	BackstockMin    int
	BackstockMax    int
	OrderUnit       string
	OrderMultiple   *int
	Vendor          string
	StockAtBar      *bool
	StockStatus     StockStatus
	FridgeSpace     *int
	Expiration      string
	StorageLocation string
	Notes           string
}

// Item converts n into an Item with the given id. UpdatedAt is left zero.
func (n NewItem) Item(id string) Item {
	return Item{
		ID:              id,
		Name:            n.Name,
		Category:        n.Category,
		ItemType:        n.ItemType,
		BarQty:          n.BarQty,
		StorageQty:      n.StorageQty,
		BarMin:          n.BarMin,
		BackstockMin:    n.BackstockMin,
		BackstockMax:    n.BackstockMax,
		OrderUnit:       n.OrderUnit,
		OrderMultiple:   n.OrderMultiple,
		Vendor:          n.Vendor,
		StockAtBar:      n.StockAtBar,
		StockStatus:     n.StockStatus,
		FridgeSpace:     n.FridgeSpace,
		Expiration:      n.Expiration,
		StorageLocation: n.StorageLocation,
		Notes:           n.Notes,
	}
}
