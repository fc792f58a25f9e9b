package inventory

import (
	"sync"

	"github.com/erazemk/barstock/internal/model"
)

// Filter is a filter selection. Empty fields behave like "All".
type Filter struct {
	Category    string `json:"category"`
	ItemType    string `json:"item_type"`
	StockStatus string `json:"stock_status"`
}

func isAll(v string) bool {
	return v == "" || v == All
}

// Match reports whether item passes every filter. Filters are checked in
// order category, item type, stock status.
func (f Filter) Match(item model.Item) bool {
	if !isAll(f.Category) && string(item.Category) != f.Category {
		return false
	}
	if !isAll(f.ItemType) {
		if itemTypeFacet(item) != f.ItemType {
			return false
		}
	}
	// Unset status displays as Out.
	if !isAll(f.StockStatus) && string(item.StockStatus.Effective()) != f.StockStatus {
		return false
	}
	return true
}

// View holds the filter selection of one screen. Selections are independent:
// changing one never resets the others. It is safe for concurrent use.
type View struct {
	mu     sync.RWMutex
	filter Filter
}

// NewView returns a view with every filter set to "All".
func NewView() *View {
	return &View{filter: Filter{Category: All, ItemType: All, StockStatus: All}}
}

// SetCategory selects a category, or "All".
func (v *View) SetCategory(category string) {
	v.mu.Lock()
	v.filter.Category = category
	v.mu.Unlock()
}

// SetItemType selects an item type, "Uncategorized", or "All".
func (v *View) SetItemType(itemType string) {
	v.mu.Lock()
	v.filter.ItemType = itemType
	v.mu.Unlock()
}

// SetStockStatus selects a stock status, or "All".
func (v *View) SetStockStatus(status string) {
	v.mu.Lock()
	v.filter.StockStatus = status
	v.mu.Unlock()
}

// Filter returns the current selection.
func (v *View) Filter() Filter {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.filter
}

// Apply returns the items that pass the current selection, in their
// input order. The result is never nil.
func (v *View) Apply(items []model.Item) []model.Item {
	f := v.Filter()
	visible := make([]model.Item, 0, len(items))
	for _, item := range items {
		if f.Match(item) {
			visible = append(visible, item)
		}
	}
	return visible
}
