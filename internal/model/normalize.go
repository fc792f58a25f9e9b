package model

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

// ErrInvalidItem is returned when an item cannot be stored even after normalization.
var ErrInvalidItem = errors.New("invalid item")

// ClampQty floors f and clamps it to zero. NaN and infinities become zero.
func ClampQty(f float64) int {
	if math.IsNaN(f) || math.IsInf(f, 0) || f <= 0 {
		return 0
	}
	if f >= math.MaxInt32 {
		return math.MaxInt32
	}
	return int(math.Floor(f))
}

// ClampMultiple returns nil unless f is positive, otherwise floor(f) clamped to at least 1.
func ClampMultiple(f *float64) *int {
	if f == nil || math.IsNaN(*f) || *f <= 0 {
		return nil
	}
	m := max(1, ClampQty(*f))
	return &m
}

// Normalize corrects an item in place so that the stored invariants hold:
// non-negative quantities and thresholds, BackstockMax >= BackstockMin, and
// OrderMultiple either unset or at least 1. Text fields are trimmed.
func Normalize(item *Item) {
	item.Name = strings.TrimSpace(item.Name)
	item.ItemType = strings.TrimSpace(item.ItemType)
	item.OrderUnit = strings.TrimSpace(item.OrderUnit)
	item.Vendor = strings.TrimSpace(item.Vendor)

	item.BarQty = max(0, item.BarQty)
	item.StorageQty = max(0, item.StorageQty)
	item.BarMin = max(0, item.BarMin)
	item.BackstockMin = max(0, item.BackstockMin)
	item.BackstockMax = max(0, item.BackstockMax)
	if item.BackstockMax < item.BackstockMin {
		item.BackstockMax = item.BackstockMin
	}

	if item.OrderMultiple != nil && *item.OrderMultiple < 1 {
		item.OrderMultiple = nil
	}
	if item.FridgeSpace != nil && *item.FridgeSpace < 0 {
		zero := 0
		item.FridgeSpace = &zero
	}
	if item.StockStatus != "" && !item.StockStatus.Valid() {
		item.StockStatus = ""
	}
}

// Validate reports the problems normalization cannot fix.
func Validate(item Item) error {
	if item.Name == "" {
		return fmt.Errorf("%w: name required", ErrInvalidItem)
	}
	if !item.Category.Valid() {
		return fmt.Errorf("%w: unknown category %q", ErrInvalidItem, item.Category)
	}
	return nil
}
