package model

import "fmt"

// Location is one of the two places stock is held.
type Location string

// Locations.
const (
	LocationBar     Location = "bar"
	LocationStorage Location = "storage"
)

// Qty returns a pointer to the quantity field of item at loc.
func (loc Location) Qty(item *Item) *int {
	switch loc {
	case LocationBar:
		return &item.BarQty
	case LocationStorage:
		return &item.StorageQty
	}
	panic(fmt.Sprintf("unknown location %q", string(loc)))
}

// Other returns the opposite location.
func (loc Location) Other() Location {
	if loc == LocationBar {
		return LocationStorage
	}
	return LocationBar
}

// Valid reports whether loc is a known location.
func (loc Location) Valid() bool {
	return loc == LocationBar || loc == LocationStorage
}
