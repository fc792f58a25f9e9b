package model

// Patch is a partial update. Nil fields are left untouched.
//
// Optional attributes use a double pointer so a patch can clear them:
// a non-nil outer pointer holding nil unsets the attribute.
type Patch struct {
	Name     *string
	Category *Category
	ItemType *string

	BarQty     *int
	StorageQty *int

	BarMin       *int
	BackstockMin *int
	BackstockMax *int

	OrderUnit     *string
	OrderMultiple **int
	Vendor        *string

	StockAtBar  **bool
	StockStatus *StockStatus

	FridgeSpace     **int
	Expiration      *string
	StorageLocation *string
	Notes           *string
}

// Empty reports whether the patch changes nothing.
func (p Patch) Empty() bool {
	return p == Patch{}
}

// Apply merges the set fields of p into item.
func (p Patch) Apply(item *Item) {
	if p.Name != nil {
		item.Name = *p.Name
	}
	if p.Category != nil {
		item.Category = *p.Category
	}
	if p.ItemType != nil {
		item.ItemType = *p.ItemType
	}
	if p.BarQty != nil {
		item.BarQty = *p.BarQty
	}
	if p.StorageQty != nil {
		item.StorageQty = *p.StorageQty
	}
	if p.BarMin != nil {
		item.BarMin = *p.BarMin
	}
	if p.BackstockMin != nil {
		item.BackstockMin = *p.BackstockMin
	}
	if p.BackstockMax != nil {
		item.BackstockMax = *p.BackstockMax
	}
	if p.OrderUnit != nil {
		item.OrderUnit = *p.OrderUnit
	}
	if p.OrderMultiple != nil {
		item.OrderMultiple = *p.OrderMultiple
	}
	if p.Vendor != nil {
		item.Vendor = *p.Vendor
	}
	if p.StockAtBar != nil {
		item.StockAtBar = *p.StockAtBar
	}
	if p.StockStatus != nil {
		item.StockStatus = *p.StockStatus
	}
	if p.FridgeSpace != nil {
		item.FridgeSpace = *p.FridgeSpace
	}
	if p.Expiration != nil {
		item.Expiration = *p.Expiration
	}
	if p.StorageLocation != nil {
		item.StorageLocation = *p.StorageLocation
	}
	if p.Notes != nil {
		item.Notes = *p.Notes
	}
}
