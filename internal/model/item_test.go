package model

import (
	"errors"
	"math"
	"testing"
)

func TestNextStockStatus(t *testing.T) {
	tests := []struct {
		from     StockStatus
		expected StockStatus
	}{
		{StockFull, StockModerate},
		{StockModerate, StockLow},
		{StockLow, StockOut},
		{StockOut, StockFull},
		// Unset and unknown statuses count as Out.
		{"", StockFull},
		{"Overflowing", StockFull},
	}

	for _, tt := range tests {
		got := NextStockStatus(tt.from)
		if got != tt.expected {
			t.Errorf("NextStockStatus(%q) = %q, want %q", tt.from, got, tt.expected)
		}
	}
}

func TestStockStatusCycleReturnsToStart(t *testing.T) {
	seen := map[StockStatus]bool{}
	s := StockOut
	for range 4 {
		s = NextStockStatus(s)
		seen[s] = true
	}
	if s != StockOut {
		t.Errorf("expected four advances from Out to return to Out, got %q", s)
	}
	if len(seen) != 4 {
		t.Errorf("expected exactly 4 distinct states, got %d", len(seen))
	}
}

func TestClampQty(t *testing.T) {
	tests := []struct {
		in       float64
		expected int
	}{
		{0, 0},
		{3, 3},
		{3.9, 3},
		{-2, 0},
		{-0.5, 0},
		{math.NaN(), 0},
		{math.Inf(1), 0},
		{math.Inf(-1), 0},
	}

	for _, tt := range tests {
		got := ClampQty(tt.in)
		if got != tt.expected {
			t.Errorf("ClampQty(%v) = %d, want %d", tt.in, got, tt.expected)
		}
	}
}

func TestClampMultiple(t *testing.T) {
	f := func(v float64) *float64 { return &v }

	if got := ClampMultiple(nil); got != nil {
		t.Errorf("ClampMultiple(nil) = %d, want nil", *got)
	}
	if got := ClampMultiple(f(0)); got != nil {
		t.Errorf("ClampMultiple(0) = %d, want nil", *got)
	}
	if got := ClampMultiple(f(-3)); got != nil {
		t.Errorf("ClampMultiple(-3) = %d, want nil", *got)
	}
	if got := ClampMultiple(f(0.5)); got == nil || *got != 1 {
		t.Errorf("ClampMultiple(0.5) = %v, want 1", got)
	}
	if got := ClampMultiple(f(12.7)); got == nil || *got != 12 {
		t.Errorf("ClampMultiple(12.7) = %v, want 12", got)
	}
}

func TestNormalize(t *testing.T) {
	zero := 0
	negative := -4
	item := Item{
		Name:          "  Cola  ",
		Category:      CategoryConcessions,
		BarQty:        -1,
		StorageQty:    -7,
		BarMin:        -2,
		BackstockMin:  5,
		BackstockMax:  2,
		OrderMultiple: &zero,
		FridgeSpace:   &negative,
		StockStatus:   "Sideways",
	}

	Normalize(&item)

	if item.Name != "Cola" {
		t.Errorf("expected trimmed name, got %q", item.Name)
	}
	if item.BarQty != 0 || item.StorageQty != 0 || item.BarMin != 0 {
		t.Errorf("expected quantities clamped to 0, got bar=%d storage=%d barMin=%d", item.BarQty, item.StorageQty, item.BarMin)
	}
	if item.BackstockMax != 5 {
		t.Errorf("expected backstock max raised to 5, got %d", item.BackstockMax)
	}
	if item.OrderMultiple != nil {
		t.Errorf("expected order multiple unset, got %d", *item.OrderMultiple)
	}
	if item.FridgeSpace == nil || *item.FridgeSpace != 0 {
		t.Errorf("expected fridge space clamped to 0, got %v", item.FridgeSpace)
	}
	if item.StockStatus != "" {
		t.Errorf("expected unknown status cleared, got %q", item.StockStatus)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		item    Item
		wantErr bool
	}{
		{Item{Name: "Cola", Category: CategoryConcessions}, false},
		{Item{Name: "Bleach", Category: CategoryCleaning}, false},
		{Item{Name: "Tape", Category: CategoryWorkSupplies}, false},
		{Item{Name: "", Category: CategoryConcessions}, true},
		{Item{Name: "Cola", Category: "Drinks"}, true},
		{Item{Name: "Cola"}, true},
	}

	for _, tt := range tests {
		err := Validate(tt.item)
		if (err != nil) != tt.wantErr {
			t.Errorf("Validate(%q, %q) error = %v, wantErr %v", tt.item.Name, tt.item.Category, err, tt.wantErr)
		}
		if err != nil && !errors.Is(err, ErrInvalidItem) {
			t.Errorf("expected ErrInvalidItem, got %v", err)
		}
	}
}

func TestPatchApply(t *testing.T) {
	six := 6
	name := "Diet Cola"
	var unset *int
	item := Item{Name: "Cola", BarQty: 2, OrderMultiple: &six, Vendor: "Acme"}

	Patch{Name: &name, OrderMultiple: &unset}.Apply(&item)

	if item.Name != "Diet Cola" {
		t.Errorf("expected name to change, got %q", item.Name)
	}
	if item.OrderMultiple != nil {
		t.Errorf("expected order multiple cleared, got %d", *item.OrderMultiple)
	}
	if item.BarQty != 2 || item.Vendor != "Acme" {
		t.Errorf("expected untouched fields to survive, got bar=%d vendor=%q", item.BarQty, item.Vendor)
	}
	if !(Patch{}).Empty() {
		t.Error("expected zero patch to be empty")
	}
}
