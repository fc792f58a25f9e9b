package inventory

import "github.com/erazemk/barstock/internal/model"

// Summary holds the aggregate counts shown on the inventory overview.
type Summary struct {
	Total int `json:"total"`
	// Low counts items whose storage stock is at or below backstock minimum
	// but not zero.
	Low int `json:"low"`
	// Out counts items with no storage stock.
	Out int `json:"out"`
	// ConcessionsNotAtBar counts concessions not flagged as stocked at the bar.
	ConcessionsNotAtBar int `json:"concessions_not_at_bar"`
	// LowAtBar counts items stocked at the bar whose bar quantity is at or
	// below the bar minimum.
	LowAtBar int `json:"low_at_bar"`
}

// Summarize computes the summary of items.
func Summarize(items []model.Item) Summary {
	s := Summary{Total: len(items)}
	for _, item := range items {
		switch {
		case item.StorageQty == 0:
			s.Out++
		case item.StorageQty <= item.BackstockMin:
			s.Low++
		}
		if item.Category == model.CategoryConcessions && !item.AtBar() {
			s.ConcessionsNotAtBar++
		}
		if item.AtBar() && item.LowAtBar() {
			s.LowAtBar++
		}
	}
	return s
}
