package model

// StockStatus is the staff's assessment of how stocked an item is at the bar.
type StockStatus string

// Stock statuses. The empty value means unset.
const (
	StockFull     StockStatus = "Full"
	StockModerate StockStatus = "Moderate"
	StockLow      StockStatus = "Low"
	StockOut      StockStatus = "Out"
)

// StockStatuses is the fixed cycle order used by NextStockStatus.
var StockStatuses = []StockStatus{StockFull, StockModerate, StockLow, StockOut}

// Valid reports whether s is one of the four statuses.
func (s StockStatus) Valid() bool {
	switch s {
	case StockFull, StockModerate, StockLow, StockOut:
		return true
	}
	return false
}

// Effective returns s, or StockOut when s is unset or unknown.
func (s StockStatus) Effective() StockStatus {
	if !s.Valid() {
		return StockOut
	}
	return s
}

// NextStockStatus returns the successor of s in the cycle
// Full -> Moderate -> Low -> Out -> Full. Unset counts as Out.
func NextStockStatus(s StockStatus) StockStatus {
	cur := s.Effective()
	for i, st := range StockStatuses {
		if st == cur {
			return StockStatuses[(i+1)%len(StockStatuses)]
		}
	}
	return StockFull
}
