package domain

// Prediction outcome statuses
const (
	PredictionOK          = "ok"
	PredictionUnavailable = "unavailable"
)

// PredictionResult is the tagged outcome of a prediction request. Gateway
// failures are reported in Error with status unavailable.
type PredictionResult struct {
	Status     string          `json:"status"`
	Prediction string          `json:"prediction,omitempty"`
	Error      string          `json:"error,omitempty"`
	Snapshot   []SnapshotEntry `json:"snapshot"`
}

// SalesSummary is the sold and on-hand quantity per item name
type SalesSummary struct {
	SalesData     map[string]int `json:"sales_data"`
	InventoryData map[string]int `json:"inventory_data"`
}
