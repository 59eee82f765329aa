package domain

import "time"

// Order statuses
const (
	OrderPlaced  = "placed"
	OrderFailed  = "failed"
	OrderSkipped = "skipped"
)

// OrderRequest is the payload sent to a supplier
type OrderRequest struct {
	ItemName string `json:"item_name"`
	Quantity int    `json:"quantity"`
	Supplier string `json:"supplier"`
}

// OrderResult is the per-item outcome of a dispatch
type OrderResult struct {
	ItemID   uint   `json:"item_id"`
	ItemName string `json:"item_name"`
	Supplier string `json:"supplier"`
	Quantity int    `json:"quantity"`
	Status   string `json:"status"`
	Error    string `json:"error,omitempty"`
}

// ReorderOrder is the persisted history of dispatch outcomes
type ReorderOrder struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	ItemID      uint      `json:"item_id" gorm:"not null;index"`
	ItemName    string    `json:"item_name" gorm:"not null"`
	Supplier    string    `json:"supplier"`
	Quantity    int       `json:"quantity"`
	Status      string    `json:"status" gorm:"not null;index"`
	Error       string    `json:"error,omitempty"`
	Cycle       string    `json:"cycle" gorm:"index"`
	RequestedAt time.Time `json:"requested_at"`
}

// TableName specifies the table name
func (ReorderOrder) TableName() string {
	return "reorder_orders"
}

// SnapshotEntry is one line of the inventory snapshot sent for prediction
type SnapshotEntry struct {
	Name       string `json:"name"`
	Stock      int    `json:"stock"`
	SalesTrend string `json:"sales_trend"`
}
