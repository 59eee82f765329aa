package kafka

import "time"

// SaleRecordedEvent is published after a sale commits
type SaleRecordedEvent struct {
	EventID         string    `json:"event_id"`
	EventType       string    `json:"event_type"`
	SaleID          uint      `json:"sale_id"`
	ItemID          uint      `json:"item_id"`
	ItemName        string    `json:"item_name"`
	QuantitySold    int       `json:"quantity_sold"`
	Remaining       int       `json:"remaining"`
	ReorderEligible bool      `json:"reorder_eligible"`
	SoldAt          time.Time `json:"sold_at"`
	Timestamp       time.Time `json:"timestamp"`
}

// ReorderPlacedEvent is published after a supplier accepts an order
type ReorderPlacedEvent struct {
	EventID   string    `json:"event_id"`
	EventType string    `json:"event_type"`
	Cycle     string    `json:"cycle"`
	ItemID    uint      `json:"item_id"`
	ItemName  string    `json:"item_name"`
	Supplier  string    `json:"supplier"`
	Quantity  int       `json:"quantity"`
	Timestamp time.Time `json:"timestamp"`
}

// Event types
const (
	EventTypeSaleRecorded  = "sale.recorded"
	EventTypeReorderPlaced = "reorder.placed"
)

// Kafka topics
const (
	TopicSaleRecorded  = "sale-recorded"
	TopicReorderPlaced = "reorder-placed"
)
