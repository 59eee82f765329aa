package domain

import "time"

// SaleEvent is an append-only record of a completed sale. It carries no
// foreign key so history outlives a deleted item.
type SaleEvent struct {
	ID           uint      `json:"id" gorm:"primaryKey"`
	ItemID       uint      `json:"item_id" gorm:"not null;index"`
	QuantitySold int       `json:"quantity_sold" gorm:"not null;check:quantity_sold > 0"`
	SaleDate     time.Time `json:"sale_date" gorm:"not null"`
}

// TableName specifies the table name
func (SaleEvent) TableName() string {
	return "sale_events"
}

// SaleRef identifies the item a sale applies to. Exactly one field must be set.
type SaleRef struct {
	ItemID  uint   `json:"item_id,omitempty"`
	Barcode string `json:"barcode,omitempty"`
	Name    string `json:"name,omitempty"`
}

// Sale outcome statuses
const (
	SaleCompleted = "completed"
	SaleDeclined  = "declined"
)

// SaleResult describes the outcome of a sale request
type SaleResult struct {
	Status    string     `json:"status"`
	Item      *Item      `json:"item,omitempty"`
	Sale      *SaleEvent `json:"sale,omitempty"`
	Requested int        `json:"requested"`
	Available int        `json:"available"`
}
