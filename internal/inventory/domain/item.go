package domain

import (
	"strings"
	"time"
)

// DateLayout is the wire format of expiry dates
const DateLayout = "2006-01-02"

// Item represents a stock item. Items are identified for accumulation by
// (name, expiry date); a missing expiry date is a distinct key.
type Item struct {
	ID               uint       `json:"id" gorm:"primaryKey"`
	Name             string     `json:"name" gorm:"not null;index"`
	Quantity         int        `json:"quantity" gorm:"not null;default:0;check:quantity >= 0"`
	ExpiryDate       *time.Time `json:"expiry_date,omitempty" gorm:"type:date"`
	Barcode          *string    `json:"barcode,omitempty" gorm:"uniqueIndex"`
	Supplier         *string    `json:"supplier,omitempty"`
	RestockThreshold *int       `json:"restock_threshold,omitempty"`
	OrderQuantity    *int       `json:"order_quantity,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

// TableName specifies the table name
func (Item) TableName() string {
	return "items"
}

// SupplierName returns the supplier or an empty string
func (i *Item) SupplierName() string {
	if i.Supplier == nil {
		return ""
	}
	return strings.TrimSpace(*i.Supplier)
}

// BarcodeValue returns the barcode or an empty string
func (i *Item) BarcodeValue() string {
	if i.Barcode == nil {
		return ""
	}
	return *i.Barcode
}

// NormalizeDate truncates t to a calendar date in UTC
func NormalizeDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// SameExpiry reports whether two optional expiry dates denote the same key
func SameExpiry(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return NormalizeDate(*a).Equal(NormalizeDate(*b))
}

// StringPtr returns nil for blank strings
func StringPtr(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

// IntPtr returns a pointer to v
func IntPtr(v int) *int {
	return &v
}
