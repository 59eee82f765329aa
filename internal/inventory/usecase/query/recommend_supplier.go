package query

import (
	"context"
	"strings"

	"github.com/tair/smart-inventory/internal/inventory/domain"
)

// DefaultSupplier is recommended for products missing from the catalogue
const DefaultSupplier = "GenericSupplier"

// SupplierCatalogue maps product names to suppliers in preference order
type SupplierCatalogue map[string][]string

// DefaultSupplierCatalogue returns the built-in catalogue
func DefaultSupplierCatalogue() SupplierCatalogue {
	return SupplierCatalogue{
		"Laptop":     {"TechWorld", "GadgetPro"},
		"Milk":       {"DairyBest", "FreshFarms"},
		"Headphones": {"AudioTech", "SoundWave"},
	}
}

// SupplierRecommendation is the preferred supplier and its alternatives
type SupplierRecommendation struct {
	Product      string   `json:"product_name"`
	Supplier     string   `json:"supplier"`
	Alternatives []string `json:"alternatives,omitempty"`
}

// RecommendSupplierQuery represents the query for a supplier recommendation
type RecommendSupplierQuery struct {
	ProductName string
}

// RecommendSupplierHandler handles recommend supplier query
type RecommendSupplierHandler struct {
	catalogue SupplierCatalogue
}

// NewRecommendSupplierHandler creates a new recommend supplier handler
func NewRecommendSupplierHandler(catalogue SupplierCatalogue) *RecommendSupplierHandler {
	return &RecommendSupplierHandler{catalogue: catalogue}
}

// Handle executes the recommend supplier query
func (h *RecommendSupplierHandler) Handle(_ context.Context, query RecommendSupplierQuery) (*SupplierRecommendation, error) {
	name := strings.TrimSpace(query.ProductName)
	if name == "" {
		return nil, domain.ValidationError("product_name is required")
	}

	suppliers := h.catalogue[name]
	if len(suppliers) == 0 {
		return &SupplierRecommendation{Product: name, Supplier: DefaultSupplier}, nil
	}
	return &SupplierRecommendation{
		Product:      name,
		Supplier:     suppliers[0],
		Alternatives: suppliers[1:],
	}, nil
}
