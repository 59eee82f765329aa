package http

import (
	"net/http"

	"github.com/gorilla/mux"
)

// RegisterSwaggerDocs registers Swagger documentation routes
// @Summary Swagger documentation
// @Description Swagger API documentation for Inventory Service
// @Tags Swagger
// @Success 200 {string} string "Swagger UI"
// @Router /swagger/ [get]
func RegisterSwaggerDocs(router *mux.Router, swaggerHandler http.Handler) {
	router.PathPrefix("/swagger/").Handler(swaggerHandler)
}

// Dashboard godoc
// @Summary Inventory dashboard
// @Description Lists items and low-stock names, and dispatches reorders for eligible items
// @Tags Inventory
// @Security BearerAuth
// @Produce json
// @Success 200 {object} object{success=bool,data=object{items=array,low_stock=object{threshold=int,items=[]string},placed_orders=array}}
// @Failure 401 {object} object{success=bool,error=string}
// @Router /api/dashboard [get]
func (h *InventoryHandler) DashboardDoc() {}

// AddItems godoc
// @Summary Add items
// @Description Adds stock for a batch of items. Entries with the same name and expiry date accumulate.
// @Tags Inventory
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body object{items=[]object{name=string,quantity=int,expiry_date=string,barcode=string,supplier=string,order_quantity=int,restock_threshold=int}} true "Items"
// @Success 201 {object} object{success=bool,message=string,data=array}
// @Failure 400 {object} object{success=bool,error=string}
// @Failure 409 {object} object{success=bool,error=string}
// @Router /api/items [post]
func (h *InventoryHandler) AddItemsDoc() {}

// ListItems godoc
// @Summary List items
// @Tags Inventory
// @Security BearerAuth
// @Produce json
// @Success 200 {object} object{success=bool,data=array}
// @Router /api/items [get]
func (h *InventoryHandler) ListItemsDoc() {}

// GetItem godoc
// @Summary Get item by ID
// @Tags Inventory
// @Security BearerAuth
// @Produce json
// @Param id path int true "Item ID"
// @Success 200 {object} object{success=bool,data=object}
// @Failure 404 {object} object{success=bool,error=string}
// @Router /api/items/{id} [get]
func (h *InventoryHandler) GetItemDoc() {}

// DeleteItem godoc
// @Summary Delete item
// @Description Removes an item. Its sales history is kept.
// @Tags Inventory
// @Security BearerAuth
// @Produce json
// @Param id path int true "Item ID"
// @Success 200 {object} object{success=bool,message=string}
// @Failure 404 {object} object{success=bool,error=string}
// @Router /api/items/{id} [delete]
func (h *InventoryHandler) DeleteItemDoc() {}

// GetByBarcode godoc
// @Summary Get item by barcode
// @Tags Inventory
// @Security BearerAuth
// @Produce json
// @Param barcode path string true "Barcode"
// @Success 200 {object} object{success=bool,data=object}
// @Failure 404 {object} object{success=bool,error=string}
// @Router /api/items/barcode/{barcode} [get]
func (h *InventoryHandler) GetByBarcodeDoc() {}

// UpdateSupplier godoc
// @Summary Set supplier policy
// @Tags Inventory
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path int true "Item ID"
// @Param request body object{supplier=string,order_quantity=int} true "Supplier policy"
// @Success 200 {object} object{success=bool,message=string,data=object}
// @Failure 400 {object} object{success=bool,error=string}
// @Failure 404 {object} object{success=bool,error=string}
// @Router /api/items/{id}/supplier [put]
func (h *InventoryHandler) UpdateSupplierDoc() {}

// SetRestockThreshold godoc
// @Summary Set item restock threshold
// @Description A null threshold clears it
// @Tags Inventory
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path int true "Item ID"
// @Param request body object{restock_threshold=int} true "Restock threshold"
// @Success 200 {object} object{success=bool,message=string,data=object}
// @Failure 400 {object} object{success=bool,error=string}
// @Router /api/items/{id}/restock-threshold [put]
func (h *InventoryHandler) SetRestockThresholdDoc() {}

// RecordSale godoc
// @Summary Record a sale
// @Description Exactly one of item_id, barcode or name identifies the item
// @Tags Sales
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body object{item_id=int,barcode=string,name=string,quantity=int} true "Sale"
// @Success 201 {object} object{success=bool,message=string,data=object}
// @Failure 400 {object} object{success=bool,error=string}
// @Failure 404 {object} object{success=bool,error=string}
// @Failure 409 {object} object{success=bool,error=string,data=object{status=string,requested=int,available=int}}
// @Router /api/sales [post]
func (h *InventoryHandler) RecordSaleDoc() {}

// SalesSummary godoc
// @Summary Sales and stock per item name
// @Tags Sales
// @Security BearerAuth
// @Produce json
// @Success 200 {object} object{success=bool,data=object{sales_data=object,inventory_data=object}}
// @Router /api/sales/summary [get]
func (h *InventoryHandler) SalesSummaryDoc() {}

// LowStock godoc
// @Summary Low-stock item names
// @Tags Stock
// @Security BearerAuth
// @Produce json
// @Success 200 {object} object{success=bool,data=object{threshold=int,items=[]string}}
// @Router /api/stock/low [get]
func (h *InventoryHandler) LowStockDoc() {}

// SetThreshold godoc
// @Summary Set warning threshold
// @Description Admin only
// @Tags Stock
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body object{threshold=int} true "Threshold"
// @Success 200 {object} object{success=bool,message=string,data=object{threshold=int}}
// @Failure 400 {object} object{success=bool,error=string}
// @Failure 403 {object} object{success=bool,error=string}
// @Router /api/stock/threshold [put]
func (h *InventoryHandler) SetThresholdDoc() {}

// ReorderCandidates godoc
// @Summary Reorder-eligible items
// @Tags Reorders
// @Security BearerAuth
// @Produce json
// @Success 200 {object} object{success=bool,data=array}
// @Router /api/reorders/candidates [get]
func (h *InventoryHandler) ReorderCandidatesDoc() {}

// DispatchReorders godoc
// @Summary Dispatch reorders
// @Description Orders every eligible item, or only item_id when given
// @Tags Reorders
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body object{item_id=int} false "Item filter"
// @Success 200 {object} object{success=bool,data=[]object{item_id=int,item_name=string,supplier=string,quantity=int,status=string,error=string}}
// @Router /api/reorders/dispatch [post]
func (h *InventoryHandler) DispatchReordersDoc() {}

// ListReorders godoc
// @Summary Reorder history
// @Tags Reorders
// @Security BearerAuth
// @Produce json
// @Param limit query int false "Limit (default 50, max 500)"
// @Success 200 {object} object{success=bool,data=array}
// @Router /api/reorders [get]
func (h *InventoryHandler) ListReordersDoc() {}

// Predict godoc
// @Summary Restock prediction
// @Description Builds a snapshot from the store unless one is supplied
// @Tags Predictions
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body object{snapshot=[]object{name=string,stock=int,sales_trend=string}} false "Snapshot"
// @Success 200 {object} object{success=bool,data=object{status=string,prediction=string,snapshot=array}}
// @Failure 502 {object} object{success=bool,error=string,data=object{status=string,error=string}}
// @Router /api/predictions [post]
func (h *InventoryHandler) PredictDoc() {}

// RestockReport godoc
// @Summary Restock list PDF
// @Tags Reports
// @Security BearerAuth
// @Produce application/pdf
// @Success 200 {file} file "restock_list.pdf"
// @Router /api/reports/restock.pdf [get]
func (h *InventoryHandler) RestockReportDoc() {}

// RecommendSupplier godoc
// @Summary Recommend a supplier
// @Tags Suppliers
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body object{product_name=string} true "Product"
// @Success 200 {object} object{success=bool,data=object{product_name=string,supplier=string,alternatives=[]string}}
// @Failure 400 {object} object{success=bool,error=string}
// @Router /api/suppliers/recommend [post]
func (h *InventoryHandler) RecommendSupplierDoc() {}

// HealthCheck godoc
// @Summary Health check
// @Description Check service health and database connectivity
// @Tags Health
// @Produce json
// @Success 200 {object} object{success=bool,message=string}
// @Failure 503 {object} object{success=bool,error=string}
// @Router /health [get]
func (h *InventoryHandler) HealthCheckDoc() {}
