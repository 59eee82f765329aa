package http

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"

	"github.com/tair/smart-inventory/internal/inventory/domain"
	"github.com/tair/smart-inventory/internal/inventory/usecase/command"
	"github.com/tair/smart-inventory/internal/inventory/usecase/query"
	"github.com/tair/smart-inventory/pkg/auth"
	"github.com/tair/smart-inventory/pkg/logger"
)

// Commands groups the inventory command handlers
type Commands struct {
	AddItems            *command.AddItemsHandler
	DeleteItem          *command.DeleteItemHandler
	RecordSale          *command.RecordSaleHandler
	UpdateSupplier      *command.UpdateSupplierHandler
	SetRestockThreshold *command.SetRestockThresholdHandler
	SetThreshold        *command.SetThresholdHandler
	DispatchReorders    *command.DispatchReordersHandler
}

// Queries groups the inventory query handlers
type Queries struct {
	GetItem           *query.GetItemHandler
	FindByBarcode     *query.FindByBarcodeHandler
	ListItems         *query.ListItemsHandler
	LowStock          *query.LowStockHandler
	ReorderCandidates *query.ReorderCandidatesHandler
	ListReorders      *query.ListReordersHandler
	SalesSummary      *query.SalesSummaryHandler
	Prediction        *query.PredictionHandler
	RestockReport     *query.RestockReportHandler
	RecommendSupplier *query.RecommendSupplierHandler
}

// HealthChecker reports whether the backing store is reachable
type HealthChecker func(ctx context.Context) error

// InventoryHandler handles HTTP requests for inventory using CQRS pattern
type InventoryHandler struct {
	commands Commands
	queries  Queries
	metrics  *Metrics
}

// NewInventoryHandler creates a new inventory handler
func NewInventoryHandler(commands Commands, queries Queries, metrics *Metrics) *InventoryHandler {
	return &InventoryHandler{commands: commands, queries: queries, metrics: metrics}
}

type Response struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// RegisterRoutes registers all inventory routes. requireAuth guards every route.
func (h *InventoryHandler) RegisterRoutes(router *mux.Router, requireAuth func(http.Handler) http.Handler) {
	route := func(path string, fn http.HandlerFunc) http.Handler {
		return h.metrics.instrument(path, requireAuth(fn))
	}
	admin := func(path string, fn http.HandlerFunc) http.Handler {
		return h.metrics.instrument(path, requireAuth(auth.RequireAdmin(fn)))
	}

	router.Handle("/api/dashboard", route("/api/dashboard", h.Dashboard)).Methods("GET")

	router.Handle("/api/items", route("/api/items", h.ListItems)).Methods("GET")
	router.Handle("/api/items", route("/api/items", h.AddItems)).Methods("POST")
	router.Handle("/api/items/barcode/{barcode}", route("/api/items/barcode/{barcode}", h.GetByBarcode)).Methods("GET")
	router.Handle("/api/items/{id:[0-9]+}", route("/api/items/{id}", h.GetItem)).Methods("GET")
	router.Handle("/api/items/{id:[0-9]+}", route("/api/items/{id}", h.DeleteItem)).Methods("DELETE")
	router.Handle("/api/items/{id:[0-9]+}/supplier", route("/api/items/{id}/supplier", h.UpdateSupplier)).Methods("PUT")
	router.Handle("/api/items/{id:[0-9]+}/restock-threshold", route("/api/items/{id}/restock-threshold", h.SetRestockThreshold)).Methods("PUT")

	router.Handle("/api/sales", route("/api/sales", h.RecordSale)).Methods("POST")
	router.Handle("/api/sales/summary", route("/api/sales/summary", h.SalesSummary)).Methods("GET")

	router.Handle("/api/stock/low", route("/api/stock/low", h.LowStock)).Methods("GET")
	router.Handle("/api/stock/threshold", admin("/api/stock/threshold", h.SetThreshold)).Methods("PUT")

	router.Handle("/api/reorders", route("/api/reorders", h.ListReorders)).Methods("GET")
	router.Handle("/api/reorders/candidates", route("/api/reorders/candidates", h.ReorderCandidates)).Methods("GET")
	router.Handle("/api/reorders/dispatch", route("/api/reorders/dispatch", h.DispatchReorders)).Methods("POST")

	router.Handle("/api/predictions", route("/api/predictions", h.Predict)).Methods("POST")
	router.Handle("/api/reports/restock.pdf", route("/api/reports/restock.pdf", h.RestockReport)).Methods("GET")
	router.Handle("/api/suppliers/recommend", route("/api/suppliers/recommend", h.RecommendSupplier)).Methods("POST")
}

// RegisterHealthCheck registers health check endpoint. A nil check always reports healthy.
func (h *InventoryHandler) RegisterHealthCheck(router *mux.Router, check HealthChecker) {
	router.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		if check != nil {
			if err := check(r.Context()); err != nil {
				logger.Error(r.Context()).Err(err).Msg("Health check failed")
				respondJSON(w, http.StatusServiceUnavailable, Response{
					Success: false,
					Error:   "Database unavailable",
				})
				return
			}
		}

		respondJSON(w, http.StatusOK, Response{
			Success: true,
			Message: "Inventory service is healthy",
		})
	}).Methods("GET")
}

// Dashboard handles GET /api/dashboard
func (h *InventoryHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	items, err := h.queries.ListItems.Handle(ctx, query.ListItemsQuery{})
	if err != nil {
		h.respondError(w, r, err, "Failed to list items")
		return
	}
	low, err := h.queries.LowStock.Handle(ctx, query.LowStockQuery{})
	if err != nil {
		h.respondError(w, r, err, "Failed to evaluate low stock")
		return
	}
	h.metrics.lowStockItems.Set(float64(len(low.Items)))

	results, err := h.commands.DispatchReorders.Handle(ctx, command.DispatchReordersCommand{})
	if err != nil {
		h.respondError(w, r, err, "Failed to dispatch reorders")
		return
	}
	placed := make([]domain.OrderResult, 0, len(results))
	for _, res := range results {
		if res.Status == domain.OrderPlaced {
			placed = append(placed, res)
		}
	}

	respondJSON(w, http.StatusOK, Response{
		Success: true,
		Data: map[string]interface{}{
			"items":         items,
			"low_stock":     low,
			"placed_orders": placed,
		},
	})
}

type newItemRequest struct {
	Name             string `json:"name"`
	Quantity         int    `json:"quantity"`
	ExpiryDate       string `json:"expiry_date"`
	Barcode          string `json:"barcode"`
	Supplier         string `json:"supplier"`
	OrderQuantity    *int   `json:"order_quantity"`
	RestockThreshold *int   `json:"restock_threshold"`
}

// AddItems handles POST /api/items
func (h *InventoryHandler) AddItems(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Items []newItemRequest `json:"items"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSON(w, http.StatusBadRequest, Response{
			Success: false,
			Error:   "Invalid request body",
		})
		return
	}

	cmd := command.AddItemsCommand{Items: make([]command.NewItem, 0, len(req.Items))}
	for i, in := range req.Items {
		var expiry *time.Time
		if s := strings.TrimSpace(in.ExpiryDate); s != "" {
			d, err := time.Parse(domain.DateLayout, s)
			if err != nil {
				respondJSON(w, http.StatusBadRequest, Response{
					Success: false,
					Error:   "items[" + strconv.Itoa(i) + "]: expiry_date must be YYYY-MM-DD",
				})
				return
			}
			expiry = &d
		}
		cmd.Items = append(cmd.Items, command.NewItem{
			Name:             in.Name,
			Quantity:         in.Quantity,
			ExpiryDate:       expiry,
			Barcode:          in.Barcode,
			Supplier:         in.Supplier,
			OrderQuantity:    in.OrderQuantity,
			RestockThreshold: in.RestockThreshold,
		})
	}

	items, err := h.commands.AddItems.Handle(r.Context(), cmd)
	if err != nil {
		h.respondError(w, r, err, "Failed to add items")
		return
	}

	respondJSON(w, http.StatusCreated, Response{
		Success: true,
		Message: "Items added successfully",
		Data:    items,
	})
}

// ListItems handles GET /api/items
func (h *InventoryHandler) ListItems(w http.ResponseWriter, r *http.Request) {
	items, err := h.queries.ListItems.Handle(r.Context(), query.ListItemsQuery{})
	if err != nil {
		h.respondError(w, r, err, "Failed to list items")
		return
	}

	respondJSON(w, http.StatusOK, Response{Success: true, Data: items})
}

// GetItem handles GET /api/items/{id}
func (h *InventoryHandler) GetItem(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}

	item, err := h.queries.GetItem.Handle(r.Context(), query.GetItemQuery{ID: id})
	if err != nil {
		h.respondError(w, r, err, "Failed to get item")
		return
	}

	respondJSON(w, http.StatusOK, Response{Success: true, Data: item})
}

// GetByBarcode handles GET /api/items/barcode/{barcode}
func (h *InventoryHandler) GetByBarcode(w http.ResponseWriter, r *http.Request) {
	item, err := h.queries.FindByBarcode.Handle(r.Context(), query.FindByBarcodeQuery{Barcode: mux.Vars(r)["barcode"]})
	if err != nil {
		h.respondError(w, r, err, "Failed to find item")
		return
	}

	respondJSON(w, http.StatusOK, Response{Success: true, Data: item})
}

// DeleteItem handles DELETE /api/items/{id}
func (h *InventoryHandler) DeleteItem(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}

	if err := h.commands.DeleteItem.Handle(r.Context(), command.DeleteItemCommand{ID: id}); err != nil {
		h.respondError(w, r, err, "Failed to delete item")
		return
	}

	respondJSON(w, http.StatusOK, Response{
		Success: true,
		Message: "Item deleted successfully",
	})
}

// UpdateSupplier handles PUT /api/items/{id}/supplier
func (h *InventoryHandler) UpdateSupplier(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}

	var req struct {
		Supplier      string `json:"supplier"`
		OrderQuantity int    `json:"order_quantity"`
	}
	if !decodeBody(w, r, &req) {
		return
	}

	item, err := h.commands.UpdateSupplier.Handle(r.Context(), command.UpdateSupplierCommand{
		ItemID:        id,
		Supplier:      req.Supplier,
		OrderQuantity: req.OrderQuantity,
	})
	if err != nil {
		h.respondError(w, r, err, "Failed to update supplier")
		return
	}

	respondJSON(w, http.StatusOK, Response{
		Success: true,
		Message: "Supplier updated successfully",
		Data:    item,
	})
}

// SetRestockThreshold handles PUT /api/items/{id}/restock-threshold
func (h *InventoryHandler) SetRestockThreshold(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}

	var req struct {
		RestockThreshold *int `json:"restock_threshold"`
	}
	if !decodeBody(w, r, &req) {
		return
	}

	item, err := h.commands.SetRestockThreshold.Handle(r.Context(), command.SetRestockThresholdCommand{
		ItemID:    id,
		Threshold: req.RestockThreshold,
	})
	if err != nil {
		h.respondError(w, r, err, "Failed to set restock threshold")
		return
	}

	respondJSON(w, http.StatusOK, Response{
		Success: true,
		Message: "Restock threshold updated successfully",
		Data:    item,
	})
}

// RecordSale handles POST /api/sales
func (h *InventoryHandler) RecordSale(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ItemID   uint   `json:"item_id"`
		Barcode  string `json:"barcode"`
		Name     string `json:"name"`
		Quantity int    `json:"quantity"`
	}
	if !decodeBody(w, r, &req) {
		return
	}

	result, err := h.commands.RecordSale.Handle(r.Context(), command.RecordSaleCommand{
		Ref:      domain.SaleRef{ItemID: req.ItemID, Barcode: req.Barcode, Name: req.Name},
		Quantity: req.Quantity,
	})
	if errors.Is(err, domain.ErrInsufficientStock) {
		h.metrics.salesDeclined.Inc()
		respondJSON(w, http.StatusConflict, Response{
			Success: false,
			Error:   err.Error(),
			Data:    result,
		})
		return
	}
	if err != nil {
		h.respondError(w, r, err, "Failed to record sale")
		return
	}

	h.metrics.salesRecorded.Inc()
	respondJSON(w, http.StatusCreated, Response{
		Success: true,
		Message: "Sale recorded successfully",
		Data:    result,
	})
}

// SalesSummary handles GET /api/sales/summary
func (h *InventoryHandler) SalesSummary(w http.ResponseWriter, r *http.Request) {
	summary, err := h.queries.SalesSummary.Handle(r.Context(), query.SalesSummaryQuery{})
	if err != nil {
		h.respondError(w, r, err, "Failed to build sales summary")
		return
	}

	respondJSON(w, http.StatusOK, Response{Success: true, Data: summary})
}

// LowStock handles GET /api/stock/low
func (h *InventoryHandler) LowStock(w http.ResponseWriter, r *http.Request) {
	low, err := h.queries.LowStock.Handle(r.Context(), query.LowStockQuery{})
	if err != nil {
		h.respondError(w, r, err, "Failed to evaluate low stock")
		return
	}
	h.metrics.lowStockItems.Set(float64(len(low.Items)))

	respondJSON(w, http.StatusOK, Response{Success: true, Data: low})
}

// SetThreshold handles PUT /api/stock/threshold
func (h *InventoryHandler) SetThreshold(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Threshold int `json:"threshold"`
	}
	if !decodeBody(w, r, &req) {
		return
	}

	if err := h.commands.SetThreshold.Handle(r.Context(), command.SetThresholdCommand{Threshold: req.Threshold}); err != nil {
		h.respondError(w, r, err, "Failed to set threshold")
		return
	}

	respondJSON(w, http.StatusOK, Response{
		Success: true,
		Message: "Threshold updated successfully",
		Data:    map[string]int{"threshold": req.Threshold},
	})
}

// ReorderCandidates handles GET /api/reorders/candidates
func (h *InventoryHandler) ReorderCandidates(w http.ResponseWriter, r *http.Request) {
	items, err := h.queries.ReorderCandidates.Handle(r.Context(), query.ReorderCandidatesQuery{})
	if err != nil {
		h.respondError(w, r, err, "Failed to list reorder candidates")
		return
	}

	respondJSON(w, http.StatusOK, Response{Success: true, Data: items})
}

// DispatchReorders handles POST /api/reorders/dispatch
func (h *InventoryHandler) DispatchReorders(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ItemID uint `json:"item_id"`
	}
	if !decodeOptionalBody(w, r, &req) {
		return
	}

	results, err := h.commands.DispatchReorders.Handle(r.Context(), command.DispatchReordersCommand{ItemID: req.ItemID})
	if err != nil {
		h.respondError(w, r, err, "Failed to dispatch reorders")
		return
	}

	respondJSON(w, http.StatusOK, Response{Success: true, Data: results})
}

// ListReorders handles GET /api/reorders
func (h *InventoryHandler) ListReorders(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	orders, err := h.queries.ListReorders.Handle(r.Context(), query.ListReordersQuery{Limit: limit})
	if err != nil {
		h.respondError(w, r, err, "Failed to list reorders")
		return
	}

	respondJSON(w, http.StatusOK, Response{Success: true, Data: orders})
}

// Predict handles POST /api/predictions
func (h *InventoryHandler) Predict(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Snapshot []domain.SnapshotEntry `json:"snapshot"`
	}
	if !decodeOptionalBody(w, r, &req) {
		return
	}

	result, err := h.queries.Prediction.Handle(r.Context(), query.PredictionQuery{Snapshot: req.Snapshot})
	if errors.Is(err, domain.ErrGateway) {
		h.metrics.predictions.WithLabelValues(domain.PredictionUnavailable).Inc()
		respondJSON(w, http.StatusBadGateway, Response{
			Success: false,
			Error:   "Prediction service unavailable",
			Data:    result,
		})
		return
	}
	if err != nil {
		h.respondError(w, r, err, "Failed to build prediction")
		return
	}

	h.metrics.predictions.WithLabelValues(domain.PredictionOK).Inc()
	respondJSON(w, http.StatusOK, Response{Success: true, Data: result})
}

// RestockReport handles GET /api/reports/restock.pdf
func (h *InventoryHandler) RestockReport(w http.ResponseWriter, r *http.Request) {
	pdf, err := h.queries.RestockReport.Handle(r.Context(), query.RestockReportQuery{})
	if err != nil {
		h.respondError(w, r, err, "Failed to render restock report")
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", `attachment; filename="restock_list.pdf"`)
	w.Header().Set("Content-Length", strconv.Itoa(len(pdf)))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(pdf); err != nil {
		logger.Error(r.Context()).Err(err).Msg("Failed to write restock report")
	}
}

// RecommendSupplier handles POST /api/suppliers/recommend
func (h *InventoryHandler) RecommendSupplier(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ProductName string `json:"product_name"`
	}
	if !decodeBody(w, r, &req) {
		return
	}

	rec, err := h.queries.RecommendSupplier.Handle(r.Context(), query.RecommendSupplierQuery{ProductName: req.ProductName})
	if err != nil {
		h.respondError(w, r, err, "Failed to recommend supplier")
		return
	}

	respondJSON(w, http.StatusOK, Response{Success: true, Data: rec})
}

// respondError maps an error kind to its status code. Unclassified errors
// are logged and reported with the generic message only.
func (h *InventoryHandler) respondError(w http.ResponseWriter, r *http.Request, err error, message string) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, domain.ErrValidation):
		status = http.StatusBadRequest
	case errors.Is(err, domain.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, domain.ErrConflict), errors.Is(err, domain.ErrInsufficientStock):
		status = http.StatusConflict
	case errors.Is(err, domain.ErrGateway):
		status = http.StatusBadGateway
	}

	if status == http.StatusInternalServerError {
		logger.Error(r.Context()).Err(err).Str("path", r.URL.Path).Msg(message)
		respondJSON(w, status, Response{Success: false, Error: message})
		return
	}

	respondJSON(w, status, Response{Success: false, Error: err.Error()})
}

func parseID(w http.ResponseWriter, r *http.Request) (uint, bool) {
	id, err := strconv.ParseUint(mux.Vars(r)["id"], 10, 32)
	if err != nil || id == 0 {
		respondJSON(w, http.StatusBadRequest, Response{
			Success: false,
			Error:   "Invalid item ID",
		})
		return 0, false
	}
	return uint(id), true
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		respondJSON(w, http.StatusBadRequest, Response{
			Success: false,
			Error:   "Invalid request body",
		})
		return false
	}
	return true
}

// decodeOptionalBody accepts an empty body
func decodeOptionalBody(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	err := json.NewDecoder(r.Body).Decode(dst)
	if err == nil || errors.Is(err, io.EOF) {
		return true
	}
	respondJSON(w, http.StatusBadRequest, Response{
		Success: false,
		Error:   "Invalid request body",
	})
	return false
}

// respondJSON sends a JSON response
func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}
