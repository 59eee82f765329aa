package reorder

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/tair/smart-inventory/internal/inventory/domain"
	"github.com/tair/smart-inventory/pkg/breaker"
	"github.com/tair/smart-inventory/pkg/httpclient"
)

const supplierService = "supplier"

// SupplierClient places a single order with a supplier
type SupplierClient interface {
	PlaceOrder(ctx context.Context, order domain.OrderRequest) error
}

// HTTPSupplierClient posts orders as JSON to a supplier endpoint. Any 2xx
// status is a placed order.
type HTTPSupplierClient struct {
	url        string
	httpClient *http.Client
}

// NewHTTPSupplierClient creates a new supplier client
func NewHTTPSupplierClient(url string, timeout time.Duration) *HTTPSupplierClient {
	return &HTTPSupplierClient{url: url, httpClient: httpclient.New(timeout)}
}

// PlaceOrder sends the order. Failures are *domain.GatewayError.
func (c *HTTPSupplierClient) PlaceOrder(ctx context.Context, order domain.OrderRequest) error {
	body, err := json.Marshal(order)
	if err != nil {
		return &domain.GatewayError{Service: supplierService, Cause: fmt.Errorf("failed to encode order: %w", err)}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return &domain.GatewayError{Service: supplierService, Cause: fmt.Errorf("failed to create request: %w", err)}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &domain.GatewayError{Service: supplierService, Cause: httpclient.ClassifyError(err)}
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &domain.GatewayError{
			Service: supplierService,
			Cause:   fmt.Errorf("unexpected response from supplier: %s", resp.Status),
		}
	}
	return nil
}

// GuardedSupplierClient fails fast while the supplier keeps failing
type GuardedSupplierClient struct {
	next    SupplierClient
	breaker *breaker.Breaker
}

// NewGuardedSupplierClient wraps next with a circuit breaker. Cancelled
// requests do not count against the supplier.
func NewGuardedSupplierClient(next SupplierClient, settings breaker.Settings) *GuardedSupplierClient {
	settings.IsFailure = func(err error) bool {
		return !errors.Is(err, context.Canceled)
	}
	return &GuardedSupplierClient{next: next, breaker: breaker.New(supplierService, settings)}
}

func (c *GuardedSupplierClient) PlaceOrder(ctx context.Context, order domain.OrderRequest) error {
	err := c.breaker.Call(func() error {
		return c.next.PlaceOrder(ctx, order)
	})
	if errors.Is(err, breaker.ErrOpen) {
		return &domain.GatewayError{Service: supplierService, Cause: err}
	}
	return err
}
