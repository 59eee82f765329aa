package reorder

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tair/smart-inventory/internal/inventory/domain"
	"github.com/tair/smart-inventory/internal/inventory/repository/memory"
	"github.com/tair/smart-inventory/pkg/breaker"
)

type fakeSupplier struct {
	mu      sync.Mutex
	calls   []domain.OrderRequest
	failFor map[string]bool
	delay   time.Duration
}

func (s *fakeSupplier) PlaceOrder(ctx context.Context, order domain.OrderRequest) error {
	s.mu.Lock()
	s.calls = append(s.calls, order)
	fail := s.failFor[order.Supplier]
	s.mu.Unlock()

	if s.delay > 0 {
		select {
		case <-time.After(s.delay):
		case <-ctx.Done():
			return &domain.GatewayError{Service: supplierService, Cause: ctx.Err()}
		}
	}
	if fail {
		return &domain.GatewayError{Service: supplierService, Cause: errors.New("503 Service Unavailable")}
	}
	return nil
}

type mapLedger struct {
	mu   sync.Mutex
	keys map[string]bool
}

func newMapLedger() *mapLedger { return &mapLedger{keys: map[string]bool{}} }

func (l *mapLedger) Acquire(_ context.Context, cycle string, itemID uint) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	k := attemptKey(cycle, itemID)
	if l.keys[k] {
		return false, nil
	}
	l.keys[k] = true
	return true, nil
}

func (l *mapLedger) Release(_ context.Context, cycle string, itemID uint) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.keys, attemptKey(cycle, itemID))
	return nil
}

type capturePublisher struct {
	mu     sync.Mutex
	placed []domain.OrderResult
}

func (p *capturePublisher) PublishReorderPlaced(_ context.Context, _ string, r domain.OrderResult) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.placed = append(p.placed, r)
	return nil
}

func eligible(id uint, name, supplier string, qty int) domain.Item {
	return domain.Item{
		ID:               id,
		Name:             name,
		Quantity:         0,
		Supplier:         &supplier,
		RestockThreshold: domain.IntPtr(5),
		OrderQuantity:    domain.IntPtr(qty),
	}
}

func TestDispatch_PartialFailureIsIsolated(t *testing.T) {
	supplier := &fakeSupplier{failFor: map[string]bool{"DairyBest": true}}
	store := memory.NewStore()
	pub := &capturePublisher{}
	reg := prometheus.NewRegistry()
	metrics := NewMetrics(reg)
	d := NewDispatcher(supplier, store.Reorders(), Config{Concurrency: 2},
		WithPublisher(pub), WithMetrics(metrics))

	items := []domain.Item{
		eligible(1, "Laptop", "TechWorld", 3),
		eligible(2, "Milk", "DairyBest", 12),
		eligible(3, "Headphones", "AudioTech", 5),
	}
	results := d.Dispatch(context.Background(), items)

	require.Len(t, results, 3)
	assert.Equal(t, domain.OrderPlaced, results[0].Status)
	assert.Equal(t, domain.OrderFailed, results[1].Status)
	assert.Contains(t, results[1].Error, "503")
	assert.Equal(t, domain.OrderPlaced, results[2].Status)
	assert.Equal(t, "Headphones", results[2].ItemName)
	assert.Equal(t, 5, results[2].Quantity)

	assert.Len(t, supplier.calls, 3)
	assert.Len(t, pub.placed, 2)

	history, err := store.Reorders().FindRecent(context.Background(), 10)
	require.NoError(t, err)
	assert.Len(t, history, 3)

	assert.Equal(t, 2.0, counterValue(t, metrics.orders.WithLabelValues(domain.OrderPlaced)))
	assert.Equal(t, 1.0, counterValue(t, metrics.orders.WithLabelValues(domain.OrderFailed)))
}

func TestDispatch_SkipsIneligibleItems(t *testing.T) {
	supplier := &fakeSupplier{}
	d := NewDispatcher(supplier, nil, Config{})

	notEligible := domain.Item{ID: 9, Name: "Bread", Quantity: 1, RestockThreshold: domain.IntPtr(5), OrderQuantity: domain.IntPtr(2)}
	results := d.Dispatch(context.Background(), []domain.Item{notEligible})

	require.Len(t, results, 1)
	assert.Equal(t, domain.OrderSkipped, results[0].Status)
	assert.Empty(t, supplier.calls)
}

func TestDispatch_LedgerDedupesWithinCycleAndReleasesFailures(t *testing.T) {
	supplier := &fakeSupplier{failFor: map[string]bool{"DairyBest": true}}
	ledger := newMapLedger()
	d := NewDispatcher(supplier, nil, Config{Cycle: time.Hour}, WithLedger(ledger))
	d.now = func() time.Time { return time.Date(2025, 3, 1, 10, 15, 0, 0, time.UTC) }

	items := []domain.Item{eligible(1, "Laptop", "TechWorld", 3), eligible(2, "Milk", "DairyBest", 12)}

	first := d.Dispatch(context.Background(), items)
	assert.Equal(t, domain.OrderPlaced, first[0].Status)
	assert.Equal(t, domain.OrderFailed, first[1].Status)

	second := d.Dispatch(context.Background(), items)
	assert.Equal(t, domain.OrderSkipped, second[0].Status)
	assert.Equal(t, domain.OrderFailed, second[1].Status)
	assert.Len(t, supplier.calls, 3)

	d.now = func() time.Time { return time.Date(2025, 3, 1, 11, 0, 0, 0, time.UTC) }
	third := d.Dispatch(context.Background(), items[:1])
	assert.Equal(t, domain.OrderPlaced, third[0].Status)
}

func TestDispatch_TimeoutIsFailureNotCrash(t *testing.T) {
	supplier := &fakeSupplier{delay: time.Second}
	d := NewDispatcher(supplier, nil, Config{CallTimeout: 20 * time.Millisecond})

	start := time.Now()
	results := d.Dispatch(context.Background(), []domain.Item{eligible(1, "Laptop", "TechWorld", 1)})

	assert.Less(t, time.Since(start), 500*time.Millisecond)
	assert.Equal(t, domain.OrderFailed, results[0].Status)
}

func TestDispatch_BoundedConcurrency(t *testing.T) {
	var inFlight, peak int32
	client := supplierFunc(func(ctx context.Context, _ domain.OrderRequest) error {
		n := atomic.AddInt32(&inFlight, 1)
		for {
			p := atomic.LoadInt32(&peak)
			if n <= p || atomic.CompareAndSwapInt32(&peak, p, n) {
				break
			}
		}
		time.Sleep(10 * time.Millisecond)
		atomic.AddInt32(&inFlight, -1)
		return nil
	})
	d := NewDispatcher(client, nil, Config{Concurrency: 3})

	items := make([]domain.Item, 12)
	for i := range items {
		items[i] = eligible(uint(i+1), fmt.Sprintf("item-%d", i), "TechWorld", 1)
	}
	results := d.Dispatch(context.Background(), items)

	assert.Len(t, results, 12)
	assert.LessOrEqual(t, atomic.LoadInt32(&peak), int32(3))
}

func counterValue(t *testing.T, c prometheus.Counter) float64 {
	t.Helper()
	var m dto.Metric
	require.NoError(t, c.Write(&m))
	return m.GetCounter().GetValue()
}

type supplierFunc func(ctx context.Context, order domain.OrderRequest) error

func (f supplierFunc) PlaceOrder(ctx context.Context, order domain.OrderRequest) error {
	return f(ctx, order)
}

func TestHTTPSupplierClient(t *testing.T) {
	var got domain.OrderRequest
	status := http.StatusOK
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(status)
	}))
	defer srv.Close()

	c := NewHTTPSupplierClient(srv.URL, time.Second)
	order := domain.OrderRequest{ItemName: "Milk", Quantity: 12, Supplier: "DairyBest"}

	require.NoError(t, c.PlaceOrder(context.Background(), order))
	assert.Equal(t, order, got)

	status = http.StatusCreated
	require.NoError(t, c.PlaceOrder(context.Background(), order))

	status = http.StatusBadGateway
	err := c.PlaceOrder(context.Background(), order)
	assert.ErrorIs(t, err, domain.ErrGateway)
}

func TestHTTPSupplierClient_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	err := NewHTTPSupplierClient(url, time.Second).PlaceOrder(context.Background(), domain.OrderRequest{ItemName: "x", Quantity: 1, Supplier: "y"})

	var gwErr *domain.GatewayError
	require.ErrorAs(t, err, &gwErr)
	assert.Equal(t, supplierService, gwErr.Service)
}

func TestGuardedSupplierClient_FailsFastWhenOpen(t *testing.T) {
	var calls int32
	client := NewGuardedSupplierClient(supplierFunc(func(context.Context, domain.OrderRequest) error {
		atomic.AddInt32(&calls, 1)
		return errors.New("supplier down")
	}), breaker.Settings{MaxFailures: 2, OpenTimeout: time.Minute})

	ctx := context.Background()
	order := domain.OrderRequest{ItemName: "Milk", Quantity: 1, Supplier: "DairyBest"}
	require.Error(t, client.PlaceOrder(ctx, order))
	require.Error(t, client.PlaceOrder(ctx, order))

	err := client.PlaceOrder(ctx, order)
	assert.ErrorIs(t, err, breaker.ErrOpen)
	assert.ErrorIs(t, err, domain.ErrGateway)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestGuardedSupplierClient_CancellationDoesNotTrip(t *testing.T) {
	client := NewGuardedSupplierClient(supplierFunc(func(ctx context.Context, _ domain.OrderRequest) error {
		return ctx.Err()
	}), breaker.Settings{MaxFailures: 1})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, client.PlaceOrder(ctx, domain.OrderRequest{}), context.Canceled)
	assert.NoError(t, client.PlaceOrder(context.Background(), domain.OrderRequest{}))
}

func TestRedisAttemptLedger(t *testing.T) {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		addr = "localhost:6379"
	}
	client := redis.NewClient(&redis.Options{Addr: addr})
	if err := client.Ping(context.Background()).Err(); err != nil {
		t.Skipf("Redis not available: %v", err)
	}
	defer client.Close()

	ctx := context.Background()
	ledger := NewRedisAttemptLedger(client, time.Minute)
	cycle := fmt.Sprintf("test-%d", time.Now().UnixNano())
	defer client.Del(ctx, attemptKey(cycle, 1))

	ok, err := ledger.Acquire(ctx, cycle, 1)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = ledger.Acquire(ctx, cycle, 1)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, ledger.Release(ctx, cycle, 1))
	ok, err = ledger.Acquire(ctx, cycle, 1)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestScheduler_RunsUntilCancelled(t *testing.T) {
	var runs int32
	ctx, cancel := context.WithCancel(context.Background())
	s := NewScheduler(5*time.Millisecond, func(context.Context) ([]domain.OrderResult, error) {
		if atomic.AddInt32(&runs, 1) == 3 {
			cancel()
		}
		return []domain.OrderResult{{Status: domain.OrderPlaced}}, nil
	})

	done := make(chan struct{})
	go func() {
		s.Start(ctx)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("scheduler did not stop")
	}
	assert.GreaterOrEqual(t, atomic.LoadInt32(&runs), int32(3))
}

func TestScheduler_DisabledReturnsImmediately(t *testing.T) {
	called := false
	NewScheduler(0, func(context.Context) ([]domain.OrderResult, error) {
		called = true
		return nil, nil
	}).Start(context.Background())
	assert.False(t, called)
}
