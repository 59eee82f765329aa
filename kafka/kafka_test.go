package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/IBM/sarama"
	"github.com/IBM/sarama/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"github.com/tair/smart-inventory/internal/inventory/domain"
	"github.com/tair/smart-inventory/internal/inventory/repository/memory"
	"github.com/tair/smart-inventory/internal/inventory/usecase/command"
)

func headerValue(msg *sarama.ProducerMessage, key string) string {
	for _, h := range msg.Headers {
		if string(h.Key) == key {
			return string(h.Value)
		}
	}
	return ""
}

func TestPublishSaleRecorded_SendsEventWithTraceHeaders(t *testing.T) {
	tp := sdktrace.NewTracerProvider()
	defer tp.Shutdown(context.Background())
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.TraceContext{})

	producer := mocks.NewSyncProducer(t, nil)
	var sent *sarama.ProducerMessage
	producer.ExpectSendMessageWithMessageCheckerFunctionAndSucceed(func(msg *sarama.ProducerMessage) error {
		sent = msg
		return nil
	})

	pub := NewPublisherWithProducer(producer)
	soldAt := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	err := pub.PublishSaleRecorded(context.Background(), command.SaleRecorded{
		SaleID: 7, ItemID: 3, ItemName: "Milk", QuantitySold: 2, Remaining: 1, ReorderEligible: true, SoldAt: soldAt,
	})
	require.NoError(t, err)
	require.NoError(t, pub.Close())

	require.NotNil(t, sent)
	assert.Equal(t, TopicSaleRecorded, sent.Topic)
	assert.Equal(t, EventTypeSaleRecorded, headerValue(sent, "event_type"))
	assert.NotEmpty(t, headerValue(sent, "event_id"))
	assert.NotEmpty(t, headerValue(sent, "traceparent"))

	key, err := sent.Key.Encode()
	require.NoError(t, err)
	assert.Equal(t, "item_3", string(key))

	raw, err := sent.Value.Encode()
	require.NoError(t, err)
	var event SaleRecordedEvent
	require.NoError(t, json.Unmarshal(raw, &event))
	assert.Equal(t, uint(3), event.ItemID)
	assert.Equal(t, 2, event.QuantitySold)
	assert.True(t, event.ReorderEligible)
	assert.True(t, soldAt.Equal(event.SoldAt))
	assert.Equal(t, headerValue(sent, "event_id"), event.EventID)
}

func TestPublishReorderPlaced_PropagatesSendFailure(t *testing.T) {
	producer := mocks.NewSyncProducer(t, nil)
	producer.ExpectSendMessageAndFail(sarama.ErrOutOfBrokers)

	pub := NewPublisherWithProducer(producer)
	err := pub.PublishReorderPlaced(context.Background(), "20250301T100000Z", domain.OrderResult{
		ItemID: 1, ItemName: "Laptop", Supplier: "TechWorld", Quantity: 3, Status: domain.OrderPlaced,
	})

	assert.ErrorIs(t, err, sarama.ErrOutOfBrokers)
	require.NoError(t, pub.Close())
}

func newTestConsumer() (*Consumer, *consumerGroupHandler) {
	c := &Consumer{handlers: make(map[string]EventHandler)}
	return c, &consumerGroupHandler{consumer: c}
}

func message(eventType string, payload interface{}) *sarama.ConsumerMessage {
	raw, _ := json.Marshal(payload)
	msg := &sarama.ConsumerMessage{Topic: TopicSaleRecorded, Value: raw}
	if eventType != "" {
		msg.Headers = []*sarama.RecordHeader{
			{Key: []byte("event_type"), Value: []byte(eventType)},
			{Key: []byte("event_id"), Value: []byte("evt_test")},
		}
	}
	return msg
}

func TestConsumer_RoutesByEventType(t *testing.T) {
	c, h := newTestConsumer()
	var got []SaleRecordedEvent
	c.RegisterHandler(EventTypeSaleRecorded, SaleRecordedHandler(func(_ context.Context, e SaleRecordedEvent) error {
		got = append(got, e)
		return nil
	}))

	ctx := context.Background()
	assert.True(t, h.handleMessage(ctx, message(EventTypeSaleRecorded, SaleRecordedEvent{ItemID: 4})))
	assert.False(t, h.handleMessage(ctx, message("", SaleRecordedEvent{ItemID: 5})))
	assert.False(t, h.handleMessage(ctx, message(EventTypeReorderPlaced, ReorderPlacedEvent{ItemID: 6})))

	require.Len(t, got, 1)
	assert.Equal(t, uint(4), got[0].ItemID)
}

func TestConsumer_HandlerErrorsAreContained(t *testing.T) {
	c, h := newTestConsumer()
	c.RegisterHandler(EventTypeSaleRecorded, func(context.Context, []byte) error {
		return errors.New("boom")
	})

	assert.False(t, h.handleMessage(context.Background(), message(EventTypeSaleRecorded, SaleRecordedEvent{})))

	bad := &sarama.ConsumerMessage{
		Value:   []byte("{not json"),
		Headers: []*sarama.RecordHeader{{Key: []byte("event_type"), Value: []byte(EventTypeSaleRecorded)}},
	}
	c.RegisterHandler(EventTypeSaleRecorded, SaleRecordedHandler(func(context.Context, SaleRecordedEvent) error { return nil }))
	assert.False(t, h.handleMessage(context.Background(), bad))
}

type recordingDispatcher struct {
	items []domain.Item
}

func (d *recordingDispatcher) Dispatch(_ context.Context, items []domain.Item) []domain.OrderResult {
	d.items = append(d.items, items...)
	out := make([]domain.OrderResult, len(items))
	for i, it := range items {
		out[i] = domain.OrderResult{ItemID: it.ID, ItemName: it.Name, Status: domain.OrderPlaced}
	}
	return out
}

func TestReorderOnSale_DispatchesOnlyEligibleSales(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	milk := &domain.Item{
		Name:             "Milk",
		Quantity:         1,
		Supplier:         domain.StringPtr("DairyBest"),
		RestockThreshold: domain.IntPtr(5),
		OrderQuantity:    domain.IntPtr(12),
	}
	require.NoError(t, store.Items().Create(ctx, milk))

	dispatcher := &recordingDispatcher{}
	handler := ReorderOnSale(command.NewDispatchReordersHandler(store.Items(), dispatcher))

	payload, _ := json.Marshal(SaleRecordedEvent{ItemID: milk.ID, ReorderEligible: false})
	require.NoError(t, handler(ctx, payload))
	assert.Empty(t, dispatcher.items)

	payload, _ = json.Marshal(SaleRecordedEvent{ItemID: milk.ID, ReorderEligible: true})
	require.NoError(t, handler(ctx, payload))
	require.Len(t, dispatcher.items, 1)
	assert.Equal(t, "Milk", dispatcher.items[0].Name)

	payload, _ = json.Marshal(SaleRecordedEvent{ItemID: 999, ReorderEligible: true})
	assert.ErrorIs(t, handler(ctx, payload), domain.ErrNotFound)
}
