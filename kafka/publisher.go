package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/IBM/sarama"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"

	"github.com/tair/smart-inventory/internal/inventory/domain"
	"github.com/tair/smart-inventory/internal/inventory/usecase/command"
	"github.com/tair/smart-inventory/pkg/logger"
)

// Publisher wraps Kafka producer
type Publisher struct {
	producer sarama.SyncProducer
	now      func() time.Time
}

// NewPublisher creates a new Kafka publisher
func NewPublisher(brokers []string) (*Publisher, error) {
	config := sarama.NewConfig()
	config.Producer.Return.Successes = true
	config.Producer.Retry.Max = 3
	config.Producer.RequiredAcks = sarama.WaitForAll
	config.Producer.Compression = sarama.CompressionSnappy
	config.Producer.MaxMessageBytes = 1000000

	producer, err := sarama.NewSyncProducer(brokers, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create Kafka producer: %w", err)
	}

	logger.Logger.Info().
		Strs("brokers", brokers).
		Msg("Kafka publisher initialized")

	return NewPublisherWithProducer(producer), nil
}

// NewPublisherWithProducer wraps an existing producer
func NewPublisherWithProducer(producer sarama.SyncProducer) *Publisher {
	return &Publisher{producer: producer, now: time.Now}
}

// PublishSaleRecorded publishes a sale recorded event with tracing
func (p *Publisher) PublishSaleRecorded(ctx context.Context, sale command.SaleRecorded) error {
	event := SaleRecordedEvent{
		EventID:         newEventID(),
		EventType:       EventTypeSaleRecorded,
		SaleID:          sale.SaleID,
		ItemID:          sale.ItemID,
		ItemName:        sale.ItemName,
		QuantitySold:    sale.QuantitySold,
		Remaining:       sale.Remaining,
		ReorderEligible: sale.ReorderEligible,
		SoldAt:          sale.SoldAt,
		Timestamp:       p.now(),
	}

	return p.publish(ctx, outgoing{
		topic:     TopicSaleRecorded,
		eventType: EventTypeSaleRecorded,
		eventID:   event.EventID,
		key:       fmt.Sprintf("item_%d", event.ItemID),
		payload:   event,
		attrs: []attribute.KeyValue{
			attribute.Int64("item.id", int64(event.ItemID)),
			attribute.Int("sale.quantity", event.QuantitySold),
			attribute.Bool("item.reorder_eligible", event.ReorderEligible),
		},
	})
}

// PublishReorderPlaced publishes a reorder placed event with tracing
func (p *Publisher) PublishReorderPlaced(ctx context.Context, cycle string, result domain.OrderResult) error {
	event := ReorderPlacedEvent{
		EventID:   newEventID(),
		EventType: EventTypeReorderPlaced,
		Cycle:     cycle,
		ItemID:    result.ItemID,
		ItemName:  result.ItemName,
		Supplier:  result.Supplier,
		Quantity:  result.Quantity,
		Timestamp: p.now(),
	}

	return p.publish(ctx, outgoing{
		topic:     TopicReorderPlaced,
		eventType: EventTypeReorderPlaced,
		eventID:   event.EventID,
		key:       fmt.Sprintf("item_%d", event.ItemID),
		payload:   event,
		attrs: []attribute.KeyValue{
			attribute.Int64("item.id", int64(event.ItemID)),
			attribute.String("reorder.supplier", event.Supplier),
			attribute.String("reorder.cycle", cycle),
		},
	})
}

type outgoing struct {
	topic     string
	eventType string
	eventID   string
	key       string
	payload   interface{}
	attrs     []attribute.KeyValue
}

func (p *Publisher) publish(ctx context.Context, out outgoing) error {
	tracer := otel.Tracer("kafka-publisher")
	ctx, span := tracer.Start(ctx, "kafka.publish."+out.eventType,
		trace.WithSpanKind(trace.SpanKindProducer),
		trace.WithAttributes(
			attribute.String("messaging.system", "kafka"),
			attribute.String("messaging.destination", out.topic),
			attribute.String("messaging.destination_kind", "topic"),
			attribute.String("event.type", out.eventType),
			attribute.String("event.id", out.eventID),
		),
		trace.WithAttributes(out.attrs...),
	)
	defer span.End()

	eventBytes, err := json.Marshal(out.payload)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to marshal event")
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	// Inject trace context into Kafka headers
	carrier := propagation.MapCarrier{}
	otel.GetTextMapPropagator().Inject(ctx, carrier)

	headers := []sarama.RecordHeader{
		{Key: []byte("event_type"), Value: []byte(out.eventType)},
		{Key: []byte("event_id"), Value: []byte(out.eventID)},
	}
	for key, value := range carrier {
		headers = append(headers, sarama.RecordHeader{Key: []byte(key), Value: []byte(value)})
	}

	msg := &sarama.ProducerMessage{
		Topic:   out.topic,
		Key:     sarama.StringEncoder(out.key),
		Value:   sarama.ByteEncoder(eventBytes),
		Headers: headers,
	}

	partition, offset, err := p.producer.SendMessage(msg)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to send message")
		logger.Error(ctx).
			Err(err).
			Str("topic", out.topic).
			Str("event_id", out.eventID).
			Msg("Failed to publish event")
		return fmt.Errorf("failed to send message to Kafka: %w", err)
	}

	span.SetAttributes(
		attribute.Int("messaging.kafka.partition", int(partition)),
		attribute.Int64("messaging.kafka.offset", offset),
	)
	span.SetStatus(codes.Ok, "Event published successfully")

	logger.Info(ctx).
		Str("event_id", out.eventID).
		Str("event_type", out.eventType).
		Str("topic", out.topic).
		Int32("partition", partition).
		Int64("offset", offset).
		Msg("Event published")

	return nil
}

// Close closes the Kafka producer
func (p *Publisher) Close() error {
	if p.producer != nil {
		return p.producer.Close()
	}
	return nil
}

func newEventID() string {
	return "evt_" + uuid.NewString()
}
