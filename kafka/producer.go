package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/omeshapasan2/e-commerce-platform/models"

	"github.com/IBM/sarama"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"
)

// Producer publishes order lifecycle events for downstream consumers
// (notifications, analytics). Publishing is best effort: callers log and
// continue on error rather than failing the request.
type Producer struct {
	producer sarama.SyncProducer
	topic    string
	logger   *zap.Logger
}

func InitProducer(logger *zap.Logger) (*Producer, error) {
	config := sarama.NewConfig()
	config.Producer.Return.Successes = true
	config.Producer.RequiredAcks = sarama.WaitForAll
	config.Producer.Retry.Max = 5

	brokers := []string{getEnv("KAFKA_BROKER", "localhost:9092")}
	topic := getEnv("KAFKA_TOPIC", "order_events")

	producer, err := sarama.NewSyncProducer(brokers, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create Kafka producer: %w", err)
	}

	logger.Info("Kafka producer initialized", zap.String("topic", topic))
	return &Producer{producer: producer, topic: topic, logger: logger}, nil
}

func (p *Producer) Close() error {
	return p.producer.Close()
}

func (p *Producer) PublishOrderEvent(ctx context.Context, event models.OrderEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	msg := &sarama.ProducerMessage{
		Topic: p.topic,
		Key:   sarama.StringEncoder(event.OrderID),
		Value: sarama.ByteEncoder(payload),
	}

	// Propagate the trace context so consumers join the request trace.
	carrier := make(headerCarrier, 0, 2)
	otel.GetTextMapPropagator().Inject(ctx, &carrier)
	msg.Headers = []sarama.RecordHeader(carrier)

	partition, offset, err := p.producer.SendMessage(msg)
	if err != nil {
		return fmt.Errorf("failed to send message: %w", err)
	}

	p.logger.Info("Order event published",
		zap.String("event_type", event.EventType),
		zap.String("order_id", event.OrderID),
		zap.Int32("partition", partition),
		zap.Int64("offset", offset),
	)
	return nil
}

// headerCarrier implements propagation.TextMapCarrier over Kafka headers.
type headerCarrier []sarama.RecordHeader

func (c headerCarrier) Get(key string) string {
	for _, h := range c {
		if string(h.Key) == key {
			return string(h.Value)
		}
	}
	return ""
}

func (c *headerCarrier) Set(key, value string) {
	*c = append(*c, sarama.RecordHeader{Key: []byte(key), Value: []byte(value)})
}

func (c headerCarrier) Keys() []string {
	keys := make([]string, len(c))
	for i, h := range c {
		keys[i] = string(h.Key)
	}
	return keys
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
