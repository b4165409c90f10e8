package notifier

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"

	"github.com/m04kA/SMC-DetailingBooking/internal/domain"
)

// DefaultPublishTimeout дедлайн на отправку одного события
const DefaultPublishTimeout = 3 * time.Second

// KafkaPublisher публикует события записей в топик Kafka.
// Ключ сообщения - ID записи, поэтому события одной записи попадают в одну партицию.
type KafkaPublisher struct {
	writer  MessageWriter
	timeout time.Duration
	log     Logger
}

// NewKafkaPublisher создает publisher поверх kafka.Writer
func NewKafkaPublisher(brokers, topic string, log Logger) *KafkaPublisher {
	writer := &kafka.Writer{
		Addr:                   kafka.TCP(SplitBrokers(brokers)...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireOne,
		AllowAutoTopicCreation: true,
	}
	return NewPublisherWithWriter(writer, DefaultPublishTimeout, log)
}

// NewPublisherWithWriter создает publisher с произвольным writer
func NewPublisherWithWriter(writer MessageWriter, timeout time.Duration, log Logger) *KafkaPublisher {
	if timeout <= 0 {
		timeout = DefaultPublishTimeout
	}
	return &KafkaPublisher{writer: writer, timeout: timeout, log: log}
}

// Publish отправляет событие. Контекст запроса используется только для trace-заголовков,
// отмена запроса не прерывает отправку.
func (p *KafkaPublisher) Publish(ctx context.Context, event domain.AppointmentEvent) error {
	eventID := uuid.NewString()

	value, err := json.Marshal(newPayload(eventID, event))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrEncode, err)
	}

	headers := []kafka.Header{
		{Key: "event_id", Value: []byte(eventID)},
		{Key: "event_type", Value: []byte(event.Type)},
	}
	headers = injectTraceHeaders(ctx, headers)

	sendCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), p.timeout)
	defer cancel()

	err = p.writer.WriteMessages(sendCtx, kafka.Message{
		Key:     []byte(event.Appointment.ID),
		Value:   value,
		Headers: headers,
		Time:    event.OccurredAt,
	})
	if err != nil {
		return fmt.Errorf("%w: %s for %s: %v", ErrPublish, event.Type, event.Appointment.ID, err)
	}

	p.log.Info("Publish: %s for appointment id=%s", event.Type, event.Appointment.ID)
	return nil
}

// Close закрывает writer
func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}

// NoopPublisher используется, когда события выключены
type NoopPublisher struct{}

// Publish ничего не делает
func (NoopPublisher) Publish(context.Context, domain.AppointmentEvent) error { return nil }

// Close ничего не делает
func (NoopPublisher) Close() error { return nil }

// SplitBrokers разбирает список брокеров через запятую
func SplitBrokers(raw string) []string {
	var brokers []string
	for _, b := range strings.Split(raw, ",") {
		if b = strings.TrimSpace(b); b != "" {
			brokers = append(brokers, b)
		}
	}
	return brokers
}

func injectTraceHeaders(ctx context.Context, headers []kafka.Header) []kafka.Header {
	carrier := &headerCarrier{headers: headers}
	otel.GetTextMapPropagator().Inject(ctx, carrier)
	return carrier.headers
}

// headerCarrier адаптер заголовков Kafka к propagation.TextMapCarrier
type headerCarrier struct {
	headers []kafka.Header
}

func (c *headerCarrier) Get(key string) string {
	for _, h := range c.headers {
		if h.Key == key {
			return string(h.Value)
		}
	}
	return ""
}

func (c *headerCarrier) Set(key, value string) {
	for i := range c.headers {
		if c.headers[i].Key == key {
			c.headers[i].Value = []byte(value)
			return
		}
	}
	c.headers = append(c.headers, kafka.Header{Key: key, Value: []byte(value)})
}

func (c *headerCarrier) Keys() []string {
	keys := make([]string, 0, len(c.headers))
	for _, h := range c.headers {
		keys = append(keys, h.Key)
	}
	return keys
}

var _ propagation.TextMapCarrier = (*headerCarrier)(nil)
