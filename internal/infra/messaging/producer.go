package messaging

import (
	"context"
	"encoding/json"
	"time"

	"wheats/internal/domain/model"

	"github.com/segmentio/kafka-go"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"
)

var producerTracer = otel.Tracer("wheats/messaging/producer")

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Producer は注文イベントを1トピックへ送る。
type Producer struct {
	writer messageWriter
	topic  string
}

func NewProducer(brokers []string, topic string) *Producer {
	return &Producer{
		topic: topic,
		writer: &kafka.Writer{
			Addr:                   kafka.TCP(brokers...),
			Topic:                  topic,
			Balancer:               &kafka.Hash{},
			RequiredAcks:           kafka.RequireOne,
			AllowAutoTopicCreation: true,
			BatchTimeout:           100 * time.Millisecond,
		},
	}
}

// 注文番号をキーにするので同じ注文のイベントは同じパーティションに乗る
func (p *Producer) PublishOrderPaid(ctx context.Context, ev model.OrderPaidEvent) error {
	ctx, span := producerTracer.Start(ctx, "send "+p.topic,
		trace.WithSpanKind(trace.SpanKindProducer),
		trace.WithAttributes(
			semconv.MessagingSystemKafka,
			semconv.MessagingOperationName("send"),
			semconv.MessagingOperationTypePublish,
			semconv.MessagingDestinationName(p.topic),
			semconv.MessagingKafkaMessageKey(ev.OrderNumber),
			attribute.String("event.type", model.EventTypeOrderPaid),
			attribute.Int64("order_id", ev.OrderID),
		),
	)
	defer span.End()

	msg, err := p.orderPaidMessage(ctx, ev)
	if err == nil {
		err = p.writer.WriteMessages(ctx, msg)
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}
	return nil
}

func (p *Producer) orderPaidMessage(ctx context.Context, ev model.OrderPaidEvent) (kafka.Message, error) {
	data, err := json.Marshal(ev)
	if err != nil {
		return kafka.Message{}, err
	}

	headers := []kafka.Header{{Key: headerEventType, Value: []byte(model.EventTypeOrderPaid)}}
	otel.GetTextMapPropagator().Inject(ctx, headerCarrier{headers: &headers})

	return kafka.Message{
		Key:     []byte(ev.OrderNumber),
		Value:   data,
		Headers: headers,
		Time:    ev.PaidAt,
	}, nil
}

func (p *Producer) Close() error {
	return p.writer.Close()
}
