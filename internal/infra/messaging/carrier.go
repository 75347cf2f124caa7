package messaging

import (
	"context"

	"github.com/segmentio/kafka-go"
	"go.opentelemetry.io/otel"
)

const headerEventType = "event-type"

// kafkaヘッダ列をそのまま TextMapCarrier として使う
type headerCarrier struct {
	headers *[]kafka.Header
}

func (c headerCarrier) Get(key string) string {
	return headerValue(*c.headers, key)
}

func (c headerCarrier) Set(key, value string) {
	hs := *c.headers
	for i := range hs {
		if hs[i].Key == key {
			hs[i].Value = []byte(value)
			return
		}
	}
	*c.headers = append(hs, kafka.Header{Key: key, Value: []byte(value)})
}

func (c headerCarrier) Keys() []string {
	keys := make([]string, 0, len(*c.headers))
	for _, h := range *c.headers {
		keys = append(keys, h.Key)
	}
	return keys
}

func headerValue(hs []kafka.Header, key string) string {
	for _, h := range hs {
		if h.Key == key {
			return string(h.Value)
		}
	}
	return ""
}

// EventType はメッセージの event-type ヘッダを返す。
func EventType(msg kafka.Message) string {
	return headerValue(msg.Headers, headerEventType)
}

// ExtractTraceContext は受信側で送信元のspanにつなぐためのcontextを作る。
func ExtractTraceContext(ctx context.Context, msg kafka.Message) context.Context {
	hs := msg.Headers
	return otel.GetTextMapPropagator().Extract(ctx, headerCarrier{headers: &hs})
}
