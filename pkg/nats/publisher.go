package nats

import (
	"context"
	"fmt"
	"net/http"

	"github.com/abgdnv/giftcatalog/pkg/messaging"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
)

const (
	headerContentType = "Content-Type"
	headerRequestID   = "X-Request-Id"
)

var _ messaging.Publisher = (*NatsPublisher)(nil)

// NatsPublisher publishes each event as one JSON message carrying a unique Nats-Msg-Id,
// the request ID and the W3C trace context of ctx.
type NatsPublisher struct {
	js         jetstream.JetStream
	propagator propagation.TextMapPropagator
}

func NewNatsPublisher(js jetstream.JetStream) *NatsPublisher {
	return &NatsPublisher{js: js, propagator: otel.GetTextMapPropagator()}
}

func (p *NatsPublisher) Publish(ctx context.Context, event messaging.Event) error {
	data, err := event.Payload()
	if err != nil {
		return fmt.Errorf("failed to get event payload: %w", err)
	}
	msg := nats.NewMsg(event.Subject())
	msg.Data = data
	msg.Header.Set(headerContentType, "application/json")
	if reqID := middleware.GetReqID(ctx); reqID != "" {
		msg.Header.Set(headerRequestID, reqID)
	}
	p.propagator.Inject(ctx, propagation.HeaderCarrier(http.Header(msg.Header)))

	if _, err := p.js.PublishMsg(ctx, msg, jetstream.WithMsgID(uuid.NewString())); err != nil {
		return fmt.Errorf("failed to publish to %s: %w", event.Subject(), err)
	}
	return nil
}
