package messaging

import (
	"context"
)

const (
	ProductsStream = "PRODUCTS"

	ProductsCreatedSubject = "products.created"
	ProductsUpdatedSubject = "products.updated"
	ProductsDeletedSubject = "products.deleted"
	ProductsClearedSubject = "products.cleared"
)

// ProductsSubjects is the subject filter of the products stream.
var ProductsSubjects = []string{"products.>"}

type Event interface {
	Subject() string
	Payload() ([]byte, error)
}

type Publisher interface {
	Publish(ctx context.Context, event Event) error
}

// NopPublisher discards every event. Used when NATS is disabled.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, Event) error {
	return nil
}
