package events

import (
	"encoding/json"
	"time"

	"github.com/abgdnv/giftcatalog/pkg/messaging"
)

// ProductCreatedEvent is published after a product has been created.
type ProductCreatedEvent struct {
	ProductID  int64     `json:"product_id"`
	Name       string    `json:"name"`
	OccurredAt time.Time `json:"occurred_at"`
}

func (e ProductCreatedEvent) Subject() string {
	return messaging.ProductsCreatedSubject
}

func (e ProductCreatedEvent) Payload() ([]byte, error) {
	return json.Marshal(e)
}

// ProductUpdatedEvent is published after a product has been updated.
type ProductUpdatedEvent struct {
	ProductID  int64     `json:"product_id"`
	Name       string    `json:"name"`
	OccurredAt time.Time `json:"occurred_at"`
}

func (e ProductUpdatedEvent) Subject() string {
	return messaging.ProductsUpdatedSubject
}

func (e ProductUpdatedEvent) Payload() ([]byte, error) {
	return json.Marshal(e)
}

// ProductsDeletedEvent is published after one or more products have been deleted.
// IDs lists only the products that existed and were removed.
type ProductsDeletedEvent struct {
	IDs        []int64   `json:"ids"`
	OccurredAt time.Time `json:"occurred_at"`
}

func (e ProductsDeletedEvent) Subject() string {
	return messaging.ProductsDeletedSubject
}

func (e ProductsDeletedEvent) Payload() ([]byte, error) {
	return json.Marshal(e)
}

// ProductsClearedEvent is published after all products have been deleted.
type ProductsClearedEvent struct {
	OccurredAt time.Time `json:"occurred_at"`
}

func (e ProductsClearedEvent) Subject() string {
	return messaging.ProductsClearedSubject
}

func (e ProductsClearedEvent) Payload() ([]byte, error) {
	return json.Marshal(e)
}
