package v1

import (
	"context"
	"fmt"
	"math"

	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// Field names of a product encoded as google.protobuf.Struct.
const (
	FieldID       = "id"
	FieldName     = "name"
	FieldPrice    = "price"
	FieldImageURL = "imageUrl"
)

// MaxExactInteger is the largest ID or price magnitude that survives the trip through a protobuf double.
const MaxExactInteger = 1 << 53

// Product is the wire view of a catalog product.
// Numbers travel as protobuf double values; ToStruct and FromStruct reject values above MaxExactInteger.
type Product struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	Price    int64  `json:"price"`
	ImageURL string `json:"imageUrl"`
}

// ToStruct encodes p as a google.protobuf.Struct.
func ToStruct(p Product) (*structpb.Struct, error) {
	if !exact(p.ID) {
		return nil, fmt.Errorf("product %s %d cannot be encoded exactly", FieldID, p.ID)
	}
	if !exact(p.Price) {
		return nil, fmt.Errorf("product %s %d cannot be encoded exactly", FieldPrice, p.Price)
	}
	return structpb.NewStruct(map[string]any{
		FieldID:       p.ID,
		FieldName:     p.Name,
		FieldPrice:    p.Price,
		FieldImageURL: p.ImageURL,
	})
}

// FromStruct decodes a product encoded by ToStruct.
func FromStruct(s *structpb.Struct) (Product, error) {
	if s == nil {
		return Product{}, fmt.Errorf("product struct is nil")
	}
	fields := s.GetFields()
	if _, ok := fields[FieldID]; !ok {
		return Product{}, fmt.Errorf("product struct has no %q field", FieldID)
	}
	id, err := integer(fields, FieldID)
	if err != nil {
		return Product{}, err
	}
	price, err := integer(fields, FieldPrice)
	if err != nil {
		return Product{}, err
	}
	return Product{
		ID:       id,
		Name:     fields[FieldName].GetStringValue(),
		Price:    price,
		ImageURL: fields[FieldImageURL].GetStringValue(),
	}, nil
}

// integer decodes a whole number field. An absent field decodes as zero.
func integer(fields map[string]*structpb.Value, key string) (int64, error) {
	v, ok := fields[key]
	if !ok {
		return 0, nil
	}
	n, ok := v.GetKind().(*structpb.Value_NumberValue)
	if !ok {
		return 0, fmt.Errorf("product field %q is not a number", key)
	}
	f := n.NumberValue
	if math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
		return 0, fmt.Errorf("product field %q is not an integer: %v", key, f)
	}
	if math.Abs(f) > MaxExactInteger {
		return 0, fmt.Errorf("product field %q is out of range: %v", key, f)
	}
	return int64(f), nil
}

func exact(n int64) bool {
	return n >= -MaxExactInteger && n <= MaxExactInteger
}

// Client is a typed wrapper around ProductServiceClient.
type Client struct {
	pc ProductServiceClient
}

// NewClient creates a Client on top of an established connection.
func NewClient(pc ProductServiceClient) *Client {
	return &Client{pc: pc}
}

// GetProduct fetches one product by ID.
func (c *Client) GetProduct(ctx context.Context, id int64) (*Product, error) {
	resp, err := c.pc.GetProduct(ctx, wrapperspb.Int64(id))
	if err != nil {
		return nil, err
	}
	p, err := FromStruct(resp)
	if err != nil {
		return nil, fmt.Errorf("failed to decode product: %w", err)
	}
	return &p, nil
}

// ListProducts fetches every product.
func (c *Client) ListProducts(ctx context.Context) ([]Product, error) {
	resp, err := c.pc.ListProducts(ctx, &emptypb.Empty{})
	if err != nil {
		return nil, err
	}
	products := make([]Product, 0, len(resp.GetValues()))
	for _, v := range resp.GetValues() {
		p, err := FromStruct(v.GetStructValue())
		if err != nil {
			return nil, fmt.Errorf("failed to decode product: %w", err)
		}
		products = append(products, p)
	}
	return products, nil
}

// ExistsByName reports whether a product with exactly this name exists.
func (c *Client) ExistsByName(ctx context.Context, name string) (bool, error) {
	resp, err := c.pc.ExistsByName(ctx, wrapperspb.String(name))
	if err != nil {
		return false, err
	}
	return resp.GetValue(), nil
}
