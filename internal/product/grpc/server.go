// Package grpc exposes the read side of the product catalog over gRPC.
package grpc

import (
	"context"
	"errors"
	"log/slog"

	perrors "github.com/abgdnv/giftcatalog/internal/product/errors"
	"github.com/abgdnv/giftcatalog/internal/product/service"
	productv1 "github.com/abgdnv/giftcatalog/pkg/api/product/v1"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// ProductService is the part of the product service used by the gRPC server.
type ProductService interface {
	FindByID(ctx context.Context, id int64) (*service.ProductDto, error)
	FindAll(ctx context.Context) ([]service.ProductDto, error)
	ExistsByName(ctx context.Context, name string) (bool, error)
}

type Server struct {
	productv1.UnimplementedProductServiceServer
	service ProductService
	logger  *slog.Logger
}

func NewServer(service ProductService, logger *slog.Logger) *Server {
	return &Server{service: service, logger: logger.With("component", "grpc")}
}

func (s *Server) GetProduct(ctx context.Context, req *wrapperspb.Int64Value) (*structpb.Struct, error) {
	id := req.GetValue()
	if id <= 0 {
		return nil, status.Errorf(codes.InvalidArgument, "invalid product ID: %d", id)
	}
	product, err := s.service.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, perrors.ErrProductNotFound) {
			return nil, status.Errorf(codes.NotFound, "product with id %d not found", id)
		}
		s.logger.ErrorContext(ctx, "service.FindByID failed", "product_id", id, "error", err)
		return nil, status.Error(codes.Internal, "internal server error")
	}
	return encode(product)
}

func (s *Server) ListProducts(ctx context.Context, _ *emptypb.Empty) (*structpb.ListValue, error) {
	products, err := s.service.FindAll(ctx)
	if err != nil {
		s.logger.ErrorContext(ctx, "service.FindAll failed", "error", err)
		return nil, status.Error(codes.Internal, "internal server error")
	}
	list := &structpb.ListValue{Values: make([]*structpb.Value, 0, len(products))}
	for i := range products {
		item, err := encode(&products[i])
		if err != nil {
			return nil, err
		}
		list.Values = append(list.Values, structpb.NewStructValue(item))
	}
	return list, nil
}

func (s *Server) ExistsByName(ctx context.Context, req *wrapperspb.StringValue) (*wrapperspb.BoolValue, error) {
	exists, err := s.service.ExistsByName(ctx, req.GetValue())
	if err != nil {
		s.logger.ErrorContext(ctx, "service.ExistsByName failed", "error", err)
		return nil, status.Error(codes.Internal, "internal server error")
	}
	return wrapperspb.Bool(exists), nil
}

func encode(p *service.ProductDto) (*structpb.Struct, error) {
	out, err := productv1.ToStruct(productv1.Product{ID: p.ID, Name: p.Name, Price: p.Price, ImageURL: p.ImageURL})
	if err != nil {
		return nil, status.Errorf(codes.Internal, "failed to encode product: %v", err)
	}
	return out, nil
}
