package interceptors

import (
	"context"
	"net"
	"os"
	"testing"
	"time"

	productv1 "github.com/abgdnv/giftcatalog/pkg/api/product/v1"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// slowProductService answers after a fixed delay.
type slowProductService struct {
	productv1.UnimplementedProductServiceServer
	delay time.Duration
}

func (s *slowProductService) GetProduct(ctx context.Context, req *wrapperspb.Int64Value) (*structpb.Struct, error) {
	select {
	case <-time.After(s.delay):
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	return productv1.ToStruct(productv1.Product{ID: req.GetValue()})
}

// skipIntegrationTests can be set to skip tests that open real network listeners.
const skipIntegrationTests = "PKG_SKIP_INTEGRATION_TESTS"

func Test_GRPCClient_TimeoutInterceptor(t *testing.T) {
	if os.Getenv(skipIntegrationTests) == "1" {
		t.Skip("Skipping integration tests based on " + skipIntegrationTests + " env var")
	}
	// given
	const serviceDelay = 200 * time.Millisecond
	const clientTimeout = 50 * time.Millisecond

	lis, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	grpcServer := grpc.NewServer()
	productv1.RegisterProductServiceServer(grpcServer, &slowProductService{delay: serviceDelay})

	go func() {
		_ = grpcServer.Serve(lis)
	}()
	t.Cleanup(grpcServer.Stop)

	grpcClient, err := grpc.NewClient(
		lis.Addr().String(),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithUnaryInterceptor(UnaryClientTimeoutInterceptor(clientTimeout)),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = grpcClient.Close() })

	productClient := productv1.NewProductServiceClient(grpcClient)

	// when
	_, err = productClient.GetProduct(context.Background(), wrapperspb.Int64(1))

	// then
	require.Error(t, err)
	st, ok := status.FromError(err)
	require.True(t, ok, "Error should be a gRPC status error")
	require.Equal(t, codes.DeadlineExceeded, st.Code())
}
