package v1

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

func Test_ToStruct_RejectsInexactNumbers(t *testing.T) {
	testCases := []struct {
		name    string
		product Product
		wantErr bool
	}{
		{name: "ordinary product", product: Product{ID: 1, Name: "Mug", Price: 100}},
		{name: "negative boundary", product: Product{ID: 1, Price: -MaxExactInteger}},
		{name: "id too large", product: Product{ID: MaxExactInteger + 1}, wantErr: true},
		{name: "price too large", product: Product{ID: 1, Price: math.MaxInt64}, wantErr: true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ToStruct(tc.product)
			if tc.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func Test_FromStruct(t *testing.T) {
	valid, err := ToStruct(Product{ID: 3, Name: "Mug", Price: 12000, ImageURL: "https://img/mug.png"})
	require.NoError(t, err)
	noID, err := structpb.NewStruct(map[string]any{FieldName: "Mug"})
	require.NoError(t, err)
	withFields := func(id, price any) *structpb.Struct {
		s, err := structpb.NewStruct(map[string]any{FieldID: id, FieldName: "Mug", FieldPrice: price})
		require.NoError(t, err)
		return s
	}

	testCases := []struct {
		name     string
		input    *structpb.Struct
		expected Product
		wantErr  bool
	}{
		{name: "encoded product", input: valid, expected: Product{ID: 3, Name: "Mug", Price: 12000, ImageURL: "https://img/mug.png"}},
		{name: "nil struct", input: nil, wantErr: true},
		{name: "missing id", input: noID, wantErr: true},
		{name: "largest exact values", input: withFields(float64(MaxExactInteger), float64(MaxExactInteger)), expected: Product{ID: MaxExactInteger, Name: "Mug", Price: MaxExactInteger}},
		{name: "fractional id", input: withFields(3.5, 10), wantErr: true},
		{name: "fractional price", input: withFields(3, 0.01), wantErr: true},
		{name: "id beyond exact range", input: withFields(float64(MaxExactInteger)*4, 10), wantErr: true},
		{name: "price beyond exact range", input: withFields(3, -float64(MaxExactInteger)*2), wantErr: true},
		{name: "id as string", input: withFields("3", 10), wantErr: true},
		{name: "infinite price", input: withFields(3, math.Inf(1)), wantErr: true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			product, err := FromStruct(tc.input)
			if tc.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.expected, product)
		})
	}
}

type MockProductServiceClient struct {
	mock.Mock
}

func (m *MockProductServiceClient) GetProduct(ctx context.Context, in *wrapperspb.Int64Value, _ ...grpc.CallOption) (*structpb.Struct, error) {
	args := m.Called(ctx, in.GetValue())
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*structpb.Struct), args.Error(1)
}

func (m *MockProductServiceClient) ListProducts(ctx context.Context, _ *emptypb.Empty, _ ...grpc.CallOption) (*structpb.ListValue, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*structpb.ListValue), args.Error(1)
}

func (m *MockProductServiceClient) ExistsByName(ctx context.Context, in *wrapperspb.StringValue, _ ...grpc.CallOption) (*wrapperspb.BoolValue, error) {
	args := m.Called(ctx, in.GetValue())
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*wrapperspb.BoolValue), args.Error(1)
}

func Test_Client_GetProduct(t *testing.T) {
	// given
	ctx := context.Background()
	encoded, err := ToStruct(Product{ID: 9, Name: "Candle", Price: 5000})
	require.NoError(t, err)
	pc := new(MockProductServiceClient)
	pc.On("GetProduct", ctx, int64(9)).Return(encoded, nil).Once()
	pc.On("GetProduct", ctx, int64(10)).Return(nil, status.Error(codes.NotFound, "not found")).Once()
	client := NewClient(pc)

	// when
	product, err := client.GetProduct(ctx, 9)
	_, missingErr := client.GetProduct(ctx, 10)

	// then
	require.NoError(t, err)
	assert.Equal(t, &Product{ID: 9, Name: "Candle", Price: 5000}, product)
	assert.Equal(t, codes.NotFound, status.Code(missingErr))
	pc.AssertExpectations(t)
}

func Test_Client_ListProducts(t *testing.T) {
	// given
	ctx := context.Background()
	first, err := ToStruct(Product{ID: 1, Name: "A", Price: 100})
	require.NoError(t, err)
	second, err := ToStruct(Product{ID: 2, Name: "B", Price: 200})
	require.NoError(t, err)
	list := &structpb.ListValue{Values: []*structpb.Value{structpb.NewStructValue(first), structpb.NewStructValue(second)}}
	pc := new(MockProductServiceClient)
	pc.On("ListProducts", ctx).Return(list, nil).Once()

	// when
	products, err := NewClient(pc).ListProducts(ctx)

	// then
	require.NoError(t, err)
	assert.Equal(t, []Product{{ID: 1, Name: "A", Price: 100}, {ID: 2, Name: "B", Price: 200}}, products)
}

func Test_Client_ListProducts_BadElement(t *testing.T) {
	// given
	ctx := context.Background()
	list := &structpb.ListValue{Values: []*structpb.Value{structpb.NewStringValue("oops")}}
	pc := new(MockProductServiceClient)
	pc.On("ListProducts", ctx).Return(list, nil).Once()

	// when
	_, err := NewClient(pc).ListProducts(ctx)

	// then
	assert.Error(t, err)
}

func Test_Client_ExistsByName(t *testing.T) {
	// given
	ctx := context.Background()
	pc := new(MockProductServiceClient)
	pc.On("ExistsByName", ctx, "Mug").Return(wrapperspb.Bool(true), nil).Once()

	// when
	exists, err := NewClient(pc).ExistsByName(ctx, "Mug")

	// then
	require.NoError(t, err)
	assert.True(t, exists)
}
