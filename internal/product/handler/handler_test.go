package handler

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	producterrors "github.com/abgdnv/giftcatalog/internal/product/errors"
	"github.com/abgdnv/giftcatalog/internal/product/messages"
	"github.com/abgdnv/giftcatalog/internal/product/service"
	"github.com/abgdnv/giftcatalog/pkg/web"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockProductService struct {
	mock.Mock
}

func (m *MockProductService) Create(ctx context.Context, product service.ProductCreateDto) (*service.ProductDto, error) {
	args := m.Called(ctx, product)
	return dtoArg(args)
}

func (m *MockProductService) FindAll(ctx context.Context) ([]service.ProductDto, error) {
	args := m.Called(ctx)
	var list []service.ProductDto
	if args.Get(0) != nil {
		list = args.Get(0).([]service.ProductDto)
	}
	return list, args.Error(1)
}

func (m *MockProductService) FindByID(ctx context.Context, id int64) (*service.ProductDto, error) {
	args := m.Called(ctx, id)
	return dtoArg(args)
}

func (m *MockProductService) Update(ctx context.Context, id int64, product service.ProductUpdateDto) (*service.ProductDto, error) {
	args := m.Called(ctx, id, product)
	return dtoArg(args)
}

func (m *MockProductService) DeleteAll(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func (m *MockProductService) DeleteByID(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockProductService) DeleteByIDs(ctx context.Context, ids []int64) (int64, error) {
	args := m.Called(ctx, ids)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockProductService) ExistsByName(ctx context.Context, name string) (bool, error) {
	args := m.Called(ctx, name)
	return args.Bool(0), args.Error(1)
}

func (m *MockProductService) ExistsSameName(ctx context.Context, excludeID int64, name string) (bool, error) {
	args := m.Called(ctx, excludeID, name)
	return args.Bool(0), args.Error(1)
}

func (m *MockProductService) Ping(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func dtoArg(args mock.Arguments) (*service.ProductDto, error) {
	var dto *service.ProductDto
	if args.Get(0) != nil {
		dto = args.Get(0).(*service.ProductDto)
	}
	return dto, args.Error(1)
}

// newTestRouter wires the handler on a chi router the same way the application does.
func newTestRouter(t *testing.T, svc service.ProductService, protect func(http.Handler) http.Handler) http.Handler {
	t.Helper()
	translator, err := messages.NewTranslator("en")
	require.NoError(t, err)
	h := NewHandler(svc, translator, slog.New(slog.NewTextHandler(io.Discard, nil)))
	r := chi.NewRouter()
	h.RegisterRoutes(r, protect)
	return r
}

func serve(router http.Handler, method, target, body string, headers map[string]string) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	return rr
}

func Test_Handler_FindByID(t *testing.T) {
	testCases := []struct {
		name         string
		path         string
		setup        func(m *MockProductService)
		headers      map[string]string
		expectedCode int
		expectedBody string
	}{
		{
			name: "Success - product found",
			path: "/api/v1/products/1",
			setup: func(m *MockProductService) {
				m.On("FindByID", mock.Anything, int64(1)).Return(&service.ProductDto{ID: 1, Name: "Mug", Price: 10, ImageURL: "u1"}, nil)
			},
			expectedCode: http.StatusOK,
			expectedBody: `{"id":1,"name":"Mug","price":10,"imageUrl":"u1"}`,
		},
		{
			name: "Error - product not found",
			path: "/api/v1/products/999",
			setup: func(m *MockProductService) {
				m.On("FindByID", mock.Anything, int64(999)).Return(nil, producterrors.ErrProductNotFound)
			},
			expectedCode: http.StatusNotFound,
			expectedBody: `{"error":"Product with the given ID does not exist."}`,
		},
		{
			name: "Error - product not found in korean",
			path: "/api/v1/products/999",
			setup: func(m *MockProductService) {
				m.On("FindByID", mock.Anything, int64(999)).Return(nil, producterrors.ErrProductNotFound)
			},
			headers:      map[string]string{"Accept-Language": "ko-KR"},
			expectedCode: http.StatusNotFound,
			expectedBody: `{"error":"해당 ID의 상품이 존재하지 않습니다."}`,
		},
		{
			name: "Error - service error",
			path: "/api/v1/products/2",
			setup: func(m *MockProductService) {
				m.On("FindByID", mock.Anything, int64(2)).Return(nil, errors.New("db down"))
			},
			expectedCode: http.StatusInternalServerError,
			expectedBody: `{"error":"Internal server error."}`,
		},
		{
			name:         "Error - invalid id",
			path:         "/api/v1/products/abc",
			setup:        func(m *MockProductService) {},
			expectedCode: http.StatusBadRequest,
			expectedBody: `{"error":"Invalid product ID."}`,
		},
		{
			name:         "Error - non positive id",
			path:         "/api/v1/products/0",
			setup:        func(m *MockProductService) {},
			expectedCode: http.StatusBadRequest,
			expectedBody: `{"error":"Invalid product ID."}`,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// given
			svc := new(MockProductService)
			tc.setup(svc)
			router := newTestRouter(t, svc, nil)

			// when
			rr := serve(router, http.MethodGet, tc.path, "", tc.headers)

			// then
			assert.Equal(t, tc.expectedCode, rr.Code)
			assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))
			assert.JSONEq(t, tc.expectedBody, rr.Body.String())
			svc.AssertExpectations(t)
		})
	}
}

func Test_Handler_FindAll(t *testing.T) {
	testCases := []struct {
		name         string
		products     []service.ProductDto
		err          error
		expectedCode int
		expectedBody string
	}{
		{
			name:         "Success - products found",
			products:     []service.ProductDto{{ID: 1, Name: "A", Price: 100}, {ID: 2, Name: "B", Price: 200, ImageURL: "b"}},
			expectedCode: http.StatusOK,
			expectedBody: `[{"id":1,"name":"A","price":100,"imageUrl":""},{"id":2,"name":"B","price":200,"imageUrl":"b"}]`,
		},
		{
			name:         "Success - no products",
			products:     []service.ProductDto{},
			expectedCode: http.StatusOK,
			expectedBody: `[]`,
		},
		{
			name:         "Error - service error",
			err:          errors.New("db down"),
			expectedCode: http.StatusInternalServerError,
			expectedBody: `{"error":"Internal server error."}`,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// given
			svc := new(MockProductService)
			if tc.err != nil {
				svc.On("FindAll", mock.Anything).Return(nil, tc.err)
			} else {
				svc.On("FindAll", mock.Anything).Return(tc.products, nil)
			}
			router := newTestRouter(t, svc, nil)

			// when
			rr := serve(router, http.MethodGet, "/api/v1/products", "", nil)

			// then
			assert.Equal(t, tc.expectedCode, rr.Code)
			assert.JSONEq(t, tc.expectedBody, rr.Body.String())
		})
	}
}

func Test_Handler_Create(t *testing.T) {
	testCases := []struct {
		name         string
		body         string
		setup        func(m *MockProductService)
		expectedCode int
		expectedBody string
	}{
		{
			name: "Success - product created",
			body: `{"name":"Mug","price":150,"imageUrl":"https://img/mug.png"}`,
			setup: func(m *MockProductService) {
				m.On("Create", mock.Anything, service.ProductCreateDto{Name: "Mug", Price: 150, ImageURL: "https://img/mug.png"}).
					Return(&service.ProductDto{ID: 1, Name: "Mug", Price: 150, ImageURL: "https://img/mug.png"}, nil)
			},
			expectedCode: http.StatusCreated,
			expectedBody: `{"message":"Product created successfully.","product":{"id":1,"name":"Mug","price":150,"imageUrl":"https://img/mug.png"}}`,
		},
		{
			name:         "Error - validation failed",
			body:         `{"name":"","price":-100}`,
			setup:        func(m *MockProductService) {},
			expectedCode: http.StatusBadRequest,
			expectedBody: `{"validation_errors":{"Name":"failed on rule: required","Price":"failed on rule: min"}}`,
		},
		{
			name:         "Error - malformed body",
			body:         `{"name":`,
			setup:        func(m *MockProductService) {},
			expectedCode: http.StatusBadRequest,
			expectedBody: `{"error":"Invalid request body."}`,
		},
		{
			name: "Error - insert failed",
			body: `{"name":"Mug","price":1}`,
			setup: func(m *MockProductService) {
				m.On("Create", mock.Anything, mock.Anything).Return(nil, producterrors.ErrInsertFailed)
			},
			expectedCode: http.StatusInternalServerError,
			expectedBody: `{"error":"Failed to create product."}`,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// given
			svc := new(MockProductService)
			tc.setup(svc)
			router := newTestRouter(t, svc, nil)

			// when
			rr := serve(router, http.MethodPost, "/api/v1/products", tc.body, nil)

			// then
			assert.Equal(t, tc.expectedCode, rr.Code)
			assert.JSONEq(t, tc.expectedBody, rr.Body.String())
			svc.AssertExpectations(t)
		})
	}
}

func Test_Handler_Update(t *testing.T) {
	validBody := `{"name":"Mug","price":12,"imageUrl":"u2"}`
	validDto := service.ProductUpdateDto{Name: "Mug", Price: 12, ImageURL: "u2"}

	testCases := []struct {
		name         string
		path         string
		body         string
		setup        func(m *MockProductService)
		expectedCode int
		expectedBody string
	}{
		{
			name: "Success - product updated",
			path: "/api/v1/products/1",
			body: validBody,
			setup: func(m *MockProductService) {
				m.On("Update", mock.Anything, int64(1), validDto).Return(&service.ProductDto{ID: 1, Name: "Mug", Price: 12, ImageURL: "u2"}, nil)
			},
			expectedCode: http.StatusOK,
			expectedBody: `{"message":"Product updated.","product":{"id":1,"name":"Mug","price":12,"imageUrl":"u2"}}`,
		},
		{
			name: "Error - not found",
			path: "/api/v1/products/5",
			body: validBody,
			setup: func(m *MockProductService) {
				m.On("Update", mock.Anything, int64(5), validDto).Return(nil, producterrors.ErrProductNotFound)
			},
			expectedCode: http.StatusNotFound,
			expectedBody: `{"error":"Product with the given ID does not exist."}`,
		},
		{
			name: "Error - duplicate name",
			path: "/api/v1/products/1",
			body: validBody,
			setup: func(m *MockProductService) {
				m.On("Update", mock.Anything, int64(1), validDto).Return(nil, producterrors.ErrDuplicateName)
			},
			expectedCode: http.StatusConflict,
			expectedBody: `{"error":"A product with this name already exists. Please choose a different name."}`,
		},
		{
			name:         "Error - invalid id",
			path:         "/api/v1/products/-3",
			body:         validBody,
			setup:        func(m *MockProductService) {},
			expectedCode: http.StatusBadRequest,
			expectedBody: `{"error":"Invalid product ID."}`,
		},
		{
			name:         "Error - validation failed",
			path:         "/api/v1/products/1",
			body:         `{"price":1}`,
			setup:        func(m *MockProductService) {},
			expectedCode: http.StatusBadRequest,
			expectedBody: `{"validation_errors":{"Name":"failed on rule: required"}}`,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// given
			svc := new(MockProductService)
			tc.setup(svc)
			router := newTestRouter(t, svc, nil)

			// when
			rr := serve(router, http.MethodPut, tc.path, tc.body, nil)

			// then
			assert.Equal(t, tc.expectedCode, rr.Code)
			assert.JSONEq(t, tc.expectedBody, rr.Body.String())
			svc.AssertExpectations(t)
		})
	}
}

func Test_Handler_Deletes(t *testing.T) {
	testCases := []struct {
		name         string
		method       string
		path         string
		body         string
		setup        func(m *MockProductService)
		expectedCode int
		expectedBody string
	}{
		{
			name:   "delete all",
			method: http.MethodDelete,
			path:   "/api/v1/products",
			setup: func(m *MockProductService) {
				m.On("DeleteAll", mock.Anything).Return(nil)
			},
			expectedCode: http.StatusOK,
			expectedBody: `{"message":"All products have been deleted."}`,
		},
		{
			name:   "delete all failure",
			method: http.MethodDelete,
			path:   "/api/v1/products",
			setup: func(m *MockProductService) {
				m.On("DeleteAll", mock.Anything).Return(errors.New("db down"))
			},
			expectedCode: http.StatusInternalServerError,
			expectedBody: `{"error":"Internal server error."}`,
		},
		{
			name:   "delete by id",
			method: http.MethodDelete,
			path:   "/api/v1/products/3",
			setup: func(m *MockProductService) {
				m.On("DeleteByID", mock.Anything, int64(3)).Return(nil)
			},
			expectedCode: http.StatusOK,
			expectedBody: `{"message":"Product deleted."}`,
		},
		{
			name:   "delete by id not found",
			method: http.MethodDelete,
			path:   "/api/v1/products/4",
			setup: func(m *MockProductService) {
				m.On("DeleteByID", mock.Anything, int64(4)).Return(producterrors.ErrProductNotFound)
			},
			expectedCode: http.StatusNotFound,
			expectedBody: `{"error":"Product with the given ID does not exist."}`,
		},
		{
			name:   "delete by ids",
			method: http.MethodPost,
			path:   "/api/v1/products/delete",
			body:   `{"ids":[1,2,99]}`,
			setup: func(m *MockProductService) {
				m.On("DeleteByIDs", mock.Anything, []int64{1, 2, 99}).Return(int64(2), nil)
			},
			expectedCode: http.StatusOK,
			expectedBody: `{"message":"Products deleted successfully.","deleted":2}`,
		},
		{
			name:         "delete by ids empty list",
			method:       http.MethodPost,
			path:         "/api/v1/products/delete",
			body:         `{"ids":[]}`,
			setup: func(m *MockProductService) {
				m.On("DeleteByIDs", mock.Anything, []int64{}).Return(int64(0), nil)
			},
			expectedCode: http.StatusOK,
			expectedBody: `{"message":"Products deleted successfully.","deleted":0}`,
		},
		{
			name:         "delete by ids null list",
			method:       http.MethodPost,
			path:         "/api/v1/products/delete",
			body:         `{"ids":null}`,
			setup:        func(m *MockProductService) {},
			expectedCode: http.StatusBadRequest,
			expectedBody: `{"validation_errors":{"IDs":"failed on rule: required"}}`,
		},
		{
			name:         "delete by ids missing list",
			method:       http.MethodPost,
			path:         "/api/v1/products/delete",
			body:         `{}`,
			setup:        func(m *MockProductService) {},
			expectedCode: http.StatusBadRequest,
			expectedBody: `{"validation_errors":{"IDs":"failed on rule: required"}}`,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// given
			svc := new(MockProductService)
			tc.setup(svc)
			router := newTestRouter(t, svc, nil)

			// when
			rr := serve(router, tc.method, tc.path, tc.body, nil)

			// then
			assert.Equal(t, tc.expectedCode, rr.Code)
			assert.JSONEq(t, tc.expectedBody, rr.Body.String())
			svc.AssertExpectations(t)
		})
	}
}

func Test_Handler_Exists(t *testing.T) {
	testCases := []struct {
		name         string
		target       string
		setup        func(m *MockProductService)
		expectedCode int
		expectedBody string
	}{
		{
			name:   "by name",
			target: "/api/v1/products/exists?name=Mug",
			setup: func(m *MockProductService) {
				m.On("ExistsByName", mock.Anything, "Mug").Return(true, nil)
			},
			expectedCode: http.StatusOK,
			expectedBody: `{"exists":true}`,
		},
		{
			name:   "excluding an id",
			target: "/api/v1/products/exists?name=Mug&excludeId=1",
			setup: func(m *MockProductService) {
				m.On("ExistsSameName", mock.Anything, int64(1), "Mug").Return(false, nil)
			},
			expectedCode: http.StatusOK,
			expectedBody: `{"exists":false}`,
		},
		{
			name:   "empty name",
			target: "/api/v1/products/exists?name=",
			setup: func(m *MockProductService) {
				m.On("ExistsByName", mock.Anything, "").Return(false, nil)
			},
			expectedCode: http.StatusOK,
			expectedBody: `{"exists":false}`,
		},
		{
			name:         "missing name",
			target:       "/api/v1/products/exists",
			setup:        func(m *MockProductService) {},
			expectedCode: http.StatusBadRequest,
			expectedBody: `{"error":"name url parameter is required"}`,
		},
		{
			name:         "invalid excludeId",
			target:       "/api/v1/products/exists?name=Mug&excludeId=x",
			setup:        func(m *MockProductService) {},
			expectedCode: http.StatusBadRequest,
			expectedBody: `{"error":"Invalid excludeId number: x"}`,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// given
			svc := new(MockProductService)
			tc.setup(svc)
			router := newTestRouter(t, svc, nil)

			// when
			rr := serve(router, http.MethodGet, tc.target, "", nil)

			// then
			assert.Equal(t, tc.expectedCode, rr.Code)
			assert.JSONEq(t, tc.expectedBody, rr.Body.String())
			svc.AssertExpectations(t)
		})
	}
}

func Test_Handler_HealthEndpoints(t *testing.T) {
	// given
	svc := new(MockProductService)
	svc.On("Ping", mock.Anything).Return(nil).Once()
	svc.On("Ping", mock.Anything).Return(errors.New("db down")).Once()
	router := newTestRouter(t, svc, nil)

	// when
	live := serve(router, http.MethodGet, "/healthz", "", nil)
	ready := serve(router, http.MethodGet, "/readyz", "", nil)
	notReady := serve(router, http.MethodGet, "/readyz", "", nil)

	// then
	assert.Equal(t, http.StatusOK, live.Code)
	assert.Equal(t, http.StatusOK, ready.Code)
	assert.Equal(t, http.StatusServiceUnavailable, notReady.Code)
}

func Test_Handler_ProtectedRoutes(t *testing.T) {
	// given
	protect := func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Header.Get("Authorization") != "Bearer ok" {
				w.WriteHeader(http.StatusUnauthorized)
				return
			}
			next.ServeHTTP(w, r.WithContext(web.WithUserID(r.Context(), "user-1")))
		})
	}
	svc := new(MockProductService)
	svc.On("FindAll", mock.Anything).Return([]service.ProductDto{}, nil)
	svc.On("DeleteByID", mock.Anything, int64(1)).Return(nil)
	router := newTestRouter(t, svc, protect)

	// when
	read := serve(router, http.MethodGet, "/api/v1/products", "", nil)
	anonymous := serve(router, http.MethodDelete, "/api/v1/products/1", "", nil)
	authorized := serve(router, http.MethodDelete, "/api/v1/products/1", "", map[string]string{"Authorization": "Bearer ok"})

	// then
	assert.Equal(t, http.StatusOK, read.Code)
	assert.Equal(t, http.StatusUnauthorized, anonymous.Code)
	assert.Equal(t, http.StatusOK, authorized.Code)
	svc.AssertNumberOfCalls(t, "DeleteByID", 1)
}
