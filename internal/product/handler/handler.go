// Package handler provides HTTP handlers for product-related operations.
package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	producterrors "github.com/abgdnv/giftcatalog/internal/product/errors"
	"github.com/abgdnv/giftcatalog/internal/product/messages"
	"github.com/abgdnv/giftcatalog/internal/product/service"
	"github.com/abgdnv/giftcatalog/pkg/web"
	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
)

// StatusResponse is returned by mutating endpoints.
type StatusResponse struct {
	Message string              `json:"message"`
	Product *service.ProductDto `json:"product,omitempty"`
}

// DeletedResponse is returned by the batch delete endpoint.
type DeletedResponse struct {
	Message string `json:"message"`
	Deleted int64  `json:"deleted"`
}

// ExistsResponse is returned by the name check endpoint.
type ExistsResponse struct {
	Exists bool `json:"exists"`
}

type Handler struct {
	service    service.ProductService
	translator *messages.Translator
	validate   *validator.Validate
	logger     *slog.Logger
}

// NewHandler creates a new product Handler.
func NewHandler(service service.ProductService, translator *messages.Translator, logger *slog.Logger) *Handler {
	return &Handler{
		service:    service,
		translator: translator,
		validate:   validator.New(),
		logger:     logger.With("component", "rest"),
	}
}

// RegisterRoutes registers the product routes on r.
// When protect is not nil it guards every mutating route.
func (h *Handler) RegisterRoutes(r chi.Router, protect func(http.Handler) http.Handler) {
	r.Route("/api/v1/products", func(r chi.Router) {
		r.Get("/", h.FindAll)
		r.Get("/exists", h.Exists)
		r.Get("/{id}", h.FindByID)

		r.Group(func(r chi.Router) {
			if protect != nil {
				r.Use(protect)
			}
			r.Post("/", h.Create)
			r.Delete("/", h.DeleteAll)
			r.Post("/delete", h.DeleteByIDs)
			r.Put("/{id}", h.Update)
			r.Delete("/{id}", h.DeleteByID)
		})
	})

	r.Get("/healthz", h.HealthCheck)
	r.Get("/readyz", h.ReadyCheck)
}

// Create adds a new product.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	mLogger := h.logger
	dto, ok := decodeValid[service.ProductCreateDto](h, w, r, mLogger)
	if !ok {
		return
	}
	mLogger.DebugContext(r.Context(), "Received request to create product", "product", dto)

	created, err := h.service.Create(r.Context(), dto)
	if err != nil {
		mLogger.ErrorContext(r.Context(), "Error creating product", "error", err)
		h.respondErrorKey(w, r, mLogger, http.StatusInternalServerError, messages.ProductCreateFailed)
		return
	}
	mLogger.InfoContext(r.Context(), "Product created successfully", "ID", created.ID, "Name", created.Name)
	web.RespondJSON(w, mLogger, http.StatusCreated, StatusResponse{
		Message: h.text(r, messages.ProductCreated),
		Product: created,
	})
}

// FindAll lists every product.
func (h *Handler) FindAll(w http.ResponseWriter, r *http.Request) {
	mLogger := h.logger
	list, err := h.service.FindAll(r.Context())
	if err != nil {
		mLogger.ErrorContext(r.Context(), "Error retrieving product list", "error", err)
		h.respondErrorKey(w, r, mLogger, http.StatusInternalServerError, messages.InternalError)
		return
	}
	mLogger.DebugContext(r.Context(), "Successfully retrieved product list", "count", len(list))
	web.RespondJSON(w, mLogger, http.StatusOK, list)
}

// FindByID retrieves a product by its ID.
func (h *Handler) FindByID(w http.ResponseWriter, r *http.Request) {
	mLogger := h.logger
	id, ok := h.parseID(w, r, mLogger)
	if !ok {
		return
	}

	found, err := h.service.FindByID(r.Context(), id)
	if err != nil {
		h.respondServiceError(w, r, mLogger, err, "Error retrieving product", id)
		return
	}
	mLogger.DebugContext(r.Context(), "Successfully retrieved product", "ID", found.ID, "Name", found.Name)
	web.RespondJSON(w, mLogger, http.StatusOK, found)
}

// Update overwrites name, price and image URL of a product.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	mLogger := h.logger
	id, ok := h.parseID(w, r, mLogger)
	if !ok {
		return
	}
	dto, ok := decodeValid[service.ProductUpdateDto](h, w, r, mLogger)
	if !ok {
		return
	}
	mLogger.DebugContext(r.Context(), "Received request to update product", "ID", id, "product", dto)

	updated, err := h.service.Update(r.Context(), id, dto)
	if err != nil {
		h.respondServiceError(w, r, mLogger, err, "Error updating product", id)
		return
	}
	mLogger.InfoContext(r.Context(), "Product updated successfully", "ID", updated.ID, "Name", updated.Name)
	web.RespondJSON(w, mLogger, http.StatusOK, StatusResponse{
		Message: h.text(r, messages.ProductUpdated),
		Product: updated,
	})
}

// DeleteAll removes every product.
func (h *Handler) DeleteAll(w http.ResponseWriter, r *http.Request) {
	mLogger := h.logger
	if err := h.service.DeleteAll(r.Context()); err != nil {
		mLogger.ErrorContext(r.Context(), "Error deleting all products", "error", err)
		h.respondErrorKey(w, r, mLogger, http.StatusInternalServerError, messages.InternalError)
		return
	}
	mLogger.InfoContext(r.Context(), "All products deleted")
	h.respondMessage(w, r, mLogger, http.StatusOK, messages.ProductsCleared)
}

// DeleteByID deletes a product by its ID.
func (h *Handler) DeleteByID(w http.ResponseWriter, r *http.Request) {
	mLogger := h.logger
	id, ok := h.parseID(w, r, mLogger)
	if !ok {
		return
	}

	if err := h.service.DeleteByID(r.Context(), id); err != nil {
		h.respondServiceError(w, r, mLogger, err, "Error deleting product", id)
		return
	}
	mLogger.InfoContext(r.Context(), "Product deleted successfully", "ID", id)
	h.respondMessage(w, r, mLogger, http.StatusOK, messages.ProductDeleted)
}

// DeleteByIDs deletes the listed products. Unknown IDs are ignored.
func (h *Handler) DeleteByIDs(w http.ResponseWriter, r *http.Request) {
	mLogger := h.logger
	dto, ok := decodeValid[service.DeleteIDsDto](h, w, r, mLogger)
	if !ok {
		return
	}

	removed, err := h.service.DeleteByIDs(r.Context(), dto.IDs)
	if err != nil {
		mLogger.ErrorContext(r.Context(), "Error deleting products", "IDs", dto.IDs, "error", err)
		h.respondErrorKey(w, r, mLogger, http.StatusInternalServerError, messages.InternalError)
		return
	}
	mLogger.InfoContext(r.Context(), "Products deleted", "requested", len(dto.IDs), "deleted", removed)
	web.RespondJSON(w, mLogger, http.StatusOK, DeletedResponse{
		Message: h.text(r, messages.ProductsDeleted),
		Deleted: removed,
	})
}

// Exists reports whether the name query parameter is taken.
// With excludeId the product holding that ID is not considered.
func (h *Handler) Exists(w http.ResponseWriter, r *http.Request) {
	mLogger := h.logger
	if !r.URL.Query().Has("name") {
		web.RespondError(w, mLogger, http.StatusBadRequest, "name url parameter is required")
		return
	}
	name := r.URL.Query().Get("name")

	var (
		exists bool
		err    error
	)
	if r.URL.Query().Has("excludeId") {
		excludeID, ok := web.ParseValidateGt(r, w, mLogger, "excludeId", 0)
		if !ok {
			return
		}
		exists, err = h.service.ExistsSameName(r.Context(), excludeID, name)
	} else {
		exists, err = h.service.ExistsByName(r.Context(), name)
	}
	if err != nil {
		mLogger.ErrorContext(r.Context(), "Error checking product name", "name", name, "error", err)
		h.respondErrorKey(w, r, mLogger, http.StatusInternalServerError, messages.InternalError)
		return
	}
	web.RespondJSON(w, mLogger, http.StatusOK, ExistsResponse{Exists: exists})
}

// HealthCheck reports liveness.
func (h *Handler) HealthCheck(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
}

// ReadyCheck reports whether the product store is reachable.
func (h *Handler) ReadyCheck(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Ping(r.Context()); err != nil {
		h.logger.WarnContext(r.Context(), "Readiness check failed", "error", err)
		w.WriteHeader(http.StatusServiceUnavailable)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (h *Handler) respondServiceError(w http.ResponseWriter, r *http.Request, logger *slog.Logger, err error, msg string, id int64) {
	switch {
	case errors.Is(err, producterrors.ErrProductNotFound):
		logger.WarnContext(r.Context(), "Product not found", "ID", id)
		h.respondErrorKey(w, r, logger, http.StatusNotFound, messages.ProductNotFound)
	case errors.Is(err, producterrors.ErrDuplicateName):
		logger.WarnContext(r.Context(), "Product name already taken", "ID", id)
		h.respondErrorKey(w, r, logger, http.StatusConflict, messages.ProductDuplicate)
	default:
		logger.ErrorContext(r.Context(), msg, "ID", id, "error", err)
		h.respondErrorKey(w, r, logger, http.StatusInternalServerError, messages.InternalError)
	}
}

// decodeValid decodes the JSON body into T and validates it.
// On failure the response is written and false is returned.
func decodeValid[T any](h *Handler, w http.ResponseWriter, r *http.Request, logger *slog.Logger) (T, bool) {
	var dto T
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		logger.WarnContext(r.Context(), "Error decoding request body", "error", err)
		h.respondErrorKey(w, r, logger, http.StatusBadRequest, messages.InvalidBody)
		return dto, false
	}

	if err := h.validate.Struct(dto); err != nil {
		var validationErrors validator.ValidationErrors
		if errors.As(err, &validationErrors) {
			errorResponse := make(map[string]string)
			for _, fieldErr := range validationErrors {
				errorResponse[fieldErr.Field()] = "failed on rule: " + fieldErr.Tag()
			}
			logger.WarnContext(r.Context(), "Validation errors occurred", "errors", errorResponse)
			web.RespondJSON(w, logger, http.StatusBadRequest, map[string]any{"validation_errors": errorResponse})
			return dto, false
		}
		logger.ErrorContext(r.Context(), "Error validating request body", "error", err)
		h.respondErrorKey(w, r, logger, http.StatusBadRequest, messages.InvalidBody)
		return dto, false
	}
	return dto, true
}

func (h *Handler) parseID(w http.ResponseWriter, r *http.Request, logger *slog.Logger) (int64, bool) {
	id, err := web.ParseID(r)
	if err != nil {
		logger.WarnContext(r.Context(), "Invalid product ID", "error", err)
		h.respondErrorKey(w, r, logger, http.StatusBadRequest, messages.InvalidID)
		return 0, false
	}
	return id, true
}

func (h *Handler) text(r *http.Request, key string) string {
	return h.translator.Text(r.Header.Get("Accept-Language"), key)
}

func (h *Handler) respondMessage(w http.ResponseWriter, r *http.Request, logger *slog.Logger, status int, key string) {
	web.RespondJSON(w, logger, status, StatusResponse{Message: h.text(r, key)})
}

func (h *Handler) respondErrorKey(w http.ResponseWriter, r *http.Request, logger *slog.Logger, status int, key string) {
	web.RespondError(w, logger, status, h.text(r, key))
}
