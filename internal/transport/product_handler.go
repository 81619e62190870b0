package transport

import (
	"errors"
	"net/http"
	"strconv"

	"storefront/internal/domain"
	"storefront/internal/middleware"
	"storefront/internal/repository"
	"storefront/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// ProductRequest represents the product create/update payload. Price is
// a decimal string so amounts survive the wire exactly.
type ProductRequest struct {
	Name        string `json:"name" validate:"required,min=2"`
	Description string `json:"description" validate:"required,min=5"`
	Price       string `json:"price" validate:"required"`
	ImageURL    string `json:"image_url" validate:"required,url"`
	Stock       int    `json:"stock" validate:"min=0"`
	CategoryID  string `json:"category_id" validate:"required,uuid"`
}

// maxPageSize bounds the work a single listing request can ask for
const maxPageSize = 100

// Pagination describes one page of a larger result set
type Pagination struct {
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	Total      int `json:"total"`
	TotalPages int `json:"total_pages"`
}

// ProductListResponse is a catalog page plus its pagination metadata
type ProductListResponse struct {
	Products   []*ProductView `json:"products"`
	Pagination Pagination     `json:"pagination"`
}

// ProductView is the wire representation of a product
type ProductView struct {
	ID          string            `json:"id"`
	Name        string            `json:"name"`
	Description string            `json:"description"`
	Price       decimal.Decimal   `json:"price"`
	ImageURL    string            `json:"image_url"`
	Stock       int               `json:"stock"`
	InStock     bool              `json:"in_stock"`
	CategoryID  string            `json:"category_id"`
	Category    *CategoryResponse `json:"category,omitempty"`
}

// ProductHandler handles HTTP requests for product operations
type ProductHandler struct {
	catalogService service.CatalogService
	logger         *zap.Logger
}

// NewProductHandler creates a new ProductHandler
func NewProductHandler(catalogService service.CatalogService, logger *zap.Logger) *ProductHandler {
	return &ProductHandler{
		catalogService: catalogService,
		logger:         logger,
	}
}

// RegisterRoutes registers all product routes. Reads are public, writes
// require an admin.
func (h *ProductHandler) RegisterRoutes(r chi.Router, authMiddleware, adminMiddleware func(http.Handler) http.Handler) {
	r.Route("/api/products", func(r chi.Router) {
		r.Get("/", h.List)
		r.Get("/{id}", h.Get)

		r.Group(func(r chi.Router) {
			r.Use(authMiddleware)
			r.Use(adminMiddleware)
			r.Post("/", h.Create)
			r.Put("/{id}", h.Update)
			r.Delete("/{id}", h.Delete)
		})
	})
}

// List returns a filtered, paginated catalog page. Query parameters:
// category (uuid), search (matched against name and description), page
// and limit.
func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	filter := repository.ProductFilter{
		Search:   r.URL.Query().Get("search"),
		Page:     parseIntParam(r, "page", 1),
		PageSize: parseIntParam(r, "limit", 10),
	}
	if filter.PageSize > maxPageSize {
		filter.PageSize = maxPageSize
	}

	if raw := r.URL.Query().Get("category"); raw != "" {
		categoryID, err := uuid.Parse(raw)
		if err != nil {
			middleware.RespondWithError(w, http.StatusBadRequest, "invalid category id")
			return
		}
		filter.CategoryID = &categoryID
	}

	products, total, err := h.catalogService.ListProducts(r.Context(), filter)
	if err != nil {
		h.logger.Error("Failed to list products", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to list products")
		return
	}

	views := make([]*ProductView, 0, len(products))
	for _, product := range products {
		views = append(views, toProductView(product))
	}

	totalPages := 0
	if total > 0 {
		totalPages = (total + filter.PageSize - 1) / filter.PageSize
	}

	middleware.RespondWithData(w, http.StatusOK, ProductListResponse{
		Products: views,
		Pagination: Pagination{
			Page:       filter.Page,
			Limit:      filter.PageSize,
			Total:      total,
			TotalPages: totalPages,
		},
	})
}

// Get returns a single product with its category
func (h *ProductHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid product id")
		return
	}

	product, err := h.catalogService.GetProduct(r.Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			middleware.RespondWithError(w, http.StatusNotFound, "product not found")
			return
		}

		h.logger.Error("Failed to get product", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to get product")
		return
	}

	middleware.RespondWithData(w, http.StatusOK, toProductView(product))
}

// Create adds a new product
func (h *ProductHandler) Create(w http.ResponseWriter, r *http.Request) {
	input, ok := h.decodeProductInput(w, r)
	if !ok {
		return
	}

	product, err := h.catalogService.CreateProduct(r.Context(), input)
	if err != nil {
		h.respondProductError(w, err, "create")
		return
	}

	h.logger.Info("Product created", zap.String("product_id", product.ID.String()))
	middleware.RespondWithData(w, http.StatusCreated, toProductView(product))
}

// Update replaces a product's fields
func (h *ProductHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid product id")
		return
	}

	input, ok := h.decodeProductInput(w, r)
	if !ok {
		return
	}

	product, err := h.catalogService.UpdateProduct(r.Context(), id, input)
	if err != nil {
		h.respondProductError(w, err, "update")
		return
	}

	middleware.RespondWithData(w, http.StatusOK, toProductView(product))
}

// Delete removes a product from the catalog
func (h *ProductHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid product id")
		return
	}

	if err := h.catalogService.DeleteProduct(r.Context(), id); err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			middleware.RespondWithError(w, http.StatusNotFound, "product not found")
			return
		}

		h.logger.Error("Failed to delete product", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to delete product")
		return
	}

	h.logger.Info("Product deleted", zap.String("product_id", id.String()))
	middleware.RespondWithData(w, http.StatusOK, map[string]string{"message": "product deleted"})
}

func (h *ProductHandler) decodeProductInput(w http.ResponseWriter, r *http.Request) (service.ProductInput, bool) {
	var req ProductRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return service.ProductInput{}, false
		}
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return service.ProductInput{}, false
	}

	price, err := decimal.NewFromString(req.Price)
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "price must be a decimal number")
		return service.ProductInput{}, false
	}

	categoryID, err := uuid.Parse(req.CategoryID)
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid category id")
		return service.ProductInput{}, false
	}

	return service.ProductInput{
		Name:        req.Name,
		Description: req.Description,
		Price:       price,
		ImageURL:    req.ImageURL,
		Stock:       req.Stock,
		CategoryID:  categoryID,
	}, true
}

func (h *ProductHandler) respondProductError(w http.ResponseWriter, err error, action string) {
	switch {
	case errors.Is(err, repository.ErrProductNotFound):
		middleware.RespondWithError(w, http.StatusNotFound, "product not found")
	case errors.Is(err, repository.ErrProductAlreadyExists):
		middleware.RespondWithError(w, http.StatusBadRequest, "a product with this name already exists")
	case errors.Is(err, repository.ErrCategoryNotFound):
		middleware.RespondWithError(w, http.StatusBadRequest, "category does not exist")
	case errors.Is(err, service.ErrInvalidPrice):
		middleware.RespondWithError(w, http.StatusBadRequest, "price must be a positive amount")
	case errors.Is(err, service.ErrInvalidStock):
		middleware.RespondWithError(w, http.StatusBadRequest, "stock must be a non-negative integer")
	default:
		h.logger.Error("Product operation failed", zap.String("action", action), zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to "+action+" product")
	}
}

func toProductView(product *domain.Product) *ProductView {
	view := &ProductView{
		ID:          product.ID.String(),
		Name:        product.Name,
		Description: product.Description,
		Price:       product.Price,
		ImageURL:    product.ImageURL,
		Stock:       product.Stock,
		InStock:     product.InStock(),
		CategoryID:  product.CategoryID.String(),
	}
	if product.Category != nil {
		category := toCategoryResponse(product.Category)
		view.Category = &category
	}
	return view
}

// parseIntParam reads a positive integer query parameter, falling back
// to def when missing or malformed.
func parseIntParam(r *http.Request, name string, def int) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def
	}
	value, err := strconv.Atoi(raw)
	if err != nil || value < 1 {
		return def
	}
	return value
}
