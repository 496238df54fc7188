package transport

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"retail-pos/internal/domain"
	"retail-pos/internal/middleware"
	"retail-pos/internal/repository"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// CreateProductRequest represents the create product request payload
type CreateProductRequest struct {
	Name           string     `json:"name" validate:"required"`
	Description    string     `json:"description"`
	BatchNumber    *string    `json:"batchNumber"`
	BarCode        *string    `json:"barCode"`
	Image          string     `json:"image"`
	Tax            float64    `json:"tax" validate:"gte=0"`
	AlertQty       int        `json:"alertQty" validate:"gte=0"`
	StockQty       int        `json:"stockQty" validate:"gte=0"`
	Price          float64    `json:"price" validate:"gte=0"`
	WholesalePrice float64    `json:"wholesalePrice" validate:"gte=0"`
	BuyingPrice    float64    `json:"buyingPrice" validate:"gte=0"`
	Sku            string     `json:"sku" validate:"required"`
	ProductCode    string     `json:"productCode" validate:"required"`
	Slug           string     `json:"slug" validate:"required"`
	SupplierID     uuid.UUID  `json:"supplierId" validate:"required"`
	UnitID         uuid.UUID  `json:"unitId" validate:"required"`
	BrandID        uuid.UUID  `json:"brandId" validate:"required"`
	CategoryID     uuid.UUID  `json:"categoryId" validate:"required"`
	ShopID         uuid.UUID  `json:"shopId" validate:"required"`
	ExpiryDate     *time.Time `json:"expiryDate"`
}

// UpdateProductRequest represents the update product request payload
type UpdateProductRequest struct {
	Name           string     `json:"name" validate:"required"`
	Description    string     `json:"description"`
	BatchNumber    *string    `json:"batchNumber"`
	BarCode        *string    `json:"barCode"`
	Image          string     `json:"image"`
	Tax            float64    `json:"tax" validate:"gte=0"`
	AlertQty       int        `json:"alertQty" validate:"gte=0"`
	StockQty       int        `json:"stockQty" validate:"gte=0"`
	Price          float64    `json:"price" validate:"gte=0"`
	WholesalePrice float64    `json:"wholesalePrice" validate:"gte=0"`
	BuyingPrice    float64    `json:"buyingPrice" validate:"gte=0"`
	Sku            string     `json:"sku" validate:"required"`
	ProductCode    string     `json:"productCode" validate:"required"`
	Slug           string     `json:"slug" validate:"required"`
	SupplierID     uuid.UUID  `json:"supplierId" validate:"required"`
	UnitID         uuid.UUID  `json:"unitId" validate:"required"`
	BrandID        uuid.UUID  `json:"brandId" validate:"required"`
	CategoryID     uuid.UUID  `json:"categoryId" validate:"required"`
	ShopID         uuid.UUID  `json:"shopId" validate:"required"`
	ExpiryDate     *time.Time `json:"expiryDate"`
}

// ProductListResponse wraps a product page with its total count
type ProductListResponse struct {
	Products []*domain.Product `json:"products"`
	Total    int               `json:"total"`
	Page     int               `json:"page"`
	PageSize int               `json:"pageSize"`
}

// ProductHandler handles HTTP requests for products
type ProductHandler struct {
	productRepo repository.ProductRepository
	logger      *zap.Logger
}

// NewProductHandler creates a new ProductHandler
func NewProductHandler(productRepo repository.ProductRepository, logger *zap.Logger) *ProductHandler {
	return &ProductHandler{
		productRepo: productRepo,
		logger:      logger,
	}
}

// RegisterRoutes registers all product routes. Deletes require admin.
func (h *ProductHandler) RegisterRoutes(r chi.Router, authMiddleware, adminOnly func(http.Handler) http.Handler) {
	r.Route("/api/products", func(r chi.Router) {
		r.Use(authMiddleware)
		r.Post("/", h.CreateProduct)
		r.Get("/", h.ListProducts)
		r.Get("/search", h.SearchProducts)
		r.Get("/{id}", h.GetProduct)
		r.Put("/{id}", h.UpdateProduct)
		r.With(adminOnly).Delete("/{id}", h.DeleteProduct)
	})
}

// CreateProduct handles product creation. Slug, SKU and product code
// are unique; bar code is unique when present.
func (h *ProductHandler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	var req CreateProductRequest

	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		h.logger.Debug("Create product validation failed", zap.Error(err))

		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return
		}

		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if conflict, msg := h.checkProductUniqueness(r, req.Slug, req.Sku, req.ProductCode, req.BarCode, uuid.Nil); conflict {
		if msg == "" {
			middleware.RespondWithError(w, http.StatusInternalServerError, "Internal Server Error")
			return
		}
		middleware.RespondWithError(w, http.StatusConflict, msg)
		return
	}

	now := time.Now()
	product := &domain.Product{
		ID:             uuid.New(),
		Name:           req.Name,
		Description:    req.Description,
		BatchNumber:    req.BatchNumber,
		BarCode:        req.BarCode,
		Image:          req.Image,
		Tax:            req.Tax,
		AlertQty:       req.AlertQty,
		StockQty:       req.StockQty,
		Price:          req.Price,
		WholesalePrice: req.WholesalePrice,
		BuyingPrice:    req.BuyingPrice,
		Sku:            req.Sku,
		ProductCode:    req.ProductCode,
		Slug:           req.Slug,
		SupplierID:     req.SupplierID,
		UnitID:         req.UnitID,
		BrandID:        req.BrandID,
		CategoryID:     req.CategoryID,
		ShopID:         req.ShopID,
		ExpiryDate:     req.ExpiryDate,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err := h.productRepo.Create(r.Context(), product); err != nil {
		if errors.Is(err, repository.ErrProductAlreadyExists) {
			middleware.RespondWithError(w, http.StatusConflict, "product already exists")
			return
		}
		h.logger.Error("Failed to create product", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}

	h.logger.Info("Product created", zap.String("product_id", product.ID.String()))
	middleware.RespondWithJSON(w, http.StatusCreated, product)
}

// checkProductUniqueness checks slug, sku, product code and bar code
// against existing products, ignoring self on updates. A conflict with
// an empty message means the lookup itself failed.
func (h *ProductHandler) checkProductUniqueness(r *http.Request, slug, sku, productCode string, barCode *string, self uuid.UUID) (bool, string) {
	checks := []struct {
		value string
		find  func() (*domain.Product, error)
		msg   string
	}{
		{slug, func() (*domain.Product, error) { return h.productRepo.FindBySlug(r.Context(), slug) },
			fmt.Sprintf("Product with this slug %s already exists", slug)},
		{sku, func() (*domain.Product, error) { return h.productRepo.FindBySku(r.Context(), sku) },
			fmt.Sprintf("Product with this sku %s already exists", sku)},
		{productCode, func() (*domain.Product, error) { return h.productRepo.FindByProductCode(r.Context(), productCode) },
			fmt.Sprintf("Product with this productCode %s already exists", productCode)},
	}
	if barCode != nil {
		checks = append(checks, struct {
			value string
			find  func() (*domain.Product, error)
			msg   string
		}{*barCode, func() (*domain.Product, error) { return h.productRepo.FindByBarCode(r.Context(), *barCode) },
			fmt.Sprintf("Product with this barCode %s already exists", *barCode)})
	}

	for _, check := range checks {
		existing, err := check.find()
		if err != nil && !errors.Is(err, repository.ErrProductNotFound) {
			h.logger.Error("Failed to check existing product", zap.Error(err))
			return true, ""
		}
		if existing != nil && existing.ID != self {
			return true, check.msg
		}
	}

	return false, ""
}

// ListProducts returns a page of products, optionally scoped to a shop
func (h *ProductHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	page := parseIntQuery(r, "page", 1)
	pageSize := parseIntQuery(r, "pageSize", 20)
	sortBy := r.URL.Query().Get("sortBy")
	sortOrder := repository.SortOrder(r.URL.Query().Get("sortOrder"))

	var shopID *uuid.UUID
	if raw := r.URL.Query().Get("shopId"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			middleware.RespondWithError(w, http.StatusBadRequest, "invalid shop ID")
			return
		}
		shopID = &id
	}

	products, total, err := h.productRepo.List(r.Context(), shopID, page, pageSize, sortBy, sortOrder)
	if err != nil {
		h.logger.Error("Failed to list products", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, ProductListResponse{
		Products: products,
		Total:    total,
		Page:     page,
		PageSize: pageSize,
	})
}

// SearchProducts returns products matching the query against name,
// description or SKU
func (h *ProductHandler) SearchProducts(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	if query == "" {
		middleware.RespondWithError(w, http.StatusBadRequest, "missing search query")
		return
	}

	page := parseIntQuery(r, "page", 1)
	pageSize := parseIntQuery(r, "pageSize", 20)

	products, total, err := h.productRepo.Search(r.Context(), query, page, pageSize)
	if err != nil {
		h.logger.Error("Failed to search products", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, ProductListResponse{
		Products: products,
		Total:    total,
		Page:     page,
		PageSize: pageSize,
	})
}

// GetProduct returns a single product
func (h *ProductHandler) GetProduct(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid product ID")
		return
	}

	product, err := h.productRepo.FindByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			middleware.RespondWithError(w, http.StatusNotFound,
				fmt.Sprintf("Product with ID %s not found", id))
			return
		}
		h.logger.Error("Failed to get product", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, product)
}

// UpdateProduct handles product updates, including manual stock
// adjustments
func (h *ProductHandler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid product ID")
		return
	}

	var req UpdateProductRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		h.logger.Debug("Update product validation failed", zap.Error(err))

		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return
		}

		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	product, err := h.productRepo.FindByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			middleware.RespondWithError(w, http.StatusNotFound,
				fmt.Sprintf("Product with ID %s not found", id))
			return
		}
		h.logger.Error("Failed to get product", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}

	if conflict, msg := h.checkProductUniqueness(r, req.Slug, req.Sku, req.ProductCode, req.BarCode, id); conflict {
		if msg == "" {
			middleware.RespondWithError(w, http.StatusInternalServerError, "Internal Server Error")
			return
		}
		middleware.RespondWithError(w, http.StatusConflict, msg)
		return
	}

	product.Name = req.Name
	product.Description = req.Description
	product.BatchNumber = req.BatchNumber
	product.BarCode = req.BarCode
	product.Image = req.Image
	product.Tax = req.Tax
	product.AlertQty = req.AlertQty
	product.StockQty = req.StockQty
	product.Price = req.Price
	product.WholesalePrice = req.WholesalePrice
	product.BuyingPrice = req.BuyingPrice
	product.Sku = req.Sku
	product.ProductCode = req.ProductCode
	product.Slug = req.Slug
	product.SupplierID = req.SupplierID
	product.UnitID = req.UnitID
	product.BrandID = req.BrandID
	product.CategoryID = req.CategoryID
	product.ShopID = req.ShopID
	product.ExpiryDate = req.ExpiryDate
	product.UpdatedAt = time.Now()

	if err := h.productRepo.Update(r.Context(), product); err != nil {
		if errors.Is(err, repository.ErrProductAlreadyExists) {
			middleware.RespondWithError(w, http.StatusConflict, "product already exists")
			return
		}
		h.logger.Error("Failed to update product", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}

	h.logger.Info("Product updated", zap.String("product_id", product.ID.String()))
	middleware.RespondWithJSON(w, http.StatusOK, product)
}

// DeleteProduct removes a product
func (h *ProductHandler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid product ID")
		return
	}

	if err := h.productRepo.Delete(r.Context(), id); err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			middleware.RespondWithError(w, http.StatusNotFound,
				fmt.Sprintf("Product with ID %s not found", id))
			return
		}
		h.logger.Error("Failed to delete product", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}

	h.logger.Info("Product deleted", zap.String("product_id", id.String()))
	middleware.RespondWithJSON(w, http.StatusOK, map[string]string{"message": "product deleted successfully"})
}

// parseIntQuery reads a positive integer query parameter, falling back
// to a default
func parseIntQuery(r *http.Request, name string, fallback int) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil || value < 1 {
		return fallback
	}
	return value
}
