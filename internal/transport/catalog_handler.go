package transport

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"retail-pos/internal/domain"
	"retail-pos/internal/middleware"
	"retail-pos/internal/repository"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// CreateBrandRequest represents the create/update brand payload
type CreateBrandRequest struct {
	Name string `json:"name" validate:"required"`
	Slug string `json:"slug" validate:"required"`
}

// CreateCategoryRequest represents the create/update category payload
type CreateCategoryRequest struct {
	Name string `json:"name" validate:"required"`
	Slug string `json:"slug" validate:"required"`
}

// CreateUnitRequest represents the create/update unit payload
type CreateUnitRequest struct {
	Name         string `json:"name" validate:"required"`
	Abbreviation string `json:"abbreviation" validate:"required"`
	Slug         string `json:"slug" validate:"required"`
}

// CatalogHandler handles HTTP requests for brands, categories and units
type CatalogHandler struct {
	brandRepo    repository.BrandRepository
	categoryRepo repository.CategoryRepository
	unitRepo     repository.UnitRepository
	logger       *zap.Logger
}

// NewCatalogHandler creates a new CatalogHandler
func NewCatalogHandler(
	brandRepo repository.BrandRepository,
	categoryRepo repository.CategoryRepository,
	unitRepo repository.UnitRepository,
	logger *zap.Logger,
) *CatalogHandler {
	return &CatalogHandler{
		brandRepo:    brandRepo,
		categoryRepo: categoryRepo,
		unitRepo:     unitRepo,
		logger:       logger,
	}
}

// RegisterRoutes registers brand, category and unit routes
func (h *CatalogHandler) RegisterRoutes(r chi.Router, authMiddleware func(http.Handler) http.Handler) {
	r.Route("/api/brands", func(r chi.Router) {
		r.Use(authMiddleware)
		r.Post("/", h.CreateBrand)
		r.Get("/", h.ListBrands)
		r.Get("/{id}", h.GetBrand)
		r.Put("/{id}", h.UpdateBrand)
		r.Delete("/{id}", h.DeleteBrand)
	})

	r.Route("/api/categories", func(r chi.Router) {
		r.Use(authMiddleware)
		r.Post("/", h.CreateCategory)
		r.Get("/", h.ListCategories)
		r.Get("/{id}", h.GetCategory)
		r.Put("/{id}", h.UpdateCategory)
		r.Delete("/{id}", h.DeleteCategory)
	})

	r.Route("/api/units", func(r chi.Router) {
		r.Use(authMiddleware)
		r.Post("/", h.CreateUnit)
		r.Get("/", h.ListUnits)
		r.Get("/{id}", h.GetUnit)
		r.Put("/{id}", h.UpdateUnit)
		r.Delete("/{id}", h.DeleteUnit)
	})
}

// CreateBrand handles brand creation. Slugs are unique.
func (h *CatalogHandler) CreateBrand(w http.ResponseWriter, r *http.Request) {
	var req CreateBrandRequest
	if !h.decode(w, r, &req) {
		return
	}

	now := time.Now()
	brand := &domain.Brand{
		ID:        uuid.New(),
		Name:      req.Name,
		Slug:      req.Slug,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := h.brandRepo.Create(r.Context(), brand); err != nil {
		if errors.Is(err, repository.ErrBrandAlreadyExists) {
			middleware.RespondWithError(w, http.StatusConflict,
				fmt.Sprintf("Brand with this slug %s already exists", req.Slug))
			return
		}
		h.logger.Error("Failed to create brand", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}

	middleware.RespondWithJSON(w, http.StatusCreated, brand)
}

// ListBrands returns all brands, newest first
func (h *CatalogHandler) ListBrands(w http.ResponseWriter, r *http.Request) {
	brands, err := h.brandRepo.List(r.Context())
	if err != nil {
		h.logger.Error("Failed to list brands", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}
	middleware.RespondWithJSON(w, http.StatusOK, brands)
}

// GetBrand returns a single brand
func (h *CatalogHandler) GetBrand(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}

	brand, err := h.brandRepo.FindByID(r.Context(), id)
	if err != nil {
		h.respondCatalogError(w, err, repository.ErrBrandNotFound, "Brand", id)
		return
	}
	middleware.RespondWithJSON(w, http.StatusOK, brand)
}

// UpdateBrand handles brand updates
func (h *CatalogHandler) UpdateBrand(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}

	var req CreateBrandRequest
	if !h.decode(w, r, &req) {
		return
	}

	brand, err := h.brandRepo.FindByID(r.Context(), id)
	if err != nil {
		h.respondCatalogError(w, err, repository.ErrBrandNotFound, "Brand", id)
		return
	}

	brand.Name = req.Name
	brand.Slug = req.Slug
	brand.UpdatedAt = time.Now()

	if err := h.brandRepo.Update(r.Context(), brand); err != nil {
		if errors.Is(err, repository.ErrBrandAlreadyExists) {
			middleware.RespondWithError(w, http.StatusConflict,
				fmt.Sprintf("Brand with this slug %s already exists", req.Slug))
			return
		}
		h.respondCatalogError(w, err, repository.ErrBrandNotFound, "Brand", id)
		return
	}
	middleware.RespondWithJSON(w, http.StatusOK, brand)
}

// DeleteBrand removes a brand
func (h *CatalogHandler) DeleteBrand(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}

	if err := h.brandRepo.Delete(r.Context(), id); err != nil {
		h.respondCatalogError(w, err, repository.ErrBrandNotFound, "Brand", id)
		return
	}
	middleware.RespondWithJSON(w, http.StatusOK, map[string]string{"message": "brand deleted successfully"})
}

// CreateCategory handles category creation. Slugs are unique.
func (h *CatalogHandler) CreateCategory(w http.ResponseWriter, r *http.Request) {
	var req CreateCategoryRequest
	if !h.decode(w, r, &req) {
		return
	}

	now := time.Now()
	category := &domain.Category{
		ID:        uuid.New(),
		Name:      req.Name,
		Slug:      req.Slug,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := h.categoryRepo.Create(r.Context(), category); err != nil {
		if errors.Is(err, repository.ErrCategoryAlreadyExists) {
			middleware.RespondWithError(w, http.StatusConflict,
				fmt.Sprintf("Category with this slug %s already exists", req.Slug))
			return
		}
		h.logger.Error("Failed to create category", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}

	middleware.RespondWithJSON(w, http.StatusCreated, category)
}

// ListCategories returns all categories, newest first
func (h *CatalogHandler) ListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.categoryRepo.List(r.Context())
	if err != nil {
		h.logger.Error("Failed to list categories", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}
	middleware.RespondWithJSON(w, http.StatusOK, categories)
}

// GetCategory returns a single category
func (h *CatalogHandler) GetCategory(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}

	category, err := h.categoryRepo.FindByID(r.Context(), id)
	if err != nil {
		h.respondCatalogError(w, err, repository.ErrCategoryNotFound, "Category", id)
		return
	}
	middleware.RespondWithJSON(w, http.StatusOK, category)
}

// UpdateCategory handles category updates
func (h *CatalogHandler) UpdateCategory(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}

	var req CreateCategoryRequest
	if !h.decode(w, r, &req) {
		return
	}

	category, err := h.categoryRepo.FindByID(r.Context(), id)
	if err != nil {
		h.respondCatalogError(w, err, repository.ErrCategoryNotFound, "Category", id)
		return
	}

	category.Name = req.Name
	category.Slug = req.Slug
	category.UpdatedAt = time.Now()

	if err := h.categoryRepo.Update(r.Context(), category); err != nil {
		if errors.Is(err, repository.ErrCategoryAlreadyExists) {
			middleware.RespondWithError(w, http.StatusConflict,
				fmt.Sprintf("Category with this slug %s already exists", req.Slug))
			return
		}
		h.respondCatalogError(w, err, repository.ErrCategoryNotFound, "Category", id)
		return
	}
	middleware.RespondWithJSON(w, http.StatusOK, category)
}

// DeleteCategory removes a category
func (h *CatalogHandler) DeleteCategory(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}

	if err := h.categoryRepo.Delete(r.Context(), id); err != nil {
		h.respondCatalogError(w, err, repository.ErrCategoryNotFound, "Category", id)
		return
	}
	middleware.RespondWithJSON(w, http.StatusOK, map[string]string{"message": "category deleted successfully"})
}

// CreateUnit handles unit creation. Slugs are unique.
func (h *CatalogHandler) CreateUnit(w http.ResponseWriter, r *http.Request) {
	var req CreateUnitRequest
	if !h.decode(w, r, &req) {
		return
	}

	now := time.Now()
	unit := &domain.Unit{
		ID:           uuid.New(),
		Name:         req.Name,
		Abbreviation: req.Abbreviation,
		Slug:         req.Slug,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := h.unitRepo.Create(r.Context(), unit); err != nil {
		if errors.Is(err, repository.ErrUnitAlreadyExists) {
			middleware.RespondWithError(w, http.StatusConflict,
				fmt.Sprintf("Unit with this slug %s already exists", req.Slug))
			return
		}
		h.logger.Error("Failed to create unit", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}

	middleware.RespondWithJSON(w, http.StatusCreated, unit)
}

// ListUnits returns all units, newest first
func (h *CatalogHandler) ListUnits(w http.ResponseWriter, r *http.Request) {
	units, err := h.unitRepo.List(r.Context())
	if err != nil {
		h.logger.Error("Failed to list units", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}
	middleware.RespondWithJSON(w, http.StatusOK, units)
}

// GetUnit returns a single unit
func (h *CatalogHandler) GetUnit(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}

	unit, err := h.unitRepo.FindByID(r.Context(), id)
	if err != nil {
		h.respondCatalogError(w, err, repository.ErrUnitNotFound, "Unit", id)
		return
	}
	middleware.RespondWithJSON(w, http.StatusOK, unit)
}

// UpdateUnit handles unit updates
func (h *CatalogHandler) UpdateUnit(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}

	var req CreateUnitRequest
	if !h.decode(w, r, &req) {
		return
	}

	unit, err := h.unitRepo.FindByID(r.Context(), id)
	if err != nil {
		h.respondCatalogError(w, err, repository.ErrUnitNotFound, "Unit", id)
		return
	}

	unit.Name = req.Name
	unit.Abbreviation = req.Abbreviation
	unit.Slug = req.Slug
	unit.UpdatedAt = time.Now()

	if err := h.unitRepo.Update(r.Context(), unit); err != nil {
		if errors.Is(err, repository.ErrUnitAlreadyExists) {
			middleware.RespondWithError(w, http.StatusConflict,
				fmt.Sprintf("Unit with this slug %s already exists", req.Slug))
			return
		}
		h.respondCatalogError(w, err, repository.ErrUnitNotFound, "Unit", id)
		return
	}
	middleware.RespondWithJSON(w, http.StatusOK, unit)
}

// DeleteUnit removes a unit
func (h *CatalogHandler) DeleteUnit(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}

	if err := h.unitRepo.Delete(r.Context(), id); err != nil {
		h.respondCatalogError(w, err, repository.ErrUnitNotFound, "Unit", id)
		return
	}
	middleware.RespondWithJSON(w, http.StatusOK, map[string]string{"message": "unit deleted successfully"})
}

// decode decodes and validates a request body, writing the error
// response itself when the body is bad
func (h *CatalogHandler) decode(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	if err := middleware.DecodeAndValidate(r, v); err != nil {
		h.logger.Debug("Catalog validation failed", zap.Error(err))

		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return false
		}

		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	return true
}

// parseID parses the id URL parameter
func (h *CatalogHandler) parseID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid ID")
		return uuid.Nil, false
	}
	return id, true
}

// respondCatalogError maps repository outcomes for catalog entities
func (h *CatalogHandler) respondCatalogError(w http.ResponseWriter, err, notFound error, entity string, id uuid.UUID) {
	if errors.Is(err, notFound) {
		middleware.RespondWithError(w, http.StatusNotFound,
			fmt.Sprintf("%s with ID %s not found", entity, id))
		return
	}
	h.logger.Error("Catalog operation failed", zap.Error(err))
	middleware.RespondWithError(w, http.StatusInternalServerError, "Internal Server Error")
}
