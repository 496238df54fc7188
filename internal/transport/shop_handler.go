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

// CreateShopRequest represents the create shop request payload
type CreateShopRequest struct {
	Name         string      `json:"name" validate:"required"`
	Slug         string      `json:"slug" validate:"required"`
	Location     string      `json:"location" validate:"required"`
	AdminID      uuid.UUID   `json:"adminId" validate:"required"`
	AttendantIDs []uuid.UUID `json:"attendantIds"`
}

// ShopHandler handles HTTP requests for shops
type ShopHandler struct {
	shopRepo repository.ShopRepository
	userRepo repository.UserRepository
	logger   *zap.Logger
}

// NewShopHandler creates a new ShopHandler
func NewShopHandler(shopRepo repository.ShopRepository, userRepo repository.UserRepository, logger *zap.Logger) *ShopHandler {
	return &ShopHandler{
		shopRepo: shopRepo,
		userRepo: userRepo,
		logger:   logger,
	}
}

// RegisterRoutes registers all shop routes
func (h *ShopHandler) RegisterRoutes(r chi.Router, authMiddleware func(http.Handler) http.Handler) {
	r.Route("/api/shops", func(r chi.Router) {
		r.Use(authMiddleware)
		r.Post("/", h.CreateShop)
		r.Get("/", h.ListShops)
		r.Get("/{id}", h.GetShop)
	})
	r.With(authMiddleware).Get("/api/attendants/shop/{shopId}", h.GetShopAttendants)
}

// CreateShop handles shop creation. Slugs are unique.
func (h *ShopHandler) CreateShop(w http.ResponseWriter, r *http.Request) {
	var req CreateShopRequest

	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		h.logger.Debug("Create shop validation failed", zap.Error(err))

		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return
		}

		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	existing, err := h.shopRepo.FindBySlug(r.Context(), req.Slug)
	if err != nil && !errors.Is(err, repository.ErrShopNotFound) {
		h.logger.Error("Failed to check existing shop", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}
	if existing != nil {
		middleware.RespondWithError(w, http.StatusConflict,
			fmt.Sprintf("Shop with this slug %s already exists", req.Slug))
		return
	}

	now := time.Now()
	shop := &domain.Shop{
		ID:           uuid.New(),
		Name:         req.Name,
		Slug:         req.Slug,
		Location:     req.Location,
		AdminID:      req.AdminID,
		AttendantIDs: req.AttendantIDs,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := h.shopRepo.Create(r.Context(), shop); err != nil {
		if errors.Is(err, repository.ErrShopAlreadyExists) {
			middleware.RespondWithError(w, http.StatusConflict,
				fmt.Sprintf("Shop with this slug %s already exists", req.Slug))
			return
		}
		h.logger.Error("Failed to create shop", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}

	h.logger.Info("Shop created", zap.String("shop_id", shop.ID.String()))
	middleware.RespondWithJSON(w, http.StatusCreated, shop)
}

// ListShops returns all shops, newest first
func (h *ShopHandler) ListShops(w http.ResponseWriter, r *http.Request) {
	shops, err := h.shopRepo.List(r.Context())
	if err != nil {
		h.logger.Error("Failed to list shops", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, shops)
}

// GetShop returns a single shop
func (h *ShopHandler) GetShop(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid shop ID")
		return
	}

	shop, err := h.shopRepo.FindByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrShopNotFound) {
			middleware.RespondWithError(w, http.StatusNotFound,
				fmt.Sprintf("Shop with ID %s not found", id))
			return
		}
		h.logger.Error("Failed to get shop", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, shop)
}

// GetShopAttendants returns the attendant accounts assigned to a shop
func (h *ShopHandler) GetShopAttendants(w http.ResponseWriter, r *http.Request) {
	shopID, err := uuid.Parse(chi.URLParam(r, "shopId"))
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid shop ID")
		return
	}

	shop, err := h.shopRepo.FindByID(r.Context(), shopID)
	if err != nil {
		if errors.Is(err, repository.ErrShopNotFound) {
			middleware.RespondWithError(w, http.StatusNotFound,
				fmt.Sprintf("Shop with ID %s not found", shopID))
			return
		}
		h.logger.Error("Failed to get shop", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}

	if len(shop.AttendantIDs) == 0 {
		middleware.RespondWithJSON(w, http.StatusOK, []*domain.User{})
		return
	}

	attendants, err := h.userRepo.ListByIDs(r.Context(), shop.AttendantIDs)
	if err != nil {
		h.logger.Error("Failed to list shop attendants", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, attendants)
}
