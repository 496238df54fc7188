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

// CreateSupplierRequest represents the create supplier request payload
type CreateSupplierRequest struct {
	SupplierType      string   `json:"supplierType" validate:"required,oneof=MANUFACTURER DISTRIBUTOR WHOLESALER RETAILER OTHER"`
	Name              string   `json:"name" validate:"required"`
	ContactPerson     string   `json:"contactPerson" validate:"required"`
	Phone             string   `json:"phone" validate:"required"`
	Email             *string  `json:"email" validate:"omitempty,email"`
	Location          string   `json:"location" validate:"required"`
	Country           string   `json:"country" validate:"required"`
	Website           *string  `json:"website"`
	TaxPin            *string  `json:"taxPin"`
	RegNumber         *string  `json:"regNumber"`
	BankAccountNumber *string  `json:"bankAccountNumber"`
	BankName          *string  `json:"bankName"`
	PaymentTerms      *string  `json:"paymentTerms"`
	Logo              *string  `json:"logo"`
	Rating            *float64 `json:"rating" validate:"omitempty,gte=0,lte=5"`
	Notes             *string  `json:"notes"`
}

// SupplierHandler handles HTTP requests for suppliers
type SupplierHandler struct {
	supplierRepo repository.SupplierRepository
	logger       *zap.Logger
}

// NewSupplierHandler creates a new SupplierHandler
func NewSupplierHandler(supplierRepo repository.SupplierRepository, logger *zap.Logger) *SupplierHandler {
	return &SupplierHandler{
		supplierRepo: supplierRepo,
		logger:       logger,
	}
}

// RegisterRoutes registers all supplier routes
func (h *SupplierHandler) RegisterRoutes(r chi.Router, authMiddleware func(http.Handler) http.Handler) {
	r.Route("/api/suppliers", func(r chi.Router) {
		r.Use(authMiddleware)
		r.Post("/", h.CreateSupplier)
		r.Get("/", h.ListSuppliers)
		r.Get("/{id}", h.GetSupplier)
	})
}

// CreateSupplier handles supplier creation. Phone is always unique;
// email and registration number are unique when present.
func (h *SupplierHandler) CreateSupplier(w http.ResponseWriter, r *http.Request) {
	var req CreateSupplierRequest

	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		h.logger.Debug("Create supplier validation failed", zap.Error(err))

		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return
		}

		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.Email != nil {
		existing, err := h.supplierRepo.FindByEmail(r.Context(), *req.Email)
		if err != nil && !errors.Is(err, repository.ErrSupplierNotFound) {
			h.logger.Error("Failed to check existing supplier", zap.Error(err))
			middleware.RespondWithError(w, http.StatusInternalServerError, "Internal Server Error")
			return
		}
		if existing != nil {
			middleware.RespondWithError(w, http.StatusConflict,
				fmt.Sprintf("Supplier with this email %s already exists", *req.Email))
			return
		}
	}

	existingByPhone, err := h.supplierRepo.FindByPhone(r.Context(), req.Phone)
	if err != nil && !errors.Is(err, repository.ErrSupplierNotFound) {
		h.logger.Error("Failed to check existing supplier", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}
	if existingByPhone != nil {
		middleware.RespondWithError(w, http.StatusConflict,
			fmt.Sprintf("Supplier with this Phone Number %s already exists", req.Phone))
		return
	}

	if req.RegNumber != nil {
		existing, err := h.supplierRepo.FindByRegNumber(r.Context(), *req.RegNumber)
		if err != nil && !errors.Is(err, repository.ErrSupplierNotFound) {
			h.logger.Error("Failed to check existing supplier", zap.Error(err))
			middleware.RespondWithError(w, http.StatusInternalServerError, "Internal Server Error")
			return
		}
		if existing != nil {
			middleware.RespondWithError(w, http.StatusConflict,
				fmt.Sprintf("Supplier with this Registration Number %s already exists", *req.RegNumber))
			return
		}
	}

	now := time.Now()
	supplier := &domain.Supplier{
		ID:                uuid.New(),
		SupplierType:      req.SupplierType,
		Name:              req.Name,
		ContactPerson:     req.ContactPerson,
		Phone:             req.Phone,
		Email:             req.Email,
		Location:          req.Location,
		Country:           req.Country,
		Website:           req.Website,
		TaxPin:            req.TaxPin,
		RegNumber:         req.RegNumber,
		BankAccountNumber: req.BankAccountNumber,
		BankName:          req.BankName,
		PaymentTerms:      req.PaymentTerms,
		Logo:              req.Logo,
		Rating:            req.Rating,
		Notes:             req.Notes,
		CreatedAt:         now,
		UpdatedAt:         now,
	}

	if err := h.supplierRepo.Create(r.Context(), supplier); err != nil {
		if errors.Is(err, repository.ErrSupplierAlreadyExists) {
			middleware.RespondWithError(w, http.StatusConflict, "supplier already exists")
			return
		}
		h.logger.Error("Failed to create supplier", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}

	h.logger.Info("Supplier created", zap.String("supplier_id", supplier.ID.String()))
	middleware.RespondWithJSON(w, http.StatusCreated, supplier)
}

// ListSuppliers returns all suppliers, newest first
func (h *SupplierHandler) ListSuppliers(w http.ResponseWriter, r *http.Request) {
	suppliers, err := h.supplierRepo.List(r.Context())
	if err != nil {
		h.logger.Error("Failed to list suppliers", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, suppliers)
}

// GetSupplier returns a single supplier
func (h *SupplierHandler) GetSupplier(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid supplier ID")
		return
	}

	supplier, err := h.supplierRepo.FindByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrSupplierNotFound) {
			middleware.RespondWithError(w, http.StatusNotFound,
				fmt.Sprintf("Supplier with ID %s not found", id))
			return
		}
		h.logger.Error("Failed to get supplier", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, supplier)
}
