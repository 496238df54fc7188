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

// CreateCustomerRequest represents the create customer request payload
type CreateCustomerRequest struct {
	CustomerType     string     `json:"customerType" validate:"required,oneof=RETAIL WHOLESALE DISTRIBUTOR OTHER"`
	FirstName        string     `json:"firstName" validate:"required"`
	LastName         string     `json:"lastName" validate:"required"`
	Phone            string     `json:"phone" validate:"required"`
	Gender           string     `json:"gender" validate:"required,oneof=MALE FEMALE"`
	Country          string     `json:"country" validate:"required"`
	Location         string     `json:"location" validate:"required"`
	MaxCreditLimit   float64    `json:"maxCreditLimit" validate:"gte=0"`
	MaxCreditDays    int        `json:"maxCreditDays" validate:"gte=0"`
	TaxPin           *string    `json:"taxPin"`
	Dob              *time.Time `json:"dob"`
	Email            *string    `json:"email" validate:"omitempty,email"`
	NationalIDNumber *string    `json:"nationalIdNumber"`
}

// CustomerHandler handles HTTP requests for customers
type CustomerHandler struct {
	customerRepo repository.CustomerRepository
	logger       *zap.Logger
}

// NewCustomerHandler creates a new CustomerHandler
func NewCustomerHandler(customerRepo repository.CustomerRepository, logger *zap.Logger) *CustomerHandler {
	return &CustomerHandler{
		customerRepo: customerRepo,
		logger:       logger,
	}
}

// RegisterRoutes registers all customer routes
func (h *CustomerHandler) RegisterRoutes(r chi.Router, authMiddleware func(http.Handler) http.Handler) {
	r.Route("/api/customers", func(r chi.Router) {
		r.Use(authMiddleware)
		r.Post("/", h.CreateCustomer)
		r.Get("/", h.ListCustomers)
		r.Get("/{id}", h.GetCustomer)
	})
}

// CreateCustomer handles customer creation. Phone is always unique;
// email and national ID are unique when present.
func (h *CustomerHandler) CreateCustomer(w http.ResponseWriter, r *http.Request) {
	var req CreateCustomerRequest

	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		h.logger.Debug("Create customer validation failed", zap.Error(err))

		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return
		}

		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.Email != nil {
		existing, err := h.customerRepo.FindByEmail(r.Context(), *req.Email)
		if err != nil && !errors.Is(err, repository.ErrCustomerNotFound) {
			h.logger.Error("Failed to check existing customer", zap.Error(err))
			middleware.RespondWithError(w, http.StatusInternalServerError, "Internal Server Error")
			return
		}
		if existing != nil {
			middleware.RespondWithError(w, http.StatusConflict,
				fmt.Sprintf("Customer with this email %s already exists", *req.Email))
			return
		}
	}

	existingByPhone, err := h.customerRepo.FindByPhone(r.Context(), req.Phone)
	if err != nil && !errors.Is(err, repository.ErrCustomerNotFound) {
		h.logger.Error("Failed to check existing customer", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}
	if existingByPhone != nil {
		middleware.RespondWithError(w, http.StatusConflict,
			fmt.Sprintf("Customer with this Phone Number %s already exists", req.Phone))
		return
	}

	if req.NationalIDNumber != nil {
		existing, err := h.customerRepo.FindByNationalID(r.Context(), *req.NationalIDNumber)
		if err != nil && !errors.Is(err, repository.ErrCustomerNotFound) {
			h.logger.Error("Failed to check existing customer", zap.Error(err))
			middleware.RespondWithError(w, http.StatusInternalServerError, "Internal Server Error")
			return
		}
		if existing != nil {
			middleware.RespondWithError(w, http.StatusConflict,
				fmt.Sprintf("Customer with this National ID Number %s already exists", *req.NationalIDNumber))
			return
		}
	}

	now := time.Now()
	customer := &domain.Customer{
		ID:                 uuid.New(),
		CustomerType:       req.CustomerType,
		FirstName:          req.FirstName,
		LastName:           req.LastName,
		Phone:              req.Phone,
		Gender:             req.Gender,
		Country:            req.Country,
		Location:           req.Location,
		MaxCreditLimit:     req.MaxCreditLimit,
		MaxCreditDays:      req.MaxCreditDays,
		UnpaidCreditAmount: 0,
		TaxPin:             req.TaxPin,
		Dob:                req.Dob,
		Email:              req.Email,
		NationalIDNumber:   req.NationalIDNumber,
		CreatedAt:          now,
		UpdatedAt:          now,
	}

	if err := h.customerRepo.Create(r.Context(), customer); err != nil {
		if errors.Is(err, repository.ErrCustomerAlreadyExists) {
			middleware.RespondWithError(w, http.StatusConflict, "customer already exists")
			return
		}
		h.logger.Error("Failed to create customer", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}

	h.logger.Info("Customer created", zap.String("customer_id", customer.ID.String()))
	middleware.RespondWithJSON(w, http.StatusCreated, customer)
}

// ListCustomers returns all customers, newest first
func (h *CustomerHandler) ListCustomers(w http.ResponseWriter, r *http.Request) {
	customers, err := h.customerRepo.List(r.Context())
	if err != nil {
		h.logger.Error("Failed to list customers", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, customers)
}

// GetCustomer returns a single customer
func (h *CustomerHandler) GetCustomer(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid customer ID")
		return
	}

	customer, err := h.customerRepo.FindByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrCustomerNotFound) {
			middleware.RespondWithError(w, http.StatusNotFound,
				fmt.Sprintf("Customer with ID %s not found", id))
			return
		}
		h.logger.Error("Failed to get customer", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, customer)
}
