package transport

import (
	"errors"
	"fmt"
	"net/http"

	"retail-pos/internal/domain"
	"retail-pos/internal/middleware"
	"retail-pos/internal/repository"
	"retail-pos/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// CreateSaleRequest represents the checkout request payload
type CreateSaleRequest struct {
	CustomerID      *uuid.UUID              `json:"customerId"`
	CustomerName    string                  `json:"customerName" validate:"required"`
	CustomerEmail   string                  `json:"customerEmail" validate:"omitempty,email"`
	SaleAmount      float64                 `json:"saleAmount" validate:"gte=0"`
	BalanceAmount   float64                 `json:"balanceAmount" validate:"gte=0"`
	PaidAmount      float64                 `json:"paidAmount" validate:"gte=0"`
	SaleType        string                  `json:"saleType" validate:"required,oneof=PAID CREDIT"`
	PaymentMethod   string                  `json:"paymentMethod" validate:"required,oneof=CASH UPI"`
	ShopID          uuid.UUID               `json:"shopId" validate:"required"`
	TransactionCode string                  `json:"transactionCode"`
	SaleItems       []CreateSaleItemRequest `json:"saleItems" validate:"required,min=1,dive"`
}

// CreateSaleItemRequest represents one line item in a checkout request
type CreateSaleItemRequest struct {
	ProductID    uuid.UUID `json:"productId" validate:"required"`
	Qty          int       `json:"qty" validate:"required,gt=0"`
	ProductPrice float64   `json:"productPrice" validate:"gte=0"`
	ProductName  string    `json:"productName" validate:"required"`
	ProductImage string    `json:"productImage"`
}

// AddSaleItemRequest represents a standalone sale item append request
type AddSaleItemRequest struct {
	SaleID       uuid.UUID `json:"saleId" validate:"required"`
	ProductID    uuid.UUID `json:"productId" validate:"required"`
	Qty          int       `json:"qty" validate:"required,gt=0"`
	ProductPrice float64   `json:"productPrice" validate:"gte=0"`
	ProductName  string    `json:"productName" validate:"required"`
	ProductImage string    `json:"productImage"`
}

// SaleHandler handles HTTP requests for sales and sales reports
type SaleHandler struct {
	saleService   service.SaleService
	reportService service.ReportService
	logger        *zap.Logger
}

// NewSaleHandler creates a new SaleHandler
func NewSaleHandler(saleService service.SaleService, reportService service.ReportService, logger *zap.Logger) *SaleHandler {
	return &SaleHandler{
		saleService:   saleService,
		reportService: reportService,
		logger:        logger,
	}
}

// RegisterRoutes registers all sale routes
func (h *SaleHandler) RegisterRoutes(r chi.Router, authMiddleware func(http.Handler) http.Handler) {
	r.Route("/api/sales", func(r chi.Router) {
		r.Use(authMiddleware)
		r.Post("/", h.CreateSale)
		r.Get("/", h.ListSales)
		r.Post("/item", h.AddSaleItem)
		r.Get("/all-shops", h.AllShopsSales)
		r.Get("/shop/{shopId}", h.ShopSales)
		r.Get("/shop", h.ShopSales)
		r.Get("/{id}", h.GetSale)
	})
}

// CreateSale handles checkout. The whole sale, its line items, stock
// decrements and any customer credit extension succeed or fail as one
// transaction.
func (h *SaleHandler) CreateSale(w http.ResponseWriter, r *http.Request) {
	var req CreateSaleRequest

	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		h.logger.Debug("Create sale validation failed", zap.Error(err))

		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return
		}

		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	input := service.CreateSaleInput{
		CustomerID:      req.CustomerID,
		CustomerName:    req.CustomerName,
		CustomerEmail:   req.CustomerEmail,
		SaleAmount:      req.SaleAmount,
		BalanceAmount:   req.BalanceAmount,
		PaidAmount:      req.PaidAmount,
		SaleType:        domain.SaleType(req.SaleType),
		PaymentMethod:   domain.PaymentMethod(req.PaymentMethod),
		ShopID:          req.ShopID,
		TransactionCode: req.TransactionCode,
	}
	for _, item := range req.SaleItems {
		input.Items = append(input.Items, service.CreateSaleItemInput{
			ProductID:    item.ProductID,
			Qty:          item.Qty,
			ProductPrice: item.ProductPrice,
			ProductName:  item.ProductName,
			ProductImage: item.ProductImage,
		})
	}

	sale, err := h.saleService.CreateSale(r.Context(), input)
	if err != nil {
		h.respondSaleError(w, req, err)
		return
	}

	h.logger.Info("Sale created",
		zap.String("sale_id", sale.ID.String()),
		zap.String("sale_number", sale.SaleNumber),
		zap.Float64("sale_amount", sale.SaleAmount),
	)
	middleware.RespondWithJSON(w, http.StatusCreated, sale)
}

// respondSaleError maps coordinator outcomes to HTTP status codes
func (h *SaleHandler) respondSaleError(w http.ResponseWriter, req CreateSaleRequest, err error) {
	switch {
	case errors.Is(err, service.ErrNoSaleItems):
		middleware.RespondWithError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrAmountMismatch):
		middleware.RespondWithError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, repository.ErrCustomerNotFound):
		customerID := ""
		if req.CustomerID != nil {
			customerID = req.CustomerID.String()
		}
		middleware.RespondWithError(w, http.StatusNotFound,
			fmt.Sprintf("Customer with ID %s not found", customerID))
	case errors.Is(err, repository.ErrCreditLimitExceeded):
		middleware.RespondWithError(w, http.StatusForbidden,
			fmt.Sprintf("Customer exceeds max credit limit of %.2f", req.BalanceAmount))
	case errors.Is(err, repository.ErrProductNotFound):
		middleware.RespondWithError(w, http.StatusNotFound, "product not found")
	case errors.Is(err, repository.ErrInsufficientStock):
		middleware.RespondWithError(w, http.StatusConflict, "insufficient stock")
	default:
		h.logger.Error("Sale transaction failed", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "Internal Server Error")
	}
}

// AddSaleItem appends a line item to an existing sale, decrementing the
// product's stock
func (h *SaleHandler) AddSaleItem(w http.ResponseWriter, r *http.Request) {
	var req AddSaleItemRequest

	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		h.logger.Debug("Add sale item validation failed", zap.Error(err))

		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return
		}

		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	item, err := h.saleService.AddSaleItem(r.Context(), req.SaleID, service.CreateSaleItemInput{
		ProductID:    req.ProductID,
		Qty:          req.Qty,
		ProductPrice: req.ProductPrice,
		ProductName:  req.ProductName,
		ProductImage: req.ProductImage,
	})
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrSaleNotFound):
			middleware.RespondWithError(w, http.StatusNotFound,
				fmt.Sprintf("Sale with ID %s not found", req.SaleID))
		case errors.Is(err, repository.ErrProductNotFound):
			middleware.RespondWithError(w, http.StatusNotFound,
				fmt.Sprintf("Product with ID %s not found", req.ProductID))
		case errors.Is(err, repository.ErrInsufficientStock):
			middleware.RespondWithError(w, http.StatusConflict, "insufficient stock")
		default:
			h.logger.Error("Failed to add sale item", zap.Error(err))
			middleware.RespondWithError(w, http.StatusInternalServerError, "Internal Server Error")
		}
		return
	}

	h.logger.Info("Sale item added",
		zap.String("sale_id", req.SaleID.String()),
		zap.String("product_id", req.ProductID.String()),
	)
	middleware.RespondWithJSON(w, http.StatusCreated, item)
}

// ListSales returns all sales with their line items, newest first
func (h *SaleHandler) ListSales(w http.ResponseWriter, r *http.Request) {
	sales, err := h.saleService.ListSales(r.Context())
	if err != nil {
		h.logger.Error("Failed to list sales", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, sales)
}

// GetSale returns a single sale with its line items
func (h *SaleHandler) GetSale(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid sale ID")
		return
	}

	sale, err := h.saleService.GetSale(r.Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrSaleNotFound) {
			middleware.RespondWithError(w, http.StatusNotFound,
				fmt.Sprintf("Sale with ID %s not found", id))
			return
		}
		h.logger.Error("Failed to get sale", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, sale)
}

// ShopSales returns the per-period sales report for one shop. The shop
// may be addressed by path segment or by a shopId query parameter.
func (h *SaleHandler) ShopSales(w http.ResponseWriter, r *http.Request) {
	raw := chi.URLParam(r, "shopId")
	if raw == "" {
		raw = r.URL.Query().Get("shopId")
	}
	shopID, err := uuid.Parse(raw)
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid shop ID")
		return
	}

	report, err := h.reportService.ShopSales(r.Context(), shopID)
	if err != nil {
		if errors.Is(err, repository.ErrShopNotFound) {
			middleware.RespondWithError(w, http.StatusNotFound,
				fmt.Sprintf("Shop with ID %s not found", shopID))
			return
		}
		h.logger.Error("Failed to build shop sales report", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, report)
}

// AllShopsSales returns the per-period sales report across every shop
func (h *SaleHandler) AllShopsSales(w http.ResponseWriter, r *http.Request) {
	report, err := h.reportService.AllShopsSales(r.Context())
	if err != nil {
		h.logger.Error("Failed to build sales report", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, report)
}
