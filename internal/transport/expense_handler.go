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

// CreateExpenseCategoryRequest represents the create/update expense
// category payload
type CreateExpenseCategoryRequest struct {
	Name string `json:"name" validate:"required"`
	Slug string `json:"slug" validate:"required"`
}

// CreatePayeeRequest represents the create/update payee payload
type CreatePayeeRequest struct {
	Name  string `json:"name" validate:"required"`
	Phone string `json:"phone" validate:"required"`
}

// CreateExpenseRequest represents the create/update expense payload
type CreateExpenseRequest struct {
	Title       string     `json:"title" validate:"required"`
	Amount      float64    `json:"amount" validate:"required,gt=0"`
	Description *string    `json:"description"`
	Attachments []string   `json:"attachments"`
	ExpenseDate *time.Time `json:"expenseDate"`
	PayeeID     uuid.UUID  `json:"payeeId" validate:"required"`
	CategoryID  uuid.UUID  `json:"categoryId" validate:"required"`
	ShopID      uuid.UUID  `json:"shopId" validate:"required"`
}

// ExpenseHandler handles HTTP requests for expenses, expense categories
// and payees
type ExpenseHandler struct {
	expenseRepo  repository.ExpenseRepository
	categoryRepo repository.ExpenseCategoryRepository
	payeeRepo    repository.PayeeRepository
	logger       *zap.Logger
}

// NewExpenseHandler creates a new ExpenseHandler
func NewExpenseHandler(
	expenseRepo repository.ExpenseRepository,
	categoryRepo repository.ExpenseCategoryRepository,
	payeeRepo repository.PayeeRepository,
	logger *zap.Logger,
) *ExpenseHandler {
	return &ExpenseHandler{
		expenseRepo:  expenseRepo,
		categoryRepo: categoryRepo,
		payeeRepo:    payeeRepo,
		logger:       logger,
	}
}

// RegisterRoutes registers expense, expense category and payee routes
func (h *ExpenseHandler) RegisterRoutes(r chi.Router, authMiddleware func(http.Handler) http.Handler) {
	r.Route("/api/expense-categories", func(r chi.Router) {
		r.Use(authMiddleware)
		r.Post("/", h.CreateExpenseCategory)
		r.Get("/", h.ListExpenseCategories)
		r.Get("/{id}", h.GetExpenseCategory)
		r.Put("/{id}", h.UpdateExpenseCategory)
		r.Delete("/{id}", h.DeleteExpenseCategory)
	})

	r.Route("/api/payees", func(r chi.Router) {
		r.Use(authMiddleware)
		r.Post("/", h.CreatePayee)
		r.Get("/", h.ListPayees)
		r.Get("/{id}", h.GetPayee)
		r.Put("/{id}", h.UpdatePayee)
		r.Delete("/{id}", h.DeletePayee)
	})

	r.Route("/api/expenses", func(r chi.Router) {
		r.Use(authMiddleware)
		r.Post("/", h.CreateExpense)
		r.Get("/", h.ListExpenses)
		r.Get("/{id}", h.GetExpense)
		r.Put("/{id}", h.UpdateExpense)
		r.Delete("/{id}", h.DeleteExpense)
	})
}

// CreateExpenseCategory handles expense category creation. Slugs are
// unique.
func (h *ExpenseHandler) CreateExpenseCategory(w http.ResponseWriter, r *http.Request) {
	var req CreateExpenseCategoryRequest
	if !h.decode(w, r, &req) {
		return
	}

	now := time.Now()
	category := &domain.ExpenseCategory{
		ID:        uuid.New(),
		Name:      req.Name,
		Slug:      req.Slug,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := h.categoryRepo.Create(r.Context(), category); err != nil {
		if errors.Is(err, repository.ErrExpenseCategoryAlreadyExists) {
			middleware.RespondWithError(w, http.StatusConflict,
				fmt.Sprintf("Expense category with this slug %s already exists", req.Slug))
			return
		}
		h.logger.Error("Failed to create expense category", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}

	middleware.RespondWithJSON(w, http.StatusCreated, category)
}

// ListExpenseCategories returns all expense categories, newest first
func (h *ExpenseHandler) ListExpenseCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.categoryRepo.List(r.Context())
	if err != nil {
		h.logger.Error("Failed to list expense categories", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}
	middleware.RespondWithJSON(w, http.StatusOK, categories)
}

// GetExpenseCategory returns a single expense category
func (h *ExpenseHandler) GetExpenseCategory(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}

	category, err := h.categoryRepo.FindByID(r.Context(), id)
	if err != nil {
		h.respondExpenseError(w, err, repository.ErrExpenseCategoryNotFound, "Expense category", id)
		return
	}
	middleware.RespondWithJSON(w, http.StatusOK, category)
}

// UpdateExpenseCategory handles expense category updates
func (h *ExpenseHandler) UpdateExpenseCategory(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}

	var req CreateExpenseCategoryRequest
	if !h.decode(w, r, &req) {
		return
	}

	category, err := h.categoryRepo.FindByID(r.Context(), id)
	if err != nil {
		h.respondExpenseError(w, err, repository.ErrExpenseCategoryNotFound, "Expense category", id)
		return
	}

	category.Name = req.Name
	category.Slug = req.Slug
	category.UpdatedAt = time.Now()

	if err := h.categoryRepo.Update(r.Context(), category); err != nil {
		if errors.Is(err, repository.ErrExpenseCategoryAlreadyExists) {
			middleware.RespondWithError(w, http.StatusConflict,
				fmt.Sprintf("Expense category with this slug %s already exists", req.Slug))
			return
		}
		h.respondExpenseError(w, err, repository.ErrExpenseCategoryNotFound, "Expense category", id)
		return
	}
	middleware.RespondWithJSON(w, http.StatusOK, category)
}

// DeleteExpenseCategory removes an expense category
func (h *ExpenseHandler) DeleteExpenseCategory(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}

	if err := h.categoryRepo.Delete(r.Context(), id); err != nil {
		h.respondExpenseError(w, err, repository.ErrExpenseCategoryNotFound, "Expense category", id)
		return
	}
	middleware.RespondWithJSON(w, http.StatusOK, map[string]string{"message": "expense category deleted successfully"})
}

// CreatePayee handles payee creation. Phone numbers are unique.
func (h *ExpenseHandler) CreatePayee(w http.ResponseWriter, r *http.Request) {
	var req CreatePayeeRequest
	if !h.decode(w, r, &req) {
		return
	}

	existing, err := h.payeeRepo.FindByPhone(r.Context(), req.Phone)
	if err != nil && !errors.Is(err, repository.ErrPayeeNotFound) {
		h.logger.Error("Failed to check existing payee", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}
	if existing != nil {
		middleware.RespondWithError(w, http.StatusConflict,
			fmt.Sprintf("Payee with this Phone Number %s already exists", req.Phone))
		return
	}

	now := time.Now()
	payee := &domain.Payee{
		ID:        uuid.New(),
		Name:      req.Name,
		Phone:     req.Phone,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := h.payeeRepo.Create(r.Context(), payee); err != nil {
		if errors.Is(err, repository.ErrPayeeAlreadyExists) {
			middleware.RespondWithError(w, http.StatusConflict,
				fmt.Sprintf("Payee with this Phone Number %s already exists", req.Phone))
			return
		}
		h.logger.Error("Failed to create payee", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}

	middleware.RespondWithJSON(w, http.StatusCreated, payee)
}

// ListPayees returns all payees, newest first
func (h *ExpenseHandler) ListPayees(w http.ResponseWriter, r *http.Request) {
	payees, err := h.payeeRepo.List(r.Context())
	if err != nil {
		h.logger.Error("Failed to list payees", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}
	middleware.RespondWithJSON(w, http.StatusOK, payees)
}

// GetPayee returns a single payee
func (h *ExpenseHandler) GetPayee(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}

	payee, err := h.payeeRepo.FindByID(r.Context(), id)
	if err != nil {
		h.respondExpenseError(w, err, repository.ErrPayeeNotFound, "Payee", id)
		return
	}
	middleware.RespondWithJSON(w, http.StatusOK, payee)
}

// UpdatePayee handles payee updates
func (h *ExpenseHandler) UpdatePayee(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}

	var req CreatePayeeRequest
	if !h.decode(w, r, &req) {
		return
	}

	payee, err := h.payeeRepo.FindByID(r.Context(), id)
	if err != nil {
		h.respondExpenseError(w, err, repository.ErrPayeeNotFound, "Payee", id)
		return
	}

	payee.Name = req.Name
	payee.Phone = req.Phone
	payee.UpdatedAt = time.Now()

	if err := h.payeeRepo.Update(r.Context(), payee); err != nil {
		if errors.Is(err, repository.ErrPayeeAlreadyExists) {
			middleware.RespondWithError(w, http.StatusConflict,
				fmt.Sprintf("Payee with this Phone Number %s already exists", req.Phone))
			return
		}
		h.respondExpenseError(w, err, repository.ErrPayeeNotFound, "Payee", id)
		return
	}
	middleware.RespondWithJSON(w, http.StatusOK, payee)
}

// DeletePayee removes a payee
func (h *ExpenseHandler) DeletePayee(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}

	if err := h.payeeRepo.Delete(r.Context(), id); err != nil {
		h.respondExpenseError(w, err, repository.ErrPayeeNotFound, "Payee", id)
		return
	}
	middleware.RespondWithJSON(w, http.StatusOK, map[string]string{"message": "payee deleted successfully"})
}

// CreateExpense handles expense creation. The expense date defaults to
// now when omitted.
func (h *ExpenseHandler) CreateExpense(w http.ResponseWriter, r *http.Request) {
	var req CreateExpenseRequest
	if !h.decode(w, r, &req) {
		return
	}

	now := time.Now()
	expenseDate := now
	if req.ExpenseDate != nil {
		expenseDate = *req.ExpenseDate
	}

	expense := &domain.Expense{
		ID:          uuid.New(),
		Title:       req.Title,
		Amount:      req.Amount,
		Description: req.Description,
		Attachments: req.Attachments,
		ExpenseDate: expenseDate,
		PayeeID:     req.PayeeID,
		CategoryID:  req.CategoryID,
		ShopID:      req.ShopID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := h.expenseRepo.Create(r.Context(), expense); err != nil {
		h.logger.Error("Failed to create expense", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}

	h.logger.Info("Expense created",
		zap.String("expense_id", expense.ID.String()),
		zap.Float64("amount", expense.Amount),
	)
	middleware.RespondWithJSON(w, http.StatusCreated, expense)
}

// ListExpenses returns all expenses, newest first
func (h *ExpenseHandler) ListExpenses(w http.ResponseWriter, r *http.Request) {
	expenses, err := h.expenseRepo.List(r.Context())
	if err != nil {
		h.logger.Error("Failed to list expenses", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}
	middleware.RespondWithJSON(w, http.StatusOK, expenses)
}

// GetExpense returns a single expense
func (h *ExpenseHandler) GetExpense(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}

	expense, err := h.expenseRepo.FindByID(r.Context(), id)
	if err != nil {
		h.respondExpenseError(w, err, repository.ErrExpenseNotFound, "Expense", id)
		return
	}
	middleware.RespondWithJSON(w, http.StatusOK, expense)
}

// UpdateExpense handles expense updates
func (h *ExpenseHandler) UpdateExpense(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}

	var req CreateExpenseRequest
	if !h.decode(w, r, &req) {
		return
	}

	expense, err := h.expenseRepo.FindByID(r.Context(), id)
	if err != nil {
		h.respondExpenseError(w, err, repository.ErrExpenseNotFound, "Expense", id)
		return
	}

	expense.Title = req.Title
	expense.Amount = req.Amount
	expense.Description = req.Description
	expense.Attachments = req.Attachments
	if req.ExpenseDate != nil {
		expense.ExpenseDate = *req.ExpenseDate
	}
	expense.PayeeID = req.PayeeID
	expense.CategoryID = req.CategoryID
	expense.ShopID = req.ShopID
	expense.UpdatedAt = time.Now()

	if err := h.expenseRepo.Update(r.Context(), expense); err != nil {
		h.respondExpenseError(w, err, repository.ErrExpenseNotFound, "Expense", id)
		return
	}
	middleware.RespondWithJSON(w, http.StatusOK, expense)
}

// DeleteExpense removes an expense
func (h *ExpenseHandler) DeleteExpense(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}

	if err := h.expenseRepo.Delete(r.Context(), id); err != nil {
		h.respondExpenseError(w, err, repository.ErrExpenseNotFound, "Expense", id)
		return
	}
	middleware.RespondWithJSON(w, http.StatusOK, map[string]string{"message": "expense deleted successfully"})
}

// decode decodes and validates a request body, writing the error
// response itself when the body is bad
func (h *ExpenseHandler) decode(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	if err := middleware.DecodeAndValidate(r, v); err != nil {
		h.logger.Debug("Expense validation failed", zap.Error(err))

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
func (h *ExpenseHandler) parseID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid ID")
		return uuid.Nil, false
	}
	return id, true
}

// respondExpenseError maps repository outcomes for expense entities
func (h *ExpenseHandler) respondExpenseError(w http.ResponseWriter, err, notFound error, entity string, id uuid.UUID) {
	if errors.Is(err, notFound) {
		middleware.RespondWithError(w, http.StatusNotFound,
			fmt.Sprintf("%s with ID %s not found", entity, id))
		return
	}
	h.logger.Error("Expense operation failed", zap.Error(err))
	middleware.RespondWithError(w, http.StatusInternalServerError, "Internal Server Error")
}
