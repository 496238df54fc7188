package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"retail-pos/internal/domain"

	"github.com/google/uuid"
)

var (
	ErrExpenseNotFound              = errors.New("expense not found")
	ErrExpenseCategoryNotFound      = errors.New("expense category not found")
	ErrExpenseCategoryAlreadyExists = errors.New("expense category with this slug already exists")
	ErrPayeeNotFound                = errors.New("payee not found")
	ErrPayeeAlreadyExists           = errors.New("payee with this phone already exists")
)

// ExpenseCategoryRepository defines the interface for expense category data access
type ExpenseCategoryRepository interface {
	Create(ctx context.Context, category *domain.ExpenseCategory) error
	Update(ctx context.Context, category *domain.ExpenseCategory) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context) ([]*domain.ExpenseCategory, error)
	FindByID(ctx context.Context, id uuid.UUID) (*domain.ExpenseCategory, error)
	FindBySlug(ctx context.Context, slug string) (*domain.ExpenseCategory, error)
}

type expenseCategoryRepository struct {
	db *sql.DB
}

// NewExpenseCategoryRepository creates a new instance of ExpenseCategoryRepository
func NewExpenseCategoryRepository(db *sql.DB) ExpenseCategoryRepository {
	return &expenseCategoryRepository{db: db}
}

func (r *expenseCategoryRepository) Create(ctx context.Context, category *domain.ExpenseCategory) error {
	query := `INSERT INTO expense_categories (id, name, slug, created_at, updated_at) VALUES ($1, $2, $3, $4, $5)`

	_, err := r.db.ExecContext(ctx, query, category.ID, category.Name, category.Slug, category.CreatedAt, category.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrExpenseCategoryAlreadyExists
		}
		return fmt.Errorf("failed to create expense category: %w", err)
	}
	return nil
}

func (r *expenseCategoryRepository) Update(ctx context.Context, category *domain.ExpenseCategory) error {
	query := `UPDATE expense_categories SET name = $2, slug = $3, updated_at = $4 WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, category.ID, category.Name, category.Slug, category.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrExpenseCategoryAlreadyExists
		}
		return fmt.Errorf("failed to update expense category: %w", err)
	}
	return requireRowsAffected(result, ErrExpenseCategoryNotFound)
}

func (r *expenseCategoryRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM expense_categories WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete expense category: %w", err)
	}
	return requireRowsAffected(result, ErrExpenseCategoryNotFound)
}

func (r *expenseCategoryRepository) List(ctx context.Context) ([]*domain.ExpenseCategory, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, name, slug, created_at, updated_at FROM expense_categories ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list expense categories: %w", err)
	}
	defer rows.Close()

	categories := []*domain.ExpenseCategory{}
	for rows.Next() {
		category := &domain.ExpenseCategory{}
		if err := rows.Scan(&category.ID, &category.Name, &category.Slug, &category.CreatedAt, &category.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan expense category: %w", err)
		}
		categories = append(categories, category)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating expense categories: %w", err)
	}
	return categories, nil
}

func (r *expenseCategoryRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.ExpenseCategory, error) {
	return r.findOne(ctx, `SELECT id, name, slug, created_at, updated_at FROM expense_categories WHERE id = $1`, id)
}

func (r *expenseCategoryRepository) FindBySlug(ctx context.Context, slug string) (*domain.ExpenseCategory, error) {
	return r.findOne(ctx, `SELECT id, name, slug, created_at, updated_at FROM expense_categories WHERE slug = $1`, slug)
}

func (r *expenseCategoryRepository) findOne(ctx context.Context, query string, arg interface{}) (*domain.ExpenseCategory, error) {
	category := &domain.ExpenseCategory{}
	err := r.db.QueryRowContext(ctx, query, arg).Scan(&category.ID, &category.Name, &category.Slug, &category.CreatedAt, &category.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrExpenseCategoryNotFound
		}
		return nil, fmt.Errorf("failed to find expense category: %w", err)
	}
	return category, nil
}

// PayeeRepository defines the interface for payee data access
type PayeeRepository interface {
	Create(ctx context.Context, payee *domain.Payee) error
	Update(ctx context.Context, payee *domain.Payee) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context) ([]*domain.Payee, error)
	FindByID(ctx context.Context, id uuid.UUID) (*domain.Payee, error)
	FindByPhone(ctx context.Context, phone string) (*domain.Payee, error)
}

type payeeRepository struct {
	db *sql.DB
}

// NewPayeeRepository creates a new instance of PayeeRepository
func NewPayeeRepository(db *sql.DB) PayeeRepository {
	return &payeeRepository{db: db}
}

func (r *payeeRepository) Create(ctx context.Context, payee *domain.Payee) error {
	query := `INSERT INTO payees (id, name, phone, created_at, updated_at) VALUES ($1, $2, $3, $4, $5)`

	_, err := r.db.ExecContext(ctx, query, payee.ID, payee.Name, payee.Phone, payee.CreatedAt, payee.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrPayeeAlreadyExists
		}
		return fmt.Errorf("failed to create payee: %w", err)
	}
	return nil
}

func (r *payeeRepository) Update(ctx context.Context, payee *domain.Payee) error {
	query := `UPDATE payees SET name = $2, phone = $3, updated_at = $4 WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, payee.ID, payee.Name, payee.Phone, payee.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrPayeeAlreadyExists
		}
		return fmt.Errorf("failed to update payee: %w", err)
	}
	return requireRowsAffected(result, ErrPayeeNotFound)
}

func (r *payeeRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM payees WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete payee: %w", err)
	}
	return requireRowsAffected(result, ErrPayeeNotFound)
}

func (r *payeeRepository) List(ctx context.Context) ([]*domain.Payee, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, name, phone, created_at, updated_at FROM payees ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list payees: %w", err)
	}
	defer rows.Close()

	payees := []*domain.Payee{}
	for rows.Next() {
		payee := &domain.Payee{}
		if err := rows.Scan(&payee.ID, &payee.Name, &payee.Phone, &payee.CreatedAt, &payee.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan payee: %w", err)
		}
		payees = append(payees, payee)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating payees: %w", err)
	}
	return payees, nil
}

func (r *payeeRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Payee, error) {
	return r.findOne(ctx, `SELECT id, name, phone, created_at, updated_at FROM payees WHERE id = $1`, id)
}

func (r *payeeRepository) FindByPhone(ctx context.Context, phone string) (*domain.Payee, error) {
	return r.findOne(ctx, `SELECT id, name, phone, created_at, updated_at FROM payees WHERE phone = $1`, phone)
}

func (r *payeeRepository) findOne(ctx context.Context, query string, arg interface{}) (*domain.Payee, error) {
	payee := &domain.Payee{}
	err := r.db.QueryRowContext(ctx, query, arg).Scan(&payee.ID, &payee.Name, &payee.Phone, &payee.CreatedAt, &payee.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrPayeeNotFound
		}
		return nil, fmt.Errorf("failed to find payee: %w", err)
	}
	return payee, nil
}

// ExpenseRepository defines the interface for expense data access
type ExpenseRepository interface {
	Create(ctx context.Context, expense *domain.Expense) error
	Update(ctx context.Context, expense *domain.Expense) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context) ([]*domain.Expense, error)
	FindByID(ctx context.Context, id uuid.UUID) (*domain.Expense, error)
}

type expenseRepository struct {
	db *sql.DB
}

// NewExpenseRepository creates a new instance of ExpenseRepository
func NewExpenseRepository(db *sql.DB) ExpenseRepository {
	return &expenseRepository{db: db}
}

const expenseColumns = `
	id, title, amount, description, attachments, expense_date, payee_id,
	category_id, shop_id, created_at, updated_at
`

func (r *expenseRepository) Create(ctx context.Context, expense *domain.Expense) error {
	attachments, err := json.Marshal(expense.Attachments)
	if err != nil {
		return fmt.Errorf("failed to encode attachments: %w", err)
	}

	query := `
		INSERT INTO expenses (` + expenseColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`

	_, err = r.db.ExecContext(
		ctx,
		query,
		expense.ID,
		expense.Title,
		expense.Amount,
		expense.Description,
		attachments,
		expense.ExpenseDate,
		expense.PayeeID,
		expense.CategoryID,
		expense.ShopID,
		expense.CreatedAt,
		expense.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create expense: %w", err)
	}
	return nil
}

func (r *expenseRepository) Update(ctx context.Context, expense *domain.Expense) error {
	attachments, err := json.Marshal(expense.Attachments)
	if err != nil {
		return fmt.Errorf("failed to encode attachments: %w", err)
	}

	query := `
		UPDATE expenses
		SET title = $2, amount = $3, description = $4, attachments = $5,
		    expense_date = $6, payee_id = $7, category_id = $8, shop_id = $9,
		    updated_at = $10
		WHERE id = $1
	`

	result, err := r.db.ExecContext(
		ctx,
		query,
		expense.ID,
		expense.Title,
		expense.Amount,
		expense.Description,
		attachments,
		expense.ExpenseDate,
		expense.PayeeID,
		expense.CategoryID,
		expense.ShopID,
		expense.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update expense: %w", err)
	}
	return requireRowsAffected(result, ErrExpenseNotFound)
}

func (r *expenseRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM expenses WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete expense: %w", err)
	}
	return requireRowsAffected(result, ErrExpenseNotFound)
}

func (r *expenseRepository) List(ctx context.Context) ([]*domain.Expense, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+expenseColumns+` FROM expenses ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list expenses: %w", err)
	}
	defer rows.Close()

	expenses := []*domain.Expense{}
	for rows.Next() {
		expense, err := scanExpense(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan expense: %w", err)
		}
		expenses = append(expenses, expense)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating expenses: %w", err)
	}
	return expenses, nil
}

func (r *expenseRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Expense, error) {
	expense, err := scanExpense(r.db.QueryRowContext(ctx, `SELECT `+expenseColumns+` FROM expenses WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrExpenseNotFound
		}
		return nil, fmt.Errorf("failed to find expense: %w", err)
	}
	return expense, nil
}

func scanExpense(row rowScanner) (*domain.Expense, error) {
	expense := &domain.Expense{}
	var attachments []byte

	err := row.Scan(
		&expense.ID,
		&expense.Title,
		&expense.Amount,
		&expense.Description,
		&attachments,
		&expense.ExpenseDate,
		&expense.PayeeID,
		&expense.CategoryID,
		&expense.ShopID,
		&expense.CreatedAt,
		&expense.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if len(attachments) > 0 {
		if err := json.Unmarshal(attachments, &expense.Attachments); err != nil {
			return nil, fmt.Errorf("failed to decode attachments: %w", err)
		}
	}

	return expense, nil
}
