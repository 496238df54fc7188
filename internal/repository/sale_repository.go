package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"retail-pos/internal/domain"

	"github.com/google/uuid"
)

var (
	ErrSaleNotFound        = errors.New("sale not found")
	ErrCreditLimitExceeded = errors.New("credit limit exceeded")
	ErrInsufficientStock   = errors.New("insufficient stock")
)

// SaleRepository defines the interface for sale data access. CreateSale
// is the transactional unit of work behind checkout: the sale row, its
// items, every stock decrement and any customer credit adjustment are
// committed together or not at all.
type SaleRepository interface {
	CreateSale(ctx context.Context, sale *domain.Sale) (*domain.Sale, error)
	AddSaleItem(ctx context.Context, item *domain.SaleItem) error
	FindByID(ctx context.Context, id uuid.UUID) (*domain.Sale, error)
	List(ctx context.Context) ([]*domain.Sale, error)
	ListByShop(ctx context.Context, shopID uuid.UUID, from, to *time.Time) ([]*domain.Sale, error)
	ListByPeriod(ctx context.Context, from, to *time.Time) ([]*domain.Sale, error)
}

type saleRepository struct {
	db *sql.DB
}

// NewSaleRepository creates a new instance of SaleRepository
func NewSaleRepository(db *sql.DB) SaleRepository {
	return &saleRepository{db: db}
}

// CreateSale persists a sale and its items inside a single transaction.
//
// For a credit sale (BalanceAmount > 0) the referenced customer is locked
// and checked against their remaining credit ceiling before the credit
// fields are adjusted. Each line item decrements product stock with a
// guarded single-statement update so concurrent sales cannot drive stock
// negative. Any failure rolls back every write staged so far.
func (r *saleRepository) CreateSale(ctx context.Context, sale *domain.Sale) (*domain.Sale, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin sale transaction: %w", err)
	}
	// Rollback is a no-op once the transaction has been committed
	defer tx.Rollback()

	if sale.BalanceAmount > 0 {
		if err := r.extendCustomerCredit(ctx, tx, sale.CustomerID, sale.BalanceAmount); err != nil {
			return nil, err
		}
	}

	insertSale := `
		INSERT INTO sales (id, sale_number, customer_id, customer_name, customer_email,
			sale_amount, balance_amount, paid_amount, sale_type, payment_method,
			shop_id, transaction_code, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`
	_, err = tx.ExecContext(
		ctx,
		insertSale,
		sale.ID,
		sale.SaleNumber,
		sale.CustomerID,
		sale.CustomerName,
		sale.CustomerEmail,
		sale.SaleAmount,
		sale.BalanceAmount,
		sale.PaidAmount,
		sale.SaleType,
		sale.PaymentMethod,
		sale.ShopID,
		sale.TransactionCode,
		sale.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create sale: %w", err)
	}

	// Line items are processed in request order
	for _, item := range sale.SaleItems {
		if err := r.decrementStock(ctx, tx, item.ProductID, item.Qty); err != nil {
			return nil, err
		}

		insertItem := `
			INSERT INTO sale_items (id, sale_id, product_id, qty, product_price,
				product_name, product_image, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		`
		_, err = tx.ExecContext(
			ctx,
			insertItem,
			item.ID,
			sale.ID,
			item.ProductID,
			item.Qty,
			item.ProductPrice,
			item.ProductName,
			item.ProductImage,
			item.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to create sale item: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit sale transaction: %w", err)
	}

	// Re-read the persisted sale together with its items
	return r.FindByID(ctx, sale.ID)
}

// extendCustomerCredit moves balanceAmount from the customer's remaining
// credit ceiling onto their outstanding balance. The ceiling check and
// the adjustment both run inside the caller's transaction; the customer
// row is locked so a concurrent credit sale cannot slip past the limit.
func (r *saleRepository) extendCustomerCredit(ctx context.Context, tx *sql.Tx, customerID *uuid.UUID, balanceAmount float64) error {
	if customerID == nil {
		return ErrCustomerNotFound
	}

	var maxCreditLimit float64
	err := tx.QueryRowContext(
		ctx,
		`SELECT COALESCE(max_credit_limit, 0) FROM customers WHERE id = $1 FOR UPDATE`,
		*customerID,
	).Scan(&maxCreditLimit)
	if err != nil {
		if err == sql.ErrNoRows {
			return ErrCustomerNotFound
		}
		return fmt.Errorf("failed to load customer for credit sale: %w", err)
	}

	// Boundary is inclusive: balanceAmount == maxCreditLimit is allowed
	if balanceAmount > maxCreditLimit {
		return ErrCreditLimitExceeded
	}

	query := `
		UPDATE customers
		SET unpaid_credit_amount = unpaid_credit_amount + $2,
		    max_credit_limit = max_credit_limit - $2,
		    updated_at = $3
		WHERE id = $1 AND max_credit_limit >= $2
	`
	result, err := tx.ExecContext(ctx, query, *customerID, balanceAmount, time.Now())
	if err != nil {
		return fmt.Errorf("failed to adjust customer credit: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return ErrCreditLimitExceeded
	}

	return nil
}

// decrementStock takes qty units off a product's stock. The guard in the
// WHERE clause rejects the decrement when stock is short instead of
// letting the quantity go negative.
func (r *saleRepository) decrementStock(ctx context.Context, tx *sql.Tx, productID uuid.UUID, qty int) error {
	query := `
		UPDATE products
		SET stock_qty = stock_qty - $2, updated_at = $3
		WHERE id = $1 AND stock_qty >= $2
	`
	result, err := tx.ExecContext(ctx, query, productID, qty, time.Now())
	if err != nil {
		return fmt.Errorf("failed to decrement product stock: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		// Distinguish a missing product from one that is out of stock
		var exists bool
		err := tx.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM products WHERE id = $1)`, productID).Scan(&exists)
		if err != nil {
			return fmt.Errorf("failed to check product existence: %w", err)
		}
		if !exists {
			return ErrProductNotFound
		}
		return ErrInsufficientStock
	}

	return nil
}

// AddSaleItem appends a line item to an existing sale, decrementing the
// product's stock in the same transaction.
func (r *saleRepository) AddSaleItem(ctx context.Context, item *domain.SaleItem) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin sale item transaction: %w", err)
	}
	defer tx.Rollback()

	var exists bool
	if err := tx.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM sales WHERE id = $1)`, item.SaleID).Scan(&exists); err != nil {
		return fmt.Errorf("failed to check sale existence: %w", err)
	}
	if !exists {
		return ErrSaleNotFound
	}

	if err := r.decrementStock(ctx, tx, item.ProductID, item.Qty); err != nil {
		return err
	}

	query := `
		INSERT INTO sale_items (id, sale_id, product_id, qty, product_price,
			product_name, product_image, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err = tx.ExecContext(
		ctx,
		query,
		item.ID,
		item.SaleID,
		item.ProductID,
		item.Qty,
		item.ProductPrice,
		item.ProductName,
		item.ProductImage,
		item.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create sale item: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit sale item transaction: %w", err)
	}

	return nil
}

// FindByID retrieves a sale together with its items
func (r *saleRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Sale, error) {
	query := `
		SELECT id, sale_number, customer_id, customer_name, customer_email,
			sale_amount, balance_amount, paid_amount, sale_type, payment_method,
			shop_id, transaction_code, created_at
		FROM sales
		WHERE id = $1
	`

	sale := &domain.Sale{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&sale.ID,
		&sale.SaleNumber,
		&sale.CustomerID,
		&sale.CustomerName,
		&sale.CustomerEmail,
		&sale.SaleAmount,
		&sale.BalanceAmount,
		&sale.PaidAmount,
		&sale.SaleType,
		&sale.PaymentMethod,
		&sale.ShopID,
		&sale.TransactionCode,
		&sale.CreatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrSaleNotFound
		}
		return nil, fmt.Errorf("failed to find sale by ID: %w", err)
	}

	items, err := r.loadItems(ctx, sale.ID)
	if err != nil {
		return nil, err
	}
	sale.SaleItems = items

	return sale, nil
}

// List retrieves all sales with their items, newest first
func (r *saleRepository) List(ctx context.Context) ([]*domain.Sale, error) {
	query := `
		SELECT id, sale_number, customer_id, customer_name, customer_email,
			sale_amount, balance_amount, paid_amount, sale_type, payment_method,
			shop_id, transaction_code, created_at
		FROM sales
		ORDER BY created_at DESC
	`

	sales, err := r.querySales(ctx, query)
	if err != nil {
		return nil, err
	}

	for _, sale := range sales {
		items, err := r.loadItems(ctx, sale.ID)
		if err != nil {
			return nil, err
		}
		sale.SaleItems = items
	}

	return sales, nil
}

// ListByShop retrieves sales for one shop, optionally bounded to a period.
// Items are not loaded; the result feeds period reports.
func (r *saleRepository) ListByShop(ctx context.Context, shopID uuid.UUID, from, to *time.Time) ([]*domain.Sale, error) {
	query := `
		SELECT id, sale_number, customer_id, customer_name, customer_email,
			sale_amount, balance_amount, paid_amount, sale_type, payment_method,
			shop_id, transaction_code, created_at
		FROM sales
		WHERE shop_id = $1
	`
	args := []interface{}{shopID}
	argIndex := 2

	if from != nil {
		query += fmt.Sprintf(" AND created_at >= $%d", argIndex)
		args = append(args, *from)
		argIndex++
	}
	if to != nil {
		query += fmt.Sprintf(" AND created_at <= $%d", argIndex)
		args = append(args, *to)
	}
	query += " ORDER BY created_at DESC"

	return r.querySales(ctx, query, args...)
}

// ListByPeriod retrieves sales across all shops, optionally bounded to a period
func (r *saleRepository) ListByPeriod(ctx context.Context, from, to *time.Time) ([]*domain.Sale, error) {
	query := `
		SELECT id, sale_number, customer_id, customer_name, customer_email,
			sale_amount, balance_amount, paid_amount, sale_type, payment_method,
			shop_id, transaction_code, created_at
		FROM sales
	`
	args := []interface{}{}
	clauses := []string{}
	argIndex := 1

	if from != nil {
		clauses = append(clauses, fmt.Sprintf("created_at >= $%d", argIndex))
		args = append(args, *from)
		argIndex++
	}
	if to != nil {
		clauses = append(clauses, fmt.Sprintf("created_at <= $%d", argIndex))
		args = append(args, *to)
	}
	for i, clause := range clauses {
		if i == 0 {
			query += " WHERE " + clause
		} else {
			query += " AND " + clause
		}
	}
	query += " ORDER BY created_at DESC"

	return r.querySales(ctx, query, args...)
}

func (r *saleRepository) querySales(ctx context.Context, query string, args ...interface{}) ([]*domain.Sale, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list sales: %w", err)
	}
	defer rows.Close()

	sales := []*domain.Sale{}
	for rows.Next() {
		sale := &domain.Sale{}
		err := rows.Scan(
			&sale.ID,
			&sale.SaleNumber,
			&sale.CustomerID,
			&sale.CustomerName,
			&sale.CustomerEmail,
			&sale.SaleAmount,
			&sale.BalanceAmount,
			&sale.PaidAmount,
			&sale.SaleType,
			&sale.PaymentMethod,
			&sale.ShopID,
			&sale.TransactionCode,
			&sale.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan sale: %w", err)
		}
		sales = append(sales, sale)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating sales: %w", err)
	}

	return sales, nil
}

func (r *saleRepository) loadItems(ctx context.Context, saleID uuid.UUID) ([]*domain.SaleItem, error) {
	query := `
		SELECT id, sale_id, product_id, qty, product_price, product_name, product_image, created_at
		FROM sale_items
		WHERE sale_id = $1
		ORDER BY created_at ASC
	`

	rows, err := r.db.QueryContext(ctx, query, saleID)
	if err != nil {
		return nil, fmt.Errorf("failed to list sale items: %w", err)
	}
	defer rows.Close()

	items := []*domain.SaleItem{}
	for rows.Next() {
		item := &domain.SaleItem{}
		err := rows.Scan(
			&item.ID,
			&item.SaleID,
			&item.ProductID,
			&item.Qty,
			&item.ProductPrice,
			&item.ProductName,
			&item.ProductImage,
			&item.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan sale item: %w", err)
		}
		items = append(items, item)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating sale items: %w", err)
	}

	return items, nil
}
