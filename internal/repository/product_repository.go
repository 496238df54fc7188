package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"retail-pos/internal/domain"

	"github.com/google/uuid"
)

var (
	ErrProductNotFound      = errors.New("product not found")
	ErrProductAlreadyExists = errors.New("product already exists")
)

// SortOrder represents the sort direction
type SortOrder string

const (
	SortOrderAsc  SortOrder = "ASC"
	SortOrderDesc SortOrder = "DESC"
)

// ProductRepository defines the interface for product data access
type ProductRepository interface {
	Create(ctx context.Context, product *domain.Product) error
	Update(ctx context.Context, product *domain.Product) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindByID(ctx context.Context, id uuid.UUID) (*domain.Product, error)
	FindBySlug(ctx context.Context, slug string) (*domain.Product, error)
	FindBySku(ctx context.Context, sku string) (*domain.Product, error)
	FindByProductCode(ctx context.Context, productCode string) (*domain.Product, error)
	FindByBarCode(ctx context.Context, barCode string) (*domain.Product, error)
	List(ctx context.Context, shopID *uuid.UUID, page, pageSize int, sortBy string, sortOrder SortOrder) ([]*domain.Product, int, error)
	Search(ctx context.Context, query string, page, pageSize int) ([]*domain.Product, int, error)
}

type productRepository struct {
	db *sql.DB
}

// NewProductRepository creates a new instance of ProductRepository
func NewProductRepository(db *sql.DB) ProductRepository {
	return &productRepository{db: db}
}

const productColumns = `
	id, name, description, batch_number, bar_code, image, tax, alert_qty,
	stock_qty, price, wholesale_price, buying_price, sku, product_code, slug,
	supplier_id, unit_id, brand_id, category_id, shop_id, expiry_date,
	created_at, updated_at
`

// Create inserts a new product using parameterized queries
func (r *productRepository) Create(ctx context.Context, product *domain.Product) error {
	query := `
		INSERT INTO products (` + productColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15,
			$16, $17, $18, $19, $20, $21, $22, $23)
	`

	_, err := r.db.ExecContext(
		ctx,
		query,
		product.ID,
		product.Name,
		product.Description,
		product.BatchNumber,
		product.BarCode,
		product.Image,
		product.Tax,
		product.AlertQty,
		product.StockQty,
		product.Price,
		product.WholesalePrice,
		product.BuyingPrice,
		product.Sku,
		product.ProductCode,
		product.Slug,
		product.SupplierID,
		product.UnitID,
		product.BrandID,
		product.CategoryID,
		product.ShopID,
		product.ExpiryDate,
		product.CreatedAt,
		product.UpdatedAt,
	)

	if err != nil {
		if isUniqueViolation(err) {
			return ErrProductAlreadyExists
		}
		return fmt.Errorf("failed to create product: %w", err)
	}

	return nil
}

// Update updates an existing product using parameterized queries
func (r *productRepository) Update(ctx context.Context, product *domain.Product) error {
	query := `
		UPDATE products
		SET name = $2, description = $3, batch_number = $4, bar_code = $5,
		    image = $6, tax = $7, alert_qty = $8, stock_qty = $9, price = $10,
		    wholesale_price = $11, buying_price = $12, sku = $13,
		    product_code = $14, slug = $15, supplier_id = $16, unit_id = $17,
		    brand_id = $18, category_id = $19, shop_id = $20, expiry_date = $21,
		    updated_at = $22
		WHERE id = $1
	`

	result, err := r.db.ExecContext(
		ctx,
		query,
		product.ID,
		product.Name,
		product.Description,
		product.BatchNumber,
		product.BarCode,
		product.Image,
		product.Tax,
		product.AlertQty,
		product.StockQty,
		product.Price,
		product.WholesalePrice,
		product.BuyingPrice,
		product.Sku,
		product.ProductCode,
		product.Slug,
		product.SupplierID,
		product.UnitID,
		product.BrandID,
		product.CategoryID,
		product.ShopID,
		product.ExpiryDate,
		product.UpdatedAt,
	)

	if err != nil {
		if isUniqueViolation(err) {
			return ErrProductAlreadyExists
		}
		return fmt.Errorf("failed to update product: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return ErrProductNotFound
	}

	return nil
}

// Delete removes a product using parameterized queries
func (r *productRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM products WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete product: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return ErrProductNotFound
	}

	return nil
}

// FindByID retrieves a product by ID using parameterized queries
func (r *productRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Product, error) {
	return r.findOne(ctx, `SELECT `+productColumns+` FROM products WHERE id = $1`, id)
}

// FindBySlug retrieves a product by slug
func (r *productRepository) FindBySlug(ctx context.Context, slug string) (*domain.Product, error) {
	return r.findOne(ctx, `SELECT `+productColumns+` FROM products WHERE slug = $1`, slug)
}

// FindBySku retrieves a product by SKU
func (r *productRepository) FindBySku(ctx context.Context, sku string) (*domain.Product, error) {
	return r.findOne(ctx, `SELECT `+productColumns+` FROM products WHERE sku = $1`, sku)
}

// FindByProductCode retrieves a product by product code
func (r *productRepository) FindByProductCode(ctx context.Context, productCode string) (*domain.Product, error) {
	return r.findOne(ctx, `SELECT `+productColumns+` FROM products WHERE product_code = $1`, productCode)
}

// FindByBarCode retrieves a product by bar code
func (r *productRepository) FindByBarCode(ctx context.Context, barCode string) (*domain.Product, error) {
	return r.findOne(ctx, `SELECT `+productColumns+` FROM products WHERE bar_code = $1`, barCode)
}

func (r *productRepository) findOne(ctx context.Context, query string, arg interface{}) (*domain.Product, error) {
	product, err := scanProduct(r.db.QueryRowContext(ctx, query, arg))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to find product: %w", err)
	}
	return product, nil
}

// List retrieves products with optional shop filtering, pagination, and sorting
func (r *productRepository) List(ctx context.Context, shopID *uuid.UUID, page, pageSize int, sortBy string, sortOrder SortOrder) ([]*domain.Product, int, error) {
	// Validate sort field to prevent SQL injection
	validSortFields := map[string]bool{
		"name":       true,
		"price":      true,
		"created_at": true,
		"stock_qty":  true,
	}

	if !validSortFields[sortBy] {
		sortBy = "created_at"
	}

	if sortOrder != SortOrderAsc && sortOrder != SortOrderDesc {
		sortOrder = SortOrderDesc
	}

	whereClause := ""
	args := []interface{}{}
	argIndex := 1

	if shopID != nil {
		whereClause = fmt.Sprintf("WHERE shop_id = $%d", argIndex)
		args = append(args, *shopID)
		argIndex++
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM products %s", whereClause)
	var total int
	err := r.db.QueryRowContext(ctx, countQuery, args...).Scan(&total)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count products: %w", err)
	}

	offset := (page - 1) * pageSize

	query := fmt.Sprintf(`
		SELECT `+productColumns+`
		FROM products
		%s
		ORDER BY %s %s
		LIMIT $%d OFFSET $%d
	`, whereClause, sortBy, sortOrder, argIndex, argIndex+1)

	args = append(args, pageSize, offset)

	return r.queryProducts(ctx, query, total, args...)
}

// Search searches for products by name, description or SKU with pagination
func (r *productRepository) Search(ctx context.Context, query string, page, pageSize int) ([]*domain.Product, int, error) {
	if strings.TrimSpace(query) == "" {
		return r.List(ctx, nil, page, pageSize, "created_at", SortOrderDesc)
	}

	searchPattern := "%" + query + "%"

	countQuery := `
		SELECT COUNT(*)
		FROM products
		WHERE name ILIKE $1 OR description ILIKE $1 OR sku ILIKE $1
	`
	var total int
	err := r.db.QueryRowContext(ctx, countQuery, searchPattern).Scan(&total)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count search results: %w", err)
	}

	offset := (page - 1) * pageSize

	searchQuery := `
		SELECT ` + productColumns + `
		FROM products
		WHERE name ILIKE $1 OR description ILIKE $1 OR sku ILIKE $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`

	return r.queryProducts(ctx, searchQuery, total, searchPattern, pageSize, offset)
}

func (r *productRepository) queryProducts(ctx context.Context, query string, total int, args ...interface{}) ([]*domain.Product, int, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list products: %w", err)
	}
	defer rows.Close()

	products := []*domain.Product{}
	for rows.Next() {
		product, err := scanProduct(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan product: %w", err)
		}
		products = append(products, product)
	}

	if err = rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error iterating products: %w", err)
	}

	return products, total, nil
}

func scanProduct(row rowScanner) (*domain.Product, error) {
	product := &domain.Product{}
	err := row.Scan(
		&product.ID,
		&product.Name,
		&product.Description,
		&product.BatchNumber,
		&product.BarCode,
		&product.Image,
		&product.Tax,
		&product.AlertQty,
		&product.StockQty,
		&product.Price,
		&product.WholesalePrice,
		&product.BuyingPrice,
		&product.Sku,
		&product.ProductCode,
		&product.Slug,
		&product.SupplierID,
		&product.UnitID,
		&product.BrandID,
		&product.CategoryID,
		&product.ShopID,
		&product.ExpiryDate,
		&product.CreatedAt,
		&product.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return product, nil
}
