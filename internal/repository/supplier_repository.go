package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"retail-pos/internal/domain"

	"github.com/google/uuid"
)

var (
	ErrSupplierNotFound      = errors.New("supplier not found")
	ErrSupplierAlreadyExists = errors.New("supplier already exists")
)

// SupplierRepository defines the interface for supplier data access
type SupplierRepository interface {
	Create(ctx context.Context, supplier *domain.Supplier) error
	List(ctx context.Context) ([]*domain.Supplier, error)
	FindByID(ctx context.Context, id uuid.UUID) (*domain.Supplier, error)
	FindByPhone(ctx context.Context, phone string) (*domain.Supplier, error)
	FindByEmail(ctx context.Context, email string) (*domain.Supplier, error)
	FindByRegNumber(ctx context.Context, regNumber string) (*domain.Supplier, error)
}

type supplierRepository struct {
	db *sql.DB
}

// NewSupplierRepository creates a new instance of SupplierRepository
func NewSupplierRepository(db *sql.DB) SupplierRepository {
	return &supplierRepository{db: db}
}

const supplierColumns = `
	id, supplier_type, name, contact_person, phone, email, location, country,
	website, tax_pin, reg_number, bank_account_number, bank_name, payment_terms,
	logo, rating, notes, created_at, updated_at
`

// Create inserts a new supplier using parameterized queries
func (r *supplierRepository) Create(ctx context.Context, supplier *domain.Supplier) error {
	query := `
		INSERT INTO suppliers (` + supplierColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19)
	`

	_, err := r.db.ExecContext(
		ctx,
		query,
		supplier.ID,
		supplier.SupplierType,
		supplier.Name,
		supplier.ContactPerson,
		supplier.Phone,
		supplier.Email,
		supplier.Location,
		supplier.Country,
		supplier.Website,
		supplier.TaxPin,
		supplier.RegNumber,
		supplier.BankAccountNumber,
		supplier.BankName,
		supplier.PaymentTerms,
		supplier.Logo,
		supplier.Rating,
		supplier.Notes,
		supplier.CreatedAt,
		supplier.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrSupplierAlreadyExists
		}
		return fmt.Errorf("failed to create supplier: %w", err)
	}

	return nil
}

// List retrieves all suppliers, newest first
func (r *supplierRepository) List(ctx context.Context) ([]*domain.Supplier, error) {
	query := `SELECT ` + supplierColumns + ` FROM suppliers ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list suppliers: %w", err)
	}
	defer rows.Close()

	suppliers := []*domain.Supplier{}
	for rows.Next() {
		supplier, err := scanSupplier(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan supplier: %w", err)
		}
		suppliers = append(suppliers, supplier)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating suppliers: %w", err)
	}

	return suppliers, nil
}

// FindByID retrieves a supplier by ID using parameterized queries
func (r *supplierRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Supplier, error) {
	return r.findOne(ctx, `SELECT `+supplierColumns+` FROM suppliers WHERE id = $1`, id)
}

// FindByPhone retrieves a supplier by phone number
func (r *supplierRepository) FindByPhone(ctx context.Context, phone string) (*domain.Supplier, error) {
	return r.findOne(ctx, `SELECT `+supplierColumns+` FROM suppliers WHERE phone = $1`, phone)
}

// FindByEmail retrieves a supplier by email
func (r *supplierRepository) FindByEmail(ctx context.Context, email string) (*domain.Supplier, error) {
	return r.findOne(ctx, `SELECT `+supplierColumns+` FROM suppliers WHERE email = $1`, email)
}

// FindByRegNumber retrieves a supplier by registration number
func (r *supplierRepository) FindByRegNumber(ctx context.Context, regNumber string) (*domain.Supplier, error) {
	return r.findOne(ctx, `SELECT `+supplierColumns+` FROM suppliers WHERE reg_number = $1`, regNumber)
}

func (r *supplierRepository) findOne(ctx context.Context, query string, arg interface{}) (*domain.Supplier, error) {
	supplier, err := scanSupplier(r.db.QueryRowContext(ctx, query, arg))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrSupplierNotFound
		}
		return nil, fmt.Errorf("failed to find supplier: %w", err)
	}
	return supplier, nil
}

func scanSupplier(row rowScanner) (*domain.Supplier, error) {
	supplier := &domain.Supplier{}
	err := row.Scan(
		&supplier.ID,
		&supplier.SupplierType,
		&supplier.Name,
		&supplier.ContactPerson,
		&supplier.Phone,
		&supplier.Email,
		&supplier.Location,
		&supplier.Country,
		&supplier.Website,
		&supplier.TaxPin,
		&supplier.RegNumber,
		&supplier.BankAccountNumber,
		&supplier.BankName,
		&supplier.PaymentTerms,
		&supplier.Logo,
		&supplier.Rating,
		&supplier.Notes,
		&supplier.CreatedAt,
		&supplier.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return supplier, nil
}
