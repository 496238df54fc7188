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
	ErrShopNotFound      = errors.New("shop not found")
	ErrShopAlreadyExists = errors.New("shop with this slug already exists")
)

// ShopRepository defines the interface for shop data access
type ShopRepository interface {
	Create(ctx context.Context, shop *domain.Shop) error
	List(ctx context.Context) ([]*domain.Shop, error)
	FindByID(ctx context.Context, id uuid.UUID) (*domain.Shop, error)
	FindBySlug(ctx context.Context, slug string) (*domain.Shop, error)
}

type shopRepository struct {
	db *sql.DB
}

// NewShopRepository creates a new instance of ShopRepository
func NewShopRepository(db *sql.DB) ShopRepository {
	return &shopRepository{db: db}
}

// Create inserts a new shop using parameterized queries. Attendant IDs
// are stored as a JSONB document.
func (r *shopRepository) Create(ctx context.Context, shop *domain.Shop) error {
	attendantIDs, err := json.Marshal(shop.AttendantIDs)
	if err != nil {
		return fmt.Errorf("failed to encode attendant IDs: %w", err)
	}

	query := `
		INSERT INTO shops (id, name, slug, location, admin_id, attendant_ids, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err = r.db.ExecContext(
		ctx,
		query,
		shop.ID,
		shop.Name,
		shop.Slug,
		shop.Location,
		shop.AdminID,
		attendantIDs,
		shop.CreatedAt,
		shop.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrShopAlreadyExists
		}
		return fmt.Errorf("failed to create shop: %w", err)
	}

	return nil
}

// List retrieves all shops, newest first
func (r *shopRepository) List(ctx context.Context) ([]*domain.Shop, error) {
	query := `
		SELECT id, name, slug, location, admin_id, attendant_ids, created_at, updated_at
		FROM shops
		ORDER BY created_at DESC
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list shops: %w", err)
	}
	defer rows.Close()

	shops := []*domain.Shop{}
	for rows.Next() {
		shop, err := scanShop(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan shop: %w", err)
		}
		shops = append(shops, shop)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating shops: %w", err)
	}

	return shops, nil
}

// FindByID retrieves a shop by ID using parameterized queries
func (r *shopRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Shop, error) {
	return r.findOne(ctx, `
		SELECT id, name, slug, location, admin_id, attendant_ids, created_at, updated_at
		FROM shops
		WHERE id = $1
	`, id)
}

// FindBySlug retrieves a shop by slug
func (r *shopRepository) FindBySlug(ctx context.Context, slug string) (*domain.Shop, error) {
	return r.findOne(ctx, `
		SELECT id, name, slug, location, admin_id, attendant_ids, created_at, updated_at
		FROM shops
		WHERE slug = $1
	`, slug)
}

func (r *shopRepository) findOne(ctx context.Context, query string, arg interface{}) (*domain.Shop, error) {
	shop, err := scanShop(r.db.QueryRowContext(ctx, query, arg))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrShopNotFound
		}
		return nil, fmt.Errorf("failed to find shop: %w", err)
	}
	return shop, nil
}

func scanShop(row rowScanner) (*domain.Shop, error) {
	shop := &domain.Shop{}
	var attendantIDs []byte

	err := row.Scan(
		&shop.ID,
		&shop.Name,
		&shop.Slug,
		&shop.Location,
		&shop.AdminID,
		&attendantIDs,
		&shop.CreatedAt,
		&shop.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if len(attendantIDs) > 0 {
		if err := json.Unmarshal(attendantIDs, &shop.AttendantIDs); err != nil {
			return nil, fmt.Errorf("failed to decode attendant IDs: %w", err)
		}
	}

	return shop, nil
}
