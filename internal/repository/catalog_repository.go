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
	ErrBrandNotFound         = errors.New("brand not found")
	ErrBrandAlreadyExists    = errors.New("brand with this slug already exists")
	ErrCategoryNotFound      = errors.New("category not found")
	ErrCategoryAlreadyExists = errors.New("category with this slug already exists")
	ErrUnitNotFound          = errors.New("unit not found")
	ErrUnitAlreadyExists     = errors.New("unit with this slug already exists")
)

// BrandRepository defines the interface for brand data access
type BrandRepository interface {
	Create(ctx context.Context, brand *domain.Brand) error
	Update(ctx context.Context, brand *domain.Brand) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context) ([]*domain.Brand, error)
	FindByID(ctx context.Context, id uuid.UUID) (*domain.Brand, error)
	FindBySlug(ctx context.Context, slug string) (*domain.Brand, error)
}

type brandRepository struct {
	db *sql.DB
}

// NewBrandRepository creates a new instance of BrandRepository
func NewBrandRepository(db *sql.DB) BrandRepository {
	return &brandRepository{db: db}
}

func (r *brandRepository) Create(ctx context.Context, brand *domain.Brand) error {
	query := `INSERT INTO brands (id, name, slug, created_at, updated_at) VALUES ($1, $2, $3, $4, $5)`

	_, err := r.db.ExecContext(ctx, query, brand.ID, brand.Name, brand.Slug, brand.CreatedAt, brand.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrBrandAlreadyExists
		}
		return fmt.Errorf("failed to create brand: %w", err)
	}
	return nil
}

func (r *brandRepository) Update(ctx context.Context, brand *domain.Brand) error {
	query := `UPDATE brands SET name = $2, slug = $3, updated_at = $4 WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, brand.ID, brand.Name, brand.Slug, brand.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrBrandAlreadyExists
		}
		return fmt.Errorf("failed to update brand: %w", err)
	}
	return requireRowsAffected(result, ErrBrandNotFound)
}

func (r *brandRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM brands WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete brand: %w", err)
	}
	return requireRowsAffected(result, ErrBrandNotFound)
}

func (r *brandRepository) List(ctx context.Context) ([]*domain.Brand, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, name, slug, created_at, updated_at FROM brands ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list brands: %w", err)
	}
	defer rows.Close()

	brands := []*domain.Brand{}
	for rows.Next() {
		brand := &domain.Brand{}
		if err := rows.Scan(&brand.ID, &brand.Name, &brand.Slug, &brand.CreatedAt, &brand.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan brand: %w", err)
		}
		brands = append(brands, brand)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating brands: %w", err)
	}
	return brands, nil
}

func (r *brandRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Brand, error) {
	return r.findOne(ctx, `SELECT id, name, slug, created_at, updated_at FROM brands WHERE id = $1`, id)
}

func (r *brandRepository) FindBySlug(ctx context.Context, slug string) (*domain.Brand, error) {
	return r.findOne(ctx, `SELECT id, name, slug, created_at, updated_at FROM brands WHERE slug = $1`, slug)
}

func (r *brandRepository) findOne(ctx context.Context, query string, arg interface{}) (*domain.Brand, error) {
	brand := &domain.Brand{}
	err := r.db.QueryRowContext(ctx, query, arg).Scan(&brand.ID, &brand.Name, &brand.Slug, &brand.CreatedAt, &brand.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrBrandNotFound
		}
		return nil, fmt.Errorf("failed to find brand: %w", err)
	}
	return brand, nil
}

// CategoryRepository defines the interface for category data access
type CategoryRepository interface {
	Create(ctx context.Context, category *domain.Category) error
	Update(ctx context.Context, category *domain.Category) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context) ([]*domain.Category, error)
	FindByID(ctx context.Context, id uuid.UUID) (*domain.Category, error)
	FindBySlug(ctx context.Context, slug string) (*domain.Category, error)
}

type categoryRepository struct {
	db *sql.DB
}

// NewCategoryRepository creates a new instance of CategoryRepository
func NewCategoryRepository(db *sql.DB) CategoryRepository {
	return &categoryRepository{db: db}
}

func (r *categoryRepository) Create(ctx context.Context, category *domain.Category) error {
	query := `INSERT INTO categories (id, name, slug, created_at, updated_at) VALUES ($1, $2, $3, $4, $5)`

	_, err := r.db.ExecContext(ctx, query, category.ID, category.Name, category.Slug, category.CreatedAt, category.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrCategoryAlreadyExists
		}
		return fmt.Errorf("failed to create category: %w", err)
	}
	return nil
}

func (r *categoryRepository) Update(ctx context.Context, category *domain.Category) error {
	query := `UPDATE categories SET name = $2, slug = $3, updated_at = $4 WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, category.ID, category.Name, category.Slug, category.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrCategoryAlreadyExists
		}
		return fmt.Errorf("failed to update category: %w", err)
	}
	return requireRowsAffected(result, ErrCategoryNotFound)
}

func (r *categoryRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM categories WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete category: %w", err)
	}
	return requireRowsAffected(result, ErrCategoryNotFound)
}

func (r *categoryRepository) List(ctx context.Context) ([]*domain.Category, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, name, slug, created_at, updated_at FROM categories ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	defer rows.Close()

	categories := []*domain.Category{}
	for rows.Next() {
		category := &domain.Category{}
		if err := rows.Scan(&category.ID, &category.Name, &category.Slug, &category.CreatedAt, &category.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}
		categories = append(categories, category)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating categories: %w", err)
	}
	return categories, nil
}

func (r *categoryRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Category, error) {
	return r.findOne(ctx, `SELECT id, name, slug, created_at, updated_at FROM categories WHERE id = $1`, id)
}

func (r *categoryRepository) FindBySlug(ctx context.Context, slug string) (*domain.Category, error) {
	return r.findOne(ctx, `SELECT id, name, slug, created_at, updated_at FROM categories WHERE slug = $1`, slug)
}

func (r *categoryRepository) findOne(ctx context.Context, query string, arg interface{}) (*domain.Category, error) {
	category := &domain.Category{}
	err := r.db.QueryRowContext(ctx, query, arg).Scan(&category.ID, &category.Name, &category.Slug, &category.CreatedAt, &category.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrCategoryNotFound
		}
		return nil, fmt.Errorf("failed to find category: %w", err)
	}
	return category, nil
}

// UnitRepository defines the interface for unit data access
type UnitRepository interface {
	Create(ctx context.Context, unit *domain.Unit) error
	Update(ctx context.Context, unit *domain.Unit) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context) ([]*domain.Unit, error)
	FindByID(ctx context.Context, id uuid.UUID) (*domain.Unit, error)
	FindBySlug(ctx context.Context, slug string) (*domain.Unit, error)
}

type unitRepository struct {
	db *sql.DB
}

// NewUnitRepository creates a new instance of UnitRepository
func NewUnitRepository(db *sql.DB) UnitRepository {
	return &unitRepository{db: db}
}

func (r *unitRepository) Create(ctx context.Context, unit *domain.Unit) error {
	query := `INSERT INTO units (id, name, abbreviation, slug, created_at, updated_at) VALUES ($1, $2, $3, $4, $5, $6)`

	_, err := r.db.ExecContext(ctx, query, unit.ID, unit.Name, unit.Abbreviation, unit.Slug, unit.CreatedAt, unit.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrUnitAlreadyExists
		}
		return fmt.Errorf("failed to create unit: %w", err)
	}
	return nil
}

func (r *unitRepository) Update(ctx context.Context, unit *domain.Unit) error {
	query := `UPDATE units SET name = $2, abbreviation = $3, slug = $4, updated_at = $5 WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, unit.ID, unit.Name, unit.Abbreviation, unit.Slug, unit.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrUnitAlreadyExists
		}
		return fmt.Errorf("failed to update unit: %w", err)
	}
	return requireRowsAffected(result, ErrUnitNotFound)
}

func (r *unitRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM units WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete unit: %w", err)
	}
	return requireRowsAffected(result, ErrUnitNotFound)
}

func (r *unitRepository) List(ctx context.Context) ([]*domain.Unit, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, name, abbreviation, slug, created_at, updated_at FROM units ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list units: %w", err)
	}
	defer rows.Close()

	units := []*domain.Unit{}
	for rows.Next() {
		unit := &domain.Unit{}
		if err := rows.Scan(&unit.ID, &unit.Name, &unit.Abbreviation, &unit.Slug, &unit.CreatedAt, &unit.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan unit: %w", err)
		}
		units = append(units, unit)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating units: %w", err)
	}
	return units, nil
}

func (r *unitRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Unit, error) {
	return r.findOne(ctx, `SELECT id, name, abbreviation, slug, created_at, updated_at FROM units WHERE id = $1`, id)
}

func (r *unitRepository) FindBySlug(ctx context.Context, slug string) (*domain.Unit, error) {
	return r.findOne(ctx, `SELECT id, name, abbreviation, slug, created_at, updated_at FROM units WHERE slug = $1`, slug)
}

func (r *unitRepository) findOne(ctx context.Context, query string, arg interface{}) (*domain.Unit, error) {
	unit := &domain.Unit{}
	err := r.db.QueryRowContext(ctx, query, arg).Scan(&unit.ID, &unit.Name, &unit.Abbreviation, &unit.Slug, &unit.CreatedAt, &unit.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrUnitNotFound
		}
		return nil, fmt.Errorf("failed to find unit: %w", err)
	}
	return unit, nil
}

func requireRowsAffected(result sql.Result, notFound error) error {
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return notFound
	}
	return nil
}
