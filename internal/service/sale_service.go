package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"retail-pos/internal/domain"
	"retail-pos/internal/repository"

	"github.com/google/uuid"
)

var (
	ErrAmountMismatch = errors.New("paid amount plus balance amount must equal sale amount")
	ErrNoSaleItems    = errors.New("sale must contain at least one item")
)

// amountTolerance absorbs float rounding when reconciling sale amounts
const amountTolerance = 0.01

// CreateSaleInput is the coordinator's input contract
type CreateSaleInput struct {
	CustomerID      *uuid.UUID
	CustomerName    string
	CustomerEmail   string
	SaleAmount      float64
	BalanceAmount   float64
	PaidAmount      float64
	SaleType        domain.SaleType
	PaymentMethod   domain.PaymentMethod
	ShopID          uuid.UUID
	TransactionCode string
	Items           []CreateSaleItemInput
}

// CreateSaleItemInput is one line item in a sale request
type CreateSaleItemInput struct {
	ProductID    uuid.UUID
	Qty          int
	ProductPrice float64
	ProductName  string
	ProductImage string
}

// SaleService coordinates sale creation and reads. CreateSale is the
// single entry point for checkout: it validates the request, generates
// the sale number, and delegates the atomic unit of work to the
// repository.
type SaleService interface {
	CreateSale(ctx context.Context, input CreateSaleInput) (*domain.Sale, error)
	AddSaleItem(ctx context.Context, saleID uuid.UUID, item CreateSaleItemInput) (*domain.SaleItem, error)
	GetSale(ctx context.Context, id uuid.UUID) (*domain.Sale, error)
	ListSales(ctx context.Context) ([]*domain.Sale, error)
}

type saleService struct {
	saleRepo   repository.SaleRepository
	saleNumber SaleNumberSource
}

// NewSaleService creates a new instance of SaleService. The sale number
// source is injected so tests can pin it.
func NewSaleService(saleRepo repository.SaleRepository, saleNumber SaleNumberSource) SaleService {
	if saleNumber == nil {
		saleNumber = NewSaleNumber
	}
	return &saleService{
		saleRepo:   saleRepo,
		saleNumber: saleNumber,
	}
}

// CreateSale validates the request and runs the atomic sale transaction.
// Outcomes are sentinel errors so the HTTP boundary can map them to
// status codes without unwinding through the transaction driver.
func (s *saleService) CreateSale(ctx context.Context, input CreateSaleInput) (*domain.Sale, error) {
	if len(input.Items) == 0 {
		return nil, ErrNoSaleItems
	}

	if math.Abs(input.PaidAmount+input.BalanceAmount-input.SaleAmount) > amountTolerance {
		return nil, ErrAmountMismatch
	}

	now := time.Now()
	sale := &domain.Sale{
		ID:              uuid.New(),
		SaleNumber:      s.saleNumber(),
		CustomerID:      input.CustomerID,
		CustomerName:    input.CustomerName,
		CustomerEmail:   input.CustomerEmail,
		SaleAmount:      input.SaleAmount,
		BalanceAmount:   input.BalanceAmount,
		PaidAmount:      input.PaidAmount,
		SaleType:        input.SaleType,
		PaymentMethod:   input.PaymentMethod,
		ShopID:          input.ShopID,
		TransactionCode: input.TransactionCode,
		CreatedAt:       now,
	}

	for _, item := range input.Items {
		sale.SaleItems = append(sale.SaleItems, &domain.SaleItem{
			ID:           uuid.New(),
			SaleID:       sale.ID,
			ProductID:    item.ProductID,
			Qty:          item.Qty,
			ProductPrice: item.ProductPrice,
			ProductName:  item.ProductName,
			ProductImage: item.ProductImage,
			CreatedAt:    now,
		})
	}

	created, err := s.saleRepo.CreateSale(ctx, sale)
	if err != nil {
		return nil, err
	}

	return created, nil
}

// AddSaleItem appends a line item to an existing sale
func (s *saleService) AddSaleItem(ctx context.Context, saleID uuid.UUID, item CreateSaleItemInput) (*domain.SaleItem, error) {
	saleItem := &domain.SaleItem{
		ID:           uuid.New(),
		SaleID:       saleID,
		ProductID:    item.ProductID,
		Qty:          item.Qty,
		ProductPrice: item.ProductPrice,
		ProductName:  item.ProductName,
		ProductImage: item.ProductImage,
		CreatedAt:    time.Now(),
	}

	if err := s.saleRepo.AddSaleItem(ctx, saleItem); err != nil {
		return nil, err
	}

	return saleItem, nil
}

// GetSale retrieves a sale with its items
func (s *saleService) GetSale(ctx context.Context, id uuid.UUID) (*domain.Sale, error) {
	sale, err := s.saleRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrSaleNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to get sale: %w", err)
	}
	return sale, nil
}

// ListSales retrieves all sales with items, newest first
func (s *saleService) ListSales(ctx context.Context) ([]*domain.Sale, error) {
	sales, err := s.saleRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list sales: %w", err)
	}
	return sales, nil
}
