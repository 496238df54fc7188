package service

import (
	"context"
	"errors"
	"math"
	"strings"
	"testing"
	"time"

	"retail-pos/internal/domain"
	"retail-pos/internal/repository"

	"github.com/google/uuid"
	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

// Mock repository for testing
type mockSaleRepository struct {
	sales map[uuid.UUID]*domain.Sale
}

func newMockSaleRepository() *mockSaleRepository {
	return &mockSaleRepository{sales: make(map[uuid.UUID]*domain.Sale)}
}

func (m *mockSaleRepository) CreateSale(ctx context.Context, sale *domain.Sale) (*domain.Sale, error) {
	m.sales[sale.ID] = sale
	return sale, nil
}

func (m *mockSaleRepository) AddSaleItem(ctx context.Context, item *domain.SaleItem) error {
	sale, exists := m.sales[item.SaleID]
	if !exists {
		return repository.ErrSaleNotFound
	}
	sale.SaleItems = append(sale.SaleItems, item)
	return nil
}

func (m *mockSaleRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Sale, error) {
	sale, exists := m.sales[id]
	if !exists {
		return nil, repository.ErrSaleNotFound
	}
	return sale, nil
}

func (m *mockSaleRepository) List(ctx context.Context) ([]*domain.Sale, error) {
	sales := []*domain.Sale{}
	for _, sale := range m.sales {
		sales = append(sales, sale)
	}
	return sales, nil
}

func (m *mockSaleRepository) ListByShop(ctx context.Context, shopID uuid.UUID, from, to *time.Time) ([]*domain.Sale, error) {
	sales := []*domain.Sale{}
	for _, sale := range m.sales {
		if sale.ShopID == shopID && inPeriod(sale, from, to) {
			sales = append(sales, sale)
		}
	}
	return sales, nil
}

func (m *mockSaleRepository) ListByPeriod(ctx context.Context, from, to *time.Time) ([]*domain.Sale, error) {
	sales := []*domain.Sale{}
	for _, sale := range m.sales {
		if inPeriod(sale, from, to) {
			sales = append(sales, sale)
		}
	}
	return sales, nil
}

func inPeriod(sale *domain.Sale, from, to *time.Time) bool {
	if from != nil && sale.CreatedAt.Before(*from) {
		return false
	}
	if to != nil && sale.CreatedAt.After(*to) {
		return false
	}
	return true
}

func validSaleInput(items []CreateSaleItemInput) CreateSaleInput {
	total := 0.0
	for _, item := range items {
		total += float64(item.Qty) * item.ProductPrice
	}
	return CreateSaleInput{
		CustomerName:  "Jane Doe",
		SaleAmount:    total,
		PaidAmount:    total,
		BalanceAmount: 0,
		SaleType:      domain.SaleTypePaid,
		PaymentMethod: domain.PaymentMethodCash,
		ShopID:        uuid.New(),
		Items:         items,
	}
}

func TestCreateSale_RejectsEmptyItems(t *testing.T) {
	service := NewSaleService(newMockSaleRepository(), nil)

	_, err := service.CreateSale(context.Background(), validSaleInput(nil))
	if !errors.Is(err, ErrNoSaleItems) {
		t.Fatalf("expected ErrNoSaleItems, got %v", err)
	}
}

func TestCreateSale_GeneratedSaleNumberIsInjected(t *testing.T) {
	repo := newMockSaleRepository()
	service := NewSaleService(repo, func() string { return "SN-20260101-FIXED1" })

	input := validSaleInput([]CreateSaleItemInput{{ProductID: uuid.New(), Qty: 2, ProductPrice: 25, ProductName: "Soda"}})
	sale, err := service.CreateSale(context.Background(), input)
	if err != nil {
		t.Fatalf("CreateSale failed: %v", err)
	}

	if sale.SaleNumber != "SN-20260101-FIXED1" {
		t.Errorf("expected injected sale number, got %s", sale.SaleNumber)
	}
	if len(sale.SaleItems) != 1 {
		t.Fatalf("expected 1 item, got %d", len(sale.SaleItems))
	}
	if sale.SaleItems[0].SaleID != sale.ID {
		t.Errorf("item must reference its own sale")
	}
}

func TestCreateSale_ToleratesFloatRounding(t *testing.T) {
	service := NewSaleService(newMockSaleRepository(), nil)

	input := validSaleInput([]CreateSaleItemInput{{ProductID: uuid.New(), Qty: 3, ProductPrice: 0.1, ProductName: "Gum"}})
	input.SaleAmount = 0.3
	input.PaidAmount = 0.1 + 0.1 + 0.1 // not exactly 0.3 in float64

	if _, err := service.CreateSale(context.Background(), input); err != nil {
		t.Fatalf("rounding inside tolerance must be accepted: %v", err)
	}
}

// Reconciliation: paidAmount + balanceAmount must equal saleAmount within
// tolerance; anything further off is rejected before the repository runs.
func TestProperty_AmountReconciliation(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("mismatched amounts are rejected, reconciled amounts accepted", prop.ForAll(
		func(paid float64, balance float64, drift float64) bool {
			repo := newMockSaleRepository()
			service := NewSaleService(repo, nil)

			input := validSaleInput([]CreateSaleItemInput{{ProductID: uuid.New(), Qty: 1, ProductPrice: paid + balance, ProductName: "Item"}})
			input.PaidAmount = paid
			input.BalanceAmount = balance
			input.SaleAmount = paid + balance + drift

			_, err := service.CreateSale(context.Background(), input)

			if math.Abs(drift) > amountTolerance {
				return errors.Is(err, ErrAmountMismatch) && len(repo.sales) == 0
			}
			return err == nil
		},
		gen.Float64Range(0, 10000),
		gen.Float64Range(0, 10000),
		gen.Float64Range(-100, 100).SuchThat(func(d float64) bool {
			// Stay clear of the tolerance boundary itself
			return math.Abs(math.Abs(d)-amountTolerance) > 0.001
		}),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

func TestAddSaleItem_PropagatesMissingSale(t *testing.T) {
	service := NewSaleService(newMockSaleRepository(), nil)

	item := CreateSaleItemInput{ProductID: uuid.New(), Qty: 1, ProductPrice: 10, ProductName: "Soda"}
	_, err := service.AddSaleItem(context.Background(), uuid.New(), item)
	if !errors.Is(err, repository.ErrSaleNotFound) {
		t.Fatalf("expected ErrSaleNotFound, got %v", err)
	}
}

func TestGetSale_ReturnsNotFound(t *testing.T) {
	service := NewSaleService(newMockSaleRepository(), nil)

	_, err := service.GetSale(context.Background(), uuid.New())
	if !errors.Is(err, repository.ErrSaleNotFound) {
		t.Fatalf("expected ErrSaleNotFound, got %v", err)
	}
}

// Sale numbers follow SN-YYYYMMDD-XXXXXX and are unique across draws
func TestProperty_SaleNumberFormat(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("generated sale numbers are well formed and distinct", prop.ForAll(
		func(draws int) bool {
			seen := make(map[string]bool)
			for i := 0; i < draws; i++ {
				number := NewSaleNumber()

				parts := strings.Split(number, "-")
				if len(parts) != 3 || parts[0] != "SN" {
					return false
				}
				if _, err := time.Parse("20060102", parts[1]); err != nil {
					return false
				}
				if len(parts[2]) != 6 {
					return false
				}
				if seen[number] {
					return false
				}
				seen[number] = true
			}
			return true
		},
		gen.IntRange(1, 50),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}
