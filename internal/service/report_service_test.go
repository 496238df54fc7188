package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"retail-pos/internal/domain"
	"retail-pos/internal/repository"

	"github.com/google/uuid"
)

type mockShopRepository struct {
	shops map[uuid.UUID]*domain.Shop
}

func newMockShopRepository() *mockShopRepository {
	return &mockShopRepository{shops: make(map[uuid.UUID]*domain.Shop)}
}

func (m *mockShopRepository) Create(ctx context.Context, shop *domain.Shop) error {
	m.shops[shop.ID] = shop
	return nil
}

func (m *mockShopRepository) List(ctx context.Context) ([]*domain.Shop, error) {
	shops := []*domain.Shop{}
	for _, shop := range m.shops {
		shops = append(shops, shop)
	}
	return shops, nil
}

func (m *mockShopRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Shop, error) {
	shop, exists := m.shops[id]
	if !exists {
		return nil, repository.ErrShopNotFound
	}
	return shop, nil
}

func (m *mockShopRepository) FindBySlug(ctx context.Context, slug string) (*domain.Shop, error) {
	for _, shop := range m.shops {
		if shop.Slug == slug {
			return shop, nil
		}
	}
	return nil, repository.ErrShopNotFound
}

func seedSale(repo *mockSaleRepository, shopID uuid.UUID, method domain.PaymentMethod, balance float64, createdAt time.Time) *domain.Sale {
	sale := &domain.Sale{
		ID:            uuid.New(),
		SaleNumber:    "SN-" + uuid.NewString()[:18],
		CustomerName:  "Walk-in",
		SaleAmount:    100,
		PaidAmount:    100 - balance,
		BalanceAmount: balance,
		SaleType:      domain.SaleTypePaid,
		PaymentMethod: method,
		ShopID:        shopID,
		CreatedAt:     createdAt,
	}
	if balance > 0 {
		sale.SaleType = domain.SaleTypeCredit
	}
	repo.sales[sale.ID] = sale
	return sale
}

func TestShopSales_UnknownShop(t *testing.T) {
	service := NewReportService(newMockSaleRepository(), newMockShopRepository(), nil)

	_, err := service.ShopSales(context.Background(), uuid.New())
	if !errors.Is(err, repository.ErrShopNotFound) {
		t.Fatalf("expected ErrShopNotFound, got %v", err)
	}
}

func TestShopSales_BucketsByPeriodAndSettlement(t *testing.T) {
	saleRepo := newMockSaleRepository()
	shopRepo := newMockShopRepository()

	// Pin the clock to a Wednesday mid-month so the period boundaries
	// are unambiguous
	now := time.Date(2026, time.March, 18, 15, 0, 0, 0, time.UTC)
	service := NewReportService(saleRepo, shopRepo, func() time.Time { return now })

	shopID := uuid.New()
	shopRepo.shops[shopID] = &domain.Shop{ID: shopID, Name: "Main Branch", Slug: "main-branch"}

	today := now.Add(-2 * time.Hour)
	earlierThisWeek := now.AddDate(0, 0, -2)   // Monday
	earlierThisMonth := now.AddDate(0, 0, -10) // March 8th
	lastYear := now.AddDate(-1, 0, 0)

	cashSale := seedSale(saleRepo, shopID, domain.PaymentMethodCash, 0, today)
	creditSale := seedSale(saleRepo, shopID, domain.PaymentMethodCash, 40, earlierThisWeek)
	upiSale := seedSale(saleRepo, shopID, domain.PaymentMethodUpi, 0, earlierThisMonth)
	seedSale(saleRepo, shopID, domain.PaymentMethodCash, 0, lastYear)

	// A sale in another shop never shows up
	seedSale(saleRepo, uuid.New(), domain.PaymentMethodCash, 0, today)

	report, err := service.ShopSales(context.Background(), shopID)
	if err != nil {
		t.Fatalf("ShopSales failed: %v", err)
	}

	if len(report.Today.TotalSales) != 1 || report.Today.TotalSales[0].ID != cashSale.ID {
		t.Errorf("today bucket wrong: got %d sales", len(report.Today.TotalSales))
	}
	if len(report.ThisWeek.TotalSales) != 2 {
		t.Errorf("expected 2 sales this week, got %d", len(report.ThisWeek.TotalSales))
	}
	if len(report.ThisMonth.TotalSales) != 3 {
		t.Errorf("expected 3 sales this month, got %d", len(report.ThisMonth.TotalSales))
	}
	if len(report.AllTime.TotalSales) != 4 {
		t.Errorf("expected 4 sales all time, got %d", len(report.AllTime.TotalSales))
	}

	allTime := report.AllTime
	if len(allTime.SalesPaidInCash) != 3 {
		t.Errorf("expected 3 cash sales all time, got %d", len(allTime.SalesPaidInCash))
	}
	if len(allTime.SalesPaidInCredit) != 1 || allTime.SalesPaidInCredit[0].ID != creditSale.ID {
		t.Errorf("credit bucket wrong: got %d sales", len(allTime.SalesPaidInCredit))
	}
	if len(allTime.SalesByUpi) != 1 || allTime.SalesByUpi[0].ID != upiSale.ID {
		t.Errorf("upi bucket wrong: got %d sales", len(allTime.SalesByUpi))
	}
}

func TestAllShopsSales_AggregatesAcrossShops(t *testing.T) {
	saleRepo := newMockSaleRepository()
	now := time.Date(2026, time.March, 18, 15, 0, 0, 0, time.UTC)
	service := NewReportService(saleRepo, newMockShopRepository(), func() time.Time { return now })

	seedSale(saleRepo, uuid.New(), domain.PaymentMethodCash, 0, now.Add(-time.Hour))
	seedSale(saleRepo, uuid.New(), domain.PaymentMethodUpi, 0, now.Add(-time.Hour))

	report, err := service.AllShopsSales(context.Background())
	if err != nil {
		t.Fatalf("AllShopsSales failed: %v", err)
	}
	if len(report.Today.TotalSales) != 2 {
		t.Errorf("expected 2 sales today across shops, got %d", len(report.Today.TotalSales))
	}
	if len(report.Today.SalesByUpi) != 1 {
		t.Errorf("expected 1 upi sale today, got %d", len(report.Today.SalesByUpi))
	}
}
