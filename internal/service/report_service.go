package service

import (
	"context"
	"fmt"
	"time"

	"retail-pos/internal/domain"
	"retail-pos/internal/repository"

	"github.com/google/uuid"
)

// SalesBreakdown categorizes a set of sales by how they were settled
type SalesBreakdown struct {
	TotalSales        []*domain.Sale `json:"totalSales"`
	SalesPaidInCash   []*domain.Sale `json:"salesPaidInCash"`
	SalesPaidInCredit []*domain.Sale `json:"salesPaidInCredit"`
	SalesByUpi        []*domain.Sale `json:"salesByUpi"`
}

// SalesReport buckets sales into the standard reporting periods
type SalesReport struct {
	Today     SalesBreakdown `json:"today"`
	ThisWeek  SalesBreakdown `json:"thisWeek"`
	ThisMonth SalesBreakdown `json:"thisMonth"`
	AllTime   SalesBreakdown `json:"allTime"`
}

// ReportService produces per-shop and fleet-wide sales reports
type ReportService interface {
	ShopSales(ctx context.Context, shopID uuid.UUID) (*SalesReport, error)
	AllShopsSales(ctx context.Context) (*SalesReport, error)
}

type reportService struct {
	saleRepo repository.SaleRepository
	shopRepo repository.ShopRepository
	now      func() time.Time
}

// NewReportService creates a new instance of ReportService. The clock is
// injected so tests can pin period boundaries.
func NewReportService(saleRepo repository.SaleRepository, shopRepo repository.ShopRepository, now func() time.Time) ReportService {
	if now == nil {
		now = time.Now
	}
	return &reportService{
		saleRepo: saleRepo,
		shopRepo: shopRepo,
		now:      now,
	}
}

// ShopSales reports one shop's sales across the standard periods.
// Returns repository.ErrShopNotFound for an unknown shop.
func (s *reportService) ShopSales(ctx context.Context, shopID uuid.UUID) (*SalesReport, error) {
	if _, err := s.shopRepo.FindByID(ctx, shopID); err != nil {
		return nil, err
	}

	report := &SalesReport{}
	periods := s.reportPeriods()

	for i, period := range periods {
		sales, err := s.saleRepo.ListByShop(ctx, shopID, period.from, period.to)
		if err != nil {
			return nil, fmt.Errorf("failed to load shop sales: %w", err)
		}
		report.setBucket(i, categorizeSales(sales))
	}

	return report, nil
}

// AllShopsSales reports sales across every shop
func (s *reportService) AllShopsSales(ctx context.Context) (*SalesReport, error) {
	report := &SalesReport{}
	periods := s.reportPeriods()

	for i, period := range periods {
		sales, err := s.saleRepo.ListByPeriod(ctx, period.from, period.to)
		if err != nil {
			return nil, fmt.Errorf("failed to load sales: %w", err)
		}
		report.setBucket(i, categorizeSales(sales))
	}

	return report, nil
}

type reportPeriod struct {
	from *time.Time
	to   *time.Time
}

// reportPeriods returns the today / this-week / this-month / all-time
// bounds, in that order. Weeks start on Sunday.
func (s *reportService) reportPeriods() []reportPeriod {
	now := s.now()
	year, month, day := now.Date()
	loc := now.Location()

	dayStart := time.Date(year, month, day, 0, 0, 0, 0, loc)
	weekStart := dayStart.AddDate(0, 0, -int(dayStart.Weekday()))
	monthStart := time.Date(year, month, 1, 0, 0, 0, 0, loc)

	return []reportPeriod{
		{from: &dayStart, to: &now},
		{from: &weekStart, to: &now},
		{from: &monthStart, to: &now},
		{from: nil, to: nil},
	}
}

func (r *SalesReport) setBucket(index int, breakdown SalesBreakdown) {
	switch index {
	case 0:
		r.Today = breakdown
	case 1:
		r.ThisWeek = breakdown
	case 2:
		r.ThisMonth = breakdown
	case 3:
		r.AllTime = breakdown
	}
}

// categorizeSales splits sales into settlement buckets. A sale counts as
// cash when it was paid by cash with nothing outstanding; any sale with
// an outstanding balance counts as credit regardless of method.
func categorizeSales(sales []*domain.Sale) SalesBreakdown {
	breakdown := SalesBreakdown{
		TotalSales:        sales,
		SalesPaidInCash:   []*domain.Sale{},
		SalesPaidInCredit: []*domain.Sale{},
		SalesByUpi:        []*domain.Sale{},
	}

	for _, sale := range sales {
		if sale.PaymentMethod == domain.PaymentMethodCash && sale.BalanceAmount <= 0 {
			breakdown.SalesPaidInCash = append(breakdown.SalesPaidInCash, sale)
		}
		if sale.BalanceAmount > 0 {
			breakdown.SalesPaidInCredit = append(breakdown.SalesPaidInCredit, sale)
		}
		if sale.PaymentMethod == domain.PaymentMethodUpi {
			breakdown.SalesByUpi = append(breakdown.SalesByUpi, sale)
		}
	}

	return breakdown
}
