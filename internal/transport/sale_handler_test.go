package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"retail-pos/internal/domain"
	"retail-pos/internal/repository"
	"retail-pos/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Mock services driven by injectable outcomes
type mockSaleService struct {
	createErr error
	addErr    error
	sale      *domain.Sale
}

func (m *mockSaleService) CreateSale(ctx context.Context, input service.CreateSaleInput) (*domain.Sale, error) {
	if m.createErr != nil {
		return nil, m.createErr
	}
	if m.sale != nil {
		return m.sale, nil
	}
	sale := &domain.Sale{
		ID:            uuid.New(),
		SaleNumber:    "SN-20260318-TEST01",
		CustomerID:    input.CustomerID,
		CustomerName:  input.CustomerName,
		SaleAmount:    input.SaleAmount,
		BalanceAmount: input.BalanceAmount,
		PaidAmount:    input.PaidAmount,
		SaleType:      input.SaleType,
		PaymentMethod: input.PaymentMethod,
		ShopID:        input.ShopID,
		CreatedAt:     time.Now(),
	}
	for _, item := range input.Items {
		sale.SaleItems = append(sale.SaleItems, &domain.SaleItem{
			ID:        uuid.New(),
			SaleID:    sale.ID,
			ProductID: item.ProductID,
			Qty:       item.Qty,
		})
	}
	return sale, nil
}

func (m *mockSaleService) AddSaleItem(ctx context.Context, saleID uuid.UUID, item service.CreateSaleItemInput) (*domain.SaleItem, error) {
	if m.addErr != nil {
		return nil, m.addErr
	}
	return &domain.SaleItem{ID: uuid.New(), SaleID: saleID, ProductID: item.ProductID, Qty: item.Qty}, nil
}

func (m *mockSaleService) GetSale(ctx context.Context, id uuid.UUID) (*domain.Sale, error) {
	if m.sale != nil && m.sale.ID == id {
		return m.sale, nil
	}
	return nil, repository.ErrSaleNotFound
}

func (m *mockSaleService) ListSales(ctx context.Context) ([]*domain.Sale, error) {
	if m.sale != nil {
		return []*domain.Sale{m.sale}, nil
	}
	return []*domain.Sale{}, nil
}

type mockReportService struct {
	shopErr error
}

func (m *mockReportService) ShopSales(ctx context.Context, shopID uuid.UUID) (*service.SalesReport, error) {
	if m.shopErr != nil {
		return nil, m.shopErr
	}
	return &service.SalesReport{}, nil
}

func (m *mockReportService) AllShopsSales(ctx context.Context) (*service.SalesReport, error) {
	return &service.SalesReport{}, nil
}

func passthroughAuth(next http.Handler) http.Handler {
	return next
}

func newSaleRouter(saleService service.SaleService, reportService service.ReportService) chi.Router {
	logger := zap.NewNop()
	handler := NewSaleHandler(saleService, reportService, logger)
	r := chi.NewRouter()
	handler.RegisterRoutes(r, passthroughAuth)
	return r
}

func validCreateSaleBody() map[string]interface{} {
	return map[string]interface{}{
		"customerName":  "Jane Doe",
		"saleAmount":    100.0,
		"paidAmount":    100.0,
		"balanceAmount": 0.0,
		"saleType":      "PAID",
		"paymentMethod": "CASH",
		"shopId":        uuid.NewString(),
		"saleItems": []map[string]interface{}{
			{
				"productId":    uuid.NewString(),
				"qty":          2,
				"productPrice": 50.0,
				"productName":  "Soda",
			},
		},
	}
}

func postJSON(t *testing.T, router chi.Router, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	payload, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("failed to marshal body: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decodeEnvelope(t *testing.T, w *httptest.ResponseRecorder) (data, errField interface{}) {
	t.Helper()
	var envelope map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("response is not valid JSON: %v", err)
	}
	if _, ok := envelope["data"]; !ok {
		t.Fatalf("envelope missing data field: %s", w.Body.String())
	}
	if _, ok := envelope["error"]; !ok {
		t.Fatalf("envelope missing error field: %s", w.Body.String())
	}
	return envelope["data"], envelope["error"]
}

func TestCreateSale_Returns201WithEnvelope(t *testing.T) {
	router := newSaleRouter(&mockSaleService{}, &mockReportService{})

	w := postJSON(t, router, "/api/sales", validCreateSaleBody())

	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}
	data, errField := decodeEnvelope(t, w)
	if errField != nil {
		t.Errorf("expected null error on success, got %v", errField)
	}
	sale, ok := data.(map[string]interface{})
	if !ok {
		t.Fatalf("expected sale object in data, got %T", data)
	}
	if sale["saleNumber"] != "SN-20260318-TEST01" {
		t.Errorf("expected generated sale number in payload, got %v", sale["saleNumber"])
	}
}

func TestCreateSale_ErrorStatusMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{"no items", service.ErrNoSaleItems, http.StatusBadRequest},
		{"amount mismatch", service.ErrAmountMismatch, http.StatusBadRequest},
		{"customer not found", repository.ErrCustomerNotFound, http.StatusNotFound},
		{"credit limit exceeded", repository.ErrCreditLimitExceeded, http.StatusForbidden},
		{"product not found", repository.ErrProductNotFound, http.StatusNotFound},
		{"insufficient stock", repository.ErrInsufficientStock, http.StatusConflict},
		{"store failure", fmt.Errorf("connection reset"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := newSaleRouter(&mockSaleService{createErr: tt.err}, &mockReportService{})

			w := postJSON(t, router, "/api/sales", validCreateSaleBody())

			if w.Code != tt.wantStatus {
				t.Fatalf("expected %d, got %d: %s", tt.wantStatus, w.Code, w.Body.String())
			}
			data, errField := decodeEnvelope(t, w)
			if data != nil {
				t.Errorf("expected null data on error, got %v", data)
			}
			if errField == nil {
				t.Errorf("expected error message in envelope")
			}
		})
	}
}

func TestCreateSale_InternalErrorsAreNotLeaked(t *testing.T) {
	router := newSaleRouter(&mockSaleService{createErr: fmt.Errorf("pq: connection refused at 10.0.0.5")}, &mockReportService{})

	w := postJSON(t, router, "/api/sales", validCreateSaleBody())

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", w.Code)
	}
	_, errField := decodeEnvelope(t, w)
	if errField != "Internal Server Error" {
		t.Errorf("store failure details must not leak, got %v", errField)
	}
}

func TestCreateSale_ValidationFailures(t *testing.T) {
	router := newSaleRouter(&mockSaleService{}, &mockReportService{})

	tests := []struct {
		name   string
		mutate func(body map[string]interface{})
	}{
		{"missing customer name", func(b map[string]interface{}) { delete(b, "customerName") }},
		{"bad sale type", func(b map[string]interface{}) { b["saleType"] = "LAYAWAY" }},
		{"bad payment method", func(b map[string]interface{}) { b["paymentMethod"] = "CHEQUE" }},
		{"empty items", func(b map[string]interface{}) { b["saleItems"] = []interface{}{} }},
		{"negative amount", func(b map[string]interface{}) { b["saleAmount"] = -10.0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body := validCreateSaleBody()
			tt.mutate(body)

			w := postJSON(t, router, "/api/sales", body)

			if w.Code != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d: %s", w.Code, w.Body.String())
			}
		})
	}
}

func TestAddSaleItem_ErrorStatusMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{"created", nil, http.StatusCreated},
		{"sale not found", repository.ErrSaleNotFound, http.StatusNotFound},
		{"product not found", repository.ErrProductNotFound, http.StatusNotFound},
		{"insufficient stock", repository.ErrInsufficientStock, http.StatusConflict},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := newSaleRouter(&mockSaleService{addErr: tt.err}, &mockReportService{})

			body := map[string]interface{}{
				"saleId":       uuid.NewString(),
				"productId":    uuid.NewString(),
				"qty":          1,
				"productPrice": 25.0,
				"productName":  "Soda",
			}
			w := postJSON(t, router, "/api/sales/item", body)

			if w.Code != tt.wantStatus {
				t.Fatalf("expected %d, got %d: %s", tt.wantStatus, w.Code, w.Body.String())
			}
		})
	}
}

func TestGetSale(t *testing.T) {
	existing := &domain.Sale{ID: uuid.New(), SaleNumber: "SN-20260318-TEST02", CreatedAt: time.Now()}
	router := newSaleRouter(&mockSaleService{sale: existing}, &mockReportService{})

	req := httptest.NewRequest(http.MethodGet, "/api/sales/"+existing.ID.String(), nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/sales/"+uuid.NewString(), nil)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown sale, got %d", w.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/sales/not-a-uuid", nil)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for malformed ID, got %d", w.Code)
	}
}

func TestShopSalesReport(t *testing.T) {
	router := newSaleRouter(&mockSaleService{}, &mockReportService{})

	req := httptest.NewRequest(http.MethodGet, "/api/sales/shop/"+uuid.NewString(), nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	req = httptest.NewRequest(http.MethodGet, "/api/sales/shop?shopId="+uuid.NewString(), nil)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 for query param variant, got %d: %s", w.Code, w.Body.String())
	}

	req = httptest.NewRequest(http.MethodGet, "/api/sales/shop", nil)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for missing shop ID, got %d", w.Code)
	}

	router = newSaleRouter(&mockSaleService{}, &mockReportService{shopErr: repository.ErrShopNotFound})
	req = httptest.NewRequest(http.MethodGet, "/api/sales/shop/"+uuid.NewString(), nil)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown shop, got %d", w.Code)
	}
}

func TestAllShopsSalesReport(t *testing.T) {
	router := newSaleRouter(&mockSaleService{}, &mockReportService{})

	req := httptest.NewRequest(http.MethodGet, "/api/sales/all-shops", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	data, _ := decodeEnvelope(t, w)
	report, ok := data.(map[string]interface{})
	if !ok {
		t.Fatalf("expected report object, got %T", data)
	}
	for _, bucket := range []string{"today", "thisWeek", "thisMonth", "allTime"} {
		if _, ok := report[bucket]; !ok {
			t.Errorf("report missing %s bucket", bucket)
		}
	}
}
