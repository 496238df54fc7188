package domain

import (
	"time"

	"github.com/google/uuid"
)

// SaleType distinguishes immediate-payment sales from credit sales
type SaleType string

const (
	SaleTypePaid   SaleType = "PAID"
	SaleTypeCredit SaleType = "CREDIT"
)

// PaymentMethod is how the paid portion of a sale was settled
type PaymentMethod string

const (
	PaymentMethodCash PaymentMethod = "CASH"
	PaymentMethodUpi  PaymentMethod = "UPI"
)

// Sale is the record of a completed checkout. It is created atomically
// together with its items, the stock decrements, and any credit
// adjustment; once created it is immutable.
type Sale struct {
	ID              uuid.UUID     `json:"id" db:"id"`
	SaleNumber      string        `json:"saleNumber" db:"sale_number"`
	CustomerID      *uuid.UUID    `json:"customerId" db:"customer_id"`
	CustomerName    string        `json:"customerName" db:"customer_name"`
	CustomerEmail   string        `json:"customerEmail" db:"customer_email"`
	SaleAmount      float64       `json:"saleAmount" db:"sale_amount"`
	BalanceAmount   float64       `json:"balanceAmount" db:"balance_amount"`
	PaidAmount      float64       `json:"paidAmount" db:"paid_amount"`
	SaleType        SaleType      `json:"saleType" db:"sale_type"`
	PaymentMethod   PaymentMethod `json:"paymentMethod" db:"payment_method"`
	ShopID          uuid.UUID     `json:"shopId" db:"shop_id"`
	TransactionCode string        `json:"transactionCode" db:"transaction_code"`
	CreatedAt       time.Time     `json:"createdAt" db:"created_at"`
	SaleItems       []*SaleItem   `json:"saleItems"`
}

// SaleItem is one product line within a sale. Product name, price and
// image are snapshotted at sale time so history survives later product
// edits.
type SaleItem struct {
	ID           uuid.UUID `json:"id" db:"id"`
	SaleID       uuid.UUID `json:"saleId" db:"sale_id"`
	ProductID    uuid.UUID `json:"productId" db:"product_id"`
	Qty          int       `json:"qty" db:"qty"`
	ProductPrice float64   `json:"productPrice" db:"product_price"`
	ProductName  string    `json:"productName" db:"product_name"`
	ProductImage string    `json:"productImage" db:"product_image"`
	CreatedAt    time.Time `json:"createdAt" db:"created_at"`
}
