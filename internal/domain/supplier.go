package domain

import (
	"time"

	"github.com/google/uuid"
)

// Supplier represents a product supplier
type Supplier struct {
	ID                uuid.UUID `json:"id" db:"id"`
	SupplierType      string    `json:"supplierType" db:"supplier_type"`
	Name              string    `json:"name" db:"name"`
	ContactPerson     string    `json:"contactPerson" db:"contact_person"`
	Phone             string    `json:"phone" db:"phone"`
	Email             *string   `json:"email" db:"email"`
	Location          string    `json:"location" db:"location"`
	Country           string    `json:"country" db:"country"`
	Website           *string   `json:"website" db:"website"`
	TaxPin            *string   `json:"taxPin" db:"tax_pin"`
	RegNumber         *string   `json:"regNumber" db:"reg_number"`
	BankAccountNumber *string   `json:"bankAccountNumber" db:"bank_account_number"`
	BankName          *string   `json:"bankName" db:"bank_name"`
	PaymentTerms      *string   `json:"paymentTerms" db:"payment_terms"`
	Logo              *string   `json:"logo" db:"logo"`
	Rating            *float64  `json:"rating" db:"rating"`
	Notes             *string   `json:"notes" db:"notes"`
	CreatedAt         time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt         time.Time `json:"updatedAt" db:"updated_at"`
}
