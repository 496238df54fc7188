package domain

import (
	"time"

	"github.com/google/uuid"
)

// Customer represents a buyer. Credit fields track how much credit the
// customer may still take (MaxCreditLimit) and how much they currently
// owe (UnpaidCreditAmount); both are mutated only inside the sale
// transaction when a credit sale is created.
type Customer struct {
	ID                 uuid.UUID  `json:"id" db:"id"`
	CustomerType       string     `json:"customerType" db:"customer_type"`
	FirstName          string     `json:"firstName" db:"first_name"`
	LastName           string     `json:"lastName" db:"last_name"`
	Phone              string     `json:"phone" db:"phone"`
	Gender             string     `json:"gender" db:"gender"`
	Country            string     `json:"country" db:"country"`
	Location           string     `json:"location" db:"location"`
	MaxCreditLimit     float64    `json:"maxCreditLimit" db:"max_credit_limit"`
	MaxCreditDays      int        `json:"maxCreditDays" db:"max_credit_days"`
	UnpaidCreditAmount float64    `json:"unpaidCreditAmount" db:"unpaid_credit_amount"`
	TaxPin             *string    `json:"taxPin" db:"tax_pin"`
	Dob                *time.Time `json:"dob" db:"dob"`
	Email              *string    `json:"email" db:"email"`
	NationalIDNumber   *string    `json:"nationalIdNumber" db:"national_id_number"`
	CreatedAt          time.Time  `json:"createdAt" db:"created_at"`
	UpdatedAt          time.Time  `json:"updatedAt" db:"updated_at"`
}
