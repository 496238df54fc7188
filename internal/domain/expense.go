package domain

import (
	"time"

	"github.com/google/uuid"
)

// ExpenseCategory groups expenses for reporting
type ExpenseCategory struct {
	ID        uuid.UUID `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	Slug      string    `json:"slug" db:"slug"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`
}

// Payee is the recipient of an expense payment
type Payee struct {
	ID        uuid.UUID `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	Phone     string    `json:"phone" db:"phone"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`
}

// Expense represents money spent by a shop
type Expense struct {
	ID          uuid.UUID `json:"id" db:"id"`
	Title       string    `json:"title" db:"title"`
	Amount      float64   `json:"amount" db:"amount"`
	Description *string   `json:"description" db:"description"`
	Attachments []string  `json:"attachments" db:"attachments"`
	ExpenseDate time.Time `json:"expenseDate" db:"expense_date"`
	PayeeID     uuid.UUID `json:"payeeId" db:"payee_id"`
	CategoryID  uuid.UUID `json:"categoryId" db:"category_id"`
	ShopID      uuid.UUID `json:"shopId" db:"shop_id"`
	CreatedAt   time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt   time.Time `json:"updatedAt" db:"updated_at"`
}
