package domain

import (
	"time"

	"github.com/google/uuid"
)

// Product represents an item in the shop inventory. StockQty is mutated
// only through guarded decrements inside a sale transaction or through
// the product update endpoint.
type Product struct {
	ID             uuid.UUID  `json:"id" db:"id"`
	Name           string     `json:"name" db:"name"`
	Description    string     `json:"description" db:"description"`
	BatchNumber    *string    `json:"batchNumber" db:"batch_number"`
	BarCode        *string    `json:"barCode" db:"bar_code"`
	Image          string     `json:"image" db:"image"`
	Tax            float64    `json:"tax" db:"tax"`
	AlertQty       int        `json:"alertQty" db:"alert_qty"`
	StockQty       int        `json:"stockQty" db:"stock_qty"`
	Price          float64    `json:"price" db:"price"`
	WholesalePrice float64    `json:"wholesalePrice" db:"wholesale_price"`
	BuyingPrice    float64    `json:"buyingPrice" db:"buying_price"`
	Sku            string     `json:"sku" db:"sku"`
	ProductCode    string     `json:"productCode" db:"product_code"`
	Slug           string     `json:"slug" db:"slug"`
	SupplierID     uuid.UUID  `json:"supplierId" db:"supplier_id"`
	UnitID         uuid.UUID  `json:"unitId" db:"unit_id"`
	BrandID        uuid.UUID  `json:"brandId" db:"brand_id"`
	CategoryID     uuid.UUID  `json:"categoryId" db:"category_id"`
	ShopID         uuid.UUID  `json:"shopId" db:"shop_id"`
	ExpiryDate     *time.Time `json:"expiryDate" db:"expiry_date"`
	CreatedAt      time.Time  `json:"createdAt" db:"created_at"`
	UpdatedAt      time.Time  `json:"updatedAt" db:"updated_at"`
}
