package product

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

func init() {
	// prices go out as JSON numbers
	decimal.MarshalJSONWithoutQuotes = true
}

// Product is a catalog item. InventoryCount and Price are never negative.
type Product struct {
	ID             uint             `json:"id" gorm:"primaryKey"`
	Name           string           `json:"name" gorm:"size:255;not null;index"`
	Description    string           `json:"description" gorm:"type:text"`
	Price          decimal.Decimal  `json:"price" gorm:"type:numeric(12,2);not null;check:price >= 0"`
	DiscountPrice  *decimal.Decimal `json:"discountPrice,omitempty" gorm:"type:numeric(12,2)"`
	InventoryCount int              `json:"inventoryCount" gorm:"not null;check:inventory_count >= 0"`
	ImageURL       string           `json:"imageUrl" gorm:"size:512"`
	Category       string           `json:"category" gorm:"size:100;not null;index"`
	IsActive       bool             `json:"isActive" gorm:"not null;index"`
	CreatedAt      time.Time        `json:"createdAt"`
	UpdatedAt      time.Time        `json:"updatedAt"`
}

// CreateRequest is the payload for a new product.
type CreateRequest struct {
	Name           string           `json:"name" validate:"required,max=255"`
	Description    string           `json:"description" validate:"max=5000"`
	Price          *decimal.Decimal `json:"price" validate:"required,gte=0"`
	DiscountPrice  *decimal.Decimal `json:"discountPrice" validate:"omitempty,gte=0"`
	InventoryCount *int             `json:"inventoryCount" validate:"required,gte=0"`
	ImageURL       string           `json:"imageUrl" validate:"max=512"`
	Category       string           `json:"category" validate:"required,max=100"`
	IsActive       *bool            `json:"isActive"`
}

// UpdateRequest is a partial update: nil fields are left untouched.
type UpdateRequest struct {
	Name           *string          `json:"name" validate:"omitempty,min=1,max=255"`
	Description    *string          `json:"description" validate:"omitempty,max=5000"`
	Price          *decimal.Decimal `json:"price" validate:"omitempty,gte=0"`
	DiscountPrice  *decimal.Decimal `json:"discountPrice" validate:"omitempty,gte=0"`
	InventoryCount *int             `json:"inventoryCount" validate:"omitempty,gte=0"`
	ImageURL       *string          `json:"imageUrl" validate:"omitempty,max=512"`
	Category       *string          `json:"category" validate:"omitempty,min=1,max=100"`
	IsActive       *bool            `json:"isActive"`
}

type InventoryRequest struct {
	Quantity int `json:"quantity" validate:"required,gt=0"`
}

func (r CreateRequest) toProduct() Product {
	p := Product{
		Name:           r.Name,
		Description:    r.Description,
		Price:          *r.Price,
		DiscountPrice:  r.DiscountPrice,
		InventoryCount: *r.InventoryCount,
		ImageURL:       r.ImageURL,
		Category:       r.Category,
		IsActive:       true,
	}
	if r.IsActive != nil {
		p.IsActive = *r.IsActive
	}
	return p
}

// ApplyTo merges the present fields into p.
func (r UpdateRequest) ApplyTo(p *Product) {
	if r.Name != nil {
		p.Name = *r.Name
	}
	if r.Description != nil {
		p.Description = *r.Description
	}
	if r.Price != nil {
		p.Price = *r.Price
	}
	if r.DiscountPrice != nil {
		d := *r.DiscountPrice
		p.DiscountPrice = &d
	}
	if r.InventoryCount != nil {
		p.InventoryCount = *r.InventoryCount
	}
	if r.ImageURL != nil {
		p.ImageURL = *r.ImageURL
	}
	if r.Category != nil {
		p.Category = *r.Category
	}
	if r.IsActive != nil {
		p.IsActive = *r.IsActive
	}
}

// Check reports invariant violations of a fully merged product.
func (p Product) Check() map[string]string {
	errs := map[string]string{}
	if strings.TrimSpace(p.Name) == "" {
		errs["name"] = "name is required"
	}
	if strings.TrimSpace(p.Category) == "" {
		errs["category"] = "category is required"
	}
	if p.Price.IsNegative() {
		errs["price"] = "price cannot be negative"
	}
	if p.InventoryCount < 0 {
		errs["inventoryCount"] = "inventoryCount cannot be negative"
	}
	if p.DiscountPrice != nil {
		if p.DiscountPrice.IsNegative() {
			errs["discountPrice"] = "discountPrice cannot be negative"
		} else if p.DiscountPrice.GreaterThan(p.Price) {
			errs["discountPrice"] = "discountPrice cannot exceed price"
		}
	}
	return errs
}
