// Package seed fills an empty Retail API with demo branches, vendors and
// products.
package seed

import (
	"fmt"
	"strings"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/shopspring/decimal"

	"github.com/noman2111ni/Retail-Managment-System/internal/domain/retail"
)

// BranchInput is the create payload for a branch.
type BranchInput struct {
	Name     string `json:"name" validate:"required,max=100"`
	Location string `json:"location" validate:"required"`
	Phone    string `json:"phone,omitempty"`
	Email    string `json:"email,omitempty" validate:"omitempty,email"`
}

// VendorInput is the create payload for a vendor.
type VendorInput struct {
	Name    string `json:"name" validate:"required,max=100"`
	Phone   string `json:"phone,omitempty"`
	Email   string `json:"email,omitempty" validate:"omitempty,email"`
	Address string `json:"address,omitempty"`
}

// ProductInput is the create payload for a product. The server takes the
// branch as "branch_id" on create; updates send it as "branch".
type ProductInput struct {
	Name        string          `json:"name" validate:"required,max=200"`
	SKU         string          `json:"sku" validate:"required,alphanum"`
	Barcode     string          `json:"barcode,omitempty" validate:"omitempty,numeric,len=13"`
	Category    string          `json:"category,omitempty"`
	Description string          `json:"description,omitempty"`
	Price       decimal.Decimal `json:"price"`
	Quantity    int64           `json:"quantity" validate:"gte=0"`
	BranchID    retail.ID       `json:"branch_id,omitempty"`
	IsActive    bool            `json:"is_active"`
}

// Generator produces fake create payloads.
type Generator struct {
	faker *gofakeit.Faker
	n     int
}

// NewGenerator creates a generator; seed 0 picks a random seed.
func NewGenerator(seed uint64) *Generator {
	return &Generator{faker: gofakeit.New(seed)}
}

func (g *Generator) next() int {
	g.n++
	return g.n
}

// Branch returns a branch payload.
func (g *Generator) Branch() BranchInput {
	f := g.faker
	city := f.City()
	return BranchInput{
		Name:     fmt.Sprintf("%s Branch %d", city, g.next()),
		Location: f.Street() + ", " + city,
		Phone:    f.Phone(),
		Email:    f.Email(),
	}
}

// Vendor returns a vendor payload.
func (g *Generator) Vendor() VendorInput {
	f := g.faker
	addr := f.Address()
	return VendorInput{
		Name:    fmt.Sprintf("%s %d", f.Company(), g.next()),
		Phone:   f.Phone(),
		Email:   f.Email(),
		Address: addr.Address,
	}
}

// Product returns a product payload stocked at branch (0 for none).
func (g *Generator) Product(branch retail.ID) ProductInput {
	f := g.faker
	n := g.next()
	price := decimal.NewFromFloat(f.Price(1, 500)).Round(2)
	return ProductInput{
		Name:        f.ProductName(),
		SKU:         fmt.Sprintf("SKU%s%04d", strings.ToUpper(f.LetterN(3)), n),
		Barcode:     f.Numerify("#############"),
		Category:    f.ProductCategory(),
		Description: f.ProductDescription(),
		Price:       price,
		Quantity:    int64(f.Number(0, 200)),
		BranchID:    branch,
		IsActive:    true,
	}
}
