// Package report builds the dashboard aggregates from sales, purchases and
// products.
package report

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/noman2111ni/Retail-Managment-System/internal/domain/retail"
)

// DefaultCategory labels items without a category.
const DefaultCategory = "Others"

// WeeklyPoint is one weekday bucket.
type WeeklyPoint struct {
	Day       string          `json:"day"`
	Sales     decimal.Decimal `json:"sales"`
	Purchases decimal.Decimal `json:"purchases"`
}

// CategoryPoint is one labelled total, e.g. "Grocery (Sales)".
type CategoryPoint struct {
	Name  string          `json:"name"`
	Value decimal.Decimal `json:"value"`
}

// Weekly sums total_amount per weekday of created_at in loc, Sun..Sat.
// Records without a creation time are skipped.
func Weekly(sales []retail.Sale, purchases []retail.Purchase, loc *time.Location) []WeeklyPoint {
	if loc == nil {
		loc = time.Local
	}

	points := make([]WeeklyPoint, 7)
	for d := range points {
		points[d] = WeeklyPoint{Day: time.Weekday(d).String()[:3], Sales: decimal.Zero, Purchases: decimal.Zero}
	}

	for _, s := range sales {
		if s.CreatedAt.IsZero() {
			continue
		}
		d := s.CreatedAt.In(loc).Weekday()
		points[d].Sales = points[d].Sales.Add(s.TotalAmount)
	}
	for _, p := range purchases {
		if p.CreatedAt.IsZero() {
			continue
		}
		d := p.CreatedAt.In(loc).Weekday()
		points[d].Purchases = points[d].Purchases.Add(p.TotalAmount)
	}
	return points
}

type categoryTotals struct {
	sales, purchases decimal.Decimal
}

// ByCategory totals line values per category: quantity*unit_price for
// sales and quantity*unit_cost for purchases. Each category yields a
// "(Sales)" and a "(Purchases)" point, in the order categories first appear.
func ByCategory(sales []retail.Sale, purchases []retail.Purchase) []CategoryPoint {
	var order []string
	totals := make(map[string]*categoryTotals)

	bucket := func(cat string) *categoryTotals {
		if cat == "" {
			cat = DefaultCategory
		}
		t, ok := totals[cat]
		if !ok {
			t = &categoryTotals{sales: decimal.Zero, purchases: decimal.Zero}
			totals[cat] = t
			order = append(order, cat)
		}
		return t
	}

	for _, s := range sales {
		for _, item := range s.Items {
			t := bucket(item.CategoryName)
			t.sales = t.sales.Add(item.LineTotal())
		}
	}
	for _, p := range purchases {
		for _, item := range p.Items {
			t := bucket(item.CategoryName)
			t.purchases = t.purchases.Add(item.LineTotal())
		}
	}

	points := make([]CategoryPoint, 0, 2*len(order))
	for _, cat := range order {
		t := totals[cat]
		points = append(points,
			CategoryPoint{Name: cat + " (Sales)", Value: t.sales},
			CategoryPoint{Name: cat + " (Purchases)", Value: t.purchases},
		)
	}
	return points
}

// Summary is the dashboard headline figures.
type Summary struct {
	ProductCount      int              `json:"product_count"`
	SaleCount         int              `json:"sale_count"`
	PurchaseCount     int              `json:"purchase_count"`
	Revenue           decimal.Decimal  `json:"revenue"`
	Received          decimal.Decimal  `json:"received"`
	Receivable        decimal.Decimal  `json:"receivable"`
	PurchaseCost      decimal.Decimal  `json:"purchase_cost"`
	Paid              decimal.Decimal  `json:"paid"`
	Payable           decimal.Decimal  `json:"payable"`
	GrossMargin       decimal.Decimal  `json:"gross_margin"`
	LowStockThreshold int64            `json:"low_stock_threshold"`
	LowStock          []retail.Product `json:"low_stock"`
}

// Summarize computes the headline figures. Products whose quantity is
// below lowStock are listed.
func Summarize(products []retail.Product, sales []retail.Sale, purchases []retail.Purchase, lowStock int64) Summary {
	sum := Summary{
		ProductCount:      len(products),
		SaleCount:         len(sales),
		PurchaseCount:     len(purchases),
		Revenue:           decimal.Zero,
		Received:          decimal.Zero,
		Receivable:        decimal.Zero,
		PurchaseCost:      decimal.Zero,
		Paid:              decimal.Zero,
		Payable:           decimal.Zero,
		LowStockThreshold: lowStock,
		LowStock:          []retail.Product{},
	}

	for _, s := range sales {
		sum.Revenue = sum.Revenue.Add(s.TotalAmount)
		sum.Received = sum.Received.Add(s.PaidAmount)
		sum.Receivable = sum.Receivable.Add(s.Outstanding())
	}
	for _, p := range purchases {
		sum.PurchaseCost = sum.PurchaseCost.Add(p.TotalAmount)
		sum.Paid = sum.Paid.Add(p.PaidAmount)
		sum.Payable = sum.Payable.Add(p.Outstanding())
	}
	sum.GrossMargin = sum.Revenue.Sub(sum.PurchaseCost)

	for _, p := range products {
		if p.LowStock(lowStock) {
			sum.LowStock = append(sum.LowStock, p)
		}
	}
	return sum
}
