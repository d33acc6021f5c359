package report

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/noman2111ni/Retail-Managment-System/internal/domain/retail"
)

// Source fetches the records a report needs. Slices satisfy it.
type Source[T retail.Record] interface {
	FetchAll(ctx context.Context) ([]T, error)
}

// Service fetches fresh data and builds reports.
type Service struct {
	products  Source[retail.Product]
	sales     Source[retail.Sale]
	purchases Source[retail.Purchase]
	location  *time.Location
	lowStock  int64
}

// DefaultLowStock is the quantity below which a product is reported.
const DefaultLowStock = 10

// NewService creates a report service. loc selects the time zone weekdays
// are counted in; nil means local time.
func NewService(products Source[retail.Product], sales Source[retail.Sale], purchases Source[retail.Purchase], loc *time.Location) *Service {
	if loc == nil {
		loc = time.Local
	}
	return &Service{
		products:  products,
		sales:     sales,
		purchases: purchases,
		location:  loc,
		lowStock:  DefaultLowStock,
	}
}

// WithLowStock sets the low stock threshold.
func (s *Service) WithLowStock(threshold int64) *Service {
	s.lowStock = threshold
	return s
}

// tradeData fetches sales and purchases concurrently.
func (s *Service) tradeData(ctx context.Context) ([]retail.Sale, []retail.Purchase, error) {
	var sales []retail.Sale
	var purchases []retail.Purchase

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		sales, err = s.sales.FetchAll(ctx)
		return err
	})
	g.Go(func() error {
		var err error
		purchases, err = s.purchases.FetchAll(ctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return sales, purchases, nil
}

// Weekly returns sales and purchase totals per weekday.
func (s *Service) Weekly(ctx context.Context) ([]WeeklyPoint, error) {
	sales, purchases, err := s.tradeData(ctx)
	if err != nil {
		return nil, err
	}
	return Weekly(sales, purchases, s.location), nil
}

// Categories returns sales and purchase totals per category.
func (s *Service) Categories(ctx context.Context) ([]CategoryPoint, error) {
	sales, purchases, err := s.tradeData(ctx)
	if err != nil {
		return nil, err
	}
	return ByCategory(sales, purchases), nil
}

// Summary returns the headline figures.
func (s *Service) Summary(ctx context.Context) (Summary, error) {
	var products []retail.Product
	var sales []retail.Sale
	var purchases []retail.Purchase

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		products, err = s.products.FetchAll(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		sales, purchases, err = s.tradeData(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return Summary{}, err
	}
	return Summarize(products, sales, purchases, s.lowStock), nil
}
