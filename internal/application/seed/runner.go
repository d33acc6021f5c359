package seed

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/noman2111ni/Retail-Managment-System/internal/domain/retail"
	"github.com/noman2111ni/Retail-Managment-System/internal/domain/shared"
	"github.com/noman2111ni/Retail-Managment-System/internal/infrastructure/config"
)

// Creator creates records of type T. Resource slices satisfy it.
type Creator[T retail.Record] interface {
	Create(ctx context.Context, payload any) (T, error)
}

// Plan is how many records of each kind to create.
type Plan struct {
	Branches int `validate:"gte=0,lte=1000"`
	Vendors  int `validate:"gte=0,lte=1000"`
	Products int `validate:"gte=0,lte=10000"`
}

// Result counts what was created.
type Result struct {
	Branches int `json:"branches"`
	Vendors  int `json:"vendors"`
	Products int `json:"products"`
	Failed   int `json:"failed"`
}

// Runner creates generated records at a bounded rate.
type Runner struct {
	gen      *Generator
	limiter  *rate.Limiter
	validate *validator.Validate
	log      *zap.Logger

	branches Creator[retail.Branch]
	vendors  Creator[retail.Vendor]
	products Creator[retail.Product]
}

// NewRunner creates a runner limited to cfg.QPS creates per second.
func NewRunner(cfg config.SeedConfig, gen *Generator, branches Creator[retail.Branch], vendors Creator[retail.Vendor], products Creator[retail.Product], log *zap.Logger) *Runner {
	if log == nil {
		log = zap.NewNop()
	}
	burst := cfg.Burst
	if burst < 1 {
		burst = 1
	}
	return &Runner{
		gen:      gen,
		limiter:  rate.NewLimiter(rate.Limit(cfg.QPS), burst),
		validate: validator.New(),
		log:      log.Named("seed"),
		branches: branches,
		vendors:  vendors,
		products: products,
	}
}

// Run creates the planned records. Rejected records are counted and
// skipped; a lost session or a canceled context stops the run.
func (r *Runner) Run(ctx context.Context, plan Plan) (Result, error) {
	var res Result
	if err := r.validate.Struct(plan); err != nil {
		return res, shared.NewDomainError(shared.ErrInvalidInput.Code, err.Error())
	}

	var branchIDs []retail.ID
	for range plan.Branches {
		b, err := create(ctx, r, r.branches, r.gen.Branch())
		if err != nil {
			if fatal(err) {
				return res, err
			}
			res.Failed++
			continue
		}
		branchIDs = append(branchIDs, b.ID)
		res.Branches++
	}

	for range plan.Vendors {
		if _, err := create(ctx, r, r.vendors, r.gen.Vendor()); err != nil {
			if fatal(err) {
				return res, err
			}
			res.Failed++
			continue
		}
		res.Vendors++
	}

	for i := range plan.Products {
		var branch retail.ID
		if len(branchIDs) > 0 {
			branch = branchIDs[i%len(branchIDs)]
		}
		if _, err := create(ctx, r, r.products, r.gen.Product(branch)); err != nil {
			if fatal(err) {
				return res, err
			}
			res.Failed++
			continue
		}
		res.Products++
	}

	r.log.Info("Seeding finished",
		zap.Int("branches", res.Branches),
		zap.Int("vendors", res.Vendors),
		zap.Int("products", res.Products),
		zap.Int("failed", res.Failed))
	return res, nil
}

func create[T retail.Record](ctx context.Context, r *Runner, c Creator[T], payload any) (T, error) {
	var zero T
	if err := r.validate.Struct(payload); err != nil {
		r.log.Warn("Generated payload failed validation", zap.Error(err))
		return zero, fmt.Errorf("%w: %v", shared.ErrInvalidInput, err)
	}
	if err := r.limiter.Wait(ctx); err != nil {
		if ctx.Err() != nil {
			return zero, ctx.Err()
		}
		// Wait refuses early when the deadline cannot be met.
		return zero, fmt.Errorf("%w: %v", context.DeadlineExceeded, err)
	}
	item, err := c.Create(ctx, payload)
	if err != nil {
		r.log.Warn("Create rejected", zap.Error(err))
		return zero, err
	}
	return item, nil
}

func fatal(err error) bool {
	return errors.Is(err, shared.ErrReauthRequired) ||
		errors.Is(err, context.Canceled) ||
		errors.Is(err, context.DeadlineExceeded)
}
